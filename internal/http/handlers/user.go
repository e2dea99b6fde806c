package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/recipebook-backend/internal/http/response"
	"github.com/yungbote/recipebook-backend/internal/services"
)

type UserHandler struct {
	userService   services.UserService
	recipeService services.RecipeService
}

func NewUserHandler(userService services.UserService, recipeService services.RecipeService) *UserHandler {
	return &UserHandler{userService: userService, recipeService: recipeService}
}

// GET /api/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(requestDBC(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// GET /api/users
func (uh *UserHandler) ListUsers(c *gin.Context) {
	users, err := uh.userService.ListUsers(requestDBC(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"users": users})
}

// GET /api/users/:userId
func (uh *UserHandler) GetUser(c *gin.Context) {
	userID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}
	user, err := uh.userService.GetUser(requestDBC(c), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": user})
}

// PUT /api/users/:userId
// body: any of { "username", "email", "password" }
func (uh *UserHandler) UpdateUser(c *gin.Context) {
	userID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}
	var req services.UpdateUserInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := uh.userService.UpdateUser(requestDBC(c), userID, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": user})
}

// GET /api/users/:userId/recipes
func (uh *UserHandler) ListUserRecipes(c *gin.Context) {
	userID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}
	out, err := uh.recipeService.ListUserRecipes(requestDBC(c), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, out)
}
