package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/recipebook-backend/internal/domain"
	"github.com/yungbote/recipebook-backend/internal/http/response"
	"github.com/yungbote/recipebook-backend/internal/services"
)

type RecipeHandler struct {
	recipeService services.RecipeService
	exportService services.ExportService
}

func NewRecipeHandler(recipeService services.RecipeService, exportService services.ExportService) *RecipeHandler {
	return &RecipeHandler{recipeService: recipeService, exportService: exportService}
}

// GET /api/recipes
// GET /api/recipes?title=...
func (rh *RecipeHandler) ListRecipes(c *gin.Context) {
	if title, ok := c.GetQuery("title"); ok {
		r, err := rh.recipeService.GetRecipeByTitle(requestDBC(c), strings.TrimSpace(title))
		if err != nil {
			response.RespondServiceError(c, err)
			return
		}
		response.RespondOK(c, gin.H{"recipe": r})
		return
	}
	recipes, err := rh.recipeService.ListRecipes(requestDBC(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"recipes": recipes})
}

// GET /api/recipes/:id
func (rh *RecipeHandler) GetRecipe(c *gin.Context) {
	recipeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	r, err := rh.recipeService.GetRecipe(requestDBC(c), recipeID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"recipe": r})
}

// POST /api/recipes
func (rh *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.Recipe
	if !bindJSON(c, &req) {
		return
	}
	r, err := rh.recipeService.CreateRecipe(requestDBC(c), &req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"recipe": r})
}

// PUT /api/recipes/:id
func (rh *RecipeHandler) UpdateRecipe(c *gin.Context) {
	recipeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req types.Recipe
	if !bindJSON(c, &req) {
		return
	}
	r, err := rh.recipeService.UpdateRecipe(requestDBC(c), recipeID, &req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"recipe": r})
}

// DELETE /api/recipes/:id
func (rh *RecipeHandler) DeleteRecipe(c *gin.Context) {
	recipeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := rh.recipeService.DeleteRecipe(requestDBC(c), recipeID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/recipes/:id/pdf
func (rh *RecipeHandler) RecipePDF(c *gin.Context) {
	recipeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	dbc := requestDBC(c)
	r, err := rh.recipeService.GetRecipe(dbc, recipeID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	doc, err := rh.exportService.RecipePDF(dbc, r)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	writeDocument(c, doc, true)
}

// GET /api/recipes/:id/cover.png
func (rh *RecipeHandler) RecipeCover(c *gin.Context) {
	recipeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	dbc := requestDBC(c)
	r, err := rh.recipeService.GetRecipe(dbc, recipeID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	doc, err := rh.exportService.RecipeCover(dbc, r)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	writeDocument(c, doc, false)
}

// POST /api/pdf/download-recipe
// body: { "title", "description", "image", "ingredients": [...], "instructions": [...] }
func (rh *RecipeHandler) DownloadRecipePDF(c *gin.Context) {
	var req types.Recipe
	if !bindJSON(c, &req) {
		return
	}
	// Exported as typed; only stored recipes get ingredient normalization.
	req.Tidy()
	doc, err := rh.exportService.RecipePDF(requestDBC(c), &req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	writeDocument(c, doc, true)
}

func writeDocument(c *gin.Context, doc *services.Document, attachment bool) {
	disposition := "inline"
	if attachment {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}
