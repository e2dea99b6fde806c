package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/recipebook-backend/internal/http/response"
	"github.com/yungbote/recipebook-backend/internal/services"
)

const refreshCookieName = "refreshToken"

type AuthHandler struct {
	authService  services.AuthService
	cookieSecure bool
}

func NewAuthHandler(authService services.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{authService: authService, cookieSecure: cookieSecure}
}

// POST /api/users/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := ah.authService.Register(requestDBC(c), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	ah.setRefreshCookie(c, res.RefreshToken)
	response.RespondCreated(c, res)
}

// POST /api/users/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req services.LoginInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := ah.authService.Login(requestDBC(c), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	ah.setRefreshCookie(c, res.RefreshToken)
	response.RespondOK(c, res)
}

// POST /api/users/refresh
// The refresh token comes from the cookie, or from {"refreshToken": "..."}.
func (ah *AuthHandler) Refresh(c *gin.Context) {
	res, err := ah.authService.Refresh(requestDBC(c), ah.refreshTokenFrom(c))
	if err != nil {
		ah.clearRefreshCookie(c)
		response.RespondServiceError(c, err)
		return
	}
	ah.setRefreshCookie(c, res.RefreshToken)
	response.RespondOK(c, res)
}

// POST /api/users/logout
func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.Logout(requestDBC(c), ah.refreshTokenFrom(c)); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	ah.clearRefreshCookie(c)
	response.RespondOK(c, gin.H{"ok": true})
}

func (ah *AuthHandler) refreshTokenFrom(c *gin.Context) string {
	if tok, err := c.Cookie(refreshCookieName); err == nil && tok != "" {
		return tok
	}
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if c.Request.ContentLength != 0 {
		_ = c.ShouldBindJSON(&body)
	}
	return body.RefreshToken
}

func (ah *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, token, int(ah.authService.RefreshTTL().Seconds()), "/", "", ah.cookieSecure, true)
}

func (ah *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, "", -1, "/", "", ah.cookieSecure, true)
}
