package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cyberguard/awareness-service/internal/services"
	"github.com/cyberguard/awareness-service/internal/utils"
)

// AuthHandler implements registration, login and logout
type AuthHandler struct {
	BaseHandler
	authService  services.AuthService
	secureCookie bool
}

func NewAuthHandler(authService services.AuthService, secureCookie bool, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler:  NewBaseHandler(logger),
		authService:  authService,
		secureCookie: secureCookie,
	}
}

// Register godoc
// @Summary Create an account and sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body services.RegisterRequest true "Account"
// @Success 201 {object} SuccessResponse{data=services.AuthResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	if !h.enabled(c) {
		return
	}

	var req services.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.setTokenCookie(c, resp.Token, resp.ExpiresAt)
	h.LogRequest(c, "User registered", "user_id", resp.User.ID)
	h.RespondWithSuccess(c, http.StatusCreated, "Registration successful", resp)
}

// Login godoc
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param body body services.LoginRequest true "Credentials"
// @Success 200 {object} SuccessResponse{data=services.AuthResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	if !h.enabled(c) {
		return
	}

	var req services.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.setTokenCookie(c, resp.Token, resp.ExpiresAt)
	h.LogRequest(c, "User logged in", "user_id", resp.User.ID)
	h.RespondWithSuccess(c, http.StatusOK, "Login successful", resp)
}

// Logout godoc
// @Summary Clear the session cookie
// @Tags auth
// @Success 200 {object} SuccessResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(TokenCookie, "", -1, "/", "", h.secureCookie, true)
	h.RespondWithSuccess(c, http.StatusOK, "Logged out", nil)
}

// Me godoc
// @Summary Get the signed-in user
// @Tags auth
// @Produce json
// @Success 200 {object} SuccessResponse{data=models.User}
// @Failure 401 {object} ErrorResponse
// @Router /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	if !h.enabled(c) {
		return
	}
	userID, _ := currentUserID(c)

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "User retrieved", user)
}

// RequireAccounts answers 501 for the whole group when no relational store
// backs accounts.
func (h *AuthHandler) RequireAccounts() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.enabled(c) {
			c.Abort()
			return
		}
		c.Next()
	}
}

func (h *AuthHandler) enabled(c *gin.Context) bool {
	if h.authService == nil {
		h.handleServiceError(c, services.ErrAuthDisabled)
		return false
	}
	return true
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(TokenCookie, token, maxAge, "/", "", h.secureCookie, true)
}
