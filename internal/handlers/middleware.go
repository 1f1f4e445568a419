package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cyberguard/awareness-service/internal/services"
)

const (
	ClientCookie    = "cg_client"
	ClientHeader    = "X-Client-ID"
	TokenCookie     = "token"
	ContextClientID = "client_id"
	ContextUserID   = "user_id"
	ContextClaims   = "claims"

	clientCookieMaxAge = 365 * 24 * 60 * 60
)

var publicPaths = map[string]bool{
	"/":         true,
	"/login":    true,
	"/register": true,
	"/health":   true,
	"/metrics":  true,
}

const authRoutesPrefix = "/api/v1/auth/"

// ClientID identifies the browser or API client owning the progress state.
// The X-Client-ID header wins over the cg_client cookie; a client presenting
// neither gets a freshly minted id in a cookie.
func ClientID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := strings.TrimSpace(c.GetHeader(ClientHeader)); id != "" {
			if !services.ValidClientID(id) {
				c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
					Message: "Invalid " + ClientHeader + " header",
					Details: "use 1-64 letters, digits, '-' or '_'",
				})
				return
			}
			c.Set(ContextClientID, id)
			c.Next()
			return
		}

		id, err := c.Cookie(ClientCookie)
		if err != nil || !services.ValidClientID(id) {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(ClientCookie, id, clientCookieMaxAge, "/", "", false, true)
		}
		c.Set(ContextClientID, id)
		c.Next()
	}
}

// OptionalAuth attaches the caller's claims when a valid token is presented
// via the token cookie or an Authorization: Bearer header.
func OptionalAuth(auth services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth == nil {
			c.Next()
			return
		}
		if token := tokenFromRequest(c); token != "" {
			if claims, err := auth.ValidateToken(token); err == nil {
				c.Set(ContextUserID, claims.UserID)
				c.Set(ContextClaims, claims)
			}
		}
		c.Next()
	}
}

// RequireAuth gates everything except the public paths and the auth routes.
// API requests get 401, page requests are redirected to /login.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if publicPaths[path] || strings.HasPrefix(path, authRoutesPrefix) {
			c.Next()
			return
		}
		if _, ok := currentUserID(c); ok {
			c.Next()
			return
		}

		if strings.HasPrefix(path, "/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Authentication required",
				Code:    "unauthorized",
			})
			return
		}
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(TokenCookie); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

func currentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// actor builds the service actor for the current request
func actor(c *gin.Context) services.Actor {
	a := services.Actor{ClientID: c.GetString(ContextClientID)}
	if id, ok := currentUserID(c); ok {
		a.UserID = &id
	}
	return a
}
