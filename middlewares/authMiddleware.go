package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"civicconnect-be/policy"
	"civicconnect-be/services"
)

const (
	// TokenCookie is the cookie the login handler sets.
	TokenCookie = "auth_token"

	viewerKey = "viewer"
	tokenKey  = "token"
)

// SessionResolver maps a bearer token to the viewer it belongs to.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (policy.Viewer, error)
}

// Authenticate resolves the viewer for every request. Requests without a
// usable token continue as anonymous; routes that need an identity reject
// them through RequireAuth or RequireManager. When a stale token arrived in
// the cookie, clearCookie is called so the browser drops it.
func Authenticate(resolver SessionResolver, clearCookie func(*gin.Context)) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, fromCookie := extractToken(c)
		if tokenString == "" {
			c.Set(viewerKey, policy.Anonymous())
			c.Next()
			return
		}

		viewer, err := resolver.Resolve(c.Request.Context(), tokenString)
		if err != nil {
			if !errors.Is(err, services.ErrAuthenticationRequired) {
				slog.Error("session lookup failed", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
				return
			}
			slog.Debug("ignoring stale session token", "cookie", fromCookie)
			if fromCookie && clearCookie != nil {
				clearCookie(c)
			}
			c.Set(viewerKey, policy.Anonymous())
			c.Next()
			return
		}

		c.Set(viewerKey, viewer)
		c.Set(tokenKey, tokenString)
		c.Set("user_id", viewer.UserID)
		c.Next()
	}
}

// RequireAuth rejects anonymous viewers.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ViewerFrom(c).IsAnonymous() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": services.ErrAuthenticationRequired.Error()})
			return
		}
		c.Next()
	}
}

// RequireManager lets only authorities and admins through.
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer := ViewerFrom(c)
		if viewer.IsAnonymous() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": services.ErrAuthenticationRequired.Error()})
			return
		}
		if !policy.CanManage(viewer) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": services.ErrForbidden.Error()})
			return
		}
		c.Next()
	}
}

// ViewerFrom returns the viewer Authenticate stored, or anonymous.
func ViewerFrom(c *gin.Context) policy.Viewer {
	if v, ok := c.Get(viewerKey); ok {
		if viewer, ok := v.(policy.Viewer); ok {
			return viewer
		}
	}
	return policy.Anonymous()
}

// TokenFrom returns the raw token of an authenticated request.
func TokenFrom(c *gin.Context) string {
	return c.GetString(tokenKey)
}

// extractToken reads the bearer header first, then the auth cookie.
func extractToken(c *gin.Context) (string, bool) {
	// Extracting token from "Bearer <token>" format
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")), false
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie, true
	}
	return "", false
}
