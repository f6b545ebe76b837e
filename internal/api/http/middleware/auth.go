package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vanmoi/vanmoi/internal/store"
)

const userKey = "current_user"

// TokenAuthenticator resolves a session bearer token to a user. Agent tokens
// live in a different trust domain and never pass through here.
type TokenAuthenticator interface {
	UserForToken(ctx context.Context, token string) (store.User, error)
}

// SessionToken extracts a session bearer from the Authorization header or,
// for humans only, the token cookie.
func SessionToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer "), true
	}

	if cookie, err := c.Cookie("token"); err == nil && cookie != "" {
		return cookie, true
	}

	return "", false
}

// OptionalAuth attaches the caller's identity to the request context when a
// valid session token is present and silently proceeds otherwise. It never
// rejects: public handlers only need "who is this, if anyone".
func OptionalAuth(authn TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := SessionToken(c); ok {
			if user, err := authn.UserForToken(c.Request.Context(), token); err == nil {
				c.Set(userKey, user)
			}
		}
		c.Next()
	}
}

// RequireAuth is the hard gate in front of admin routes: no valid session, no
// handler.
func RequireAuth(authn TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := SessionToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "UNAUTHORIZED",
				"message": "Authentication required",
			})
			return
		}

		user, err := authn.UserForToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "UNAUTHORIZED",
				"message": "Authentication required",
			})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the identity attached by OptionalAuth or RequireAuth.
func CurrentUser(c *gin.Context) (store.User, bool) {
	value, exists := c.Get(userKey)
	if !exists {
		return store.User{}, false
	}
	user, ok := value.(store.User)
	return user, ok
}
