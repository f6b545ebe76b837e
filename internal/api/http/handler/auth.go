package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vanmoi/vanmoi/internal/api/http/dto"
	"github.com/vanmoi/vanmoi/internal/api/http/middleware"
	"github.com/vanmoi/vanmoi/internal/auth"
)

type AuthHandler struct {
	auth       *auth.Service
	sessionTTL time.Duration
}

func NewAuthHandler(authService *auth.Service, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		auth:       authService,
		sessionTTL: sessionTTL,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid login request")
		return
	}

	userAgent := c.Request.UserAgent()
	clientIP := c.ClientIP()

	session, user, err := h.auth.Login(c.Request.Context(), req.Username, req.Password, &userAgent, &clientIP)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			// Same response for unknown user and wrong password.
			badRequest(c, "Invalid username or password")
			return
		}
		slog.Error("Login failed", "error", err)
		internalError(c, "Login failed")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("token", session.Token, int(h.sessionTTL.Seconds()), "/", "", false, true)

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token: session.Token,
		User: dto.UserInfo{
			ID:       user.ID.String(),
			Username: user.Username,
		},
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie("token"); err == nil && token != "" {
		if err := h.auth.Logout(c.Request.Context(), token); err != nil {
			slog.Warn("Failed to delete session on logout", "error", err)
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("token", "", -1, "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me reports the optionally attached identity; anonymous callers get null,
// never an error.
func (h *AuthHandler) Me(c *gin.Context) {
	var info *dto.UserInfo
	if user, ok := middleware.CurrentUser(c); ok {
		info = &dto.UserInfo{
			ID:       user.ID.String(),
			Username: user.Username,
		}
	}
	c.JSON(http.StatusOK, info)
}
