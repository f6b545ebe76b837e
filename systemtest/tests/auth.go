package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanmoi/vanmoi/internal/api/http/dto"
	"github.com/vanmoi/vanmoi/internal/store"
)

func TestLoginFlow(t *testing.T, router *gin.Engine, username, password string) {
	t.Run("success", func(t *testing.T) {
		token := Login(t, router, username, password)
		assert.Equal(t, "vmses_", token[:6])

		w := doJSON(router, "GET", "/api/me", token, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var info dto.UserInfo
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
		assert.Equal(t, username, info.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/login", "", dto.LoginRequest{Username: username, Password: "nope"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"BAD_REQUEST","message":"Invalid username or password"}`, w.Body.String())
	})

	t.Run("unknown user looks identical", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/login", "", dto.LoginRequest{Username: "ghost", Password: "nope"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"BAD_REQUEST","message":"Invalid username or password"}`, w.Body.String())
	})

	t.Run("anonymous me is null", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/me", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "null", w.Body.String())
	})

	t.Run("admin routes gated", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/admin/clients", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = doJSON(router, "GET", "/api/admin/clients", "vmses_bogus", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestSessionManagement(t *testing.T, router *gin.Engine, username, password string) {
	first := Login(t, router, username, password)
	second := Login(t, router, username, password)

	w := doJSON(router, "GET", "/api/admin/sessions", first, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var sessions []store.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sessions))
	require.GreaterOrEqual(t, len(sessions), 2)

	// Token values never appear in the listing.
	for _, session := range sessions {
		assert.Empty(t, session.Token)
	}

	// Deleting every listed session revokes both tokens, including the one
	// doing the deleting.
	for _, session := range sessions {
		w := doJSON(router, "DELETE", "/api/admin/sessions/"+session.ID.String(), first, nil)
		if w.Code != http.StatusOK {
			// The first token's own session may already be gone.
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		}
	}

	w = doJSON(router, "GET", "/api/admin/sessions", first, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = doJSON(router, "GET", "/api/admin/sessions", second, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPasswordChange(t *testing.T, router *gin.Engine, username, password string) {
	token := Login(t, router, username, password)

	t.Run("wrong old password", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/admin/password", token, dto.ChangePasswordRequest{
			OldPassword: "nope",
			NewPassword: "newpassword1",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"BAD_REQUEST","message":"Invalid old password"}`, w.Body.String())
	})

	t.Run("too short new password", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/admin/password", token, dto.ChangePasswordRequest{
			OldPassword: password,
			NewPassword: "short",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("success and rollback", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/admin/password", token, dto.ChangePasswordRequest{
			OldPassword: password,
			NewPassword: "newpassword1",
		})
		require.Equal(t, http.StatusOK, w.Code)

		// Old password is dead, new one works.
		w = doJSON(router, "POST", "/api/login", "", dto.LoginRequest{Username: username, Password: password})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		newToken := Login(t, router, username, "newpassword1")

		// Restore for the tests that follow.
		w = doJSON(router, "POST", "/api/admin/password", newToken, dto.ChangePasswordRequest{
			OldPassword: "newpassword1",
			NewPassword: password,
		})
		require.Equal(t, http.StatusOK, w.Code)
	})
}
