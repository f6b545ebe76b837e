package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/vanmoi/vanmoi/internal/auth"
	"github.com/vanmoi/vanmoi/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuthenticator struct {
	tokens map[string]store.User
}

func (f *fakeAuthenticator) UserForToken(_ context.Context, token string) (store.User, error) {
	user, ok := f.tokens[token]
	if !ok {
		return store.User{}, auth.ErrInvalidCredentials
	}
	return user, nil
}

func setupAuthRouter(authn *fakeAuthenticator) *gin.Engine {
	r := gin.New()

	r.GET("/public", OptionalAuth(authn), func(c *gin.Context) {
		if user, ok := CurrentUser(c); ok {
			c.String(http.StatusOK, user.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	r.GET("/admin", RequireAuth(authn), func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.String(http.StatusOK, user.Username)
	})

	return r
}

func TestOptionalAuthAnonymous(t *testing.T) {
	r := setupAuthRouter(&fakeAuthenticator{tokens: map[string]store.User{}})

	req, _ := http.NewRequest("GET", "/public", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())
}

func TestOptionalAuthInvalidTokenStillPasses(t *testing.T) {
	r := setupAuthRouter(&fakeAuthenticator{tokens: map[string]store.User{}})

	req, _ := http.NewRequest("GET", "/public", nil)
	req.Header.Set("Authorization", "Bearer vmses_bogus")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())
}

func TestOptionalAuthAttachesUser(t *testing.T) {
	authn := &fakeAuthenticator{tokens: map[string]store.User{
		"vmses_good": {Username: "admin"},
	}}
	r := setupAuthRouter(authn)

	req, _ := http.NewRequest("GET", "/public", nil)
	req.Header.Set("Authorization", "Bearer vmses_good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	r := setupAuthRouter(&fakeAuthenticator{tokens: map[string]store.User{}})

	req, _ := http.NewRequest("GET", "/admin", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"UNAUTHORIZED","message":"Authentication required"}`, w.Body.String())
}

func TestRequireAuthRejectsInvalidToken(t *testing.T) {
	r := setupAuthRouter(&fakeAuthenticator{tokens: map[string]store.User{}})

	req, _ := http.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer vmses_bogus")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthAcceptsHeaderToken(t *testing.T) {
	authn := &fakeAuthenticator{tokens: map[string]store.User{
		"vmses_good": {Username: "admin"},
	}}
	r := setupAuthRouter(authn)

	req, _ := http.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer vmses_good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())
}

func TestRequireAuthAcceptsCookieToken(t *testing.T) {
	authn := &fakeAuthenticator{tokens: map[string]store.User{
		"vmses_good": {Username: "admin"},
	}}
	r := setupAuthRouter(authn)

	req, _ := http.NewRequest("GET", "/admin", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "vmses_good"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())
}

func TestHeaderTokenWinsOverCookie(t *testing.T) {
	authn := &fakeAuthenticator{tokens: map[string]store.User{
		"vmses_header": {Username: "header-user"},
		"vmses_cookie": {Username: "cookie-user"},
	}}
	r := setupAuthRouter(authn)

	req, _ := http.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer vmses_header")
	req.AddCookie(&http.Cookie{Name: "token", Value: "vmses_cookie"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "header-user", w.Body.String())
}
