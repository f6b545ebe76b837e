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

func TestSettings(t *testing.T, router *gin.Engine, adminToken string) {
	t.Run("defaults", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/admin/settings", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"site_name":"Vanmoi","site_description":"Server Monitoring"}`, w.Body.String())
	})

	t.Run("update", func(t *testing.T) {
		name := "My Fleet"
		w := doJSON(router, "PUT", "/api/admin/settings", adminToken, dto.UpdateSettingsRequest{SiteName: &name})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(router, "GET", "/api/admin/settings", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"site_name":"My Fleet","site_description":"Server Monitoring"}`, w.Body.String())
	})
}

func TestPingTaskAdmin(t *testing.T, router *gin.Engine, adminToken string) {
	var task store.PingTask

	t.Run("create with defaults", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/admin/ping", adminToken, dto.AddPingTaskRequest{
			Name:   "edge",
			Target: "example.com:443",
		})
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
		assert.Equal(t, int32(60), task.IntervalSeconds)
		assert.Equal(t, int32(5), task.TimeoutSeconds)
	})

	t.Run("public listing", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/ping", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var tasks []store.PingTask
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
		require.NotEmpty(t, tasks)
	})

	t.Run("delete", func(t *testing.T) {
		w := doJSON(router, "DELETE", "/api/admin/ping/"+task.ID.String(), adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestNotificationAdmin(t *testing.T, router *gin.Engine, adminToken string) {
	var notification store.Notification

	t.Run("create", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/admin/notifications", adminToken, dto.AddNotificationRequest{
			Name:     "ops webhook",
			Provider: "webhook",
			Config:   json.RawMessage(`{"url":"http://127.0.0.1:1/hook"}`),
		})
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &notification))
		assert.Equal(t, "webhook", notification.Provider)
	})

	t.Run("list", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/admin/notifications", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var notifications []store.Notification
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &notifications))
		require.NotEmpty(t, notifications)
	})

	t.Run("test endpoint fails against dead target", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/admin/notifications/test", adminToken, dto.TestNotificationRequest{
			Provider: "webhook",
			Config:   json.RawMessage(`{"url":"http://127.0.0.1:1/hook"}`),
		})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w := doJSON(router, "DELETE", "/api/admin/notifications/"+notification.ID.String(), adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
