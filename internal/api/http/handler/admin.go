package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vanmoi/vanmoi/internal/api/http/dto"
	"github.com/vanmoi/vanmoi/internal/api/http/middleware"
	"github.com/vanmoi/vanmoi/internal/auth"
	"github.com/vanmoi/vanmoi/internal/notify"
	"github.com/vanmoi/vanmoi/internal/store"
)

const (
	defaultPingInterval = 60
	defaultPingTimeout  = 5
)

type AdminHandler struct {
	store    *store.Store
	auth     *auth.Service
	notifier *notify.Dispatcher
}

func NewAdminHandler(s *store.Store, authService *auth.Service, notifier *notify.Dispatcher) *AdminHandler {
	return &AdminHandler{
		store:    s,
		auth:     authService,
		notifier: notifier,
	}
}

// ==================== Client management ====================

func (h *AdminHandler) ListClients(c *gin.Context) {
	clients, err := h.store.AllClients(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list clients", "error", err)
		internalError(c, "Failed to list clients")
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (h *AdminHandler) AddClient(c *gin.Context) {
	var req dto.AddClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid client request")
		return
	}

	client, err := h.store.CreateClient(c.Request.Context(), req.Name)
	if err != nil {
		slog.Error("Failed to create client", "error", err)
		internalError(c, "Failed to create client")
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *AdminHandler) GetClient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	client, err := h.store.FindClientByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			notFound(c, "Client not found")
			return
		}
		slog.Error("Failed to load client", "client_id", id, "error", err)
		internalError(c, "Failed to load client")
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *AdminHandler) EditClient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.EditClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid client request")
		return
	}

	upd := store.ClientProfileUpdate{
		Name:         req.Name,
		GroupName:    req.GroupName,
		Remark:       req.Remark,
		PublicRemark: req.PublicRemark,
		Hidden:       req.Hidden,
		Weight:       req.Weight,
	}
	if err := h.store.UpdateClientProfile(c.Request.Context(), id, upd); err != nil {
		slog.Error("Failed to update client", "client_id", id, "error", err)
		internalError(c, "Failed to update client")
		return
	}
	c.JSON(http.StatusOK, dto.StatusOK)
}

func (h *AdminHandler) DeleteClient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteClient(c.Request.Context(), id); err != nil {
		slog.Error("Failed to delete client", "client_id", id, "error", err)
		internalError(c, "Failed to delete client")
		return
	}
	c.JSON(http.StatusOK, dto.StatusOK)
}

// GetClientToken reveals the agent credential to the operator.
func (h *AdminHandler) GetClientToken(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	client, err := h.store.FindClientByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			notFound(c, "Client not found")
			return
		}
		slog.Error("Failed to load client", "client_id", id, "error", err)
		internalError(c, "Failed to load client")
		return
	}

	c.JSON(http.StatusOK, dto.ClientTokenResponse{
		UUID:  client.ID.String(),
		Token: client.Token,
	})
}

// ==================== Settings ====================

func (h *AdminHandler) GetSettings(c *gin.Context) {
	siteName, err := h.store.GetSetting(c.Request.Context(), "site_name")
	if err != nil {
		slog.Error("Failed to load settings", "error", err)
		internalError(c, "Failed to load settings")
		return
	}
	if siteName == nil {
		siteName = json.RawMessage(`"Vanmoi"`)
	}

	siteDescription, err := h.store.GetSetting(c.Request.Context(), "site_description")
	if err != nil {
		slog.Error("Failed to load settings", "error", err)
		internalError(c, "Failed to load settings")
		return
	}
	if siteDescription == nil {
		siteDescription = json.RawMessage(`"Server Monitoring"`)
	}

	c.JSON(http.StatusOK, dto.SettingsResponse{
		SiteName:        siteName,
		SiteDescription: siteDescription,
	})
}

func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid settings request")
		return
	}

	if req.SiteName != nil {
		value, _ := json.Marshal(*req.SiteName)
		if err := h.store.SetSetting(c.Request.Context(), "site_name", value); err != nil {
			slog.Error("Failed to update settings", "error", err)
			internalError(c, "Failed to update settings")
			return
		}
	}
	if req.SiteDescription != nil {
		value, _ := json.Marshal(*req.SiteDescription)
		if err := h.store.SetSetting(c.Request.Context(), "site_description", value); err != nil {
			slog.Error("Failed to update settings", "error", err)
			internalError(c, "Failed to update settings")
			return
		}
	}

	c.JSON(http.StatusOK, dto.StatusOK)
}

// ==================== Notifications ====================

func (h *AdminHandler) ListNotifications(c *gin.Context) {
	notifications, err := h.store.AllNotifications(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list notifications", "error", err)
		internalError(c, "Failed to list notifications")
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (h *AdminHandler) AddNotification(c *gin.Context) {
	var req dto.AddNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid notification request")
		return
	}

	notification, err := h.store.CreateNotification(c.Request.Context(), req.Name, req.Provider, req.Config)
	if err != nil {
		slog.Error("Failed to create notification", "error", err)
		internalError(c, "Failed to create notification")
		return
	}
	c.JSON(http.StatusOK, notification)
}

func (h *AdminHandler) DeleteNotification(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteNotification(c.Request.Context(), id); err != nil {
		slog.Error("Failed to delete notification", "notification_id", id, "error", err)
		internalError(c, "Failed to delete notification")
		return
	}
	c.JSON(http.StatusOK, dto.StatusOK)
}

// TestNotification fires one message through an unsaved provider config.
func (h *AdminHandler) TestNotification(c *gin.Context) {
	var req dto.TestNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid notification request")
		return
	}

	title := req.Title
	if title == "" {
		title = "Vanmoi Test"
	}
	message := req.Message
	if message == "" {
		message = "This is a test notification from Vanmoi."
	}

	if err := h.notifier.Send(c.Request.Context(), req.Provider, req.Config, title, message); err != nil {
		slog.Error("Test notification failed", "provider", req.Provider, "error", err)
		internalError(c, "Notification failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Notification sent"})
}

// ==================== Ping tasks ====================

func (h *AdminHandler) ListPingTasks(c *gin.Context) {
	tasks, err := h.store.AllPingTasks(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list ping tasks", "error", err)
		internalError(c, "Failed to list ping tasks")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *AdminHandler) AddPingTask(c *gin.Context) {
	var req dto.AddPingTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid ping task request")
		return
	}

	if req.IntervalSeconds <= 0 {
		req.IntervalSeconds = defaultPingInterval
	}
	if req.TimeoutSeconds <= 0 {
		req.TimeoutSeconds = defaultPingTimeout
	}

	task, err := h.store.CreatePingTask(c.Request.Context(), req.Name, req.Target, req.IntervalSeconds, req.TimeoutSeconds)
	if err != nil {
		slog.Error("Failed to create ping task", "error", err)
		internalError(c, "Failed to create ping task")
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *AdminHandler) DeletePingTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.store.DeletePingTask(c.Request.Context(), id); err != nil {
		slog.Error("Failed to delete ping task", "task_id", id, "error", err)
		internalError(c, "Failed to delete ping task")
		return
	}
	c.JSON(http.StatusOK, dto.StatusOK)
}

// ==================== User management ====================

func (h *AdminHandler) ChangePassword(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid password request")
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), user, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrWrongPassword) {
			badRequest(c, "Invalid old password")
			return
		}
		slog.Error("Failed to change password", "user_id", user.ID, "error", err)
		internalError(c, "Failed to change password")
		return
	}

	c.JSON(http.StatusOK, dto.StatusOK)
}

// ==================== Session management ====================

func (h *AdminHandler) ListSessions(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		unauthorized(c)
		return
	}

	sessions, err := h.auth.Sessions(c.Request.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to list sessions", "user_id", user.ID, "error", err)
		internalError(c, "Failed to list sessions")
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (h *AdminHandler) DeleteSession(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		unauthorized(c)
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.auth.DeleteSessionByID(c.Request.Context(), user.ID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			notFound(c, "Session not found")
			return
		}
		slog.Error("Failed to delete session", "user_id", user.ID, "error", err)
		internalError(c, "Failed to delete session")
		return
	}

	c.JSON(http.StatusOK, dto.StatusOK)
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "Invalid id")
		return uuid.UUID{}, false
	}
	return id, true
}
