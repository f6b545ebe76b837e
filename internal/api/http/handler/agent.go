package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5"

	"github.com/vanmoi/vanmoi/internal/api/http/dto"
	"github.com/vanmoi/vanmoi/internal/liveness"
	"github.com/vanmoi/vanmoi/internal/store"
	"github.com/vanmoi/vanmoi/internal/ws"
)

const defaultClientName = "New Server"

// AgentStore is the storage surface the agent endpoints touch.
type AgentStore interface {
	CreateClient(ctx context.Context, name string) (store.Client, error)
	FindClientByToken(ctx context.Context, token string) (store.Client, error)
	UpdateClientBasicInfo(ctx context.Context, id uuid.UUID, info store.BasicInfo) error
	UpdateClientIPs(ctx context.Context, id uuid.UUID, ipv4, ipv6 *string) error
	InsertRecord(ctx context.Context, clientID uuid.UUID, rec store.RecordInput) error
}

type AgentHandler struct {
	store    AgentStore
	tracker  *liveness.Tracker
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

func NewAgentHandler(agentStore AgentStore, tracker *liveness.Tracker, hub *ws.Hub) *AgentHandler {
	return &AgentHandler{
		store:   agentStore,
		tracker: tracker,
		hub:     hub,
		upgrader: websocket.Upgrader{
			// Agents are not browsers; origin checks don't apply.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// authenticateAgent resolves the Authorization header against the client
// table. Agents never authenticate via cookie.
func (h *AgentHandler) authenticateAgent(c *gin.Context) (store.Client, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		unauthorized(c)
		return store.Client{}, false
	}

	token := strings.TrimPrefix(header, "Bearer ")
	client, err := h.store.FindClientByToken(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			unauthorized(c)
			return store.Client{}, false
		}
		slog.Error("Agent token lookup failed", "error", err)
		internalError(c, "Authentication failed")
		return store.Client{}, false
	}

	return client, true
}

// Register issues a fresh identity and token. The token is the credential
// being issued, so the call itself is unauthenticated.
func (h *AgentHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "Invalid register request")
		return
	}

	name := req.Name
	if name == "" {
		name = defaultClientName
	}

	client, err := h.store.CreateClient(c.Request.Context(), name)
	if err != nil {
		slog.Error("Failed to register agent", "error", err)
		internalError(c, "Failed to register agent")
		return
	}

	slog.Info("New agent registered", "name", client.Name, "client_id", client.ID)

	c.JSON(http.StatusOK, dto.RegisterResponse{
		UUID:  client.ID.String(),
		Token: client.Token,
	})
}

// UploadBasicInfo overwrites the descriptive fields of the agent's identity.
func (h *AgentHandler) UploadBasicInfo(c *gin.Context) {
	client, ok := h.authenticateAgent(c)
	if !ok {
		return
	}

	var req dto.BasicInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid info payload")
		return
	}

	info := store.BasicInfo{
		CpuName:        req.CpuName,
		Arch:           req.Arch,
		CpuCores:       req.CpuCores,
		OS:             req.OS,
		KernelVersion:  req.KernelVersion,
		GpuName:        req.GpuName,
		Virtualization: req.Virtualization,
		MemTotal:       req.MemTotal,
		SwapTotal:      req.SwapTotal,
		DiskTotal:      req.DiskTotal,
		Version:        req.Version,
	}

	if err := h.store.UpdateClientBasicInfo(c.Request.Context(), client.ID, info); err != nil {
		slog.Error("Failed to update client info", "client_id", client.ID, "error", err)
		internalError(c, "Failed to update info")
		return
	}

	if req.IPv4 != nil || req.IPv6 != nil {
		if err := h.store.UpdateClientIPs(c.Request.Context(), client.ID, req.IPv4, req.IPv6); err != nil {
			slog.Error("Failed to update client ips", "client_id", client.ID, "error", err)
			internalError(c, "Failed to update info")
			return
		}
	}

	c.JSON(http.StatusOK, dto.StatusOK)
}

// UploadReport ingests one measurement sample over plain HTTP. The sample
// insert is the primary contract; the online pulse around it is best-effort.
func (h *AgentHandler) UploadReport(c *gin.Context) {
	client, ok := h.authenticateAgent(c)
	if !ok {
		return
	}

	var rec store.RecordInput
	if err := c.ShouldBindJSON(&rec); err != nil {
		badRequest(c, "Invalid report payload")
		return
	}

	h.tracker.MarkOnline(c.Request.Context(), client.ID)

	if err := h.store.InsertRecord(c.Request.Context(), client.ID, rec); err != nil {
		slog.Error("Failed to insert record", "client_id", client.ID, "error", err)
		internalError(c, "Failed to store report")
		return
	}

	c.JSON(http.StatusOK, dto.StatusOK)
}

// Stream upgrades the request to the persistent telemetry channel. The token
// is checked before the upgrade: an unauthenticated caller never gets a
// websocket.
func (h *AgentHandler) Stream(c *gin.Context) {
	client, ok := h.authenticateAgent(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("Failed to upgrade agent stream", "client_id", client.ID, "error", err)
		return
	}

	slog.Info("Agent connected via WebSocket", "name", client.Name, "client_id", client.ID)
	h.hub.Serve(c.Request.Context(), client, conn)
	slog.Info("Agent disconnected", "name", client.Name, "client_id", client.ID)
}
