package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vanmoi/vanmoi/internal/api/http/dto"
	"github.com/vanmoi/vanmoi/internal/store"
)

const defaultRecordLimit = 60

// PublicStore is the read-only storage surface behind the dashboard routes.
type PublicStore interface {
	VisibleClients(ctx context.Context) ([]store.Client, error)
	LatestRecord(ctx context.Context, clientID uuid.UUID) (store.Record, error)
	RecentRecords(ctx context.Context, clientID uuid.UUID, limit int32) ([]store.Record, error)
	AllPingTasks(ctx context.Context) ([]store.PingTask, error)
	RecentPingRecords(ctx context.Context, taskID uuid.UUID, limit int32) ([]store.PingRecord, error)
}

type PublicHandler struct {
	store PublicStore
}

func NewPublicHandler(publicStore PublicStore) *PublicHandler {
	return &PublicHandler{store: publicStore}
}

// Clients lists every non-hidden client with its latest sample attached when
// online. Hidden clients are omitted entirely, not blanked.
func (h *PublicHandler) Clients(c *gin.Context) {
	clients, err := h.store.VisibleClients(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list clients", "error", err)
		internalError(c, "Failed to list clients")
		return
	}

	result := make([]dto.ClientWithStatus, 0, len(clients))
	for _, client := range clients {
		entry := dto.ClientWithStatus{ClientPublic: dto.NewClientPublic(client)}

		if client.Online {
			rec, err := h.store.LatestRecord(c.Request.Context(), client.ID)
			switch {
			case err == nil:
				entry.Status = &dto.ClientStatus{
					Cpu:       rec.Cpu,
					Ram:       rec.Ram,
					RamTotal:  rec.RamTotal,
					Disk:      rec.Disk,
					DiskTotal: rec.DiskTotal,
					NetIn:     rec.NetIn,
					NetOut:    rec.NetOut,
					Load:      rec.Load,
					Uptime:    rec.Uptime,
				}
			case errors.Is(err, pgx.ErrNoRows):
				// Online but no sample yet: status stays empty.
			default:
				slog.Error("Failed to load latest record", "client_id", client.ID, "error", err)
				internalError(c, "Failed to list clients")
				return
			}
		}

		result = append(result, entry)
	}

	c.JSON(http.StatusOK, dto.ClientsResponse{Clients: result})
}

// Nodes is the simplified listing some dashboards consume.
func (h *PublicHandler) Nodes(c *gin.Context) {
	clients, err := h.store.VisibleClients(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list clients", "error", err)
		internalError(c, "Failed to list nodes")
		return
	}

	nodes := make([]dto.NodeInfo, len(clients))
	for i, client := range clients {
		nodes[i] = dto.NodeInfo{
			ID:     client.ID.String(),
			Name:   client.Name,
			Group:  client.GroupName,
			Online: client.Online,
		}
	}

	c.JSON(http.StatusOK, nodes)
}

func (h *PublicHandler) RecentRecords(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		badRequest(c, "Invalid client id")
		return
	}

	records, err := h.store.RecentRecords(c.Request.Context(), clientID, queryLimit(c))
	if err != nil {
		slog.Error("Failed to load records", "client_id", clientID, "error", err)
		internalError(c, "Failed to load records")
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *PublicHandler) PingTasks(c *gin.Context) {
	tasks, err := h.store.AllPingTasks(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list ping tasks", "error", err)
		internalError(c, "Failed to list ping tasks")
		return
	}

	c.JSON(http.StatusOK, tasks)
}

func (h *PublicHandler) PingRecords(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid task id")
		return
	}

	records, err := h.store.RecentPingRecords(c.Request.Context(), taskID, queryLimit(c))
	if err != nil {
		slog.Error("Failed to load ping records", "task_id", taskID, "error", err)
		internalError(c, "Failed to load ping records")
		return
	}

	c.JSON(http.StatusOK, records)
}

func queryLimit(c *gin.Context) int32 {
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.ParseInt(raw, 10, 32); err == nil && limit > 0 {
			return int32(limit)
		}
	}
	return defaultRecordLimit
}
