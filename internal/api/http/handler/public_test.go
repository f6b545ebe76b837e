package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanmoi/vanmoi/internal/api/http/dto"
	"github.com/vanmoi/vanmoi/internal/store"
)

type fakePublicStore struct {
	clients     []store.Client
	latest      map[uuid.UUID]store.Record
	records     map[uuid.UUID][]store.Record
	tasks       []store.PingTask
	pingRecords map[uuid.UUID][]store.PingRecord

	recordLimit int32
}

func (f *fakePublicStore) VisibleClients(_ context.Context) ([]store.Client, error) {
	var visible []store.Client
	for _, c := range f.clients {
		if !c.Hidden {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

func (f *fakePublicStore) LatestRecord(_ context.Context, clientID uuid.UUID) (store.Record, error) {
	rec, ok := f.latest[clientID]
	if !ok {
		return store.Record{}, pgx.ErrNoRows
	}
	return rec, nil
}

func (f *fakePublicStore) RecentRecords(_ context.Context, clientID uuid.UUID, limit int32) ([]store.Record, error) {
	f.recordLimit = limit
	return f.records[clientID], nil
}

func (f *fakePublicStore) AllPingTasks(_ context.Context) ([]store.PingTask, error) {
	return f.tasks, nil
}

func (f *fakePublicStore) RecentPingRecords(_ context.Context, taskID uuid.UUID, limit int32) ([]store.PingRecord, error) {
	f.recordLimit = limit
	return f.pingRecords[taskID], nil
}

func setupPublicRouter(fake *fakePublicStore) *gin.Engine {
	h := NewPublicHandler(fake)
	r := gin.New()
	r.GET("/api/clients", h.Clients)
	r.GET("/api/nodes", h.Nodes)
	r.GET("/api/recent/:uuid", h.RecentRecords)
	r.GET("/api/ping", h.PingTasks)
	r.GET("/api/ping/:id/records", h.PingRecords)
	return r
}

func getJSON(t *testing.T, r *gin.Engine, path string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req, _ := http.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if out != nil && w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w
}

func TestClientsOmitsHidden(t *testing.T) {
	fake := &fakePublicStore{
		clients: []store.Client{
			{ID: uuid.New(), Name: "visible", Token: "vmoi_secret"},
			{ID: uuid.New(), Name: "secret-box", Hidden: true},
		},
		latest: map[uuid.UUID]store.Record{},
	}
	r := setupPublicRouter(fake)

	var resp dto.ClientsResponse
	w := getJSON(t, r, "/api/clients", &resp)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp.Clients, 1)
	assert.Equal(t, "visible", resp.Clients[0].Name)

	// The token must never appear anywhere in the public payload.
	assert.NotContains(t, w.Body.String(), "vmoi_secret")
	assert.NotContains(t, w.Body.String(), "token")
}

func TestClientsAttachesStatusOnlyWhenOnline(t *testing.T) {
	online := store.Client{ID: uuid.New(), Name: "up", Online: true}
	offline := store.Client{ID: uuid.New(), Name: "down", Online: false}

	fake := &fakePublicStore{
		clients: []store.Client{online, offline},
		latest: map[uuid.UUID]store.Record{
			online.ID:  {ClientID: online.ID, Cpu: 33, Uptime: 777},
			offline.ID: {ClientID: offline.ID, Cpu: 90, Uptime: 1},
		},
	}
	r := setupPublicRouter(fake)

	var resp dto.ClientsResponse
	getJSON(t, r, "/api/clients", &resp)

	require.Len(t, resp.Clients, 2)

	byName := map[string]dto.ClientWithStatus{}
	for _, c := range resp.Clients {
		byName[c.Name] = c
	}

	require.NotNil(t, byName["up"].Status)
	assert.Equal(t, float32(33), byName["up"].Status.Cpu)
	assert.Equal(t, int64(777), byName["up"].Status.Uptime)

	// Offline clients carry no stale status, even when records exist.
	assert.Nil(t, byName["down"].Status)
}

func TestClientsOnlineWithoutSamples(t *testing.T) {
	fake := &fakePublicStore{
		clients: []store.Client{{ID: uuid.New(), Name: "fresh", Online: true}},
		latest:  map[uuid.UUID]store.Record{},
	}
	r := setupPublicRouter(fake)

	var resp dto.ClientsResponse
	w := getJSON(t, r, "/api/clients", &resp)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp.Clients, 1)
	assert.Nil(t, resp.Clients[0].Status)
}

func TestNodes(t *testing.T) {
	fake := &fakePublicStore{
		clients: []store.Client{
			{ID: uuid.New(), Name: "a", GroupName: "eu", Online: true},
			{ID: uuid.New(), Name: "b", Hidden: true},
		},
	}
	r := setupPublicRouter(fake)

	var nodes []dto.NodeInfo
	getJSON(t, r, "/api/nodes", &nodes)

	require.Len(t, nodes, 1)
	assert.Equal(t, "a", nodes[0].Name)
	assert.Equal(t, "eu", nodes[0].Group)
	assert.True(t, nodes[0].Online)
}

func TestRecentRecords(t *testing.T) {
	clientID := uuid.New()
	fake := &fakePublicStore{
		records: map[uuid.UUID][]store.Record{
			clientID: {{ClientID: clientID, Cpu: 10}, {ClientID: clientID, Cpu: 20}},
		},
	}
	r := setupPublicRouter(fake)

	var records []store.Record
	w := getJSON(t, r, "/api/recent/"+clientID.String(), &records)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, records, 2)
	assert.Equal(t, int32(60), fake.recordLimit)
}

func TestRecentRecordsLimitQuery(t *testing.T) {
	clientID := uuid.New()
	fake := &fakePublicStore{records: map[uuid.UUID][]store.Record{}}
	r := setupPublicRouter(fake)

	getJSON(t, r, "/api/recent/"+clientID.String()+"?limit=5", nil)
	assert.Equal(t, int32(5), fake.recordLimit)

	// Nonsense limits fall back to the default.
	getJSON(t, r, "/api/recent/"+clientID.String()+"?limit=-3", nil)
	assert.Equal(t, int32(60), fake.recordLimit)
}

func TestRecentRecordsInvalidUUID(t *testing.T) {
	fake := &fakePublicStore{}
	r := setupPublicRouter(fake)

	w := getJSON(t, r, "/api/recent/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPingRecords(t *testing.T) {
	taskID := uuid.New()
	latency := float32(12.3)
	fake := &fakePublicStore{
		tasks: []store.PingTask{{ID: taskID, Name: "edge", Target: "example.com:443"}},
		pingRecords: map[uuid.UUID][]store.PingRecord{
			taskID: {{TaskID: taskID, LatencyMs: &latency, Success: true}},
		},
	}
	r := setupPublicRouter(fake)

	var tasks []store.PingTask
	getJSON(t, r, "/api/ping", &tasks)
	require.Len(t, tasks, 1)

	var records []store.PingRecord
	getJSON(t, r, "/api/ping/"+taskID.String()+"/records", &records)
	require.Len(t, records, 1)
	assert.True(t, records[0].Success)
}
