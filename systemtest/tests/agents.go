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

// TestAgentLifecycle walks the full agent path: register, upload inventory,
// report a sample, and verify what the public and admin surfaces show.
func TestAgentLifecycle(t *testing.T, router *gin.Engine, adminToken string) {
	var agent dto.RegisterResponse

	t.Run("register", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/agent/register", "", dto.RegisterRequest{Name: "sys-node"})
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &agent))
		assert.Equal(t, "vmoi_", agent.Token[:5])
		assert.NotEmpty(t, agent.UUID)
	})

	t.Run("upload info", func(t *testing.T) {
		ipv4 := "198.51.100.10"
		w := doJSON(router, "POST", "/api/agent/info", agent.Token, dto.BasicInfoRequest{
			CpuName:  "Xeon E5-2680",
			Arch:     "x86_64",
			CpuCores: 16,
			OS:       "ubuntu 24.04",
			MemTotal: 32 << 30,
			IPv4:     &ipv4,
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("report sample", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/agent/report", agent.Token, store.RecordInput{
			Cpu:      21.5,
			Ram:      8 << 30,
			RamTotal: 32 << 30,
			Uptime:   86400,
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("public listing shows the client online", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/clients", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.ClientsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		var found *dto.ClientWithStatus
		for i := range resp.Clients {
			if resp.Clients[i].ID == agent.UUID {
				found = &resp.Clients[i]
			}
		}
		require.NotNil(t, found)
		assert.True(t, found.Online)
		assert.Equal(t, "Xeon E5-2680", found.CpuName)
		require.NotNil(t, found.Status)
		assert.Equal(t, float32(21.5), found.Status.Cpu)

		// Credentials stay server-side.
		assert.NotContains(t, w.Body.String(), agent.Token)
	})

	t.Run("recent records", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/recent/"+agent.UUID, "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var records []store.Record
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
		require.NotEmpty(t, records)
		assert.Equal(t, float32(21.5), records[0].Cpu)
	})

	t.Run("bad token rejected", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/agent/report", "vmoi_bogus", store.RecordInput{Cpu: 1})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("admin can read the token back", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/admin/clients/"+agent.UUID+"/token", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.ClientTokenResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, agent.Token, resp.Token)
	})

	t.Run("hidden client leaves the public listing", func(t *testing.T) {
		hidden := true
		w := doJSON(router, "PUT", "/api/admin/clients/"+agent.UUID, adminToken, dto.EditClientRequest{Hidden: &hidden})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(router, "GET", "/api/clients", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.ClientsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		for _, c := range resp.Clients {
			assert.NotEqual(t, agent.UUID, c.ID)
		}

		// Still visible to the operator.
		w = doJSON(router, "GET", "/api/admin/clients/"+agent.UUID, adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w := doJSON(router, "DELETE", "/api/admin/clients/"+agent.UUID, adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(router, "GET", "/api/admin/clients/"+agent.UUID, adminToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		// The orphaned token no longer authenticates.
		w = doJSON(router, "POST", "/api/agent/report", agent.Token, store.RecordInput{Cpu: 1})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
