package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanmoi/vanmoi/internal/api/http/dto"
)

func TestRegister(t *testing.T) {
	var gotName string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/agent/register", r.URL.Path)
		var req dto.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotName = req.Name
		_ = json.NewEncoder(w).Encode(dto.RegisterResponse{UUID: "u-1", Token: "vmoi_abc"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	resp, err := c.Register(context.Background(), "node-1")
	require.NoError(t, err)

	assert.Equal(t, "node-1", gotName)
	assert.Equal(t, "vmoi_abc", resp.Token)
}

func TestUploadBasicInfoSendsBearer(t *testing.T) {
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/agent/info", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"status":"ok"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "vmoi_abc")
	err := c.UploadBasicInfo(context.Background(), dto.BasicInfoRequest{CpuName: "test"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer vmoi_abc", gotAuth)
}

func TestClientSurfacesServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"UNAUTHORIZED","message":"Authentication required"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "vmoi_wrong")
	err := c.UploadBasicInfo(context.Background(), dto.BasicInfoRequest{})

	assert.ErrorContains(t, err, "status 401")
}

func TestStreamURL(t *testing.T) {
	r := NewReporter("http://example.com:8080", "tok", nil, 0)
	assert.Equal(t, "ws://example.com:8080/api/agent/ws", r.streamURL())

	r = NewReporter("https://monitor.example.com", "tok", nil, 0)
	assert.Equal(t, "wss://monitor.example.com/api/agent/ws", r.streamURL())
}
