package systemtest

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	internalhttp "github.com/vanmoi/vanmoi/internal/api/http"
	"github.com/vanmoi/vanmoi/internal/auth"
	"github.com/vanmoi/vanmoi/internal/db"
	"github.com/vanmoi/vanmoi/internal/liveness"
	"github.com/vanmoi/vanmoi/internal/notify"
	"github.com/vanmoi/vanmoi/internal/store"
	"github.com/vanmoi/vanmoi/internal/ws"
	"github.com/vanmoi/vanmoi/systemtest/postgres"
	"github.com/vanmoi/vanmoi/systemtest/tests"
)

const (
	adminUsername = "admin"
	adminPassword = "changeme123"
)

func TestSystemIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping system test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.StartPostgres(ctx, "vanmoi", "vanmoi", "vanmoi")
	if err != nil {
		t.Skipf("skipping: could not start Postgres container (is Docker available?): %v", err)
	}
	t.Cleanup(func() {
		_ = postgres.TerminatePostgres(ctx, container)
	})

	dbURL, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, db.RunMigrations(dbURL, "public"))

	pool, err := db.InitDB(ctx, dbURL, "public")
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	st := store.New(pool)
	authService := auth.NewService(st, time.Hour)
	require.NoError(t, authService.Bootstrap(ctx, adminUsername, adminPassword))

	tracker := liveness.NewTracker(st)
	hub := ws.NewHub(st, tracker, nil)

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	internalhttp.SetupRoute(engine, &internalhttp.Services{
		Store:      st,
		Auth:       authService,
		Tracker:    tracker,
		Hub:        hub,
		Notifier:   notify.NewDispatcher(),
		SessionTTL: time.Hour,
	})

	adminToken := tests.Login(t, engine, adminUsername, adminPassword)

	t.Run("LoginFlow", func(t *testing.T) { tests.TestLoginFlow(t, engine, adminUsername, adminPassword) })
	t.Run("AgentLifecycle", func(t *testing.T) { tests.TestAgentLifecycle(t, engine, adminToken) })
	t.Run("Settings", func(t *testing.T) { tests.TestSettings(t, engine, adminToken) })
	t.Run("PingTasks", func(t *testing.T) { tests.TestPingTaskAdmin(t, engine, adminToken) })
	t.Run("Notifications", func(t *testing.T) { tests.TestNotificationAdmin(t, engine, adminToken) })
	t.Run("PasswordChange", func(t *testing.T) { tests.TestPasswordChange(t, engine, adminUsername, adminPassword) })

	// Last: it revokes every session including adminToken's.
	t.Run("SessionManagement", func(t *testing.T) { tests.TestSessionManagement(t, engine, adminUsername, adminPassword) })
}
