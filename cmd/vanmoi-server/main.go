package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	internalhttp "github.com/vanmoi/vanmoi/internal/api/http"
	"github.com/vanmoi/vanmoi/internal/auth"
	"github.com/vanmoi/vanmoi/internal/db"
	"github.com/vanmoi/vanmoi/internal/liveness"
	"github.com/vanmoi/vanmoi/internal/notify"
	"github.com/vanmoi/vanmoi/internal/pings"
	"github.com/vanmoi/vanmoi/internal/records"
	"github.com/vanmoi/vanmoi/internal/store"
	"github.com/vanmoi/vanmoi/internal/ws"
)

var AppVersion string

func main() {
	InitConfig()

	slog.Info("Vanmoi Server", "version", AppVersion)

	if err := db.RunMigrations(config.Database.Url, config.Database.Schema); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// bgCtx drives every background worker; cancelling it is the first step
	// of shutdown.
	bgCtx, cancelBg := context.WithCancel(context.Background())
	defer cancelBg()

	pool, err := db.InitDB(bgCtx, config.Database.Url, config.Database.Schema)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	st := store.New(pool)

	sessionTTL := time.Duration(config.Auth.SessionTTLHours) * time.Hour
	authService := auth.NewService(st, sessionTTL)
	if err := authService.Bootstrap(bgCtx, config.Auth.BootstrapUsername, config.Auth.BootstrapPassword); err != nil {
		slog.Error("Failed to bootstrap admin user", "error", err)
		os.Exit(1)
	}

	tracker := liveness.NewTracker(st)
	notifier := notify.NewDispatcher()

	hub := ws.NewHub(st, tracker, func(ctx context.Context, client store.Client) {
		notifications, err := st.OfflineNotificationsForClient(ctx, client.ID)
		if err != nil {
			slog.Error("Failed to load offline notifications", "client_id", client.ID, "error", err)
			return
		}
		for _, n := range notifications {
			title := "Server Offline"
			message := fmt.Sprintf("%s went offline.", client.Name)
			if err := notifier.Send(ctx, n.Provider, n.Config, title, message); err != nil {
				slog.Error("Offline notification failed", "client_id", client.ID, "notification", n.Name, "error", err)
			}
		}
	})

	scheduler := pings.NewScheduler(st)
	go scheduler.Run(bgCtx)

	sweeper := records.NewSweeper(st, config.Records.RetentionDays)
	go sweeper.Run(bgCtx)

	services := &internalhttp.Services{
		Store:      st,
		Auth:       authService,
		Tracker:    tracker,
		Hub:        hub,
		Notifier:   notifier,
		SessionTTL: sessionTTL,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     config.Http.CORSOrigins,
		AllowMethods:     []string{"PUT", "PATCH", "GET", "POST", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(gin.Recovery())
	internalhttp.SetupRoute(engine, services)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Http.Port),
		Handler: engine,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		slog.Error("Server error", "error", err)
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig)
	}

	slog.Info("Shutting down...")
	cancelBg()

	var wg sync.WaitGroup
	shutdownTimeout := 10 * time.Second

	wg.Add(1)
	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		} else {
			slog.Info("HTTP server stopped")
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		// Closing the streams marks every connected client offline before
		// the process exits.
		hub.Shutdown()
	}()

	wg.Wait()
	slog.Info("Shutdown complete")
}
