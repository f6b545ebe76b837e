package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vanmoi/vanmoi/internal/agent"
)

var AppVersion string

func main() {
	InitConfig()

	slog.Info("Vanmoi Agent", "version", AppVersion, "server", config.Server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token, err := resolveToken(ctx)
	if err != nil {
		slog.Error("Failed to obtain agent token", "error", err)
		os.Exit(1)
	}

	collector := agent.NewCollector()
	client := agent.NewClient(config.Server.URL, token)

	if err := client.UploadBasicInfo(ctx, collector.BasicInfo(AppVersion)); err != nil {
		// The stream still carries samples; inventory refresh can wait for
		// the next restart.
		slog.Warn("Failed to upload host info", "error", err)
	}

	interval := time.Duration(config.Agent.IntervalSeconds) * time.Second
	reporter := agent.NewReporter(config.Server.URL, token, collector, interval)
	go reporter.Run(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	slog.Info("Received shutdown signal", "signal", sig)

	cancel()
	slog.Info("Shutdown complete")
}

// resolveToken prefers the configured token, then the persisted one, and
// finally registers a fresh identity and saves the issued credential.
func resolveToken(ctx context.Context) (string, error) {
	if config.Server.Token != "" {
		return config.Server.Token, nil
	}

	if data, err := os.ReadFile(config.Agent.TokenFile); err == nil {
		if token := strings.TrimSpace(string(data)); token != "" {
			return token, nil
		}
	}

	client := agent.NewClient(config.Server.URL, "")
	resp, err := client.Register(ctx, config.Agent.Name)
	if err != nil {
		return "", err
	}

	slog.Info("Registered new agent", "uuid", resp.UUID)

	if err := os.WriteFile(config.Agent.TokenFile, []byte(resp.Token+"\n"), 0o600); err != nil {
		slog.Warn("Failed to persist agent token", "path", config.Agent.TokenFile, "error", err)
	}

	return resp.Token, nil
}
