// Command mikrotik-exporter polls MikroTik RouterOS devices over the
// management API and re-exposes their counters and gauges as a streamed
// Prometheus text feed on /metrics. Every request is a fresh, live poll
// of every configured target.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/laurivosandi/mikrotik-exporter/internal/config"
	"github.com/laurivosandi/mikrotik-exporter/internal/routeros"
	"github.com/laurivosandi/mikrotik-exporter/internal/web"
)

const shutdownGrace = 10 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file; falls back to environment variables when absent")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("mikrotik-exporter starting", "config", *configPath)

	cfg, err := config.Resolve(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"prefix", cfg.Prefix,
		"targets", len(cfg.Targets),
		"auth", cfg.BearerTokenEnv != "",
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	handler := web.New(cfg, func(cfg *config.Config) routeros.Dialer {
		return routeros.APIDialer{
			Username:    cfg.Device.Username,
			Password:    cfg.Device.Password(),
			DialTimeout: cfg.Device.DialTimeout,
		}
	})

	// Hot-reload: swap the active config when the file changes. Pure-env
	// deployments have no file to watch.
	if _, err := os.Stat(*configPath); err == nil {
		go func() {
			if err := config.Watch(ctx, *configPath, handler.UpdateConfig); err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler,
	}

	go func() {
		slog.Info("http server listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("mikrotik-exporter shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("forced shutdown with streams in flight", "err", err)
	}
}
