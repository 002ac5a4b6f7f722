package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ceetaro/suitkaise/internal/logger"
	"github.com/ceetaro/suitkaise/internal/telemetry"
	"github.com/ceetaro/suitkaise/pkg/metrics"
	"github.com/ceetaro/suitkaise/pkg/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the debug HTTP surface (/healthz, /metrics, /trace)",
	Long: `Starts an HTTP server exposing a liveness probe, Prometheus
metrics (when enabled in config), and a /trace SSE feed of verbose
dispatcher walk events. Runs until interrupted.

Example:
  suitkaise serve --config suitkaise.yaml`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "suitkaise",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	shutdownProfiling, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "suitkaise",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("init profiling: %w", err)
	}
	defer func() {
		if err := shutdownProfiling(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	srv := server.New(server.Config{
		Port:            cfg.Server.Port,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return srv.Start(ctx)
}
