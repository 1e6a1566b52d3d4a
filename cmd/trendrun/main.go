// Command trendrun executes one trend pipeline run and exits non-zero when the run aborts.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/trendlens/backend/config"
	"github.com/trendlens/backend/internal/app"
	"github.com/trendlens/backend/internal/platform/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Error("failed to wire trend pipeline", "error", err)
		return 1
	}
	defer application.Close()

	report, runErr := application.Trends.Run(ctx)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Warn("failed to print run report", "error", err)
	}

	if runErr != nil {
		log.Error("trend run aborted", "error", runErr)
		return 1
	}
	return 0
}
