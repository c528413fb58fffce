package main

// Periodic maintenance: evicts expired cache entries and deletes stored
// uploads past the retention window.
//   go run ./cmd/sweeper

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reception-backend/internal/bootstrap"
	"reception-backend/internal/shared/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	defer app.Close()

	interval := app.Config.SweepInterval
	if interval <= 0 {
		interval = time.Hour
	}
	log.Printf("sweeper running every %s", interval)

	sweep(ctx, app)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("sweeper stopping")
			return
		case <-ticker.C:
			sweep(ctx, app)
		}
	}
}

func sweep(ctx context.Context, app *bootstrap.App) {
	now := time.Now().UTC()

	evicted, err := app.Cache.Sweep(ctx, now)
	if err != nil {
		telemetry.Error("sweeper.cache_failed", map[string]any{"error": err.Error()})
	}

	removed := 0
	if app.Config.MaxFileAge > 0 {
		removed, err = app.Files.RemoveOlderThan(ctx, now.Add(-app.Config.MaxFileAge))
		if err != nil {
			telemetry.Error("sweeper.files_failed", map[string]any{"error": err.Error()})
		}
	}

	telemetry.Info("sweeper.pass", map[string]any{
		"cache_evicted": evicted,
		"files_removed": removed,
	})
}
