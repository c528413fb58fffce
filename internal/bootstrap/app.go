package bootstrap

import (
	"context"
	"database/sql"
	"log"

	"reception-backend/internal/cache"
	"reception-backend/internal/shared/config"
	"reception-backend/internal/shared/storage/db"
	"reception-backend/internal/store"
)

// App holds the shared dependencies for the maintenance binaries.
type App struct {
	Config config.Config
	DB     *sql.DB
	Cache  *cache.DiskCache
	Files  *store.Local
}

// NewApp loads configuration and wires storage. The database is optional;
// maintenance tasks that only touch the filesystem run without it.
func NewApp(ctx context.Context) (*App, error) {
	cfg := config.Load()

	app := &App{
		Config: cfg,
		Cache:  cache.NewDiskCache(cfg.CacheDir, cfg.CacheTTL),
		Files:  store.NewLocal(cfg.UploadDir),
	}

	if cfg.DatabaseURL != "" {
		sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			log.Printf("database unavailable, continuing without it: %v", err)
		} else {
			app.DB = sqlDB
		}
	}
	return app, nil
}

// Close releases held resources.
func (a *App) Close() {
	if a.DB != nil {
		_ = a.DB.Close()
	}
}
