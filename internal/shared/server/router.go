package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"reception-backend/internal/audit"
	googleauth "reception-backend/internal/auth"
	"reception-backend/internal/cache"
	"reception-backend/internal/classify"
	"reception-backend/internal/documents"
	"reception-backend/internal/ingest"
	"reception-backend/internal/ocr"
	"reception-backend/internal/rasterize"
	"reception-backend/internal/review"
	"reception-backend/internal/shared/config"
	"reception-backend/internal/shared/metrics"
	"reception-backend/internal/shared/server/middleware"
	"reception-backend/internal/shared/server/respond"
	"reception-backend/internal/shared/storage/db"
	"reception-backend/internal/store"
	"reception-backend/internal/users"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	// Dependencies
	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(context.Background(), cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			log.Printf("failed to connect database, falling back to memory: %v", err)
		} else {
			if err := db.RunMigrations(context.Background(), dbConn); err != nil {
				log.Printf("failed to run migrations, falling back to memory: %v", err)
				dbConn = nil
			}
		}
		sqlDB = dbConn
	}

	var docRepo documents.Repo
	var actionsRepo review.ActionsRepo
	var userRepo users.Repo
	if sqlDB != nil {
		docRepo = &documents.PGRepo{DB: sqlDB}
		actionsRepo = &review.PGRepo{DB: sqlDB}
		userRepo = &users.PGRepo{DB: sqlDB}
	} else {
		docRepo = documents.NewMemoryRepo()
		actionsRepo = review.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
	}

	files := store.NewLocal(cfg.UploadDir)
	contentCache := cache.NewDiskCache(cfg.CacheDir, cfg.CacheTTL)
	renderer := &rasterize.PopplerRenderer{}
	raster := rasterize.NewAdapter(renderer, cfg.MaxPagesOCR, cfg.ImageMaxDim, cfg.PDFRasterDPI)
	engine := &ocr.TesseractEngine{Languages: cfg.OCRLanguages}
	pool := ocr.NewPool(engine, cfg.OCRWorkers)
	classifier := classify.New(classify.DefaultVocabulary())

	ingestSvc := ingest.NewService(contentCache, raster, pool, classifier, docRepo, files, cfg.ConfidenceThreshold, cfg.MaxTextExcerpt)
	ingestHandler := ingest.NewHandler(ingestSvc, cfg.MaxFilesPerReq, cfg.MaxUploadSize)

	reviewSvc := review.NewService(docRepo, actionsRepo)
	reviewHandler := review.NewHandler(reviewSvc)

	docHandler := documents.NewHandler(docRepo, files)

	userSvc := users.NewService(userRepo, cfg.AdminEmails)
	userHandler := users.NewHandler(userSvc)

	auditSvc := audit.NewService(docRepo, actionsRepo)
	auditHandler := audit.NewHandler(auditSvc)

	googleAuthSvc := googleauth.NewGoogleService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.UIRedirectURL, userSvc)

	uploadLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"UPLOAD": {Rate: float64(cfg.RateLimitPerMinute) / 60.0, Burst: cfg.RateLimitPerMinute},
		},
		DefaultGroup: "UPLOAD",
	})

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{
			"ok":                true,
			"database":          sqlDB != nil,
			"ocr_workers":       cfg.OCRWorkers,
			"cache_ttl_seconds": int64(contentCache.TTL().Seconds()),
		})
	})
	googleAuthSvc.RegisterRoutes(api)

	// Applicants upload without logging in; the rate limiter keys on client IP.
	public := api.Group("", uploadLimit)
	ingestHandler.RegisterRoutes(public)

	protected := api.Group("", middleware.Auth())
	userHandler.RegisterRoutes(protected)
	docHandler.RegisterRoutes(protected)
	reviewHandler.RegisterRoutes(protected)

	admin := protected.Group("/admin", middleware.RequireRole(string(users.RoleAdmin)))
	auditHandler.RegisterRoutes(admin)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
