package config

import (
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	DatabaseURL     string

	UploadDir      string
	CacheDir       string
	CacheTTL       time.Duration
	SweepInterval  time.Duration
	MaxFileAge     time.Duration
	MaxUploadSize  int64
	MaxFilesPerReq int

	OCRWorkers          int
	OCRLanguages        []string
	MaxPagesOCR         int
	MaxTextExcerpt      int
	ImageMaxDim         int
	ConfidenceThreshold float64
	PDFRasterDPI        int
	RateLimitPerMinute  int

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string
	AdminEmails        []string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:     dbURL,

		UploadDir:      getEnv("UPLOAD_DIR", "./data/uploads"),
		CacheDir:       getEnv("CACHE_DIR", "./data/cache"),
		CacheTTL:       getEnvDuration("CACHE_TTL", 7*24*time.Hour),
		SweepInterval:  getEnvDuration("SWEEP_INTERVAL", time.Hour),
		MaxFileAge:     getEnvDuration("MAX_FILE_AGE", 30*24*time.Hour),
		MaxUploadSize:  getEnvInt64("MAX_UPLOAD_SIZE", 50<<20),
		MaxFilesPerReq: getEnvInt("MAX_FILES_PER_UPLOAD", 20),

		OCRWorkers:          getEnvInt("OCR_WORKERS", defaultOCRWorkers()),
		OCRLanguages:        splitAndTrim(getEnv("OCR_LANGUAGES", "rus,kaz,eng")),
		MaxPagesOCR:         getEnvInt("MAX_PAGES_OCR", 10),
		MaxTextExcerpt:      getEnvInt("MAX_TEXT_EXCERPT", 5000),
		ImageMaxDim:         getEnvInt("IMAGE_MAX_DIM", 2000),
		ConfidenceThreshold: getEnvFloat("REVIEW_CONFIDENCE_THRESHOLD", 0.65),
		PDFRasterDPI:        getEnvInt("PDF_RASTER_DPI", 200),
		RateLimitPerMinute:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		UIRedirectURL:      getEnv("UI_REDIRECT_URL", ""),
		AdminEmails:        splitAndTrim(getEnv("ADMIN_EMAILS", "")),
	}
}

func defaultOCRWorkers() int {
	if n := runtime.NumCPU(); n < 4 {
		return n
	}
	return 4
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil && parsed >= 0 && parsed <= 1 {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}
