package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	ModeAuthenticated = "authenticated"
	ModeAnonymous     = "anonymous"
)

type Config struct {
	// Application
	AppName     string
	AppEnv      string
	AppURL      string
	Port        string
	ContentPath string

	// Gallery
	GalleryMode   string // "authenticated" or "anonymous"
	UploadMaxSize int64

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret               string
	JWTExpiry               time.Duration
	SessionRefreshWindow    time.Duration
	AuthConfirmEmail        bool
	AuthMinPasswordLength   int
	TokenEmailConfirmExpiry time.Duration

	// Email
	EmailFrom    string
	ResendAPIKey string

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, DigitalOcean Spaces, etc.)
	StorageDriver string // "s3" or "minio"
	S3Region      string
	S3Bucket      string
	S3AccessKey   string
	S3SecretKey   string
	S3Endpoint    string // Optional: for S3-compatible services (MinIO, DO Spaces, R2, etc.)
	S3UseSSL      bool   // minio driver only
	S3PublicURL   string // Optional: base URL images are served from
	S3Timeout     time.Duration
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:     envString("APP_NAME", "Gallery"),
		AppEnv:      envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:      envRequired("APP_URL"), // Required: base URL for email links
		Port:        envString("PORT", "8090"),
		ContentPath: envString("CONTENT_PATH", "content"),

		// Gallery
		GalleryMode:   envString("GALLERY_MODE", ModeAuthenticated),
		UploadMaxSize: envInt64("UPLOAD_MAX_SIZE", 10<<20), // 10MB

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/gallery.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Security
		JWTSecret:               envRequired("JWT_SECRET"),
		JWTExpiry:               envDuration("JWT_EXPIRY", 168*time.Hour),            // 7 days
		SessionRefreshWindow:    envDuration("SESSION_REFRESH_WINDOW", 24*time.Hour), // refresh when less than a day is left
		AuthConfirmEmail:        envBool("AUTH_CONFIRM_EMAIL", envString("APP_ENV", "development") == "production"),
		AuthMinPasswordLength:   int(envInt64("AUTH_MIN_PASSWORD_LENGTH", 6)),
		TokenEmailConfirmExpiry: envDuration("TOKEN_EMAIL_CONFIRM_EXPIRY", 24*time.Hour),

		// Email (RESEND_API_KEY optional in development, required in production)
		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage
		StorageDriver: envString("STORAGE_DRIVER", "s3"),
		S3Region:      envRequired("S3_REGION"),
		S3Bucket:      envRequired("S3_BUCKET"),
		S3AccessKey:   envRequired("S3_ACCESS_KEY"),
		S3SecretKey:   envRequired("S3_SECRET_KEY"),
		S3Endpoint:    envString("S3_ENDPOINT", ""),
		S3UseSSL:      envBool("S3_USE_SSL", false),
		S3PublicURL:   envString("S3_PUBLIC_URL", ""),
		S3Timeout:     envDuration("S3_TIMEOUT", 30*time.Second),
	}

	if cfg.GalleryMode != ModeAuthenticated && cfg.GalleryMode != ModeAnonymous {
		slog.Error("invalid GALLERY_MODE", "value", cfg.GalleryMode, "hint", "use 'authenticated' or 'anonymous'")
		os.Exit(1)
	}

	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures all required services are configured for production deployments.
// Development allows email to run in log mode for easier local testing.
func validateProduction(cfg *Config) {
	if cfg.AuthConfirmEmail && cfg.ResendAPIKey == "" {
		slog.Error("production deployment with email confirmation requires RESEND_API_KEY",
			"hint", "set AUTH_CONFIRM_EMAIL=false or APP_ENV=development for local testing")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		slog.Warn("config invalid integer, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) IsAnonymous() bool {
	return c.GalleryMode == ModeAnonymous
}

// Sanitized returns a copy of the config with only public/safe fields.
// Safe to expose in ctx, templates and client-facing contexts.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:       c.AppName,
		AppEnv:        c.AppEnv,
		AppURL:        c.AppURL,
		Port:          c.Port,
		GalleryMode:   c.GalleryMode,
		UploadMaxSize: c.UploadMaxSize,
		EmailFrom:     c.EmailFrom,
		S3Endpoint:    c.S3Endpoint,  // Needed for CSP policies
		S3PublicURL:   c.S3PublicURL, // Needed for CSP policies
	}
}
