// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
)

// DefaultMaxBodyBytes caps request bodies when MAX_BODY_BYTES is unset.
const DefaultMaxBodyBytes int64 = 10 << 20

// DefaultInterchangeRPS is the sustained rate of import and file export requests.
const DefaultInterchangeRPS = 1.0

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// LogFormat selects the log handler: json (default) or text.
	LogFormat string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// ExportDir receives ServiceRecords.csv and the ExportedImages folder.
	ExportDir string

	// ImageMirrorDir is an optional second directory searched for photos
	// named by imported rows, such as a cloud-synced copy of ExportDir.
	ImageMirrorDir string

	// ImportMode is the default parse mode for imports.
	ImportMode domain.ParseMode

	// DisplayLocation is the time zone used to render and parse calendar dates.
	DisplayLocation *time.Location

	// MaxBodyBytes limits request body size.
	MaxBodyBytes int64

	// MigrateOnStart applies pending goose migrations before serving.
	MigrateOnStart bool

	// InterchangeRPS limits POST /import and POST /export/files, in requests per second.
	InterchangeRPS float64
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or the
// first variable whose value cannot be parsed.
func Load() (Config, error) {
	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		CORSOrigins:    splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		ExportDir:      getEnv("EXPORT_DIR", "./data/export"),
		ImageMirrorDir: os.Getenv("IMAGE_MIRROR_DIR"),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	switch cfg.LogFormat {
	case "json", "text":
	default:
		return Config{}, fmt.Errorf("LOG_FORMAT: must be json or text, got %q", cfg.LogFormat)
	}

	mode, err := domain.ParseParseMode(os.Getenv("IMPORT_MODE"))
	if err != nil {
		return Config{}, fmt.Errorf("IMPORT_MODE: %w", err)
	}
	cfg.ImportMode = mode

	loc, err := time.LoadLocation(getEnv("DISPLAY_TZ", "Local"))
	if err != nil {
		return Config{}, fmt.Errorf("DISPLAY_TZ: %w", err)
	}
	cfg.DisplayLocation = loc

	cfg.MaxBodyBytes = DefaultMaxBodyBytes
	if v := os.Getenv("MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("MAX_BODY_BYTES: must be a positive integer, got %q", v)
		}
		cfg.MaxBodyBytes = n
	}

	cfg.InterchangeRPS = DefaultInterchangeRPS
	if v := os.Getenv("INTERCHANGE_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return Config{}, fmt.Errorf("INTERCHANGE_RPS: must be a positive number, got %q", v)
		}
		cfg.InterchangeRPS = f
	}

	if v := os.Getenv("MIGRATE_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("MIGRATE_ON_START: %w", err)
		}
		cfg.MigrateOnStart = b
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
