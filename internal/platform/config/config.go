// Package config loads IDIS configuration from the environment (with .env
// support) and exposes the small set of helpers services use to read
// optional values with defaults, mirroring the teacher's env-loading idiom.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config is the fully-decoded process configuration. Every field maps to an
// environment variable named in spec.md §6 plus the ambient ones needed by
// logging, HTTP, and the scheduled jobs.
type Config struct {
	DatabaseURL             string `env:"IDIS_DATABASE_URL,required"`
	DatabaseAdminURL        string `env:"IDIS_DATABASE_ADMIN_URL"`
	DatabaseMaxOpenConns    int    `env:"IDIS_DATABASE_MAX_OPEN_CONNS,default=10"`
	DatabaseMaxIdleConns    int    `env:"IDIS_DATABASE_MAX_IDLE_CONNS,default=5"`
	DatabaseConnMaxLifetime int    `env:"IDIS_DATABASE_CONN_MAX_LIFETIME_SECONDS,default=300"`
	DatabaseMigrateOnStart  bool   `env:"IDIS_DATABASE_MIGRATE_ON_START,default=true"`
	APIKeysJSON             string `env:"IDIS_API_KEYS_JSON"`
	AuditSink               string `env:"IDIS_AUDIT_SINK,default=postgres"` // "postgres" or "jsonl"
	AuditLogPath            string `env:"IDIS_AUDIT_LOG_PATH,default=./audit.jsonl"`
	BreakGlassSecret        string `env:"IDIS_BREAK_GLASS_SECRET,required"`
	JWTSecret               string `env:"IDIS_JWT_SECRET,required"`
	ServiceRegion           string `env:"IDIS_SERVICE_REGION"`
	RequireOTel             bool   `env:"IDIS_REQUIRE_OTEL,default=false"`
	OTelEnabled             bool   `env:"IDIS_OTEL_ENABLED,default=false"`
	// Neo4jURI gates internal/graph's ProjectionService: empty means graph
	// projection is unconfigured and every ProjectDeal/ProjectClaimSanad
	// call returns StatusSkipped (spec.md §4.6). A concrete Neo4j driver is
	// out of scope (spec.md §1), so a non-empty URI only selects the
	// in-memory graph.Store rather than dialing anywhere.
	Neo4jURI      string `env:"NEO4J_URI"`
	Neo4jUsername string `env:"NEO4J_USERNAME"`
	Neo4jPassword string `env:"NEO4J_PASSWORD"`

	LogLevel              string `env:"LOG_LEVEL,default=info"`
	LogFormat             string `env:"LOG_FORMAT,default=json"`
	HTTPAddr              string `env:"IDIS_HTTP_ADDR,default=:8080"`
	RedisURL              string `env:"IDIS_REDIS_URL"`
	RunAdvisoryLockPrefix int64  `env:"IDIS_RUN_ADVISORY_LOCK_PREFIX,default=734201"`

	// SchedulerEnabled gates the background cron jobs (retention sweep,
	// BYOK key-rotation reminder); disabled by default so tests and one-off
	// CLI invocations never start a ticking cron.Cron.
	SchedulerEnabled            bool   `env:"IDIS_SCHEDULER_ENABLED,default=false"`
	RetentionSweepCron          string `env:"IDIS_RETENTION_SWEEP_CRON,default=0 0 3 * * *"`
	BYOKRotationReminderCron    string `env:"IDIS_BYOK_ROTATION_REMINDER_CRON,default=0 0 4 * * *"`
	BYOKRotationReminderMaxDays int    `env:"IDIS_BYOK_ROTATION_REMINDER_MAX_DAYS,default=90"`
}

// Load reads a .env file if present (ignored when absent) then decodes the
// process environment into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	return &cfg, nil
}

// GetEnv returns the trimmed environment variable or the default.
func GetEnv(key, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvBool parses a boolean environment variable, defaulting when unset or
// unparseable. Accepts true/1/yes/y case-insensitively as true.
func GetEnvBool(key string, defaultValue bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return defaultValue
	}
	return v == "true" || v == "1" || v == "yes" || v == "y"
}

// GetEnvInt parses an integer environment variable, defaulting when unset or
// unparseable.
func GetEnvInt(key string, defaultValue int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// ParseDurationOrDefault parses a duration string, falling back to
// defaultDuration on empty or invalid input.
func ParseDurationOrDefault(raw string, defaultDuration time.Duration) time.Duration {
	if raw == "" {
		return defaultDuration
	}
	if parsed, err := time.ParseDuration(raw); err == nil {
		return parsed
	}
	return defaultDuration
}

// SplitAndTrimCSV splits a comma-separated string, trimming and dropping
// empty entries.
func SplitAndTrimCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
