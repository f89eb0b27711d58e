// Package logging provides structured, trace-aware logging built on logrus.
// This is operational telemetry only — it is never the compliance record;
// see internal/audit for the fail-closed AuditEvent pipeline.
package logging

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ContextKey is the type used for context values carried by this package.
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	TenantIDKey  ContextKey = "tenant_id"
	ActorIDKey   ContextKey = "actor_id"
)

// Logger wraps logrus.Logger with IDIS-specific context propagation.
type Logger struct {
	*logrus.Logger
	service string
}

// New builds a Logger with an explicit level and format ("json" or "text").
func New(service, level, format string) *Logger {
	logger := logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{TimestampFormat: time.RFC3339, FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}
	logger.SetOutput(os.Stdout)

	return &Logger{Logger: logger, service: service}
}

// NewFromEnv builds a Logger using LOG_LEVEL/LOG_FORMAT, defaulting to
// info/json.
func NewFromEnv(service string) *Logger {
	level := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if level == "" {
		level = "info"
	}
	format := strings.TrimSpace(os.Getenv("LOG_FORMAT"))
	if format == "" {
		format = "json"
	}
	return New(service, level, format)
}

// WithContext returns a logrus.Entry enriched with request/tenant/actor IDs
// carried on ctx, when present.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := l.Logger.WithField("service", l.service)
	if v, ok := ctx.Value(RequestIDKey).(string); ok && v != "" {
		entry = entry.WithField("request_id", v)
	}
	if v, ok := ctx.Value(TenantIDKey).(string); ok && v != "" {
		entry = entry.WithField("tenant_id", v)
	}
	if v, ok := ctx.Value(ActorIDKey).(string); ok && v != "" {
		entry = entry.WithField("actor_id", v)
	}
	return entry
}

// WithFields returns an entry with the service tag plus the supplied fields.
func (l *Logger) WithFields(fields map[string]interface{}) *logrus.Entry {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["service"] = l.service
	return l.Logger.WithFields(fields)
}

// WithError returns an entry tagging the given error.
func (l *Logger) WithError(err error) *logrus.Entry {
	return l.Logger.WithFields(logrus.Fields{"service": l.service, "error": err.Error()})
}

// LogAudit emits an operational log line mirroring an audited action. It is
// deliberately distinct from the append-only AuditEvent sink: this line can
// be dropped, sampled, or lost without affecting compliance guarantees.
func (l *Logger) LogAudit(ctx context.Context, eventType, resourceType, resourceID string) {
	l.WithContext(ctx).WithFields(logrus.Fields{
		"event_type":    eventType,
		"resource_type": resourceType,
		"resource_id":   resourceID,
		"audit":         true,
	}).Info("audit event recorded")
}

// LogSecurityEvent tags a security-relevant log line (policy denial,
// break-glass, BYOK state change) at Warn level.
func (l *Logger) LogSecurityEvent(ctx context.Context, kind string, fields map[string]interface{}) {
	f := logrus.Fields{"security_event": kind}
	for k, v := range fields {
		f[k] = v
	}
	l.WithContext(ctx).WithFields(f).Warn("security event")
}

// NewRequestID mints a fresh lowercase UUID for request correlation.
func NewRequestID() string {
	return uuid.New().String()
}

// WithRequestID attaches a request ID to ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// GetRequestID extracts the request ID from ctx, if any.
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(RequestIDKey).(string)
	return v
}

// WithTenantID attaches a tenant ID to ctx.
func WithTenantID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, TenantIDKey, id)
}

// GetTenantID extracts the tenant ID from ctx, if any.
func GetTenantID(ctx context.Context) string {
	v, _ := ctx.Value(TenantIDKey).(string)
	return v
}

// WithActorID attaches an actor ID to ctx.
func WithActorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ActorIDKey, id)
}

// GetActorID extracts the actor ID from ctx, if any.
func GetActorID(ctx context.Context) string {
	v, _ := ctx.Value(ActorIDKey).(string)
	return v
}

var defaultLogger *Logger

// InitDefault initializes the process-wide default logger.
func InitDefault(service, level, format string) {
	defaultLogger = New(service, level, format)
}

// Default returns the process-wide logger, initializing a fallback if needed.
func Default() *Logger {
	if defaultLogger == nil {
		defaultLogger = New("idis", "info", "json")
	}
	return defaultLogger
}
