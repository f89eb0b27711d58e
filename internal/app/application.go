// Package app wires IDIS's storage, audit, graph, deliverable, security, and
// orchestration layers into one Application, following the teacher's
// internal/app/application.go Stores/applyDefaults composition pattern and
// internal/app/runtime/application.go's NewApplication/Run/Shutdown
// lifecycle.
package app

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"

	"github.com/albarami/idis/internal/audit"
	"github.com/albarami/idis/internal/deliverable"
	"github.com/albarami/idis/internal/domain/run"
	"github.com/albarami/idis/internal/graph"
	"github.com/albarami/idis/internal/idempotency"
	"github.com/albarami/idis/internal/orchestrator"
	"github.com/albarami/idis/internal/platform/config"
	"github.com/albarami/idis/internal/platform/logging"
	"github.com/albarami/idis/internal/platform/migrations"
	"github.com/albarami/idis/internal/security"
	"github.com/albarami/idis/internal/storage"
	"github.com/albarami/idis/internal/storage/postgres"
)

// Application is the fully-wired process: every entity store, the audit
// pipeline, the graph projection service, the deliverable exporter, the
// bearer-token authenticator, and the idempotency cache, all sharing one
// *sql.DB. Orchestrator is attached separately via AttachOrchestrator once
// the caller has built its step table, since most steps close over the
// Application itself.
type Application struct {
	Config       *config.Config
	Log          *logging.Logger
	Stores       storage.Stores
	Auditor      *audit.Pipeline
	Graph        *graph.ProjectionService
	Deliverable  *deliverable.Exporter
	Auth         *security.TokenAuthenticator
	Access       *postgres.AccessStore
	Idempotency  idempotency.Store
	Orchestrator *orchestrator.Orchestrator

	db        *sql.DB
	jsonlSink *audit.JSONLSink
}

// New connects to Postgres, applies pending migrations (if configured),
// and wires every layer above storage. The returned Application has no
// Orchestrator yet; call AttachOrchestrator before serving traffic.
func New(cfg *config.Config, log *logging.Logger) (*Application, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	configurePool(db, cfg)

	if cfg.DatabaseMigrateOnStart {
		if err := migrations.Apply(cfg.DatabaseURL); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
	}

	store := postgres.New(db)
	stores := storage.Stores{
		Deal:        store,
		Document:    store,
		Claim:       store,
		Evidence:    store,
		Sanad:       store,
		Defect:      store,
		Calc:        store,
		Run:         store,
		Deliverable: store,
		LegalHold:   postgres.NewHoldStore(db),
		BYOKKeys:    postgres.NewKeyStore(db),
	}

	sink, jsonlSink, err := buildAuditSink(cfg, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("configure audit sink: %w", err)
	}
	auditor := audit.NewPipeline(sink)

	// A concrete Neo4j driver is out of scope (spec.md §1): a non-empty
	// NEO4J_URI only selects the in-memory graph.Store, so the SKIPPED /
	// COMPLETED / FAILED / AUDIT_FAILURE state machine (spec.md §4.6) is
	// exercised without a live graph database.
	var graphStore graph.Store
	if cfg.Neo4jURI != "" {
		graphStore = graph.NewMemory()
	}

	return &Application{
		Config:      cfg,
		Log:         log,
		Stores:      stores,
		Auditor:     auditor,
		Graph:       graph.NewProjectionService(graphStore, auditor),
		Deliverable: deliverable.NewExporter(),
		Auth:        security.NewTokenAuthenticator(cfg.JWTSecret),
		Access:      postgres.NewAccessStore(db),
		Idempotency: buildIdempotencyStore(cfg),
		db:          db,
		jsonlSink:   jsonlSink,
	}, nil
}

// AttachOrchestrator builds the run orchestrator from steps and attaches it.
// steps must provide an entry for every run.StepName that run.StepsFor can
// produce for the modes this deployment serves.
func (a *Application) AttachOrchestrator(steps map[run.StepName]orchestrator.StepFn) {
	a.Orchestrator = orchestrator.New(runStoreAdapter{a.Stores.Run}, a.Auditor, steps, a.Log)
}

// Close releases the database connection and any sink file handles.
func (a *Application) Close() error {
	if a.jsonlSink != nil {
		_ = a.jsonlSink.Close()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func configurePool(db *sql.DB, cfg *config.Config) {
	if cfg.DatabaseMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
	}
	if cfg.DatabaseMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)
	}
	if cfg.DatabaseConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.DatabaseConnMaxLifetime) * time.Second)
	}
}

// buildAuditSink returns the configured audit.Sink; jsonlSink is non-nil
// only when the JSONL sink was chosen, so Close can release its file handle.
func buildAuditSink(cfg *config.Config, db *sql.DB) (audit.Sink, *audit.JSONLSink, error) {
	switch cfg.AuditSink {
	case "jsonl":
		sink, err := audit.NewJSONLSink(cfg.AuditLogPath)
		if err != nil {
			return nil, nil, err
		}
		return sink, sink, nil
	case "postgres", "":
		return audit.NewPostgresSink(db), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported audit sink %q", cfg.AuditSink)
	}
}

func buildIdempotencyStore(cfg *config.Config) idempotency.Store {
	if cfg.RedisURL == "" {
		return idempotency.NewMemoryStore()
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return idempotency.NewMemoryStore()
	}
	return idempotency.NewRedisStore(redis.NewClient(opts))
}

// runStoreAdapter satisfies orchestrator.Store with storage.RunStore's
// superset of methods.
type runStoreAdapter struct {
	storage.RunStore
}

var _ orchestrator.Store = runStoreAdapter{}
