package audit

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/albarami/idis/internal/domain/audit"
	"github.com/albarami/idis/internal/platform/canonjson"
	"github.com/rs/zerolog"
)

// JSONLSink appends one canonical-JSON object per line to an append-only
// file handle, fsync'ing before returning success (spec.md §4.5 step 3,
// §5 "Shared-resource policy"). The canonical line itself always comes from
// internal/platform/canonjson, the single choke point for hashable/auditable
// JSON; a dedicated zerolog logger reports sink-lifecycle problems (open/
// sync failures) to stderr, kept distinct from both the audit content and
// the operational logrus logger (internal/platform/logging).
type JSONLSink struct {
	mu       sync.Mutex
	file     *os.File
	opLogger zerolog.Logger
}

// NewJSONLSink opens (creating if necessary) the append-only audit log file
// at path.
func NewJSONLSink(path string) (*JSONLSink, error) {
	opLogger := zerolog.New(os.Stderr).With().Str("component", "audit.jsonl_sink").Logger()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		opLogger.Error().Err(err).Str("path", path).Msg("failed to open audit log")
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return &JSONLSink{
		file:     f,
		opLogger: opLogger,
	}, nil
}

// Name identifies this sink for metrics labels.
func (s *JSONLSink) Name() string { return "jsonl" }

// Emit writes ev as one canonical-JSON line terminated by \n, fsync'ing
// before returning.
func (s *JSONLSink) Emit(_ context.Context, ev audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, err := canonjson.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	line = append(line, '\n')
	if _, err := s.file.Write(line); err != nil {
		return fmt.Errorf("write audit event: %w", err)
	}
	return s.file.Sync()
}

// Close releases the underlying file handle.
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

var _ Sink = (*JSONLSink)(nil)
