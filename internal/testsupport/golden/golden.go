// Package golden loads fixture decks from disk and compares computed
// results against checked-in golden files, the Go-native counterpart to
// the original implementation's GDBS (Golden Dataset Behavior Suite)
// fixture loader (idis/testing/gdbs_loader.py): fail-closed, no
// placeholders, no silently-passing missing files.
package golden

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var update = flag.Bool("update", false, "rewrite golden files with the current actual output")

// LoadError reports a fixture file that is missing, unreadable, or not
// valid JSON. The grader/calc-engine regression suites fail closed on any
// of these, same as GDBSLoader.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("golden: load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads path (relative to the caller's package, conventionally under
// testdata/) and unmarshals it into v. It never tolerates a missing file:
// a deck with an absent fixture is a defect in the deck, not a skip.
func Load(path string, v interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &LoadError{Path: path, Err: err}
	}
	return nil
}

// MustLoad is Load, failing the test immediately on any error. Used by
// table-driven fixture decks where a malformed fixture is a test-setup bug,
// not a case to report as a failure of the thing under test.
func MustLoad(t *testing.T, path string, v interface{}) {
	t.Helper()
	require.NoError(t, Load(path, v), "load fixture %s", path)
}

// Compare checks actual (already canonicalized by the caller, e.g. via
// internal/platform/canonjson) against the golden file at path. With
// -update, it rewrites the golden file instead of comparing, the standard
// Go golden-file idiom; without it, a mismatch fails the test with both
// values shown via testify so a diff is visible in CI output.
func Compare(t *testing.T, path string, actual []byte) {
	t.Helper()
	if *update {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, actual, 0o644))
		return
	}
	expected, err := os.ReadFile(path)
	require.NoError(t, err, "golden file %s missing (run with -update to create it)", path)
	require.JSONEq(t, string(expected), string(actual), "golden file %s does not match actual output", path)
}
