package migrations

import (
	"regexp"
	"strings"
	"testing"
)

func TestEmbeddedMigrationsAreVersionedPairs(t *testing.T) {
	entries, err := files.ReadDir(".")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}

	versionRe := regexp.MustCompile(`^(\d+)_[a-z_]+\.(up|down)\.sql$`)
	versions := map[string]map[string]bool{}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		m := versionRe.FindStringSubmatch(name)
		if m == nil {
			t.Fatalf("migration file %q does not match golang-migrate naming convention", name)
		}
		version := m[1]
		direction := m[2]
		if versions[version] == nil {
			versions[version] = map[string]bool{}
		}
		versions[version][direction] = true
	}

	if len(versions) == 0 {
		t.Fatal("expected at least one migration")
	}
	for version, directions := range versions {
		if !directions["up"] || !directions["down"] {
			t.Errorf("migration version %s missing its up or down file", version)
		}
	}
}

func TestEmbeddedMigrationsAreNonEmpty(t *testing.T) {
	entries, err := files.ReadDir(".")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		b, err := files.ReadFile(entry.Name())
		if err != nil {
			t.Fatalf("read %s: %v", entry.Name(), err)
		}
		if len(strings.TrimSpace(string(b))) == 0 {
			t.Errorf("migration %s is empty", entry.Name())
		}
	}
}
