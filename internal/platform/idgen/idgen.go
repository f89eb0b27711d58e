// Package idgen mints entity identifiers. All IDIS identifiers are UUIDs
// rendered lowercase (spec.md §3); this wrapper defends entities that may
// receive an externally supplied ID by normalizing it the same way.
package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// New mints a fresh lowercase UUID string.
func New() string {
	return uuid.NewString()
}

// Normalize lowercases and trims an externally supplied ID. It does not
// validate UUID shape; callers that require a valid UUID should parse with
// uuid.Parse first.
func Normalize(id string) string {
	return normalizeCase(strings.TrimSpace(id))
}

func normalizeCase(id string) string {
	out := make([]byte, len(id))
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c >= 'A' && c <= 'Z' {
			c = c - 'A' + 'a'
		}
		out[i] = c
	}
	return string(out)
}
