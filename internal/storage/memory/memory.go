// Package memory is a thread-safe in-memory implementation of every
// internal/storage interface. It is intended for tests and local
// prototyping; it deliberately keeps each method simple rather than
// optimized, mirroring the teacher's in-memory storage layer.
package memory

import (
	"sort"
	"sync"

	"github.com/albarami/idis/internal/domain/calc"
	"github.com/albarami/idis/internal/domain/claim"
	"github.com/albarami/idis/internal/domain/deal"
	"github.com/albarami/idis/internal/domain/defect"
	"github.com/albarami/idis/internal/domain/document"
	"github.com/albarami/idis/internal/domain/evidence"
	"github.com/albarami/idis/internal/domain/run"
	"github.com/albarami/idis/internal/domain/sanad"
	"github.com/albarami/idis/internal/storage"
)

// Memory is the in-memory backing store for every entity. A single mutex
// guards all maps; this is simplicity over throughput, same tradeoff the
// teacher's Memory makes.
type Memory struct {
	mu sync.RWMutex

	deals        map[string]deal.Deal
	documents    map[string]document.Document
	spans        map[string]document.Span
	claims       map[string]claim.Claim
	evidence     map[string]evidence.Evidence
	sanads       map[string]sanad.Sanad
	sanadByClaim map[string]string
	defects      map[string]defect.Defect
	calcs        map[string]calc.DeterministicCalculation
	calcSanads   map[string]calc.CalcSanad
	runs         map[string]run.Run
}

// New creates an empty Memory store.
func New() *Memory {
	return &Memory{
		deals:        make(map[string]deal.Deal),
		documents:    make(map[string]document.Document),
		spans:        make(map[string]document.Span),
		claims:       make(map[string]claim.Claim),
		evidence:     make(map[string]evidence.Evidence),
		sanads:       make(map[string]sanad.Sanad),
		sanadByClaim: make(map[string]string),
		defects:      make(map[string]defect.Defect),
		calcs:        make(map[string]calc.DeterministicCalculation),
		calcSanads:   make(map[string]calc.CalcSanad),
		runs:         make(map[string]run.Run),
	}
}

var (
	_ storage.DealStore     = (*Memory)(nil)
	_ storage.DocumentStore = (*Memory)(nil)
	_ storage.ClaimStore    = (*Memory)(nil)
	_ storage.EvidenceStore = (*Memory)(nil)
	_ storage.SanadStore    = (*Memory)(nil)
	_ storage.DefectStore   = (*Memory)(nil)
	_ storage.CalcStore     = (*Memory)(nil)
	_ storage.RunStore      = (*Memory)(nil)
)

// sortedKeys returns m's keys sorted ascending, for deterministic iteration
// order wherever a list method needs one.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
