package graph

import (
	"context"
	"sync"
)

type nodeKey struct {
	tenantID string
	label    NodeLabel
	id       string
}

type edgeKey struct {
	tenantID string
	typ      EdgeType
	from     string
	to       string
}

// Memory is an in-memory Store, standing in for a concrete Neo4j driver
// (out of scope, spec.md §1). It is the Store this repo's tests and the
// local/dev deployment profile use.
type Memory struct {
	mu    sync.RWMutex
	nodes map[nodeKey]Node
	edges map[edgeKey]Edge
}

var _ Store = (*Memory)(nil)

// NewMemory builds an empty in-memory graph store.
func NewMemory() *Memory {
	return &Memory{nodes: map[nodeKey]Node{}, edges: map[edgeKey]Edge{}}
}

func (m *Memory) UpsertNode(_ context.Context, n Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes[nodeKey{tenantID: n.TenantID, label: n.Label, id: n.ID}] = n
	return nil
}

func (m *Memory) UpsertEdge(_ context.Context, e Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges[edgeKey{tenantID: e.TenantID, typ: e.Type, from: e.FromID, to: e.ToID}] = e
	return nil
}

// Node returns the upserted node for (tenantID, label, id), for tests.
func (m *Memory) Node(tenantID string, label NodeLabel, id string) (Node, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[nodeKey{tenantID: tenantID, label: label, id: id}]
	return n, ok
}

// HasEdge reports whether the given edge was upserted, for tests.
func (m *Memory) HasEdge(tenantID string, typ EdgeType, fromID, toID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.edges[edgeKey{tenantID: tenantID, typ: typ, from: fromID, to: toID}]
	return ok
}

// NodeCount returns the number of distinct nodes upserted, for tests.
func (m *Memory) NodeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}

// EdgeCount returns the number of distinct edges upserted, for tests.
func (m *Memory) EdgeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.edges)
}
