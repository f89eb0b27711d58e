package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_UpsertNodeIsIdempotent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	n := Node{Label: NodeDeal, TenantID: "tenant-1", ID: "deal-1", Properties: map[string]interface{}{"v": 1}}
	require.NoError(t, m.UpsertNode(ctx, n))
	require.NoError(t, m.UpsertNode(ctx, n))

	assert.Equal(t, 1, m.NodeCount())
	got, ok := m.Node("tenant-1", NodeDeal, "deal-1")
	require.True(t, ok)
	assert.Equal(t, n, got)
}

func TestMemory_UpsertEdgeIsIdempotent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	e := Edge{Type: EdgeHasDocument, TenantID: "tenant-1", FromID: "deal-1", ToID: "doc-1"}
	require.NoError(t, m.UpsertEdge(ctx, e))
	require.NoError(t, m.UpsertEdge(ctx, e))

	assert.Equal(t, 1, m.EdgeCount())
	assert.True(t, m.HasEdge("tenant-1", EdgeHasDocument, "deal-1", "doc-1"))
}

func TestMemory_NodesAreScopedByTenant(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.UpsertNode(ctx, Node{Label: NodeDeal, TenantID: "tenant-1", ID: "deal-1"}))
	require.NoError(t, m.UpsertNode(ctx, Node{Label: NodeDeal, TenantID: "tenant-2", ID: "deal-1"}))

	assert.Equal(t, 2, m.NodeCount())
	_, ok := m.Node("tenant-3", NodeDeal, "deal-1")
	assert.False(t, ok)
}
