package graph

import "context"

// Store persists nodes and edges, idempotently (spec.md §4.6 "Uses MERGE to
// be idempotent"). Implementations must upsert: writing the same Node or
// Edge twice must not create a duplicate.
type Store interface {
	UpsertNode(ctx context.Context, n Node) error
	UpsertEdge(ctx context.Context, e Edge) error
}
