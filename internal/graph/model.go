// Package graph implements the Sanad provenance-graph projection (spec.md
// §4.6): Postgres remains the source of truth, the Graph holds a derived
// read-optimized view over the same entities. Concrete graph-database
// drivers (Neo4j) are out of scope (spec.md §1); Store is the seam a
// concrete driver would sit behind.
package graph

// NodeLabel is the closed set of projected node kinds.
type NodeLabel string

const (
	NodeDeal             NodeLabel = "Deal"
	NodeDocument         NodeLabel = "Document"
	NodeSpan             NodeLabel = "Span"
	NodeClaim            NodeLabel = "Claim"
	NodeEvidenceItem     NodeLabel = "EvidenceItem"
	NodeTransmissionNode NodeLabel = "TransmissionNode"
	NodeCalculation      NodeLabel = "Calculation"
	NodeDefect           NodeLabel = "Defect"
	NodeEntity           NodeLabel = "Entity"
)

// EdgeType is the closed set of projected relationship kinds.
type EdgeType string

const (
	EdgeHasDocument  EdgeType = "HAS_DOCUMENT"
	EdgeHasSpan      EdgeType = "HAS_SPAN"
	EdgeSupportedBy  EdgeType = "SUPPORTED_BY"
	EdgeHasSanadStep EdgeType = "HAS_SANAD_STEP"
	EdgeInput        EdgeType = "INPUT"
	EdgeOutput       EdgeType = "OUTPUT"
	EdgeHasDefect    EdgeType = "HAS_DEFECT"
	EdgeDerivedFrom  EdgeType = "DERIVED_FROM"
	EdgeMentionedIn  EdgeType = "MENTIONED_IN"
)

// Node is one graph node. Every node carries TenantID so no cross-tenant
// traversal is possible (spec.md §4.6: "keyed by (tenant_id, entity_id)").
type Node struct {
	Label      NodeLabel
	TenantID   string
	ID         string
	Properties map[string]interface{}
}

// Edge is one directed relationship between two nodes of the same tenant.
type Edge struct {
	Type     EdgeType
	TenantID string
	FromID   string
	ToID     string
}

// Entity is a named entity mentioned across one or more spans (e.g. a
// competitor or investor name), projected as its own node with
// MENTIONED_IN edges back to the spans it appears in.
type Entity struct {
	EntityID string
	Name     string
	Type     string
	SpanIDs  []string
}
