package sanad

import (
	"fmt"
	"sort"

	"github.com/albarami/idis/internal/domain/defect"
	domainsanad "github.com/albarami/idis/internal/domain/sanad"
)

// IlalDefect is one hidden defect detected by the I'lal pass, grounded on
// original_source's services/sanad/ilal.py, adapted to the edge-list Sanad
// representation (spec.md §9: adjacency pairs, not parent pointers).
type IlalDefect struct {
	Type        defect.Type
	Severity    defect.Severity
	Description string
	Cure        defect.CureProtocol
}

// detectChainBreak implements ILAL_CHAIN_BREAK: an empty chain, a child
// whose parent does not exist, a reference to unknown evidence, or a node
// unreachable from the root (ilal.py::detect_ilal_chain_break).
func detectChainBreak(s domainsanad.Sanad, knownEvidence map[string]bool) *IlalDefect {
	if len(s.Nodes) == 0 {
		return &IlalDefect{
			Type: defect.TypeIlalChainBreak, Severity: defect.SeverityFatal,
			Description: "transmission chain is empty", Cure: defect.CureReconstructChain,
		}
	}

	nodeIDs := make(map[string]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		nodeIDs[n.NodeID] = true
	}

	parentOf := map[string]string{}
	childrenOf := map[string][]string{}
	for _, e := range s.Edges {
		if !nodeIDs[e.ParentID] {
			return &IlalDefect{
				Type: defect.TypeIlalChainBreak, Severity: defect.SeverityFatal,
				Description: fmt.Sprintf("edge references non-existent parent %s", e.ParentID),
				Cure:        defect.CureReconstructChain,
			}
		}
		if !nodeIDs[e.ChildID] {
			return &IlalDefect{
				Type: defect.TypeIlalChainBreak, Severity: defect.SeverityFatal,
				Description: fmt.Sprintf("edge references non-existent child %s", e.ChildID),
				Cure:        defect.CureReconstructChain,
			}
		}
		parentOf[e.ChildID] = e.ParentID
		childrenOf[e.ParentID] = append(childrenOf[e.ParentID], e.ChildID)
	}

	if knownEvidence != nil {
		for _, n := range s.Nodes {
			for _, ref := range n.InputRefs {
				if !knownEvidence[ref] {
					return &IlalDefect{
						Type: defect.TypeIlalChainBreak, Severity: defect.SeverityFatal,
						Description: fmt.Sprintf("node %s references non-existent evidence %s", n.NodeID, ref),
						Cure:        defect.CureRequestSource,
					}
				}
			}
		}
	}

	var roots []string
	for id := range nodeIDs {
		if _, hasParent := parentOf[id]; !hasParent {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)

	if len(roots) == 0 {
		return &IlalDefect{
			Type: defect.TypeIlalChainBreak, Severity: defect.SeverityFatal,
			Description: "transmission chain has no root node (all nodes have parents)",
			Cure:        defect.CureReconstructChain,
		}
	}
	if len(roots) > 1 {
		return &IlalDefect{
			Type: defect.TypeIlalChainBreak, Severity: defect.SeverityFatal,
			Description: fmt.Sprintf("orphaned nodes not connected to root: %v", roots[1:]),
			Cure:        defect.CureReconstructChain,
		}
	}

	if len(roots) == 1 {
		reachable := map[string]bool{}
		var visit func(string)
		visit = func(id string) {
			if reachable[id] {
				return
			}
			reachable[id] = true
			for _, child := range childrenOf[id] {
				visit(child)
			}
		}
		visit(roots[0])

		var orphaned []string
		for id := range nodeIDs {
			if !reachable[id] {
				orphaned = append(orphaned, id)
			}
		}
		if len(orphaned) > 0 {
			sort.Strings(orphaned)
			return &IlalDefect{
				Type: defect.TypeIlalChainBreak, Severity: defect.SeverityFatal,
				Description: fmt.Sprintf("orphaned nodes not connected to root: %v", orphaned),
				Cure:        defect.CureReconstructChain,
			}
		}
	}

	return nil
}

// detectChainGrafting implements ILAL_CHAIN_GRAFTING: a child node whose
// upstream_origin_id conflicts with its parent's (ilal.py::detect_ilal_chain_grafting).
func detectChainGrafting(s domainsanad.Sanad) *IlalDefect {
	if len(s.Nodes) < 2 {
		return nil
	}
	byID := make(map[string]domainsanad.TransmissionNode, len(s.Nodes))
	for _, n := range s.Nodes {
		byID[n.NodeID] = n
	}

	edges := append([]domainsanad.Edge(nil), s.Edges...)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].ParentID != edges[j].ParentID {
			return edges[i].ParentID < edges[j].ParentID
		}
		return edges[i].ChildID < edges[j].ChildID
	})

	for _, e := range edges {
		parent, ok := byID[e.ParentID]
		if !ok {
			continue
		}
		child, ok := byID[e.ChildID]
		if !ok {
			continue
		}
		if parent.UpstreamOriginID != "" && child.UpstreamOriginID != "" &&
			parent.UpstreamOriginID != child.UpstreamOriginID {
			return &IlalDefect{
				Type: defect.TypeIlalChainGrafting, Severity: defect.SeverityFatal,
				Description: fmt.Sprintf(
					"inconsistent provenance: node %s claims origin %s but parent %s claims %s",
					child.NodeID, child.UpstreamOriginID, parent.NodeID, parent.UpstreamOriginID,
				),
				Cure: defect.CureHumanArbitration,
			}
		}
	}
	return nil
}

// detectChronologyImpossible implements ILAL_CHRONOLOGY_IMPOSSIBLE: a child
// timestamp strictly before its parent's (ilal.py::detect_ilal_chronology_impossible).
// An unparsable/zero timestamp is treated as absent — no chronology check is
// emitted for that edge, but chain-break rules still apply independently.
func detectChronologyImpossible(s domainsanad.Sanad) *IlalDefect {
	if len(s.Nodes) < 2 {
		return nil
	}
	byID := make(map[string]domainsanad.TransmissionNode, len(s.Nodes))
	for _, n := range s.Nodes {
		byID[n.NodeID] = n
	}

	edges := append([]domainsanad.Edge(nil), s.Edges...)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].ParentID != edges[j].ParentID {
			return edges[i].ParentID < edges[j].ParentID
		}
		return edges[i].ChildID < edges[j].ChildID
	})

	for _, e := range edges {
		parent, ok := byID[e.ParentID]
		if !ok {
			continue
		}
		child, ok := byID[e.ChildID]
		if !ok {
			continue
		}
		if parent.Timestamp.IsZero() || child.Timestamp.IsZero() {
			continue
		}
		if child.Timestamp.Before(parent.Timestamp) {
			return &IlalDefect{
				Type: defect.TypeIlalChronologyImpossible, Severity: defect.SeverityFatal,
				Description: fmt.Sprintf(
					"chronology violation: node %s (%s) precedes parent %s (%s)",
					child.NodeID, child.Timestamp.Format("2006-01-02T15:04:05Z"),
					parent.NodeID, parent.Timestamp.Format("2006-01-02T15:04:05Z"),
				),
				Cure: defect.CureRequireReaudit,
			}
		}
	}
	return nil
}

// detectVersionDrift implements ILAL_VERSION_DRIFT: the claim cites an
// older document version whose metric value differs from the latest
// version's (ilal.py::detect_ilal_version_drift).
func detectVersionDrift(c *ClaimContext, documents []DocumentVersion) *IlalDefect {
	if c == nil || len(documents) == 0 || c.CitedDocID == "" {
		return nil
	}

	var matching []DocumentVersion
	for _, d := range documents {
		if d.DocumentID == c.CitedDocID {
			matching = append(matching, d)
		}
	}
	if len(matching) < 2 {
		return nil
	}

	var cited *DocumentVersion
	for i := range matching {
		if matching[i].Version == c.CitedVersion {
			cited = &matching[i]
			break
		}
	}
	if cited == nil {
		// fall back to the oldest matching version, mirroring the
		// original's "min by version" fallback when the cited version
		// isn't found verbatim.
		oldest := matching[0]
		for _, d := range matching[1:] {
			if d.Version < oldest.Version {
				oldest = d
			}
		}
		cited = &oldest
	}

	var latest *DocumentVersion
	for i := range matching {
		if matching[i].Version > cited.Version {
			if latest == nil || matching[i].Version > latest.Version {
				latest = &matching[i]
			}
		}
	}
	if latest == nil {
		return nil
	}

	if cited.Value == nil && latest.Value == nil {
		return nil
	}
	if cited.Value == nil || latest.Value == nil || !cited.Value.Equal(*latest.Value) {
		return &IlalDefect{
			Type: defect.TypeIlalVersionDrift, Severity: defect.SeverityMajor,
			Description: fmt.Sprintf(
				"claim cites version %d of %s but version %d exists with a different %s value",
				cited.Version, cited.DocumentID, latest.Version, c.MetricName,
			),
			Cure: defect.CureRequireReaudit,
		}
	}
	return nil
}

// DetectAll runs every I'lal check and returns every defect found, in a
// fixed order (chain break, grafting, chronology, version drift) so the
// explanation's fatal_defects list is deterministic.
func DetectAll(in GradeInputs) []IlalDefect {
	var out []IlalDefect
	if d := detectChainBreak(in.Sanad, in.KnownEvidence); d != nil {
		out = append(out, *d)
	}
	if d := detectChainGrafting(in.Sanad); d != nil {
		out = append(out, *d)
	}
	if d := detectChronologyImpossible(in.Sanad); d != nil {
		out = append(out, *d)
	}
	if d := detectVersionDrift(in.Claim, in.Documents); d != nil {
		out = append(out, *d)
	}
	return out
}
