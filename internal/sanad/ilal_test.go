package sanad

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albarami/idis/internal/domain/defect"
	domainsanad "github.com/albarami/idis/internal/domain/sanad"
)

func TestDetectAll_EmptyChainIsChainBreak(t *testing.T) {
	defects := DetectAll(GradeInputs{Sanad: domainsanad.Sanad{}})

	require.Len(t, defects, 1)
	assert.Equal(t, defect.TypeIlalChainBreak, defects[0].Type)
}

func TestDetectAll_EdgeReferencingUnknownParentIsChainBreak(t *testing.T) {
	s := domainsanad.Sanad{
		Nodes: []domainsanad.TransmissionNode{{NodeID: "n1"}},
		Edges: []domainsanad.Edge{{ParentID: "ghost", ChildID: "n1"}},
	}

	defects := DetectAll(GradeInputs{Sanad: s})

	require.Len(t, defects, 1)
	assert.Equal(t, defect.TypeIlalChainBreak, defects[0].Type)
}

func TestDetectAll_ReferenceToUnknownEvidenceIsChainBreak(t *testing.T) {
	s := domainsanad.Sanad{
		Nodes: []domainsanad.TransmissionNode{{NodeID: "n1", InputRefs: []string{"missing-evidence"}}},
	}

	defects := DetectAll(GradeInputs{Sanad: s, KnownEvidence: map[string]bool{"known-evidence": true}})

	require.Len(t, defects, 1)
	assert.Equal(t, defect.TypeIlalChainBreak, defects[0].Type)
}

func TestDetectAll_OrphanedNodeIsChainBreak(t *testing.T) {
	s := domainsanad.Sanad{
		Nodes: []domainsanad.TransmissionNode{{NodeID: "root"}, {NodeID: "orphan"}},
		Edges: []domainsanad.Edge{},
	}

	defects := DetectAll(GradeInputs{Sanad: s})

	require.Len(t, defects, 1)
	assert.Equal(t, defect.TypeIlalChainBreak, defects[0].Type)
}

func TestDetectAll_WellFormedSingleNodeChainHasNoChainBreak(t *testing.T) {
	s := domainsanad.Sanad{Nodes: []domainsanad.TransmissionNode{{NodeID: "root"}}}

	defects := DetectAll(GradeInputs{Sanad: s})

	assert.Empty(t, defects)
}

func TestDetectAll_ConflictingUpstreamOriginIsChainGrafting(t *testing.T) {
	s := domainsanad.Sanad{
		Nodes: []domainsanad.TransmissionNode{
			{NodeID: "root", UpstreamOriginID: "origin-a"},
			{NodeID: "child", UpstreamOriginID: "origin-b"},
		},
		Edges: []domainsanad.Edge{{ParentID: "root", ChildID: "child"}},
	}

	defects := DetectAll(GradeInputs{Sanad: s})

	require.Len(t, defects, 1)
	assert.Equal(t, defect.TypeIlalChainGrafting, defects[0].Type)
}

func TestDetectAll_ChildBeforeParentTimestampIsChronologyImpossible(t *testing.T) {
	parentTime := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	childTime := parentTime.Add(-time.Hour)
	s := domainsanad.Sanad{
		Nodes: []domainsanad.TransmissionNode{
			{NodeID: "root", Timestamp: parentTime},
			{NodeID: "child", Timestamp: childTime},
		},
		Edges: []domainsanad.Edge{{ParentID: "root", ChildID: "child"}},
	}

	defects := DetectAll(GradeInputs{Sanad: s})

	require.Len(t, defects, 1)
	assert.Equal(t, defect.TypeIlalChronologyImpossible, defects[0].Type)
}

func TestDetectAll_ZeroTimestampsSkipChronologyCheck(t *testing.T) {
	s := domainsanad.Sanad{
		Nodes: []domainsanad.TransmissionNode{{NodeID: "root"}, {NodeID: "child"}},
		Edges: []domainsanad.Edge{{ParentID: "root", ChildID: "child"}},
	}

	defects := DetectAll(GradeInputs{Sanad: s})

	assert.Empty(t, defects)
}

func TestDetectAll_VersionDriftWhenCitedAndLatestValuesDiffer(t *testing.T) {
	old := d("100")
	latest := d("150")
	s := domainsanad.Sanad{Nodes: []domainsanad.TransmissionNode{{NodeID: "root"}}}
	claimCtx := &ClaimContext{ClaimID: "claim-1", CitedDocID: "doc-1", CitedVersion: 1, MetricName: "arr"}
	docs := []DocumentVersion{
		{DocumentID: "doc-1", Version: 1, Value: &old},
		{DocumentID: "doc-1", Version: 2, Value: &latest},
	}

	defects := DetectAll(GradeInputs{Sanad: s, Claim: claimCtx, Documents: docs})

	require.Len(t, defects, 1)
	assert.Equal(t, defect.TypeIlalVersionDrift, defects[0].Type)
}

func TestDetectAll_NoVersionDriftWhenValuesMatch(t *testing.T) {
	same := d("100")
	s := domainsanad.Sanad{Nodes: []domainsanad.TransmissionNode{{NodeID: "root"}}}
	claimCtx := &ClaimContext{ClaimID: "claim-1", CitedDocID: "doc-1", CitedVersion: 1, MetricName: "arr"}
	docs := []DocumentVersion{
		{DocumentID: "doc-1", Version: 1, Value: &same},
		{DocumentID: "doc-1", Version: 2, Value: &same},
	}

	defects := DetectAll(GradeInputs{Sanad: s, Claim: claimCtx, Documents: docs})

	assert.Empty(t, defects)
}

func TestDetectAll_NoVersionDriftWhenOnlyOneVersionExists(t *testing.T) {
	val := d("100")
	s := domainsanad.Sanad{Nodes: []domainsanad.TransmissionNode{{NodeID: "root"}}}
	claimCtx := &ClaimContext{ClaimID: "claim-1", CitedDocID: "doc-1", CitedVersion: 1, MetricName: "arr"}
	docs := []DocumentVersion{{DocumentID: "doc-1", Version: 1, Value: &val}}

	defects := DetectAll(GradeInputs{Sanad: s, Claim: claimCtx, Documents: docs})

	assert.Empty(t, defects)
}
