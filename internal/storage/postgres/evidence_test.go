package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albarami/idis/internal/domain/evidence"
	"github.com/albarami/idis/internal/platform/apperr"
)

var evidenceCols = []string{"evidence_id", "tenant_id", "claim_id", "source_span_id", "source_grade", "source_system", "upstream_origin_id", "verification_status", "created_at"}

func TestCreateEvidence_AssignsIDAndInsertsRow(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO idis_evidence").WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := store.CreateEvidence(context.Background(), evidence.Evidence{TenantID: "tenant-1", ClaimID: "claim-1", SourceSpanID: "span-1"})

	require.NoError(t, err)
	assert.NotEmpty(t, created.EvidenceID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEvidence_ReturnsNotFoundOnNoRows(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT .* FROM idis_evidence").
		WithArgs("evidence-1", "tenant-1").
		WillReturnRows(sqlmock.NewRows(evidenceCols))

	_, err := store.GetEvidence(context.Background(), "tenant-1", "evidence-1")

	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeNotFound, appErr.Code)
}

func TestGetEvidence_ScansRow(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows(evidenceCols).AddRow("evidence-1", "tenant-1", "claim-1", "span-1", "A", "manual", "", "HUMAN_VERIFIED", now)
	mock.ExpectQuery("SELECT .* FROM idis_evidence").WithArgs("evidence-1", "tenant-1").WillReturnRows(rows)

	got, err := store.GetEvidence(context.Background(), "tenant-1", "evidence-1")

	require.NoError(t, err)
	assert.Equal(t, "claim-1", got.ClaimID)
}

func TestListEvidenceForClaim_ReturnsAllRows(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows(evidenceCols).
		AddRow("evidence-1", "tenant-1", "claim-1", "span-1", "A", "manual", "", "HUMAN_VERIFIED", now).
		AddRow("evidence-2", "tenant-1", "claim-1", "span-2", "B", "manual", "", "UNVERIFIED", now)
	mock.ExpectQuery("SELECT .* FROM idis_evidence").WithArgs("tenant-1", "claim-1").WillReturnRows(rows)

	got, err := store.ListEvidenceForClaim(context.Background(), "tenant-1", "claim-1")

	require.NoError(t, err)
	assert.Len(t, got, 2)
}
