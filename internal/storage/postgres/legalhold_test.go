package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/security"
)

var legalHoldCols = []string{
	"hold_id", "tenant_id", "target_type", "target_id", "reason_hash", "reason_length",
	"applied_at", "applied_by", "lifted_at", "lifted_by",
}

func newHoldMockStore(t *testing.T) (*HoldStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewHoldStore(db), mock
}

func TestIsHeld_ReturnsTrueWhenActiveHoldExists(t *testing.T) {
	store, mock := newHoldMockStore(t)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM idis_legal_holds").
		WithArgs("tenant-1", "DOCUMENT", "doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	held, err := store.IsHeld(context.Background(), "tenant-1", security.HoldTargetDocument, "doc-1")

	require.NoError(t, err)
	assert.True(t, held)
}

func TestIsHeld_ReturnsFalseWhenNoActiveHold(t *testing.T) {
	store, mock := newHoldMockStore(t)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM idis_legal_holds").
		WithArgs("tenant-1", "DOCUMENT", "doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	held, err := store.IsHeld(context.Background(), "tenant-1", security.HoldTargetDocument, "doc-1")

	require.NoError(t, err)
	assert.False(t, held)
}

func TestApplyHold_AssignsIDAndInsertsRow(t *testing.T) {
	store, mock := newHoldMockStore(t)
	mock.ExpectExec("INSERT INTO idis_legal_holds").WillReturnResult(sqlmock.NewResult(1, 1))

	reasonHash, reasonLen := security.HashReason("subpoena received")
	created, err := store.ApplyHold(context.Background(), security.LegalHold{
		TenantID: "tenant-1", TargetType: security.HoldTargetDeal, TargetID: "deal-1",
		ReasonHash: reasonHash, ReasonLength: reasonLen, AppliedBy: "user-1",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, created.HoldID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLiftHold_ReturnsNotFoundWhenNoActiveHoldMatches(t *testing.T) {
	store, mock := newHoldMockStore(t)
	mock.ExpectExec("UPDATE idis_legal_holds").WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := store.LiftHold(context.Background(), "tenant-1", "hold-1", "user-1")

	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeNotFound, appErr.Code)
}

func TestLiftHold_ReturnsUpdatedRecord(t *testing.T) {
	store, mock := newHoldMockStore(t)
	appliedAt := time.Now().UTC().Add(-time.Hour)
	liftedAt := time.Now().UTC()

	mock.ExpectExec("UPDATE idis_legal_holds").WillReturnResult(sqlmock.NewResult(0, 1))
	rows := sqlmock.NewRows(legalHoldCols).
		AddRow("hold-1", "tenant-1", "DEAL", "deal-1", "abc123", 17, appliedAt, "user-1", liftedAt, "user-2")
	mock.ExpectQuery("SELECT .* FROM idis_legal_holds").
		WithArgs("hold-1", "tenant-1").
		WillReturnRows(rows)

	got, err := store.LiftHold(context.Background(), "tenant-1", "hold-1", "user-2")

	require.NoError(t, err)
	assert.Equal(t, security.HoldTargetDeal, got.TargetType)
	require.NotNil(t, got.LiftedAt)
	assert.Equal(t, "user-2", got.LiftedBy)
	assert.False(t, got.IsActive())
}
