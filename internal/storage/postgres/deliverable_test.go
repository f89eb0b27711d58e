package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albarami/idis/internal/deliverable"
	"github.com/albarami/idis/internal/platform/apperr"
)

var deliverableCols = []string{"deliverable_id", "tenant_id", "deal_id", "kind", "format", "content", "generated_at"}

func TestCreateDeliverable_AssignsIDAndInsertsRow(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO idis_deliverables").WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := store.CreateDeliverable(context.Background(), deliverable.Record{
		TenantID: "tenant-1", DealID: "deal-1", Kind: "SNAPSHOT", Format: "PDF", ContentBytes: []byte("%PDF-"),
	})

	require.NoError(t, err)
	assert.NotEmpty(t, created.DeliverableID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDeliverable_ReturnsNotFoundOnNoRows(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT .* FROM idis_deliverables").
		WithArgs("deliverable-1", "tenant-1").
		WillReturnRows(sqlmock.NewRows(deliverableCols))

	_, err := store.GetDeliverable(context.Background(), "tenant-1", "deliverable-1")

	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeNotFound, appErr.Code)
}

func TestGetDeliverable_ScansRow(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows(deliverableCols).AddRow("deliverable-1", "tenant-1", "deal-1", "SNAPSHOT", "PDF", []byte("%PDF-"), now)
	mock.ExpectQuery("SELECT .* FROM idis_deliverables").WithArgs("deliverable-1", "tenant-1").WillReturnRows(rows)

	got, err := store.GetDeliverable(context.Background(), "tenant-1", "deliverable-1")

	require.NoError(t, err)
	assert.Equal(t, "deal-1", got.DealID)
}

func TestListDeliverablesForDeal_ReturnsAllRows(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows(deliverableCols).
		AddRow("deliverable-1", "tenant-1", "deal-1", "SNAPSHOT", "PDF", []byte("%PDF-"), now).
		AddRow("deliverable-2", "tenant-1", "deal-1", "FULL", "DOCX", []byte("PK"), now)
	mock.ExpectQuery("SELECT .* FROM idis_deliverables").WithArgs("tenant-1", "deal-1").WillReturnRows(rows)

	got, err := store.ListDeliverablesForDeal(context.Background(), "tenant-1", "deal-1")

	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestListExpired_ReturnsRowsOlderThanCutoff(t *testing.T) {
	store, mock := newMockStore(t)
	cutoff := time.Now().UTC()
	rows := sqlmock.NewRows(deliverableCols).
		AddRow("deliverable-1", "tenant-1", "deal-1", "SNAPSHOT", "PDF", []byte("%PDF-"), cutoff.Add(-48*time.Hour))
	mock.ExpectQuery("SELECT .* FROM idis_deliverables").WithArgs(cutoff).WillReturnRows(rows)

	got, err := store.ListExpired(context.Background(), cutoff)

	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestDeleteDeliverable_ReturnsNotFoundWhenNoRowsAffected(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("DELETE FROM idis_deliverables").
		WithArgs("deliverable-1", "tenant-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteDeliverable(context.Background(), "tenant-1", "deliverable-1")

	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeNotFound, appErr.Code)
}

func TestDeleteDeliverable_SucceedsWhenRowRemoved(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("DELETE FROM idis_deliverables").
		WithArgs("deliverable-1", "tenant-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.DeleteDeliverable(context.Background(), "tenant-1", "deliverable-1")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
