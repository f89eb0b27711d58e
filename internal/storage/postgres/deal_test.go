package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albarami/idis/internal/domain/deal"
	"github.com/albarami/idis/internal/platform/apperr"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestCreateDeal_AssignsIDAndInsertsRow(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO idis_deals").WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := store.CreateDeal(context.Background(), deal.Deal{TenantID: "tenant-1", CompanyName: "Acme", Stage: "SEED", Status: deal.StatusActive})

	require.NoError(t, err)
	assert.NotEmpty(t, created.DealID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDeal_ReturnsNotFoundOnNoRows(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT .* FROM idis_deals").
		WithArgs("deal-1", "tenant-1").
		WillReturnRows(sqlmock.NewRows([]string{"deal_id", "tenant_id", "company_name", "stage", "status", "tags", "created_at", "updated_at"}))

	_, err := store.GetDeal(context.Background(), "tenant-1", "deal-1")

	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeNotFound, appErr.Code)
}

func TestGetDeal_ScansRowAndUnmarshalsTags(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"deal_id", "tenant_id", "company_name", "stage", "status", "tags", "created_at", "updated_at"}).
		AddRow("deal-1", "tenant-1", "Acme", "SEED", "ACTIVE", []byte(`["hot"]`), now, now)
	mock.ExpectQuery("SELECT .* FROM idis_deals").WithArgs("deal-1", "tenant-1").WillReturnRows(rows)

	got, err := store.GetDeal(context.Background(), "tenant-1", "deal-1")

	require.NoError(t, err)
	assert.Equal(t, "Acme", got.CompanyName)
	assert.Equal(t, []string{"hot"}, got.Tags)
}

func TestUpdateDeal_ReturnsNotFoundWhenNoRowsAffected(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"deal_id", "tenant_id", "company_name", "stage", "status", "tags", "created_at", "updated_at"}).
		AddRow("deal-1", "tenant-1", "Acme", "SEED", "ACTIVE", []byte(`[]`), now, now)
	mock.ExpectQuery("SELECT .* FROM idis_deals").WithArgs("deal-1", "tenant-1").WillReturnRows(rows)
	mock.ExpectExec("UPDATE idis_deals").WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := store.UpdateDeal(context.Background(), deal.Deal{DealID: "deal-1", TenantID: "tenant-1", CompanyName: "Acme II"})

	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeNotFound, appErr.Code)
}

func TestListDeals_SetsNextCursorWhenMoreRowsThanLimit(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"deal_id", "tenant_id", "company_name", "stage", "status", "tags", "created_at", "updated_at"}).
		AddRow("deal-1", "tenant-1", "Acme", "SEED", "ACTIVE", []byte(`[]`), now, now).
		AddRow("deal-2", "tenant-1", "Beta", "SEED", "ACTIVE", []byte(`[]`), now, now)
	mock.ExpectQuery("SELECT .* FROM idis_deals").WithArgs("tenant-1", 2).WillReturnRows(rows)

	page, err := store.ListDeals(context.Background(), "tenant-1", 1, "")

	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "deal-1", page.NextCursor)
}

func TestListDeals_UsesCursorArgumentWhenProvided(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT .* FROM idis_deals").
		WithArgs("tenant-1", "deal-1", 51).
		WillReturnRows(sqlmock.NewRows([]string{"deal_id", "tenant_id", "company_name", "stage", "status", "tags", "created_at", "updated_at"}))

	page, err := store.ListDeals(context.Background(), "tenant-1", 0, "deal-1")

	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}
