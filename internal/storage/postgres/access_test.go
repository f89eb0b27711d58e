package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockAccessStore(t *testing.T) (*AccessStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAccessStore(db), mock
}

func TestResolveDeal_ReturnsFalseWhenDealDoesNotExist(t *testing.T) {
	store, mock := newMockAccessStore(t)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("tenant-1", "deal-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, found, err := store.ResolveDeal(context.Background(), "tenant-1", "deal-1")

	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveDeal_ReturnsAssignedActorsAndGroupsWhenDealExists(t *testing.T) {
	store, mock := newMockAccessStore(t)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("tenant-1", "deal-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT actor_id").
		WithArgs("tenant-1", "deal-1").
		WillReturnRows(sqlmock.NewRows([]string{"actor_id"}).AddRow("actor-1"))
	mock.ExpectQuery("SELECT group_name FROM idis_deal_group_assignments").
		WithArgs("tenant-1", "deal-1").
		WillReturnRows(sqlmock.NewRows([]string{"group_name"}).AddRow("partners"))

	assignment, found, err := store.ResolveDeal(context.Background(), "tenant-1", "deal-1")

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"actor-1"}, assignment.AssignedActors)
	assert.Equal(t, []string{"partners"}, assignment.AssignedGroups)
}

func TestGroupsFor_ReturnsActorGroups(t *testing.T) {
	store, mock := newMockAccessStore(t)
	mock.ExpectQuery("SELECT group_name FROM idis_actor_groups").
		WithArgs("tenant-1", "actor-1").
		WillReturnRows(sqlmock.NewRows([]string{"group_name"}).AddRow("partners").AddRow("analysts"))

	groups, err := store.GroupsFor(context.Background(), "tenant-1", "actor-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"partners", "analysts"}, groups)
}

func TestResolveClaimDeal_ReturnsFalseWhenClaimUnknown(t *testing.T) {
	store, mock := newMockAccessStore(t)
	mock.ExpectQuery("SELECT deal_id FROM idis_claims").
		WithArgs("claim-1", "tenant-1").
		WillReturnRows(sqlmock.NewRows([]string{"deal_id"}))

	_, found, err := store.ResolveClaimDeal(context.Background(), "tenant-1", "claim-1")

	require.NoError(t, err)
	assert.False(t, found)
}

func TestResolveClaimDeal_ReturnsDealIDWhenClaimKnown(t *testing.T) {
	store, mock := newMockAccessStore(t)
	mock.ExpectQuery("SELECT deal_id FROM idis_claims").
		WithArgs("claim-1", "tenant-1").
		WillReturnRows(sqlmock.NewRows([]string{"deal_id"}).AddRow("deal-1"))

	dealID, found, err := store.ResolveClaimDeal(context.Background(), "tenant-1", "claim-1")

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "deal-1", dealID)
}

func TestAssignActorToDeal_ExecutesInsertOnConflictDoNothing(t *testing.T) {
	store, mock := newMockAccessStore(t)
	mock.ExpectExec("INSERT INTO idis_deal_assignments").
		WithArgs("tenant-1", "deal-1", "actor-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.AssignActorToDeal(context.Background(), "tenant-1", "deal-1", "actor-1")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
