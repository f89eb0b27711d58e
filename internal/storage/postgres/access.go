package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/security"
)

// AccessStore persists deal assignments, deal group assignments, and
// actor-group memberships (spec.md §4.4 gate 4 "ABAC"), implementing
// security.DealAccessResolver, security.ActorGroupResolver, and
// security.ClaimDealResolver against idis_deal_assignments,
// idis_deal_group_assignments, and idis_actor_groups.
type AccessStore struct {
	db *sql.DB
}

var (
	_ security.DealAccessResolver = (*AccessStore)(nil)
	_ security.ActorGroupResolver = (*AccessStore)(nil)
	_ security.ClaimDealResolver  = (*AccessStore)(nil)
)

// NewAccessStore builds an AccessStore over db.
func NewAccessStore(db *sql.DB) *AccessStore {
	return &AccessStore{db: db}
}

// ResolveDeal implements security.DealAccessResolver.
func (a *AccessStore) ResolveDeal(ctx context.Context, tenantID, dealID string) (security.DealAssignment, bool, error) {
	var exists bool
	if err := DBTXFromContext(ctx, a.db).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM idis_deals WHERE tenant_id = $1 AND deal_id = $2)`,
		tenantID, dealID,
	).Scan(&exists); err != nil {
		return security.DealAssignment{}, false, err
	}
	if !exists {
		return security.DealAssignment{}, false, nil
	}

	actors, err := a.listColumn(ctx,
		`SELECT actor_id::text FROM idis_deal_assignments WHERE tenant_id = $1 AND deal_id = $2`,
		tenantID, dealID)
	if err != nil {
		return security.DealAssignment{}, false, err
	}
	groups, err := a.listColumn(ctx,
		`SELECT group_name FROM idis_deal_group_assignments WHERE tenant_id = $1 AND deal_id = $2`,
		tenantID, dealID)
	if err != nil {
		return security.DealAssignment{}, false, err
	}

	return security.DealAssignment{
		DealID:         dealID,
		TenantID:       tenantID,
		AssignedActors: actors,
		AssignedGroups: groups,
	}, true, nil
}

// GroupsFor implements security.ActorGroupResolver.
func (a *AccessStore) GroupsFor(ctx context.Context, tenantID, actorID string) ([]string, error) {
	return a.listColumn(ctx,
		`SELECT group_name FROM idis_actor_groups WHERE tenant_id = $1 AND actor_id = $2`,
		tenantID, actorID)
}

// ResolveClaimDeal implements security.ClaimDealResolver via the existing
// ClaimStore.DealIDForClaim query, translating its NotFound error into
// ABAC's own "not found" signal rather than leaking the typed error.
func (a *AccessStore) ResolveClaimDeal(ctx context.Context, tenantID, claimID string) (string, bool, error) {
	dealID, err := (&Store{db: a.db}).DealIDForClaim(ctx, tenantID, claimID)
	if err != nil {
		if appErr, ok := apperr.As(err); ok && appErr.Code == apperr.CodeNotFound {
			return "", false, nil
		}
		return "", false, err
	}
	return dealID, true, nil
}

// AssignActorToDeal records a direct deal assignment.
func (a *AccessStore) AssignActorToDeal(ctx context.Context, tenantID, dealID, actorID string) error {
	_, err := DBTXFromContext(ctx, a.db).ExecContext(ctx, `
		INSERT INTO idis_deal_assignments (tenant_id, deal_id, actor_id, assigned_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id, deal_id, actor_id) DO NOTHING
	`, tenantID, dealID, actorID, time.Now().UTC())
	return err
}

func (a *AccessStore) listColumn(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := DBTXFromContext(ctx, a.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
