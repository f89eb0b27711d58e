package security

import (
	"context"
	"errors"

	"github.com/albarami/idis/internal/platform/apperr"
)

// DealAssignment is what the ABAC gate needs to know about a deal's
// access list, resolved under tenant scope.
type DealAssignment struct {
	DealID         string
	TenantID       string
	AssignedActors []string
	AssignedGroups []string
}

// DealAccessResolver looks up a deal's tenant and assignment list. Returning
// (DealAssignment{}, false, nil) means "not found or out of tenant scope";
// a non-nil error means the resolution infrastructure itself is broken.
type DealAccessResolver interface {
	ResolveDeal(ctx context.Context, tenantID, dealID string) (DealAssignment, bool, error)
}

// ClaimDealResolver resolves a claim to its owning deal under tenant scope,
// for claim-scoped operations (spec.md §4.4 gate 5).
type ClaimDealResolver interface {
	ResolveClaimDeal(ctx context.Context, tenantID, claimID string) (dealID string, ok bool, err error)
}

// ActorGroupResolver supplies the group memberships ABAC checks against
// AssignedGroups. A real deployment backs this with the tenant's directory;
// tests can supply a static map.
type ActorGroupResolver interface {
	GroupsFor(ctx context.Context, tenantID, actorID string) ([]string, error)
}

// CheckDealAccess implements spec.md §4.4 gate 4: allow if the actor is
// directly assigned or belongs to an assigned group. AUDITOR read is denied
// unless assigned — gate 3 already blocks AUDITOR mutations, so this applies
// uniformly to both read and mutate. An unassigned ADMIN gets
// DENIED_BREAK_GLASS_REQUIRED rather than a bare denial, since ADMIN has a
// path to access (break-glass) that other roles don't.
func CheckDealAccess(ctx context.Context, resolver DealAccessResolver, groups ActorGroupResolver, tc TenantContext, dealID string) error {
	assignment, found, err := resolver.ResolveDeal(ctx, tc.TenantID, dealID)
	if err != nil {
		return apperr.ABACResolutionFailed()
	}
	if !found {
		return apperr.DeniedUnknownOrOutOfScope()
	}

	if contains(assignment.AssignedActors, tc.ActorID) {
		return nil
	}

	actorGroups, err := groups.GroupsFor(ctx, tc.TenantID, tc.ActorID)
	if err != nil {
		return apperr.ABACResolutionFailed()
	}
	for _, g := range actorGroups {
		if contains(assignment.AssignedGroups, g) {
			return nil
		}
	}

	if tc.HasRole(RoleAdmin) {
		return apperr.DeniedBreakGlassRequired()
	}
	return apperr.DeniedUnknownOrOutOfScope()
}

// ResolveClaimToDeal implements spec.md §4.4 gate 5: resolve claim_id to
// deal_id under tenant scope before running the deal-level ABAC check.
// An unknown or cross-tenant claim resolves to "unknown deal", the same
// outcome as an unknown deal; a broken resolver is a fail-closed error.
func ResolveClaimToDeal(ctx context.Context, resolver ClaimDealResolver, tenantID, claimID string) (string, error) {
	dealID, ok, err := resolver.ResolveClaimDeal(ctx, tenantID, claimID)
	if err != nil {
		return "", apperr.ABACResolutionFailed()
	}
	if !ok {
		return "", errUnknownDeal
	}
	return dealID, nil
}

// errUnknownDeal signals ResolveClaimToDeal found no deal; callers should
// translate this into DENIED_UNKNOWN_OR_OUT_OF_SCOPE via CheckDealAccess's
// own not-found path, not leak it directly.
var errUnknownDeal = errors.New("security: claim resolves to no deal in tenant scope")

// IsUnknownDeal reports whether err is the sentinel ResolveClaimToDeal
// returns for an unresolved claim.
func IsUnknownDeal(err error) bool { return errors.Is(err, errUnknownDeal) }

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
