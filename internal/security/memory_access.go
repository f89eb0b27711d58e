package security

import (
	"context"
	"sync"
)

// MemoryDealAccess is an in-memory DealAccessResolver, ActorGroupResolver,
// and ClaimDealResolver, grounded on the original implementation's
// InMemoryClaimDealResolver (testing/development double; production backs
// these with internal/storage/postgres.AccessStore).
type MemoryDealAccess struct {
	mu          sync.RWMutex
	deals       map[string]map[string]bool // tenantID|dealID -> exists
	actors      map[string]map[string]bool // tenantID|dealID -> actorID set
	groups      map[string]map[string]bool // tenantID|dealID -> group set
	actorGroups map[string]map[string]bool // tenantID|actorID -> group set
	claimDeal   map[string]string          // tenantID|claimID -> dealID
}

// NewMemoryDealAccess builds an empty MemoryDealAccess.
func NewMemoryDealAccess() *MemoryDealAccess {
	return &MemoryDealAccess{
		deals:       make(map[string]map[string]bool),
		actors:      make(map[string]map[string]bool),
		groups:      make(map[string]map[string]bool),
		actorGroups: make(map[string]map[string]bool),
		claimDeal:   make(map[string]string),
	}
}

func tenantKey(tenantID, id string) string { return tenantID + "|" + id }

// RegisterDeal marks dealID as known under tenantID, so ResolveDeal can
// distinguish "exists with no assignment" from "unknown deal".
func (m *MemoryDealAccess) RegisterDeal(tenantID, dealID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := tenantKey(tenantID, dealID)
	if m.deals[k] == nil {
		m.deals[k] = map[string]bool{}
	}
	m.deals[k][dealID] = true
}

// AssignActor assigns actorID direct access to dealID.
func (m *MemoryDealAccess) AssignActor(tenantID, dealID, actorID string) {
	m.RegisterDeal(tenantID, dealID)
	m.mu.Lock()
	defer m.mu.Unlock()
	k := tenantKey(tenantID, dealID)
	if m.actors[k] == nil {
		m.actors[k] = map[string]bool{}
	}
	m.actors[k][actorID] = true
}

// AssignGroup assigns group access to dealID.
func (m *MemoryDealAccess) AssignGroup(tenantID, dealID, group string) {
	m.RegisterDeal(tenantID, dealID)
	m.mu.Lock()
	defer m.mu.Unlock()
	k := tenantKey(tenantID, dealID)
	if m.groups[k] == nil {
		m.groups[k] = map[string]bool{}
	}
	m.groups[k][group] = true
}

// PutActorInGroup records actorID's group membership.
func (m *MemoryDealAccess) PutActorInGroup(tenantID, actorID, group string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := tenantKey(tenantID, actorID)
	if m.actorGroups[k] == nil {
		m.actorGroups[k] = map[string]bool{}
	}
	m.actorGroups[k][group] = true
}

// LinkClaimToDeal records claimID's owning deal.
func (m *MemoryDealAccess) LinkClaimToDeal(tenantID, claimID, dealID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claimDeal[tenantKey(tenantID, claimID)] = dealID
}

// ResolveDeal implements DealAccessResolver.
func (m *MemoryDealAccess) ResolveDeal(_ context.Context, tenantID, dealID string) (DealAssignment, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	k := tenantKey(tenantID, dealID)
	if !m.deals[k][dealID] {
		return DealAssignment{}, false, nil
	}
	return DealAssignment{
		DealID:         dealID,
		TenantID:       tenantID,
		AssignedActors: keysOf(m.actors[k]),
		AssignedGroups: keysOf(m.groups[k]),
	}, true, nil
}

// GroupsFor implements ActorGroupResolver.
func (m *MemoryDealAccess) GroupsFor(_ context.Context, tenantID, actorID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return keysOf(m.actorGroups[tenantKey(tenantID, actorID)]), nil
}

// ResolveClaimDeal implements ClaimDealResolver.
func (m *MemoryDealAccess) ResolveClaimDeal(_ context.Context, tenantID, claimID string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	dealID, ok := m.claimDeal[tenantKey(tenantID, claimID)]
	return dealID, ok, nil
}

func keysOf(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
