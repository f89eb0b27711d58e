package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/albarami/idis/internal/platform/apperr"
)

// LegalHold records that deletion of a (target_type, target_id) is blocked
// until lifted (original_source compliance/retention.py LegalHold). Reason
// content is never stored raw, only its hash and length, so holds can be
// audited without leaking the litigation/investigation detail they name.
type LegalHold struct {
	HoldID       string
	TenantID     string
	TargetType   HoldTarget
	TargetID     string
	ReasonHash   string
	ReasonLength int
	AppliedAt    time.Time
	AppliedBy    string
	LiftedAt     *time.Time
	LiftedBy     string
}

// IsActive reports whether the hold has not yet been lifted.
func (h LegalHold) IsActive() bool {
	return h.LiftedAt == nil
}

// HoldStore persists LegalHold rows and answers the has-active-hold
// question BlockDeletionIfHeld needs before any delete path proceeds.
type HoldStore interface {
	IsHeld(ctx context.Context, tenantID string, targetType HoldTarget, targetID string) (bool, error)
	ApplyHold(ctx context.Context, hold LegalHold) (LegalHold, error)
	LiftHold(ctx context.Context, tenantID, holdID, liftedBy string) (LegalHold, error)
}

// HashReason computes the value audited in place of a hold's raw reason
// text: only its SHA-256 and length are ever recorded (spec.md §4.4).
func HashReason(reason string) (hash string, length int) {
	sum := sha256.Sum256([]byte(reason))
	return hex.EncodeToString(sum[:]), len(reason)
}

// BlockDeletionIfHeld implements block_deletion_if_held: any delete path
// must call this first. An active hold aborts with DELETION_BLOCKED_BY_HOLD;
// a lookup failure also aborts, fail-closed.
func BlockDeletionIfHeld(ctx context.Context, store HoldStore, tenantID string, targetType HoldTarget, targetID string) error {
	held, err := store.IsHeld(ctx, tenantID, targetType, targetID)
	if err != nil {
		return apperr.DeletionBlockedByHold()
	}
	if held {
		return apperr.DeletionBlockedByHold()
	}
	return nil
}
