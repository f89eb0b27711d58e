package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/albarami/idis/internal/platform/apperr"
)

// KeyState is the lifecycle state of a tenant's configured KMS key alias.
type KeyState string

const (
	KeyStateActive  KeyState = "ACTIVE"
	KeyStateRevoked KeyState = "REVOKED"
)

// DataClass is the sensitivity classification a BYOK check is evaluated
// against. Class0/1 data is BYOK-exempt (spec.md §4.4).
type DataClass int

const (
	Class0 DataClass = iota
	Class1
	Class2
	Class3
)

func (c DataClass) byokExempt() bool { return c == Class0 || c == Class1 }

// KeyRecord is the stored BYOK metadata: only the key alias hash is ever
// persisted, never the alias itself. CreatedAt/RotatedAt/RevokedAt mirror
// original_source's BYOKPolicy dataclass so a key's age can be evaluated
// for rotation reminders.
type KeyRecord struct {
	TenantID  string
	AliasHash string
	State     KeyState
	CreatedAt time.Time
	RotatedAt *time.Time
	RevokedAt *time.Time
}

// LastRotatedAt returns RotatedAt if the key has ever been rotated,
// otherwise CreatedAt — the reference point original_source's
// get_key_metadata/rotation-age checks use.
func (k KeyRecord) LastRotatedAt() time.Time {
	if k.RotatedAt != nil {
		return *k.RotatedAt
	}
	return k.CreatedAt
}

// KeyStore persists BYOK key configuration per tenant. original_source's
// BYOKPolicyRegistry is documented as in-memory "for testing/dev...
// Production implementations should use a database-backed registry" —
// this interface is that database-backed registry.
type KeyStore interface {
	ConfigureKey(ctx context.Context, rec KeyRecord) (KeyRecord, error)
	RotateKey(ctx context.Context, tenantID, newAliasHash string) (KeyRecord, error)
	RevokeKey(ctx context.Context, tenantID string) (KeyRecord, error)
	GetKey(ctx context.Context, tenantID string) (KeyRecord, error)
	ListActiveKeys(ctx context.Context) ([]KeyRecord, error)
}

// HashKeyAlias computes the value stored in place of the raw KMS key alias.
func HashKeyAlias(alias string) string {
	sum := sha256.Sum256([]byte(alias))
	return hex.EncodeToString(sum[:])
}

// CheckBYOK enforces: any access to Class2/Class3 data with a REVOKED key
// is denied. Class0/1 is exempt regardless of key state.
func CheckBYOK(class DataClass, key KeyRecord) error {
	if class.byokExempt() {
		return nil
	}
	if key.State == KeyStateRevoked {
		return apperr.BYOKKeyRevoked()
	}
	return nil
}
