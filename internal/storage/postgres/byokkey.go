package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/security"
)

// KeyStore implements security.KeyStore backed by PostgreSQL, the
// database-backed registry original_source's BYOKPolicyRegistry docstring
// calls for in production.
type KeyStore struct {
	db *sql.DB
}

var _ security.KeyStore = (*KeyStore)(nil)

// NewKeyStore builds a KeyStore over db.
func NewKeyStore(db *sql.DB) *KeyStore {
	return &KeyStore{db: db}
}

// ConfigureKey implements security.KeyStore.
func (s *KeyStore) ConfigureKey(ctx context.Context, rec security.KeyRecord) (security.KeyRecord, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.State == "" {
		rec.State = security.KeyStateActive
	}
	_, err := DBTXFromContext(ctx, s.db).ExecContext(ctx, `
		INSERT INTO idis_byok_keys (tenant_id, alias_hash, state, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id) DO UPDATE SET alias_hash = $2, state = $3, created_at = $4, rotated_at = NULL, revoked_at = NULL
	`, rec.TenantID, rec.AliasHash, string(rec.State), rec.CreatedAt)
	if err != nil {
		return security.KeyRecord{}, err
	}
	return rec, nil
}

// RotateKey implements security.KeyStore.
func (s *KeyStore) RotateKey(ctx context.Context, tenantID, newAliasHash string) (security.KeyRecord, error) {
	rotatedAt := time.Now().UTC()
	result, err := DBTXFromContext(ctx, s.db).ExecContext(ctx, `
		UPDATE idis_byok_keys
		SET alias_hash = $2, state = $3, rotated_at = $4
		WHERE tenant_id = $1
	`, tenantID, newAliasHash, string(security.KeyStateActive), rotatedAt)
	if err != nil {
		return security.KeyRecord{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return security.KeyRecord{}, apperr.NotFound("byok_key", tenantID)
	}
	return s.GetKey(ctx, tenantID)
}

// RevokeKey implements security.KeyStore.
func (s *KeyStore) RevokeKey(ctx context.Context, tenantID string) (security.KeyRecord, error) {
	revokedAt := time.Now().UTC()
	result, err := DBTXFromContext(ctx, s.db).ExecContext(ctx, `
		UPDATE idis_byok_keys SET state = $2, revoked_at = $3 WHERE tenant_id = $1
	`, tenantID, string(security.KeyStateRevoked), revokedAt)
	if err != nil {
		return security.KeyRecord{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return security.KeyRecord{}, apperr.NotFound("byok_key", tenantID)
	}
	return s.GetKey(ctx, tenantID)
}

// GetKey implements security.KeyStore.
func (s *KeyStore) GetKey(ctx context.Context, tenantID string) (security.KeyRecord, error) {
	row := DBTXFromContext(ctx, s.db).QueryRowContext(ctx, `
		SELECT tenant_id, alias_hash, state, created_at, rotated_at, revoked_at
		FROM idis_byok_keys WHERE tenant_id = $1
	`, tenantID)
	rec, err := scanKeyRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return security.KeyRecord{}, apperr.NotFound("byok_key", tenantID)
		}
		return security.KeyRecord{}, err
	}
	return rec, nil
}

// ListActiveKeys implements security.KeyStore.
func (s *KeyStore) ListActiveKeys(ctx context.Context) ([]security.KeyRecord, error) {
	rows, err := DBTXFromContext(ctx, s.db).QueryContext(ctx, `
		SELECT tenant_id, alias_hash, state, created_at, rotated_at, revoked_at
		FROM idis_byok_keys WHERE state = $1
	`, string(security.KeyStateActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []security.KeyRecord
	for rows.Next() {
		rec, err := scanKeyRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanKeyRecord(row rowScanner) (security.KeyRecord, error) {
	var (
		rec        security.KeyRecord
		state      string
		rotatedAtN sql.NullTime
		revokedAtN sql.NullTime
	)
	if err := row.Scan(&rec.TenantID, &rec.AliasHash, &state, &rec.CreatedAt, &rotatedAtN, &revokedAtN); err != nil {
		return security.KeyRecord{}, err
	}
	rec.State = security.KeyState(state)
	if rotatedAtN.Valid {
		rec.RotatedAt = &rotatedAtN.Time
	}
	if revokedAtN.Valid {
		rec.RevokedAt = &revokedAtN.Time
	}
	return rec, nil
}
