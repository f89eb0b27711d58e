package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/hkdf"

	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/platform/canonjson"
)

const (
	// MinJustificationLength is the minimum character length of a
	// break-glass justification (spec.md §4.4).
	MinJustificationLength = 20
	// MaxTokenLifetime is the maximum exp-iat window a break-glass token
	// may carry.
	MaxTokenLifetime = 3600 * time.Second
)

// BreakGlassToken is the signed, time-bound override token (spec.md §4.4).
type BreakGlassToken struct {
	TokenID       string    `json:"token_id"`
	ActorID       string    `json:"actor_id"`
	TenantID      string    `json:"tenant_id"`
	DealID        string    `json:"deal_id,omitempty"`
	Justification string    `json:"justification"`
	IssuedAt      time.Time `json:"iat"`
	ExpiresAt     time.Time `json:"exp"`
}

type signingPayload struct {
	TokenID       string    `json:"token_id"`
	ActorID       string    `json:"actor_id"`
	TenantID      string    `json:"tenant_id"`
	DealID        string    `json:"deal_id,omitempty"`
	Justification string    `json:"justification"`
	IssuedAt      time.Time `json:"iat"`
	ExpiresAt     time.Time `json:"exp"`
}

// deriveTenantSigningKey derives a per-tenant HMAC sub-key from the shared
// IDIS_BREAK_GLASS_SECRET via HKDF-SHA256, so the raw secret is never used
// directly as a signing key and a compromise of one tenant's derived key
// does not expose another tenant's (spec.md §4.4).
func deriveTenantSigningKey(secret []byte, tenantID string) ([]byte, error) {
	sub := make([]byte, sha256.Size)
	reader := hkdf.New(sha256.New, secret, nil, []byte("idis-break-glass:"+tenantID))
	if _, err := io.ReadFull(reader, sub); err != nil {
		return nil, fmt.Errorf("derive break-glass tenant key: %w", err)
	}
	return sub, nil
}

// SignBreakGlassToken computes the HMAC-SHA256 signature for tok under a
// sub-key derived from secret and tok.TenantID.
func SignBreakGlassToken(tok BreakGlassToken, secret []byte) (string, error) {
	preimage, err := canonjson.Marshal(signingPayload(tok))
	if err != nil {
		return "", fmt.Errorf("marshal break-glass preimage: %w", err)
	}
	tenantKey, err := deriveTenantSigningKey(secret, tok.TenantID)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, tenantKey)
	mac.Write(preimage)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// VerifyBreakGlassToken validates signature, strict expiry, tenant/deal
// binding, actor match and justification length (spec.md §4.4). now is
// passed explicitly so callers control the clock (tests, replay checks).
func VerifyBreakGlassToken(tok BreakGlassToken, sig string, secret []byte, tenantID, actorID, dealID string, now time.Time) error {
	if len(tok.Justification) < MinJustificationLength {
		return apperr.BreakGlassInvalid("justification too short")
	}
	if tok.ExpiresAt.Sub(tok.IssuedAt) > MaxTokenLifetime || !tok.ExpiresAt.After(tok.IssuedAt) {
		return apperr.BreakGlassInvalid("invalid token lifetime")
	}
	if !now.Before(tok.ExpiresAt) {
		return apperr.BreakGlassInvalid("token expired")
	}
	if tok.TenantID != tenantID {
		return apperr.BreakGlassInvalid("tenant mismatch")
	}
	if tok.ActorID != actorID {
		return apperr.BreakGlassInvalid("actor mismatch")
	}
	if dealID != "" && tok.DealID != dealID {
		return apperr.BreakGlassInvalid("deal mismatch")
	}

	expected, err := SignBreakGlassToken(tok, secret)
	if err != nil {
		return apperr.BreakGlassInvalid("signature computation failed")
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(sig)) != 1 {
		return apperr.BreakGlassInvalid("signature mismatch")
	}
	return nil
}

// BreakGlassAuditHashes computes the SHA-256 hashes of the token and
// justification for inclusion in the break_glass.used audit event — the raw
// values are never audited (spec.md §4.4).
func BreakGlassAuditHashes(tok BreakGlassToken, sig string) (tokenHash, justificationHash string) {
	th := sha256.Sum256([]byte(sig))
	jh := sha256.Sum256([]byte(tok.Justification))
	return hex.EncodeToString(th[:]), hex.EncodeToString(jh[:])
}
