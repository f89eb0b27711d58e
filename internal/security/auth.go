package security

import (
	"fmt"
	"strings"

	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the JWT payload IDIS issues and authenticates, grounded on the
// teacher's HS256 Supabase-style claim set, extended with the tenant
// fields gate 1 (Authentication) hands to every later gate.
type Claims struct {
	ActorID    string   `json:"sub"`
	Name       string   `json:"name,omitempty"`
	TenantID   string   `json:"tenant_id"`
	Timezone   string   `json:"timezone,omitempty"`
	DataRegion string   `json:"data_region,omitempty"`
	Roles      []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenAuthenticator validates a bearer token and produces the
// TenantContext every subsequent gate consumes.
type TokenAuthenticator struct {
	secret []byte
}

// NewTokenAuthenticator builds a TokenAuthenticator over an HS256 secret.
func NewTokenAuthenticator(secret string) *TokenAuthenticator {
	return &TokenAuthenticator{secret: []byte(strings.TrimSpace(secret))}
}

// Authenticate implements spec.md §4.4 gate 1: parse and verify the bearer
// token, then build a TenantContext. An empty or invalid token, an
// unrecognized role, or a missing tenant_id all fail closed.
func (a *TokenAuthenticator) Authenticate(bearerToken string) (TenantContext, error) {
	if len(a.secret) == 0 {
		return TenantContext{}, apperr.Unauthorized("authentication is not configured")
	}
	token := strings.TrimPrefix(strings.TrimSpace(bearerToken), "Bearer ")
	if token == "" {
		return TenantContext{}, apperr.Unauthorized("missing bearer token")
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return TenantContext{}, apperr.Unauthorized("invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return TenantContext{}, apperr.Unauthorized("invalid token")
	}
	if claims.TenantID == "" {
		return TenantContext{}, apperr.Unauthorized("token missing tenant_id")
	}

	var roles []Role
	for _, r := range claims.Roles {
		role := Role(r)
		if !ValidRole(role) {
			continue
		}
		roles = append(roles, role)
	}
	if len(roles) == 0 {
		return TenantContext{}, apperr.Unauthorized("token carries no recognized role")
	}

	return TenantContext{
		TenantID:   claims.TenantID,
		ActorID:    claims.ActorID,
		Name:       claims.Name,
		Timezone:   claims.Timezone,
		DataRegion: claims.DataRegion,
		Roles:      roles,
	}, nil
}
