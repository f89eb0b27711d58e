package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthenticate_ValidTokenProducesTenantContext(t *testing.T) {
	a := NewTokenAuthenticator("test-secret")
	token := signToken(t, "test-secret", Claims{
		ActorID:  "actor-1",
		TenantID: "tenant-1",
		Roles:    []string{"ANALYST"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	tc, err := a.Authenticate("Bearer " + token)

	require.NoError(t, err)
	assert.Equal(t, "tenant-1", tc.TenantID)
	assert.Equal(t, "actor-1", tc.ActorID)
	assert.True(t, tc.HasRole(RoleAnalyst))
}

func TestAuthenticate_RejectsWrongSecret(t *testing.T) {
	a := NewTokenAuthenticator("test-secret")
	token := signToken(t, "wrong-secret", Claims{TenantID: "tenant-1", Roles: []string{"ANALYST"}})

	_, err := a.Authenticate("Bearer " + token)

	require.Error(t, err)
}

func TestAuthenticate_RejectsMissingTenantID(t *testing.T) {
	a := NewTokenAuthenticator("test-secret")
	token := signToken(t, "test-secret", Claims{Roles: []string{"ANALYST"}})

	_, err := a.Authenticate("Bearer " + token)

	require.Error(t, err)
}

func TestAuthenticate_RejectsUnrecognizedRolesOnly(t *testing.T) {
	a := NewTokenAuthenticator("test-secret")
	token := signToken(t, "test-secret", Claims{TenantID: "tenant-1", Roles: []string{"NOT_A_ROLE"}})

	_, err := a.Authenticate("Bearer " + token)

	require.Error(t, err)
}

func TestAuthenticate_RejectsEmptyToken(t *testing.T) {
	a := NewTokenAuthenticator("test-secret")

	_, err := a.Authenticate("")

	require.Error(t, err)
}
