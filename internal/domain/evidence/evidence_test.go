package evidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvidence_IsHumanVerified_TrueForHumanOrDualVerified(t *testing.T) {
	assert.True(t, Evidence{VerificationStatus: VerificationHumanVerified}.IsHumanVerified())
	assert.True(t, Evidence{VerificationStatus: VerificationDualVerified}.IsHumanVerified())
}

func TestEvidence_IsHumanVerified_FalseForUnverified(t *testing.T) {
	assert.False(t, Evidence{VerificationStatus: VerificationUnverified}.IsHumanVerified())
	assert.False(t, Evidence{}.IsHumanVerified())
}
