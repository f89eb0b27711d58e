package deliverable

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderText_IsDeterministicAcrossCalls(t *testing.T) {
	d := sampleDeliverable()

	first := RenderText(d, true)
	second := RenderText(d, true)

	assert.Equal(t, first, second)
}

func TestRenderText_IncludesAuditAppendixOnlyWhenRequested(t *testing.T) {
	d := sampleDeliverable()

	withAppendix := RenderText(d, true)
	withoutAppendix := RenderText(d, false)

	assert.True(t, strings.Contains(withAppendix, "Audit Appendix"))
	assert.True(t, strings.Contains(withAppendix, "CLAIM:claim-001"))
	assert.False(t, strings.Contains(withoutAppendix, "Audit Appendix"))
}
