package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_ErrorString_IncludesCodeAndMessage(t *testing.T) {
	e := New(CodeNotFound, "Resource not found", http.StatusNotFound)

	assert.Equal(t, "[not_found] Resource not found", e.Error())
}

func TestError_ErrorString_IncludesWrappedCause(t *testing.T) {
	cause := errors.New("connection refused")
	e := Wrap(CodeDownstream, "Downstream dependency failed", http.StatusBadGateway, cause)

	assert.Contains(t, e.Error(), "connection refused")
}

func TestError_Unwrap_ExposesWrappedCause(t *testing.T) {
	cause := errors.New("boom")
	e := Wrap(CodeInternal, "failed", http.StatusInternalServerError, cause)

	assert.Same(t, cause, errors.Unwrap(e))
}

func TestError_WithDetails_MergesAndChains(t *testing.T) {
	e := New(CodeValidationFailed, "invalid", http.StatusBadRequest).
		WithDetails("field", "cash_balance").
		WithDetails("reason", "missing")

	assert.Equal(t, "cash_balance", e.Details["field"])
	assert.Equal(t, "missing", e.Details["reason"])
}

func TestIs_MatchesWrappedErrorCode(t *testing.T) {
	err := error(NotFound("deal", "deal-1"))

	assert.True(t, Is(err, CodeNotFound))
	assert.False(t, Is(err, CodeConflict))
}

func TestIs_FalseForNonAppError(t *testing.T) {
	assert.False(t, Is(errors.New("plain error"), CodeInternal))
}

func TestAs_ExtractsAppErrorFromChain(t *testing.T) {
	wrapped := fmt.Errorf("pipeline emit: %w", AuditEmitFailed(errors.New("sink down")))

	extracted, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeAuditEmitFailed, extracted.Code)
}

func TestHTTPStatus_ReturnsErrorStatusOrInternalDefault(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, HTTPStatus(RBACDenied()))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}

func TestValidationFailed_OmitsMissingFieldsDetailWhenEmpty(t *testing.T) {
	e := ValidationFailed(nil)

	assert.Nil(t, e.Details)
}

func TestValidationFailed_RecordsMissingFields(t *testing.T) {
	e := ValidationFailed([]string{"cash_balance", "monthly_burn_rate"})

	assert.Equal(t, []string{"cash_balance", "monthly_burn_rate"}, e.Details["missing_fields"])
}
