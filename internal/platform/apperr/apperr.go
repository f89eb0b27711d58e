// Package apperr provides the single typed-error envelope used across every
// IDIS layer. Services never return bare errors across a layer boundary; they
// return (or wrap into) an *Error so the HTTP boundary can render a stable
// {code, message, details, request_id} body without inspecting error strings.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, wire-visible error code. Codes are never renumbered.
type Code string

const (
	CodeInvalidRequest              Code = "INVALID_REQUEST"
	CodeInvalidJSON                 Code = "INVALID_JSON"
	CodeInvalidLimit                Code = "INVALID_LIMIT"
	CodeInvalidCursor               Code = "INVALID_CURSOR"
	CodeValidationFailed            Code = "VALIDATION_FAILED"
	CodeNoFreeFactsViolation        Code = "NO_FREE_FACTS_VIOLATION"
	CodeExtractionGateBlocked       Code = "EXTRACTION_GATE_BLOCKED"
	CodeMuhasabahRejected           Code = "MUHASABAH_REJECTED"
	CodeNotFound                    Code = "not_found"
	CodeUnauthorized                Code = "unauthorized"
	CodeRBACDenied                  Code = "RBAC_DENIED"
	CodeABACResolutionFailed        Code = "ABAC_RESOLUTION_FAILED"
	CodeDeniedBreakGlassRequired    Code = "DENIED_BREAK_GLASS_REQUIRED"
	CodeDeniedUnknownOrOutOfScope   Code = "DENIED_UNKNOWN_OR_OUT_OF_SCOPE"
	CodeResidencyRegionMismatch     Code = "RESIDENCY_REGION_MISMATCH"
	CodeResidencyServiceRegionUnset Code = "RESIDENCY_SERVICE_REGION_UNSET"
	CodeBYOKKeyRevoked              Code = "BYOK_KEY_REVOKED"
	CodeDeletionBlockedByHold       Code = "DELETION_BLOCKED_BY_HOLD"
	CodeBreakGlassInvalid           Code = "BREAK_GLASS_INVALID"
	CodeConflict                    Code = "CONFLICT"
	CodeIdempotencyMismatch         Code = "IDEMPOTENCY_MISMATCH"
	CodeAuditEmitFailed             Code = "AUDIT_EMIT_FAILED"
	CodeCalcIntegrityError          Code = "CALC_INTEGRITY_ERROR"
	CodeDualWriteConsistencyError   Code = "DUAL_WRITE_CONSISTENCY_ERROR"
	CodeDownstream                  Code = "DOWNSTREAM_ERROR"
	CodeInternal                    Code = "INTERNAL"
)

// Error is the structured error type propagated across layer boundaries.
type Error struct {
	Code       Code                   `json:"code"`
	Message    string                 `json:"message"`
	HTTPStatus int                    `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Err        error                  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetails merges a key/value pair into Details and returns e for chaining.
func (e *Error) WithDetails(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates an *Error with no wrapped cause.
func New(code Code, message string, httpStatus int) *Error {
	return &Error{Code: code, Message: message, HTTPStatus: httpStatus}
}

// Wrap creates an *Error carrying an underlying cause. The cause is never
// rendered to the client; it is retained for logs only.
func Wrap(code Code, message string, httpStatus int, err error) *Error {
	return &Error{Code: code, Message: message, HTTPStatus: httpStatus, Err: err}
}

// --- Validation failures (400) ---

func InvalidRequest(reason string) *Error {
	return New(CodeInvalidRequest, "Invalid request", http.StatusBadRequest).WithDetails("reason", reason)
}

func InvalidJSON(err error) *Error {
	return Wrap(CodeInvalidJSON, "Request body is not valid JSON", http.StatusBadRequest, err)
}

func InvalidLimit(limit int) *Error {
	return New(CodeInvalidLimit, "limit must be between 1 and 200", http.StatusBadRequest).WithDetails("limit", limit)
}

func InvalidCursor(cursor string) *Error {
	return New(CodeInvalidCursor, "cursor must be an ISO-8601 timestamp", http.StatusBadRequest).WithDetails("cursor", cursor)
}

func ValidationFailed(missingFields []string) *Error {
	e := New(CodeValidationFailed, "Validation failed", http.StatusBadRequest)
	if len(missingFields) > 0 {
		e.WithDetails("missing_fields", missingFields)
	}
	return e
}

func NoFreeFactsViolation(paths []string) *Error {
	return New(CodeNoFreeFactsViolation, "One or more facts lack a claim or calculation reference", http.StatusBadRequest).
		WithDetails("offending_paths", paths)
}

func ExtractionGateBlocked(blockedClaimIDs []string) *Error {
	return New(CodeExtractionGateBlocked, "One or more inputs failed the extraction-confidence gate", http.StatusBadRequest).
		WithDetails("blocked_claim_ids", blockedClaimIDs)
}

func MuhasabahRejected(reasonCode string) *Error {
	return New(CodeMuhasabahRejected, "Agent output rejected by the Muhasabah gate", http.StatusBadRequest).
		WithDetails("reason_code", reasonCode)
}

// --- Policy denials (403) ---

func Unauthorized(message string) *Error {
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

func RBACDenied() *Error {
	return New(CodeRBACDenied, "Access denied", http.StatusForbidden)
}

func ABACResolutionFailed() *Error {
	return New(CodeABACResolutionFailed, "Access denied", http.StatusForbidden)
}

func DeniedBreakGlassRequired() *Error {
	return New(CodeDeniedBreakGlassRequired, "Access denied", http.StatusForbidden).WithDetails("requires_break_glass", true)
}

func DeniedUnknownOrOutOfScope() *Error {
	return New(CodeDeniedUnknownOrOutOfScope, "Access denied", http.StatusForbidden)
}

func ResidencyRegionMismatch() *Error {
	return New(CodeResidencyRegionMismatch, "Access denied", http.StatusForbidden)
}

func ResidencyServiceRegionUnset() *Error {
	return New(CodeResidencyServiceRegionUnset, "Access denied", http.StatusForbidden)
}

func BYOKKeyRevoked() *Error {
	return New(CodeBYOKKeyRevoked, "Access denied", http.StatusForbidden)
}

func DeletionBlockedByHold() *Error {
	return New(CodeDeletionBlockedByHold, "Deletion is blocked by an active legal hold", http.StatusForbidden)
}

func BreakGlassInvalid(reason string) *Error {
	return New(CodeBreakGlassInvalid, "Access denied", http.StatusForbidden).WithDetails("reason", reason)
}

// --- Not found (404) ---

func NotFound(resource, id string) *Error {
	return New(CodeNotFound, "Resource not found", http.StatusNotFound)
}

// --- Conflict (409) ---

func Conflict(message string) *Error {
	return New(CodeConflict, message, http.StatusConflict)
}

func IdempotencyMismatch() *Error {
	return New(CodeIdempotencyMismatch, "Idempotency-Key reused with a different request body", http.StatusConflict)
}

// --- Audit / compliance failures (500, always fatal for the mutation) ---

func AuditEmitFailed(err error) *Error {
	return Wrap(CodeAuditEmitFailed, "Audit event could not be recorded", http.StatusInternalServerError, err)
}

// --- Integrity failures (500) ---

func CalcIntegrityError(calcID string) *Error {
	return New(CodeCalcIntegrityError, "Reproducibility hash mismatch", http.StatusInternalServerError).
		WithDetails("calc_id", calcID)
}

func DualWriteConsistencyError(resource, id string, err error) *Error {
	return Wrap(CodeDualWriteConsistencyError, "Saga compensation failed; store and graph are inconsistent", http.StatusInternalServerError, err).
		WithDetails("resource", resource).WithDetails("id", id)
}

// --- Downstream / network ---

func Downstream(service string, err error) *Error {
	return Wrap(CodeDownstream, "Downstream dependency failed", http.StatusBadGateway, err).WithDetails("service", service)
}

func Internal(message string, err error) *Error {
	return Wrap(CodeInternal, message, http.StatusInternalServerError, err)
}

// Is reports whether err is (or wraps) an *Error with the given code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// As extracts an *Error from err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// HTTPStatus returns the HTTP status for err, defaulting to 500 when err is
// not an *Error.
func HTTPStatus(err error) int {
	if e, ok := As(err); ok {
		return e.HTTPStatus
	}
	return http.StatusInternalServerError
}
