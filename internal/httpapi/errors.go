package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/albarami/idis/internal/platform/apperr"
)

// errorBody is the single wire-visible error envelope (spec.md §7
// "Propagation": every layer boundary renders through one builder).
type errorBody struct {
	Code      apperr.Code            `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id"`
}

// writeError renders err as the standard error envelope, always including
// the request's correlation ID.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		appErr = apperr.Internal("internal error", err)
	}
	body := errorBody{
		Code:      appErr.Code,
		Message:   appErr.Message,
		Details:   appErr.Details,
		RequestID: requestIDFrom(r.Context()),
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-Id", body.RequestID)
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(body)
}
