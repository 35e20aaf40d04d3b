package api

import (
	"encoding/json"
	"net/http"

	"github.com/sandfall/strata/pkg/errors"
)

// apiError is the JSON error envelope every failing endpoint returns.
type apiError struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func newAPIError(err error) *apiError {
	return &apiError{Code: errors.GetCode(err), Message: errors.UserMessage(err)}
}

// statusFor maps error codes to HTTP statuses. Unknown codes are internal
// errors, which keeps accidental new codes from leaking as 200s.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodePresetNotFound, errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidName, errors.ErrCodeInvalidInput,
		errors.ErrCodeJSONMalformed, errors.ErrCodeMissingField,
		errors.ErrCodeOutOfRange, errors.ErrCodeUnknownMode,
		errors.ErrCodeDisallowed, errors.ErrCodeSchemaTooNew,
		errors.ErrCodeCapacity:
		return http.StatusBadRequest
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	if v == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	e := newAPIError(err)
	writeJSON(w, statusFor(e.Code), map[string]*apiError{"error": e})
}
