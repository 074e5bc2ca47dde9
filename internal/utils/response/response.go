// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Error responses always share one envelope so API consumers know what to
// expect:
//
//	{ "status": "error", "error": "Insulin must not be empty." }
package response

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aanand-mishra/readmission-client/internal/validation"
)

// Response is the standard envelope returned for error cases.
type Response struct {
	Status string `json:"status"`          // "ok" or "error"
	Error  string `json:"error,omitempty"` // human-readable error detail
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ─────────────────────────────────────────────────────────────────────────────
// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
// ─────────────────────────────────────────────────────────────────────────────
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// OK is the envelope for a bare success.
func OK() Response {
	return Response{Status: StatusOK}
}

// GeneralError wraps any Go error into the standard Response shape.
// Use this for unexpected errors (decode errors, missing sessions, etc.)
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError joins every validation message into one Response, in the
// order the fields are declared on the form.
//
//	{ "status": "error", "error": "Time in Hospital must be a non-negative integer., Insulin must not be empty." }
func ValidationError(errs validation.Errors) Response {
	return Response{
		Status: StatusError,
		Error:  strings.Join(errs.Messages(), ", "),
	}
}
