// Package httputil centralizes JSON encoding and domain error translation
// for HTTP handlers, keeping the error envelope consistent across endpoints.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "dossier/pkg/domain-errors"
)

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the JSON error envelope.
// Internal errors omit the description: their messages describe backend
// state that callers have no business seeing.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)

	body := map[string]string{"error": string(code)}
	var de *dErrors.Error
	if errors.As(err, &de) && status < http.StatusInternalServerError {
		body["error_description"] = de.Message
	}
	WriteJSON(w, status, body)
}

// Decode parses a JSON request body into T, translating failures into an
// invalid_input error response. The bool reports whether decoding succeeded.
func Decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		WriteError(w, dErrors.Wrap(dErrors.CodeInvalidInput, "malformed request body", err))
		return v, false
	}
	return v, true
}
