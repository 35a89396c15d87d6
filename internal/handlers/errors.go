package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

// Client-facing messages.
const (
	MsgIncorrectLogin   = "Incorrect username or password"
	MsgUsernameTaken    = "Username already exists"
	MsgEmailTaken       = "Email already exists"
	MsgAuthorNotFound   = "Author not found"
	MsgBookNotFound     = "Book not found"
	MsgBookExists       = "Book already exists"
	MsgInvalidJSON      = "invalid JSON"
	MsgValidationFailed = "validation failed"
	MsgBodyTooLarge     = "request body too large"
)

// JSONError sends a JSON error response with a single "error" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// JSONValidationError sends a JSON error response with "error" and optional "fields" for field-level details.
// status is typically http.StatusBadRequest (400).
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	out := map[string]interface{}{"error": message}
	if len(fields) > 0 {
		out["fields"] = fields
	}
	json.NewEncoder(w).Encode(out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// internalError logs err against the request and answers 500 without details.
func internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.ErrorContext(r.Context(), op, "error", err, "path", r.URL.Path)
	JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
}
