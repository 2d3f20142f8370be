package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/nicolep999/moodie/internal/apperr"
	"github.com/nicolep999/moodie/internal/database"
)

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[http] encode response: %v", err)
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handlerFunc is a request handler that reports failures as errors instead of
// writing status codes itself.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts a handlerFunc, mapping service errors to HTTP responses in
// one place. Unrecognized errors become opaque 500s; the detail goes to the
// log, not the client.
func handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		var ve *apperr.ValidationError
		var ce *apperr.ConflictError
		switch {
		case errors.As(err, &ve):
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": ve.Message,
				"field": ve.Field,
			})
		case errors.As(err, &ce):
			jsonError(w, ce.Message, http.StatusConflict)
		case errors.Is(err, apperr.ErrUnauthorized):
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "authentication required",
				"login": "/api/auth/login",
			})
		case errors.Is(err, apperr.ErrForbidden):
			writeJSON(w, http.StatusForbidden, map[string]string{
				"error": "permission denied",
				"home":  "/",
			})
		case errors.Is(err, database.ErrNotFound):
			jsonError(w, "not found", http.StatusNotFound)
		default:
			log.Printf("[http] %s %s: %v", r.Method, r.URL.Path, err)
			jsonError(w, "internal server error", http.StatusInternalServerError)
		}
	}
}

// errBadID rejects non-numeric or non-positive path ids.
var errBadID = apperr.Validationf("id", "invalid id")

// decodeBody parses a JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validationf("", "invalid request body")
	}
	return nil
}
