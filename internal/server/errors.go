package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/aylalah/ag-rms-sub000/internal/apperr"
)

// statusFor maps the closed error-kind enum onto HTTP statuses. The
// envelope itself still carries only the message string; clients that need
// to branch do so on the status.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON renders a response body.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("server: failed to encode response: %v", err)
	}
}

// writeError renders the {error} envelope every operation failure uses.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(apperr.KindOf(err)), map[string]string{"error": err.Error()})
}
