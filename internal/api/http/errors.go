package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/kaaratech/mcq-assessment/internal/attempt"
	"github.com/kaaratech/mcq-assessment/internal/auth"
)

// Every state-machine rejection maps to a distinct machine-readable
// code, so the UI can message each case; only storage/transport
// failures collapse into a 500.
var errorCodes = map[error]struct {
	status int
	code   string
}{
	auth.ErrUnauthenticated:     {http.StatusUnauthorized, "unauthenticated"},
	attempt.ErrNotFound:         {http.StatusNotFound, "not_found"},
	attempt.ErrAlreadyCompleted: {http.StatusBadRequest, "already_completed"},
	attempt.ErrSessionExpired:   {http.StatusBadRequest, "session_expired"},
	attempt.ErrInvalidState:     {http.StatusBadRequest, "invalid_state"},
	attempt.ErrTimeExceeded:     {http.StatusBadRequest, "time_exceeded"},
	attempt.ErrAlreadySubmitted: {http.StatusBadRequest, "already_submitted"},
}

func writeError(w http.ResponseWriter, err error) {
	for sentinel, m := range errorCodes {
		if errors.Is(err, sentinel) {
			writeJSON(w, m.status, map[string]string{"error": m.code, "detail": sentinel.Error()})
			return
		}
	}
	log.Printf("internal error: %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal", "detail": "internal server error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
