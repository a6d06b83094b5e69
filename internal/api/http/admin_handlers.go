package http

import (
	"net/http"
	"strconv"

	"github.com/kaaratech/mcq-assessment/internal/ranking"
)

// ResultsHandler serves GET /admin/results?limit=100&offset=0, the
// paged ranked listing for the admin dashboard. Route-level RBAC
// guarantees only admins reach it.
func ResultsHandler(svc *ranking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntDefault(r.URL.Query().Get("limit"), 100)
		offset := parseIntDefault(r.URL.Query().Get("offset"), 0)

		entries, err := svc.List(r.Context(), limit, offset)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
