package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kaaratech/mcq-assessment/internal/attempt"
	"github.com/kaaratech/mcq-assessment/internal/auth"
	"github.com/kaaratech/mcq-assessment/internal/catalog"
	"github.com/kaaratech/mcq-assessment/internal/grading"
)

// QuestionsHandler serves GET /questions: starts the attempt on first
// request and returns the question set with answer keys stripped.
func QuestionsHandler(svc *attempt.Service) http.HandlerFunc {
	type out struct {
		StartedAt time.Time          `json:"started_at"`
		Questions []catalog.Question `json:"questions"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		st, ok := auth.StudentFromContext(r.Context())
		if !ok {
			writeError(w, auth.ErrUnauthenticated)
			return
		}
		a, qs, err := svc.RequestQuiz(r.Context(), st.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out{StartedAt: a.StartedAt, Questions: qs})
	}
}

// StatusHandler serves GET /quiz-status for client timer reconciliation.
func StatusHandler(svc *attempt.Service) http.HandlerFunc {
	type out struct {
		StartedAt   time.Time  `json:"started_at"`
		SubmittedAt *time.Time `json:"submitted_at"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		st, ok := auth.StudentFromContext(r.Context())
		if !ok {
			writeError(w, auth.ErrUnauthenticated)
			return
		}
		a, err := svc.GetStatus(r.Context(), st.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out{StartedAt: a.StartedAt, SubmittedAt: a.SubmittedAt})
	}
}

// SubmitHandler serves POST /submit.
func SubmitHandler(svc *attempt.Service) http.HandlerFunc {
	type in struct {
		Answers []grading.Answer `json:"answers"`
	}
	type out struct {
		Message        string    `json:"message"`
		Score          float64   `json:"score"`
		ElapsedSeconds int64     `json:"elapsed_seconds"`
		SubmittedAt    time.Time `json:"submitted_at"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		st, ok := auth.StudentFromContext(r.Context())
		if !ok {
			writeError(w, auth.ErrUnauthenticated)
			return
		}
		var req in
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request", "detail": "malformed json body"})
			return
		}
		a, err := svc.Submit(r.Context(), st.ID, req.Answers)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out{
			Message:        "Quiz submitted successfully!",
			Score:          *a.Score,
			ElapsedSeconds: *a.ElapsedSeconds,
			SubmittedAt:    *a.SubmittedAt,
		})
	}
}
