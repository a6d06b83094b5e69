package http_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	api "github.com/kaaratech/mcq-assessment/internal/api/http"
	"github.com/kaaratech/mcq-assessment/internal/attempt"
	"github.com/kaaratech/mcq-assessment/internal/auth"
	"github.com/kaaratech/mcq-assessment/internal/catalog"
	"github.com/kaaratech/mcq-assessment/internal/db"
	"github.com/kaaratech/mcq-assessment/internal/identity"
	"github.com/kaaratech/mcq-assessment/internal/ranking"
	"github.com/kaaratech/mcq-assessment/internal/rbac"
)

const adminEmail = "admin@kaaratech.com"

type env struct {
	srv   *httptest.Server
	dbh   *sql.DB
	clock *time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })

	students := identity.NewSQLStore(dbh)
	questions := catalog.NewSQLStore(dbh)
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	cgpa, tenth, twelfth := 8.0, 90.0, 90.0
	for _, s := range []identity.Student{
		{RollNo: "21CS001", FullName: "Jane Doe", Email: "jane@example.com", PasswordHash: string(hash),
			CGPA: &cgpa, TenthPct: &tenth, TwelfthPct: &twelfth},
		{RollNo: "ADMIN", FullName: "Admin", Email: adminEmail, PasswordHash: string(hash)},
	} {
		if _, err := students.Upsert(ctx, s); err != nil {
			t.Fatal(err)
		}
	}
	for _, q := range []catalog.Question{
		{Text: "single", Options: []string{"A", "B", "C"}, Correct: []string{"B"}},
		{Text: "multi", Options: []string{"A", "B", "C"}, Correct: []string{"A", "C"}},
	} {
		if err := questions.Put(ctx, q); err != nil {
			t.Fatal(err)
		}
	}

	now := time.Now().UTC()
	source := catalog.NewMemoryCache(questions, time.Minute)
	attempts := attempt.NewService(attempt.NewSQLStore(dbh), source, 20*time.Minute, 2*time.Minute).
		WithClock(func() time.Time { return now })
	authSvc := auth.NewService("test-secret", time.Hour, students)
	results := ranking.NewService(dbh, source)

	r := chi.NewRouter()
	r.Post("/token", api.LoginHandler(authSvc))
	r.Group(func(pr chi.Router) {
		pr.Use(auth.Middleware(authSvc, adminEmail))
		pr.With(rbac.Require("quiz:take")).Get("/questions", api.QuestionsHandler(attempts))
		pr.With(rbac.Require("quiz:status")).Get("/quiz-status", api.StatusHandler(attempts))
		pr.With(rbac.Require("quiz:submit")).Post("/submit", api.SubmitHandler(attempts))
		pr.With(rbac.Require("results:view")).Get("/admin/results", api.ResultsHandler(results))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &env{srv: srv, dbh: dbh, clock: &now}
}

func (e *env) login(t *testing.T, email, password string) string {
	t.Helper()
	form := url.Values{"username": {email}, "password": {password}}
	resp, err := http.PostForm(e.srv.URL+"/token", form)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	var out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.TokenType != "bearer" || out.AccessToken == "" {
		t.Fatalf("bad token response: %+v", out)
	}
	return out.AccessToken
}

func (e *env) do(t *testing.T, method, path, token, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var payload any
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	m, _ := payload.(map[string]any)
	return resp, m
}

func TestLoginRejectsBadCredential(t *testing.T) {
	e := newEnv(t)
	resp, err := http.PostForm(e.srv.URL+"/token",
		url.Values{"username": {"jane@example.com"}, "password": {"wrong"}})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestQuizFlow(t *testing.T) {
	e := newEnv(t)
	tok := e.login(t, "jane@example.com", "hunter2")

	// Missing/garbage tokens never reach the handlers.
	resp, _ := e.do(t, "GET", "/questions", "", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", resp.StatusCode)
	}

	// Status before starting: 404.
	resp, body := e.do(t, "GET", "/quiz-status", tok, "")
	if resp.StatusCode != http.StatusNotFound || body["error"] != "not_found" {
		t.Fatalf("status before start = %d %v", resp.StatusCode, body)
	}

	// First questions request starts the clock and strips answer keys.
	resp, body = e.do(t, "GET", "/questions", tok, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("questions: status = %d", resp.StatusCode)
	}
	qs, _ := body["questions"].([]any)
	if len(qs) != 2 {
		t.Fatalf("questions = %d, want 2", len(qs))
	}
	for _, raw := range qs {
		q := raw.(map[string]any)
		if _, leaked := q["correct_answers"]; leaked {
			t.Fatal("answer key leaked to student")
		}
	}

	// Submit: 1.0 for the single-answer B, 0.5 for multi-answer A.
	*e.clock = e.clock.Add(5 * time.Minute)
	resp, body = e.do(t, "POST", "/submit", tok,
		`{"answers":[{"question_id":1,"selected_answer":"B"},{"question_id":2,"selected_answer":"A"}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit: status = %d %v", resp.StatusCode, body)
	}
	if body["score"].(float64) != 1.5 {
		t.Fatalf("score = %v, want 1.5", body["score"])
	}
	if body["elapsed_seconds"].(float64) != 300 {
		t.Fatalf("elapsed = %v, want 300", body["elapsed_seconds"])
	}

	// Second submit and a repeated quiz request are distinct rejections.
	resp, body = e.do(t, "POST", "/submit", tok, `{"answers":[]}`)
	if resp.StatusCode != http.StatusBadRequest || body["error"] != "invalid_state" {
		t.Fatalf("re-submit = %d %v", resp.StatusCode, body)
	}
	resp, body = e.do(t, "GET", "/questions", tok, "")
	if resp.StatusCode != http.StatusBadRequest || body["error"] != "already_completed" {
		t.Fatalf("re-request = %d %v", resp.StatusCode, body)
	}
}

func TestSecondLoginInvalidatesFirstToken(t *testing.T) {
	e := newEnv(t)
	first := e.login(t, "jane@example.com", "hunter2")
	second := e.login(t, "jane@example.com", "hunter2")

	resp, _ := e.do(t, "GET", "/quiz-status", first, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("stale token status = %d, want 401", resp.StatusCode)
	}
	// Fresh token still works (404 because no attempt yet, not 401).
	resp, _ = e.do(t, "GET", "/quiz-status", second, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("fresh token status = %d, want 404", resp.StatusCode)
	}
}

func TestAdminResults(t *testing.T) {
	e := newEnv(t)
	student := e.login(t, "jane@example.com", "hunter2")
	admin := e.login(t, adminEmail, "hunter2")

	// Students cannot read the admin listing.
	resp, _ := e.do(t, "GET", "/admin/results", student, "")
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("student access = %d, want 403", resp.StatusCode)
	}

	// Complete one attempt, then list.
	if r, _ := e.do(t, "GET", "/questions", student, ""); r.StatusCode != http.StatusOK {
		t.Fatal("request quiz failed")
	}
	*e.clock = e.clock.Add(5 * time.Minute)
	if r, _ := e.do(t, "POST", "/submit", student,
		`{"answers":[{"question_id":1,"selected_answer":"B"}]}`); r.StatusCode != http.StatusOK {
		t.Fatal("submit failed")
	}

	req, _ := http.NewRequest("GET", e.srv.URL+"/admin/results", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	adminResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer adminResp.Body.Close()
	if adminResp.StatusCode != http.StatusOK {
		t.Fatalf("admin listing = %d", adminResp.StatusCode)
	}
	var entries []map[string]any
	if err := json.NewDecoder(adminResp.Body).Decode(&entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2 (student + admin)", len(entries))
	}
	// The submitted student ranks first; the admin (no attempt) is last.
	if entries[0]["student"].(map[string]any)["email"] != "jane@example.com" {
		t.Fatalf("first entry = %v", entries[0])
	}
}
