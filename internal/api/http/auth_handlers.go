package http

import (
	"net/http"

	"github.com/kaaratech/mcq-assessment/internal/auth"
)

// LoginHandler implements the OAuth2 password flow shape:
// POST /token with form fields username/password, returning
// {"access_token": ..., "token_type": "bearer"}.
func LoginHandler(svc *auth.Service) http.HandlerFunc {
	type out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request", "detail": "malformed form body"})
			return
		}
		username := r.PostFormValue("username")
		password := r.PostFormValue("password")
		if username == "" || password == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request", "detail": "username and password required"})
			return
		}
		tok, err := svc.Login(r.Context(), username, password)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out{AccessToken: tok, TokenType: "bearer"})
	}
}
