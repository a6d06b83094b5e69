package auth

import (
	"net/http"
	"strings"

	"github.com/kaaratech/mcq-assessment/internal/identity"
	"github.com/kaaratech/mcq-assessment/internal/rbac"
)

// Middleware validates the bearer token, resolves the student and
// attaches both the identity and its role to the request context.
// adminEmail decides the role split; everyone else is a student.
func Middleware(svc *Service, adminEmail string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			st, err := svc.Authenticate(r.Context(), strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				http.Error(w, "could not validate credentials", http.StatusUnauthorized)
				return
			}
			role := "student"
			if identity.NormalizeEmail(st.Email) == identity.NormalizeEmail(adminEmail) {
				role = "admin"
			}
			ctx := WithStudent(r.Context(), st)
			ctx = rbac.WithRole(ctx, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
