package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kaaratech/mcq-assessment/internal/identity"
)

// ErrUnauthenticated covers every token/credential failure: malformed,
// expired, signature-invalid, unknown identity, or superseded session.
// The HTTP contract never distinguishes them.
var ErrUnauthenticated = errors.New("could not validate credentials")

type Claims struct {
	Sub       string `json:"sub"` // normalized email
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Service issues and validates bearer tokens. Each successful login
// rotates the identity's session marker, so at most one token is live
// per student at any time.
type Service struct {
	hmac     []byte
	expiry   time.Duration
	students identity.Store
	now      func() time.Time
}

func NewService(secret string, expiry time.Duration, students identity.Store) *Service {
	return &Service{
		hmac:     []byte(secret),
		expiry:   expiry,
		students: students,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock is test-only for deterministic token timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Login verifies the credential pair and issues a fresh token. The new
// session marker persisted here invalidates all previously issued
// tokens for the same student.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	st, err := s.students.GetByEmail(ctx, email)
	if errors.Is(err, identity.ErrNotFound) {
		return "", ErrUnauthenticated
	}
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(st.PasswordHash), []byte(password)) != nil {
		return "", ErrUnauthenticated
	}

	marker := uuid.NewString()
	if err := s.students.SetSessionMarker(ctx, st.ID, marker); err != nil {
		return "", err
	}
	return s.issue(identity.NormalizeEmail(st.Email), marker)
}

func (s *Service) issue(sub, sessionID string) (string, error) {
	now := s.now()
	claims := &Claims{
		Sub:       sub,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "mcq-assessment",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.hmac)
}

// Authenticate validates a bearer token and returns the student it
// belongs to. A token whose session id no longer matches the stored
// marker has been superseded by a newer login and is rejected.
func (s *Service) Authenticate(ctx context.Context, token string) (identity.Student, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.hmac, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return identity.Student{}, ErrUnauthenticated
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.Sub == "" {
		return identity.Student{}, ErrUnauthenticated
	}

	st, err := s.students.GetByEmail(ctx, claims.Sub)
	if errors.Is(err, identity.ErrNotFound) {
		return identity.Student{}, ErrUnauthenticated
	}
	if err != nil {
		return identity.Student{}, err
	}
	if st.SessionMarker == nil || *st.SessionMarker != claims.SessionID {
		return identity.Student{}, ErrUnauthenticated
	}
	return st, nil
}
