package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kaaratech/mcq-assessment/internal/identity"
)

type fakeStore struct {
	students map[string]*identity.Student // keyed by normalized email
}

func newFakeStore() *fakeStore {
	return &fakeStore{students: map[string]*identity.Student{}}
}

func (f *fakeStore) add(t *testing.T, email, password string) *identity.Student {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	st := &identity.Student{
		ID:           int64(len(f.students) + 1),
		Email:        identity.NormalizeEmail(email),
		FullName:     "Test Student",
		PasswordHash: string(hash),
	}
	f.students[st.Email] = st
	return st
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (identity.Student, error) {
	st, ok := f.students[identity.NormalizeEmail(email)]
	if !ok {
		return identity.Student{}, identity.ErrNotFound
	}
	return *st, nil
}

func (f *fakeStore) SetSessionMarker(_ context.Context, studentID int64, marker string) error {
	for _, st := range f.students {
		if st.ID == studentID {
			m := marker
			st.SessionMarker = &m
			return nil
		}
	}
	return identity.ErrNotFound
}

func (f *fakeStore) Upsert(context.Context, identity.Student) (identity.Student, error) {
	return identity.Student{}, errors.New("not implemented")
}

func newTestService(store identity.Store) *Service {
	return NewService("test-secret", time.Hour, store)
}

func TestLoginAndAuthenticate(t *testing.T) {
	store := newFakeStore()
	store.add(t, "Jane.Doe@Example.com ", "hunter2")
	svc := newTestService(store)
	ctx := context.Background()

	// Lookup is case/whitespace-insensitive.
	tok, err := svc.Login(ctx, "  jane.doe@example.COM", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	st, err := svc.Authenticate(ctx, tok)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if st.Email != "jane.doe@example.com" {
		t.Fatalf("email = %q", st.Email)
	}
}

func TestLoginBadCredential(t *testing.T) {
	store := newFakeStore()
	store.add(t, "jane@example.com", "hunter2")
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "jane@example.com", "wrong"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "hunter2"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
}

// A fresh login rotates the session marker, so the previous token is
// rejected on its next use.
func TestSecondLoginSupersedesFirstToken(t *testing.T) {
	store := newFakeStore()
	store.add(t, "jane@example.com", "hunter2")
	svc := newTestService(store)
	ctx := context.Background()

	first, err := svc.Login(ctx, "jane@example.com", "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Login(ctx, "jane@example.com", "hunter2")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Authenticate(ctx, first); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("stale token err = %v, want ErrUnauthenticated", err)
	}
	if _, err := svc.Authenticate(ctx, second); err != nil {
		t.Fatalf("fresh token rejected: %v", err)
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	store := newFakeStore()
	store.add(t, "jane@example.com", "hunter2")

	issued := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := issued
	svc := newTestService(store).WithClock(func() time.Time { return clock })

	tok, err := svc.Login(context.Background(), "jane@example.com", "hunter2")
	if err != nil {
		t.Fatal(err)
	}

	clock = issued.Add(2 * time.Hour)
	if _, err := svc.Authenticate(context.Background(), tok); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expired token err = %v, want ErrUnauthenticated", err)
	}
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := svc.Authenticate(context.Background(), tok); !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("token %q: err = %v, want ErrUnauthenticated", tok, err)
		}
	}
}

func TestAuthenticateRejectsTokenSignedWithOtherKey(t *testing.T) {
	store := newFakeStore()
	store.add(t, "jane@example.com", "hunter2")
	svcA := NewService("secret-a", time.Hour, store)
	svcB := NewService("secret-b", time.Hour, store)

	tok, err := svcA.Login(context.Background(), "jane@example.com", "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svcB.Authenticate(context.Background(), tok); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("cross-key token err = %v, want ErrUnauthenticated", err)
	}
}
