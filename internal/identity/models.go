package identity

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned when no student matches the lookup.
var ErrNotFound = errors.New("student not found")

// Student is the identity record. Academic attributes are nullable:
// ranking skips students with incomplete academics rather than
// defaulting them to zero.
type Student struct {
	ID            int64    `json:"id"`
	RollNo        string   `json:"roll_no"`
	FullName      string   `json:"full_name"`
	Email         string   `json:"email"`
	PasswordHash  string   `json:"-"`
	CGPA          *float64 `json:"cgpa"`
	TenthPct      *float64 `json:"tenth_percentage"`
	TwelfthPct    *float64 `json:"twelfth_percentage"`
	SessionMarker *string  `json:"-"`
}

// NormalizeEmail is the canonical email form used for lookups and
// uniqueness: case- and surrounding-whitespace-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type Store interface {
	// GetByEmail looks a student up by normalized email.
	GetByEmail(ctx context.Context, email string) (Student, error)
	// SetSessionMarker replaces the student's single live session id,
	// superseding any previously issued token.
	SetSessionMarker(ctx context.Context, studentID int64, marker string) error
	// Upsert inserts or updates a student keyed by normalized email.
	Upsert(ctx context.Context, s Student) (Student, error)
}
