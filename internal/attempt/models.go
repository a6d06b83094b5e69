package attempt

import (
	"context"
	"time"
)

// Attempt records one student's single quiz session. SubmittedAt, Score
// and ElapsedSeconds are set together, exactly once, at submission.
type Attempt struct {
	ID             int64      `json:"id"`
	StudentID      int64      `json:"student_id"`
	StartedAt      time.Time  `json:"started_at"`
	SubmittedAt    *time.Time `json:"submitted_at"`
	Score          *float64   `json:"score"`
	ElapsedSeconds *int64     `json:"elapsed_seconds"`
}

// Submitted reports whether the attempt has been committed.
func (a Attempt) Submitted() bool { return a.SubmittedAt != nil }

// Store is the attempt persistence contract. Implementations must
// provide an atomic read-then-conditionally-write primitive keyed by
// attempt: CommitSubmission succeeds for at most one caller per attempt,
// whether that is enforced by a transactional row lock, a per-key mutex,
// or a conditional update.
type Store interface {
	// GetByStudent returns the student's attempt, or ErrNotFound.
	GetByStudent(ctx context.Context, studentID int64) (Attempt, error)
	// Create inserts the student's attempt. If a concurrent request
	// created one first, the existing attempt is returned instead; a
	// student never ends up with two attempts.
	Create(ctx context.Context, studentID int64, startedAt time.Time) (Attempt, error)
	// CommitSubmission sets score, elapsed seconds and submittedAt if
	// and only if the attempt is still unsubmitted. Returns false when
	// another submission already won; the stored row is left untouched.
	CommitSubmission(ctx context.Context, attemptID int64, score float64, elapsedSeconds int64, submittedAt time.Time) (bool, error)
}
