package attempt

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"strconv"
	"time"

	"github.com/kaaratech/mcq-assessment/internal/catalog"
	"github.com/kaaratech/mcq-assessment/internal/grading"
)

// AuditLog receives best-effort events after state transitions commit.
type AuditLog interface {
	Append(ctx context.Context, typ, key, dataJSON string) error
}

// Service is the attempt state machine. The server clock is
// authoritative for both start time and elapsed time; nothing the
// client sends influences either.
type Service struct {
	store     Store
	questions catalog.Source
	hardLimit time.Duration
	grace     time.Duration
	audit     AuditLog
	now       func() time.Time
}

func NewService(store Store, questions catalog.Source, hardLimit, grace time.Duration) *Service {
	return &Service{
		store:     store,
		questions: questions,
		hardLimit: hardLimit,
		grace:     grace,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithAudit attaches an audit log for committed submissions.
func (s *Service) WithAudit(a AuditLog) *Service {
	s.audit = a
	return s
}

// WithClock is test-only for deterministic timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RequestQuiz transitions NotStarted -> InProgress (creating the attempt
// on first request) and returns the attempt with a student-safe catalog
// snapshot. A completed attempt fails with ErrAlreadyCompleted, an
// expired one with ErrSessionExpired; neither creates a second attempt.
func (s *Service) RequestQuiz(ctx context.Context, studentID int64) (Attempt, []catalog.Question, error) {
	a, err := s.store.GetByStudent(ctx, studentID)
	switch {
	case errors.Is(err, ErrNotFound):
		a, err = s.store.Create(ctx, studentID, s.now())
		if err != nil {
			return Attempt{}, nil, err
		}
	case err != nil:
		return Attempt{}, nil, err
	case a.Submitted():
		return Attempt{}, nil, ErrAlreadyCompleted
	case s.now().Sub(a.StartedAt) > s.hardLimit:
		// Expiry is derived on access, never persisted: the row stays
		// as-is but is ineligible for further transitions.
		return Attempt{}, nil, ErrSessionExpired
	}

	qs, err := s.questions.All(ctx)
	if err != nil {
		return Attempt{}, nil, err
	}
	return a, catalog.StudentView(qs), nil
}

// GetStatus returns the attempt's timing fields for client-side timer
// reconciliation. Read-only.
func (s *Service) GetStatus(ctx context.Context, studentID int64) (Attempt, error) {
	return s.store.GetByStudent(ctx, studentID)
}

// Submit grades the answers and commits the result atomically. Exactly
// one submission per attempt can win; a concurrent loser gets
// ErrAlreadySubmitted and the winner's result is never overwritten.
func (s *Service) Submit(ctx context.Context, studentID int64, answers []grading.Answer) (Attempt, error) {
	a, err := s.store.GetByStudent(ctx, studentID)
	if errors.Is(err, ErrNotFound) {
		return Attempt{}, ErrInvalidState
	}
	if err != nil {
		return Attempt{}, err
	}
	if a.Submitted() {
		return Attempt{}, ErrInvalidState
	}

	now := s.now()
	elapsed := now.Sub(a.StartedAt)
	if elapsed > s.hardLimit+s.grace {
		return Attempt{}, ErrTimeExceeded
	}

	qs, err := s.questions.All(ctx)
	if err != nil {
		return Attempt{}, err
	}
	score := grading.Score(answers, qs)
	elapsedSeconds := int64(math.Floor(elapsed.Seconds()))

	ok, err := s.store.CommitSubmission(ctx, a.ID, score, elapsedSeconds, now)
	if err != nil {
		return Attempt{}, err
	}
	if !ok {
		return Attempt{}, ErrAlreadySubmitted
	}

	a.Score = &score
	a.ElapsedSeconds = &elapsedSeconds
	a.SubmittedAt = &now

	if s.audit != nil {
		payload, _ := json.Marshal(map[string]any{
			"attempt_id":      a.ID,
			"student_id":      a.StudentID,
			"score":           score,
			"elapsed_seconds": elapsedSeconds,
		})
		if err := s.audit.Append(ctx, "attempt_submitted", strconv.FormatInt(a.ID, 10), string(payload)); err != nil {
			log.Printf("audit append failed for attempt %d: %v", a.ID, err)
		}
	}
	return a, nil
}
