package attempt

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) GetByStudent(ctx context.Context, studentID int64) (Attempt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, student_id, started_at, submitted_at, score, elapsed_seconds
		 FROM attempts WHERE student_id=$1`, studentID)
	return scanAttempt(row)
}

func (s *SQLStore) Create(ctx context.Context, studentID int64, startedAt time.Time) (Attempt, error) {
	// UNIQUE(student_id) plus DO NOTHING makes two near-simultaneous
	// first requests converge on a single row: the loser simply rereads.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (student_id, started_at) VALUES ($1,$2)
		 ON CONFLICT (student_id) DO NOTHING`,
		studentID, startedAt.UTC().Unix())
	if err != nil {
		return Attempt{}, fmt.Errorf("create attempt: %w", err)
	}
	return s.GetByStudent(ctx, studentID)
}

func (s *SQLStore) CommitSubmission(ctx context.Context, attemptID int64, score float64, elapsedSeconds int64, submittedAt time.Time) (bool, error) {
	// Conditional update is the atomic read-then-conditionally-write
	// primitive: the WHERE clause rechecks submitted_at under the
	// database's row lock, so at most one caller can flip it.
	res, err := s.db.ExecContext(ctx,
		`UPDATE attempts SET score=$1, elapsed_seconds=$2, submitted_at=$3
		 WHERE id=$4 AND submitted_at IS NULL`,
		score, elapsedSeconds, submittedAt.UTC().Unix(), attemptID)
	if err != nil {
		return false, fmt.Errorf("commit submission: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("commit submission: %w", err)
	}
	return n == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (Attempt, error) {
	var a Attempt
	var started int64
	var submitted, elapsed sql.NullInt64
	var score sql.NullFloat64
	err := row.Scan(&a.ID, &a.StudentID, &started, &submitted, &score, &elapsed)
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, ErrNotFound
	}
	if err != nil {
		return Attempt{}, fmt.Errorf("scan attempt: %w", err)
	}
	a.StartedAt = time.Unix(started, 0).UTC()
	if submitted.Valid {
		t := time.Unix(submitted.Int64, 0).UTC()
		a.SubmittedAt = &t
	}
	if score.Valid {
		a.Score = &score.Float64
	}
	if elapsed.Valid {
		a.ElapsedSeconds = &elapsed.Int64
	}
	return a, nil
}
