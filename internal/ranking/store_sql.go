package ranking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kaaratech/mcq-assessment/internal/attempt"
	"github.com/kaaratech/mcq-assessment/internal/catalog"
	"github.com/kaaratech/mcq-assessment/internal/identity"
)

// Service produces the paged administrative listing of
// (student, attempt, normalized score) tuples.
type Service struct {
	db        *sql.DB
	questions catalog.Source
}

func NewService(db *sql.DB, questions catalog.Source) *Service {
	return &Service{db: db, questions: questions}
}

// List returns one page of ranked entries. The ordering contract
// (score desc, nulls last, name asc) is applied in SQL so pages remain
// stable; normalized scores are derived per row afterwards.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	qs, err := s.questions.All(ctx)
	if err != nil {
		return nil, err
	}
	total := len(qs)

	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.roll_no, s.full_name, s.email, s.cgpa, s.tenth_percentage, s.twelfth_percentage,
		        a.id, a.started_at, a.submitted_at, a.score, a.elapsed_seconds
		 FROM students s
		 LEFT JOIN attempts a ON a.student_id = s.id
		 ORDER BY CASE WHEN a.score IS NULL THEN 1 ELSE 0 END, a.score DESC, s.full_name ASC
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var st identity.Student
		var cgpa, tenth, twelfth, score sql.NullFloat64
		var attemptID, started, submitted, elapsed sql.NullInt64
		if err := rows.Scan(&st.ID, &st.RollNo, &st.FullName, &st.Email, &cgpa, &tenth, &twelfth,
			&attemptID, &started, &submitted, &score, &elapsed); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		if cgpa.Valid {
			st.CGPA = &cgpa.Float64
		}
		if tenth.Valid {
			st.TenthPct = &tenth.Float64
		}
		if twelfth.Valid {
			st.TwelfthPct = &twelfth.Float64
		}

		e := Entry{Student: st}
		if attemptID.Valid {
			a := attempt.Attempt{
				ID:        attemptID.Int64,
				StudentID: st.ID,
				StartedAt: time.Unix(started.Int64, 0).UTC(),
			}
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
			e.Attempt = &a
			if v, ok := Normalize(a, st, total); ok {
				e.Normalized = &v
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
