package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) All(ctx context.Context) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question_text, options_json, correct_json FROM questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		var q Question
		var optsJSON, correctJSON string
		if err := rows.Scan(&q.ID, &q.Text, &optsJSON, &correctJSON); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal([]byte(optsJSON), &q.Options); err != nil {
			return nil, fmt.Errorf("question %d options: %w", q.ID, err)
		}
		if err := json.Unmarshal([]byte(correctJSON), &q.Correct); err != nil {
			return nil, fmt.Errorf("question %d answer key: %w", q.ID, err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// Put inserts or replaces a question. Used by provisioning tooling, not
// by the student-facing flow.
func (s *SQLStore) Put(ctx context.Context, q Question) error {
	optsJSON, err := json.Marshal(q.Options)
	if err != nil {
		return err
	}
	correctJSON, err := json.Marshal(q.Correct)
	if err != nil {
		return err
	}
	if q.ID == 0 {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO questions (question_text, options_json, correct_json) VALUES ($1,$2,$3)`,
			q.Text, string(optsJSON), string(correctJSON))
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO questions (id, question_text, options_json, correct_json)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT (id) DO UPDATE SET
		   question_text=EXCLUDED.question_text,
		   options_json=EXCLUDED.options_json,
		   correct_json=EXCLUDED.correct_json`,
		q.ID, q.Text, string(optsJSON), string(correctJSON))
	return err
}
