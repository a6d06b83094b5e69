package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) GetByEmail(ctx context.Context, email string) (Student, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, roll_no, full_name, email, password_hash, cgpa, tenth_percentage, twelfth_percentage, session_marker
		 FROM students WHERE lower(email)=$1`, NormalizeEmail(email))
	return scanStudent(row)
}

func (s *SQLStore) SetSessionMarker(ctx context.Context, studentID int64, marker string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE students SET session_marker=$1 WHERE id=$2`, marker, studentID)
	if err != nil {
		return fmt.Errorf("set session marker: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Upsert(ctx context.Context, st Student) (Student, error) {
	email := NormalizeEmail(st.Email)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO students (roll_no, full_name, email, password_hash, cgpa, tenth_percentage, twelfth_percentage)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (email) DO UPDATE SET
		   roll_no=EXCLUDED.roll_no,
		   full_name=EXCLUDED.full_name,
		   password_hash=EXCLUDED.password_hash,
		   cgpa=EXCLUDED.cgpa,
		   tenth_percentage=EXCLUDED.tenth_percentage,
		   twelfth_percentage=EXCLUDED.twelfth_percentage`,
		st.RollNo, st.FullName, email, st.PasswordHash, st.CGPA, st.TenthPct, st.TwelfthPct)
	if err != nil {
		return Student{}, fmt.Errorf("upsert student: %w", err)
	}
	return s.GetByEmail(ctx, email)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (Student, error) {
	var st Student
	var cgpa, tenth, twelfth sql.NullFloat64
	var marker sql.NullString
	err := row.Scan(&st.ID, &st.RollNo, &st.FullName, &st.Email, &st.PasswordHash, &cgpa, &tenth, &twelfth, &marker)
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, ErrNotFound
	}
	if err != nil {
		return Student{}, fmt.Errorf("scan student: %w", err)
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
	if marker.Valid {
		st.SessionMarker = &marker.String
	}
	return st, nil
}
