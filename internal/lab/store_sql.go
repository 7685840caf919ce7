package lab

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
	now    func() time.Time
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver, now: time.Now}
}

const labColumns = `id,name,professor,major,capacity,created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLab(row rowScanner) (Lab, error) {
	var l Lab
	var prof sql.NullString
	if err := row.Scan(&l.ID, &l.Name, &prof, &l.Major, &l.Capacity, &l.CreatedAt); err != nil {
		return Lab{}, err
	}
	l.Professor = prof.String
	return l, nil
}

func (s *SQLStore) ListLabs(ctx context.Context, opts LabListOpts) ([]Lab, error) {
	var rows *sql.Rows
	var err error
	if major := strings.TrimSpace(opts.Major); major != "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+labColumns+` FROM labs WHERE major=$1 ORDER BY major, name`, major)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT `+labColumns+` FROM labs ORDER BY major, name`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Lab{}
	for rows.Next() {
		l, err := scanLab(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetLab(ctx context.Context, id string) (Lab, error) {
	l, err := scanLab(s.db.QueryRowContext(ctx, `SELECT `+labColumns+` FROM labs WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Lab{}, fmt.Errorf("lab %q: %w", id, ErrNotFound)
		}
		return Lab{}, err
	}
	return l, nil
}

func (s *SQLStore) PutLab(ctx context.Context, l Lab) (Lab, error) {
	if err := ValidateCapacity(l.Capacity); err != nil {
		return Lab{}, err
	}
	if strings.TrimSpace(l.Name) == "" {
		return Lab{}, errors.New("lab name required")
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	var prof any
	if l.Professor != "" {
		prof = l.Professor
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO labs (id,name,professor,major,capacity,created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, professor=EXCLUDED.professor, major=EXCLUDED.major, capacity=EXCLUDED.capacity`,
		l.ID, l.Name, prof, l.Major, l.Capacity, s.now().Unix())
	if err != nil {
		return Lab{}, err
	}
	return s.GetLab(ctx, l.ID)
}

func (s *SQLStore) UpdateCapacity(ctx context.Context, id string, capacity int) (Lab, error) {
	if err := ValidateCapacity(capacity); err != nil {
		return Lab{}, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE labs SET capacity=$1 WHERE id=$2`, capacity, id)
	if err != nil {
		return Lab{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Lab{}, fmt.Errorf("lab %q: %w", id, ErrNotFound)
	}
	return s.GetLab(ctx, id)
}

func (s *SQLStore) GetStudent(ctx context.Context, id string) (Student, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,email,gpa,lab_id,created_at,updated_at FROM students WHERE id=$1`, id)
	var st Student
	var labID sql.NullString
	if err := row.Scan(&st.ID, &st.Email, &st.GPA, &labID, &st.CreatedAt, &st.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, fmt.Errorf("student %q: %w", id, ErrNotFound)
		}
		return Student{}, err
	}
	st.LabID = labID.String
	return st, nil
}

// Register upserts the student row. updated_at only moves when the lab or
// GPA changes, so re-submitting the same form keeps the applicant's place
// among equal GPAs.
func (s *SQLStore) Register(ctx context.Context, reg Registration) (st Student, err error) {
	if err := reg.Validate(); err != nil {
		return Student{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Student{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exist int
	if err = tx.QueryRowContext(ctx, `SELECT 1 FROM labs WHERE id=$1`, reg.LabID).Scan(&exist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, fmt.Errorf("lab %q: %w", reg.LabID, ErrUnknownLab)
		}
		return Student{}, err
	}

	now := s.now().Unix()
	_, err = tx.ExecContext(ctx, `INSERT INTO students (id,email,gpa,lab_id,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$5)
		ON CONFLICT (id) DO UPDATE SET
		  email=EXCLUDED.email,
		  gpa=EXCLUDED.gpa,
		  lab_id=EXCLUDED.lab_id,
		  updated_at=CASE
		    WHEN students.lab_id IS DISTINCT FROM EXCLUDED.lab_id OR students.gpa <> EXCLUDED.gpa
		    THEN EXCLUDED.updated_at ELSE students.updated_at END`,
		reg.StudentID, reg.Email, reg.GPA, reg.LabID, now)
	if err != nil {
		return Student{}, err
	}
	if err = tx.Commit(); err != nil {
		return Student{}, err
	}
	return s.GetStudent(ctx, reg.StudentID)
}

func (s *SQLStore) Withdraw(ctx context.Context, studentID string) (Student, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE students SET lab_id=NULL, updated_at=$1 WHERE id=$2`, s.now().Unix(), studentID)
	if err != nil {
		return Student{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Student{}, fmt.Errorf("student %q: %w", studentID, ErrNotFound)
	}
	return s.GetStudent(ctx, studentID)
}

func (s *SQLStore) ListApplicants(ctx context.Context, labID string) ([]Applicant, error) {
	return s.queryApplicants(ctx,
		`SELECT id,email,gpa,lab_id,updated_at FROM students WHERE lab_id=$1 ORDER BY updated_at, id`, labID)
}

func (s *SQLStore) ListAllApplicants(ctx context.Context) ([]Applicant, error) {
	return s.queryApplicants(ctx,
		`SELECT id,email,gpa,lab_id,updated_at FROM students WHERE lab_id IS NOT NULL ORDER BY lab_id, updated_at, id`)
}

func (s *SQLStore) queryApplicants(ctx context.Context, q string, args ...any) ([]Applicant, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Applicant{}
	for rows.Next() {
		var a Applicant
		if err := rows.Scan(&a.StudentID, &a.Email, &a.GPA, &a.LabID, &a.RegisteredAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
