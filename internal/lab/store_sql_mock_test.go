package lab

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	dbh, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbh.Close() })
	s := NewSQLStore(dbh, "postgres")
	s.now = func() time.Time { return time.Unix(1700000000, 0) }
	return s, mock
}

func TestSQLStoreRegisterUnknownLabRollsBack(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT 1 FROM labs WHERE id=\$1`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectRollback()

	_, err := s.Register(context.Background(), Registration{StudentID: "s1", Email: "e", GPA: 3.1, LabID: "ghost"})
	assert.ErrorIs(t, err, ErrUnknownLab)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreRegisterCommits(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT 1 FROM labs WHERE id=\$1`).
		WithArgs("l1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec(`INSERT INTO students`).
		WithArgs("s1", "s1@u.example.ac.jp", 3.1, "l1", int64(1700000000)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT id,email,gpa,lab_id,created_at,updated_at FROM students WHERE id=\$1`).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "gpa", "lab_id", "created_at", "updated_at"}).
			AddRow("s1", "s1@u.example.ac.jp", 3.1, "l1", 1700000000, 1700000000))

	st, err := s.Register(context.Background(), Registration{StudentID: "s1", Email: "s1@u.example.ac.jp", GPA: 3.1, LabID: "l1"})
	require.NoError(t, err)
	assert.Equal(t, "l1", st.LabID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreUpdateCapacityNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE labs SET capacity=\$1 WHERE id=\$2`).
		WithArgs(4, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := s.UpdateCapacity(context.Background(), "missing", 4)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreListApplicantsQuery(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`FROM students WHERE lab_id=\$1 ORDER BY updated_at, id`).
		WithArgs("l1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "gpa", "lab_id", "updated_at"}).
			AddRow("s2", "b@x", 3.0, "l1", 10).
			AddRow("s1", "a@x", 3.9, "l1", 11))

	got, err := s.ListApplicants(context.Background(), "l1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "s2", got[0].StudentID)
	assert.Equal(t, int64(11), got[1].RegisteredAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
