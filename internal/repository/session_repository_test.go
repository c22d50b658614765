package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/thesis-defense-api/internal/models"
)

func newSessionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func sessionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "term_id", "date", "start_time", "end_time", "classroom",
		"student_id", "supervisor1_id", "supervisor2_id", "supervisor3_id", "supervisor4_id",
		"monitor_id", "description", "is_active", "concluded",
		"created_at", "updated_at", "created_by", "updated_by",
	})
}

func judgeRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "session_id", "judge_id", "created_at"})
}

func expectTermSnapshot(mock sqlmock.Sqlmock, termID string, sessions *sqlmock.Rows, judges *sqlmock.Rows) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE term_id = $1 ORDER BY date ASC, start_time ASC")).
		WithArgs(termID).
		WillReturnRows(sessions)
	mock.ExpectQuery(regexp.QuoteMeta("FROM judge_assignments j JOIN sessions s ON s.id = j.session_id WHERE s.term_id = $1")).
		WithArgs(termID).
		WillReturnRows(judges)
}

func TestSessionRepositorySubmitInTermCommits(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtextextended($1, 0))")).
		WithArgs("sessions:term-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	expectTermSnapshot(mock, "term-1", sessionRows(), judgeRows())
	mock.ExpectExec("INSERT INTO sessions").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO judge_assignments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	session := models.Session{
		TermID:        "term-1",
		Date:          time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC),
		StartTime:     "10:00",
		EndTime:       "11:00",
		Classroom:     "3",
		StudentID:     "stu-1",
		Supervisor1ID: "sup-1",
		MonitorID:     "mon-1",
		IsActive:      true,
	}
	saved, err := repo.SubmitInTerm(context.Background(), "term-1", func(existing []models.Session) (*models.Session, []string, error) {
		assert.Empty(t, existing)
		return &session, []string{"judge-1"}, nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Len(t, saved.Judges, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositorySubmitInTermRejectionRollsBack(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtextextended($1, 0))")).
		WithArgs("sessions:term-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	expectTermSnapshot(mock, "term-1", sessionRows(), judgeRows())
	mock.ExpectRollback()

	rejection := errors.New("classroom is already booked")
	_, err := repo.SubmitInTerm(context.Background(), "term-1", func(existing []models.Session) (*models.Session, []string, error) {
		return nil, nil, rejection
	})
	require.ErrorIs(t, err, rejection)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositorySubmitInTermUniqueViolation(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtextextended($1, 0))")).
		WithArgs("sessions:term-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	expectTermSnapshot(mock, "term-1", sessionRows(), judgeRows())
	mock.ExpectExec("INSERT INTO sessions").WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	session := models.Session{TermID: "term-1"}
	_, err := repo.SubmitInTerm(context.Background(), "term-1", func(existing []models.Session) (*models.Session, []string, error) {
		return &session, nil, nil
	})
	require.ErrorIs(t, err, ErrStorageConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListByTermAttachesJudges(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	now := time.Now()
	sessions := sessionRows().
		AddRow("s1", "term-1", now, "10:00", "11:00", "3", "stu-1", "sup-1", nil, nil, nil, "mon-1", "", true, false, now, now, "unknown", "unknown").
		AddRow("s2", "term-1", now, "12:00", "13:00", "4", "stu-2", "sup-2", nil, nil, nil, "mon-2", "", false, false, now, now, "unknown", "unknown")
	judges := judgeRows().
		AddRow("j1", "s1", "judge-1", now).
		AddRow("j2", "s1", "judge-2", now)
	expectTermSnapshot(mock, "term-1", sessions, judges)

	list, err := repo.ListByTerm(context.Background(), "term-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Len(t, list[0].Judges, 2)
	assert.Empty(t, list[1].Judges)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE id = $1")).
		WithArgs("s1").
		WillReturnRows(sessionRows().
			AddRow("s1", "term-1", now, "10:00", "11:00", "3", "stu-1", "sup-1", nil, nil, nil, "mon-1", "", true, false, now, now, "unknown", "unknown"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM judge_assignments WHERE session_id = $1")).
		WithArgs("s1").
		WillReturnRows(judgeRows().AddRow("j1", "s1", "judge-1", now))

	session, err := repo.FindByID(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", session.ID)
	assert.Len(t, session.Judges, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryUpdateConcluded(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions SET concluded = $2, updated_at = $3, updated_by = $4 WHERE id = $1")).
		WithArgs("s1", true, sqlmock.AnyArg(), "dr. admin").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateConcluded(context.Background(), "s1", true, "dr. admin"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM judge_assignments WHERE session_id = $1")).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE id = $1")).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "s1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
