package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/thesis-defense-api/internal/models"
	"github.com/noah-isme/thesis-defense-api/pkg/database"
)

// ErrStorageConflict signals that a write was rejected by a storage-layer
// constraint (duplicate slot or serialization failure) even though the
// admission engine saw a clean snapshot. Callers may retry the submission.
var ErrStorageConflict = errors.New("storage rejected a conflicting write")

const sessionColumns = `id, term_id, date, start_time, end_time, classroom, student_id, supervisor1_id, supervisor2_id, supervisor3_id, supervisor4_id, monitor_id, description, is_active, concluded, created_at, updated_at, created_by, updated_by`

// SessionRepository provides persistence for defense sessions and their
// judge assignments.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// BeginTermTx opens a transaction that serializes all admissions for the
// given term via an advisory lock, so read-validate-write sequences for one
// term never interleave.
func (r *SessionRepository) BeginTermTx(ctx context.Context, termID string) (*sqlx.Tx, error) {
	return database.BeginScopedTx(ctx, r.db, "sessions:"+termID)
}

// SubmitInTerm runs one admission as a unit: it takes the term lock, loads
// the current sessions of the term, hands them to decide, and persists the
// returned session with its judges in the same transaction. When decide
// returns an error nothing is written. The committed session is returned.
func (r *SessionRepository) SubmitInTerm(ctx context.Context, termID string, decide func(existing []models.Session) (*models.Session, []string, error)) (*models.Session, error) {
	tx, err := r.BeginTermTx(ctx, termID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var existing []models.Session
	existing, err = r.ListByTermTx(ctx, tx, termID)
	if err != nil {
		return nil, err
	}

	var session *models.Session
	var judgeIDs []string
	session, judgeIDs, err = decide(existing)
	if err != nil {
		return nil, err
	}

	if err = r.SaveTx(ctx, tx, session, judgeIDs); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		if isConstraintViolation(err) {
			err = fmt.Errorf("commit session: %w", ErrStorageConflict)
			return nil, err
		}
		err = fmt.Errorf("commit session: %w", err)
		return nil, err
	}
	return session, nil
}

// ListByTerm eagerly loads every session of a term with its judge list in
// two round trips (one for sessions, one for all judge rows of the term).
func (r *SessionRepository) ListByTerm(ctx context.Context, termID string) ([]models.Session, error) {
	return listByTerm(ctx, r.db, termID)
}

// ListByTermTx is ListByTerm inside an existing transaction, used by the
// admission path so the validated snapshot and the write share one view.
func (r *SessionRepository) ListByTermTx(ctx context.Context, tx *sqlx.Tx, termID string) ([]models.Session, error) {
	if tx == nil {
		return nil, fmt.Errorf("nil transaction provided")
	}
	return listByTerm(ctx, tx, termID)
}

func listByTerm(ctx context.Context, q sqlx.QueryerContext, termID string) ([]models.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE term_id = $1 ORDER BY date ASC, start_time ASC`, sessionColumns)
	var sessions []models.Session
	if err := sqlx.SelectContext(ctx, q, &sessions, query, termID); err != nil {
		return nil, fmt.Errorf("list sessions by term: %w", err)
	}

	const judgeQuery = `SELECT j.id, j.session_id, j.judge_id, j.created_at FROM judge_assignments j JOIN sessions s ON s.id = j.session_id WHERE s.term_id = $1 ORDER BY j.created_at ASC`
	var judges []models.JudgeAssignment
	if err := sqlx.SelectContext(ctx, q, &judges, judgeQuery, termID); err != nil {
		return nil, fmt.Errorf("list judge assignments by term: %w", err)
	}

	attachJudges(sessions, judges)
	return sessions, nil
}

// FindByID loads a session and its judge list.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE id = $1`, sessionColumns)
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}

	const judgeQuery = `SELECT id, session_id, judge_id, created_at FROM judge_assignments WHERE session_id = $1 ORDER BY created_at ASC`
	if err := r.db.SelectContext(ctx, &session.Judges, judgeQuery, id); err != nil {
		return nil, fmt.Errorf("list session judges: %w", err)
	}
	return &session, nil
}

// List returns sessions with optional filtering and pagination, judges
// attached in one extra round trip.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error) {
	base := "FROM sessions WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.TermID != "" {
		conditions = append(conditions, fmt.Sprintf("term_id = $%d", len(args)+1))
		args = append(args, filter.TermID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf(`(supervisor1_id = $%d OR supervisor2_id = $%d OR supervisor3_id = $%d OR supervisor4_id = $%d OR monitor_id = $%d OR id IN (SELECT session_id FROM judge_assignments WHERE judge_id = $%d))`,
			len(args)+1, len(args)+1, len(args)+1, len(args)+1, len(args)+1, len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Classroom != "" {
		conditions = append(conditions, fmt.Sprintf("classroom = $%d", len(args)+1))
		args = append(args, filter.Classroom)
	}
	if filter.Date != nil {
		conditions = append(conditions, fmt.Sprintf("date = $%d", len(args)+1))
		args = append(args, *filter.Date)
	}
	if filter.Concluded != nil {
		conditions = append(conditions, fmt.Sprintf("concluded = $%d", len(args)+1))
		args = append(args, *filter.Concluded)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"date":       true,
		"start_time": true,
		"classroom":  true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, start_time ASC LIMIT %d OFFSET %d", sessionColumns, base, sortBy, order, size, offset)
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	if len(sessions) > 0 {
		ids := make([]string, 0, len(sessions))
		for _, s := range sessions {
			ids = append(ids, s.ID)
		}
		var judges []models.JudgeAssignment
		const judgeQuery = `SELECT id, session_id, judge_id, created_at FROM judge_assignments WHERE session_id = ANY($1) ORDER BY created_at ASC`
		if err := r.db.SelectContext(ctx, &judges, judgeQuery, pq.Array(ids)); err != nil {
			return nil, 0, fmt.Errorf("list judges for sessions: %w", err)
		}
		attachJudges(sessions, judges)
	}

	return sessions, total, nil
}

// SaveTx upserts a session and rewrites its judge assignments inside the
// given transaction; the caller commits or rolls back, so the session row
// and its judge rows land all-or-nothing. Constraint violations surface as
// ErrStorageConflict.
func (r *SessionRepository) SaveTx(ctx context.Context, tx *sqlx.Tx, session *models.Session, judgeIDs []string) error {
	if tx == nil {
		return fmt.Errorf("nil transaction provided")
	}

	now := time.Now().UTC()
	session.UpdatedAt = now

	isInsert := session.ID == ""
	if isInsert {
		session.ID = uuid.NewString()
		session.CreatedAt = now
	}

	var query string
	if isInsert {
		query = `INSERT INTO sessions (id, term_id, date, start_time, end_time, classroom, student_id, supervisor1_id, supervisor2_id, supervisor3_id, supervisor4_id, monitor_id, description, is_active, concluded, created_at, updated_at, created_by, updated_by)
			VALUES (:id, :term_id, :date, :start_time, :end_time, :classroom, :student_id, :supervisor1_id, :supervisor2_id, :supervisor3_id, :supervisor4_id, :monitor_id, :description, :is_active, :concluded, :created_at, :updated_at, :created_by, :updated_by)`
	} else {
		query = `UPDATE sessions SET term_id = :term_id, date = :date, start_time = :start_time, end_time = :end_time, classroom = :classroom, student_id = :student_id, supervisor1_id = :supervisor1_id, supervisor2_id = :supervisor2_id, supervisor3_id = :supervisor3_id, supervisor4_id = :supervisor4_id, monitor_id = :monitor_id, description = :description, is_active = :is_active, concluded = :concluded, updated_at = :updated_at, updated_by = :updated_by WHERE id = :id`
	}

	if _, err := sqlx.NamedExecContext(ctx, tx, query, session); err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("save session: %w", ErrStorageConflict)
		}
		return fmt.Errorf("save session: %w", err)
	}

	if !isInsert {
		if _, err := tx.ExecContext(ctx, `DELETE FROM judge_assignments WHERE session_id = $1`, session.ID); err != nil {
			return fmt.Errorf("clear judge assignments: %w", err)
		}
	}

	session.Judges = session.Judges[:0]
	for _, judgeID := range judgeIDs {
		assignment := models.JudgeAssignment{
			ID:        uuid.NewString(),
			SessionID: session.ID,
			JudgeID:   judgeID,
			CreatedAt: now,
		}
		if _, err := sqlx.NamedExecContext(ctx, tx, `INSERT INTO judge_assignments (id, session_id, judge_id, created_at) VALUES (:id, :session_id, :judge_id, :created_at)`, &assignment); err != nil {
			if isConstraintViolation(err) {
				return fmt.Errorf("assign judge: %w", ErrStorageConflict)
			}
			return fmt.Errorf("assign judge: %w", err)
		}
		session.Judges = append(session.Judges, assignment)
	}

	return nil
}

// UpdateConcluded flips the conclusion flag without re-running admission.
func (r *SessionRepository) UpdateConcluded(ctx context.Context, id string, concluded bool, updatedBy string) error {
	const query = `UPDATE sessions SET concluded = $2, updated_at = $3, updated_by = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, concluded, time.Now().UTC(), updatedBy); err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	return nil
}

// Delete removes a session; its judge assignments cascade at the schema
// level, with an explicit delete kept in the same transaction as backstop.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete session: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM judge_assignments WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("delete judge assignments: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete session: %w", err)
	}
	return nil
}

func attachJudges(sessions []models.Session, judges []models.JudgeAssignment) {
	if len(sessions) == 0 || len(judges) == 0 {
		return
	}
	index := make(map[string]int, len(sessions))
	for i := range sessions {
		index[sessions[i].ID] = i
	}
	for _, judge := range judges {
		if i, ok := index[judge.SessionID]; ok {
			sessions[i].Judges = append(sessions[i].Judges, judge)
		}
	}
}

// isConstraintViolation recognises unique-constraint and serialization
// failures, the two commit-time races the engine cannot see.
func isConstraintViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" || pqErr.Code == "40001"
	}
	return false
}
