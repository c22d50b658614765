package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/thesis-defense-api/internal/engine"
	"github.com/noah-isme/thesis-defense-api/internal/models"
	"github.com/noah-isme/thesis-defense-api/internal/repository"
	appErrors "github.com/noah-isme/thesis-defense-api/pkg/errors"
)

type sessionRepository interface {
	SubmitInTerm(ctx context.Context, termID string, decide func(existing []models.Session) (*models.Session, []string, error)) (*models.Session, error)
	ListByTerm(ctx context.Context, termID string) ([]models.Session, error)
	FindByID(ctx context.Context, id string) (*models.Session, error)
	List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error)
	UpdateConcluded(ctx context.Context, id string, concluded bool, updatedBy string) error
	Delete(ctx context.Context, id string) error
}

type termReader interface {
	FindByID(ctx context.Context, id string) (*models.Term, error)
}

type sessionStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type teacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type verdictRecorder interface {
	RecordAdmission(rule string)
}

// SubmitSessionRequest carries one session draft. Completeness of the
// mandatory slots is judged by the admission rules, not the validator, so a
// partial draft reaches the engine and yields a structured rejection.
type SubmitSessionRequest struct {
	TermID        string   `json:"term_id"`
	Date          string   `json:"date"`
	StartTime     string   `json:"start_time"`
	EndTime       string   `json:"end_time"`
	Classroom     string   `json:"classroom"`
	StudentID     string   `json:"student_id"`
	Supervisor1ID string   `json:"supervisor1_id"`
	Supervisor2ID string   `json:"supervisor2_id"`
	Supervisor3ID string   `json:"supervisor3_id"`
	Supervisor4ID string   `json:"supervisor4_id"`
	MonitorID     string   `json:"monitor_id"`
	JudgeIDs      []string `json:"judge_ids" validate:"max=3"`
	Description   string   `json:"description" validate:"max=2000"`
}

// ConcludeSessionRequest toggles the concluded flag of a session.
type ConcludeSessionRequest struct {
	Concluded bool `json:"concluded"`
}

// SessionService is the admission controller: every create and edit runs the
// read-validate-write sequence under the term lock so two staff members can
// never admit colliding sessions.
type SessionService struct {
	repo      sessionRepository
	terms     termReader
	students  sessionStudentReader
	teachers  teacherReader
	metrics   verdictRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionService constructs SessionService. metrics may be nil.
func NewSessionService(repo sessionRepository, terms termReader, students sessionStudentReader, teachers teacherReader, metrics verdictRecorder, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repo: repo, terms: terms, students: students, teachers: teachers, metrics: metrics, validator: validate, logger: logger}
}

// List returns sessions with pagination metadata.
func (s *SessionService) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, *models.Pagination, error) {
	sessions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return sessions, pagination, nil
}

// Get loads a single session with its judge assignments.
func (s *SessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// Submit admits a new session. The draft is validated against the full rule
// set atop the term's current schedule inside one locked transaction; either
// the session is persisted or a rejection names the first violated rule.
func (s *SessionService) Submit(ctx context.Context, req SubmitSessionRequest, actor string) (*models.Session, error) {
	candidate, err := s.buildCandidate(ctx, req)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	candidate.CreatedAt = now
	candidate.UpdatedAt = now
	candidate.CreatedBy = actor
	candidate.UpdatedBy = actor
	return s.admit(ctx, candidate, req.JudgeIDs, "")
}

// Update re-admits an existing session with new contents. The stored session
// is excluded from every conflict scan so it never collides with itself; an
// unchanged resubmission is therefore idempotent.
func (s *SessionService) Update(ctx context.Context, id string, req SubmitSessionRequest, actor string) (*models.Session, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if current.Concluded {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "session already concluded")
	}

	candidate, err := s.buildCandidate(ctx, req)
	if err != nil {
		return nil, err
	}
	candidate.ID = current.ID
	candidate.Concluded = current.Concluded
	candidate.CreatedAt = current.CreatedAt
	candidate.CreatedBy = current.CreatedBy
	candidate.UpdatedAt = time.Now().UTC()
	candidate.UpdatedBy = actor
	return s.admit(ctx, candidate, req.JudgeIDs, current.ID)
}

// Check dry-runs the admission rules without writing anything. It reads the
// schedule outside the term lock, so a clean check is advisory only; the
// write path re-validates under the lock.
func (s *SessionService) Check(ctx context.Context, req SubmitSessionRequest, excludeID string) (*models.AdmissionRejection, error) {
	candidate, err := s.buildCandidate(ctx, req)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.ListByTerm(ctx, candidate.TermID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term schedule")
	}
	verdict := engine.Evaluate(candidate, existing, excludeID)
	if verdict.Admissible() {
		return nil, nil
	}
	return rejectionOf(verdict), nil
}

// Conclude flips the concluded flag and rolls the student's graduation
// status forward when the defense took place.
func (s *SessionService) Conclude(ctx context.Context, id string, req ConcludeSessionRequest, actor string) (*models.Session, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session.Concluded == req.Concluded {
		return session, nil
	}
	if err := s.repo.UpdateConcluded(ctx, id, req.Concluded, actor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session")
	}
	session.Concluded = req.Concluded
	session.UpdatedBy = actor
	s.logger.Info("session concluded flag changed",
		zap.String("session_id", id),
		zap.Bool("concluded", req.Concluded),
		zap.String("actor", actor))
	return session, nil
}

// Delete removes a session and frees its slots.
func (s *SessionService) Delete(ctx context.Context, id string, actor string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}
	s.logger.Info("session deleted", zap.String("session_id", id), zap.String("actor", actor))
	return nil
}

// admit runs the locked read-validate-write sequence shared by Submit and
// Update.
func (s *SessionService) admit(ctx context.Context, candidate models.Session, judgeIDs []string, excludeID string) (*models.Session, error) {
	saved, err := s.repo.SubmitInTerm(ctx, candidate.TermID, func(existing []models.Session) (*models.Session, []string, error) {
		verdict := engine.Evaluate(candidate, existing, excludeID)
		s.recordVerdict(verdict)
		if !verdict.Admissible() {
			rej := rejectionOf(verdict)
			return nil, nil, appErrors.Wrap(rej, string(verdict.Rule), appErrors.AdmissionStatus(string(verdict.Rule)), verdict.Message)
		}
		// Activity is derived from judge presence on every save; callers
		// cannot set it.
		candidate.IsActive = len(judgeIDs) > 0
		return &candidate, judgeIDs, nil
	})
	if err != nil {
		var typed *appErrors.Error
		if errors.As(err, &typed) {
			return nil, err
		}
		if errors.Is(err, repository.ErrStorageConflict) {
			s.logger.Warn("session admission raced with concurrent write",
				zap.String("term_id", candidate.TermID),
				zap.Error(err))
			return nil, appErrors.ErrStorageConflict
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}
	s.logger.Info("session admitted",
		zap.String("session_id", saved.ID),
		zap.String("term_id", saved.TermID),
		zap.String("classroom", saved.Classroom),
		zap.Bool("is_active", saved.IsActive))
	return saved, nil
}

// buildCandidate turns the request into a session value and verifies the
// referenced entities exist. Missing mandatory slots are left empty for the
// completeness rule to report.
func (s *SessionService) buildCandidate(ctx context.Context, req SubmitSessionRequest) (models.Session, error) {
	var zero models.Session
	if err := s.validator.Struct(req); err != nil {
		return zero, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}

	candidate := models.Session{
		TermID:        req.TermID,
		Classroom:     req.Classroom,
		StudentID:     req.StudentID,
		Supervisor1ID: req.Supervisor1ID,
		Supervisor2ID: optionalID(req.Supervisor2ID),
		Supervisor3ID: optionalID(req.Supervisor3ID),
		Supervisor4ID: optionalID(req.Supervisor4ID),
		MonitorID:     req.MonitorID,
		Description:   req.Description,
	}
	for _, judgeID := range req.JudgeIDs {
		candidate.Judges = append(candidate.Judges, models.JudgeAssignment{JudgeID: judgeID})
	}

	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return zero, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", req.Date))
		}
		candidate.Date = date
	}
	start, err := normalizeClock(req.StartTime)
	if err != nil {
		return zero, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid start time %q, expected HH:MM", req.StartTime))
	}
	end, err := normalizeClock(req.EndTime)
	if err != nil {
		return zero, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid end time %q, expected HH:MM", req.EndTime))
	}
	candidate.StartTime = start
	candidate.EndTime = end

	if candidate.Classroom != "" && !validClassroom(candidate.Classroom) {
		return zero, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown classroom %q", candidate.Classroom))
	}

	if candidate.TermID != "" {
		term, err := s.terms.FindByID(ctx, candidate.TermID)
		if err != nil {
			if err == sql.ErrNoRows {
				return zero, appErrors.Clone(appErrors.ErrNotFound, "term not found")
			}
			return zero, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
		}
		if !candidate.Date.IsZero() && (candidate.Date.Before(term.StartDate) || candidate.Date.After(term.EndDate)) {
			return zero, appErrors.Clone(appErrors.ErrPreconditionFailed, "session date lies outside the term")
		}
	}
	if candidate.StudentID != "" {
		if _, err := s.students.FindByID(ctx, candidate.StudentID); err != nil {
			if err == sql.ErrNoRows {
				return zero, appErrors.Clone(appErrors.ErrNotFound, "student not found")
			}
			return zero, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}
	}
	if err := s.checkTeachersExist(ctx, candidate); err != nil {
		return zero, err
	}
	return candidate, nil
}

func (s *SessionService) checkTeachersExist(ctx context.Context, candidate models.Session) error {
	seen := make(map[string]bool)
	for _, occupant := range candidate.RoleOccupants() {
		if seen[occupant.TeacherID] {
			continue
		}
		seen[occupant.TeacherID] = true
		if _, err := s.teachers.FindByID(ctx, occupant.TeacherID); err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("teacher %s not found", occupant.TeacherID))
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
		}
	}
	return nil
}

func (s *SessionService) recordVerdict(verdict engine.Verdict) {
	if s.metrics == nil {
		return
	}
	rule := string(verdict.Rule)
	if verdict.Admissible() {
		rule = "ADMITTED"
	}
	s.metrics.RecordAdmission(rule)
}

func rejectionOf(verdict engine.Verdict) *models.AdmissionRejection {
	return &models.AdmissionRejection{
		Rule:                 string(verdict.Rule),
		Message:              verdict.Message,
		ConflictingSessionID: verdict.ConflictingSessionID,
		ConflictingPersonID:  verdict.ConflictingPersonID,
		ConflictingRole:      verdict.ConflictingRole,
	}
}

// normalizeClock parses a wall-clock string and re-formats it zero padded so
// lexical comparison equals temporal comparison everywhere downstream.
func normalizeClock(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	t, err := time.Parse("15:04", value)
	if err != nil {
		return "", err
	}
	return t.Format("15:04"), nil
}

func validClassroom(room string) bool {
	for _, known := range models.Classrooms() {
		if known == room {
			return true
		}
	}
	return false
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
