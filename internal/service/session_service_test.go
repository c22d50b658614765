package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/thesis-defense-api/internal/models"
	"github.com/noah-isme/thesis-defense-api/internal/repository"
	appErrors "github.com/noah-isme/thesis-defense-api/pkg/errors"
)

type mockSessionRepo struct {
	existing         []models.Session
	sessions         map[string]models.Session
	saved            *models.Session
	savedJudges      []string
	concluded        map[string]bool
	deleted          []string
	conflictOnCommit bool
}

func (m *mockSessionRepo) SubmitInTerm(ctx context.Context, termID string, decide func(existing []models.Session) (*models.Session, []string, error)) (*models.Session, error) {
	session, judgeIDs, err := decide(m.existing)
	if err != nil {
		return nil, err
	}
	if m.conflictOnCommit {
		return nil, fmt.Errorf("commit session: %w", repository.ErrStorageConflict)
	}
	if session.ID == "" {
		session.ID = "new-session"
	}
	m.saved = session
	m.savedJudges = judgeIDs
	return session, nil
}

func (m *mockSessionRepo) ListByTerm(ctx context.Context, termID string) ([]models.Session, error) {
	return m.existing, nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*models.Session, error) {
	if s, ok := m.sessions[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSessionRepo) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error) {
	return m.existing, len(m.existing), nil
}

func (m *mockSessionRepo) UpdateConcluded(ctx context.Context, id string, concluded bool, updatedBy string) error {
	if m.concluded == nil {
		m.concluded = make(map[string]bool)
	}
	m.concluded[id] = concluded
	return nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type mockTermReader struct{}

func (m *mockTermReader) FindByID(ctx context.Context, id string) (*models.Term, error) {
	if id == "missing" {
		return nil, sql.ErrNoRows
	}
	return &models.Term{
		ID:        id,
		Year:      1403,
		Half:      models.TermHalfFirst,
		StartDate: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	}, nil
}

type mockStudentReader struct{}

func (m *mockStudentReader) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if id == "missing" {
		return nil, sql.ErrNoRows
	}
	return &models.Student{ID: id, Status: models.StudentStatusCurrent}, nil
}

type mockTeacherReader struct{}

func (m *mockTeacherReader) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if id == "missing" {
		return nil, sql.ErrNoRows
	}
	return &models.Teacher{ID: id}, nil
}

func newSessionService(repo *mockSessionRepo) *SessionService {
	return NewSessionService(repo, &mockTermReader{}, &mockStudentReader{}, &mockTeacherReader{}, nil, validator.New(), zap.NewNop())
}

func draftRequest() SubmitSessionRequest {
	return SubmitSessionRequest{
		TermID:        "t1",
		Date:          "2024-11-20",
		StartTime:     "10:00",
		EndTime:       "11:00",
		Classroom:     "3",
		StudentID:     "stu1",
		Supervisor1ID: "sup1",
		MonitorID:     "mon1",
		JudgeIDs:      []string{"j1", "j2"},
	}
}

func bookedSession(id, classroom, start, end string) models.Session {
	return models.Session{
		ID:            id,
		TermID:        "t1",
		Date:          time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC),
		StartTime:     start,
		EndTime:       end,
		Classroom:     classroom,
		StudentID:     "other-student",
		Supervisor1ID: "other-sup",
		MonitorID:     "other-mon",
	}
}

func TestSessionServiceSubmit(t *testing.T) {
	repo := &mockSessionRepo{}
	svc := newSessionService(repo)

	session, err := svc.Submit(context.Background(), draftRequest(), "dr. admin")
	require.NoError(t, err)
	require.NotNil(t, repo.saved)
	assert.Equal(t, "new-session", session.ID)
	assert.True(t, session.IsActive)
	assert.Equal(t, []string{"j1", "j2"}, repo.savedJudges)
	assert.Equal(t, "dr. admin", session.CreatedBy)
	assert.Equal(t, "dr. admin", session.UpdatedBy)
}

func TestSessionServiceSubmitWithoutJudgesInactive(t *testing.T) {
	repo := &mockSessionRepo{}
	svc := newSessionService(repo)

	req := draftRequest()
	req.JudgeIDs = nil
	session, err := svc.Submit(context.Background(), req, "dr. admin")
	require.NoError(t, err)
	assert.False(t, session.IsActive)
	assert.Empty(t, repo.savedJudges)
}

func TestSessionServiceSubmitClassroomOverlapRejected(t *testing.T) {
	repo := &mockSessionRepo{existing: []models.Session{bookedSession("s1", "3", "10:30", "11:30")}}
	svc := newSessionService(repo)

	_, err := svc.Submit(context.Background(), draftRequest(), "dr. admin")
	require.Error(t, err)
	assert.Nil(t, repo.saved)

	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.CodeClassroomOverlap, typed.Code)
	assert.Equal(t, http.StatusConflict, typed.Status)

	var rejection *models.AdmissionRejection
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, "s1", rejection.ConflictingSessionID)
}

func TestSessionServiceSubmitIncompleteDraft(t *testing.T) {
	repo := &mockSessionRepo{}
	svc := newSessionService(repo)

	req := draftRequest()
	req.MonitorID = ""
	_, err := svc.Submit(context.Background(), req, "dr. admin")
	require.Error(t, err)

	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.CodeIncompleteFields, typed.Code)
	assert.Equal(t, http.StatusBadRequest, typed.Status)
}

func TestSessionServiceSubmitNormalizesTimes(t *testing.T) {
	repo := &mockSessionRepo{}
	svc := newSessionService(repo)

	req := draftRequest()
	req.StartTime = "9:00"
	req.EndTime = "9:45"
	session, err := svc.Submit(context.Background(), req, "dr. admin")
	require.NoError(t, err)
	assert.Equal(t, "09:00", session.StartTime)
	assert.Equal(t, "09:45", session.EndTime)
}

func TestSessionServiceSubmitStorageConflict(t *testing.T) {
	repo := &mockSessionRepo{conflictOnCommit: true}
	svc := newSessionService(repo)

	_, err := svc.Submit(context.Background(), draftRequest(), "dr. admin")
	require.Error(t, err)

	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrStorageConflict.Code, typed.Code)
	assert.Equal(t, http.StatusConflict, typed.Status)
}

func TestSessionServiceUpdateIdempotent(t *testing.T) {
	stored := bookedSession("s1", "3", "10:00", "11:00")
	stored.StudentID = "stu1"
	stored.Supervisor1ID = "sup1"
	stored.MonitorID = "mon1"
	stored.CreatedBy = "dr. admin"
	repo := &mockSessionRepo{
		existing: []models.Session{stored},
		sessions: map[string]models.Session{"s1": stored},
	}
	svc := newSessionService(repo)

	session, err := svc.Update(context.Background(), "s1", draftRequest(), "dr. deputy")
	require.NoError(t, err)
	assert.Equal(t, "s1", session.ID)
	assert.Equal(t, "dr. admin", session.CreatedBy)
	assert.Equal(t, "dr. deputy", session.UpdatedBy)
}

func TestSessionServiceUpdateConflictsWithOtherSession(t *testing.T) {
	stored := bookedSession("s1", "3", "10:00", "11:00")
	other := bookedSession("s2", "3", "11:00", "12:00")
	repo := &mockSessionRepo{
		existing: []models.Session{stored, other},
		sessions: map[string]models.Session{"s1": stored},
	}
	svc := newSessionService(repo)

	req := draftRequest()
	req.StartTime = "11:30"
	req.EndTime = "12:30"
	_, err := svc.Update(context.Background(), "s1", req, "dr. admin")
	require.Error(t, err)

	var rejection *models.AdmissionRejection
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, "s2", rejection.ConflictingSessionID)
}

func TestSessionServiceUpdateConcludedBlocked(t *testing.T) {
	stored := bookedSession("s1", "3", "10:00", "11:00")
	stored.Concluded = true
	repo := &mockSessionRepo{sessions: map[string]models.Session{"s1": stored}}
	svc := newSessionService(repo)

	_, err := svc.Update(context.Background(), "s1", draftRequest(), "dr. admin")
	require.Error(t, err)

	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, typed.Code)
}

func TestSessionServiceCheckDryRun(t *testing.T) {
	repo := &mockSessionRepo{existing: []models.Session{bookedSession("s1", "3", "10:30", "11:30")}}
	svc := newSessionService(repo)

	rejection, err := svc.Check(context.Background(), draftRequest(), "")
	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Equal(t, appErrors.CodeClassroomOverlap, rejection.Rule)
	assert.Nil(t, repo.saved)

	req := draftRequest()
	req.Classroom = "4"
	rejection, err = svc.Check(context.Background(), req, "")
	require.NoError(t, err)
	assert.Nil(t, rejection)
}

func TestSessionServiceConclude(t *testing.T) {
	stored := bookedSession("s1", "3", "10:00", "11:00")
	repo := &mockSessionRepo{sessions: map[string]models.Session{"s1": stored}}
	svc := newSessionService(repo)

	session, err := svc.Conclude(context.Background(), "s1", ConcludeSessionRequest{Concluded: true}, "dr. admin")
	require.NoError(t, err)
	assert.True(t, session.Concluded)
	assert.True(t, repo.concluded["s1"])
}

func TestSessionServiceDelete(t *testing.T) {
	stored := bookedSession("s1", "3", "10:00", "11:00")
	repo := &mockSessionRepo{sessions: map[string]models.Session{"s1": stored}}
	svc := newSessionService(repo)

	require.NoError(t, svc.Delete(context.Background(), "s1", "dr. admin"))
	assert.Contains(t, repo.deleted, "s1")

	err := svc.Delete(context.Background(), "ghost", "dr. admin")
	require.Error(t, err)
	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrNotFound.Code, typed.Code)
}

func TestSessionServiceSubmitUnknownTeacher(t *testing.T) {
	repo := &mockSessionRepo{}
	svc := newSessionService(repo)

	req := draftRequest()
	req.JudgeIDs = []string{"missing"}
	_, err := svc.Submit(context.Background(), req, "dr. admin")
	require.Error(t, err)

	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrNotFound.Code, typed.Code)
}
