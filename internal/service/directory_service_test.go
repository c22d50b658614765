package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/thesis-defense-api/internal/models"
)

type mockDirectorySessions struct {
	sessions []models.Session
}

func (m *mockDirectorySessions) ListByTerm(ctx context.Context, termID string) ([]models.Session, error) {
	return m.sessions, nil
}

type mockRoster struct {
	teachers []models.Teacher
	calls    int
}

func (m *mockRoster) ListAll(ctx context.Context) ([]models.Teacher, error) {
	m.calls++
	return m.teachers, nil
}

type mockRosterCache struct {
	store       map[string][]models.Teacher
	invalidated []string
}

func (m *mockRosterCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if cached, ok := m.store[key]; ok {
		*(dest.(*[]models.Teacher)) = cached
		return true, nil
	}
	return false, nil
}

func (m *mockRosterCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.store == nil {
		m.store = make(map[string][]models.Teacher)
	}
	m.store[key] = value.([]models.Teacher)
	return nil
}

func (m *mockRosterCache) Invalidate(ctx context.Context, pattern string) error {
	m.invalidated = append(m.invalidated, pattern)
	delete(m.store, pattern)
	return nil
}

func rosterOf(ids ...string) []models.Teacher {
	teachers := make([]models.Teacher, 0, len(ids))
	for _, id := range ids {
		teachers = append(teachers, models.Teacher{ID: id})
	}
	return teachers
}

func directoryQuery() DirectoryQuery {
	return DirectoryQuery{
		TermID:    "t1",
		Date:      "2024-11-20",
		StartTime: "10:00",
		EndTime:   "11:00",
	}
}

func teacherIDs(teachers []models.Teacher) []string {
	ids := make([]string, 0, len(teachers))
	for _, teacher := range teachers {
		ids = append(ids, teacher.ID)
	}
	return ids
}

func TestDirectoryServiceExcludesBusyTeachers(t *testing.T) {
	occupied := models.Session{
		ID:            "s1",
		TermID:        "t1",
		Date:          time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC),
		StartTime:     "10:30",
		EndTime:       "11:30",
		Classroom:     "2",
		Supervisor1ID: "sup1",
		MonitorID:     "mon1",
		Judges:        []models.JudgeAssignment{{JudgeID: "j1"}},
	}
	sessions := &mockDirectorySessions{sessions: []models.Session{occupied}}
	roster := &mockRoster{teachers: rosterOf("sup1", "mon1", "j1", "free1", "free2")}
	svc := NewDirectoryService(sessions, roster, nil, 0, validator.New(), zap.NewNop())

	eligible, err := svc.EligibleTeachers(context.Background(), directoryQuery())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"free1", "free2"}, teacherIDs(eligible))
}

func TestDirectoryServiceTouchingSlotIsFree(t *testing.T) {
	occupied := models.Session{
		ID:            "s1",
		TermID:        "t1",
		Date:          time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC),
		StartTime:     "11:00",
		EndTime:       "12:00",
		Supervisor1ID: "sup1",
		MonitorID:     "mon1",
	}
	sessions := &mockDirectorySessions{sessions: []models.Session{occupied}}
	roster := &mockRoster{teachers: rosterOf("sup1", "mon1")}
	svc := NewDirectoryService(sessions, roster, nil, 0, validator.New(), zap.NewNop())

	eligible, err := svc.EligibleTeachers(context.Background(), directoryQuery())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sup1", "mon1"}, teacherIDs(eligible))
}

func TestDirectoryServiceExcludeSessionFreesItsMembers(t *testing.T) {
	occupied := models.Session{
		ID:            "s1",
		TermID:        "t1",
		Date:          time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC),
		StartTime:     "10:00",
		EndTime:       "11:00",
		Supervisor1ID: "sup1",
		MonitorID:     "mon1",
	}
	sessions := &mockDirectorySessions{sessions: []models.Session{occupied}}
	roster := &mockRoster{teachers: rosterOf("sup1", "mon1")}
	svc := NewDirectoryService(sessions, roster, nil, 0, validator.New(), zap.NewNop())

	query := directoryQuery()
	query.ExcludeSessionID = "s1"
	eligible, err := svc.EligibleTeachers(context.Background(), query)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sup1", "mon1"}, teacherIDs(eligible))
}

func TestDirectoryServiceRosterCacheAside(t *testing.T) {
	sessions := &mockDirectorySessions{}
	roster := &mockRoster{teachers: rosterOf("a", "b")}
	cache := &mockRosterCache{}
	svc := NewDirectoryService(sessions, roster, cache, time.Minute, validator.New(), zap.NewNop())

	_, err := svc.EligibleTeachers(context.Background(), directoryQuery())
	require.NoError(t, err)
	assert.Equal(t, 1, roster.calls)

	_, err = svc.EligibleTeachers(context.Background(), directoryQuery())
	require.NoError(t, err)
	assert.Equal(t, 1, roster.calls, "second query should hit the cache")

	svc.InvalidateRoster(context.Background())
	assert.Contains(t, cache.invalidated, rosterCacheKey)

	_, err = svc.EligibleTeachers(context.Background(), directoryQuery())
	require.NoError(t, err)
	assert.Equal(t, 2, roster.calls, "invalidation should force a reload")
}

func TestDirectoryServiceRejectsReversedRange(t *testing.T) {
	svc := NewDirectoryService(&mockDirectorySessions{}, &mockRoster{}, nil, 0, validator.New(), zap.NewNop())

	query := directoryQuery()
	query.StartTime, query.EndTime = query.EndTime, query.StartTime
	_, err := svc.EligibleTeachers(context.Background(), query)
	require.Error(t, err)
}
