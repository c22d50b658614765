package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/thesis-defense-api/internal/engine"
	"github.com/noah-isme/thesis-defense-api/internal/models"
	appErrors "github.com/noah-isme/thesis-defense-api/pkg/errors"
)

// rosterCacheKey holds the full faculty roster; it is small and changes only
// when a teacher record changes.
const rosterCacheKey = "directory:roster"

type directorySessionReader interface {
	ListByTerm(ctx context.Context, termID string) ([]models.Session, error)
}

type rosterReader interface {
	ListAll(ctx context.Context) ([]models.Teacher, error)
}

type rosterCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// DirectoryQuery asks which teachers are free for a prospective slot. Any
// role counts as busy: a teacher judging at 10:00 cannot supervise at 10:30.
type DirectoryQuery struct {
	TermID           string `form:"term_id" json:"term_id" validate:"required"`
	Date             string `form:"date" json:"date" validate:"required"`
	StartTime        string `form:"start_time" json:"start_time" validate:"required"`
	EndTime          string `form:"end_time" json:"end_time" validate:"required"`
	ExcludeSessionID string `form:"exclude_session_id" json:"exclude_session_id"`
}

// DirectoryService answers scheduling-time availability questions over the
// faculty roster.
type DirectoryService struct {
	sessions  directorySessionReader
	teachers  rosterReader
	cache     rosterCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDirectoryService constructs DirectoryService. cache may be nil.
func NewDirectoryService(sessions directorySessionReader, teachers rosterReader, cache rosterCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *DirectoryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DirectoryService{sessions: sessions, teachers: teachers, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// EligibleTeachers returns every teacher with no role in a session that
// overlaps the queried slot. ExcludeSessionID frees the occupants of the
// session being edited so its current members stay selectable.
func (s *DirectoryService) EligibleTeachers(ctx context.Context, query DirectoryQuery) ([]models.Teacher, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid directory query")
	}
	date, err := time.Parse("2006-01-02", query.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}
	start, err := normalizeClock(query.StartTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid start time, expected HH:MM")
	}
	end, err := normalizeClock(query.EndTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid end time, expected HH:MM")
	}
	if start >= end {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start time must be before end time")
	}

	roster, err := s.roster(ctx)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByTerm(ctx, query.TermID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term schedule")
	}

	busy := make(map[string]bool)
	for _, session := range sessions {
		if session.ID == query.ExcludeSessionID {
			continue
		}
		if !engine.SameDay(session.Date, date) {
			continue
		}
		if !engine.Overlaps(start, end, session.StartTime, session.EndTime) {
			continue
		}
		for _, occupant := range session.RoleOccupants() {
			busy[occupant.TeacherID] = true
		}
	}

	eligible := make([]models.Teacher, 0, len(roster))
	for _, teacher := range roster {
		if !busy[teacher.ID] {
			eligible = append(eligible, teacher)
		}
	}
	return eligible, nil
}

// InvalidateRoster drops the cached roster after teacher mutations.
func (s *DirectoryService) InvalidateRoster(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, rosterCacheKey)
}

// roster loads the faculty list cache-aside; cache failures fall through to
// the database.
func (s *DirectoryService) roster(ctx context.Context) ([]models.Teacher, error) {
	var cached []models.Teacher
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, rosterCacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	roster, err := s.teachers.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty roster")
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, rosterCacheKey, roster, s.cacheTTL)
	}
	return roster, nil
}
