package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/thesis-defense-api/internal/models"
	appErrors "github.com/noah-isme/thesis-defense-api/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ExistsByUniqueField(ctx context.Context, column, value, excludeID string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	CountSessionRoles(ctx context.Context, id string) (int, error)
	Delete(ctx context.Context, id string) error
}

type rosterInvalidator interface {
	InvalidateRoster(ctx context.Context)
}

// SaveTeacherRequest is the payload for creating or updating a teacher.
type SaveTeacherRequest struct {
	FirstName    string               `json:"first_name" validate:"required,max=100"`
	LastName     string               `json:"last_name" validate:"required,max=100"`
	Email        string               `json:"email" validate:"required,email"`
	PhoneNumber  string               `json:"phone_number" validate:"omitempty,max=20"`
	NationalCode string               `json:"national_code" validate:"required,len=10,numeric"`
	FacultyCode  string               `json:"faculty_code" validate:"required,max=20"`
	Degree       models.TeacherDegree `json:"degree" validate:"required,oneof=MASTER PHD"`
}

// TeacherService manages the faculty roster.
type TeacherService struct {
	repo      teacherRepository
	roster    rosterInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs TeacherService. roster may be nil when the
// directory cache is disabled.
func NewTeacherService(repo teacherRepository, roster rosterInvalidator, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, roster: roster, validator: validate, logger: logger}
}

// List returns teachers with pagination metadata.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
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
	return teachers, pagination, nil
}

// Get returns a teacher by ID.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// Create registers a new faculty member.
func (s *TeacherService) Create(ctx context.Context, req SaveTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	if err := s.checkUniqueness(ctx, req, ""); err != nil {
		return nil, err
	}

	teacher := &models.Teacher{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		NationalCode: req.NationalCode,
		FacultyCode:  req.FacultyCode,
		Degree:       req.Degree,
	}
	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}
	s.invalidateRoster(ctx)
	return teacher, nil
}

// Update modifies a faculty member.
func (s *TeacherService) Update(ctx context.Context, id string, req SaveTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}

	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if err := s.checkUniqueness(ctx, req, id); err != nil {
		return nil, err
	}

	teacher.FirstName = req.FirstName
	teacher.LastName = req.LastName
	teacher.Email = req.Email
	teacher.PhoneNumber = req.PhoneNumber
	teacher.NationalCode = req.NationalCode
	teacher.FacultyCode = req.FacultyCode
	teacher.Degree = req.Degree
	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}
	s.invalidateRoster(ctx)
	return teacher, nil
}

// Delete removes a teacher that no session references.
func (s *TeacherService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	count, err := s.repo.CountSessionRoles(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher dependencies")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "teacher serves in scheduled sessions")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teacher")
	}
	s.invalidateRoster(ctx)
	return nil
}

func (s *TeacherService) checkUniqueness(ctx context.Context, req SaveTeacherRequest, excludeID string) error {
	checks := []struct {
		column  string
		value   string
		message string
	}{
		{"email", req.Email, "email already registered"},
		{"national_code", req.NationalCode, "national code already registered"},
		{"faculty_code", req.FacultyCode, "faculty code already registered"},
	}
	for _, check := range checks {
		exists, err := s.repo.ExistsByUniqueField(ctx, check.column, check.value, excludeID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher uniqueness")
		}
		if exists {
			return appErrors.Clone(appErrors.ErrConflict, check.message)
		}
	}
	return nil
}

func (s *TeacherService) invalidateRoster(ctx context.Context) {
	if s.roster != nil {
		s.roster.InvalidateRoster(ctx)
	}
}
