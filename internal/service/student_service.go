package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/thesis-defense-api/internal/models"
	appErrors "github.com/noah-isme/thesis-defense-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByStudentNumber(ctx context.Context, studentNumber string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	UpdateStatus(ctx context.Context, id string, status models.StudentStatus) error
}

// CreateStudentRequest registers a graduate student. Student records are
// create-once; after registration only the graduation status may change.
type CreateStudentRequest struct {
	FirstName     string                    `json:"first_name" validate:"required,max=100"`
	LastName      string                    `json:"last_name" validate:"required,max=100"`
	Email         string                    `json:"email" validate:"omitempty,email"`
	PhoneNumber   string                    `json:"phone_number" validate:"omitempty,max=20"`
	StudentNumber string                    `json:"student_number" validate:"required,max=20"`
	DegreeLevel   models.StudentDegreeLevel `json:"degree_level" validate:"required,oneof=MASTER PHD"`
	AdmissionYear int                       `json:"admission_year" validate:"required"`
}

// UpdateStudentStatusRequest flips the graduation status.
type UpdateStudentStatusRequest struct {
	Status models.StudentStatus `json:"status" validate:"required,oneof=CURRENT DEFENDED"`
}

// StudentService manages graduate student records.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns students with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
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
	return students, pagination, nil
}

// Get returns a student by ID.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student with status CURRENT.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	exists, err := s.repo.ExistsByStudentNumber(ctx, req.StudentNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student number already registered")
	}

	student := &models.Student{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		PhoneNumber:   req.PhoneNumber,
		StudentNumber: req.StudentNumber,
		DegreeLevel:   req.DegreeLevel,
		Status:        models.StudentStatusCurrent,
		AdmissionYear: req.AdmissionYear,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.logger.Info("student registered", zap.String("student_id", student.ID), zap.String("student_number", student.StudentNumber))
	return student, nil
}

// UpdateStatus changes the graduation status, the only mutable field.
func (s *StudentService) UpdateStatus(ctx context.Context, id string, req UpdateStudentStatusRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.Status == req.Status {
		return student, nil
	}

	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student status")
	}
	student.Status = req.Status
	return student, nil
}
