package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/student-desk-api/internal/models"
	"github.com/noah-isme/student-desk-api/internal/repository"
	appErrors "github.com/noah-isme/student-desk-api/pkg/errors"
)

type emergencyRepositoryIface interface {
	List(ctx context.Context) ([]models.Emergency, error)
	ListByRoll(ctx context.Context, roll string) ([]models.Emergency, error)
	Create(ctx context.Context, emergency *models.Emergency) error
	UpdateReview(ctx context.Context, id int, status, response string) (*models.Emergency, error)
}

// SubmitEmergencyRequest holds payload for emergency submissions.
type SubmitEmergencyRequest struct {
	Roll          string `json:"roll" validate:"required"`
	EmergencyType string `json:"emergency_type" validate:"required"`
	Description   string `json:"description" validate:"required"`
}

// EmergencyService handles the emergency register.
type EmergencyService struct {
	repo      emergencyRepositoryIface
	students  studentDirectory
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEmergencyService constructs the emergency service.
func NewEmergencyService(repo emergencyRepositoryIface, students studentDirectory, validate *validator.Validate, logger *zap.Logger) *EmergencyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmergencyService{repo: repo, students: students, validator: validate, logger: logger}
}

// Submit raises an emergency for a registered student.
func (s *EmergencyService) Submit(ctx context.Context, req SubmitEmergencyRequest) (*models.Emergency, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid emergency payload")
	}

	student, err := s.students.FindByRoll(ctx, req.Roll)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotRegistered, "roll number "+req.Roll+" is not registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student")
	}

	emergency := &models.Emergency{
		Name:          student.Name,
		Roll:          student.Roll,
		Branch:        student.Branch,
		Year:          student.Year,
		EmergencyType: req.EmergencyType,
		Description:   req.Description,
		Status:        models.StatusPending,
		Timestamp:     time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, emergency); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit emergency")
	}
	return emergency, nil
}

// Review records the principal's decision on an emergency.
func (s *EmergencyService) Review(ctx context.Context, id int, req ReviewRequest) (*models.Emergency, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	emergency, err := s.repo.UpdateReview(ctx, id, req.Status, req.Response)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "emergency not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update emergency")
	}
	return emergency, nil
}

// ListAll returns the full emergency register (principal view).
func (s *EmergencyService) ListAll(ctx context.Context) ([]models.Emergency, error) {
	emergencies, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list emergencies")
	}
	return emergencies, nil
}

// ListByRoll returns one student's emergencies.
func (s *EmergencyService) ListByRoll(ctx context.Context, roll string) ([]models.Emergency, error) {
	if roll == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "roll is required for the student view")
	}
	emergencies, err := s.repo.ListByRoll(ctx, roll)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list emergencies")
	}
	return emergencies, nil
}
