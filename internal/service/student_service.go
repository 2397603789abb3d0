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

const studentListCacheKey = "students:list"

type studentRepositoryIface interface {
	List(ctx context.Context) ([]models.Student, error)
	Create(ctx context.Context, student models.Student) error
	Update(ctx context.Context, roll, name, newRoll string) (*models.Student, error)
	DeleteByRoll(ctx context.Context, roll string) error
}

// RegisterStudentRequest holds payload for registering students.
type RegisterStudentRequest struct {
	Name   string `json:"name" validate:"required"`
	Roll   string `json:"roll" validate:"required"`
	Branch string `json:"branch" validate:"required"`
	Year   string `json:"year" validate:"required"`
}

// UpdateStudentRequest renames a student and optionally re-rolls them.
type UpdateStudentRequest struct {
	Name    string `json:"name" validate:"required"`
	NewRoll string `json:"new_roll"`
}

// StudentService handles the student register use-cases.
type StudentService struct {
	repo      studentRepositoryIface
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepositoryIface, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Register adds a new student to the register.
func (s *StudentService) Register(ctx context.Context, req RegisterStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student := models.Student{
		Name:         req.Name,
		Roll:         req.Roll,
		Branch:       req.Branch,
		Year:         req.Year,
		RegisteredAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "roll number already registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register student")
	}

	s.invalidate(ctx)
	return &student, nil
}

// List returns all registered students, via the read cache when enabled.
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	var cached []models.Student
	if hit, _ := s.cache.Get(ctx, studentListCacheKey, &cached); hit {
		return cached, nil
	}

	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	if err := s.cache.Set(ctx, studentListCacheKey, students, 0); err != nil {
		s.logger.Warn("failed to cache student list", zap.Error(err))
	}
	return students, nil
}

// Update renames a student and optionally moves them to a new roll.
func (s *StudentService) Update(ctx context.Context, roll string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student, err := s.repo.Update(ctx, roll, req.Name, req.NewRoll)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "roll number already registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}

	s.invalidate(ctx)
	return student, nil
}

// Delete removes a student by roll. Existing leave, event and emergency
// records referencing the roll stay behind untouched.
func (s *StudentService) Delete(ctx context.Context, roll string) error {
	if err := s.repo.DeleteByRoll(ctx, roll); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}

	s.invalidate(ctx)
	return nil
}

func (s *StudentService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "students:*"); err != nil {
		s.logger.Warn("failed to invalidate student cache", zap.Error(err))
	}
}
