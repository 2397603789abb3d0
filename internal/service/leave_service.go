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

type leaveRepositoryIface interface {
	List(ctx context.Context) ([]models.LeaveRequest, error)
	ListByRoll(ctx context.Context, roll string) ([]models.LeaveRequest, error)
	Create(ctx context.Context, request *models.LeaveRequest) error
	UpdateReview(ctx context.Context, id int, status, response string) (*models.LeaveRequest, error)
}

// studentDirectory resolves a roll to a registered student. The check only
// applies at submission time; deleting a student later does not cascade.
type studentDirectory interface {
	FindByRoll(ctx context.Context, roll string) (*models.Student, error)
}

// SubmitLeaveRequest holds payload for leave submissions.
type SubmitLeaveRequest struct {
	Roll       string `json:"roll" validate:"required"`
	Reason     string `json:"reason" validate:"required"`
	StartDate  string `json:"start_date" validate:"required"`
	ReturnDate string `json:"return_date" validate:"required"`
	TotalDays  string `json:"total_days" validate:"required"`
}

// ReviewRequest carries the principal's decision on a request. Status is
// accepted as-is; the legacy frontend sends values outside the canonical
// set and narrowing here would break it.
type ReviewRequest struct {
	Status   string `json:"status" validate:"required"`
	Response string `json:"response"`
}

// LeaveService handles the leave request register.
type LeaveService struct {
	repo      leaveRepositoryIface
	students  studentDirectory
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLeaveService constructs the leave service.
func NewLeaveService(repo leaveRepositoryIface, students studentDirectory, validate *validator.Validate, logger *zap.Logger) *LeaveService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaveService{repo: repo, students: students, validator: validate, logger: logger}
}

// Submit files a leave request for a registered student.
func (s *LeaveService) Submit(ctx context.Context, req SubmitLeaveRequest) (*models.LeaveRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid leave payload")
	}

	student, err := s.students.FindByRoll(ctx, req.Roll)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotRegistered, "roll number "+req.Roll+" is not registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student")
	}

	request := &models.LeaveRequest{
		Name:       student.Name,
		Roll:       student.Roll,
		Branch:     student.Branch,
		Year:       student.Year,
		Reason:     req.Reason,
		StartDate:  req.StartDate,
		ReturnDate: req.ReturnDate,
		TotalDays:  req.TotalDays,
		Status:     models.StatusPending,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit leave request")
	}
	return request, nil
}

// Review records the principal's decision. Authorization happens at the
// HTTP boundary before this is called.
func (s *LeaveService) Review(ctx context.Context, id int, req ReviewRequest) (*models.LeaveRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	request, err := s.repo.UpdateReview(ctx, id, req.Status, req.Response)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "leave request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update leave request")
	}
	return request, nil
}

// ListAll returns the full leave register (principal view).
func (s *LeaveService) ListAll(ctx context.Context) ([]models.LeaveRequest, error) {
	requests, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leave requests")
	}
	return requests, nil
}

// ListByRoll returns one student's leave requests.
func (s *LeaveService) ListByRoll(ctx context.Context, roll string) ([]models.LeaveRequest, error) {
	if roll == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "roll is required for the student view")
	}
	requests, err := s.repo.ListByRoll(ctx, roll)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leave requests")
	}
	return requests, nil
}
