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

type eventRepositoryIface interface {
	List(ctx context.Context) ([]models.Event, error)
	ListByRoll(ctx context.Context, roll string) ([]models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, id int, patch repository.EventPatch) (*models.Event, error)
	Delete(ctx context.Context, id int) error
}

// SubmitEventRequest holds payload for event submissions.
type SubmitEventRequest struct {
	Title       string `json:"title" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Location    string `json:"location" validate:"required"`
	Description string `json:"description" validate:"required"`
	Roll        string `json:"roll" validate:"required"`
}

// UpdateEventRequest is the principal's partial overwrite. Empty fields
// leave the stored value alone.
type UpdateEventRequest struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Response    string `json:"response"`
}

// EventService handles the event request register.
type EventService struct {
	repo      eventRepositoryIface
	students  studentDirectory
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEventService constructs the event service.
func NewEventService(repo eventRepositoryIface, students studentDirectory, validate *validator.Validate, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{repo: repo, students: students, validator: validate, logger: logger}
}

// Submit files an event request for a registered student.
func (s *EventService) Submit(ctx context.Context, req SubmitEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}

	student, err := s.students.FindByRoll(ctx, req.Roll)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotRegistered, "roll number "+req.Roll+" is not registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student")
	}

	event := &models.Event{
		Title:       req.Title,
		Date:        req.Date,
		Location:    req.Location,
		Description: req.Description,
		RequestedBy: student.Name,
		Roll:        student.Roll,
		Branch:      student.Branch,
		Year:        student.Year,
		Status:      models.StatusPending,
		Timestamp:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit event")
	}
	return event, nil
}

// Update applies the principal's partial overwrite to an event.
func (s *EventService) Update(ctx context.Context, id int, req UpdateEventRequest) (*models.Event, error) {
	event, err := s.repo.Update(ctx, id, repository.EventPatch{
		Title:       req.Title,
		Date:        req.Date,
		Location:    req.Location,
		Description: req.Description,
		Status:      req.Status,
		Response:    req.Response,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}
	return event, nil
}

// Delete removes an event from the register.
func (s *EventService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	return nil
}

// ListAll returns the full event register (principal view).
func (s *EventService) ListAll(ctx context.Context) ([]models.Event, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return events, nil
}

// ListByRoll returns one student's event requests.
func (s *EventService) ListByRoll(ctx context.Context, roll string) ([]models.Event, error) {
	if roll == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "roll is required for the student view")
	}
	events, err := s.repo.ListByRoll(ctx, roll)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return events, nil
}
