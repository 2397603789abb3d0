package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-desk-api/internal/models"
	"github.com/noah-isme/student-desk-api/internal/repository"
	appErrors "github.com/noah-isme/student-desk-api/pkg/errors"
)

type fakeEventRepo struct {
	events []models.Event
	nextID int
}

func (r *fakeEventRepo) List(_ context.Context) ([]models.Event, error) {
	return append([]models.Event(nil), r.events...), nil
}

func (r *fakeEventRepo) ListByRoll(_ context.Context, roll string) ([]models.Event, error) {
	out := make([]models.Event, 0)
	for _, e := range r.events {
		if e.Roll == roll {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) Create(_ context.Context, event *models.Event) error {
	r.nextID++
	event.ID = r.nextID
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeEventRepo) Update(_ context.Context, id int, patch repository.EventPatch) (*models.Event, error) {
	for i, e := range r.events {
		if e.ID == id {
			if patch.Title != "" {
				r.events[i].Title = patch.Title
			}
			if patch.Date != "" {
				r.events[i].Date = patch.Date
			}
			if patch.Location != "" {
				r.events[i].Location = patch.Location
			}
			if patch.Description != "" {
				r.events[i].Description = patch.Description
			}
			if patch.Status != "" {
				r.events[i].Status = patch.Status
			}
			if patch.Response != "" {
				r.events[i].Response = patch.Response
			}
			out := r.events[i]
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeEventRepo) Delete(_ context.Context, id int) error {
	for i, e := range r.events {
		if e.ID == id {
			r.events = append(r.events[:i], r.events[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func TestEventServiceSubmitRequiresRegisteredRoll(t *testing.T) {
	svc := NewEventService(&fakeEventRepo{}, &fakeStudentRepo{}, nil, nil)

	_, err := svc.Submit(context.Background(), SubmitEventRequest{
		Title: "Science Fair", Date: "2026-02-20", Location: "Hall A", Description: "annual fair", Roll: "R9",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotRegistered.Code, appErrors.FromError(err).Code)
}

func TestEventServiceSubmit(t *testing.T) {
	students := &fakeStudentRepo{students: []models.Student{
		{Name: "Asha", Roll: "R1", Branch: "Science", Year: "2025"},
	}}
	svc := NewEventService(&fakeEventRepo{}, students, nil, nil)

	event, err := svc.Submit(context.Background(), SubmitEventRequest{
		Title: "Science Fair", Date: "2026-02-20", Location: "Hall A", Description: "annual fair", Roll: "R1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, event.ID)
	assert.Equal(t, "Asha", event.RequestedBy)
	assert.Equal(t, models.StatusPending, event.Status)
}

func TestEventServicePartialUpdate(t *testing.T) {
	students := &fakeStudentRepo{students: []models.Student{{Name: "Asha", Roll: "R1"}}}
	repo := &fakeEventRepo{}
	svc := NewEventService(repo, students, nil, nil)

	event, err := svc.Submit(context.Background(), SubmitEventRequest{
		Title: "Science Fair", Date: "2026-02-20", Location: "Hall A", Description: "annual fair", Roll: "R1",
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), event.ID, UpdateEventRequest{
		Status: models.StatusApproved, Response: "approved for Hall A",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, updated.Status)
	assert.Equal(t, "approved for Hall A", updated.Response)
	assert.Equal(t, "Science Fair", updated.Title, "untouched fields must survive a partial update")
	assert.Equal(t, "Hall A", updated.Location)
}

func TestEventServiceUpdateUnknownID(t *testing.T) {
	svc := NewEventService(&fakeEventRepo{}, &fakeStudentRepo{}, nil, nil)

	_, err := svc.Update(context.Background(), 42, UpdateEventRequest{Status: models.StatusApproved})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEventServiceDelete(t *testing.T) {
	students := &fakeStudentRepo{students: []models.Student{{Name: "Asha", Roll: "R1"}}}
	repo := &fakeEventRepo{}
	svc := NewEventService(repo, students, nil, nil)

	event, err := svc.Submit(context.Background(), SubmitEventRequest{
		Title: "Science Fair", Date: "2026-02-20", Location: "Hall A", Description: "annual fair", Roll: "R1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), event.ID))

	err = svc.Delete(context.Background(), event.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
