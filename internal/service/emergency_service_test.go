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

type fakeEmergencyRepo struct {
	emergencies []models.Emergency
	nextID      int
}

func (r *fakeEmergencyRepo) List(_ context.Context) ([]models.Emergency, error) {
	return append([]models.Emergency(nil), r.emergencies...), nil
}

func (r *fakeEmergencyRepo) ListByRoll(_ context.Context, roll string) ([]models.Emergency, error) {
	out := make([]models.Emergency, 0)
	for _, e := range r.emergencies {
		if e.Roll == roll {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEmergencyRepo) Create(_ context.Context, emergency *models.Emergency) error {
	r.nextID++
	emergency.ID = r.nextID
	r.emergencies = append(r.emergencies, *emergency)
	return nil
}

func (r *fakeEmergencyRepo) UpdateReview(_ context.Context, id int, status, response string) (*models.Emergency, error) {
	for i, e := range r.emergencies {
		if e.ID == id {
			r.emergencies[i].Status = status
			r.emergencies[i].Response = response
			out := r.emergencies[i]
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func TestEmergencyServiceSubmitRequiresRegisteredRoll(t *testing.T) {
	svc := NewEmergencyService(&fakeEmergencyRepo{}, &fakeStudentRepo{}, nil, nil)

	_, err := svc.Submit(context.Background(), SubmitEmergencyRequest{
		Roll: "R1", EmergencyType: "medical", Description: "fainted in class",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotRegistered.Code, appErrors.FromError(err).Code)
}

func TestEmergencyServiceSubmit(t *testing.T) {
	students := &fakeStudentRepo{students: []models.Student{
		{Name: "Asha", Roll: "R1", Branch: "Science", Year: "2025"},
	}}
	svc := NewEmergencyService(&fakeEmergencyRepo{}, students, nil, nil)

	emergency, err := svc.Submit(context.Background(), SubmitEmergencyRequest{
		Roll: "R1", EmergencyType: "medical", Description: "fainted in class",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, emergency.ID)
	assert.Equal(t, "Asha", emergency.Name)
	assert.Equal(t, models.StatusPending, emergency.Status)
}

func TestEmergencyServiceReview(t *testing.T) {
	students := &fakeStudentRepo{students: []models.Student{{Name: "Asha", Roll: "R1"}}}
	repo := &fakeEmergencyRepo{}
	svc := NewEmergencyService(repo, students, nil, nil)

	emergency, err := svc.Submit(context.Background(), SubmitEmergencyRequest{
		Roll: "R1", EmergencyType: "medical", Description: "fainted in class",
	})
	require.NoError(t, err)

	reviewed, err := svc.Review(context.Background(), emergency.ID, ReviewRequest{
		Status: models.StatusApproved, Response: "nurse dispatched",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, reviewed.Status)
	assert.Equal(t, "nurse dispatched", reviewed.Response)
}

func TestEmergencyServiceReviewUnknownID(t *testing.T) {
	svc := NewEmergencyService(&fakeEmergencyRepo{}, &fakeStudentRepo{}, nil, nil)

	_, err := svc.Review(context.Background(), 7, ReviewRequest{Status: models.StatusRejected})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEmergencyServiceListByRollRequiresRoll(t *testing.T) {
	svc := NewEmergencyService(&fakeEmergencyRepo{}, &fakeStudentRepo{}, nil, nil)

	_, err := svc.ListByRoll(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
