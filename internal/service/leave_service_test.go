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

type fakeLeaveRepo struct {
	requests []models.LeaveRequest
	nextID   int
}

func (r *fakeLeaveRepo) List(_ context.Context) ([]models.LeaveRequest, error) {
	return append([]models.LeaveRequest(nil), r.requests...), nil
}

func (r *fakeLeaveRepo) ListByRoll(_ context.Context, roll string) ([]models.LeaveRequest, error) {
	out := make([]models.LeaveRequest, 0)
	for _, lr := range r.requests {
		if lr.Roll == roll {
			out = append(out, lr)
		}
	}
	return out, nil
}

func (r *fakeLeaveRepo) Create(_ context.Context, request *models.LeaveRequest) error {
	r.nextID++
	request.ID = r.nextID
	r.requests = append(r.requests, *request)
	return nil
}

func (r *fakeLeaveRepo) UpdateReview(_ context.Context, id int, status, response string) (*models.LeaveRequest, error) {
	for i, lr := range r.requests {
		if lr.ID == id {
			r.requests[i].Status = status
			r.requests[i].Response = response
			out := r.requests[i]
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func TestLeaveServiceSubmitRequiresRegisteredRoll(t *testing.T) {
	students := &fakeStudentRepo{}
	svc := NewLeaveService(&fakeLeaveRepo{}, students, nil, nil)

	_, err := svc.Submit(context.Background(), SubmitLeaveRequest{
		Roll: "R1", Reason: "fever", StartDate: "2026-01-10", ReturnDate: "2026-01-12", TotalDays: "3",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotRegistered.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "R1")
}

func TestLeaveServiceSubmitCopiesStudentFields(t *testing.T) {
	students := &fakeStudentRepo{students: []models.Student{
		{Name: "Asha", Roll: "R1", Branch: "Science", Year: "2025"},
	}}
	svc := NewLeaveService(&fakeLeaveRepo{}, students, nil, nil)

	request, err := svc.Submit(context.Background(), SubmitLeaveRequest{
		Roll: "R1", Reason: "fever", StartDate: "2026-01-10", ReturnDate: "2026-01-12", TotalDays: "3",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, request.ID)
	assert.Equal(t, "Asha", request.Name)
	assert.Equal(t, "Science", request.Branch)
	assert.Equal(t, "2025", request.Year)
	assert.Equal(t, models.StatusPending, request.Status)
	assert.Empty(t, request.Response)
}

func TestLeaveServiceSubmitValidation(t *testing.T) {
	svc := NewLeaveService(&fakeLeaveRepo{}, &fakeStudentRepo{}, nil, nil)

	_, err := svc.Submit(context.Background(), SubmitLeaveRequest{Roll: "R1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestLeaveServiceReview(t *testing.T) {
	students := &fakeStudentRepo{students: []models.Student{{Name: "Asha", Roll: "R1"}}}
	repo := &fakeLeaveRepo{}
	svc := NewLeaveService(repo, students, nil, nil)

	request, err := svc.Submit(context.Background(), SubmitLeaveRequest{
		Roll: "R1", Reason: "fever", StartDate: "2026-01-10", ReturnDate: "2026-01-12", TotalDays: "3",
	})
	require.NoError(t, err)

	reviewed, err := svc.Review(context.Background(), request.ID, ReviewRequest{Status: models.StatusApproved, Response: "get well soon"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, reviewed.Status)
	assert.Equal(t, "get well soon", reviewed.Response)
}

func TestLeaveServiceReviewAcceptsFreeFormStatus(t *testing.T) {
	students := &fakeStudentRepo{students: []models.Student{{Name: "Asha", Roll: "R1"}}}
	repo := &fakeLeaveRepo{}
	svc := NewLeaveService(repo, students, nil, nil)

	request, err := svc.Submit(context.Background(), SubmitLeaveRequest{
		Roll: "R1", Reason: "fever", StartDate: "2026-01-10", ReturnDate: "2026-01-12", TotalDays: "3",
	})
	require.NoError(t, err)

	reviewed, err := svc.Review(context.Background(), request.ID, ReviewRequest{Status: "On Hold Until Monday"})
	require.NoError(t, err)
	assert.Equal(t, "On Hold Until Monday", reviewed.Status)
}

func TestLeaveServiceReviewUnknownID(t *testing.T) {
	svc := NewLeaveService(&fakeLeaveRepo{}, &fakeStudentRepo{}, nil, nil)

	_, err := svc.Review(context.Background(), 99, ReviewRequest{Status: models.StatusRejected})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestLeaveServiceListByRollRequiresRoll(t *testing.T) {
	svc := NewLeaveService(&fakeLeaveRepo{}, &fakeStudentRepo{}, nil, nil)

	_, err := svc.ListByRoll(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestLeaveServiceListByRollFilters(t *testing.T) {
	students := &fakeStudentRepo{students: []models.Student{
		{Name: "Asha", Roll: "R1"},
		{Name: "Ravi", Roll: "R2"},
	}}
	repo := &fakeLeaveRepo{}
	svc := NewLeaveService(repo, students, nil, nil)

	for _, roll := range []string{"R1", "R2", "R1"} {
		_, err := svc.Submit(context.Background(), SubmitLeaveRequest{
			Roll: roll, Reason: "r", StartDate: "2026-01-10", ReturnDate: "2026-01-11", TotalDays: "2",
		})
		require.NoError(t, err)
	}

	mine, err := svc.ListByRoll(context.Background(), "R1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, lr := range mine {
		assert.Equal(t, "R1", lr.Roll)
	}
}
