package repository

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/noah-isme/student-desk-api/internal/models"
)

// LeaveRepository owns the leave request collection. Records are append-only
// apart from status reviews; nothing deletes from this register.
type LeaveRepository struct {
	collection *Collection[models.LeaveRequest]
	seq        *Sequence
}

// NewLeaveRepository constructs the repository over <dir>/leave_requests.json.
func NewLeaveRepository(dir string, logger *zap.Logger) *LeaveRepository {
	return &LeaveRepository{
		collection: NewCollection[models.LeaveRequest](dir, "leave_requests", logger),
		seq:        NewSequence(filepath.Join(dir, "leave_requests.seq"), logger),
	}
}

// Collection exposes the underlying collection (for metrics wiring).
func (r *LeaveRepository) Collection() *Collection[models.LeaveRequest] {
	return r.collection
}

// List returns every leave request in submission order.
func (r *LeaveRepository) List(ctx context.Context) ([]models.LeaveRequest, error) {
	return r.collection.Load(ctx)
}

// ListByRoll returns the leave requests submitted under the given roll.
func (r *LeaveRepository) ListByRoll(ctx context.Context, roll string) ([]models.LeaveRequest, error) {
	all, err := r.collection.Load(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]models.LeaveRequest, 0)
	for _, lr := range all {
		if lr.Roll == roll {
			filtered = append(filtered, lr)
		}
	}
	return filtered, nil
}

// Create appends the request, assigning the next id from the sequence.
func (r *LeaveRepository) Create(ctx context.Context, request *models.LeaveRequest) error {
	return r.collection.Update(ctx, func(requests []models.LeaveRequest) ([]models.LeaveRequest, error) {
		ids := make([]int, len(requests))
		for i := range requests {
			ids[i] = requests[i].ID
		}
		request.ID = r.seq.Next(NextID(ids) - 1)
		return append(requests, *request), nil
	})
}

// UpdateReview sets status and response on the identified request. All other
// fields stay untouched.
func (r *LeaveRepository) UpdateReview(ctx context.Context, id int, status, response string) (*models.LeaveRequest, error) {
	var updated models.LeaveRequest
	err := r.collection.Update(ctx, func(requests []models.LeaveRequest) ([]models.LeaveRequest, error) {
		for i := range requests {
			if requests[i].ID == id {
				requests[i].Status = status
				requests[i].Response = response
				updated = requests[i]
				return requests, nil
			}
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
