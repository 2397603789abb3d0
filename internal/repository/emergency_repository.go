package repository

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/noah-isme/student-desk-api/internal/models"
)

// EmergencyRepository owns the emergencies collection. Emergencies are never
// deleted; only status and response change after submission.
type EmergencyRepository struct {
	collection *Collection[models.Emergency]
	seq        *Sequence
}

// NewEmergencyRepository constructs the repository over <dir>/emergencies.json.
func NewEmergencyRepository(dir string, logger *zap.Logger) *EmergencyRepository {
	return &EmergencyRepository{
		collection: NewCollection[models.Emergency](dir, "emergencies", logger),
		seq:        NewSequence(filepath.Join(dir, "emergencies.seq"), logger),
	}
}

// Collection exposes the underlying collection (for metrics wiring).
func (r *EmergencyRepository) Collection() *Collection[models.Emergency] {
	return r.collection
}

// List returns every emergency in submission order.
func (r *EmergencyRepository) List(ctx context.Context) ([]models.Emergency, error) {
	return r.collection.Load(ctx)
}

// ListByRoll returns the emergencies raised under the given roll.
func (r *EmergencyRepository) ListByRoll(ctx context.Context, roll string) ([]models.Emergency, error) {
	all, err := r.collection.Load(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]models.Emergency, 0)
	for _, e := range all {
		if e.Roll == roll {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// Create appends the emergency, assigning the next id from the sequence.
func (r *EmergencyRepository) Create(ctx context.Context, emergency *models.Emergency) error {
	return r.collection.Update(ctx, func(emergencies []models.Emergency) ([]models.Emergency, error) {
		ids := make([]int, len(emergencies))
		for i := range emergencies {
			ids[i] = emergencies[i].ID
		}
		emergency.ID = r.seq.Next(NextID(ids) - 1)
		return append(emergencies, *emergency), nil
	})
}

// UpdateReview sets status and response on the identified emergency.
func (r *EmergencyRepository) UpdateReview(ctx context.Context, id int, status, response string) (*models.Emergency, error) {
	var updated models.Emergency
	err := r.collection.Update(ctx, func(emergencies []models.Emergency) ([]models.Emergency, error) {
		for i := range emergencies {
			if emergencies[i].ID == id {
				emergencies[i].Status = status
				emergencies[i].Response = response
				updated = emergencies[i]
				return emergencies, nil
			}
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
