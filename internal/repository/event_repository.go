package repository

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/noah-isme/student-desk-api/internal/models"
)

// EventPatch carries the principal's partial overwrite of an event. Empty
// fields leave the stored value alone.
type EventPatch struct {
	Title       string
	Date        string
	Location    string
	Description string
	Status      string
	Response    string
}

// EventRepository owns the events collection.
type EventRepository struct {
	collection *Collection[models.Event]
	seq        *Sequence
}

// NewEventRepository constructs the repository over <dir>/events.json.
func NewEventRepository(dir string, logger *zap.Logger) *EventRepository {
	return &EventRepository{
		collection: NewCollection[models.Event](dir, "events", logger),
		seq:        NewSequence(filepath.Join(dir, "events.seq"), logger),
	}
}

// Collection exposes the underlying collection (for metrics wiring).
func (r *EventRepository) Collection() *Collection[models.Event] {
	return r.collection
}

// List returns every event in submission order.
func (r *EventRepository) List(ctx context.Context) ([]models.Event, error) {
	return r.collection.Load(ctx)
}

// ListByRoll returns the events requested under the given roll.
func (r *EventRepository) ListByRoll(ctx context.Context, roll string) ([]models.Event, error) {
	all, err := r.collection.Load(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]models.Event, 0)
	for _, e := range all {
		if e.Roll == roll {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// Create appends the event, assigning the next id from the sequence.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.collection.Update(ctx, func(events []models.Event) ([]models.Event, error) {
		ids := make([]int, len(events))
		for i := range events {
			ids[i] = events[i].ID
		}
		event.ID = r.seq.Next(NextID(ids) - 1)
		return append(events, *event), nil
	})
}

// Update applies the patch to the identified event.
func (r *EventRepository) Update(ctx context.Context, id int, patch EventPatch) (*models.Event, error) {
	var updated models.Event
	err := r.collection.Update(ctx, func(events []models.Event) ([]models.Event, error) {
		for i := range events {
			if events[i].ID != id {
				continue
			}
			if patch.Title != "" {
				events[i].Title = patch.Title
			}
			if patch.Date != "" {
				events[i].Date = patch.Date
			}
			if patch.Location != "" {
				events[i].Location = patch.Location
			}
			if patch.Description != "" {
				events[i].Description = patch.Description
			}
			if patch.Status != "" {
				events[i].Status = patch.Status
			}
			if patch.Response != "" {
				events[i].Response = patch.Response
			}
			updated = events[i]
			return events, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the identified event. The freed id is never handed out
// again thanks to the sequence high-water mark.
func (r *EventRepository) Delete(ctx context.Context, id int) error {
	return r.collection.Update(ctx, func(events []models.Event) ([]models.Event, error) {
		kept := events[:0]
		found := false
		for _, e := range events {
			if e.ID == id {
				found = true
				continue
			}
			kept = append(kept, e)
		}
		if !found {
			return nil, ErrNotFound
		}
		return kept, nil
	})
}
