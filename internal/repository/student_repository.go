package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/student-desk-api/internal/models"
)

// StudentRepository owns the students collection.
type StudentRepository struct {
	collection *Collection[models.Student]
}

// NewStudentRepository constructs the repository over <dir>/students.json.
func NewStudentRepository(dir string, logger *zap.Logger) *StudentRepository {
	return &StudentRepository{collection: NewCollection[models.Student](dir, "students", logger)}
}

// Collection exposes the underlying collection (for metrics wiring).
func (r *StudentRepository) Collection() *Collection[models.Student] {
	return r.collection
}

// List returns all students in registration order.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	return r.collection.Load(ctx)
}

// FindByRoll returns the student with the given roll or ErrNotFound.
func (r *StudentRepository) FindByRoll(ctx context.Context, roll string) (*models.Student, error) {
	students, err := r.collection.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range students {
		if students[i].Roll == roll {
			s := students[i]
			return &s, nil
		}
	}
	return nil, ErrNotFound
}

// Create appends a student, rejecting a duplicate roll with ErrDuplicate.
func (r *StudentRepository) Create(ctx context.Context, student models.Student) error {
	return r.collection.Update(ctx, func(students []models.Student) ([]models.Student, error) {
		for i := range students {
			if students[i].Roll == student.Roll {
				return nil, ErrDuplicate
			}
		}
		return append(students, student), nil
	})
}

// Update renames a student and optionally moves them to a new roll. The new
// roll must not collide with another student.
func (r *StudentRepository) Update(ctx context.Context, roll, name, newRoll string) (*models.Student, error) {
	var updated models.Student
	err := r.collection.Update(ctx, func(students []models.Student) ([]models.Student, error) {
		target := -1
		for i := range students {
			if students[i].Roll == roll {
				target = i
			} else if newRoll != "" && students[i].Roll == newRoll {
				return nil, ErrDuplicate
			}
		}
		if target < 0 {
			return nil, ErrNotFound
		}
		if name != "" {
			students[target].Name = name
		}
		if newRoll != "" {
			students[target].Roll = newRoll
		}
		updated = students[target]
		return students, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteByRoll removes the student with the given roll. ErrNotFound leaves
// the collection untouched and unwritten.
func (r *StudentRepository) DeleteByRoll(ctx context.Context, roll string) error {
	return r.collection.Update(ctx, func(students []models.Student) ([]models.Student, error) {
		kept := students[:0]
		found := false
		for _, s := range students {
			if s.Roll == roll {
				found = true
				continue
			}
			kept = append(kept, s)
		}
		if !found {
			return nil, ErrNotFound
		}
		return kept, nil
	})
}
