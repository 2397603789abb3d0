package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/student-desk-api/internal/models"
)

// PrincipalRepository owns the principals collection.
type PrincipalRepository struct {
	collection *Collection[models.Principal]
}

// NewPrincipalRepository constructs the repository over <dir>/principals.json.
func NewPrincipalRepository(dir string, logger *zap.Logger) *PrincipalRepository {
	return &PrincipalRepository{collection: NewCollection[models.Principal](dir, "principals", logger)}
}

// Collection exposes the underlying collection (for metrics wiring).
func (r *PrincipalRepository) Collection() *Collection[models.Principal] {
	return r.collection
}

// FindByUsername returns the principal with the given username or ErrNotFound.
func (r *PrincipalRepository) FindByUsername(ctx context.Context, username string) (*models.Principal, error) {
	principals, err := r.collection.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range principals {
		if principals[i].Username == username {
			p := principals[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// Create appends a principal, rejecting a duplicate username with ErrDuplicate.
func (r *PrincipalRepository) Create(ctx context.Context, principal models.Principal) error {
	return r.collection.Update(ctx, func(principals []models.Principal) ([]models.Principal, error) {
		for i := range principals {
			if principals[i].Username == principal.Username {
				return nil, ErrDuplicate
			}
		}
		return append(principals, principal), nil
	})
}
