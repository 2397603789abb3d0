package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/student-desk-api/internal/models"
)

// AuditRepository owns the append-only audit trail collection.
type AuditRepository struct {
	collection *Collection[models.AuditEntry]
}

// NewAuditRepository constructs the repository over <dir>/audit_log.json.
func NewAuditRepository(dir string, logger *zap.Logger) *AuditRepository {
	return &AuditRepository{collection: NewCollection[models.AuditEntry](dir, "audit_log", logger)}
}

// Collection exposes the underlying collection (for metrics wiring).
func (r *AuditRepository) Collection() *Collection[models.AuditEntry] {
	return r.collection
}

// Append adds an entry to the trail.
func (r *AuditRepository) Append(ctx context.Context, entry models.AuditEntry) error {
	return r.collection.Update(ctx, func(entries []models.AuditEntry) ([]models.AuditEntry, error) {
		return append(entries, entry), nil
	})
}

// ListRecent returns up to limit entries, newest last.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	entries, err := r.collection.Load(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}
