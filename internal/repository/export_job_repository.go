package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/student-desk-api/internal/models"
)

// UpdateExportJobParams carries the mutable slice of an export job.
type UpdateExportJobParams struct {
	Status     *models.ExportStatus
	ResultURL  *string
	Error      *string
	FinishedAt *time.Time
}

// ExportJobRepository owns export job metadata, persisted like any other
// register so restarts can recover queued work.
type ExportJobRepository struct {
	collection *Collection[models.ExportJob]
}

// NewExportJobRepository constructs the repository over <dir>/export_jobs.json.
func NewExportJobRepository(dir string, logger *zap.Logger) *ExportJobRepository {
	return &ExportJobRepository{collection: NewCollection[models.ExportJob](dir, "export_jobs", logger)}
}

// Collection exposes the underlying collection (for metrics wiring).
func (r *ExportJobRepository) Collection() *Collection[models.ExportJob] {
	return r.collection
}

// Create appends a new job record.
func (r *ExportJobRepository) Create(ctx context.Context, job models.ExportJob) error {
	return r.collection.Update(ctx, func(jobs []models.ExportJob) ([]models.ExportJob, error) {
		return append(jobs, job), nil
	})
}

// GetByID returns the job with the given id or ErrNotFound.
func (r *ExportJobRepository) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	jobs, err := r.collection.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		if jobs[i].ID == id {
			job := jobs[i]
			return &job, nil
		}
	}
	return nil, ErrNotFound
}

// Update applies the non-nil params to the identified job.
func (r *ExportJobRepository) Update(ctx context.Context, id string, params UpdateExportJobParams) error {
	return r.collection.Update(ctx, func(jobs []models.ExportJob) ([]models.ExportJob, error) {
		for i := range jobs {
			if jobs[i].ID != id {
				continue
			}
			if params.Status != nil {
				jobs[i].Status = *params.Status
			}
			if params.ResultURL != nil {
				jobs[i].ResultURL = *params.ResultURL
			}
			if params.Error != nil {
				jobs[i].Error = *params.Error
			}
			if params.FinishedAt != nil {
				jobs[i].FinishedAt = params.FinishedAt
			}
			return jobs, nil
		}
		return nil, ErrNotFound
	})
}

// ListQueued returns jobs still waiting for a worker, oldest first.
func (r *ExportJobRepository) ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error) {
	jobs, err := r.collection.Load(ctx)
	if err != nil {
		return nil, err
	}
	queued := make([]models.ExportJob, 0)
	for _, job := range jobs {
		if job.Status == models.ExportStatusQueued {
			queued = append(queued, job)
			if limit > 0 && len(queued) >= limit {
				break
			}
		}
	}
	return queued, nil
}
