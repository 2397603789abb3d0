package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/student-desk-api/internal/models"
	"github.com/noah-isme/student-desk-api/internal/repository"
	appErrors "github.com/noah-isme/student-desk-api/pkg/errors"
	"github.com/noah-isme/student-desk-api/pkg/export"
	"github.com/noah-isme/student-desk-api/pkg/jobs"
	"github.com/noah-isme/student-desk-api/pkg/storage"
)

type exportJobStore interface {
	Create(ctx context.Context, job models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// RegisterSources aggregates the readers the exporter renders from.
type RegisterSources struct {
	Students interface {
		List(ctx context.Context) ([]models.Student, error)
	}
	Leave interface {
		List(ctx context.Context) ([]models.LeaveRequest, error)
	}
	Events interface {
		List(ctx context.Context) ([]models.Event, error)
	}
	Emergencies interface {
		List(ctx context.Context) ([]models.Emergency, error)
	}
}

// CreateExportRequest holds payload for requesting a register export.
type CreateExportRequest struct {
	Register models.ExportRegister `json:"register" validate:"required"`
	Format   models.ExportFormat   `json:"format" validate:"required"`
}

// ExportDownload aggregates resolved download data.
type ExportDownload struct {
	File      *os.File
	Filename  string
	Format    models.ExportFormat
	ExpiresAt time.Time
}

// ExportServiceConfig governs result lifetime and download links.
type ExportServiceConfig struct {
	ResultTTL        time.Duration
	DownloadBasePath string
}

// ExportService orchestrates asynchronous register exports: job records in
// the export_jobs collection, rendering through pkg/export, artifacts in
// local storage, downloads via signed tokens.
type ExportService struct {
	repo      exportJobStore
	sources   RegisterSources
	queue     jobDispatcher
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	store     *storage.LocalStorage
	signer    *storage.SignedURLSigner
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportServiceConfig
}

// NewExportService constructs the export service. The queue is attached
// later via SetQueue because the queue handler needs the service.
func NewExportService(repo exportJobStore, sources RegisterSources, store *storage.LocalStorage, signer *storage.SignedURLSigner, validate *validator.Validate, logger *zap.Logger, cfg ExportServiceConfig) *ExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.DownloadBasePath == "" {
		cfg.DownloadBasePath = "/api/v1/exports/download"
	}
	return &ExportService{
		repo:      repo,
		sources:   sources,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		store:     store,
		signer:    signer,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// SetQueue attaches the job dispatcher.
func (s *ExportService) SetQueue(queue jobDispatcher) {
	s.queue = queue
}

// CreateJob validates the request, persists the job and enqueues processing.
func (s *ExportService) CreateJob(ctx context.Context, req CreateExportRequest, actor string) (*models.ExportJob, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}
	switch req.Register {
	case models.ExportRegisterStudents, models.ExportRegisterLeave, models.ExportRegisterEvents, models.ExportRegisterEmergencies:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown register "+string(req.Register))
	}
	switch req.Format {
	case models.ExportFormatCSV, models.ExportFormatPDF:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown format "+string(req.Format))
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "export worker is not running")
	}

	job := models.ExportJob{
		ID:        uuid.NewString(),
		Register:  req.Register,
		Format:    req.Format,
		Status:    models.ExportStatusQueued,
		CreatedBy: actor,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Register)}); err != nil {
		s.markFailed(ctx, job.ID, "failed to enqueue job")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	return &job, nil
}

// GetJob returns job metadata.
func (s *ExportService) GetJob(ctx context.Context, id string) (*models.ExportJob, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	return job, nil
}

// Process is the queue handler: it renders the register and stores the
// artifact, then publishes a signed download link on the job.
func (s *ExportService) Process(ctx context.Context, job jobs.Job) error {
	record, err := s.repo.GetByID(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("load export job %s: %w", job.ID, err)
	}

	processing := models.ExportStatusProcessing
	if err := s.repo.Update(ctx, record.ID, repository.UpdateExportJobParams{Status: &processing}); err != nil {
		return fmt.Errorf("mark export job processing: %w", err)
	}

	dataset, err := s.buildDataset(ctx, record.Register)
	if err != nil {
		s.markFailed(ctx, record.ID, err.Error())
		return err
	}

	var payload []byte
	switch record.Format {
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, string(record.Register)+" register")
	default:
		payload, err = s.csv.Render(dataset)
	}
	if err != nil {
		s.markFailed(ctx, record.ID, err.Error())
		return err
	}

	relPath := filepath.Join("registers", fmt.Sprintf("%s-%s.%s", record.Register, record.ID, record.Format))
	if _, err := s.store.Save(relPath, payload); err != nil {
		s.markFailed(ctx, record.ID, err.Error())
		return err
	}

	token, _, err := s.signer.Generate(record.ID, relPath)
	if err != nil {
		s.markFailed(ctx, record.ID, err.Error())
		return err
	}

	finished := models.ExportStatusFinished
	resultURL := s.cfg.DownloadBasePath + "?token=" + token
	now := time.Now().UTC()
	if err := s.repo.Update(ctx, record.ID, repository.UpdateExportJobParams{
		Status:     &finished,
		ResultURL:  &resultURL,
		FinishedAt: &now,
	}); err != nil {
		return fmt.Errorf("finalize export job: %w", err)
	}

	s.logger.Info("export finished",
		zap.String("job_id", record.ID),
		zap.String("register", string(record.Register)),
		zap.String("format", string(record.Format)))
	return nil
}

// ResolveDownload validates the token and opens the stored artifact.
func (s *ExportService) ResolveDownload(ctx context.Context, token string) (*ExportDownload, error) {
	jobID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	if job.Status != models.ExportStatusFinished || !strings.HasSuffix(job.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export not ready")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ExportDownload{
		File:      file,
		Filename:  filepath.Base(relPath),
		Format:    job.Format,
		ExpiresAt: expiresAt,
	}, nil
}

// RecoverPendingJobs replays queued jobs after a restart.
func (s *ExportService) RecoverPendingJobs(ctx context.Context) {
	queued, err := s.repo.ListQueued(ctx, 50)
	if err != nil {
		s.logger.Warn("failed to list queued export jobs", zap.Error(err))
		return
	}
	for _, job := range queued {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Register)}); err != nil {
			s.logger.Warn("failed to requeue export job", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
}

// CleanupExpired removes stored artifacts older than the result TTL.
func (s *ExportService) CleanupExpired() {
	deleted, err := s.store.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Info("export cleanup removed files", zap.Int("count", len(deleted)))
	}
}

func (s *ExportService) markFailed(ctx context.Context, id, message string) {
	failed := models.ExportStatusFailed
	now := time.Now().UTC()
	if err := s.repo.Update(ctx, id, repository.UpdateExportJobParams{
		Status:     &failed,
		Error:      &message,
		FinishedAt: &now,
	}); err != nil {
		s.logger.Warn("failed to mark export job failed", zap.String("job_id", id), zap.Error(err))
	}
}

func (s *ExportService) buildDataset(ctx context.Context, register models.ExportRegister) (export.Dataset, error) {
	switch register {
	case models.ExportRegisterStudents:
		students, err := s.sources.Students.List(ctx)
		if err != nil {
			return export.Dataset{}, fmt.Errorf("load students: %w", err)
		}
		ds := export.Dataset{Headers: []string{"name", "roll", "branch", "year", "registered_at"}}
		for _, st := range students {
			ds.Rows = append(ds.Rows, []string{st.Name, st.Roll, st.Branch, st.Year, st.RegisteredAt.Format(time.RFC3339)})
		}
		return ds, nil
	case models.ExportRegisterLeave:
		requests, err := s.sources.Leave.List(ctx)
		if err != nil {
			return export.Dataset{}, fmt.Errorf("load leave requests: %w", err)
		}
		ds := export.Dataset{Headers: []string{"id", "name", "roll", "reason", "start_date", "return_date", "total_days", "status", "response"}}
		for _, lr := range requests {
			ds.Rows = append(ds.Rows, []string{strconv.Itoa(lr.ID), lr.Name, lr.Roll, lr.Reason, lr.StartDate, lr.ReturnDate, lr.TotalDays, lr.Status, lr.Response})
		}
		return ds, nil
	case models.ExportRegisterEvents:
		events, err := s.sources.Events.List(ctx)
		if err != nil {
			return export.Dataset{}, fmt.Errorf("load events: %w", err)
		}
		ds := export.Dataset{Headers: []string{"id", "title", "date", "location", "requested_by", "roll", "status", "response"}}
		for _, e := range events {
			ds.Rows = append(ds.Rows, []string{strconv.Itoa(e.ID), e.Title, e.Date, e.Location, e.RequestedBy, e.Roll, e.Status, e.Response})
		}
		return ds, nil
	case models.ExportRegisterEmergencies:
		emergencies, err := s.sources.Emergencies.List(ctx)
		if err != nil {
			return export.Dataset{}, fmt.Errorf("load emergencies: %w", err)
		}
		ds := export.Dataset{Headers: []string{"id", "name", "roll", "emergency_type", "description", "status", "response"}}
		for _, e := range emergencies {
			ds.Rows = append(ds.Rows, []string{strconv.Itoa(e.ID), e.Name, e.Roll, e.EmergencyType, e.Description, e.Status, e.Response})
		}
		return ds, nil
	default:
		return export.Dataset{}, fmt.Errorf("unknown register %q", register)
	}
}
