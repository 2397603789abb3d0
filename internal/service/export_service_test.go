package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-desk-api/internal/models"
	"github.com/noah-isme/student-desk-api/internal/repository"
	appErrors "github.com/noah-isme/student-desk-api/pkg/errors"
	"github.com/noah-isme/student-desk-api/pkg/jobs"
	"github.com/noah-isme/student-desk-api/pkg/storage"
)

type fakeExportJobStore struct {
	jobs map[string]models.ExportJob
}

func newFakeExportJobStore() *fakeExportJobStore {
	return &fakeExportJobStore{jobs: map[string]models.ExportJob{}}
}

func (s *fakeExportJobStore) Create(_ context.Context, job models.ExportJob) error {
	s.jobs[job.ID] = job
	return nil
}

func (s *fakeExportJobStore) GetByID(_ context.Context, id string) (*models.ExportJob, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &job, nil
}

func (s *fakeExportJobStore) Update(_ context.Context, id string, params repository.UpdateExportJobParams) error {
	job, ok := s.jobs[id]
	if !ok {
		return repository.ErrNotFound
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.ResultURL != nil {
		job.ResultURL = *params.ResultURL
	}
	if params.Error != nil {
		job.Error = *params.Error
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	s.jobs[id] = job
	return nil
}

func (s *fakeExportJobStore) ListQueued(_ context.Context, limit int) ([]models.ExportJob, error) {
	out := make([]models.ExportJob, 0)
	for _, job := range s.jobs {
		if job.Status == models.ExportStatusQueued {
			out = append(out, job)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

type fakeDispatcher struct {
	enqueued []jobs.Job
	failWith error
}

func (d *fakeDispatcher) Enqueue(job jobs.Job) error {
	if d.failWith != nil {
		return d.failWith
	}
	d.enqueued = append(d.enqueued, job)
	return nil
}

func newExportFixture(t *testing.T, students *fakeStudentRepo) (*ExportService, *fakeExportJobStore, *fakeDispatcher) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	repo := newFakeExportJobStore()
	dispatcher := &fakeDispatcher{}

	svc := NewExportService(repo, RegisterSources{
		Students:    students,
		Leave:       &fakeLeaveRepo{},
		Events:      &fakeEventRepo{},
		Emergencies: &fakeEmergencyRepo{},
	}, store, signer, nil, nil, ExportServiceConfig{})
	svc.SetQueue(dispatcher)
	return svc, repo, dispatcher
}

func TestExportServiceCreateJobValidation(t *testing.T) {
	svc, _, _ := newExportFixture(t, &fakeStudentRepo{})

	_, err := svc.CreateJob(context.Background(), CreateExportRequest{Register: models.ExportRegisterStudents}, "head")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.CreateJob(context.Background(), CreateExportRequest{Register: "grades", Format: models.ExportFormatCSV}, "head")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServiceCreateJobEnqueues(t *testing.T) {
	svc, repo, dispatcher := newExportFixture(t, &fakeStudentRepo{})

	job, err := svc.CreateJob(context.Background(), CreateExportRequest{
		Register: models.ExportRegisterStudents, Format: models.ExportFormatCSV,
	}, "head")
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.ExportStatusQueued, job.Status)
	assert.Equal(t, "head", job.CreatedBy)

	require.Len(t, dispatcher.enqueued, 1)
	assert.Equal(t, job.ID, dispatcher.enqueued[0].ID)
	_, ok := repo.jobs[job.ID]
	assert.True(t, ok)
}

func TestExportServiceCreateJobEnqueueFailureMarksFailed(t *testing.T) {
	svc, repo, dispatcher := newExportFixture(t, &fakeStudentRepo{})
	dispatcher.failWith = errors.New("queue full")

	_, err := svc.CreateJob(context.Background(), CreateExportRequest{
		Register: models.ExportRegisterStudents, Format: models.ExportFormatCSV,
	}, "head")
	require.Error(t, err)

	require.Len(t, repo.jobs, 1)
	for _, job := range repo.jobs {
		assert.Equal(t, models.ExportStatusFailed, job.Status)
	}
}

func TestExportServiceProcessAndDownload(t *testing.T) {
	students := &fakeStudentRepo{students: []models.Student{
		{Name: "Asha", Roll: "R1", Branch: "Science", Year: "2025"},
		{Name: "Ravi", Roll: "R2", Branch: "Arts", Year: "2024"},
	}}
	svc, repo, dispatcher := newExportFixture(t, students)

	job, err := svc.CreateJob(context.Background(), CreateExportRequest{
		Register: models.ExportRegisterStudents, Format: models.ExportFormatCSV,
	}, "head")
	require.NoError(t, err)

	require.NoError(t, svc.Process(context.Background(), dispatcher.enqueued[0]))

	finished := repo.jobs[job.ID]
	assert.Equal(t, models.ExportStatusFinished, finished.Status)
	require.NotEmpty(t, finished.ResultURL)
	require.NotNil(t, finished.FinishedAt)

	token := finished.ResultURL[strings.Index(finished.ResultURL, "token=")+len("token="):]
	download, err := svc.ResolveDownload(context.Background(), token)
	require.NoError(t, err)
	defer download.File.Close()

	body, err := io.ReadAll(download.File)
	require.NoError(t, err)
	content := string(body)
	assert.Contains(t, content, "name,roll,branch,year,registered_at")
	assert.Contains(t, content, "Asha,R1,Science,2025")
	assert.Contains(t, content, "Ravi,R2,Arts,2024")
}

func TestExportServiceProcessSourceFailureMarksFailed(t *testing.T) {
	students := &fakeStudentRepo{listErr: errors.New("disk gone")}
	svc, repo, dispatcher := newExportFixture(t, students)

	job, err := svc.CreateJob(context.Background(), CreateExportRequest{
		Register: models.ExportRegisterStudents, Format: models.ExportFormatCSV,
	}, "head")
	require.NoError(t, err)

	err = svc.Process(context.Background(), dispatcher.enqueued[0])
	require.Error(t, err)

	failed := repo.jobs[job.ID]
	assert.Equal(t, models.ExportStatusFailed, failed.Status)
	assert.Contains(t, failed.Error, "disk gone")
}

func TestExportServiceResolveDownloadRejectsTamperedToken(t *testing.T) {
	students := &fakeStudentRepo{students: []models.Student{{Name: "Asha", Roll: "R1"}}}
	svc, repo, dispatcher := newExportFixture(t, students)

	job, err := svc.CreateJob(context.Background(), CreateExportRequest{
		Register: models.ExportRegisterStudents, Format: models.ExportFormatCSV,
	}, "head")
	require.NoError(t, err)
	require.NoError(t, svc.Process(context.Background(), dispatcher.enqueued[0]))

	url := repo.jobs[job.ID].ResultURL
	token := url[strings.Index(url, "token=")+len("token="):]
	tampered := strings.Replace(token, job.ID, "other-job", 1)

	_, err = svc.ResolveDownload(context.Background(), tampered)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestExportServiceRecoverPendingJobs(t *testing.T) {
	svc, repo, dispatcher := newExportFixture(t, &fakeStudentRepo{})

	repo.jobs["stale"] = models.ExportJob{
		ID:       "stale",
		Register: models.ExportRegisterLeave,
		Format:   models.ExportFormatPDF,
		Status:   models.ExportStatusQueued,
	}

	svc.RecoverPendingJobs(context.Background())

	require.Len(t, dispatcher.enqueued, 1)
	assert.Equal(t, "stale", dispatcher.enqueued[0].ID)
}
