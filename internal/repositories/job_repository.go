package repositories

import (
	"database/sql"
	"sync"
	"time"

	"github.com/alimgiray/whodid/internal/models"
)

// JobRepository handles database operations for jobs
type JobRepository struct {
	db *sql.DB
	mu sync.Mutex
}

// NewJobRepository creates a new JobRepository
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create creates a new job
func (r *JobRepository) Create(job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO jobs (id, job_type, status, error_message, worker_id, started_at, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		job.ID, job.JobType, job.Status, job.ErrorMessage, job.WorkerID,
		job.StartedAt, job.CompletedAt, job.CreatedAt, job.UpdatedAt,
	)
	return err
}

// GetByID retrieves a job by ID
func (r *JobRepository) GetByID(id string) (*models.Job, error) {
	query := `
		SELECT id, job_type, status, error_message, worker_id, started_at, completed_at, created_at, updated_at
		FROM jobs WHERE id = ?
	`

	job := &models.Job{}
	err := r.db.QueryRow(query, id).Scan(
		&job.ID, &job.JobType, &job.Status, &job.ErrorMessage, &job.WorkerID,
		&job.StartedAt, &job.CompletedAt, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// GetNextPendingJob claims the oldest pending job of the given type for the
// worker. Returns nil when no job is available.
func (r *JobRepository) GetNextPendingJob(jobType models.JobType, workerID string) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		SELECT id, job_type, status, error_message, worker_id, started_at, completed_at, created_at, updated_at
		FROM jobs WHERE job_type = ? AND status = ? ORDER BY created_at ASC LIMIT 1
	`

	job := &models.Job{}
	err := r.db.QueryRow(query, jobType, models.JobStatusPending).Scan(
		&job.ID, &job.JobType, &job.Status, &job.ErrorMessage, &job.WorkerID,
		&job.StartedAt, &job.CompletedAt, &job.CreatedAt, &job.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	job.MarkStarted(workerID)
	if err := r.update(job); err != nil {
		return nil, err
	}
	return job, nil
}

// Update persists job state changes
func (r *JobRepository) Update(job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.update(job)
}

func (r *JobRepository) update(job *models.Job) error {
	job.UpdatedAt = time.Now()

	query := `
		UPDATE jobs SET
			status = ?, error_message = ?, worker_id = ?, started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		job.Status, job.ErrorMessage, job.WorkerID, job.StartedAt, job.CompletedAt, job.UpdatedAt, job.ID,
	)
	return err
}
