package services

import (
	"github.com/alimgiray/whodid/internal/models"
	"github.com/alimgiray/whodid/internal/repositories"
)

// JobService enqueues background jobs and exposes their status
type JobService struct {
	jobRepo *repositories.JobRepository
}

// NewJobService creates a new JobService
func NewJobService(jobRepo *repositories.JobRepository) *JobService {
	return &JobService{jobRepo: jobRepo}
}

// EnqueueFetch queues a new fetch job
func (s *JobService) EnqueueFetch() (*models.Job, error) {
	job := models.NewJob(models.JobTypeFetch)
	if err := s.jobRepo.Create(job); err != nil {
		return nil, err
	}
	return job, nil
}

// EnqueueSummary queues a new summary generation job
func (s *JobService) EnqueueSummary() (*models.Job, error) {
	job := models.NewJob(models.JobTypeSummary)
	if err := s.jobRepo.Create(job); err != nil {
		return nil, err
	}
	return job, nil
}

// GetJob returns a job by ID
func (s *JobService) GetJob(id string) (*models.Job, error) {
	return s.jobRepo.GetByID(id)
}
