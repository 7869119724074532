package workers

import (
	"context"
	"log"
	"time"

	"github.com/alimgiray/whodid/internal/models"
	"github.com/alimgiray/whodid/internal/repositories"
	"github.com/alimgiray/whodid/internal/services"
)

// SummaryWorker handles summary jobs: it runs the four summarization phases
// over all stored activity that has no summary yet.
type SummaryWorker struct {
	*BaseWorker
	jobRepo        *repositories.JobRepository
	summaryService *services.SummaryService
}

// NewSummaryWorker creates a new summary worker
func NewSummaryWorker(workerID string, jobRepo *repositories.JobRepository, summaryService *services.SummaryService) *SummaryWorker {
	return &SummaryWorker{
		BaseWorker:     NewBaseWorker(workerID, models.JobTypeSummary),
		jobRepo:        jobRepo,
		summaryService: summaryService,
	}
}

// Start begins the summary worker process
func (w *SummaryWorker) Start(ctx context.Context) error {
	w.Running = true
	log.Printf("Summary worker %s started", w.WorkerID)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Summary worker %s stopping due to context cancellation", w.WorkerID)
			return ctx.Err()
		case <-w.StopChan:
			log.Printf("Summary worker %s stopping", w.WorkerID)
			return nil
		default:
			job, err := w.jobRepo.GetNextPendingJob(models.JobTypeSummary, w.WorkerID)
			if err != nil {
				log.Printf("Summary worker %s error getting job: %v", w.WorkerID, err)
				time.Sleep(5 * time.Second)
				continue
			}

			if job == nil {
				time.Sleep(10 * time.Second)
				continue
			}

			w.processSummaryJob(ctx, job)
		}
	}
}

// processSummaryJob generates summaries for everything that lacks one
func (w *SummaryWorker) processSummaryJob(ctx context.Context, job *models.Job) {
	log.Printf("Summary worker %s processing job %s", w.WorkerID, job.ID)

	results, err := w.summaryService.GenerateAll(ctx)
	if err != nil {
		log.Printf("Summary worker %s failed job %s: %v", w.WorkerID, job.ID, err)
		job.SetError(err.Error())
		job.MarkFailed()
	} else {
		for _, result := range results {
			log.Printf("Summary worker %s phase %s: %d/%d succeeded", w.WorkerID, result.Phase, result.Succeeded, result.Total)
		}
		job.MarkCompleted()
	}

	if err := w.jobRepo.Update(job); err != nil {
		log.Printf("Summary worker %s error updating job %s: %v", w.WorkerID, job.ID, err)
		return
	}
	log.Printf("Summary worker %s finished job %s", w.WorkerID, job.ID)
}
