package workers

import (
	"context"
	"log"
	"time"

	"github.com/alimgiray/whodid/internal/aggregator"
	"github.com/alimgiray/whodid/internal/models"
	"github.com/alimgiray/whodid/internal/repositories"
	"github.com/alimgiray/whodid/internal/services"
	"github.com/alimgiray/whodid/pkg/config"
)

// FetchWorker handles fetch jobs: it aggregates contributor activity across
// the configured repositories and persists the result.
type FetchWorker struct {
	*BaseWorker
	jobRepo         *repositories.JobRepository
	agg             *aggregator.Aggregator
	populateService *services.PopulateService
	metadataService *services.RepositoryMetadataService
}

// NewFetchWorker creates a new fetch worker
func NewFetchWorker(
	workerID string,
	jobRepo *repositories.JobRepository,
	agg *aggregator.Aggregator,
	populateService *services.PopulateService,
	metadataService *services.RepositoryMetadataService,
) *FetchWorker {
	return &FetchWorker{
		BaseWorker:      NewBaseWorker(workerID, models.JobTypeFetch),
		jobRepo:         jobRepo,
		agg:             agg,
		populateService: populateService,
		metadataService: metadataService,
	}
}

// Start begins the fetch worker process
func (w *FetchWorker) Start(ctx context.Context) error {
	w.Running = true
	log.Printf("Fetch worker %s started", w.WorkerID)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Fetch worker %s stopping due to context cancellation", w.WorkerID)
			return ctx.Err()
		case <-w.StopChan:
			log.Printf("Fetch worker %s stopping", w.WorkerID)
			return nil
		default:
			job, err := w.jobRepo.GetNextPendingJob(models.JobTypeFetch, w.WorkerID)
			if err != nil {
				log.Printf("Fetch worker %s error getting job: %v", w.WorkerID, err)
				time.Sleep(5 * time.Second)
				continue
			}

			if job == nil {
				time.Sleep(10 * time.Second)
				continue
			}

			w.processFetchJob(ctx, job)
		}
	}
}

// processFetchJob runs a full aggregation pass and saves the output
func (w *FetchWorker) processFetchJob(ctx context.Context, job *models.Job) {
	log.Printf("Fetch worker %s processing job %s", w.WorkerID, job.ID)

	repoURLs := config.AppConfig.Fetch.RepositoryURLs
	if len(repoURLs) == 0 {
		w.failJob(job, "no repository URLs configured")
		return
	}

	result := w.agg.Run(ctx, repoURLs)

	if _, err := w.populateService.SaveOutput(result.Output()); err != nil {
		w.failJob(job, "saving output failed: "+err.Error())
		return
	}

	if err := w.metadataService.EnrichAll(ctx); err != nil {
		log.Printf("Fetch worker %s metadata enrichment failed: %v", w.WorkerID, err)
	}

	job.MarkCompleted()
	if err := w.jobRepo.Update(job); err != nil {
		log.Printf("Fetch worker %s error updating job %s: %v", w.WorkerID, job.ID, err)
		return
	}
	log.Printf("Fetch worker %s completed job %s", w.WorkerID, job.ID)
}

func (w *FetchWorker) failJob(job *models.Job, message string) {
	log.Printf("Fetch worker %s failed job %s: %s", w.WorkerID, job.ID, message)
	job.SetError(message)
	job.MarkFailed()
	if err := w.jobRepo.Update(job); err != nil {
		log.Printf("Fetch worker %s error updating job %s: %v", w.WorkerID, job.ID, err)
	}
}
