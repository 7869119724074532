package workers

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/alimgiray/whodid/internal/aggregator"
	"github.com/alimgiray/whodid/internal/repositories"
	"github.com/alimgiray/whodid/internal/services"
)

// WorkerManager manages multiple workers of different types
type WorkerManager struct {
	workers []Worker
	jobRepo *repositories.JobRepository

	agg             *aggregator.Aggregator
	populateService *services.PopulateService
	metadataService *services.RepositoryMetadataService
	summaryService  *services.SummaryService

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewWorkerManager creates a new worker manager
func NewWorkerManager(
	jobRepo *repositories.JobRepository,
	agg *aggregator.Aggregator,
	populateService *services.PopulateService,
	metadataService *services.RepositoryMetadataService,
	summaryService *services.SummaryService,
) *WorkerManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerManager{
		workers:         make([]Worker, 0),
		jobRepo:         jobRepo,
		agg:             agg,
		populateService: populateService,
		metadataService: metadataService,
		summaryService:  summaryService,
		ctx:             ctx,
		cancel:          cancel,
	}
}

// StartAll starts all workers based on environment configuration
func (wm *WorkerManager) StartAll() error {
	fetchWorkers := wm.getWorkerCount("FETCH_WORKERS", 1)
	summaryWorkers := wm.getWorkerCount("SUMMARY_WORKERS", 1)

	log.Printf("Starting workers - Fetch: %d, Summary: %d", fetchWorkers, summaryWorkers)

	for i := 0; i < fetchWorkers; i++ {
		worker := NewFetchWorker(fmt.Sprintf("fetch-%d", i+1), wm.jobRepo, wm.agg, wm.populateService, wm.metadataService)
		wm.workers = append(wm.workers, worker)
		wm.startWorker(worker)
	}

	for i := 0; i < summaryWorkers; i++ {
		worker := NewSummaryWorker(fmt.Sprintf("summary-%d", i+1), wm.jobRepo, wm.summaryService)
		wm.workers = append(wm.workers, worker)
		wm.startWorker(worker)
	}

	log.Printf("Started %d total workers", len(wm.workers))
	return nil
}

// StopAll gracefully stops all workers
func (wm *WorkerManager) StopAll() error {
	log.Println("Stopping all workers...")

	wm.cancel()

	for _, worker := range wm.workers {
		if err := worker.Stop(); err != nil {
			log.Printf("Error stopping worker %s: %v", worker.GetWorkerID(), err)
		}
	}

	wm.wg.Wait()

	log.Println("All workers stopped")
	return nil
}

// getWorkerCount reads worker count from environment variable with fallback
func (wm *WorkerManager) getWorkerCount(envVar string, defaultValue int) int {
	if value := os.Getenv(envVar); value != "" {
		if count, err := strconv.Atoi(value); err == nil && count > 0 {
			return count
		}
		log.Printf("Invalid value for %s, using default: %d", envVar, defaultValue)
	}
	return defaultValue
}

// startWorker starts a single worker in a goroutine
func (wm *WorkerManager) startWorker(worker Worker) {
	wm.wg.Add(1)
	go func() {
		defer wm.wg.Done()
		if err := worker.Start(wm.ctx); err != nil {
			log.Printf("Worker %s stopped with error: %v", worker.GetWorkerID(), err)
		}
	}()
}

// GetWorkerStatus returns the status of all workers
func (wm *WorkerManager) GetWorkerStatus() map[string]bool {
	status := make(map[string]bool)
	for _, worker := range wm.workers {
		switch w := worker.(type) {
		case *FetchWorker:
			status[worker.GetWorkerID()] = w.IsRunning()
		case *SummaryWorker:
			status[worker.GetWorkerID()] = w.IsRunning()
		default:
			status[worker.GetWorkerID()] = false
		}
	}
	return status
}
