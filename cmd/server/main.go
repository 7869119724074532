package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alimgiray/whodid/internal/aggregator"
	"github.com/alimgiray/whodid/internal/ghapi"
	"github.com/alimgiray/whodid/internal/handlers"
	"github.com/alimgiray/whodid/internal/repositories"
	"github.com/alimgiray/whodid/internal/services"
	"github.com/alimgiray/whodid/internal/workers"
	"github.com/alimgiray/whodid/pkg/config"
	"github.com/alimgiray/whodid/pkg/database"
	"github.com/alimgiray/whodid/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	logger.Init()

	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	if err := database.Init(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Initialize dependencies
	contributorRepo := repositories.NewContributorRepository(database.DB)
	repositoryRepo := repositories.NewRepositoryRepository(database.DB)
	workRepo := repositories.NewRepositoryWorkRepository(database.DB)
	issueRepo := repositories.NewIssueRepository(database.DB)
	commitRepo := repositories.NewCommitRepository(database.DB)
	jobRepo := repositories.NewJobRepository(database.DB)

	ghClient := ghapi.NewClient(config.AppConfig.GitHub.APIBaseURL, config.AppConfig.GitHub.Token)
	agg := aggregator.New(ghClient, config.AppConfig.Fetch.IssueDetailLimit, config.AppConfig.Fetch.CommitDetailLimit)

	llmClient := services.NewLLMClient(config.AppConfig.LLM.BaseURL, config.AppConfig.LLM.APIKey, config.AppConfig.LLM.Model)
	populateService := services.NewPopulateService(contributorRepo, repositoryRepo, workRepo, issueRepo, commitRepo)
	metadataService := services.NewRepositoryMetadataService(repositoryRepo, config.AppConfig.GitHub.Token)
	summaryService := services.NewSummaryService(llmClient, contributorRepo, repositoryRepo, workRepo, issueRepo, commitRepo, config.AppConfig.LLM.Workers)
	exportService := services.NewExportService(contributorRepo, repositoryRepo, workRepo, issueRepo, commitRepo)
	jobService := services.NewJobService(jobRepo)

	// Initialize worker manager
	workerManager := workers.NewWorkerManager(jobRepo, agg, populateService, metadataService, summaryService)

	// Initialize router
	router := gin.Default()
	setupRoutes(router, contributorRepo, repositoryRepo, workRepo, issueRepo, commitRepo, jobService, exportService, llmClient)

	// Start workers
	if err := workerManager.StartAll(); err != nil {
		log.Fatalf("Failed to start workers: %v", err)
	}
	defer workerManager.StopAll()

	// Setup server
	server := &http.Server{
		Addr:         ":" + config.AppConfig.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(config.AppConfig.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(config.AppConfig.Server.WriteTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", config.AppConfig.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	log.Println("Server stopped")
}

func setupRoutes(
	router *gin.Engine,
	contributorRepo *repositories.ContributorRepository,
	repositoryRepo *repositories.RepositoryRepository,
	workRepo *repositories.RepositoryWorkRepository,
	issueRepo *repositories.IssueRepository,
	commitRepo *repositories.CommitRepository,
	jobService *services.JobService,
	exportService *services.ExportService,
	llmClient *services.LLMClient,
) {
	// Initialize handlers
	contributorHandler := handlers.NewContributorHandler(contributorRepo, repositoryRepo, workRepo, issueRepo, commitRepo)
	repositoryHandler := handlers.NewRepositoryHandler(repositoryRepo)
	jobHandler := handlers.NewJobHandler(jobService)
	chatHandler := handlers.NewChatHandler(llmClient)
	exportHandler := handlers.NewExportHandler(exportService)

	router.GET("/health", handlers.Health)

	api := router.Group("/api")
	{
		api.GET("/data", contributorHandler.Data)
		api.GET("/contributors", contributorHandler.List)
		api.GET("/contributors/:username", contributorHandler.Get)
		api.GET("/repositories", repositoryHandler.List)
		api.GET("/export", exportHandler.Download)

		api.POST("/chat", chatHandler.Stream)

		api.POST("/jobs/fetch", jobHandler.EnqueueFetch)
		api.POST("/jobs/summaries", jobHandler.EnqueueSummary)
		api.GET("/jobs/:id", jobHandler.Get)
	}
}
