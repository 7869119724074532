package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alimgiray/whodid/internal/aggregator"
	"github.com/alimgiray/whodid/internal/ghapi"
	"github.com/alimgiray/whodid/internal/repositories"
	"github.com/alimgiray/whodid/internal/services"
	"github.com/alimgiray/whodid/pkg/config"
	"github.com/alimgiray/whodid/pkg/database"
	"github.com/alimgiray/whodid/pkg/logger"
)

func main() {
	output := flag.String("output", "github_activity.json", "path of the JSON output file")
	save := flag.Bool("save", false, "also persist the output into the database")
	flag.Parse()

	logger.Init()

	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	repoURLs := config.AppConfig.Fetch.RepositoryURLs
	if args := flag.Args(); len(args) > 0 {
		repoURLs = args
	}
	if len(repoURLs) == 0 {
		log.Fatal("No repositories given: pass URLs as arguments or set REPOSITORY_URLS")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stop cleanly on Ctrl-C, keeping whatever was aggregated so far
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("Interrupted, finishing up...")
		cancel()
	}()

	client := ghapi.NewClient(config.AppConfig.GitHub.APIBaseURL, config.AppConfig.GitHub.Token)
	agg := aggregator.New(client, config.AppConfig.Fetch.IssueDetailLimit, config.AppConfig.Fetch.CommitDetailLimit)

	result := agg.Run(ctx, repoURLs)
	out := result.Output()

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode output: %v", err)
	}
	if err := os.WriteFile(*output, data, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", *output, err)
	}
	log.Printf("Wrote %d contributors to %s", len(out.Contributors), *output)

	if !*save {
		return
	}

	if err := database.Init(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	contributorRepo := repositories.NewContributorRepository(database.DB)
	repositoryRepo := repositories.NewRepositoryRepository(database.DB)
	workRepo := repositories.NewRepositoryWorkRepository(database.DB)
	issueRepo := repositories.NewIssueRepository(database.DB)
	commitRepo := repositories.NewCommitRepository(database.DB)

	populateService := services.NewPopulateService(contributorRepo, repositoryRepo, workRepo, issueRepo, commitRepo)
	stats, err := populateService.SaveOutput(out)
	if err != nil {
		log.Fatalf("Failed to save output: %v", err)
	}
	log.Printf("Saved %d contributors, %d repositories, %d works, %d issues, %d commits",
		stats.Contributors, stats.Repositories, stats.Works, stats.Issues, stats.Commits)

	metadataService := services.NewRepositoryMetadataService(repositoryRepo, config.AppConfig.GitHub.Token)
	if err := metadataService.EnrichAll(ctx); err != nil {
		log.Printf("Metadata enrichment failed: %v", err)
	}
}
