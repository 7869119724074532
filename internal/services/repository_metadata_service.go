package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/alimgiray/whodid/internal/repositories"
	"github.com/alimgiray/whodid/pkg/logger"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// RepositoryMetadataService enriches stored repositories with owner avatar
// and description from the GitHub API.
type RepositoryMetadataService struct {
	repositoryRepo *repositories.RepositoryRepository
	token          string
}

// NewRepositoryMetadataService creates a new RepositoryMetadataService
func NewRepositoryMetadataService(repositoryRepo *repositories.RepositoryRepository, token string) *RepositoryMetadataService {
	return &RepositoryMetadataService{
		repositoryRepo: repositoryRepo,
		token:          token,
	}
}

// createGitHubClient creates a GitHub client with the configured token
func (s *RepositoryMetadataService) createGitHubClient(ctx context.Context) *github.Client {
	if s.token == "" {
		return github.NewClient(nil)
	}
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: s.token},
	)
	tc := oauth2.NewClient(ctx, ts)
	return github.NewClient(tc)
}

// EnrichAll fetches metadata for every stored repository. Failures are
// logged and skipped so one bad repository does not abort the run.
func (s *RepositoryMetadataService) EnrichAll(ctx context.Context) error {
	stored, err := s.repositoryRepo.List()
	if err != nil {
		return fmt.Errorf("listing repositories: %w", err)
	}

	githubClient := s.createGitHubClient(ctx)

	for _, repository := range stored {
		parts := strings.SplitN(repository.Name, "/", 2)
		if len(parts) != 2 {
			logger.WithField("repository", repository.Name).Warn("Repository name is not owner/repo, skipping enrichment")
			continue
		}

		remote, _, err := githubClient.Repositories.Get(ctx, parts[0], parts[1])
		if err != nil {
			logger.WithField("repository", repository.Name).WithError(err).Warn("Failed to fetch repository metadata")
			continue
		}

		if owner := remote.GetOwner(); owner != nil && owner.GetAvatarURL() != "" {
			avatarURL := owner.GetAvatarURL()
			repository.AvatarURL = &avatarURL
		}
		if description := remote.GetDescription(); description != "" {
			repository.Description = &description
		}

		if err := s.repositoryRepo.Update(repository); err != nil {
			logger.WithField("repository", repository.Name).WithError(err).Warn("Failed to save repository metadata")
		}
	}

	return nil
}
