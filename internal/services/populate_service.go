package services

import (
	"encoding/json"
	"fmt"

	"github.com/alimgiray/whodid/internal/aggregator"
	"github.com/alimgiray/whodid/internal/ghapi"
	"github.com/alimgiray/whodid/internal/models"
	"github.com/alimgiray/whodid/internal/repositories"
	"github.com/alimgiray/whodid/pkg/logger"
	"github.com/sirupsen/logrus"
)

// PopulateStats counts the rows written by one SaveOutput run
type PopulateStats struct {
	Contributors int `json:"contributors"`
	Repositories int `json:"repositories"`
	Works        int `json:"works"`
	Issues       int `json:"issues"`
	Commits      int `json:"commits"`
}

// PopulateService persists a normalized aggregation output into the
// database. Re-running with fresh data updates existing rows in place and
// keeps previously generated summaries.
type PopulateService struct {
	contributorRepo *repositories.ContributorRepository
	repositoryRepo  *repositories.RepositoryRepository
	workRepo        *repositories.RepositoryWorkRepository
	issueRepo       *repositories.IssueRepository
	commitRepo      *repositories.CommitRepository
}

// NewPopulateService creates a new PopulateService
func NewPopulateService(
	contributorRepo *repositories.ContributorRepository,
	repositoryRepo *repositories.RepositoryRepository,
	workRepo *repositories.RepositoryWorkRepository,
	issueRepo *repositories.IssueRepository,
	commitRepo *repositories.CommitRepository,
) *PopulateService {
	return &PopulateService{
		contributorRepo: contributorRepo,
		repositoryRepo:  repositoryRepo,
		workRepo:        workRepo,
		issueRepo:       issueRepo,
		commitRepo:      commitRepo,
	}
}

// SaveOutput upserts every contributor, repository, work entry, issue and
// commit in the output.
func (s *PopulateService) SaveOutput(output *aggregator.Output) (*PopulateStats, error) {
	stats := &PopulateStats{}
	repositoryIDs := make(map[string]string)

	for _, record := range output.Contributors {
		contributor := models.NewContributor(record.ID, record.Username)
		if record.URL != "" {
			contributor.ProfileURL = &record.URL
		}
		if record.AvatarURL != "" {
			contributor.AvatarURL = &record.AvatarURL
		}
		if err := s.contributorRepo.Upsert(contributor); err != nil {
			return stats, fmt.Errorf("saving contributor %s: %w", record.Username, err)
		}
		stats.Contributors++

		for _, work := range record.Works {
			repositoryID, ok := repositoryIDs[work.RepositoryURL]
			if !ok {
				var err error
				repositoryID, err = s.saveRepository(work.RepositoryURL)
				if err != nil {
					return stats, err
				}
				repositoryIDs[work.RepositoryURL] = repositoryID
				stats.Repositories++
			}

			persisted, err := s.workRepo.Upsert(models.NewRepositoryWork(contributor.ID, repositoryID))
			if err != nil {
				return stats, fmt.Errorf("saving work for %s in %s: %w", record.Username, work.RepositoryURL, err)
			}
			stats.Works++

			for _, issue := range work.Issues {
				if err := s.saveIssue(persisted.ID, issue); err != nil {
					return stats, err
				}
				stats.Issues++
			}
			for _, commit := range work.Commits {
				if err := s.saveCommit(persisted.ID, commit); err != nil {
					return stats, err
				}
				stats.Commits++
			}
		}
	}

	logger.WithFields(logrus.Fields{
		"contributors": stats.Contributors,
		"repositories": stats.Repositories,
		"works":        stats.Works,
		"issues":       stats.Issues,
		"commits":      stats.Commits,
	}).Info("Saved aggregation output")
	return stats, nil
}

func (s *PopulateService) saveRepository(url string) (string, error) {
	name := url
	if ref, err := ghapi.ParseRepoURL(url); err == nil {
		name = ref.String()
	}

	repository := models.NewRepository(name, url)
	if err := s.repositoryRepo.Upsert(repository); err != nil {
		return "", fmt.Errorf("saving repository %s: %w", url, err)
	}
	return repository.ID, nil
}

func (s *PopulateService) saveIssue(workID string, record *aggregator.IssueRecord) error {
	if record.HTMLURL == "" {
		return nil
	}

	issue := models.NewIssue(workID, record.HTMLURL)
	if record.Title != "" {
		issue.Title = &record.Title
	}
	issue.Body = record.Body
	issue.Comments = record.Comments
	issue.StateReason = record.StateReason

	if len(record.Labels) > 0 {
		labels, err := json.Marshal(record.Labels)
		if err != nil {
			return fmt.Errorf("encoding labels for issue %s: %w", record.HTMLURL, err)
		}
		encoded := string(labels)
		issue.Labels = &encoded
	}

	if err := s.issueRepo.Upsert(issue); err != nil {
		return fmt.Errorf("saving issue %s: %w", record.HTMLURL, err)
	}
	return nil
}

func (s *PopulateService) saveCommit(workID string, record *aggregator.CommitRecord) error {
	if record.SHA == "" || record.URL == "" {
		return nil
	}

	commit := models.NewCommit(workID, record.SHA, record.URL)
	if record.Message != "" {
		commit.Message = &record.Message
	}
	commit.CommentCount = record.CommentCount
	commit.DiffPatch = record.DiffPatch

	if len(record.FilesChanged) > 0 {
		files, err := json.Marshal(record.FilesChanged)
		if err != nil {
			return fmt.Errorf("encoding files for commit %s: %w", record.SHA, err)
		}
		encoded := string(files)
		commit.FilesChanged = &encoded
	}

	if err := s.commitRepo.Upsert(commit); err != nil {
		return fmt.Errorf("saving commit %s: %w", record.SHA, err)
	}
	return nil
}
