package services

import (
	"fmt"
	"io"

	"github.com/alimgiray/whodid/internal/repositories"
	"github.com/xuri/excelize/v2"
)

// ExportService builds an Excel workbook of contributor activity
type ExportService struct {
	contributorRepo *repositories.ContributorRepository
	repositoryRepo  *repositories.RepositoryRepository
	workRepo        *repositories.RepositoryWorkRepository
	issueRepo       *repositories.IssueRepository
	commitRepo      *repositories.CommitRepository
}

// NewExportService creates a new ExportService
func NewExportService(
	contributorRepo *repositories.ContributorRepository,
	repositoryRepo *repositories.RepositoryRepository,
	workRepo *repositories.RepositoryWorkRepository,
	issueRepo *repositories.IssueRepository,
	commitRepo *repositories.CommitRepository,
) *ExportService {
	return &ExportService{
		contributorRepo: contributorRepo,
		repositoryRepo:  repositoryRepo,
		workRepo:        workRepo,
		issueRepo:       issueRepo,
		commitRepo:      commitRepo,
	}
}

// WriteWorkbook writes the activity workbook to w. Two sheets: one row per
// contributor, and one row per (contributor, repository) work entry with
// issue and commit counts.
func (s *ExportService) WriteWorkbook(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	contributorsSheet := "Contributors"
	activitySheet := "Activity"

	if err := f.SetSheetName("Sheet1", contributorsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(activitySheet); err != nil {
		return err
	}

	contributorHeaders := []string{"Username", "Profile URL", "Repositories", "Issues", "Commits", "Summary"}
	for i, header := range contributorHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(contributorsSheet, cell, header)
	}

	activityHeaders := []string{"Username", "Repository", "Issues", "Commits", "Work Summary"}
	for i, header := range activityHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(activitySheet, cell, header)
	}

	contributors, err := s.contributorRepo.List()
	if err != nil {
		return fmt.Errorf("listing contributors: %w", err)
	}

	contributorRow := 2
	activityRow := 2
	for _, contributor := range contributors {
		works, err := s.workRepo.ListByContributor(contributor.ID)
		if err != nil {
			return fmt.Errorf("listing works for %s: %w", contributor.Username, err)
		}

		totalIssues := 0
		totalCommits := 0
		for _, work := range works {
			issues, err := s.issueRepo.ListByWork(work.ID)
			if err != nil {
				return err
			}
			commits, err := s.commitRepo.ListByWork(work.ID)
			if err != nil {
				return err
			}
			totalIssues += len(issues)
			totalCommits += len(commits)

			repositoryName := work.RepositoryID
			if repository, err := s.repositoryRepo.GetByID(work.RepositoryID); err == nil && repository != nil {
				repositoryName = repository.Name
			}

			f.SetCellValue(activitySheet, fmt.Sprintf("A%d", activityRow), contributor.Username)
			f.SetCellValue(activitySheet, fmt.Sprintf("B%d", activityRow), repositoryName)
			f.SetCellValue(activitySheet, fmt.Sprintf("C%d", activityRow), len(issues))
			f.SetCellValue(activitySheet, fmt.Sprintf("D%d", activityRow), len(commits))
			if work.Summary != nil {
				f.SetCellValue(activitySheet, fmt.Sprintf("E%d", activityRow), *work.Summary)
			}
			activityRow++
		}

		f.SetCellValue(contributorsSheet, fmt.Sprintf("A%d", contributorRow), contributor.Username)
		if contributor.ProfileURL != nil {
			f.SetCellValue(contributorsSheet, fmt.Sprintf("B%d", contributorRow), *contributor.ProfileURL)
		}
		f.SetCellValue(contributorsSheet, fmt.Sprintf("C%d", contributorRow), len(works))
		f.SetCellValue(contributorsSheet, fmt.Sprintf("D%d", contributorRow), totalIssues)
		f.SetCellValue(contributorsSheet, fmt.Sprintf("E%d", contributorRow), totalCommits)
		if contributor.Summary != nil {
			f.SetCellValue(contributorsSheet, fmt.Sprintf("F%d", contributorRow), *contributor.Summary)
		}
		contributorRow++
	}

	return f.Write(w)
}
