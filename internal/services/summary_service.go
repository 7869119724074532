package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alimgiray/whodid/internal/models"
	"github.com/alimgiray/whodid/internal/repositories"
	"github.com/alimgiray/whodid/pkg/logger"
	"github.com/sirupsen/logrus"
)

const issuesSystemPrompt = `You are an AI assistant generating *detailed technical summaries* of GitHub issues based on their raw JSON data.
Focus on the *specific technical problem* being addressed, the *proposed solution or task*, and any key *technical components, features, or modules* mentioned in the 'title' or 'body'.
Be precise about *what* the issue entails technically (e.g., "Bug fix for null reference in UserAuth module during login", "Feature request to add pagination support to the /items API endpoint", "Task to refactor the data processing pipeline for efficiency").
If the issue title or body mentions specific functions, classes, or files involved, **ensure these details are included** (e.g., '...issue in the ` + "`calculateTotal`" + ` function within ` + "`BillingService.java`" + `...').
Avoid generalizations; stick to the technical facts presented in the data.
If the provided data lacks sufficient technical detail (e.g., missing title/body), output only the text "Cannot summarize".
Output should be a concise technical statement (2-3 sentences max) **formatted as Markdown**.`

const commitsSystemPrompt = `You are an AI assistant generating *detailed technical summaries* of GitHub commits based on their raw JSON data.
Focus *precisely* on the *technical change implemented* in this commit, primarily using the 'message' field.
Describe *what code was added, removed, or modified* and its *specific technical purpose* (e.g., "Fixed null pointer exception in UserAuth module by adding a check", "Refactored data fetching logic in ProductService for performance using async methods", "Added CRUD endpoints for the new 'UserProfile' resource").
**Explicitly mention the names of key functions, classes, methods, or files that were added, removed, or modified** if this information is available in the commit message or file list.
If the message is brief or generic, use file paths/types from 'files_changed' only to *infer the nature or scope of the technical change*, still attempting to identify specific files if possible.
Be specific and technical. Avoid general statements.
If the provided data lacks a meaningful message and file context, output only the text "Cannot summarize".
Output should be a concise technical statement (1-2 sentences max) **formatted as Markdown**.`

const repoWorkSystemPrompt = `You are an AI assistant summarizing a contributor's *specific contributions* within *one particular GitHub repository*.
You will receive Markdown summaries of individual issues and commits detailing the technical tasks performed by the contributor in this repository.
*Synthesize* these technical details into a coherent paragraph (2-4 sentences). Do not simply list the individual summaries.
Describe the contributor's *primary activities and areas of focus within this specific repository*.
*Identify and group the types of tasks* performed (e.g., "focused on bug fixing in the backend API", "primarily added new frontend features using React", "contributed heavily to improving test coverage and CI pipelines", "specialized in optimizing database queries").
Mention key technical areas or components they worked on *in this repo* if a pattern emerges from the detailed summaries.
The summary should reflect *what kind of work they did here*, bridging individual technical tasks towards a qualitative description of their role *in this repository*.
If the provided list of summaries is empty or uninformative, output only the text "Cannot summarize".
The final summary should be **formatted as Markdown**.`

const contributorSystemPrompt = `You are an AI assistant creating a *high-level profile summary* for a GitHub contributor based on Markdown summaries of their work across different repositories.
You will be given a list of Markdown summaries describing the contributor's work and focus within various repositories.
Synthesize these points into a coherent paragraph (3-5 sentences) describing the contributor's *overall technical profile*, *recurring themes* in their work *across different projects*, and *inferred technical skills* or areas of deep expertise.
Focus on identifying *consistent patterns*: Does the contributor specialize (e.g., backend, frontend, data science, infrastructure)? What is their apparent primary role or contribution style? What specific technologies, languages, or architectural domains do they frequently engage with? Are their contributions broad or focused?
*Generalize and infer skills* from the repository-specific summaries to paint a picture of the *contributor as a whole*. Assess their likely strengths and areas of expertise based *only* on the provided work summaries.
If the provided list of summaries is empty or uninformative, output only the text "Cannot summarize".
The final summary should be **formatted as Markdown**.`

const (
	issueMaxTokens       = 100
	commitMaxTokens      = 100
	repoWorkMaxTokens    = 250
	contributorMaxTokens = 350
)

// PhaseResult reports the outcome of one summarization phase
type PhaseResult struct {
	Phase     string        `json:"phase"`
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// SummaryService generates LLM summaries for issues, commits, repository
// work entries, and contributors. Phases run in order because each phase
// synthesizes the summaries produced by the previous one.
type SummaryService struct {
	llm             *LLMClient
	contributorRepo *repositories.ContributorRepository
	repositoryRepo  *repositories.RepositoryRepository
	workRepo        *repositories.RepositoryWorkRepository
	issueRepo       *repositories.IssueRepository
	commitRepo      *repositories.CommitRepository
	workers         int
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(
	llm *LLMClient,
	contributorRepo *repositories.ContributorRepository,
	repositoryRepo *repositories.RepositoryRepository,
	workRepo *repositories.RepositoryWorkRepository,
	issueRepo *repositories.IssueRepository,
	commitRepo *repositories.CommitRepository,
	workers int,
) *SummaryService {
	if workers <= 0 {
		workers = 8
	}
	return &SummaryService{
		llm:             llm,
		contributorRepo: contributorRepo,
		repositoryRepo:  repositoryRepo,
		workRepo:        workRepo,
		issueRepo:       issueRepo,
		commitRepo:      commitRepo,
		workers:         workers,
	}
}

// GenerateAll runs all four phases: issues, commits, repository works,
// contributors.
func (s *SummaryService) GenerateAll(ctx context.Context) ([]PhaseResult, error) {
	results := make([]PhaseResult, 0, 4)

	issues, err := s.issueRepo.ListWithoutSummary()
	if err != nil {
		return results, fmt.Errorf("listing issues without summary: %w", err)
	}
	results = append(results, s.runPhase(ctx, "issues", len(issues), func(i int) error {
		return s.summarizeIssue(ctx, issues[i])
	}))

	commits, err := s.commitRepo.ListWithoutSummary()
	if err != nil {
		return results, fmt.Errorf("listing commits without summary: %w", err)
	}
	results = append(results, s.runPhase(ctx, "commits", len(commits), func(i int) error {
		return s.summarizeCommit(ctx, commits[i])
	}))

	works, err := s.workRepo.ListWithoutSummary()
	if err != nil {
		return results, fmt.Errorf("listing works without summary: %w", err)
	}
	results = append(results, s.runPhase(ctx, "works", len(works), func(i int) error {
		return s.summarizeWork(ctx, works[i])
	}))

	contributors, err := s.contributorRepo.ListWithoutSummary()
	if err != nil {
		return results, fmt.Errorf("listing contributors without summary: %w", err)
	}
	results = append(results, s.runPhase(ctx, "contributors", len(contributors), func(i int) error {
		return s.summarizeContributor(ctx, contributors[i])
	}))

	return results, ctx.Err()
}

// runPhase processes total items with a bounded pool of workers
func (s *SummaryService) runPhase(ctx context.Context, phase string, total int, process func(i int) error) PhaseResult {
	result := PhaseResult{Phase: phase, Total: total}
	if total == 0 {
		logger.WithField("phase", phase).Info("No items need summaries")
		return result
	}

	logger.WithFields(logrus.Fields{
		"phase": phase,
		"total": total,
	}).Info("Starting summarization phase")

	start := time.Now()
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i := 0; i < total; i++ {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			err := process(i)
			mu.Lock()
			if err != nil {
				result.Failed++
			} else {
				result.Succeeded++
			}
			mu.Unlock()
			if err != nil {
				logger.WithField("phase", phase).WithError(err).Warn("Summarization failed")
			}
		}(i)
	}
	wg.Wait()

	result.Duration = time.Since(start)
	logger.WithFields(logrus.Fields{
		"phase":     phase,
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
		"duration":  result.Duration.Round(time.Millisecond).String(),
	}).Info("Summarization phase finished")
	return result
}

func (s *SummaryService) summarizeIssue(ctx context.Context, issue *models.Issue) error {
	payload := map[string]interface{}{
		"html_url":     issue.URL,
		"title":        issue.Title,
		"body":         issue.Body,
		"comments":     issue.Comments,
		"state_reason": issue.StateReason,
	}
	if issue.Labels != nil {
		var labels []string
		if err := json.Unmarshal([]byte(*issue.Labels), &labels); err == nil {
			payload["labels"] = labels
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	userPrompt := fmt.Sprintf("GitHub issue JSON:\n%s\n\nGenerate summary.", data)

	summary, ok, err := s.llm.Complete(ctx, issuesSystemPrompt, userPrompt, 0.3, issueMaxTokens)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("model could not summarize issue %s", issue.URL)
	}
	return s.issueRepo.UpdateSummary(issue.ID, summary)
}

func (s *SummaryService) summarizeCommit(ctx context.Context, commit *models.Commit) error {
	payload := map[string]interface{}{
		"url":           commit.URL,
		"message":       commit.Message,
		"comment_count": commit.CommentCount,
		"diff_patch":    commit.DiffPatch,
	}
	if commit.FilesChanged != nil {
		var files []map[string]string
		if err := json.Unmarshal([]byte(*commit.FilesChanged), &files); err == nil {
			payload["files_changed"] = files
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	userPrompt := fmt.Sprintf("GitHub commit JSON:\n%s\n\nGenerate summary.", data)

	summary, ok, err := s.llm.Complete(ctx, commitsSystemPrompt, userPrompt, 0.3, commitMaxTokens)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("model could not summarize commit %s", commit.CommitSHA)
	}
	return s.commitRepo.UpdateSummary(commit.ID, summary)
}

func (s *SummaryService) summarizeWork(ctx context.Context, work *models.RepositoryWork) error {
	issues, err := s.issueRepo.ListByWork(work.ID)
	if err != nil {
		return err
	}
	commits, err := s.commitRepo.ListByWork(work.ID)
	if err != nil {
		return err
	}

	var issueSummaries, commitSummaries []string
	for _, issue := range issues {
		if issue.Summary != nil && *issue.Summary != "" {
			issueSummaries = append(issueSummaries, *issue.Summary)
		}
	}
	for _, commit := range commits {
		if commit.Summary != nil && *commit.Summary != "" {
			commitSummaries = append(commitSummaries, *commit.Summary)
		}
	}
	if len(issueSummaries) == 0 && len(commitSummaries) == 0 {
		return fmt.Errorf("no item summaries for work %s", work.ID)
	}

	parts := []string{"Contributor activity summaries:"}
	if len(issueSummaries) > 0 {
		parts = append(parts, "\nIssues:")
		for _, summary := range issueSummaries {
			parts = append(parts, "- "+summary)
		}
	}
	if len(commitSummaries) > 0 {
		parts = append(parts, "\nCommits:")
		for _, summary := range commitSummaries {
			parts = append(parts, "- "+summary)
		}
	}
	userPrompt := strings.Join(parts, "\n") + "\n\nGenerate overall work summary."

	summary, ok, err := s.llm.Complete(ctx, repoWorkSystemPrompt, userPrompt, 0.4, repoWorkMaxTokens)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("model could not summarize work %s", work.ID)
	}
	return s.workRepo.UpdateSummary(work.ID, summary)
}

func (s *SummaryService) summarizeContributor(ctx context.Context, contributor *models.Contributor) error {
	works, err := s.workRepo.ListByContributor(contributor.ID)
	if err != nil {
		return err
	}

	parts := []string{"Summaries of contributor's work across repositories:\n"}
	found := false
	for _, work := range works {
		if work.Summary == nil || *work.Summary == "" {
			continue
		}
		repoName := "Unknown Repo"
		if repo, err := s.repositoryRepo.GetByID(work.RepositoryID); err == nil && repo != nil {
			repoName = repo.Name
		}
		parts = append(parts, fmt.Sprintf("\nRepository: %s", repoName), "- "+*work.Summary)
		found = true
	}
	if !found {
		return fmt.Errorf("no work summaries for contributor %s", contributor.Username)
	}

	userPrompt := strings.Join(parts, "\n") +
		"\n\nPlease generate an overall profile summary of the contributor's activities and skills based on these points."

	summary, ok, err := s.llm.Complete(ctx, contributorSystemPrompt, userPrompt, 0.5, contributorMaxTokens)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("model could not summarize contributor %s", contributor.Username)
	}
	return s.contributorRepo.UpdateSummary(contributor.ID, summary)
}
