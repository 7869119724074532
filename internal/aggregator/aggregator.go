package aggregator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alimgiray/whodid/internal/ghapi"
	"github.com/alimgiray/whodid/pkg/logger"
)

const commitMessageMaxLen = 200

// Aggregator walks a set of repositories and merges per-user activity into a
// single contributor map. Processing is strictly sequential: one repository
// is fully handled before the next begins, and the map is owned by one run.
type Aggregator struct {
	client            *ghapi.Client
	issueDetailLimit  int
	commitDetailLimit int
}

// New creates an aggregator. Detail limits cap the per-repository detail
// calls for issues and commits; a negative limit means unlimited.
func New(client *ghapi.Client, issueDetailLimit, commitDetailLimit int) *Aggregator {
	return &Aggregator{
		client:            client,
		issueDetailLimit:  issueDetailLimit,
		commitDetailLimit: commitDetailLimit,
	}
}

// Result holds the contributor map built by one aggregation run
type Result struct {
	contributors map[string]*ContributorRecord
	skipped      map[string]struct{}
	meta         Metadata
}

// Metadata is run-level information attached to the output as a sidecar,
// never part of any entity.
type Metadata struct {
	ProcessedRepositories []string `json:"processed_repos"`
	ProcessingTimeSeconds float64  `json:"processing_time_seconds"`
	IssueDetailLimit      int      `json:"issue_detail_limit_per_repo"`
	CommitDetailLimit     int      `json:"commit_detail_limit_per_repo"`
	SkippedUsers          []string `json:"skipped_users,omitempty"`
}

// Contributor returns the record for a username, or nil when unseen
func (r *Result) Contributor(username string) *ContributorRecord {
	return r.contributors[username]
}

// Size returns the number of unique contributors found
func (r *Result) Size() int {
	return len(r.contributors)
}

// Run processes the repository URLs in input order and returns the merged
// result. A failure in any phase degrades that phase to empty and the run
// continues; only an unparsable URL skips a whole repository. Cancellation
// is honored between repositories, keeping already-merged results valid.
func (a *Aggregator) Run(ctx context.Context, repoURLs []string) *Result {
	result := &Result{
		contributors: make(map[string]*ContributorRecord),
		skipped:      make(map[string]struct{}),
		meta: Metadata{
			ProcessedRepositories: repoURLs,
			IssueDetailLimit:      a.issueDetailLimit,
			CommitDetailLimit:     a.commitDetailLimit,
		},
	}

	start := time.Now()
	for i, repoURL := range repoURLs {
		select {
		case <-ctx.Done():
			logger.Warnf("Aggregation cancelled after %d of %d repositories", i, len(repoURLs))
			result.meta.ProcessingTimeSeconds = time.Since(start).Seconds()
			return result
		default:
		}

		repo, err := ghapi.ParseRepoURL(repoURL)
		if err != nil {
			logger.WithError(err).Warnf("Skipping repository %s", repoURL)
			continue
		}

		a.processRepository(ctx, repo, result)
	}
	result.meta.ProcessingTimeSeconds = time.Since(start).Seconds()

	logger.Infof("Aggregation finished: %d unique contributors across %d repositories", len(result.contributors), len(repoURLs))
	return result
}

func (a *Aggregator) processRepository(ctx context.Context, repo ghapi.RepoRef, result *Result) {
	canonicalURL := repo.CanonicalURL()
	logger.Infof("Processing repository %s", repo)

	contributors, err := a.client.ListContributors(ctx, repo)
	if err != nil {
		logger.WithError(err).Warnf("Failed to fetch contributors for %s, continuing with none", repo)
		contributors = nil
	}
	for i := range contributors {
		result.seed(&contributors[i])
	}

	issueBuckets, pendingAssignees := a.collectIssues(ctx, repo)
	commitBuckets, pendingAuthors := a.collectCommits(ctx, repo)

	// Union of every username touched in this repository: listed
	// contributors, issue assignees and commit authors.
	involved := make(map[string]struct{})
	for _, contributor := range contributors {
		involved[contributor.Login] = struct{}{}
	}
	for username := range issueBuckets {
		involved[username] = struct{}{}
	}
	for username := range commitBuckets {
		involved[username] = struct{}{}
	}

	logger.Infof("Integrating activities for %d users in %s", len(involved), repo)

	for username := range involved {
		record, known := result.contributors[username]
		if !known {
			identity := pendingAssignees[username]
			if identity == nil {
				identity = pendingAuthors[username]
			}
			if identity == nil || (identity.ID == 0 && identity.HTMLURL == "") {
				logger.Warnf("Skipping user %s found via activity in %s, identity details could not be retrieved", username, repo)
				result.skipped[username] = struct{}{}
				continue
			}

			logger.Infof("Adding contributor %s based on activity in %s", username, repo)
			record = &ContributorRecord{
				ID:        identity.ID,
				Username:  username,
				URL:       identity.HTMLURL,
				AvatarURL: identity.AvatarURL,
				Works:     []*WorkEntry{},
			}
			result.contributors[username] = record
		}

		issues := issueBuckets[username]
		commits := commitBuckets[username]
		if len(issues) == 0 && len(commits) == 0 {
			// Listed contributors with zero attributed activity get no work
			// entry for this repository.
			continue
		}

		if entry := record.workFor(canonicalURL); entry != nil {
			// This run is authoritative for the repository: replace, don't
			// accumulate.
			entry.Issues = issues
			entry.Commits = commits
		} else {
			record.Works = append(record.Works, &WorkEntry{
				RepositoryURL: canonicalURL,
				Issues:        issues,
				Commits:       commits,
			})
		}
	}
}

// collectIssues fetches closed issues and groups them per assignee. The
// second return value caches identity details for assignees not yet known as
// contributors, for possible later promotion.
func (a *Aggregator) collectIssues(ctx context.Context, repo ghapi.RepoRef) (map[string][]*IssueRecord, map[string]*ghapi.Actor) {
	buckets := make(map[string][]*IssueRecord)
	pending := make(map[string]*ghapi.Actor)

	issues, err := a.client.ListClosedIssues(ctx, repo)
	if err != nil {
		logger.WithError(err).Warnf("Failed to fetch closed issues for %s, continuing with none", repo)
		return buckets, pending
	}

	budget := newDetailBudget(a.issueDetailLimit)
	for i := range issues {
		issue := &issues[i]

		record := &IssueRecord{
			id:          issue.ID,
			HTMLURL:     issue.HTMLURL,
			Number:      issue.Number,
			Title:       issue.Title,
			StateReason: issue.StateReason,
		}

		// Assignees come from the detail payload when available, the list
		// summary otherwise.
		assignable := issue

		if budget.Take() {
			detail, err := a.client.GetIssue(ctx, repo, issue.Number)
			if err != nil {
				logger.WithError(err).Warnf("Failed to fetch details for issue #%d in %s", issue.Number, repo)
			} else {
				body := detail.Body
				record.id = detail.ID
				record.HTMLURL = detail.HTMLURL
				record.Title = detail.Title
				record.Body = &body
				record.Labels = labelNames(detail.Labels)
				record.Comments = detail.Comments
				record.StateReason = detail.StateReason
				assignable = detail
			}
		} else if budget.Used() == 0 {
			logger.Infof("Issue detail limit is zero, keeping summary fields only for %s", repo)
		}

		if record.HTMLURL == "" {
			// URL is the natural key downstream; drop the record
			continue
		}

		for _, assignee := range assignable.UserAssignees() {
			username := assignee.Login
			if !containsIssue(buckets[username], record) {
				buckets[username] = append(buckets[username], record)
			}
			if _, cached := pending[username]; !cached {
				pending[username] = assignee
			}
		}
	}

	return buckets, pending
}

// collectCommits fetches commits and groups them per author, with bounded
// per-commit detail calls for file lists and diff text.
func (a *Aggregator) collectCommits(ctx context.Context, repo ghapi.RepoRef) (map[string][]*CommitRecord, map[string]*ghapi.Actor) {
	buckets := make(map[string][]*CommitRecord)
	pending := make(map[string]*ghapi.Actor)

	commits, err := a.client.ListCommits(ctx, repo)
	if err != nil {
		logger.WithError(err).Warnf("Failed to fetch commits for %s, continuing with none", repo)
		return buckets, pending
	}

	budget := newDetailBudget(a.commitDetailLimit)
	for i := range commits {
		commit := &commits[i]
		if commit.SHA == "" || !commit.Author.IsUser() {
			continue
		}
		username := commit.Author.Login

		record := &CommitRecord{
			SHA:     commit.SHA,
			URL:     commit.HTMLURL,
			Message: summarizeMessage(commit.Commit.Message),
		}
		if record.URL == "" {
			continue
		}

		if budget.Take() {
			detail, err := a.client.GetCommit(ctx, repo, commit.SHA)
			if err != nil {
				logger.WithError(err).Warnf("Failed to fetch details for commit %.7s in %s", commit.SHA, repo)
			} else {
				count := detail.Commit.CommentCount
				record.CommentCount = &count
				record.FilesChanged = fileChanges(detail.Files)
				record.DiffPatch = combinedPatch(detail.Files)
			}
		}

		if !containsCommit(buckets[username], record.SHA) {
			buckets[username] = append(buckets[username], record)
		}
		if _, cached := pending[username]; !cached {
			pending[username] = commit.Author
		}
	}

	return buckets, pending
}

// seed ensures a record exists for a listed contributor
func (r *Result) seed(actor *ghapi.Actor) {
	record, known := r.contributors[actor.Login]
	if !known {
		r.contributors[actor.Login] = &ContributorRecord{
			ID:        actor.ID,
			Username:  actor.Login,
			URL:       actor.HTMLURL,
			AvatarURL: actor.AvatarURL,
			Works:     []*WorkEntry{},
		}
		return
	}
	if record.Works == nil {
		record.Works = []*WorkEntry{}
	}
}

func containsIssue(list []*IssueRecord, candidate *IssueRecord) bool {
	for _, existing := range list {
		if candidate.id != 0 && existing.id == candidate.id {
			return true
		}
		if existing.HTMLURL == candidate.HTMLURL {
			return true
		}
	}
	return false
}

func containsCommit(list []*CommitRecord, sha string) bool {
	for _, existing := range list {
		if existing.SHA == sha {
			return true
		}
	}
	return false
}

// summarizeMessage keeps only the first message line, truncated with an
// ellipsis on overflow.
func summarizeMessage(message string) string {
	if message == "" {
		return "No commit message"
	}
	line, _, _ := strings.Cut(message, "\n")
	if len(line) > commitMessageMaxLen {
		line = line[:commitMessageMaxLen-3] + "..."
	}
	return line
}

func labelNames(labels []ghapi.Label) []string {
	names := make([]string, 0, len(labels))
	for _, label := range labels {
		if label.Name != "" {
			names = append(names, label.Name)
		}
	}
	return names
}

func fileChanges(files []ghapi.CommitFile) []FileChange {
	changes := make([]FileChange, 0, len(files))
	for _, file := range files {
		if file.Filename != "" {
			changes = append(changes, FileChange{Filename: file.Filename, Status: file.Status})
		}
	}
	return changes
}

// combinedPatch concatenates per-file patches separated by a file header.
// Returns nil when no file carries patch text.
func combinedPatch(files []ghapi.CommitFile) *string {
	var builder strings.Builder
	for _, file := range files {
		if file.Patch == "" {
			continue
		}
		name := file.Filename
		if name == "" {
			name = "Unknown"
		}
		fmt.Fprintf(&builder, "--- File: %s ---\n%s\n\n", name, file.Patch)
	}

	patch := strings.TrimSpace(builder.String())
	if patch == "" {
		return nil
	}
	return &patch
}
