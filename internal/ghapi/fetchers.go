package ghapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// ListContributors returns the repository's human contributors. Bot and
// organization accounts and entries missing identity fields are excluded.
func (c *Client) ListContributors(ctx context.Context, repo RepoRef) ([]Actor, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/contributors", c.baseURL, repo.Owner, repo.Name)
	params := url.Values{"per_page": {"100"}, "anon": {"false"}}

	raw, err := c.FetchAll(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	var contributors []Actor
	for _, item := range raw {
		var actor Actor
		if err := json.Unmarshal(item, &actor); err != nil {
			continue
		}
		if !actor.IsUser() || actor.ID == 0 || actor.HTMLURL == "" || actor.AvatarURL == "" {
			continue
		}
		contributors = append(contributors, actor)
	}
	return contributors, nil
}

// ListClosedIssues returns closed-issue summaries, excluding pull requests
// masquerading as issues.
func (c *Client) ListClosedIssues(ctx context.Context, repo RepoRef) ([]Issue, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/issues", c.baseURL, repo.Owner, repo.Name)
	params := url.Values{"state": {"closed"}, "per_page": {"100"}}

	raw, err := c.FetchAll(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	var issues []Issue
	for _, item := range raw {
		var issue Issue
		if err := json.Unmarshal(item, &issue); err != nil {
			continue
		}
		if issue.IsPullRequest() || issue.State != "closed" || issue.Number == 0 {
			continue
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

// GetIssue fetches one issue with the raw (non-rendered) body representation
func (c *Client) GetIssue(ctx context.Context, repo RepoRef, number int) (*Issue, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/issues/%d", c.baseURL, repo.Owner, repo.Name, number)

	resp, err := c.get(ctx, endpoint, nil, acceptRawJSON)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var issue Issue
	if err := json.NewDecoder(resp.Body).Decode(&issue); err != nil {
		return nil, fmt.Errorf("decoding issue #%d of %s: %w", number, repo, err)
	}

	c.sleep(ctx, c.DetailDelay)
	return &issue, nil
}

// ListCommits returns commit summaries for the repository
func (c *Client) ListCommits(ctx context.Context, repo RepoRef) ([]Commit, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/commits", c.baseURL, repo.Owner, repo.Name)
	params := url.Values{"per_page": {"100"}}

	raw, err := c.FetchAll(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	var commits []Commit
	for _, item := range raw {
		var commit Commit
		if err := json.Unmarshal(item, &commit); err != nil {
			continue
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

// GetCommit fetches one commit including its file list and per-file patches
func (c *Client) GetCommit(ctx context.Context, repo RepoRef, sha string) (*Commit, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/commits/%s", c.baseURL, repo.Owner, repo.Name, sha)

	resp, err := c.get(ctx, endpoint, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var commit Commit
	if err := json.NewDecoder(resp.Body).Decode(&commit); err != nil {
		return nil, fmt.Errorf("decoding commit %.7s of %s: %w", sha, repo, err)
	}

	c.sleep(ctx, c.DetailDelay)
	return &commit, nil
}
