package ghapi

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// ActorType classifies GitHub account kinds
type ActorType string

const (
	ActorTypeUser         ActorType = "User"
	ActorTypeBot          ActorType = "Bot"
	ActorTypeOrganization ActorType = "Organization"
)

// Actor is the identity shape GitHub embeds in contributor, assignee and
// commit author payloads.
type Actor struct {
	Login     string    `json:"login"`
	ID        int64     `json:"id"`
	HTMLURL   string    `json:"html_url"`
	AvatarURL string    `json:"avatar_url"`
	Type      ActorType `json:"type"`
}

// IsUser reports whether the actor is a human account. Only users count
// towards contributor activity.
func (a *Actor) IsUser() bool {
	return a != nil && a.Login != "" && a.Type == ActorTypeUser
}

type Label struct {
	Name string `json:"name"`
}

// Issue carries the fields used from both the list and detail
// representations of the issues endpoint.
type Issue struct {
	ID          int64           `json:"id"`
	Number      int             `json:"number"`
	HTMLURL     string          `json:"html_url"`
	Title       string          `json:"title"`
	Body        string          `json:"body"`
	State       string          `json:"state"`
	StateReason *string         `json:"state_reason"`
	Comments    int             `json:"comments"`
	Labels      []Label         `json:"labels"`
	Assignee    *Actor          `json:"assignee"`
	Assignees   []*Actor        `json:"assignees"`
	PullRequest json.RawMessage `json:"pull_request,omitempty"`
}

// IsPullRequest reports whether this issue entry is a pull request in
// disguise. The issues endpoint returns both.
func (i *Issue) IsPullRequest() bool {
	return len(i.PullRequest) > 0
}

// UserAssignees returns the User-kind assignees, falling back to the single
// assignee field when the list is empty.
func (i *Issue) UserAssignees() []*Actor {
	assignees := i.Assignees
	if len(assignees) == 0 && i.Assignee != nil {
		assignees = []*Actor{i.Assignee}
	}

	var users []*Actor
	for _, assignee := range assignees {
		if assignee.IsUser() {
			users = append(users, assignee)
		}
	}
	return users
}

// Commit is the commits endpoint shape. Files is only populated by the
// per-commit detail call.
type Commit struct {
	SHA     string       `json:"sha"`
	HTMLURL string       `json:"html_url"`
	Commit  CommitInfo   `json:"commit"`
	Author  *Actor       `json:"author"`
	Files   []CommitFile `json:"files"`
}

type CommitInfo struct {
	Message      string `json:"message"`
	CommentCount int    `json:"comment_count"`
}

type CommitFile struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Patch    string `json:"patch"`
}

// RepoRef identifies a repository by owner and name
type RepoRef struct {
	Owner string
	Name  string
}

// ParseRepoURL extracts owner and repository name from a github.com URL.
// URLs on other hosts or with fewer than two path segments are rejected.
func ParseRepoURL(raw string) (RepoRef, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return RepoRef{}, fmt.Errorf("parsing repository URL %q: %w", raw, err)
	}

	if !strings.EqualFold(parsed.Hostname(), "github.com") {
		return RepoRef{}, fmt.Errorf("%q is not a github.com repository URL", raw)
	}

	var parts []string
	for _, part := range strings.Split(strings.Trim(parsed.Path, "/"), "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) < 2 {
		return RepoRef{}, fmt.Errorf("cannot parse owner/repo from %q", raw)
	}

	return RepoRef{Owner: parts[0], Name: strings.TrimSuffix(parts[1], ".git")}, nil
}

// CanonicalURL reconstructs the normalized repository URL used as the stable
// join key for work entries.
func (r RepoRef) CanonicalURL() string {
	return fmt.Sprintf("https://github.com/%s/%s", r.Owner, r.Name)
}

func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}
