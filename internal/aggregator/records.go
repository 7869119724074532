package aggregator

// ContributorRecord is one unique contributor, merged across all processed
// repositories. Identity key is the username.
type ContributorRecord struct {
	ID        int64        `json:"id"`
	Username  string       `json:"username"`
	URL       string       `json:"url"`
	AvatarURL string       `json:"avatar_url"`
	Summary   string       `json:"summary"`
	Works     []*WorkEntry `json:"works"`
}

// workFor returns the existing work entry for the canonical repository URL,
// or nil when the contributor has none for it.
func (c *ContributorRecord) workFor(repositoryURL string) *WorkEntry {
	for _, work := range c.Works {
		if work.RepositoryURL == repositoryURL {
			return work
		}
	}
	return nil
}

// WorkEntry records one contributor's attributed activity within one
// repository. An entry exists only when at least one issue or commit was
// attributed to the contributor there.
type WorkEntry struct {
	RepositoryURL string          `json:"repository_url"`
	Issues        []*IssueRecord  `json:"issues"`
	Commits       []*CommitRecord `json:"commits"`
}

// IssueRecord is a closed issue attributed to an assignee. Body, Labels and
// Comments are only populated when the per-issue detail fetch ran within the
// detail budget; a nil Body marks a summary-only record.
type IssueRecord struct {
	HTMLURL     string   `json:"html_url"`
	Number      int      `json:"number"`
	Title       string   `json:"title"`
	Body        *string  `json:"body"`
	Labels      []string `json:"labels"`
	Comments    int      `json:"comments"`
	StateReason *string  `json:"state_reason"`

	// external numeric id, used for de-duplication within one bucket
	id int64
}

// CommitRecord is a commit attributed to its author. FilesChanged,
// CommentCount and DiffPatch stay nil when the detail fetch was skipped or
// failed.
type CommitRecord struct {
	SHA          string       `json:"sha"`
	URL          string       `json:"url"`
	Message      string       `json:"message"`
	FilesChanged []FileChange `json:"files_changed"`
	CommentCount *int         `json:"comment_count"`
	DiffPatch    *string      `json:"diff_patch"`
}

type FileChange struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
}
