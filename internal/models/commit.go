package models

import (
	"time"

	"github.com/google/uuid"
)

// Commit represents a commit attributed to a contributor within one
// repository work entry. FilesChanged is stored as a JSON array string;
// DiffPatch holds the combined multi-file diff text when the detail fetch
// succeeded.
type Commit struct {
	ID           string    `json:"id"`
	WorkID       string    `json:"work_id"`
	CommitSHA    string    `json:"commit_sha"`
	URL          string    `json:"url"`
	Message      *string   `json:"message"`
	FilesChanged *string   `json:"files_changed"`
	CommentCount *int      `json:"comment_count"`
	DiffPatch    *string   `json:"diff_patch"`
	Summary      *string   `json:"summary"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewCommit creates a new Commit with a generated UUID
func NewCommit(workID, commitSHA, url string) *Commit {
	now := time.Now()
	return &Commit{
		ID:        uuid.New().String(),
		WorkID:    workID,
		CommitSHA: commitSHA,
		URL:       url,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
