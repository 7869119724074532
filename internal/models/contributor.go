package models

import (
	"time"

	"github.com/google/uuid"
)

// Contributor represents a GitHub user with aggregated activity
type Contributor struct {
	ID           string    `json:"id"`
	GithubUserID int64     `json:"github_user_id"`
	Username     string    `json:"username"`
	ProfileURL   *string   `json:"profile_url"`
	AvatarURL    *string   `json:"avatar_url"`
	Summary      *string   `json:"summary"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewContributor creates a new Contributor with a generated UUID
func NewContributor(githubUserID int64, username string) *Contributor {
	now := time.Now()
	return &Contributor{
		ID:           uuid.New().String(),
		GithubUserID: githubUserID,
		Username:     username,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// HasSummary checks whether a non-empty summary has been generated
func (c *Contributor) HasSummary() bool {
	return c.Summary != nil && *c.Summary != ""
}
