package models

import (
	"time"

	"github.com/google/uuid"
)

// RepositoryWork links a contributor to a repository they have attributed
// activity in. One row per (contributor, repository) pair.
type RepositoryWork struct {
	ID            string    `json:"id"`
	ContributorID string    `json:"contributor_id"`
	RepositoryID  string    `json:"repository_id"`
	Summary       *string   `json:"summary"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewRepositoryWork creates a new RepositoryWork with a generated UUID
func NewRepositoryWork(contributorID, repositoryID string) *RepositoryWork {
	now := time.Now()
	return &RepositoryWork{
		ID:            uuid.New().String(),
		ContributorID: contributorID,
		RepositoryID:  repositoryID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
