package models

import (
	"time"

	"github.com/google/uuid"
)

// Repository represents a GitHub repository processed by the pipeline
type Repository struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"` // "owner/repo"
	URL         string    `json:"url"`
	AvatarURL   *string   `json:"avatar_url"`
	Description *string   `json:"description"`
	Summary     *string   `json:"summary"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewRepository creates a new Repository with a generated UUID
func NewRepository(name, url string) *Repository {
	now := time.Now()
	return &Repository{
		ID:        uuid.New().String(),
		Name:      name,
		URL:       url,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
