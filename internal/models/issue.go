package models

import (
	"time"

	"github.com/google/uuid"
)

// Issue represents a closed issue attributed to a contributor within one
// repository work entry. Labels is stored as a JSON array string.
type Issue struct {
	ID          string    `json:"id"`
	WorkID      string    `json:"work_id"`
	URL         string    `json:"url"`
	Title       *string   `json:"title"`
	Body        *string   `json:"body"`
	Labels      *string   `json:"labels"`
	Comments    int       `json:"comments"`
	StateReason *string   `json:"state_reason"`
	Summary     *string   `json:"summary"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewIssue creates a new Issue with a generated UUID
func NewIssue(workID, url string) *Issue {
	now := time.Now()
	return &Issue{
		ID:        uuid.New().String(),
		WorkID:    workID,
		URL:       url,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
