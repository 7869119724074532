package repositories

import (
	"database/sql"
	"time"

	"github.com/alimgiray/whodid/internal/models"
	"github.com/google/uuid"
)

type IssueRepository struct {
	db *sql.DB
}

func NewIssueRepository(db *sql.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

func (r *IssueRepository) Create(issue *models.Issue) error {
	if issue.ID == "" {
		issue.ID = uuid.New().String()
	}

	query := `
		INSERT INTO issues (id, work_id, url, title, body, labels, comments, state_reason, summary, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		issue.ID, issue.WorkID, issue.URL, issue.Title, issue.Body, issue.Labels,
		issue.Comments, issue.StateReason, issue.Summary, issue.CreatedAt, issue.UpdatedAt,
	)
	return err
}

func (r *IssueRepository) GetByWorkAndURL(workID, url string) (*models.Issue, error) {
	query := `
		SELECT id, work_id, url, title, body, labels, comments, state_reason, summary, created_at, updated_at
		FROM issues WHERE work_id = ? AND url = ?
	`

	issue := &models.Issue{}
	err := r.db.QueryRow(query, workID, url).Scan(
		&issue.ID, &issue.WorkID, &issue.URL, &issue.Title, &issue.Body, &issue.Labels,
		&issue.Comments, &issue.StateReason, &issue.Summary, &issue.CreatedAt, &issue.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return issue, nil
}

func (r *IssueRepository) Update(issue *models.Issue) error {
	issue.UpdatedAt = time.Now()

	query := `
		UPDATE issues SET
			title = ?, body = ?, labels = ?, comments = ?, state_reason = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		issue.Title, issue.Body, issue.Labels, issue.Comments, issue.StateReason, issue.UpdatedAt, issue.ID,
	)
	return err
}

// Upsert creates or updates an issue keyed by (work, url). An existing
// summary is preserved.
func (r *IssueRepository) Upsert(issue *models.Issue) error {
	existing, err := r.GetByWorkAndURL(issue.WorkID, issue.URL)
	if err != nil && err != sql.ErrNoRows {
		return err
	}

	if existing != nil {
		issue.ID = existing.ID
		issue.CreatedAt = existing.CreatedAt
		if issue.Summary == nil {
			issue.Summary = existing.Summary
		}
		return r.Update(issue)
	}

	return r.Create(issue)
}

// ListByWork returns all issues for a work entry
func (r *IssueRepository) ListByWork(workID string) ([]*models.Issue, error) {
	query := `
		SELECT id, work_id, url, title, body, labels, comments, state_reason, summary, created_at, updated_at
		FROM issues WHERE work_id = ?
	`

	rows, err := r.db.Query(query, workID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanMany(rows)
}

// ListWithoutSummary returns issues that have no generated summary yet
func (r *IssueRepository) ListWithoutSummary() ([]*models.Issue, error) {
	query := `
		SELECT id, work_id, url, title, body, labels, comments, state_reason, summary, created_at, updated_at
		FROM issues WHERE summary IS NULL OR summary = ''
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanMany(rows)
}

// UpdateSummary stores a generated summary for an issue
func (r *IssueRepository) UpdateSummary(id, summary string) error {
	query := `UPDATE issues SET summary = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.Exec(query, summary, time.Now(), id)
	return err
}

func (r *IssueRepository) scanMany(rows *sql.Rows) ([]*models.Issue, error) {
	var issues []*models.Issue
	for rows.Next() {
		issue := &models.Issue{}
		err := rows.Scan(
			&issue.ID, &issue.WorkID, &issue.URL, &issue.Title, &issue.Body, &issue.Labels,
			&issue.Comments, &issue.StateReason, &issue.Summary, &issue.CreatedAt, &issue.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}
