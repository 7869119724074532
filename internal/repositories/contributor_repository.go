package repositories

import (
	"database/sql"
	"time"

	"github.com/alimgiray/whodid/internal/models"
	"github.com/google/uuid"
)

type ContributorRepository struct {
	db *sql.DB
}

func NewContributorRepository(db *sql.DB) *ContributorRepository {
	return &ContributorRepository{db: db}
}

func (r *ContributorRepository) Create(contributor *models.Contributor) error {
	if contributor.ID == "" {
		contributor.ID = uuid.New().String()
	}

	query := `
		INSERT INTO contributors (id, github_user_id, username, profile_url, avatar_url, summary, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		contributor.ID, contributor.GithubUserID, contributor.Username, contributor.ProfileURL,
		contributor.AvatarURL, contributor.Summary, contributor.CreatedAt, contributor.UpdatedAt,
	)
	return err
}

func (r *ContributorRepository) GetByID(id string) (*models.Contributor, error) {
	query := `
		SELECT id, github_user_id, username, profile_url, avatar_url, summary, created_at, updated_at
		FROM contributors WHERE id = ?
	`
	return r.scanOne(r.db.QueryRow(query, id))
}

func (r *ContributorRepository) GetByUsername(username string) (*models.Contributor, error) {
	query := `
		SELECT id, github_user_id, username, profile_url, avatar_url, summary, created_at, updated_at
		FROM contributors WHERE username = ?
	`
	return r.scanOne(r.db.QueryRow(query, username))
}

func (r *ContributorRepository) Update(contributor *models.Contributor) error {
	contributor.UpdatedAt = time.Now()

	query := `
		UPDATE contributors SET
			github_user_id = ?, username = ?, profile_url = ?, avatar_url = ?, summary = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		contributor.GithubUserID, contributor.Username, contributor.ProfileURL,
		contributor.AvatarURL, contributor.Summary, contributor.UpdatedAt, contributor.ID,
	)
	return err
}

// Upsert creates or updates a contributor keyed by username. An existing
// summary is preserved.
func (r *ContributorRepository) Upsert(contributor *models.Contributor) error {
	existing, err := r.GetByUsername(contributor.Username)
	if err != nil && err != sql.ErrNoRows {
		return err
	}

	if existing != nil {
		contributor.ID = existing.ID
		contributor.CreatedAt = existing.CreatedAt
		if contributor.Summary == nil {
			contributor.Summary = existing.Summary
		}
		return r.Update(contributor)
	}

	return r.Create(contributor)
}

// List returns all contributors ordered by username
func (r *ContributorRepository) List() ([]*models.Contributor, error) {
	query := `
		SELECT id, github_user_id, username, profile_url, avatar_url, summary, created_at, updated_at
		FROM contributors ORDER BY username COLLATE NOCASE ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanMany(rows)
}

// ListWithoutSummary returns contributors that have no generated summary yet
func (r *ContributorRepository) ListWithoutSummary() ([]*models.Contributor, error) {
	query := `
		SELECT id, github_user_id, username, profile_url, avatar_url, summary, created_at, updated_at
		FROM contributors WHERE summary IS NULL OR summary = ''
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanMany(rows)
}

// UpdateSummary stores a generated summary for a contributor
func (r *ContributorRepository) UpdateSummary(id, summary string) error {
	query := `UPDATE contributors SET summary = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.Exec(query, summary, time.Now(), id)
	return err
}

func (r *ContributorRepository) scanOne(row *sql.Row) (*models.Contributor, error) {
	contributor := &models.Contributor{}
	err := row.Scan(
		&contributor.ID, &contributor.GithubUserID, &contributor.Username, &contributor.ProfileURL,
		&contributor.AvatarURL, &contributor.Summary, &contributor.CreatedAt, &contributor.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return contributor, nil
}

func (r *ContributorRepository) scanMany(rows *sql.Rows) ([]*models.Contributor, error) {
	var contributors []*models.Contributor
	for rows.Next() {
		contributor := &models.Contributor{}
		err := rows.Scan(
			&contributor.ID, &contributor.GithubUserID, &contributor.Username, &contributor.ProfileURL,
			&contributor.AvatarURL, &contributor.Summary, &contributor.CreatedAt, &contributor.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		contributors = append(contributors, contributor)
	}
	return contributors, rows.Err()
}
