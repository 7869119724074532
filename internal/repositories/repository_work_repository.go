package repositories

import (
	"database/sql"
	"time"

	"github.com/alimgiray/whodid/internal/models"
	"github.com/google/uuid"
)

type RepositoryWorkRepository struct {
	db *sql.DB
}

func NewRepositoryWorkRepository(db *sql.DB) *RepositoryWorkRepository {
	return &RepositoryWorkRepository{db: db}
}

func (r *RepositoryWorkRepository) Create(work *models.RepositoryWork) error {
	if work.ID == "" {
		work.ID = uuid.New().String()
	}

	query := `
		INSERT INTO repository_works (id, contributor_id, repository_id, summary, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		work.ID, work.ContributorID, work.RepositoryID, work.Summary, work.CreatedAt, work.UpdatedAt,
	)
	return err
}

func (r *RepositoryWorkRepository) GetByContributorAndRepository(contributorID, repositoryID string) (*models.RepositoryWork, error) {
	query := `
		SELECT id, contributor_id, repository_id, summary, created_at, updated_at
		FROM repository_works WHERE contributor_id = ? AND repository_id = ?
	`

	work := &models.RepositoryWork{}
	err := r.db.QueryRow(query, contributorID, repositoryID).Scan(
		&work.ID, &work.ContributorID, &work.RepositoryID, &work.Summary, &work.CreatedAt, &work.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return work, nil
}

// Upsert creates the work entry for a (contributor, repository) pair if it
// does not exist yet, and returns the persisted row either way.
func (r *RepositoryWorkRepository) Upsert(work *models.RepositoryWork) (*models.RepositoryWork, error) {
	existing, err := r.GetByContributorAndRepository(work.ContributorID, work.RepositoryID)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	if existing != nil {
		return existing, nil
	}

	if err := r.Create(work); err != nil {
		return nil, err
	}
	return work, nil
}

// ListByContributor returns all work entries for a contributor
func (r *RepositoryWorkRepository) ListByContributor(contributorID string) ([]*models.RepositoryWork, error) {
	query := `
		SELECT id, contributor_id, repository_id, summary, created_at, updated_at
		FROM repository_works WHERE contributor_id = ?
	`

	rows, err := r.db.Query(query, contributorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanMany(rows)
}

// ListWithoutSummary returns work entries that have no generated summary yet
func (r *RepositoryWorkRepository) ListWithoutSummary() ([]*models.RepositoryWork, error) {
	query := `
		SELECT id, contributor_id, repository_id, summary, created_at, updated_at
		FROM repository_works WHERE summary IS NULL OR summary = ''
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanMany(rows)
}

// UpdateSummary stores a generated summary for a work entry
func (r *RepositoryWorkRepository) UpdateSummary(id, summary string) error {
	query := `UPDATE repository_works SET summary = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.Exec(query, summary, time.Now(), id)
	return err
}

func (r *RepositoryWorkRepository) scanMany(rows *sql.Rows) ([]*models.RepositoryWork, error) {
	var works []*models.RepositoryWork
	for rows.Next() {
		work := &models.RepositoryWork{}
		err := rows.Scan(
			&work.ID, &work.ContributorID, &work.RepositoryID, &work.Summary, &work.CreatedAt, &work.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		works = append(works, work)
	}
	return works, rows.Err()
}
