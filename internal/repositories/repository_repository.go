package repositories

import (
	"database/sql"
	"time"

	"github.com/alimgiray/whodid/internal/models"
	"github.com/google/uuid"
)

type RepositoryRepository struct {
	db *sql.DB
}

func NewRepositoryRepository(db *sql.DB) *RepositoryRepository {
	return &RepositoryRepository{db: db}
}

func (r *RepositoryRepository) Create(repository *models.Repository) error {
	if repository.ID == "" {
		repository.ID = uuid.New().String()
	}

	query := `
		INSERT INTO repositories (id, name, url, avatar_url, description, summary, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		repository.ID, repository.Name, repository.URL, repository.AvatarURL,
		repository.Description, repository.Summary, repository.CreatedAt, repository.UpdatedAt,
	)
	return err
}

func (r *RepositoryRepository) GetByID(id string) (*models.Repository, error) {
	query := `
		SELECT id, name, url, avatar_url, description, summary, created_at, updated_at
		FROM repositories WHERE id = ?
	`
	return r.scanOne(r.db.QueryRow(query, id))
}

func (r *RepositoryRepository) GetByURL(url string) (*models.Repository, error) {
	query := `
		SELECT id, name, url, avatar_url, description, summary, created_at, updated_at
		FROM repositories WHERE url = ?
	`
	return r.scanOne(r.db.QueryRow(query, url))
}

func (r *RepositoryRepository) Update(repository *models.Repository) error {
	repository.UpdatedAt = time.Now()

	query := `
		UPDATE repositories SET
			name = ?, url = ?, avatar_url = ?, description = ?, summary = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		repository.Name, repository.URL, repository.AvatarURL,
		repository.Description, repository.Summary, repository.UpdatedAt, repository.ID,
	)
	return err
}

// Upsert creates or updates a repository keyed by canonical URL
func (r *RepositoryRepository) Upsert(repository *models.Repository) error {
	existing, err := r.GetByURL(repository.URL)
	if err != nil && err != sql.ErrNoRows {
		return err
	}

	if existing != nil {
		repository.ID = existing.ID
		repository.CreatedAt = existing.CreatedAt
		if repository.AvatarURL == nil {
			repository.AvatarURL = existing.AvatarURL
		}
		if repository.Description == nil {
			repository.Description = existing.Description
		}
		if repository.Summary == nil {
			repository.Summary = existing.Summary
		}
		return r.Update(repository)
	}

	return r.Create(repository)
}

// List returns all repositories ordered by name
func (r *RepositoryRepository) List() ([]*models.Repository, error) {
	query := `
		SELECT id, name, url, avatar_url, description, summary, created_at, updated_at
		FROM repositories ORDER BY name COLLATE NOCASE ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var repositories []*models.Repository
	for rows.Next() {
		repository := &models.Repository{}
		err := rows.Scan(
			&repository.ID, &repository.Name, &repository.URL, &repository.AvatarURL,
			&repository.Description, &repository.Summary, &repository.CreatedAt, &repository.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		repositories = append(repositories, repository)
	}
	return repositories, rows.Err()
}

func (r *RepositoryRepository) scanOne(row *sql.Row) (*models.Repository, error) {
	repository := &models.Repository{}
	err := row.Scan(
		&repository.ID, &repository.Name, &repository.URL, &repository.AvatarURL,
		&repository.Description, &repository.Summary, &repository.CreatedAt, &repository.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return repository, nil
}
