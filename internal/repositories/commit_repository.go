package repositories

import (
	"database/sql"
	"time"

	"github.com/alimgiray/whodid/internal/models"
	"github.com/google/uuid"
)

type CommitRepository struct {
	db *sql.DB
}

func NewCommitRepository(db *sql.DB) *CommitRepository {
	return &CommitRepository{db: db}
}

func (r *CommitRepository) Create(commit *models.Commit) error {
	if commit.ID == "" {
		commit.ID = uuid.New().String()
	}

	query := `
		INSERT INTO commits (id, work_id, commit_sha, url, message, files_changed, comment_count, diff_patch, summary, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		commit.ID, commit.WorkID, commit.CommitSHA, commit.URL, commit.Message, commit.FilesChanged,
		commit.CommentCount, commit.DiffPatch, commit.Summary, commit.CreatedAt, commit.UpdatedAt,
	)
	return err
}

func (r *CommitRepository) GetByWorkAndURL(workID, url string) (*models.Commit, error) {
	query := `
		SELECT id, work_id, commit_sha, url, message, files_changed, comment_count, diff_patch, summary, created_at, updated_at
		FROM commits WHERE work_id = ? AND url = ?
	`

	commit := &models.Commit{}
	err := r.db.QueryRow(query, workID, url).Scan(
		&commit.ID, &commit.WorkID, &commit.CommitSHA, &commit.URL, &commit.Message, &commit.FilesChanged,
		&commit.CommentCount, &commit.DiffPatch, &commit.Summary, &commit.CreatedAt, &commit.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return commit, nil
}

func (r *CommitRepository) Update(commit *models.Commit) error {
	commit.UpdatedAt = time.Now()

	query := `
		UPDATE commits SET
			commit_sha = ?, message = ?, files_changed = ?, comment_count = ?, diff_patch = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		commit.CommitSHA, commit.Message, commit.FilesChanged, commit.CommentCount,
		commit.DiffPatch, commit.UpdatedAt, commit.ID,
	)
	return err
}

// Upsert creates or updates a commit keyed by (work, url). An existing
// summary is preserved.
func (r *CommitRepository) Upsert(commit *models.Commit) error {
	existing, err := r.GetByWorkAndURL(commit.WorkID, commit.URL)
	if err != nil && err != sql.ErrNoRows {
		return err
	}

	if existing != nil {
		commit.ID = existing.ID
		commit.CreatedAt = existing.CreatedAt
		if commit.Summary == nil {
			commit.Summary = existing.Summary
		}
		return r.Update(commit)
	}

	return r.Create(commit)
}

// ListByWork returns all commits for a work entry
func (r *CommitRepository) ListByWork(workID string) ([]*models.Commit, error) {
	query := `
		SELECT id, work_id, commit_sha, url, message, files_changed, comment_count, diff_patch, summary, created_at, updated_at
		FROM commits WHERE work_id = ?
	`

	rows, err := r.db.Query(query, workID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanMany(rows)
}

// ListWithoutSummary returns commits that have no generated summary yet
func (r *CommitRepository) ListWithoutSummary() ([]*models.Commit, error) {
	query := `
		SELECT id, work_id, commit_sha, url, message, files_changed, comment_count, diff_patch, summary, created_at, updated_at
		FROM commits WHERE summary IS NULL OR summary = ''
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanMany(rows)
}

// UpdateSummary stores a generated summary for a commit
func (r *CommitRepository) UpdateSummary(id, summary string) error {
	query := `UPDATE commits SET summary = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.Exec(query, summary, time.Now(), id)
	return err
}

func (r *CommitRepository) scanMany(rows *sql.Rows) ([]*models.Commit, error) {
	var commits []*models.Commit
	for rows.Next() {
		commit := &models.Commit{}
		err := rows.Scan(
			&commit.ID, &commit.WorkID, &commit.CommitSHA, &commit.URL, &commit.Message, &commit.FilesChanged,
			&commit.CommentCount, &commit.DiffPatch, &commit.Summary, &commit.CreatedAt, &commit.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		commits = append(commits, commit)
	}
	return commits, rows.Err()
}
