package handlers

import (
	"database/sql"
	"net/http"

	"github.com/alimgiray/whodid/internal/models"
	"github.com/alimgiray/whodid/internal/repositories"
	"github.com/gin-gonic/gin"
)

// WorkView is a repository work entry with its issues and commits attached
type WorkView struct {
	*models.RepositoryWork
	Repository *models.Repository `json:"repository"`
	Issues     []*models.Issue    `json:"issues"`
	Commits    []*models.Commit   `json:"commits"`
}

// ContributorView is a contributor with all nested work entries
type ContributorView struct {
	*models.Contributor
	Works []*WorkView `json:"works"`
}

type ContributorHandler struct {
	contributorRepo *repositories.ContributorRepository
	repositoryRepo  *repositories.RepositoryRepository
	workRepo        *repositories.RepositoryWorkRepository
	issueRepo       *repositories.IssueRepository
	commitRepo      *repositories.CommitRepository
}

func NewContributorHandler(
	contributorRepo *repositories.ContributorRepository,
	repositoryRepo *repositories.RepositoryRepository,
	workRepo *repositories.RepositoryWorkRepository,
	issueRepo *repositories.IssueRepository,
	commitRepo *repositories.CommitRepository,
) *ContributorHandler {
	return &ContributorHandler{
		contributorRepo: contributorRepo,
		repositoryRepo:  repositoryRepo,
		workRepo:        workRepo,
		issueRepo:       issueRepo,
		commitRepo:      commitRepo,
	}
}

// List returns all contributors ordered by username
func (h *ContributorHandler) List(c *gin.Context) {
	contributors, err := h.contributorRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list contributors"})
		return
	}
	c.JSON(http.StatusOK, contributors)
}

// Get returns one contributor with nested works, issues and commits
func (h *ContributorHandler) Get(c *gin.Context) {
	username := c.Param("username")

	contributor, err := h.contributorRepo.GetByUsername(username)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "contributor not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load contributor"})
		return
	}

	view, err := h.buildView(contributor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load contributor activity"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// Data returns the full dataset: all repositories plus all contributors
// with nested activity.
func (h *ContributorHandler) Data(c *gin.Context) {
	repositories, err := h.repositoryRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list repositories"})
		return
	}

	contributors, err := h.contributorRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list contributors"})
		return
	}

	views := make([]*ContributorView, 0, len(contributors))
	for _, contributor := range contributors {
		view, err := h.buildView(contributor)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load contributor activity"})
			return
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{
		"repositories": repositories,
		"contributors": views,
	})
}

func (h *ContributorHandler) buildView(contributor *models.Contributor) (*ContributorView, error) {
	works, err := h.workRepo.ListByContributor(contributor.ID)
	if err != nil {
		return nil, err
	}

	view := &ContributorView{Contributor: contributor, Works: make([]*WorkView, 0, len(works))}
	for _, work := range works {
		issues, err := h.issueRepo.ListByWork(work.ID)
		if err != nil {
			return nil, err
		}
		commits, err := h.commitRepo.ListByWork(work.ID)
		if err != nil {
			return nil, err
		}

		workView := &WorkView{RepositoryWork: work, Issues: issues, Commits: commits}
		if repository, err := h.repositoryRepo.GetByID(work.RepositoryID); err == nil {
			workView.Repository = repository
		}
		view.Works = append(view.Works, workView)
	}
	return view, nil
}
