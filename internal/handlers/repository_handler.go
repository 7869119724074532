package handlers

import (
	"net/http"

	"github.com/alimgiray/whodid/internal/repositories"
	"github.com/gin-gonic/gin"
)

type RepositoryHandler struct {
	repositoryRepo *repositories.RepositoryRepository
}

func NewRepositoryHandler(repositoryRepo *repositories.RepositoryRepository) *RepositoryHandler {
	return &RepositoryHandler{repositoryRepo: repositoryRepo}
}

// List returns all repositories ordered by name
func (h *RepositoryHandler) List(c *gin.Context) {
	repos, err := h.repositoryRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list repositories"})
		return
	}
	c.JSON(http.StatusOK, repos)
}
