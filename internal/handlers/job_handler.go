package handlers

import (
	"database/sql"
	"net/http"

	"github.com/alimgiray/whodid/internal/services"
	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobService *services.JobService
}

func NewJobHandler(jobService *services.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

// EnqueueFetch queues a fetch job and returns it
func (h *JobHandler) EnqueueFetch(c *gin.Context) {
	job, err := h.jobService.EnqueueFetch()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue fetch job"})
		return
	}
	c.JSON(http.StatusAccepted, job)
}

// EnqueueSummary queues a summary job and returns it
func (h *JobHandler) EnqueueSummary(c *gin.Context) {
	job, err := h.jobService.EnqueueSummary()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue summary job"})
		return
	}
	c.JSON(http.StatusAccepted, job)
}

// Get returns a job's current status
func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.jobService.GetJob(c.Param("id"))
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job"})
		return
	}
	c.JSON(http.StatusOK, job)
}
