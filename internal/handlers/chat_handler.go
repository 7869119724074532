package handlers

import (
	"net/http"

	"github.com/alimgiray/whodid/internal/services"
	"github.com/alimgiray/whodid/pkg/logger"
	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	llm *services.LLMClient
}

func NewChatHandler(llm *services.LLMClient) *ChatHandler {
	return &ChatHandler{llm: llm}
}

type chatRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// Stream streams a model completion for the prompt as plain text chunks
func (h *ChatHandler) Stream(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing 'prompt' in request body"})
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.WriteHeaderNow()

	err := h.llm.Stream(c.Request.Context(), req.Prompt, func(chunk string) {
		c.Writer.WriteString(chunk)
		c.Writer.Flush()
	})
	if err != nil {
		// Headers are already sent, all we can do is log and close
		logger.WithError(err).Error("Chat stream failed")
	}
}
