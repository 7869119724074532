package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alimgiray/whodid/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newChatRouter(llmBaseURL string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewChatHandler(services.NewLLMClient(llmBaseURL, "secret", "test-model"))
	router.POST("/api/chat", handler.Stream)
	return router
}

func TestChatStreamsCompletion(t *testing.T) {
	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"Hi\"}}]}\n\n"))
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\" there\"}}]}\n\n"))
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer llm.Close()

	router := newChatRouter(llm.URL)

	req, _ := http.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"prompt":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hi there", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}

func TestChatRejectsMissingPrompt(t *testing.T) {
	router := newChatRouter("http://unused.invalid")

	req, _ := http.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
