package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// CannotSummarize is the sentinel the model returns when the input lacks
// enough detail. Callers treat it as "no summary produced", not as an error.
const CannotSummarize = "Cannot summarize"

const llmTimeout = 120 * time.Second

// LLMClient calls an OpenAI-compatible chat completions endpoint
type LLMClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

func NewLLMClient(baseURL, apiKey, model string) *LLMClient {
	return &LLMClient{
		httpClient: &http.Client{Timeout: llmTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	N           int           `json:"n,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Complete generates a completion for the given prompts. The second return
// value is false when the model produced nothing usable, including the
// "Cannot summarize" sentinel.
func (c *LLMClient) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, bool, error) {
	request := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
		N:           1,
	}

	resp, err := c.post(ctx, request)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()

	var response chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", false, fmt.Errorf("decoding completion response: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", false, fmt.Errorf("no choices in completion response")
	}

	generated := strings.TrimSpace(response.Choices[0].Message.Content)
	if generated == "" || strings.Contains(strings.ToLower(generated), strings.ToLower(CannotSummarize)) {
		return "", false, nil
	}
	return generated, true, nil
}

// Stream generates a streamed completion for the prompt and passes each
// content chunk to fn as it arrives.
func (c *LLMClient) Stream(ctx context.Context, prompt string, fn func(chunk string)) error {
	request := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.7,
		MaxTokens:   1024,
		Stream:      true,
	}

	resp, err := c.post(ctx, request)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}

		var chunk chatResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			fn(chunk.Choices[0].Delta.Content)
		}
	}
	return scanner.Err()
}

func (c *LLMClient) post(ctx context.Context, request chatRequest) (*http.Response, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("encoding completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("completion endpoint returned status %d", resp.StatusCode)
	}
	return resp, nil
}
