package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// OpenAI-compatible chat completion types (unexported).

type chatRequest struct {
	Model             string        `json:"model"`
	Messages          []chatMessage `json:"messages"`
	Stream            bool          `json:"stream"`
	RepetitionPenalty float64       `json:"repetition_penalty,omitempty"`
	MaxTokens         int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
	Model   string       `json:"model"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatBackend calls POST {baseURL}/chat/completions.
type ChatBackend struct {
	httpClient *http.Client
	baseURL    string
}

func NewChatBackend(httpClient *http.Client, baseURL string) *ChatBackend {
	return &ChatBackend{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

func (c *ChatBackend) Name() string { return "chat" }

func newChatRequest(req CompletionRequest) chatRequest {
	return chatRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Stream:            false,
		RepetitionPenalty: req.RepetitionPenalty,
		MaxTokens:         req.MaxTokens,
	}
}

func (c *ChatBackend) Complete(ctx context.Context, token string, req CompletionRequest) (string, error) {
	jsonData, err := json.Marshal(newChatRequest(req))
	if err != nil {
		return "", transportError("completion", fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", transportError("completion", fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		slog.Error("Completion request failed", "model", req.Model, "elapsed", time.Since(start), "error", err)
		return "", transportError("completion", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError("completion", fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("Completion API error", "status", resp.StatusCode, "model", req.Model)
		return "", providerError("completion", resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", providerError("completion", resp.StatusCode, respBody)
	}
	if len(chatResp.Choices) == 0 {
		return "", providerError("completion", resp.StatusCode, respBody)
	}

	tokensUsed := 0
	if chatResp.Usage != nil {
		tokensUsed = chatResp.Usage.TotalTokens
	}
	content := chatResp.Choices[0].Message.Content
	slog.Debug("Completion finished", "model", req.Model, "elapsed", time.Since(start), "tokens", tokensUsed, "response_chars", len(content))
	return content, nil
}
