package ai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/thinkscotty/stylebot/internal/config"
	"github.com/thinkscotty/stylebot/internal/models"
)

// Client is the rewrite entry point. It obtains a credential, builds the
// prompt and issues exactly one completion call.
type Client struct {
	creds             CredentialStrategy
	backend           Backend
	model             string
	maxTokens         int
	repetitionPenalty float64
}

type Options struct {
	Model             string
	MaxTokens         int
	RepetitionPenalty float64
}

func NewClient(creds CredentialStrategy, backend Backend, opts Options) *Client {
	return &Client{
		creds:             creds,
		backend:           backend,
		model:             opts.Model,
		maxTokens:         opts.MaxTokens,
		repetitionPenalty: opts.RepetitionPenalty,
	}
}

// NewClientFromConfig selects the credential strategy and backend named in
// cfg. Both share one HTTP client bounded by cfg's timeout.
func NewClientFromConfig(cfg config.LLMConfig) (*Client, error) {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	httpClient := &http.Client{Timeout: timeout}

	var creds CredentialStrategy
	switch cfg.Auth {
	case "direct", "":
		creds = DirectKey{Key: cfg.APIKey}
	case "exchange":
		creds = NewExchangedToken(httpClient, cfg.OAuthURL, cfg.APIKey, cfg.Scope)
	default:
		return nil, fmt.Errorf("unknown llm.auth %q", cfg.Auth)
	}

	var backend Backend
	switch cfg.API {
	case "chat", "":
		backend = NewChatBackend(httpClient, cfg.BaseURL)
	case "responses":
		backend = NewResponsesBackend(httpClient, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unknown llm.api %q", cfg.API)
	}

	return NewClient(creds, backend, Options{
		Model:             cfg.Model,
		MaxTokens:         cfg.MaxTokens,
		RepetitionPenalty: cfg.RepetitionPenalty,
	}), nil
}

// Name identifies the configured provider shape, e.g. "chat/exchange".
func (c *Client) Name() string  { return c.backend.Name() + "/" + c.creds.Name() }
func (c *Client) Model() string { return c.model }

// CompletionRequest builds the backend request for a rewrite. Equal inputs
// produce equal requests.
func (c *Client) CompletionRequest(r RewriteRequest) CompletionRequest {
	return CompletionRequest{
		Model:             c.model,
		System:            r.SystemInstruction,
		User:              r.Prompt(),
		MaxTokens:         c.maxTokens,
		RepetitionPenalty: c.repetitionPenalty,
	}
}

// Rewrite restyles sourceText after examples. Any failure is a
// *RewriteError and is final; nothing is retried.
func (c *Client) Rewrite(ctx context.Context, examples models.ExampleSet, sourceText string) (string, error) {
	req := c.CompletionRequest(NewRewriteRequest(examples, sourceText))

	start := time.Now()
	slog.Info("Rewrite request starting",
		"provider", c.Name(), "model", c.model,
		"examples", len(examples), "prompt_chars", len(req.User))

	token, err := c.creds.Token(ctx)
	if err != nil {
		slog.Error("Credential exchange failed", "provider", c.Name(), "error", err)
		return "", err
	}

	text, err := c.backend.Complete(ctx, token, req)
	if err != nil {
		slog.Error("Rewrite failed", "provider", c.Name(), "elapsed", time.Since(start), "error", err)
		return "", err
	}

	slog.Info("Rewrite request completed",
		"provider", c.Name(), "elapsed", time.Since(start), "response_chars", len(text))
	return text, nil
}
