package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// CredentialStrategy produces the bearer token for one completion call.
type CredentialStrategy interface {
	Token(ctx context.Context) (string, error)
	Name() string
}

// DirectKey authorizes completions with a static API key.
type DirectKey struct {
	Key string
}

func (d DirectKey) Name() string { return "direct" }

func (d DirectKey) Token(context.Context) (string, error) {
	return strings.TrimSpace(d.Key), nil
}

// ExchangedToken trades an authorization key and scope for a short-lived
// access token on every call. Tokens are not cached.
type ExchangedToken struct {
	httpClient *http.Client
	url        string
	key        string
	scope      string
	requestID  func() string
}

func NewExchangedToken(httpClient *http.Client, oauthURL, key, scope string) *ExchangedToken {
	return &ExchangedToken{
		httpClient: httpClient,
		url:        oauthURL,
		key:        strings.TrimSpace(key),
		scope:      scope,
		requestID:  uuid.NewString,
	}
}

func (t *ExchangedToken) Name() string { return "exchange" }

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
}

func (t *ExchangedToken) Token(ctx context.Context) (string, error) {
	form := url.Values{"scope": {t.scope}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, strings.NewReader(form.Encode()))
	if err != nil {
		return "", transportError("token", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("RqUID", t.requestID())
	req.Header.Set("Authorization", "Basic "+t.key)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", transportError("token", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError("token", fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Error("Token exchange rejected", "status", resp.StatusCode)
		return "", providerError("token", resp.StatusCode, body)
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil || tok.AccessToken == "" {
		return "", providerError("token", resp.StatusCode, body)
	}
	return tok.AccessToken, nil
}
