package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

// ResponsesBackend calls the OpenAI Responses API through the official SDK
// and returns the response's output_text.
type ResponsesBackend struct {
	opts []option.RequestOption
}

func NewResponsesBackend(httpClient *http.Client, baseURL string) *ResponsesBackend {
	opts := []option.RequestOption{
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"))
	}
	return &ResponsesBackend{opts: opts}
}

func (r *ResponsesBackend) Name() string { return "responses" }

func newResponsesParams(req CompletionRequest) responses.ResponseNewParams {
	params := responses.ResponseNewParams{
		Model:        shared.ResponsesModel(req.Model),
		Instructions: openai.String(req.System),
		Input:        responses.ResponseNewParamsInputUnion{OfString: openai.String(req.User)},
	}
	if req.MaxTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(req.MaxTokens))
	}
	return params
}

func (r *ResponsesBackend) Complete(ctx context.Context, token string, req CompletionRequest) (string, error) {
	client := openai.NewClient(r.opts...)

	resp, err := client.Responses.New(ctx, newResponsesParams(req), option.WithAPIKey(token))
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", providerError("completion", apiErr.StatusCode, []byte(apiErr.Message))
		}
		return "", transportError("completion", err)
	}

	text := resp.OutputText()
	if text == "" {
		return "", providerError("completion", http.StatusOK, []byte("response has no output_text"))
	}
	return text, nil
}
