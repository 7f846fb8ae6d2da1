package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// Client performs single chat-completion calls against an
// OpenAI-compatible endpoint. Stateless between invocations.
type Client struct {
	cfg Config
	api *openai.Client
}

// Completer is the completion contract consumed by the interpretation
// stages. Satisfied by *Client; tests substitute scripted fakes.
type Completer interface {
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
}

// NewClient constructs a model client.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("llm model is required")
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		envKey := strings.TrimSpace(cfg.APIKeyEnv)
		if envKey == "" {
			envKey = defaultAPIKeyEnv
		}
		apiKey = strings.TrimSpace(os.Getenv(envKey))
	}
	if apiKey == "" {
		return nil, fmt.Errorf("llm api key is required (set api_key or api_key_env)")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	apiCfg := openai.DefaultConfig(apiKey)
	apiCfg.BaseURL = baseURL
	if httpClient != nil {
		apiCfg.HTTPClient = httpClient
	}

	return &Client{
		cfg: Config{
			Model:   model,
			BaseURL: baseURL,
			Timeout: timeout,
		},
		api: openai.NewClientWithConfig(apiCfg),
	}, nil
}

// Complete executes one chat-completion request and returns the raw
// assistant text. The call is bounded by opts.Timeout (or the client
// default) and aborts the underlying request when the deadline passes
// or ctx is cancelled.
func (c *Client) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.cfg.Timeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxOutputTokens,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.api.CreateChatCompletion(callCtx, req)
	if err != nil {
		// A cancelled parent context is the caller's own abort, not an
		// upstream failure.
		if ctx.Err() != nil && errors.Is(err, context.Canceled) {
			return "", ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn().Dur("timeout", timeout).Msg("llm: request timed out")
			return "", &TimeoutError{Timeout: timeout}
		}
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			log.Warn().Int("status", apiErr.HTTPStatusCode).Msg("llm: upstream error")
			return "", &UpstreamError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", &UpstreamError{StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error()}
		}
		return "", &UpstreamError{Body: err.Error()}
	}

	if len(resp.Choices) == 0 {
		return "", &MalformedResponseError{Reason: "response contained no choices"}
	}
	return resp.Choices[0].Message.Content, nil
}

// CompleteStructured performs a completion and parses exactly one JSON
// object out of the model text into T. A response without a conforming
// object fails with MalformedResponseError.
func CompleteStructured[T any](ctx context.Context, c Completer, messages []Message, opts Options) (T, error) {
	var parsed T

	output, err := c.Complete(ctx, messages, opts)
	if err != nil {
		return parsed, err
	}

	raw, err := ExtractJSON(output)
	if err != nil {
		return parsed, &MalformedResponseError{Output: output, Reason: err.Error()}
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return parsed, &MalformedResponseError{Output: output, Reason: fmt.Sprintf("decode object: %v", err)}
	}
	return parsed, nil
}
