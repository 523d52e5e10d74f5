// Package llmclient implements the HTTP client and stream decoder for
// OpenAI-compatible chat-completion endpoints.
package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"chatbox/src/chat"
)

// Config holds options for creating a Client.
type Config struct {
	// HTTPClient overrides the default transport. The default client
	// carries no overall timeout: a streaming response is open-ended
	// by nature and is bounded by IdleTimeout instead.
	HTTPClient *http.Client

	// IdleTimeout closes a streaming connection when no bytes arrive
	// for this long. Zero disables the watchdog.
	IdleTimeout time.Duration

	Logger *slog.Logger
}

// Client talks to chat-completion endpoints. The endpoint URL and
// credentials come from the per-request ModelConfig, not the client:
// one client serves every configured model.
type Client struct {
	httpClient  *http.Client
	idleTimeout time.Duration
	logger      *slog.Logger
}

// NewClient creates a new chat-completion client.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient:  httpClient,
		idleTimeout: cfg.IdleTimeout,
		logger:      logger.With("component", "llm_client"),
	}
}

// CreateChatCompletionStream opens a streaming exchange against the
// model's endpoint. The caller owns the returned Stream and must
// close it.
func (c *Client) CreateChatCompletionStream(ctx context.Context, model chat.ModelConfig, messages []chat.Message) (*Stream, error) {
	req := &chat.CompletionRequest{
		Model:       model.ModelID,
		Messages:    messages,
		Temperature: model.Temperature,
		Stream:      true,
	}

	resp, err := c.post(ctx, model, req)
	if err != nil {
		return nil, err
	}

	return newStream(resp.Body, NewDecoder(c.logger), c.idleTimeout), nil
}

// CreateChatCompletion performs a non-streaming exchange and returns
// the assistant text.
func (c *Client) CreateChatCompletion(ctx context.Context, model chat.ModelConfig, messages []chat.Message) (string, error) {
	req := &chat.CompletionRequest{
		Model:       model.ModelID,
		Messages:    messages,
		Temperature: model.Temperature,
	}

	resp, err := c.post(ctx, model, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result chat.CompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return result.Choices[0].Message.Content, nil
}

func (c *Client) post(ctx context.Context, model chat.ModelConfig, req *chat.CompletionRequest) (*http.Response, error) {
	logger := c.logger.With("model", model.ModelID, "url", model.APIURL)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, model.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+model.APIToken)
	httpReq.Header.Set("Content-Type", "application/json")

	logger.Debug("sending chat completion request", "messages", len(req.Messages), "stream", req.Stream)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Error("request failed", "error", err)
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logger.Error("received error response", "status_code", resp.StatusCode)
		defer resp.Body.Close()
		return nil, parseAPIError(resp)
	}
	return resp, nil
}
