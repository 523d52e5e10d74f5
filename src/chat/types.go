// Package chat defines the shared types for conversations with an
// LLM-compatible chat-completion backend.
package chat

import "encoding/json"

// Message roles recognized by the chat-completion wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ModelConfig describes one configured model endpoint. The JSON keys
// match the settings file shape used by the editor extension.
type ModelConfig struct {
	Name         string  `json:"name" validate:"required"`
	APIURL       string  `json:"apiUrl" validate:"required,url"`
	APIToken     string  `json:"apiToken" validate:"required"`
	ModelID      string  `json:"modelId" validate:"required"`
	SystemPrompt string  `json:"systemPrompt"`
	Temperature  float64 `json:"temperature" validate:"gte=0,lte=2"`
}

// CompletionRequest is the body posted to a chat-completions endpoint.
type CompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream,omitempty"`
}

// CompletionResponse is a non-streaming chat-completion response.
type CompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
}

// Choice represents a single completion choice.
type Choice struct {
	Index        int      `json:"index"`
	Message      Message  `json:"message"`
	Delta        *Message `json:"delta,omitempty"` // streaming only
	FinishReason string   `json:"finish_reason,omitempty"`
}

// StreamChunk is one decoded frame of a streaming response.
type StreamChunk struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
}

// DeltaContent returns the incremental text carried by the chunk, or
// "" when the frame has no content delta.
func (c *StreamChunk) DeltaContent() string {
	if len(c.Choices) == 0 || c.Choices[0].Delta == nil {
		return ""
	}
	return c.Choices[0].Delta.Content
}

// ErrorResponse wraps an error body returned by the API.
type ErrorResponse struct {
	Error APIErrorBody `json:"error"`
}

// APIErrorBody is the error payload inside an ErrorResponse.
type APIErrorBody struct {
	Message string          `json:"message"`
	Type    string          `json:"type,omitempty"`
	Code    json.RawMessage `json:"code,omitempty"`
}
