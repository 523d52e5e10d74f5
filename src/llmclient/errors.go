package llmclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"chatbox/src/chat"
)

// Common error variables
var (
	// ErrStreamClosed indicates the stream has been closed.
	ErrStreamClosed = errors.New("stream closed")

	// ErrIdleTimeout indicates the upstream connection went quiet for
	// longer than the configured idle timeout.
	ErrIdleTimeout = errors.New("stream idle timeout exceeded")

	// ErrEmptyResponse indicates the API returned no choices.
	ErrEmptyResponse = errors.New("empty response from API")
)

// APIError represents a non-2xx response from the chat-completion API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
	RequestID  string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("API error %d (%s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// IsAuthError returns true when the backend rejected the API token.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsRateLimit returns true for rate-limit responses.
func (e *APIError) IsRateLimit() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// parseAPIError builds an APIError from an error response body. An
// unparseable body is kept verbatim as the message.
func parseAPIError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read error response: %w", err)
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    string(body),
		RequestID:  resp.Header.Get("X-Request-ID"),
	}

	var errResp chat.ErrorResponse
	if jsonErr := json.Unmarshal(body, &errResp); jsonErr == nil && errResp.Error.Message != "" {
		apiErr.Type = errResp.Error.Type
		apiErr.Message = errResp.Error.Message
	}
	return apiErr
}
