package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chat-demo/internal/domain"
	"chat-demo/internal/usecase"
)

// ErrUnreachable marks transport failures: the endpoint could not be reached
// or did not answer.
var ErrUnreachable = errors.New("client: chat service unreachable")

const connectivityMessage = "Could not reach the chat service. Please check your connection and try again."

// APIError is a non-2xx answer from the chat endpoint.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
	Signature  string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("client: status %d: %s (%s)", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("client: status %d: %s", e.StatusCode, e.Message)
}

// Reply is a successful chat answer.
type Reply struct {
	Response  string
	Signature string
}

// ProcessedAt extracts the processing time from the signature.
func (r Reply) ProcessedAt() (time.Time, error) {
	sig, err := usecase.ParseSignature(r.Signature)
	if err != nil {
		return time.Time{}, err
	}
	return sig.At, nil
}

type Client struct {
	endpoint   string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// New creates a client for the chat endpoint served under baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("client: base URL must not be empty")
	}
	c := &Client{
		endpoint:   chatURL(baseURL),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func chatURL(base string) string {
	if strings.HasSuffix(base, "/api/chat") {
		return base
	}
	return base + "/api/chat"
}

// Send posts one message and returns the bot reply.
func (c *Client) Send(ctx context.Context, message string) (Reply, error) {
	body, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return Reply{}, fmt.Errorf("client: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("client: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return Reply{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return Reply{}, fmt.Errorf("%w: read response: %v", ErrUnreachable, err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		var payload domain.ErrorResponse
		if jsonErr := json.Unmarshal(raw, &payload); jsonErr != nil || payload.Error == "" {
			payload.Error = http.StatusText(res.StatusCode)
		}
		return Reply{}, &APIError{
			StatusCode: res.StatusCode,
			Message:    payload.Error,
			Details:    payload.Details,
			Signature:  payload.BackendSignature,
		}
	}

	var payload domain.ChatResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Reply{}, fmt.Errorf("client: decode response: %w", err)
	}
	return Reply{Response: payload.Response, Signature: payload.BackendSignature}, nil
}

// Format renders a Send result the way the web page shows it.
func Format(reply Reply, err error) string {
	if err == nil {
		if reply.Signature == "" {
			return reply.Response
		}
		return reply.Response + "\n  " + reply.Signature
	}

	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		out := "Error: " + apiErr.Message
		if apiErr.Signature != "" {
			out += "\n  " + apiErr.Signature
		}
		return out
	case errors.Is(err, ErrUnreachable):
		return connectivityMessage
	default:
		return "Error: " + err.Error()
	}
}
