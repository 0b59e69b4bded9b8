// Package exchange is the conversational controller's client for the
// assistant backend API: one call per user utterance, one per proposal
// confirmation, one per synthesized utterance. Failures map onto two
// conditions: ErrUnauthenticated (no token; hard precondition, never
// retried) and ErrRemote (transport, status, or body failures).
package exchange

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

	"github.com/pranavmanoj1/productivityai/internal/types"
)

var (
	ErrUnauthenticated = errors.New("exchange: not authenticated")
	ErrRemote          = errors.New("exchange: backend request failed")
)

// Client talks to the assistant backend over HTTPS with a bearer token.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
}

// NewClient constructs a client for the backend at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		BaseURL:    strings.TrimRight(baseURL, "/"),
	}
}

type aiRequest struct {
	Message string `json:"message"`
}

type confirmRequest struct {
	TasksToConfirm []types.Task `json:"tasksToConfirm"`
}

type ttsRequest struct {
	Text string `json:"text"`
}

// Send posts one user message to /api/ai-response and decodes the
// structured reply.
func (c *Client) Send(ctx context.Context, message, token string) (*types.AIResponse, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	body, err := c.post(ctx, "/api/ai-response", token, aiRequest{Message: message})
	if err != nil {
		return nil, err
	}
	var reply types.AIResponse
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("%w: malformed reply: %v", ErrRemote, err)
	}
	return &reply, nil
}

// Confirm posts the full proposal batch to /api/confirm-tasks in a single
// request.
func (c *Client) Confirm(ctx context.Context, token string, tasks []types.Task) (*types.ConfirmResult, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	body, err := c.post(ctx, "/api/confirm-tasks", token, confirmRequest{TasksToConfirm: tasks})
	if err != nil {
		return nil, err
	}
	var res types.ConfirmResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("%w: malformed reply: %v", ErrRemote, err)
	}
	return &res, nil
}

// Synthesize fetches one MP3 clip from /api/tts.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return c.post(ctx, "/api/tts", "", ttsRequest{Text: text})
}

func (c *Client) post(ctx context.Context, path, token string, payload interface{}) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrRemote, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemote, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemote, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrRemote, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s status=%d body=%s", ErrRemote, path, resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
