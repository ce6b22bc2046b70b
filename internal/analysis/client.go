package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/julianstephens/bloomlet/internal/models"
)

// Client calls a companion server over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the server at baseURL. A zero timeout
// leaves requests bounded only by ctx.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Health checks connectivity to the server.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health check failed: %d", ErrServiceUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *Client) Analyze(ctx context.Context, content string) (models.Analysis, error) {
	var out models.Analysis
	if err := c.post(ctx, "/api/analyze", AnalyzeRequest{Content: content}, &out); err != nil {
		return models.Analysis{}, err
	}
	if out.Themes == nil {
		out.Themes = []string{}
	}
	if out.Triggers == nil {
		out.Triggers = []string{}
	}
	return out, nil
}

func (c *Client) Chat(ctx context.Context, messages []models.ChatMessage, userName string) (string, error) {
	var out ChatResponse
	if err := c.post(ctx, "/api/chat", ChatRequest{Messages: messages, UserName: userName}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) Prompt(ctx context.Context, recentEntries []string, userName string) (string, error) {
	var out PromptResponse
	if err := c.post(ctx, "/api/prompt", PromptRequest{RecentEntries: recentEntries, UserName: userName}, &out); err != nil {
		return "", err
	}
	return out.Prompt, nil
}

func (c *Client) Insights(ctx context.Context, entries []models.JournalEntry, userName string) (models.Insights, error) {
	var out models.Insights
	if err := c.post(ctx, "/api/insights", InsightsRequest{Entries: entries, UserName: userName}, &out); err != nil {
		return models.Insights{}, err
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s returned %d: %s", ErrServiceUnavailable, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: malformed response from %s: %v", ErrServiceUnavailable, path, err)
	}
	return nil
}

var _ Service = (*Client)(nil)
