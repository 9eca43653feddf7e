package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Entry is one indexed piece of text with its metadata
type Entry struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Client talks to the conversation vector-index service (a Chroma-backed
// sidecar). Indexing is best effort: callers log failures and move on, the
// bot works without the index, only the ask command degrades.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logrus.Logger
}

// NewClient creates an index client against the service base URL
func NewClient(baseURL string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		logger:  logger,
	}
}

func (c *Client) post(ctx context.Context, path string, req, out any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("call index %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("index %s returned status %d", path, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode index response: %w", err)
		}
	}
	return nil
}

// Add indexes entries for later semantic retrieval
func (c *Client) Add(ctx context.Context, entries ...Entry) error {
	return c.post(ctx, "/index/add", struct {
		Entries []Entry `json:"entries"`
	}{Entries: entries}, nil)
}

// Query returns up to n entries semantically relevant to the text
func (c *Client) Query(ctx context.Context, text string, n int) ([]Entry, error) {
	var out struct {
		Results []Entry `json:"results"`
	}
	req := struct {
		Text string `json:"text"`
		N    int    `json:"n"`
	}{Text: text, N: n}
	if err := c.post(ctx, "/index/query", req, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Count returns the number of indexed entries
func (c *Client) Count(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.post(ctx, "/index/count", struct{}{}, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// Delete removes entries whose ids start with the given prefix, used when
// an item and its chunks are deleted from the store
func (c *Client) Delete(ctx context.Context, idPrefix string) error {
	return c.post(ctx, "/index/delete", struct {
		IDPrefix string `json:"id_prefix"`
	}{IDPrefix: idPrefix}, nil)
}

// Reset clears the whole index
func (c *Client) Reset(ctx context.Context) error {
	return c.post(ctx, "/index/reset", struct{}{}, nil)
}
