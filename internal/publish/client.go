package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/tripbot/tripbot/internal/models"
)

// TargetResolver returns the document URL to publish to, read at publish
// time so configuration changes take effect without reconstruction.
type TargetResolver func() string

// Client publishes trip snapshots into a shared document through the
// browser-automation sidecar.
type Client struct {
	baseURL string
	target  TargetResolver
	http    *http.Client
	logger  *logrus.Logger
}

// NewClient creates a publish client against the sidecar base URL
func NewClient(baseURL string, target TargetResolver, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		target:  target,
		http:    &http.Client{},
		logger:  logger,
	}
}

// Publish mirrors the snapshot into the configured document. A missing
// target, transport failure or success=false response all surface as errors
// for the syncer to record.
func (c *Client) Publish(ctx context.Context, snap *models.Snapshot) error {
	docURL := c.target()
	if docURL == "" {
		return fmt.Errorf("no target document configured")
	}

	body, err := json.Marshal(struct {
		DocURL   string           `json:"doc_url"`
		TripData *models.Snapshot `json:"trip_data"`
	}{DocURL: docURL, TripData: snap})
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sync/google-doc", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call publisher: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("publisher returned status %d", resp.StatusCode)
	}

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode publish response: %w", err)
	}
	if !result.Success {
		if result.Error == "" {
			result.Error = "unknown publish error"
		}
		return fmt.Errorf("publish failed: %s", result.Error)
	}

	c.logger.WithField("doc_url", docURL).Debug("Snapshot delivered to document")
	return nil
}
