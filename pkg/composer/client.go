package composer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SelectionInfo is the measure-range context attached to a stream request.
type SelectionInfo struct {
	StartMeasure int    `json:"start_measure"`
	EndMeasure   int    `json:"end_measure"`
	PartID       string `json:"part_id,omitempty"`
}

// StreamRequest is the body of a streamed composition request.
type StreamRequest struct {
	Message          string         `json:"message"`
	CurrentScore     string         `json:"current_score,omitempty"`
	SelectedMeasures string         `json:"selected_measures,omitempty"`
	SelectionInfo    *SelectionInfo `json:"selection_info,omitempty"`
}

// Client talks to the composition backend.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		// No overall timeout: the stream legitimately runs for minutes.
		// Cancellation comes from the request context.
		HTTP: &http.Client{},
	}
}

// Stream opens the composition event stream. The caller owns the returned
// body and must close it.
func (c *Client) Stream(ctx context.Context, req StreamRequest) (io.ReadCloser, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/api/chat/v1/stream", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("stream request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("stream returned status %d: %s", resp.StatusCode, string(body))
	}

	return resp.Body, nil
}

// Reset clears the server-side conversation state. Callers treat it as
// fire-and-forget; a failure must not block local reset.
func (c *Client) Reset(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/api/chat/v1/reset", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("reset request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reset returned status %d", resp.StatusCode)
	}
	return nil
}
