package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// FERClient talks to a FER inference sidecar over HTTP. The sidecar accepts
// a base64 image and returns per-face emotion score maps.
type FERClient struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewFERClient creates a classifier backed by the FER sidecar at url.
func NewFERClient(url string, timeout time.Duration, logger *slog.Logger) (*FERClient, error) {
	if url == "" {
		return nil, fmt.Errorf("FER sidecar URL is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FERClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "fer_client"),
	}, nil
}

type ferRequest struct {
	Image string `json:"image"`
}

type ferResponse struct {
	Faces []Face `json:"faces"`
}

// Classify sends the image to the sidecar and returns the detected faces.
func (c *FERClient) Classify(ctx context.Context, imageData []byte, mimeType string) ([]Face, error) {
	if len(imageData) == 0 {
		return nil, fmt.Errorf("image data is required")
	}

	reqBody, err := json.Marshal(ferRequest{Image: base64.StdEncoding.EncodeToString(imageData)})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "FER sidecar request failed", "error", err)
		return nil, fmt.Errorf("failed to reach FER sidecar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.ErrorContext(ctx, "FER sidecar returned non-200 status",
			"status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("FER sidecar returned status %d", resp.StatusCode)
	}

	var parsed ferResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode FER sidecar response: %w", err)
	}

	c.logger.DebugContext(ctx, "FER classification completed",
		"faces", len(parsed.Faces), "duration_ms", time.Since(start).Milliseconds())
	return parsed.Faces, nil
}
