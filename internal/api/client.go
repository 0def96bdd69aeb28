package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/drstein77/littlelemon/internal/models"
	"go.uber.org/zap"
)

// maxPayload caps the size of the menu document read from the remote endpoint.
const maxPayload = 4 << 20

// Log interface for logging
type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// Client fetches the menu from the remote endpoint.
type Client struct {
	httpClient *http.Client
	menuURL    string
	imageBase  string
	timeout    time.Duration
	log        Log
}

// NewClient creates a Client. A zero timeout leaves the request unbounded.
func NewClient(menuURL, imageBase string, timeout time.Duration, log Log) *Client {
	return &Client{
		httpClient: &http.Client{},
		menuURL:    menuURL,
		imageBase:  strings.TrimRight(imageBase, "/"),
		timeout:    timeout,
		log:        log,
	}
}

// FetchMenu performs a GET on the menu endpoint and decodes the "menu" array.
// Non-2xx statuses and malformed JSON are errors.
func (c *Client) FetchMenu(ctx context.Context) ([]models.MenuItem, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.menuURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("Menu request failed", zap.String("url", c.menuURL), zap.Error(err))
		return nil, fmt.Errorf("failed to request menu: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error("Menu endpoint returned non-success status", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload models.MenuResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPayload)).Decode(&payload); err != nil {
		c.log.Error("Failed to decode menu payload", zap.Error(err))
		return nil, fmt.Errorf("failed to decode menu: %w", err)
	}

	c.log.Info("Menu fetched from remote", zap.Int("count", len(payload.Menu)))
	return payload.Menu, nil
}

// ImageURL resolves an image file name into a display URL. Reachability is not checked.
func (c *Client) ImageURL(image string) string {
	return ImageURL(c.imageBase, image)
}

// ImageURL joins base and image name the way the image host expects.
func ImageURL(base, image string) string {
	return fmt.Sprintf("%s/%s?raw=true", strings.TrimRight(base, "/"), image)
}
