package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.lyrics.ovh/v1"

var ErrNotFound = errors.New("lyrics not found")

// Client looks up lyrics by author and title. Lookups are best-effort; the
// playback core degrades failures to a placeholder.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a lyrics client against the default API.
func New() *Client {
	return &Client{
		baseURL: defaultBaseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewWithBaseURL creates a client against a custom endpoint, used in tests.
func NewWithBaseURL(baseURL string) *Client {
	c := New()
	c.baseURL = baseURL
	return c
}

// Lyrics fetches lyrics for the given author and title.
func (c *Client) Lyrics(ctx context.Context, author, title string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/%s",
		c.baseURL, url.PathEscape(author), url.PathEscape(title))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("lyrics http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Lyrics string `json:"lyrics"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if parsed.Lyrics == "" {
		return "", ErrNotFound
	}
	return parsed.Lyrics, nil
}
