// Package release reads the "latest release" descriptor published by a
// GitHub-style release feed.
package release

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrFeedUnavailable covers every way the feed can fail: transport errors,
// timeouts, non-200 responses and unparsable bodies.
var ErrFeedUnavailable = errors.New("release feed unavailable")

const DefaultTimeout = 15 * time.Second

// Asset is one downloadable file attached to a release.
type Asset struct {
	Name string `json:"name"`
	URL  string `json:"browser_download_url"`
	Size int64  `json:"size,omitempty"`
}

// Release is the subset of the feed payload this program needs. Unknown
// fields are ignored and missing ones stay empty.
type Release struct {
	TagName     string  `json:"tag_name"`
	Name        string  `json:"name,omitempty"`
	PublishedAt string  `json:"published_at,omitempty"`
	Assets      []Asset `json:"assets"`
}

// Asset looks up an asset by exact name.
func (r Release) Asset(name string) (Asset, bool) {
	for _, asset := range r.Assets {
		if asset.Name == name && strings.TrimSpace(asset.URL) != "" {
			return asset, true
		}
	}
	return Asset{}, false
}

// Client fetches the latest release from a fixed feed URL.
type Client struct {
	feedURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a feed client. A nil httpClient gets DefaultTimeout.
func NewClient(feedURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		feedURL:    feedURL,
		userAgent:  "ytf",
		httpClient: httpClient,
	}
}

// Latest returns the newest release. All failures wrap ErrFeedUnavailable.
func (c *Client) Latest(ctx context.Context) (Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return Release{}, fmt.Errorf("%w: build request: %v", ErrFeedUnavailable, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Release{}, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Release{}, fmt.Errorf("%w: HTTP %d", ErrFeedUnavailable, resp.StatusCode)
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return Release{}, fmt.Errorf("%w: parse release: %v", ErrFeedUnavailable, err)
	}
	if strings.TrimSpace(rel.TagName) == "" {
		return Release{}, fmt.Errorf("%w: release has no tag", ErrFeedUnavailable)
	}
	return rel, nil
}
