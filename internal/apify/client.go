// Package apify runs the profile-scraping actor and normalizes its output.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/lumina/partnerdesk/internal/config"
	"github.com/lumina/partnerdesk/internal/domain"
	"github.com/lumina/partnerdesk/internal/pkg/httpretry"
)

// Client is the Apify API client.
type Client struct {
	baseURL    string
	token      string
	actorID    string
	httpClient httpretry.HTTPDoer
}

// NewClient creates an Apify client from config.
func NewClient(cfg config.ApifyConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		actorID: cfg.ActorID,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 2),
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing)
func (c *Client) SetHTTPClient(client httpretry.HTTPDoer) {
	c.httpClient = client
}

type actorInput struct {
	Usernames    []string `json:"usernames"`
	ResultsLimit int      `json:"resultsLimit"`
	Platform     string   `json:"platform"`
}

// SimilarProfiles runs the scraping actor synchronously against a seed
// handle and returns normalized profiles found in its dataset.
func (c *Client) SimilarProfiles(ctx context.Context, seed string, platform domain.SocialPlatform, max int) ([]domain.ScrapedProfile, error) {
	input := actorInput{
		Usernames:    []string{strings.TrimPrefix(seed, "@")},
		ResultsLimit: max,
		Platform:     string(platform),
	}
	jsonBody, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal actor input: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/acts/%s/run-sync-get-dataset-items?token=%s",
		c.baseURL, url.PathEscape(c.actorID), url.QueryEscape(c.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("apify API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var records []rawRecord
	if err := json.Unmarshal(respBody, &records); err != nil {
		return nil, fmt.Errorf("failed to parse dataset items: %w", err)
	}

	profiles := normalize(records, platform)
	if len(profiles) > max {
		profiles = profiles[:max]
	}
	return profiles, nil
}
