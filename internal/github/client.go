package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	apperrors "github.com/nelson-ong-97/trending-repos/internal/errors"
	"github.com/nelson-ong-97/trending-repos/internal/models"
)

// maxCandidates caps how many search results a trending fetch returns.
const maxCandidates = 100

// SearchClient is the fetch contract for the GitHub search API. It is
// implemented by Client and by the caching decorator in cache.go.
type SearchClient interface {
	// Ready reports whether the client is usable (credential present).
	Ready() error
	// Search runs a repository search with the given query, sort and order.
	Search(ctx context.Context, query, sort, order string) (*SearchResponse, error)
}

// Client is a client for the GitHub search API
type Client struct {
	client  *http.Client
	token   string
	baseURL string
	logger  *logrus.Logger
}

// ClientOption allows configuring the GitHub client
type ClientOption func(*Client)

// WithBaseURL overrides the GitHub API base URL (used in tests)
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a new GitHub client with the given token and options
func NewClient(token string, logger *logrus.Logger, opts ...ClientOption) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	httpClient := oauth2.NewClient(context.Background(), ts)
	httpClient.Timeout = 30 * time.Second

	client := &Client{
		client:  httpClient,
		token:   token,
		baseURL: "https://api.github.com",
		logger:  logger,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Ready returns a configuration error when no API token is set. Checked once
// per sync run before any period is processed.
func (c *Client) Ready() error {
	if c.token == "" {
		return apperrors.NewConfigurationError("GITHUB_TOKEN must be set", nil)
	}
	return nil
}

// Search runs a repository search against the GitHub search API. Any
// non-success response is surfaced as a source-unavailable error embedding
// the upstream status and message.
func (c *Client) Search(ctx context.Context, query, sort, order string) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", sort)
	params.Set("order", order)

	searchURL := fmt.Sprintf("%s/search/repositories?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.NewSourceUnavailableError("github search request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewSourceUnavailableError(
			fmt.Sprintf("failed to read github response (status %d)", resp.StatusCode), err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewSourceUnavailableError(
			fmt.Sprintf("github API error (status %d): %s", resp.StatusCode, upstreamMessage(body)), nil)
	}

	var result SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperrors.NewSourceUnavailableError("failed to decode github response", err)
	}

	return &result, nil
}

// TrendingCandidates fetches the trending candidate repositories for a time
// range: repositories pushed within the range's window, sorted by stars
// descending, capped at the top 100.
func (c *Client) TrendingCandidates(ctx context.Context, timeRange models.TimeRange) ([]SearchRepository, error) {
	return fetchTrendingCandidates(ctx, c, timeRange)
}

func fetchTrendingCandidates(ctx context.Context, client SearchClient, timeRange models.TimeRange) ([]SearchRepository, error) {
	since := time.Now().UTC().AddDate(0, 0, -timeRange.Days()).Format("2006-01-02")
	query := fmt.Sprintf("pushed:>=%s", since)

	result, err := client.Search(ctx, query, "stars", "desc")
	if err != nil {
		return nil, err
	}

	items := result.Items
	if len(items) > maxCandidates {
		items = items[:maxCandidates]
	}
	return items, nil
}

// upstreamMessage extracts the error message GitHub returns in its error
// body, falling back to the raw body when it is not the expected shape.
func upstreamMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Errors  []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Message == "" {
		return string(body)
	}
	msg := parsed.Message
	for _, e := range parsed.Errors {
		if e.Message != "" {
			msg += "; " + e.Message
		}
	}
	return msg
}
