package jma

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/couchcryptid/quakewatch/internal/domain"
)

// DefaultFeedURL is the JMA list of recent earthquake bulletins.
const DefaultFeedURL = "https://www.jma.go.jp/bosai/quake/data/list.json"

const maxErrorBody = 512

// StatusError is returned for non-2xx feed responses.
type StatusError struct {
	StatusCode int
	Body       string // first 512 bytes
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("jma feed: status %d: %s", e.StatusCode, e.Body)
}

// Client fetches earthquake records from the JMA feed.
type Client struct {
	httpClient *http.Client
	feedURL    string
	reporter   domain.Reporter
}

// Option configures a Client.
type Option func(*Client)

// WithFeedURL overrides the feed endpoint.
func WithFeedURL(u string) Option {
	return func(c *Client) { c.feedURL = u }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a feed client. A zero timeout leaves requests unbounded
// except by the caller's context.
func NewClient(timeout time.Duration, reporter domain.Reporter, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		feedURL:    DefaultFeedURL,
		reporter:   reporter,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchOption narrows a single Fetch call.
type FetchOption func(*fetchOptions)

type fetchOptions struct {
	maxDepthKm *float64
}

// WithMaxDepth keeps only records at most km kilometres deep.
func WithMaxDepth(km float64) FetchOption {
	return func(o *fetchOptions) { o.maxDepthKm = &km }
}

// Fetch retrieves the feed and returns hypocenter/seismic-intensity records in
// feed order. It never fails: transport, status, and decoding errors are
// reported and yield an empty slice. Records with unparseable coordinates are
// dropped after the parser reports them.
func (c *Client) Fetch(ctx context.Context, opts ...FetchOption) []domain.EarthquakeRecord {
	records, err := c.FetchRecords(ctx, opts...)
	if err != nil {
		c.reporter.Report("Failed to fetch or parse earthquake data", "url", c.feedURL, "error", err)
		return []domain.EarthquakeRecord{}
	}
	return records
}

// FetchRecords is Fetch for callers that must tell an unreachable feed from an
// empty one. Transport, status, and decoding errors are returned instead of
// reported; coordinate failures are still reported and dropped.
func (c *Client) FetchRecords(ctx context.Context, opts ...FetchOption) ([]domain.EarthquakeRecord, error) {
	var o fetchOptions
	for _, opt := range opts {
		opt(&o)
	}

	feed, err := c.fetchFeed(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]domain.EarthquakeRecord, 0, len(feed))
	for _, rec := range feed {
		if rec.Kind != domain.HypocenterIntensityKind {
			continue
		}
		triple, ok := domain.ParseCoordinates(rec.Coordinates, c.reporter)
		if !ok {
			continue
		}
		records = append(records, domain.NewEarthquakeRecord(triple, rec))
	}

	if o.maxDepthKm != nil {
		records = domain.FilterByMaxDepth(records, *o.maxDepthKm)
	}
	return records, nil
}

func (c *Client) fetchFeed(ctx context.Context) ([]domain.FeedRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var feed []domain.FeedRecord
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	return feed, nil
}
