// Package upstream calls the analytics feeds and normalizes their responses
// into model types. Transport, status and decoding failures never escape as
// errors; they come back as not-OK results.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/growthboard/internal/domain/model"
	"github.com/okian/growthboard/pkg/logger"
	"github.com/okian/growthboard/pkg/metrics"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 8 << 20
	errBodyPreview = 256
)

// Feed names used in logs and metrics.
const (
	FeedRevenue     = "revenue_by_profession"
	FeedLegacy      = "legacy_dashboard"
	FeedSessions    = "sessions"
	FeedProfessions = "professions"
)

// HTTPDoer is the subset of *http.Client the client needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Paths are the feed endpoints relative to the base URL.
type Paths struct {
	Revenue     string
	Legacy      string
	Sessions    string
	Professions string
}

// DefaultPaths returns the standard feed endpoints.
func DefaultPaths() Paths {
	return Paths{
		Revenue:     "/dashboard/revenue",
		Legacy:      "/dashboard",
		Sessions:    "/session/",
		Professions: "/professions",
	}
}

// Client fetches the upstream feeds.
type Client struct {
	baseURL string
	paths   Paths
	http    HTTPDoer
	timeout time.Duration
	loc     *time.Location
	logger  logger.Logger
}

// NewClient creates a client for the feeds under baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		paths:   DefaultPaths(),
		http:    &http.Client{},
		timeout: defaultTimeout,
		loc:     time.UTC,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Named("upstream")
	}
	return c
}

// getJSON performs a bounded GET and decodes the 2xx body into out.
func (c *Client) getJSON(ctx context.Context, feed, path string, query url.Values, out any) error {
	start := time.Now()
	err := c.doGet(ctx, path, query, out)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		c.logger.Warn(ctx, "upstream call failed",
			logger.String("feed", feed),
			logger.Int("duration_ms", int(time.Since(start).Milliseconds())),
			logger.Error(err),
		)
	}
	metrics.RecordUpstreamCall(feed, outcome, float64(time.Since(start).Milliseconds()))
	if err != nil {
		return fmt.Errorf("%s: %w: %w", feed, model.ErrUpstreamUnavailable, err)
	}
	return nil
}

func (c *Client) doGet(ctx context.Context, path string, query url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: create request: %w", ErrRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrRequest, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		preview := string(body)
		if len(preview) > errBodyPreview {
			preview = preview[:errBodyPreview]
		}
		return fmt.Errorf("%w (status %d): %s", ErrStatus, resp.StatusCode, preview)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}

func dateQuery(r model.DateRange) url.Values {
	q := url.Values{}
	q.Set("from", r.From.Format(model.DateLayout))
	q.Set("to", r.To.Format(model.DateLayout))
	return q
}
