package upstream

import (
	"time"

	"github.com/okian/growthboard/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPDoer replaces the HTTP transport, mostly for tests.
func WithHTTPDoer(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithTimeout bounds every upstream call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithPaths overrides the feed paths. Empty values keep the defaults.
func WithPaths(p Paths) Option {
	return func(c *Client) {
		if p.Revenue != "" {
			c.paths.Revenue = p.Revenue
		}
		if p.Legacy != "" {
			c.paths.Legacy = p.Legacy
		}
		if p.Sessions != "" {
			c.paths.Sessions = p.Sessions
		}
		if p.Professions != "" {
			c.paths.Professions = p.Professions
		}
	}
}

// WithLocation sets the timezone used to bucket legacy timestamps.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
