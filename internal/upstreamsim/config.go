// Package upstreamsim serves deterministic fake analytics feeds for local runs
// and integration tests.
package upstreamsim

import "time"

// Config holds configuration for the simulator.
type Config struct {
	Professions int            // Number of professions to serve
	Location    *time.Location // Timezone used for legacy timestamps
	Fail        []string       // Feeds that answer with HTTP 500
	Empty       []string       // Feeds that answer with no data
	Verbose     bool           // Log every request
}

// Feed switch names accepted by Fail and Empty.
const (
	FeedRevenue     = "revenue"
	FeedLegacy      = "legacy"
	FeedSessions    = "sessions"
	FeedProfessions = "professions"
)

// Profession is one simulated profession.
type Profession struct {
	ID     int
	Name   string
	Active bool
	Price  float64
}
