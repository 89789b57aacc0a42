// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used on the wire.
const DateLayout = "2006-01-02"

// Metric names a measured quantity.
type Metric string

// Known metrics.
const (
	MetricLeads      Metric = "leads"
	MetricPurchases  Metric = "purchases"
	MetricRevenue    Metric = "revenue"
	MetricCPL        Metric = "cpl"
	MetricInvestment Metric = "investment"
	MetricROAS       Metric = "roas"
	MetricSessions   Metric = "sessions"
)

// FeedMetrics are the metrics the upstream feeds actually carry.
var FeedMetrics = []Metric{MetricLeads, MetricPurchases, MetricRevenue} //nolint:gochecknoglobals // read-only lookup

// BucketMetrics are the metrics emitted for every chart bucket, in output order.
var BucketMetrics = []Metric{ //nolint:gochecknoglobals // read-only lookup
	MetricLeads, MetricPurchases, MetricRevenue, MetricCPL, MetricInvestment, MetricROAS,
}

// ParseMetric validates a metric name taken from a request.
func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range BucketMetrics {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown metric %q", ErrInvalidParam, s)
}

// IsMoney reports whether values of m are currency amounts.
func (m Metric) IsMoney() bool { return m == MetricRevenue }

// Granularity is the bucket width of a chart series.
type Granularity string

// Supported granularities.
const (
	Hourly Granularity = "hourly"
	Daily  Granularity = "daily"
)

// Source identifies which upstream feed produced a result.
type Source string

// Known sources.
const (
	SourceRevenueByProfession Source = "revenue_by_profession"
	SourceLegacy              Source = "legacy_api"
)

// DateRange is an inclusive range of calendar days. Both ends are UTC midnight.
type DateRange struct {
	From time.Time
	To   time.Time
}

type dateRangeJSON struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// MarshalJSON renders the range as two YYYY-MM-DD strings.
func (r DateRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(dateRangeJSON{From: r.From.Format(DateLayout), To: r.To.Format(DateLayout)})
}

// String implements fmt.Stringer.
func (r DateRange) String() string {
	return r.From.Format(DateLayout) + ".." + r.To.Format(DateLayout)
}

// MetricPoint is one metric compared across the current and previous periods.
type MetricPoint struct {
	Current      float64 `json:"current"`
	Previous     float64 `json:"previous"`
	Percentage   float64 `json:"percentage"`
	IsIncreasing bool    `json:"is_increasing"`
}

// Growth is a percentage/direction pair supplied by an upstream feed.
type Growth struct {
	Percentage   float64
	IsIncreasing bool
}

// MetricValue is the raw current/previous pair for one metric of one row.
// Growth is set only when the feed reported it.
type MetricValue struct {
	Current  float64
	Previous float64
	Growth   *Growth
}
