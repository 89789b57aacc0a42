package model

import "time"

// FeedResult is the outcome of one upstream fetch. It is either OK with data
// or not OK with Err set; build it with Fetched, FetchedAggregate or Failed.
type FeedResult struct {
	OK bool
	// Rows holds per-profession rows from the revenue-by-profession feed.
	Rows []RawProfessionRow
	// Totals holds feed-level totals when the feed reports them.
	Totals map[Metric]MetricValue
	// Aggregate is the account-wide row of the legacy feed.
	Aggregate *RawProfessionRow
	Err       error
}

// Fetched builds a successful per-profession result.
func Fetched(rows []RawProfessionRow, totals map[Metric]MetricValue) FeedResult {
	return FeedResult{OK: true, Rows: rows, Totals: totals}
}

// FetchedAggregate builds a successful account-wide result.
func FetchedAggregate(row RawProfessionRow) FeedResult {
	return FeedResult{OK: true, Aggregate: &row}
}

// Failed builds a failed result.
func Failed(err error) FeedResult {
	return FeedResult{Err: err}
}

// Empty reports whether an OK result carries no data.
func (f FeedResult) Empty() bool {
	return len(f.Rows) == 0 && f.Aggregate == nil
}

// SessionCount is the outcome of a session counter fetch.
type SessionCount struct {
	OK    bool
	Count float64
	Err   error
}

// Directory maps profession ids to display names.
type Directory struct {
	OK    bool
	Names map[ProfessionID]string
	Err   error
}

// Name looks up a profession name.
func (d Directory) Name(id ProfessionID) (string, bool) {
	name, ok := d.Names[id]
	return name, ok && name != ""
}

// Query is a validated analytics request.
type Query struct {
	From         time.Time
	To           time.Time
	ProfessionID ProfessionID
	Chart        bool
	Metric       Metric
}

// Filtered reports whether the query targets a single profession.
func (q Query) Filtered() bool { return q.ProfessionID != "" }
