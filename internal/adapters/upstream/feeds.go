package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/okian/growthboard/internal/domain/model"
	"github.com/okian/growthboard/pkg/logger"
)

// FetchRevenueByProfession fetches per-profession rows for r. The feed
// computes its own previous period.
func (c *Client) FetchRevenueByProfession(ctx context.Context, r model.DateRange, id model.ProfessionID) model.FeedResult {
	q := dateQuery(r)
	if id != "" {
		q.Set("profession_ids", id.String())
	}

	var env revenueEnvelope
	if err := c.getJSON(ctx, FeedRevenue, c.paths.Revenue, q, &env); err != nil {
		return model.Failed(err)
	}
	if env.Success != nil && !*env.Success {
		msg := env.Error
		if msg == "" {
			msg = "success=false"
		}
		return model.Failed(fmt.Errorf("%s: %w: %w: %s", FeedRevenue, model.ErrUpstreamUnavailable, ErrRejected, msg))
	}
	payload := env.Data.Revenue
	if payload == nil {
		return model.Fetched(nil, nil)
	}

	rows := make([]model.RawProfessionRow, 0, len(payload.ProfessionSummary))
	for _, p := range payload.ProfessionSummary {
		rows = append(rows, p.row())
	}
	totals := make(map[model.Metric]model.MetricValue, len(model.FeedMetrics))
	for m, w := range map[model.Metric]*metricWire{
		model.MetricLeads:     payload.Leads,
		model.MetricPurchases: payload.Purchases,
		model.MetricRevenue:   payload.Revenue,
	} {
		if w != nil {
			totals[m] = w.value()
		}
	}
	return model.Fetched(rows, totals)
}

// FetchLegacyDashboard fetches the legacy combined feed for one range and
// folds its items into a single account-wide row. Only the current side of
// the row is filled.
func (c *Client) FetchLegacyDashboard(ctx context.Context, r model.DateRange) model.FeedResult {
	start := time.Date(r.From.Year(), r.From.Month(), r.From.Day(), 0, 0, 0, 0, c.loc)
	end := time.Date(r.To.Year(), r.To.Month(), r.To.Day(), 23, 59, 59, 999_000_000, c.loc)
	q := url.Values{}
	q.Set("from", start.Format(time.RFC3339))
	q.Set("to", end.Format(time.RFC3339))

	var env legacyEnvelope
	if err := c.getJSON(ctx, FeedLegacy, c.paths.Legacy, q, &env); err != nil {
		return model.Failed(err)
	}
	if len(env.Errors) > 0 {
		c.logger.Warn(ctx, "legacy feed reported partial errors", logger.Int("errors", len(env.Errors)))
	}

	row := model.RawProfessionRow{
		Active:   true,
		Values:   make(map[model.Metric]model.MetricValue, len(model.FeedMetrics)),
		Current:  model.NewBreakdown(),
		Previous: model.NewBreakdown(),
	}
	for _, item := range env.Data {
		m, ok := legacyMetric(item.Type)
		if !ok {
			continue
		}
		at, err := time.Parse(time.RFC3339, strings.TrimSpace(item.CreatedAt))
		if err != nil {
			continue
		}
		at = at.In(c.loc)
		day := at.Format(model.DateLayout)
		if day < r.From.Format(model.DateLayout) || day > r.To.Format(model.DateLayout) {
			continue
		}
		v := float64(item.Value)

		mv := row.Values[m]
		mv.Current += v
		row.Values[m] = mv
		row.Current.AddHour(m, at.Hour(), v)
		row.Current.AddDay(m, day, v)
	}
	return model.FetchedAggregate(row)
}

func legacyMetric(kind string) (model.Metric, bool) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "lead", "leads":
		return model.MetricLeads, true
	case "client", "clients", "purchase", "purchases":
		return model.MetricPurchases, true
	case "revenue":
		return model.MetricRevenue, true
	default:
		return "", false
	}
}

// FetchSessions returns the session count for r.
func (c *Client) FetchSessions(ctx context.Context, r model.DateRange, id model.ProfessionID) model.SessionCount {
	q := dateQuery(r)
	q.Set("count_only", "true")
	if id != "" {
		q.Set("profession_id", id.String())
	}

	var env sessionEnvelope
	if err := c.getJSON(ctx, FeedSessions, c.paths.Sessions, q, &env); err != nil {
		return model.SessionCount{Err: err}
	}
	if env.Count != nil {
		return model.SessionCount{OK: true, Count: float64(*env.Count)}
	}
	var total float64
	for _, n := range env.Periods {
		total += float64(n)
	}
	return model.SessionCount{OK: true, Count: total}
}

// FetchProfessionDirectory returns the id to name mapping of every profession.
func (c *Client) FetchProfessionDirectory(ctx context.Context) model.Directory {
	var env directoryEnvelope
	if err := c.getJSON(ctx, FeedProfessions, c.paths.Professions, nil, &env); err != nil {
		return model.Directory{Err: err}
	}
	names := make(map[model.ProfessionID]string, len(env.Data))
	for _, e := range env.Data {
		if e.ProfessionID == "" {
			continue
		}
		names[e.ProfessionID] = strings.TrimSpace(e.ProfessionName)
	}
	return model.Directory{OK: true, Names: names}
}
