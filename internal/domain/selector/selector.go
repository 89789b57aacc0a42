// Package selector decides which upstream feed answers a request, falling
// back from the per-profession feed to the legacy combined feed.
package selector

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/okian/growthboard/internal/domain/model"
	"github.com/okian/growthboard/internal/domain/period"
)

// Choice is the outcome of source selection.
type Choice struct {
	Source model.Source
	Feed   model.FeedResult
	// Diagnostics collects failures of feeds that were tried and skipped.
	Diagnostics []error
}

// ChooseSource picks the per-profession feed when it returned rows, otherwise
// the legacy feed when it has any non-zero current value.
func ChooseSource(primary, legacy model.FeedResult) (Choice, error) {
	if Usable(primary) {
		return Choice{Source: model.SourceRevenueByProfession, Feed: primary}, nil
	}

	var diags []error
	if !primary.OK {
		diags = append(diags, fmt.Errorf("%s: %w", model.SourceRevenueByProfession, primary.Err))
	}
	if !legacy.OK {
		if legacy.Err != nil {
			diags = append(diags, fmt.Errorf("%s: %w", model.SourceLegacy, legacy.Err))
		}
		return Choice{Diagnostics: diags}, fmt.Errorf("%w: every source failed or was empty", model.ErrNoDataAvailable)
	}
	if legacy.Aggregate == nil || zeroCurrent(*legacy.Aggregate) {
		return Choice{Diagnostics: diags}, fmt.Errorf("%w: legacy feed is empty", model.ErrNoDataAvailable)
	}
	return Choice{Source: model.SourceLegacy, Feed: legacy, Diagnostics: diags}, nil
}

// Usable reports whether a per-profession result can answer on its own.
func Usable(f model.FeedResult) bool {
	return f.OK && len(f.Rows) > 0
}

func zeroCurrent(row model.RawProfessionRow) bool {
	for _, m := range model.FeedMetrics {
		if row.Value(m).Current != 0 {
			return false
		}
	}
	return true
}

// LegacySource fetches the legacy combined feed for one range.
type LegacySource interface {
	FetchLegacyDashboard(ctx context.Context, r model.DateRange) model.FeedResult
}

// Coordinator runs the staged fetch. The legacy feed is only called when the
// per-profession result is unusable.
type Coordinator struct {
	legacy LegacySource
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(legacy LegacySource) *Coordinator {
	return &Coordinator{legacy: legacy}
}

// Select chooses the source for p given an already fetched primary result.
func (c *Coordinator) Select(ctx context.Context, primary model.FeedResult, p period.Period) (Choice, error) {
	if Usable(primary) || c.legacy == nil {
		return ChooseSource(primary, model.Failed(fmt.Errorf("%w: legacy feed not configured", model.ErrUpstreamUnavailable)))
	}

	var cur, prev model.FeedResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cur = c.legacy.FetchLegacyDashboard(gctx, p.Current)
		return nil
	})
	g.Go(func() error {
		prev = c.legacy.FetchLegacyDashboard(gctx, p.Previous)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return Choice{}, fmt.Errorf("select source: %w", err)
	}

	legacy, diag := CombineLegacy(cur, prev)
	choice, err := ChooseSource(primary, legacy)
	if diag != nil {
		choice.Diagnostics = append(choice.Diagnostics, diag)
	}
	return choice, err
}

// CombineLegacy folds two single-range legacy results into one row holding
// current and previous values. A failed previous range degrades to zeros and
// is reported as a diagnostic.
func CombineLegacy(cur, prev model.FeedResult) (model.FeedResult, error) {
	if !cur.OK || cur.Aggregate == nil {
		if cur.Err == nil {
			return model.Failed(fmt.Errorf("%w: legacy feed returned no data", model.ErrUpstreamUnavailable)), nil
		}
		return cur, nil
	}

	row := *cur.Aggregate
	row.Values = make(map[model.Metric]model.MetricValue, len(model.FeedMetrics))
	for _, m := range model.FeedMetrics {
		row.Values[m] = model.MetricValue{Current: cur.Aggregate.Value(m).Current}
	}
	row.Previous = model.NewBreakdown()

	var diag error
	switch {
	case prev.OK && prev.Aggregate != nil:
		for _, m := range model.FeedMetrics {
			v := row.Values[m]
			v.Previous = prev.Aggregate.Value(m).Current
			row.Values[m] = v
		}
		row.Previous = prev.Aggregate.Current
	case prev.Err != nil:
		diag = fmt.Errorf("%s previous period: %w", model.SourceLegacy, prev.Err)
	}
	return model.FetchedAggregate(row), diag
}
