// Package aggregate rolls normalized feed rows up into the overall summary and
// the per-profession summaries.
package aggregate

import (
	"fmt"

	"github.com/okian/growthboard/internal/domain/growth"
	"github.com/okian/growthboard/internal/domain/model"
)

// Sessions carries the session counts of both periods.
type Sessions struct {
	Current  model.SessionCount
	Previous model.SessionCount
}

// Input is everything the engine needs for one request.
type Input struct {
	Source       model.Source
	Feed         model.FeedResult
	ProfessionID model.ProfessionID
	Directory    model.Directory
	Sessions     Sessions
}

// Summarize builds the overall summary. A profession filter scopes every
// headline metric to that profession's row.
func Summarize(in Input) (model.OverallSummary, error) {
	var (
		values      map[model.Metric]model.MetricValue
		professions []model.ProfessionSummary
	)

	switch {
	case in.ProfessionID != "":
		row, err := Find(in.Source, in.Feed, in.ProfessionID)
		if err != nil {
			return model.OverallSummary{}, err
		}
		values = row.Values
		professions = []model.ProfessionSummary{Profession(row, in.Directory)}
	case in.Source == model.SourceLegacy && in.Feed.Aggregate != nil:
		values = in.Feed.Aggregate.Values
		professions = []model.ProfessionSummary{}
	default:
		values = Totals(in.Feed.Rows, in.Feed.Totals)
		professions = make([]model.ProfessionSummary, 0, len(in.Feed.Rows))
		for _, row := range in.Feed.Rows {
			professions = append(professions, Profession(row, in.Directory))
		}
	}

	return model.OverallSummary{
		Leads:       point(model.MetricLeads, values),
		Purchases:   point(model.MetricPurchases, values),
		Revenue:     point(model.MetricRevenue, values),
		CPL:         growth.Zero(),
		Investment:  growth.Zero(),
		ROAS:        growth.Zero(),
		Sessions:    growth.Point(model.MetricSessions, in.Sessions.Current.Count, in.Sessions.Previous.Count, nil),
		Professions: professions,
	}, nil
}

// Find locates the row of one profession. The legacy feed carries no
// profession rows, so a filter against it never matches.
func Find(source model.Source, feed model.FeedResult, id model.ProfessionID) (model.RawProfessionRow, error) {
	if source != model.SourceLegacy {
		for _, row := range feed.Rows {
			if row.ID == id {
				return row, nil
			}
		}
	}
	return model.RawProfessionRow{}, fmt.Errorf("%w: %s", model.ErrProfessionNotFound, id)
}

// Totals sums every row per metric. Feed-level growth pairs are kept when the
// feed reported them; otherwise growth is derived from the sums.
func Totals(rows []model.RawProfessionRow, feedTotals map[model.Metric]model.MetricValue) map[model.Metric]model.MetricValue {
	out := make(map[model.Metric]model.MetricValue, len(model.FeedMetrics))
	for _, m := range model.FeedMetrics {
		var v model.MetricValue
		for _, row := range rows {
			rv := row.Value(m)
			v.Current += rv.Current
			v.Previous += rv.Previous
		}
		if ft, ok := feedTotals[m]; ok && ft.Growth != nil {
			g := *ft.Growth
			v.Growth = &g
		}
		out[m] = v
	}
	return out
}

// Profession maps one row to its summary. Missing names fall back to the directory.
func Profession(row model.RawProfessionRow, dir model.Directory) model.ProfessionSummary {
	name := row.Name
	if name == "" {
		if n, ok := dir.Name(row.ID); ok {
			name = n
		}
	}
	return model.ProfessionSummary{
		ProfessionID:   row.ID,
		ProfessionName: name,
		Leads:          point(model.MetricLeads, row.Values),
		Purchases:      point(model.MetricPurchases, row.Values),
		Revenue:        point(model.MetricRevenue, row.Values),
		CPL:            growth.Zero(),
		Investment:     growth.Zero(),
		ROAS:           growth.Zero(),
		IsActive:       row.Active,
	}
}

// ActiveCount returns how many professions are active.
func ActiveCount(professions []model.ProfessionSummary) int {
	n := 0
	for _, p := range professions {
		if p.IsActive {
			n++
		}
	}
	return n
}

func point(m model.Metric, values map[model.Metric]model.MetricValue) model.MetricPoint {
	v := values[m]
	return growth.Point(m, v.Current, v.Previous, v.Growth)
}
