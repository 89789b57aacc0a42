// Package series builds time-bucketed chart data with previous-period values
// attached to each bucket.
package series

import (
	"fmt"

	"github.com/okian/growthboard/internal/domain/growth"
	"github.com/okian/growthboard/internal/domain/model"
	"github.com/okian/growthboard/internal/domain/period"
)

// DefaultDayLabel renders daily buckets as DD/MM.
const DefaultDayLabel = "02/01"

// Options controls one series build.
type Options struct {
	Period period.Period
	// Metric narrows previous_metrics to a single metric when set.
	Metric model.Metric
	// Compare attaches previous_metrics to every bucket.
	Compare bool
	// DayLabel is a time layout for daily bucket labels.
	DayLabel string
}

// Build merges rows and emits one bucket per hour (single day) or per
// calendar day of the current period.
func Build(rows []model.RawProfessionRow, opts Options) []model.Bucket {
	cur, prev := Merge(rows)
	if opts.DayLabel == "" {
		opts.DayLabel = DefaultDayLabel
	}
	if opts.Period.Granularity == model.Hourly {
		return hourly(cur, prev, opts)
	}
	return daily(cur, prev, opts)
}

// Merge sums the current and previous breakdowns of every row.
func Merge(rows []model.RawProfessionRow) (model.Breakdown, model.Breakdown) {
	cur, prev := model.NewBreakdown(), model.NewBreakdown()
	for _, row := range rows {
		mergeInto(&cur, row.Current)
		mergeInto(&prev, row.Previous)
	}
	return cur, prev
}

func mergeInto(dst *model.Breakdown, src model.Breakdown) {
	for m, hours := range src.ByHour {
		for h, v := range hours {
			if v != 0 {
				dst.AddHour(m, h, v)
			}
		}
	}
	for m, days := range src.ByDay {
		for d, v := range days {
			dst.AddDay(m, d, v)
		}
	}
}

func hourly(cur, prev model.Breakdown, opts Options) []model.Bucket {
	date := opts.Period.Current.From.Format(model.DateLayout)
	out := make([]model.Bucket, 0, model.HoursPerDay)
	for h := 0; h < model.HoursPerDay; h++ {
		hour := h
		b := model.Bucket{
			PeriodLabel:  fmt.Sprintf("%02dh", h),
			OrdinalIndex: h,
			Date:         date,
			Hour:         &hour,
			Metrics: values(func(m model.Metric) float64 {
				return cur.Hour(m, h)
			}),
		}
		if opts.Compare {
			b.PreviousMetrics = previous(opts.Metric, func(m model.Metric) float64 {
				return prev.Hour(m, h)
			})
		}
		out = append(out, b)
	}
	return out
}

func daily(cur, prev model.Breakdown, opts Options) []model.Bucket {
	days := period.Dates(opts.Period.Current)
	// Previous days are matched by position, not by calendar offset.
	prevKeys := prev.DayKeys()

	out := make([]model.Bucket, 0, len(days))
	for k, d := range days {
		key := d.Format(model.DateLayout)
		b := model.Bucket{
			PeriodLabel:  d.Format(opts.DayLabel),
			OrdinalIndex: k,
			Date:         key,
			Metrics: values(func(m model.Metric) float64 {
				return cur.Day(m, key)
			}),
		}
		if opts.Compare {
			b.PreviousMetrics = previous(opts.Metric, func(m model.Metric) float64 {
				if k >= len(prevKeys) {
					return 0
				}
				return prev.Day(m, prevKeys[k])
			})
		}
		out = append(out, b)
	}

	if n := len(out); n > 0 {
		last := out[n-1]
		if last.Date == opts.Period.Current.To.Format(model.DateLayout) && allZero(last.Metrics) {
			out = out[:n-1]
		}
	}
	return out
}

func values(get func(model.Metric) float64) map[model.Metric]float64 {
	out := make(map[model.Metric]float64, len(model.BucketMetrics))
	for _, m := range model.BucketMetrics {
		out[m] = growth.Value(m, get(m))
	}
	return out
}

func previous(only model.Metric, get func(model.Metric) float64) map[model.Metric]float64 {
	if only != "" {
		return map[model.Metric]float64{only: growth.Value(only, get(only))}
	}
	return values(get)
}

func allZero(metrics map[model.Metric]float64) bool {
	for _, v := range metrics {
		if v != 0 {
			return false
		}
	}
	return true
}
