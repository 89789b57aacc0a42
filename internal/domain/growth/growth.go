// Package growth implements period-over-period growth and the rounding rules
// applied to every reported number.
package growth

import (
	"math"

	"github.com/okian/growthboard/internal/domain/model"
)

const (
	percentPlaces = 1
	moneyPlaces   = 2
)

// Rate returns the signed growth in percent. A zero previous value yields 0.
func Rate(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// Money rounds a currency amount to cents.
func Money(v float64) float64 { return Round(v, moneyPlaces) }

// Value applies the rounding rule of metric m to v.
func Value(m model.Metric, v float64) float64 {
	if m.IsMoney() {
		return Money(v)
	}
	return v
}

// Point builds a MetricPoint for m. A feed-supplied pair wins over the
// computed one and keeps its precision; only computed rates are rounded.
// The percentage is always non-negative.
func Point(m model.Metric, current, previous float64, supplied *model.Growth) model.MetricPoint {
	p := model.MetricPoint{
		Current:  Value(m, current),
		Previous: Value(m, previous),
	}
	if supplied != nil {
		p.Percentage = math.Abs(supplied.Percentage)
		p.IsIncreasing = supplied.IsIncreasing
		return p
	}
	rate := Rate(current, previous)
	p.Percentage = Round(math.Abs(rate), percentPlaces)
	p.IsIncreasing = rate >= 0
	return p
}

// Zero is the placeholder point for metrics no feed provides.
func Zero() model.MetricPoint {
	return model.MetricPoint{IsIncreasing: true}
}
