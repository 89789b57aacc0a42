// Package period resolves a requested date range into the current period,
// the equal-length previous period and the chart granularity.
package period

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/growthboard/internal/domain/model"
)

// MaxDays bounds the length of a requested range, so a single request
// cannot ask for centuries of daily buckets.
const MaxDays = 5*365 + 2

const secondsPerDay = 24 * 60 * 60

// Period is a resolved request window.
type Period struct {
	Current      model.DateRange
	Previous     model.DateRange
	Granularity  model.Granularity
	ProfessionID model.ProfessionID
}

// ParseDate parses a YYYY-MM-DD string into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(model.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", model.ErrInvalidParam, s)
	}
	return t, nil
}

// Day truncates t to its calendar day in t's location, returned as UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Resolve builds a Period. A zero to defaults to from.
func Resolve(from, to time.Time, professionID model.ProfessionID) (Period, error) {
	if from.IsZero() {
		return Period{}, fmt.Errorf("%w: from", model.ErrMissingRequiredParam)
	}
	from = Day(from)
	if to.IsZero() {
		to = from
	}
	to = Day(to)
	if to.Before(from) {
		return Period{}, fmt.Errorf("%w: to %s is before from %s",
			model.ErrInvalidRange, to.Format(model.DateLayout), from.Format(model.DateLayout))
	}

	days := Days(model.DateRange{From: from, To: to})
	if days > MaxDays {
		return Period{}, fmt.Errorf("%w: range of %d days exceeds %d",
			model.ErrInvalidParam, days, MaxDays)
	}
	span := days - 1
	prevTo := from.AddDate(0, 0, -1)
	prevFrom := prevTo.AddDate(0, 0, -span)

	g := model.Daily
	if from.Equal(to) {
		g = model.Hourly
	}
	return Period{
		Current:      model.DateRange{From: from, To: to},
		Previous:     model.DateRange{From: prevFrom, To: prevTo},
		Granularity:  g,
		ProfessionID: professionID,
	}, nil
}

// Days returns the inclusive number of calendar days in r.
func Days(r model.DateRange) int {
	if r.To.Before(r.From) {
		return 0
	}
	// Whole-second arithmetic on UTC midnights; time.Sub saturates past ~292 years.
	return int((Day(r.To).Unix()-Day(r.From).Unix())/secondsPerDay) + 1
}

// Dates lists every day of r in ascending order.
func Dates(r model.DateRange) []time.Time {
	n := Days(r)
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, r.From.AddDate(0, 0, i))
	}
	return out
}
