package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// HoursPerDay is the number of hourly buckets in a day.
const HoursPerDay = 24

// ProfessionID identifies a profession. Upstreams send it as a string or a
// number; the value is always held in normalized form so "7", 7 and "07" compare equal.
type ProfessionID string

// NormalizeProfessionID trims s and renders numeric ids canonically.
func NormalizeProfessionID(s string) ProfessionID {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if allDigits(s) {
		// Integer ids keep every digit; a float round-trip collides past 2^53.
		if t := strings.TrimLeft(s, "0"); t != "" {
			return ProfessionID(t)
		}
		return "0"
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return ProfessionID(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return ProfessionID(s)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// UnmarshalJSON accepts a JSON string, number or null.
func (p *ProfessionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("profession id: %w", err)
		}
		*p = NormalizeProfessionID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("profession id: %w", err)
	}
	*p = NormalizeProfessionID(n.String())
	return nil
}

// String implements fmt.Stringer.
func (p ProfessionID) String() string { return string(p) }

// Breakdown holds per-hour and per-day values of each metric for one period.
// Day keys are YYYY-MM-DD.
type Breakdown struct {
	ByHour map[Metric]*[HoursPerDay]float64
	ByDay  map[Metric]map[string]float64
}

// NewBreakdown returns an empty breakdown ready for writes.
func NewBreakdown() Breakdown {
	return Breakdown{
		ByHour: make(map[Metric]*[HoursPerDay]float64),
		ByDay:  make(map[Metric]map[string]float64),
	}
}

// AddHour adds v to metric m at hour of day h. Out of range hours are ignored.
func (b *Breakdown) AddHour(m Metric, h int, v float64) {
	if h < 0 || h >= HoursPerDay {
		return
	}
	if b.ByHour == nil {
		b.ByHour = make(map[Metric]*[HoursPerDay]float64)
	}
	hours, ok := b.ByHour[m]
	if !ok {
		hours = new([HoursPerDay]float64)
		b.ByHour[m] = hours
	}
	hours[h] += v
}

// AddDay adds v to metric m on day.
func (b *Breakdown) AddDay(m Metric, day string, v float64) {
	if b.ByDay == nil {
		b.ByDay = make(map[Metric]map[string]float64)
	}
	days, ok := b.ByDay[m]
	if !ok {
		days = make(map[string]float64)
		b.ByDay[m] = days
	}
	days[day] += v
}

// Hour returns the value of m at hour h, zero when absent.
func (b Breakdown) Hour(m Metric, h int) float64 {
	hours, ok := b.ByHour[m]
	if !ok || h < 0 || h >= HoursPerDay {
		return 0
	}
	return hours[h]
}

// Day returns the value of m on day, zero when absent.
func (b Breakdown) Day(m Metric, day string) float64 {
	return b.ByDay[m][day]
}

// DayKeys returns the sorted union of day keys across every metric.
func (b Breakdown) DayKeys() []string {
	seen := make(map[string]struct{})
	for _, days := range b.ByDay {
		for d := range days {
			seen[d] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for d := range seen {
		keys = append(keys, d)
	}
	sort.Strings(keys)
	return keys
}

// RawProfessionRow is one normalized upstream row: a profession or, for the
// legacy feed, the whole account.
type RawProfessionRow struct {
	ID       ProfessionID
	Name     string
	Active   bool
	Values   map[Metric]MetricValue
	Current  Breakdown
	Previous Breakdown
}

// Value returns the current/previous pair for m, zero when absent.
func (r RawProfessionRow) Value(m Metric) MetricValue {
	return r.Values[m]
}

// ProfessionSummary is the per-profession block of a summary response.
type ProfessionSummary struct {
	ProfessionID   ProfessionID `json:"profession_id"`
	ProfessionName string       `json:"profession_name"`
	Leads          MetricPoint  `json:"leads"`
	Purchases      MetricPoint  `json:"purchases"`
	Revenue        MetricPoint  `json:"revenue"`
	CPL            MetricPoint  `json:"cpl"`
	Investment     MetricPoint  `json:"investment"`
	ROAS           MetricPoint  `json:"roas"`
	IsActive       bool         `json:"is_active"`
}

// OverallSummary holds the headline metrics and the per-profession list.
type OverallSummary struct {
	Leads       MetricPoint
	Purchases   MetricPoint
	Revenue     MetricPoint
	CPL         MetricPoint
	Investment  MetricPoint
	ROAS        MetricPoint
	Sessions    MetricPoint
	Professions []ProfessionSummary
}

// Bucket is one point of a chart series.
type Bucket struct {
	PeriodLabel     string             `json:"period_label"`
	OrdinalIndex    int                `json:"ordinal_index"`
	Date            string             `json:"date"`
	Hour            *int               `json:"hour,omitempty"`
	Metrics         map[Metric]float64 `json:"metrics"`
	PreviousMetrics map[Metric]float64 `json:"previous_metrics,omitempty"`
}
