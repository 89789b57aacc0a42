package upstream

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/okian/growthboard/internal/domain/model"
)

// number decodes a JSON number, a numeric string or null. Anything that does
// not parse as a number reads as zero.
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*n = 0
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			f = 0
		}
		*n = number(f)
		return nil
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*n = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = number(f)
	return nil
}

// metricWire is a {current, previous, percentage, is_increasing} block.
type metricWire struct {
	Current      number  `json:"current"`
	Previous     number  `json:"previous"`
	Percentage   *number `json:"percentage"`
	IsIncreasing *bool   `json:"is_increasing"`
}

func (w *metricWire) value() model.MetricValue {
	if w == nil {
		return model.MetricValue{}
	}
	v := model.MetricValue{Current: float64(w.Current), Previous: float64(w.Previous)}
	if w.Percentage != nil {
		g := &model.Growth{Percentage: float64(*w.Percentage)}
		if w.IsIncreasing != nil {
			g.IsIncreasing = *w.IsIncreasing
		} else {
			g.IsIncreasing = v.Current >= v.Previous
		}
		v.Growth = g
	}
	return v
}

type hourlyWire struct {
	LeadsByHour     map[string]number `json:"leads_by_hour"`
	PurchasesByHour map[string]number `json:"purchases_by_hour"`
	RevenueByHour   map[string]number `json:"revenue_by_hour"`
}

type periodWire struct {
	HourlyData     hourlyWire        `json:"hourly_data"`
	LeadsByDay     map[string]number `json:"leads_by_day"`
	PurchasesByDay map[string]number `json:"purchases_by_day"`
	RevenueByDay   map[string]number `json:"revenue_by_day"`
}

func (p periodWire) breakdown() model.Breakdown {
	b := model.NewBreakdown()
	hours := map[model.Metric]map[string]number{
		model.MetricLeads:     p.HourlyData.LeadsByHour,
		model.MetricPurchases: p.HourlyData.PurchasesByHour,
		model.MetricRevenue:   p.HourlyData.RevenueByHour,
	}
	for m, byHour := range hours {
		for k, v := range byHour {
			if h, ok := parseHour(k); ok {
				b.AddHour(m, h, float64(v))
			}
		}
	}
	days := map[model.Metric]map[string]number{
		model.MetricLeads:     p.LeadsByDay,
		model.MetricPurchases: p.PurchasesByDay,
		model.MetricRevenue:   p.RevenueByDay,
	}
	for m, byDay := range days {
		for k, v := range byDay {
			if d, ok := parseDayKey(k); ok {
				b.AddDay(m, d, float64(v))
			}
		}
	}
	return b
}

type professionWire struct {
	ProfessionID   model.ProfessionID `json:"profession_id"`
	ProfessionName string             `json:"profession_name"`
	IsActive       *bool              `json:"is_active"`
	Leads          *metricWire        `json:"leads"`
	Purchases      *metricWire        `json:"purchases"`
	Revenue        *metricWire        `json:"revenue"`
	periodWire
	PreviousPeriodData periodWire `json:"previous_period_data"`
}

func (p professionWire) row() model.RawProfessionRow {
	active := true
	if p.IsActive != nil {
		active = *p.IsActive
	}
	return model.RawProfessionRow{
		ID:     p.ProfessionID,
		Name:   strings.TrimSpace(p.ProfessionName),
		Active: active,
		Values: map[model.Metric]model.MetricValue{
			model.MetricLeads:     p.Leads.value(),
			model.MetricPurchases: p.Purchases.value(),
			model.MetricRevenue:   p.Revenue.value(),
		},
		Current:  p.periodWire.breakdown(),
		Previous: p.PreviousPeriodData.breakdown(),
	}
}

type revenuePayload struct {
	Leads             *metricWire      `json:"leads"`
	Purchases         *metricWire      `json:"purchases"`
	Revenue           *metricWire      `json:"revenue"`
	ProfessionSummary []professionWire `json:"profession_summary"`
}

type revenueEnvelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Revenue *revenuePayload `json:"revenue"`
	} `json:"data"`
}

type legacyItem struct {
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
	Value     number `json:"value"`
}

type legacyEnvelope struct {
	Data   []legacyItem      `json:"data"`
	Errors []json.RawMessage `json:"errors"`
}

type sessionEnvelope struct {
	Count   *number           `json:"count"`
	Periods map[string]number `json:"periods"`
}

type directoryEntry struct {
	ProfessionID   model.ProfessionID `json:"profession_id"`
	ProfessionName string             `json:"profession_name"`
}

// directoryEnvelope accepts {"data": [...]} or a bare array.
type directoryEnvelope struct {
	Data []directoryEntry
}

func (d *directoryEnvelope) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &d.Data)
	}
	var wrapped struct {
		Data []directoryEntry `json:"data"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	d.Data = wrapped.Data
	return nil
}

// parseHour accepts "9", "09" and "09h".
func parseHour(k string) (int, bool) {
	k = strings.TrimSuffix(strings.TrimSpace(k), "h")
	h, err := strconv.Atoi(k)
	if err != nil || h < 0 || h >= model.HoursPerDay {
		return 0, false
	}
	return h, true
}

// parseDayKey accepts YYYY-MM-DD or an RFC3339 timestamp and returns YYYY-MM-DD.
func parseDayKey(k string) (string, bool) {
	k = strings.TrimSpace(k)
	if t, err := time.Parse(model.DateLayout, k); err == nil {
		return t.Format(model.DateLayout), true
	}
	if t, err := time.Parse(time.RFC3339, k); err == nil {
		return t.Format(model.DateLayout), true
	}
	return "", false
}
