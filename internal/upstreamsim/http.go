package upstreamsim

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/growthboard/internal/adapters/upstream"
	"github.com/okian/growthboard/pkg/logger"
)

// Server serves the simulated feeds.
type Server struct {
	mu    sync.RWMutex
	cfg   Config
	profs []Profession
	fail  map[string]bool
	empty map[string]bool
	calls map[string]int

	logger logger.Logger
}

// New creates a simulator from cfg.
func New(cfg Config) *Server {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	s := &Server{
		cfg:    cfg,
		profs:  professions(cfg.Professions),
		fail:   map[string]bool{},
		empty:  map[string]bool{},
		calls:  map[string]int{},
		logger: logger.Named("upstreamsim"),
	}
	for _, f := range cfg.Fail {
		s.fail[f] = true
	}
	for _, f := range cfg.Empty {
		s.empty[f] = true
	}
	return s
}

// Professions returns the simulated directory.
func (s *Server) Professions() []Profession {
	return append([]Profession(nil), s.profs...)
}

// SetFailing makes feed answer with HTTP 500.
func (s *Server) SetFailing(feed string, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[feed] = on
}

// SetEmpty makes feed answer with no data.
func (s *Server) SetEmpty(feed string, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.empty[feed] = on
}

// Calls returns how many requests feed has served.
func (s *Server) Calls(feed string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[feed]
}

// Handler returns the router serving every feed on the default paths.
func (s *Server) Handler() http.Handler {
	paths := upstream.DefaultPaths()
	r := chi.NewRouter()
	r.Get(paths.Revenue, s.feed(FeedRevenue, s.revenue))
	r.Get(paths.Legacy, s.feed(FeedLegacy, s.legacy))
	r.Get(paths.Sessions, s.feed(FeedSessions, s.sessions))
	r.Get(paths.Professions, s.feed(FeedProfessions, s.directory))
	return r
}

type feedFunc func(r *http.Request, empty bool) (interface{}, error)

func (s *Server) feed(name string, fn feedFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[name]++
		failing, empty := s.fail[name], s.empty[name]
		s.mu.Unlock()

		if s.cfg.Verbose {
			s.logger.Info(r.Context(), "feed request",
				logger.String("feed", name),
				logger.String("query", r.URL.RawQuery),
			)
		}
		if failing {
			http.Error(w, `{"error":"simulated failure"}`, http.StatusInternalServerError)
			return
		}
		body, err := fn(r, empty)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}
}

func dateParam(r *http.Request, name string) (time.Time, error) {
	t, err := time.Parse(dateLayout, r.URL.Query().Get(name))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return t, nil
}

func rangeParams(r *http.Request) (time.Time, time.Time, error) {
	from, err := dateParam(r, "from")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := dateParam(r, "to")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

// professionID renders odd ids as JSON numbers and even ids as strings, as
// the real feeds mix both.
func professionID(id int) interface{} {
	if id%2 == 1 {
		return id
	}
	return strconv.Itoa(id)
}

func (s *Server) selected(r *http.Request, param string) []Profession {
	raw := strings.TrimSpace(r.URL.Query().Get(param))
	if raw == "" {
		return s.profs
	}
	want := map[string]bool{}
	for _, id := range strings.Split(raw, ",") {
		want[strings.TrimSpace(id)] = true
	}
	var out []Profession
	for _, p := range s.profs {
		if want[strconv.Itoa(p.ID)] {
			out = append(out, p)
		}
	}
	return out
}

type metricBlock struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
}

type periodData struct {
	HourlyData     map[string]map[string]float64 `json:"hourly_data"`
	LeadsByDay     map[string]float64            `json:"leads_by_day"`
	PurchasesByDay map[string]float64            `json:"purchases_by_day"`
	RevenueByDay   map[string]float64            `json:"revenue_by_day"`
}

type periodTotals struct {
	Leads, Purchases, Revenue float64
}

func buildPeriod(p Profession, from, to time.Time) (periodData, periodTotals) {
	pd := periodData{
		HourlyData: map[string]map[string]float64{
			"leads_by_hour":     {},
			"purchases_by_hour": {},
			"revenue_by_hour":   {},
		},
		LeadsByDay:     map[string]float64{},
		PurchasesByDay: map[string]float64{},
		RevenueByDay:   map[string]float64{},
	}
	var t periodTotals
	for _, d := range days(from, to) {
		key := d.Format(dateLayout)
		for h := 0; h < 24; h++ {
			a := Activity(p, d, h)
			hk := fmt.Sprintf("%02d", h)
			pd.HourlyData["leads_by_hour"][hk] += a.Leads
			pd.HourlyData["purchases_by_hour"][hk] += a.Purchases
			pd.HourlyData["revenue_by_hour"][hk] += a.Revenue
			pd.LeadsByDay[key] += a.Leads
			pd.PurchasesByDay[key] += a.Purchases
			pd.RevenueByDay[key] += a.Revenue
			t.Leads += a.Leads
			t.Purchases += a.Purchases
			t.Revenue += a.Revenue
		}
	}
	return pd, t
}

func (s *Server) revenue(r *http.Request, empty bool) (interface{}, error) {
	from, to, err := rangeParams(r)
	if err != nil {
		return nil, err
	}
	prevFrom, prevTo := previousRange(from, to)

	summary := []map[string]interface{}{}
	var cur, prev periodTotals
	if !empty {
		for _, p := range s.selected(r, "profession_ids") {
			cd, ct := buildPeriod(p, from, to)
			pd, pt := buildPeriod(p, prevFrom, prevTo)
			cur.Leads, cur.Purchases, cur.Revenue = cur.Leads+ct.Leads, cur.Purchases+ct.Purchases, cur.Revenue+ct.Revenue
			prev.Leads, prev.Purchases, prev.Revenue = prev.Leads+pt.Leads, prev.Purchases+pt.Purchases, prev.Revenue+pt.Revenue
			summary = append(summary, map[string]interface{}{
				"profession_id":        professionID(p.ID),
				"profession_name":      p.Name,
				"is_active":            p.Active,
				"leads":                metricBlock{ct.Leads, pt.Leads},
				"purchases":            metricBlock{ct.Purchases, pt.Purchases},
				"revenue":              metricBlock{ct.Revenue, pt.Revenue},
				"hourly_data":          cd.HourlyData,
				"leads_by_day":         cd.LeadsByDay,
				"purchases_by_day":     cd.PurchasesByDay,
				"revenue_by_day":       cd.RevenueByDay,
				"previous_period_data": pd,
			})
		}
	}
	return map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"revenue": map[string]interface{}{
				"leads":              metricBlock{cur.Leads, prev.Leads},
				"purchases":          metricBlock{cur.Purchases, prev.Purchases},
				"revenue":            metricBlock{cur.Revenue, prev.Revenue},
				"profession_summary": summary,
			},
		},
	}, nil
}

type legacyItem struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	CreatedAt string  `json:"created_at"`
	Value     float64 `json:"value"`
}

func (s *Server) legacy(r *http.Request, empty bool) (interface{}, error) {
	q := r.URL.Query()
	start, err := time.Parse(time.RFC3339, q.Get("from"))
	if err != nil {
		return nil, fmt.Errorf("invalid from: %w", err)
	}
	end, err := time.Parse(time.RFC3339, q.Get("to"))
	if err != nil {
		return nil, fmt.Errorf("invalid to: %w", err)
	}
	loc := s.cfg.Location
	start, end = start.In(loc), end.In(loc)
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	items := []legacyItem{}
	if empty {
		return map[string]interface{}{"data": items}, nil
	}
	for _, d := range days(from, to) {
		for h := 0; h < 24; h++ {
			var sum Hour
			for _, p := range s.profs {
				a := Activity(p, d, h)
				sum.Leads += a.Leads
				sum.Purchases += a.Purchases
				sum.Revenue += a.Revenue
			}
			at := time.Date(d.Year(), d.Month(), d.Day(), h, legacyMinute, 0, 0, loc).Format(time.RFC3339)
			for _, it := range []legacyItem{
				{Type: "lead", Value: sum.Leads},
				{Type: "client", Value: sum.Purchases},
				{Type: "revenue", Value: sum.Revenue},
			} {
				if it.Value == 0 {
					continue
				}
				it.ID = fmt.Sprintf("%s-%s-%02d", it.Type, d.Format(dateLayout), h)
				it.CreatedAt = at
				items = append(items, it)
			}
		}
		items = append(items, legacyItem{
			ID:        "session-" + d.Format(dateLayout),
			Type:      "session",
			CreatedAt: time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, loc).Format(time.RFC3339),
			Value:     Sessions(0, d),
		})
	}
	return map[string]interface{}{"data": items}, nil
}

func (s *Server) sessions(r *http.Request, empty bool) (interface{}, error) {
	from, to, err := rangeParams(r)
	if err != nil {
		return nil, err
	}
	if empty {
		return map[string]interface{}{"count": 0}, nil
	}
	id, _ := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("profession_id")))
	var n float64
	for _, d := range days(from, to) {
		n += Sessions(id, d)
	}
	return map[string]interface{}{"count": n}, nil
}

func (s *Server) directory(_ *http.Request, empty bool) (interface{}, error) {
	data := []map[string]interface{}{}
	if !empty {
		for _, p := range s.profs {
			data = append(data, map[string]interface{}{
				"profession_id":   professionID(p.ID),
				"profession_name": p.Name,
			})
		}
	}
	return map[string]interface{}{"data": data}, nil
}
