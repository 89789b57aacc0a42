package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/okian/growthboard/internal/adapters/cache"
	"github.com/okian/growthboard/internal/adapters/http/api"
	"github.com/okian/growthboard/internal/domain/model"
	"github.com/okian/growthboard/internal/domain/report"
	"github.com/okian/growthboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// mockDeps records the last query and answers with canned results.
type mockDeps struct {
	mu        sync.Mutex
	err       error
	calls     int
	lastQuery model.Query
}

func (m *mockDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func (m *mockDeps) Summary(_ context.Context, q model.Query) (report.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastQuery = q
	if m.err != nil {
		return report.Summary{}, m.err
	}
	return report.Summary{
		Success: true,
		Data: report.SummaryData{
			OverallLeads:   model.MetricPoint{Current: 12, Previous: 10, Percentage: 20, IsIncreasing: true},
			ProfessionData: []model.ProfessionSummary{},
		},
		Metadata: report.SummaryMetadata{Source: model.SourceRevenueByProfession},
	}, nil
}

func (m *mockDeps) Chart(_ context.Context, q model.Query) (report.Chart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastQuery = q
	if m.err != nil {
		return report.Chart{}, m.err
	}
	return report.Chart{
		Success:   true,
		ChartData: []model.Bucket{{PeriodLabel: "00h", Date: "2025-03-01"}},
		Metadata:  report.ChartMetadata{Granularity: model.Hourly, DataPoints: 1},
	}, nil
}

func serve(h http.Handler, target string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}

func TestServer_Router(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := &mockDeps{}
		r := api.NewServer(deps).Router(context.Background())

		Convey("Then /healthz reports ok", func() {
			w := serve(r, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["status"], ShouldEqual, "ok")
		})

		Convey("Then /stats returns the provider stats", func() {
			w := serve(r, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["started"], ShouldEqual, true)
		})

		Convey("Then /metrics exposes the registry", func() {
			serve(r, "/healthz")
			w := serve(r, "/metrics")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "growthboard_")
		})

		Convey("Then the docs routes are mounted", func() {
			So(serve(r, "/openapi.yaml").Code, ShouldEqual, http.StatusOK)
			So(serve(r, "/api-docs").Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then unknown routes are not found", func() {
			So(serve(r, "/leaderboard").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then a request id is assigned when absent", func() {
			w := serve(r, "/healthz")
			So(w.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)
		})

		Convey("Then a caller request id is echoed", func() {
			w := serve(r, "/healthz", api.RequestIDHeader, "abc-123")
			So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "abc-123")
		})

		Convey("Then CORS preflight is answered", func() {
			req := httptest.NewRequest(http.MethodOptions, "/api/v1/analytics", http.NoBody)
			req.Header.Set("Origin", "https://app.example")
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
		})
	})
}

func TestAnalyticsHandler(t *testing.T) {
	Convey("Given the analytics route", t, func() {
		deps := &mockDeps{}
		r := api.NewServer(deps).Router(context.Background())

		Convey("A summary request reaches Summary", func() {
			w := serve(r, "/api/v1/analytics?from=2025-03-01&to=2025-03-07&profession_id=07")
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode(w)
			So(body["success"], ShouldEqual, true)
			So(body["data"], ShouldNotBeNil)
			So(deps.lastQuery.Chart, ShouldBeFalse)
			So(deps.lastQuery.ProfessionID, ShouldEqual, model.ProfessionID("7"))
		})

		Convey("chart_data=true reaches Chart with the metric", func() {
			w := serve(r, "/api/v1/analytics?from=2025-03-01&chart_data=true&metric=Revenue")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["chart_data"], ShouldHaveLength, 1)
			So(deps.lastQuery.Chart, ShouldBeTrue)
			So(deps.lastQuery.Metric, ShouldEqual, model.MetricRevenue)
			So(deps.lastQuery.To, ShouldEqual, deps.lastQuery.From)
		})

		cases := []struct {
			name   string
			target string
			err    error
			status int
			code   string
		}{
			{"missing from", "/api/v1/analytics", nil, http.StatusBadRequest, "missing_parameter"},
			{"malformed from", "/api/v1/analytics?from=03/01/2025", nil, http.StatusBadRequest, "invalid_parameter"},
			{"malformed to", "/api/v1/analytics?from=2025-03-01&to=tomorrow", nil, http.StatusBadRequest, "invalid_parameter"},
			{"inverted range", "/api/v1/analytics?from=2025-03-07&to=2025-03-01", nil, http.StatusBadRequest, "invalid_range"},
			{"range too long", "/api/v1/analytics?from=1000-01-01&to=2000-01-01", nil, http.StatusBadRequest, "invalid_parameter"},
			{"unknown metric", "/api/v1/analytics?from=2025-03-01&chart_data=true&metric=clicks", nil, http.StatusBadRequest, "invalid_parameter"},
			{"profession not found", "/api/v1/analytics?from=2025-03-01&profession_id=99",
				fmt.Errorf("wrap: %w", model.ErrProfessionNotFound), http.StatusNotFound, "profession_not_found"},
			{"no data", "/api/v1/analytics?from=2025-03-01",
				fmt.Errorf("wrap: %w", model.ErrNoDataAvailable), http.StatusServiceUnavailable, "no_data_available"},
			{"internal", "/api/v1/analytics?from=2025-03-01",
				errors.New("dial tcp 10.0.0.1: secret detail"), http.StatusInternalServerError, "internal_error"},
		}
		for _, tc := range cases {
			Convey("An error for "+tc.name+" maps to its status", func() {
				deps.err = tc.err
				w := serve(r, tc.target)
				So(w.Code, ShouldEqual, tc.status)
				body := decode(w)
				So(body["success"], ShouldEqual, false)
				So(body["code"], ShouldEqual, tc.code)
				So(body["error"], ShouldNotBeEmpty)
				So(body["error"], ShouldNotContainSubstring, "secret")
			})
		}
	})
}

func TestAnalyticsHandler_Cache(t *testing.T) {
	Convey("Given the analytics route with a redis cache", t, func() {
		mr := miniredis.RunT(t)
		store := cache.NewRedisCache(mr.Addr(), cache.WithTTL(time.Minute))
		defer func() { _ = store.Close() }()

		deps := &mockDeps{}
		r := api.NewServer(deps, api.WithCache(store)).Router(context.Background())
		target := "/api/v1/analytics?from=2025-03-01"

		Convey("The first request misses and the second hits", func() {
			first := serve(r, target)
			So(first.Code, ShouldEqual, http.StatusOK)
			So(first.Header().Get(api.CacheHeader), ShouldEqual, "MISS")

			second := serve(r, target)
			So(second.Code, ShouldEqual, http.StatusOK)
			So(second.Header().Get(api.CacheHeader), ShouldEqual, "HIT")
			So(second.Body.String(), ShouldEqual, first.Body.String())
			So(deps.calls, ShouldEqual, 1)
		})

		Convey("Errors are not cached", func() {
			deps.err = model.ErrNoDataAvailable
			So(serve(r, target).Code, ShouldEqual, http.StatusServiceUnavailable)
			deps.err = nil
			So(serve(r, target).Code, ShouldEqual, http.StatusOK)
			So(deps.calls, ShouldEqual, 2)
		})

		Convey("A cache outage falls through to the service", func() {
			mr.Close()
			w := serve(r, target)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.calls, ShouldEqual, 1)
		})
	})
}

func TestParseQuery(t *testing.T) {
	Convey("Given query strings", t, func() {
		parse := func(raw string) (model.Query, error) {
			return api.ParseQuery(httptest.NewRequest(http.MethodGet, "/api/v1/analytics?"+raw, http.NoBody))
		}

		Convey("to defaults to from", func() {
			q, err := parse("from=2025-03-01")
			So(err, ShouldBeNil)
			So(q.To, ShouldEqual, q.From)
		})

		Convey("metric is ignored outside chart mode but still validated", func() {
			q, err := parse("from=2025-03-01&metric=leads")
			So(err, ShouldBeNil)
			So(q.Metric, ShouldEqual, model.Metric(""))

			_, err = parse("from=2025-03-01&metric=nope")
			So(errors.Is(err, model.ErrInvalidParam), ShouldBeTrue)
		})

		Convey("chart_data accepts only true", func() {
			q, _ := parse("from=2025-03-01&chart_data=TRUE")
			So(q.Chart, ShouldBeTrue)
			q, _ = parse("from=2025-03-01&chart_data=1")
			So(q.Chart, ShouldBeFalse)
		})
	})
}
