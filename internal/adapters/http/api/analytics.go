// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okian/growthboard/internal/adapters/cache"
	"github.com/okian/growthboard/internal/domain/model"
	"github.com/okian/growthboard/internal/domain/period"
	"github.com/okian/growthboard/pkg/logger"
)

// CacheHeader reports whether a response came from the cache.
const CacheHeader = "X-Cache"

// AnalyticsHandler handles GET /api/v1/analytics.
type AnalyticsHandler struct {
	deps   Dependencies
	cache  cache.Store
	logger logger.Logger
}

// NewAnalyticsHandler creates the handler. store may be nil.
func NewAnalyticsHandler(deps Dependencies, store cache.Store, l logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{deps: deps, cache: store, logger: l}
}

// HandleAnalytics answers summary requests, or chart requests when
// chart_data=true.
func (h *AnalyticsHandler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	q, err := ParseQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if h.cache != nil {
		if body, err := h.cache.Get(ctx, q); err == nil {
			w.Header().Set(CacheHeader, "HIT")
			writeRaw(w, body)
			return
		}
		w.Header().Set(CacheHeader, "MISS")
	}

	var res any
	if q.Chart {
		res, err = h.deps.Chart(ctx, q)
	} else {
		res, err = h.deps.Summary(ctx, q)
	}
	if err != nil {
		status := writeError(w, err)
		fields := []logger.Field{logger.Int("status", status), logger.Error(err)}
		if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
			h.logger.Error(ctx, "analytics request failed", fields...)
		} else {
			h.logger.Info(ctx, "analytics request rejected", fields...)
		}
		return
	}

	body, err := json.Marshal(res)
	if err != nil {
		writeError(w, fmt.Errorf("encode response: %w", err))
		return
	}
	writeRaw(w, body)

	if h.cache != nil {
		_ = h.cache.Set(ctx, q, body)
	}
	h.logger.Debug(ctx, "analytics request served",
		logger.Bool("chart", q.Chart),
		logger.Int("bytes", len(body)),
		logger.Int("ms", int(time.Since(start).Milliseconds())),
	)
}

// ParseQuery validates the query string into a model.Query.
func ParseQuery(r *http.Request) (model.Query, error) {
	v := r.URL.Query()
	var q model.Query

	from := strings.TrimSpace(v.Get("from"))
	if from == "" {
		return q, fmt.Errorf("%w: from", model.ErrMissingRequiredParam)
	}
	t, err := period.ParseDate(from)
	if err != nil {
		return q, err
	}
	q.From = t

	if to := strings.TrimSpace(v.Get("to")); to != "" {
		if q.To, err = period.ParseDate(to); err != nil {
			return q, err
		}
	}
	if q.To.IsZero() {
		q.To = q.From
	}
	if q.To.Before(q.From) {
		return q, fmt.Errorf("%w: to %s is before from %s", model.ErrInvalidRange, q.To.Format(model.DateLayout), from)
	}
	if days := period.Days(model.DateRange{From: q.From, To: q.To}); days > period.MaxDays {
		return q, fmt.Errorf("%w: range of %d days exceeds %d", model.ErrInvalidParam, days, period.MaxDays)
	}

	q.ProfessionID = model.NormalizeProfessionID(v.Get("profession_id"))
	q.Chart = strings.EqualFold(strings.TrimSpace(v.Get("chart_data")), "true")

	// metric only shapes charts but is validated in both modes.
	if raw := strings.TrimSpace(v.Get("metric")); raw != "" {
		m, err := model.ParseMetric(raw)
		if err != nil {
			return q, err
		}
		if q.Chart {
			q.Metric = m
		}
	}
	return q, nil
}

func writeRaw(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
