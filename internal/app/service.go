// Package service provides the analytics service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/growthboard/internal/domain/aggregate"
	"github.com/okian/growthboard/internal/domain/model"
	"github.com/okian/growthboard/internal/domain/period"
	"github.com/okian/growthboard/internal/domain/report"
	"github.com/okian/growthboard/internal/domain/selector"
	"github.com/okian/growthboard/internal/domain/series"
	"github.com/okian/growthboard/pkg/logger"
	"github.com/okian/growthboard/pkg/metrics"
)

const (
	modeSummary = "summary"
	modeChart   = "chart"
)

// Upstream is the set of feeds the service reads.
type Upstream interface {
	FetchRevenueByProfession(ctx context.Context, r model.DateRange, id model.ProfessionID) model.FeedResult
	FetchLegacyDashboard(ctx context.Context, r model.DateRange) model.FeedResult
	FetchSessions(ctx context.Context, r model.DateRange, id model.ProfessionID) model.SessionCount
	FetchProfessionDirectory(ctx context.Context) model.Directory
}

// Service answers analytics queries from the upstream feeds.
type Service struct {
	mu sync.RWMutex

	upstream    Upstream
	coordinator *selector.Coordinator

	dayLabel string

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDayLabel sets the time layout used for daily bucket labels.
func WithDayLabel(layout string) Option {
	return func(s *Service) {
		if layout != "" {
			s.dayLabel = layout
		}
	}
}

// New constructs a Service reading from up.
func New(up Upstream, opts ...Option) *Service {
	s := &Service{
		upstream:    up,
		coordinator: selector.NewCoordinator(up),
		dayLabel:    series.DefaultDayLabel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start marks the service ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.started = true
	s.logger.Info(ctx, "analytics service started", logger.String("dayLabel", s.dayLabel))
	return nil
}

// Stop marks the service stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "analytics service stopped")
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"started":        s.started,
		"dayLabelFormat": s.dayLabel,
		"sources":        []model.Source{model.SourceRevenueByProfession, model.SourceLegacy},
	}
}

// Summary builds the overall and per-profession summary for q.
func (s *Service) Summary(ctx context.Context, q model.Query) (report.Summary, error) {
	start := time.Now()
	p, err := period.Resolve(q.From, q.To, q.ProfessionID)
	if err != nil {
		return report.Summary{}, err
	}
	metrics.RecordAnalyticsRequest(modeSummary, string(p.Granularity))

	var (
		primary  model.FeedResult
		sessions aggregate.Sessions
		dir      model.Directory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		primary = s.upstream.FetchRevenueByProfession(gctx, p.Current, p.ProfessionID)
		return nil
	})
	g.Go(func() error {
		sessions.Current = s.upstream.FetchSessions(gctx, p.Current, p.ProfessionID)
		return nil
	})
	g.Go(func() error {
		sessions.Previous = s.upstream.FetchSessions(gctx, p.Previous, p.ProfessionID)
		return nil
	})
	g.Go(func() error {
		dir = s.upstream.FetchProfessionDirectory(gctx)
		return nil
	})
	_ = g.Wait()

	choice, err := s.choose(ctx, primary, p)
	if err != nil {
		return report.Summary{}, err
	}
	for _, sc := range []model.SessionCount{sessions.Current, sessions.Previous} {
		if !sc.OK && sc.Err != nil {
			s.log().Warn(ctx, "session count unavailable, using zero", logger.Error(sc.Err))
		}
	}

	overall, err := aggregate.Summarize(aggregate.Input{
		Source:       choice.Source,
		Feed:         choice.Feed,
		ProfessionID: p.ProfessionID,
		Directory:    dir,
		Sessions:     sessions,
	})
	if err != nil {
		s.record(err)
		return report.Summary{}, err
	}

	metrics.RecordProfessionsPerResult(len(overall.Professions))
	metrics.RecordAssemblyLatency(modeSummary, float64(time.Since(start).Milliseconds()))
	return report.BuildSummary(p, choice.Source, overall), nil
}

// Chart builds the hourly or daily series for q.
func (s *Service) Chart(ctx context.Context, q model.Query) (report.Chart, error) {
	start := time.Now()
	p, err := period.Resolve(q.From, q.To, q.ProfessionID)
	if err != nil {
		return report.Chart{}, err
	}
	metrics.RecordAnalyticsRequest(modeChart, string(p.Granularity))

	primary := s.upstream.FetchRevenueByProfession(ctx, p.Current, p.ProfessionID)
	choice, err := s.choose(ctx, primary, p)
	if err != nil {
		return report.Chart{}, err
	}

	var rows []model.RawProfessionRow
	switch {
	case q.Filtered():
		row, err := aggregate.Find(choice.Source, choice.Feed, p.ProfessionID)
		if err != nil {
			s.record(err)
			return report.Chart{}, err
		}
		rows = []model.RawProfessionRow{row}
	case choice.Source == model.SourceLegacy:
		rows = []model.RawProfessionRow{*choice.Feed.Aggregate}
	default:
		rows = choice.Feed.Rows
	}

	buckets := series.Build(rows, series.Options{
		Period:   p,
		Metric:   q.Metric,
		Compare:  q.Filtered() || q.Metric != "",
		DayLabel: s.dayLabel,
	})
	metrics.RecordAssemblyLatency(modeChart, float64(time.Since(start).Milliseconds()))
	return report.BuildChart(p, choice.Source, q.Metric, buckets), nil
}

func (s *Service) choose(ctx context.Context, primary model.FeedResult, p period.Period) (selector.Choice, error) {
	choice, err := s.coordinator.Select(ctx, primary, p)
	for _, d := range choice.Diagnostics {
		s.log().Warn(ctx, "source skipped", logger.Error(d))
	}
	if err != nil {
		s.record(err)
		return choice, err
	}
	metrics.RecordSourceSelection(string(choice.Source))
	s.log().Debug(ctx, "source selected",
		logger.String("source", string(choice.Source)),
		logger.String("period", p.Current.String()),
	)
	return choice, nil
}

func (s *Service) record(err error) {
	switch {
	case errors.Is(err, model.ErrNoDataAvailable):
		metrics.RecordNoData()
		metrics.RecordErrorByComponent("service", "no_data")
	case errors.Is(err, model.ErrProfessionNotFound):
		metrics.RecordProfessionNotFound()
		metrics.RecordErrorByComponent("service", "profession_not_found")
	}
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	l := s.logger
	s.mu.RUnlock()
	if l == nil {
		return logger.Get()
	}
	return l
}
