// Package report assembles the summary and chart responses returned by the API.
package report

import (
	"github.com/okian/growthboard/internal/domain/aggregate"
	"github.com/okian/growthboard/internal/domain/model"
	"github.com/okian/growthboard/internal/domain/period"
)

// SummaryData is the data block of a summary response.
type SummaryData struct {
	OverallLeads      model.MetricPoint         `json:"overall_leads"`
	OverallPurchases  model.MetricPoint         `json:"overall_purchases"`
	OverallCPL        model.MetricPoint         `json:"overall_cpl"`
	OverallInvestment model.MetricPoint         `json:"overall_investment"`
	OverallRevenue    model.MetricPoint         `json:"overall_revenue"`
	OverallROAS       model.MetricPoint         `json:"overall_roas"`
	OverallSessions   model.MetricPoint         `json:"overall_sessions"`
	ProfessionData    []model.ProfessionSummary `json:"profession_data"`
}

// SummaryMetadata describes how a summary was produced.
type SummaryMetadata struct {
	Period            model.DateRange    `json:"period"`
	PreviousPeriod    model.DateRange    `json:"previous_period"`
	ProfessionID      model.ProfessionID `json:"profession_id,omitempty"`
	ProfessionName    string             `json:"profession_name,omitempty"`
	Source            model.Source       `json:"source"`
	TotalProfessions  int                `json:"total_professions"`
	ActiveProfessions int                `json:"active_professions"`
}

// Summary is the summary-mode response.
type Summary struct {
	Success  bool            `json:"success"`
	Data     SummaryData     `json:"data"`
	Metadata SummaryMetadata `json:"metadata"`
}

// ChartMetadata describes a chart series.
type ChartMetadata struct {
	Period         model.DateRange    `json:"period"`
	PreviousPeriod model.DateRange    `json:"previous_period"`
	ProfessionID   model.ProfessionID `json:"profession_id,omitempty"`
	Metric         model.Metric       `json:"metric,omitempty"`
	Granularity    model.Granularity  `json:"granularity"`
	Source         model.Source       `json:"source"`
	DataPoints     int                `json:"data_points"`
}

// Chart is the chart-mode response.
type Chart struct {
	Success   bool           `json:"success"`
	ChartData []model.Bucket `json:"chart_data"`
	Metadata  ChartMetadata  `json:"metadata"`
}

// BuildSummary packages an overall summary.
func BuildSummary(p period.Period, source model.Source, s model.OverallSummary) Summary {
	professions := s.Professions
	if professions == nil {
		professions = []model.ProfessionSummary{}
	}
	meta := SummaryMetadata{
		Period:            p.Current,
		PreviousPeriod:    p.Previous,
		ProfessionID:      p.ProfessionID,
		Source:            source,
		TotalProfessions:  len(professions),
		ActiveProfessions: aggregate.ActiveCount(professions),
	}
	if p.ProfessionID != "" && len(professions) == 1 {
		meta.ProfessionName = professions[0].ProfessionName
	}
	return Summary{
		Success: true,
		Data: SummaryData{
			OverallLeads:      s.Leads,
			OverallPurchases:  s.Purchases,
			OverallCPL:        s.CPL,
			OverallInvestment: s.Investment,
			OverallRevenue:    s.Revenue,
			OverallROAS:       s.ROAS,
			OverallSessions:   s.Sessions,
			ProfessionData:    professions,
		},
		Metadata: meta,
	}
}

// BuildChart packages a chart series.
func BuildChart(p period.Period, source model.Source, metric model.Metric, buckets []model.Bucket) Chart {
	if buckets == nil {
		buckets = []model.Bucket{}
	}
	return Chart{
		Success:   true,
		ChartData: buckets,
		Metadata: ChartMetadata{
			Period:         p.Current,
			PreviousPeriod: p.Previous,
			ProfessionID:   p.ProfessionID,
			Metric:         metric,
			Granularity:    p.Granularity,
			Source:         source,
			DataPoints:     len(buckets),
		},
	}
}
