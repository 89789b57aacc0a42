package report_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/growthboard/internal/domain/model"
	"github.com/okian/growthboard/internal/domain/period"
	"github.com/okian/growthboard/internal/domain/report"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuildSummary(t *testing.T) {
	from, _ := period.ParseDate("2025-03-01")
	to, _ := period.ParseDate("2025-03-03")

	Convey("Given a filtered summary", t, func() {
		p, _ := period.Resolve(from, to, "7")
		s := model.OverallSummary{
			Leads: model.MetricPoint{Current: 3, Previous: 1, Percentage: 200, IsIncreasing: true},
			Professions: []model.ProfessionSummary{
				{ProfessionID: "7", ProfessionName: "Dentist", IsActive: true},
			},
		}
		out := report.BuildSummary(p, model.SourceRevenueByProfession, s)

		Convey("Then metadata names the profession", func() {
			So(out.Success, ShouldBeTrue)
			So(out.Metadata.ProfessionName, ShouldEqual, "Dentist")
			So(out.Metadata.TotalProfessions, ShouldEqual, 1)
			So(out.Metadata.ActiveProfessions, ShouldEqual, 1)
			So(out.Data.OverallLeads.Current, ShouldEqual, 3)
		})

		Convey("Then the JSON carries the documented fields", func() {
			b, err := json.Marshal(out)
			So(err, ShouldBeNil)
			var decoded map[string]any
			So(json.Unmarshal(b, &decoded), ShouldBeNil)
			meta := decoded["metadata"].(map[string]any)
			So(meta["source"], ShouldEqual, "revenue_by_profession")
			So(meta["previous_period"], ShouldResemble, map[string]any{"from": "2025-02-26", "to": "2025-02-28"})
			So(decoded["data"].(map[string]any), ShouldContainKey, "overall_roas")
		})
	})

	Convey("Given a legacy summary without professions", t, func() {
		p, _ := period.Resolve(from, to, "")
		out := report.BuildSummary(p, model.SourceLegacy, model.OverallSummary{})
		b, _ := json.Marshal(out)
		So(string(b), ShouldContainSubstring, `"profession_data":[]`)
		So(string(b), ShouldNotContainSubstring, "profession_id")
	})
}

func TestBuildChart(t *testing.T) {
	Convey("Given a chart without buckets", t, func() {
		from, _ := period.ParseDate("2025-03-10")
		p, _ := period.Resolve(from, from, "")
		out := report.BuildChart(p, model.SourceLegacy, "", nil)
		So(out.Metadata.Granularity, ShouldEqual, model.Hourly)
		So(out.Metadata.DataPoints, ShouldEqual, 0)
		b, _ := json.Marshal(out)
		So(string(b), ShouldContainSubstring, `"chart_data":[]`)
		So(string(b), ShouldNotContainSubstring, `"metric"`)
	})
}
