package service_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/growthboard/internal/adapters/upstream"
	service "github.com/okian/growthboard/internal/app"
	"github.com/okian/growthboard/internal/domain/model"
	"github.com/okian/growthboard/internal/upstreamsim"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service reading from the upstream simulator", t, func() {
		sim := upstreamsim.New(upstreamsim.Config{Professions: 4, Location: time.UTC})
		srv := httptest.NewServer(sim.Handler())
		defer srv.Close()

		client := upstream.NewClient(srv.URL,
			upstream.WithLocation(time.UTC),
			upstream.WithTimeout(5*time.Second),
		)
		svc := service.New(client)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		from, to := day("2025-03-01"), day("2025-03-03")
		prevFrom, prevTo := day("2025-02-26"), day("2025-02-28")

		Convey("When requesting an unfiltered summary", func() {
			res, err := svc.Summary(ctx, model.Query{From: from, To: to})
			So(err, ShouldBeNil)

			Convey("Then totals match the simulated activity", func() {
				So(res.Metadata.Source, ShouldEqual, model.SourceRevenueByProfession)
				So(res.Data.OverallLeads.Current, ShouldEqual, sim.Expected(from, to).Leads)
				So(res.Data.OverallLeads.Previous, ShouldEqual, sim.Expected(prevFrom, prevTo).Leads)
				So(res.Data.OverallRevenue.Current, ShouldAlmostEqual, sim.Expected(from, to).Revenue, 0.01)
				So(res.Data.OverallSessions.Current, ShouldBeGreaterThan, 0)
			})

			Convey("And profession leads add up to the overall leads", func() {
				var sum float64
				for _, p := range res.Data.ProfessionData {
					sum += p.Leads.Current
				}
				So(sum, ShouldEqual, res.Data.OverallLeads.Current)
				So(res.Metadata.TotalProfessions, ShouldEqual, 4)
				So(res.Metadata.ActiveProfessions, ShouldEqual, 4)
			})

			Convey("And the legacy feed is never called", func() {
				So(sim.Calls(upstreamsim.FeedLegacy), ShouldEqual, 0)
			})
		})

		Convey("When filtering by a profession sent as a JSON number", func() {
			res, err := svc.Summary(ctx, model.Query{From: from, To: to, ProfessionID: "3"})
			So(err, ShouldBeNil)
			So(res.Metadata.ProfessionID, ShouldEqual, model.ProfessionID("3"))
			So(res.Data.ProfessionData, ShouldHaveLength, 1)
			So(res.Data.OverallLeads.Current, ShouldEqual, sim.Expected(from, to, 3).Leads)
		})

		Convey("When requesting a single-day chart", func() {
			res, err := svc.Chart(ctx, model.Query{From: from, Chart: true})
			So(err, ShouldBeNil)
			So(res.ChartData, ShouldHaveLength, 24)
			var leads float64
			for _, b := range res.ChartData {
				leads += b.Metrics[model.MetricLeads]
			}
			So(leads, ShouldEqual, sim.Expected(from, from).Leads)
		})

		Convey("When the per-profession feed is empty", func() {
			sim.SetEmpty(upstreamsim.FeedRevenue, true)

			res, err := svc.Summary(ctx, model.Query{From: from, To: to})
			So(err, ShouldBeNil)

			Convey("Then the legacy feed answers", func() {
				So(res.Metadata.Source, ShouldEqual, model.SourceLegacy)
				So(res.Data.OverallLeads.Current, ShouldEqual, sim.Expected(from, to).Leads)
				So(res.Data.OverallLeads.Previous, ShouldEqual, sim.Expected(prevFrom, prevTo).Leads)
				So(sim.Calls(upstreamsim.FeedLegacy), ShouldEqual, 2)
			})
		})

		Convey("When every source fails", func() {
			sim.SetFailing(upstreamsim.FeedRevenue, true)
			sim.SetFailing(upstreamsim.FeedLegacy, true)

			_, err := svc.Summary(ctx, model.Query{From: from, To: to})
			So(errors.Is(err, model.ErrNoDataAvailable), ShouldBeTrue)
		})

		Convey("When only the session counter fails", func() {
			sim.SetFailing(upstreamsim.FeedSessions, true)

			res, err := svc.Summary(ctx, model.Query{From: from})
			So(err, ShouldBeNil)
			So(res.Data.OverallSessions.Current, ShouldEqual, 0)
			So(res.Data.OverallSessions.IsIncreasing, ShouldBeTrue)
		})
	})
}
