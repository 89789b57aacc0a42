package model_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/okian/growthboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestProfessionID(t *testing.T) {
	Convey("Given profession ids in different upstream shapes", t, func() {
		Convey("When decoding a JSON string and a JSON number", func() {
			var fromString, fromNumber, fromPadded, fromFloat model.ProfessionID
			So(json.Unmarshal([]byte(`"7"`), &fromString), ShouldBeNil)
			So(json.Unmarshal([]byte(`7`), &fromNumber), ShouldBeNil)
			So(json.Unmarshal([]byte(`"07"`), &fromPadded), ShouldBeNil)
			So(json.Unmarshal([]byte(`7.0`), &fromFloat), ShouldBeNil)

			Convey("Then they should compare equal", func() {
				So(fromString, ShouldEqual, model.ProfessionID("7"))
				So(fromNumber, ShouldEqual, fromString)
				So(fromPadded, ShouldEqual, fromString)
				So(fromFloat, ShouldEqual, fromString)
			})
		})

		Convey("When decoding a non numeric id", func() {
			var id model.ProfessionID
			So(json.Unmarshal([]byte(`" dentist "`), &id), ShouldBeNil)

			Convey("Then it should only be trimmed", func() {
				So(id, ShouldEqual, model.ProfessionID("dentist"))
			})
		})

		Convey("When decoding null", func() {
			id := model.ProfessionID("x")
			So(json.Unmarshal([]byte(`null`), &id), ShouldBeNil)
			So(id, ShouldEqual, model.ProfessionID(""))
		})

		Convey("When ids exceed float64 integer precision", func() {
			var a, b model.ProfessionID
			So(json.Unmarshal([]byte(`12345678901234567890`), &a), ShouldBeNil)
			So(json.Unmarshal([]byte(`"12345678901234567891"`), &b), ShouldBeNil)

			Convey("Then every digit is kept and they stay distinct", func() {
				So(a, ShouldEqual, model.ProfessionID("12345678901234567890"))
				So(b, ShouldEqual, model.ProfessionID("12345678901234567891"))
				So(a, ShouldNotEqual, b)
			})
		})

		Convey("When normalizing zero padded ids", func() {
			So(model.NormalizeProfessionID("000"), ShouldEqual, model.ProfessionID("0"))
			So(model.NormalizeProfessionID(" 0042 "), ShouldEqual, model.ProfessionID("42"))
		})

		Convey("When decoding an object", func() {
			var id model.ProfessionID
			So(json.Unmarshal([]byte(`{}`), &id), ShouldNotBeNil)
		})
	})
}

func TestBreakdown(t *testing.T) {
	Convey("Given an empty breakdown", t, func() {
		b := model.NewBreakdown()

		Convey("When adding hourly and daily values", func() {
			b.AddHour(model.MetricLeads, 9, 3)
			b.AddHour(model.MetricLeads, 9, 2)
			b.AddHour(model.MetricLeads, 24, 100)
			b.AddDay(model.MetricRevenue, "2025-03-02", 10)
			b.AddDay(model.MetricLeads, "2025-03-01", 1)

			Convey("Then values should accumulate", func() {
				So(b.Hour(model.MetricLeads, 9), ShouldEqual, 5)
				So(b.Hour(model.MetricLeads, 10), ShouldEqual, 0)
				So(b.Hour(model.MetricPurchases, 9), ShouldEqual, 0)
				So(b.Day(model.MetricRevenue, "2025-03-02"), ShouldEqual, 10)
			})

			Convey("Then day keys should be a sorted union", func() {
				So(b.DayKeys(), ShouldResemble, []string{"2025-03-01", "2025-03-02"})
			})
		})

		Convey("When reading a zero value breakdown", func() {
			var zero model.Breakdown
			So(zero.Hour(model.MetricLeads, 3), ShouldEqual, 0)
			So(zero.Day(model.MetricLeads, "2025-03-01"), ShouldEqual, 0)
			So(zero.DayKeys(), ShouldBeEmpty)
		})
	})
}

func TestParseMetric(t *testing.T) {
	Convey("Given metric names from a request", t, func() {
		m, err := model.ParseMetric(" Leads ")
		So(err, ShouldBeNil)
		So(m, ShouldEqual, model.MetricLeads)

		_, err = model.ParseMetric("clicks")
		So(errors.Is(err, model.ErrInvalidParam), ShouldBeTrue)

		So(model.MetricRevenue.IsMoney(), ShouldBeTrue)
		So(model.MetricLeads.IsMoney(), ShouldBeFalse)
	})
}

func TestFeedResult(t *testing.T) {
	Convey("Given feed results", t, func() {
		So(model.Fetched(nil, nil).Empty(), ShouldBeTrue)
		So(model.Fetched(nil, nil).OK, ShouldBeTrue)
		So(model.FetchedAggregate(model.RawProfessionRow{}).Empty(), ShouldBeFalse)

		failed := model.Failed(model.ErrUpstreamUnavailable)
		So(failed.OK, ShouldBeFalse)
		So(failed.Err, ShouldEqual, model.ErrUpstreamUnavailable)
	})
}

func TestDateRangeJSON(t *testing.T) {
	Convey("Given a date range", t, func() {
		r := model.DateRange{
			From: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		}
		b, err := json.Marshal(r)
		So(err, ShouldBeNil)
		So(string(b), ShouldEqual, `{"from":"2025-03-01","to":"2025-03-03"}`)
		So(r.String(), ShouldEqual, "2025-03-01..2025-03-03")
	})
}
