package analysis_test

import (
	"testing"

	"github.com/okian/castaway/internal/analysis"
	"github.com/okian/castaway/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func result(id int, strategy string, total float64) analysis.Result {
	return analysis.Result{
		ScenarioID: id,
		Strategy:   strategy,
		Total:      total,
		Categories: map[scoring.Category]float64{
			scoring.CategorySurvival: total / 2,
			scoring.CategoryTribal:   total / 2,
		},
		Events: map[scoring.EventType]scoring.EventTotal{
			scoring.EventSurvivalPreMerge: {Count: 1, Points: total / 2},
			scoring.EventVoteMatched:      {Count: 2, Points: total / 2},
		},
	}
}

func TestAnalyze(t *testing.T) {
	Convey("Given results from two strategies", t, func() {
		results := []analysis.Result{
			result(0, "random", 10),
			result(0, "utr", 40),
			result(1, "random", 30),
			result(1, "utr", 20),
		}

		Convey("When analyzing", func() {
			s := analysis.Analyze(results)

			Convey("Then totals and averages are computed", func() {
				So(s.TotalRuns, ShouldEqual, 4)
				So(s.TotalPoints, ShouldEqual, 100)
				So(s.TotalAvg, ShouldEqual, 25)
				So(s.CategoryAvg[scoring.CategorySurvival], ShouldEqual, 12.5)
				So(s.CategoryPct[scoring.CategoryTribal], ShouldEqual, 50)
			})

			Convey("Then events are summed with shares of all points", func() {
				So(s.EventTotals[scoring.EventVoteMatched].Count, ShouldEqual, 8)
				So(s.EventTotals[scoring.EventVoteMatched].Points, ShouldEqual, 50)
				So(s.EventPct[scoring.EventSurvivalPreMerge], ShouldEqual, 50)
			})

			Convey("Then strategies are described and ranked", func() {
				So(s.Strategies["random"], ShouldResemble, analysis.Stats{Mean: 20, Min: 10, Max: 30, Count: 2})
				So(s.Strategies["utr"].Mean, ShouldEqual, 30)
				So(analysis.Ranked(s.Strategies), ShouldResemble, []string{"utr", "random"})
			})

			Convey("Then percentiles index the sorted totals", func() {
				So(s.Percentiles.P10, ShouldEqual, 10)
				So(s.Percentiles.P50, ShouldEqual, 30)
				So(s.Percentiles.P90, ShouldEqual, 40)
			})

			Convey("Then the lowest, median and highest runs are kept", func() {
				So(len(s.Examples), ShouldEqual, 3)
				So(s.Examples[0].Label, ShouldEqual, "Lowest")
				So(s.Examples[0].Total, ShouldEqual, 10)
				So(s.Examples[1].Total, ShouldEqual, 30)
				So(s.Examples[2].Strategy, ShouldEqual, "utr")
				So(s.Examples[2].ScenarioID, ShouldEqual, 0)
			})
		})

		Convey("When results carry a play style", func() {
			results[0].Style = "replace"
			s := analysis.Analyze(results)

			Convey("Then strategy and style form the group", func() {
				So(s.Strategies["random/replace"].Count, ShouldEqual, 1)
				So(s.Strategies["random"].Count, ShouldEqual, 1)
			})
		})
	})

	Convey("Given no results", t, func() {
		s := analysis.Analyze(nil)

		Convey("Then the summary is empty rather than failing", func() {
			So(s.TotalRuns, ShouldEqual, 0)
			So(s.TotalAvg, ShouldEqual, 0)
			So(s.Examples, ShouldBeEmpty)
			So(s.Strategies, ShouldBeEmpty)
		})
	})

	Convey("Given a zero total", t, func() {
		s := analysis.Analyze([]analysis.Result{result(0, "random", 0)})
		So(s.CategoryPct[scoring.CategorySurvival], ShouldEqual, 0)
		So(s.EventPct[scoring.EventVoteMatched], ShouldEqual, 0)
	})
}

func TestDescribe(t *testing.T) {
	Convey("Given a sample", t, func() {
		So(analysis.Describe([]float64{3, -1, 4}), ShouldResemble, analysis.Stats{Mean: 2, Min: -1, Max: 4, Count: 3})
		So(analysis.Describe(nil), ShouldResemble, analysis.Stats{})
		So(analysis.Percentile([]float64{1, 2, 3}, 1), ShouldEqual, 3)
		So(analysis.Percentile(nil, 0.5), ShouldEqual, 0)
	})
}
