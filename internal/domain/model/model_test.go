package model_test

import (
	"testing"

	"github.com/okian/castaway/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCast(t *testing.T) {
	Convey("Given a cast across two tribes", t, func() {
		cast := model.Cast{
			{ID: "a", StartingTribe: "Luvu"},
			{ID: "b", StartingTribe: "Yase"},
			{ID: "c", StartingTribe: "Luvu"},
		}

		Convey("Then tribes keep first-appearance order", func() {
			tribes := cast.StartingTribes()
			So(tribes, ShouldHaveLength, 2)
			So(tribes[0], ShouldResemble, model.Tribe{Name: "Luvu", Members: []string{"a", "c"}})
			So(tribes[1].Members, ShouldResemble, []string{"b"})
		})

		Convey("Then lookups index by id", func() {
			So(cast.IDs(), ShouldResemble, []string{"a", "b", "c"})
			So(cast.TribeMap()["b"], ShouldEqual, "Yase")
			So(cast.ByID()["c"].StartingTribe, ShouldEqual, "Luvu")
		})

		Convey("Then Subset preserves cast order", func() {
			sub := cast.Subset([]string{"c", "a", "zz"})
			So(sub.IDs(), ShouldResemble, []string{"a", "c"})
		})
	})
}

func TestEpisode(t *testing.T) {
	Convey("Given a tribal episode", t, func() {
		ep := model.Episode{
			Phase:  model.PhasePreMerge,
			Active: []string{"a", "b"},
			Tribes: []model.Tribe{{Name: "Luvu", Members: []string{"a", "c"}}, {Name: "Yase", Members: []string{"b"}}},
			Tribal: &model.TribalOutcome{VotedOut: "c"},
		}

		Convey("Then the voted out player participated but is not active", func() {
			So(ep.VotedOut(), ShouldEqual, "c")
			So(ep.IsActive("c"), ShouldBeFalse)
			So(ep.Participated("c"), ShouldBeTrue)
			So(ep.Participated(""), ShouldBeFalse)
			So(ep.Participants(), ShouldResemble, []string{"a", "b", "c"})
		})

		Convey("Then tribe membership resolves per episode", func() {
			name, ok := ep.TribeOf("b")
			So(ok, ShouldBeTrue)
			So(name, ShouldEqual, "Yase")
			_, ok = ep.TribeOf("zz")
			So(ok, ShouldBeFalse)
		})

		Convey("Then phases report team play", func() {
			So(model.PhasePreMerge.Team(), ShouldBeTrue)
			So(model.PhaseSwap.Team(), ShouldBeTrue)
			So(model.PhasePostMerge.Team(), ShouldBeFalse)
		})
	})

	Convey("Given a scenario ending in a finale", t, func() {
		sc := model.Scenario{Episodes: []model.Episode{
			{ID: 1, Tribal: &model.TribalOutcome{VotedOut: "x"}},
			{ID: 2, Tribal: &model.TribalOutcome{VotedOut: "y"}},
			{ID: 3, Finale: &model.FinaleOutcome{FinalThree: []string{"a", "b", "c"}, Winner: "a"}},
		}}

		Convey("Then eliminations and the finale are found", func() {
			So(sc.Eliminated(), ShouldResemble, []string{"x", "y"})
			So(sc.Finale().ID, ShouldEqual, 3)
			So(sc.Episodes[2].VotedOut(), ShouldBeEmpty)
		})
	})
}

func TestPriceMap(t *testing.T) {
	Convey("Given a price map", t, func() {
		p := model.PriceMap{"a": 100, "b": 300, "c": 300}

		Convey("Then ids sort by price then id", func() {
			So(p.SortedIDs(), ShouldResemble, []string{"b", "c", "a"})
		})

		Convey("Then cost ignores unknown ids", func() {
			So(p.Cost([]string{"a", "b", "zz"}), ShouldEqual, 400)
		})

		Convey("Then clones are independent", func() {
			q := p.Clone()
			q["a"] = 1
			So(p["a"], ShouldEqual, 100)
		})

		Convey("Then rosters report membership", func() {
			r := model.Roster{Members: []string{"a", "b"}}
			So(r.Has("b"), ShouldBeTrue)
			So(r.Has("c"), ShouldBeFalse)
		})
	})
}
