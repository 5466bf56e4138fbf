package fixtures_test

import (
	"testing"

	"github.com/okian/castaway/internal/fixtures"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCast(t *testing.T) {
	Convey("Given the default synthetic cast", t, func() {
		cast := fixtures.Cast(42)

		Convey("It has 24 contestants in 3 tribes of 8", func() {
			So(len(cast), ShouldEqual, 24)
			tribes := cast.StartingTribes()
			So(len(tribes), ShouldEqual, 3)
			for _, tr := range tribes {
				So(len(tr.Members), ShouldEqual, 8)
			}
		})

		Convey("Traits stay inside [0, 1]", func() {
			for _, c := range cast {
				So(c.ChallengeAbility, ShouldBeBetweenOrEqual, 0, 1)
				So(c.IdolLikelihood, ShouldBeBetweenOrEqual, 0, 1)
				So(c.SurvivalBias, ShouldBeBetweenOrEqual, 0, 1)
			}
		})

		Convey("The same seed reproduces the same cast", func() {
			So(fixtures.Cast(42), ShouldResemble, cast)
		})
	})

	Convey("Given custom tribe options", t, func() {
		cast := fixtures.Cast(1, fixtures.WithTribes(2), fixtures.WithTribeSize(5))

		So(len(cast), ShouldEqual, 10)
		So(len(cast.StartingTribes()), ShouldEqual, 2)
	})
}
