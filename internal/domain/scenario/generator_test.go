package scenario_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/okian/castaway/internal/domain/model"
	"github.com/okian/castaway/internal/domain/scenario"
	"github.com/okian/castaway/internal/domain/scoring"
	"github.com/okian/castaway/internal/fixtures"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerate(t *testing.T) {
	Convey("Given a 24 player cast and the default model", t, func() {
		cast := fixtures.Cast(7)
		gen, err := scenario.NewGenerator(cast)
		So(err, ShouldBeNil)

		Convey("When generating twice with the same seed", func() {
			a := gen.Generate(1234)
			b := gen.Generate(1234)

			Convey("Then the scenarios are identical", func() {
				So(a, ShouldResemble, b)
				So(a.Eliminated(), ShouldResemble, b.Eliminated())
			})
		})

		Convey("When generating with different seeds", func() {
			a := gen.Generate(1)
			b := gen.Generate(2)

			Convey("Then the boot orders differ", func() {
				So(a.BootOrder, ShouldNotResemble, b.BootOrder)
			})
		})

		Convey("When checking the elimination invariant over many seeds", func() {
			for seed := int64(0); seed < 60; seed++ {
				sc := gen.Generate(seed)
				So(len(sc.Eliminated()), ShouldEqual, 21)

				prev := len(cast)
				seen := map[string]bool{}
				for i := range sc.Episodes {
					ep := &sc.Episodes[i]
					if ep.IsFinale() {
						So(i, ShouldEqual, len(sc.Episodes)-1)
						So(len(ep.Active), ShouldEqual, 3)
						So(len(ep.Finale.FinalThree), ShouldEqual, 3)
						So(ep.Finale.FinalThree, ShouldContain, ep.Finale.Winner)
						for _, f := range ep.Finale.FinalThree {
							So(seen[f], ShouldBeFalse)
						}
						continue
					}
					So(ep.Tribal, ShouldNotBeNil)
					So(len(ep.Active), ShouldEqual, prev-1)
					prev = len(ep.Active)
					So(seen[ep.VotedOut()], ShouldBeFalse)
					So(ep.Active, ShouldNotContain, ep.VotedOut())
					seen[ep.VotedOut()] = true
				}
				So(sc.Finale(), ShouldNotBeNil)
			}
		})

		Convey("When inspecting the season structure", func() {
			sc := gen.Generate(99)

			Convey("Then swap and merge points come from the template", func() {
				So([]int{16, 17}, ShouldContain, sc.SwapAt)
				So([]int{11, 12}, ShouldContain, sc.MergeAt)
			})

			Convey("Then phases run pre-merge, swap, post-merge in order", func() {
				counts := map[model.Phase]int{}
				last := 0
				order := map[model.Phase]int{model.PhasePreMerge: 0, model.PhaseSwap: 1, model.PhasePostMerge: 2}
				for _, ep := range sc.Episodes {
					So(order[ep.Phase], ShouldBeGreaterThanOrEqualTo, last)
					last = order[ep.Phase]
					counts[ep.Phase]++
				}
				So(counts[model.PhasePreMerge], ShouldEqual, 24-sc.SwapAt)
				So(counts[model.PhaseSwap], ShouldEqual, sc.SwapAt-sc.MergeAt)
				So(counts[model.PhasePostMerge], ShouldEqual, sc.MergeAt-3+1)
			})

			Convey("Then team episodes carry placements for each tribe and no individual winner", func() {
				for _, ep := range sc.Episodes {
					if ep.IsFinale() {
						continue
					}
					if ep.Phase.Team() {
						So(len(ep.Tribal.TeamImmunity), ShouldEqual, ep.ImmunityTeams)
						So(len(ep.Tribes), ShouldEqual, ep.ImmunityTeams)
						So(ep.Tribal.ImmunityWinner, ShouldBeEmpty)
						seen := map[int]bool{}
						for _, p := range ep.Tribal.TeamImmunity {
							So(p, ShouldBeBetweenOrEqual, 1, ep.ImmunityTeams)
							seen[p] = true
						}
						So(len(seen), ShouldEqual, ep.ImmunityTeams)
					} else {
						So(ep.Tribal.TeamImmunity, ShouldBeEmpty)
						So(ep.Active, ShouldContain, ep.Tribal.ImmunityWinner)
						So(len(ep.Tribes), ShouldEqual, 1)
					}
				}
			})

			Convey("Then the voted out player belongs to a tribe that episode", func() {
				for _, ep := range sc.Episodes {
					if ep.IsFinale() {
						continue
					}
					_, ok := ep.TribeOf(ep.VotedOut())
					So(ok, ShouldBeTrue)
				}
			})

			Convey("Then the voted out player always attended tribal", func() {
				for seed := int64(0); seed < 40; seed++ {
					season := gen.Generate(seed)
					for i := range season.Episodes {
						ep := &season.Episodes[i]
						if ep.IsFinale() {
							continue
						}
						So(scoring.AttendedTribal(ep.VotedOut(), ep), ShouldBeTrue)
					}
				}
			})

			Convey("Then per-episode draws respect their ranges", func() {
				for _, ep := range sc.Episodes {
					if ep.IsFinale() {
						continue
					}
					tr := ep.Tribal
					if ep.Phase.Team() {
						So(tr.Votes, ShouldBeBetweenOrEqual, 4, 7)
					} else {
						So(tr.Votes, ShouldBeBetweenOrEqual, 5, 10)
					}
					So(tr.PocketItems, ShouldBeBetweenOrEqual, 0, 2)
					So(tr.Survived, ShouldResemble, ep.Active)
					So(len(tr.VoteMatched), ShouldBeGreaterThanOrEqualTo, 1)
					So(tr.VoteMatched, ShouldContain, tr.StrategicPlayer)
					So(tr.VotesReceived[ep.VotedOut()], ShouldEqual, tr.Votes)
					for _, id := range tr.VoteMatched {
						So(ep.Active, ShouldContain, id)
						So(tr.VoteTargets[id], ShouldEqual, ep.VotedOut())
					}
					for _, id := range append(append([]string{}, tr.ClueReaders...), tr.IdolPlayed...) {
						So(ep.Active, ShouldContain, id)
					}
					if len(tr.IdolPlayed) > 0 {
						So(tr.IdolVotesNullified, ShouldEqual, tr.Votes)
					}
					So(len(tr.Confessionals), ShouldEqual, len(ep.Active)+1)
				}
			})
		})

		Convey("When counting side events across a season", func() {
			sc := gen.Generate(5)
			clues, advantages := 0, 0
			for _, ep := range sc.Episodes {
				if ep.Tribal == nil {
					continue
				}
				if len(ep.Tribal.ClueReaders) > 0 {
					clues++
					So(ep.Tribal.ClueFinder, ShouldEqual, ep.Tribal.ClueReaders[0])
				}
				advantages += len(ep.Tribal.AdvantagePlayed)
			}

			Convey("Then they stay within the configured bounds", func() {
				So(clues, ShouldBeBetweenOrEqual, 1, 4)
				So(advantages, ShouldBeBetweenOrEqual, 0, 2)
			})
		})
	})

	Convey("Given a cast with only two starting tribes", t, func() {
		cast := fixtures.Cast(1, fixtures.WithTribes(2), fixtures.WithTribeSize(12))

		Convey("Then generation fails with a structural error", func() {
			_, err := scenario.Generate(cast, scenario.DefaultTemplate(), 1, scenario.DefaultProbabilities())
			So(errors.Is(err, scenario.ErrTooFewTribes), ShouldBeTrue)
		})
	})

	Convey("Given a template that does not fit the cast", t, func() {
		cast := fixtures.Cast(1, fixtures.WithTribeSize(4))

		Convey("Then the generator rejects it", func() {
			_, err := scenario.NewGenerator(cast)
			So(errors.Is(err, scenario.ErrInvalidTemplate), ShouldBeTrue)
		})
	})

	Convey("Given a model with more side events than tribal episodes", t, func() {
		cast := fixtures.Cast(3)
		probs := scenario.DefaultProbabilities()
		probs.Clues.ReadsMin, probs.Clues.ReadsMax = 40, 40
		probs.Advantages.PlaysMin, probs.Advantages.PlaysMax = 30, 30
		probs.Idols.FindsMin, probs.Idols.FindsMax = 24, 24

		Convey("Then generation samples what is available without failing", func() {
			sc, err := scenario.Generate(cast, scenario.DefaultTemplate(), 11, probs)
			So(err, ShouldBeNil)
			So(len(sc.Eliminated()), ShouldEqual, 21)
		})
	})
}

func TestBuildSchedule(t *testing.T) {
	Convey("Given swap at 17 and merge at 11", t, func() {
		slots := scenario.BuildSchedule(24, 17, 11, 3)

		Convey("Then there are 21 tribal slots and one finale", func() {
			So(len(slots), ShouldEqual, 22)
			So(len(scenario.TribalIndices(slots)), ShouldEqual, 21)
			So(slots[len(slots)-1].Finale, ShouldBeTrue)
			So(slots[0].ImmunityTeams, ShouldEqual, 3)
			So(slots[7].Phase, ShouldEqual, model.PhaseSwap)
			So(slots[7].ImmunityTeams, ShouldEqual, 2)
			So(slots[13].Phase, ShouldEqual, model.PhasePostMerge)
			So(slices.IndexFunc(slots, func(s scenario.Slot) bool { return s.Finale }), ShouldEqual, 21)
		})
	})
}

func BenchmarkGenerate(b *testing.B) {
	gen, err := scenario.NewGenerator(fixtures.Cast(7))
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = gen.Generate(int64(i))
	}
}
