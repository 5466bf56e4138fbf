package export_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/castaway/internal/adapters/export"
	"github.com/okian/castaway/internal/domain/model"
	"github.com/okian/castaway/internal/domain/scenario"
	"github.com/okian/castaway/internal/domain/scoring"
	"github.com/okian/castaway/internal/fixtures"
	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"
)

func generate(seed int64) model.Scenario {
	gen, err := scenario.NewGenerator(fixtures.Cast(42))
	if err != nil {
		panic(err)
	}
	return gen.Generate(seed)
}

func TestWriteScenarioYAML(t *testing.T) {
	Convey("Given a generated scenario", t, func() {
		sc := generate(42)
		path := filepath.Join(t.TempDir(), "nested", "scenario.yaml")

		Convey("When it is written and read back", func() {
			So(export.WriteScenarioYAML(path, &sc), ShouldBeNil)
			got, err := export.ReadScenarioYAML(path)
			So(err, ShouldBeNil)

			Convey("Then the season is preserved", func() {
				So(got.Seed, ShouldEqual, sc.Seed)
				So(got.BootOrder, ShouldResemble, sc.BootOrder)
				So(got.Episodes, ShouldHaveLength, len(sc.Episodes))
				So(got.Eliminated(), ShouldResemble, sc.Eliminated())
				So(got.Finale().Finale.Winner, ShouldEqual, sc.Finale().Finale.Winner)
			})
		})

		Convey("When the scenario is empty", func() {
			err := export.WriteScenarioYAML(path, &model.Scenario{})
			So(errors.Is(err, export.ErrNoEpisodes), ShouldBeTrue)
		})
	})

	Convey("Given no path", t, func() {
		err := export.WritePricesYAML("", model.PriceMap{"a": 1})
		So(errors.Is(err, export.ErrEmptyPath), ShouldBeTrue)
	})
}

func TestWritePricesYAML(t *testing.T) {
	Convey("Given a price map", t, func() {
		path := filepath.Join(t.TempDir(), "prices.yaml")
		So(export.WritePricesYAML(path, model.PriceMap{"c02": 150000, "c01": 325000}), ShouldBeNil)

		Convey("Then the file is a plain id to price mapping", func() {
			data, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "c01: 325000\nc02: 150000\n")

			var back map[string]int
			So(yaml.Unmarshal(data, &back), ShouldBeNil)
			So(back["c01"], ShouldEqual, 325000)
		})
	})
}

func TestSeedBundle(t *testing.T) {
	Convey("Given a cast, a partial price map and the seed-42 scenario", t, func() {
		cast := fixtures.Cast(42)
		sc := generate(42)
		prices := model.PriceMap{cast[0].ID: 400000}
		b := export.NewSeedBundle("run-9", cast, prices, &sc, scoring.Default(), 0)

		Convey("Then contestants carry prices with a default fallback", func() {
			So(b.Contestants, ShouldHaveLength, len(cast))
			So(b.Contestants[0].PreMergePrice, ShouldEqual, 400000)
			So(b.Contestants[1].PreMergePrice, ShouldEqual, export.DefaultSeedPrice)
			So(b.Contestants[1].PhotoURL, ShouldContainSubstring, "seed="+cast[1].ID)
		})

		Convey("Then only the opening team-phase episodes are kept", func() {
			So(b.Episodes, ShouldHaveLength, export.DefaultSeedEpisodes)
			for _, ep := range b.Episodes {
				So(ep.Phase.Team(), ShouldBeTrue)
			}
			So(b.Episodes[0].ID, ShouldEqual, sc.Episodes[0].ID)
			So(b.Manifest.RunID, ShouldEqual, "run-9")
			So(b.Manifest.ScenarioSeed, ShouldEqual, 42)
		})

		Convey("When the bundle is written", func() {
			dir := t.TempDir()
			So(b.Write(dir), ShouldBeNil)

			Convey("Then every part is valid JSON", func() {
				for _, name := range []string{
					export.ContestantsFile, export.EpisodesFile, export.PricesFile, export.ScoringFile, export.ManifestFile,
				} {
					data, err := os.ReadFile(filepath.Join(dir, name))
					So(err, ShouldBeNil)
					So(json.Valid(data), ShouldBeTrue)
				}
				var cfg scoring.Config
				data, _ := os.ReadFile(filepath.Join(dir, export.ScoringFile))
				So(json.Unmarshal(data, &cfg), ShouldBeNil)
				So(cfg.Other.AddPlayerPenalty, ShouldEqual, scoring.DefaultAddPlayerPenalty)
			})
		})
	})
}
