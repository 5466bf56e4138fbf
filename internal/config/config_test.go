package config_test

import (
	"errors"
	"testing"

	"github.com/okian/castaway/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.ConfigDir, convey.ShouldEqual, "configs")
			convey.So(cfg.Seed, convey.ShouldEqual, int64(42))
			convey.So(cfg.ExpectedRuns, convey.ShouldEqual, 500)
			convey.So(cfg.RostersPerStrategy, convey.ShouldEqual, 10)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When a run count is zero", func() {
			cfg.DynamicScenarios = 0
			err := cfg.Validate()

			convey.Convey("Then validation names the field", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "dynamic_scenarios")
			})
		})

		convey.Convey("When the log level is unknown", func() {
			cfg.LogLevel = "loud"
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When workers is negative", func() {
			cfg.Workers = -1
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
