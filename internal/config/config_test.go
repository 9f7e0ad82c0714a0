package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/lineups/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Format, convey.ShouldEqual, "csv")
			convey.So(cfg.Pattern, convey.ShouldEqual, "*.csv")
			convey.So(cfg.Workers, convey.ShouldEqual, 1)
			convey.So(cfg.ComboSize, convey.ShouldEqual, 3)
			convey.So(cfg.MaxLimit, convey.ShouldEqual, 100)
			convey.So(cfg.RequestTimeoutMS, convey.ShouldEqual, 30000)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one bad field each", t, func() {
		cases := map[string]func(*config.Config){
			"format":       func(c *config.Config) { c.Format = "xml" },
			"log format":   func(c *config.Config) { c.LogFormat = "yaml" },
			"workers":      func(c *config.Config) { c.Workers = 0 },
			"combo small":  func(c *config.Config) { c.ComboSize = 1 },
			"combo big":    func(c *config.Config) { c.ComboSize = 6 },
			"min minutes":  func(c *config.Config) { c.ComboMinMinutes = -1 },
			"max limit":    func(c *config.Config) { c.MaxLimit = 0 },
			"timeout":      func(c *config.Config) { c.RequestTimeoutMS = 0 },
			"addr":         func(c *config.Config) { c.Addr = " " },
			"zero size":    func(c *config.Config) { c.Intervals = "3,0,2" },
			"word in size": func(c *config.Config) { c.Intervals = "3,x" },
		}

		for name, mutate := range cases {
			cfg := config.New(context.Background())
			mutate(cfg)
			err := cfg.Validate()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			_ = name
		}
	})

	convey.Convey("Given valid interval sizes", t, func() {
		cfg := config.New(context.Background())
		cfg.Intervals = "3, 2,3"
		convey.So(cfg.Validate(), convey.ShouldBeNil)
		sizes, err := cfg.IntervalSizes()
		convey.So(err, convey.ShouldBeNil)
		convey.So(sizes, convey.ShouldResemble, []int{3, 2, 3})
	})
}
