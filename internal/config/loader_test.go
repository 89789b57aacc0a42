package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/growthboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.UpstreamTimeoutMS, convey.ShouldEqual, 10_000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("GROWTHBOARD_ADDR", ":8080")
			_ = os.Setenv("GROWTHBOARD_UPSTREAM_BASE_URL", "http://feeds.internal")
			_ = os.Setenv("GROWTHBOARD_UPSTREAM_TIMEOUT_MS", "2500")
			_ = os.Setenv("GROWTHBOARD_CACHE_REDIS_ADDR", "redis:6379")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.UpstreamBaseURL, convey.ShouldEqual, "http://feeds.internal")
				convey.So(cfg.UpstreamTimeoutMS, convey.ShouldEqual, 2500)
				convey.So(cfg.CacheEnabled(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When metrics settings come from the environment", func() {
			_ = os.Setenv("GROWTHBOARD_METRICS_ENABLED", "false")
			_ = os.Setenv("GROWTHBOARD_METRICS_LABELS", "env=staging")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then they should be applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MetricsEnabled, convey.ShouldBeFalse)
				labels, err := cfg.MetricsConstLabels()
				convey.So(err, convey.ShouldBeNil)
				convey.So(labels, convey.ShouldResemble, map[string]string{"env": "staging"})
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
upstream_base_url: "http://file.internal"
timezone: "UTC"
day_label_format: "Jan 2"
legacy_path: "/v1/dashboard"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("GROWTHBOARD_CONFIG", tmpFile)
			_ = os.Setenv("GROWTHBOARD_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.UpstreamBaseURL, convey.ShouldEqual, "http://file.internal")
				convey.So(cfg.Timezone, convey.ShouldEqual, "UTC")
				convey.So(cfg.DayLabelFormat, convey.ShouldEqual, "Jan 2")
				convey.So(cfg.LegacyPath, convey.ShouldEqual, "/v1/dashboard")
				convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 300)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("GROWTHBOARD_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("GROWTHBOARD_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("GROWTHBOARD_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unknown timezone", func() {
			_ = os.Setenv("GROWTHBOARD_TIMEZONE", "Nowhere/Land")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func createTempConfigFile(content string) string {
	f, err := os.CreateTemp("", "growthboard-config-*.yaml")
	if err != nil {
		panic(err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(content); err != nil {
		panic(err)
	}
	return f.Name()
}

func clearConfigEnvVars() {
	for _, k := range []string{
		"GROWTHBOARD_CONFIG",
		"GROWTHBOARD_ADDR",
		"GROWTHBOARD_UPSTREAM_BASE_URL",
		"GROWTHBOARD_UPSTREAM_TIMEOUT_MS",
		"GROWTHBOARD_CACHE_REDIS_ADDR",
		"GROWTHBOARD_TIMEZONE",
		"GROWTHBOARD_METRICS_ENABLED",
		"GROWTHBOARD_METRICS_LABELS",
	} {
		_ = os.Unsetenv(k)
	}
}
