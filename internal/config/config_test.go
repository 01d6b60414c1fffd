package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/vnykmshr/robocmd/internal/testutil"
	rcerrors "github.com/vnykmshr/robocmd/pkg/common/errors"
	"github.com/vnykmshr/robocmd/pkg/station"
)

func newViper(t *testing.T, yamlDoc string) *viper.Viper {
	t.Helper()
	v := viper.New()
	Bind(v)
	if yamlDoc != "" {
		v.SetConfigType("yaml")
		if err := v.ReadConfig(strings.NewReader(yamlDoc)); err != nil {
			t.Fatalf("read config: %v", err)
		}
	}
	return v
}

func TestDefaultIsValid(t *testing.T) {
	if errs := Default().Validate(); errs != nil {
		t.Fatalf("default config invalid: %v", errs)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper(t, ""))
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, cfg.Loop.Name, "robot")
	testutil.AssertEqual(t, cfg.Loop.PeriodMs, 20)
	testutil.AssertEqual(t, cfg.Loop.Period().Milliseconds(), int64(20))
	testutil.AssertEqual(t, cfg.Logging.Level, "info")
	testutil.AssertEqual(t, cfg.Metrics.Addr, ":9090")
	testutil.AssertEqual(t, cfg.Dashboard.Enabled, false)
	testutil.AssertEqual(t, cfg.Station.InitialMode, "disabled")
}

func TestLoadFile(t *testing.T) {
	doc := `
loop:
  name: practice
  period_ms: 10
logging:
  level: debug
  format: json
dashboard:
  enabled: true
  redis_addr: localhost:6379
  publish_every_ticks: 5
station:
  initial_mode: autonomous
  schedule:
    - spec: "@every 15s"
      mode: teleop
    - spec: "0 */2 * * * *"
      mode: disabled
`
	cfg, err := Load(newViper(t, doc))
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, cfg.Loop.Name, "practice")
	testutil.AssertEqual(t, cfg.Loop.PeriodMs, 10)
	testutil.AssertEqual(t, cfg.Logging.Format, "json")
	testutil.AssertEqual(t, cfg.Dashboard.RedisAddr, "localhost:6379")
	testutil.AssertEqual(t, cfg.Dashboard.PublishEveryTicks, 5)
	// unset keys in a present section still take their defaults
	testutil.AssertEqual(t, cfg.Dashboard.Workers, 1)

	entries := cfg.StationSchedule()
	testutil.AssertEqual(t, len(entries), 2)
	testutil.AssertEqual(t, entries[0].Mode, station.Teleop)
	testutil.AssertEqual(t, entries[1].Mode, station.Disabled)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("ROBOCMD_LOOP_PERIOD_MS", "50")
	t.Setenv("ROBOCMD_LOGGING_LEVEL", "warn")

	cfg, err := Load(newViper(t, "loop:\n  period_ms: 10\n"))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, cfg.Loop.PeriodMs, 50)
	testutil.AssertEqual(t, cfg.Logging.Level, "warn")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		fields []string
	}{
		{
			name:   "zero period",
			mutate: func(c *Config) { c.Loop.PeriodMs = 0 },
			fields: []string{"loop.period_ms"},
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Logging.Level = "loud" },
			fields: []string{"logging.level"},
		},
		{
			name:   "metrics without address",
			mutate: func(c *Config) { c.Metrics.Addr = "" },
			fields: []string{"metrics.addr"},
		},
		{
			name:   "disabled metrics need no address",
			mutate: func(c *Config) { c.Metrics.Enabled = false; c.Metrics.Addr = "" },
		},
		{
			name: "dashboard limits",
			mutate: func(c *Config) {
				c.Dashboard.Enabled = true
				c.Dashboard.Workers = 0
				c.Dashboard.PublishEveryTicks = -1
			},
			fields: []string{"dashboard.publish_every_ticks", "dashboard.workers"},
		},
		{
			name: "station schedule",
			mutate: func(c *Config) {
				c.Station.InitialMode = "practice"
				c.Station.Schedule = []ScheduleEntry{{Spec: "not a spec", Mode: "sleep"}}
			},
			fields: []string{"station.initial_mode", "station.schedule[0].spec", "station.schedule[0].mode"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			errs := cfg.Validate()
			got := make([]string, len(errs))
			for i, e := range errs {
				got[i] = e.Field
			}
			testutil.AssertSliceEqual(t, got, tt.fields)
		})
	}
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(newViper(t, "loop:\n  period_ms: -5\nstation:\n  initial_mode: nope\n"))
	testutil.AssertErrorIs(t, err, rcerrors.ErrInvalidConfiguration)

	var errs ValidationErrors
	if !errors.As(err, &errs) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	testutil.AssertEqual(t, len(errs), 2)
	if !strings.HasPrefix(err.Error(), "2 validation errors:") {
		t.Errorf("unexpected message %q", err.Error())
	}
}
