// Package config loads robocmd's configuration from a YAML file, ROBOCMD_*
// environment variables and built-in defaults.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete robocmd configuration
type Config struct {
	Loop      LoopConfig      `mapstructure:"loop" yaml:"loop"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
	Dashboard DashboardConfig `mapstructure:"dashboard" yaml:"dashboard"`
	Station   StationConfig   `mapstructure:"station" yaml:"station"`
}

// LoopConfig controls the control loop
type LoopConfig struct {
	// Name labels the loop and scheduler in logs and metrics
	Name string `mapstructure:"name" yaml:"name"`
	// PeriodMs is the tick period in milliseconds (default: 20)
	PeriodMs int `mapstructure:"period_ms" yaml:"period_ms"`
	// OverrunWarningsPerSec caps loop-overrun log lines
	OverrunWarningsPerSec float64 `mapstructure:"overrun_warnings_per_sec" yaml:"overrun_warnings_per_sec"`
}

// Period returns the tick period as a duration.
func (c LoopConfig) Period() time.Duration {
	return time.Duration(c.PeriodMs) * time.Millisecond
}

// LoggingConfig controls log output
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `mapstructure:"level" yaml:"level"`
	// Format is json or text
	Format string `mapstructure:"format" yaml:"format"`
	// File is the log file path; empty logs to stderr
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Addr is the listen address for /metrics
	Addr      string `mapstructure:"addr" yaml:"addr"`
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
}

// DashboardConfig controls snapshot publishing
type DashboardConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// RedisAddr is the Redis server; empty keeps snapshots in memory
	RedisAddr string `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db" yaml:"redis_db"`
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix"`
	// PublishEveryTicks publishes one snapshot per this many ticks
	PublishEveryTicks int `mapstructure:"publish_every_ticks" yaml:"publish_every_ticks"`
	Workers           int `mapstructure:"workers" yaml:"workers"`
	QueueSize         int `mapstructure:"queue_size" yaml:"queue_size"`
}

// StationConfig controls the driver station
type StationConfig struct {
	// InitialMode is disabled, autonomous, teleop or test
	InitialMode string          `mapstructure:"initial_mode" yaml:"initial_mode"`
	Schedule    []ScheduleEntry `mapstructure:"schedule" yaml:"schedule"`
}

// ScheduleEntry switches the station to Mode whenever Spec fires
type ScheduleEntry struct {
	// Spec is a cron expression with seconds, or a descriptor like "@every 15s"
	Spec string `mapstructure:"spec" yaml:"spec"`
	Mode string `mapstructure:"mode" yaml:"mode"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Loop: LoopConfig{
			Name:                  "robot",
			PeriodMs:              20,
			OverrunWarningsPerSec: 1,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Addr:      ":9090",
			Namespace: "robocmd",
		},
		Dashboard: DashboardConfig{
			Enabled:           false,
			KeyPrefix:         "robocmd",
			PublishEveryTicks: 10,
			Workers:           1,
			QueueSize:         8,
		},
		Station: StationConfig{
			InitialMode: "disabled",
		},
	}
}

// SetDefaults registers every default with v so that keys resolve even
// without a config file.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("loop.name", d.Loop.Name)
	v.SetDefault("loop.period_ms", d.Loop.PeriodMs)
	v.SetDefault("loop.overrun_warnings_per_sec", d.Loop.OverrunWarningsPerSec)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)

	v.SetDefault("dashboard.enabled", d.Dashboard.Enabled)
	v.SetDefault("dashboard.redis_addr", d.Dashboard.RedisAddr)
	v.SetDefault("dashboard.redis_db", d.Dashboard.RedisDB)
	v.SetDefault("dashboard.key_prefix", d.Dashboard.KeyPrefix)
	v.SetDefault("dashboard.publish_every_ticks", d.Dashboard.PublishEveryTicks)
	v.SetDefault("dashboard.workers", d.Dashboard.Workers)
	v.SetDefault("dashboard.queue_size", d.Dashboard.QueueSize)

	v.SetDefault("station.initial_mode", d.Station.InitialMode)
}

// EnvPrefix prefixes environment overrides, e.g. ROBOCMD_LOOP_PERIOD_MS.
const EnvPrefix = "ROBOCMD"

// Bind registers defaults and environment overrides with v.
func Bind(v *viper.Viper) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return &cfg, nil
}
