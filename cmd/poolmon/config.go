package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/kowhai/poolmon/internal/store"
)

// Default control tunables seeded into the store at boot. Each one is
// re-read by its consumer on every tick, so a settings file or a later
// store write retunes the running daemon without a restart.
const (
	defaultCPOnDelta     = 5.0 // degrees C
	defaultCPOffDelta    = 2.0 // degrees C
	defaultFlowThreshold = 5.0 // LPM
	defaultCycleCount    = 2
	defaultOnDuration    = 60.0  // seconds
	defaultPauseDuration = 300.0 // seconds
	defaultDailyHour     = 10
	defaultDailyMinute   = 0
	defaultTempExpiry    = 60  // seconds
	defaultBacklightIdle = 300 // seconds, 0 disables the timeout
	defaultTempLabelWarm = "Heater out"
	defaultTempLabelCool = "Pool"
)

// appConfig holds the tunables loadable from the settings file.
// It is package-private to keep defaults and shape local to the CLI
// entrypoint.
type appConfig struct {
	CPOnDelta        float64  `mapstructure:"cp-on-delta"`
	CPOffDelta       float64  `mapstructure:"cp-off-delta"`
	FlowThreshold    float64  `mapstructure:"flow-threshold"`
	CycleCount       uint32   `mapstructure:"pp-cycle-count"`
	OnDuration       float64  `mapstructure:"pp-on-duration"`
	PauseDuration    float64  `mapstructure:"pp-pause-duration"`
	DailyEnable      bool     `mapstructure:"pp-daily-enable"`
	DailyHour        int32    `mapstructure:"pp-daily-hour"`
	DailyMinute      int32    `mapstructure:"pp-daily-minute"`
	TempExpiry       uint32   `mapstructure:"temp-expiry"`
	BacklightTimeout uint32   `mapstructure:"backlight-timeout"`
	TempLabels       []string `mapstructure:"temp-labels"`
	ConfigPath       string   `mapstructure:"-"` // not from config file
}

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

	v := viper.New()
	v.SetEnvPrefix("POOLMON")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("cp-on-delta", defaultCPOnDelta)
	v.SetDefault("cp-off-delta", defaultCPOffDelta)
	v.SetDefault("flow-threshold", defaultFlowThreshold)
	v.SetDefault("pp-cycle-count", defaultCycleCount)
	v.SetDefault("pp-on-duration", defaultOnDuration)
	v.SetDefault("pp-pause-duration", defaultPauseDuration)
	v.SetDefault("pp-daily-enable", false)
	v.SetDefault("pp-daily-hour", defaultDailyHour)
	v.SetDefault("pp-daily-minute", defaultDailyMinute)
	v.SetDefault("temp-expiry", defaultTempExpiry)
	v.SetDefault("backlight-timeout", defaultBacklightIdle)
	v.SetDefault("temp-labels", []string{defaultTempLabelWarm, defaultTempLabelCool})

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("finding home directory: %w", err)
		}
		v.SetConfigFile(filepath.Join(home, ".config", "poolmon", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	if cfg.CPOffDelta >= cfg.CPOnDelta {
		return cfg, fmt.Errorf("cp-off-delta (%.1f) must be below cp-on-delta (%.1f)", cfg.CPOffDelta, cfg.CPOnDelta)
	}
	if cfg.OnDuration <= 0 || cfg.PauseDuration <= 0 {
		return cfg, fmt.Errorf("pp-on-duration and pp-pause-duration must be positive")
	}
	if cfg.DailyHour < 0 || cfg.DailyHour > 23 || cfg.DailyMinute < 0 || cfg.DailyMinute > 59 {
		return cfg, fmt.Errorf("invalid daily schedule time %02d:%02d", cfg.DailyHour, cfg.DailyMinute)
	}
	if len(cfg.TempLabels) > store.TempInstances {
		return cfg, fmt.Errorf("at most %d temp-labels allowed, got %d", store.TempInstances, len(cfg.TempLabels))
	}

	return cfg, nil
}

// seedStore writes the configured tunables into the store so the control
// loops and display pick them up on their first tick.
func seedStore(ds *store.Store, cfg appConfig) {
	ds.SetFloat(store.ControlCPOnDelta, 0, cfg.CPOnDelta)
	ds.SetFloat(store.ControlCPOffDelta, 0, cfg.CPOffDelta)
	ds.SetFloat(store.ControlFlowThreshold, 0, cfg.FlowThreshold)
	ds.SetUint32(store.ControlPPCycleCount, 0, cfg.CycleCount)
	ds.SetFloat(store.ControlPPCycleOnDuration, 0, cfg.OnDuration)
	ds.SetFloat(store.ControlPPCyclePauseDuration, 0, cfg.PauseDuration)
	ds.SetBool(store.ControlPPDailyEnable, 0, cfg.DailyEnable)
	ds.SetInt32(store.ControlPPDailyHour, 0, cfg.DailyHour)
	ds.SetInt32(store.ControlPPDailyMinute, 0, cfg.DailyMinute)
	ds.SetUint32(store.ControlTempExpiry, 0, cfg.TempExpiry)
	ds.SetUint32(store.DisplayBacklightTimeout, 0, cfg.BacklightTimeout)
	for i, label := range cfg.TempLabels {
		ds.SetString(store.TempLabel, i, label)
	}
	ds.SetString(store.SystemVersion, 0, version)
}
