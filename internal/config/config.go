package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix                = "PIKA"
	defaultDatabasePath      = "pika-history.db"
	defaultLogLevel          = "info"
	defaultSnapshotThreshold = 0.2
	defaultKeystrokeRatio    = 0.5
	defaultWPSCeiling        = 5.0
	defaultTimezone          = "America/Toronto"
)

// AppConfig captures runtime configuration for the history tooling.
type AppConfig struct {
	DatabasePath           string
	LogLevel               string
	SnapshotThresholdRatio float64
	KeystrokeRatio         float64
	WPSCeiling             float64
	TimelineTimezone       string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("snapshot.threshold_ratio", defaultSnapshotThreshold)
	configViper.SetDefault("authenticity.keystroke_ratio", defaultKeystrokeRatio)
	configViper.SetDefault("authenticity.wps_ceiling", defaultWPSCeiling)
	configViper.SetDefault("timeline.timezone", defaultTimezone)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		DatabasePath:           configViper.GetString("database.path"),
		LogLevel:               configViper.GetString("log.level"),
		SnapshotThresholdRatio: configViper.GetFloat64("snapshot.threshold_ratio"),
		KeystrokeRatio:         configViper.GetFloat64("authenticity.keystroke_ratio"),
		WPSCeiling:             configViper.GetFloat64("authenticity.wps_ceiling"),
		TimelineTimezone:       configViper.GetString("timeline.timezone"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.SnapshotThresholdRatio < 0 || c.SnapshotThresholdRatio > 1 {
		return fmt.Errorf("snapshot.threshold_ratio must be within [0, 1]")
	}
	if c.KeystrokeRatio <= 0 {
		return fmt.Errorf("authenticity.keystroke_ratio must be positive")
	}
	if c.WPSCeiling <= 0 {
		return fmt.Errorf("authenticity.wps_ceiling must be positive")
	}
	if strings.TrimSpace(c.TimelineTimezone) == "" {
		return fmt.Errorf("timeline.timezone is required")
	}
	return nil
}

// Location resolves the configured timeline timezone.
func (c AppConfig) Location() (*time.Location, error) {
	location, err := time.LoadLocation(c.TimelineTimezone)
	if err != nil {
		return nil, fmt.Errorf("timeline.timezone: %w", err)
	}
	return location, nil
}
