// Package config loads configuration from the environment with an
// optional TOML file overlay.
//
// Environment variables always win; the file fills in anything the
// environment leaves at its default. Input thresholds default to the
// gesture-recognition contract values and should only be changed for
// experimentation.
package config

import (
	"fmt"
	"os"
	"reflect"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all desktop core configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Logging   LogConfig       `toml:"logging"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Storage   StorageConfig   `toml:"storage"`
	Input     InputConfig     `toml:"input"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8100" toml:"port"`
	Host string `envconfig:"HOST" default:"0.0.0.0" toml:"host"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" toml:"development"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100" toml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200" toml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" toml:"enabled"`
}

// StorageConfig holds blob store and manifest seeding configuration.
type StorageConfig struct {
	Path         string `envconfig:"STORAGE_PATH" default:"/tmp/halcyon-storage" toml:"path"`
	ManifestDir  string `envconfig:"MANIFEST_DIR" default:"" toml:"manifest_dir"`
	AutosaveName string `envconfig:"AUTOSAVE_NAME" default:"default" toml:"autosave_name"`
}

// InputConfig holds input router tuning.
//
// Durations are in event-source time-units, distances in event-source
// distance-units; the defaults are the recognizer contract values.
type InputConfig struct {
	RecentEvents     int     `envconfig:"INPUT_RECENT_EVENTS" default:"10" toml:"recent_events"`
	HistoryLimit     int     `envconfig:"INPUT_HISTORY_LIMIT" default:"100" toml:"history_limit"`
	TapMaxDuration   int64   `envconfig:"INPUT_TAP_MAX_DURATION" default:"300" toml:"tap_max_duration"`
	TapMaxMovement   int     `envconfig:"INPUT_TAP_MAX_MOVEMENT" default:"10" toml:"tap_max_movement"`
	DragThreshold    int     `envconfig:"INPUT_DRAG_THRESHOLD" default:"10" toml:"drag_threshold"`
	SwipeMaxDuration int64   `envconfig:"INPUT_SWIPE_MAX_DURATION" default:"500" toml:"swipe_max_duration"`
	SwipeMinDistance int     `envconfig:"INPUT_SWIPE_MIN_DISTANCE" default:"50" toml:"swipe_min_distance"`
	SwipeMinVelocity float64 `envconfig:"INPUT_SWIPE_MIN_VELOCITY" default:"0.1" toml:"swipe_min_velocity"`
	LongPressDelay   int64   `envconfig:"INPUT_LONG_PRESS_DELAY" default:"500" toml:"long_press_delay"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("HALCYON", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadFile loads configuration from a TOML file, then applies
// environment overrides on top.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment wins over the file. Process into a scratch struct and
	// copy only fields whose variable is actually present, so absent
	// variables do not drag file values back to their defaults.
	var env Config
	if err := envconfig.Process("HALCYON", &env); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}
	overlayEnv(reflect.ValueOf(cfg).Elem(), reflect.ValueOf(&env).Elem())
	return cfg, nil
}

func overlayEnv(dst, src reflect.Value) {
	t := dst.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Type.Kind() == reflect.Struct {
			overlayEnv(dst.Field(i), src.Field(i))
			continue
		}
		name, ok := field.Tag.Lookup("envconfig")
		if !ok {
			continue
		}
		if _, present := os.LookupEnv("HALCYON_" + name); present {
			dst.Field(i).Set(src.Field(i))
		}
	}
}

// LoadOrDefault loads configuration from environment or returns defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server:    ServerConfig{Port: "8100", Host: "0.0.0.0"},
		Logging:   LogConfig{Level: "info"},
		RateLimit: RateLimitConfig{RequestsPerSecond: 100, Burst: 200, Enabled: true},
		Storage:   StorageConfig{Path: "/tmp/halcyon-storage", AutosaveName: "default"},
		Input: InputConfig{
			RecentEvents:     10,
			HistoryLimit:     100,
			TapMaxDuration:   300,
			TapMaxMovement:   10,
			DragThreshold:    10,
			SwipeMaxDuration: 500,
			SwipeMinDistance: 50,
			SwipeMinVelocity: 0.1,
			LongPressDelay:   500,
		},
	}
}
