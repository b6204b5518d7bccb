// Package config loads the engine configuration from a YAML file. Missing
// fields fall back to defaults, so an empty or absent file is fully usable.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"hifz/engine/internal/scheduler"
)

// Config is the engine's file configuration.
type Config struct {
	ContentDB        string              `yaml:"content_db"`
	UserDB           string              `yaml:"user_db"`
	BusyTimeoutMS    int                 `yaml:"busy_timeout_ms"`
	Epsilon          float64             `yaml:"epsilon"`
	EnergyFloor      float64             `yaml:"energy_floor"`
	DesiredRetention float64             `yaml:"desired_retention"`
	MaximumInterval  int                 `yaml:"maximum_interval"`
	Profiles         []scheduler.Profile `yaml:"profiles"`
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	return Config{
		ContentDB:        "content.db",
		UserDB:           "user.db",
		BusyTimeoutMS:    5000,
		Epsilon:          0.001,
		EnergyFloor:      scheduler.DefaultEnergyFloor,
		DesiredRetention: 0.9,
		MaximumInterval:  36500,
		Profiles:         scheduler.DefaultProfiles,
	}
}

// Load reads a YAML config file, filling unset fields from Default. A
// missing file returns the defaults without error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Zero values left by partial files fall back to defaults.
	def := Default()
	if cfg.ContentDB == "" {
		cfg.ContentDB = def.ContentDB
	}
	if cfg.UserDB == "" {
		cfg.UserDB = def.UserDB
	}
	if cfg.BusyTimeoutMS <= 0 {
		cfg.BusyTimeoutMS = def.BusyTimeoutMS
	}
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = def.Epsilon
	}
	if cfg.EnergyFloor <= 0 {
		cfg.EnergyFloor = def.EnergyFloor
	}
	if cfg.DesiredRetention <= 0 {
		cfg.DesiredRetention = def.DesiredRetention
	}
	if cfg.MaximumInterval <= 0 {
		cfg.MaximumInterval = def.MaximumInterval
	}
	if len(cfg.Profiles) == 0 {
		cfg.Profiles = def.Profiles
	}
	return cfg, nil
}
