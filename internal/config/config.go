package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Battle holds the tunables of the battle cycle. Durations are expressed in
// seconds in the YAML file, matching the in-game pacing they describe.
type Battle struct {
	RetryInterval  float64            `yaml:"retry_interval"`
	BattleDuration float64            `yaml:"battle_duration"`
	Confidence     map[string]float64 `yaml:"confidence_thresholds"`
}

// Config is the static configuration loaded once at startup and never
// mutated afterwards.
type Config struct {
	TemplatesDir string `yaml:"templates_dir"`
	Battle       Battle `yaml:"battle"`
}

// defaultKey is the fallback entry in the confidence map.
const defaultKey = "default"

// Default returns the built-in configuration used when no file is present.
func Default() *Config {
	return &Config{
		TemplatesDir: "images",
		Battle: Battle{
			RetryInterval:  2,
			BattleDuration: 120,
			Confidence: map[string]float64{
				"continue.png": 0.4,
				defaultKey:     0.8,
			},
		},
	}
}

// Load reads the YAML file at path on top of the defaults. A missing or
// malformed file is not fatal: the defaults are returned along with the
// error so the caller can log a warning.
func Load(path string) (*Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return Default(), err
	}

	// Unmarshal replaces the whole map when the file defines one; keep a
	// usable default entry either way.
	if cfg.Battle.Confidence == nil {
		cfg.Battle.Confidence = Default().Battle.Confidence
	}
	if _, ok := cfg.Battle.Confidence[defaultKey]; !ok {
		cfg.Battle.Confidence[defaultKey] = Default().Battle.Confidence[defaultKey]
	}
	if cfg.Battle.RetryInterval <= 0 {
		cfg.Battle.RetryInterval = Default().Battle.RetryInterval
	}
	if cfg.Battle.BattleDuration <= 0 {
		cfg.Battle.BattleDuration = Default().Battle.BattleDuration
	}
	return cfg, nil
}

// ConfidenceFor returns the matching threshold for a template name,
// falling back to the default entry.
func (c *Config) ConfidenceFor(name string) float64 {
	if v, ok := c.Battle.Confidence[name]; ok {
		return v
	}
	return c.Battle.Confidence[defaultKey]
}

// RetryInterval returns the base backoff interval as a duration.
func (c *Config) RetryInterval() time.Duration {
	return time.Duration(c.Battle.RetryInterval * float64(time.Second))
}

// BattleDuration returns the nominal battle resolution wait as a duration.
func (c *Config) BattleDuration() time.Duration {
	return time.Duration(c.Battle.BattleDuration * float64(time.Second))
}
