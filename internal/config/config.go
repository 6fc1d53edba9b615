// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultToleranceMS is the default grace window, in milliseconds, for
// death-report timing checks. The simulation contract allows a small
// announcement delay between a philosopher starving and the died line.
const DefaultToleranceMS = 10

// Params holds the simulation parameters the run under test was started with.
// All durations are milliseconds. MaxMeals is nil when the run has no meal cap.
type Params struct {
	Philosophers  int   `yaml:"philosophers"`
	TimeToDieMS   int64 `yaml:"time_to_die_ms"`
	TimeToEatMS   int64 `yaml:"time_to_eat_ms"`
	TimeToSleepMS int64 `yaml:"time_to_sleep_ms"`
	MaxMeals      *int  `yaml:"max_meals,omitempty"`
}

// Check holds checker behavior knobs.
type Check struct {
	ToleranceMS    int64 `yaml:"tolerance_ms"`
	Strict         bool  `yaml:"strict"`
	TimingWarnings bool  `yaml:"timing_warnings"`
}

// Config is the root configuration for a verification run. Params may be
// absent entirely, in which case timing and fork-ring checks are skipped and
// only structural checks run.
type Config struct {
	Params *Params `yaml:"params,omitempty"`
	Check  Check   `yaml:"check"`
}

// Load loads YAML config and validates it against a CUE schema.
func Load(configPath, cueSchemaPath string) (*Config, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills zero-valued knobs with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Check.ToleranceMS == 0 {
		c.Check.ToleranceMS = DefaultToleranceMS
	}
}

// TimeBudget derives a wall-clock budget for supervising a simulation run
// with these parameters: enough rounds to satisfy a meal cap, or a handful
// of starvation windows when the run is unbounded.
func (c *Config) TimeBudget() time.Duration {
	if c.Params == nil {
		return 10 * time.Second
	}
	p := c.Params
	budget := p.TimeToDieMS * 10
	if p.MaxMeals != nil {
		round := p.TimeToEatMS + p.TimeToSleepMS
		if need := round*int64(*p.MaxMeals)*2 + p.TimeToDieMS; need > budget {
			budget = need
		}
	}
	if budget < 1000 {
		budget = 1000
	}
	return time.Duration(budget) * time.Millisecond
}

// Validate checks semantic constraints beyond what the schema expresses.
func (c *Config) Validate() error {
	if c.Check.ToleranceMS < 0 {
		return fmt.Errorf("tolerance_ms must not be negative, got %d", c.Check.ToleranceMS)
	}
	if c.Params == nil {
		return nil
	}
	p := c.Params
	if p.Philosophers <= 0 {
		return fmt.Errorf("philosophers must be positive, got %d", p.Philosophers)
	}
	if p.TimeToDieMS <= 0 || p.TimeToEatMS <= 0 || p.TimeToSleepMS <= 0 {
		return fmt.Errorf("time_to_die_ms, time_to_eat_ms and time_to_sleep_ms must be positive")
	}
	if p.MaxMeals != nil && *p.MaxMeals <= 0 {
		return fmt.Errorf("max_meals must be positive when set, got %d", *p.MaxMeals)
	}
	return nil
}
