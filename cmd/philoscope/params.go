package main

import (
	"github.com/spf13/cobra"

	"philoscope/internal/config"
	"philoscope/internal/verify"
)

// paramSet holds the simulation-parameter and checker flags shared by the
// verification commands. A YAML config file and direct flags are both
// accepted; explicit flags win over file values.
type paramSet struct {
	configPath string
	schemaPath string

	philosophers int
	timeToDie    int64
	timeToEat    int64
	timeToSleep  int64
	maxMeals     int

	tolerance      int64
	strict         bool
	timingWarnings bool
}

func (p *paramSet) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.configPath, "config", "", "Path to check configuration YAML")
	cmd.Flags().StringVar(&p.schemaPath, "schema", "schemas/check.cue", "Path to CUE schema file")
	cmd.Flags().IntVar(&p.philosophers, "philosophers", 0, "Number of philosophers (0 skips timing and fork-ring checks)")
	cmd.Flags().Int64Var(&p.timeToDie, "time-to-die", 0, "time_to_die in milliseconds")
	cmd.Flags().Int64Var(&p.timeToEat, "time-to-eat", 0, "time_to_eat in milliseconds")
	cmd.Flags().Int64Var(&p.timeToSleep, "time-to-sleep", 0, "time_to_sleep in milliseconds")
	cmd.Flags().IntVar(&p.maxMeals, "max-meals", 0, "Meal cap per philosopher (0 means no cap)")
	cmd.Flags().Int64Var(&p.tolerance, "tolerance", config.DefaultToleranceMS, "Death-report grace window in milliseconds")
	cmd.Flags().BoolVar(&p.strict, "strict", false, "Abort on the first malformed line")
	cmd.Flags().BoolVar(&p.timingWarnings, "timing-warnings", false, "Downgrade timing violations to warnings")
}

// load resolves the flags into a config, reading and validating the YAML
// file when one is given.
func (p *paramSet) load(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	if p.configPath != "" {
		loaded, err := config.Load(p.configPath, p.schemaPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = &config.Config{}
		cfg.ApplyDefaults()
	}

	if p.philosophers > 0 {
		params := &config.Params{
			Philosophers:  p.philosophers,
			TimeToDieMS:   p.timeToDie,
			TimeToEatMS:   p.timeToEat,
			TimeToSleepMS: p.timeToSleep,
		}
		if p.maxMeals > 0 {
			mm := p.maxMeals
			params.MaxMeals = &mm
		}
		cfg.Params = params
	}

	if cmd.Flags().Changed("tolerance") {
		cfg.Check.ToleranceMS = p.tolerance
	}
	if cmd.Flags().Changed("strict") {
		cfg.Check.Strict = p.strict
	}
	if cmd.Flags().Changed("timing-warnings") {
		cfg.Check.TimingWarnings = p.timingWarnings
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// options builds the verification options for the resolved config.
func options(cfg *config.Config) verify.Options {
	return verify.Options{
		Params:         cfg.Params,
		ToleranceMS:    cfg.Check.ToleranceMS,
		Strict:         cfg.Check.Strict,
		TimingWarnings: cfg.Check.TimingWarnings,
	}
}
