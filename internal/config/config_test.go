package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "check.yaml", `
params:
  philosophers: 5
  time_to_die_ms: 800
  time_to_eat_ms: 200
  time_to_sleep_ms: 200
  max_meals: 3
check:
  strict: true
`)

	cfg, err := Load(cfgPath, "../../schemas/check.cue")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Params == nil || cfg.Params.Philosophers != 5 {
		t.Errorf("unexpected params: %+v", cfg.Params)
	}
	if cfg.Params.MaxMeals == nil || *cfg.Params.MaxMeals != 3 {
		t.Errorf("max_meals not loaded: %+v", cfg.Params)
	}
	if !cfg.Check.Strict {
		t.Errorf("strict flag not loaded")
	}
	if cfg.Check.ToleranceMS != DefaultToleranceMS {
		t.Errorf("tolerance default = %d, want %d", cfg.Check.ToleranceMS, DefaultToleranceMS)
	}
}

func TestLoadConfig_NoParams(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "check.yaml", `
check:
  tolerance_ms: 25
`)
	cfg, err := Load(cfgPath, "../../schemas/check.cue")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Params != nil {
		t.Errorf("expected nil params, got %+v", cfg.Params)
	}
	if cfg.Check.ToleranceMS != 25 {
		t.Errorf("tolerance = %d, want 25", cfg.Check.ToleranceMS)
	}
}

func TestLoadConfig_SchemaRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "check.yaml", `
params:
  philosophers: 0
  time_to_die_ms: 800
  time_to_eat_ms: 200
  time_to_sleep_ms: 200
`)
	if _, err := Load(cfgPath, "../../schemas/check.cue"); err == nil {
		t.Fatalf("expected validation error for zero philosophers")
	}
}

func TestValidate(t *testing.T) {
	bad := -1
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"nil params ok", Config{Check: Check{ToleranceMS: 10}}, false},
		{"negative tolerance", Config{Check: Check{ToleranceMS: -1}}, true},
		{"bad max meals", Config{
			Params: &Params{Philosophers: 3, TimeToDieMS: 1, TimeToEatMS: 1, TimeToSleepMS: 1, MaxMeals: &bad},
			Check:  Check{ToleranceMS: 10},
		}, true},
		{"zero duration", Config{
			Params: &Params{Philosophers: 3, TimeToDieMS: 0, TimeToEatMS: 1, TimeToSleepMS: 1},
			Check:  Check{ToleranceMS: 10},
		}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
