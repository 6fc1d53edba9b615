package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FaultPlan injects deliberate contract breaches into a simulation run, for
// exercising the verifier against dirty logs. The zero value injects nothing.
type FaultPlan struct {
	// SuppressDeath lists philosopher ids whose died line is dropped: the
	// simulation still stops, but the death goes unreported.
	SuppressDeath []int `yaml:"suppress_death,omitempty"`
	// ExtraFork lists philosopher ids that log a third fork acquisition on
	// their first meal.
	ExtraFork []int `yaml:"extra_fork,omitempty"`
}

// LoadFaults reads a YAML fault plan from disk.
func LoadFaults(path string) (*FaultPlan, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fault plan: %w", err)
	}
	var p FaultPlan
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse fault plan: %w", err)
	}
	return &p, nil
}

func (p FaultPlan) suppressDeath(id int) bool { return contains(p.SuppressDeath, id) }
func (p FaultPlan) extraFork(id int) bool     { return contains(p.ExtraFork, id) }

func contains(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
