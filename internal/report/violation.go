// Violation taxonomy and ordered collection for simulation checks.
package report

import (
	"fmt"
	"sort"
)

// Kind identifies a class of contract breach.
type Kind string

const (
	KindMalformedLine       Kind = "malformed_line"
	KindTimestampRegression Kind = "timestamp_regression"
	KindIllegalTransition   Kind = "illegal_transition"
	KindForkConflict        Kind = "fork_conflict"
	KindDoubleAcquire       Kind = "double_acquire"
	KindAteWithoutForks     Kind = "ate_without_forks"
	KindEventsAfterDeath    Kind = "events_after_death"
	KindStarvedUndetected   Kind = "starved_undetected"
	KindPrematureDeath      Kind = "premature_death"
	KindLateDeath           Kind = "late_death"
)

// Severity classifies how a violation affects the verdict.
type Severity string

const (
	SeverityFatal   Severity = "fatal"
	SeverityWarning Severity = "warning"
)

// Violation is one detected breach of the simulation's concurrency or timing
// contract. PhilosopherID is 0 for violations not tied to a single philosopher.
type Violation struct {
	Kind          Kind     `json:"kind"`
	Timestamp     int64    `json:"ts"`
	PhilosopherID int      `json:"philosopher_id,omitempty"`
	Detail        string   `json:"detail"`
	Severity      Severity `json:"severity"`
}

func (v Violation) String() string {
	if v.PhilosopherID > 0 {
		return fmt.Sprintf("[%s] %dms philosopher %d: %s", v.Kind, v.Timestamp, v.PhilosopherID, v.Detail)
	}
	return fmt.Sprintf("[%s] %dms: %s", v.Kind, v.Timestamp, v.Detail)
}

// Collector accumulates violations in admission order. It is append-only.
type Collector struct {
	violations []Violation
}

// Add records a violation.
func (c *Collector) Add(v Violation) {
	c.violations = append(c.violations, v)
}

// Len returns the number of recorded violations.
func (c *Collector) Len() int { return len(c.violations) }

// Sorted returns all violations ordered by (timestamp, philosopher id),
// preserving admission order within ties.
func (c *Collector) Sorted() []Violation {
	out := make([]Violation, len(c.violations))
	copy(out, c.violations)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].PhilosopherID < out[j].PhilosopherID
	})
	return out
}

// BySeverity returns violations matching s, in sorted order.
func (c *Collector) BySeverity(s Severity) []Violation {
	var out []Violation
	for _, v := range c.Sorted() {
		if v.Severity == s {
			out = append(out, v)
		}
	}
	return out
}

// ByKind returns violations matching k, in sorted order.
func (c *Collector) ByKind(k Kind) []Violation {
	var out []Violation
	for _, v := range c.Sorted() {
		if v.Kind == k {
			out = append(out, v)
		}
	}
	return out
}

// HasFatal reports whether any fatal violation was recorded.
func (c *Collector) HasFatal() bool {
	for _, v := range c.violations {
		if v.Severity == SeverityFatal {
			return true
		}
	}
	return false
}
