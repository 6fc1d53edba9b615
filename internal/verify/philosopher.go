package verify

import (
	"fmt"

	"philoscope/internal/event"
	"philoscope/internal/report"
)

// State is a philosopher's lifecycle state.
type State string

const (
	StateThinking State = "thinking"
	StateSleeping State = "sleeping"
	StateEating   State = "eating"
	StateDead     State = "dead"
)

// Philosopher validates one philosopher's event sequence. It owns the
// per-philosopher record for the lifetime of the run; records are created on
// first sight of an id and never destroyed, so the final summary can read
// them.
type Philosopher struct {
	ID         int
	State      State
	ForksHeld  int
	Meals      int
	Sleeps     int
	Thinks     int
	LastMealAt *int64
	DiedAt     *int64
	ReachedCap bool

	deadline       int64 // last_meal_at + time_to_die, or t0 + time_to_die before the first meal
	starvedFlag    bool  // StarvedUndetected raised once per philosopher
	afterDeathFlag bool  // EventsAfterDeath raised once per philosopher
}

// checker bundles the knobs the state machine needs per event.
type checker struct {
	timeToDie int64 // 0 = unknown, skip deadline checks
	maxMeals  int   // 0 = no cap
	tolerance int64
	timingSev report.Severity
	forks     *ForkTable
}

func newPhilosopher(id int, timeToDie int64) *Philosopher {
	return &Philosopher{
		ID:       id,
		State:    StateThinking,
		deadline: timeToDie, // t0 is 0 in log time
	}
}

// legal reports whether action is permitted in the current state, per the
// transition table:
//
//	Thinking          -> forked, died
//	holding one fork  -> forked, eating
//	holding two forks -> eating
//	Eating            -> sleeping, thinking, died
//	Sleeping          -> thinking, died
func (p *Philosopher) legal(action event.Action) bool {
	switch p.State {
	case StateThinking:
		if p.ForksHeld == 0 {
			return action == event.ActionForked || action == event.ActionDied
		}
		if p.ForksHeld == 1 {
			return action == event.ActionForked || action == event.ActionEating
		}
		return action == event.ActionEating
	case StateEating:
		return action == event.ActionSleeping || action == event.ActionThinking || action == event.ActionDied
	case StateSleeping:
		return action == event.ActionThinking || action == event.ActionDied
	}
	return false
}

// apply validates e against the machine and advances it, appending any
// violations to out. The event is applied even when it breaches a rule, so
// validation keeps tracking the rest of the log.
func (p *Philosopher) apply(e event.Event, c checker, out *report.Collector) {
	if p.State == StateDead {
		if !p.afterDeathFlag {
			out.Add(report.Violation{
				Kind:          report.KindEventsAfterDeath,
				Timestamp:     e.Timestamp,
				PhilosopherID: p.ID,
				Detail:        fmt.Sprintf("%s logged after death at %dms", e.Action, *p.DiedAt),
				Severity:      report.SeverityFatal,
			})
			p.afterDeathFlag = true
		}
		return
	}

	// Deadline check before applying the transition: if the deadline plus the
	// announcement tolerance has passed and the simulation still reports
	// activity, it failed to report a death it owed.
	if c.timeToDie > 0 && e.Action != event.ActionDied && e.Timestamp > p.deadline+c.tolerance {
		p.flagStarved(e.Timestamp, c, out)
	}

	if !p.legal(e.Action) {
		out.Add(report.Violation{
			Kind:          report.KindIllegalTransition,
			Timestamp:     e.Timestamp,
			PhilosopherID: p.ID,
			Detail:        fmt.Sprintf("%s not allowed from state %s with %d fork(s)", e.Action, p.State, p.ForksHeld),
			Severity:      report.SeverityFatal,
		})
		// Fall through: the observed action still drives the record so later
		// events are judged against what the simulation actually did.
	}

	wasEating := p.State == StateEating

	switch e.Action {
	case event.ActionForked:
		if v := c.forks.Acquire(p.ID, e.Timestamp); v != nil {
			out.Add(*v)
		}
		p.ForksHeld = c.forks.Held(p.ID)

	case event.ActionEating:
		if !c.forks.HoldsBoth(p.ID) {
			out.Add(report.Violation{
				Kind:          report.KindAteWithoutForks,
				Timestamp:     e.Timestamp,
				PhilosopherID: p.ID,
				Detail:        fmt.Sprintf("started eating holding %d fork(s)", c.forks.Held(p.ID)),
				Severity:      report.SeverityFatal,
			})
		}
		p.State = StateEating
		p.Meals++
		ts := e.Timestamp
		p.LastMealAt = &ts
		if c.timeToDie > 0 {
			p.deadline = ts + c.timeToDie
		}
		if c.maxMeals > 0 && p.Meals >= c.maxMeals {
			p.ReachedCap = true
		}

	case event.ActionSleeping:
		p.State = StateSleeping
		p.Sleeps++

	case event.ActionThinking:
		p.State = StateThinking
		p.Thinks++

	case event.ActionDied:
		p.State = StateDead
		ts := e.Timestamp
		p.DiedAt = &ts
		if c.timeToDie > 0 {
			p.checkDeathTiming(ts, c, out)
		}
	}

	if wasEating && p.State != StateEating {
		// Leaving the table releases both forks; the protocol logs no
		// explicit release.
		c.forks.Release(p.ID)
		p.ForksHeld = 0
	}
}

// checkDeathTiming verifies a died report against the deadline: a death
// before the deadline is premature, one beyond the tolerance window is late.
func (p *Philosopher) checkDeathTiming(ts int64, c checker, out *report.Collector) {
	switch {
	case ts < p.deadline:
		out.Add(report.Violation{
			Kind:          report.KindPrematureDeath,
			Timestamp:     ts,
			PhilosopherID: p.ID,
			Detail:        fmt.Sprintf("died %dms before deadline %d", p.deadline-ts, p.deadline),
			Severity:      c.timingSev,
		})
	case ts > p.deadline+c.tolerance:
		out.Add(report.Violation{
			Kind:          report.KindLateDeath,
			Timestamp:     ts,
			PhilosopherID: p.ID,
			Detail:        fmt.Sprintf("died %dms after deadline %d (tolerance %dms)", ts-p.deadline, p.deadline, c.tolerance),
			Severity:      c.timingSev,
		})
	}
}

// flagStarved raises StarvedUndetected once for this philosopher.
func (p *Philosopher) flagStarved(ts int64, c checker, out *report.Collector) {
	if p.starvedFlag {
		return
	}
	p.starvedFlag = true
	out.Add(report.Violation{
		Kind:          report.KindStarvedUndetected,
		Timestamp:     p.deadline,
		PhilosopherID: p.ID,
		Detail:        fmt.Sprintf("deadline %d passed without a died report (seen activity up to %dms)", p.deadline, ts),
		Severity:      c.timingSev,
	})
}
