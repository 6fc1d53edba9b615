// Engine wiring the parser, timeline, fork tracker and state machines into a
// single validation pass.
package verify

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"philoscope/internal/config"
	"philoscope/internal/event"
	"philoscope/internal/logging"
	"philoscope/internal/report"
	"philoscope/internal/timeline"
)

// LineSource yields successive raw log lines. ok is false at end of input.
type LineSource interface {
	Next() (line string, ok bool, err error)
}

// scanSource adapts a bufio.Scanner to LineSource.
type scanSource struct{ s *bufio.Scanner }

func (src *scanSource) Next() (string, bool, error) {
	if src.s.Scan() {
		return src.s.Text(), true, nil
	}
	return "", false, src.s.Err()
}

// ScanLines returns a LineSource reading lines from r.
func ScanLines(r io.Reader) LineSource {
	return &scanSource{s: bufio.NewScanner(r)}
}

// Options configures a verification run.
type Options struct {
	// Params are the simulation's declared parameters. Nil skips deadline,
	// meal-cap and fork-ring checks; structural checks still run.
	Params *config.Params
	// ToleranceMS is the death-report grace window. Zero selects the default.
	ToleranceMS int64
	// Strict aborts on the first malformed line instead of skipping it.
	Strict bool
	// TimingWarnings downgrades timing violations from fatal to warning.
	TimingWarnings bool
}

// Result is the artifact a verification run produces: the normalized
// timeline, the ordered violation list and the aggregate summary.
type Result struct {
	RunID      string
	Timeline   *timeline.Builder
	Violations *report.Collector
	Summary    report.Summary
}

// Engine validates one simulation log. It is single-threaded and synchronous:
// the whole point is deterministic replay of an already-captured
// interleaving, so the engine itself introduces no concurrency.
type Engine struct {
	opts      Options
	runID     string
	builder   *timeline.Builder
	collector *report.Collector
	machines  map[int]*Philosopher
	finalized bool
}

// New creates an Engine for one run.
func New(opts Options) *Engine {
	if opts.ToleranceMS <= 0 {
		opts.ToleranceMS = config.DefaultToleranceMS
	}
	return &Engine{
		opts:      opts,
		runID:     uuid.NewString(),
		builder:   timeline.NewBuilder(),
		collector: &report.Collector{},
		machines:  make(map[int]*Philosopher),
	}
}

// RunID returns the unique id assigned to this verification run.
func (e *Engine) RunID() string { return e.runID }

// Timeline exposes the builder for live observers.
func (e *Engine) Timeline() *timeline.Builder { return e.builder }

// Ingest parses and admits one raw line. Under strict mode a malformed line
// is returned as an error and the run should stop; otherwise it is recorded
// as a warning and skipped.
func (e *Engine) Ingest(ctx context.Context, line string) (event.Event, error) {
	ev, err := event.ParseLine(line)
	if err != nil {
		if e.opts.Strict {
			return event.Event{}, fmt.Errorf("strict mode: %w", err)
		}
		logging.FromContext(ctx).Warn("skipping malformed line", "err", err)
		e.collector.Add(report.Violation{
			Kind:      report.KindMalformedLine,
			Timestamp: e.builder.LastTimestamp(),
			Detail:    err.Error(),
			Severity:  report.SeverityWarning,
		})
		return event.Event{}, nil
	}
	admitted, v := e.builder.Add(ev)
	if v != nil {
		e.collector.Add(*v)
	}
	return admitted, nil
}

// Consume drains src through Ingest.
func (e *Engine) Consume(ctx context.Context, src LineSource) error {
	for {
		line, ok, err := src.Next()
		if err != nil {
			return fmt.Errorf("read log: %w", err)
		}
		if !ok {
			return nil
		}
		if _, err := e.Ingest(ctx, line); err != nil {
			return err
		}
	}
}

// Finalize runs the validation pass over the globally time-sorted sequence
// and derives the summary. Content violations never abort: the engine always
// judges the whole admitted log.
func (e *Engine) Finalize(ctx context.Context) *Result {
	if e.finalized {
		// Finalize is idempotent over an already-validated engine only for
		// its summary; guard against double-counting violations.
		return e.result()
	}
	e.finalized = true

	chk := checker{
		tolerance: e.opts.ToleranceMS,
		timingSev: report.SeverityFatal,
	}
	if e.opts.TimingWarnings {
		chk.timingSev = report.SeverityWarning
	}
	ringSize := 0
	if p := e.opts.Params; p != nil {
		chk.timeToDie = p.TimeToDieMS
		if p.MaxMeals != nil {
			chk.maxMeals = *p.MaxMeals
		}
		ringSize = p.Philosophers
	}
	chk.forks = NewForkTable(ringSize)

	for _, ev := range e.builder.Global() {
		m, ok := e.machines[ev.PhilosopherID]
		if !ok {
			m = newPhilosopher(ev.PhilosopherID, chk.timeToDie)
			e.machines[ev.PhilosopherID] = m
		}
		m.apply(ev, chk, e.collector)
	}

	// End-of-stream sweep: a philosopher whose deadline expired before the
	// log ended, with no died line ever logged, starved undetected even if it
	// simply went silent.
	if chk.timeToDie > 0 {
		last := e.builder.LastTimestamp()
		for _, m := range e.machines {
			if m.State != StateDead && !m.ReachedCap && last > m.deadline+chk.tolerance {
				m.flagStarved(last, chk, e.collector)
			}
		}
	}

	logging.FromContext(ctx).Debug("validation finished",
		"run_id", e.runID,
		"events", e.builder.Len(),
		"violations", e.collector.Len())

	return e.result()
}

// Run consumes src to end of input and finalizes. Only a read error or a
// malformed line under strict mode aborts early.
func (e *Engine) Run(ctx context.Context, src LineSource) (*Result, error) {
	if err := e.Consume(ctx, src); err != nil {
		return nil, err
	}
	if e.builder.Len() == 0 {
		return nil, errors.New("no parseable events in input")
	}
	return e.Finalize(ctx), nil
}

func (e *Engine) result() *Result {
	return &Result{
		RunID:      e.runID,
		Timeline:   e.builder,
		Violations: e.collector,
		Summary:    e.summarize(),
	}
}

func (e *Engine) summarize() report.Summary {
	s := report.Summary{
		FatalCount:    len(e.collector.BySeverity(report.SeverityFatal)),
		WarningCount:  len(e.collector.BySeverity(report.SeverityWarning)),
		EventCount:    e.builder.Len(),
		LastTimestamp: e.builder.LastTimestamp(),
	}

	ids := e.builder.IDs()
	s.PhilosopherCount = len(ids)
	if p := e.opts.Params; p != nil && p.Philosophers > 0 {
		s.PhilosopherCount = p.Philosophers
	}

	capSet := e.opts.Params != nil && e.opts.Params.MaxMeals != nil
	allFed := capSet && len(ids) > 0
	for _, id := range ids {
		m := e.machines[id]
		if m == nil {
			continue
		}
		st := report.PhilosopherStats{
			ID:         id,
			Meals:      m.Meals,
			Sleeps:     m.Sleeps,
			Thinks:     m.Thinks,
			Died:       m.DiedAt != nil,
			DiedAt:     m.DiedAt,
			ReachedCap: m.ReachedCap,
		}
		s.Philosophers = append(s.Philosophers, st)
		if m.DiedAt != nil && (s.FirstDeath == nil || *m.DiedAt < *s.FirstDeath) {
			s.FirstDeath = m.DiedAt
		}
		if !m.ReachedCap {
			allFed = false
		}
	}
	if capSet && len(ids) < s.PhilosopherCount {
		allFed = false
	}
	s.AllFed = allFed

	s.Clean = s.FatalCount == 0
	if s.Clean && !allFed && len(e.collector.ByKind(report.KindPrematureDeath)) > 0 {
		// Premature deaths downgraded to warnings still make the run unclean.
		s.Clean = false
	}
	return s
}
