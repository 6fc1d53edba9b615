// Timeline builder turning an interleaved event stream into per-philosopher
// and globally ordered views.
package timeline

import (
	"fmt"
	"sort"

	"philoscope/internal/event"
	"philoscope/internal/report"
)

// Builder admits events in arrival order and maintains a per-philosopher
// sequence plus a merged global view. Admitted events are never removed or
// mutated.
type Builder struct {
	nextSeq int64
	byPhilo map[int][]event.Event
	all     []event.Event
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{byPhilo: make(map[int][]event.Event)}
}

// Add admits e, assigning its arrival sequence. If e's timestamp regresses
// against the previous event of the same philosopher, the event is still
// admitted (the log is kept whole for rendering) and a fatal violation is
// returned; a regression means the log itself is corrupt, since each
// philosopher writes its own lines in timestamp order.
func (b *Builder) Add(e event.Event) (event.Event, *report.Violation) {
	e.Seq = b.nextSeq
	b.nextSeq++

	var v *report.Violation
	seq := b.byPhilo[e.PhilosopherID]
	if n := len(seq); n > 0 && e.Timestamp < seq[n-1].Timestamp {
		v = &report.Violation{
			Kind:          report.KindTimestampRegression,
			Timestamp:     e.Timestamp,
			PhilosopherID: e.PhilosopherID,
			Detail:        fmt.Sprintf("timestamp %d regressed below previous %d", e.Timestamp, seq[n-1].Timestamp),
			Severity:      report.SeverityFatal,
		}
	}

	b.byPhilo[e.PhilosopherID] = append(seq, e)
	b.all = append(b.all, e)
	return e, v
}

// Events returns the admitted events for one philosopher in arrival order.
func (b *Builder) Events(id int) []event.Event {
	return b.byPhilo[id]
}

// IDs returns all philosopher ids seen so far, ascending.
func (b *Builder) IDs() []int {
	ids := make([]int, 0, len(b.byPhilo))
	for id := range b.byPhilo {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Global returns every admitted event sorted by (timestamp, arrival sequence).
// The arrival sequence is an explicit tie-break so the ordering is
// deterministic regardless of sort stability.
func (b *Builder) Global() []event.Event {
	out := make([]event.Event, len(b.all))
	copy(out, b.all)
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Len returns the number of admitted events.
func (b *Builder) Len() int { return len(b.all) }

// LastTimestamp returns the largest timestamp admitted, or 0 when empty.
func (b *Builder) LastTimestamp() int64 {
	var last int64
	for _, e := range b.all {
		if e.Timestamp > last {
			last = e.Timestamp
		}
	}
	return last
}
