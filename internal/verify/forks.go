// Fork-contention tracking over the simulated fork ring.
package verify

import (
	"fmt"

	"philoscope/internal/report"
)

// ForkTable tracks which philosopher currently holds each fork slot. Fork
// ownership is a back-reference (slot index to nullable holder id), never a
// pointer between philosopher and fork.
//
// The log never names fork slots, so assignment is a fixed policy: philosopher
// p's first acquisition after a non-eating state claims its left slot (index
// p-1 in a 0-based ring of size n), the second claims its right slot
// (p mod n). Any consistent assignment works as long as it never
// double-counts.
//
// When the philosopher count is unknown the ring cannot be laid out;
// per-philosopher fork counting still runs but cross-philosopher slot
// conflicts are not checked.
type ForkTable struct {
	size   int
	holder []int         // slot index -> philosopher id, 0 = free
	slots  map[int][]int // philosopher id -> claimed slot indexes
	count  map[int]int   // philosopher id -> forks held (0-2)
}

// NewForkTable creates a tracker. size is the philosopher count; 0 means
// unknown.
func NewForkTable(size int) *ForkTable {
	t := &ForkTable{
		size:  size,
		slots: make(map[int][]int),
		count: make(map[int]int),
	}
	if size > 0 {
		t.holder = make([]int, size)
	}
	return t
}

// left and right return p's adjacent slot indexes in the 0-based ring.
func (t *ForkTable) left(p int) int  { return (p - 1) % t.size }
func (t *ForkTable) right(p int) int { return p % t.size }

// Acquire registers a forked event for philosopher p at ts. It returns a
// violation when p already holds both forks, or when the claimed slot is held
// by a different philosopher.
func (t *ForkTable) Acquire(p int, ts int64) *report.Violation {
	if t.count[p] >= 2 {
		return &report.Violation{
			Kind:          report.KindDoubleAcquire,
			Timestamp:     ts,
			PhilosopherID: p,
			Detail:        "took a fork while already holding both forks",
			Severity:      report.SeverityFatal,
		}
	}
	t.count[p]++

	if t.size <= 0 || p > t.size {
		// Ring unknown or id outside it: structural counting only.
		return nil
	}

	slot := t.left(p)
	if len(t.slots[p]) == 1 {
		slot = t.right(p)
	}
	if other := t.holder[slot]; other != 0 && other != p {
		// Slot stays with its current holder; the second claim is the breach.
		return &report.Violation{
			Kind:          report.KindForkConflict,
			Timestamp:     ts,
			PhilosopherID: p,
			Detail:        fmt.Sprintf("fork %d already held by philosopher %d", slot, other),
			Severity:      report.SeverityFatal,
		}
	}
	t.holder[slot] = p
	t.slots[p] = append(t.slots[p], slot)
	return nil
}

// Release drops every fork p holds. Called on any eating to non-eating
// transition; the protocol has no explicit release line.
func (t *ForkTable) Release(p int) {
	for _, slot := range t.slots[p] {
		if t.holder[slot] == p {
			t.holder[slot] = 0
		}
	}
	delete(t.slots, p)
	t.count[p] = 0
}

// HoldsBoth reports whether p currently holds two forks.
func (t *ForkTable) HoldsBoth(p int) bool { return t.count[p] == 2 }

// Held returns the number of forks p currently holds.
func (t *ForkTable) Held(p int) int { return t.count[p] }

// HolderOf returns the philosopher currently holding slot, or 0 when free or
// the ring is unknown.
func (t *ForkTable) HolderOf(slot int) int {
	if t.holder == nil || slot < 0 || slot >= len(t.holder) {
		return 0
	}
	return t.holder[slot]
}
