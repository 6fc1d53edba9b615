package report

import "testing"

func TestCollectorSorted(t *testing.T) {
	var c Collector
	c.Add(Violation{Kind: KindLateDeath, Timestamp: 900, PhilosopherID: 2, Severity: SeverityFatal})
	c.Add(Violation{Kind: KindForkConflict, Timestamp: 300, PhilosopherID: 4, Severity: SeverityFatal})
	c.Add(Violation{Kind: KindDoubleAcquire, Timestamp: 300, PhilosopherID: 1, Severity: SeverityFatal})
	c.Add(Violation{Kind: KindStarvedUndetected, Timestamp: 100, PhilosopherID: 3, Severity: SeverityWarning})

	got := c.Sorted()
	wantOrder := []Kind{KindStarvedUndetected, KindDoubleAcquire, KindForkConflict, KindLateDeath}
	for i, k := range wantOrder {
		if got[i].Kind != k {
			t.Fatalf("position %d: got %s, want %s", i, got[i].Kind, k)
		}
	}
}

func TestCollectorFilters(t *testing.T) {
	var c Collector
	c.Add(Violation{Kind: KindForkConflict, Timestamp: 10, Severity: SeverityFatal})
	c.Add(Violation{Kind: KindLateDeath, Timestamp: 20, Severity: SeverityWarning})
	c.Add(Violation{Kind: KindForkConflict, Timestamp: 30, Severity: SeverityFatal})

	if got := len(c.BySeverity(SeverityFatal)); got != 2 {
		t.Errorf("fatal count = %d, want 2", got)
	}
	if got := len(c.BySeverity(SeverityWarning)); got != 1 {
		t.Errorf("warning count = %d, want 1", got)
	}
	if got := len(c.ByKind(KindForkConflict)); got != 2 {
		t.Errorf("fork conflicts = %d, want 2", got)
	}
	if !c.HasFatal() {
		t.Errorf("HasFatal() = false, want true")
	}

	var clean Collector
	if clean.HasFatal() {
		t.Errorf("empty collector reports fatal")
	}
}
