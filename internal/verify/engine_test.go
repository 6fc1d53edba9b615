package verify

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"philoscope/internal/config"
	"philoscope/internal/report"
)

func params(n int, die, eat, sleep int64, maxMeals int) *config.Params {
	p := &config.Params{Philosophers: n, TimeToDieMS: die, TimeToEatMS: eat, TimeToSleepMS: sleep}
	if maxMeals > 0 {
		p.MaxMeals = &maxMeals
	}
	return p
}

func runLines(t *testing.T, opts Options, lines ...string) *Result {
	t.Helper()
	e := New(opts)
	res, err := e.Run(context.Background(), ScanLines(strings.NewReader(strings.Join(lines, "\n"))))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

func kinds(res *Result) map[report.Kind]int {
	m := make(map[report.Kind]int)
	for _, v := range res.Violations.Sorted() {
		m[v.Kind]++
	}
	return m
}

func TestCleanRunWithMealCap(t *testing.T) {
	// Two philosophers alternating over the shared fork pair, three meals
	// each, then stopping.
	res := runLines(t, Options{Params: params(2, 800, 40, 40, 3)},
		"0 1 has taken a fork",
		"0 1 has taken a fork",
		"0 1 is eating",
		"40 1 is sleeping",
		"40 2 has taken a fork",
		"41 2 has taken a fork",
		"42 2 is eating",
		"80 1 is thinking",
		"82 2 is sleeping",
		"84 1 has taken a fork",
		"84 1 has taken a fork",
		"84 1 is eating",
		"122 2 is thinking",
		"124 1 is sleeping",
		"124 2 has taken a fork",
		"125 2 has taken a fork",
		"126 2 is eating",
		"164 1 is thinking",
		"166 2 is sleeping",
		"166 1 has taken a fork",
		"167 1 has taken a fork",
		"168 1 is eating",
		"206 2 is thinking",
		"208 1 is sleeping",
		"210 2 has taken a fork",
		"211 2 has taken a fork",
		"212 2 is eating",
	)

	if got := res.Violations.Len(); got != 0 {
		t.Fatalf("violations = %v, want none", res.Violations.Sorted())
	}
	if !res.Summary.Clean {
		t.Fatalf("summary not clean: %+v", res.Summary)
	}
	if !res.Summary.AllFed {
		t.Fatalf("all philosophers reached the cap, AllFed = false")
	}
	for _, st := range res.Summary.Philosophers {
		if st.Meals != 3 {
			t.Errorf("philosopher %d meals = %d, want 3", st.ID, st.Meals)
		}
		if !st.ReachedCap {
			t.Errorf("philosopher %d did not reach cap", st.ID)
		}
	}
	if res.RunID == "" {
		t.Errorf("run id not assigned")
	}
}

func TestStarvedUndetectedScenario(t *testing.T) {
	// Five philosophers, time_to_die=800. Philosopher 3's last meal is at 0;
	// the stream ends at 850 with no died line for it. Everyone else eats
	// recently enough.
	res := runLines(t, Options{Params: params(5, 800, 200, 200, 0)},
		"0 1 has taken a fork",
		"0 1 has taken a fork",
		"0 1 is eating",
		"0 3 has taken a fork",
		"0 3 has taken a fork",
		"0 3 is eating",
		"200 1 is sleeping",
		"200 3 is sleeping",
		"200 2 has taken a fork",
		"200 2 has taken a fork",
		"200 2 is eating",
		"200 5 has taken a fork",
		"200 5 has taken a fork",
		"200 5 is eating",
		"400 2 is sleeping",
		"400 5 is sleeping",
		"400 1 is thinking",
		"400 3 is thinking",
		"400 4 has taken a fork",
		"400 4 has taken a fork",
		"400 4 is eating",
		"600 1 has taken a fork",
		"600 1 has taken a fork",
		"600 1 is eating",
		"600 4 is sleeping",
		"800 1 is sleeping",
		"850 4 is thinking",
		"850 1 is thinking",
	)

	starved := res.Violations.ByKind(report.KindStarvedUndetected)
	if len(starved) != 1 {
		t.Fatalf("starved violations = %v, want exactly one", res.Violations.Sorted())
	}
	if starved[0].PhilosopherID != 3 {
		t.Fatalf("starved philosopher = %d, want 3", starved[0].PhilosopherID)
	}
	if starved[0].Timestamp != 800 {
		t.Fatalf("starved timestamp = %d, want deadline 800", starved[0].Timestamp)
	}
	if res.Summary.Clean {
		t.Fatalf("summary must be unclean")
	}
	if got := res.Violations.Len(); got != 1 {
		t.Fatalf("total violations = %d, want 1: %v", got, res.Violations.Sorted())
	}
}

func TestForkConflictScenario(t *testing.T) {
	// Adjacent philosophers claim the same shared slot before either releases.
	res := runLines(t, Options{Params: params(2, 10000, 10, 10, 0)},
		"10 1 has taken a fork",
		"11 1 has taken a fork",
		"12 1 is eating",
		"13 2 has taken a fork",
	)

	conflicts := res.Violations.ByKind(report.KindForkConflict)
	if len(conflicts) != 1 {
		t.Fatalf("conflicts = %v, want one", res.Violations.Sorted())
	}
	if conflicts[0].Timestamp != 13 {
		t.Fatalf("conflict at %d, want the second acquisition's 13", conflicts[0].Timestamp)
	}
	if conflicts[0].PhilosopherID != 2 {
		t.Fatalf("conflict attributed to %d, want 2", conflicts[0].PhilosopherID)
	}
	if res.Summary.Clean {
		t.Fatalf("fork conflict must mark the run unclean")
	}
}

func TestDeathTimingBoundaries(t *testing.T) {
	cases := []struct {
		name string
		died int64
		want report.Kind // empty = clean
	}{
		{"premature", 799, report.KindPrematureDeath},
		{"on deadline", 800, ""},
		{"inside tolerance", 810, ""},
		{"beyond tolerance", 811, report.KindLateDeath},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// A lone philosopher that never eats: its deadline is t0+800.
			res := runLines(t,
				Options{Params: params(5, 800, 200, 200, 0), ToleranceMS: 10},
				fmt.Sprintf("%d 1 died", tc.died))
			got := kinds(res)
			if tc.want == "" {
				if len(got) != 0 {
					t.Fatalf("expected clean, got %v", res.Violations.Sorted())
				}
				return
			}
			if got[tc.want] != 1 || len(got) != 1 {
				t.Fatalf("violations = %v, want one %s", res.Violations.Sorted(), tc.want)
			}
		})
	}
}

func TestTimingWarningsDowngrade(t *testing.T) {
	res := runLines(t,
		Options{Params: params(5, 800, 200, 200, 0), ToleranceMS: 10, TimingWarnings: true},
		"900 1 died")
	late := res.Violations.ByKind(report.KindLateDeath)
	if len(late) != 1 || late[0].Severity != report.SeverityWarning {
		t.Fatalf("late death = %v, want one warning", res.Violations.Sorted())
	}
	if !res.Summary.Clean {
		t.Fatalf("downgraded timing violation must leave the run clean of fatals")
	}
}

func TestPrematureDeathStaysUncleanWhenDowngraded(t *testing.T) {
	res := runLines(t,
		Options{Params: params(5, 800, 200, 200, 0), TimingWarnings: true},
		"100 1 died")
	if res.Summary.FatalCount != 0 {
		t.Fatalf("expected no fatals, got %v", res.Violations.Sorted())
	}
	if res.Summary.Clean {
		t.Fatalf("premature death must mark the run unclean even as a warning")
	}
}

func TestIllegalTransition(t *testing.T) {
	res := runLines(t, Options{Params: params(2, 10000, 10, 10, 0)},
		"0 1 is sleeping")
	if got := kinds(res); got[report.KindIllegalTransition] != 1 {
		t.Fatalf("violations = %v, want one illegal transition", res.Violations.Sorted())
	}
}

func TestAteWithoutForks(t *testing.T) {
	res := runLines(t, Options{Params: params(2, 10000, 10, 10, 0)},
		"0 1 has taken a fork",
		"1 1 is eating")
	got := kinds(res)
	if got[report.KindAteWithoutForks] != 1 {
		t.Fatalf("violations = %v, want ate-without-forks", res.Violations.Sorted())
	}
	if got[report.KindIllegalTransition] != 0 {
		t.Fatalf("eating with one fork is a legal transition, got %v", res.Violations.Sorted())
	}
}

func TestEventsAfterDeath(t *testing.T) {
	res := runLines(t, Options{Params: params(2, 10000, 10, 10, 0)},
		"0 1 died",
		"5 1 is thinking",
		"6 1 is thinking")
	after := res.Violations.ByKind(report.KindEventsAfterDeath)
	if len(after) != 1 {
		t.Fatalf("violations = %v, want one events-after-death", res.Violations.Sorted())
	}
	if after[0].Severity != report.SeverityFatal {
		t.Fatalf("severity = %s, want fatal", after[0].Severity)
	}
}

func TestMalformedLinePolicies(t *testing.T) {
	lines := "0 1 has taken a fork\nnot a log line\n1 1 has taken a fork\n2 1 is eating"

	e := New(Options{Params: params(2, 10000, 10, 10, 0)})
	res, err := e.Run(context.Background(), ScanLines(strings.NewReader(lines)))
	if err != nil {
		t.Fatalf("lenient run: %v", err)
	}
	mal := res.Violations.ByKind(report.KindMalformedLine)
	if len(mal) != 1 || mal[0].Severity != report.SeverityWarning {
		t.Fatalf("violations = %v, want one malformed-line warning", res.Violations.Sorted())
	}
	if res.Summary.EventCount != 3 {
		t.Fatalf("event count = %d, want 3 (bad line skipped)", res.Summary.EventCount)
	}

	strictEngine := New(Options{Params: params(2, 10000, 10, 10, 0), Strict: true})
	if _, err := strictEngine.Run(context.Background(), ScanLines(strings.NewReader(lines))); err == nil {
		t.Fatalf("strict mode must abort on malformed input")
	}
}

func TestTimestampRegressionSurfacesAsFatal(t *testing.T) {
	res := runLines(t, Options{},
		"100 1 has taken a fork",
		"90 1 has taken a fork")
	reg := res.Violations.ByKind(report.KindTimestampRegression)
	if len(reg) != 1 || reg[0].Severity != report.SeverityFatal {
		t.Fatalf("violations = %v, want one fatal regression", res.Violations.Sorted())
	}
}

func TestNoParamsSkipsTimingAndRing(t *testing.T) {
	// Without parameters only structural checks run: no deadline, no ring.
	res := runLines(t, Options{},
		"0 1 has taken a fork",
		"1 1 has taken a fork",
		"2 1 is eating",
		"5000 1 is sleeping",
		"5001 2 has taken a fork")
	if got := res.Violations.Len(); got != 0 {
		t.Fatalf("violations = %v, want none without params", res.Violations.Sorted())
	}
}

func TestEmptyInput(t *testing.T) {
	e := New(Options{})
	if _, err := e.Run(context.Background(), ScanLines(strings.NewReader(""))); err == nil {
		t.Fatalf("expected error for input without events")
	}
}
