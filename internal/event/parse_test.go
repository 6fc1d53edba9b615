package event

import (
	"errors"
	"testing"
)

func TestParseLine(t *testing.T) {
	cases := []struct {
		name string
		line string
		want Event
	}{
		{"fork", "120 3 has taken a fork", Event{Timestamp: 120, PhilosopherID: 3, Action: ActionForked}},
		{"eating", "125 3 is eating", Event{Timestamp: 125, PhilosopherID: 3, Action: ActionEating}},
		{"sleeping", "325 3 is sleeping", Event{Timestamp: 325, PhilosopherID: 3, Action: ActionSleeping}},
		{"thinking", "525 3 is thinking", Event{Timestamp: 525, PhilosopherID: 3, Action: ActionThinking}},
		{"died", "800 1 died", Event{Timestamp: 800, PhilosopherID: 1, Action: ActionDied}},
		{"surrounding whitespace", "  0 1 is thinking \n", Event{Timestamp: 0, PhilosopherID: 1, Action: ActionThinking}},
		{"extra inner whitespace", "10  2   is eating", Event{Timestamp: 10, PhilosopherID: 2, Action: ActionEating}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseLine(tc.line)
			if err != nil {
				t.Fatalf("ParseLine(%q): %v", tc.line, err)
			}
			if got != tc.want {
				t.Fatalf("ParseLine(%q) = %+v, want %+v", tc.line, got, tc.want)
			}
		})
	}
}

func TestParseLineMalformed(t *testing.T) {
	lines := []string{
		"",
		"   ",
		"123",
		"123 4",
		"abc 4 is eating",
		"-5 4 is eating",
		"123 x is eating",
		"123 0 is eating",
		"123 -2 is eating",
		"123 4 is dancing",
		"123 4 has taken a spoon",
		"123 4 IS EATING",
	}
	for _, line := range lines {
		if _, err := ParseLine(line); err == nil {
			t.Errorf("ParseLine(%q): expected error", line)
		} else {
			var mErr *MalformedLineError
			if !errors.As(err, &mErr) {
				t.Errorf("ParseLine(%q): error %T, want *MalformedLineError", line, err)
			}
		}
	}
}

func TestLineRoundTrip(t *testing.T) {
	events := []Event{
		{Timestamp: 0, PhilosopherID: 1, Action: ActionThinking},
		{Timestamp: 42, PhilosopherID: 7, Action: ActionForked},
		{Timestamp: 43, PhilosopherID: 7, Action: ActionForked},
		{Timestamp: 44, PhilosopherID: 7, Action: ActionEating},
		{Timestamp: 999, PhilosopherID: 2, Action: ActionDied},
	}
	for _, e := range events {
		got, err := ParseLine(e.Line())
		if err != nil {
			t.Fatalf("round-trip parse of %q: %v", e.Line(), err)
		}
		if got != e {
			t.Fatalf("round-trip of %+v = %+v", e, got)
		}
		if again, _ := ParseLine(got.Line()); again != got {
			t.Fatalf("second round-trip diverged: %+v vs %+v", again, got)
		}
	}
}

func TestEventBefore(t *testing.T) {
	a := Event{Timestamp: 10, Seq: 1}
	b := Event{Timestamp: 10, Seq: 2}
	c := Event{Timestamp: 11, Seq: 0}
	if !a.Before(b) || b.Before(a) {
		t.Fatalf("seq tie-break broken")
	}
	if !b.Before(c) || c.Before(b) {
		t.Fatalf("timestamp ordering broken")
	}
}
