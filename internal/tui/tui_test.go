package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"philoscope/internal/event"
	"philoscope/internal/verify"
)

type fakeProgram struct{ msgs []tea.Msg }

func (f *fakeProgram) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

func TestWatcherMessages(t *testing.T) {
	p := &fakeProgram{}
	w := &Watcher{program: p}

	e, err := event.ParseLine("0 1 is thinking")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	w.OnEvent(e)
	if _, ok := p.msgs[0].(eventMsg); !ok {
		t.Fatalf("expected eventMsg, got %T", p.msgs[0])
	}

	w.OnSkipped("garbage")
	if _, ok := p.msgs[1].(skippedMsg); !ok {
		t.Fatalf("expected skippedMsg, got %T", p.msgs[1])
	}

	eng := verify.New(verify.Options{})
	res, err := eng.Run(context.Background(), verify.ScanLines(strings.NewReader("0 1 is thinking")))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	w.OnDone(res)
	if _, ok := p.msgs[2].(doneMsg); !ok {
		t.Fatalf("expected doneMsg, got %T", p.msgs[2])
	}
}

func TestModelTracksPhilosopherState(t *testing.T) {
	m := newModel()
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = mi.(model)
	if !m.ready {
		t.Fatalf("model not ready after window size")
	}

	lines := []string{
		"0 1 has taken a fork",
		"1 1 has taken a fork",
		"2 1 is eating",
		"5 2 is thinking",
	}
	for _, l := range lines {
		e, err := event.ParseLine(l)
		if err != nil {
			t.Fatalf("parse %q: %v", l, err)
		}
		mi, _ = m.Update(eventMsg{e: e})
		m = mi.(model)
	}

	if got := m.rows[1].state; got != "eating" {
		t.Errorf("philosopher 1 state = %q, want eating", got)
	}
	if got := m.rows[1].meals; got != 1 {
		t.Errorf("philosopher 1 meals = %d, want 1", got)
	}
	if got := m.rows[2].state; got != "thinking" {
		t.Errorf("philosopher 2 state = %q, want thinking", got)
	}
	if got := m.rows[2].lastTS; got != 5 {
		t.Errorf("philosopher 2 last ts = %d, want 5", got)
	}
	if !strings.Contains(m.vp.View(), "is eating") {
		t.Errorf("log viewport missing event line")
	}
}

func TestModelVerdictOnDone(t *testing.T) {
	m := newModel()
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = mi.(model)

	eng := verify.New(verify.Options{})
	input := "0 1 has taken a fork\n0 1 has taken a fork\n1 1 is eating\n1 1 has taken a fork"
	res, err := eng.Run(context.Background(), verify.ScanLines(strings.NewReader(input)))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	mi, _ = m.Update(doneMsg{res: res})
	m = mi.(model)
	if !m.done {
		t.Fatalf("model not done after doneMsg")
	}
	if res.Summary.Clean {
		t.Fatalf("fixture should be unclean")
	}
	if !strings.Contains(m.View(), "unclean") {
		t.Errorf("view missing unclean verdict")
	}
}

func TestModelQuitKey(t *testing.T) {
	m := newModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
}
