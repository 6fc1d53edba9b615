// Live TUI for watching a simulation log stream while it is being verified.
package tui

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"philoscope/internal/event"
	"philoscope/internal/verify"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// eventMsg carries one admitted event.
type eventMsg struct{ e event.Event }

// skippedMsg reports a malformed line that was skipped.
type skippedMsg struct{ line string }

// doneMsg carries the final result once the stream ended.
type doneMsg struct{ res *verify.Result }

const maxLogLines = 500

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	fatalStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	cleanStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	borderStyle = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("8"))
)

// Watcher renders a live verification using a bubbletea TUI.
type Watcher struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewWatcher starts a bubbletea program and returns a Watcher.
func NewWatcher() *Watcher {
	w := &Watcher{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newModel(), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// OnEvent shows one admitted event.
func (w *Watcher) OnEvent(e event.Event) {
	w.program.Send(eventMsg{e: e})
}

// OnSkipped shows a malformed line that was skipped.
func (w *Watcher) OnSkipped(line string) {
	w.program.Send(skippedMsg{line: line})
}

// OnDone shows the final verdict and violation list.
func (w *Watcher) OnDone(res *verify.Result) {
	w.program.Send(doneMsg{res: res})
}

// Close shuts down the TUI program and waits for cleanup.
func (w *Watcher) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

// Wait blocks until the user quits the TUI. The caller keeps control of the
// process afterwards, so the interrupt relay is disarmed.
func (w *Watcher) Wait() {
	w.sendSignal.Store(false)
	if w.done != nil {
		<-w.done
	}
}

// philoRow is the display-only per-philosopher state derived from the raw
// event stream; the authoritative judgement comes from the verifier at end
// of stream.
type philoRow struct {
	id     int
	state  string
	meals  int
	lastTS int64
}

type model struct {
	tbl     table.Model
	vp      viewport.Model
	rows    map[int]*philoRow
	lines   []string
	height  int
	ready   bool
	done    bool
	verdict string
}

func newModel() model {
	cols := []table.Column{
		{Title: "ID", Width: 4},
		{Title: "State", Width: 10},
		{Title: "Meals", Width: 6},
		{Title: "Last ms", Width: 9},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(8))
	return model{
		tbl:  t,
		rows: make(map[int]*philoRow),
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "j", "down":
			m.vp.LineDown(1)
		case "k", "up":
			m.vp.LineUp(1)
		}

	case tea.WindowSizeMsg:
		m.height = msg.Height
		h := msg.Height - 13
		if h < 4 {
			h = 4
		}
		m.vp = viewport.New(msg.Width-2, h)
		m.ready = true
		m.refreshLog()

	case eventMsg:
		r, ok := m.rows[msg.e.PhilosopherID]
		if !ok {
			r = &philoRow{id: msg.e.PhilosopherID, state: "thinking"}
			m.rows[msg.e.PhilosopherID] = r
		}
		switch msg.e.Action {
		case event.ActionForked:
			r.state = "forking"
		case event.ActionEating:
			r.state = "eating"
			r.meals++
		case event.ActionSleeping:
			r.state = "sleeping"
		case event.ActionThinking:
			r.state = "thinking"
		case event.ActionDied:
			r.state = "dead"
		}
		r.lastTS = msg.e.Timestamp
		m.appendLine(msg.e.Line())
		m.refreshTable()

	case skippedMsg:
		m.appendLine(warnStyle.Render("skipped: " + msg.line))

	case doneMsg:
		m.done = true
		if msg.res.Summary.Clean {
			m.verdict = cleanStyle.Render("clean run — press q to quit")
		} else {
			m.verdict = fatalStyle.Render(fmt.Sprintf("unclean: %d fatal, %d warning — press q to quit",
				msg.res.Summary.FatalCount, msg.res.Summary.WarningCount))
		}
		for _, v := range msg.res.Violations.Sorted() {
			line := v.String()
			if v.Severity == "fatal" {
				line = fatalStyle.Render(line)
			} else {
				line = warnStyle.Render(line)
			}
			m.appendLine(line)
		}
	}
	return m, nil
}

func (m *model) appendLine(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > maxLogLines {
		m.lines = m.lines[len(m.lines)-maxLogLines:]
	}
	m.refreshLog()
}

func (m *model) refreshLog() {
	if !m.ready {
		return
	}
	var lines []string
	for _, l := range m.lines {
		lines = append(lines, wordwrap.String(l, m.vp.Width))
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	m.vp.GotoBottom()
}

func (m *model) refreshTable() {
	ids := make([]int, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	rows := make([]table.Row, 0, len(ids))
	for _, id := range ids {
		r := m.rows[id]
		rows = append(rows, table.Row{
			strconv.Itoa(r.id),
			r.state,
			strconv.Itoa(r.meals),
			strconv.FormatInt(r.lastTS, 10),
		})
	}
	m.tbl.SetRows(rows)
}

func (m model) View() string {
	if !m.ready {
		return "starting..."
	}
	header := titleStyle.Render("philoscope watch")
	if m.done {
		header += "  " + m.verdict
	}
	return header + "\n" + m.tbl.View() + "\n" + borderStyle.Render(m.vp.View())
}
