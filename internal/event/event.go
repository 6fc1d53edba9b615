// Event model for philosopher simulation logs.
package event

import "fmt"

// Action is one of the fixed log actions a philosopher can report.
type Action string

const (
	ActionForked   Action = "forked"
	ActionEating   Action = "eating"
	ActionSleeping Action = "sleeping"
	ActionThinking Action = "thinking"
	ActionDied     Action = "died"
)

// phrases maps each action to the exact log phrase the simulation emits.
// The vocabulary is fixed by the simulation's output contract and is
// case-sensitive.
var phrases = map[Action]string{
	ActionForked:   "has taken a fork",
	ActionEating:   "is eating",
	ActionSleeping: "is sleeping",
	ActionThinking: "is thinking",
	ActionDied:     "died",
}

// Phrase returns the log phrase for a. Unknown actions render as their raw value.
func (a Action) Phrase() string {
	if p, ok := phrases[a]; ok {
		return p
	}
	return string(a)
}

// Event is one decoded log line. Timestamp is in milliseconds since the
// simulation epoch. Seq is the arrival position in the raw stream and breaks
// ties between events sharing a timestamp.
type Event struct {
	Timestamp     int64  `json:"ts"`
	PhilosopherID int    `json:"philosopher_id"`
	Action        Action `json:"action"`
	Seq           int64  `json:"seq"`
}

// Line renders the event back to its exact log-line form. For any event
// produced by ParseLine, ParseLine(e.Line()) yields an equal event (ignoring
// Seq, which is assigned by the consumer).
func (e Event) Line() string {
	return fmt.Sprintf("%d %d %s", e.Timestamp, e.PhilosopherID, e.Action.Phrase())
}

// Before reports whether e orders before other by (Timestamp, Seq).
func (e Event) Before(other Event) bool {
	if e.Timestamp != other.Timestamp {
		return e.Timestamp < other.Timestamp
	}
	return e.Seq < other.Seq
}
