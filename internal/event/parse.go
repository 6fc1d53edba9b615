package event

import (
	"fmt"
	"strconv"
	"strings"
)

// MalformedLineError reports a log line that does not match the
// `<timestamp> <id> <action phrase>` contract.
type MalformedLineError struct {
	Line   string
	Reason string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("malformed line %q: %s", e.Line, e.Reason)
}

// actionByPhrase is the inverse of phrases, built once at init.
var actionByPhrase = func() map[string]Action {
	m := make(map[string]Action, len(phrases))
	for a, p := range phrases {
		m[p] = a
	}
	return m
}()

// ParseLine decodes one raw log line into an Event. Leading and trailing
// whitespace is ignored. The action phrase is everything after the second
// field and is matched against the full fixed vocabulary, not by word count,
// since phrases vary in length ("died" vs "has taken a fork"). Seq is left
// zero; the timeline builder assigns it on admission.
func ParseLine(line string) (Event, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Event{}, &MalformedLineError{Line: line, Reason: "empty line"}
	}

	fields := strings.Fields(trimmed)
	if len(fields) < 3 {
		return Event{}, &MalformedLineError{Line: trimmed, Reason: "expected timestamp, id and action"}
	}

	ts, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || ts < 0 {
		return Event{}, &MalformedLineError{Line: trimmed, Reason: fmt.Sprintf("bad timestamp %q", fields[0])}
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil || id <= 0 {
		return Event{}, &MalformedLineError{Line: trimmed, Reason: fmt.Sprintf("bad philosopher id %q", fields[1])}
	}

	phrase := strings.Join(fields[2:], " ")
	action, ok := actionByPhrase[phrase]
	if !ok {
		return Event{}, &MalformedLineError{Line: trimmed, Reason: fmt.Sprintf("unknown action %q", phrase)}
	}

	return Event{Timestamp: ts, PhilosopherID: id, Action: action}, nil
}
