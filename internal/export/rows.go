// Export rows for downstream storage of normalized timelines.
package export

import (
	"time"

	"philoscope/internal/event"
	"philoscope/internal/report"
	"philoscope/internal/verify"
)

// EventRow is one normalized timeline event keyed by run.
type EventRow struct {
	RunID         string    `json:"run_id"`    // TAG
	PhilosopherID int       `json:"philosopher_id"` // TAG
	Action        string    `json:"action"`    // FIELD
	OffsetMS      int64     `json:"offset_ms"` // FIELD
	Seq           int64     `json:"seq"`       // FIELD
	Timestamp     time.Time `json:"ts"`        // TIME INDEX
}

// ViolationRow is one detected violation keyed by run.
type ViolationRow struct {
	RunID         string    `json:"run_id"` // TAG
	Kind          string    `json:"kind"`   // TAG
	PhilosopherID int       `json:"philosopher_id"`
	Severity      string    `json:"severity"`
	Detail        string    `json:"detail"`
	OffsetMS      int64     `json:"offset_ms"`
	Timestamp     time.Time `json:"ts"` // TIME INDEX
}

// Rows flattens a verification result into export rows. epoch anchors the
// log's millisecond offsets in wall-clock time; the run start is a natural
// choice.
func Rows(res *verify.Result, epoch time.Time) ([]EventRow, []ViolationRow) {
	var events []EventRow
	for _, id := range res.Timeline.IDs() {
		for _, e := range res.Timeline.Events(id) {
			events = append(events, toEventRow(res.RunID, e, epoch))
		}
	}
	var violations []ViolationRow
	for _, v := range res.Violations.Sorted() {
		violations = append(violations, toViolationRow(res.RunID, v, epoch))
	}
	return events, violations
}

func toEventRow(runID string, e event.Event, epoch time.Time) EventRow {
	return EventRow{
		RunID:         runID,
		PhilosopherID: e.PhilosopherID,
		Action:        string(e.Action),
		OffsetMS:      e.Timestamp,
		Seq:           e.Seq,
		Timestamp:     epoch.Add(time.Duration(e.Timestamp) * time.Millisecond),
	}
}

func toViolationRow(runID string, v report.Violation, epoch time.Time) ViolationRow {
	return ViolationRow{
		RunID:         runID,
		Kind:          string(v.Kind),
		PhilosopherID: v.PhilosopherID,
		Severity:      string(v.Severity),
		Detail:        v.Detail,
		OffsetMS:      v.Timestamp,
		Timestamp:     epoch.Add(time.Duration(v.Timestamp) * time.Millisecond),
	}
}
