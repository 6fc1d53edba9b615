package export

import (
	"context"
	"fmt"

	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"
	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
)

// greptimeClient abstracts the ingester client for testing.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeWriter exports verification results to GreptimeDB so runs can be
// compared and dashboarded over time.
type GreptimeWriter struct {
	client         greptimeClient
	eventTable     string
	violationTable string
}

// NewGreptimeWriter connects to a GreptimeDB endpoint.
func NewGreptimeWriter(host, database string) (*GreptimeWriter, error) {
	cfg := greptime.NewConfig(host).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptime client: %w", err)
	}
	return &GreptimeWriter{
		client:         client,
		eventTable:     "philo_events",
		violationTable: "philo_violations",
	}, nil
}

// WriteEvents inserts normalized timeline rows.
func (w *GreptimeWriter) WriteEvents(rows []EventRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.eventTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("run_id", types.STRING)
	tbl.AddTagColumn("philosopher_id", types.INT64)
	tbl.AddFieldColumn("action", types.STRING)
	tbl.AddFieldColumn("offset_ms", types.INT64)
	tbl.AddFieldColumn("seq", types.INT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		if err := tbl.AddRow(r.RunID, int64(r.PhilosopherID), r.Action, r.OffsetMS, r.Seq, r.Timestamp); err != nil {
			return err
		}
	}
	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		return fmt.Errorf("write events: %w", err)
	}
	return nil
}

// WriteViolations inserts violation rows.
func (w *GreptimeWriter) WriteViolations(rows []ViolationRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.violationTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("run_id", types.STRING)
	tbl.AddTagColumn("kind", types.STRING)
	tbl.AddFieldColumn("philosopher_id", types.INT64)
	tbl.AddFieldColumn("severity", types.STRING)
	tbl.AddFieldColumn("detail", types.STRING)
	tbl.AddFieldColumn("offset_ms", types.INT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		if err := tbl.AddRow(r.RunID, r.Kind, int64(r.PhilosopherID), r.Severity, r.Detail, r.OffsetMS, r.Timestamp); err != nil {
			return err
		}
	}
	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		return fmt.Errorf("write violations: %w", err)
	}
	return nil
}
