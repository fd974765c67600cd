package writer

import (
	"FlowTagger/internal/config"
	"FlowTagger/internal/factory"
	"FlowTagger/internal/model"
	"FlowTagger/internal/store"
	"context"
	"fmt"
	"log"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"
)

func init() {
	factory.RegisterWriter("clickhouse", func(def config.WriterDef) (model.Writer, error) {
		return NewClickHouseWriter(def.ClickHouse)
	})
}

// ClickHouseWriter appends each report to the ClickHouse report tables.
type ClickHouseWriter struct {
	conn driver.Conn
}

// NewClickHouseWriter connects to ClickHouse and ensures the report tables exist.
func NewClickHouseWriter(cfg config.ClickHouseConfig) (model.Writer, error) {
	conn, err := store.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	w, err := newClickHouseWriter(context.Background(), conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	log.Println("Successfully connected to ClickHouse and ensured tables exist.")
	return w, nil
}

func newClickHouseWriter(ctx context.Context, conn driver.Conn) (*ClickHouseWriter, error) {
	if err := store.EnsureSchema(ctx, conn); err != nil {
		return nil, err
	}
	return &ClickHouseWriter{conn: conn}, nil
}

func (w *ClickHouseWriter) Name() string {
	return "clickhouse"
}

// Write stores a report under a fresh run ID. The run row goes in last, so a
// run only becomes the latest one once its count rows are in place. Reports
// without records still get a run row.
func (w *ClickHouseWriter) Write(report *model.Report) error {
	ctx := context.Background()
	runID := uuid.New()

	if err := w.send(ctx, store.TagCountsTable, tagRows(runID, report)); err != nil {
		return err
	}
	if err := w.send(ctx, store.PortProtocolCountsTable, portProtocolRows(runID, report)); err != nil {
		return err
	}
	if err := w.send(ctx, store.RunsTable, [][]any{runRow(runID, report)}); err != nil {
		return err
	}

	log.Printf("Wrote run %s to ClickHouse for '%s': %d tag rows, %d port/protocol rows",
		runID, report.Source, len(report.Tags), len(report.PortProtocols))
	return nil
}

func (w *ClickHouseWriter) send(ctx context.Context, table string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	batch, err := w.conn.PrepareBatch(ctx, store.InsertQuery(table))
	if err != nil {
		return fmt.Errorf("failed to prepare batch for %s: %w", table, err)
	}
	for _, row := range rows {
		if err := batch.Append(row...); err != nil {
			batch.Abort()
			return fmt.Errorf("failed to append row to %s batch: %w", table, err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch for %s: %w", table, err)
	}
	return nil
}

func (w *ClickHouseWriter) Close() error {
	return w.conn.Close()
}

func runRow(runID uuid.UUID, report *model.Report) []any {
	return []any{
		runID,
		report.GeneratedAt.UTC(),
		report.Source,
		report.Stats.Lines,
		report.Stats.Accepted,
		report.Stats.RejectedTotal(),
	}
}

func tagRows(runID uuid.UUID, report *model.Report) [][]any {
	ts := report.GeneratedAt.UTC()
	rows := make([][]any, len(report.Tags))
	for i, tc := range report.Tags {
		rows[i] = []any{runID, ts, report.Source, uint32(i), tc.Tag, tc.Count}
	}
	return rows
}

func portProtocolRows(runID uuid.UUID, report *model.Report) [][]any {
	ts := report.GeneratedAt.UTC()
	rows := make([][]any, len(report.PortProtocols))
	for i, pc := range report.PortProtocols {
		rows[i] = []any{runID, ts, report.Source, uint32(i), pc.Port, pc.Protocol, pc.Count}
	}
	return rows
}
