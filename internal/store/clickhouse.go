package store

import (
	"FlowTagger/internal/config"
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

const (
	RunsTable               = "flow_runs"
	TagCountsTable          = "flow_tag_counts"
	PortProtocolCountsTable = "flow_port_protocol_counts"
)

// Every count table starts with RunID, Timestamp, Source, Position; the
// remaining columns are the report row itself.
var schemaStatements = []string{
	`
CREATE TABLE IF NOT EXISTS flow_runs (
    RunID     UUID,
    Timestamp DateTime64(9),
    Source    String,
    Lines     UInt64,
    Accepted  UInt64,
    Rejected  UInt64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (Source, Timestamp);
`,
	`
CREATE TABLE IF NOT EXISTS flow_tag_counts (
    RunID     UUID,
    Timestamp DateTime64(9),
    Source    String,
    Position  UInt32,
    Tag       String,
    Count     UInt64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (Source, RunID, Position);
`,
	`
CREATE TABLE IF NOT EXISTS flow_port_protocol_counts (
    RunID     UUID,
    Timestamp DateTime64(9),
    Source    String,
    Position  UInt32,
    Port      String,
    Protocol  String,
    Count     UInt64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (Source, RunID, Position);
`,
}

// SourcesQuery summarizes the runs recorded per source.
const SourcesQuery = `SELECT Source, max(Timestamp) AS LastRun, count() AS Runs FROM ` + RunsTable + ` GROUP BY Source ORDER BY Source`

// LatestRunQuery returns the newest RunID of a source and its number of runs.
// A source without runs yields a single row with zero runs.
const LatestRunQuery = `SELECT argMax(RunID, Timestamp), count() FROM ` + RunsTable + ` WHERE Source = ?`

// RunRowsQuery selects the rows of one run from a count table, in report order.
func RunRowsQuery(table, columns string) string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE RunID = ? ORDER BY Position", columns, table)
}

// InsertQuery is the batch insert statement for a table.
func InsertQuery(table string) string {
	return "INSERT INTO " + table
}

// Connect opens and pings a ClickHouse connection.
func Connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

// EnsureSchema creates the report tables if they do not exist.
func EnsureSchema(ctx context.Context, conn driver.Conn) error {
	for _, stmt := range schemaStatements {
		if err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}
