package query

import (
	"FlowTagger/internal/config"
	"FlowTagger/internal/model"
	"FlowTagger/internal/store"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"
)

// ErrSourceNotFound is returned when no run has been stored for a source.
var ErrSourceNotFound = errors.New("no report stored for source")

// SourceSummary describes the most recent report stored for a flow-log source.
type SourceSummary struct {
	Source  string    `json:"source"`
	LastRun time.Time `json:"last_run"`
	Runs    uint64    `json:"runs"`
}

// Querier defines the interface for querying stored reports. The count
// methods return the rows of the latest run of a source, which may be empty.
type Querier interface {
	Sources(ctx context.Context) ([]SourceSummary, error)
	TagCounts(ctx context.Context, source string) ([]model.TagCount, error)
	PortProtocolCounts(ctx context.Context, source string) ([]model.PortProtocolCount, error)
}

// clickhouseQuerier implements the Querier interface for ClickHouse.
type clickhouseQuerier struct {
	conn driver.Conn
}

// NewClickHouseQuerier creates a new querier for ClickHouse.
func NewClickHouseQuerier(cfg config.ClickHouseConfig) (Querier, error) {
	conn, err := store.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	return NewQuerierFromConn(conn), nil
}

// NewQuerierFromConn wraps an open ClickHouse connection.
func NewQuerierFromConn(conn driver.Conn) Querier {
	return &clickhouseQuerier{conn: conn}
}

// Sources lists every source with its latest run time and number of runs.
func (q *clickhouseQuerier) Sources(ctx context.Context) ([]SourceSummary, error) {
	rows, err := q.conn.Query(ctx, store.SourcesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	summaries := []SourceSummary{}
	for rows.Next() {
		var s SourceSummary
		if err := rows.Scan(&s.Source, &s.LastRun, &s.Runs); err != nil {
			return nil, fmt.Errorf("failed to scan source summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// TagCounts returns the tag section of the latest report for a source.
func (q *clickhouseQuerier) TagCounts(ctx context.Context, source string) ([]model.TagCount, error) {
	runID, err := q.latestRun(ctx, source)
	if err != nil {
		return nil, err
	}

	rows, err := q.conn.Query(ctx, store.RunRowsQuery(store.TagCountsTable, "Tag, Count"), runID)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	counts := []model.TagCount{}
	for rows.Next() {
		var tc model.TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan tag count: %w", err)
		}
		counts = append(counts, tc)
	}
	return counts, rows.Err()
}

// PortProtocolCounts returns the port/protocol section of the latest report for a source.
func (q *clickhouseQuerier) PortProtocolCounts(ctx context.Context, source string) ([]model.PortProtocolCount, error) {
	runID, err := q.latestRun(ctx, source)
	if err != nil {
		return nil, err
	}

	rows, err := q.conn.Query(ctx, store.RunRowsQuery(store.PortProtocolCountsTable, "Port, Protocol, Count"), runID)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	counts := []model.PortProtocolCount{}
	for rows.Next() {
		var pc model.PortProtocolCount
		if err := rows.Scan(&pc.Port, &pc.Protocol, &pc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan port/protocol count: %w", err)
		}
		counts = append(counts, pc)
	}
	return counts, rows.Err()
}

// latestRun resolves the RunID of the newest run stored for a source.
func (q *clickhouseQuerier) latestRun(ctx context.Context, source string) (uuid.UUID, error) {
	var (
		runID uuid.UUID
		runs  uint64
	)
	if err := q.conn.QueryRow(ctx, store.LatestRunQuery, source).Scan(&runID, &runs); err != nil {
		return uuid.Nil, fmt.Errorf("failed to resolve latest run: %w", err)
	}
	if runs == 0 {
		return uuid.Nil, fmt.Errorf("%w: '%s'", ErrSourceNotFound, source)
	}
	return runID, nil
}
