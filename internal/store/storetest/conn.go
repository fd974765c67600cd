// Package storetest provides an in-memory ClickHouse connection for tests of
// the report writer and querier.
package storetest

import (
	"FlowTagger/internal/store"
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"
)

// Conn keeps inserted rows per table and answers the report queries from them.
// Only the statements issued by the store, writer and query packages are understood.
type Conn struct {
	driver.Conn

	tables map[string][][]any
	Execs  int
}

// NewConn returns an empty connection.
func NewConn() *Conn {
	return &Conn{tables: make(map[string][][]any)}
}

// Rows returns the rows sent to a table, in insertion order.
func (c *Conn) Rows(table string) [][]any {
	return append([][]any(nil), c.tables[table]...)
}

func (c *Conn) Exec(ctx context.Context, query string, args ...any) error {
	c.Execs++
	return nil
}

func (c *Conn) Close() error {
	return nil
}

func (c *Conn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	table := strings.TrimSpace(strings.TrimPrefix(query, "INSERT INTO"))
	return &batch{conn: c, table: table}, nil
}

func (c *Conn) QueryRow(ctx context.Context, query string, args ...any) driver.Row {
	if query != store.LatestRunQuery || len(args) != 1 {
		return &row{err: fmt.Errorf("unsupported query: %s", query)}
	}

	var (
		latest uuid.UUID
		ts     time.Time
		runs   uint64
	)
	for _, r := range c.tables[store.RunsTable] {
		if r[2] != args[0] {
			continue
		}
		runs++
		if t := r[1].(time.Time); runs == 1 || t.After(ts) {
			ts = t
			latest = r[0].(uuid.UUID)
		}
	}
	return &row{values: []any{latest, runs}}
}

func (c *Conn) Query(ctx context.Context, query string, args ...any) (driver.Rows, error) {
	if query == store.SourcesQuery {
		return c.sources(), nil
	}

	for _, table := range []string{store.TagCountsTable, store.PortProtocolCountsTable} {
		if !strings.Contains(query, "FROM "+table+" WHERE RunID = ?") {
			continue
		}
		var matched [][]any
		for _, r := range c.tables[table] {
			if r[0] == args[0] {
				matched = append(matched, r)
			}
		}
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i][3].(uint32) < matched[j][3].(uint32)
		})
		out := make([][]any, len(matched))
		for i, r := range matched {
			out[i] = r[4:]
		}
		return &rows{values: out}, nil
	}

	return nil, fmt.Errorf("unsupported query: %s", query)
}

func (c *Conn) sources() *rows {
	type summary struct {
		last time.Time
		runs uint64
	}
	bySource := make(map[string]*summary)
	for _, r := range c.tables[store.RunsTable] {
		source, ts := r[2].(string), r[1].(time.Time)
		s, ok := bySource[source]
		if !ok {
			s = &summary{last: ts}
			bySource[source] = s
		}
		s.runs++
		if ts.After(s.last) {
			s.last = ts
		}
	}

	names := make([]string, 0, len(bySource))
	for name := range bySource {
		names = append(names, name)
	}
	sort.Strings(names)

	out := &rows{}
	for _, name := range names {
		out.values = append(out.values, []any{name, bySource[name].last, bySource[name].runs})
	}
	return out
}

type batch struct {
	driver.Batch

	conn  *Conn
	table string
	rows  [][]any
	sent  bool
}

func (b *batch) Append(v ...any) error {
	if b.sent {
		return fmt.Errorf("batch for %s already sent", b.table)
	}
	b.rows = append(b.rows, append([]any(nil), v...))
	return nil
}

func (b *batch) Send() error {
	if b.sent {
		return fmt.Errorf("batch for %s already sent", b.table)
	}
	b.conn.tables[b.table] = append(b.conn.tables[b.table], b.rows...)
	b.sent = true
	return nil
}

func (b *batch) Abort() error {
	b.rows = nil
	return nil
}

func (b *batch) IsSent() bool {
	return b.sent
}

type row struct {
	driver.Row

	values []any
	err    error
}

func (r *row) Err() error {
	return r.err
}

func (r *row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.values)
}

type rows struct {
	driver.Rows

	values [][]any
	pos    int
}

func (r *rows) Next() bool {
	r.pos++
	return r.pos <= len(r.values)
}

func (r *rows) Scan(dest ...any) error {
	return assign(dest, r.values[r.pos-1])
}

func (r *rows) Err() error {
	return nil
}

func (r *rows) Close() error {
	return nil
}

func assign(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("expected %d scan destinations, got %d", len(values), len(dest))
	}
	for i, d := range dest {
		dv := reflect.ValueOf(d)
		if dv.Kind() != reflect.Pointer || dv.IsNil() {
			return fmt.Errorf("scan destination %d is not a pointer", i)
		}
		v := reflect.ValueOf(values[i])
		if !v.Type().AssignableTo(dv.Elem().Type()) {
			return fmt.Errorf("cannot scan %T into %T", values[i], d)
		}
		dv.Elem().Set(v)
	}
	return nil
}
