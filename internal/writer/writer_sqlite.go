package writer

import (
	"FlowTagger/internal/config"
	"FlowTagger/internal/factory"
	"FlowTagger/internal/model"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source TEXT NOT NULL,
    generated_at INTEGER NOT NULL,
    lines INTEGER NOT NULL,
    accepted INTEGER NOT NULL,
    rejected INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS tag_counts (
    run_id INTEGER NOT NULL REFERENCES runs(id),
    position INTEGER NOT NULL,
    tag TEXT NOT NULL,
    count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS port_protocol_counts (
    run_id INTEGER NOT NULL REFERENCES runs(id),
    position INTEGER NOT NULL,
    port TEXT NOT NULL,
    protocol TEXT NOT NULL,
    count INTEGER NOT NULL
);
`

const defaultSQLitePath = "data/reports.db"

func init() {
	factory.RegisterWriter("sqlite", func(def config.WriterDef) (model.Writer, error) {
		return NewSQLiteWriter(def.SQLite)
	})
}

// SQLiteWriter stores each report as one row in runs plus its count rows.
type SQLiteWriter struct {
	db *sql.DB
}

// NewSQLiteWriter opens (or creates) the database file and ensures the schema.
func NewSQLiteWriter(cfg config.SQLiteConfig) (model.Writer, error) {
	path := cfg.Path
	if path == "" {
		path = defaultSQLitePath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	return &SQLiteWriter{db: db}, nil
}

func (w *SQLiteWriter) Name() string {
	return "sqlite"
}

// Write stores a report in a single transaction.
func (w *SQLiteWriter) Write(report *model.Report) error {
	tx, err := w.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (source, generated_at, lines, accepted, rejected) VALUES (?, ?, ?, ?, ?)`,
		report.Source, report.GeneratedAt.Unix(),
		int64(report.Stats.Lines), int64(report.Stats.Accepted), int64(report.Stats.RejectedTotal()),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read run id: %w", err)
	}

	tagStmt, err := tx.Prepare(`INSERT INTO tag_counts (run_id, position, tag, count) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer tagStmt.Close()

	for i, row := range report.Tags {
		if _, err := tagStmt.Exec(runID, i, row.Tag, int64(row.Count)); err != nil {
			return fmt.Errorf("failed to insert tag count: %w", err)
		}
	}

	portStmt, err := tx.Prepare(`INSERT INTO port_protocol_counts (run_id, position, port, protocol, count) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer portStmt.Close()

	for i, row := range report.PortProtocols {
		if _, err := portStmt.Exec(runID, i, row.Port, row.Protocol, int64(row.Count)); err != nil {
			return fmt.Errorf("failed to insert port/protocol count: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Printf("Stored run %d for '%s' in SQLite", runID, report.Source)
	return nil
}

func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}
