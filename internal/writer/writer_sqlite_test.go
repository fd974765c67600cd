package writer

import (
	"FlowTagger/internal/config"
	"FlowTagger/internal/model"
	"path/filepath"
	"testing"
	"time"
)

func sampleReport() *model.Report {
	return &model.Report{
		Source:      "input/flow_logs.txt",
		GeneratedAt: time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC),
		Tags: []model.TagCount{
			{Tag: "sv_P2", Count: 3},
			{Tag: "Untagged", Count: 2},
		},
		PortProtocols: []model.PortProtocolCount{
			{Port: "68", Protocol: "udp", Count: 3},
			{Port: "9999", Protocol: "tcp", Count: 2},
		},
		Stats: model.Stats{
			Lines:    6,
			Accepted: 5,
			Rejected: map[string]uint64{"action": 1},
		},
	}
}

func TestSQLiteWriter(t *testing.T) {
	// 1. Create the writer in a temporary directory
	path := filepath.Join(t.TempDir(), "nested", "reports.db")
	w, err := NewSQLiteWriter(config.SQLiteConfig{Path: path})
	if err != nil {
		t.Fatalf("NewSQLiteWriter failed: %v", err)
	}
	defer w.Close()

	// 2. Write the same report twice
	for i := 0; i < 2; i++ {
		if err := w.Write(sampleReport()); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	db := w.(*SQLiteWriter).db

	// 3. Verify the runs table
	var runs int
	if err := db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&runs); err != nil {
		t.Fatalf("Failed to count runs: %v", err)
	}
	if runs != 2 {
		t.Errorf("Expected 2 runs, got %d", runs)
	}

	var source string
	var accepted, rejected int64
	if err := db.QueryRow(`SELECT source, accepted, rejected FROM runs ORDER BY id DESC LIMIT 1`).Scan(&source, &accepted, &rejected); err != nil {
		t.Fatalf("Failed to read run: %v", err)
	}
	if source != "input/flow_logs.txt" || accepted != 5 || rejected != 1 {
		t.Errorf("Unexpected run row: source=%s accepted=%d rejected=%d", source, accepted, rejected)
	}

	// 4. Verify count rows keep report order
	rows, err := db.Query(`SELECT tag, count FROM tag_counts WHERE run_id = 2 ORDER BY position`)
	if err != nil {
		t.Fatalf("Failed to query tag counts: %v", err)
	}
	defer rows.Close()

	var got []model.TagCount
	for rows.Next() {
		var tc model.TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			t.Fatalf("Failed to scan tag count: %v", err)
		}
		got = append(got, tc)
	}
	if len(got) != 2 || got[0].Tag != "sv_P2" || got[0].Count != 3 || got[1].Tag != "Untagged" {
		t.Errorf("Unexpected tag counts: %+v", got)
	}

	var ports int
	if err := db.QueryRow(`SELECT COUNT(*) FROM port_protocol_counts`).Scan(&ports); err != nil {
		t.Fatalf("Failed to count port/protocol rows: %v", err)
	}
	if ports != 4 {
		t.Errorf("Expected 4 port/protocol rows, got %d", ports)
	}
}
