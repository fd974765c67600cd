package query

import (
	"FlowTagger/internal/model"
	"FlowTagger/internal/store"
	"FlowTagger/internal/store/storetest"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func insert(t *testing.T, conn *storetest.Conn, table string, rows ...[]any) {
	t.Helper()
	batch, err := conn.PrepareBatch(context.Background(), store.InsertQuery(table))
	if err != nil {
		t.Fatalf("PrepareBatch failed: %v", err)
	}
	for _, row := range rows {
		if err := batch.Append(row...); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	if err := batch.Send(); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
}

func TestRunRowsQuery(t *testing.T) {
	q := store.RunRowsQuery(store.TagCountsTable, "Tag, Count")

	for _, want := range []string{"SELECT Tag, Count", "FROM flow_tag_counts", "WHERE RunID = ?", "ORDER BY Position"} {
		if !strings.Contains(q, want) {
			t.Errorf("Expected query to contain %q, got:\n%s", want, q)
		}
	}
	if strings.Count(q, "?") != 1 {
		t.Errorf("Expected 1 placeholder, got %d", strings.Count(q, "?"))
	}
}

func TestTagCountsLatestRun(t *testing.T) {
	conn := storetest.NewConn()
	q := NewQuerierFromConn(conn)

	// 1. Two runs of one source inside the same second, plus another source
	base := time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC)
	first, second, other := uuid.New(), uuid.New(), uuid.New()
	insert(t, conn, store.TagCountsTable,
		[]any{first, base, "a.txt", uint32(0), "sv_P1", uint64(1)},
		[]any{second, base.Add(400 * time.Millisecond), "a.txt", uint32(1), "Untagged", uint64(4)},
		[]any{second, base.Add(400 * time.Millisecond), "a.txt", uint32(0), "email", uint64(2)},
		[]any{other, base, "b.txt", uint32(0), "sv_P2", uint64(7)},
	)
	insert(t, conn, store.RunsTable,
		[]any{first, base, "a.txt", uint64(1), uint64(1), uint64(0)},
		[]any{second, base.Add(400 * time.Millisecond), "a.txt", uint64(6), uint64(6), uint64(0)},
		[]any{other, base, "b.txt", uint64(7), uint64(7), uint64(0)},
	)

	// 2. Only the newest run is returned, in report order
	counts, err := q.TagCounts(context.Background(), "a.txt")
	if err != nil {
		t.Fatalf("TagCounts failed: %v", err)
	}
	want := []model.TagCount{{Tag: "email", Count: 2}, {Tag: "Untagged", Count: 4}}
	if len(counts) != len(want) {
		t.Fatalf("Expected %d rows, got %v", len(want), counts)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("Row %d: expected %+v, got %+v", i, want[i], counts[i])
		}
	}

	// 3. Sources counts both runs
	sources, err := q.Sources(context.Background())
	if err != nil {
		t.Fatalf("Sources failed: %v", err)
	}
	if len(sources) != 2 || sources[0].Source != "a.txt" || sources[0].Runs != 2 {
		t.Fatalf("Unexpected sources: %+v", sources)
	}
	if !sources[0].LastRun.Equal(base.Add(400 * time.Millisecond)) {
		t.Errorf("Expected last run %v, got %v", base.Add(400*time.Millisecond), sources[0].LastRun)
	}
}

func TestCountsUnknownSource(t *testing.T) {
	q := NewQuerierFromConn(storetest.NewConn())

	if _, err := q.TagCounts(context.Background(), "missing.txt"); !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("Expected ErrSourceNotFound from TagCounts, got %v", err)
	}
	if _, err := q.PortProtocolCounts(context.Background(), "missing.txt"); !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("Expected ErrSourceNotFound from PortProtocolCounts, got %v", err)
	}
}
