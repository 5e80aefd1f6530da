package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/byma-gex-api/internal/analytics"
	"github.com/dgnsrekt/byma-gex-api/internal/exposure"
)

func testRecord(ts time.Time, spot float64) Record {
	return Record{
		CapturedAt: ts,
		Gex: &analytics.GexView{
			Symbol:    "GGAL",
			Timestamp: ts,
			Profile:   &exposure.Profile{SpotPrice: spot, Regime: exposure.RegimeNeutral},
		},
	}
}

func TestAppendCommitRead(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewStore(tmpDir)

	base := time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)
	for i := range 3 {
		rec := testRecord(base.Add(time.Duration(i)*time.Minute), 100+float64(i))
		if err := store.Append("2025-03-10", "GGAL", rec); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	// Records live in staging until committed.
	stagedPath := filepath.Join(tmpDir, ".staging", "2025-03-10", "GGAL", "gex.jsonl")
	if _, err := os.Stat(stagedPath); err != nil {
		t.Fatalf("expected staged day file: %v", err)
	}

	if err := store.Commit("2025-03-10"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := store.Cleanup("2025-03-10"); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := os.Stat(store.StagingDir("2025-03-10")); !os.IsNotExist(err) {
		t.Error("staging directory should be removed after cleanup")
	}

	reader := NewReader(tmpDir, zap.NewNop())
	records, err := reader.Read("2025-03-10", "GGAL")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, rec := range records {
		if rec.Gex.SpotPrice != 100+float64(i) {
			t.Fatalf("record %d spot = %v", i, rec.Gex.SpotPrice)
		}
	}
}

func TestReadSkipsCorruptLines(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewStore(tmpDir)

	ts := time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)
	if err := store.Append("2025-03-10", "GGAL", testRecord(ts, 100)); err != nil {
		t.Fatal(err)
	}

	// Simulate a crash mid-write.
	path := filepath.Join(store.StagingDir("2025-03-10"), "GGAL", "gex.jsonl")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(`{"captured_at": trunc`); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if err := store.Commit("2025-03-10"); err != nil {
		t.Fatal(err)
	}

	records, err := NewReader(tmpDir, zap.NewNop()).Read("2025-03-10", "GGAL")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestDatesSortedNewestFirst(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewStore(tmpDir)

	ts := time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)
	for _, date := range []string{"2025-03-07", "2025-03-10", "2025-03-08"} {
		if err := store.Append(date, "GGAL", testRecord(ts, 100)); err != nil {
			t.Fatal(err)
		}
		if err := store.Commit(date); err != nil {
			t.Fatal(err)
		}
	}

	dates, err := NewReader(tmpDir, zap.NewNop()).Dates()
	if err != nil {
		t.Fatalf("Dates: %v", err)
	}

	want := []string{"2025-03-10", "2025-03-08", "2025-03-07"}
	if len(dates) != len(want) {
		t.Fatalf("dates = %v", dates)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Fatalf("dates = %v, want %v", dates, want)
		}
	}
}
