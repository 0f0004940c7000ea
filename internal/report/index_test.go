package report

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestIndexInsertAndQuery(t *testing.T) {
	ix, err := OpenIndex(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer ix.Close()

	ctx := context.Background()
	for _, st := range []Status{StatusOK, StatusFail, StatusRecovered, StatusOK} {
		if err := ix.Insert(ctx, testRecord("f.flac", st)); err != nil {
			t.Fatal(err)
		}
	}

	all, err := ix.Query(ctx, "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Fatalf("all = %d records, want 4", len(all))
	}

	oks, err := ix.Query(ctx, "ok", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(oks) != 2 {
		t.Fatalf("OK records = %d, want 2", len(oks))
	}
	for _, r := range oks {
		if r.Status != StatusOK {
			t.Fatalf("status filter leaked %s", r.Status)
		}
	}

	// Round-trip fidelity for the typed fields.
	r := all[0]
	if r.Info.SampleRate != "44100" || !r.HasImage || len(r.Actions) != 2 {
		t.Fatalf("round-trip mismatch: %+v", r)
	}
}

func TestIndexQueryLimit(t *testing.T) {
	ix, err := OpenIndex(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer ix.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := ix.Insert(ctx, testRecord("f.flac", StatusOK)); err != nil {
			t.Fatal(err)
		}
	}
	got, err := ix.Query(ctx, "", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("limit ignored: %d records", len(got))
	}
}

func TestSummaryCountsAndLegend(t *testing.T) {
	s := NewSummary()
	s.Add(testRecord("a.flac", StatusOK), 100)
	s.Add(testRecord("b.flac", StatusRecovered), 200)
	s.Add(testRecord("c.flac", StatusOK), 0)

	if s.Files() != 3 {
		t.Fatalf("Files = %d", s.Files())
	}
	if s.Count(StatusOK) != 2 || s.Count(StatusRecovered) != 1 {
		t.Fatal("per-status counts wrong")
	}

	text := s.FormatText()
	for _, st := range Statuses {
		if !strings.Contains(text, string(st.Status)) {
			t.Errorf("summary missing status %s legend", st.Status)
		}
	}
}
