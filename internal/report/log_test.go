package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nvoss/flacward/internal/probe"
)

func testRecord(rel string, status Status) *Record {
	return &Record{
		Source:       "/music/" + rel,
		Rel:          rel,
		Status:       status,
		Reason:       "",
		HadLegacyTag: false,
		HasImage:     true,
		Info: probe.StreamInfo{
			Channels:      "2",
			SampleRate:    "44100",
			BitsPerSample: "16",
			TotalSamples:  "1000",
			MD5:           "abc",
		},
		Actions: []string{ActionReEncoded, ActionVerified},
	}
}

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestHeaderWrittenOnlyForNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")

	l, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Append(testRecord("a.flac", StatusOK)); err != nil {
		t.Fatal(err)
	}
	l.Close()

	// Reopen and append: no second header, prior rows intact.
	l, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Append(testRecord("b.flac", StatusFail)); err != nil {
		t.Fatal(err)
	}
	l.Close()

	rows := readAll(t, path)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "source" {
		t.Fatalf("first row is not the header: %v", rows[0])
	}
	for _, row := range rows[1:] {
		if row[0] == "source" {
			t.Fatal("duplicate header row after reopen")
		}
	}
}

func TestRowFieldOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	l, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	rec := testRecord("x/y.flac", StatusNormalized)
	rec.Output = "/out/x/y.flac"
	if err := l.Append(rec); err != nil {
		t.Fatal(err)
	}
	l.Close()

	rows := readAll(t, path)
	row := rows[1]
	want := []string{
		"/music/x/y.flac", "x/y.flac", "NORMALIZED", "",
		"false", "true",
		"2", "44100", "16", "1000", "abc",
		"ReEncoded;Verified", "/out/x/y.flac",
	}
	if len(row) != len(want) {
		t.Fatalf("field count = %d, want %d", len(row), len(want))
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("field %d = %q, want %q", i, row[i], want[i])
		}
	}
}

func TestReasonQuotingSurvivesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	l, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	rec := testRecord("weird.flac", StatusFail)
	rec.Reason = `decoder said "lost sync", gave up`
	if err := l.Append(rec); err != nil {
		t.Fatal(err)
	}
	l.Close()

	rows := readAll(t, path)
	if got := rows[1][3]; got != rec.Reason {
		t.Fatalf("reason = %q, want %q", got, rec.Reason)
	}
}

func TestConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	l, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			rec := testRecord(strings.Repeat("x", n%5)+".flac", StatusOK)
			if err := l.Append(rec); err != nil {
				t.Errorf("append: %v", err)
			}
		}(i)
	}
	wg.Wait()
	l.Close()

	rows := readAll(t, path)
	if len(rows) != 21 {
		t.Fatalf("rows = %d, want header + 20", len(rows))
	}
}
