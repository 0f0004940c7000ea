package scan

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nvoss/flacward/internal/config"
	"github.com/nvoss/flacward/internal/report"
	"github.com/nvoss/flacward/internal/tools"
)

// brokenToolConfig points every binary at nothing: the probe tolerates a
// missing toolchain, so scans still classify (as FAIL) and log one record
// per file. Scan-level tests only care about the record plumbing.
func brokenToolConfig() *config.Config {
	cfg := config.Default()
	cfg.Tools = config.Tools{
		Flac:     "flacward-test-no-such-flac",
		Metaflac: "flacward-test-no-such-metaflac",
	}
	return cfg
}

func writeTree(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("fLaC"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func countRows(t *testing.T, path string) int {
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
	return len(rows)
}

func TestCollectFindsOnlyContainers(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"b/two.flac",
		"a/one.flac",
		"a/cover.jpg",
		"upper/THREE.FLAC",
		"notes.txt",
	)

	files, err := Collect(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 {
		t.Fatalf("found %d files: %v", len(files), files)
	}
	// Sorted for stable run order.
	if filepath.Base(files[0]) != "one.flac" || filepath.Base(files[1]) != "two.flac" {
		t.Fatalf("unexpected order: %v", files)
	}
}

func TestIsAudioFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"x.flac", true},
		{"x.FLAC", true},
		{"x.Flac", true},
		{"x.mp3", false},
		{"x.flac.bak", false},
		{"flac", false},
	}
	for _, tt := range tests {
		if got := IsAudioFile(tt.path); got != tt.want {
			t.Errorf("IsAudioFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func newTestScanner(t *testing.T, cfg *config.Config, inRoot, outRoot string) (*Scanner, string, *report.Summary) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "audit.csv")
	auditLog, err := report.Open(logPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { auditLog.Close() })

	summary := report.NewSummary()
	sc := New(cfg, tools.NewChain(cfg), auditLog, nil, summary, nil, inRoot, outRoot)
	return sc, logPath, summary
}

func TestRunAppendsOneRecordPerFile(t *testing.T) {
	inRoot := t.TempDir()
	writeTree(t, inRoot, "a.flac", "sub/b.flac", "sub/deep/c.flac")

	cfg := brokenToolConfig()
	cfg.Jobs = 2
	sc, logPath, summary := newTestScanner(t, cfg, inRoot, t.TempDir())

	files, err := Collect(inRoot)
	if err != nil {
		t.Fatal(err)
	}
	if err := sc.Run(context.Background(), files); err != nil {
		t.Fatal(err)
	}

	if got := countRows(t, logPath); got != 4 {
		t.Fatalf("log rows = %d, want header + 3", got)
	}
	if summary.Files() != 3 {
		t.Fatalf("summary files = %d", summary.Files())
	}
	// Broken toolchain means every file fails integrity, none gets a copy.
	if summary.Count(report.StatusFail) != 3 {
		t.Fatalf("FAIL count = %d", summary.Count(report.StatusFail))
	}
}

func TestCancelledContextStopsBeforeNextFile(t *testing.T) {
	inRoot := t.TempDir()
	writeTree(t, inRoot, "a.flac", "b.flac")

	sc, logPath, _ := newTestScanner(t, brokenToolConfig(), inRoot, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files, err := Collect(inRoot)
	if err != nil {
		t.Fatal(err)
	}
	if err := sc.Run(ctx, files); err == nil {
		t.Fatal("expected ctx error from cancelled run")
	}
	if got := countRows(t, logPath); got > 1 {
		t.Fatalf("cancelled before start must process nothing, got %d rows", got)
	}
}

func TestWatcherAuditsNewFiles(t *testing.T) {
	inRoot := t.TempDir()
	sc, logPath, summary := newTestScanner(t, brokenToolConfig(), inRoot, t.TempDir())

	w := NewWatcher(sc, inRoot, nil)
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Let the watcher register before dropping the file.
	time.Sleep(100 * time.Millisecond)
	writeTree(t, inRoot, "fresh.flac")

	deadline := time.After(5 * time.Second)
	for summary.Files() < 1 {
		select {
		case <-deadline:
			t.Fatal("watcher never processed the new file")
		case <-time.After(50 * time.Millisecond):
		}
	}

	cancel()
	<-done

	if got := countRows(t, logPath); got != 2 {
		t.Fatalf("log rows = %d, want header + 1", got)
	}
}
