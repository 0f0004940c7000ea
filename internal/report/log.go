package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// header is written once, only when the log file does not exist yet.
// A pre-existing log is never truncated: appends accumulate across runs so
// a library can be audited incrementally.
var header = []string{
	"source", "relative", "status", "reason",
	"had_id3", "has_image",
	"channels", "sample_rate", "bits_per_sample", "total_samples", "md5",
	"actions", "output",
}

// Log is the append-only CSV audit log. Append is mutex-serialized so
// parallel file pipelines can share one log.
type Log struct {
	mu   sync.Mutex
	file *os.File
	w    *csv.Writer
}

// Open opens (or creates) the audit log for appending. The header row is
// written only when the file is new or empty.
func Open(path string) (*Log, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("report: create log directory: %w", err)
		}
	}

	needHeader := true
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		needHeader = false
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("report: open log: %w", err)
	}

	l := &Log{file: file, w: csv.NewWriter(file)}
	if needHeader {
		if err := l.w.Write(header); err != nil {
			file.Close()
			return nil, fmt.Errorf("report: write header: %w", err)
		}
		l.w.Flush()
		if err := l.w.Error(); err != nil {
			file.Close()
			return nil, fmt.Errorf("report: write header: %w", err)
		}
	}
	return l, nil
}

// Append writes one record and syncs it to disk. Exactly one row per input
// file, on every exit path, is the pipeline's contract with this log.
func (l *Log) Append(r *Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.w.Write(row(r)); err != nil {
		return fmt.Errorf("report: append: %w", err)
	}
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return fmt.Errorf("report: append: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("report: sync: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Flush()
	return l.file.Close()
}

// row serializes a record into its CSV fields. All quoting and escaping
// lives in the csv writer; nothing here concatenates field text by hand.
func row(r *Record) []string {
	return []string{
		r.Source,
		r.Rel,
		string(r.Status),
		r.Reason,
		strconv.FormatBool(r.HadLegacyTag),
		strconv.FormatBool(r.HasImage),
		r.Info.Channels,
		r.Info.SampleRate,
		r.Info.BitsPerSample,
		r.Info.TotalSamples,
		r.Info.MD5,
		strings.Join(r.Actions, ";"),
		r.Output,
	}
}
