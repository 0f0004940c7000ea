package report

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	source          TEXT NOT NULL,
	relative        TEXT NOT NULL,
	status          TEXT NOT NULL,
	reason          TEXT NOT NULL DEFAULT '',
	had_id3         INTEGER NOT NULL,
	has_image       INTEGER NOT NULL,
	channels        TEXT NOT NULL DEFAULT '',
	sample_rate     TEXT NOT NULL DEFAULT '',
	bits_per_sample TEXT NOT NULL DEFAULT '',
	total_samples   TEXT NOT NULL DEFAULT '',
	md5             TEXT NOT NULL DEFAULT '',
	actions         TEXT NOT NULL DEFAULT '',
	output          TEXT NOT NULL DEFAULT '',
	recorded_at     TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);
CREATE INDEX IF NOT EXISTS idx_records_status ON records(status);
CREATE INDEX IF NOT EXISTS idx_records_relative ON records(relative);
`

// Index is the optional sqlite mirror of the audit log. The CSV log remains
// the source of truth; index failures are reported but never fail a file.
type Index struct {
	db *sql.DB
}

// OpenIndex opens (or creates) the sqlite index at path.
func OpenIndex(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("report: open index: %w", err)
	}
	// Serialized writers; the pipeline may append from several goroutines.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("report: init index schema: %w", err)
	}
	return &Index{db: db}, nil
}

// Insert mirrors one record into the index.
func (ix *Index) Insert(ctx context.Context, r *Record) error {
	_, err := ix.db.ExecContext(ctx, `
		INSERT INTO records (source, relative, status, reason, had_id3, has_image,
			channels, sample_rate, bits_per_sample, total_samples, md5, actions, output)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Source, r.Rel, string(r.Status), r.Reason,
		boolInt(r.HadLegacyTag), boolInt(r.HasImage),
		r.Info.Channels, r.Info.SampleRate, r.Info.BitsPerSample,
		r.Info.TotalSamples, r.Info.MD5,
		strings.Join(r.Actions, ";"), r.Output)
	if err != nil {
		return fmt.Errorf("report: index insert: %w", err)
	}
	return nil
}

// Query returns up to limit records, newest first, optionally filtered by
// terminal status.
func (ix *Index) Query(ctx context.Context, status string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}

	q := `SELECT source, relative, status, reason, had_id3, has_image,
		channels, sample_rate, bits_per_sample, total_samples, md5, actions, output
		FROM records`
	var args []any
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, strings.ToUpper(status))
	}
	q += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := ix.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("report: index query: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var st string
		var hadID3, hasImage int
		var actions string
		if err := rows.Scan(&r.Source, &r.Rel, &st, &r.Reason, &hadID3, &hasImage,
			&r.Info.Channels, &r.Info.SampleRate, &r.Info.BitsPerSample,
			&r.Info.TotalSamples, &r.Info.MD5, &actions, &r.Output); err != nil {
			return nil, fmt.Errorf("report: index scan: %w", err)
		}
		r.Status = Status(st)
		r.HadLegacyTag = hadID3 != 0
		r.HasImage = hasImage != 0
		if actions != "" {
			r.Actions = strings.Split(actions, ";")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("report: index rows: %w", err)
	}
	return out, nil
}

// Close closes the index database.
func (ix *Index) Close() error { return ix.db.Close() }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
