package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvoss/flacward/internal/probe"
	"github.com/nvoss/flacward/internal/report"
)

// FileContext is the shared per-file state threaded through the stages.
// It exists for exactly one input file and is torn down, scratch workspace
// included, before the next file starts.
type FileContext struct {
	Source  string // absolute input path
	Rel     string // path relative to the scan root
	OutPath string // mirrored path under the output root

	Probe       probe.Result
	IntegrityOK bool // current state; refreshed after container sanitize

	Record *report.Record

	// Recode outcome flags consumed by the classifier.
	WasFailing      bool // integrity state when the recode decision was made
	CopyProduced    bool
	VerifyOK        bool // meaningful only when CopyProduced
	DecodeExhausted bool

	// Scratch assets exported from the original before any mutation.
	scratch     string
	TagExport   map[string]string
	PicturePath string // "" when the source had no embedded picture
}

// Scratch returns this file's isolated scratch workspace, creating it on
// first use. The directory name carries the trace ID so a crashed run can
// be matched back to its log line.
func (fc *FileContext) Scratch() (string, error) {
	if fc.scratch != "" {
		return fc.scratch, nil
	}
	dir := filepath.Join(os.TempDir(), "flacward-"+fc.Record.TraceID)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create scratch workspace: %w", err)
	}
	fc.scratch = dir
	return dir, nil
}

// Cleanup removes the scratch workspace. Called on every exit path; safe
// when no workspace was ever created.
func (fc *FileContext) Cleanup() {
	if fc.scratch != "" {
		_ = os.RemoveAll(fc.scratch)
		fc.scratch = ""
	}
}
