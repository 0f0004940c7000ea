package pipeline

import (
	"strings"

	"github.com/nvoss/flacward/internal/report"
)

// classify derives the terminal status from the stage outcome flags.
// Exactly one status per file; the mapping is total.
func classify(fc *FileContext) report.Status {
	switch {
	case fc.DecodeExhausted:
		return report.StatusRecoveryFailed
	case fc.CopyProduced && fc.VerifyOK:
		if fc.WasFailing {
			return report.StatusRecovered
		}
		return report.StatusNormalized
	case fc.CopyProduced:
		return report.StatusVerifyFailed
	case fc.IntegrityOK:
		return report.StatusOK
	default:
		return report.StatusFail
	}
}

// defaultReason fills the free-text reason for records whose stages did not
// set one. Failing files carry the first line of the integrity diagnostic.
func defaultReason(fc *FileContext, status report.Status) string {
	if fc.Record.Reason != "" {
		return fc.Record.Reason
	}
	switch status {
	case report.StatusFail:
		if line := firstLine(fc.Probe.Diagnostic); line != "" {
			return line
		}
		if !fc.Probe.HeaderOK {
			return "no canonical stream marker"
		}
		return "integrity test failed"
	case report.StatusVerifyFailed:
		return "produced copy failed integrity test"
	default:
		return ""
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
