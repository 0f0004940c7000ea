// Package report owns the audit trail: one immutable record per processed
// file, appended to a CSV log that survives across runs, optionally mirrored
// into a sqlite index for querying.
package report

import "github.com/nvoss/flacward/internal/probe"

// Status is the terminal classification of one processed file.
type Status string

const (
	// StatusOK: passed integrity, no copy requested.
	StatusOK Status = "OK"
	// StatusFail: failed integrity, no copy requested or applicable.
	StatusFail Status = "FAIL"
	// StatusRecovered: was failing, copy produced and verified.
	StatusRecovered Status = "RECOVERED"
	// StatusNormalized: was passing, copy produced and verified.
	StatusNormalized Status = "NORMALIZED"
	// StatusVerifyFailed: copy produced but failed final verification.
	StatusVerifyFailed Status = "VERIFY_FAILED"
	// StatusRecoveryFailed: decode exhausted all fallbacks.
	StatusRecoveryFailed Status = "RECOVERY_FAILED"
)

// Statuses lists every terminal status with its meaning, in the order the
// end-of-run summary prints them.
var Statuses = []struct {
	Status  Status
	Meaning string
}{
	{StatusOK, "passed integrity test, no copy requested"},
	{StatusFail, "failed integrity test, no copy produced"},
	{StatusRecovered, "was failing, repaired copy produced and verified"},
	{StatusNormalized, "was passing, canonical copy produced and verified"},
	{StatusVerifyFailed, "copy produced but failed final verification"},
	{StatusRecoveryFailed, "decode failed through all fallbacks, no copy"},
}

// Record is the audit record for one input file. It is created when
// processing starts and finalized exactly once, whatever path processing
// takes. Output is non-empty iff a copy was produced and passed re-encode.
type Record struct {
	Source       string
	Rel          string
	Status       Status
	Reason       string
	HadLegacyTag bool
	HasImage     bool
	Info         probe.StreamInfo
	Actions      []string
	Output       string

	// TraceID names this file's processing run in logs and scratch paths.
	// It is not part of the persisted row.
	TraceID string
}

// AddAction appends one action token to the audit trail.
func (r *Record) AddAction(token string) {
	r.Actions = append(r.Actions, token)
}

// Action tokens recorded by the pipeline stages.
const (
	ActionStrippedID3    = "StrippedID3"
	ActionStripID3Failed = "StripID3Failed"
	ActionDecoded        = "Decoded"
	ActionDecodeFallback = "DecodeFallback"
	ActionDecodeFailed   = "DecodeFailed"
	ActionReEncoded      = "ReEncoded"
	ActionReEncodeFailed = "ReEncodeFailed"
	ActionTagsCleaned    = "TagsCleaned"
	ActionArtNormalized  = "ArtNormalized"
	ActionArtFailed      = "ArtFailed"
	ActionVerified       = "Verified"
	ActionVerifyFailed   = "VerifyFailed"
)
