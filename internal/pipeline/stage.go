// Package pipeline is the per-file audit-and-repair state machine: probe,
// optional container sanitize, optional decode/re-encode with fallback,
// optional tag and artwork sanitation on the produced copy, final verify,
// and terminal classification. Stages are pluggable and order-dependent;
// a disabled or skipped stage must never break a later stage's
// preconditions, and no path may finish a file without exactly one record.
package pipeline

import "context"

// Outcome tells the orchestrator whether to keep running stages.
type Outcome int

const (
	// Continue runs the next enabled stage.
	Continue Outcome = iota
	// Stop ends processing for this file; the record is still finalized.
	Stop
)

// Stage is one optional step of the per-file pipeline. Stages check their
// own preconditions and report Continue when they do not apply.
type Stage interface {
	Name() string
	Run(ctx context.Context, fc *FileContext) Outcome
}
