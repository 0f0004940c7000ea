package pipeline

import (
	"context"

	"github.com/nvoss/flacward/internal/report"
)

// verifyStage re-runs the integrity test against the produced copy after
// all mutation on it is done. A produced-but-unverifiable copy is never
// silently accepted: verification failure outranks every prior state.
type verifyStage struct {
	tc Toolchain
}

func (s *verifyStage) Name() string { return "verify" }

func (s *verifyStage) Run(ctx context.Context, fc *FileContext) Outcome {
	if !fc.CopyProduced {
		return Continue
	}

	ok, diag := s.tc.IntegrityTest(ctx, fc.Record.Output)
	fc.VerifyOK = ok
	if ok {
		fc.Record.AddAction(report.ActionVerified)
	} else {
		fc.Record.AddAction(report.ActionVerifyFailed)
		if fc.Record.Reason == "" {
			fc.Record.Reason = firstLine(diag)
		}
	}
	return Continue
}
