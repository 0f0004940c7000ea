package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/nvoss/flacward/internal/report"
)

// sanitizeStage strips the legacy ID3 block from the original file in
// place. Destructive: no backup is taken, the container tool rewrites the
// file directly. Failure is non-fatal — the flag stays set and processing
// continues.
type sanitizeStage struct {
	tc  Toolchain
	log *zap.Logger
}

func (s *sanitizeStage) Name() string { return "sanitize-container" }

func (s *sanitizeStage) Run(ctx context.Context, fc *FileContext) Outcome {
	if !fc.Record.HadLegacyTag {
		return Continue
	}

	if err := s.tc.RemoveLegacyTag(ctx, fc.Source); err != nil {
		s.log.Debug("legacy tag removal failed",
			zap.String("file", fc.Rel), zap.Error(err))
		fc.Record.AddAction(report.ActionStripID3Failed)
		return Continue
	}

	// The record reflects the post-sanitize state: the block is gone.
	fc.Record.HadLegacyTag = false
	fc.Record.AddAction(report.ActionStrippedID3)

	// Refresh the pass/fail state used by the recode decision.
	fc.IntegrityOK, _ = s.tc.IntegrityTest(ctx, fc.Source)
	return Continue
}
