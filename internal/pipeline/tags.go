package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/nvoss/flacward/internal/report"
	"github.com/nvoss/flacward/internal/tagset"
)

// tagStage whitelist-filters the tag set on the produced copy. Dropping
// non-whitelisted keys is intentional data loss: exotic and malformed tag
// fields are exactly what hardware players choke on. This stage never
// fails the pipeline; individual tag writes are best-effort.
type tagStage struct {
	tc        Toolchain
	whitelist tagset.Whitelist
	log       *zap.Logger
}

func (s *tagStage) Name() string { return "clean-tags" }

func (s *tagStage) Run(ctx context.Context, fc *FileContext) Outcome {
	if !fc.CopyProduced {
		return Continue
	}

	if err := s.tc.RemoveAllTags(ctx, fc.Record.Output); err != nil {
		s.log.Debug("tag reset failed", zap.String("file", fc.Rel), zap.Error(err))
		return Continue
	}

	for _, e := range tagset.Filter(fc.TagExport, s.whitelist) {
		if err := s.tc.SetTag(ctx, fc.Record.Output, e.Key, e.Value); err != nil {
			s.log.Debug("tag write failed",
				zap.String("file", fc.Rel), zap.String("key", e.Key), zap.Error(err))
		}
	}

	fc.Record.AddAction(report.ActionTagsCleaned)
	return Continue
}
