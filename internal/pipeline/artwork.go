package pipeline

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/nvoss/flacward/internal/config"
	"github.com/nvoss/flacward/internal/report"
)

// artStage normalizes the exported artwork into a single baseline JPEG,
// capped on the longer side and never upscaled, and imports it as the sole
// picture block on the copy. With no exported picture the stage does
// nothing at all — no transcode, no import, no action token. On failure
// the copy keeps whatever picture state the encoder left (typically none);
// the pipeline is never failed from here.
type artStage struct {
	cfg *config.Config
	tc  Toolchain
	log *zap.Logger
}

func (s *artStage) Name() string { return "normalize-art" }

func (s *artStage) Run(ctx context.Context, fc *FileContext) Outcome {
	if !fc.CopyProduced || fc.PicturePath == "" || !s.tc.HasImageTool() {
		return Continue
	}

	jpg := filepath.Join(filepath.Dir(fc.PicturePath), "cover.jpg")
	if err := s.tc.TranscodeImage(ctx, fc.PicturePath, jpg,
		s.cfg.Artwork.MaxDim, s.cfg.Artwork.Quality); err != nil {
		s.log.Debug("artwork transcode failed", zap.String("file", fc.Rel), zap.Error(err))
		fc.Record.AddAction(report.ActionArtFailed)
		return Continue
	}

	if err := s.tc.RemovePictures(ctx, fc.Record.Output); err != nil {
		s.log.Debug("picture reset failed", zap.String("file", fc.Rel), zap.Error(err))
		fc.Record.AddAction(report.ActionArtFailed)
		return Continue
	}
	if err := s.tc.ImportPicture(ctx, fc.Record.Output, jpg); err != nil {
		s.log.Debug("picture import failed", zap.String("file", fc.Rel), zap.Error(err))
		fc.Record.AddAction(report.ActionArtFailed)
		return Continue
	}

	fc.Record.AddAction(report.ActionArtNormalized)
	return Continue
}
