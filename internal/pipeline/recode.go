package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/nvoss/flacward/internal/config"
	"github.com/nvoss/flacward/internal/report"
)

// recodeStage is the decode/re-encode engine. It runs when the
// configuration asks for a forced re-encode of every file, or for recovery
// and the file is currently failing integrity. Each step gates on the
// previous one; the scratch workspace is deleted by the orchestrator on
// every exit path.
type recodeStage struct {
	cfg *config.Config
	tc  Toolchain
	log *zap.Logger
}

func (s *recodeStage) Name() string { return "recode" }

func (s *recodeStage) Run(ctx context.Context, fc *FileContext) Outcome {
	wantsCopy := s.cfg.Stages.Force || (s.cfg.Stages.Recover && !fc.IntegrityOK)
	if !wantsCopy {
		return Continue
	}
	fc.WasFailing = !fc.IntegrityOK

	scratch, err := fc.Scratch()
	if err != nil {
		s.log.Debug("scratch workspace failed", zap.String("file", fc.Rel), zap.Error(err))
		fc.Record.AddAction(report.ActionReEncodeFailed)
		return Stop
	}

	// Export tags and artwork from the original before any audio mutation;
	// the later stages operate on the copy, which the encoder produces bare.
	if s.cfg.Stages.CleanTags || s.cfg.Stages.Artwork {
		s.exportAssets(fc, scratch)
	}

	raw := filepath.Join(scratch, "audio.wav")
	if err := s.decode(ctx, fc, raw); err != nil {
		fc.Record.AddAction(report.ActionDecodeFailed)
		fc.Record.Reason = err.Error()
		fc.DecodeExhausted = true
		return Stop
	}
	fc.Record.AddAction(report.ActionDecoded)

	out := fc.OutPath
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		fc.Record.AddAction(report.ActionReEncodeFailed)
		fc.Record.Reason = err.Error()
		return Stop
	}
	if err := s.tc.Encode(ctx, raw, out); err != nil {
		// A partial output must not survive: the invariant is that an
		// output file exists iff it passed re-encode.
		_ = os.Remove(out)
		fc.Record.AddAction(report.ActionReEncodeFailed)
		fc.Record.Reason = err.Error()
		return Stop
	}

	fc.Record.AddAction(report.ActionReEncoded)
	fc.Record.Output = out
	fc.CopyProduced = true
	return Continue
}

// decode runs the primary decoder, then the fallback tool if configured.
// A file that is currently failing integrity is decoded in salvage mode so
// partially broken input still yields usable samples.
func (s *recodeStage) decode(ctx context.Context, fc *FileContext, raw string) error {
	salvage := !fc.IntegrityOK
	err := s.tc.Decode(ctx, fc.Source, raw, salvage)
	if err == nil {
		return nil
	}
	s.log.Debug("primary decode failed", zap.String("file", fc.Rel), zap.Error(err))

	if !s.tc.HasFallbackDecoder() {
		return err
	}
	if err := s.tc.FallbackDecode(ctx, fc.Source, raw); err != nil {
		return err
	}
	fc.Record.AddAction(report.ActionDecodeFallback)
	return nil
}

// exportAssets snapshots the original's tag set and first picture into the
// scratch workspace. Export failures degrade to "nothing exported" — the
// probe already runs on maximally broken files, and so must this.
func (s *recodeStage) exportAssets(fc *FileContext, scratch string) {
	tags, err := s.tc.ExportTags(fc.Source)
	if err != nil {
		s.log.Debug("tag export failed", zap.String("file", fc.Rel), zap.Error(err))
	} else {
		fc.TagExport = tags
	}

	picPath := filepath.Join(scratch, "cover.orig")
	exported, err := s.tc.ExportPicture(fc.Source, picPath)
	if err != nil {
		s.log.Debug("picture export failed", zap.String("file", fc.Rel), zap.Error(err))
		return
	}
	if exported {
		fc.PicturePath = picPath
	}
}
