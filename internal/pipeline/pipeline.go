package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nvoss/flacward/internal/config"
	"github.com/nvoss/flacward/internal/probe"
	"github.com/nvoss/flacward/internal/report"
	"github.com/nvoss/flacward/internal/tagset"
)

// Pipeline runs the audit-and-repair state machine for one file at a time.
// The enabled stages are fixed at construction; per-file state lives in a
// FileContext that is torn down before Process returns.
type Pipeline struct {
	cfg     *config.Config
	tc      Toolchain
	log     *zap.Logger
	inRoot  string
	outRoot string
	stages  []Stage
}

// New builds a pipeline over the given toolchain and roots. Only enabled
// stages enter the stage list; verify always runs last so a produced copy
// can never dodge its final integrity test.
func New(cfg *config.Config, tc Toolchain, logger *zap.Logger, inRoot, outRoot string) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pipeline{
		cfg:     cfg,
		tc:      tc,
		log:     logger,
		inRoot:  inRoot,
		outRoot: outRoot,
	}

	if cfg.Stages.StripID3 {
		p.stages = append(p.stages, &sanitizeStage{tc: tc, log: logger})
	}
	if cfg.Stages.Force || cfg.Stages.Recover {
		p.stages = append(p.stages, &recodeStage{cfg: cfg, tc: tc, log: logger})
	}
	if cfg.Stages.CleanTags {
		p.stages = append(p.stages, &tagStage{
			tc:        tc,
			whitelist: tagset.NewWhitelist(cfg.TagWhitelist),
			log:       logger,
		})
	}
	if cfg.Stages.Artwork {
		p.stages = append(p.stages, &artStage{cfg: cfg, tc: tc, log: logger})
	}
	p.stages = append(p.stages, &verifyStage{tc: tc})

	return p
}

// Process audits (and optionally repairs) one file and returns its
// finalized record. It never returns an error and never panics across the
// boundary: whatever happens inside a stage is folded into the record, so
// the caller can always write exactly one log line per input.
func (p *Pipeline) Process(ctx context.Context, src string) *report.Record {
	rel, err := filepath.Rel(p.inRoot, src)
	if err != nil || rel == "." {
		rel = filepath.Base(src)
	}

	rec := &report.Record{
		Source:  src,
		Rel:     rel,
		TraceID: uuid.NewString(),
	}
	fc := &FileContext{
		Source:  src,
		Rel:     rel,
		OutPath: filepath.Join(p.outRoot, rel),
		Record:  rec,
	}
	defer fc.Cleanup()

	p.runStages(ctx, fc)

	status := classify(fc)
	rec.Status = status
	rec.Reason = defaultReason(fc, status)

	// Only a verified copy earns an output path in the record.
	if status != report.StatusRecovered && status != report.StatusNormalized {
		rec.Output = ""
	}
	return rec
}

// runStages probes the file and walks the enabled stages. A panic inside a
// stage is converted into record state instead of escaping: the one-record-
// per-file contract outranks any individual stage failure.
func (p *Pipeline) runStages(ctx context.Context, fc *FileContext) {
	defer func() {
		if r := recover(); r != nil {
			fc.Record.Reason = fmt.Sprintf("internal error: %v", r)
			fc.CopyProduced = false
			p.log.Error("stage panic", zap.String("file", fc.Rel), zap.Any("panic", r))
		}
	}()

	pr := probe.Run(ctx, p.tc, fc.Source)
	fc.Probe = pr
	fc.IntegrityOK = pr.IntegrityOK
	fc.Record.HadLegacyTag = pr.HasLegacyTag
	fc.Record.HasImage = pr.HasPicture
	fc.Record.Info = pr.Info

	for _, st := range p.stages {
		p.log.Debug("stage", zap.String("file", fc.Rel), zap.String("name", st.Name()))
		if st.Run(ctx, fc) == Stop {
			return
		}
	}
}
