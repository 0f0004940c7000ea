// Package scan walks a library root, feeds each container file through the
// audit pipeline, and serializes the results into the shared audit log.
// Files are independent: parallelism is bounded per-file, and cancellation
// is cooperative between files so the log stays consistent.
package scan

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nvoss/flacward/internal/config"
	"github.com/nvoss/flacward/internal/pipeline"
	"github.com/nvoss/flacward/internal/report"
)

// Scanner runs the per-file pipeline across a library.
type Scanner struct {
	cfg     *config.Config
	pipe    *pipeline.Pipeline
	log     *report.Log
	index   *report.Index // optional
	summary *report.Summary
	logger  *zap.Logger
}

// New assembles a scanner. index may be nil; logger may be nil.
func New(cfg *config.Config, tc pipeline.Toolchain, log *report.Log, index *report.Index,
	summary *report.Summary, logger *zap.Logger, inRoot, outRoot string) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		cfg:     cfg,
		pipe:    pipeline.New(cfg, tc, logger, inRoot, outRoot),
		log:     log,
		index:   index,
		summary: summary,
		logger:  logger,
	}
}

// Collect walks root and returns every container file, sorted for stable
// run order. Unreadable directory entries are skipped, not fatal: a scan
// over a half-broken library must still audit what it can reach.
func Collect(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if IsAudioFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// IsAudioFile reports whether path looks like a FLAC container by name.
func IsAudioFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".flac")
}

// Run processes the given files with at most cfg.Jobs pipelines in flight.
// Cancellation is checked before each file starts; a file already in flight
// finishes and its record is written. Returns ctx.Err when cancelled.
func (s *Scanner) Run(ctx context.Context, files []string) error {
	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Jobs)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			break
		}
		path := path
		g.Go(func() error {
			// The in-flight file runs to completion even on cancel;
			// only the per-tool timeout bounds it.
			s.Process(context.WithoutCancel(ctx), path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Process runs one file through the pipeline and appends its record to the
// log (and index, when configured). Record-append failures are the only
// errors surfaced loudly: a silent audit is worse than a stopped one.
func (s *Scanner) Process(ctx context.Context, path string) *report.Record {
	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}

	rec := s.pipe.Process(ctx, path)

	if err := s.log.Append(rec); err != nil {
		s.logger.Error("audit log append failed",
			zap.String("file", rec.Rel), zap.Error(err))
	}
	if s.index != nil {
		if err := s.index.Insert(ctx, rec); err != nil {
			s.logger.Warn("audit index insert failed",
				zap.String("file", rec.Rel), zap.Error(err))
		}
	}
	if s.summary != nil {
		s.summary.Add(rec, size)
	}

	if s.cfg.Verbose {
		s.logger.Info("processed",
			zap.String("file", rec.Rel),
			zap.String("status", string(rec.Status)),
			zap.String("actions", strings.Join(rec.Actions, ";")))
	}
	return rec
}
