package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nvoss/flacward/internal/config"
	"github.com/nvoss/flacward/internal/report"
	"github.com/nvoss/flacward/internal/scan"
	"github.com/nvoss/flacward/internal/tools"
)

var (
	flagConfig    string
	flagLogPath   string
	flagIndexPath string
	flagWhitelist string
	flagStripID3  bool
	flagRecover   bool
	flagForce     bool
	flagCleanTags bool
	flagArt       bool
	flagVerbose   bool
	flagJobs      int
)

func init() {
	rootCmd.AddCommand(scanCmd)
	addScanFlags(scanCmd)
}

// addScanFlags registers the shared scan/watch flag set.
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagConfig, "config", "", "Path to config YAML (default ~/.flacward/config.yaml)")
	cmd.Flags().StringVar(&flagLogPath, "log", "flacward-audit.csv", "Audit log path (appended, never truncated)")
	cmd.Flags().StringVar(&flagIndexPath, "index", "", "Optional sqlite index path for 'log query'")
	cmd.Flags().StringVar(&flagWhitelist, "whitelist", "", "Comma-separated tag whitelist override")
	cmd.Flags().BoolVar(&flagStripID3, "strip-id3", false, "Remove legacy ID3 blocks from originals in place")
	cmd.Flags().BoolVar(&flagRecover, "recover", false, "Re-encode files that fail the integrity test")
	cmd.Flags().BoolVar(&flagForce, "force", false, "Re-encode every file into canonical form")
	cmd.Flags().BoolVar(&flagCleanTags, "clean-tags", false, "Whitelist-filter tags on produced copies")
	cmd.Flags().BoolVar(&flagArt, "art", false, "Normalize embedded artwork on produced copies")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Per-file progress output")
	cmd.Flags().IntVarP(&flagJobs, "jobs", "j", 0, "Parallel file pipelines (default 1)")
}

var scanCmd = &cobra.Command{
	Use:   "scan <input-root> <output-root>",
	Short: "Audit a library once and exit",
	Long: "Walks the input root, audits every FLAC file, and appends one record\n" +
		"per file to the audit log. Repair flags write canonical copies under\n" +
		"the output root, mirroring the input layout. The original files are\n" +
		"only ever touched by --strip-id3.",
	Args: cobra.ExactArgs(2),
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	env, err := setupScan(args)
	if err != nil {
		return err
	}
	defer env.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	files, err := scan.Collect(env.inRoot)
	if err != nil {
		return fmt.Errorf("walk %s: %w", env.inRoot, err)
	}
	if len(files) == 0 {
		fmt.Println("no FLAC files found")
		return nil
	}

	if err := env.scanner.Run(ctx, files); err != nil {
		fmt.Fprintln(os.Stderr, "interrupted; partial results are in the log")
	}

	fmt.Print(env.summary.FormatText())
	return nil
}

// scanEnv bundles everything a scan or watch run needs, so both commands
// share one setup path.
type scanEnv struct {
	inRoot  string
	outRoot string
	cfg     *config.Config
	scanner *scan.Scanner
	summary *report.Summary
	log     *report.Log
	index   *report.Index
}

func setupScan(args []string) (*scanEnv, error) {
	inRoot, err := filepath.Abs(args[0])
	if err != nil {
		return nil, err
	}
	outRoot, err := filepath.Abs(args[1])
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(inRoot); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("input root is not a directory: %s", inRoot)
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	cfg.Stages.StripID3 = cfg.Stages.StripID3 || flagStripID3
	cfg.Stages.Recover = cfg.Stages.Recover || flagRecover
	cfg.Stages.Force = cfg.Stages.Force || flagForce
	cfg.Stages.CleanTags = cfg.Stages.CleanTags || flagCleanTags
	cfg.Stages.Artwork = cfg.Stages.Artwork || flagArt
	cfg.Verbose = cfg.Verbose || flagVerbose
	if flagJobs > 0 {
		cfg.Jobs = flagJobs
	}
	cfg.SetWhitelist(flagWhitelist)

	logger := newLogger(cfg.Verbose)

	auditLog, err := report.Open(flagLogPath)
	if err != nil {
		return nil, err
	}

	var index *report.Index
	if flagIndexPath != "" {
		index, err = report.OpenIndex(flagIndexPath)
		if err != nil {
			auditLog.Close()
			return nil, err
		}
	}

	summary := report.NewSummary()
	scanner := scan.New(cfg, tools.NewChain(cfg), auditLog, index, summary, logger, inRoot, outRoot)

	return &scanEnv{
		inRoot:  inRoot,
		outRoot: outRoot,
		cfg:     cfg,
		scanner: scanner,
		summary: summary,
		log:     auditLog,
		index:   index,
	}, nil
}

func (e *scanEnv) close() {
	if e.index != nil {
		e.index.Close()
	}
	e.log.Close()
}
