package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nvoss/flacward/internal/scan"
)

func init() {
	rootCmd.AddCommand(watchCmd)
	addScanFlags(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch <input-root> <output-root>",
	Short: "Audit files continuously as they arrive",
	Long: "Watches the input root for new FLAC files and runs each through the\n" +
		"audit pipeline as it settles. Same flags and log contract as scan.\n" +
		"Stops on SIGINT/SIGTERM, finishing files already in flight.",
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	env, err := setupScan(args)
	if err != nil {
		return err
	}
	defer env.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := scan.NewWatcher(env.scanner, env.inRoot, newLogger(env.cfg.Verbose))
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	fmt.Print(env.summary.FormatText())
	return nil
}
