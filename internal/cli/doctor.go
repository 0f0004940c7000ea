package cli

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/nvoss/flacward/internal/config"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().StringVar(&flagConfig, "config", "", "Path to config YAML")
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the external toolchain is available",
	RunE:  runDoctor,
}

type checkResult struct {
	label    string
	ok       bool
	detail   string
	required bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	checks := []checkResult{
		lookPath("decoder/encoder", cfg.Tools.Flac, true),
		lookPath("container inspector", cfg.Tools.Metaflac, true),
		lookPath("fallback decoder", cfg.Tools.Ffmpeg, false),
		lookPath("image transcoder", cfg.Tools.Magick, false),
	}

	failed := false
	for _, c := range checks {
		mark := "OK  "
		if !c.ok {
			if c.required {
				mark = "FAIL"
				failed = true
			} else {
				mark = "WARN"
			}
		}
		fmt.Printf("  %s  %-20s %s\n", mark, c.label, c.detail)
	}

	if failed {
		fmt.Fprintln(os.Stderr, "\nrequired tools missing; set paths in the config file")
		os.Exit(1)
	}
	return nil
}

func lookPath(label, bin string, required bool) checkResult {
	if bin == "" {
		return checkResult{label: label, ok: false, detail: "not configured", required: required}
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return checkResult{label: label, ok: false, detail: bin + " not found in PATH", required: required}
	}
	return checkResult{label: label, ok: true, detail: path, required: required}
}
