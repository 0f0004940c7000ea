// Package cli wires the flacward commands.
package cli

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var rootCmd = &cobra.Command{
	Use:   "flacward",
	Short: "Audit and repair FLAC libraries for hardware player compatibility",
	Long: "Audits FLAC files for structural defects that make hardware players\n" +
		"reject them — legacy ID3 blocks, broken stream markers, unverifiable\n" +
		"frames — and optionally repairs them into canonical, device-safe\n" +
		"copies. One audit record per file, appended to a resumable log.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the console logger. Verbose lowers the level to Debug;
// the default only surfaces warnings so scan output stays readable.
func newLogger(verbose bool) *zap.Logger {
	level := zap.WarnLevel
	if verbose {
		level = zap.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core)
}
