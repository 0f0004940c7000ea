// Package tools adapts the external FLAC toolchain (flac, metaflac, ffmpeg,
// ImageMagick) behind typed calls. Every invocation runs with a bounded
// timeout; expiry is reported as tool failure, never as a crash.
package tools

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// Invocation captures the outcome of one external command.
type Invocation struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error // start failure or timeout, nil for a normal exit
}

// OK reports whether the command ran and exited zero.
func (inv Invocation) OK() bool { return inv.Err == nil && inv.ExitCode == 0 }

// Combined returns stdout and stderr joined, trimmed.
func (inv Invocation) Combined() string {
	return strings.TrimSpace(inv.Stdout + "\n" + inv.Stderr)
}

// Runner executes external commands with a per-invocation timeout.
type Runner struct {
	Timeout time.Duration
}

// Run executes name with args, capturing both output streams.
// A non-zero exit is not an error; Err is set only when the process could
// not be started or the timeout expired.
func (r Runner) Run(ctx context.Context, name string, args ...string) Invocation {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	inv := Invocation{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err == nil {
		return inv
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		inv.ExitCode = exitErr.ExitCode()
		// Timeout kills the process; surface it as Err so callers can
		// distinguish "tool said no" from "tool never answered".
		if ctxErr := ctx.Err(); ctxErr != nil {
			inv.Err = ctxErr
		}
		return inv
	}

	inv.ExitCode = -1
	inv.Err = err
	return inv
}
