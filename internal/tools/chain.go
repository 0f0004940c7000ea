package tools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/nvoss/flacward/internal/config"
)

// Chain is the concrete toolchain backed by the flac, metaflac, ffmpeg and
// ImageMagick binaries. Mutating operations go through the external tools;
// the read side (tags, pictures) is pure Go, see reader.go.
type Chain struct {
	bins config.Tools
	run  Runner
}

// NewChain builds a toolchain from configuration.
func NewChain(cfg *config.Config) *Chain {
	return &Chain{
		bins: cfg.Tools,
		run:  Runner{Timeout: cfg.ToolTimeout.Std()},
	}
}

// HasFallbackDecoder reports whether a fallback decode tool is configured.
func (c *Chain) HasFallbackDecoder() bool { return c.bins.Ffmpeg != "" }

// HasImageTool reports whether an artwork transcoding tool is configured.
func (c *Chain) HasImageTool() bool { return c.bins.Magick != "" }

// IntegrityTest runs the container integrity test in quiet mode.
// Success is defined solely by exit status zero.
func (c *Chain) IntegrityTest(ctx context.Context, path string) (bool, string) {
	inv := c.run.Run(ctx, c.bins.Flac, "-t", "-s", path)
	return inv.OK(), inv.Combined()
}

// ReadStructuralInfo dumps the structural-info block as free-form text.
// Failures surface as empty text; the probe tolerates missing fields.
func (c *Chain) ReadStructuralInfo(ctx context.Context, path string) string {
	inv := c.run.Run(ctx, c.bins.Metaflac, "--list", "--block-type=STREAMINFO", path)
	return inv.Combined()
}

// DetectLegacyTag reports whether an embedded ID3 block is present.
// The marker is accepted from either output stream: some metaflac versions
// print the block listing on stdout, others complain on stderr.
func (c *Chain) DetectLegacyTag(ctx context.Context, path string) bool {
	inv := c.run.Run(ctx, c.bins.Metaflac, "--list", "--block-type=ID3", path)
	return strings.Contains(inv.Stdout, "ID3") || strings.Contains(inv.Stderr, "ID3")
}

// RemoveLegacyTag strips ID3 blocks from the file in place.
func (c *Chain) RemoveLegacyTag(ctx context.Context, path string) error {
	inv := c.run.Run(ctx, c.bins.Metaflac, "--remove", "--block-type=ID3", "--dont-use-padding", path)
	if !inv.OK() {
		return toolErr("metaflac --remove", inv)
	}
	return nil
}

// Decode decodes path to a raw WAV at outRaw, overwriting any previous
// attempt. With salvage set, the decoder is told to keep going past data
// errors so a partially broken file still yields usable samples.
func (c *Chain) Decode(ctx context.Context, path, outRaw string, salvage bool) error {
	args := []string{"-d", "-f", "-s"}
	if salvage {
		args = append(args, "-F")
	}
	args = append(args, "-o", outRaw, path)
	inv := c.run.Run(ctx, c.bins.Flac, args...)
	if !inv.OK() {
		return toolErr("flac -d", inv)
	}
	if _, err := os.Stat(outRaw); err != nil {
		return fmt.Errorf("flac -d: no output produced")
	}
	return nil
}

// FallbackDecode is the best-effort second chance: map only the first audio
// stream and ignore internal decoder errors.
func (c *Chain) FallbackDecode(ctx context.Context, path, outRaw string) error {
	inv := c.run.Run(ctx, c.bins.Ffmpeg,
		"-y", "-nostdin", "-hide_banner", "-loglevel", "error",
		"-err_detect", "ignore_err",
		"-i", path, "-map", "0:a:0", outRaw)
	if !inv.OK() {
		return toolErr("ffmpeg", inv)
	}
	if _, err := os.Stat(outRaw); err != nil {
		return fmt.Errorf("ffmpeg: no output produced")
	}
	return nil
}

// Encode re-encodes raw audio into a canonical container at maximum
// compression with the encoder's built-in verification enabled.
func (c *Chain) Encode(ctx context.Context, rawPath, outPath string) error {
	inv := c.run.Run(ctx, c.bins.Flac, "-8", "-V", "-f", "-s", "-o", outPath, rawPath)
	if !inv.OK() {
		return toolErr("flac -8 -V", inv)
	}
	return nil
}

// RemoveAllTags clears the vorbis comment block on path.
func (c *Chain) RemoveAllTags(ctx context.Context, path string) error {
	inv := c.run.Run(ctx, c.bins.Metaflac, "--remove-all-tags", path)
	if !inv.OK() {
		return toolErr("metaflac --remove-all-tags", inv)
	}
	return nil
}

// SetTag writes a single key=value tag on path.
func (c *Chain) SetTag(ctx context.Context, path, key, value string) error {
	inv := c.run.Run(ctx, c.bins.Metaflac, fmt.Sprintf("--set-tag=%s=%s", key, value), path)
	if !inv.OK() {
		return toolErr("metaflac --set-tag", inv)
	}
	return nil
}

// RemovePictures strips every picture block from path.
func (c *Chain) RemovePictures(ctx context.Context, path string) error {
	inv := c.run.Run(ctx, c.bins.Metaflac, "--remove", "--block-type=PICTURE", "--dont-use-padding", path)
	if !inv.OK() {
		return toolErr("metaflac --remove PICTURE", inv)
	}
	return nil
}

// ImportPicture embeds imagePath into path as the front-cover picture block.
func (c *Chain) ImportPicture(ctx context.Context, path, imagePath string) error {
	spec := fmt.Sprintf("3||||%s", imagePath)
	inv := c.run.Run(ctx, c.bins.Metaflac, "--import-picture-from="+spec, path)
	if !inv.OK() {
		return toolErr("metaflac --import-picture-from", inv)
	}
	return nil
}

// TranscodeImage rewrites srcPath as a baseline JPEG at destPath, capped at
// maxDim pixels on the longer side. The ">" resize suffix shrinks only —
// small images are never upscaled.
func (c *Chain) TranscodeImage(ctx context.Context, srcPath, destPath string, maxDim, quality int) error {
	geometry := fmt.Sprintf("%dx%d>", maxDim, maxDim)
	inv := c.run.Run(ctx, c.bins.Magick, srcPath,
		"-auto-orient", "-strip",
		"-resize", geometry,
		"-quality", fmt.Sprintf("%d", quality),
		destPath)
	if !inv.OK() {
		return toolErr("magick", inv)
	}
	return nil
}

// toolErr folds an invocation into a compact error, preferring stderr.
func toolErr(what string, inv Invocation) error {
	if inv.Err != nil {
		return fmt.Errorf("%s: %w", what, inv.Err)
	}
	detail := strings.TrimSpace(inv.Stderr)
	if detail == "" {
		detail = strings.TrimSpace(inv.Stdout)
	}
	if detail == "" {
		return fmt.Errorf("%s: exit %d", what, inv.ExitCode)
	}
	return fmt.Errorf("%s: exit %d: %s", what, inv.ExitCode, firstLine(detail))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
