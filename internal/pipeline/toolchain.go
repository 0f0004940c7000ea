package pipeline

import (
	"context"

	"github.com/nvoss/flacward/internal/probe"
)

// Toolchain is everything the pipeline consumes from the external audio and
// image tools. The core never sees argument shapes or raw process output —
// only typed results. tools.Chain is the production implementation; tests
// substitute fakes.
type Toolchain interface {
	probe.Inspector

	// Container mutation (in place, on the original).
	RemoveLegacyTag(ctx context.Context, path string) error

	// Decode / re-encode.
	Decode(ctx context.Context, path, outRaw string, salvage bool) error
	HasFallbackDecoder() bool
	FallbackDecode(ctx context.Context, path, outRaw string) error
	Encode(ctx context.Context, rawPath, outPath string) error

	// Tag surgery (read side on the original, write side on the copy).
	ExportTags(path string) (map[string]string, error)
	RemoveAllTags(ctx context.Context, path string) error
	SetTag(ctx context.Context, path, key, value string) error

	// Picture surgery.
	ExportPicture(srcPath, destPath string) (exported bool, err error)
	RemovePictures(ctx context.Context, path string) error
	ImportPicture(ctx context.Context, path, imagePath string) error
	HasImageTool() bool
	TranscodeImage(ctx context.Context, srcPath, destPath string, maxDim, quality int) error
}
