// Package probe inspects a container file without mutating it: header
// magic, structural stream info, legacy ID3 presence, and the integrity
// test. The probe must run on maximally broken input, so no operation here
// returns an error — unknowable facts come back false or empty.
package probe

import (
	"bytes"
	"context"
	"os"
)

// Inspector is the read-only slice of the toolchain the probe consumes.
type Inspector interface {
	IntegrityTest(ctx context.Context, path string) (ok bool, diagnostic string)
	ReadStructuralInfo(ctx context.Context, path string) string
	DetectLegacyTag(ctx context.Context, path string) bool
	HasPicture(path string) bool
}

// Result is the full probe outcome for one file.
type Result struct {
	HeaderOK     bool
	Info         StreamInfo
	HasLegacyTag bool
	HasPicture   bool
	IntegrityOK  bool
	Diagnostic   string
}

var (
	magicFLAC = []byte("fLaC")
	magicID3  = []byte("ID3")
)

// HeaderCheck reads the first four bytes of path. It reports whether the
// canonical magic is present and whether the file instead starts with a
// legacy ID3 tag. Open or short-read failures are "not canonical".
func HeaderCheck(path string) (canonical, leadingID3 bool) {
	f, err := os.Open(path)
	if err != nil {
		return false, false
	}
	defer f.Close()

	var head [4]byte
	if _, err := f.Read(head[:]); err != nil {
		return false, false
	}
	return bytes.Equal(head[:], magicFLAC), bytes.HasPrefix(head[:], magicID3)
}

// Run probes path and assembles the full result. Legacy presence is the OR
// of the block listing and a leading ID3 header, since some inspection-tool
// builds refuse ID3-prefixed files outright.
func Run(ctx context.Context, insp Inspector, path string) Result {
	var r Result

	var leadingID3 bool
	r.HeaderOK, leadingID3 = HeaderCheck(path)

	r.Info = ParseStreamInfo(insp.ReadStructuralInfo(ctx, path))
	r.HasLegacyTag = leadingID3 || insp.DetectLegacyTag(ctx, path)
	r.HasPicture = insp.HasPicture(path)
	r.IntegrityOK, r.Diagnostic = insp.IntegrityTest(ctx, path)

	return r
}
