package tools

import (
	"fmt"
	"os"

	"github.com/dhowden/tag"
)

// ExportTags reads the tag set of path without shelling out. Duplicate keys
// collapse to the last-seen value (map semantics); callers treating tags as
// multi-valued must not round-trip through this call.
func (c *Chain) ExportTags(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("export tags: %w", err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("export tags: %w", err)
	}

	out := make(map[string]string)
	for key, val := range m.Raw() {
		if s, ok := val.(string); ok {
			out[key] = s
		}
	}
	return out, nil
}

// ExportPicture writes the first embedded picture of srcPath to destPath.
// Only the lowest-indexed picture is ever extracted: hardware players
// misbehave with multiple embedded images, so one is all we carry forward.
// Returns false when the file has no embedded picture.
func (c *Chain) ExportPicture(srcPath, destPath string) (bool, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return false, fmt.Errorf("export picture: %w", err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return false, fmt.Errorf("export picture: %w", err)
	}

	pic := m.Picture()
	if pic == nil || len(pic.Data) == 0 {
		return false, nil
	}
	if err := os.WriteFile(destPath, pic.Data, 0o644); err != nil {
		return false, fmt.Errorf("export picture: %w", err)
	}
	return true, nil
}

// HasPicture reports whether path carries at least one embedded picture.
// Unreadable or foreign files count as pictureless.
func (c *Chain) HasPicture(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return false
	}
	return m.Picture() != nil
}
