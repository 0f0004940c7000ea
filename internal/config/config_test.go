package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultsAreUsable(t *testing.T) {
	cfg := Default()

	if cfg.Tools.Flac == "" || cfg.Tools.Metaflac == "" {
		t.Fatal("default tool names must be set")
	}
	if cfg.Jobs != 1 {
		t.Fatalf("default jobs = %d, want 1", cfg.Jobs)
	}
	if cfg.ToolTimeout.Std() != 10*time.Minute {
		t.Fatalf("default timeout = %v, want 10m", cfg.ToolTimeout.Std())
	}
	if len(cfg.TagWhitelist) == 0 {
		t.Fatal("default whitelist must not be empty")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Tools.Flac != "flac" {
		t.Fatalf("expected defaults, got flac=%q", cfg.Tools.Flac)
	}
}

func TestLoadOverlaysOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
tools:
  flac: /opt/flac/bin/flac
tool_timeout: 30s
jobs: 4
tag_whitelist: [title, artist]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Tools.Flac != "/opt/flac/bin/flac" {
		t.Fatalf("flac = %q", cfg.Tools.Flac)
	}
	// Unspecified fields keep their defaults.
	if cfg.Tools.Metaflac != "metaflac" {
		t.Fatalf("metaflac = %q, want default", cfg.Tools.Metaflac)
	}
	if cfg.ToolTimeout.Std() != 30*time.Second {
		t.Fatalf("timeout = %v, want 30s", cfg.ToolTimeout.Std())
	}
	if cfg.Jobs != 4 {
		t.Fatalf("jobs = %d, want 4", cfg.Jobs)
	}
	// Whitelist entries normalize to upper case.
	if cfg.TagWhitelist[0] != "TITLE" || cfg.TagWhitelist[1] != "ARTIST" {
		t.Fatalf("whitelist = %v", cfg.TagWhitelist)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("tools: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSetWhitelist(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want []string
	}{
		{"override", "title, genre ,COMMENT", []string{"TITLE", "GENRE", "COMMENT"}},
		{"empty keeps default", "", DefaultWhitelist},
		{"blank entries dropped", " , title,", []string{"TITLE"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.SetWhitelist(tt.csv)
			if len(cfg.TagWhitelist) != len(tt.want) {
				t.Fatalf("whitelist = %v, want %v", cfg.TagWhitelist, tt.want)
			}
			for i := range tt.want {
				if cfg.TagWhitelist[i] != tt.want[i] {
					t.Fatalf("whitelist[%d] = %q, want %q", i, cfg.TagWhitelist[i], tt.want[i])
				}
			}
		})
	}
}

func TestNormalizeClampsNonsense(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
jobs: -3
artwork:
  max_dim: 0
  quality: 400
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Jobs != 1 {
		t.Fatalf("jobs = %d, want clamp to 1", cfg.Jobs)
	}
	if cfg.Artwork.MaxDim != 1200 || cfg.Artwork.Quality != 85 {
		t.Fatalf("artwork = %+v, want defaults restored", cfg.Artwork)
	}
}
