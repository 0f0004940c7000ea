// Package config holds the runtime configuration for flacward: external
// tool locations, stage toggles, the tag whitelist, and resource limits.
// Configuration is loaded from YAML with built-in defaults; a missing file
// is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Tools names the external binaries the pipeline shells out to.
// Empty fallback or image tools disable the corresponding stage gracefully.
type Tools struct {
	Flac     string `yaml:"flac"`
	Metaflac string `yaml:"metaflac"`
	Ffmpeg   string `yaml:"ffmpeg"`
	Magick   string `yaml:"magick"`
}

// Stages enables or disables the optional pipeline stages.
type Stages struct {
	StripID3  bool `yaml:"strip_id3"`
	Recover   bool `yaml:"recover"`
	Force     bool `yaml:"force"`
	CleanTags bool `yaml:"clean_tags"`
	Artwork   bool `yaml:"artwork"`
}

// Artwork holds the normalization parameters for embedded images.
type Artwork struct {
	MaxDim  int `yaml:"max_dim"`
	Quality int `yaml:"quality"`
}

// Config is the full flacward configuration.
type Config struct {
	Tools        Tools         `yaml:"tools"`
	Stages       Stages        `yaml:"stages"`
	Artwork      Artwork       `yaml:"artwork"`
	TagWhitelist []string `yaml:"tag_whitelist"`
	ToolTimeout  Duration `yaml:"tool_timeout"`
	Jobs         int      `yaml:"jobs"`
	Verbose      bool     `yaml:"verbose"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "10m".
type Duration time.Duration

// UnmarshalYAML parses either a duration string or a bare number of seconds.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var secs int64
	if err := node.Decode(&secs); err != nil {
		return fmt.Errorf("invalid duration value")
	}
	*d = Duration(time.Duration(secs) * time.Second)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// DefaultWhitelist is the tag set known to be safe across hardware players.
// Everything outside it is dropped during tag sanitization.
var DefaultWhitelist = []string{
	"TITLE", "ARTIST", "ALBUM", "ALBUMARTIST",
	"TRACKNUMBER", "TRACKTOTAL", "DISCNUMBER", "DISCTOTAL",
	"DATE", "YEAR", "GENRE", "COMMENT",
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Tools: Tools{
			Flac:     "flac",
			Metaflac: "metaflac",
			Ffmpeg:   "ffmpeg",
			Magick:   "magick",
		},
		Artwork: Artwork{
			MaxDim:  1200,
			Quality: 85,
		},
		TagWhitelist: append([]string(nil), DefaultWhitelist...),
		ToolTimeout:  Duration(10 * time.Minute),
		Jobs:         1,
	}
}

// Load reads configuration from a YAML file. Empty path falls back to
// ~/.flacward/config.yaml. A missing file returns defaults; invalid YAML
// returns an error.
func Load(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Default(), nil
		}
		path = filepath.Join(home, ".flacward", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Start with defaults, YAML overwrites only specified fields.
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

// normalize clamps nonsensical values back to usable ones.
func (c *Config) normalize() {
	if c.Jobs < 1 {
		c.Jobs = 1
	}
	if c.ToolTimeout <= 0 {
		c.ToolTimeout = Duration(10 * time.Minute)
	}
	if c.Artwork.MaxDim <= 0 {
		c.Artwork.MaxDim = 1200
	}
	if c.Artwork.Quality <= 0 || c.Artwork.Quality > 100 {
		c.Artwork.Quality = 85
	}
	if len(c.TagWhitelist) == 0 {
		c.TagWhitelist = append([]string(nil), DefaultWhitelist...)
	}
	for i, k := range c.TagWhitelist {
		c.TagWhitelist[i] = strings.ToUpper(strings.TrimSpace(k))
	}
}

// SetWhitelist replaces the tag whitelist from a comma-separated override.
func (c *Config) SetWhitelist(csv string) {
	if strings.TrimSpace(csv) == "" {
		return
	}
	var keys []string
	for _, k := range strings.Split(csv, ",") {
		k = strings.ToUpper(strings.TrimSpace(k))
		if k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) > 0 {
		c.TagWhitelist = keys
	}
}
