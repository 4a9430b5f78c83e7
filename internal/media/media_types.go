package media

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed media_types.toml
var mediaTypesTOML []byte

type Type int

const (
	TypeUnknown Type = iota
	TypeVideo
	TypeAudio
	TypeImage
)

func (t Type) String() string {
	switch t {
	case TypeVideo:
		return "video"
	case TypeAudio:
		return "audio"
	case TypeImage:
		return "image"
	default:
		return "unknown"
	}
}

type TypeConfig struct {
	Extensions  []string `toml:"extensions"`
	URLPatterns []string `toml:"url_patterns"`
}

type TypesConfig struct {
	Video TypeConfig `toml:"video"`
	Audio TypeConfig `toml:"audio"`
	Image TypeConfig `toml:"image"`
}

type TypeDetector struct {
	config *TypesConfig
}

func NewTypeDetector() (*TypeDetector, error) {
	var config TypesConfig
	if err := toml.Unmarshal(mediaTypesTOML, &config); err != nil {
		return nil, fmt.Errorf("parsing media_types.toml: %w", err)
	}
	return &TypeDetector{config: &config}, nil
}

// DetectType classifies a URI by extension first, then by URL pattern.
func (d *TypeDetector) DetectType(uri string) Type {
	lower := strings.ToLower(uri)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}

	var ext string
	if slash := strings.LastIndex(lower, "/"); slash >= 0 {
		last := lower[slash+1:]
		if dot := strings.LastIndex(last, "."); dot >= 0 {
			ext = last[dot+1:]
		}
	}

	if ext != "" {
		switch {
		case contains(d.config.Video.Extensions, ext):
			return TypeVideo
		case contains(d.config.Audio.Extensions, ext):
			return TypeAudio
		case contains(d.config.Image.Extensions, ext):
			return TypeImage
		}
	}

	switch {
	case matchesPattern(lower, d.config.Video.URLPatterns):
		return TypeVideo
	case matchesPattern(lower, d.config.Audio.URLPatterns):
		return TypeAudio
	case matchesPattern(lower, d.config.Image.URLPatterns):
		return TypeImage
	}
	return TypeUnknown
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

func matchesPattern(uri string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(uri, pattern) {
			return true
		}
	}
	return false
}
