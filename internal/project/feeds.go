package project

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/partcam/internal/cam"
)

// FeedEntry is one row of the feed table: cutting parameters for a
// single tool on a single material. Zero fields keep the tool default.
type FeedEntry struct {
	Feed   float64 `yaml:"feed"`
	Plunge float64 `yaml:"plunge"`
	RPM    float64 `yaml:"rpm"`
}

// FeedTable maps material name and tool number to feed overrides.
// Lookup consults Materials first, then Defaults; a complete miss
// leaves the tool's built-in parameters in effect.
type FeedTable struct {
	Materials map[string]map[int]FeedEntry `yaml:"materials"`
	Defaults  map[int]FeedEntry            `yaml:"defaults,omitempty"`
}

// Lookup resolves the feed override for a tool on a material. It
// implements the feed source the toolpath synthesizer consumes.
func (ft FeedTable) Lookup(material string, toolNumber int) (cam.FeedParams, bool) {
	if tools, ok := ft.Materials[material]; ok {
		if e, ok := tools[toolNumber]; ok {
			return cam.FeedParams{Feed: e.Feed, Plunge: e.Plunge, RPM: e.RPM}, true
		}
	}
	if e, ok := ft.Defaults[toolNumber]; ok {
		return cam.FeedParams{Feed: e.Feed, Plunge: e.Plunge, RPM: e.RPM}, true
	}
	return cam.FeedParams{}, false
}

// DefaultFeedsPath returns the default path for the feed table file.
func DefaultFeedsPath() string {
	return filepath.Join(DefaultConfigDir(), "feeds.yaml")
}

// LoadFeeds reads a feed table from a YAML file. A missing file is not
// an error: every lookup then falls through to the tool defaults.
func LoadFeeds(path string) (FeedTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FeedTable{}, nil
		}
		return FeedTable{}, err
	}
	var ft FeedTable
	if err := yaml.Unmarshal(data, &ft); err != nil {
		return FeedTable{}, err
	}
	return ft, nil
}

// SaveFeeds writes the feed table as YAML.
// It creates any missing parent directories automatically.
func SaveFeeds(path string, ft FeedTable) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(ft)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
