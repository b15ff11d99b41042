package project

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// maxRecentProjects bounds the recent-project list in the app config.
const maxRecentProjects = 10

// AppConfig holds per-user preferences that persist between runs.
type AppConfig struct {
	LastMachine    string   `json:"last_machine"`
	OutputDir      string   `json:"output_dir"`
	Units          string   `json:"units"`
	RecentProjects []string `json:"recent_projects"`
}

// DefaultAppConfig returns the configuration used before the user has
// saved one.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		LastMachine:    "Generic",
		OutputDir:      "out",
		Units:          "mm",
		RecentProjects: []string{},
	}
}

// AddRecent records a project path at the head of the recent list,
// deduplicating and trimming to the bound.
func (c *AppConfig) AddRecent(path string) {
	recent := []string{path}
	for _, p := range c.RecentProjects {
		if p != path {
			recent = append(recent, p)
		}
	}
	if len(recent) > maxRecentProjects {
		recent = recent[:maxRecentProjects]
	}
	c.RecentProjects = recent
}

// DefaultConfigDir returns the default directory for application state.
// On all platforms this is ~/.partcam/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".partcam")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveAppConfig persists an AppConfig to the given path as JSON.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, config AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadAppConfig reads an AppConfig from the given path.
// If the file does not exist, it returns DefaultAppConfig with no error.
func LoadAppConfig(path string) (AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultAppConfig(), nil
		}
		return AppConfig{}, err
	}
	var config AppConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return AppConfig{}, err
	}
	// Ensure RecentProjects is never nil
	if config.RecentProjects == nil {
		config.RecentProjects = []string{}
	}
	return config, nil
}
