package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/partcam/internal/model"
)

// DefaultToolsPath returns the default file path for the tool library.
// This is located at ~/.partcam/tools.json.
func DefaultToolsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".partcam", "tools.json"), nil
}

// SaveTools writes the tool library to the specified JSON file.
// It creates parent directories if they do not exist.
func SaveTools(path string, tools []model.Tool) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tools, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadTools reads the tool library from the specified JSON file. If
// the file does not exist, it returns the default library and saves it.
func LoadTools(path string) ([]model.Tool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			tools := model.DefaultTools()
			if saveErr := SaveTools(path, tools); saveErr != nil {
				return tools, saveErr
			}
			return tools, nil
		}
		return nil, err
	}
	var tools []model.Tool
	if err := json.Unmarshal(data, &tools); err != nil {
		return nil, err
	}
	return tools, nil
}

// LoadOrCreateTools loads the tool library from the default path,
// creating it with the default tools on first run.
func LoadOrCreateTools() ([]model.Tool, string, error) {
	path, err := DefaultToolsPath()
	if err != nil {
		return model.DefaultTools(), "", err
	}
	tools, err := LoadTools(path)
	return tools, path, err
}

// AddTool appends a tool to the library. Tool numbers are the identity
// referenced by assignments and tool changes, so duplicates are
// rejected.
func AddTool(tools []model.Tool, t model.Tool) ([]model.Tool, error) {
	if t.Number <= 0 {
		return tools, fmt.Errorf("tool number must be positive, got %d", t.Number)
	}
	if model.FindTool(tools, t.Number) != nil {
		return tools, fmt.Errorf("tool number %d already in library", t.Number)
	}
	return append(tools, t), nil
}
