package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/partcam/internal/model"
)

// FileVersion is written into every saved project and backup file.
// Load rejects files without a version field.
const FileVersion = "1.0.0"

// projectFile is the on-disk envelope around a project.
type projectFile struct {
	Version string        `json:"version"`
	Project model.Project `json:"project"`
}

// Save writes a project as indented JSON. The write is atomic: the
// data is staged in a temp file in the same directory and renamed into
// place, so a crash mid-write never leaves a truncated project behind.
func Save(path string, proj model.Project) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(projectFile{Version: FileVersion, Project: proj}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".partcam-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// Load reads a saved project file and returns the contained project.
func Load(path string) (model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Project{}, err
	}
	var pf projectFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return model.Project{}, fmt.Errorf("failed to parse project file: %w", err)
	}
	if pf.Version == "" {
		return model.Project{}, fmt.Errorf("invalid project file: missing version field")
	}
	// Ensure Parts is never nil
	if pf.Project.Parts == nil {
		pf.Project.Parts = []model.Part{}
	}
	return pf.Project, nil
}
