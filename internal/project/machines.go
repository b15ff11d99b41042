package project

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/piwi3910/partcam/internal/machine"
)

// DefaultMachinesDir returns the default directory for storing custom
// machine profiles.
func DefaultMachinesDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(configDir, "partcam")
	return dir, nil
}

// DefaultMachinesPath returns the default file path for custom machine
// profiles.
func DefaultMachinesPath() (string, error) {
	dir, err := DefaultMachinesDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "machines.json"), nil
}

// SaveCustomMachines saves custom machine profiles to a JSON file.
func SaveCustomMachines(path string, profiles []machine.MachineProfile) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadCustomMachines loads custom machine profiles from a JSON file.
// Returns an empty slice if the file does not exist. Loaded profiles
// are user data and never count as built-in.
func LoadCustomMachines(path string) ([]machine.MachineProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []machine.MachineProfile{}, nil
		}
		return nil, err
	}

	var profiles []machine.MachineProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// SaveCustomMachinesToDefault saves custom machine profiles to the
// default path.
func SaveCustomMachinesToDefault(profiles []machine.MachineProfile) error {
	path, err := DefaultMachinesPath()
	if err != nil {
		return err
	}
	return SaveCustomMachines(path, profiles)
}

// LoadCustomMachinesFromDefault loads custom machine profiles from the
// default path.
func LoadCustomMachinesFromDefault() ([]machine.MachineProfile, error) {
	path, err := DefaultMachinesPath()
	if err != nil {
		return nil, err
	}
	return LoadCustomMachines(path)
}

// ExportMachine exports a single machine profile to a JSON file (for
// sharing).
func ExportMachine(path string, profile machine.MachineProfile) error {
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ImportMachine imports a single machine profile from a JSON file.
func ImportMachine(path string) (machine.MachineProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return machine.MachineProfile{}, err
	}

	var profile machine.MachineProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return machine.MachineProfile{}, err
	}

	if profile.Machine.Name == "" {
		return machine.MachineProfile{}, errors.New("imported machine profile has no name")
	}
	return profile, nil
}
