package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/partcam/internal/machine"
	"github.com/piwi3910/partcam/internal/model"
)

func TestExportAndImportAllData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backup.json")

	cfg := DefaultAppConfig()
	cfg.LastMachine = "Garage Router"
	cfg.Units = "inch"

	machines := []machine.MachineProfile{testMachine("Garage Router")}
	tools := model.DefaultTools()

	if err := ExportAllData(path, cfg, machines, tools); err != nil {
		t.Fatalf("ExportAllData failed: %v", err)
	}

	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}

	if backup.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %s", backup.Version)
	}
	if backup.CreatedAt == "" {
		t.Error("expected non-empty CreatedAt")
	}
	if backup.Config.LastMachine != "Garage Router" {
		t.Errorf("expected LastMachine=Garage Router, got %s", backup.Config.LastMachine)
	}
	if backup.Config.Units != "inch" {
		t.Errorf("expected Units=inch, got %s", backup.Config.Units)
	}
	if len(backup.Machines) != 1 {
		t.Fatalf("expected 1 machine profile, got %d", len(backup.Machines))
	}
	if backup.Machines[0].Name() != "Garage Router" {
		t.Errorf("expected machine Garage Router, got %s", backup.Machines[0].Name())
	}
	if len(backup.Tools) != len(tools) {
		t.Errorf("expected %d tools, got %d", len(tools), len(backup.Tools))
	}
}

func TestExportAllDataWithoutOptionalState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backup.json")

	if err := ExportAllData(path, DefaultAppConfig(), nil, nil); err != nil {
		t.Fatalf("ExportAllData failed: %v", err)
	}

	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}
	if len(backup.Machines) != 0 {
		t.Errorf("expected no machines, got %d", len(backup.Machines))
	}
	if len(backup.Tools) != 0 {
		t.Errorf("expected no tools, got %d", len(backup.Tools))
	}
}

func TestImportAllDataMissingFile(t *testing.T) {
	_, err := ImportAllData(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestImportAllDataInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not json}"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ImportAllData(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestImportAllDataMissingVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "noversion.json")
	data := []byte(`{"config":{"units":"mm"}}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ImportAllData(path)
	if err == nil {
		t.Fatal("expected error for missing version")
	}
}

func TestExportAllDataCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deep", "nested", "backup.json")

	if err := ExportAllData(path, DefaultAppConfig(), nil, nil); err != nil {
		t.Fatalf("ExportAllData should create parent dirs: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("backup file was not created")
	}
}

func TestImportAllDataNilRecentProjects(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backup.json")
	data := []byte(`{"version":"1.0.0","created_at":"2026-01-01T00:00:00Z","config":{"recent_projects":null}}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}
	if backup.Config.RecentProjects == nil {
		t.Error("RecentProjects should not be nil after import")
	}
}
