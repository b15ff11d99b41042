package commands

import (
	"encoding/json"
	"fmt"

	"github.com/piwi3910/partcam/internal/machine"
	"github.com/piwi3910/partcam/internal/model"
	"github.com/piwi3910/partcam/internal/pipeline"
	"github.com/piwi3910/partcam/internal/project"
	"github.com/piwi3910/partcam/internal/telemetry"
	"github.com/piwi3910/partcam/internal/validate"
)

// buildRegistry returns the machine registry with any custom profiles
// from the config directory loaded on top of the built-ins.
func buildRegistry() (*machine.Registry, error) {
	reg := machine.NewRegistry()
	custom, err := project.LoadCustomMachinesFromDefault()
	if err != nil {
		return nil, fmt.Errorf("load custom machines: %w", err)
	}
	if err := reg.AddAll(custom); err != nil {
		return nil, fmt.Errorf("register custom machines: %w", err)
	}
	return reg, nil
}

// buildPipeline assembles the processing pipeline: built-in plus custom
// machine profiles, the feed override table and a logger honoring the
// verbosity flag.
func buildPipeline() (*pipeline.Pipeline, error) {
	reg, err := buildRegistry()
	if err != nil {
		return nil, err
	}
	feeds, err := project.LoadFeeds(project.DefaultFeedsPath())
	if err != nil {
		return nil, fmt.Errorf("load feed table: %w", err)
	}
	return pipeline.New(reg, feeds, newLogger()), nil
}

func newLogger() *telemetry.Logger {
	cfg := telemetry.DefaultConfig()
	if verbose {
		cfg.Level = "debug"
	}
	log, err := telemetry.New(cfg)
	if err != nil {
		return telemetry.Nop()
	}
	return log
}

func loadProject(path string) (model.Project, error) {
	proj, err := project.Load(path)
	if err != nil {
		return model.Project{}, fmt.Errorf("load project: %w", err)
	}
	return proj, nil
}

// warnUnknownMachine flags a machine name that resolves to the Generic
// fallback, so a typo never silently validates against the wrong bed.
func warnUnknownMachine(pl *pipeline.Pipeline, proj model.Project) {
	if _, ok := pl.Registry.Lookup(proj.Machine); !ok && proj.Machine != "" {
		fmt.Printf("warning: unknown machine %q, using the Generic profile\n", proj.Machine)
	}
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printReport(report validate.Report) {
	for _, msg := range report.Messages() {
		fmt.Println(msg)
	}
}

func printWarnings(report validate.Report) {
	for _, w := range report.Warnings {
		fmt.Println("warning: " + w.Message())
	}
}

// rememberProject records a project path in the recent list of the app
// config. Best effort: a read-only config directory never fails the
// command that did the real work.
func rememberProject(path string) {
	cfg, err := project.LoadAppConfig(project.DefaultConfigPath())
	if err != nil {
		return
	}
	cfg.AddRecent(path)
	_ = project.SaveAppConfig(project.DefaultConfigPath(), cfg)
}
