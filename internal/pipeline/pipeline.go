// Package pipeline chains the processing stages into one headless
// facade: validate a project, nest its parts, synthesize toolpaths,
// render G-code and persist the artifact set. Every method is a pure
// function of its inputs plus the injected machine registry and feed
// table, so a CLI invocation and a test exercise exactly the same
// path.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/partcam/internal/cam"
	"github.com/piwi3910/partcam/internal/engine"
	"github.com/piwi3910/partcam/internal/gcode"
	"github.com/piwi3910/partcam/internal/machine"
	"github.com/piwi3910/partcam/internal/model"
	"github.com/piwi3910/partcam/internal/telemetry"
	"github.com/piwi3910/partcam/internal/validate"
)

// ErrValidationBlocked is returned by Nest when the project has
// validation errors. The report carrying the findings is returned
// alongside the error.
var ErrValidationBlocked = errors.New("project has validation errors")

// Clearance around fixture zones used for collision warnings, on top
// of the tool radius.
const fixtureClearance = 5.0

// Pipeline runs projects through nesting, CAM and G-code generation.
// The zero value is not usable; construct with New.
type Pipeline struct {
	Registry *machine.Registry
	Feeds    cam.FeedSource
	Log      *telemetry.Logger
}

// New builds a pipeline around a machine registry and an optional feed
// override table. A nil registry gets the built-in profiles; a nil
// logger stays silent.
func New(registry *machine.Registry, feeds cam.FeedSource, log *telemetry.Logger) *Pipeline {
	if registry == nil {
		registry = machine.NewRegistry()
	}
	if log == nil {
		log = telemetry.Nop()
	}
	return &Pipeline{Registry: registry, Feeds: feeds, Log: log}
}

// profile resolves the project's machine profile, falling back to the
// Generic built-in for unknown names. Validation reports the unknown
// name separately, so the fallback never masks a typo.
func (p *Pipeline) profile(proj model.Project) machine.MachineProfile {
	return p.Registry.Get(proj.Machine)
}

// synthesizer builds the CAM stage for a project with the pipeline's
// feed overrides attached.
func (p *Pipeline) synthesizer(proj model.Project) *cam.Synthesizer {
	s := cam.New(proj.Cut, proj.Tools, proj.Assignment)
	s.Feeds = p.Feeds
	return s
}

// Validate checks the project against its machine profile and returns
// the full report. It never refuses: callers decide whether warnings
// or errors stop them.
func (p *Pipeline) Validate(proj model.Project) validate.Report {
	return validate.Check(proj, p.profile(proj))
}

// Nest validates the project and, when no errors block it, nests every
// material group concurrently. Fixture zones from the machine profile
// are excluded from placement, and near-misses against those zones come
// back as warnings in the report.
//
// When validation reports errors the returned error wraps
// ErrValidationBlocked and the report carries the findings; no nesting
// is attempted.
func (p *Pipeline) Nest(ctx context.Context, proj model.Project) ([]model.MaterialGroupResult, validate.Report, error) {
	report := p.Validate(proj)
	if !report.OK() {
		return nil, report, fmt.Errorf("%w: %d found", ErrValidationBlocked, len(report.Errors))
	}

	prof := p.profile(proj)
	nester := engine.New(proj.Nesting)
	nester.Exclusions = prof.FixtureRects()

	groups, err := nester.NestAll(p.Log.WithContext(ctx), proj.Parts, proj.Stocks)
	if err != nil {
		return nil, report, err
	}

	if len(prof.Fixtures) > 0 {
		for _, g := range groups {
			report.Warnings = append(report.Warnings,
				validate.CheckFixtures(g.Result, prof.Fixtures, p.profileToolDiameter(proj), fixtureClearance)...)
		}
	}

	for _, g := range groups {
		p.Log.WithMaterial(g.Material, g.Thickness).
			WithField("sheets", g.Result.SheetCount()).
			WithField("unplaced", len(g.Result.Unplaced)).
			Debug("material group nested")
	}
	return groups, report, nil
}

// profileToolDiameter returns the diameter of the tool assigned to
// outer profile cuts, or zero when the assignment is dangling.
func (p *Pipeline) profileToolDiameter(proj model.Project) float64 {
	if t := model.FindTool(proj.Tools, proj.Assignment.Profile); t != nil {
		return t.Diameter
	}
	return 0
}

// orderedSynth adapts the CAM stage for the renderer, which expects
// each sheet's toolpaths already in execution order.
type orderedSynth struct {
	synth *cam.Synthesizer
}

func (o orderedSynth) Synthesize(layout model.SheetLayout) ([]model.AnnotatedToolpath, error) {
	paths, err := o.synth.Synthesize(layout)
	if err != nil {
		return nil, err
	}
	return cam.Order(paths), nil
}

// Gcode renders one program per sheet across every material group.
// Groups render concurrently; synthesis and rendering are pure, so the
// fan-out is safe and the output order is deterministic regardless of
// scheduling. Every rendered program is checked against the machine
// travel envelope before being returned.
func (p *Pipeline) Gcode(ctx context.Context, proj model.Project, groups []model.MaterialGroupResult) ([]gcode.SheetGcode, error) {
	prof := p.profile(proj)
	synth := orderedSynth{p.synthesizer(proj)}
	gen := gcode.NewGenerator(prof)
	gen.Log = p.Log

	names := groupNames(groups)
	rendered := make([][]gcode.SheetGcode, len(groups))

	g, ctx := errgroup.WithContext(p.Log.WithContext(ctx))
	for i, grp := range groups {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			programs, err := gen.SheetPrograms(grp.Result, synth, proj.Name)
			if err != nil {
				return fmt.Errorf("material %s: %w", grp.Material, err)
			}
			// Rewrite filenames with the disambiguated group name so
			// two thicknesses of one material cannot collide.
			for j := range programs {
				programs[j].Filename = gcode.Filename(names[i], programs[j].SheetIndex, prof.Post.FileExtension)
			}
			rendered[i] = programs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []gcode.SheetGcode
	for _, batch := range rendered {
		all = append(all, batch...)
	}

	for _, sg := range all {
		if findings := validate.CheckGcode(sg.Gcode, prof.Machine); len(findings) > 0 {
			return nil, fmt.Errorf("program %s: %s", sg.Filename, findings[0].Message())
		}
	}
	return all, nil
}

// groupNames returns a display name per material group, appending the
// thickness whenever one material appears in more than one group.
func groupNames(groups []model.MaterialGroupResult) []string {
	seen := make(map[string]int, len(groups))
	for _, g := range groups {
		seen[g.Material]++
	}
	names := make([]string, len(groups))
	for i, g := range groups {
		if seen[g.Material] > 1 {
			names[i] = fmt.Sprintf("%s %smm", g.Material, trimFloat(g.Thickness))
		} else {
			names[i] = g.Material
		}
	}
	return names
}

// trimFloat formats a dimension without trailing zeros: 18 not 18.0,
// but 6.5 stays 6.5.
func trimFloat(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	if len(s) > 2 && s[len(s)-2:] == ".0" {
		return s[:len(s)-2]
	}
	return s
}
