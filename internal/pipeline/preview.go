package pipeline

import (
	"fmt"

	"github.com/piwi3910/partcam/internal/gcode"
	"github.com/piwi3910/partcam/internal/model"
	"github.com/piwi3910/partcam/internal/validate"
)

// Preview is the in-memory rendering of one sheet's program: the
// G-code text, its parsed motion, derived statistics and any travel
// envelope violations. Nothing touches disk.
type Preview struct {
	Material   string             `json:"material"`
	Thickness  float64            `json:"thickness"`
	SheetIndex int                `json:"sheet_index"`
	Filename   string             `json:"filename"`
	PartCount  int                `json:"part_count"`
	Gcode      string             `json:"gcode"`
	Moves      []gcode.Move       `json:"moves"`
	Stats      gcode.ProgramStats `json:"stats"`
	Bounds     []validate.Error   `json:"bounds_errors,omitempty"`
}

// Preview renders the program for a single sheet and parses it back
// into moves and statistics. sheet indexes the flattened sheet list,
// zero-based: material groups in order, sheets in order within each
// group.
func (p *Pipeline) Preview(proj model.Project, groups []model.MaterialGroupResult, sheet int) (Preview, error) {
	gi, idx, total := locateSheet(groups, sheet)
	if gi < 0 {
		return Preview{}, fmt.Errorf("sheet index %d out of range: job has %d sheets", sheet, total)
	}
	grp := groups[gi]
	layout := grp.Result.Sheets[idx]

	prof := p.profile(proj)
	synth := orderedSynth{p.synthesizer(proj)}
	gen := gcode.NewGenerator(prof)
	gen.Log = p.Log

	paths, err := synth.Synthesize(layout)
	if err != nil {
		return Preview{}, err
	}
	code, err := gen.Program(paths, gcode.ProgramMeta{
		ProgramName: proj.Name,
		Material:    layout.Material,
		Thickness:   layout.Thickness,
		SheetIndex:  idx,
		SheetCount:  len(grp.Result.Sheets),
		PartCount:   len(layout.Placements),
	})
	if err != nil {
		return Preview{}, err
	}

	moves := gcode.ParseProgram(code)
	return Preview{
		Material:   grp.Material,
		Thickness:  grp.Thickness,
		SheetIndex: idx,
		Filename:   gcode.Filename(groupNames(groups)[gi], idx, prof.Post.FileExtension),
		PartCount:  len(layout.Placements),
		Gcode:      code,
		Moves:      moves,
		Stats:      gcode.Stats(moves, prof.Machine.RapidRate),
		Bounds:     validate.CheckGcode(code, prof.Machine),
	}, nil
}

// locateSheet maps a flat sheet index onto (group, sheet within
// group). It returns (-1, -1, total) when the index is out of range.
func locateSheet(groups []model.MaterialGroupResult, sheet int) (gi, idx, total int) {
	for _, g := range groups {
		total += len(g.Result.Sheets)
	}
	if sheet < 0 || sheet >= total {
		return -1, -1, total
	}
	idx = sheet
	for gi = range groups {
		if idx < len(groups[gi].Result.Sheets) {
			return gi, idx, total
		}
		idx -= len(groups[gi].Result.Sheets)
	}
	return -1, -1, total
}
