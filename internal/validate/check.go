package validate

import (
	"github.com/piwi3910/partcam/internal/machine"
	"github.com/piwi3910/partcam/internal/model"
)

// Check validates a project against a machine profile ahead of
// generation. It is a pure function of its inputs; callers may run it
// without committing to a full generation pass.
func Check(p model.Project, prof machine.MachineProfile) Report {
	var r Report
	info := prof.Machine

	r.Errors = append(r.Errors, checkPartTravel(p.Parts, info)...)
	r.Errors = append(r.Errors, checkTools(p, info)...)
	r.Errors = append(r.Errors, checkCutDepths(p)...)

	sheetWarnings, oversized := checkSheets(p, info)
	r.Warnings = append(r.Warnings, sheetWarnings...)
	if oversized {
		r.Warnings = append(r.Warnings, checkPreCutting(p.Parts, info)...)
	}
	r.Warnings = append(r.Warnings, checkToolChanges(p, info)...)

	return r
}

// checkPartTravel flags parts that fit the bed in no orientation.
func checkPartTravel(parts []model.Part, info machine.MachineInfo) []Error {
	var errs []Error
	for _, p := range parts {
		fitsNormal := p.Width <= info.TravelX && p.Height <= info.TravelY
		fitsRotated := p.Height <= info.TravelX && p.Width <= info.TravelY
		if !fitsNormal && !fitsRotated {
			errs = append(errs, PartExceedsTravel{
				PartLabel:  p.Label,
				PartWidth:  p.Width,
				PartHeight: p.Height,
				TravelX:    info.TravelX,
				TravelY:    info.TravelY,
			})
		}
	}
	return errs
}

// checkTools verifies every assigned tool exists and its spindle speed
// is reachable. One finding per distinct tool.
func checkTools(p model.Project, info machine.MachineInfo) []Error {
	var errs []Error
	for _, num := range p.Assignment.UsedNumbers(p.Parts) {
		tool := model.FindTool(p.Tools, num)
		if tool == nil {
			errs = append(errs, MissingTool{ToolNumber: num})
			continue
		}
		if tool.RPM < info.MinRPM || tool.RPM > info.MaxRPM {
			errs = append(errs, RpmOutOfRange{
				ToolNumber: num,
				ToolName:   tool.Name,
				Requested:  tool.RPM,
				Min:        info.MinRPM,
				Max:        info.MaxRPM,
			})
		}
	}
	return errs
}

// checkCutDepths compares every cut depth against the assigned tool's
// flute length. The implicit profile cut goes through the full part
// thickness. Repeated identical findings per part are deduplicated.
func checkCutDepths(p model.Project) []Error {
	type key struct {
		label  string
		opType string
		tool   int
	}
	seen := make(map[key]bool)
	var errs []Error

	check := func(label, opType string, toolNum int, depth float64) {
		tool := model.FindTool(p.Tools, toolNum)
		if tool == nil {
			return // checkTools reports the missing tool
		}
		if depth <= tool.CuttingLength {
			return
		}
		k := key{label, opType, toolNum}
		if seen[k] {
			return
		}
		seen[k] = true
		errs = append(errs, CutDepthExceedsTool{
			PartLabel:     label,
			OperationType: opType,
			ToolNumber:    toolNum,
			Depth:         depth,
			CuttingLength: tool.CuttingLength,
		})
	}

	for _, part := range p.Parts {
		check(part.Label, "profile", p.Assignment.Profile, part.Thickness)
		for _, op := range part.Operations {
			switch o := op.(type) {
			case model.Dado:
				check(part.Label, "dado", p.Assignment.Groove, o.Depth)
			case model.Rabbet:
				check(part.Label, "rabbet", p.Assignment.Groove, o.Depth)
			case model.Drill:
				check(part.Label, "drill", p.Assignment.Drill, o.Depth)
			case model.PocketHole:
				if o.CNC {
					check(part.Label, "pocket_hole", p.Assignment.Pocket, part.Thickness*0.6)
				}
			}
		}
	}
	return errs
}

// checkSheets flags sheet sizes that exceed the bed. It reports one
// warning per distinct oversized size across the nesting config and
// any project stock sheets, and whether any sheet was oversized.
func checkSheets(p model.Project, info machine.MachineInfo) ([]Warning, bool) {
	type size struct{ w, l float64 }
	sizes := []size{{p.Nesting.SheetWidth, p.Nesting.SheetLength}}
	seen := map[size]bool{sizes[0]: true}
	for _, s := range p.Stocks {
		sz := size{s.Width, s.Length}
		if !seen[sz] {
			seen[sz] = true
			sizes = append(sizes, sz)
		}
	}

	var warnings []Warning
	oversized := false
	for _, sz := range sizes {
		if sheetFitsBed(sz.w, sz.l, info) {
			continue
		}
		oversized = true
		warnings = append(warnings, SheetExceedsBed{
			SheetWidth:     sz.w,
			SheetLength:    sz.l,
			TravelX:        info.TravelX,
			TravelY:        info.TravelY,
			Recommendation: splitRecommendation(sz.w, sz.l, info),
		})
	}
	return warnings, oversized
}

// checkPreCutting warns, once per part label, for parts that fit the
// bed but come from a sheet that does not.
func checkPreCutting(parts []model.Part, info machine.MachineInfo) []Warning {
	seen := make(map[string]bool)
	var warnings []Warning
	for _, p := range parts {
		fitsNormal := p.Width <= info.TravelX && p.Height <= info.TravelY
		fitsRotated := p.Height <= info.TravelX && p.Width <= info.TravelY
		if !fitsNormal && !fitsRotated {
			continue // already an error, pre-cutting cannot help
		}
		if seen[p.Label] {
			continue
		}
		seen[p.Label] = true
		warnings = append(warnings, PartNeedsPreCutting{
			PartLabel:  p.Label,
			PartWidth:  p.Width,
			PartHeight: p.Height,
		})
	}
	return warnings
}

func checkToolChanges(p model.Project, info machine.MachineInfo) []Warning {
	used := p.Assignment.UsedNumbers(p.Parts)
	if len(used) > 1 && !info.HasATC {
		return []Warning{MultipleToolsNoAtc{ToolCount: len(used)}}
	}
	return nil
}

// sheetFitsBed checks both orientations; the sheet can go on the bed
// sideways.
func sheetFitsBed(w, l float64, info machine.MachineInfo) bool {
	return (w <= info.TravelX && l <= info.TravelY) || (l <= info.TravelX && w <= info.TravelY)
}

// splitRecommendation suggests how to break an oversized sheet down.
// Quadrants when both axes exceed the bed, otherwise a single cross
// cut on the long axis.
func splitRecommendation(w, l float64, info machine.MachineInfo) string {
	exceedsX := w > info.TravelX
	exceedsY := l > info.TravelY
	if exceedsX && exceedsY {
		return "pre-cut it into quadrants that fit the bed"
	}
	if exceedsY {
		return "pre-cut it in half across its length"
	}
	return "pre-cut it in half across its width"
}
