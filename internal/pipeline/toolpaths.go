package pipeline

import (
	"sort"

	"github.com/piwi3910/partcam/internal/cam"
	"github.com/piwi3910/partcam/internal/model"
)

// ToolExtent is the bounding box one tool sweeps over a sheet, rapids
// included. Extents drive per-tool overlays in visualizations and
// quick sanity checks against the stock size.
type ToolExtent struct {
	ToolNumber int     `json:"tool_number"`
	MinX       float64 `json:"min_x"`
	MinY       float64 `json:"min_y"`
	MaxX       float64 `json:"max_x"`
	MaxY       float64 `json:"max_y"`
}

// SheetToolpaths carries one sheet's toolpaths in execution order plus
// the summary numbers a renderer or estimator needs. SheetIndex is
// zero-based within the sheet's material group, matching the program
// filename numbering.
type SheetToolpaths struct {
	Material         string                    `json:"material"`
	Thickness        float64                   `json:"thickness"`
	SheetIndex       int                       `json:"sheet_index"`
	Paths            []model.AnnotatedToolpath `json:"paths"`
	Extents          []ToolExtent              `json:"tool_extents"`
	CutDistance      float64                   `json:"cut_distance"`
	RapidDistance    float64                   `json:"rapid_distance"`
	EstimatedMinutes float64                   `json:"estimated_minutes"`
}

// Toolpaths synthesizes and orders the toolpaths for every sheet of
// every material group. The result is the machine-independent view of
// the job: what Gcode renders, before controller dialects apply.
func (p *Pipeline) Toolpaths(proj model.Project, groups []model.MaterialGroupResult) ([]SheetToolpaths, error) {
	synth := p.synthesizer(proj)
	rapidRate := p.profile(proj).Machine.RapidRate

	var out []SheetToolpaths
	for _, grp := range groups {
		for i, sheet := range grp.Result.Sheets {
			paths, err := synth.Synthesize(sheet)
			if err != nil {
				return nil, err
			}
			ordered := cam.Order(paths)
			st := SheetToolpaths{
				Material:   grp.Material,
				Thickness:  grp.Thickness,
				SheetIndex: i,
				Paths:      ordered,
				Extents:    toolExtents(ordered),
			}
			for _, ap := range ordered {
				cut := ap.CutDistance()
				rapid := ap.RapidDistance()
				st.CutDistance += cut
				st.RapidDistance += rapid
				if ap.FeedRate > 0 {
					st.EstimatedMinutes += cut / ap.FeedRate
				}
				if rapidRate > 0 {
					st.EstimatedMinutes += rapid / rapidRate
				}
			}
			out = append(out, st)
		}
	}
	return out, nil
}

// toolExtents computes the per-tool bounding boxes over every segment
// endpoint, sorted by tool number.
func toolExtents(paths []model.AnnotatedToolpath) []ToolExtent {
	byTool := make(map[int]*ToolExtent)
	for _, ap := range paths {
		ext, ok := byTool[ap.ToolNumber]
		if !ok {
			ext = &ToolExtent{ToolNumber: ap.ToolNumber}
			first := true
			for _, seg := range ap.Segments {
				if first {
					ext.MinX, ext.MaxX = seg.End.X, seg.End.X
					ext.MinY, ext.MaxY = seg.End.Y, seg.End.Y
					first = false
					continue
				}
				growExtent(ext, seg.End.X, seg.End.Y)
			}
			if first {
				continue // no segments, skip the tool
			}
			byTool[ap.ToolNumber] = ext
			continue
		}
		for _, seg := range ap.Segments {
			growExtent(ext, seg.End.X, seg.End.Y)
		}
	}

	out := make([]ToolExtent, 0, len(byTool))
	for _, ext := range byTool {
		out = append(out, *ext)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ToolNumber < out[j].ToolNumber })
	return out
}

func growExtent(ext *ToolExtent, x, y float64) {
	if x < ext.MinX {
		ext.MinX = x
	}
	if x > ext.MaxX {
		ext.MaxX = x
	}
	if y < ext.MinY {
		ext.MinY = y
	}
	if y > ext.MaxY {
		ext.MaxY = y
	}
}
