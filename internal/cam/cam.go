// Package cam turns placed parts and their operations into
// machine-neutral toolpaths. It produces motion primitives only;
// rendering them into a G-code dialect is the gcode package's job.
package cam

import (
	"fmt"
	"math"

	"github.com/piwi3910/partcam/internal/model"
)

// OpProfile is the operation type tag attached to outer profile cuts.
// Part operations carry their own kind tags ("dado", "rabbet", "drill",
// "pocket_hole").
const OpProfile = "profile"

// pocketDepthFraction is how deep a CNC pocket-hole pilot goes relative
// to the part thickness. The angled jig finishes the hole at the bench.
const pocketDepthFraction = 0.6

// grooveTol is the slack below which a slot counts as a single
// cutter-width pass.
const grooveTol = 0.01

// FeedParams are resolved cutting parameters for one tool on one
// material. Zero fields leave the tool's defaults in effect.
type FeedParams struct {
	Feed   float64
	Plunge float64
	RPM    float64
}

// FeedSource resolves material-specific feed overrides for a tool.
// Lookup returns false on a miss, in which case the tool's defaults
// apply unchanged.
type FeedSource interface {
	Lookup(material string, toolNumber int) (FeedParams, bool)
}

// Synthesizer holds the CAM parameters shared by every operation on a
// job: pass depths, retract planes, tabs, lead arcs and the tool
// assignment. A nil Feeds falls back to tool defaults everywhere.
type Synthesizer struct {
	Settings   model.CutSettings
	Tools      []model.Tool
	Assignment model.ToolAssignment
	Feeds      FeedSource
}

func New(settings model.CutSettings, tools []model.Tool, assignment model.ToolAssignment) *Synthesizer {
	return &Synthesizer{Settings: settings, Tools: tools, Assignment: assignment}
}

// Synthesize produces the toolpaths for one sheet. Placements are
// processed in layout order; per part the operations run grooves first,
// then drilling, then pocket holes, then the outer profile, so parts
// stay captive in the sheet as long as possible. Synthesis is pure:
// the same layout and settings always yield the same toolpaths.
func (s *Synthesizer) Synthesize(layout model.SheetLayout) ([]model.AnnotatedToolpath, error) {
	var paths []model.AnnotatedToolpath
	for _, pl := range layout.Placements {
		placed, err := s.placementPaths(pl, layout.Material)
		if err != nil {
			return nil, fmt.Errorf("part %q (%s): %w", pl.Part.Label, pl.ID, err)
		}
		paths = append(paths, placed...)
	}
	return paths, nil
}

func (s *Synthesizer) placementPaths(pl model.Placement, material string) ([]model.AnnotatedToolpath, error) {
	var out []model.AnnotatedToolpath
	add := func(tp model.Toolpath, opType string) {
		out = append(out, model.AnnotatedToolpath{
			Toolpath:      tp,
			PartLabel:     pl.Part.Label,
			PlacementID:   pl.ID,
			OperationType: opType,
		})
	}

	for _, op := range pl.Part.Operations {
		var (
			tp  model.Toolpath
			err error
		)
		switch o := op.(type) {
		case model.Dado:
			tp, err = s.groovePath(dadoSlot(pl, o), o.Depth, material)
		case model.Rabbet:
			tp, err = s.groovePath(rabbetSlot(pl, o), o.Depth, material)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		add(tp, op.Kind())
	}

	for _, op := range pl.Part.Operations {
		o, ok := op.(model.Drill)
		if !ok {
			continue
		}
		tp, err := s.drillPath(pl, o, material)
		if err != nil {
			return nil, err
		}
		add(tp, op.Kind())
	}

	for _, op := range pl.Part.Operations {
		o, ok := op.(model.PocketHole)
		if !ok || !o.CNC {
			continue
		}
		tp, err := s.pocketPath(pl, o, material)
		if err != nil {
			return nil, err
		}
		add(tp, op.Kind())
	}

	tp, err := s.profilePath(pl, material)
	if err != nil {
		return nil, err
	}
	add(tp, OpProfile)
	return out, nil
}

// drillPath positions at clearance height and invokes one drill cycle.
// The cycle retracts to SafeZ, so the path ends at the retract plane.
func (s *Synthesizer) drillPath(pl model.Placement, d model.Drill, material string) (model.Toolpath, error) {
	tool, err := s.tool(s.Assignment.Drill)
	if err != nil {
		return model.Toolpath{}, err
	}
	tp := s.newToolpath(tool, material)
	center := placedPoint(pl, d.X, d.Y)
	tp.Segments = append(tp.Segments,
		segment(model.Rapid{}, center, s.Settings.RapidZ),
		segment(model.DrillCycle{
			RetractZ:  s.Settings.SafeZ,
			FinalZ:    -d.Depth,
			PeckDepth: s.Settings.PeckDepth,
		}, center, s.Settings.SafeZ),
	)
	return tp, nil
}

// pocketPath approximates an angled-jig pocket hole as a straight pilot
// drilled to 60% of the part thickness. Pocket pilots always peck; when
// no peck depth is configured a third of the pilot depth is used.
func (s *Synthesizer) pocketPath(pl model.Placement, ph model.PocketHole, material string) (model.Toolpath, error) {
	tool, err := s.tool(s.Assignment.Pocket)
	if err != nil {
		return model.Toolpath{}, err
	}
	tp := s.newToolpath(tool, material)
	depth := pocketDepthFraction * pl.Part.Thickness
	peck := s.Settings.PeckDepth
	if peck <= 0 {
		peck = depth / 3
	}
	center := placedPoint(pl, ph.X, ph.Y)
	tp.Segments = append(tp.Segments,
		segment(model.Rapid{}, center, s.Settings.RapidZ),
		segment(model.DrillCycle{
			RetractZ:  s.Settings.SafeZ,
			FinalZ:    -depth,
			PeckDepth: peck,
		}, center, s.Settings.SafeZ),
	)
	return tp, nil
}

// slot is a straight groove in sheet coordinates: a centerline from a
// to b and the total slot width across it.
type slot struct {
	a, b  model.Point2D
	width float64
}

func dadoSlot(pl model.Placement, d model.Dado) slot {
	w, h := pl.Part.Width, pl.Part.Height
	var a, b model.Point2D
	if d.Orientation == model.OrientVertical {
		a = placedPoint(pl, d.Position, 0)
		b = placedPoint(pl, d.Position, h)
	} else {
		a = placedPoint(pl, 0, d.Position)
		b = placedPoint(pl, w, d.Position)
	}
	return slot{a: a, b: b, width: d.Width}
}

// rabbetSlot treats the rebate as a slot whose centerline runs half the
// rabbet width in from the named edge, the full length of that edge.
func rabbetSlot(pl model.Placement, r model.Rabbet) slot {
	w, h := pl.Part.Width, pl.Part.Height
	c := r.Width / 2
	var a, b model.Point2D
	switch r.Edge {
	case model.EdgeTop:
		a, b = placedPoint(pl, 0, c), placedPoint(pl, w, c)
	case model.EdgeBottom:
		a, b = placedPoint(pl, 0, h-c), placedPoint(pl, w, h-c)
	case model.EdgeLeft:
		a, b = placedPoint(pl, c, 0), placedPoint(pl, c, h)
	case model.EdgeRight:
		a, b = placedPoint(pl, w-c, 0), placedPoint(pl, w-c, h)
	}
	return slot{a: a, b: b, width: r.Width}
}

// groovePath clears a slot with serpentine passes. Lateral stepovers
// cover widths beyond the cutter diameter; depth passes deepen by
// PassDepth until the groove depth, ramping between lines without
// retracting.
func (s *Synthesizer) groovePath(sl slot, depth float64, material string) (model.Toolpath, error) {
	tool, err := s.tool(s.Assignment.Groove)
	if err != nil {
		return model.Toolpath{}, err
	}
	tp := s.newToolpath(tool, material)
	set := s.Settings

	offsets := lateralOffsets(sl.width, tool.Diameter, set.StepoverFraction)
	lat := perpendicular(sl.a, sl.b)

	start := offsetPoint(sl.a, lat, offsets[0])
	tp.Segments = append(tp.Segments,
		segment(model.Rapid{}, start, set.RapidZ),
		segment(model.Rapid{}, start, set.SafeZ),
	)

	pos := start
	forward := true
	for _, d := range depthPasses(depth, set.PassDepth) {
		for _, off := range offsets {
			from := offsetPoint(sl.a, lat, off)
			to := offsetPoint(sl.b, lat, off)
			if !forward {
				from, to = to, from
			}
			tp.Segments = append(tp.Segments,
				segment(model.Linear{}, from, -d),
				segment(model.Linear{}, to, -d),
			)
			pos = to
			forward = !forward
		}
	}
	tp.Segments = append(tp.Segments, segment(model.Rapid{}, pos, set.SafeZ))
	return tp, nil
}

// lateralOffsets returns cutter-center offsets from the slot centerline
// that cover the slot width, ordered across the slot. A slot no wider
// than the cutter is a single centerline pass.
func lateralOffsets(slotWidth, diameter, stepover float64) []float64 {
	span := slotWidth - diameter
	if span <= grooveTol {
		return []float64{0}
	}
	if stepover <= 0 {
		stepover = 0.5
	}
	n := int(math.Ceil(span / (stepover * diameter)))
	offs := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		offs[i] = -span/2 + span*float64(i)/float64(n)
	}
	return offs
}

// depthPasses returns the cumulative pass depths down to total.
func depthPasses(total, passDepth float64) []float64 {
	if passDepth <= 0 || passDepth >= total {
		return []float64{total}
	}
	n := int(math.Ceil(total / passDepth))
	out := make([]float64, n)
	for i := 1; i <= n; i++ {
		d := float64(i) * passDepth
		if d > total {
			d = total
		}
		out[i-1] = d
	}
	return out
}

func (s *Synthesizer) tool(number int) (model.Tool, error) {
	t := model.FindTool(s.Tools, number)
	if t == nil {
		return model.Tool{}, fmt.Errorf("tool T%d is not in the tool table", number)
	}
	return *t, nil
}

// newToolpath seeds a toolpath with the tool's feeds, overridden per
// material where the feed table has an entry.
func (s *Synthesizer) newToolpath(tool model.Tool, material string) model.Toolpath {
	tp := model.Toolpath{
		ToolNumber: tool.Number,
		RPM:        tool.RPM,
		FeedRate:   tool.FeedRate,
		PlungeRate: tool.PlungeRate,
	}
	if s.Feeds == nil {
		return tp
	}
	fp, ok := s.Feeds.Lookup(material, tool.Number)
	if !ok {
		return tp
	}
	if fp.Feed > 0 {
		tp.FeedRate = fp.Feed
	}
	if fp.Plunge > 0 {
		tp.PlungeRate = fp.Plunge
	}
	if fp.RPM > 0 {
		tp.RPM = fp.RPM
	}
	return tp
}

// placedPoint maps a part-local point into sheet coordinates, honoring
// the placement's rotation. A rotated part maps (x, y) to
// (height - y, x) before translation, so the footprint swaps axes.
func placedPoint(pl model.Placement, x, y float64) model.Point2D {
	if pl.Rotated {
		return model.Point2D{X: pl.X + pl.Part.Height - y, Y: pl.Y + x}
	}
	return model.Point2D{X: pl.X + x, Y: pl.Y + y}
}

// perpendicular returns the unit vector across the a-to-b direction.
func perpendicular(a, b model.Point2D) model.Point2D {
	dx := b.X - a.X
	dy := b.Y - a.Y
	l := math.Hypot(dx, dy)
	if l < 1e-9 {
		return model.Point2D{}
	}
	return model.Point2D{X: -dy / l, Y: dx / l}
}

func offsetPoint(p, dir model.Point2D, dist float64) model.Point2D {
	return model.Point2D{X: p.X + dir.X*dist, Y: p.Y + dir.Y*dist}
}

func segment(m model.Motion, end model.Point2D, z float64) model.ToolpathSegment {
	return model.ToolpathSegment{Motion: m, End: end, Z: z}
}
