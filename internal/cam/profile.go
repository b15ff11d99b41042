package cam

import (
	"math"

	"github.com/piwi3910/partcam/internal/model"
)

// profilePath cuts the part free of the sheet. Rectangular parts get
// the tool-radius-offset perimeter with tabs and lead arcs; parts with
// an outline follow the offset outline instead.
func (s *Synthesizer) profilePath(pl model.Placement, material string) (model.Toolpath, error) {
	tool, err := s.tool(s.Assignment.Profile)
	if err != nil {
		return model.Toolpath{}, err
	}
	tp := s.newToolpath(tool, material)
	if len(pl.Part.Outline) >= 3 {
		s.outlineProfile(&tp, pl, tool)
	} else {
		s.rectProfile(&tp, pl, tool)
	}
	return tp, nil
}

// side is one edge of the perimeter loop, traversed from from to to.
type side struct {
	from, to model.Point2D
}

// perimeterSides returns the cutter-center loop around the offset
// rectangle. Climb milling runs the loop one way, conventional the
// other; both start and end at the (x0, y0) corner.
func perimeterSides(x0, y0, x1, y1 float64, climb bool) [4]side {
	c0 := model.Point2D{X: x0, Y: y0}
	c1 := model.Point2D{X: x1, Y: y0}
	c2 := model.Point2D{X: x1, Y: y1}
	c3 := model.Point2D{X: x0, Y: y1}
	if climb {
		return [4]side{{c0, c1}, {c1, c2}, {c2, c3}, {c3, c0}}
	}
	return [4]side{{c0, c3}, {c3, c2}, {c2, c1}, {c1, c0}}
}

func (s *Synthesizer) rectProfile(tp *model.Toolpath, pl model.Placement, tool model.Tool) {
	set := s.Settings
	toolR := tool.Diameter / 2

	// Cutter centerline runs one tool radius outside the part.
	x0 := pl.X - toolR
	y0 := pl.Y - toolR
	x1 := pl.X + pl.PlacedWidth() + toolR
	y1 := pl.Y + pl.PlacedHeight() + toolR

	sides := perimeterSides(x0, y0, x1, y1, set.UseClimb)
	corner := sides[0].from
	thickness := pl.Part.Thickness

	crest := thickness - set.TabHeight
	if crest < 0 {
		crest = 0
	}
	tabs := s.perimeterTabs(sides, tool.Diameter)

	leadIn, leadOut := s.leadArcs(corner)

	entry := corner
	if leadIn != nil {
		entry = leadIn.from
	}

	for pi, depth := range depthPasses(thickness, set.PassDepth) {
		if pi == 0 {
			tp.Segments = append(tp.Segments, segment(model.Rapid{}, entry, set.RapidZ))
		}
		tp.Segments = append(tp.Segments,
			segment(model.Rapid{}, entry, set.SafeZ),
			segment(model.Linear{}, entry, -depth),
		)
		if leadIn != nil {
			tp.Segments = append(tp.Segments, segment(leadIn.motion(entry), corner, -depth))
		}

		// Tabs only once the cut is below the tab crest.
		withTabs := set.TabSpacing > 0 && depth > crest+1e-9
		for si, sd := range sides {
			if withTabs {
				emitSideWithTabs(tp, sd, depth, crest, tabs[si])
			} else {
				tp.Segments = append(tp.Segments, segment(model.Linear{}, sd.to, -depth))
			}
		}

		last := corner
		if leadOut != nil {
			tp.Segments = append(tp.Segments, segment(leadOut.motion(corner), leadOut.to, -depth))
			last = leadOut.to
		}
		tp.Segments = append(tp.Segments, segment(model.Rapid{}, last, set.SafeZ))
	}
}

// outlineProfile follows the part outline offset outward by the tool
// radius. Outline parts take no tabs or lead arcs; the shape decides
// where material remains.
func (s *Synthesizer) outlineProfile(tp *model.Toolpath, pl model.Placement, tool model.Tool) {
	set := s.Settings
	loop := placedOutline(pl, offsetOutline(pl.Part.Outline, tool.Diameter/2))
	if len(loop) < 3 {
		return
	}

	for pi, depth := range depthPasses(pl.Part.Thickness, set.PassDepth) {
		if pi == 0 {
			tp.Segments = append(tp.Segments, segment(model.Rapid{}, loop[0], set.RapidZ))
		}
		tp.Segments = append(tp.Segments,
			segment(model.Rapid{}, loop[0], set.SafeZ),
			segment(model.Linear{}, loop[0], -depth),
		)
		for _, p := range loop[1:] {
			tp.Segments = append(tp.Segments, segment(model.Linear{}, p, -depth))
		}
		tp.Segments = append(tp.Segments,
			segment(model.Linear{}, loop[0], -depth),
			segment(model.Rapid{}, loop[0], set.SafeZ),
		)
	}
}

// tabSpan is a gap along one side where the cutter rises to the crest.
type tabSpan struct {
	start, end float64 // distance along the side
}

// perimeterTabs lays out holding tabs per side: floor(sideLen/spacing)
// tabs, evenly pitched. The cutter stays up for the tab width plus one
// cutter diameter so the material left standing is the full tab width.
func (s *Synthesizer) perimeterTabs(sides [4]side, toolDiameter float64) [4][]tabSpan {
	var out [4][]tabSpan
	if s.Settings.TabSpacing <= 0 {
		return out
	}
	for i, sd := range sides {
		length := math.Hypot(sd.to.X-sd.from.X, sd.to.Y-sd.from.Y)
		out[i] = sideTabs(length, s.Settings.TabSpacing, s.Settings.TabWidth, toolDiameter)
	}
	return out
}

func sideTabs(length, spacing, width, toolDiameter float64) []tabSpan {
	if spacing <= 0 {
		return nil
	}
	n := int(math.Floor(length / spacing))
	if n <= 0 {
		return nil
	}
	half := (width + toolDiameter) / 2
	pitch := length / float64(n+1)
	spans := make([]tabSpan, 0, n)
	for k := 1; k <= n; k++ {
		c := pitch * float64(k)
		sp := tabSpan{start: c - half, end: c + half}
		if sp.start < 0 {
			sp.start = 0
		}
		if sp.end > length {
			sp.end = length
		}
		// Merge a span that runs into the previous one.
		if len(spans) > 0 && sp.start <= spans[len(spans)-1].end {
			spans[len(spans)-1].end = sp.end
			continue
		}
		spans = append(spans, sp)
	}
	return spans
}

// emitSideWithTabs cuts one side at depth, rising to the crest across
// each tab span and plunging back after it.
func emitSideWithTabs(tp *model.Toolpath, sd side, depth, crest float64, spans []tabSpan) {
	if len(spans) == 0 {
		tp.Segments = append(tp.Segments, segment(model.Linear{}, sd.to, -depth))
		return
	}
	dx := sd.to.X - sd.from.X
	dy := sd.to.Y - sd.from.Y
	length := math.Hypot(dx, dy)
	if length < 1e-9 {
		return
	}
	ux := dx / length
	uy := dy / length
	at := func(d float64) model.Point2D {
		return model.Point2D{X: sd.from.X + ux*d, Y: sd.from.Y + uy*d}
	}
	for _, sp := range spans {
		if sp.start > 0 {
			tp.Segments = append(tp.Segments, segment(model.Linear{}, at(sp.start), -depth))
		}
		tp.Segments = append(tp.Segments,
			segment(model.Linear{}, at(sp.start), -crest),
			segment(model.Linear{}, at(sp.end), -crest),
			segment(model.Linear{}, at(sp.end), -depth),
		)
	}
	tp.Segments = append(tp.Segments, segment(model.Linear{}, sd.to, -depth))
}

// leadArc is one lead move: an arc between an off-path point and the
// perimeter corner around a center kept outside the part.
type leadArc struct {
	from, to model.Point2D
	center   model.Point2D
	cw       bool
}

// motion builds the arc motion for this lead given the point the
// cutter is at when the arc starts. I and J are offsets from that
// start point to the arc center.
func (l leadArc) motion(start model.Point2D) model.Motion {
	i := l.center.X - start.X
	j := l.center.Y - start.Y
	if l.cw {
		return model.ArcCW{I: i, J: j}
	}
	return model.ArcCCW{I: i, J: j}
}

// leadArcs builds the lead-in and lead-out arcs for a perimeter
// anchored at the given corner, or nil when the radius is zero. Climb
// perimeters depart the corner along +X and return along -Y, so the
// entry arc is clockwise below the corner and the exit clockwise to
// its left; conventional milling mirrors both.
func (s *Synthesizer) leadArcs(corner model.Point2D) (in, out *leadArc) {
	set := s.Settings
	angle := set.LeadInAngle * math.Pi / 180

	if r := set.LeadInRadius; r > 0 {
		a := &leadArc{to: corner, cw: set.UseClimb}
		if set.UseClimb {
			a.center = model.Point2D{X: corner.X, Y: corner.Y - r}
			a.from = model.Point2D{X: corner.X - r*math.Sin(angle), Y: corner.Y - r + r*math.Cos(angle)}
		} else {
			a.center = model.Point2D{X: corner.X - r, Y: corner.Y}
			a.from = model.Point2D{X: corner.X - r + r*math.Cos(angle), Y: corner.Y - r*math.Sin(angle)}
		}
		in = a
	}

	if r := set.LeadOutRadius; r > 0 {
		a := &leadArc{from: corner, cw: set.UseClimb}
		if set.UseClimb {
			a.center = model.Point2D{X: corner.X - r, Y: corner.Y}
			a.to = model.Point2D{X: corner.X - r + r*math.Cos(angle), Y: corner.Y - r*math.Sin(angle)}
		} else {
			a.center = model.Point2D{X: corner.X, Y: corner.Y - r}
			a.to = model.Point2D{X: corner.X - r*math.Sin(angle), Y: corner.Y - r + r*math.Cos(angle)}
		}
		out = a
	}
	return in, out
}

// offsetOutline offsets the outline outward by dist. Each vertex moves
// along the average of its two adjacent edge normals (the normals
// point left of the travel direction).
func offsetOutline(outline model.Outline, dist float64) model.Outline {
	n := len(outline)
	if n < 3 {
		return outline
	}
	result := make(model.Outline, n)
	for i := 0; i < n; i++ {
		prev := outline[(i-1+n)%n]
		curr := outline[i]
		next := outline[(i+1)%n]

		n1x, n1y := normalize(-(curr.Y - prev.Y), curr.X-prev.X)
		n2x, n2y := normalize(-(next.Y - curr.Y), next.X-curr.X)

		nx := (n1x + n2x) / 2
		ny := (n1y + n2y) / 2
		if l := math.Hypot(nx, ny); l > 1e-9 {
			nx /= l
			ny /= l
		}
		result[i] = model.Point2D{X: curr.X + nx*dist, Y: curr.Y + ny*dist}
	}
	return result
}

// placedOutline maps a part-local outline into sheet coordinates.
func placedOutline(pl model.Placement, outline model.Outline) model.Outline {
	result := make(model.Outline, len(outline))
	for i, p := range outline {
		result[i] = placedPoint(pl, p.X, p.Y)
	}
	return result
}

func normalize(x, y float64) (float64, float64) {
	l := math.Hypot(x, y)
	if l < 1e-9 {
		return 0, 0
	}
	return x / l, y / l
}
