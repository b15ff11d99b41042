package validate

import (
	"math"

	"github.com/piwi3910/partcam/internal/machine"
	"github.com/piwi3910/partcam/internal/model"
)

// CheckFixtures scans a nesting result for placements whose profile cut
// brings the tool too close to a bed fixture. The tool is modeled as a
// circle of the given diameter; a finding is raised when the distance
// from a sampled tool position to a fixture footprint is less than the
// tool radius plus the requested clearance.
//
// Sampled positions per part: the four corners and four side midpoints
// of the offset perimeter (cutting) and the part center (rapid
// approach). One finding per (sheet, part, fixture) triple.
func CheckFixtures(result model.NestingResult, fixtures []machine.FixtureZone, toolDiameter, clearance float64) []Warning {
	if len(fixtures) == 0 {
		return nil
	}

	toolRadius := toolDiameter / 2.0
	effectiveRadius := toolRadius + clearance

	type key struct {
		sheet   int
		part    int
		fixture string
	}
	seen := make(map[key]bool)
	var warnings []Warning

	for sheetIdx, sheet := range result.Sheets {
		for partIdx, placement := range sheet.Placements {
			for _, pos := range profilePositions(placement, toolRadius) {
				for _, fz := range fixtures {
					k := key{sheetIdx, partIdx, fz.Label}
					if seen[k] {
						continue
					}
					dist := distanceToZone(pos.x, pos.y, fz)
					if dist < effectiveRadius {
						seen[k] = true
						warnings = append(warnings, FixtureCollision{
							SheetIndex:   sheetIdx,
							PartLabel:    placement.Part.Label,
							FixtureLabel: fz.Label,
							ToolX:        pos.x,
							ToolY:        pos.y,
							Clearance:    dist - toolRadius,
							DuringCut:    pos.isCut,
						})
					}
				}
			}
		}
	}
	return warnings
}

// toolPosition is a position the tool center visits during machining.
type toolPosition struct {
	x, y  float64
	isCut bool
}

// profilePositions returns the key positions the tool center visits
// when cutting around a placement's perimeter. The tool cuts outside
// the part boundary, offset by the tool radius.
func profilePositions(p model.Placement, toolRadius float64) []toolPosition {
	pw := p.PlacedWidth()
	ph := p.PlacedHeight()

	x0 := p.X - toolRadius
	y0 := p.Y - toolRadius
	x1 := p.X + pw + toolRadius
	y1 := p.Y + ph + toolRadius

	return []toolPosition{
		// Corners are the most likely to meet clamps at sheet edges
		{x0, y0, true},
		{x1, y0, true},
		{x1, y1, true},
		{x0, y1, true},
		// Side midpoints
		{(x0 + x1) / 2, y0, true},
		{x1, (y0 + y1) / 2, true},
		{(x0 + x1) / 2, y1, true},
		{x0, (y0 + y1) / 2, true},
		// Part center, visited during the rapid approach
		{p.X + pw/2, p.Y + ph/2, false},
	}
}

// distanceToZone computes the minimum distance from a point to a
// fixture footprint. Zero when the point is inside the zone.
func distanceToZone(px, py float64, fz machine.FixtureZone) float64 {
	nearestX := math.Max(fz.X, math.Min(px, fz.X+fz.Width))
	nearestY := math.Max(fz.Y, math.Min(py, fz.Y+fz.Height))

	dx := px - nearestX
	dy := py - nearestY

	return math.Sqrt(dx*dx + dy*dy)
}
