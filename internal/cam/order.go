package cam

import (
	"math"
	"sort"

	"github.com/piwi3910/partcam/internal/model"
)

// Order arranges toolpaths for execution: grouped by tool number
// ascending to minimize tool changes, then nearest-neighbor chained
// within each tool to shorten rapids, starting from the machine origin.
// Ties break on (PartLabel, OperationType, PlacementID) so the result
// is deterministic regardless of input order.
func Order(paths []model.AnnotatedToolpath) []model.AnnotatedToolpath {
	byTool := make(map[int][]model.AnnotatedToolpath)
	for _, p := range paths {
		byTool[p.ToolNumber] = append(byTool[p.ToolNumber], p)
	}

	tools := make([]int, 0, len(byTool))
	for n := range byTool {
		tools = append(tools, n)
	}
	sort.Ints(tools)

	out := make([]model.AnnotatedToolpath, 0, len(paths))
	pos := model.Point2D{}
	for _, n := range tools {
		group := byTool[n]
		// Canonical order first so nearest-neighbor ties resolve the
		// same way for any input permutation.
		sort.SliceStable(group, func(i, j int) bool {
			return pathLess(group[i], group[j])
		})
		for len(group) > 0 {
			best := 0
			bestDist := chainDist(pos, group[0])
			for i := 1; i < len(group); i++ {
				d := chainDist(pos, group[i])
				if d < bestDist-1e-9 {
					best = i
					bestDist = d
				}
			}
			next := group[best]
			out = append(out, next)
			group = append(group[:best], group[best+1:]...)
			if p, ok := endPoint(next); ok {
				pos = p
			}
		}
	}
	return out
}

func pathLess(a, b model.AnnotatedToolpath) bool {
	if a.PartLabel != b.PartLabel {
		return a.PartLabel < b.PartLabel
	}
	if a.OperationType != b.OperationType {
		return a.OperationType < b.OperationType
	}
	return a.PlacementID < b.PlacementID
}

func chainDist(from model.Point2D, p model.AnnotatedToolpath) float64 {
	s, ok := startPoint(p)
	if !ok {
		return math.Inf(1)
	}
	return math.Hypot(s.X-from.X, s.Y-from.Y)
}

func startPoint(p model.AnnotatedToolpath) (model.Point2D, bool) {
	if len(p.Segments) == 0 {
		return model.Point2D{}, false
	}
	return p.Segments[0].End, true
}

func endPoint(p model.AnnotatedToolpath) (model.Point2D, bool) {
	if len(p.Segments) == 0 {
		return model.Point2D{}, false
	}
	return p.Segments[len(p.Segments)-1].End, true
}
