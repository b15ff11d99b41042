package model

import (
	"math"
	"strings"
)

// EdgeBandingSpec marks which edges of a part receive edge banding.
// Banding is a bill-of-materials concern only; it never affects nesting
// or toolpaths.
type EdgeBandingSpec struct {
	Top    bool `json:"top"`
	Bottom bool `json:"bottom"`
	Left   bool `json:"left"`
	Right  bool `json:"right"`
}

// HasAny reports whether any edge is banded.
func (e EdgeBandingSpec) HasAny() bool {
	return e.Top || e.Bottom || e.Left || e.Right
}

// EdgeCount returns the number of banded edges.
func (e EdgeBandingSpec) EdgeCount() int {
	n := 0
	for _, b := range []bool{e.Top, e.Bottom, e.Left, e.Right} {
		if b {
			n++
		}
	}
	return n
}

// LinearLength returns the banding length for one piece of the given size.
func (e EdgeBandingSpec) LinearLength(width, height float64) float64 {
	var total float64
	if e.Top {
		total += width
	}
	if e.Bottom {
		total += width
	}
	if e.Left {
		total += height
	}
	if e.Right {
		total += height
	}
	return total
}

// String renders the banded edges compactly, e.g. "T+B+L+R".
func (e EdgeBandingSpec) String() string {
	var parts []string
	if e.Top {
		parts = append(parts, "T")
	}
	if e.Bottom {
		parts = append(parts, "B")
	}
	if e.Left {
		parts = append(parts, "L")
	}
	if e.Right {
		parts = append(parts, "R")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "+")
}

// EdgeBandingSummary holds the calculated edge banding requirements for
// a part list.
type EdgeBandingSummary struct {
	TotalLinear    float64 `json:"total_linear"`     // Total banding length (no waste)
	WastePercent   float64 `json:"waste_percent"`    // Waste percentage applied
	TotalWithWaste float64 `json:"total_with_waste"` // Total including waste, rounded up
	PartCount      int     `json:"part_count"`       // Individual pieces needing banding
	EdgeCount      int     `json:"edge_count"`       // Total edges needing banding
}

// CalculateEdgeBanding computes the total edge banding needed for a list
// of parts. wastePercent is the additional percentage to add for waste
// (e.g. 10 for 10%).
func CalculateEdgeBanding(parts []Part, wastePercent float64) EdgeBandingSummary {
	var total float64
	var partCount, edgeCount int

	for _, p := range parts {
		if !p.EdgeBanding.HasAny() {
			continue
		}
		lengthPerPiece := p.EdgeBanding.LinearLength(p.Width, p.Height)
		edgesPerPiece := p.EdgeBanding.EdgeCount()

		total += lengthPerPiece * float64(p.Quantity)
		partCount += p.Quantity
		edgeCount += edgesPerPiece * p.Quantity
	}

	wasteFactor := 1.0 + (wastePercent / 100.0)

	return EdgeBandingSummary{
		TotalLinear:    total,
		WastePercent:   wastePercent,
		TotalWithWaste: math.Ceil(total * wasteFactor),
		PartCount:      partCount,
		EdgeCount:      edgeCount,
	}
}

// PerPartEdgeBanding is a per-part breakdown of edge banding needs.
type PerPartEdgeBanding struct {
	Label         string  `json:"label"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	Quantity      int     `json:"quantity"`
	Edges         string  `json:"edges"` // e.g. "T+B+L+R"
	LengthPerUnit float64 `json:"length_per_unit"`
	TotalLength   float64 `json:"total_length"`
}

// CalculatePerPartEdgeBanding returns a breakdown of banding per part type.
func CalculatePerPartEdgeBanding(parts []Part) []PerPartEdgeBanding {
	var results []PerPartEdgeBanding
	for _, p := range parts {
		if !p.EdgeBanding.HasAny() {
			continue
		}
		lengthPerUnit := p.EdgeBanding.LinearLength(p.Width, p.Height)
		results = append(results, PerPartEdgeBanding{
			Label:         p.Label,
			Width:         p.Width,
			Height:        p.Height,
			Quantity:      p.Quantity,
			Edges:         p.EdgeBanding.String(),
			LengthPerUnit: lengthPerUnit,
			TotalLength:   lengthPerUnit * float64(p.Quantity),
		})
	}
	return results
}
