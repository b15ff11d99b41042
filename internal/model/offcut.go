package model

import (
	"fmt"
	"math"
	"sort"
)

// Offcut represents a usable rectangular remnant area left over after
// cutting. Ids are deterministic per sheet so repeated runs produce
// identical reports.
type Offcut struct {
	ID            string  `json:"id"`
	SheetIndex    int     `json:"sheet_index"` // Index of the source sheet in the result
	Material      string  `json:"material"`
	Thickness     float64 `json:"thickness"`
	X             float64 `json:"x"` // Position on the sheet from left
	Y             float64 `json:"y"` // Position on the sheet from top
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	PricePerSheet float64 `json:"price_per_sheet,omitempty"` // Inherited price proportional to area
}

// Area returns the area of the offcut.
func (o Offcut) Area() float64 {
	return o.Width * o.Height
}

// ToStockSheet converts an offcut into a stock sheet for reuse in
// future projects.
func (o Offcut) ToStockSheet() StockSheet {
	sheet := NewStockSheet(fmt.Sprintf("Offcut sheet %d", o.SheetIndex), o.Width, o.Height, 1)
	sheet.Material = o.Material
	sheet.Thickness = o.Thickness
	sheet.PricePerSheet = o.PricePerSheet
	return sheet
}

// MinOffcutDimension is the minimum width or height for a remnant to be
// considered a usable offcut. Remnants smaller than this are waste.
const MinOffcutDimension = 50.0

// MinOffcutArea is the minimum area for a remnant to be considered usable.
const MinOffcutArea = 10000.0

// DetectOffcuts analyzes a sheet layout and identifies rectangular
// remnant areas large enough to be reused. It finds the clear strips to
// the right of and below all placed parts.
func DetectOffcuts(sl SheetLayout, kerf, pricePerSheet float64) []Offcut {
	sheetW := sl.Width
	sheetH := sl.Length

	if len(sl.Placements) == 0 {
		// Entire sheet is an offcut (unlikely but handle it)
		return []Offcut{{
			ID:            fmt.Sprintf("s%d-full", sl.Index),
			SheetIndex:    sl.Index,
			Material:      sl.Material,
			Thickness:     sl.Thickness,
			Width:         sheetW,
			Height:        sheetH,
			PricePerSheet: pricePerSheet,
		}}
	}

	// Bounding box of all placed parts, kerf included
	var maxPartRight, maxPartBottom float64
	for _, p := range sl.Placements {
		right := p.X + p.PlacedWidth() + kerf
		bottom := p.Y + p.PlacedHeight() + kerf
		if right > maxPartRight {
			maxPartRight = right
		}
		if bottom > maxPartBottom {
			maxPartBottom = bottom
		}
	}

	var offcuts []Offcut

	// Right strip: area to the right of all parts
	rightStripW := sheetW - maxPartRight
	if rightStripW >= MinOffcutDimension && sheetH >= MinOffcutDimension && rightStripW*sheetH >= MinOffcutArea {
		offcuts = append(offcuts, Offcut{
			ID:         fmt.Sprintf("s%d-right", sl.Index),
			SheetIndex: sl.Index,
			Material:   sl.Material,
			Thickness:  sl.Thickness,
			X:          maxPartRight,
			Y:          0,
			Width:      rightStripW,
			Height:     sheetH,
		})
	}

	// Bottom strip: area below all parts, only up to the right edge of
	// parts to avoid overlap with the right strip
	bottomStripH := sheetH - maxPartBottom
	usableBottomW := math.Min(maxPartRight, sheetW)
	if bottomStripH >= MinOffcutDimension && usableBottomW >= MinOffcutDimension && bottomStripH*usableBottomW >= MinOffcutArea {
		offcuts = append(offcuts, Offcut{
			ID:         fmt.Sprintf("s%d-bottom", sl.Index),
			SheetIndex: sl.Index,
			Material:   sl.Material,
			Thickness:  sl.Thickness,
			X:          0,
			Y:          maxPartBottom,
			Width:      usableBottomW,
			Height:     bottomStripH,
		})
	}

	// Proportional pricing
	if pricePerSheet > 0 {
		totalSheetArea := sheetW * sheetH
		for i := range offcuts {
			offcuts[i].PricePerSheet = (offcuts[i].Area() / totalSheetArea) * pricePerSheet
		}
	}

	// Largest offcuts first
	sort.Slice(offcuts, func(i, j int) bool {
		return offcuts[i].Area() > offcuts[j].Area()
	})

	return offcuts
}

// DetectAllOffcuts finds offcuts across all sheets in a nesting result.
func DetectAllOffcuts(result NestingResult, kerf, pricePerSheet float64) []Offcut {
	var all []Offcut
	for _, sheet := range result.Sheets {
		all = append(all, DetectOffcuts(sheet, kerf, pricePerSheet)...)
	}
	return all
}

// TotalOffcutArea returns the total area of all offcuts.
func TotalOffcutArea(offcuts []Offcut) float64 {
	var total float64
	for _, o := range offcuts {
		total += o.Area()
	}
	return total
}
