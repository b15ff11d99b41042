package model

import "github.com/google/uuid"

// Strategy names understood by the nesting engine.
const (
	StrategyGuillotine = "guillotine"
	StrategyGenetic    = "genetic"
)

// NestingConfig controls the bin-packing pass for one material group.
// Sheets are SheetWidth across (X) and SheetLength along (Y).
type NestingConfig struct {
	SheetWidth    float64 `json:"sheet_width"`
	SheetLength   float64 `json:"sheet_length"`
	Kerf          float64 `json:"kerf"`        // Blade/bit width between placements
	EdgeMargin    float64 `json:"edge_margin"` // Inset from every sheet edge
	AllowRotation bool    `json:"allow_rotation"`
	Strategy      string  `json:"strategy"` // "guillotine" (default) or "genetic"
}

func DefaultNestingConfig() NestingConfig {
	return NestingConfig{
		SheetWidth:    1220,
		SheetLength:   2440,
		Kerf:          6.0,
		EdgeMargin:    10.0,
		AllowRotation: true,
		Strategy:      StrategyGuillotine,
	}
}

// StockSheet represents an available sheet of material to cut from.
// When a project carries stock sheets, the nesting engine prefers them
// over the config's default sheet size for matching material groups.
type StockSheet struct {
	ID            string  `json:"id"`
	Label         string  `json:"label"`
	Material      string  `json:"material"`
	Width         float64 `json:"width"`
	Length        float64 `json:"length"`
	Thickness     float64 `json:"thickness"`
	Grain         Grain   `json:"grain"`
	Quantity      int     `json:"quantity"`
	PricePerSheet float64 `json:"price_per_sheet,omitempty"`
}

func NewStockSheet(label string, w, l float64, qty int) StockSheet {
	return StockSheet{
		ID:       uuid.New().String()[:8],
		Label:    label,
		Width:    w,
		Length:   l,
		Quantity: qty,
	}
}

// Placement represents a single part instance placed on a sheet.
type Placement struct {
	ID      string  `json:"id"` // Unique within a nesting result
	Part    Part    `json:"part"`
	X       float64 `json:"x"`       // Position from left edge
	Y       float64 `json:"y"`       // Position from top edge
	Rotated bool    `json:"rotated"` // Whether part was rotated 90°
}

// PlacedWidth returns the effective width considering rotation.
func (p Placement) PlacedWidth() float64 {
	if p.Rotated {
		return p.Part.Height
	}
	return p.Part.Width
}

// PlacedHeight returns the effective height considering rotation.
func (p Placement) PlacedHeight() float64 {
	if p.Rotated {
		return p.Part.Width
	}
	return p.Part.Height
}

// Rect returns the occupied rectangle on the sheet, without kerf.
func (p Placement) Rect() Rect {
	return Rect{X: p.X, Y: p.Y, W: p.PlacedWidth(), H: p.PlacedHeight()}
}

// SheetLayout is one sheet of a nesting result with its placed parts.
type SheetLayout struct {
	Index      int         `json:"sheet_index"`
	Material   string      `json:"material"`
	Thickness  float64     `json:"thickness"`
	Width      float64     `json:"width"`
	Length     float64     `json:"length"`
	Placements []Placement `json:"placements"`
}

// UsedArea returns the total area used by placed parts.
func (sl SheetLayout) UsedArea() float64 {
	var total float64
	for _, p := range sl.Placements {
		total += p.PlacedWidth() * p.PlacedHeight()
	}
	return total
}

// TotalArea returns the sheet area.
func (sl SheetLayout) TotalArea() float64 {
	return sl.Width * sl.Length
}

// WasteArea returns the sheet area not covered by placed parts.
func (sl SheetLayout) WasteArea() float64 {
	return sl.TotalArea() - sl.UsedArea()
}

// Utilization returns the usage percentage, 0 to 100.
func (sl SheetLayout) Utilization() float64 {
	ta := sl.TotalArea()
	if ta == 0 {
		return 0
	}
	return (sl.UsedArea() / ta) * 100.0
}

// NestingResult holds the full solution for one material group. Parts
// that fit no sheet land in Unplaced; they are never silently dropped.
type NestingResult struct {
	Sheets   []SheetLayout `json:"sheets"`
	Unplaced []Part        `json:"unplaced"`
}

// SheetCount returns the number of sheets consumed.
func (nr NestingResult) SheetCount() int {
	return len(nr.Sheets)
}

// OverallUtilization returns material usage across all sheets, percent.
func (nr NestingResult) OverallUtilization() float64 {
	var usedArea, totalArea float64
	for _, s := range nr.Sheets {
		usedArea += s.UsedArea()
		totalArea += s.TotalArea()
	}
	if totalArea == 0 {
		return 0
	}
	return (usedArea / totalArea) * 100.0
}

// UnplacedIDs returns the part instance ids that did not fit any sheet.
func (nr NestingResult) UnplacedIDs() []string {
	ids := make([]string, len(nr.Unplaced))
	for i, p := range nr.Unplaced {
		ids[i] = p.ID
	}
	return ids
}

// PlacedIDs returns every placed part instance id across all sheets.
func (nr NestingResult) PlacedIDs() []string {
	var ids []string
	for _, s := range nr.Sheets {
		for _, p := range s.Placements {
			ids = append(ids, p.Part.ID)
		}
	}
	return ids
}

// MaterialGroupResult pairs a material group with its nesting solution.
type MaterialGroupResult struct {
	Material  string        `json:"material"`
	Thickness float64       `json:"thickness"`
	Result    NestingResult `json:"result"`
}
