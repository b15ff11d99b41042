package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/piwi3910/partcam/internal/model"
)

// Waste factors applied to the purchasing and edge banding estimates.
const (
	purchaseWastePercent = 15.0
	bandingWastePercent  = 10.0
)

// MaterialUsage summarizes sheet consumption for one material group.
type MaterialUsage struct {
	Material    string  `json:"material"`
	Thickness   float64 `json:"thickness"`
	SheetCount  int     `json:"sheet_count"`
	PartsPlaced int     `json:"parts_placed"`
	Utilization float64 `json:"utilization"`
	OffcutArea  float64 `json:"offcut_area"`
}

// UnplacedPart records a part that did not fit on any sheet.
type UnplacedPart struct {
	Label    string  `json:"label"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Material string  `json:"material"`
}

// BOM is the bill of materials for a nested project: per-material
// sheet usage, a purchase recommendation, edge banding requirements
// and reusable offcuts.
type BOM struct {
	Project        string                     `json:"project"`
	Machine        string                     `json:"machine"`
	Materials      []MaterialUsage            `json:"materials"`
	Purchase       model.PurchaseEstimate     `json:"purchase"`
	EdgeBanding    model.EdgeBandingSummary   `json:"edge_banding"`
	BandingPerPart []model.PerPartEdgeBanding `json:"banding_per_part,omitempty"`
	Offcuts        []model.Offcut             `json:"offcuts,omitempty"`
	Unplaced       []UnplacedPart             `json:"unplaced,omitempty"`
}

// BuildBOM assembles the bill of materials from a project and its
// nesting results. When pricePerSheet is zero, the first stock entry
// carrying a price is used instead.
func BuildBOM(proj model.Project, groups []model.MaterialGroupResult, pricePerSheet float64) BOM {
	if pricePerSheet == 0 {
		for _, s := range proj.Stocks {
			if s.PricePerSheet > 0 {
				pricePerSheet = s.PricePerSheet
				break
			}
		}
	}

	bom := BOM{
		Project: proj.Name,
		Machine: proj.Machine,
		Purchase: model.CalculatePurchaseEstimate(proj.Parts,
			proj.Nesting.SheetWidth, proj.Nesting.SheetLength,
			proj.Nesting.Kerf, purchaseWastePercent, pricePerSheet),
		EdgeBanding:    model.CalculateEdgeBanding(proj.Parts, bandingWastePercent),
		BandingPerPart: model.CalculatePerPartEdgeBanding(proj.Parts),
	}

	for _, g := range groups {
		placed := 0
		for _, s := range g.Result.Sheets {
			placed += len(s.Placements)
		}
		offcuts := model.DetectAllOffcuts(g.Result, proj.Nesting.Kerf, pricePerSheet)

		bom.Materials = append(bom.Materials, MaterialUsage{
			Material:    g.Material,
			Thickness:   g.Thickness,
			SheetCount:  g.Result.SheetCount(),
			PartsPlaced: placed,
			Utilization: g.Result.OverallUtilization(),
			OffcutArea:  model.TotalOffcutArea(offcuts),
		})
		bom.Offcuts = append(bom.Offcuts, offcuts...)

		for _, p := range g.Result.Unplaced {
			bom.Unplaced = append(bom.Unplaced, UnplacedPart{
				Label:    p.Label,
				Width:    p.Width,
				Height:   p.Height,
				Material: p.Material,
			})
		}
	}

	return bom
}

// ExportBOM writes the bill of materials as indented JSON.
func ExportBOM(path string, bom BOM) error {
	data, err := json.MarshalIndent(bom, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal bom: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	return nil
}
