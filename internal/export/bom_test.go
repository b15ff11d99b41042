package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/partcam/internal/model"
)

func buildBOMProject() model.Project {
	proj := model.NewProject()
	proj.Name = "Kitchen Cabinets"
	proj.Parts = []model.Part{
		{
			ID: "p1", Label: "Side Panel", Width: 600, Height: 400, Thickness: 18,
			Material: "birch-ply", Quantity: 2,
			EdgeBanding: model.EdgeBandingSpec{Top: true, Bottom: true},
		},
		{
			ID: "p2", Label: "Back Panel", Width: 800, Height: 500, Thickness: 12,
			Material: "mdf", Quantity: 1,
		},
	}
	proj.Stocks = []model.StockSheet{
		{
			ID: "s1", Label: "Ply", Material: "birch-ply", Width: 2440, Length: 1220,
			Thickness: 18, Quantity: 5, PricePerSheet: 85,
		},
	}
	return proj
}

func TestBuildBOM_Materials(t *testing.T) {
	bom := BuildBOM(buildBOMProject(), buildTestGroups(), 0)

	if bom.Project != "Kitchen Cabinets" {
		t.Errorf("project = %q", bom.Project)
	}
	if len(bom.Materials) != 2 {
		t.Fatalf("expected 2 material entries, got %d", len(bom.Materials))
	}

	first := bom.Materials[0]
	if first.Material != "birch-ply" || first.Thickness != 18 {
		t.Errorf("unexpected first material: %+v", first)
	}
	if first.SheetCount != 1 || first.PartsPlaced != 3 {
		t.Errorf("sheet/part counts: %+v", first)
	}
	if first.Utilization <= 0 {
		t.Errorf("utilization should be positive, got %v", first.Utilization)
	}
}

func TestBuildBOM_PriceFallback(t *testing.T) {
	bom := BuildBOM(buildBOMProject(), buildTestGroups(), 0)

	if bom.Purchase.PricePerSheet != 85 {
		t.Errorf("expected stock price 85 to be used, got %v", bom.Purchase.PricePerSheet)
	}
	if bom.Purchase.EstimatedCost <= 0 {
		t.Errorf("estimated cost should be positive, got %v", bom.Purchase.EstimatedCost)
	}
}

func TestBuildBOM_ExplicitPriceWins(t *testing.T) {
	bom := BuildBOM(buildBOMProject(), buildTestGroups(), 60)

	if bom.Purchase.PricePerSheet != 60 {
		t.Errorf("explicit price should win, got %v", bom.Purchase.PricePerSheet)
	}
}

func TestBuildBOM_EdgeBanding(t *testing.T) {
	bom := BuildBOM(buildBOMProject(), buildTestGroups(), 0)

	// Two side panels banded top and bottom: 2 * (600 + 600) mm.
	if bom.EdgeBanding.TotalLinear != 2400 {
		t.Errorf("total linear banding = %v, want 2400", bom.EdgeBanding.TotalLinear)
	}
	if bom.EdgeBanding.TotalWithWaste != 2640 {
		t.Errorf("banding with waste = %v, want 2640", bom.EdgeBanding.TotalWithWaste)
	}
	if len(bom.BandingPerPart) != 1 {
		t.Fatalf("expected 1 per-part banding entry, got %d", len(bom.BandingPerPart))
	}
	if bom.BandingPerPart[0].Edges != "T+B" {
		t.Errorf("edges = %q, want T+B", bom.BandingPerPart[0].Edges)
	}
}

func TestBuildBOM_Offcuts(t *testing.T) {
	bom := BuildBOM(buildBOMProject(), buildTestGroups(), 0)

	if len(bom.Offcuts) == 0 {
		t.Fatal("expected offcuts from sparsely filled sheets")
	}
	for _, m := range bom.Materials {
		if m.OffcutArea <= 0 {
			t.Errorf("material %s has no offcut area", m.Material)
		}
	}
	// Offcuts inherit a proportional share of the sheet price.
	for _, o := range bom.Offcuts {
		if o.PricePerSheet <= 0 {
			t.Errorf("offcut %s has no inherited price", o.ID)
		}
	}
}

func TestBuildBOM_Unplaced(t *testing.T) {
	groups := buildTestGroups()
	groups[0].Result.Unplaced = []model.Part{
		{ID: "u1", Label: "Too Big", Width: 3000, Height: 2000, Material: "birch-ply", Quantity: 1},
	}

	bom := BuildBOM(buildBOMProject(), groups, 0)

	if len(bom.Unplaced) != 1 {
		t.Fatalf("expected 1 unplaced entry, got %d", len(bom.Unplaced))
	}
	if bom.Unplaced[0].Label != "Too Big" || bom.Unplaced[0].Material != "birch-ply" {
		t.Errorf("unexpected unplaced entry: %+v", bom.Unplaced[0])
	}
}

func TestExportBOM_WritesJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bom.json")

	bom := BuildBOM(buildBOMProject(), buildTestGroups(), 0)
	if err := ExportBOM(path, bom); err != nil {
		t.Fatalf("ExportBOM returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("BOM file was not created: %v", err)
	}

	var decoded BOM
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("BOM file is not valid JSON: %v", err)
	}
	if decoded.Project != "Kitchen Cabinets" {
		t.Errorf("project = %q", decoded.Project)
	}
	if len(decoded.Materials) != 2 {
		t.Errorf("expected 2 materials after round trip, got %d", len(decoded.Materials))
	}
}
