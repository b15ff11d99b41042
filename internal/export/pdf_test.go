package export

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/partcam/internal/machine"
	"github.com/piwi3910/partcam/internal/model"
)

// buildTestGroups creates a realistic two-material nesting result.
func buildTestGroups() []model.MaterialGroupResult {
	return []model.MaterialGroupResult{
		{
			Material:  "birch-ply",
			Thickness: 18,
			Result: model.NestingResult{
				Sheets: []model.SheetLayout{
					{
						Index: 0, Material: "birch-ply", Thickness: 18, Width: 2440, Length: 1220,
						Placements: []model.Placement{
							{
								ID:   "p1-1",
								Part: model.Part{ID: "p1", Label: "Side Panel", Width: 600, Height: 400, Thickness: 18, Material: "birch-ply", Quantity: 1},
								X:    10, Y: 10,
							},
							{
								ID:   "p2-1",
								Part: model.Part{ID: "p2", Label: "Top", Width: 500, Height: 300, Thickness: 18, Material: "birch-ply", Quantity: 1},
								X:    620, Y: 10,
							},
							{
								ID:   "p3-1",
								Part: model.Part{ID: "p3", Label: "Shelf", Width: 400, Height: 300, Thickness: 18, Material: "birch-ply", Quantity: 1},
								X:    10, Y: 420, Rotated: true,
							},
						},
					},
				},
			},
		},
		{
			Material:  "mdf",
			Thickness: 12,
			Result: model.NestingResult{
				Sheets: []model.SheetLayout{
					{
						Index: 0, Material: "mdf", Thickness: 12, Width: 1200, Length: 600,
						Placements: []model.Placement{
							{
								ID: "p4-1",
								Part: model.Part{
									ID: "p4", Label: "Back Panel", Width: 800, Height: 500, Thickness: 12, Material: "mdf", Quantity: 1,
									Operations: model.OperationList{
										model.Drill{X: 37, Y: 100, Diameter: 5, Depth: 12},
										model.Dado{Position: 200, Width: 12, Depth: 6, Orientation: model.OrientHorizontal},
									},
								},
								X: 10, Y: 10,
							},
						},
					},
				},
			},
		},
	}
}

func testFixtures() []machine.FixtureZone {
	return []machine.FixtureZone{
		{Label: "Clamp", X: 0, Y: 1150, Width: 120, Height: 70, ZHeight: 40},
	}
}

func testNestingConfig() model.NestingConfig {
	return model.NestingConfig{
		SheetWidth:    2440,
		SheetLength:   1220,
		Kerf:          6,
		EdgeMargin:    10,
		AllowRotation: true,
		Strategy:      model.StrategyGuillotine,
	}
}

func TestExportPDF_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.pdf")

	err := ExportPDF(path, buildTestGroups(), nil, testNestingConfig())
	if err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("PDF file is empty")
	}
	// A valid PDF with 3 pages (2 sheets + summary) should be a reasonable size
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportPDF_EmptyResult(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.pdf")

	err := ExportPDF(path, nil, nil, testNestingConfig())
	if err == nil {
		t.Fatal("expected error for empty result, got nil")
	}
}

func TestExportPDF_WithUnplacedParts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unplaced.pdf")

	groups := buildTestGroups()
	groups[0].Result.Unplaced = []model.Part{
		{ID: "u1", Label: "Too Big", Width: 3000, Height: 2000, Material: "birch-ply", Quantity: 1},
		{ID: "u2", Label: "Another", Width: 1500, Height: 1500, Material: "birch-ply", Quantity: 1},
	}

	err := ExportPDF(path, groups, nil, testNestingConfig())
	if err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("PDF file is empty")
	}
}

func TestExportPDF_WithFixtureZones(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixtures.pdf")

	err := ExportPDF(path, buildTestGroups(), testFixtures(), testNestingConfig())
	if err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("PDF file is empty")
	}
}

func TestExportPDF_ManyParts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "many_parts.pdf")

	// More parts than colors to exercise color cycling
	placements := make([]model.Placement, 20)
	for i := range placements {
		placements[i] = model.Placement{
			ID: fmt.Sprintf("p%d-1", i),
			Part: model.Part{
				ID:       fmt.Sprintf("p%d", i),
				Label:    fmt.Sprintf("Part %d", i+1),
				Width:    100,
				Height:   80,
				Quantity: 1,
			},
			X:       float64((i % 5) * 110),
			Y:       float64((i / 5) * 90),
			Rotated: i%3 == 0,
		}
	}

	groups := []model.MaterialGroupResult{
		{
			Material: "melamine",
			Result: model.NestingResult{
				Sheets: []model.SheetLayout{
					{Index: 0, Material: "melamine", Width: 600, Length: 400, Placements: placements},
				},
			},
		},
	}

	err := ExportPDF(path, groups, nil, testNestingConfig())
	if err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("PDF file is empty")
	}
}

func TestCountSheets(t *testing.T) {
	got := countSheets(buildTestGroups())
	if got != 2 {
		t.Errorf("countSheets() = %d, want 2", got)
	}
	if got := countSheets(nil); got != 0 {
		t.Errorf("countSheets(nil) = %d, want 0", got)
	}
}

func TestLabelFontSize(t *testing.T) {
	tests := []struct {
		w, h float64
		want float64
	}{
		{50, 50, 8},
		{30, 25, 7},
		{10, 15, 6},
	}
	for _, tt := range tests {
		got := labelFontSize(tt.w, tt.h)
		if got != tt.want {
			t.Errorf("labelFontSize(%v, %v) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestPlacedOpPoint(t *testing.T) {
	part := model.Part{Width: 400, Height: 300}

	straight := model.Placement{Part: part, X: 100, Y: 50}
	if got := placedOpPoint(straight, 37, 100); got != (model.Point2D{X: 137, Y: 150}) {
		t.Errorf("unrotated op point = %+v", got)
	}

	rotated := model.Placement{Part: part, X: 100, Y: 50, Rotated: true}
	if got := placedOpPoint(rotated, 37, 100); got != (model.Point2D{X: 300, Y: 87}) {
		t.Errorf("rotated op point = %+v", got)
	}
}
