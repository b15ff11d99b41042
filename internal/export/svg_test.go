package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/partcam/internal/model"
)

func TestSheetSVG_OneRectPerPlacement(t *testing.T) {
	sheet := buildTestGroups()[0].Result.Sheets[0]

	doc := SheetSVG(sheet, nil, testNestingConfig())

	if got := strings.Count(doc, `class="part"`); got != len(sheet.Placements) {
		t.Errorf("expected %d part rects, got %d", len(sheet.Placements), got)
	}
}

func TestSheetSVG_LabelsAndRotationMark(t *testing.T) {
	sheet := buildTestGroups()[0].Result.Sheets[0]

	doc := SheetSVG(sheet, nil, testNestingConfig())

	if !strings.Contains(doc, ">Side Panel</text>") {
		t.Error("missing part label")
	}
	if !strings.Contains(doc, ">Shelf (R)</text>") {
		t.Error("rotated part should carry the (R) mark")
	}
}

func TestSheetSVG_FixtureZones(t *testing.T) {
	sheet := buildTestGroups()[0].Result.Sheets[0]

	doc := SheetSVG(sheet, testFixtures(), testNestingConfig())

	if !strings.Contains(doc, `class="fixture"`) {
		t.Error("missing fixture rect")
	}
	if !strings.Contains(doc, `url(#keepclear)`) {
		t.Error("fixture rect should use the hatch pattern")
	}
	if !strings.Contains(doc, ">Clamp</text>") {
		t.Error("missing fixture label")
	}
}

func TestSheetSVG_MarginFrame(t *testing.T) {
	sheet := buildTestGroups()[0].Result.Sheets[0]
	cfg := testNestingConfig()

	doc := SheetSVG(sheet, nil, cfg)
	if !strings.Contains(doc, `class="margin"`) || !strings.Contains(doc, "stroke-dasharray") {
		t.Error("expected dashed margin frame")
	}

	cfg.EdgeMargin = 0
	doc = SheetSVG(sheet, nil, cfg)
	if strings.Contains(doc, `class="margin"`) {
		t.Error("margin frame should be omitted when edge margin is zero")
	}
}

func TestSheetSVG_DrillCircles(t *testing.T) {
	sheet := buildTestGroups()[1].Result.Sheets[0]

	doc := SheetSVG(sheet, nil, testNestingConfig())

	if !strings.Contains(doc, `class="drill"`) {
		t.Fatal("missing drill circle")
	}
	// Part at (10,10), drill at part-local (37,100)
	if !strings.Contains(doc, `cx="47" cy="110" r="2.5"`) {
		t.Error("drill circle not mapped onto the sheet")
	}
}

func TestSheetSVG_Caption(t *testing.T) {
	sheet := buildTestGroups()[0].Result.Sheets[0]

	doc := SheetSVG(sheet, nil, testNestingConfig())

	if !strings.Contains(doc, "Sheet 1: birch-ply 18mm, 3 parts, 17.1% used") {
		t.Error("missing or wrong caption line")
	}
}

func TestSheetSVG_EscapesLabels(t *testing.T) {
	sheet := model.SheetLayout{
		Index: 0, Material: "mdf", Width: 1000, Length: 500,
		Placements: []model.Placement{
			{
				ID:   "p1-1",
				Part: model.Part{ID: "p1", Label: "Panel <A> & B", Width: 300, Height: 200, Quantity: 1},
				X:    10, Y: 10,
			},
		},
	}

	doc := SheetSVG(sheet, nil, testNestingConfig())

	if !strings.Contains(doc, "Panel &lt;A&gt; &amp; B") {
		t.Error("label markup characters must be escaped")
	}
	if strings.Contains(doc, "<A>") {
		t.Error("raw markup leaked into the document")
	}
}

func TestSheetSVG_Deterministic(t *testing.T) {
	sheet := buildTestGroups()[0].Result.Sheets[0]
	cfg := testNestingConfig()

	if SheetSVG(sheet, testFixtures(), cfg) != SheetSVG(sheet, testFixtures(), cfg) {
		t.Error("identical input must render identically")
	}
}

func TestExportSVG_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sheet.svg")

	sheet := buildTestGroups()[0].Result.Sheets[0]
	if err := ExportSVG(path, sheet, nil, testNestingConfig()); err != nil {
		t.Fatalf("ExportSVG returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("SVG file was not created: %v", err)
	}
	doc := string(data)
	if !strings.HasPrefix(doc, "<svg ") {
		t.Errorf("unexpected file start: %q", doc[:20])
	}
	if !strings.HasSuffix(doc, "</svg>\n") {
		t.Error("document not closed")
	}
}
