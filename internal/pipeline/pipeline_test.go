package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/partcam/internal/machine"
	"github.com/piwi3910/partcam/internal/model"
	"github.com/piwi3910/partcam/internal/project"
)

func cabinetProject() model.Project {
	proj := model.NewProject()
	proj.Name = "Wall Cabinet"
	proj.Machine = "AXYZ Infinite"

	side := model.NewPart("Side", 720, 400, 2)
	side.Material = "birch-ply"
	side.Thickness = 18
	shelf := model.NewPart("Shelf", 564, 380, 3)
	shelf.Material = "birch-ply"
	shelf.Thickness = 18
	shelf.Operations = []model.Operation{
		model.Drill{X: 50, Y: 50, Diameter: 5, Depth: 12},
	}
	back := model.NewPart("Back", 600, 300, 1)
	back.Material = "mdf"
	back.Thickness = 6

	proj.Parts = []model.Part{side, shelf, back}
	return proj
}

func testPipeline() *Pipeline {
	return New(nil, nil, nil)
}

func nested(t *testing.T, p *Pipeline, proj model.Project) []model.MaterialGroupResult {
	t.Helper()
	groups, report, err := p.Nest(context.Background(), proj)
	require.NoError(t, err)
	require.True(t, report.OK())
	return groups
}

// ─── Construction ────────────────────────────────────────────────────

func TestNew_NilDependencies(t *testing.T) {
	p := New(nil, nil, nil)
	require.NotNil(t, p.Registry)
	require.NotNil(t, p.Log)

	_, ok := p.Registry.Lookup("Generic")
	assert.True(t, ok, "nil registry should fall back to built-ins")
}

// ─── Validate ────────────────────────────────────────────────────────

func TestValidate_CleanProject(t *testing.T) {
	report := testPipeline().Validate(cabinetProject())
	assert.True(t, report.OK())
	assert.Empty(t, report.Warnings)
}

func TestValidate_MissingToolsBlock(t *testing.T) {
	proj := cabinetProject()
	proj.Tools = nil

	report := testPipeline().Validate(proj)
	assert.False(t, report.OK())
}

func TestValidate_UnknownMachineFallsBackToGeneric(t *testing.T) {
	proj := cabinetProject()
	proj.Machine = "No Such Machine"

	// The Generic fallback keeps validation meaningful; parts small
	// enough for any built-in bed still pass.
	report := testPipeline().Validate(proj)
	assert.True(t, report.OK())
}

// ─── Nest ────────────────────────────────────────────────────────────

func TestNest_GroupsPerMaterialInOrder(t *testing.T) {
	groups := nested(t, testPipeline(), cabinetProject())

	require.Len(t, groups, 2)
	assert.Equal(t, "birch-ply", groups[0].Material)
	assert.Equal(t, 18.0, groups[0].Thickness)
	assert.Equal(t, "mdf", groups[1].Material)

	placed := 0
	for _, g := range groups {
		assert.Empty(t, g.Result.Unplaced)
		for _, sheet := range g.Result.Sheets {
			placed += len(sheet.Placements)
		}
	}
	assert.Equal(t, 6, placed, "2 sides + 3 shelves + 1 back")
}

func TestNest_RefusesOnValidationErrors(t *testing.T) {
	proj := cabinetProject()
	proj.Tools = nil

	groups, report, err := testPipeline().Nest(context.Background(), proj)
	require.ErrorIs(t, err, ErrValidationBlocked)
	assert.Nil(t, groups)
	assert.False(t, report.OK(), "report with the findings comes back alongside the error")
}

func TestNest_ExcludesFixtureZones(t *testing.T) {
	reg := machine.NewRegistry()
	clamped := reg.Get("Generic")
	clamped.Machine.Name = "Clamped Generic"
	clamped.Fixtures = []machine.FixtureZone{
		{Label: "front clamp", X: 0, Y: 0, Width: 300, Height: 300, ZHeight: 40},
	}
	require.NoError(t, reg.Add(clamped))

	proj := cabinetProject()
	proj.Machine = "Clamped Generic"

	p := New(reg, nil, nil)
	groups, _, err := p.Nest(context.Background(), proj)
	require.NoError(t, err)

	zone := clamped.Fixtures[0]
	for _, g := range groups {
		for _, sheet := range g.Result.Sheets {
			for _, pl := range sheet.Placements {
				assert.False(t, zone.Overlaps(pl.Rect()),
					"placement %s sits on the clamp zone", pl.ID)
			}
		}
	}
}

// ─── Toolpaths ───────────────────────────────────────────────────────

func TestToolpaths_OneEntryPerSheet(t *testing.T) {
	p := testPipeline()
	proj := cabinetProject()
	groups := nested(t, p, proj)

	sheets, err := p.Toolpaths(proj, groups)
	require.NoError(t, err)
	require.Len(t, sheets, 2)

	assert.Equal(t, "birch-ply", sheets[0].Material)
	assert.Equal(t, 0, sheets[0].SheetIndex)
	assert.Equal(t, "mdf", sheets[1].Material)
}

func TestToolpaths_OrderedByTool(t *testing.T) {
	p := testPipeline()
	proj := cabinetProject()
	groups := nested(t, p, proj)

	sheets, err := p.Toolpaths(proj, groups)
	require.NoError(t, err)

	for _, st := range sheets {
		require.NotEmpty(t, st.Paths)
		for i := 1; i < len(st.Paths); i++ {
			assert.GreaterOrEqual(t, st.Paths[i].ToolNumber, st.Paths[i-1].ToolNumber,
				"sheet %s: tool changes must not interleave", st.Material)
		}
	}
}

func TestToolpaths_DistancesAndEstimate(t *testing.T) {
	p := testPipeline()
	proj := cabinetProject()
	groups := nested(t, p, proj)

	sheets, err := p.Toolpaths(proj, groups)
	require.NoError(t, err)

	for _, st := range sheets {
		assert.Greater(t, st.CutDistance, 0.0)
		assert.Greater(t, st.RapidDistance, 0.0)
		assert.Greater(t, st.EstimatedMinutes, 0.0)
	}
}

func TestToolpaths_ExtentsPerToolWithinSheet(t *testing.T) {
	p := testPipeline()
	proj := cabinetProject()
	groups := nested(t, p, proj)

	sheets, err := p.Toolpaths(proj, groups)
	require.NoError(t, err)

	birch := sheets[0]
	require.NotEmpty(t, birch.Extents)
	for i, ext := range birch.Extents {
		if i > 0 {
			assert.Greater(t, ext.ToolNumber, birch.Extents[i-1].ToolNumber)
		}
		assert.Less(t, ext.MinX, ext.MaxX)
		assert.GreaterOrEqual(t, ext.MinX, 0.0)
		assert.LessOrEqual(t, ext.MaxY, 2440.0)
	}

	// The shelf drills ride tool 3 alongside the profile tool 1.
	tools := make([]int, len(birch.Extents))
	for i, ext := range birch.Extents {
		tools[i] = ext.ToolNumber
	}
	assert.Contains(t, tools, 1)
	assert.Contains(t, tools, 3)
}

// ─── Gcode ───────────────────────────────────────────────────────────

func TestGcode_OneProgramPerSheet(t *testing.T) {
	p := testPipeline()
	proj := cabinetProject()
	groups := nested(t, p, proj)

	programs, err := p.Gcode(context.Background(), proj, groups)
	require.NoError(t, err)
	require.Len(t, programs, 2)

	assert.Equal(t, "birch-ply_sheet1.nc", programs[0].Filename)
	assert.Equal(t, "mdf_sheet1.nc", programs[1].Filename)
	for _, sg := range programs {
		assert.Contains(t, sg.Gcode, "Wall Cabinet")
		assert.NotEmpty(t, sg.Gcode)
	}
}

func TestGcode_SameMaterialTwoThicknesses(t *testing.T) {
	proj := cabinetProject()
	thin := model.NewPart("Divider", 400, 200, 1)
	thin.Material = "birch-ply"
	thin.Thickness = 6
	proj.Parts = append(proj.Parts, thin)

	p := testPipeline()
	groups := nested(t, p, proj)
	require.Len(t, groups, 3)

	programs, err := p.Gcode(context.Background(), proj, groups)
	require.NoError(t, err)

	names := make([]string, len(programs))
	for i, sg := range programs {
		names[i] = sg.Filename
	}
	assert.Contains(t, names, "birch-ply-6mm_sheet1.nc")
	assert.Contains(t, names, "birch-ply-18mm_sheet1.nc")
	assert.Contains(t, names, "mdf_sheet1.nc")
}

func TestGcode_CanceledContext(t *testing.T) {
	p := testPipeline()
	proj := cabinetProject()
	groups := nested(t, p, proj)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Gcode(ctx, proj, groups)
	require.ErrorIs(t, err, context.Canceled)
}

// ─── Preview ─────────────────────────────────────────────────────────

func TestPreview_FirstSheet(t *testing.T) {
	p := testPipeline()
	proj := cabinetProject()
	groups := nested(t, p, proj)

	pv, err := p.Preview(proj, groups, 0)
	require.NoError(t, err)

	assert.Equal(t, "birch-ply", pv.Material)
	assert.Equal(t, "birch-ply_sheet1.nc", pv.Filename)
	assert.Equal(t, 5, pv.PartCount)
	assert.NotEmpty(t, pv.Moves)
	assert.Greater(t, pv.Stats.CutDistance, 0.0)
	assert.Greater(t, pv.Stats.EstimatedMinutes, 0.0)
	assert.Empty(t, pv.Bounds)
}

func TestPreview_IndexSpansGroups(t *testing.T) {
	p := testPipeline()
	proj := cabinetProject()
	groups := nested(t, p, proj)

	pv, err := p.Preview(proj, groups, 1)
	require.NoError(t, err)
	assert.Equal(t, "mdf", pv.Material)
	assert.Equal(t, 0, pv.SheetIndex, "index restarts within each group")
	assert.Equal(t, 1, pv.PartCount)
}

func TestPreview_OutOfRange(t *testing.T) {
	p := testPipeline()
	proj := cabinetProject()
	groups := nested(t, p, proj)

	_, err := p.Preview(proj, groups, 99)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestLocateSheet(t *testing.T) {
	groups := []model.MaterialGroupResult{
		{Material: "a", Result: model.NestingResult{Sheets: make([]model.SheetLayout, 2)}},
		{Material: "b", Result: model.NestingResult{Sheets: make([]model.SheetLayout, 1)}},
	}

	cases := []struct {
		in      int
		gi, idx int
	}{
		{0, 0, 0},
		{1, 0, 1},
		{2, 1, 0},
		{3, -1, -1},
		{-1, -1, -1},
	}
	for _, tc := range cases {
		gi, idx, total := locateSheet(groups, tc.in)
		assert.Equal(t, tc.gi, gi, "sheet %d", tc.in)
		assert.Equal(t, tc.idx, idx, "sheet %d", tc.in)
		assert.Equal(t, 3, total)
	}
}

// ─── Export ──────────────────────────────────────────────────────────

func TestExport_BaseArtifactSet(t *testing.T) {
	p := testPipeline()
	proj := cabinetProject()
	groups := nested(t, p, proj)
	dir := t.TempDir()

	manifest, err := p.Export(context.Background(), proj, groups, dir, ExportOptions{})
	require.NoError(t, err)
	assert.Equal(t, dir, manifest.Dir)

	expected := []string{
		"birch-ply_sheet1.nc",
		"mdf_sheet1.nc",
		"birch-ply_sheet1.svg",
		"mdf_sheet1.svg",
		"cutlist.csv",
		"bom.json",
		"cutlist.xlsx",
	}
	assert.ElementsMatch(t, expected, manifest.Files)
	for _, name := range manifest.Files {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}
}

func TestExport_OptionalArtifacts(t *testing.T) {
	p := testPipeline()
	proj := cabinetProject()
	groups := nested(t, p, proj)
	dir := t.TempDir()

	manifest, err := p.Export(context.Background(), proj, groups, dir,
		ExportOptions{PDF: true, Labels: true, DXF: true})
	require.NoError(t, err)

	assert.Contains(t, manifest.Files, "layouts.pdf")
	assert.Contains(t, manifest.Files, "labels.pdf")
	assert.Contains(t, manifest.Files, "birch-ply_sheet1.dxf")
	assert.Contains(t, manifest.Files, "mdf_sheet1.dxf")
}

func TestExport_FeedOverridesReachPrograms(t *testing.T) {
	feeds := project.FeedTable{
		Materials: map[string]map[int]project.FeedEntry{
			"birch-ply": {1: {Feed: 2750}},
		},
	}
	p := New(nil, feeds, nil)
	proj := cabinetProject()
	groups := nested(t, p, proj)

	programs, err := p.Gcode(context.Background(), proj, groups)
	require.NoError(t, err)

	var birch string
	for _, sg := range programs {
		if sg.Material == "birch-ply" {
			birch = sg.Gcode
		}
	}
	require.NotEmpty(t, birch)
	assert.Contains(t, birch, "F2750", "feed table override should reach the program text")
}

// ─── Group naming ────────────────────────────────────────────────────

func TestGroupNames_UniqueMaterialsKeepPlainNames(t *testing.T) {
	groups := []model.MaterialGroupResult{
		{Material: "birch-ply", Thickness: 18},
		{Material: "mdf", Thickness: 6},
	}
	assert.Equal(t, []string{"birch-ply", "mdf"}, groupNames(groups))
}

func TestGroupNames_DuplicateMaterialGetsThickness(t *testing.T) {
	groups := []model.MaterialGroupResult{
		{Material: "birch-ply", Thickness: 6.5},
		{Material: "birch-ply", Thickness: 18},
		{Material: "mdf", Thickness: 6},
	}
	assert.Equal(t, []string{"birch-ply 6.5mm", "birch-ply 18mm", "mdf"}, groupNames(groups))
}

func TestTrimFloat(t *testing.T) {
	cases := map[float64]string{
		18:   "18",
		6.5:  "6.5",
		12.7: "12.7",
		3:    "3",
	}
	for in, want := range cases {
		assert.Equal(t, want, trimFloat(in), "%v", in)
	}
}

// ─── Disambiguated filenames stay filesystem-safe ────────────────────

func TestGroupNames_SlugSafe(t *testing.T) {
	groups := []model.MaterialGroupResult{
		{Material: "Baltic Birch", Thickness: 12},
		{Material: "Baltic Birch", Thickness: 18},
	}
	names := groupNames(groups)
	for _, n := range names {
		assert.False(t, strings.ContainsAny(n, "/\\"), n)
	}
}
