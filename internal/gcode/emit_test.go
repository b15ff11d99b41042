package gcode

import (
	"errors"
	"strings"
	"testing"

	"github.com/piwi3910/partcam/internal/machine"
	"github.com/piwi3910/partcam/internal/model"
)

func testProfile(t *testing.T, name string) machine.MachineProfile {
	t.Helper()
	p, ok := machine.NewRegistry().Lookup(name)
	if !ok {
		t.Fatalf("built-in profile %q not found", name)
	}
	return p
}

func testMeta() ProgramMeta {
	return ProgramMeta{
		ProgramName: "cabinet",
		Material:    "birch-ply",
		Thickness:   18,
		SheetIndex:  0,
		SheetCount:  2,
		PartCount:   3,
	}
}

// newTestPath is a single rectangle-ish profile pass: rapid over,
// drop to the safe height, plunge, two cutting moves, retract.
func newTestPath() model.AnnotatedToolpath {
	return model.AnnotatedToolpath{
		Toolpath: model.Toolpath{
			ToolNumber: 1,
			RPM:        18000,
			FeedRate:   1500,
			PlungeRate: 500,
			Segments: []model.ToolpathSegment{
				{Motion: model.Rapid{}, End: model.Point2D{X: 7, Y: 7}, Z: 25},
				{Motion: model.Rapid{}, End: model.Point2D{X: 7, Y: 7}, Z: 5},
				{Motion: model.Linear{}, End: model.Point2D{X: 7, Y: 7}, Z: -6},
				{Motion: model.Linear{}, End: model.Point2D{X: 113, Y: 7}, Z: -6},
				{Motion: model.Linear{}, End: model.Point2D{X: 113, Y: 63}, Z: -6},
				{Motion: model.Rapid{}, End: model.Point2D{X: 113, Y: 63}, Z: 5},
			},
		},
		PartLabel:     "panel",
		PlacementID:   "panel-0",
		OperationType: "profile",
	}
}

func newDrillPath(peck float64) model.AnnotatedToolpath {
	return model.AnnotatedToolpath{
		Toolpath: model.Toolpath{
			ToolNumber: 3,
			RPM:        12000,
			FeedRate:   600,
			PlungeRate: 250,
			Segments: []model.ToolpathSegment{
				{Motion: model.Rapid{}, End: model.Point2D{X: 120, Y: 120}, Z: 25},
				{Motion: model.DrillCycle{RetractZ: 5, FinalZ: -10, PeckDepth: peck}, End: model.Point2D{X: 120, Y: 120}, Z: 5},
			},
		},
		PartLabel:     "panel",
		PlacementID:   "panel-0",
		OperationType: "drill",
	}
}

func newInchDrillPath(peck float64) model.AnnotatedToolpath {
	return model.AnnotatedToolpath{
		Toolpath: model.Toolpath{
			ToolNumber: 3,
			RPM:        12000,
			FeedRate:   40,
			PlungeRate: 10,
			Segments: []model.ToolpathSegment{
				{Motion: model.Rapid{}, End: model.Point2D{X: 2, Y: 3}, Z: 1},
				{Motion: model.DrillCycle{RetractZ: 0.25, FinalZ: -0.7, PeckDepth: peck}, End: model.Point2D{X: 2, Y: 3}, Z: 0.25},
			},
		},
		PartLabel:     "rail",
		PlacementID:   "rail-0",
		OperationType: "drill",
	}
}

func render(t *testing.T, profileName string, paths ...model.AnnotatedToolpath) string {
	t.Helper()
	gen := NewGenerator(testProfile(t, profileName))
	code, err := gen.Program(paths, testMeta())
	if err != nil {
		t.Fatalf("Program: %v", err)
	}
	return code
}

func TestProgram_MetricHeader(t *testing.T) {
	code := render(t, "Shapeoko HDM", newTestPath())

	if !strings.Contains(code, "(cabinet - birch-ply sheet 1 of 2)") {
		t.Errorf("expected program name comment in header:\n%s", code)
	}
	if !strings.Contains(code, "(Material: birch-ply, 18mm thick, 3 parts)") {
		t.Errorf("expected material comment in header:\n%s", code)
	}
	if !strings.Contains(code, "(Machine: Shapeoko HDM") {
		t.Errorf("expected machine comment in header:\n%s", code)
	}
	if !strings.Contains(code, "G21\n") {
		t.Error("expected G21 for a metric machine")
	}
	if strings.Contains(code, "G20") {
		t.Error("expected no G20 for a metric machine")
	}
	if !strings.Contains(code, "G90\nG17\n") {
		t.Error("expected profile header lines verbatim")
	}
	if !strings.Contains(code, "G0 Z25\n") {
		t.Error("expected initial retract to the rapid plane")
	}
}

func TestProgram_InchHeader(t *testing.T) {
	code := render(t, "Avid Pro 4848", newInchDrillPath(0.2))

	if !strings.Contains(code, "G20\n") {
		t.Error("expected G20 for an inch machine")
	}
	if strings.Contains(code, "G21") {
		t.Error("expected no G21 for an inch machine")
	}
}

func TestProgram_LineNumbers(t *testing.T) {
	code := render(t, "Avid Pro 4848", newInchDrillPath(0.2))

	if !strings.HasPrefix(code, "N10 (") {
		t.Errorf("expected first line numbered N10, got %q", strings.SplitN(code, "\n", 2)[0])
	}
	if !strings.Contains(code, "\nN20 ") || !strings.Contains(code, "\nN30 ") {
		t.Error("expected line numbers advancing by 10")
	}
	// Blank separators stay unnumbered.
	if !strings.Contains(code, "\n\n") {
		t.Error("expected unnumbered blank lines between sections")
	}
}

func TestProgram_NoLineNumbersOnGrbl(t *testing.T) {
	code := render(t, "Shapeoko HDM", newTestPath())
	if strings.Contains(code, "N10 ") {
		t.Error("expected no line numbers for the Shapeoko post")
	}
}

func TestProgram_ToolChange(t *testing.T) {
	code := render(t, "Shapeoko HDM", newTestPath(), newDrillPath(4))

	if !strings.Contains(code, "(Tool: T1)") {
		t.Error("expected first tool mount comment")
	}
	if !strings.Contains(code, "M6 T1\nM3 S18000\n") {
		t.Errorf("expected tool change and spindle start for T1:\n%s", code)
	}
	if !strings.Contains(code, "(Tool change: T3)") {
		t.Error("expected tool change comment for T3")
	}
	// The spindle stops before the second tool is mounted.
	if !strings.Contains(code, "M5\nM6 T3\nM3 S12000\n") {
		t.Errorf("expected spindle stop before T3 mount:\n%s", code)
	}
}

func TestProgram_RestatesFeedAfterToolChange(t *testing.T) {
	second := newTestPath()
	second.ToolNumber = 2
	code := render(t, "Shapeoko HDM", newTestPath(), second)

	if got := strings.Count(code, "F1500"); got != 2 {
		t.Errorf("expected cutting feed restated after tool change (2 F words), got %d", got)
	}
}

func TestProgram_RPMClamped(t *testing.T) {
	high := newTestPath()
	high.RPM = 90000
	code := render(t, "Shapeoko HDM", high)
	if !strings.Contains(code, "M3 S24000") {
		t.Errorf("expected RPM clamped to the machine maximum:\n%s", code)
	}

	low := newTestPath()
	low.RPM = 100
	code = render(t, "Shapeoko HDM", low)
	if !strings.Contains(code, "M3 S8000") {
		t.Errorf("expected RPM raised to the machine minimum:\n%s", code)
	}
}

func TestProgram_PlungeUsesPlungeRate(t *testing.T) {
	code := render(t, "Shapeoko HDM", newTestPath())

	if !strings.Contains(code, "G1 Z-6 F500\n") {
		t.Errorf("expected pure-Z descent at the plunge rate:\n%s", code)
	}
	if !strings.Contains(code, "G1 X113 Y7 F1500\n") {
		t.Errorf("expected lateral cut at the feed rate:\n%s", code)
	}
}

func TestProgram_ModalFeed(t *testing.T) {
	code := render(t, "Shapeoko HDM", newTestPath())

	if got := strings.Count(code, "F1500"); got != 1 {
		t.Errorf("expected feed word once for consecutive moves at one feed, got %d", got)
	}
	// The second cutting move carries no feed word.
	if !strings.Contains(code, "G1 X113 Y63\n") {
		t.Errorf("expected feed omitted on the repeated-feed move:\n%s", code)
	}
}

func TestProgram_RapidSplit(t *testing.T) {
	path := newTestPath()
	path.Segments = []model.ToolpathSegment{
		{Motion: model.Rapid{}, End: model.Point2D{X: 30, Y: 40}, Z: 5},
		{Motion: model.Linear{}, End: model.Point2D{X: 30, Y: 40}, Z: -6},
		{Motion: model.Rapid{}, End: model.Point2D{X: 100, Y: 100}, Z: 5},
	}
	code := render(t, "Shapeoko HDM", path)

	// Descending: travel in the clear first, then drop.
	if !strings.Contains(code, "G0 X30 Y40\nG0 Z5\nG1 Z-6") {
		t.Errorf("expected falling rapid split XY-then-Z:\n%s", code)
	}
	// Ascending: lift first, then travel.
	if !strings.Contains(code, "G0 Z5\nG0 X100 Y100\n") {
		t.Errorf("expected rising rapid split Z-then-XY:\n%s", code)
	}
}

func TestProgram_ArcWords(t *testing.T) {
	path := newTestPath()
	path.Segments = []model.ToolpathSegment{
		{Motion: model.Rapid{}, End: model.Point2D{X: 4, Y: 10}, Z: 5},
		{Motion: model.Linear{}, End: model.Point2D{X: 4, Y: 10}, Z: -6},
		{Motion: model.ArcCW{I: 0, J: -3}, End: model.Point2D{X: 7, Y: 7}, Z: -6},
		{Motion: model.ArcCCW{I: 3, J: 0}, End: model.Point2D{X: 10, Y: 10}, Z: -6},
	}
	code := render(t, "Shapeoko HDM", path)

	if !strings.Contains(code, "G2 X7 Y7 I0 J-3 F1500\n") {
		t.Errorf("expected clockwise arc with center offsets:\n%s", code)
	}
	if !strings.Contains(code, "G3 X10 Y10 I3 J0\n") {
		t.Errorf("expected counter-clockwise arc with modal feed:\n%s", code)
	}
}

func TestProgram_CannedCycle(t *testing.T) {
	code := render(t, "Avid Pro 4848", newInchDrillPath(0.2))

	if !strings.Contains(code, "G73 X2 Y3 Z-0.7 R0.25 Q0.2 F10\n") {
		t.Errorf("expected peck cycle with Q word:\n%s", code)
	}
	if !strings.Contains(code, "G80\n") {
		t.Error("expected cycle cancel after the canned cycle")
	}
}

func TestProgram_CannedCycleWithoutPeck(t *testing.T) {
	code := render(t, "Avid Pro 4848", newInchDrillPath(0))

	if !strings.Contains(code, "G81 X2 Y3 Z-0.7 R0.25 F10\n") {
		t.Errorf("expected plain drill cycle when peck depth is zero:\n%s", code)
	}
	if strings.Contains(code, "G73") {
		t.Error("expected no G73 without a peck depth")
	}
}

func TestProgram_ExpandedCycle(t *testing.T) {
	code := render(t, "Shapeoko HDM", newDrillPath(4))

	if strings.Contains(code, "G73") || strings.Contains(code, "G81") {
		t.Errorf("expected no canned cycles on a GRBL post:\n%s", code)
	}
	if !strings.Contains(code, "G1 Z-4 F250\n") {
		t.Errorf("expected first peck at the plunge rate:\n%s", code)
	}
	if !strings.Contains(code, "G1 Z-8\n") || !strings.Contains(code, "G1 Z-10\n") {
		t.Errorf("expected pecks stepping to full depth:\n%s", code)
	}
	// Full retract between pecks.
	if got := strings.Count(code, "G0 Z5\n"); got < 3 {
		t.Errorf("expected a retract after each peck, got %d", got)
	}
}

func TestProgram_ExpandedCycleSinglePlunge(t *testing.T) {
	code := render(t, "Shapeoko HDM", newDrillPath(0))

	if !strings.Contains(code, "G1 Z-10 F250\n") {
		t.Errorf("expected one full-depth plunge without a peck depth:\n%s", code)
	}
	if strings.Contains(code, "G1 Z-4") {
		t.Error("expected no intermediate pecks")
	}
}

func TestProgram_Footer(t *testing.T) {
	code := render(t, "Shapeoko HDM", newTestPath())

	if !strings.Contains(code, "(Job complete)") {
		t.Error("expected job complete comment")
	}
	if !strings.HasSuffix(code, "G0 Z5\nM5\nM30\n") {
		t.Errorf("expected end sequence with SafeZ substituted:\n%s", code)
	}
	// M5 appears only in the profile's end sequence, not doubled.
	if got := strings.Count(code, "M5"); got != 1 {
		t.Errorf("expected a single spindle stop, got %d", got)
	}
}

func TestProgram_PathComments(t *testing.T) {
	code := render(t, "Shapeoko HDM", newTestPath(), newDrillPath(4))

	if !strings.Contains(code, "(panel profile)") {
		t.Error("expected part and operation comment before the profile path")
	}
	if !strings.Contains(code, "(panel drill)") {
		t.Error("expected part and operation comment before the drill path")
	}
}

func TestProgram_CommentStyles(t *testing.T) {
	p := machine.NewCustomProfile("bench")
	p.Post.CommentStyle = "semicolon"
	gen := NewGenerator(p)
	code, err := gen.Program([]model.AnnotatedToolpath{newTestPath()}, testMeta())
	if err != nil {
		t.Fatalf("Program: %v", err)
	}
	if !strings.Contains(code, "; Job complete\n") {
		t.Errorf("expected semicolon comments:\n%s", code)
	}

	p.Post.CommentStyle = "none"
	gen = NewGenerator(p)
	code, err = gen.Program([]model.AnnotatedToolpath{newTestPath()}, testMeta())
	if err != nil {
		t.Fatalf("Program: %v", err)
	}
	if strings.Contains(code, "Job complete") {
		t.Errorf("expected comments suppressed:\n%s", code)
	}
}

func TestProgram_EmptyPaths(t *testing.T) {
	code := render(t, "Shapeoko HDM")

	if strings.Contains(code, "M6") {
		t.Error("expected no tool change without toolpaths")
	}
	if !strings.Contains(code, "(Job complete)") || !strings.Contains(code, "M30") {
		t.Errorf("expected header and footer even without toolpaths:\n%s", code)
	}
}

func TestProgram_Deterministic(t *testing.T) {
	a := render(t, "Shapeoko HDM", newTestPath(), newDrillPath(4))
	b := render(t, "Shapeoko HDM", newTestPath(), newDrillPath(4))
	if a != b {
		t.Error("expected byte-identical output for identical input")
	}
}

func TestMaterialSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Birch Ply", "birch-ply"},
		{"MDF 19mm", "mdf-19mm"},
		{"melamine_white", "melamine_white"},
		{"Baltic/Birch", "baltic-birch"},
		{"", "material"},
	}
	for _, c := range cases {
		if got := MaterialSlug(c.in); got != c.want {
			t.Errorf("MaterialSlug(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFilename(t *testing.T) {
	got := Filename("Birch Ply", 1, ".nc")
	if got != "birch-ply_sheet2.nc" {
		t.Errorf("Filename = %q, want birch-ply_sheet2.nc", got)
	}
}

type stubSynth struct {
	paths  []model.AnnotatedToolpath
	failOn int
	calls  int
}

func (s *stubSynth) Synthesize(layout model.SheetLayout) ([]model.AnnotatedToolpath, error) {
	s.calls++
	if s.failOn > 0 && s.calls == s.failOn {
		return nil, errors.New("no tool for operation")
	}
	return s.paths, nil
}

func TestSheetPrograms(t *testing.T) {
	gen := NewGenerator(testProfile(t, "Shapeoko HDM"))
	result := model.NestingResult{
		Sheets: []model.SheetLayout{
			{Index: 0, Material: "birch-ply", Thickness: 18, Width: 1220, Length: 2440, Placements: make([]model.Placement, 1)},
			{Index: 1, Material: "birch-ply", Thickness: 18, Width: 1220, Length: 2440, Placements: make([]model.Placement, 2)},
		},
	}
	synth := &stubSynth{paths: []model.AnnotatedToolpath{newTestPath()}}

	programs, err := gen.SheetPrograms(result, synth, "cabinet")
	if err != nil {
		t.Fatalf("SheetPrograms: %v", err)
	}
	if len(programs) != 2 {
		t.Fatalf("expected 2 programs, got %d", len(programs))
	}
	if programs[0].Filename != "birch-ply_sheet1.nc" || programs[1].Filename != "birch-ply_sheet2.nc" {
		t.Errorf("unexpected filenames %q, %q", programs[0].Filename, programs[1].Filename)
	}
	if !strings.Contains(programs[0].Gcode, "sheet 1 of 2") {
		t.Error("expected first program header to name sheet 1 of 2")
	}
	if !strings.Contains(programs[1].Gcode, "sheet 2 of 2") {
		t.Error("expected second program header to name sheet 2 of 2")
	}
	if programs[1].SheetIndex != 1 {
		t.Errorf("expected sheet index 1, got %d", programs[1].SheetIndex)
	}
}

func TestSheetPrograms_SynthesisError(t *testing.T) {
	gen := NewGenerator(testProfile(t, "Shapeoko HDM"))
	result := model.NestingResult{
		Sheets: []model.SheetLayout{
			{Index: 0, Material: "birch-ply", Thickness: 18},
			{Index: 1, Material: "birch-ply", Thickness: 18},
		},
	}
	synth := &stubSynth{failOn: 2}

	_, err := gen.SheetPrograms(result, synth, "cabinet")
	if err == nil {
		t.Fatal("expected an error when synthesis fails")
	}
	if !strings.Contains(err.Error(), "sheet 2") {
		t.Errorf("expected the failing sheet named in the error, got %q", err)
	}
}
