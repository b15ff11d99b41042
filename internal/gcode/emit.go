// Package gcode renders machine-neutral toolpaths into dialect-specific
// G-code programs and parses rendered programs back into moves for
// preview and bounds checking.
package gcode

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/piwi3910/partcam/internal/machine"
	"github.com/piwi3910/partcam/internal/model"
	"github.com/piwi3910/partcam/internal/telemetry"
)

// ProgramMeta carries the header facts for one sheet program. Sheet
// indices are zero-based; rendering adds one for display and filenames.
type ProgramMeta struct {
	ProgramName string
	Material    string
	Thickness   float64
	SheetIndex  int
	SheetCount  int
	PartCount   int
}

// SheetGcode is one rendered program with its suggested filename.
type SheetGcode struct {
	Material   string `json:"material"`
	SheetIndex int    `json:"sheet_index"`
	Filename   string `json:"filename"`
	Gcode      string `json:"gcode"`
}

// Generator renders toolpaths for one machine profile. Identical input
// renders byte-identical output; nothing here consults the clock or
// any global state.
type Generator struct {
	Profile machine.MachineProfile
	Log     *telemetry.Logger
}

func NewGenerator(profile machine.MachineProfile) *Generator {
	return &Generator{Profile: profile, Log: telemetry.Nop()}
}

// Program renders one sheet's ordered toolpaths into a complete
// program: comment header, setup lines, tool changes, motions and the
// profile's end sequence.
func (g *Generator) Program(paths []model.AnnotatedToolpath, meta ProgramMeta) (string, error) {
	log := g.Log
	if log == nil {
		log = telemetry.Nop()
	}

	e := newEmitter(g.Profile.Post)
	g.writeHeader(e, meta)

	currentTool := 0
	for _, p := range paths {
		if p.ToolNumber != currentTool {
			g.writeToolChange(e, p, currentTool != 0)
			currentTool = p.ToolNumber
		}
		e.blank()
		e.comment(fmt.Sprintf("%s %s", p.PartLabel, p.OperationType))
		g.writePath(e, p)
	}

	g.writeFooter(e)

	log.Debugf("rendered %d toolpaths for %s sheet %d", len(paths), meta.Material, meta.SheetIndex+1)
	return e.String(), nil
}

func (g *Generator) writeHeader(e *emitter, meta ProgramMeta) {
	name := meta.ProgramName
	if name == "" {
		name = "partcam"
	}
	units := g.Profile.Machine.Units
	e.comment(fmt.Sprintf("%s - %s sheet %d of %d", name, meta.Material, meta.SheetIndex+1, meta.SheetCount))
	e.comment(fmt.Sprintf("Material: %s, %s%s thick, %d parts", meta.Material, e.format(meta.Thickness), units, meta.PartCount))
	e.comment(fmt.Sprintf("Machine: %s (%s)", g.Profile.Machine.Name, g.Profile.Machine.Controller))

	if units == "inch" {
		e.line("G20")
	} else {
		e.line("G21")
	}
	for _, l := range g.Profile.Post.ProgramHeader {
		e.line(l)
	}
	e.rapidZ(g.Profile.Post.RapidZ)
}

func (g *Generator) writeToolChange(e *emitter, p model.AnnotatedToolpath, stopFirst bool) {
	post := g.Profile.Post
	e.blank()
	if stopFirst {
		e.comment(fmt.Sprintf("Tool change: T%d", p.ToolNumber))
	} else {
		e.comment(fmt.Sprintf("Tool: T%d", p.ToolNumber))
	}
	e.rapidZ(post.RapidZ)
	if stopFirst {
		e.line(post.SpindleOff)
	}
	rpm := clampRPM(p.RPM, g.Profile.Machine)
	for _, l := range strings.Split(post.ToolChange, "\n") {
		e.line(substitute(l, p.ToolNumber, rpm))
	}
	e.line(substitute(post.SpindleOn, p.ToolNumber, rpm))
	// Feeds are restated after a tool change.
	e.feed = ""
}

func (g *Generator) writeFooter(e *emitter) {
	post := g.Profile.Post
	e.blank()
	e.comment("Job complete")
	if post.SpindleOff != "" && !strings.Contains(post.ProgramEnd, post.SpindleOff) {
		e.line(post.SpindleOff)
	}
	for _, l := range strings.Split(post.ProgramEnd, "\n") {
		e.line(strings.ReplaceAll(l, "[SafeZ]", e.format(post.SafeZ)))
	}
}

// writePath renders each segment, exhaustively over the motion set.
func (g *Generator) writePath(e *emitter, p model.AnnotatedToolpath) {
	for _, seg := range p.Segments {
		switch m := seg.Motion.(type) {
		case model.Rapid:
			e.rapid(seg.End, seg.Z)
		case model.Linear:
			e.linear(seg.End, seg.Z, p.FeedRate, p.PlungeRate)
		case model.ArcCW:
			e.arc(true, seg.End, seg.Z, m.I, m.J, p.FeedRate)
		case model.ArcCCW:
			e.arc(false, seg.End, seg.Z, m.I, m.J, p.FeedRate)
		case model.DrillCycle:
			if g.Profile.Post.UseCannedCycles {
				e.cannedCycle(seg.End, m, p.PlungeRate)
			} else {
				e.expandedCycle(seg.End, m, p.PlungeRate)
			}
		default:
			panic(fmt.Sprintf("unknown motion variant %T", seg.Motion))
		}
	}
}

// SheetPrograms synthesizes and renders one program per sheet of a
// nesting result. Synthesis and ordering are delegated so the caller
// controls feeds and tool assignment through the synthesizer.
func (g *Generator) SheetPrograms(result model.NestingResult, synth Synthesizer, programName string) ([]SheetGcode, error) {
	out := make([]SheetGcode, 0, len(result.Sheets))
	for i, sheet := range result.Sheets {
		paths, err := synth.Synthesize(sheet)
		if err != nil {
			return nil, fmt.Errorf("sheet %d: %w", i+1, err)
		}
		code, err := g.Program(paths, ProgramMeta{
			ProgramName: programName,
			Material:    sheet.Material,
			Thickness:   sheet.Thickness,
			SheetIndex:  i,
			SheetCount:  len(result.Sheets),
			PartCount:   len(sheet.Placements),
		})
		if err != nil {
			return nil, fmt.Errorf("sheet %d: %w", i+1, err)
		}
		out = append(out, SheetGcode{
			Material:   sheet.Material,
			SheetIndex: i,
			Filename:   Filename(sheet.Material, i, g.Profile.Post.FileExtension),
			Gcode:      code,
		})
	}
	return out, nil
}

// Synthesizer is what SheetPrograms needs from the CAM stage. The
// returned toolpaths must already be in execution order; rendering
// emits them as given.
type Synthesizer interface {
	Synthesize(layout model.SheetLayout) ([]model.AnnotatedToolpath, error)
}

// Filename builds the per-sheet program filename
// <material>_sheet<N><ext> with one-based sheet numbers.
func Filename(material string, sheetIndex int, ext string) string {
	return fmt.Sprintf("%s_sheet%d%s", MaterialSlug(material), sheetIndex+1, ext)
}

// MaterialSlug lowercases a material name and maps runes unsafe in
// filenames to "-".
func MaterialSlug(material string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(material) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "material"
	}
	return b.String()
}

func clampRPM(rpm float64, info machine.MachineInfo) float64 {
	if info.MaxRPM > 0 && rpm > info.MaxRPM {
		return info.MaxRPM
	}
	if rpm < info.MinRPM {
		return info.MinRPM
	}
	return rpm
}

func substitute(line string, tool int, rpm float64) string {
	line = strings.ReplaceAll(line, "[Tool]", strconv.Itoa(tool))
	line = strings.ReplaceAll(line, "[RPM]", strconv.Itoa(int(math.Round(rpm))))
	return line
}

// emitter accumulates program text with modal state: last commanded
// coordinates and feed are tracked as formatted words, so a move that
// rounds to the current position emits nothing.
type emitter struct {
	b    strings.Builder
	post machine.PostConfig
	n    int // next line number

	x, y, z string // last formatted coordinate; "" means unknown
	zVal    float64
	zKnown  bool
	feed    string
}

func newEmitter(post machine.PostConfig) *emitter {
	return &emitter{post: post, n: 10}
}

func (e *emitter) String() string {
	return e.b.String()
}

// line writes one program line, numbered when the profile asks for it.
func (e *emitter) line(words ...string) {
	if e.post.LineNumbers {
		e.b.WriteString("N")
		e.b.WriteString(strconv.Itoa(e.n))
		e.b.WriteString(" ")
		e.n += 10
	}
	e.b.WriteString(strings.Join(words, " "))
	e.b.WriteString("\n")
}

func (e *emitter) blank() {
	e.b.WriteString("\n")
}

func (e *emitter) comment(text string) {
	switch e.post.CommentStyle {
	case "semicolon":
		e.line("; " + text)
	case "none":
	default:
		e.line("(" + text + ")")
	}
}

// format renders a coordinate at the profile's precision with trailing
// zeros trimmed.
func (e *emitter) format(v float64) string {
	s := strconv.FormatFloat(v, 'f', e.post.DecimalPlaces, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

func (e *emitter) setXY(fx, fy string) {
	e.x = fx
	e.y = fy
}

func (e *emitter) setZ(fz string, z float64) {
	e.z = fz
	e.zVal = z
	e.zKnown = true
}

// rapid positions the cutter. When both the plane position and height
// change, a rising move lifts Z first and a falling move travels
// first, so the cutter never descends diagonally toward the work.
func (e *emitter) rapid(end model.Point2D, z float64) {
	fx, fy, fz := e.format(end.X), e.format(end.Y), e.format(z)
	xyChanged := fx != e.x || fy != e.y
	zChanged := fz != e.z

	switch {
	case !xyChanged && !zChanged:
		return
	case xyChanged && zChanged:
		if !e.zKnown || z > e.zVal {
			e.line("G0", "Z"+fz)
			e.line("G0", "X"+fx, "Y"+fy)
		} else {
			e.line("G0", "X"+fx, "Y"+fy)
			e.line("G0", "Z"+fz)
		}
	case xyChanged:
		e.line("G0", "X"+fx, "Y"+fy)
	default:
		e.line("G0", "Z"+fz)
	}
	e.setXY(fx, fy)
	e.setZ(fz, z)
}

func (e *emitter) rapidZ(z float64) {
	fz := e.format(z)
	if fz == e.z {
		return
	}
	e.line("G0", "Z"+fz)
	e.setZ(fz, z)
}

// linear cuts to the endpoint. A pure-Z descent feeds at the plunge
// rate; everything else at the cutting feed. The feed word is modal.
func (e *emitter) linear(end model.Point2D, z float64, cutFeed, plungeFeed float64) {
	fx, fy, fz := e.format(end.X), e.format(end.Y), e.format(z)
	xyChanged := fx != e.x || fy != e.y
	zChanged := fz != e.z
	if !xyChanged && !zChanged {
		return
	}

	feed := cutFeed
	if !xyChanged && e.zKnown && z < e.zVal {
		feed = plungeFeed
	}

	words := []string{"G1"}
	if xyChanged {
		words = append(words, "X"+fx, "Y"+fy)
	}
	if zChanged {
		words = append(words, "Z"+fz)
	}
	words = e.appendFeed(words, feed)
	e.line(words...)
	e.setXY(fx, fy)
	e.setZ(fz, z)
}

func (e *emitter) arc(cw bool, end model.Point2D, z float64, i, j, cutFeed float64) {
	cmd := "G3"
	if cw {
		cmd = "G2"
	}
	fx, fy, fz := e.format(end.X), e.format(end.Y), e.format(z)
	words := []string{cmd, "X" + fx, "Y" + fy}
	if fz != e.z {
		words = append(words, "Z"+fz)
	}
	words = append(words, "I"+e.format(i), "J"+e.format(j))
	words = e.appendFeed(words, cutFeed)
	e.line(words...)
	e.setXY(fx, fy)
	e.setZ(fz, z)
}

// cannedCycle emits a G73 peck cycle, or G81 when no peck depth is
// set, closed by G80. The controller leaves the cutter at the retract
// plane.
func (e *emitter) cannedCycle(end model.Point2D, m model.DrillCycle, plungeFeed float64) {
	fx, fy := e.format(end.X), e.format(end.Y)
	words := []string{"G73", "X" + fx, "Y" + fy, "Z" + e.format(m.FinalZ), "R" + e.format(m.RetractZ)}
	if m.PeckDepth > 0 {
		words = append(words, "Q"+e.format(m.PeckDepth))
	} else {
		words[0] = "G81"
	}
	words = e.appendFeed(words, plungeFeed)
	e.line(words...)
	e.line("G80")
	e.setXY(fx, fy)
	e.setZ(e.format(m.RetractZ), m.RetractZ)
}

// expandedCycle renders a drill cycle as discrete moves for
// controllers without canned cycles, fully retracting between pecks.
func (e *emitter) expandedCycle(end model.Point2D, m model.DrillCycle, plungeFeed float64) {
	e.rapid(end, m.RetractZ)
	depth := -m.FinalZ
	if depth <= 0 {
		return
	}
	if m.PeckDepth <= 0 {
		e.linear(end, m.FinalZ, plungeFeed, plungeFeed)
		e.rapidZ(m.RetractZ)
		return
	}
	for d := m.PeckDepth; ; d += m.PeckDepth {
		if d > depth {
			d = depth
		}
		e.linear(end, -d, plungeFeed, plungeFeed)
		e.rapidZ(m.RetractZ)
		if d >= depth {
			break
		}
	}
}

func (e *emitter) appendFeed(words []string, feed float64) []string {
	f := e.format(feed)
	if f == e.feed {
		return words
	}
	e.feed = f
	return append(words, "F"+f)
}
