package validate

import (
	"encoding/json"
	"fmt"
)

// Error is a validation finding that blocks generation. The set of
// variants is closed; each carries the offending quantities so callers
// can render an actionable message without string parsing.
type Error interface {
	validationError()
	// Kind returns the wire tag for the error variant.
	Kind() string
	// Message renders a human-readable description.
	Message() string
}

// Warning is a validation finding that does not block generation.
type Warning interface {
	validationWarning()
	Kind() string
	Message() string
}

// PartExceedsTravel means a part is too big for the machine bed in
// every orientation. No pre-cutting strategy fixes this.
type PartExceedsTravel struct {
	PartLabel  string  `json:"part_label"`
	PartWidth  float64 `json:"part_width"`
	PartHeight float64 `json:"part_height"`
	TravelX    float64 `json:"travel_x"`
	TravelY    float64 `json:"travel_y"`
}

func (PartExceedsTravel) validationError() {}

func (PartExceedsTravel) Kind() string { return "part_exceeds_travel" }

func (e PartExceedsTravel) Message() string {
	return fmt.Sprintf("part %q (%.1f x %.1f) exceeds machine travel (%.1f x %.1f) in every orientation",
		e.PartLabel, e.PartWidth, e.PartHeight, e.TravelX, e.TravelY)
}

// RpmOutOfRange means a tool requests a spindle speed the machine
// cannot reach.
type RpmOutOfRange struct {
	ToolNumber int     `json:"tool_number"`
	ToolName   string  `json:"tool_name"`
	Requested  float64 `json:"requested"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
}

func (RpmOutOfRange) validationError() {}

func (RpmOutOfRange) Kind() string { return "rpm_out_of_range" }

func (e RpmOutOfRange) Message() string {
	return fmt.Sprintf("tool %d (%s) requests %.0f RPM, outside the spindle range %.0f-%.0f",
		e.ToolNumber, e.ToolName, e.Requested, e.Min, e.Max)
}

// MissingTool means a part's operations are assigned a tool number the
// tool table does not define.
type MissingTool struct {
	ToolNumber int `json:"tool_number"`
}

func (MissingTool) validationError() {}

func (MissingTool) Kind() string { return "missing_tool" }

func (e MissingTool) Message() string {
	return fmt.Sprintf("tool %d is assigned to operations but missing from the tool table", e.ToolNumber)
}

// CutDepthExceedsTool means a cut is deeper than the assigned tool's
// flute length, which would bury the toolholder in the material.
type CutDepthExceedsTool struct {
	PartLabel     string  `json:"part_label"`
	OperationType string  `json:"operation_type"`
	ToolNumber    int     `json:"tool_number"`
	Depth         float64 `json:"depth"`
	CuttingLength float64 `json:"cutting_length"`
}

func (CutDepthExceedsTool) validationError() {}

func (CutDepthExceedsTool) Kind() string { return "cut_depth_exceeds_tool" }

func (e CutDepthExceedsTool) Message() string {
	return fmt.Sprintf("part %q: %s cut is %.1f deep but tool %d only has %.1f of cutting length",
		e.PartLabel, e.OperationType, e.Depth, e.ToolNumber, e.CuttingLength)
}

// GcodeBoundsExceeded means an emitted coordinate leaves the travel
// envelope. Caught by re-checking the rendered program, since toolpath
// synthesis can add rapids beyond the raw part envelope.
type GcodeBoundsExceeded struct {
	Axis  string  `json:"axis"`
	Value float64 `json:"value"`
	Limit float64 `json:"limit"`
	Line  int     `json:"line"`
}

func (GcodeBoundsExceeded) validationError() {}

func (GcodeBoundsExceeded) Kind() string { return "gcode_bounds_exceeded" }

func (e GcodeBoundsExceeded) Message() string {
	return fmt.Sprintf("emitted %s coordinate %.3f at line %d exceeds the travel limit %.1f",
		e.Axis, e.Value, e.Line, e.Limit)
}

// SheetExceedsBed means the stock sheet is larger than the machine bed
// and must be broken down before machining.
type SheetExceedsBed struct {
	SheetWidth     float64 `json:"sheet_width"`
	SheetLength    float64 `json:"sheet_length"`
	TravelX        float64 `json:"travel_x"`
	TravelY        float64 `json:"travel_y"`
	Recommendation string  `json:"recommendation"`
}

func (SheetExceedsBed) validationWarning() {}

func (SheetExceedsBed) Kind() string { return "sheet_exceeds_bed" }

func (w SheetExceedsBed) Message() string {
	return fmt.Sprintf("sheet %.0f x %.0f exceeds the %.0f x %.0f bed; %s",
		w.SheetWidth, w.SheetLength, w.TravelX, w.TravelY, w.Recommendation)
}

// PartNeedsPreCutting means a part fits the bed but comes from a sheet
// that does not, so its blank must be rough-cut first.
type PartNeedsPreCutting struct {
	PartLabel  string  `json:"part_label"`
	PartWidth  float64 `json:"part_width"`
	PartHeight float64 `json:"part_height"`
}

func (PartNeedsPreCutting) validationWarning() {}

func (PartNeedsPreCutting) Kind() string { return "part_needs_pre_cutting" }

func (w PartNeedsPreCutting) Message() string {
	return fmt.Sprintf("part %q (%.1f x %.1f) must be rough-cut from the oversized sheet before machining",
		w.PartLabel, w.PartWidth, w.PartHeight)
}

// MultipleToolsNoAtc means the job needs manual tool changes.
type MultipleToolsNoAtc struct {
	ToolCount int `json:"tool_count"`
}

func (MultipleToolsNoAtc) validationWarning() {}

func (MultipleToolsNoAtc) Kind() string { return "multiple_tools_no_atc" }

func (w MultipleToolsNoAtc) Message() string {
	return fmt.Sprintf("%d tools required but the machine has no tool changer; each change needs operator intervention",
		w.ToolCount)
}

// FixtureCollision means the tool passes too close to a clamp or other
// bed fixture.
type FixtureCollision struct {
	SheetIndex   int     `json:"sheet_index"`
	PartLabel    string  `json:"part_label"`
	FixtureLabel string  `json:"fixture_label"`
	ToolX        float64 `json:"tool_x"`
	ToolY        float64 `json:"tool_y"`
	Clearance    float64 `json:"clearance"`
	DuringCut    bool    `json:"during_cut"`
}

func (FixtureCollision) validationWarning() {}

func (FixtureCollision) Kind() string { return "fixture_collision" }

func (w FixtureCollision) Message() string {
	moveType := "cutting"
	if !w.DuringCut {
		moveType = "positioning over"
	}
	return fmt.Sprintf("sheet %d: tool may hit fixture %q while %s part %q near (%.0f, %.0f)",
		w.SheetIndex+1, w.FixtureLabel, moveType, w.PartLabel, w.ToolX, w.ToolY)
}

// Report is the outcome of a validation run. Errors block generation;
// warnings do not.
type Report struct {
	Errors   []Error
	Warnings []Warning
}

// OK reports whether generation may proceed.
func (r Report) OK() bool {
	return len(r.Errors) == 0
}

// Merge appends another report's findings.
func (r *Report) Merge(other Report) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// Messages returns every finding rendered as text, errors first.
func (r Report) Messages() []string {
	msgs := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		msgs = append(msgs, "error: "+e.Message())
	}
	for _, w := range r.Warnings {
		msgs = append(msgs, "warning: "+w.Message())
	}
	return msgs
}

type reportWire struct {
	OK       bool                 `json:"ok"`
	Errors   []map[string]Error   `json:"errors"`
	Warnings []map[string]Warning `json:"warnings"`
}

// MarshalJSON renders findings externally tagged, one single-key object
// per finding: {"rpm_out_of_range": {...}}.
func (r Report) MarshalJSON() ([]byte, error) {
	wire := reportWire{
		OK:       r.OK(),
		Errors:   make([]map[string]Error, len(r.Errors)),
		Warnings: make([]map[string]Warning, len(r.Warnings)),
	}
	for i, e := range r.Errors {
		wire.Errors[i] = map[string]Error{e.Kind(): e}
	}
	for i, w := range r.Warnings {
		wire.Warnings[i] = map[string]Warning{w.Kind(): w}
	}
	return json.Marshal(wire)
}
