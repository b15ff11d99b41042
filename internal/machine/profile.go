package machine

import (
	"github.com/piwi3910/partcam/internal/model"
)

// MachineInfo describes the physical envelope and spindle of a machine.
// Travel values are half-extents per axis: a coordinate c is reachable
// when |c| <= travel. Units apply to travels, rapid rate and every
// dimension fed to the post.
type MachineInfo struct {
	Name       string  `json:"name" validate:"required"`
	Controller string  `json:"controller" validate:"required"`
	TravelX    float64 `json:"travel_x" validate:"gt=0"`
	TravelY    float64 `json:"travel_y" validate:"gt=0"`
	TravelZ    float64 `json:"travel_z" validate:"gt=0"`
	MaxRPM     float64 `json:"max_rpm" validate:"gt=0"`
	MinRPM     float64 `json:"min_rpm" validate:"gte=0,ltfield=MaxRPM"`
	HasATC     bool    `json:"has_atc"`
	Units      string  `json:"units" validate:"required,oneof=mm inch"`
	RapidRate  float64 `json:"rapid_rate" validate:"gt=0"` // Positioning speed for time estimates
}

// PostConfig controls how programs are rendered for the controller.
// ToolChange, SpindleOn and ProgramEnd may carry the placeholders
// [Tool], [RPM] and [SafeZ], substituted at render time.
type PostConfig struct {
	FileExtension   string   `json:"file_extension" validate:"required"`
	LineNumbers     bool     `json:"line_numbers"`
	DecimalPlaces   int      `json:"decimal_places" validate:"min=2,max=5"`
	SafeZ           float64  `json:"safe_z" validate:"gt=0"`  // Machine default retract height
	RapidZ          float64  `json:"rapid_z" validate:"gt=0"` // Machine default clearance for long rapids
	ProgramHeader   []string `json:"program_header"`          // Setup lines after the comment block
	ProgramEnd      string   `json:"program_end" validate:"required"`
	ToolChange      string   `json:"tool_change" validate:"required"`
	SpindleOn       string   `json:"spindle_on" validate:"required"`
	SpindleOff      string   `json:"spindle_off" validate:"required"`
	CommentStyle    string   `json:"comment_style" validate:"oneof=parentheses semicolon none"`
	UseCannedCycles bool     `json:"use_canned_cycles"` // False expands drill cycles into discrete moves
}

// FixtureZone is a keep-out area on the machine bed occupied by a
// clamp, vise or vacuum pod fence. ZHeight is how far the obstruction
// sticks up above the spoilboard.
type FixtureZone struct {
	Label   string  `json:"label"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width" validate:"gt=0"`
	Height  float64 `json:"height" validate:"gt=0"`
	ZHeight float64 `json:"z_height"`
}

// Rect returns the zone footprint on the bed.
func (fz FixtureZone) Rect() model.Rect {
	return model.Rect{X: fz.X, Y: fz.Y, W: fz.Width, H: fz.Height}
}

// Overlaps checks if a rectangle overlaps this zone. Touching edges do
// not count as overlap.
func (fz FixtureZone) Overlaps(r model.Rect) bool {
	return fz.Rect().Overlaps(r)
}

// MachineProfile bundles a machine envelope with the post-processor
// configuration for its controller, plus any fixture keep-out zones.
type MachineProfile struct {
	Machine     MachineInfo   `json:"machine" validate:"required"`
	Post        PostConfig    `json:"post" validate:"required"`
	Fixtures    []FixtureZone `json:"fixtures,omitempty" validate:"dive"`
	Description string        `json:"description,omitempty"`
	IsBuiltIn   bool          `json:"-"`
}

// Name returns the machine name, the registry key for the profile.
func (p MachineProfile) Name() string {
	return p.Machine.Name
}

// FixtureRects returns the fixture zone footprints for nesting
// exclusion.
func (p MachineProfile) FixtureRects() []model.Rect {
	if len(p.Fixtures) == 0 {
		return nil
	}
	rects := make([]model.Rect, len(p.Fixtures))
	for i, fz := range p.Fixtures {
		rects[i] = fz.Rect()
	}
	return rects
}
