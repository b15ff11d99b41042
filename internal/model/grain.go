package model

import (
	"encoding/json"
	"fmt"
)

// Grain represents the grain direction constraint for a part or sheet.
type Grain int

const (
	GrainNone       Grain = iota // No grain constraint, can rotate freely
	GrainLengthwise              // Grain runs along the length (Y axis)
	GrainWidthwise               // Grain runs along the width (X axis)
)

func (g Grain) String() string {
	switch g {
	case GrainLengthwise:
		return "lengthwise"
	case GrainWidthwise:
		return "widthwise"
	default:
		return "none"
	}
}

// MarshalJSON encodes the grain as a bare string.
func (g Grain) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.String())
}

// UnmarshalJSON decodes a bare grain string.
func (g *Grain) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseGrain(s)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// ParseGrain converts a grain direction string to a Grain value.
// The empty string maps to GrainNone.
func ParseGrain(s string) (Grain, error) {
	switch s {
	case "", "none":
		return GrainNone, nil
	case "lengthwise":
		return GrainLengthwise, nil
	case "widthwise":
		return GrainWidthwise, nil
	}
	return GrainNone, fmt.Errorf("unknown grain direction %q", s)
}

// CanPlaceWithGrain reports whether a part may be placed in its normal
// orientation and/or rotated 90 degrees on the given stock, considering
// grain directions alone. A part with a stated grain never rotates, and
// a cross-grain combination is rejected in both orientations rather than
// silently rotated into alignment.
func CanPlaceWithGrain(part, stock Grain) (normal, rotated bool) {
	if part == GrainNone {
		return true, true
	}
	if stock == GrainNone || stock == part {
		return true, false
	}
	return false, false
}
