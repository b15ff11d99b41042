package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// Motion is the kind of move a toolpath segment performs: Rapid, Linear,
// ArcCW, ArcCCW or DrillCycle. The set is closed; renderers switch
// exhaustively on the concrete type and treat an unknown variant as an
// internal contract violation.
type Motion interface {
	isMotion()
}

// Rapid is a positioning move above or clear of the material.
type Rapid struct{}

// Linear is a straight cutting move at feed rate.
type Linear struct{}

// ArcCW is a clockwise arc. I and J are the offsets from the segment's
// start point to the arc center.
type ArcCW struct {
	I float64 `json:"i"`
	J float64 `json:"j"`
}

// ArcCCW is a counter-clockwise arc with the same center convention as ArcCW.
type ArcCCW struct {
	I float64 `json:"i"`
	J float64 `json:"j"`
}

// DrillCycle is a canned drilling cycle at the segment endpoint.
// PeckDepth of zero means a single full-depth plunge.
type DrillCycle struct {
	RetractZ  float64 `json:"retract_z"`
	FinalZ    float64 `json:"final_z"`
	PeckDepth float64 `json:"peck_depth"`
}

func (Rapid) isMotion() {}

func (Linear) isMotion() {}

func (ArcCW) isMotion() {}

func (ArcCCW) isMotion() {}

func (DrillCycle) isMotion() {}

// ToolpathSegment is one motion ending at a point and depth. For a
// DrillCycle the endpoint is the hole center and Z the clearance plane
// the cycle is invoked from.
type ToolpathSegment struct {
	Motion Motion
	End    Point2D
	Z      float64
}

type segmentWire struct {
	Motion json.RawMessage `json:"motion"`
	End    Point2D         `json:"end"`
	Z      float64         `json:"z"`
}

// MarshalJSON encodes the motion externally tagged: field-less variants
// as bare strings ("rapid", "linear"), the rest as single-key objects.
func (s ToolpathSegment) MarshalJSON() ([]byte, error) {
	m, err := marshalMotion(s.Motion)
	if err != nil {
		return nil, err
	}
	return json.Marshal(segmentWire{Motion: m, End: s.End, Z: s.Z})
}

// UnmarshalJSON decodes the externally tagged motion encoding.
func (s *ToolpathSegment) UnmarshalJSON(data []byte) error {
	var raw segmentWire
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m, err := unmarshalMotion(raw.Motion)
	if err != nil {
		return err
	}
	s.Motion = m
	s.End = raw.End
	s.Z = raw.Z
	return nil
}

func marshalMotion(m Motion) (json.RawMessage, error) {
	switch mt := m.(type) {
	case Rapid:
		return json.Marshal("rapid")
	case Linear:
		return json.Marshal("linear")
	case ArcCW:
		return json.Marshal(map[string]ArcCW{"arc_cw": mt})
	case ArcCCW:
		return json.Marshal(map[string]ArcCCW{"arc_ccw": mt})
	case DrillCycle:
		return json.Marshal(map[string]DrillCycle{"drill_cycle": mt})
	}
	panic(fmt.Sprintf("unknown motion variant %T", m))
}

func unmarshalMotion(data json.RawMessage) (Motion, error) {
	var tag string
	if err := json.Unmarshal(data, &tag); err == nil {
		switch tag {
		case "rapid":
			return Rapid{}, nil
		case "linear":
			return Linear{}, nil
		}
		return nil, fmt.Errorf("unknown motion %q", tag)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if len(obj) != 1 {
		return nil, fmt.Errorf("motion: expected a single-key object, got %d keys", len(obj))
	}
	for kind, payload := range obj {
		switch kind {
		case "arc_cw":
			var m ArcCW
			if err := json.Unmarshal(payload, &m); err != nil {
				return nil, err
			}
			return m, nil
		case "arc_ccw":
			var m ArcCCW
			if err := json.Unmarshal(payload, &m); err != nil {
				return nil, err
			}
			return m, nil
		case "drill_cycle":
			var m DrillCycle
			if err := json.Unmarshal(payload, &m); err != nil {
				return nil, err
			}
			return m, nil
		}
		return nil, fmt.Errorf("unknown motion %q", kind)
	}
	return nil, fmt.Errorf("motion: empty object")
}

// Toolpath is an ordered motion sequence cut with a single tool.
type Toolpath struct {
	ToolNumber int               `json:"tool_number"`
	RPM        float64           `json:"rpm"`
	FeedRate   float64           `json:"feed_rate"`
	PlungeRate float64           `json:"plunge_rate"`
	Segments   []ToolpathSegment `json:"segments"`
}

// AnnotatedToolpath pairs a toolpath with its provenance so preview and
// debugging consumers can tell which part and operation produced it.
type AnnotatedToolpath struct {
	Toolpath
	PartLabel     string `json:"part_label"`
	PlacementID   string `json:"placement_id"`
	OperationType string `json:"operation_type"`
}

// CutDistance returns the total cutting distance across all non-rapid
// segments. Arcs measure true arc length; drill cycles count the feed
// from the retract plane to final depth.
func (tp Toolpath) CutDistance() float64 {
	return tp.distance(false)
}

// RapidDistance returns the total positioning distance.
func (tp Toolpath) RapidDistance() float64 {
	return tp.distance(true)
}

func (tp Toolpath) distance(rapid bool) float64 {
	var total float64
	for i := 1; i < len(tp.Segments); i++ {
		prev := tp.Segments[i-1]
		seg := tp.Segments[i]
		switch m := seg.Motion.(type) {
		case Rapid:
			if rapid {
				total += dist3(prev.End, prev.Z, seg.End, seg.Z)
			}
		case Linear:
			if !rapid {
				total += dist3(prev.End, prev.Z, seg.End, seg.Z)
			}
		case ArcCW:
			if !rapid {
				total += math.Hypot(arcLength(prev.End, seg.End, m.I, m.J, true), seg.Z-prev.Z)
			}
		case ArcCCW:
			if !rapid {
				total += math.Hypot(arcLength(prev.End, seg.End, m.I, m.J, false), seg.Z-prev.Z)
			}
		case DrillCycle:
			if rapid {
				total += dist2(prev.End, seg.End)
			} else {
				total += m.RetractZ - m.FinalZ
			}
		default:
			panic(fmt.Sprintf("unknown motion variant %T", seg.Motion))
		}
	}
	return total
}

func dist2(a, b Point2D) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func dist3(a Point2D, az float64, b Point2D, bz float64) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	dz := bz - az
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// arcLength returns the arc length from one point to another around a
// center offset (i, j) from the start, sweeping in the given direction.
func arcLength(from, to Point2D, i, j float64, clockwise bool) float64 {
	r := math.Hypot(i, j)
	if r < 1e-9 {
		return 0
	}
	cx := from.X + i
	cy := from.Y + j
	a1 := math.Atan2(from.Y-cy, from.X-cx)
	a2 := math.Atan2(to.Y-cy, to.X-cx)
	sweep := a2 - a1
	if clockwise {
		sweep = -sweep
	}
	for sweep <= 0 {
		sweep += 2 * math.Pi
	}
	for sweep > 2*math.Pi {
		sweep -= 2 * math.Pi
	}
	return r * sweep
}
