package model

import (
	"encoding/json"
	"fmt"
)

// EdgeName identifies one edge of a rectangular part.
type EdgeName string

const (
	EdgeTop    EdgeName = "top"
	EdgeBottom EdgeName = "bottom"
	EdgeLeft   EdgeName = "left"
	EdgeRight  EdgeName = "right"
)

// GrooveOrientation selects the axis a dado groove runs along.
type GrooveOrientation string

const (
	OrientHorizontal GrooveOrientation = "horizontal" // parallel to the part's width (X)
	OrientVertical   GrooveOrientation = "vertical"   // parallel to the part's height (Y)
)

// Operation is a machining operation carried by a part: Dado, Rabbet,
// Drill or PocketHole. The outer profile cut is implicit for every
// placed part and is not an Operation. The set is closed; consumers
// switch exhaustively on the concrete type.
type Operation interface {
	isOperation()
	// Kind returns the wire tag for the operation ("dado", "rabbet", ...).
	Kind() string
}

// Dado is a groove across the face of a part. Position is the groove
// centerline in part-local coordinates: Y for a horizontal groove,
// X for a vertical one.
type Dado struct {
	Position    float64           `json:"position"`
	Width       float64           `json:"width"`
	Depth       float64           `json:"depth"`
	Orientation GrooveOrientation `json:"orientation"`
}

func (Dado) isOperation() {}

func (Dado) Kind() string { return "dado" }

// Rabbet is a rebate along one edge of the part. Width is measured
// inward from the named edge.
type Rabbet struct {
	Edge  EdgeName `json:"edge"`
	Width float64  `json:"width"`
	Depth float64  `json:"depth"`
}

func (Rabbet) isOperation() {}

func (Rabbet) Kind() string { return "rabbet" }

// Drill is a straight hole at a part-local position.
type Drill struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Diameter float64 `json:"diameter"`
	Depth    float64 `json:"depth"`
}

func (Drill) isOperation() {}

func (Drill) Kind() string { return "drill" }

// PocketHole is a pocket-screw pilot hole near an edge. When CNC is
// false the hole is drilled at the bench with a jig and the toolpath
// engine skips it; it still appears in cut lists.
type PocketHole struct {
	X    float64  `json:"x"`
	Y    float64  `json:"y"`
	Edge EdgeName `json:"edge"`
	CNC  bool     `json:"cnc_flag"`
}

func (PocketHole) isOperation() {}

func (PocketHole) Kind() string { return "pocket_hole" }

// OperationList is an ordered list of operations. On the wire each
// element is externally tagged: a single-key object {"dado": {...}}.
type OperationList []Operation

// MarshalJSON encodes every operation as a single-key tagged object.
func (ol OperationList) MarshalJSON() ([]byte, error) {
	out := make([]map[string]Operation, len(ol))
	for i, op := range ol {
		out[i] = map[string]Operation{op.Kind(): op}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a list of tagged operation objects. An unknown
// tag is an error naming the tag.
func (ol *OperationList) UnmarshalJSON(data []byte) error {
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	list := make(OperationList, 0, len(raw))
	for i, entry := range raw {
		if len(entry) != 1 {
			return fmt.Errorf("operation %d: expected a single-key object, got %d keys", i, len(entry))
		}
		for kind, payload := range entry {
			op, err := decodeOperation(kind, payload)
			if err != nil {
				return fmt.Errorf("operation %d: %w", i, err)
			}
			list = append(list, op)
		}
	}
	*ol = list
	return nil
}

func decodeOperation(kind string, payload json.RawMessage) (Operation, error) {
	switch kind {
	case "dado":
		var op Dado
		if err := json.Unmarshal(payload, &op); err != nil {
			return nil, err
		}
		return op, nil
	case "rabbet":
		var op Rabbet
		if err := json.Unmarshal(payload, &op); err != nil {
			return nil, err
		}
		return op, nil
	case "drill":
		var op Drill
		if err := json.Unmarshal(payload, &op); err != nil {
			return nil, err
		}
		return op, nil
	case "pocket_hole":
		var op PocketHole
		if err := json.Unmarshal(payload, &op); err != nil {
			return nil, err
		}
		return op, nil
	}
	return nil, fmt.Errorf("unknown operation type %q", kind)
}
