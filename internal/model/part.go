package model

import (
	"sort"

	"github.com/google/uuid"
)

// Part represents a required piece to be cut, with the machining
// operations it carries. Parts are immutable once handed to nesting;
// downstream stages reference them by id and label.
type Part struct {
	ID          string          `json:"id"`
	Label       string          `json:"label"`
	Width       float64         `json:"width"`  // bounding box width for non-rectangular parts
	Height      float64         `json:"height"` // bounding box height for non-rectangular parts
	Thickness   float64         `json:"thickness"`
	Material    string          `json:"material"`
	Grain       Grain           `json:"grain"`
	Quantity    int             `json:"quantity"`
	Operations  OperationList   `json:"operations,omitempty"`
	Outline     Outline         `json:"outline,omitempty"` // Non-rectangular part outline; nil for rectangular parts
	EdgeBanding EdgeBandingSpec `json:"edge_banding"`
}

func NewPart(label string, w, h float64, qty int) Part {
	return Part{
		ID:       uuid.New().String()[:8],
		Label:    label,
		Width:    w,
		Height:   h,
		Quantity: qty,
		Grain:    GrainNone,
	}
}

// Area returns the part footprint area.
func (p Part) Area() float64 {
	return p.Width * p.Height
}

// MaxDim returns the larger of width and height.
func (p Part) MaxDim() float64 {
	if p.Width > p.Height {
		return p.Width
	}
	return p.Height
}

// MaterialGroup is the set of parts sharing one material and thickness.
// Each group nests onto its own sheets.
type MaterialGroup struct {
	Material  string  `json:"material"`
	Thickness float64 `json:"thickness"`
	Parts     []Part  `json:"parts"`
}

// GroupParts buckets parts by material name and thickness. Groups are
// returned in a deterministic order: material ascending, then thickness
// ascending.
func GroupParts(parts []Part) []MaterialGroup {
	type key struct {
		material  string
		thickness float64
	}
	byKey := make(map[key][]Part)
	for _, p := range parts {
		k := key{p.Material, p.Thickness}
		byKey[k] = append(byKey[k], p)
	}
	keys := make([]key, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].material != keys[j].material {
			return keys[i].material < keys[j].material
		}
		return keys[i].thickness < keys[j].thickness
	})
	groups := make([]MaterialGroup, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, MaterialGroup{
			Material:  k.material,
			Thickness: k.thickness,
			Parts:     byKey[k],
		})
	}
	return groups
}
