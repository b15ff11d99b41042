package model

import (
	"fmt"
	"sort"
)

// ToolKind classifies a cutting tool.
type ToolKind string

const (
	KindEndMill ToolKind = "end_mill"
	KindDrill   ToolKind = "drill"
	KindVBit    ToolKind = "v_bit"
)

// Tool represents a cutter in the machine's tool table. FeedRate,
// PlungeRate and RPM are defaults; a material feed table may override
// them per material.
type Tool struct {
	Number        int      `json:"number"`
	Name          string   `json:"name"`
	Kind          ToolKind `json:"kind"`
	Diameter      float64  `json:"diameter"`
	CuttingLength float64  `json:"cutting_length"` // Flute length; the deepest safe cut
	FeedRate      float64  `json:"feed_rate"`
	PlungeRate    float64  `json:"plunge_rate"`
	RPM           float64  `json:"rpm"`
}

// DefaultTools returns a starter tool table for sheet-goods work.
func DefaultTools() []Tool {
	return []Tool{
		{Number: 1, Name: "6mm End Mill", Kind: KindEndMill, Diameter: 6.0, CuttingLength: 25.0, FeedRate: 1500, PlungeRate: 500, RPM: 18000},
		{Number: 2, Name: "3mm End Mill", Kind: KindEndMill, Diameter: 3.0, CuttingLength: 12.0, FeedRate: 1000, PlungeRate: 300, RPM: 20000},
		{Number: 3, Name: "5mm Brad Point Drill", Kind: KindDrill, Diameter: 5.0, CuttingLength: 40.0, FeedRate: 600, PlungeRate: 250, RPM: 12000},
		{Number: 4, Name: "9.5mm Pocket Bit", Kind: KindDrill, Diameter: 9.5, CuttingLength: 30.0, FeedRate: 500, PlungeRate: 200, RPM: 10000},
	}
}

// FindTool returns the tool with the given number, or nil.
func FindTool(tools []Tool, number int) *Tool {
	for i := range tools {
		if tools[i].Number == number {
			return &tools[i]
		}
	}
	return nil
}

// ToolAssignment maps operation classes to tool numbers. Which
// operations a part carries is decided upstream; the assignment only
// says which cutter runs each class.
type ToolAssignment struct {
	Profile int `json:"profile"` // Outer profile cuts
	Groove  int `json:"groove"`  // Dados and rabbets
	Drill   int `json:"drill"`   // Drill operations
	Pocket  int `json:"pocket"`  // Pocket holes
}

// DefaultAssignment maps the default tool table onto operation classes.
func DefaultAssignment() ToolAssignment {
	return ToolAssignment{Profile: 1, Groove: 1, Drill: 3, Pocket: 4}
}

// ForOperation returns the assigned tool number for an operation.
func (ta ToolAssignment) ForOperation(op Operation) int {
	switch op.(type) {
	case Dado, Rabbet:
		return ta.Groove
	case Drill:
		return ta.Drill
	case PocketHole:
		return ta.Pocket
	}
	panic(fmt.Sprintf("unknown operation variant %T", op))
}

// UsedNumbers returns the distinct tool numbers the given parts need,
// ascending. The profile tool is always included since every placed
// part gets an outer cut. Bench-drilled pocket holes are excluded.
func (ta ToolAssignment) UsedNumbers(parts []Part) []int {
	seen := map[int]bool{ta.Profile: true}
	for _, p := range parts {
		for _, op := range p.Operations {
			if ph, ok := op.(PocketHole); ok && !ph.CNC {
				continue
			}
			seen[ta.ForOperation(op)] = true
		}
	}
	nums := make([]int, 0, len(seen))
	for n := range seen {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}
