package project

import (
	"fmt"
	"sort"

	"github.com/piwi3910/partcam/internal/model"
)

// Template is a built-in starter project. Build returns a fresh
// project on every call: part and stock ids are regenerated, so
// instantiating the same template twice never collides.
type Template struct {
	Name        string
	Description string
	build       func() model.Project
}

// Build instantiates the template.
func (t Template) Build() model.Project {
	return t.build()
}

// Templates returns the built-in templates sorted by name.
func Templates() []Template {
	list := []Template{
		{
			Name:        "base-cabinet",
			Description: "600mm frameless base cabinet: sides, bottom, stretchers, shelf, back and door",
			build:       baseCabinet,
		},
		{
			Name:        "drawer-box",
			Description: "400mm drawer box with grooved bottom and applied false front",
			build:       drawerBox,
		},
		{
			Name:        "bookshelf",
			Description: "1800mm bookshelf: two fixed and three adjustable shelves",
			build:       bookshelf,
		},
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// FindTemplate returns the named template, reporting whether it exists.
func FindTemplate(name string) (Template, bool) {
	for _, t := range Templates() {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

// NewFromTemplate instantiates the named template.
func NewFromTemplate(name string) (model.Project, error) {
	t, ok := FindTemplate(name)
	if !ok {
		return model.Project{}, fmt.Errorf("unknown template %q", name)
	}
	return t.Build(), nil
}

func templatePart(label string, w, h, thickness float64, material string, qty int) model.Part {
	p := model.NewPart(label, w, h, qty)
	p.Thickness = thickness
	p.Material = material
	return p
}

func templateStock(label, material string, w, l, thickness float64, qty int, price float64) model.StockSheet {
	s := model.NewStockSheet(label, w, l, qty)
	s.Material = material
	s.Thickness = thickness
	s.PricePerSheet = price
	return s
}

// baseCabinet is a 600x720x560 frameless carcass. The bottom sits in
// dados 100mm up to form the toe kick; the back rides in rabbets.
func baseCabinet() model.Project {
	proj := model.NewProject()
	proj.Name = "Base Cabinet"

	side := templatePart("Side", 560, 720, 18, "birch-ply", 2)
	side.Grain = model.GrainLengthwise
	side.EdgeBanding = model.EdgeBandingSpec{Left: true}
	side.Operations = model.OperationList{
		model.Dado{Position: 100, Width: 18, Depth: 6, Orientation: model.OrientHorizontal},
		model.Rabbet{Edge: model.EdgeRight, Width: 12, Depth: 6},
		model.Drill{X: 37, Y: 350, Diameter: 5, Depth: 10},
		model.Drill{X: 37, Y: 414, Diameter: 5, Depth: 10},
		model.Drill{X: 523, Y: 350, Diameter: 5, Depth: 10},
		model.Drill{X: 523, Y: 414, Diameter: 5, Depth: 10},
	}

	bottom := templatePart("Bottom", 564, 560, 18, "birch-ply", 1)
	bottom.EdgeBanding = model.EdgeBandingSpec{Bottom: true}

	stretcher := templatePart("Stretcher", 564, 100, 18, "birch-ply", 2)
	stretcher.Operations = model.OperationList{
		model.PocketHole{X: 30, Y: 50, Edge: model.EdgeLeft, CNC: true},
		model.PocketHole{X: 534, Y: 50, Edge: model.EdgeRight, CNC: true},
	}

	shelf := templatePart("Shelf", 558, 530, 18, "birch-ply", 1)
	shelf.Grain = model.GrainWidthwise
	shelf.EdgeBanding = model.EdgeBandingSpec{Top: true}

	door := templatePart("Door", 597, 717, 18, "birch-ply", 1)
	door.Grain = model.GrainLengthwise
	door.EdgeBanding = model.EdgeBandingSpec{Top: true, Bottom: true, Left: true, Right: true}
	door.Operations = model.OperationList{
		model.Drill{X: 22.5, Y: 100, Diameter: 35, Depth: 13},
		model.Drill{X: 22.5, Y: 617, Diameter: 35, Depth: 13},
	}

	back := templatePart("Back", 588, 690, 6, "mdf", 1)

	proj.Parts = []model.Part{side, bottom, stretcher, shelf, door, back}
	proj.Stocks = []model.StockSheet{
		templateStock("Birch Plywood 18mm", "birch-ply", 1220, 2440, 18, 2, 85),
		templateStock("MDF 6mm", "mdf", 1220, 2440, 6, 1, 32),
	}
	return proj
}

// drawerBox is a 400x500x150 drawer with the bottom captive in grooves
// and the front and back rabbeted into the sides.
func drawerBox() model.Project {
	proj := model.NewProject()
	proj.Name = "Drawer Box"

	side := templatePart("Drawer Side", 500, 150, 12, "baltic-birch", 2)
	side.Operations = model.OperationList{
		model.Dado{Position: 10, Width: 6, Depth: 4, Orientation: model.OrientHorizontal},
		model.Rabbet{Edge: model.EdgeLeft, Width: 12, Depth: 6},
		model.Rabbet{Edge: model.EdgeRight, Width: 12, Depth: 6},
	}

	end := templatePart("Drawer End", 376, 150, 12, "baltic-birch", 2)
	end.Operations = model.OperationList{
		model.Dado{Position: 10, Width: 6, Depth: 4, Orientation: model.OrientHorizontal},
	}

	bottom := templatePart("Drawer Bottom", 476, 384, 6, "mdf", 1)

	front := templatePart("False Front", 420, 170, 18, "birch-ply", 1)
	front.Grain = model.GrainWidthwise
	front.EdgeBanding = model.EdgeBandingSpec{Top: true, Bottom: true, Left: true, Right: true}
	front.Operations = model.OperationList{
		model.PocketHole{X: 100, Y: 85, Edge: model.EdgeLeft, CNC: false},
		model.PocketHole{X: 320, Y: 85, Edge: model.EdgeRight, CNC: false},
	}

	proj.Parts = []model.Part{side, end, bottom, front}
	proj.Stocks = []model.StockSheet{
		templateStock("Baltic Birch 12mm", "baltic-birch", 1525, 1525, 12, 1, 95),
		templateStock("MDF 6mm", "mdf", 1220, 2440, 6, 1, 32),
		templateStock("Birch Plywood 18mm", "birch-ply", 1220, 2440, 18, 1, 85),
	}
	return proj
}

// bookshelf is an 800x1800x280 case with two fixed shelves in dados
// and three adjustable shelves on 5mm pins.
func bookshelf() model.Project {
	proj := model.NewProject()
	proj.Name = "Bookshelf"

	side := templatePart("Side", 280, 1800, 18, "oak-ply", 2)
	side.Grain = model.GrainLengthwise
	side.EdgeBanding = model.EdgeBandingSpec{Left: true}
	side.Operations = model.OperationList{
		model.Dado{Position: 400, Width: 18, Depth: 6, Orientation: model.OrientHorizontal},
		model.Dado{Position: 1380, Width: 18, Depth: 6, Orientation: model.OrientHorizontal},
		model.Rabbet{Edge: model.EdgeRight, Width: 12, Depth: 6},
		model.Drill{X: 37, Y: 700, Diameter: 5, Depth: 10},
		model.Drill{X: 37, Y: 1100, Diameter: 5, Depth: 10},
		model.Drill{X: 243, Y: 700, Diameter: 5, Depth: 10},
		model.Drill{X: 243, Y: 1100, Diameter: 5, Depth: 10},
	}

	top := templatePart("Top", 800, 280, 18, "oak-ply", 1)
	top.Grain = model.GrainWidthwise
	top.EdgeBanding = model.EdgeBandingSpec{Top: true, Left: true, Right: true}

	fixed := templatePart("Fixed Shelf", 764, 280, 18, "oak-ply", 2)
	fixed.Grain = model.GrainWidthwise
	fixed.EdgeBanding = model.EdgeBandingSpec{Top: true}

	shelf := templatePart("Shelf", 760, 276, 18, "oak-ply", 3)
	shelf.Grain = model.GrainWidthwise
	shelf.EdgeBanding = model.EdgeBandingSpec{Top: true}

	kick := templatePart("Kick", 764, 80, 18, "oak-ply", 1)

	back := templatePart("Back", 788, 1764, 6, "mdf", 1)

	proj.Parts = []model.Part{side, top, fixed, shelf, kick, back}
	proj.Stocks = []model.StockSheet{
		templateStock("Oak Plywood 18mm", "oak-ply", 1220, 2440, 18, 3, 110),
		templateStock("MDF 6mm", "mdf", 1220, 2440, 6, 1, 32),
	}
	return proj
}
