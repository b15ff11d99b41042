package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/table"

	"github.com/piwi3910/partcam/internal/model"
)

// ExportDXF writes one sheet layout as a DXF drawing for downstream
// CAD work. Parts with an imported outline keep their true shape;
// plain rectangles are written as closed polylines. DXF's Y axis
// points up, so layout coordinates (origin top-left, Y down) are
// flipped against the sheet length.
func ExportDXF(path string, sheet model.SheetLayout) error {
	d := dxf.NewDrawing()

	flip := func(y float64) float64 { return sheet.Length - y }

	if _, err := d.AddLayer("SHEET", color.Yellow, table.LT_CONTINUOUS, true); err != nil {
		return fmt.Errorf("add layer: %w", err)
	}
	_, err := d.LwPolyline(true,
		[]float64{0, 0},
		[]float64{sheet.Width, 0},
		[]float64{sheet.Width, sheet.Length},
		[]float64{0, sheet.Length},
	)
	if err != nil {
		return fmt.Errorf("sheet boundary: %w", err)
	}

	if _, err := d.AddLayer("PARTS", color.Green, table.LT_CONTINUOUS, true); err != nil {
		return fmt.Errorf("add layer: %w", err)
	}
	for _, p := range sheet.Placements {
		var vertices [][]float64
		if len(p.Part.Outline) >= 3 {
			for _, pt := range p.Part.Outline {
				c := placedOpPoint(p, pt.X, pt.Y)
				vertices = append(vertices, []float64{c.X, flip(c.Y)})
			}
		} else {
			r := p.Rect()
			vertices = [][]float64{
				{r.X, flip(r.Bottom())},
				{r.Right(), flip(r.Bottom())},
				{r.Right(), flip(r.Y)},
				{r.X, flip(r.Y)},
			}
		}
		if _, err := d.LwPolyline(true, vertices...); err != nil {
			return fmt.Errorf("part %s: %w", p.ID, err)
		}

		r := p.Rect()
		if _, err := d.Text(p.Part.Label, r.X+2, flip(r.Bottom())+2, 0, 8); err != nil {
			return fmt.Errorf("part label %s: %w", p.ID, err)
		}
	}

	if _, err := d.AddLayer("DRILL", color.Red, table.LT_CONTINUOUS, true); err != nil {
		return fmt.Errorf("add layer: %w", err)
	}
	for _, p := range sheet.Placements {
		for _, op := range p.Part.Operations {
			if drillOp, ok := op.(model.Drill); ok {
				c := placedOpPoint(p, drillOp.X, drillOp.Y)
				if _, err := d.Circle(c.X, flip(c.Y), 0, drillOp.Diameter/2); err != nil {
					return fmt.Errorf("drill on %s: %w", p.ID, err)
				}
			}
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("save dxf: %w", err)
	}
	return nil
}
