package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/piwi3910/partcam/internal/model"
)

var cutListHeader = []string{
	"label", "material", "width", "height", "thickness",
	"qty", "grain", "sheet", "x", "y", "rotated",
}

// WriteCutList writes the shop cut list as CSV: one row per placed
// part instance and one per unplaced part. Placed rows carry the sheet
// number within the part's material group and the placement origin;
// unplaced rows leave those columns empty.
func WriteCutList(w io.Writer, groups []model.MaterialGroupResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(cutListHeader); err != nil {
		return err
	}

	for _, g := range groups {
		for _, sheet := range g.Result.Sheets {
			for _, p := range sheet.Placements {
				rotated := "no"
				if p.Rotated {
					rotated = "yes"
				}
				row := []string{
					p.Part.Label,
					p.Part.Material,
					num(p.Part.Width),
					num(p.Part.Height),
					num(p.Part.Thickness),
					strconv.Itoa(p.Part.Quantity),
					p.Part.Grain.String(),
					strconv.Itoa(sheet.Index + 1),
					num(p.X),
					num(p.Y),
					rotated,
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
		for _, part := range g.Result.Unplaced {
			row := []string{
				part.Label,
				part.Material,
				num(part.Width),
				num(part.Height),
				num(part.Thickness),
				strconv.Itoa(part.Quantity),
				part.Grain.String(),
				"", "", "", "",
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportCutList writes the cut list CSV to a file.
func ExportCutList(path string, groups []model.MaterialGroupResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create cut list: %w", err)
	}
	if err := WriteCutList(f, groups); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
