package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/partcam/internal/model"
)

// ExportXLSX writes the cut list and bill of materials as a two-sheet
// Excel workbook.
func ExportXLSX(path string, groups []model.MaterialGroupResult, bom BOM) error {
	f := excelize.NewFile()
	defer f.Close()

	const cutSheet = "Cut List"
	if err := f.SetSheetName("Sheet1", cutSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeCutListSheet(f, cutSheet, groups); err != nil {
		return err
	}

	const bomSheet = "BOM"
	if _, err := f.NewSheet(bomSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	if err := writeBOMSheet(f, bomSheet, bom); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// headerStyle is the bold blue-filled style for header rows.
func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
}

func writeCutListSheet(f *excelize.File, sheet string, groups []model.MaterialGroupResult) error {
	header := []interface{}{
		"Label", "Material", "Width", "Height", "Thickness",
		"Qty", "Grain", "Sheet", "X", "Y", "Rotated",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	row := 2
	writeRow := func(values []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		row++
		return nil
	}

	for _, g := range groups {
		for _, sl := range g.Result.Sheets {
			for _, p := range sl.Placements {
				rotated := "no"
				if p.Rotated {
					rotated = "yes"
				}
				err := writeRow([]interface{}{
					p.Part.Label, p.Part.Material, p.Part.Width, p.Part.Height, p.Part.Thickness,
					p.Part.Quantity, p.Part.Grain.String(), sl.Index + 1, p.X, p.Y, rotated,
				})
				if err != nil {
					return err
				}
			}
		}
		for _, part := range g.Result.Unplaced {
			err := writeRow([]interface{}{
				part.Label, part.Material, part.Width, part.Height, part.Thickness,
				part.Quantity, part.Grain.String(), "", "", "", "",
			})
			if err != nil {
				return err
			}
		}
	}

	style, err := headerStyle(f)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "K1", style); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "B", 18)
}

func writeBOMSheet(f *excelize.File, sheet string, bom BOM) error {
	rows := [][]interface{}{
		{"Project", bom.Project},
		{"Machine", bom.Machine},
		nil,
		{"Material", "Thickness", "Sheets", "Parts", "Utilization %", "Offcut mm2"},
	}
	for _, m := range bom.Materials {
		rows = append(rows, []interface{}{
			m.Material, m.Thickness, m.SheetCount, m.PartsPlaced, m.Utilization, m.OffcutArea,
		})
	}
	rows = append(rows,
		nil,
		[]interface{}{"Sheets to buy", bom.Purchase.SheetsWithWaste},
		[]interface{}{"Estimated cost", bom.Purchase.EstimatedCost},
		[]interface{}{"Edge banding (mm)", bom.EdgeBanding.TotalWithWaste},
		[]interface{}{"Usable offcuts", len(bom.Offcuts)},
		[]interface{}{"Unplaced parts", len(bom.Unplaced)},
	)

	for i, values := range rows {
		if values == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	style, err := headerStyle(f)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A4", "F4", style); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "A", 20)
}
