// Package export writes the artifact set for a nesting run: layout
// drawings (PDF, SVG, DXF), shop paperwork (cut list CSV, XLSX
// workbook, QR part labels) and a bill of materials. Every exporter is
// deterministic; no artifact embeds a timestamp.
package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/partcam/internal/machine"
	"github.com/piwi3910/partcam/internal/model"
)

// partColor is an RGB fill for a placed part.
type partColor struct {
	R, G, B int
}

var partColors = []partColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ExportPDF writes the layout book: one landscape page per nested
// sheet across all material groups, then a summary page. Fixture
// zones from the machine profile render as keep-clear areas.
func ExportPDF(path string, groups []model.MaterialGroupResult, fixtures []machine.FixtureZone, cfg model.NestingConfig) error {
	if countSheets(groups) == 0 {
		return fmt.Errorf("no sheets to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	sheetNum := 0
	for _, g := range groups {
		for _, sheet := range g.Result.Sheets {
			sheetNum++
			pdf.AddPage()
			renderSheetPage(pdf, sheet, fixtures, cfg, sheetNum)
		}
	}

	pdf.AddPage()
	renderSummaryPage(pdf, groups, cfg)

	return pdf.OutputFileAndClose(path)
}

// renderSheetPage draws one nested sheet on the current page.
func renderSheetPage(pdf *fpdf.Fpdf, sheet model.SheetLayout, fixtures []machine.FixtureZone, cfg model.NestingConfig, sheetNum int) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Sheet %d: %s (%.0f x %.0f mm, %.0f mm)", sheetNum, sheet.Material, sheet.Width, sheet.Length, sheet.Thickness)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Parts: %d | Used area: %.0f mm2 | Total area: %.0f mm2 | Utilization: %.1f%%",
		len(sheet.Placements), sheet.UsedArea(), sheet.TotalArea(), sheet.Utilization())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight

	scaleX := drawWidth / sheet.Width
	scaleY := drawHeight / sheet.Length
	scale := math.Min(scaleX, scaleY)

	canvasW := sheet.Width * scale
	canvasH := sheet.Length * scale

	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Sheet background, wood colored
	pdf.SetFillColor(210, 180, 140)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	// Edge margin frame
	if cfg.EdgeMargin > 0 {
		m := cfg.EdgeMargin * scale
		pdf.SetDrawColor(150, 150, 150)
		pdf.SetLineWidth(0.2)
		pdf.SetDashPattern([]float64{1.5, 1.5}, 0)
		pdf.Rect(offsetX+m, offsetY+m, canvasW-2*m, canvasH-2*m, "D")
		pdf.SetDashPattern([]float64{}, 0)
	}

	drawFixtureZones(pdf, fixtures, scale, offsetX, offsetY)

	for i, p := range sheet.Placements {
		col := partColors[i%len(partColors)]
		pw := p.PlacedWidth() * scale
		ph := p.PlacedHeight() * scale
		px := offsetX + p.X*scale
		py := offsetY + p.Y*scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		drawPlacementOps(pdf, p, scale, px, py)

		if pw > 15 && ph > 8 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)

			label := p.Part.Label
			if p.Rotated {
				label += " (R)"
			}
			dims := fmt.Sprintf("%.0fx%.0f", p.Part.Width, p.Part.Height)

			labelW := pdf.GetStringWidth(label)
			dimsW := pdf.GetStringWidth(dims)

			if labelW < pw-2 {
				pdf.SetXY(px+(pw-labelW)/2, py+ph/2-4)
				pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
			}
			if ph > 14 && dimsW < pw-2 {
				pdf.SetXY(px+(pw-dimsW)/2, py+ph/2)
				pdf.CellFormat(dimsW, 4, dims, "", 0, "C", false, 0, "")
			}
		}
	}

	drawDimensionAnnotations(pdf, sheet, scale, offsetX, offsetY, canvasW, canvasH)
	drawPartsLegend(pdf, sheet, offsetY+canvasH+5)
}

// drawPlacementOps marks drills and grooves inside a placed part so the
// operator can sanity-check the drawing against the program.
func drawPlacementOps(pdf *fpdf.Fpdf, p model.Placement, scale, px, py float64) {
	pdf.SetDrawColor(60, 60, 60)
	pdf.SetLineWidth(0.2)
	for _, op := range p.Part.Operations {
		switch o := op.(type) {
		case model.Drill:
			c := placedOpPoint(p, o.X, o.Y)
			r := o.Diameter / 2 * scale
			if r < 0.4 {
				r = 0.4
			}
			pdf.Circle(px+(c.X-p.X)*scale, py+(c.Y-p.Y)*scale, r, "D")
		case model.Dado:
			start := dadoStart(o, p.Part)
			end := dadoEnd(o, p.Part)
			a := placedOpPoint(p, start.X, start.Y)
			b := placedOpPoint(p, end.X, end.Y)
			pdf.Line(px+(a.X-p.X)*scale, py+(a.Y-p.Y)*scale, px+(b.X-p.X)*scale, py+(b.Y-p.Y)*scale)
		}
	}
}

func dadoStart(d model.Dado, part model.Part) model.Point2D {
	if d.Orientation == model.OrientVertical {
		return model.Point2D{X: d.Position, Y: 0}
	}
	return model.Point2D{X: 0, Y: d.Position}
}

func dadoEnd(d model.Dado, part model.Part) model.Point2D {
	if d.Orientation == model.OrientVertical {
		return model.Point2D{X: d.Position, Y: part.Height}
	}
	return model.Point2D{X: part.Width, Y: d.Position}
}

// placedOpPoint maps a part-local operation position onto the sheet,
// applying the placement's rotation.
func placedOpPoint(p model.Placement, x, y float64) model.Point2D {
	if p.Rotated {
		return model.Point2D{X: p.X + p.Part.Height - y, Y: p.Y + x}
	}
	return model.Point2D{X: p.X + x, Y: p.Y + y}
}

// drawFixtureZones renders the machine's keep-clear areas.
func drawFixtureZones(pdf *fpdf.Fpdf, fixtures []machine.FixtureZone, scale, offsetX, offsetY float64) {
	for _, fz := range fixtures {
		zx := offsetX + fz.X*scale
		zy := offsetY + fz.Y*scale
		zw := fz.Width * scale
		zh := fz.Height * scale

		pdf.SetFillColor(255, 200, 200)
		pdf.SetDrawColor(200, 0, 0)
		pdf.SetLineWidth(0.3)
		pdf.Rect(zx, zy, zw, zh, "FD")

		drawHatchPattern(pdf, zx, zy, zw, zh)

		if zw > 20 && zh > 8 {
			pdf.SetFont("Helvetica", "B", 6)
			pdf.SetTextColor(180, 0, 0)
			label := "KEEP CLEAR"
			if fz.Label != "" {
				label = fz.Label
			}
			labelW := pdf.GetStringWidth(label)
			pdf.SetXY(zx+(zw-labelW)/2, zy+zh/2-2)
			pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
		}
	}
	pdf.SetTextColor(0, 0, 0)
}

// drawHatchPattern draws diagonal lines inside a rectangle to mark
// exclusion zones.
func drawHatchPattern(pdf *fpdf.Fpdf, x, y, w, h float64) {
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.15)

	spacing := 4.0
	maxDist := w + h

	for d := spacing; d < maxDist; d += spacing {
		x1 := x + math.Max(0, d-h)
		y1 := y + math.Min(h, d)
		x2 := x + math.Min(w, d)
		y2 := y + math.Max(0, d-w)

		pdf.Line(x1, y1, x2, y2)
	}
}

// drawDimensionAnnotations adds sheet dimensions outside the drawing.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, sheet model.SheetLayout, scale, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.0f mm", sheet.Width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%.0f mm", sheet.Length)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawPartsLegend renders a compact placed-part legend below the sheet.
func drawPartsLegend(pdf *fpdf.Fpdf, sheet model.SheetLayout, startY float64) {
	if len(sheet.Placements) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Parts placed:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for i, p := range sheet.Placements {
		col := partColors[i%len(partColors)]
		label := fmt.Sprintf("%s (%.0fx%.0f)", p.Part.Label, p.Part.Width, p.Part.Height)
		if p.Rotated {
			label += " R"
		}
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")

		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage draws the closing page with overall statistics, a
// per-material breakdown and the nesting settings used.
func renderSummaryPage(pdf *fpdf.Fpdf, groups []model.MaterialGroupResult, cfg model.NestingConfig) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Nesting Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	var sheets, placed, unplacedCount int
	var usedArea, totalArea float64
	var unplaced []model.Part
	for _, g := range groups {
		sheets += g.Result.SheetCount()
		unplacedCount += len(g.Result.Unplaced)
		unplaced = append(unplaced, g.Result.Unplaced...)
		for _, s := range g.Result.Sheets {
			placed += len(s.Placements)
			usedArea += s.UsedArea()
			totalArea += s.TotalArea()
		}
	}
	utilization := 0.0
	if totalArea > 0 {
		utilization = usedArea / totalArea * 100
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Total Sheets Used", fmt.Sprintf("%d", sheets)},
		{"Overall Utilization", fmt.Sprintf("%.1f%%", utilization)},
		{"Total Parts Placed", fmt.Sprintf("%d", placed)},
		{"Unplaced Parts", fmt.Sprintf("%d", unplacedCount)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Material Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{70, 30, 25, 25, 35}
	headers := []string{"Material", "Thickness", "Sheets", "Parts", "Utilization"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, g := range groups {
		groupPlaced := 0
		for _, s := range g.Result.Sheets {
			groupPlaced += len(s.Placements)
		}
		xPos = marginLeft
		rowData := []string{
			g.Material,
			fmt.Sprintf("%.1f mm", g.Thickness),
			fmt.Sprintf("%d", g.Result.SheetCount()),
			fmt.Sprintf("%d", groupPlaced),
			fmt.Sprintf("%.1f%%", g.Result.OverallUtilization()),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	if len(unplaced) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: Unplaced Parts", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)

		for _, part := range unplaced {
			pdf.SetXY(marginLeft+5, y)
			text := fmt.Sprintf("- %s: %.0f x %.0f mm (%s)", part.Label, part.Width, part.Height, part.Material)
			pdf.CellFormat(200, 5, text, "", 0, "L", false, 0, "")
			y += 5
		}
	}

	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Nesting Settings", "", 0, "L", false, 0, "")
	y += 9

	rotation := "no"
	if cfg.AllowRotation {
		rotation = "yes"
	}
	settingsItems := []struct {
		label string
		value string
	}{
		{"Sheet Size", fmt.Sprintf("%.0f x %.0f mm", cfg.SheetWidth, cfg.SheetLength)},
		{"Kerf", fmt.Sprintf("%.1f mm", cfg.Kerf)},
		{"Edge Margin", fmt.Sprintf("%.1f mm", cfg.EdgeMargin)},
		{"Strategy", cfg.Strategy},
		{"Rotation Allowed", rotation},
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "PartCAM nesting and machining report", "", 0, "C", false, 0, "")
}

// labelFontSize picks a font size that fits the part rectangle.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}

// countSheets returns the number of sheets across all material groups.
func countSheets(groups []model.MaterialGroupResult) int {
	total := 0
	for _, g := range groups {
		total += g.Result.SheetCount()
	}
	return total
}
