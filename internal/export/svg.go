package export

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/piwi3910/partcam/internal/machine"
	"github.com/piwi3910/partcam/internal/model"
)

// svgFooterHeight is extra canvas below the sheet for the caption row.
const svgFooterHeight = 30.0

// SheetSVG renders one nested sheet as a self-contained SVG document.
// Coordinates are millimetres with the origin at the sheet's top-left
// corner, the same convention the nester uses, so no axis flip is
// needed. Exactly one rect with class "part" is emitted per placement.
func SheetSVG(sheet model.SheetLayout, fixtures []machine.FixtureZone, cfg model.NestingConfig) string {
	var b strings.Builder

	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" font-family="sans-serif">`+"\n",
		num(sheet.Width), num(sheet.Length+svgFooterHeight))

	b.WriteString("  <defs>\n")
	b.WriteString(`    <pattern id="keepclear" width="8" height="8" patternUnits="userSpaceOnUse" patternTransform="rotate(45)">` + "\n")
	b.WriteString(`      <line x1="0" y1="0" x2="0" y2="8" stroke="#c62828" stroke-width="1.5"/>` + "\n")
	b.WriteString("    </pattern>\n")
	b.WriteString("  </defs>\n")

	fmt.Fprintf(&b, `  <rect class="sheet" x="0" y="0" width="%s" height="%s" fill="#d2b48c" stroke="#646464" stroke-width="1"/>`+"\n",
		num(sheet.Width), num(sheet.Length))

	if cfg.EdgeMargin > 0 {
		m := cfg.EdgeMargin
		fmt.Fprintf(&b, `  <rect class="margin" x="%s" y="%s" width="%s" height="%s" fill="none" stroke="#969696" stroke-width="0.5" stroke-dasharray="4 4"/>`+"\n",
			num(m), num(m), num(sheet.Width-2*m), num(sheet.Length-2*m))
	}

	for _, fz := range fixtures {
		fmt.Fprintf(&b, `  <rect class="fixture" x="%s" y="%s" width="%s" height="%s" fill="url(#keepclear)" stroke="#c62828" stroke-width="0.8"/>`+"\n",
			num(fz.X), num(fz.Y), num(fz.Width), num(fz.Height))
		label := fz.Label
		if label == "" {
			label = "KEEP CLEAR"
		}
		fmt.Fprintf(&b, `  <text x="%s" y="%s" font-size="6" fill="#c62828" text-anchor="middle">%s</text>`+"\n",
			num(fz.X+fz.Width/2), num(fz.Y+fz.Height/2), escapeXML(label))
	}

	for i, p := range sheet.Placements {
		col := partColors[i%len(partColors)]
		fmt.Fprintf(&b, `  <rect class="part" x="%s" y="%s" width="%s" height="%s" fill="rgb(%d,%d,%d)" fill-opacity="0.85" stroke="#1e1e1e" stroke-width="0.6"/>`+"\n",
			num(p.X), num(p.Y), num(p.PlacedWidth()), num(p.PlacedHeight()), col.R, col.G, col.B)

		label := p.Part.Label
		if p.Rotated {
			label += " (R)"
		}
		fmt.Fprintf(&b, `  <text x="%s" y="%s" font-size="8" text-anchor="middle">%s</text>`+"\n",
			num(p.X+p.PlacedWidth()/2), num(p.Y+p.PlacedHeight()/2), escapeXML(label))

		for _, op := range p.Part.Operations {
			if d, ok := op.(model.Drill); ok {
				c := placedOpPoint(p, d.X, d.Y)
				fmt.Fprintf(&b, `  <circle class="drill" cx="%s" cy="%s" r="%s" fill="none" stroke="#1e1e1e" stroke-width="0.4"/>`+"\n",
					num(c.X), num(c.Y), num(d.Diameter/2))
			}
		}
	}

	fmt.Fprintf(&b, `  <text class="caption" x="2" y="%s" font-size="10">Sheet %d: %s %smm, %d parts, %.1f%% used</text>`+"\n",
		num(sheet.Length+18), sheet.Index+1, escapeXML(sheet.Material), num(sheet.Thickness), len(sheet.Placements), sheet.Utilization())

	b.WriteString("</svg>\n")
	return b.String()
}

// ExportSVG writes one SVG file per sheet layout.
func ExportSVG(path string, sheet model.SheetLayout, fixtures []machine.FixtureZone, cfg model.NestingConfig) error {
	doc := SheetSVG(sheet, fixtures, cfg)
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// num formats a millimetre value without trailing zeros.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
