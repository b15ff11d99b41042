package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/partcam/internal/export"
	"github.com/piwi3910/partcam/internal/gcode"
	"github.com/piwi3910/partcam/internal/model"
)

// ExportOptions selects the optional artifacts beyond the always-on
// set of programs, sheet SVGs, cut list, BOM and workbook. SheetPrice
// feeds the purchase estimate; zero falls back to the stock prices in
// the project.
type ExportOptions struct {
	PDF        bool
	Labels     bool
	DXF        bool
	SheetPrice float64
}

// Manifest lists what Export wrote, relative to the output directory.
type Manifest struct {
	Dir   string   `json:"dir"`
	Files []string `json:"files"`
}

// Export renders and persists the full artifact set for a nested
// project: one program and one layout SVG per sheet, the cut list as
// CSV and XLSX, the bill of materials as JSON, and optionally layout
// PDFs, part labels and per-sheet DXF outlines. Files land directly in
// dir, which is created if missing.
func (p *Pipeline) Export(ctx context.Context, proj model.Project, groups []model.MaterialGroupResult, dir string, opts ExportOptions) (Manifest, error) {
	manifest := Manifest{Dir: dir}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return manifest, fmt.Errorf("create output directory: %w", err)
	}

	programs, err := p.Gcode(ctx, proj, groups)
	if err != nil {
		return manifest, err
	}
	for _, sg := range programs {
		if err := os.WriteFile(filepath.Join(dir, sg.Filename), []byte(sg.Gcode), 0o644); err != nil {
			return manifest, fmt.Errorf("write %s: %w", sg.Filename, err)
		}
		manifest.Files = append(manifest.Files, sg.Filename)
	}

	prof := p.profile(proj)
	names := groupNames(groups)
	for gi, grp := range groups {
		slug := gcode.MaterialSlug(names[gi])
		for i, sheet := range grp.Result.Sheets {
			name := fmt.Sprintf("%s_sheet%d.svg", slug, i+1)
			if err := export.ExportSVG(filepath.Join(dir, name), sheet, prof.Fixtures, proj.Nesting); err != nil {
				return manifest, fmt.Errorf("write %s: %w", name, err)
			}
			manifest.Files = append(manifest.Files, name)
		}
	}

	if err := export.ExportCutList(filepath.Join(dir, "cutlist.csv"), groups); err != nil {
		return manifest, fmt.Errorf("write cutlist.csv: %w", err)
	}
	manifest.Files = append(manifest.Files, "cutlist.csv")

	bom := export.BuildBOM(proj, groups, opts.SheetPrice)
	if err := export.ExportBOM(filepath.Join(dir, "bom.json"), bom); err != nil {
		return manifest, fmt.Errorf("write bom.json: %w", err)
	}
	manifest.Files = append(manifest.Files, "bom.json")

	if err := export.ExportXLSX(filepath.Join(dir, "cutlist.xlsx"), groups, bom); err != nil {
		return manifest, fmt.Errorf("write cutlist.xlsx: %w", err)
	}
	manifest.Files = append(manifest.Files, "cutlist.xlsx")

	if opts.PDF {
		if err := export.ExportPDF(filepath.Join(dir, "layouts.pdf"), groups, prof.Fixtures, proj.Nesting); err != nil {
			return manifest, fmt.Errorf("write layouts.pdf: %w", err)
		}
		manifest.Files = append(manifest.Files, "layouts.pdf")
	}
	if opts.Labels {
		if err := export.ExportLabels(filepath.Join(dir, "labels.pdf"), groups); err != nil {
			return manifest, fmt.Errorf("write labels.pdf: %w", err)
		}
		manifest.Files = append(manifest.Files, "labels.pdf")
	}
	if opts.DXF {
		for gi, grp := range groups {
			slug := gcode.MaterialSlug(names[gi])
			for i, sheet := range grp.Result.Sheets {
				name := fmt.Sprintf("%s_sheet%d.dxf", slug, i+1)
				if err := export.ExportDXF(filepath.Join(dir, name), sheet); err != nil {
					return manifest, fmt.Errorf("write %s: %w", name, err)
				}
				manifest.Files = append(manifest.Files, name)
			}
		}
	}

	p.Log.WithField("dir", dir).WithField("files", len(manifest.Files)).Info("export complete")
	return manifest, nil
}
