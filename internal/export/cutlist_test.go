package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/partcam/internal/model"
)

func TestWriteCutList_RowCount(t *testing.T) {
	groups := buildTestGroups()
	groups[1].Result.Unplaced = []model.Part{
		{ID: "u1", Label: "Oversize", Width: 3000, Height: 900, Material: "mdf", Quantity: 1},
	}

	var buf bytes.Buffer
	if err := WriteCutList(&buf, groups); err != nil {
		t.Fatalf("WriteCutList returned error: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	// Header + 4 placements + 1 unplaced
	if len(records) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(records))
	}
}

func TestWriteCutList_PlacedRows(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCutList(&buf, buildTestGroups()); err != nil {
		t.Fatalf("WriteCutList returned error: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	wantHeader := "label,material,width,height,thickness,qty,grain,sheet,x,y,rotated"
	if got := strings.Join(records[0], ","); got != wantHeader {
		t.Errorf("header = %q, want %q", got, wantHeader)
	}

	want := []string{"Side Panel", "birch-ply", "600", "400", "18", "1", "none", "1", "10", "10", "no"}
	for i, cell := range want {
		if records[1][i] != cell {
			t.Errorf("row 1 col %d = %q, want %q", i, records[1][i], cell)
		}
	}

	// Third placement is rotated
	if got := records[3][10]; got != "yes" {
		t.Errorf("rotated column = %q, want yes", got)
	}
}

func TestWriteCutList_UnplacedRow(t *testing.T) {
	groups := buildTestGroups()
	groups[0].Result.Unplaced = []model.Part{
		{ID: "u1", Label: "Too Big", Width: 3000, Height: 2000, Thickness: 18, Material: "birch-ply", Quantity: 1},
	}

	var buf bytes.Buffer
	if err := WriteCutList(&buf, groups); err != nil {
		t.Fatalf("WriteCutList returned error: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	// Unplaced row follows the birch-ply placements.
	row := records[4]
	if row[0] != "Too Big" {
		t.Fatalf("expected unplaced row, got %v", row)
	}
	for _, col := range []int{7, 8, 9, 10} {
		if row[col] != "" {
			t.Errorf("unplaced row col %d = %q, want empty", col, row[col])
		}
	}
}

func TestExportCutList_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cutlist.csv")

	if err := ExportCutList(path, buildTestGroups()); err != nil {
		t.Fatalf("ExportCutList returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("CSV file was not created: %v", err)
	}
	if !strings.HasPrefix(string(data), "label,material,") {
		t.Errorf("unexpected file start: %q", string(data[:40]))
	}
}
