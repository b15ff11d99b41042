package machine

import (
	"testing"

	"github.com/piwi3910/partcam/internal/model"
)

func TestFixtureZoneOverlaps(t *testing.T) {
	fz := FixtureZone{Label: "Clamp", X: 100, Y: 100, Width: 50, Height: 50}

	tests := []struct {
		name     string
		r        model.Rect
		expected bool
	}{
		{"fully inside", model.Rect{X: 110, Y: 110, W: 20, H: 20}, true},
		{"overlapping top-left", model.Rect{X: 80, Y: 80, W: 30, H: 30}, true},
		{"overlapping bottom-right", model.Rect{X: 140, Y: 140, W: 20, H: 20}, true},
		{"adjacent left (no overlap)", model.Rect{X: 50, Y: 100, W: 50, H: 50}, false},
		{"adjacent right (no overlap)", model.Rect{X: 150, Y: 100, W: 50, H: 50}, false},
		{"adjacent top (no overlap)", model.Rect{X: 100, Y: 50, W: 50, H: 50}, false},
		{"adjacent bottom (no overlap)", model.Rect{X: 100, Y: 150, W: 50, H: 50}, false},
		{"completely outside", model.Rect{X: 200, Y: 200, W: 50, H: 50}, false},
		{"covering entire zone", model.Rect{X: 50, Y: 50, W: 200, H: 200}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fz.Overlaps(tt.r); got != tt.expected {
				t.Errorf("Overlaps(%+v) = %v, want %v", tt.r, got, tt.expected)
			}
		})
	}
}

func TestFixtureRects(t *testing.T) {
	p := MachineProfile{
		Fixtures: []FixtureZone{
			{Label: "A", X: 0, Y: 0, Width: 100, Height: 50},
			{Label: "B", X: 500, Y: 500, Width: 80, Height: 80},
		},
	}
	rects := p.FixtureRects()
	if len(rects) != 2 {
		t.Fatalf("expected 2 rects, got %d", len(rects))
	}
	if rects[1] != (model.Rect{X: 500, Y: 500, W: 80, H: 80}) {
		t.Errorf("unexpected rect: %+v", rects[1])
	}

	if (MachineProfile{}).FixtureRects() != nil {
		t.Error("expected nil for no fixtures")
	}
}
