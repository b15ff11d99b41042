package engine

import "github.com/piwi3910/partcam/internal/model"

// placementTol absorbs floating point drift when comparing candidate
// dimensions against free rectangles.
const placementTol = 0.001

// rect is an axis-aligned region on a sheet.
type rect struct {
	x, y, w, h float64
}

// guillotinePacker places rectangles on one sheet by maintaining a set of
// maximal free rectangles. Each insertion claims the tightest fitting free
// rectangle and re-splits every overlapping one around the claimed area.
type guillotinePacker struct {
	freeRects []rect
	kerf      float64
}

func newPacker(freeRects []rect, kerf float64) *guillotinePacker {
	return &guillotinePacker{freeRects: freeRects, kerf: kerf}
}

// insert tries to place a w x h piece. The footprint is expanded by the
// kerf on the trailing edges so the cut between neighbours is accounted
// for. Returns success and the placement position.
func (gp *guillotinePacker) insert(w, h float64) (bool, float64, float64) {
	bestIdx := -1
	bestAreaFit := float64(-1)
	wk := w + gp.kerf
	hk := h + gp.kerf

	for i, r := range gp.freeRects {
		if wk <= r.w+placementTol && hk <= r.h+placementTol {
			areaFit := r.w*r.h - w*h
			if bestIdx < 0 || areaFit < bestAreaFit {
				bestIdx = i
				bestAreaFit = areaFit
			}
		}
	}

	if bestIdx < 0 {
		return false, 0, 0
	}

	chosen := gp.freeRects[bestIdx]
	px, py := chosen.x, chosen.y
	gp.splitAroundPlacement(rect{x: px, y: py, w: wk, h: hk})
	return true, px, py
}

// bestFit reports the waste area left by inserting a w x h piece, without
// modifying packer state. Returns -1 when the piece fits nowhere.
func (gp *guillotinePacker) bestFit(w, h float64) float64 {
	wk := w + gp.kerf
	hk := h + gp.kerf
	best := float64(-1)

	for _, r := range gp.freeRects {
		if wk <= r.w+placementTol && hk <= r.h+placementTol {
			areaFit := r.w*r.h - w*h
			if best < 0 || areaFit < best {
				best = areaFit
			}
		}
	}
	return best
}

// splitAroundPlacement removes every free rect overlapping the placed area
// and replaces it with up to four maximal sub-rects. Keeping the strips at
// full width and height lets later parts span what a pure guillotine cut
// would have fenced off.
func (gp *guillotinePacker) splitAroundPlacement(placed rect) {
	var next []rect

	for _, r := range gp.freeRects {
		if !rectsOverlap(r, placed) {
			next = append(next, r)
			continue
		}

		// Left strip, full height
		if placed.x > r.x+placementTol {
			next = append(next, rect{x: r.x, y: r.y, w: placed.x - r.x, h: r.h})
		}
		// Right strip, full height
		if placed.x+placed.w < r.x+r.w-placementTol {
			next = append(next, rect{
				x: placed.x + placed.w, y: r.y,
				w: (r.x + r.w) - (placed.x + placed.w), h: r.h,
			})
		}
		// Top strip, full width
		if placed.y > r.y+placementTol {
			next = append(next, rect{x: r.x, y: r.y, w: r.w, h: placed.y - r.y})
		}
		// Bottom strip, full width
		if placed.y+placed.h < r.y+r.h-placementTol {
			next = append(next, rect{
				x: r.x, y: placed.y + placed.h,
				w: r.w, h: (r.y + r.h) - (placed.y + placed.h),
			})
		}
	}

	gp.freeRects = pruneContained(next)
}

// rectsOverlap reports whether two rects overlap by more than the tolerance.
// Rects that merely touch do not overlap.
func rectsOverlap(a, b rect) bool {
	return a.x < b.x+b.w-placementTol && a.x+a.w > b.x+placementTol &&
		a.y < b.y+b.h-placementTol && a.y+a.h > b.y+placementTol
}

// pruneContained drops any rect fully contained within another.
func pruneContained(rects []rect) []rect {
	if len(rects) <= 1 {
		return rects
	}
	kept := make([]rect, 0, len(rects))
	for i, a := range rects {
		contained := false
		for j, b := range rects {
			if i != j && containsRect(b, a) {
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, a)
		}
	}
	return kept
}

func containsRect(outer, inner rect) bool {
	return outer.x <= inner.x+placementTol && outer.y <= inner.y+placementTol &&
		outer.x+outer.w >= inner.x+inner.w-placementTol &&
		outer.y+outer.h >= inner.y+inner.h-placementTol
}

// freeRectsFor builds the initial free rectangles for a sheet: the full
// face inset by the edge margin, minus any keep-out zones.
func freeRectsFor(width, length, margin float64, exclusions []model.Rect) []rect {
	base := rect{x: margin, y: margin, w: width - 2*margin, h: length - 2*margin}
	if base.w <= 0 || base.h <= 0 {
		return nil
	}
	if len(exclusions) == 0 {
		return []rect{base}
	}

	free := []rect{base}
	for _, ex := range exclusions {
		sub := rect{x: ex.X, y: ex.Y, w: ex.W, h: ex.H}
		var next []rect
		for _, f := range free {
			next = append(next, subtractRect(f, sub)...)
		}
		free = next
	}

	var kept []rect
	for _, r := range free {
		if r.w > placementTol && r.h > placementTol {
			kept = append(kept, r)
		}
	}
	return kept
}

// subtractRect removes sub from base, returning up to four remaining
// rectangles. The left and right remainders keep the full height of base;
// top and bottom remainders span only the width of the intersection.
func subtractRect(base, sub rect) []rect {
	if !intersects(base, sub) {
		return []rect{base}
	}

	inter := rect{
		x: max(base.x, sub.x),
		y: max(base.y, sub.y),
	}
	inter.w = min(base.x+base.w, sub.x+sub.w) - inter.x
	inter.h = min(base.y+base.h, sub.y+sub.h) - inter.y
	if inter.w <= 0 || inter.h <= 0 {
		return []rect{base}
	}

	var result []rect

	if inter.x > base.x {
		result = append(result, rect{
			x: base.x, y: base.y,
			w: inter.x - base.x, h: base.h,
		})
	}

	interRight := inter.x + inter.w
	if interRight < base.x+base.w {
		result = append(result, rect{
			x: interRight, y: base.y,
			w: (base.x + base.w) - interRight, h: base.h,
		})
	}

	if inter.y > base.y {
		result = append(result, rect{
			x: inter.x, y: base.y,
			w: inter.w, h: inter.y - base.y,
		})
	}

	interBottom := inter.y + inter.h
	if interBottom < base.y+base.h {
		result = append(result, rect{
			x: inter.x, y: interBottom,
			w: inter.w, h: (base.y + base.h) - interBottom,
		})
	}

	return result
}

func intersects(a, b rect) bool {
	return a.x < b.x+b.w && a.x+a.w > b.x &&
		a.y < b.y+b.h && a.y+a.h > b.y
}
