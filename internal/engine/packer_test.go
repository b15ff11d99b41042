package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/partcam/internal/model"
)

func TestPackerInsert_BestAreaFit(t *testing.T) {
	// Two free regions; the piece should land in the tighter one.
	gp := newPacker([]rect{
		{x: 0, y: 0, w: 100, h: 100},
		{x: 150, y: 0, w: 50, h: 60},
	}, 0)

	ok, x, y := gp.insert(40, 50)

	require.True(t, ok)
	assert.Equal(t, 150.0, x)
	assert.Equal(t, 0.0, y)
}

func TestPackerInsert_KerfExpandsFootprint(t *testing.T) {
	gp := newPacker([]rect{{x: 0, y: 0, w: 100, h: 100}}, 10)

	ok, _, _ := gp.insert(95, 95)
	assert.False(t, ok, "95 plus kerf exceeds the free rect")

	ok, x, y := gp.insert(90, 90)
	require.True(t, ok)
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 0.0, y)

	// The kerf-expanded footprint consumed the whole rect.
	ok, _, _ = gp.insert(5, 5)
	assert.False(t, ok)
}

func TestPackerInsert_ExactFitWithinTolerance(t *testing.T) {
	gp := newPacker([]rect{{x: 0, y: 0, w: 100, h: 100}}, 0)

	ok, _, _ := gp.insert(100, 100)
	assert.True(t, ok, "an exact fit must not be rejected by float drift")
}

func TestPackerSplit_KeepsMaximalStrips(t *testing.T) {
	// After a corner placement the right strip must span the full height,
	// so a full-height piece still fits beside it.
	gp := newPacker([]rect{{x: 0, y: 0, w: 100, h: 100}}, 0)

	ok, _, _ := gp.insert(40, 40)
	require.True(t, ok)

	ok, x, y := gp.insert(60, 100)
	require.True(t, ok)
	assert.Equal(t, 40.0, x)
	assert.Equal(t, 0.0, y)
}

func TestPackerBestFit_DoesNotMutate(t *testing.T) {
	gp := newPacker([]rect{{x: 0, y: 0, w: 100, h: 100}}, 0)

	waste := gp.bestFit(40, 50)
	assert.InDelta(t, 100*100-40*50, waste, 1e-9)
	assert.Equal(t, -1.0, gp.bestFit(200, 10))

	// State unchanged: the full rect is still available.
	ok, _, _ := gp.insert(100, 100)
	assert.True(t, ok)
}

func TestFreeRectsFor_MarginInset(t *testing.T) {
	free := freeRectsFor(1000, 2000, 10, nil)

	require.Len(t, free, 1)
	assert.Equal(t, rect{x: 10, y: 10, w: 980, h: 1980}, free[0])
}

func TestFreeRectsFor_DegenerateSheet(t *testing.T) {
	assert.Empty(t, freeRectsFor(100, 100, 60, nil), "margin larger than the sheet leaves no room")
}

func TestFreeRectsFor_ExclusionCarvesHole(t *testing.T) {
	free := freeRectsFor(1000, 1000, 0, []model.Rect{{X: 400, Y: 400, W: 200, H: 200}})

	require.Len(t, free, 4)
	var area float64
	for _, r := range free {
		area += r.w * r.h
		placed := rect{x: 400, y: 400, w: 200, h: 200}
		assert.False(t, rectsOverlap(r, placed), "free rect %+v overlaps the exclusion", r)
	}
	// Full-height side strips plus clamped top and bottom strips tile the
	// remainder exactly.
	assert.InDelta(t, 1000.0*1000.0-200.0*200.0, area, 1e-9)
}

func TestFreeRectsFor_ExclusionOutsideBase(t *testing.T) {
	free := freeRectsFor(1000, 1000, 0, []model.Rect{{X: 2000, Y: 0, W: 100, H: 100}})

	require.Len(t, free, 1)
	assert.Equal(t, rect{x: 0, y: 0, w: 1000, h: 1000}, free[0])
}

func TestFreeRectsFor_ExclusionSwallowsSheet(t *testing.T) {
	free := freeRectsFor(500, 500, 0, []model.Rect{{X: 0, Y: 0, W: 500, H: 500}})

	assert.Empty(t, free, "a keep-out zone covering the sheet leaves nothing to pack")
}

func TestSubtractRect_CrossDecomposition(t *testing.T) {
	base := rect{x: 0, y: 0, w: 100, h: 100}
	sub := rect{x: 40, y: 40, w: 20, h: 20}

	parts := subtractRect(base, sub)

	require.Len(t, parts, 4)
	for _, p := range parts {
		assert.False(t, rectsOverlap(p, sub))
		assert.True(t, containsRect(base, p))
	}
}

func TestPruneContained(t *testing.T) {
	rects := []rect{
		{x: 0, y: 0, w: 100, h: 100},
		{x: 10, y: 10, w: 20, h: 20}, // inside the first
		{x: 90, y: 0, w: 50, h: 50},  // pokes out
	}

	kept := pruneContained(rects)

	require.Len(t, kept, 2)
	assert.Equal(t, rects[0], kept[0])
	assert.Equal(t, rects[2], kept[1])
}
