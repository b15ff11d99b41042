package cam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/partcam/internal/model"
)

func pathAt(tool int, label, opType string, x, y float64) model.AnnotatedToolpath {
	return model.AnnotatedToolpath{
		Toolpath: model.Toolpath{
			ToolNumber: tool,
			Segments: []model.ToolpathSegment{
				{Motion: model.Rapid{}, End: model.Point2D{X: x, Y: y}, Z: 25},
				{Motion: model.Rapid{}, End: model.Point2D{X: x, Y: y}, Z: 5},
			},
		},
		PartLabel:     label,
		PlacementID:   label + "-0",
		OperationType: opType,
	}
}

func orderedLabels(paths []model.AnnotatedToolpath) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p.PartLabel
	}
	return out
}

func TestOrder_GroupsByToolAscending(t *testing.T) {
	paths := []model.AnnotatedToolpath{
		pathAt(3, "a", "drill", 0, 0),
		pathAt(1, "b", OpProfile, 0, 0),
		pathAt(3, "c", "drill", 10, 10),
		pathAt(1, "d", OpProfile, 10, 10),
	}
	out := Order(paths)
	require.Len(t, out, 4)

	tools := make([]int, len(out))
	for i, p := range out {
		tools[i] = p.ToolNumber
	}
	assert.Equal(t, []int{1, 1, 3, 3}, tools)
}

func TestOrder_NearestNeighborFromOrigin(t *testing.T) {
	paths := []model.AnnotatedToolpath{
		pathAt(1, "far", OpProfile, 100, 100),
		pathAt(1, "near", OpProfile, 10, 10),
		pathAt(1, "mid", OpProfile, 50, 50),
	}
	out := Order(paths)
	assert.Equal(t, []string{"near", "mid", "far"}, orderedLabels(out))
}

func TestOrder_ChainsFromPreviousEndpoint(t *testing.T) {
	// "hook" starts near the origin but ends far away; the next pick
	// must be measured from where the cutter actually is.
	hook := pathAt(1, "hook", OpProfile, 5, 5)
	hook.Segments = append(hook.Segments, model.ToolpathSegment{
		Motion: model.Rapid{}, End: model.Point2D{X: 200, Y: 200}, Z: 5,
	})
	paths := []model.AnnotatedToolpath{
		pathAt(1, "mid", OpProfile, 60, 60),
		hook,
		pathAt(1, "far", OpProfile, 190, 190),
	}
	out := Order(paths)
	assert.Equal(t, []string{"hook", "far", "mid"}, orderedLabels(out))
}

func TestOrder_TieBreaksOnLabelAndOperation(t *testing.T) {
	paths := []model.AnnotatedToolpath{
		pathAt(1, "zebra", OpProfile, 30, 30),
		pathAt(1, "apex", OpProfile, 30, 30),
	}
	out := Order(paths)
	assert.Equal(t, []string{"apex", "zebra"}, orderedLabels(out))

	sameLabel := []model.AnnotatedToolpath{
		pathAt(1, "apex", OpProfile, 30, 30),
		pathAt(1, "apex", "drill", 30, 30),
	}
	out = Order(sameLabel)
	assert.Equal(t, "drill", out[0].OperationType)
	assert.Equal(t, OpProfile, out[1].OperationType)
}

func TestOrder_DeterministicForAnyInputOrder(t *testing.T) {
	a := []model.AnnotatedToolpath{
		pathAt(1, "a", OpProfile, 40, 0),
		pathAt(3, "b", "drill", 0, 40),
		pathAt(1, "c", OpProfile, 40, 40),
		pathAt(1, "d", "dado", 40, 0),
	}
	b := []model.AnnotatedToolpath{a[2], a[0], a[3], a[1]}

	assert.Equal(t, Order(a), Order(b))
}

func TestOrder_EmptyInput(t *testing.T) {
	assert.Empty(t, Order(nil))
}
