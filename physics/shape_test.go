package physics

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physync/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildShapeDegenerateFallsBackToBox(t *testing.T) {
	bounds := common.RectFromCenter(0, 0, 30, 20)
	cases := []struct {
		name   string
		points []cp.Vector
	}{
		{"no_points", nil},
		{"one_point", []cp.Vector{{X: 3, Y: 4}}},
		{"two_points", []cp.Vector{{X: 0, Y: 0}, {X: 10, Y: 10}}},
		{"collinear", []cp.Vector{{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 10, Y: 10}}},
		{"duplicates", []cp.Vector{{X: 2, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: 2}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var s Shape
			require.NotPanics(t, func() { s = BuildShape(c.points, bounds) })
			assert.True(t, s.Box)
			assert.Len(t, s.Verts, 4)
			assert.InDelta(t, 600.0, s.Area, 1e-9)
			assert.Equal(t, cp.Vector{}, s.Centroid)
		})
	}
}

func TestBuildShapeZeroBoundsStillHasArea(t *testing.T) {
	s := BuildShape(nil, common.Rect{})
	assert.True(t, s.Box)
	assert.Greater(t, s.Area, 0.0)
	assert.Greater(t, cp.AreaForPoly(len(s.Verts), s.Verts, 0), 0.0)
}

func TestBuildShapeSquareHull(t *testing.T) {
	s := BuildShape(square(40), common.RectFromCenter(0, 0, 40, 40))
	require.False(t, s.Box)
	assert.Len(t, s.Verts, 4, "interior point must be dropped")
	assert.InDelta(t, 1600.0, s.Area, 1e-9)
	assert.InDelta(t, 20.0, s.Centroid.X, 1e-9)
	assert.InDelta(t, 20.0, s.Centroid.Y, 1e-9)

	var sum cp.Vector
	for _, v := range s.Verts {
		sum = sum.Add(v)
		assert.InDelta(t, 20.0, v.Length()/1.4142135623730951, 1e-9)
	}
	assert.InDelta(t, 0, sum.X, 1e-9)
	assert.InDelta(t, 0, sum.Y, 1e-9)
}

func TestBuildShapeCentroidIsInCostumeSpace(t *testing.T) {
	// Apex at the top of the art (small Y), base along the bottom.
	s := BuildShape(triangle(30), common.RectFromCenter(0, 0, 30, 30))
	require.False(t, s.Box)
	assert.Len(t, s.Verts, 3)
	assert.InDelta(t, 15.0, s.Centroid.X, 1e-9)
	assert.InDelta(t, 20.0, s.Centroid.Y, 1e-9)
	assert.InDelta(t, 450.0, s.Area, 1e-9)
}

func TestBuildShapeIsIdempotent(t *testing.T) {
	pts := []cp.Vector{{X: 1, Y: 2}, {X: 9, Y: 1}, {X: 12, Y: 8}, {X: 4, Y: 11}, {X: 6, Y: 6}}
	a := BuildShape(pts, common.Rect{})
	b := BuildShape(pts, common.Rect{})
	assert.Equal(t, a, b)
	assert.Equal(t, cp.Vector{X: 1, Y: 2}, pts[0], "input must not be modified")
}
