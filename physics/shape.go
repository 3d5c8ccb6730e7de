package physics

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physync/common"
)

// minShapeArea is the smallest hull area accepted before falling back to a
// box; anything thinner is treated as a line.
const minShapeArea = 1e-6

// Shape is a convex collision polygon in body-local simulation coordinates.
type Shape struct {
	// Verts wind counter-clockwise around the origin, which is the center of
	// mass.
	Verts []cp.Vector
	// Centroid is the center of mass in costume pixel space (Y down). Zero
	// for box shapes.
	Centroid cp.Vector
	Area     float64
	// Box is set when the silhouette was unusable and the shape was sized
	// from the target's bounds instead.
	Box bool
}

// BuildShape reduces a costume silhouette to a convex hull. When the hull
// has fewer than three corners, or no area, a box the size of bounds is
// returned instead; the result always has positive area.
func BuildShape(points []cp.Vector, bounds common.Rect) Shape {
	if len(points) >= 3 {
		if s, ok := hullShape(points); ok {
			return s
		}
	}
	return boxShape(bounds.Width(), bounds.Height())
}

func hullShape(points []cp.Vector) (Shape, bool) {
	verts := common.ToSimVertices(points)
	count := cp.ConvexHull(len(verts), verts, nil, 0)
	if count < 3 {
		return Shape{}, false
	}
	verts = verts[:count]
	area := cp.AreaForPoly(count, verts, 0)
	if math.IsNaN(area) || area < minShapeArea {
		return Shape{}, false
	}
	centroid := cp.CentroidForPoly(count, verts)
	local := make([]cp.Vector, count)
	for i, v := range verts {
		local[i] = v.Sub(centroid)
	}
	return Shape{
		Verts:    local,
		Centroid: common.ToVisualVertex(centroid),
		Area:     area,
	}, true
}

func boxShape(w, h float64) Shape {
	if !(w >= 1) {
		w = 1
	}
	if !(h >= 1) {
		h = 1
	}
	hw, hh := w/2, h/2
	return Shape{
		Verts: []cp.Vector{
			{X: -hw, Y: -hh},
			{X: hw, Y: -hh},
			{X: hw, Y: hh},
			{X: -hw, Y: hh},
		},
		Area: w * h,
		Box:  true,
	}
}
