package common

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Stage space is Y-up with directions measured clockwise from north (90 is
// facing right). The simulation measures angles counter-clockwise from the
// +X axis in radians. Costume art is Y-down, so silhouette vertices are
// flipped on their way into the simulation.

// ToSimAngle converts a stage direction in degrees to a body angle in radians.
func ToSimAngle(visualDeg float64) float64 {
	return DegToRad(90 - visualDeg)
}

// ToVisualAngle converts a body angle in radians to a stage direction in
// degrees. The result is quantized to whole degrees and wrapped to [0, 360).
func ToVisualAngle(simRad float64) float64 {
	return Wrap360(360 - math.Round(RadToDeg(simRad)) + 90)
}

// ToSimVertex flips a costume-space point into simulation space.
func ToSimVertex(p cp.Vector) cp.Vector {
	return cp.Vector{X: p.X, Y: -p.Y}
}

// ToVisualVertex flips a simulation-space point back into costume space.
func ToVisualVertex(p cp.Vector) cp.Vector {
	return cp.Vector{X: p.X, Y: -p.Y}
}

// ToSimVertices flips every point; the input slice is left untouched.
func ToSimVertices(points []cp.Vector) []cp.Vector {
	out := make([]cp.Vector, len(points))
	for i, p := range points {
		out[i] = ToSimVertex(p)
	}
	return out
}
