package scene

import (
	"image"

	"github.com/jakecoffman/cp"
)

// DefaultAlphaThreshold is the alpha above which a pixel counts as part of
// the silhouette.
const DefaultAlphaThreshold = 0

// Silhouette returns the corners of every opaque edge pixel of img, in
// costume pixel space (origin at the image's top-left, Y down). Interior
// pixels are skipped since only the outline can end up on the convex hull.
func Silhouette(img image.Image, threshold uint8) []cp.Vector {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	limit := uint32(threshold) * 0x101
	opaque := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			_, _, _, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			opaque[y*w+x] = a > limit
		}
	}
	isOpaque := func(x, y int) bool {
		if x < 0 || y < 0 || x >= w || y >= h {
			return false
		}
		return opaque[y*w+x]
	}

	var points []cp.Vector
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !isOpaque(x, y) {
				continue
			}
			if isOpaque(x-1, y) && isOpaque(x+1, y) && isOpaque(x, y-1) && isOpaque(x, y+1) {
				continue
			}
			fx, fy := float64(x), float64(y)
			points = append(points,
				cp.Vector{X: fx, Y: fy},
				cp.Vector{X: fx + 1, Y: fy},
				cp.Vector{X: fx + 1, Y: fy + 1},
				cp.Vector{X: fx, Y: fy + 1},
			)
		}
	}
	return points
}
