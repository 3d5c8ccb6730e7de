package component

import (
	"image"

	"github.com/jakecoffman/cp"
)

// Costume is the image a target currently wears. Points is the opaque
// outline in costume pixel space (origin top-left, Y down) and CenterX,
// CenterY is the rotation center in the same space.
type Costume struct {
	Name    string
	Image   image.Image
	Width   float64
	Height  float64
	Points  []cp.Vector
	CenterX float64
	CenterY float64
}

var CostumeComponent = NewComponent[Costume]()
