package component

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Sprite caches the GPU copy of a costume image for drawing.
type Sprite struct {
	Image   *ebiten.Image
	Costume string
	Hidden  bool
}

var SpriteComponent = NewComponent[Sprite]()
