package scene

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physync/common"
	"github.com/milk9111/physync/ecs"
	"github.com/milk9111/physync/ecs/component"
	"github.com/milk9111/physync/physics"
)

// Sprite is a handle to one stage target. It stays cheap to copy; every
// accessor reads the entity's components, so a handle to a removed sprite
// reads zero values and its setters do nothing.
type Sprite struct {
	stage  *Stage
	entity ecs.Entity
	id     physics.TargetID
}

var _ physics.Target = (*Sprite)(nil)

func (s *Sprite) ID() physics.TargetID {
	return s.id
}

func (s *Sprite) Entity() ecs.Entity {
	return s.entity
}

// Alive reports whether the sprite is still on stage.
func (s *Sprite) Alive() bool {
	return ecs.IsAlive(s.stage.world, s.entity)
}

func (s *Sprite) Name() string {
	return s.identity().Name
}

// IsClone reports whether the sprite was made by Stage.Clone.
func (s *Sprite) IsClone() bool {
	return s.identity().CloneOf != ""
}

func (s *Sprite) identity() *component.Identity {
	if ident, ok := ecs.Get(s.stage.world, s.entity, component.IdentityComponent.Kind()); ok {
		return ident
	}
	return &component.Identity{}
}

func (s *Sprite) transform() *component.Transform {
	if tr, ok := ecs.Get(s.stage.world, s.entity, component.TransformComponent.Kind()); ok {
		return tr
	}
	return &component.Transform{}
}

func (s *Sprite) costume() *component.Costume {
	if c, ok := ecs.Get(s.stage.world, s.entity, component.CostumeComponent.Kind()); ok {
		return c
	}
	return &component.Costume{}
}

// Costume returns a copy of the current costume.
func (s *Sprite) Costume() component.Costume {
	return *s.costume()
}

func (s *Sprite) Position() (float64, float64) {
	tr := s.transform()
	return tr.X, tr.Y
}

func (s *Sprite) SetPosition(x, y float64) {
	tr := s.transform()
	tr.X, tr.Y = x, y
}

func (s *Sprite) Direction() float64 {
	return s.transform().Direction
}

func (s *Sprite) SetDirection(deg float64) {
	s.transform().Direction = deg
}

// Bounds is the unrotated costume rectangle placed so the rotation center
// sits on the sprite's position.
func (s *Sprite) Bounds() common.Rect {
	tr := s.transform()
	c := s.costume()
	left := tr.X - c.CenterX
	top := tr.Y + c.CenterY
	return common.Rect{Left: left, Right: left + c.Width, Top: top, Bottom: top - c.Height}
}

func (s *Sprite) SilhouettePoints() []cp.Vector {
	return s.costume().Points
}

func (s *Sprite) SetRotationCenter(x, y float64) {
	c := s.costume()
	c.CenterX, c.CenterY = x, y
}

// RotationCenter returns the costume's pivot in costume pixel space.
func (s *Sprite) RotationCenter() (float64, float64) {
	c := s.costume()
	return c.CenterX, c.CenterY
}
