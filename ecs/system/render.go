package system

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/physync/ecs"
	"github.com/milk9111/physync/ecs/component"
	"github.com/milk9111/physync/scene"
)

// RenderSystem draws every visible sprite in stage order.
type RenderSystem struct {
	stage *scene.Stage
	view  StageView
}

func NewRenderSystem(stage *scene.Stage, view StageView) *RenderSystem {
	return &RenderSystem{stage: stage, view: view}
}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}

	for _, sp := range r.stage.Sprites() {
		e := sp.Entity()
		t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			continue
		}
		c, ok := ecs.Get(w, e, component.CostumeComponent.Kind())
		if !ok || c.Image == nil {
			continue
		}
		s := r.spriteFor(w, e, c)
		if s == nil || s.Hidden || s.Image == nil {
			continue
		}

		op := &ebiten.DrawImageOptions{}
		op.GeoM = r.spriteGeoM(t, c)
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(s.Image, op)
	}
}

// spriteFor returns the sprite's GPU image, uploading the costume when it
// is missing or the costume changed.
func (r *RenderSystem) spriteFor(w *ecs.World, e ecs.Entity, c *component.Costume) *component.Sprite {
	s, ok := ecs.Get(w, e, component.SpriteComponent.Kind())
	if !ok {
		s = &component.Sprite{}
		if err := ecs.Add(w, e, component.SpriteComponent.Kind(), s); err != nil {
			return nil
		}
	}
	if s.Image == nil || s.Costume != c.Name {
		s.Image = ebiten.NewImageFromImage(c.Image)
		s.Costume = c.Name
	}
	return s
}

// spriteGeoM places the costume so its rotation center sits on the sprite's
// stage position. Direction 90 draws the costume upright; larger values
// turn it clockwise.
func (r *RenderSystem) spriteGeoM(t *component.Transform, c *component.Costume) ebiten.GeoM {
	var g ebiten.GeoM
	g.Translate(-c.CenterX, -c.CenterY)
	g.Rotate((t.Direction - 90) * math.Pi / 180)
	sx, sy := r.view.ToScreen(t.X, t.Y)
	g.Translate(sx, sy)
	return g
}
