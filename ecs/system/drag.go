package system

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/physync/ecs"
	"github.com/milk9111/physync/ecs/component"
	"github.com/milk9111/physync/scene"
)

// Pointer reports the cursor in screen pixels and whether the primary
// button is held.
type Pointer func() (x, y int, pressed bool)

// EbitenPointer reads the mouse through ebiten.
func EbitenPointer() (int, int, bool) {
	x, y := ebiten.CursorPosition()
	return x, y, ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
}

// DragSystem lets the pointer pick up draggable sprites and move them.
// Moving a simulated sprite by hand is picked up by physics as an
// override, so a dropped sprite starts from rest.
type DragSystem struct {
	stage   *scene.Stage
	view    StageView
	pointer Pointer

	held    ecs.Entity
	pressed bool
}

func NewDragSystem(stage *scene.Stage, view StageView, pointer Pointer) *DragSystem {
	if pointer == nil {
		pointer = EbitenPointer
	}
	return &DragSystem{stage: stage, view: view, pointer: pointer}
}

// Held returns the entity being dragged, if any.
func (d *DragSystem) Held() (ecs.Entity, bool) {
	if d == nil || !d.held.Valid() {
		return 0, false
	}
	return d.held, true
}

func (d *DragSystem) Update(w *ecs.World) {
	if d == nil || w == nil {
		return
	}

	sx, sy, pressed := d.pointer()
	x, y := d.view.ToStage(float64(sx), float64(sy))
	justPressed := pressed && !d.pressed
	d.pressed = pressed

	if !pressed {
		d.release(w)
		return
	}
	if justPressed {
		d.grab(w, x, y)
	}
	if !d.held.Valid() {
		return
	}
	if !ecs.IsAlive(w, d.held) {
		d.held = 0
		return
	}

	drag, ok := ecs.Get(w, d.held, component.DragComponent.Kind())
	if !ok {
		return
	}
	if tr, ok := ecs.Get(w, d.held, component.TransformComponent.Kind()); ok {
		tr.X = x - drag.OffsetX
		tr.Y = y - drag.OffsetY
	}
}

// grab picks the top-most draggable sprite under the pointer. Sprites added
// later draw on top.
func (d *DragSystem) grab(w *ecs.World, x, y float64) {
	sprites := d.stage.Sprites()
	for i := len(sprites) - 1; i >= 0; i-- {
		sp := sprites[i]
		if !ecs.Has(w, sp.Entity(), component.DraggableTagComponent.Kind()) {
			continue
		}
		if !sp.Bounds().Contains(x, y) {
			continue
		}
		px, py := sp.Position()
		_ = ecs.Add(w, sp.Entity(), component.DragComponent.Kind(), &component.Drag{OffsetX: x - px, OffsetY: y - py})
		d.held = sp.Entity()
		return
	}
}

func (d *DragSystem) release(w *ecs.World) {
	if !d.held.Valid() {
		return
	}
	ecs.Remove(w, d.held, component.DragComponent.Kind())
	d.held = 0
}
