package system

import (
	"testing"

	"github.com/milk9111/physync/ecs"
	"github.com/milk9111/physync/ecs/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePointer struct {
	x, y    int
	pressed bool
}

func (p *fakePointer) read() (int, int, bool) {
	return p.x, p.y, p.pressed
}

// at moves the pointer to a stage position.
func (p *fakePointer) at(x, y float64) {
	sx, sy := testView.ToScreen(x, y)
	p.x, p.y = int(sx), int(sy)
}

func TestStageViewRoundTrip(t *testing.T) {
	cases := []struct {
		x, y   float64
		sx, sy float64
	}{
		{0, 0, 240, 180},
		{-240, 180, 0, 0},
		{240, -180, 480, 360},
	}
	for _, tc := range cases {
		sx, sy := testView.ToScreen(tc.x, tc.y)
		if sx != tc.sx || sy != tc.sy {
			t.Fatalf("ToScreen(%v, %v) = %v,%v, want %v,%v", tc.x, tc.y, sx, sy, tc.sx, tc.sy)
		}
		x, y := testView.ToStage(sx, sy)
		if x != tc.x || y != tc.y {
			t.Fatalf("ToStage(%v, %v) = %v,%v, want %v,%v", sx, sy, x, y, tc.x, tc.y)
		}
	}
}

func TestDragMovesDraggableSprite(t *testing.T) {
	rig := newRig(t, nil)
	sp := rig.box(t, "box", 0, 0, 40, false)
	w := rig.stage.World()
	require.NoError(t, ecs.Add(w, sp.Entity(), component.DraggableTagComponent.Kind(), &component.DraggableTag{}))

	p := &fakePointer{}
	drag := NewDragSystem(rig.stage, testView, p.read)

	p.at(10, 10)
	p.pressed = true
	drag.Update(w)
	held, ok := drag.Held()
	require.True(t, ok)
	assert.Equal(t, sp.Entity(), held)

	p.at(60, -20)
	drag.Update(w)
	x, y := sp.Position()
	assert.Equal(t, 50.0, x)
	assert.Equal(t, -30.0, y)

	p.pressed = false
	drag.Update(w)
	_, ok = drag.Held()
	assert.False(t, ok)
	assert.False(t, ecs.Has(w, sp.Entity(), component.DragComponent.Kind()))
}

func TestDragIgnoresNonDraggableAndMisses(t *testing.T) {
	rig := newRig(t, nil)
	sp := rig.box(t, "box", 0, 0, 40, false)
	w := rig.stage.World()

	p := &fakePointer{pressed: true}
	p.at(0, 0)
	drag := NewDragSystem(rig.stage, testView, p.read)
	drag.Update(w)
	_, ok := drag.Held()
	assert.False(t, ok, "sprite is not draggable")

	require.NoError(t, ecs.Add(w, sp.Entity(), component.DraggableTagComponent.Kind(), &component.DraggableTag{}))
	drag.Update(w)
	_, ok = drag.Held()
	assert.False(t, ok, "grab needs a fresh press")

	p.pressed = false
	drag.Update(w)
	p.pressed = true
	p.at(100, 100)
	drag.Update(w)
	_, ok = drag.Held()
	assert.False(t, ok, "pointer misses the sprite")
}

func TestDragPicksTopMostSprite(t *testing.T) {
	rig := newRig(t, nil)
	w := rig.stage.World()
	under := rig.box(t, "under", 0, 0, 40, false)
	over := rig.box(t, "over", 10, 0, 40, false)
	for _, sp := range []ecs.Entity{under.Entity(), over.Entity()} {
		require.NoError(t, ecs.Add(w, sp, component.DraggableTagComponent.Kind(), &component.DraggableTag{}))
	}

	p := &fakePointer{pressed: true}
	p.at(5, 0)
	drag := NewDragSystem(rig.stage, testView, p.read)
	drag.Update(w)

	held, ok := drag.Held()
	require.True(t, ok)
	assert.Equal(t, over.Entity(), held)
}

func TestDraggingSimulatedSpriteKillsMomentum(t *testing.T) {
	rig := newRig(t, nil)
	sp := rig.box(t, "box", 0, 0, 40, true)
	w := rig.stage.World()
	require.NoError(t, ecs.Add(w, sp.Entity(), component.DraggableTagComponent.Kind(), &component.DraggableTag{}))
	require.True(t, rig.sys.Push(sp.ID(), 5))
	sched := ecs.NewScheduler(NewDragSystem(rig.stage, testView, (&fakePointer{}).read), rig.physics)
	sched.Update(w)
	require.Greater(t, rig.sys.QuerySpeed(sp.ID()), 0.0)

	p := &fakePointer{pressed: true}
	x, y := sp.Position()
	p.at(x, y)
	sched = ecs.NewScheduler(NewDragSystem(rig.stage, testView, p.read), rig.physics)
	sched.Update(w)
	p.at(x-50, y-50)
	sched.Update(w)

	assert.Zero(t, rig.sys.QuerySpeed(sp.ID()))
}
