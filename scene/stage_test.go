package scene

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/milk9111/physync/ecs"
	"github.com/milk9111/physync/ecs/component"
	"github.com/milk9111/physync/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boxCostume(t *testing.T, w, h int) component.Costume {
	t.Helper()
	c, err := ShapeCostume(ShapeBox, w, h)
	require.NoError(t, err)
	return c
}

func TestAddSpriteMintsIdentity(t *testing.T) {
	stage := NewStage(nil)
	a := stage.AddSprite("cat", boxCostume(t, 10, 10), 1, 2, 90)
	b := stage.AddSprite("dog", boxCostume(t, 10, 10), 3, 4, 0)

	_, err := uuid.Parse(string(a.ID()))
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())

	targets := stage.Targets()
	require.Len(t, targets, 2)
	assert.Equal(t, a.ID(), targets[0].ID())
	assert.Equal(t, b.ID(), targets[1].ID())

	got, ok := stage.Target(b.ID())
	require.True(t, ok)
	x, y := got.Position()
	assert.Equal(t, 3.0, x)
	assert.Equal(t, 4.0, y)

	byName, ok := stage.SpriteByName("cat")
	require.True(t, ok)
	assert.Equal(t, a.ID(), byName.ID())

	e, ok := stage.Entity(a.ID())
	require.True(t, ok)
	id, ok := stage.TargetOf(e)
	require.True(t, ok)
	assert.Equal(t, a.ID(), id)
}

func TestSpriteBoundsFollowRotationCenter(t *testing.T) {
	stage := NewStage(nil)
	sp := stage.AddSprite("box", boxCostume(t, 40, 20), 100, 50, 90)

	b := sp.Bounds()
	assert.Equal(t, 80.0, b.Left)
	assert.Equal(t, 120.0, b.Right)
	assert.Equal(t, 60.0, b.Top)
	assert.Equal(t, 40.0, b.Bottom)

	sp.SetRotationCenter(0, 0)
	b = sp.Bounds()
	assert.Equal(t, 100.0, b.Left)
	assert.Equal(t, 50.0, b.Top)
	assert.Equal(t, 30.0, b.Bottom)
	cx, cy := sp.RotationCenter()
	assert.Zero(t, cx)
	assert.Zero(t, cy)
}

func TestSpriteSettersWriteComponents(t *testing.T) {
	stage := NewStage(nil)
	sp := stage.AddSprite("box", boxCostume(t, 10, 10), 0, 0, 90)

	sp.SetPosition(5, -6)
	sp.SetDirection(45)

	tr, ok := ecs.Get(stage.World(), sp.Entity(), component.TransformComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, component.Transform{X: 5, Y: -6, Direction: 45}, *tr)
}

func TestCloneCopiesSprite(t *testing.T) {
	stage := NewStage(nil)
	src := stage.AddSprite("cat", boxCostume(t, 10, 10), 7, 8, 30)
	require.NoError(t, ecs.Add(stage.World(), src.Entity(), component.HatScriptComponent.Kind(),
		&component.HatScript{Source: "on_collide := func(e, o) {}"}))

	var created [][2]physics.TargetID
	stage.OnTargetCreated(func(clone, source physics.Target) {
		created = append(created, [2]physics.TargetID{clone.ID(), source.ID()})
	})

	clone, err := stage.Clone(src.ID())
	require.NoError(t, err)

	assert.True(t, clone.IsClone())
	assert.False(t, src.IsClone())
	assert.Equal(t, "cat", clone.Name())
	assert.Equal(t, [][2]physics.TargetID{{clone.ID(), src.ID()}}, created)
	x, y := clone.Position()
	assert.Equal(t, 7.0, x)
	assert.Equal(t, 8.0, y)
	assert.Equal(t, 30.0, clone.Direction())
	hat, ok := ecs.Get(stage.World(), clone.Entity(), component.HatScriptComponent.Kind())
	require.True(t, ok)
	assert.Contains(t, hat.Source, "on_collide")

	clone.SetRotationCenter(1, 1)
	cx, _ := src.RotationCenter()
	assert.Equal(t, 5.0, cx, "clone costume is independent")

	byName, ok := stage.SpriteByName("cat")
	require.True(t, ok)
	assert.Equal(t, src.ID(), byName.ID(), "clones are not found by name")
}

func TestCloneUnknownTarget(t *testing.T) {
	stage := NewStage(nil)
	_, err := stage.Clone("nope")
	assert.True(t, errors.Is(err, ErrUnknownTarget))
	assert.True(t, errors.Is(stage.SetCostume("nope", component.Costume{}), ErrUnknownTarget))
}

func TestRemoveNotifiesBeforeDestroying(t *testing.T) {
	stage := NewStage(nil)
	sp := stage.AddSprite("cat", boxCostume(t, 10, 10), 0, 0, 90)

	stillThere := false
	stage.OnTargetRemoved(func(id physics.TargetID) {
		_, stillThere = stage.Sprite(id)
	})

	require.True(t, stage.Remove(sp.ID()))
	assert.True(t, stillThere)
	assert.False(t, sp.Alive())
	assert.Empty(t, stage.Targets())
	assert.False(t, stage.Remove(sp.ID()))

	sp.SetPosition(1, 1)
	x, _ := sp.Position()
	assert.Zero(t, x, "dead handles read zero values")
}

func TestSetCostumeNotifies(t *testing.T) {
	stage := NewStage(nil)
	sp := stage.AddSprite("cat", boxCostume(t, 10, 10), 0, 0, 90)

	var changed []physics.TargetID
	stage.OnCostumeChanged(func(tg physics.Target) { changed = append(changed, tg.ID()) })

	tri, err := ShapeCostume(ShapeTriangle, 20, 20)
	require.NoError(t, err)
	require.NoError(t, stage.SetCostume(sp.ID(), tri))

	assert.Equal(t, []physics.TargetID{sp.ID()}, changed)
	assert.Equal(t, ShapeTriangle, sp.Costume().Name)
	assert.Equal(t, 20.0, sp.Costume().Width)
}

func TestStopRemovesClones(t *testing.T) {
	stage := NewStage(nil)
	src := stage.AddSprite("cat", boxCostume(t, 10, 10), 0, 0, 90)
	for i := 0; i < 3; i++ {
		_, err := stage.Clone(src.ID())
		require.NoError(t, err)
	}

	stops := 0
	var removed []physics.TargetID
	stage.OnGlobalStop(func() { stops++ })
	stage.OnTargetRemoved(func(id physics.TargetID) { removed = append(removed, id) })

	stage.Stop()

	assert.Equal(t, 1, stops)
	assert.Len(t, removed, 3)
	require.Len(t, stage.Sprites(), 1)
	assert.Equal(t, src.ID(), stage.Sprites()[0].ID())
	stopEvents := stage.World().Events().DrainType(ecs.EventStop)
	assert.Len(t, stopEvents, 1)
}

func TestPhysicsStatesLiveOnEntities(t *testing.T) {
	stage := NewStage(nil)
	sp := stage.AddSprite("cat", boxCostume(t, 10, 10), 0, 0, 90)
	store := stage.PhysicsStates()

	_, ok := store.Lookup(sp.ID())
	assert.False(t, ok)

	st := store.State(sp.ID())
	st.Enabled = true
	assert.Same(t, st, store.State(sp.ID()))
	comp, ok := ecs.Get(stage.World(), sp.Entity(), component.PhysicsStateComponent.Kind())
	require.True(t, ok)
	assert.True(t, comp.Enabled)

	detached := store.State("elsewhere")
	require.NotNil(t, detached)

	seen := map[physics.TargetID]bool{}
	store.Each(func(id physics.TargetID, _ *physics.EntityPhysicsState) { seen[id] = true })
	assert.Equal(t, map[physics.TargetID]bool{sp.ID(): true, "elsewhere": true}, seen)

	store.Delete("elsewhere")
	stage.Remove(sp.ID())
	count := 0
	store.Each(func(physics.TargetID, *physics.EntityPhysicsState) { count++ })
	assert.Zero(t, count)
}
