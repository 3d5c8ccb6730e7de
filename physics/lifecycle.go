package physics

import (
	"github.com/milk9111/physync/common"
	"github.com/milk9111/physync/config"
	"go.uber.org/zap"
)

// LifecycleController turns physics on and off per target and reacts to the
// host's costume, clone, removal and stop events.
type LifecycleController struct {
	cfg    config.Physics
	log    *zap.Logger
	states StateStore
	world  *World
	engine *SyncEngine
}

func NewLifecycleController(states StateStore, world *World, engine *SyncEngine, cfg config.Physics, logger *zap.Logger) *LifecycleController {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &LifecycleController{
		cfg:    cfg,
		log:    logger.Named("lifecycle"),
		states: states,
		world:  world,
		engine: engine,
	}
	engine.SetBodyBuilder(c.attach)
	return c
}

// SetConfig swaps material and clone settings for bodies built from now on.
func (c *LifecycleController) SetConfig(cfg config.Physics) {
	c.cfg = cfg
}

// Enable builds a body for t from its current silhouette. Enabling a target
// that already has a body does nothing.
func (c *LifecycleController) Enable(t Target) {
	if t == nil {
		return
	}
	st := c.states.State(t.ID())
	if st.Simulated() && c.world.HasBody(st.Body) {
		return
	}
	st.Enabled = true
	c.attach(t)
}

// attach builds and tracks a body for an enabled target at its current
// pose, then moves the target's pivot onto the body's center of mass.
func (c *LifecycleController) attach(t Target) {
	st := c.states.State(t.ID())
	shape := c.buildShape(t)
	x, y := t.Position()
	id := c.world.AddBody(t.ID(), shape, x, y, common.ToSimAngle(t.Direction()), c.cfg.Restitution)
	c.engine.Track(t.ID(), id)
	st.Body = id
	c.anchor(t, shape)
}

func (c *LifecycleController) buildShape(t Target) Shape {
	shape := BuildShape(t.SilhouettePoints(), t.Bounds())
	if shape.Box {
		c.log.Debug("silhouette unusable, using bounds",
			zap.String("target", string(t.ID())),
			zap.Float64("width", t.Bounds().Width()),
			zap.Float64("height", t.Bounds().Height()))
	}
	return shape
}

func (c *LifecycleController) anchor(t Target, shape Shape) {
	if shape.Box {
		return
	}
	t.SetRotationCenter(shape.Centroid.X, shape.Centroid.Y)
}

// Disable removes t's body and marks it disabled. Disabling a target
// without physics does nothing.
func (c *LifecycleController) Disable(t Target) {
	if t == nil {
		return
	}
	c.disableID(t.ID())
}

func (c *LifecycleController) disableID(id TargetID) {
	st, ok := c.states.Lookup(id)
	if !ok {
		return
	}
	if st.Body.Valid() {
		c.world.RemoveBody(st.Body)
		c.engine.Untrack(st.Body)
	}
	st.reset()
}

// OnCostumeChanged rebuilds the body of an enabled target from its new
// silhouette. The replacement keeps the old body's pose and velocity; the
// target's own position and direction are left alone.
func (c *LifecycleController) OnCostumeChanged(t Target) {
	if t == nil {
		return
	}
	st, ok := c.states.Lookup(t.ID())
	if !ok || !st.Simulated() {
		return
	}
	old := st.Body
	x, y, angle, ok := c.world.Pose(old)
	if !ok {
		st.Body = 0
		c.engine.Untrack(old)
		return
	}
	v, w, _ := c.world.Velocity(old)

	shape := c.buildShape(t)
	c.world.RemoveBody(old)
	c.engine.Untrack(old)

	id := c.world.AddBody(t.ID(), shape, x, y, angle, c.cfg.Restitution)
	c.world.SetVelocity(id, v, w)
	c.engine.Track(t.ID(), id)
	st.Body = id
	c.anchor(t, shape)

	c.log.Debug("rebuilt hull",
		zap.String("target", string(t.ID())),
		zap.Stringer("old", old),
		zap.Stringer("body", id),
		zap.Int("verts", len(shape.Verts)))
}

// OnEntityCreated sets up a clone's state according to the clone policy.
// The clone never shares its source's body.
func (c *LifecycleController) OnEntityCreated(clone, source Target) {
	if clone == nil {
		return
	}
	st := c.states.State(clone.ID())
	st.reset()
	if source == nil || c.cfg.ClonePolicy != config.CloneInherit {
		return
	}
	src, ok := c.states.Lookup(source.ID())
	if !ok || !src.Enabled {
		return
	}
	st.Enabled = true
	c.attach(clone)
}

// OnEntityRemoved drops a destroyed target's body and state right away
// instead of waiting for the next garbage collection.
func (c *LifecycleController) OnEntityRemoved(id TargetID) {
	c.disableID(id)
	c.states.Delete(id)
}

// OnGlobalStop disables every target and empties the world of dynamic
// bodies and constraints. The stage boundaries stay.
func (c *LifecycleController) OnGlobalStop() {
	disabled := 0
	c.states.Each(func(id TargetID, st *EntityPhysicsState) {
		if st.Enabled {
			disabled++
		}
		st.reset()
	})
	c.world.Clear()
	c.engine.Reset()
	c.log.Info("global stop", zap.Int("disabled", disabled))
}
