package physics

import (
	"math"

	"github.com/kamstrup/intmap"
	"github.com/milk9111/physync/common"
	"github.com/milk9111/physync/config"
	"go.uber.org/zap"
)

// SyncEngine keeps targets and bodies consistent. Each Tick runs, in order:
// garbage collection, stage→physics reconciliation, a fixed-step advance,
// physics→stage write-back and collision dispatch.
//
// The body↔target index is a tracking relation only; neither side is
// assumed to outlive the other and both directions are checked every frame.
type SyncEngine struct {
	cfg    config.Physics
	log    *zap.Logger
	scene  Scene
	states StateStore
	world  *World

	bodyToTarget *intmap.Map[BodyID, TargetID]
	targetToBody map[TargetID]BodyID

	// live is the frame's snapshot of the scene, rebuilt by Tick.
	live map[TargetID]Target

	contacts []contact
	handlers []CollisionFunc
	builder  func(t Target)
}

type contact struct {
	a, b BodyID
}

// FrameStats summarizes one Tick.
type FrameStats struct {
	Collected  int
	Overridden int
	Written    int
	Contacts   int
	Built      int
}

func NewSyncEngine(scene Scene, states StateStore, world *World, cfg config.Physics, logger *zap.Logger) *SyncEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &SyncEngine{
		cfg:          cfg,
		log:          logger.Named("sync"),
		scene:        scene,
		states:       states,
		world:        world,
		bodyToTarget: intmap.New[BodyID, TargetID](64),
		targetToBody: make(map[TargetID]BodyID),
		live:         make(map[TargetID]Target),
	}
	world.OnCollision(e.capture)
	return e
}

// SetConfig swaps tolerances and stepping parameters.
func (e *SyncEngine) SetConfig(cfg config.Physics) {
	e.cfg = cfg
}

// OnCollision registers a listener for target contacts. Listeners run after
// the step, in registration order.
func (e *SyncEngine) OnCollision(fn CollisionFunc) {
	if fn == nil {
		return
	}
	e.handlers = append(e.handlers, fn)
}

// SetBodyBuilder installs the hook used at the end of a frame to build
// bodies for targets that are enabled but not yet simulated.
func (e *SyncEngine) SetBodyBuilder(fn func(t Target)) {
	e.builder = fn
}

// Track records that body id represents target.
func (e *SyncEngine) Track(target TargetID, id BodyID) {
	if old, ok := e.targetToBody[target]; ok && old != id {
		e.bodyToTarget.Del(old)
	}
	e.targetToBody[target] = id
	e.bodyToTarget.Put(id, target)
}

// Untrack drops the tracking entry for id.
func (e *SyncEngine) Untrack(id BodyID) {
	target, ok := e.bodyToTarget.Get(id)
	if !ok {
		return
	}
	e.bodyToTarget.Del(id)
	if e.targetToBody[target] == id {
		delete(e.targetToBody, target)
	}
}

// TargetFor resolves a body to the target it was built for.
func (e *SyncEngine) TargetFor(id BodyID) (TargetID, bool) {
	return e.bodyToTarget.Get(id)
}

// BodyFor resolves a target to its tracked body.
func (e *SyncEngine) BodyFor(target TargetID) (BodyID, bool) {
	id, ok := e.targetToBody[target]
	return id, ok
}

// Tracked returns the number of tracked bodies.
func (e *SyncEngine) Tracked() int {
	return len(e.targetToBody)
}

// Reset forgets every tracking entry and queued contact.
func (e *SyncEngine) Reset() {
	e.bodyToTarget.Clear()
	clear(e.targetToBody)
	e.contacts = e.contacts[:0]
}

// Tick runs one frame.
func (e *SyncEngine) Tick() FrameStats {
	var stats FrameStats
	e.snapshot()
	stats.Collected = e.CollectGarbage()
	stats.Overridden = e.Reconcile()
	e.Advance()
	stats.Written = e.WriteBack()
	stats.Contacts = e.DispatchCollisions()
	stats.Built = e.buildPending()

	if stats.Collected > 0 || stats.Overridden > 0 || stats.Built > 0 {
		e.log.Debug("frame",
			zap.Int("collected", stats.Collected),
			zap.Int("overridden", stats.Overridden),
			zap.Int("written", stats.Written),
			zap.Int("contacts", stats.Contacts),
			zap.Int("built", stats.Built))
	}
	return stats
}

func (e *SyncEngine) snapshot() {
	clear(e.live)
	for _, t := range e.scene.Targets() {
		if t == nil {
			continue
		}
		e.live[t.ID()] = t
	}
}

// CollectGarbage removes bodies whose target is gone or disabled, bodies
// nothing tracks, and tracking entries whose body no longer exists. It
// returns the number of bodies removed.
func (e *SyncEngine) CollectGarbage() int {
	removed := 0

	for target, id := range e.targetToBody {
		st, hasState := e.states.Lookup(target)
		_, alive := e.live[target]
		switch {
		case !e.world.HasBody(id):
			e.Untrack(id)
		case !alive || !hasState || !st.Enabled || st.Body != id:
			e.world.RemoveBody(id)
			e.Untrack(id)
			removed++
		}
	}

	for _, id := range e.world.BodyIDs() {
		if _, ok := e.bodyToTarget.Get(id); ok {
			continue
		}
		owner, _ := e.world.Owner(id)
		e.log.Debug("removing untracked body", zap.Stringer("body", id), zap.String("target", string(owner)))
		e.world.RemoveBody(id)
		removed++
	}

	var dead []TargetID
	e.states.Each(func(id TargetID, st *EntityPhysicsState) {
		if _, alive := e.live[id]; !alive {
			dead = append(dead, id)
			return
		}
		if st.Body.Valid() && !e.world.HasBody(st.Body) {
			st.Body = 0
		}
	})
	for _, id := range dead {
		e.states.Delete(id)
	}

	return removed
}

// Reconcile pushes hand-made changes to a target's pose into its body. A
// target that drifted from its body was moved by something other than the
// simulation, so the body takes the new pose and loses its momentum.
func (e *SyncEngine) Reconcile() int {
	overridden := 0
	for id, t := range e.live {
		st, ok := e.states.Lookup(id)
		if !ok || !st.Simulated() {
			continue
		}
		bx, by, ba, ok := e.world.Pose(st.Body)
		if !ok {
			continue
		}

		x, y := t.Position()
		moved := math.Abs(x-bx) > e.cfg.PositionTolerance || math.Abs(y-by) > e.cfg.PositionTolerance
		dir := t.Direction()
		turned := common.AngleDelta(dir, common.ToVisualAngle(ba)) > e.cfg.AngleTolerance
		if !moved && !turned {
			continue
		}

		if moved {
			e.world.SetPosition(st.Body, x, y)
		}
		if turned {
			e.world.SetAngle(st.Body, common.ToSimAngle(dir))
		}
		e.world.ZeroVelocity(st.Body)
		overridden++
	}
	return overridden
}

// Advance steps the world by the fixed timestep, Substeps times.
func (e *SyncEngine) Advance() {
	steps := e.cfg.Substeps
	if steps < 1 {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		e.world.Step(e.cfg.FixedStepMs)
	}
}

// WriteBack copies every simulated body's pose onto its target.
func (e *SyncEngine) WriteBack() int {
	written := 0
	for id, t := range e.live {
		st, ok := e.states.Lookup(id)
		if !ok || !st.Simulated() {
			continue
		}
		x, y, angle, ok := e.world.Pose(st.Body)
		if !ok {
			continue
		}
		t.SetPosition(x, y)
		t.SetDirection(common.ToVisualAngle(angle))
		written++
	}
	return written
}

func (e *SyncEngine) capture(a, b BodyID) {
	e.contacts = append(e.contacts, contact{a: a, b: b})
}

// DispatchCollisions translates contacts captured during the step into
// target pairs and hands them to the listeners. Contacts naming a body that
// is no longer tracked are dropped.
func (e *SyncEngine) DispatchCollisions() int {
	if len(e.contacts) == 0 {
		return 0
	}
	contacts := make([]contact, len(e.contacts))
	copy(contacts, e.contacts)
	e.contacts = e.contacts[:0]

	delivered := 0
	for _, c := range contacts {
		a, ok := e.resolve(c.a)
		if !ok {
			continue
		}
		var b TargetID
		if c.b.Valid() {
			if b, ok = e.resolve(c.b); !ok {
				continue
			}
		} else {
			if !e.cfg.ReportBoundaryHits {
				continue
			}
			b = BoundaryTarget
		}
		for _, fn := range e.handlers {
			fn(a, b)
		}
		delivered++
	}
	return delivered
}

func (e *SyncEngine) resolve(id BodyID) (TargetID, bool) {
	target, ok := e.bodyToTarget.Get(id)
	if !ok {
		return "", false
	}
	if _, alive := e.live[target]; !alive {
		return "", false
	}
	return target, true
}

// buildPending gives enabled targets without a body their body, so the
// frame ends with every enabled target simulated.
func (e *SyncEngine) buildPending() int {
	if e.builder == nil {
		return 0
	}
	built := 0
	for id, t := range e.live {
		st, ok := e.states.Lookup(id)
		if !ok || !st.Enabled || st.Body.Valid() {
			continue
		}
		e.builder(t)
		if st.Body.Valid() {
			built++
		}
	}
	return built
}
