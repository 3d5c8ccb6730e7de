package physics

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physync/config"
	"go.uber.org/zap"
)

const (
	collisionTypeBoundary cp.CollisionType = iota + 1
	collisionTypeTarget
)

// Spring coefficients for soft pins, scaled by the pinned body's mass.
const (
	springStiffnessScale = 1000.0
	springDampingScale   = 10.0
)

// World owns the Chipmunk space, the static stage boundaries and every
// dynamic body. It is not safe for concurrent use.
//
// While Step is running the space is locked: body removal, constraint
// changes, forces and gravity updates requested from a collision callback
// are queued and applied in order once Step returns.
type World struct {
	cfg   config.Config
	log   *zap.Logger
	space *cp.Space

	walls       []*cp.Shape
	bodies      bodyArena
	shapeToBody map[*cp.Shape]BodyID
	constraints int

	gravityY float64

	stepping    bool
	deferred    []func()
	seen        map[contactKey]struct{}
	onCollision func(a, b BodyID)
}

type contactKey struct {
	a, b BodyID
}

// NewWorld creates a space with gravity and boundaries taken from cfg.
func NewWorld(cfg config.Config, logger *zap.Logger) *World {
	if logger == nil {
		logger = zap.NewNop()
	}
	space := cp.NewSpace()
	space.Iterations = uint(cfg.Physics.Iterations)

	w := &World{
		cfg:         cfg,
		log:         logger.Named("world"),
		space:       space,
		shapeToBody: make(map[*cp.Shape]BodyID),
		seen:        make(map[contactKey]struct{}),
	}
	w.SetGravity(cfg.Physics.Gravity)
	w.buildBoundaries()
	w.setupHandlers()
	return w
}

// Space returns the underlying Chipmunk space.
func (w *World) Space() *cp.Space {
	if w == nil {
		return nil
	}
	return w.space
}

// SetConfig applies tuning that can change at runtime. Existing bodies keep
// their material; boundaries are rebuilt when the stage size changes.
func (w *World) SetConfig(cfg config.Config) {
	w.whenUnlocked(func() {
		rebuild := cfg.Stage != w.cfg.Stage
		w.cfg = cfg
		w.space.Iterations = uint(cfg.Physics.Iterations)
		w.applyGravity()
		if rebuild {
			for _, shape := range w.walls {
				w.space.RemoveShape(shape)
			}
			w.walls = nil
			w.buildBoundaries()
		}
	})
}

// OnCollision registers the callback fired inside Step, once per new
// contact pair per step. A wall contact is reported with b == 0.
func (w *World) OnCollision(fn func(a, b BodyID)) {
	w.onCollision = fn
}

// Stepping reports whether Step is currently running.
func (w *World) Stepping() bool {
	return w.stepping
}

// Step advances the simulation by exactly fixedDtMs milliseconds. It does
// nothing when called re-entrantly from a collision callback.
func (w *World) Step(fixedDtMs float64) {
	if w == nil || w.stepping || fixedDtMs <= 0 {
		return
	}
	w.stepping = true
	clear(w.seen)
	w.space.Step(fixedDtMs / 1000)
	w.stepping = false
	w.flushDeferred()
}

func (w *World) whenUnlocked(op func()) {
	if w.stepping {
		w.deferred = append(w.deferred, op)
		return
	}
	op()
}

func (w *World) flushDeferred() {
	for len(w.deferred) > 0 {
		ops := w.deferred
		w.deferred = nil
		for _, op := range ops {
			op()
		}
	}
}

// AddBody creates a dynamic body for target from shape, centered at (x, y).
// Called during Step, the handle is valid immediately but the body only
// joins the space after the step.
func (w *World) AddBody(target TargetID, shape Shape, x, y, angle, restitution float64) BodyID {
	mass := shape.Area * w.cfg.Physics.Density
	if !(mass > 0) {
		mass = 1
	}
	moment := cp.MomentForPoly(mass, len(shape.Verts), shape.Verts, cp.Vector{}, 0)

	body := cp.NewBody(mass, moment)
	body.SetPosition(cp.Vector{X: x, Y: y})
	body.SetAngle(angle)

	poly := cp.NewPolyShapeRaw(body, len(shape.Verts), shape.Verts, 0)
	poly.SetElasticity(restitution)
	poly.SetFriction(w.cfg.Physics.Friction)
	poly.SetCollisionType(collisionTypeTarget)

	id := w.bodies.insert(bodyEntry{target: target, body: body, shape: poly, hull: shape})
	w.shapeToBody[poly] = id

	w.whenUnlocked(func() {
		e := w.bodies.get(id)
		if e == nil || e.attached {
			return
		}
		w.space.AddBody(e.body)
		w.space.AddShape(e.shape)
		e.attached = true
	})

	w.log.Debug("add body",
		zap.String("target", string(target)),
		zap.Stringer("body", id),
		zap.Int("verts", len(shape.Verts)),
		zap.Bool("box", shape.Box),
		zap.Float64("mass", mass))
	return id
}

// RemoveBody removes a body and its constraints. It reports whether id was
// live when called.
func (w *World) RemoveBody(id BodyID) bool {
	if w.bodies.get(id) == nil {
		return false
	}
	w.whenUnlocked(func() { w.removeNow(id) })
	return true
}

func (w *World) removeNow(id BodyID) {
	e, ok := w.bodies.remove(id)
	if !ok {
		return
	}
	for _, c := range e.constraints {
		w.space.RemoveConstraint(c)
		w.constraints--
	}
	delete(w.shapeToBody, e.shape)
	if e.attached {
		w.space.RemoveShape(e.shape)
		w.space.RemoveBody(e.body)
	}
	w.log.Debug("remove body", zap.String("target", string(e.target)), zap.Stringer("body", id))
}

// Clear removes every dynamic body and constraint. Boundaries stay.
func (w *World) Clear() {
	w.whenUnlocked(func() {
		for _, id := range w.bodies.ids() {
			w.removeNow(id)
		}
	})
}

// HasBody reports whether id names a live body.
func (w *World) HasBody(id BodyID) bool {
	return w.bodies.get(id) != nil
}

// BodyCount returns the number of live dynamic bodies.
func (w *World) BodyCount() int {
	return w.bodies.len()
}

// BodyIDs returns a snapshot of the live body handles.
func (w *World) BodyIDs() []BodyID {
	return w.bodies.ids()
}

// IsDynamic reports whether id names a live, dynamic body.
func (w *World) IsDynamic(id BodyID) bool {
	e := w.bodies.get(id)
	return e != nil && e.body.GetType() == cp.BODY_DYNAMIC
}

// Owner returns the target the body was created for.
func (w *World) Owner(id BodyID) (TargetID, bool) {
	e := w.bodies.get(id)
	if e == nil {
		return "", false
	}
	return e.target, true
}

// Hull returns the shape the body was built from.
func (w *World) Hull(id BodyID) (Shape, bool) {
	e := w.bodies.get(id)
	if e == nil {
		return Shape{}, false
	}
	return e.hull, true
}

// Pose returns the body's position and angle (radians).
func (w *World) Pose(id BodyID) (x, y, angle float64, ok bool) {
	e := w.bodies.get(id)
	if e == nil {
		return 0, 0, 0, false
	}
	p := e.body.Position()
	return p.X, p.Y, e.body.Angle(), true
}

// SetPose teleports the body.
func (w *World) SetPose(id BodyID, x, y, angle float64) bool {
	return w.withBody(id, func(e *bodyEntry) {
		e.body.SetPosition(cp.Vector{X: x, Y: y})
		e.body.SetAngle(angle)
	})
}

// SetPosition teleports the body without touching its angle.
func (w *World) SetPosition(id BodyID, x, y float64) bool {
	return w.withBody(id, func(e *bodyEntry) {
		e.body.SetPosition(cp.Vector{X: x, Y: y})
	})
}

// SetAngle rotates the body in place.
func (w *World) SetAngle(id BodyID, angle float64) bool {
	return w.withBody(id, func(e *bodyEntry) {
		e.body.SetAngle(angle)
	})
}

// SetVelocity sets linear and angular velocity.
func (w *World) SetVelocity(id BodyID, v cp.Vector, angular float64) bool {
	return w.withBody(id, func(e *bodyEntry) {
		e.body.SetVelocity(v.X, v.Y)
		e.body.SetAngularVelocity(angular)
	})
}

// ZeroVelocity stops the body.
func (w *World) ZeroVelocity(id BodyID) bool {
	return w.SetVelocity(id, cp.Vector{}, 0)
}

// ZeroAngularVelocity stops the body spinning but keeps its drift.
func (w *World) ZeroAngularVelocity(id BodyID) bool {
	return w.withBody(id, func(e *bodyEntry) {
		e.body.SetAngularVelocity(0)
	})
}

// Velocity returns linear and angular velocity.
func (w *World) Velocity(id BodyID) (cp.Vector, float64, bool) {
	e := w.bodies.get(id)
	if e == nil {
		return cp.Vector{}, 0, false
	}
	return e.body.Velocity(), e.body.AngularVelocity(), true
}

// Speed returns the magnitude of the body's linear velocity in units per
// second.
func (w *World) Speed(id BodyID) (float64, bool) {
	v, _, ok := w.Velocity(id)
	if !ok {
		return 0, false
	}
	return v.Length(), true
}

// Mass returns the body's mass, or 0 for unknown ids.
func (w *World) Mass(id BodyID) float64 {
	e := w.bodies.get(id)
	if e == nil {
		return 0
	}
	return e.body.Mass()
}

// Moment returns the body's moment of inertia, or 0 for unknown ids.
func (w *World) Moment(id BodyID) float64 {
	e := w.bodies.get(id)
	if e == nil {
		return 0
	}
	return e.body.Moment()
}

// ApplyForce pushes the body through its center of mass for the next step.
func (w *World) ApplyForce(id BodyID, force cp.Vector) bool {
	return w.withBody(id, func(e *bodyEntry) {
		e.body.ApplyForceAtWorldPoint(force, e.body.Position())
	})
}

// ApplyTorque adds torque for the next step.
func (w *World) ApplyTorque(id BodyID, torque float64) bool {
	return w.withBody(id, func(e *bodyEntry) {
		e.body.SetTorque(e.body.Torque() + torque)
	})
}

// withBody runs op against a live body, deferring it while stepping.
func (w *World) withBody(id BodyID, op func(e *bodyEntry)) bool {
	if w.bodies.get(id) == nil {
		return false
	}
	w.whenUnlocked(func() {
		if e := w.bodies.get(id); e != nil {
			op(e)
		}
	})
	return true
}

// SetGravity sets the vertical gravity component in simulation units.
func (w *World) SetGravity(y float64) {
	w.whenUnlocked(func() {
		w.gravityY = y
		w.applyGravity()
	})
}

// Gravity returns the vertical gravity component in simulation units.
func (w *World) Gravity() float64 {
	return w.gravityY
}

func (w *World) applyGravity() {
	w.space.SetGravity(cp.Vector{X: 0, Y: w.gravityY * w.cfg.Physics.GravityScale})
}

// AddConstraint ties the body to a fixed world point. A stiffness of 1 or
// more is a rigid pivot; lower values give a zero-length spring.
func (w *World) AddConstraint(id BodyID, anchor cp.Vector, stiffness float64) bool {
	return w.withBody(id, func(e *bodyEntry) {
		var c *cp.Constraint
		if stiffness >= 1 {
			c = cp.NewPivotJoint(e.body, w.space.StaticBody, anchor)
		} else {
			mass := e.body.Mass()
			c = cp.NewDampedSpring(e.body, w.space.StaticBody, e.body.WorldToLocal(anchor), anchor,
				0, stiffness*mass*springStiffnessScale, mass*springDampingScale)
		}
		w.attachConstraint(e, c)
	})
}

// Lock pins the body where it is and stops it rotating. The body stays
// dynamic so it still collides and reports contacts.
func (w *World) Lock(id BodyID) bool {
	return w.withBody(id, func(e *bodyEntry) {
		angle := e.body.Angle()
		w.attachConstraint(e, cp.NewPivotJoint(e.body, w.space.StaticBody, e.body.Position()))
		w.attachConstraint(e, cp.NewRotaryLimitJoint(w.space.StaticBody, e.body, angle, angle))
		e.body.SetVelocity(0, 0)
		e.body.SetAngularVelocity(0)
	})
}

func (w *World) attachConstraint(e *bodyEntry, c *cp.Constraint) {
	w.space.AddConstraint(c)
	e.constraints = append(e.constraints, c)
	w.constraints++
}

// RemoveConstraints detaches every constraint from the body.
func (w *World) RemoveConstraints(id BodyID) bool {
	return w.withBody(id, func(e *bodyEntry) {
		for _, c := range e.constraints {
			w.space.RemoveConstraint(c)
			w.constraints--
		}
		e.constraints = nil
	})
}

// ConstraintCount returns the number of live constraints.
func (w *World) ConstraintCount() int {
	return w.constraints
}

// buildBoundaries adds four static boxes just outside the stage edges.
func (w *World) buildBoundaries() {
	hw := w.cfg.Stage.Width / 2
	hh := w.cfg.Stage.Height / 2
	size := w.cfg.Stage.WallSize

	boxes := []cp.BB{
		{L: -hw - size, B: -hh - size, R: hw + size, T: -hh}, // ground
		{L: -hw - size, B: hh, R: hw + size, T: hh + size},   // top
		{L: -hw - size, B: -hh - size, R: -hw, T: hh + size}, // left
		{L: hw, B: -hh - size, R: hw + size, T: hh + size},   // right
	}
	for _, bb := range boxes {
		shape := cp.NewBox2(w.space.StaticBody, bb, 0)
		shape.SetFriction(1)
		shape.SetElasticity(1)
		shape.SetCollisionType(collisionTypeBoundary)
		w.space.AddShape(shape)
		w.walls = append(w.walls, shape)
	}
}

func (w *World) setupHandlers() {
	targets := w.space.NewCollisionHandler(collisionTypeTarget, collisionTypeTarget)
	targets.UserData = w
	targets.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		world, ok := userData.(*World)
		if !ok || world == nil {
			return true
		}
		shapeA, shapeB := arb.Shapes()
		world.report(world.shapeToBody[shapeA], world.shapeToBody[shapeB])
		return true
	}

	walls := w.space.NewCollisionHandler(collisionTypeTarget, collisionTypeBoundary)
	walls.UserData = w
	walls.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		world, ok := userData.(*World)
		if !ok || world == nil {
			return true
		}
		shapeA, shapeB := arb.Shapes()
		id, ok := world.shapeToBody[shapeA]
		if !ok {
			id = world.shapeToBody[shapeB]
		}
		world.report(id, 0)
		return true
	}
}

func (w *World) report(a, b BodyID) {
	if w.onCollision == nil || (!a.Valid() && !b.Valid()) {
		return
	}
	key := contactKey{a: a, b: b}
	if b < a {
		key = contactKey{a: b, b: a}
	}
	if _, dup := w.seen[key]; dup {
		return
	}
	w.seen[key] = struct{}{}
	w.onCollision(a, b)
}
