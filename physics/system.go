package physics

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physync/common"
	"github.com/milk9111/physync/config"
	"go.uber.org/zap"
)

// System is the physics extension as seen by scripts and the host. It owns
// one World and drives it once per frame through Update.
type System struct {
	cfg       config.Config
	log       *zap.Logger
	scene     Scene
	states    StateStore
	world     *World
	engine    *SyncEngine
	lifecycle *LifecycleController
}

type Option func(*System)

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *System) {
		if logger != nil {
			s.log = logger
		}
	}
}

// WithStateStore lets the host keep physics state in its own per-target
// slot. The default is an in-memory StateTable.
func WithStateStore(store StateStore) Option {
	return func(s *System) {
		if store != nil {
			s.states = store
		}
	}
}

func NewSystem(scene Scene, cfg config.Config, opts ...Option) *System {
	s := &System{
		cfg:   cfg,
		log:   zap.NewNop(),
		scene: scene,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.states == nil {
		s.states = NewStateTable()
	}
	s.world = NewWorld(cfg, s.log)
	s.engine = NewSyncEngine(scene, s.states, s.world, cfg.Physics, s.log)
	s.lifecycle = NewLifecycleController(s.states, s.world, s.engine, cfg.Physics, s.log)
	return s
}

func (s *System) World() *World {
	return s.world
}

func (s *System) Engine() *SyncEngine {
	return s.engine
}

func (s *System) Lifecycle() *LifecycleController {
	return s.lifecycle
}

func (s *System) States() StateStore {
	return s.states
}

func (s *System) Config() config.Config {
	return s.cfg
}

// SetConfig applies a reloaded configuration. Gravity set by scripts is
// kept; everything else takes the new values.
func (s *System) SetConfig(cfg config.Config) {
	gravity := s.world.Gravity()
	s.cfg = cfg
	s.world.SetConfig(cfg)
	s.world.SetGravity(gravity)
	s.engine.SetConfig(cfg.Physics)
	s.lifecycle.SetConfig(cfg.Physics)
	s.log.Info("physics config applied",
		zap.Float64("fixed_step_ms", cfg.Physics.FixedStepMs),
		zap.Int("substeps", cfg.Physics.Substeps),
		zap.String("clone_policy", string(cfg.Physics.ClonePolicy)))
}

// Update runs one frame.
func (s *System) Update() FrameStats {
	return s.engine.Tick()
}

// OnCollision registers a collision listener.
func (s *System) OnCollision(fn CollisionFunc) {
	s.engine.OnCollision(fn)
}

// Host events.

func (s *System) OnCostumeChanged(t Target) {
	s.lifecycle.OnCostumeChanged(t)
}

func (s *System) OnTargetCreated(clone, source Target) {
	s.lifecycle.OnEntityCreated(clone, source)
}

func (s *System) OnTargetRemoved(id TargetID) {
	s.lifecycle.OnEntityRemoved(id)
}

func (s *System) OnGlobalStop() {
	s.lifecycle.OnGlobalStop()
}

// Script commands. Each returns false when the target is unknown or not
// simulated, in which case nothing happens.

func (s *System) EnablePhysics(id TargetID) bool {
	t, ok := s.scene.Target(id)
	if !ok {
		return false
	}
	s.lifecycle.Enable(t)
	return true
}

func (s *System) DisablePhysics(id TargetID) bool {
	t, ok := s.scene.Target(id)
	if !ok {
		return false
	}
	s.lifecycle.Disable(t)
	return true
}

// IsEnabled reports whether the target has physics turned on.
func (s *System) IsEnabled(id TargetID) bool {
	st, ok := s.states.Lookup(id)
	return ok && st.Enabled
}

func (s *System) body(id TargetID) (BodyID, bool) {
	st, ok := s.states.Lookup(id)
	if !ok || !st.Simulated() || !s.world.HasBody(st.Body) {
		return 0, false
	}
	return st.Body, true
}

// ApplyForce pushes the target by force in stage units. The force is scaled
// by the body's mass so pushes feel the same for every size.
func (s *System) ApplyForce(id TargetID, force cp.Vector) bool {
	body, ok := s.body(id)
	if !ok {
		return false
	}
	scale := s.world.Mass(body) * s.cfg.Physics.ForceScale
	return s.world.ApplyForce(body, force.Mult(scale))
}

// Push applies force along the direction the target is facing.
func (s *System) Push(id TargetID, force float64) bool {
	t, ok := s.scene.Target(id)
	if !ok {
		return false
	}
	rad := common.ToSimAngle(t.Direction())
	return s.ApplyForce(id, cp.Vector{X: force * math.Cos(rad), Y: force * math.Sin(rad)})
}

// ApplyTorque turns the body counter-clockwise for positive torque. It is
// scaled by the body's moment of inertia.
func (s *System) ApplyTorque(id TargetID, torque float64) bool {
	body, ok := s.body(id)
	if !ok {
		return false
	}
	return s.world.ApplyTorque(body, torque*s.world.Moment(body)*s.cfg.Physics.TorqueScale)
}

// Spin turns the target clockwise, as seen on stage, for positive force.
func (s *System) Spin(id TargetID, force float64) bool {
	return s.ApplyTorque(id, -force)
}

// SetGravity sets gravity in stage units: 100 pulls down at the default
// strength, 0 turns gravity off and negative values pull up.
func (s *System) SetGravity(value float64) {
	s.world.SetGravity(-value / 100)
}

// Gravity returns gravity in the units SetGravity takes.
func (s *System) Gravity() float64 {
	return -s.world.Gravity() * 100
}

// PinToFixedPoint hinges the target to the stage at its current position.
// It can still rotate around the pin.
func (s *System) PinToFixedPoint(id TargetID) bool {
	body, ok := s.body(id)
	if !ok {
		return false
	}
	x, y, _, _ := s.world.Pose(body)
	return s.world.AddConstraint(body, cp.Vector{X: x, Y: y}, s.cfg.Physics.PinStiffness)
}

// LockToStage fixes the target in place, position and rotation.
func (s *System) LockToStage(id TargetID) bool {
	body, ok := s.body(id)
	if !ok {
		return false
	}
	return s.world.Lock(body)
}

// Unpin removes every pin and lock from the target.
func (s *System) Unpin(id TargetID) bool {
	body, ok := s.body(id)
	if !ok {
		return false
	}
	return s.world.RemoveConstraints(body)
}

// QuerySpeed returns the target's speed in stage units per frame, rounded
// to one decimal. Targets without a body report 0.
func (s *System) QuerySpeed(id TargetID) float64 {
	body, ok := s.body(id)
	if !ok {
		return 0
	}
	speed, _ := s.world.Speed(body)
	return common.RoundTo(speed*s.cfg.Physics.FixedStepMs/1000, 1)
}
