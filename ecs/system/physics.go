package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physync/ecs"
	"github.com/milk9111/physync/physics"
	"github.com/milk9111/physync/scene"
	"go.uber.org/zap"
)

// PhysicsSystem runs one physics frame per scheduler update and turns the
// frame's target contacts into ECS collision events.
type PhysicsSystem struct {
	stage *scene.Stage
	sys   *physics.System
	log   *zap.Logger

	frames int
	last   physics.FrameStats
}

func NewPhysicsSystem(stage *scene.Stage, sys *physics.System, logger *zap.Logger) *PhysicsSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	ps := &PhysicsSystem{
		stage: stage,
		sys:   sys,
		log:   logger.Named("physics_system"),
	}
	if sys != nil {
		sys.OnCollision(ps.forward)
	}
	return ps
}

// Physics returns the wrapped physics system.
func (ps *PhysicsSystem) Physics() *physics.System {
	if ps == nil {
		return nil
	}
	return ps.sys
}

// Space returns the Chipmunk space for debug drawing.
func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil || ps.sys == nil {
		return nil
	}
	return ps.sys.World().Space()
}

// Frames returns the number of frames run so far.
func (ps *PhysicsSystem) Frames() int {
	if ps == nil {
		return 0
	}
	return ps.frames
}

// LastStats returns the stats of the most recent frame.
func (ps *PhysicsSystem) LastStats() physics.FrameStats {
	if ps == nil {
		return physics.FrameStats{}
	}
	return ps.last
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || ps.sys == nil || w == nil {
		return
	}
	ps.last = ps.sys.Update()
	ps.frames++
}

// forward resolves a contact to entities and queues it. Boundary contacts
// carry a zero B.
func (ps *PhysicsSystem) forward(a, b physics.TargetID) {
	ea, ok := ps.stage.Entity(a)
	if !ok {
		return
	}
	var eb ecs.Entity
	if b != physics.BoundaryTarget {
		if eb, ok = ps.stage.Entity(b); !ok {
			return
		}
	}
	ps.stage.World().Events().Push(ecs.Event{
		Type: ecs.EventCollision,
		Data: ecs.CollisionEvent{A: ea, B: eb},
	})
}
