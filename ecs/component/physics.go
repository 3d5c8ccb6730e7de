package component

import "github.com/milk9111/physync/physics"

// PhysicsState is the per-target physics slot read and written by the
// physics engine through the stage's state store.
type PhysicsState = physics.EntityPhysicsState

var PhysicsStateComponent = NewComponent[PhysicsState]()
