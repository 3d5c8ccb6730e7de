package scene

import (
	"github.com/milk9111/physync/config"
	"github.com/milk9111/physync/physics"
	"go.uber.org/zap"
)

// NewPhysics builds a physics system over the stage, keeping physics state
// on the stage's entities, and subscribes it to the stage's events.
func NewPhysics(stage *Stage, cfg config.Config, logger *zap.Logger) *physics.System {
	sys := physics.NewSystem(stage, cfg,
		physics.WithLogger(logger),
		physics.WithStateStore(stage.PhysicsStates()))
	Bind(stage, sys)
	return sys
}

// Bind routes the stage's costume, clone, removal and stop events into sys.
func Bind(stage *Stage, sys *physics.System) {
	stage.OnCostumeChanged(sys.OnCostumeChanged)
	stage.OnTargetCreated(sys.OnTargetCreated)
	stage.OnTargetRemoved(sys.OnTargetRemoved)
	stage.OnGlobalStop(sys.OnGlobalStop)
}
