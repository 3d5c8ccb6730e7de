package system

import (
	"testing"

	"github.com/milk9111/physync/config"
	"github.com/milk9111/physync/ecs"
	"github.com/milk9111/physync/ecs/component"
	"github.com/milk9111/physync/physics"
	"github.com/milk9111/physync/scene"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testView = StageView{Width: 480, Height: 360}

type testRig struct {
	stage   *scene.Stage
	sys     *physics.System
	physics *PhysicsSystem
}

func newRig(t *testing.T, logger *zap.Logger, mutate ...func(*config.Config)) *testRig {
	t.Helper()
	cfg := config.Default()
	cfg.Physics.Gravity = 0
	for _, m := range mutate {
		m(&cfg)
	}
	require.NoError(t, cfg.Validate())
	stage := scene.NewStage(logger)
	sys := scene.NewPhysics(stage, cfg, logger)
	return &testRig{stage: stage, sys: sys, physics: NewPhysicsSystem(stage, sys, logger)}
}

func (r *testRig) box(t *testing.T, name string, x, y, size float64, enabled bool) *scene.Sprite {
	t.Helper()
	costume, err := scene.ShapeCostume(scene.ShapeBox, int(size), int(size))
	require.NoError(t, err)
	sp := r.stage.AddSprite(name, costume, x, y, 90)
	if enabled {
		require.True(t, r.sys.EnablePhysics(sp.ID()))
	}
	return sp
}

func (r *testRig) hat(t *testing.T, sp *scene.Sprite, source string) {
	t.Helper()
	require.NoError(t, ecs.Add(r.stage.World(), sp.Entity(), component.HatScriptComponent.Kind(), &component.HatScript{Path: sp.Name() + ".tengo", Source: source}))
}
