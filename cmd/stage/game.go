package main

import (
	"fmt"
	"image/color"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/physync/config"
	"github.com/milk9111/physync/ecs"
	"github.com/milk9111/physync/ecs/system"
	"github.com/milk9111/physync/hats"
	"github.com/milk9111/physync/physics"
	"github.com/milk9111/physync/prefabs"
	"github.com/milk9111/physync/scene"
	"go.uber.org/zap"
)

var gravitySteps = []float64{100, 0, -50, 300}

type Game struct {
	frames int

	log     *zap.Logger
	view    system.StageView
	stage   *scene.Stage
	sys     *physics.System
	sched   *ecs.Scheduler
	drag    *system.DragSystem
	physics *system.PhysicsSystem
	render  *system.RenderSystem
	overlay *system.PhysicsDebugOverlay

	background color.Color
	gravity    int
	stopWatch  func()
}

func NewGame(cfg config.Config, logger *zap.Logger, sceneName, configPath string, watch, debug bool) (*Game, error) {
	spec, err := prefabs.LoadSceneSpec(sceneName)
	if err != nil {
		return nil, err
	}

	view := system.StageView{Width: cfg.Stage.Width, Height: cfg.Stage.Height}
	stage := scene.NewStage(logger)
	sys := scene.NewPhysics(stage, cfg, logger)
	builder := prefabs.NewBuilder(stage, sys, logger)
	if _, err := builder.Build(spec); err != nil {
		return nil, err
	}

	g := &Game{
		log:        logger,
		view:       view,
		stage:      stage,
		sys:        sys,
		drag:       system.NewDragSystem(stage, view, nil),
		physics:    system.NewPhysicsSystem(stage, sys, logger),
		render:     system.NewRenderSystem(stage, view),
		overlay:    system.NewPhysicsDebugOverlay(view),
		background: color.NRGBA{R: 0x1e, G: 0x1e, B: 0x2e, A: 0xff},
	}
	if spec.Background != nil && spec.Background.Color != nil {
		g.background = spec.Background.Color
	}
	if debug {
		g.overlay.Toggle()
	}

	var systems []ecs.System
	if watch {
		dirs := []string{"prefabs", filepath.Join("prefabs", "scripts")}
		watchers, stop, err := system.Watch(configPath, dirs, sys, builder, logger)
		if err != nil {
			return nil, err
		}
		g.stopWatch = stop
		systems = append(systems, watchers...)
	}
	systems = append(systems, g.drag, g.physics, system.NewHatSystem(stage, hats.NewRuntime(sys, logger), logger))
	g.sched = ecs.NewScheduler(systems...)
	return g, nil
}

func (g *Game) Close() {
	if g.stopWatch != nil {
		g.stopWatch()
		g.stopWatch = nil
	}
}

func (g *Game) Update() error {
	g.frames++
	g.handleKeys()
	g.sched.Update(g.stage.World())
	return nil
}

func (g *Game) handleKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyO):
		g.overlay.Toggle()
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		g.stage.Stop()
	case inpututil.IsKeyJustPressed(ebiten.KeyG):
		g.gravity = (g.gravity + 1) % len(gravitySteps)
		g.sys.SetGravity(gravitySteps[g.gravity])
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		for _, sp := range g.stage.Sprites() {
			g.sys.EnablePhysics(sp.ID())
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		if sp := g.spriteUnderCursor(); sp != nil {
			if _, err := g.stage.Clone(sp.ID()); err != nil {
				g.log.Warn("clone failed", zap.Error(err))
			}
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		if sp := g.spriteUnderCursor(); sp != nil {
			g.sys.Unpin(sp.ID())
			if !g.sys.LockToStage(sp.ID()) {
				g.log.Debug("lock ignored", zap.String("sprite", sp.Name()))
			}
		}
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		if sp := g.spriteUnderCursor(); sp != nil {
			g.sys.Push(sp.ID(), 5)
		}
	}
}

func (g *Game) spriteUnderCursor() *scene.Sprite {
	cx, cy := ebiten.CursorPosition()
	x, y := g.view.ToStage(float64(cx), float64(cy))
	sprites := g.stage.Sprites()
	for i := len(sprites) - 1; i >= 0; i-- {
		if sprites[i].Bounds().Contains(x, y) {
			return sprites[i]
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.background)
	g.render.Draw(g.stage.World(), screen)
	g.overlay.Draw(g.physics.Space(), screen)

	ebitenutil.DebugPrint(screen, fmt.Sprintf("Frames: %d    FPS: %.2f    Gravity: %g    Bodies: %d\n[O]utlines [S]top [G]ravity [P]hysics [C]lone [L]ock [Space] push",
		g.frames, ebiten.ActualFPS(), g.sys.Gravity(), g.sys.World().BodyCount()))
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return g.view.Width, g.view.Height
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
