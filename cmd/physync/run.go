package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/milk9111/physync/common"
	"github.com/milk9111/physync/config"
	"github.com/milk9111/physync/ecs"
	"github.com/milk9111/physync/ecs/system"
	"github.com/milk9111/physync/hats"
	"github.com/milk9111/physync/physics"
	"github.com/milk9111/physync/prefabs"
	"github.com/milk9111/physync/scene"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type runOptions struct {
	frames   int
	stopAt   int
	watch    bool
	realtime bool
	output   string
}

func newRunCmd() *cobra.Command {
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "simulate a scene and print the final sprite poses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			r, err := newRunner(cfg, logger, args[0])
			if err != nil {
				return err
			}
			if opts.watch {
				closeWatch, err := r.watch(configPath)
				if err != nil {
					return err
				}
				defer closeWatch()
				opts.realtime = true
			}
			if err := r.run(ctx, opts); err != nil {
				return err
			}
			return r.report(cmd.OutOrStdout(), opts.output)
		},
	}
	cmd.Flags().IntVar(&opts.frames, "frames", 90, "frames to simulate, 0 runs until interrupted")
	cmd.Flags().IntVar(&opts.stopAt, "stop-at", 0, "press stop at this frame")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "hot reload config, prefabs and scripts")
	cmd.Flags().BoolVar(&opts.realtime, "realtime", false, "pace frames at the fixed step")
	cmd.Flags().StringVar(&opts.output, "output", "table", "report format: table or yaml")
	return cmd
}

// runner is one headless stage with its systems.
type runner struct {
	cfg     config.Config
	log     *zap.Logger
	stage   *scene.Stage
	sys     *physics.System
	physics *system.PhysicsSystem
	builder *prefabs.Builder
	sched   *ecs.Scheduler
	scene   prefabs.SceneSpec
}

func newRunner(cfg config.Config, logger *zap.Logger, scenePath string) (*runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	spec, err := prefabs.LoadSceneSpec(scenePath)
	if err != nil {
		return nil, err
	}

	stage := scene.NewStage(logger)
	sys := scene.NewPhysics(stage, cfg, logger)
	r := &runner{
		cfg:     cfg,
		log:     logger,
		stage:   stage,
		sys:     sys,
		physics: system.NewPhysicsSystem(stage, sys, logger),
		builder: prefabs.NewBuilder(stage, sys, logger),
		scene:   spec,
	}
	hatSys := system.NewHatSystem(stage, hats.NewRuntime(sys, logger), logger)
	r.sched = ecs.NewScheduler(r.physics, hatSys)

	if _, err := r.builder.Build(spec); err != nil {
		return nil, err
	}
	return r, nil
}

// watch puts the hot reload systems in front of physics so reloads land
// before the next step.
func (r *runner) watch(cfgPath string) (func(), error) {
	dirs := []string{"prefabs", filepath.Join("prefabs", "scripts")}
	systems, stop, err := system.Watch(cfgPath, dirs, r.sys, r.builder, r.log)
	if err != nil {
		return nil, err
	}
	sched := ecs.NewScheduler(systems...)
	for _, s := range r.sched.Systems() {
		sched.Add(s)
	}
	r.sched = sched
	return stop, nil
}

func (r *runner) run(ctx context.Context, opts runOptions) error {
	var tick <-chan time.Time
	if opts.realtime {
		ticker := time.NewTicker(time.Duration(r.cfg.Physics.FixedStepMs * float64(time.Millisecond)))
		defer ticker.Stop()
		tick = ticker.C
	}

	w := r.stage.World()
	for frame := 1; opts.frames <= 0 || frame <= opts.frames; frame++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return nil
		}
		if opts.stopAt > 0 && frame == opts.stopAt {
			r.stage.Stop()
		}
		r.sched.Update(w)
	}
	return nil
}

type spriteReport struct {
	Name      string  `yaml:"name"`
	ID        string  `yaml:"id"`
	Clone     bool    `yaml:"clone"`
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	Direction float64 `yaml:"direction"`
	Physics   bool    `yaml:"physics"`
	Speed     float64 `yaml:"speed"`
}

type sceneReport struct {
	Scene   string         `yaml:"scene"`
	Frames  int            `yaml:"frames"`
	Gravity float64        `yaml:"gravity"`
	Bodies  int            `yaml:"bodies"`
	Sprites []spriteReport `yaml:"sprites"`
}

func (r *runner) snapshot() sceneReport {
	rep := sceneReport{
		Scene:   r.scene.Name,
		Frames:  r.physics.Frames(),
		Gravity: r.sys.Gravity(),
		Bodies:  r.sys.World().BodyCount(),
	}
	for _, sp := range r.stage.Sprites() {
		x, y := sp.Position()
		rep.Sprites = append(rep.Sprites, spriteReport{
			Name:      sp.Name(),
			ID:        string(sp.ID()),
			Clone:     sp.IsClone(),
			X:         common.RoundTo(x, 2),
			Y:         common.RoundTo(y, 2),
			Direction: sp.Direction(),
			Physics:   r.sys.IsEnabled(sp.ID()),
			Speed:     r.sys.QuerySpeed(sp.ID()),
		})
	}
	return rep
}

func (r *runner) report(out io.Writer, format string) error {
	rep := r.snapshot()
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(rep)
	case "table", "":
		fmt.Fprintf(out, "scene %s after %d frames, gravity %g, %d bodies\n", rep.Scene, rep.Frames, rep.Gravity, rep.Bodies)
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tCLONE\tX\tY\tDIR\tPHYSICS\tSPEED")
		for _, s := range rep.Sprites {
			fmt.Fprintf(tw, "%s\t%v\t%.2f\t%.2f\t%g\t%v\t%.1f\n", s.Name, s.Clone, s.X, s.Y, s.Direction, s.Physics, s.Speed)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
