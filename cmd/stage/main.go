package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/physync/config"
)

func main() {
	sceneName := flag.String("scene", "playground", "scene file or embedded scene name")
	configPath := flag.String("config", "", "physics config file (yaml)")
	watch := flag.Bool("watch", false, "hot reload config, prefabs and scripts")
	debug := flag.Bool("debug", false, "start with physics outlines shown")
	scale := flag.Float64("scale", 2, "window scale")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	logger, err := config.NewLogger(cfg.LogLevel, true)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	game, err := NewGame(cfg, logger, *sceneName, *configPath, *watch, *debug)
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(int(cfg.Stage.Width*(*scale)), int(cfg.Stage.Height*(*scale)))
	ebiten.SetWindowTitle("physync stage")
	ebiten.SetTPS(int(1000/cfg.Physics.FixedStepMs + 0.5))

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
