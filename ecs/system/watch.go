package system

import (
	"fmt"
	"os"

	"github.com/milk9111/physync/config"
	"github.com/milk9111/physync/ecs"
	"github.com/milk9111/physync/physics"
	"github.com/milk9111/physync/prefabs"
	"go.uber.org/zap"
)

// Watch starts hot reload for the config file, when one is given, and for
// whichever of dirs exist. It returns the systems that apply the changes,
// to be scheduled ahead of physics, and a func that stops the watchers.
func Watch(configPath string, dirs []string, sys *physics.System, reloader Reloader, logger *zap.Logger) ([]ecs.System, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var closers []func() error
	stop := func() {
		for _, c := range closers {
			_ = c()
		}
	}
	var systems []ecs.System

	if configPath != "" {
		cw, err := config.NewWatcher(configPath, config.Default())
		if err != nil {
			return nil, nil, fmt.Errorf("watch %s: %w", configPath, err)
		}
		closers = append(closers, cw.Close)
		systems = append(systems, NewConfigSystem(cw.Configs, cw.Errors, sys, logger))
	}

	var existing []string
	for _, dir := range dirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			existing = append(existing, dir)
		}
	}
	if len(existing) > 0 && reloader != nil {
		pw, err := prefabs.NewWatcher(existing...)
		if err != nil {
			stop()
			return nil, nil, fmt.Errorf("watch prefabs: %w", err)
		}
		closers = append(closers, pw.Close)
		systems = append(systems, NewReloadSystem(pw.Events, pw.Errors, reloader, logger))
	}

	logger.Info("watching for changes", zap.String("config", configPath), zap.Strings("dirs", existing))
	return systems, stop, nil
}
