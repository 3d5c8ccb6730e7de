package system

import (
	"github.com/milk9111/physync/config"
	"github.com/milk9111/physync/ecs"
	"github.com/milk9111/physync/physics"
	"go.uber.org/zap"
)

// ConfigSystem applies configs reloaded in the background on the frame
// thread. It never blocks.
type ConfigSystem struct {
	configs <-chan config.Config
	errs    <-chan error
	sys     *physics.System
	log     *zap.Logger
	applied int
}

func NewConfigSystem(configs <-chan config.Config, errs <-chan error, sys *physics.System, logger *zap.Logger) *ConfigSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigSystem{
		configs: configs,
		errs:    errs,
		sys:     sys,
		log:     logger.Named("config_system"),
	}
}

// Applied returns how many reloads were applied.
func (c *ConfigSystem) Applied() int {
	if c == nil {
		return 0
	}
	return c.applied
}

func (c *ConfigSystem) Update(w *ecs.World) {
	if c == nil || c.sys == nil {
		return
	}
	for {
		select {
		case cfg, ok := <-c.configs:
			if !ok {
				c.configs = nil
				continue
			}
			c.sys.SetConfig(cfg)
			c.applied++
		case err, ok := <-c.errs:
			if !ok {
				c.errs = nil
				continue
			}
			c.log.Warn("config reload failed", zap.Error(err))
		default:
			return
		}
	}
}
