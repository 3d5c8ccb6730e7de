package system

import (
	"github.com/milk9111/physync/ecs"
	"go.uber.org/zap"
)

// Reloader applies an edited file. prefabs.Builder implements it.
type Reloader interface {
	Reload(path string) (int, error)
}

// ReloadSystem hands file change notifications to a Reloader on the frame
// thread.
type ReloadSystem struct {
	changes  <-chan string
	errs     <-chan error
	reloader Reloader
	log      *zap.Logger
}

func NewReloadSystem(changes <-chan string, errs <-chan error, reloader Reloader, logger *zap.Logger) *ReloadSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReloadSystem{
		changes:  changes,
		errs:     errs,
		reloader: reloader,
		log:      logger.Named("reload_system"),
	}
}

func (r *ReloadSystem) Update(w *ecs.World) {
	if r == nil || r.reloader == nil {
		return
	}
	for {
		select {
		case path, ok := <-r.changes:
			if !ok {
				r.changes = nil
				continue
			}
			if _, err := r.reloader.Reload(path); err != nil {
				r.log.Warn("reload failed", zap.String("path", path), zap.Error(err))
			}
		case err, ok := <-r.errs:
			if !ok {
				r.errs = nil
				continue
			}
			r.log.Warn("file watch failed", zap.Error(err))
		default:
			return
		}
	}
}
