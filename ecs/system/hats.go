package system

import (
	"errors"

	"github.com/milk9111/physync/ecs"
	"github.com/milk9111/physync/ecs/component"
	"github.com/milk9111/physync/hats"
	"github.com/milk9111/physync/physics"
	"github.com/milk9111/physync/scene"
	"go.uber.org/zap"
)

const stageSubjectName = "stage"

// HatSystem keeps each sprite's HatScript loaded in the hat runtime and
// runs the "when this sprite collides" hats for the frame's collisions.
type HatSystem struct {
	stage   *scene.Stage
	runtime *hats.Runtime
	log     *zap.Logger

	loaded map[physics.TargetID]struct{}
	// failed remembers the source that did not compile so the error is
	// logged once per edit instead of every frame.
	failed map[physics.TargetID]string
}

func NewHatSystem(stage *scene.Stage, runtime *hats.Runtime, logger *zap.Logger) *HatSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &HatSystem{
		stage:   stage,
		runtime: runtime,
		log:     logger.Named("hat_system"),
		loaded:  make(map[physics.TargetID]struct{}),
		failed:  make(map[physics.TargetID]string),
	}
	stage.OnTargetRemoved(h.unload)
	return h
}

func (h *HatSystem) Update(w *ecs.World) {
	if h == nil || h.runtime == nil || w == nil {
		return
	}

	if stops := w.Events().DrainType(ecs.EventStop); len(stops) > 0 {
		h.runtime.Reset()
	}

	h.sync(w)

	for _, evt := range w.Events().DrainType(ecs.EventCollision) {
		ce, ok := evt.Data.(ecs.CollisionEvent)
		if !ok {
			continue
		}
		a, ok := h.subject(w, ce.A)
		if !ok {
			continue
		}
		if !ce.B.Valid() {
			h.fire(a, hats.Subject{ID: physics.BoundaryTarget, Name: stageSubjectName})
			continue
		}
		b, ok := h.subject(w, ce.B)
		if !ok {
			continue
		}
		h.fire(a, b)
		h.fire(b, a)
	}
}

// sync loads new or edited hats and unloads hats whose component is gone.
func (h *HatSystem) sync(w *ecs.World) {
	seen := make(map[physics.TargetID]struct{}, len(h.loaded))
	ecs.ForEach2(w, component.IdentityComponent.Kind(), component.HatScriptComponent.Kind(), func(e ecs.Entity, ident *component.Identity, hat *component.HatScript) {
		seen[ident.ID] = struct{}{}
		if src, ok := h.failed[ident.ID]; ok && src == hat.Source {
			return
		}
		if err := h.runtime.Load(ident.ID, ident.Name, hat.Source); err != nil {
			h.failed[ident.ID] = hat.Source
			h.runtime.Unload(ident.ID)
			h.log.Warn("hat failed to compile",
				zap.String("sprite", ident.Name),
				zap.String("path", hat.Path),
				zap.Error(err))
			return
		}
		delete(h.failed, ident.ID)
		h.loaded[ident.ID] = struct{}{}
	})
	for id := range h.loaded {
		if _, ok := seen[id]; !ok {
			h.unload(id)
		}
	}
}

func (h *HatSystem) unload(id physics.TargetID) {
	h.runtime.Unload(id)
	delete(h.loaded, id)
	delete(h.failed, id)
}

func (h *HatSystem) subject(w *ecs.World, e ecs.Entity) (hats.Subject, bool) {
	if !ecs.IsAlive(w, e) {
		return hats.Subject{}, false
	}
	ident, ok := ecs.Get(w, e, component.IdentityComponent.Kind())
	if !ok {
		return hats.Subject{}, false
	}
	return hats.Subject{ID: ident.ID, Name: ident.Name}, true
}

func (h *HatSystem) fire(self, other hats.Subject) {
	if !h.runtime.Loaded(self.ID) {
		return
	}
	if err := h.runtime.Fire(self, other); err != nil && !errors.Is(err, hats.ErrNoScript) {
		h.log.Warn("hat failed",
			zap.String("sprite", self.Name),
			zap.String("other", other.Name),
			zap.Error(err))
	}
}
