package scene

import (
	"github.com/milk9111/physync/ecs"
	"github.com/milk9111/physync/ecs/component"
	"github.com/milk9111/physync/physics"
)

// stateStore keeps physics state as a PhysicsState component, so the state
// dies with its entity. Ids that are not on stage get a detached entry that
// physics garbage collection removes at the next frame.
type stateStore struct {
	stage    *Stage
	detached map[physics.TargetID]*physics.EntityPhysicsState
}

var _ physics.StateStore = (*stateStore)(nil)

func newStateStore(stage *Stage) *stateStore {
	return &stateStore{stage: stage, detached: make(map[physics.TargetID]*physics.EntityPhysicsState)}
}

func (s *stateStore) State(id physics.TargetID) *physics.EntityPhysicsState {
	if st, ok := s.Lookup(id); ok {
		return st
	}
	st := &physics.EntityPhysicsState{}
	e, ok := s.stage.Entity(id)
	if !ok {
		s.detached[id] = st
		return st
	}
	_ = ecs.Add(s.stage.world, e, component.PhysicsStateComponent.Kind(), st)
	return st
}

func (s *stateStore) Lookup(id physics.TargetID) (*physics.EntityPhysicsState, bool) {
	if e, ok := s.stage.Entity(id); ok {
		return ecs.Get(s.stage.world, e, component.PhysicsStateComponent.Kind())
	}
	st, ok := s.detached[id]
	return st, ok
}

func (s *stateStore) Delete(id physics.TargetID) {
	if e, ok := s.stage.Entity(id); ok {
		ecs.Remove(s.stage.world, e, component.PhysicsStateComponent.Kind())
	}
	delete(s.detached, id)
}

func (s *stateStore) Each(fn func(id physics.TargetID, st *physics.EntityPhysicsState)) {
	w := s.stage.world
	ecs.ForEach2(w, component.IdentityComponent.Kind(), component.PhysicsStateComponent.Kind(),
		func(_ ecs.Entity, ident *component.Identity, st *physics.EntityPhysicsState) {
			fn(ident.ID, st)
		})
	for id, st := range s.detached {
		fn(id, st)
	}
}
