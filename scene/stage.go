package scene

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physync/ecs"
	"github.com/milk9111/physync/ecs/component"
	"github.com/milk9111/physync/physics"
	"go.uber.org/zap"
)

var ErrUnknownTarget = errors.New("scene: unknown target")

// Stage is the scene graph: every sprite is an ECS entity carrying an
// Identity, a Transform and a Costume. Stage implements physics.Scene and
// publishes the costume, clone, removal and stop events physics needs.
type Stage struct {
	log   *zap.Logger
	world *ecs.World

	byID  map[physics.TargetID]ecs.Entity
	order []physics.TargetID

	states *stateStore

	costumeSubs []func(physics.Target)
	createdSubs []func(clone, source physics.Target)
	removedSubs []func(physics.TargetID)
	stopSubs    []func()
}

var _ physics.Scene = (*Stage)(nil)

func NewStage(logger *zap.Logger) *Stage {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Stage{
		log:   logger.Named("stage"),
		world: ecs.NewWorld(),
		byID:  make(map[physics.TargetID]ecs.Entity),
	}
	s.states = newStateStore(s)
	return s
}

// World returns the ECS world backing the stage.
func (s *Stage) World() *ecs.World {
	return s.world
}

// AddSprite creates a sprite wearing costume at (x, y).
func (s *Stage) AddSprite(name string, costume component.Costume, x, y, direction float64) *Sprite {
	id := physics.TargetID(uuid.NewString())
	e := ecs.CreateEntity(s.world)
	_ = ecs.Add(s.world, e, component.IdentityComponent.Kind(), &component.Identity{ID: id, Name: name})
	_ = ecs.Add(s.world, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y, Direction: direction})
	_ = ecs.Add(s.world, e, component.CostumeComponent.Kind(), &costume)

	s.byID[id] = e
	s.order = append(s.order, id)
	s.log.Debug("sprite added", zap.String("name", name), zap.String("target", string(id)))
	return &Sprite{stage: s, entity: e, id: id}
}

// Sprite returns the live sprite with the given id.
func (s *Stage) Sprite(id physics.TargetID) (*Sprite, bool) {
	e, ok := s.byID[id]
	if !ok || !ecs.IsAlive(s.world, e) {
		return nil, false
	}
	return &Sprite{stage: s, entity: e, id: id}, true
}

// SpriteByName returns the first original (non-clone) sprite named name.
func (s *Stage) SpriteByName(name string) (*Sprite, bool) {
	for _, id := range s.order {
		sp, ok := s.Sprite(id)
		if !ok {
			continue
		}
		ident := sp.identity()
		if ident.Name == name && ident.CloneOf == "" {
			return sp, true
		}
	}
	return nil, false
}

// Sprites returns every live sprite in creation order.
func (s *Stage) Sprites() []*Sprite {
	out := make([]*Sprite, 0, len(s.order))
	for _, id := range s.order {
		if sp, ok := s.Sprite(id); ok {
			out = append(out, sp)
		}
	}
	return out
}

func (s *Stage) Targets() []physics.Target {
	sprites := s.Sprites()
	out := make([]physics.Target, len(sprites))
	for i, sp := range sprites {
		out[i] = sp
	}
	return out
}

func (s *Stage) Target(id physics.TargetID) (physics.Target, bool) {
	sp, ok := s.Sprite(id)
	if !ok {
		return nil, false
	}
	return sp, true
}

// Entity resolves a target to its entity.
func (s *Stage) Entity(id physics.TargetID) (ecs.Entity, bool) {
	e, ok := s.byID[id]
	if !ok || !ecs.IsAlive(s.world, e) {
		return 0, false
	}
	return e, true
}

// TargetOf resolves an entity to its target id.
func (s *Stage) TargetOf(e ecs.Entity) (physics.TargetID, bool) {
	ident, ok := ecs.Get(s.world, e, component.IdentityComponent.Kind())
	if !ok {
		return "", false
	}
	return ident.ID, true
}

// Clone copies a sprite's identity, pose, costume and hat script into a
// new sprite and announces it. Physics state is not copied; subscribers
// decide what the clone starts with.
func (s *Stage) Clone(id physics.TargetID) (*Sprite, error) {
	src, ok := s.Sprite(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, id)
	}
	tr := src.transform()
	costume := src.Costume()
	costume.Points = append([]cp.Vector(nil), costume.Points...)

	clone := s.AddSprite(src.Name(), costume, tr.X, tr.Y, tr.Direction)
	clone.identity().CloneOf = src.ID()
	if hat, ok := ecs.Get(s.world, src.entity, component.HatScriptComponent.Kind()); ok {
		copied := *hat
		_ = ecs.Add(s.world, clone.entity, component.HatScriptComponent.Kind(), &copied)
	}
	if ecs.Has(s.world, src.entity, component.DraggableTagComponent.Kind()) {
		_ = ecs.Add(s.world, clone.entity, component.DraggableTagComponent.Kind(), &component.DraggableTag{})
	}

	for _, fn := range s.createdSubs {
		fn(clone, src)
	}
	return clone, nil
}

// Remove deletes a sprite. Subscribers are told before the entity goes
// away so they can still read its state.
func (s *Stage) Remove(id physics.TargetID) bool {
	e, ok := s.Entity(id)
	if !ok {
		return false
	}
	for _, fn := range s.removedSubs {
		fn(id)
	}
	ecs.DestroyEntity(s.world, e)
	delete(s.byID, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// SetCostume switches a sprite's costume and announces the change.
func (s *Stage) SetCostume(id physics.TargetID, costume component.Costume) error {
	sp, ok := s.Sprite(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, id)
	}
	_ = ecs.Add(s.world, sp.entity, component.CostumeComponent.Kind(), &costume)
	if sprite, ok := ecs.Get(s.world, sp.entity, component.SpriteComponent.Kind()); ok {
		sprite.Image = nil
	}
	for _, fn := range s.costumeSubs {
		fn(sp)
	}
	return nil
}

// Stop halts everything: subscribers run first, then every clone is
// deleted.
func (s *Stage) Stop() {
	for _, fn := range s.stopSubs {
		fn()
	}
	s.world.Events().Push(ecs.Event{Type: ecs.EventStop})

	clones := 0
	for _, sp := range s.Sprites() {
		if sp.IsClone() {
			s.Remove(sp.ID())
			clones++
		}
	}
	s.log.Info("stage stopped", zap.Int("clones_removed", clones), zap.Int("sprites", len(s.order)))
}

func (s *Stage) OnCostumeChanged(fn func(physics.Target)) {
	if fn != nil {
		s.costumeSubs = append(s.costumeSubs, fn)
	}
}

func (s *Stage) OnTargetCreated(fn func(clone, source physics.Target)) {
	if fn != nil {
		s.createdSubs = append(s.createdSubs, fn)
	}
}

func (s *Stage) OnTargetRemoved(fn func(physics.TargetID)) {
	if fn != nil {
		s.removedSubs = append(s.removedSubs, fn)
	}
}

func (s *Stage) OnGlobalStop(fn func()) {
	if fn != nil {
		s.stopSubs = append(s.stopSubs, fn)
	}
}

// PhysicsStates returns a physics.StateStore that keeps each target's
// physics state as a component on its entity.
func (s *Stage) PhysicsStates() physics.StateStore {
	return s.states
}
