package physics

// EntityPhysicsState records whether a target takes part in the simulation
// and which body represents it. Body is zero until one has been built.
type EntityPhysicsState struct {
	Enabled bool
	Body    BodyID
}

// Simulated reports whether the target currently has a body.
func (s *EntityPhysicsState) Simulated() bool {
	return s != nil && s.Enabled && s.Body.Valid()
}

func (s *EntityPhysicsState) reset() {
	s.Enabled = false
	s.Body = 0
}

// StateStore is the per-target slot for physics state. State creates the
// entry on first access.
type StateStore interface {
	State(id TargetID) *EntityPhysicsState
	Lookup(id TargetID) (*EntityPhysicsState, bool)
	Delete(id TargetID)
	Each(fn func(id TargetID, s *EntityPhysicsState))
}

// StateTable is an in-memory StateStore keyed by target identity.
type StateTable struct {
	states map[TargetID]*EntityPhysicsState
}

func NewStateTable() *StateTable {
	return &StateTable{states: make(map[TargetID]*EntityPhysicsState)}
}

func (t *StateTable) State(id TargetID) *EntityPhysicsState {
	if st, ok := t.states[id]; ok {
		return st
	}
	st := &EntityPhysicsState{}
	t.states[id] = st
	return st
}

func (t *StateTable) Lookup(id TargetID) (*EntityPhysicsState, bool) {
	st, ok := t.states[id]
	return st, ok
}

func (t *StateTable) Delete(id TargetID) {
	delete(t.states, id)
}

func (t *StateTable) Each(fn func(id TargetID, s *EntityPhysicsState)) {
	for id, st := range t.states {
		fn(id, st)
	}
}
