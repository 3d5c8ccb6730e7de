package physics

import (
	"strconv"

	"github.com/jakecoffman/cp"
)

// BodyID is a generational handle into the world's body arena. The zero
// value means "no body". A handle goes stale when its slot is reused.
type BodyID uint64

const bodySlotBits = 32

func makeBodyID(slot uint32, gen uint32) BodyID {
	return BodyID(uint64(gen)<<bodySlotBits | uint64(slot+1))
}

func (id BodyID) slot() uint32 {
	return uint32(id) - 1
}

func (id BodyID) generation() uint32 {
	return uint32(uint64(id) >> bodySlotBits)
}

func (id BodyID) Valid() bool {
	return uint32(id) != 0
}

func (id BodyID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

type bodyEntry struct {
	target      TargetID
	body        *cp.Body
	shape       *cp.Shape
	hull        Shape
	constraints []*cp.Constraint
	// attached is false while the body waits for a step to finish before it
	// can be inserted into the space.
	attached bool
}

type bodySlot struct {
	gen   uint32
	live  bool
	entry bodyEntry
}

// bodyArena stores body entries in stable slots and recycles freed slots
// with a bumped generation.
type bodyArena struct {
	slots []bodySlot
	free  []uint32
	live  int
}

func (a *bodyArena) insert(e bodyEntry) BodyID {
	var slot uint32
	if n := len(a.free); n > 0 {
		slot = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, bodySlot{})
		slot = uint32(len(a.slots) - 1)
	}
	s := &a.slots[slot]
	s.live = true
	s.entry = e
	a.live++
	return makeBodyID(slot, s.gen)
}

func (a *bodyArena) get(id BodyID) *bodyEntry {
	if !id.Valid() {
		return nil
	}
	slot := id.slot()
	if int(slot) >= len(a.slots) {
		return nil
	}
	s := &a.slots[slot]
	if !s.live || s.gen != id.generation() {
		return nil
	}
	return &s.entry
}

func (a *bodyArena) remove(id BodyID) (bodyEntry, bool) {
	e := a.get(id)
	if e == nil {
		return bodyEntry{}, false
	}
	out := *e
	slot := id.slot()
	s := &a.slots[slot]
	s.live = false
	s.gen++
	s.entry = bodyEntry{}
	a.free = append(a.free, slot)
	a.live--
	return out, true
}

// ids returns a snapshot of live handles so callers can remove while
// walking them.
func (a *bodyArena) ids() []BodyID {
	out := make([]BodyID, 0, a.live)
	for i := range a.slots {
		s := &a.slots[i]
		if s.live {
			out = append(out, makeBodyID(uint32(i), s.gen))
		}
	}
	return out
}

func (a *bodyArena) len() int {
	return a.live
}
