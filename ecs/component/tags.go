package component

import "github.com/milk9111/physync/physics"

// Identity names a target. CloneOf is empty for originals.
type Identity struct {
	ID      physics.TargetID
	Name    string
	CloneOf physics.TargetID
}

var IdentityComponent = NewComponent[Identity]()

type DraggableTag struct{}

var DraggableTagComponent = NewComponent[DraggableTag]()
