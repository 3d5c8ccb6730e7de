package physics

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physync/common"
)

// TargetID is the stable identity of a visual entity on the stage.
type TargetID string

// BoundaryTarget names the stage boundary in collision reports.
const BoundaryTarget TargetID = "_stage_"

// Target is a visual entity owned by the scene graph. Positions are in stage
// space (Y up), direction is in stage degrees (90 faces right).
type Target interface {
	ID() TargetID
	Position() (float64, float64)
	SetPosition(x, y float64)
	Direction() float64
	SetDirection(deg float64)
	Bounds() common.Rect
	// SilhouettePoints returns outline points of the current costume in
	// costume pixel space (origin top-left, Y down).
	SilhouettePoints() []cp.Vector
	// SetRotationCenter moves the current costume's pivot, in costume pixel
	// space. The target's position is where the pivot is drawn.
	SetRotationCenter(x, y float64)
}

// Scene lists the live targets. Targets that are no longer listed are
// treated as destroyed.
type Scene interface {
	Targets() []Target
	Target(id TargetID) (Target, bool)
}

// CollisionFunc receives the two targets of a new contact. b is
// BoundaryTarget when a target hits the stage edge.
type CollisionFunc func(a, b TargetID)
