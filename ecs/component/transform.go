package component

// Transform is a target's pose on stage. X and Y are stage units with Y
// up; Direction is in degrees, 90 facing right.
type Transform struct {
	X         float64
	Y         float64
	Direction float64
}

var TransformComponent = NewComponent[Transform]()
