package common

const (
	// StageWidth and StageHeight describe the visible play area, centered on
	// the origin.
	StageWidth  = 480.0
	StageHeight = 360.0

	// FixedStepMs is the simulation advance per frame.
	FixedStepMs = 1000.0 / 30.0
)
