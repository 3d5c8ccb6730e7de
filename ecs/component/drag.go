package component

// Drag tracks a pointer drag in progress. The offset keeps the grab point
// under the cursor.
type Drag struct {
	OffsetX float64
	OffsetY float64
}

var DragComponent = NewComponent[Drag]()
