package common

// Rect is an axis-aligned box in stage coordinates (Y up), matching the
// left/right/top/bottom bounds reported by the scene graph.
type Rect struct {
	Left, Right float64
	Top, Bottom float64
}

// RectFromCenter builds a rect of the given size centered on (x, y).
func RectFromCenter(x, y, w, h float64) Rect {
	return Rect{Left: x - w/2, Right: x + w/2, Top: y + h/2, Bottom: y - h/2}
}

func (r Rect) Width() float64 {
	return r.Right - r.Left
}

func (r Rect) Height() float64 {
	return r.Top - r.Bottom
}

func (r Rect) Center() (float64, float64) {
	return (r.Left + r.Right) / 2, (r.Top + r.Bottom) / 2
}

func (r Rect) Intersects(other Rect) bool {
	return r.Left < other.Right &&
		r.Right > other.Left &&
		r.Bottom < other.Top &&
		r.Top > other.Bottom
}

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x <= r.Right && y >= r.Bottom && y <= r.Top
}
