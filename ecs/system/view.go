package system

// StageView maps between stage coordinates (origin at the center, Y up)
// and screen pixels (origin top-left, Y down).
type StageView struct {
	Width  float64
	Height float64
}

func (v StageView) ToScreen(x, y float64) (float64, float64) {
	return x + v.Width/2, v.Height/2 - y
}

func (v StageView) ToStage(sx, sy float64) (float64, float64) {
	return sx - v.Width/2, v.Height/2 - sy
}
