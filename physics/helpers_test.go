package physics

import (
	"fmt"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physync/common"
	"github.com/milk9111/physync/config"
	"github.com/stretchr/testify/require"
)

type fakeTarget struct {
	id       TargetID
	x, y     float64
	dir      float64
	w, h     float64
	points   []cp.Vector
	cx, cy   float64
	anchored int
}

func (t *fakeTarget) ID() TargetID                  { return t.id }
func (t *fakeTarget) Position() (float64, float64)  { return t.x, t.y }
func (t *fakeTarget) SetPosition(x, y float64)      { t.x, t.y = x, y }
func (t *fakeTarget) Direction() float64            { return t.dir }
func (t *fakeTarget) SetDirection(deg float64)      { t.dir = deg }
func (t *fakeTarget) Bounds() common.Rect           { return common.RectFromCenter(t.x, t.y, t.w, t.h) }
func (t *fakeTarget) SilhouettePoints() []cp.Vector { return t.points }
func (t *fakeTarget) SetRotationCenter(x, y float64) {
	t.cx, t.cy = x, y
	t.anchored++
}

type fakeScene struct {
	order   []TargetID
	targets map[TargetID]*fakeTarget
	next    int
}

func newFakeScene() *fakeScene {
	return &fakeScene{targets: make(map[TargetID]*fakeTarget)}
}

func (s *fakeScene) Targets() []Target {
	out := make([]Target, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.targets[id])
	}
	return out
}

func (s *fakeScene) Target(id TargetID) (Target, bool) {
	t, ok := s.targets[id]
	if !ok {
		return nil, false
	}
	return t, true
}

// add places a size×size square sprite at (x, y) facing right.
func (s *fakeScene) add(x, y, size float64) *fakeTarget {
	s.next++
	t := &fakeTarget{
		id:     TargetID(fmt.Sprintf("t%d", s.next)),
		x:      x,
		y:      y,
		dir:    90,
		w:      size,
		h:      size,
		points: square(size),
	}
	s.order = append(s.order, t.id)
	s.targets[t.id] = t
	return t
}

func (s *fakeScene) remove(id TargetID) {
	delete(s.targets, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

func square(size float64) []cp.Vector {
	return []cp.Vector{{X: 0, Y: 0}, {X: size, Y: 0}, {X: size, Y: size}, {X: 0, Y: size}, {X: size / 2, Y: size / 2}}
}

func triangle(size float64) []cp.Vector {
	return []cp.Vector{{X: 0, Y: size}, {X: size, Y: size}, {X: size / 2, Y: 0}}
}

func testConfig(mutate ...func(*config.Config)) config.Config {
	cfg := config.Default()
	for _, m := range mutate {
		m(&cfg)
	}
	return cfg
}

func noGravity(cfg *config.Config) {
	cfg.Physics.Gravity = 0
}

func newTestSystem(t *testing.T, mutate ...func(*config.Config)) (*System, *fakeScene) {
	t.Helper()
	scene := newFakeScene()
	cfg := testConfig(mutate...)
	require.NoError(t, cfg.Validate())
	return NewSystem(scene, cfg), scene
}

// bodiesOwnedBy counts live bodies built for id.
func bodiesOwnedBy(w *World, id TargetID) int {
	n := 0
	for _, b := range w.BodyIDs() {
		if owner, ok := w.Owner(b); ok && owner == id {
			n++
		}
	}
	return n
}
