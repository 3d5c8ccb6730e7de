package hats

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physync/physics"
	"go.uber.org/zap"
)

var ErrNoScript = errors.New("hats: no script loaded")

// Commands is the script API a hat can call. *physics.System implements it.
type Commands interface {
	EnablePhysics(id physics.TargetID) bool
	DisablePhysics(id physics.TargetID) bool
	IsEnabled(id physics.TargetID) bool
	ApplyForce(id physics.TargetID, force cp.Vector) bool
	Push(id physics.TargetID, force float64) bool
	Spin(id physics.TargetID, force float64) bool
	SetGravity(value float64)
	Gravity() float64
	QuerySpeed(id physics.TargetID) float64
	PinToFixedPoint(id physics.TargetID) bool
	LockToStage(id physics.TargetID) bool
	Unpin(id physics.TargetID) bool
}

// Subject describes one side of a collision to a script.
type Subject struct {
	ID   physics.TargetID
	Name string
}

const (
	defaultTimeout = 50 * time.Millisecond
	maxAllocs      = 1 << 16
)

// The hat body is the user's source followed by this dispatcher, the same
// way every run re-evaluates the definitions and then calls the handler.
const collideDispatchScript = `
if __phase == "collide" {
	on_collide(__engine, __other)
}
`

type hatScript struct {
	name     string
	source   string
	compiled *tengo.Compiled
	state    *tengo.Map
}

// Runtime compiles and runs per-target "when this sprite collides" hats.
type Runtime struct {
	log     *zap.Logger
	cmds    Commands
	timeout time.Duration
	scripts map[physics.TargetID]*hatScript
}

type Option func(*Runtime)

// WithTimeout bounds a single hat run.
func WithTimeout(d time.Duration) Option {
	return func(r *Runtime) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func NewRuntime(cmds Commands, logger *zap.Logger, opts ...Option) *Runtime {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runtime{
		log:     logger.Named("hats"),
		cmds:    cmds,
		timeout: defaultTimeout,
		scripts: make(map[physics.TargetID]*hatScript),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load compiles source as id's hat. Loading the source already loaded is a
// no-op, so callers may sync every frame.
func (r *Runtime) Load(id physics.TargetID, name, source string) error {
	if hs, ok := r.scripts[id]; ok && hs.source == source {
		return nil
	}
	if strings.TrimSpace(source) == "" {
		r.Unload(id)
		return nil
	}

	script := tengo.NewScript([]byte(source + "\n" + collideDispatchScript))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__other", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	script.SetMaxAllocs(maxAllocs)

	compiled, err := script.Compile()
	if err != nil {
		return fmt.Errorf("hats: compile %s: %w", name, err)
	}
	r.scripts[id] = &hatScript{
		name:     name,
		source:   source,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}
	r.log.Debug("hat loaded", zap.String("target", string(id)), zap.String("name", name))
	return nil
}

// Unload forgets id's hat.
func (r *Runtime) Unload(id physics.TargetID) {
	delete(r.scripts, id)
}

// Loaded reports whether id has a hat.
func (r *Runtime) Loaded(id physics.TargetID) bool {
	_, ok := r.scripts[id]
	return ok
}

// Len returns the number of loaded hats.
func (r *Runtime) Len() int {
	return len(r.scripts)
}

// Reset clears every hat's persistent state map.
func (r *Runtime) Reset() {
	for _, hs := range r.scripts {
		hs.state = &tengo.Map{Value: map[string]tengo.Object{}}
	}
}

// Fire runs self's hat with other as the thing it touched.
func (r *Runtime) Fire(self, other Subject) error {
	hs, ok := r.scripts[self.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoScript, self.ID)
	}

	engine := r.buildEngine(self)
	otherObj := &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"id":    &tengo.String{Value: string(other.ID)},
		"name":  &tengo.String{Value: other.Name},
		"stage": boolObject(other.ID == physics.BoundaryTarget),
	}}

	if err := hs.compiled.Set("__phase", "collide"); err != nil {
		return err
	}
	if err := hs.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := hs.compiled.Set("__other", otherObj); err != nil {
		return err
	}
	if err := hs.compiled.Set("__state", hs.state); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := hs.compiled.RunContext(ctx); err != nil {
		return fmt.Errorf("hats: run %s: %w", hs.name, err)
	}
	return nil
}

func (r *Runtime) buildEngine(self Subject) *tengo.ImmutableMap {
	id := self.ID
	cmds := r.cmds
	values := map[string]tengo.Object{
		"id":   &tengo.String{Value: string(id)},
		"name": &tengo.String{Value: self.Name},
	}

	values["push"] = &tengo.UserFunction{Name: "push", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		return boolObject(cmds.Push(id, objectAsFloat(args[0]))), nil
	}}
	values["push_xy"] = &tengo.UserFunction{Name: "push_xy", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.FalseValue, nil
		}
		force := cp.Vector{X: objectAsFloat(args[0]), Y: objectAsFloat(args[1])}
		return boolObject(cmds.ApplyForce(id, force)), nil
	}}
	values["spin"] = &tengo.UserFunction{Name: "spin", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		return boolObject(cmds.Spin(id, objectAsFloat(args[0]))), nil
	}}
	values["set_gravity"] = &tengo.UserFunction{Name: "set_gravity", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		cmds.SetGravity(objectAsFloat(args[0]))
		return tengo.TrueValue, nil
	}}
	values["gravity"] = &tengo.UserFunction{Name: "gravity", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: cmds.Gravity()}, nil
	}}
	values["speed"] = &tengo.UserFunction{Name: "speed", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: cmds.QuerySpeed(id)}, nil
	}}
	values["pin"] = &tengo.UserFunction{Name: "pin", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(cmds.PinToFixedPoint(id)), nil
	}}
	values["lock"] = &tengo.UserFunction{Name: "lock", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(cmds.LockToStage(id)), nil
	}}
	values["unpin"] = &tengo.UserFunction{Name: "unpin", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(cmds.Unpin(id)), nil
	}}
	values["enable"] = &tengo.UserFunction{Name: "enable", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(cmds.EnablePhysics(id)), nil
	}}
	values["disable"] = &tengo.UserFunction{Name: "disable", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(cmds.DisablePhysics(id)), nil
	}}
	values["enabled"] = &tengo.UserFunction{Name: "enabled", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(cmds.IsEnabled(id)), nil
	}}
	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		r.log.Info(strings.Join(parts, " "), zap.String("target", string(id)), zap.String("name", self.Name))
		return tengo.TrueValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func boolObject(v bool) tengo.Object {
	if v {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func objectAsFloat(obj tengo.Object) float64 {
	switch v := obj.(type) {
	case *tengo.Float:
		return v.Value
	case *tengo.Int:
		return float64(v.Value)
	case *tengo.Bool:
		if v.IsFalsy() {
			return 0
		}
		return 1
	default:
		f, _ := tengo.ToFloat64(obj)
		return f
	}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
