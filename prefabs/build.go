package prefabs

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physync/ecs"
	"github.com/milk9111/physync/ecs/component"
	"github.com/milk9111/physync/physics"
	"github.com/milk9111/physync/scene"
	"go.uber.org/zap"
)

const cloneSpacing = 4

// Builder turns prefab and scene specs into sprites on a stage.
type Builder struct {
	stage *scene.Stage
	sys   *physics.System
	log   *zap.Logger

	specs    map[string]SpriteSpec
	costumes map[string]component.Costume
}

func NewBuilder(stage *scene.Stage, sys *physics.System, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		stage:    stage,
		sys:      sys,
		log:      logger.Named("prefabs"),
		specs:    make(map[string]SpriteSpec),
		costumes: make(map[string]component.Costume),
	}
}

// Build applies the scene's gravity and places every instance in order.
func (b *Builder) Build(spec SceneSpec) ([]*scene.Sprite, error) {
	if spec.Gravity != nil && b.sys != nil {
		b.sys.SetGravity(*spec.Gravity)
	}
	var out []*scene.Sprite
	for i, inst := range spec.Sprites {
		sprites, err := b.Place(inst)
		if err != nil {
			return out, fmt.Errorf("prefabs: scene %s sprite %d: %w", spec.Name, i, err)
		}
		out = append(out, sprites...)
	}
	b.log.Info("scene built", zap.String("scene", spec.Name), zap.Int("sprites", len(out)))
	return out, nil
}

// Place adds one prefab instance plus its clones.
func (b *Builder) Place(inst InstanceSpec) ([]*scene.Sprite, error) {
	spec, err := b.SpriteSpec(inst.Prefab)
	if err != nil {
		return nil, err
	}
	costume, err := b.Costume(spec.Costume)
	if err != nil {
		return nil, fmt.Errorf("prefabs: %s costume: %w", inst.Prefab, err)
	}

	name := spec.Name
	if inst.Name != "" {
		name = inst.Name
	}
	dir := spec.Direction
	if inst.Direction != nil {
		dir = *inst.Direction
	}
	script := spec.Script
	if inst.Script != "" {
		script = inst.Script
	}
	enabled := spec.Physics
	if inst.Physics != nil {
		enabled = *inst.Physics
	}

	sp := b.stage.AddSprite(name, costume, inst.X, inst.Y, dir)
	w := b.stage.World()
	if spec.Draggable {
		_ = ecs.Add(w, sp.Entity(), component.DraggableTagComponent.Kind(), &component.DraggableTag{})
	}
	if script != "" {
		src, err := LoadScript(script)
		if err != nil {
			return nil, fmt.Errorf("prefabs: %s script %s: %w", inst.Prefab, script, err)
		}
		_ = ecs.Add(w, sp.Entity(), component.HatScriptComponent.Kind(), &component.HatScript{Path: script, Source: string(src)})
	}
	if enabled && b.sys != nil {
		b.sys.EnablePhysics(sp.ID())
	}

	out := []*scene.Sprite{sp}
	for i := 1; i <= inst.Clones; i++ {
		clone, err := b.stage.Clone(sp.ID())
		if err != nil {
			return out, err
		}
		clone.SetPosition(inst.X+float64(i)*(costume.Width+cloneSpacing), inst.Y)
		out = append(out, clone)
	}
	return out, nil
}

// SpriteSpec loads a prefab by name, caching it until Reload drops it.
func (b *Builder) SpriteSpec(name string) (SpriteSpec, error) {
	key := prefabKey(name)
	if spec, ok := b.specs[key]; ok {
		return spec, nil
	}
	spec, err := LoadSpriteSpec(key)
	if err != nil {
		return SpriteSpec{}, err
	}
	b.specs[key] = spec
	return spec, nil
}

// Costume builds a costume from a spec. Each call returns its own copy of
// the outline so sprites never share mutable state.
func (b *Builder) Costume(spec CostumeSpec) (component.Costume, error) {
	key := costumeKey(spec)
	c, ok := b.costumes[key]
	if !ok {
		var err error
		if c, err = buildCostume(spec); err != nil {
			return component.Costume{}, err
		}
		b.costumes[key] = c
	}
	c.Points = append([]cp.Vector(nil), c.Points...)
	return c, nil
}

func buildCostume(spec CostumeSpec) (component.Costume, error) {
	if spec.Image != "" {
		return scene.LoadCostume(spec.Image)
	}
	shape := spec.Shape
	if shape == "" {
		shape = scene.ShapeBox
	}
	img, err := scene.ShapeImage(shape, spec.Width, spec.Height)
	if err != nil {
		return component.Costume{}, err
	}
	if spec.Color != nil && spec.Color.Color != nil {
		tint(img, spec.Color.Color)
	}
	return scene.NewCostume(shape, img), nil
}

// tint recolors every opaque pixel, keeping its alpha.
func tint(img *image.RGBA, c color.Color) {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			a := img.RGBAAt(x, y).A
			if a == 0 {
				continue
			}
			img.Set(x, y, color.NRGBA{R: nc.R, G: nc.G, B: nc.B, A: a})
		}
	}
}

// Reload reacts to an edited file. Scripts are pushed into every sprite
// using them and the number of sprites updated is returned; prefab edits
// drop the cached spec so later placements read the new file.
func (b *Builder) Reload(path string) (int, error) {
	switch {
	case isScriptFile(path):
		return b.reloadScript(path)
	case isSpecFile(path):
		key := prefabKey(filepath.Base(path))
		delete(b.specs, key)
		b.log.Info("prefab reloaded", zap.String("prefab", key))
		return 0, nil
	}
	return 0, nil
}

func (b *Builder) reloadScript(path string) (int, error) {
	name := cleanScriptPath(filepath.Base(path))
	src, err := LoadScript(name)
	if err != nil {
		return 0, fmt.Errorf("prefabs: reload %s: %w", path, err)
	}
	updated := 0
	ecs.ForEach(b.stage.World(), component.HatScriptComponent.Kind(), func(e ecs.Entity, hat *component.HatScript) {
		if cleanScriptPath(hat.Path) != name {
			return
		}
		hat.Source = string(src)
		updated++
	})
	b.log.Info("script reloaded", zap.String("script", name), zap.Int("sprites", updated))
	return updated, nil
}

func prefabKey(name string) string {
	key := cleanPrefabPath(name)
	if !strings.HasSuffix(key, ".yaml") && !strings.HasSuffix(key, ".yml") {
		key += ".yaml"
	}
	return key
}

func costumeKey(spec CostumeSpec) string {
	col := ""
	if spec.Color != nil && spec.Color.Color != nil {
		r, g, b, a := spec.Color.RGBA()
		col = fmt.Sprintf("%d,%d,%d,%d", r, g, b, a)
	}
	return fmt.Sprintf("%s|%s|%dx%d|%s", spec.Image, spec.Shape, spec.Width, spec.Height, col)
}
