package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SpriteSpec is a reusable sprite definition, one per prefab YAML file.
type SpriteSpec struct {
	Name      string      `yaml:"name"`
	Costume   CostumeSpec `yaml:"costume"`
	Direction float64     `yaml:"direction"`
	Physics   bool        `yaml:"physics"`
	Draggable bool        `yaml:"draggable"`
	Script    string      `yaml:"script"`
}

// CostumeSpec picks either a PNG image or a generated shape.
type CostumeSpec struct {
	Image  string     `yaml:"image"`
	Shape  string     `yaml:"shape"`
	Width  int        `yaml:"width"`
	Height int        `yaml:"height"`
	Color  *YAMLColor `yaml:"color"`
}

// SceneSpec lays prefab instances out on a stage.
type SceneSpec struct {
	Name       string         `yaml:"name"`
	Gravity    *float64       `yaml:"gravity"`
	Background *YAMLColor     `yaml:"background"`
	Sprites    []InstanceSpec `yaml:"sprites"`
}

// InstanceSpec places one prefab. Zero-valued overrides fall back to the
// prefab's own values.
type InstanceSpec struct {
	Prefab    string   `yaml:"prefab"`
	Name      string   `yaml:"name"`
	X         float64  `yaml:"x"`
	Y         float64  `yaml:"y"`
	Direction *float64 `yaml:"direction"`
	Physics   *bool    `yaml:"physics"`
	Script    string   `yaml:"script"`
	Clones    int      `yaml:"clones"`
}

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}
	return ParseSpec[T](filename, data)
}

func ParseSpec[T any](filename string, data []byte) (T, error) {
	var zero T
	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}
	return spec, nil
}

func LoadSpriteSpec(filename string) (SpriteSpec, error) {
	spec, err := LoadSpec[SpriteSpec](filename)
	if err != nil {
		return spec, err
	}
	if spec.Name == "" {
		spec.Name = strings.TrimSuffix(cleanPrefabPath(filename), ".yaml")
	}
	if spec.Direction == 0 {
		spec.Direction = 90
	}
	return spec, nil
}

// LoadSceneSpec reads a scene from disk, falling back to the embedded
// scenes.
func LoadSceneSpec(filename string) (SceneSpec, error) {
	data, err := LoadScene(filename)
	if err != nil {
		return SceneSpec{}, fmt.Errorf("prefabs: load scene %s: %w", filename, err)
	}
	return ParseSpec[SceneSpec](filename, data)
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
