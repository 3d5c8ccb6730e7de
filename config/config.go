package config

import (
	"embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultFS embed.FS

var ErrInvalidConfig = errors.New("config: invalid")

// ClonePolicy decides what physics state a cloned target starts with.
type ClonePolicy string

const (
	// CloneInherit copies the source's enabled flag and builds a fresh body
	// for the clone right away.
	CloneInherit ClonePolicy = "inherit"
	// CloneDisabled gives the clone an independent, disabled state.
	CloneDisabled ClonePolicy = "disabled"
)

type Config struct {
	LogLevel string  `yaml:"log_level"`
	Stage    Stage   `yaml:"stage"`
	Physics  Physics `yaml:"physics"`
}

type Stage struct {
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	WallSize float64 `yaml:"wall_size"`
}

type Physics struct {
	FixedStepMs float64 `yaml:"fixed_step_ms"`
	Substeps    int     `yaml:"substeps"`
	Iterations  int     `yaml:"iterations"`

	// Gravity is the simulation-space vertical component in stage units; it
	// is negative because stage Y grows upward.
	Gravity      float64 `yaml:"gravity"`
	GravityScale float64 `yaml:"gravity_scale"`
	ForceScale   float64 `yaml:"force_scale"`
	TorqueScale  float64 `yaml:"torque_scale"`

	Restitution float64 `yaml:"restitution"`
	Friction    float64 `yaml:"friction"`
	Density     float64 `yaml:"density"`

	// PositionTolerance and AngleTolerance (degrees) bound how far a target
	// may drift from its body before the target is treated as moved by hand.
	PositionTolerance float64 `yaml:"position_tolerance"`
	AngleTolerance    float64 `yaml:"angle_tolerance"`

	PinStiffness float64     `yaml:"pin_stiffness"`
	ClonePolicy  ClonePolicy `yaml:"clone_policy"`

	// ReportBoundaryHits forwards contacts with the stage edges as
	// collisions against the stage.
	ReportBoundaryHits bool `yaml:"report_boundary_hits"`
}

// Default returns the embedded default configuration.
func Default() Config {
	data, err := defaultFS.ReadFile("default.yaml")
	if err != nil {
		panic("config: read embedded default.yaml: " + err.Error())
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		panic("config: unmarshal embedded default.yaml: " + err.Error())
	}
	return cfg
}

// Load reads path on top of the embedded defaults. An empty path returns
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	return Parse(data, cfg)
}

// Parse unmarshals data over base and validates the result.
func Parse(data []byte, base Config) (Config, error) {
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.Stage.Width <= 0 || c.Stage.Height <= 0:
		return fmt.Errorf("%w: stage size %vx%v", ErrInvalidConfig, c.Stage.Width, c.Stage.Height)
	case c.Stage.WallSize <= 0:
		return fmt.Errorf("%w: wall_size %v", ErrInvalidConfig, c.Stage.WallSize)
	case c.Physics.FixedStepMs <= 0:
		return fmt.Errorf("%w: fixed_step_ms %v", ErrInvalidConfig, c.Physics.FixedStepMs)
	case c.Physics.Substeps < 1:
		return fmt.Errorf("%w: substeps %d", ErrInvalidConfig, c.Physics.Substeps)
	case c.Physics.Iterations < 1:
		return fmt.Errorf("%w: iterations %d", ErrInvalidConfig, c.Physics.Iterations)
	case c.Physics.Density <= 0:
		return fmt.Errorf("%w: density %v", ErrInvalidConfig, c.Physics.Density)
	case c.Physics.PositionTolerance < 0 || c.Physics.AngleTolerance < 0:
		return fmt.Errorf("%w: negative tolerance", ErrInvalidConfig)
	}
	switch c.Physics.ClonePolicy {
	case CloneInherit, CloneDisabled:
	default:
		return fmt.Errorf("%w: clone_policy %q", ErrInvalidConfig, c.Physics.ClonePolicy)
	}
	return nil
}

// Marshal renders the config as YAML.
func (c Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("config: marshal: %w", err)
	}
	return data, nil
}
