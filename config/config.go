// Package config provides configuration loading for the parts of Felt
// whose tuning is host-overridable rather than hard-coded: the raycast
// refinement loop bound and step size.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all of Felt's host-overridable tuning parameters.
type Config struct {
	Raycast RaycastConfig `yaml:"raycast"`
}

// RaycastConfig tunes the per-partition ray walk and Newton refinement used
// to locate the zero-layer crossing along a ray.
type RaycastConfig struct {
	// MaxSteps bounds the coarse march loop once a zero-layer sample is
	// found.
	MaxSteps int `yaml:"max_steps"`
	// StepSize is the per-sample march increment along the ray, in grid
	// units.
	StepSize float64 `yaml:"step_size"`
	// NewtonIters bounds the refinement loop; kept distinct from MaxSteps
	// so a host can tune the coarse march and the fine refinement
	// independently.
	NewtonIters int `yaml:"newton_iters"`
	// ConvergeEpsilon is the |interp| threshold below which refinement
	// stops.
	ConvergeEpsilon float64 `yaml:"converge_epsilon"`
}

// DefaultRaycastConfig returns the built-in defaults (100 Newton steps, 0.5
// grid-unit march step, a tiny convergence epsilon), unembellished — a
// library caller needing none of this tuning never has to touch the config
// package at all.
func DefaultRaycastConfig() RaycastConfig {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg.Raycast
}

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only the embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	return cfg, nil
}
