package lodkit

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DistanceConfig tunes the per-object distance decision.
type DistanceConfig struct {
	// HysteresisMargin pulls each frame's adjusted distance toward the
	// previous frame's by up to this many units, damping flicker when
	// an object hovers on a level boundary.
	HysteresisMargin float32 `yaml:"hysteresis_margin"`
	// SizeScaling divides distance by the object's normalized size so
	// large objects hold detail farther out.
	SizeScaling bool `yaml:"size_scaling"`
	// ReferenceSize is the bounding-box diagonal considered "normal"
	// when size scaling is on.
	ReferenceSize float32 `yaml:"reference_size"`
	// MaxDistance culls objects (visibility only; they still resolve a
	// mesh). Zero disables culling.
	MaxDistance float32 `yaml:"max_distance"`
}

// AdaptiveConfig tunes performance-feedback detail scaling.
type AdaptiveConfig struct {
	Enabled         bool    `yaml:"enabled"`
	TargetFPS       float32 `yaml:"target_fps"`
	AdaptationSpeed float32 `yaml:"adaptation_speed"` // [0,1]
	QualityBias     float32 `yaml:"quality_bias"`
}

// BatchingConfig tunes draw-call assembly.
type BatchingConfig struct {
	EnableInstancing   bool `yaml:"enable_instancing"`
	EnableStateSorting bool `yaml:"enable_state_sorting"`
	EnableAtlasMerge   bool `yaml:"enable_atlas_merge"`
	// InstancingThreshold is the minimum group size worth the
	// instancing setup cost; smaller groups fall back to single draws.
	InstancingThreshold  int `yaml:"instancing_threshold"`
	MaxInstancesPerBatch int `yaml:"max_instances_per_batch"`
}

// TransitionConfig tunes LOD blending.
type TransitionConfig struct {
	// Seconds per transition. Zero or negative switches levels
	// instantly.
	Seconds float32    `yaml:"seconds"`
	Curve   BlendCurve `yaml:"curve"`
}

// PipelineConfig is the full tuning surface. It is passed by value;
// live changes go through Pipeline.SetConfig and take effect at the
// start of the next frame, never mid-pass.
type PipelineConfig struct {
	Levels      []LODLevel       `yaml:"levels"`
	Distance    DistanceConfig   `yaml:"distance"`
	Adaptive    AdaptiveConfig   `yaml:"adaptive"`
	Batching    BatchingConfig   `yaml:"batching"`
	Transitions TransitionConfig `yaml:"transitions"`
}

func DefaultConfig() PipelineConfig {
	return PipelineConfig{
		Levels: DefaultLevels(),
		Distance: DistanceConfig{
			HysteresisMargin: 2.5,
			SizeScaling:      true,
			ReferenceSize:    2.0,
			MaxDistance:      1000,
		},
		Adaptive: AdaptiveConfig{
			Enabled:         true,
			TargetFPS:       60,
			AdaptationSpeed: 0.5,
			QualityBias:     1.0,
		},
		Batching: BatchingConfig{
			EnableInstancing:     true,
			EnableStateSorting:   true,
			EnableAtlasMerge:     false,
			InstancingThreshold:  3,
			MaxInstancesPerBatch: 1000,
		},
		Transitions: TransitionConfig{
			Seconds: 0.5,
			Curve:   BlendSmoothStep,
		},
	}
}

// normalized clamps every field into its documented domain. Invalid
// values are repaired, not rejected; the frame path must always have
// a usable config.
func (c PipelineConfig) normalized() PipelineConfig {
	if c.Distance.HysteresisMargin < 0 {
		c.Distance.HysteresisMargin = 0
	}
	if c.Distance.ReferenceSize <= 0 {
		c.Distance.ReferenceSize = 1
	}
	if c.Distance.MaxDistance < 0 {
		c.Distance.MaxDistance = 0
	}
	if c.Adaptive.AdaptationSpeed < 0 {
		c.Adaptive.AdaptationSpeed = 0
	}
	if c.Adaptive.AdaptationSpeed > 1 {
		c.Adaptive.AdaptationSpeed = 1
	}
	if c.Adaptive.TargetFPS < 0 {
		c.Adaptive.TargetFPS = 0
	}
	if c.Batching.InstancingThreshold < 1 {
		c.Batching.InstancingThreshold = 1
	}
	if c.Batching.MaxInstancesPerBatch < 1 {
		c.Batching.MaxInstancesPerBatch = 1
	}
	if c.Transitions.Seconds < 0 {
		c.Transitions.Seconds = 0
	}
	if c.Transitions.Curve < BlendLinear || c.Transitions.Curve > BlendEaseInOut {
		c.Transitions.Curve = BlendLinear
	}
	return c
}

// LoadConfig reads a YAML config file, layering it over defaults so a
// partial file is valid.
func LoadConfig(path string) (PipelineConfig, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("loading pipeline config from %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing pipeline config %s: %w", path, err)
	}
	return cfg.normalized(), nil
}

// SaveConfig writes the config as YAML.
func SaveConfig(path string, cfg PipelineConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding pipeline config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing pipeline config to %s: %w", path, err)
	}
	return nil
}
