// Package config loads filter tuning parameters from JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
)

// Default tuning values, matching the UTIAS MRCLAM reference tuning.
const (
	// DefaultPositionNoiseStd is the per-step pose position noise (x, y).
	DefaultPositionNoiseStd = 120.0
	// DefaultHeadingNoiseStd is the per-step heading noise.
	DefaultHeadingNoiseStd = 100.0
	// DefaultRangeNoiseStd is the range measurement noise.
	DefaultRangeNoiseStd = 1000.0
	// DefaultBearingNoiseStd is the bearing measurement noise.
	DefaultBearingNoiseStd = 1000.0
	// DefaultMotionSkipSeconds is the minimum delta between motion samples.
	DefaultMotionSkipSeconds = 0.001

	// residualFloor pads the structurally-zero third measurement
	// component so its weight never affects residual ordering.
	residualFloor = 1e32
)

// Tuning holds the configurable filter parameters. Fields are pointers so
// a partial JSON file only overrides what it names; the Get* accessors
// provide the defaults.
type Tuning struct {
	PositionNoiseStd  *float64 `json:"position_noise_std,omitempty"`
	HeadingNoiseStd   *float64 `json:"heading_noise_std,omitempty"`
	RangeNoiseStd     *float64 `json:"range_noise_std,omitempty"`
	BearingNoiseStd   *float64 `json:"bearing_noise_std,omitempty"`
	MotionSkipSeconds *float64 `json:"motion_skip_seconds,omitempty"`
}

// DefaultTuning returns a Tuning with all fields unset, so every accessor
// falls back to its default.
func DefaultTuning() *Tuning {
	return &Tuning{}
}

// LoadTuning loads a Tuning from a JSON file. Fields omitted from the file
// retain their default values, so partial configs are safe.
func LoadTuning(path string) (*Tuning, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("tuning file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read tuning file: %w", err)
	}

	cfg := DefaultTuning()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse tuning JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configured values are usable.
func (c *Tuning) Validate() error {
	positive := map[string]*float64{
		"position_noise_std": c.PositionNoiseStd,
		"heading_noise_std":  c.HeadingNoiseStd,
		"range_noise_std":    c.RangeNoiseStd,
		"bearing_noise_std":  c.BearingNoiseStd,
	}
	for name, v := range positive {
		if v != nil && *v <= 0 {
			return fmt.Errorf("%s must be positive, got %g", name, *v)
		}
	}
	if c.MotionSkipSeconds != nil && *c.MotionSkipSeconds < 0 {
		return fmt.Errorf("motion_skip_seconds must not be negative, got %g", *c.MotionSkipSeconds)
	}
	return nil
}

// GetMotionSkipSeconds returns the motion skip threshold or the default.
func (c *Tuning) GetMotionSkipSeconds() float64 {
	if c.MotionSkipSeconds == nil {
		return DefaultMotionSkipSeconds
	}
	return *c.MotionSkipSeconds
}

// ProcessNoise builds the 3x3 pose process noise R from the configured
// standard deviations.
func (c *Tuning) ProcessNoise() *mat.Dense {
	pos := value(c.PositionNoiseStd, DefaultPositionNoiseStd)
	heading := value(c.HeadingNoiseStd, DefaultHeadingNoiseStd)
	return mat.NewDense(3, 3, []float64{
		pos * pos, 0, 0,
		0, pos * pos, 0,
		0, 0, heading * heading,
	})
}

// MeasurementNoise builds the 3x3 measurement noise Q from the configured
// standard deviations.
func (c *Tuning) MeasurementNoise() *mat.Dense {
	rng := value(c.RangeNoiseStd, DefaultRangeNoiseStd)
	bearing := value(c.BearingNoiseStd, DefaultBearingNoiseStd)
	return mat.NewDense(3, 3, []float64{
		rng * rng, 0, 0,
		0, bearing * bearing, 0,
		0, 0, residualFloor,
	})
}

func value(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
