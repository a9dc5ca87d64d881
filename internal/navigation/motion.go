// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package navigation

import (
	"math"

	"github.com/relabs-tech/panorama_navigator/internal/sensor"
)

// MotionConfig tunes the tilt-to-move mapping. The defaults were tuned by hand
// on a phone; none of them is derived from physics.
type MotionConfig struct {
	// GRange is the half-width of the dead zone on the vertical acceleration.
	GRange float64
	// GReference is the acceleration at which the factor reaches ±1.
	GReference float64
	// FactorLimit clamps the acceleration factor to [-FactorLimit, FactorLimit].
	FactorLimit float64
	// MaxSpeed scales the factor into axial units per second.
	MaxSpeed float64
}

// DefaultMotionConfig returns the hand-tuned constants.
func DefaultMotionConfig() MotionConfig {
	return MotionConfig{GRange: 8.2, GReference: 9.4, FactorLimit: 1.5, MaxSpeed: 25}
}

// AccelerationFactor maps the vertical acceleration to a signed factor.
// Inside [-GRange, GRange] it is 0; outside it grows linearly and is clamped.
// Tilting so that zAcc drops below -GRange moves forward (positive factor).
func AccelerationFactor(zAcc float64, cfg MotionConfig) float64 {
	var f float64
	switch {
	case zAcc < -cfg.GRange:
		f = (cfg.GRange + zAcc) / (cfg.GRange - cfg.GReference)
	case zAcc > cfg.GRange:
		f = (cfg.GRange - zAcc) / (cfg.GReference - cfg.GRange)
	}
	return math.Min(math.Max(f, -cfg.FactorLimit), cfg.FactorLimit)
}

// MotionModel turns the latest motion sample into axial speed and integrates
// the roll-driven rotation used for zoom.
type MotionModel struct {
	cfg MotionConfig
}

// NewMotionModel returns a MotionModel with cfg.
func NewMotionModel(cfg MotionConfig) *MotionModel {
	return &MotionModel{cfg: cfg}
}

// Step returns the axial speed for this frame and the updated rotation
// accumulator. A non-finite accumulator is reset to 0, and any non-zero speed
// resets it as well.
func (m *MotionModel) Step(s sensor.MotionSample, dt, accumulator float64) (speed, rotation float64) {
	rotationSpeed := degToRad(s.RotationRate.Gamma)
	rotation = accumulator + rotationSpeed*dt
	if math.IsNaN(rotation) || math.IsInf(rotation, 0) {
		rotation = 0
	}

	speed = AccelerationFactor(s.AccelerationIncludingGravity.Z, m.cfg) * m.cfg.MaxSpeed
	if speed != 0 {
		rotation = 0
	}
	return speed, rotation
}
