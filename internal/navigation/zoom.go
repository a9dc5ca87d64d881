// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package navigation

import "math"

// ZoomConfig maps accumulated roll to a field of view in degrees.
type ZoomConfig struct {
	BaseFov float64
	MinFov  float64
	// Range is the accumulated rotation (radians) that reaches MinFov.
	Range float64
}

// DefaultZoomConfig keeps the field of view fixed at 70 degrees.
func DefaultZoomConfig() ZoomConfig {
	return ZoomConfig{BaseFov: 70, MinFov: 70, Range: 2}
}

// FieldOfView interpolates from BaseFov towards MinFov as |rotation| grows and
// stops at MinFov.
func (z ZoomConfig) FieldOfView(rotation float64) float64 {
	t := 0.0
	if z.Range > 0 {
		t = math.Min(math.Abs(rotation)/z.Range, 1)
	}
	if math.IsNaN(t) {
		t = 0
	}
	return z.BaseFov + (z.MinFov-z.BaseFov)*t
}
