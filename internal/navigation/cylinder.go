// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package navigation

import (
	"fmt"
	"math"
)

// Surface indexes. Exactly two cylinders exist.
const (
	Lower = 0
	Upper = 1
)

// CylinderSpec is the immutable geometry of one cylinder.
// Offset is the axial position of the cylinder's base; its centre sits at
// Offset + Height/2. LowerBoundary and UpperBoundary bound the observer while
// this cylinder is active.
type CylinderSpec struct {
	Radius float64
	Height float64
	Offset float64

	LowerBoundary float64
	UpperBoundary float64
}

// Center returns the axial position of the cylinder's centre.
func (c CylinderSpec) Center() float64 {
	return c.Offset + c.Height/2
}

// Clamp limits p to the cylinder's valid range.
func (c CylinderSpec) Clamp(p float64) float64 {
	return math.Min(math.Max(p, c.LowerBoundary), c.UpperBoundary)
}

// Transition places the hand-off between the two cylinders.
//
// The observer switches up once past Threshold+Margin and lands on Threshold;
// it switches down once below Threshold-Margin and lands on Threshold+Margin.
// Inset keeps the outer clamp bounds just inside the cylinders' ends.
type Transition struct {
	Threshold float64
	Margin    float64
	Inset     float64
}

// Up is the position the lower cylinder must exceed to switch up.
func (t Transition) Up() float64 { return t.Threshold + t.Margin }

// Down is the position the upper cylinder must fall below to switch down.
func (t Transition) Down() float64 { return t.Threshold - t.Margin }

// Cylinders is the stacked pair with derived clamp ranges.
type Cylinders struct {
	Specs      [2]CylinderSpec
	Transition Transition
}

// NewCylinders derives the clamp ranges of both cylinders.
//
//	lower: [lower.Offset + Inset, Threshold + Margin]
//	upper: [Threshold - Margin,   Threshold + upper.Height - Inset]
//
// Each range reaches exactly to its own switch position, so a single positive
// (or negative) step from the clamp bound always crosses it.
func NewCylinders(lower, upper CylinderSpec, tr Transition) (Cylinders, error) {
	for i, c := range []CylinderSpec{lower, upper} {
		if c.Radius <= 0 || c.Height <= 0 {
			return Cylinders{}, fmt.Errorf("cylinder %d: radius and height must be positive (radius=%g height=%g)", i, c.Radius, c.Height)
		}
	}
	if tr.Margin <= 0 {
		return Cylinders{}, fmt.Errorf("transition margin must be positive, got %g", tr.Margin)
	}

	lower.LowerBoundary = lower.Offset + tr.Inset
	lower.UpperBoundary = tr.Up()
	upper.LowerBoundary = tr.Down()
	upper.UpperBoundary = tr.Threshold + upper.Height - tr.Inset

	if lower.LowerBoundary >= lower.UpperBoundary {
		return Cylinders{}, fmt.Errorf("lower cylinder range [%g, %g] is empty", lower.LowerBoundary, lower.UpperBoundary)
	}
	if upper.LowerBoundary >= upper.UpperBoundary {
		return Cylinders{}, fmt.Errorf("upper cylinder range [%g, %g] is empty", upper.LowerBoundary, upper.UpperBoundary)
	}
	// the up hand-off must land inside the upper range
	if tr.Threshold > upper.UpperBoundary {
		return Cylinders{}, fmt.Errorf("threshold %g lies above the upper cylinder range", tr.Threshold)
	}

	return Cylinders{Specs: [2]CylinderSpec{lower, upper}, Transition: tr}, nil
}
