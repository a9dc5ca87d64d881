// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensor

import (
	"encoding/json"
	"fmt"
)

// OrientationSample is one device orientation reading in degrees.
type OrientationSample struct {
	Alpha float64 `json:"alpha"` // rotation about the vertical (roll) axis
	Beta  float64 `json:"beta"`  // pitch
	Gamma float64 `json:"gamma"` // yaw
}

// RotationRate is the gyroscope part of a motion reading, deg/s.
type RotationRate struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Gamma float64 `json:"gamma"`
}

// Acceleration is the accelerometer part of a motion reading, gravity included.
type Acceleration struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// MotionSample is one device motion reading.
type MotionSample struct {
	RotationRate                 RotationRate `json:"rotationRate"`
	AccelerationIncludingGravity Acceleration `json:"accelerationIncludingGravity"`
}

// Wire shapes. Every field is optional on the wire and decodes to 0 when absent or null.
type orientationEvent struct {
	Alpha *float64 `json:"alpha"`
	Beta  *float64 `json:"beta"`
	Gamma *float64 `json:"gamma"`
}

type rotationRateEvent struct {
	Alpha *float64 `json:"alpha"`
	Beta  *float64 `json:"beta"`
	Gamma *float64 `json:"gamma"`
}

type accelerationEvent struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
	Z *float64 `json:"z"`
}

type motionEvent struct {
	RotationRate                 *rotationRateEvent `json:"rotationRate"`
	AccelerationIncludingGravity *accelerationEvent `json:"accelerationIncludingGravity"`
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// DecodeOrientation decodes an orientation event payload.
func DecodeOrientation(payload []byte) (OrientationSample, error) {
	var ev orientationEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return OrientationSample{}, fmt.Errorf("decode orientation: %w", err)
	}
	return OrientationSample{
		Alpha: orZero(ev.Alpha),
		Beta:  orZero(ev.Beta),
		Gamma: orZero(ev.Gamma),
	}, nil
}

// DecodeMotion decodes a motion event payload. Either nested object may be missing.
func DecodeMotion(payload []byte) (MotionSample, error) {
	var ev motionEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return MotionSample{}, fmt.Errorf("decode motion: %w", err)
	}

	var s MotionSample
	if r := ev.RotationRate; r != nil {
		s.RotationRate = RotationRate{Alpha: orZero(r.Alpha), Beta: orZero(r.Beta), Gamma: orZero(r.Gamma)}
	}
	if a := ev.AccelerationIncludingGravity; a != nil {
		s.AccelerationIncludingGravity = Acceleration{X: orZero(a.X), Y: orZero(a.Y), Z: orZero(a.Z)}
	}
	return s, nil
}
