// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package navigation

import (
	"math"

	"gonum.org/v1/gonum/num/quat"

	"github.com/relabs-tech/panorama_navigator/internal/sensor"
)

// Orientation is what the camera and the scene take from one orientation sample.
type Orientation struct {
	// Camera is the look rotation: pitch from beta, yaw from gamma.
	Camera quat.Number
	// SceneRoll is applied to the cylinder group so the panoramas stay upright
	// while the device rolls.
	SceneRoll quat.Number
	// Alpha is the unmodified roll angle in degrees.
	Alpha float64
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// axisAngle returns the unit quaternion rotating by angle (radians) about a
// unit axis.
func axisAngle(x, y, z, angle float64) quat.Number {
	s := math.Sin(angle / 2)
	return quat.Number{Real: math.Cos(angle / 2), Imag: x * s, Jmag: y * s, Kmag: z * s}
}

// MapOrientation converts an orientation sample into camera and scene rotations.
// The camera uses the intrinsic X-Y-Z Euler order with a zero Z angle; alpha
// never enters the camera rotation.
func MapOrientation(o sensor.OrientationSample) Orientation {
	pitch := axisAngle(1, 0, 0, degToRad(o.Beta))
	yaw := axisAngle(0, 1, 0, degToRad(o.Gamma))

	return Orientation{
		Camera:    quat.Mul(pitch, yaw),
		SceneRoll: axisAngle(0, 0, 1, -degToRad(o.Alpha)),
		Alpha:     o.Alpha,
	}
}
