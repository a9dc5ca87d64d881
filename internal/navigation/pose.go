// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package navigation

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// CameraPose is recomputed every frame.
type CameraPose struct {
	Orientation quat.Number
	Fov         float64 // degrees
	Position    float64 // axial position, the camera's scene Z
}

// Eye returns the camera position in scene coordinates. The observer always
// sits on the shared axis.
func (p CameraPose) Eye() r3.Vec {
	return r3.Vec{Z: p.Position}
}

// Forward returns the unit look direction: the camera's -Z axis rotated by
// its orientation.
func (p CameraPose) Forward() r3.Vec {
	return Rotate(p.Orientation, r3.Vec{Z: -1})
}

// Rotate rotates v by the unit quaternion q.
func Rotate(q quat.Number, v r3.Vec) r3.Vec {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return r3.Vec{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}
