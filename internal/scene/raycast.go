// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package scene

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/panorama_navigator/internal/navigation"
)

// Part identifies which face of a cylinder was hit.
type Part int

const (
	Side Part = iota
	Top       // cap at the cylinder's low-Z end
	Bottom    // cap at the cylinder's high-Z end
)

func (p Part) String() string {
	switch p {
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	default:
		return "side"
	}
}

// Hit is one ray/surface intersection.
type Hit struct {
	Surface  int
	Part     Part
	Distance float64
	Point    r3.Vec // scene coordinates
	Normal   r3.Vec // outward face normal, scene coordinates
	U, V     float64
}

const epsilon = 1e-9

// intersectCylinder works in the cylinder's local frame: the group roll is
// undone, then the cylinder centre is moved to the origin. The cylinder
// geometry is the web renderer's, turned so its axis runs along Z; that turn
// puts the geometry's "top" cap at -Z.
func intersectCylinder(spec navigation.CylinderSpec, roll quat.Number, origin, dir r3.Vec) []Hit {
	unroll := quat.Conj(roll)
	center := r3.Vec{Z: spec.Center()}
	o := r3.Sub(navigation.Rotate(unroll, origin), center)
	d := navigation.Rotate(unroll, r3.Unit(dir))

	radius, half := spec.Radius, spec.Height/2
	var hits []Hit

	toScene := func(p, n r3.Vec) (r3.Vec, r3.Vec) {
		return navigation.Rotate(roll, r3.Add(p, center)), navigation.Rotate(roll, n)
	}

	// Side wall: (ox + t dx)^2 + (oy + t dy)^2 = R^2
	a := d.X*d.X + d.Y*d.Y
	if a > epsilon {
		b := 2 * (o.X*d.X + o.Y*d.Y)
		c := o.X*o.X + o.Y*o.Y - radius*radius
		if disc := b*b - 4*a*c; disc >= 0 {
			sq := math.Sqrt(disc)
			for _, t := range []float64{(-b - sq) / (2 * a), (-b + sq) / (2 * a)} {
				if t <= epsilon {
					continue
				}
				p := r3.Add(o, r3.Scale(t, d))
				if p.Z < -half || p.Z > half {
					continue
				}
				n := r3.Vec{X: p.X / radius, Y: p.Y / radius}
				if r3.Dot(d, n) <= 0 {
					continue // front face, culled
				}
				sp, sn := toScene(p, n)
				hits = append(hits, Hit{
					Part:     Side,
					Distance: t,
					Point:    sp,
					Normal:   sn,
					U:        sideU(p),
					V:        0.5 - p.Z/spec.Height,
				})
			}
		}
	}

	// Caps
	if math.Abs(d.Z) > epsilon {
		for _, cp := range []struct {
			part Part
			z    float64
			sign float64
		}{
			{Top, -half, 1},
			{Bottom, half, -1},
		} {
			t := (cp.z - o.Z) / d.Z
			if t <= epsilon {
				continue
			}
			p := r3.Add(o, r3.Scale(t, d))
			if p.X*p.X+p.Y*p.Y > radius*radius {
				continue
			}
			n := r3.Vec{Z: math.Copysign(1, cp.z)}
			if r3.Dot(d, n) <= 0 {
				continue
			}
			p.Z = cp.z
			sp, sn := toScene(p, n)
			hits = append(hits, Hit{
				Part:     cp.part,
				Distance: t,
				Point:    sp,
				Normal:   sn,
				U:        0.5 + p.Y/(2*radius),
				V:        0.5 + cp.sign*p.X/(2*radius),
			})
		}
	}

	return hits
}

// sideU is the angle around the axis measured from +Y towards +X, as a
// fraction of a full turn in [0, 1).
func sideU(p r3.Vec) float64 {
	theta := math.Atan2(p.X, p.Y)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	u := theta / (2 * math.Pi)
	if u >= 1 {
		u = 0
	}
	return u
}
