// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensor

import (
	"math"
	"time"
)

// Source is anything that can provide sensor samples over time.
type Source interface {
	Next() (OrientationSample, MotionSample, error)
}

type mockSource struct {
	start time.Time
	now   func() time.Time
}

// NewMockSource creates a mock sensor source that generates smoothly changing
// values: a slow look-around, a gentle roll, and a forward/backward tilt that
// leaves the dead zone on both sides every cycle.
func NewMockSource() Source {
	return &mockSource{start: time.Now(), now: time.Now}
}

func (m *mockSource) Next() (OrientationSample, MotionSample, error) {
	elapsed := m.now().Sub(m.start).Seconds()

	o := OrientationSample{
		Alpha: 20 * math.Sin(elapsed),
		Beta:  90 + 15*math.Cos(elapsed*0.7),
		Gamma: 30 * math.Sin(elapsed*0.3),
	}
	mo := MotionSample{
		RotationRate: RotationRate{
			Alpha: 20 * math.Cos(elapsed),
			Beta:  -10.5 * math.Sin(elapsed*0.7),
			Gamma: 9 * math.Cos(elapsed*0.3),
		},
		AccelerationIncludingGravity: Acceleration{
			X: 0.3 * math.Sin(elapsed*1.3),
			Y: 0.5,
			Z: 9.8 * math.Sin(elapsed*0.2),
		},
	}
	return o, mo, nil
}
