// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package navigation

// NavigatorState is the observer's mutable navigation state.
type NavigatorState struct {
	Active   int     `json:"active"`   // index of the active cylinder
	Position float64 `json:"position"` // axial position
	Rotation float64 `json:"rotation"` // roll-driven rotation accumulator, radians
}

// Switch reports a change of active cylinder during one Advance.
type Switch int

const (
	NoSwitch Switch = iota
	SwitchedUp
	SwitchedDown
)

func (s Switch) String() string {
	switch s {
	case SwitchedUp:
		return "up"
	case SwitchedDown:
		return "down"
	default:
		return "none"
	}
}

// Controller owns the NavigatorState and runs the two-cylinder hand-off.
// It is driven from a single goroutine (the frame loop).
type Controller struct {
	cylinders Cylinders
	state     NavigatorState
}

// NewController starts on the lower cylinder at start, clamped to its range.
func NewController(c Cylinders, start float64) *Controller {
	return &Controller{
		cylinders: c,
		state:     NavigatorState{Active: Lower, Position: c.Specs[Lower].Clamp(start)},
	}
}

// State returns a copy of the navigation state.
func (c *Controller) State() NavigatorState {
	return c.state
}

// Active returns the active cylinder's geometry and range.
func (c *Controller) Active() CylinderSpec {
	return c.cylinders.Specs[c.state.Active]
}

// Visible reports whether cylinder i should be shown. Only the active one is.
func (c *Controller) Visible(i int) bool {
	return i == c.state.Active
}

// SetRotation stores the rotation accumulator computed by the motion model.
func (c *Controller) SetRotation(r float64) {
	c.state.Rotation = r
}

// Advance moves the observer by speed*dt, switches cylinder when the position
// leaves the hysteresis band, and clamps to the active cylinder's range.
func (c *Controller) Advance(speed, dt float64) Switch {
	tr := c.cylinders.Transition
	c.state.Position += speed * dt

	sw := NoSwitch
	switch {
	case c.state.Active == Lower && c.state.Position > tr.Up():
		c.state.Active = Upper
		c.state.Position = tr.Threshold
		sw = SwitchedUp
	case c.state.Active == Upper && c.state.Position < tr.Down():
		c.state.Active = Lower
		c.state.Position = tr.Up()
		sw = SwitchedDown
	}

	c.state.Position = c.cylinders.Specs[c.state.Active].Clamp(c.state.Position)
	return sw
}
