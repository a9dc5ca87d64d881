// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package frame runs the per-frame navigation update.
package frame

import (
	"context"
	"log"
	"time"

	"gonum.org/v1/gonum/num/quat"

	"github.com/relabs-tech/panorama_navigator/internal/navigation"
	"github.com/relabs-tech/panorama_navigator/internal/pick"
	"github.com/relabs-tech/panorama_navigator/internal/scene"
	"github.com/relabs-tech/panorama_navigator/internal/sensor"
)

// Frame is what one Step derived and handed to the renderer.
type Frame struct {
	Seq       uint64
	Dt        float64
	Speed     float64
	State     navigation.NavigatorState
	Pose      navigation.CameraPose
	SceneRoll quat.Number
	Visible   [2]bool
	Switch    navigation.Switch
}

// Driver ties sensor state, navigation and the renderer together. Step and
// Run must be called from one goroutine; RequestPick may be called from any.
type Driver struct {
	sensors    *sensor.State
	motion     *navigation.MotionModel
	zoom       navigation.ZoomConfig
	controller *navigation.Controller
	renderer   scene.Renderer
	picker     *pick.Picker

	interval time.Duration
	seq      uint64
	onFrame  func(Frame)

	pickRequests chan struct{}
}

// Option configures a Driver.
type Option func(*Driver)

// WithInterval sets the nominal frame interval used for the first frame's dt.
func WithInterval(d time.Duration) Option {
	return func(dr *Driver) { dr.interval = d }
}

// WithPicker enables pick requests.
func WithPicker(p *pick.Picker) Option {
	return func(dr *Driver) { dr.picker = p }
}

// WithFrameHook calls f after every frame has been drawn.
func WithFrameHook(f func(Frame)) Option {
	return func(dr *Driver) { dr.onFrame = f }
}

// NewDriver returns a Driver. renderer must not be nil.
func NewDriver(
	sensors *sensor.State,
	motion *navigation.MotionModel,
	zoom navigation.ZoomConfig,
	controller *navigation.Controller,
	renderer scene.Renderer,
	opts ...Option,
) *Driver {
	d := &Driver{
		sensors:      sensors,
		motion:       motion,
		zoom:         zoom,
		controller:   controller,
		renderer:     renderer,
		interval:     16 * time.Millisecond,
		pickRequests: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Step advances navigation by dt seconds using the latest sensor snapshot and
// pushes the result to the renderer.
func (d *Driver) Step(dt float64) Frame {
	snap := d.sensors.Snapshot()

	o := navigation.MapOrientation(snap.Orientation)

	st := d.controller.State()
	speed, rotation := d.motion.Step(snap.Motion, dt, st.Rotation)
	d.controller.SetRotation(rotation)

	sw := d.controller.Advance(speed, dt)
	switch sw {
	case navigation.SwitchedUp:
		log.Println("frame: transitioned to upper cylinder")
	case navigation.SwitchedDown:
		log.Println("frame: transitioned to lower cylinder")
	}
	st = d.controller.State()

	pose := navigation.CameraPose{
		Orientation: o.Camera,
		Fov:         d.zoom.FieldOfView(st.Rotation),
		Position:    st.Position,
	}

	d.renderer.SetCamera(pose)
	d.renderer.SetSceneRoll(o.SceneRoll)
	var visible [2]bool
	for i := range visible {
		visible[i] = d.controller.Visible(i)
		d.renderer.SetVisible(i, visible[i])
	}
	if err := d.renderer.Draw(); err != nil {
		log.Printf("frame: draw error: %v", err)
	}

	d.seq++
	f := Frame{
		Seq:       d.seq,
		Dt:        dt,
		Speed:     speed,
		State:     st,
		Pose:      pose,
		SceneRoll: o.SceneRoll,
		Visible:   visible,
		Switch:    sw,
	}
	if d.onFrame != nil {
		d.onFrame(f)
	}
	return f
}

// RequestPick asks for one pick at the next opportunity. Requests arriving
// while one is pending collapse into it; the caller never blocks.
func (d *Driver) RequestPick() {
	select {
	case d.pickRequests <- struct{}{}:
	default:
	}
}

// servePick runs a pending pick against the current camera and active cylinder.
func (d *Driver) servePick() (pick.Result, bool) {
	if d.picker == nil {
		return pick.Result{}, false
	}
	return d.picker.Pick(d.controller.State().Active)
}

// Run steps once per tick until ctx is done, serving pick requests between
// frames. dt is the time between consecutive ticks.
func (d *Driver) Run(ctx context.Context, ticks <-chan time.Time) error {
	var lastTick time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.pickRequests:
			d.servePick()
		case t := <-ticks:
			dt := d.interval.Seconds()
			if !lastTick.IsZero() {
				dt = t.Sub(lastTick).Seconds()
			}
			lastTick = t
			d.Step(dt)
		}
	}
}
