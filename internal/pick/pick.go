// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package pick

import (
	"image"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/panorama_navigator/internal/scene"
	"github.com/relabs-tech/panorama_navigator/internal/texture"
)

// Result is one successful pick.
type Result struct {
	ID       string      `json:"id"`
	Cylinder int         `json:"cylinder"`
	Part     string      `json:"part"`
	U        float64     `json:"u"`
	V        float64     `json:"v"`
	Pixel    image.Point `json:"pixel"`
	At       time.Time   `json:"at"`
}

// Config controls pixel mapping and the transient marker.
type Config struct {
	// TextureSizes are the panorama dimensions per cylinder.
	TextureSizes [2]image.Point
	// MarkerOffset moves the marker along the hit's outward normal; negative
	// values pull it towards the viewer.
	MarkerOffset float64
	// MarkerLifetime is how long the marker stays; 0 disables markers.
	MarkerLifetime time.Duration
}

// DefaultConfig returns the prototype's values.
func DefaultConfig() Config {
	return Config{
		TextureSizes:   [2]image.Point{texture.DefaultSize, texture.DefaultSize},
		MarkerOffset:   -0.02,
		MarkerLifetime: time.Second,
	}
}

// Picker casts the screen-centre ray against the active cylinder.
type Picker struct {
	raycaster scene.Raycaster
	markers   scene.MarkerHost
	sink      Sink
	cfg       Config

	now       func() time.Time
	afterFunc func(time.Duration, func())
}

// New returns a Picker. markers and sink may be nil.
func New(raycaster scene.Raycaster, markers scene.MarkerHost, sink Sink, cfg Config) *Picker {
	return &Picker{
		raycaster: raycaster,
		markers:   markers,
		sink:      sink,
		cfg:       cfg,
		now:       time.Now,
		afterFunc: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// Pick raycasts from the screen centre through cylinder active only. A miss
// returns false and has no side effects. A hit reports the nearest hit's UV
// unchanged.
func (p *Picker) Pick(active int) (Result, bool) {
	hits := p.raycaster.RaycastCenter(active)
	if len(hits) == 0 {
		return Result{}, false
	}
	hit := hits[0]

	size := texture.DefaultSize
	if active >= 0 && active < len(p.cfg.TextureSizes) && p.cfg.TextureSizes[active] != (image.Point{}) {
		size = p.cfg.TextureSizes[active]
	}

	res := Result{
		ID:       uuid.NewString(),
		Cylinder: active,
		Part:     hit.Part.String(),
		U:        hit.U,
		V:        hit.V,
		Pixel:    texture.PixelAt(hit.U, hit.V, size),
		At:       p.now(),
	}

	if p.markers != nil && p.cfg.MarkerLifetime > 0 {
		pos := r3.Add(hit.Point, r3.Scale(p.cfg.MarkerOffset, hit.Normal))
		id := p.markers.AddMarker(pos)
		p.afterFunc(p.cfg.MarkerLifetime, func() { p.markers.RemoveMarker(id) })
	}

	if p.sink != nil {
		p.sink.Report(res)
	}
	return res, true
}
