// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package scene

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/panorama_navigator/internal/navigation"
)

// Renderer is the per-frame side of the rendering collaborator.
type Renderer interface {
	SetCamera(pose navigation.CameraPose)
	SetSceneRoll(roll quat.Number)
	SetVisible(surface int, visible bool)
	// Draw is called once per frame after the setters.
	Draw() error
}

// Raycaster answers screen-centre ray queries against one named surface.
type Raycaster interface {
	// RaycastCenter returns the hits of the camera's centre ray on surface,
	// nearest first. A hidden surface never yields hits.
	RaycastCenter(surface int) []Hit
}

// MarkerHost places transient pick markers.
type MarkerHost interface {
	AddMarker(pos r3.Vec) string
	RemoveMarker(id string)
}

// Marker is a transient point shown where a pick landed.
type Marker struct {
	ID       string `json:"id"`
	Position r3.Vec `json:"position"`
}

// Snapshot is the scene as of one Draw call.
type Snapshot struct {
	Camera  navigation.CameraPose
	Roll    quat.Number
	Visible [2]bool
	Markers []Marker
}

// Scene is the in-process scene model: two closed cylinders stacked on the
// scene Z axis inside a group that carries the scene roll, plus a camera on
// that axis. It implements Renderer, Raycaster and MarkerHost; Draw hands a
// Snapshot to the OnDraw hook, which forwards it to the real display.
type Scene struct {
	mu sync.Mutex

	cylinders [2]navigation.CylinderSpec
	camera    navigation.CameraPose
	roll      quat.Number
	visible   [2]bool
	markers   map[string]Marker
	order     []string

	onDraw func(Snapshot) error
}

var (
	_ Renderer   = (*Scene)(nil)
	_ Raycaster  = (*Scene)(nil)
	_ MarkerHost = (*Scene)(nil)
)

// New builds a scene for the two cylinders. The lower one starts visible.
// onDraw may be nil.
func New(c navigation.Cylinders, onDraw func(Snapshot) error) *Scene {
	return &Scene{
		cylinders: c.Specs,
		camera:    navigation.CameraPose{Orientation: quat.Number{Real: 1}},
		roll:      quat.Number{Real: 1},
		visible:   [2]bool{true, false},
		markers:   make(map[string]Marker),
		onDraw:    onDraw,
	}
}

func (s *Scene) SetCamera(pose navigation.CameraPose) {
	s.mu.Lock()
	s.camera = pose
	s.mu.Unlock()
}

func (s *Scene) SetSceneRoll(roll quat.Number) {
	s.mu.Lock()
	s.roll = roll
	s.mu.Unlock()
}

func (s *Scene) SetVisible(surface int, visible bool) {
	if surface < 0 || surface >= len(s.visible) {
		return
	}
	s.mu.Lock()
	s.visible[surface] = visible
	s.mu.Unlock()
}

// Visible reports whether surface is currently shown.
func (s *Scene) Visible(surface int) bool {
	if surface < 0 || surface >= len(s.visible) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible[surface]
}

// Snapshot copies the current scene state.
func (s *Scene) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	markers := make([]Marker, 0, len(s.order))
	for _, id := range s.order {
		markers = append(markers, s.markers[id])
	}
	return Snapshot{Camera: s.camera, Roll: s.roll, Visible: s.visible, Markers: markers}
}

func (s *Scene) Draw() error {
	if s.onDraw == nil {
		return nil
	}
	if err := s.onDraw(s.Snapshot()); err != nil {
		return fmt.Errorf("scene draw: %w", err)
	}
	return nil
}

func (s *Scene) AddMarker(pos r3.Vec) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.markers[id] = Marker{ID: id, Position: pos}
	s.order = append(s.order, id)
	s.mu.Unlock()
	return id
}

func (s *Scene) RemoveMarker(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.markers[id]; !ok {
		return
	}
	delete(s.markers, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Scene) RaycastCenter(surface int) []Hit {
	s.mu.Lock()
	pose := s.camera
	s.mu.Unlock()
	return s.Raycast(surface, pose.Eye(), pose.Forward())
}

// Raycast intersects the ray origin+t*dir (scene coordinates, t > 0) with
// surface. Only faces seen from inside count, matching the back-side
// materials the panoramas are drawn with.
func (s *Scene) Raycast(surface int, origin, dir r3.Vec) []Hit {
	if surface < 0 || surface >= len(s.cylinders) {
		return nil
	}
	s.mu.Lock()
	visible := s.visible[surface]
	roll := s.roll
	spec := s.cylinders[surface]
	s.mu.Unlock()

	if !visible {
		return nil
	}

	hits := intersectCylinder(spec, roll, origin, dir)
	for i := range hits {
		hits[i].Surface = surface
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}
