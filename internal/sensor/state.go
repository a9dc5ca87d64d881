// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensor

import "sync"

// State holds the latest orientation and motion sample. Each Set overwrites the
// previous sample wholesale; nothing is queued, so the frame loop always reads
// whatever is current.
type State struct {
	mu sync.RWMutex

	orientation     OrientationSample
	haveOrientation bool
	orientationSeq  uint64

	motion     MotionSample
	haveMotion bool
	motionSeq  uint64
}

// Snapshot is a consistent copy of State taken under a single read lock.
// The Have flags tell a zero sample apart from no sample yet; the Seq
// counters grow by one per Set, so a reader can tell whether a sample is new.
type Snapshot struct {
	Orientation     OrientationSample
	HaveOrientation bool
	OrientationSeq  uint64

	Motion     MotionSample
	HaveMotion bool
	MotionSeq  uint64
}

// NewState returns an empty State. Before the first sample every reading is zero.
func NewState() *State {
	return &State{}
}

// SetOrientation replaces the latest orientation sample.
func (s *State) SetOrientation(o OrientationSample) {
	s.mu.Lock()
	s.orientation = o
	s.haveOrientation = true
	s.orientationSeq++
	s.mu.Unlock()
}

// SetMotion replaces the latest motion sample.
func (s *State) SetMotion(m MotionSample) {
	s.mu.Lock()
	s.motion = m
	s.haveMotion = true
	s.motionSeq++
	s.mu.Unlock()
}

// Snapshot copies both samples without tearing between their fields.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Orientation:     s.orientation,
		HaveOrientation: s.haveOrientation,
		OrientationSeq:  s.orientationSeq,
		Motion:          s.motion,
		HaveMotion:      s.haveMotion,
		MotionSeq:       s.motionSeq,
	}
}
