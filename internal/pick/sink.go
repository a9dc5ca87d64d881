// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package pick

import "log"

// Sink receives pick results. Report must not block the frame loop for long.
type Sink interface {
	Report(Result)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Result)

func (f SinkFunc) Report(r Result) { f(r) }

// Sinks fans a result out to every non-nil sink in order.
type Sinks []Sink

func (s Sinks) Report(r Result) {
	for _, sink := range s {
		if sink != nil {
			sink.Report(r)
		}
	}
}

// LogSink logs each pick with its panorama pixel coordinates.
type LogSink struct{}

func (LogSink) Report(r Result) {
	log.Printf("pick: cylinder %d - texture coords: %d %d (u=%.4f v=%.4f %s)",
		r.Cylinder+1, r.Pixel.X, r.Pixel.Y, r.U, r.V, r.Part)
}
