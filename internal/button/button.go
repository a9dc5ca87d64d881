// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package button turns a GPIO push button into pick triggers.
package button

import (
	"context"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// pollTimeout bounds each WaitForEdge call so ctx cancellation is noticed.
const pollTimeout = 100 * time.Millisecond

// Open initialises the host drivers and resolves the named pin.
func Open(name string) (gpio.PinIn, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("button: periph host init: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("button: pin %q not found", name)
	}
	return pin, nil
}

// Watch calls fire once per press until ctx is done. The pin is pulled up and
// a press is a falling edge; presses closer together than debounce are
// dropped.
func Watch(ctx context.Context, pin gpio.PinIn, debounce time.Duration, fire func()) error {
	if err := pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return fmt.Errorf("button: configure %s: %w", pin, err)
	}

	var last time.Time
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !pin.WaitForEdge(pollTimeout) {
			continue
		}
		if pin.Read() != gpio.Low {
			continue
		}
		now := time.Now()
		if !last.IsZero() && now.Sub(last) < debounce {
			continue
		}
		last = now
		fire()
	}
}
