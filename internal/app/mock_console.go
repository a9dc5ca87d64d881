// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/panorama_navigator/internal/config"
	"github.com/relabs-tech/panorama_navigator/internal/frame"
	"github.com/relabs-tech/panorama_navigator/internal/navigation"
	"github.com/relabs-tech/panorama_navigator/internal/pick"
	"github.com/relabs-tech/panorama_navigator/internal/scene"
	"github.com/relabs-tech/panorama_navigator/internal/sensor"
)

// printFrame is the frame line both consoles print.
func printFrame(w io.Writer, v frameView) {
	fmt.Fprintf(w,
		"[FRAME] #%-6d CYL=%d  POS=%7.2f  SPEED=%6.2f  ROT=%5.2f  FOV=%5.1f\n",
		v.Seq, v.Active+1, v.Position, v.Speed, v.Rotation, v.Fov,
	)
}

func printPick(w io.Writer, r pick.Result) {
	fmt.Fprintf(w,
		"[PICK]  cylinder %d - texture coords: %d %d  (u=%.4f v=%.4f %s)\n",
		r.Cylinder+1, r.Pixel.X, r.Pixel.Y, r.U, r.V, r.Part,
	)
}

// mockConsole runs the navigator without any transport: a sensor source is
// polled into the sensor state and frames are printed at most once per
// logEvery, plus every cylinder switch.
type mockConsole struct {
	src      sensor.Source
	state    *sensor.State
	driver   *frame.Driver
	out      io.Writer
	logEvery time.Duration
	now      func() time.Time

	lastPrint time.Time
}

func newMockConsole(cfg *config.Config, src sensor.Source, out io.Writer) (*mockConsole, error) {
	cyl, err := cylindersFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	pickCfg, err := pickFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	c := &mockConsole{
		src:      src,
		state:    sensor.NewState(),
		out:      out,
		logEvery: time.Duration(cfg.ConsoleLogInterval) * time.Millisecond,
		now:      time.Now,
	}

	sc := scene.New(cyl, nil)
	picker := pick.New(sc, sc, pick.SinkFunc(func(r pick.Result) { printPick(out, r) }), pickCfg)
	c.driver = frame.NewDriver(
		c.state,
		navigation.NewMotionModel(motionFromConfig(cfg)),
		zoomFromConfig(cfg),
		navigation.NewController(cyl, 0),
		sc,
		frame.WithInterval(time.Duration(cfg.FrameInterval)*time.Millisecond),
		frame.WithPicker(picker),
		frame.WithFrameHook(c.onFrame),
	)
	return c, nil
}

func (c *mockConsole) onFrame(f frame.Frame) {
	now := c.now()
	if f.Switch == navigation.NoSwitch && now.Sub(c.lastPrint) < c.logEvery {
		return
	}
	c.lastPrint = now
	printFrame(c.out, newFrameView(f))
}

// sample copies one reading from the source into the sensor state.
func (c *mockConsole) sample() error {
	o, m, err := c.src.Next()
	if err != nil {
		return err
	}
	c.state.SetOrientation(o)
	c.state.SetMotion(m)
	return nil
}

// feed samples the source on every tick until ctx is done.
func (c *mockConsole) feed(ctx context.Context, ticks <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			if err := c.sample(); err != nil {
				log.Printf("console: error from mock source: %v", err)
			}
		}
	}
}

// RunMockConsole runs the whole pipeline locally on the mock source. Each
// line read from stdin fires one pick.
func RunMockConsole() error {
	cfg := config.Get()

	c, err := newMockConsole(cfg, sensor.NewMockSource(), os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sampleTicker := time.NewTicker(time.Duration(cfg.ProducerInterval) * time.Millisecond)
	defer sampleTicker.Stop()
	go c.feed(ctx, sampleTicker.C)

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			c.driver.RequestPick()
		}
	}()

	log.Println("console: running mock navigator, press Enter to pick")

	frameTicker := time.NewTicker(time.Duration(cfg.FrameInterval) * time.Millisecond)
	defer frameTicker.Stop()

	if err := c.driver.Run(ctx, frameTicker.C); err != nil && ctx.Err() == nil {
		return err
	}
	log.Println("console: shutting down")
	return nil
}
