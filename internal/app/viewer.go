// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/panorama_navigator/internal/button"
	"github.com/relabs-tech/panorama_navigator/internal/config"
	"github.com/relabs-tech/panorama_navigator/internal/frame"
	"github.com/relabs-tech/panorama_navigator/internal/journal"
	"github.com/relabs-tech/panorama_navigator/internal/navigation"
	"github.com/relabs-tech/panorama_navigator/internal/pick"
	"github.com/relabs-tech/panorama_navigator/internal/scene"
	"github.com/relabs-tech/panorama_navigator/internal/sensor"
	"github.com/relabs-tech/panorama_navigator/internal/texture"
)

// cylindersFromConfig builds the two cylinders and their ranges.
func cylindersFromConfig(cfg *config.Config) (navigation.Cylinders, error) {
	return navigation.NewCylinders(
		navigation.CylinderSpec{Radius: cfg.LowerRadius, Height: cfg.LowerHeight, Offset: cfg.LowerOffset},
		navigation.CylinderSpec{Radius: cfg.UpperRadius, Height: cfg.UpperHeight, Offset: cfg.UpperOffset},
		navigation.Transition{Threshold: cfg.TransitionThreshold, Margin: cfg.TransitionMargin, Inset: cfg.BoundaryInset},
	)
}

func motionFromConfig(cfg *config.Config) navigation.MotionConfig {
	return navigation.MotionConfig{
		GRange:      cfg.GravityRange,
		GReference:  cfg.GravityReference,
		FactorLimit: cfg.FactorLimit,
		MaxSpeed:    cfg.MaxSpeed,
	}
}

func zoomFromConfig(cfg *config.Config) navigation.ZoomConfig {
	return navigation.ZoomConfig{BaseFov: cfg.BaseFov, MinFov: cfg.MinFov, Range: cfg.ZoomRange}
}

func pickFromConfig(cfg *config.Config) (pick.Config, error) {
	lower, err := texture.SizeOrDefault(cfg.TextureLower)
	if err != nil {
		return pick.Config{}, err
	}
	upper, err := texture.SizeOrDefault(cfg.TextureUpper)
	if err != nil {
		return pick.Config{}, err
	}
	return pick.Config{
		TextureSizes:   [2]image.Point{lower, upper},
		MarkerOffset:   cfg.MarkerOffset,
		MarkerLifetime: time.Duration(cfg.MarkerLifetimeMs) * time.Millisecond,
	}, nil
}

// viewer is one running navigator with its transports.
type viewer struct {
	cfg     *config.Config
	state   *sensor.State
	scene   *scene.Scene
	driver  *frame.Driver
	hub     *hub
	frames  *frameStore
	journal *journal.Journal
	client  mqtt.Client
	publish *frameThrottle
}

// newViewer builds the pipeline. client and j may be nil.
func newViewer(cfg *config.Config, client mqtt.Client, j *journal.Journal) (*viewer, error) {
	cyl, err := cylindersFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("cylinders: %w", err)
	}
	pickCfg, err := pickFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("textures: %w", err)
	}

	v := &viewer{
		cfg:     cfg,
		state:   sensor.NewState(),
		frames:  &frameStore{},
		journal: j,
		client:  client,
		publish: &frameThrottle{interval: time.Duration(cfg.FramePublishInterval) * time.Millisecond},
	}

	// The hub needs the driver to request picks and the scene needs the hub
	// to draw, so the hub calls back through v.
	v.hub = newHub(v.state, func() { v.driver.RequestPick() })
	v.scene = scene.New(cyl, v.hub.drawScene)

	sinks := pick.Sinks{pick.LogSink{}, v.hub}
	if j != nil {
		sinks = append(sinks, j)
	}
	if client != nil {
		sinks = append(sinks, mqttPickSink(client, cfg.TopicPick))
	}
	picker := pick.New(v.scene, v.scene, sinks, pickCfg)

	v.driver = frame.NewDriver(
		v.state,
		navigation.NewMotionModel(motionFromConfig(cfg)),
		zoomFromConfig(cfg),
		navigation.NewController(cyl, 0),
		v.scene,
		frame.WithInterval(time.Duration(cfg.FrameInterval)*time.Millisecond),
		frame.WithPicker(picker),
		frame.WithFrameHook(v.onFrame),
	)
	return v, nil
}

func (v *viewer) onFrame(f frame.Frame) {
	view := newFrameView(f)
	v.frames.set(view)

	if v.client == nil || !v.publish.allow(time.Now()) {
		return
	}
	payload, err := json.Marshal(view)
	if err != nil {
		log.Printf("viewer: frame marshal error: %v", err)
		return
	}
	publishAsync(v.client, v.cfg.TopicFrame, true, payload)
}

// subscribeSensors routes the sensor and trigger topics into the viewer.
func (v *viewer) subscribeSensors() error {
	if err := subscribe(v.client, v.cfg.TopicOrientation, orientationHandler(v.state)); err != nil {
		return err
	}
	if err := subscribe(v.client, v.cfg.TopicMotion, motionHandler(v.state)); err != nil {
		return err
	}
	return subscribe(v.client, v.cfg.TopicTrigger, triggerHandler(v.driver.RequestPick))
}

func (v *viewer) runSerial(ctx context.Context) {
	port, err := sensor.OpenSerial(v.cfg.SensorSerialPort, v.cfg.SensorBaudRate)
	if err != nil {
		log.Printf("viewer: serial sensor disabled: %v", err)
		return
	}
	go func() {
		<-ctx.Done()
		port.Close()
	}()
	log.Printf("viewer: reading sensor sentences from %s", v.cfg.SensorSerialPort)
	if err := sensor.ReadNMEA(ctx, port, v.state); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("viewer: serial sensor stopped: %v", err)
	}
}

func (v *viewer) runButton(ctx context.Context) {
	pin, err := button.Open(v.cfg.ButtonPin)
	if err != nil {
		log.Printf("viewer: pick button disabled: %v", err)
		return
	}
	debounce := time.Duration(v.cfg.ButtonDebounceMs) * time.Millisecond
	log.Printf("viewer: pick button on %s", v.cfg.ButtonPin)
	if err := button.Watch(ctx, pin, debounce, v.driver.RequestPick); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("viewer: pick button stopped: %v", err)
	}
}

// run serves HTTP and drives frames until ctx is done.
func (v *viewer) run(ctx context.Context) error {
	if v.cfg.SensorSerialPort != "" {
		go v.runSerial(ctx)
	}
	if v.cfg.ButtonPin != "" {
		go v.runButton(ctx)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", v.cfg.WebServerPort),
		Handler: newWebMux(v.hub, v.frames, v.cfg.WebStaticDir),
	}
	srvErr := make(chan error, 1)
	go func() {
		log.Printf("viewer: web server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()

	ticker := time.NewTicker(time.Duration(v.cfg.FrameInterval) * time.Millisecond)
	defer ticker.Stop()

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	loopErr := make(chan error, 1)
	go func() { loopErr <- v.driver.Run(loopCtx, ticker.C) }()

	var err error
	select {
	case err = <-srvErr:
		err = fmt.Errorf("web server: %w", err)
	case <-ctx.Done():
		log.Println("viewer: shutting down")
	}
	cancel()
	<-loopErr

	shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
	defer done()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		log.Printf("viewer: web server shutdown: %v", serr)
	}
	return err
}

// RunViewer runs the navigator with every transport the config enables.
func RunViewer() error {
	cfg := config.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var j *journal.Journal
	if cfg.PickJournalPath != "" {
		var err error
		j, err = journal.Open(cfg.PickJournalPath)
		if err != nil {
			return err
		}
		defer j.Close()
		log.Printf("viewer: recording picks to %s", cfg.PickJournalPath)
	}

	var client mqtt.Client
	if cfg.MQTTBroker != "" {
		var err error
		client, err = connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDViewer)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)
	}

	v, err := newViewer(cfg, client, j)
	if err != nil {
		return err
	}
	if client != nil {
		if err := v.subscribeSensors(); err != nil {
			return err
		}
	}
	return v.run(ctx)
}
