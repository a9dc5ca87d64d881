// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// DefaultPath is the config file the binaries look for in their working directory.
const DefaultPath = "viewer_config.txt"

// Config holds all application configuration values.
type Config struct {
	// MQTT (optional: an empty broker disables the bridge)
	MQTTBroker           string
	MQTTClientIDViewer   string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string

	// Topics
	TopicOrientation string
	TopicMotion      string
	TopicTrigger     string
	TopicFrame       string
	TopicPick        string

	// Serial handheld controller (optional)
	SensorSerialPort string
	SensorBaudRate   int

	// Pick button (optional GPIO pin name, e.g. "GPIO17")
	ButtonPin        string
	ButtonDebounceMs int

	// Timing
	FrameInterval        int // milliseconds
	FramePublishInterval int // milliseconds, MQTT frame topic throttle
	ProducerInterval     int // milliseconds
	ConsoleLogInterval   int // milliseconds

	// Web Server
	WebServerPort int
	WebStaticDir  string

	// Cylinders
	LowerRadius float64
	LowerHeight float64
	LowerOffset float64
	UpperRadius float64
	UpperHeight float64
	UpperOffset float64

	// Transition
	TransitionThreshold float64
	TransitionMargin    float64
	BoundaryInset       float64

	// Motion
	GravityRange     float64
	GravityReference float64
	FactorLimit      float64
	MaxSpeed         float64

	// Zoom
	BaseFov   float64 // degrees
	MinFov    float64 // degrees
	ZoomRange float64 // radians of accumulated roll for full zoom

	// Picking
	MarkerOffset     float64
	MarkerLifetimeMs int
	TextureLower     string // panorama image path, used for pixel coordinates
	TextureUpper     string
	PickJournalPath  string // empty disables the SQLite journal
	PickLogLimit     int
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: only reachable through InitGlobal and Get.
//   - configOnce: ensures InitGlobal() only runs once.
//   - configMu: write lock for initialization, read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns the configuration the viewer runs with when a key is not set.
// The geometry and motion constants are the ones the handheld prototype was tuned with.
func Default() *Config {
	return &Config{
		MQTTClientIDViewer:   "panorama-viewer",
		MQTTClientIDProducer: "panorama-producer-mock",
		MQTTClientIDConsole:  "panorama-console-subscriber",

		TopicOrientation: "panorama/sensor/orientation",
		TopicMotion:      "panorama/sensor/motion",
		TopicTrigger:     "panorama/trigger",
		TopicFrame:       "panorama/frame",
		TopicPick:        "panorama/pick",

		SensorBaudRate:   115200,
		ButtonDebounceMs: 200,

		FrameInterval:        16,
		FramePublishInterval: 100,
		ProducerInterval:     20,
		ConsoleLogInterval:   250,

		WebServerPort: 8080,
		WebStaticDir:  "web",

		LowerRadius: 30,
		LowerHeight: 100,
		LowerOffset: -50,
		UpperRadius: 20,
		UpperHeight: 60,
		UpperOffset: 30,

		TransitionThreshold: 50,
		TransitionMargin:    10,
		BoundaryInset:       1,

		GravityRange:     8.2,
		GravityReference: 9.4,
		FactorLimit:      1.5,
		MaxSpeed:         25,

		BaseFov:   70,
		MinFov:    70,
		ZoomRange: 2,

		MarkerOffset:     -0.02,
		MarkerLifetimeMs: 1000,
		PickLogLimit:     20,
	}
}

// Load reads the configuration file on top of Default() and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_VIEWER":
		c.MQTTClientIDViewer = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value

	// Topics
	case "TOPIC_ORIENTATION":
		c.TopicOrientation = value
	case "TOPIC_MOTION":
		c.TopicMotion = value
	case "TOPIC_TRIGGER":
		c.TopicTrigger = value
	case "TOPIC_FRAME":
		c.TopicFrame = value
	case "TOPIC_PICK":
		c.TopicPick = value

	// Serial
	case "SENSOR_SERIAL_PORT":
		c.SensorSerialPort = value
	case "SENSOR_BAUD_RATE":
		c.SensorBaudRate, err = parseInt(key, value)

	// Button
	case "BUTTON_PIN":
		c.ButtonPin = value
	case "BUTTON_DEBOUNCE_MS":
		c.ButtonDebounceMs, err = parseInt(key, value)

	// Timing
	case "FRAME_INTERVAL":
		c.FrameInterval, err = parseInt(key, value)
	case "FRAME_PUBLISH_INTERVAL":
		c.FramePublishInterval, err = parseInt(key, value)
	case "PRODUCER_INTERVAL":
		c.ProducerInterval, err = parseInt(key, value)
	case "CONSOLE_LOG_INTERVAL":
		c.ConsoleLogInterval, err = parseInt(key, value)

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseInt(key, value)
	case "WEB_STATIC_DIR":
		c.WebStaticDir = value

	// Cylinders
	case "LOWER_RADIUS":
		c.LowerRadius, err = parseFloat(key, value)
	case "LOWER_HEIGHT":
		c.LowerHeight, err = parseFloat(key, value)
	case "LOWER_OFFSET":
		c.LowerOffset, err = parseFloat(key, value)
	case "UPPER_RADIUS":
		c.UpperRadius, err = parseFloat(key, value)
	case "UPPER_HEIGHT":
		c.UpperHeight, err = parseFloat(key, value)
	case "UPPER_OFFSET":
		c.UpperOffset, err = parseFloat(key, value)

	// Transition
	case "TRANSITION_THRESHOLD":
		c.TransitionThreshold, err = parseFloat(key, value)
	case "TRANSITION_MARGIN":
		c.TransitionMargin, err = parseFloat(key, value)
	case "BOUNDARY_INSET":
		c.BoundaryInset, err = parseFloat(key, value)

	// Motion
	case "GRAVITY_RANGE":
		c.GravityRange, err = parseFloat(key, value)
	case "GRAVITY_REFERENCE":
		c.GravityReference, err = parseFloat(key, value)
	case "FACTOR_LIMIT":
		c.FactorLimit, err = parseFloat(key, value)
	case "MAX_SPEED":
		c.MaxSpeed, err = parseFloat(key, value)

	// Zoom
	case "BASE_FOV":
		c.BaseFov, err = parseFloat(key, value)
	case "MIN_FOV":
		c.MinFov, err = parseFloat(key, value)
	case "ZOOM_RANGE":
		c.ZoomRange, err = parseFloat(key, value)

	// Picking
	case "MARKER_OFFSET":
		c.MarkerOffset, err = parseFloat(key, value)
	case "MARKER_LIFETIME_MS":
		c.MarkerLifetimeMs, err = parseInt(key, value)
	case "TEXTURE_LOWER":
		c.TextureLower = value
	case "TEXTURE_UPPER":
		c.TextureUpper = value
	case "PICK_JOURNAL_PATH":
		c.PickJournalPath = value
	case "PICK_LOG_LIMIT":
		c.PickLogLimit, err = parseInt(key, value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

func parseInt(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func parseFloat(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

// Validate checks the values that would otherwise stall or break the frame loop.
// Cylinder geometry is validated where the cylinders are built.
func (c *Config) Validate() error {
	if c.FrameInterval <= 0 {
		return errors.New("FRAME_INTERVAL must be positive")
	}
	if c.ProducerInterval <= 0 {
		return errors.New("PRODUCER_INTERVAL must be positive")
	}
	if c.ConsoleLogInterval <= 0 {
		return errors.New("CONSOLE_LOG_INTERVAL must be positive")
	}
	if c.WebServerPort < 0 || c.WebServerPort > 65535 {
		return fmt.Errorf("WEB_SERVER_PORT must be 0-65535, got %d", c.WebServerPort)
	}
	if c.SensorSerialPort != "" && c.SensorBaudRate <= 0 {
		return errors.New("SENSOR_BAUD_RATE is required when SENSOR_SERIAL_PORT is set")
	}
	if c.GravityRange >= c.GravityReference {
		return fmt.Errorf("GRAVITY_RANGE (%g) must be below GRAVITY_REFERENCE (%g)", c.GravityRange, c.GravityReference)
	}
	if c.FactorLimit < 0 {
		return fmt.Errorf("FACTOR_LIMIT must not be negative, got %g", c.FactorLimit)
	}
	if c.MinFov > c.BaseFov {
		return fmt.Errorf("MIN_FOV (%g) must not exceed BASE_FOV (%g)", c.MinFov, c.BaseFov)
	}
	if c.MarkerLifetimeMs < 0 {
		return fmt.Errorf("MARKER_LIFETIME_MS must not be negative, got %d", c.MarkerLifetimeMs)
	}
	if c.PickLogLimit <= 0 {
		return fmt.Errorf("PICK_LOG_LIMIT must be positive, got %d", c.PickLogLimit)
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
