package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "viewer_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8.2, cfg.GravityRange)
	assert.Equal(t, 9.4, cfg.GravityReference)
	assert.Equal(t, 1.5, cfg.FactorLimit)
	assert.Equal(t, 25.0, cfg.MaxSpeed)
	assert.Equal(t, 50.0, cfg.TransitionThreshold)
	assert.Equal(t, 10.0, cfg.TransitionMargin)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("overlays values on defaults", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, `
# broker
MQTT_BROKER=tcp://localhost:1883
MAX_SPEED = 30
MIN_FOV=40
TEXTURE_LOWER=assets/inventory2.png
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
		assert.Equal(t, 30.0, cfg.MaxSpeed)
		assert.Equal(t, 40.0, cfg.MinFov)
		assert.Equal(t, "assets/inventory2.png", cfg.TextureLower)
		assert.Equal(t, 16, cfg.FrameInterval)
	})

	t.Run("rejects unknown key with line number", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "MAX_SPEED=3\nNOPE=1\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config line 2")
		assert.Contains(t, err.Error(), "NOPE")
	})

	t.Run("rejects malformed line", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "MAX_SPEED\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid config line 1")
	})

	t.Run("rejects bad number", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "GRAVITY_RANGE=abc\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GRAVITY_RANGE")
	})

	t.Run("validation runs after parsing", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "GRAVITY_RANGE=10\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GRAVITY_REFERENCE")
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), "absent.txt"))
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := map[string]func(c *Config){
		"frame interval":    func(c *Config) { c.FrameInterval = 0 },
		"min fov above":     func(c *Config) { c.MinFov = c.BaseFov + 1 },
		"serial baud":       func(c *Config) { c.SensorSerialPort = "/dev/ttyUSB0"; c.SensorBaudRate = 0 },
		"negative limit":    func(c *Config) { c.FactorLimit = -1 },
		"port range":        func(c *Config) { c.WebServerPort = 70000 },
		"negative lifetime": func(c *Config) { c.MarkerLifetimeMs = -5 },
		"pick log limit":    func(c *Config) { c.PickLogLimit = 0 },
	}
	for name, mutate := range cases {
		mutate := mutate
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestShippedConfigLoads(t *testing.T) {
	t.Parallel()
	cfg, err := Load(filepath.Join("..", "..", DefaultPath))
	require.NoError(t, err)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, Default().LowerOffset, cfg.LowerOffset)
}
