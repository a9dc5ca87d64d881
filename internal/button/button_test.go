package button

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func watch(t *testing.T, pin *gpiotest.Pin, debounce time.Duration) (*atomic.Int32, context.CancelFunc, <-chan error) {
	t.Helper()
	var fired atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, pin, debounce, func() { fired.Add(1) })
	}()
	return &fired, cancel, done
}

func TestWatchFiresOnPress(t *testing.T) {
	t.Parallel()
	pin := &gpiotest.Pin{N: "GPIO17", EdgesChan: make(chan gpio.Level)}
	fired, cancel, done := watch(t, pin, 0)

	pin.EdgesChan <- gpio.Low
	pin.EdgesChan <- gpio.High // release
	pin.EdgesChan <- gpio.Low

	assert.Eventually(t, func() bool { return fired.Load() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, gpio.PullUp, pin.P)
}

func TestWatchDebounces(t *testing.T) {
	t.Parallel()
	pin := &gpiotest.Pin{N: "GPIO17", EdgesChan: make(chan gpio.Level)}
	fired, cancel, done := watch(t, pin, time.Hour)

	for i := 0; i < 5; i++ {
		pin.EdgesChan <- gpio.Low
	}
	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return fired.Load() > 1 }, 50*time.Millisecond, 5*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestWatchRequiresEdgeSupport(t *testing.T) {
	t.Parallel()
	pin := &gpiotest.Pin{N: "GPIO4"}
	err := Watch(context.Background(), pin, 0, func() {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configure")
}
