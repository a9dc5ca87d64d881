package frame

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/quat"

	"github.com/relabs-tech/panorama_navigator/internal/navigation"
	"github.com/relabs-tech/panorama_navigator/internal/pick"
	"github.com/relabs-tech/panorama_navigator/internal/scene"
	"github.com/relabs-tech/panorama_navigator/internal/sensor"
)

type recordingRenderer struct {
	pose    navigation.CameraPose
	roll    quat.Number
	visible [2]bool
	draws   int
}

func (r *recordingRenderer) SetCamera(p navigation.CameraPose) { r.pose = p }
func (r *recordingRenderer) SetSceneRoll(q quat.Number)        { r.roll = q }
func (r *recordingRenderer) SetVisible(i int, v bool)          { r.visible[i] = v }
func (r *recordingRenderer) Draw() error                       { r.draws++; return nil }

func testCylinders(t *testing.T) navigation.Cylinders {
	t.Helper()
	c, err := navigation.NewCylinders(
		navigation.CylinderSpec{Radius: 30, Height: 100, Offset: -50},
		navigation.CylinderSpec{Radius: 20, Height: 60, Offset: 30},
		navigation.Transition{Threshold: 50, Margin: 10, Inset: 1},
	)
	require.NoError(t, err)
	return c
}

func newTestDriver(t *testing.T, start float64, zoom navigation.ZoomConfig, opts ...Option) (*Driver, *sensor.State, *recordingRenderer) {
	t.Helper()
	state := sensor.NewState()
	r := &recordingRenderer{}
	d := NewDriver(
		state,
		navigation.NewMotionModel(navigation.DefaultMotionConfig()),
		zoom,
		navigation.NewController(testCylinders(t), start),
		r,
		opts...,
	)
	return d, state, r
}

func tilt(z float64) sensor.MotionSample {
	return sensor.MotionSample{AccelerationIncludingGravity: sensor.Acceleration{Z: z}}
}

func TestStepStillDeviceStaysPut(t *testing.T) {
	t.Parallel()
	d, state, r := newTestDriver(t, 12, navigation.DefaultZoomConfig())
	state.SetMotion(tilt(0))

	f := d.Step(0.016)
	assert.Equal(t, 0.0, f.Speed)
	assert.Equal(t, 12.0, f.State.Position)
	assert.Equal(t, 12.0, r.pose.Position)
	assert.Equal(t, 70.0, r.pose.Fov)
	assert.Equal(t, [2]bool{true, false}, r.visible)
	assert.Equal(t, 1, r.draws)
}

func TestStepTiltMovesForward(t *testing.T) {
	t.Parallel()
	d, state, _ := newTestDriver(t, 0, navigation.DefaultZoomConfig())
	state.SetMotion(tilt(-10))

	f := d.Step(0.1)
	assert.InDelta(t, 37.5, f.Speed, 1e-9)
	assert.InDelta(t, 3.75, f.State.Position, 1e-9)
}

func TestStepMovementCancelsZoom(t *testing.T) {
	t.Parallel()
	zoom := navigation.ZoomConfig{BaseFov: 70, MinFov: 30, Range: 2}
	d, state, r := newTestDriver(t, 0, zoom)

	state.SetMotion(sensor.MotionSample{RotationRate: sensor.RotationRate{Gamma: 90}})
	f := d.Step(1)
	require.InDelta(t, math.Pi/2, f.State.Rotation, 1e-12)
	assert.Less(t, r.pose.Fov, 70.0)

	state.SetMotion(sensor.MotionSample{
		RotationRate:                 sensor.RotationRate{Gamma: 90},
		AccelerationIncludingGravity: sensor.Acceleration{Z: 9.5},
	})
	f = d.Step(0.1)
	assert.NotZero(t, f.Speed)
	assert.Equal(t, 0.0, f.State.Rotation)
	assert.Equal(t, 70.0, r.pose.Fov)
}

func TestStepNonFiniteRotationResets(t *testing.T) {
	t.Parallel()
	d, state, _ := newTestDriver(t, 0, navigation.DefaultZoomConfig())

	state.SetMotion(sensor.MotionSample{RotationRate: sensor.RotationRate{Gamma: 30}})
	d.Step(1)
	state.SetMotion(sensor.MotionSample{RotationRate: sensor.RotationRate{Gamma: math.NaN()}})
	f := d.Step(0.016)
	assert.Equal(t, 0.0, f.State.Rotation)
}

func TestStepSwitchesCylinderAndVisibility(t *testing.T) {
	t.Parallel()
	d, state, r := newTestDriver(t, 59, navigation.DefaultZoomConfig())
	state.SetMotion(tilt(-10))

	f := d.Step(0.1)
	assert.Equal(t, navigation.SwitchedUp, f.Switch)
	assert.Equal(t, navigation.Upper, f.State.Active)
	assert.Equal(t, 50.0, f.State.Position)
	assert.Equal(t, [2]bool{false, true}, r.visible)
	assert.Equal(t, [2]bool{false, true}, f.Visible)
}

func TestStepOrientationAndRoll(t *testing.T) {
	t.Parallel()
	d, state, r := newTestDriver(t, 0, navigation.DefaultZoomConfig())
	o := sensor.OrientationSample{Alpha: 40, Beta: 80, Gamma: -15}
	state.SetOrientation(o)

	f := d.Step(0.016)
	want := navigation.MapOrientation(o)

	approx := cmpopts.EquateApprox(0, 1e-12)
	if diff := cmp.Diff(want.Camera, r.pose.Orientation, approx); diff != "" {
		t.Errorf("camera orientation mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.SceneRoll, r.roll, approx); diff != "" {
		t.Errorf("scene roll mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(navigation.NavigatorState{Active: 0, Position: 0}, f.State, approx); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestPositionInvariantAcrossFrames(t *testing.T) {
	t.Parallel()
	d, state, _ := newTestDriver(t, 0, navigation.DefaultZoomConfig())
	cyl := testCylinders(t)

	for i := 0; i < 3000; i++ {
		z := 12 * math.Sin(float64(i)/40)
		state.SetMotion(tilt(z))
		f := d.Step(0.05)
		spec := cyl.Specs[f.State.Active]
		require.GreaterOrEqual(t, f.State.Position, spec.LowerBoundary)
		require.LessOrEqual(t, f.State.Position, spec.UpperBoundary)
		require.Equal(t, f.State.Active == navigation.Lower, f.Visible[navigation.Lower])
		require.Equal(t, f.State.Active == navigation.Upper, f.Visible[navigation.Upper])
	}
}

func TestRunStepsAndServesPicks(t *testing.T) {
	t.Parallel()

	cyl := testCylinders(t)
	sc := scene.New(cyl, nil)
	results := make(chan pick.Result, 4)
	picker := pick.New(sc, nil, pick.SinkFunc(func(r pick.Result) { results <- r }), pick.DefaultConfig())

	frames := make(chan Frame, 8)
	state := sensor.NewState()
	d := NewDriver(
		state,
		navigation.NewMotionModel(navigation.DefaultMotionConfig()),
		navigation.DefaultZoomConfig(),
		navigation.NewController(cyl, 0),
		sc,
		WithInterval(20*time.Millisecond),
		WithPicker(picker),
		WithFrameHook(func(f Frame) { frames <- f }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	ticks := make(chan time.Time)
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx, ticks) }()

	state.SetOrientation(sensor.OrientationSample{Beta: -90})
	state.SetMotion(tilt(-10))

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ticks <- t0
	f := <-frames
	assert.InDelta(t, 0.02, f.Dt, 1e-12)
	assert.InDelta(t, 0.75, f.State.Position, 1e-9)

	ticks <- t0.Add(40 * time.Millisecond)
	f = <-frames
	assert.InDelta(t, 0.04, f.Dt, 1e-12)
	assert.InDelta(t, 2.25, f.State.Position, 1e-9)

	d.RequestPick()
	d.RequestPick() // collapses into the pending request
	select {
	case r := <-results:
		assert.Equal(t, navigation.Lower, r.Cylinder)
		assert.InDelta(t, 0.5, r.U, 1e-9)
	case <-time.After(2 * time.Second):
		t.Fatal("pick was not served")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.LessOrEqual(t, len(results), 1)
}

func TestRequestPickWithoutPicker(t *testing.T) {
	t.Parallel()
	d, _, _ := newTestDriver(t, 0, navigation.DefaultZoomConfig())
	d.RequestPick()
	_, ok := d.servePick()
	assert.False(t, ok)
}
