package pick

import (
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/panorama_navigator/internal/navigation"
	"github.com/relabs-tech/panorama_navigator/internal/scene"
	"github.com/relabs-tech/panorama_navigator/internal/sensor"
)

type fakeRaycaster struct {
	hits    map[int][]scene.Hit
	queried []int
}

func (f *fakeRaycaster) RaycastCenter(surface int) []scene.Hit {
	f.queried = append(f.queried, surface)
	return f.hits[surface]
}

type fakeMarkers struct {
	added   []r3.Vec
	removed []string
}

func (f *fakeMarkers) AddMarker(pos r3.Vec) string {
	f.added = append(f.added, pos)
	return "m1"
}

func (f *fakeMarkers) RemoveMarker(id string) {
	f.removed = append(f.removed, id)
}

type recorder struct{ results []Result }

func (r *recorder) Report(res Result) { r.results = append(r.results, res) }

func TestPickMiss(t *testing.T) {
	t.Parallel()
	rc := &fakeRaycaster{}
	markers := &fakeMarkers{}
	rec := &recorder{}
	p := New(rc, markers, rec, DefaultConfig())

	_, ok := p.Pick(navigation.Upper)
	assert.False(t, ok)
	assert.Equal(t, []int{navigation.Upper}, rc.queried)
	assert.Empty(t, rec.results)
	assert.Empty(t, markers.added)
}

func TestPickHit(t *testing.T) {
	t.Parallel()
	rc := &fakeRaycaster{hits: map[int][]scene.Hit{
		navigation.Lower: {
			{Surface: 0, Part: scene.Side, Distance: 30, Point: r3.Vec{Y: -30}, Normal: r3.Vec{Y: -1}, U: 0.5, V: 0.5},
			{Surface: 0, Part: scene.Top, Distance: 80, U: 0.1, V: 0.9},
		},
	}}
	markers := &fakeMarkers{}
	rec := &recorder{}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	p := New(rc, markers, rec, DefaultConfig())
	p.now = func() time.Time { return at }
	var delay time.Duration
	var expire func()
	p.afterFunc = func(d time.Duration, f func()) { delay, expire = d, f }

	res, ok := p.Pick(navigation.Lower)
	require.True(t, ok)

	assert.Equal(t, navigation.Lower, res.Cylinder)
	assert.Equal(t, 0.5, res.U)
	assert.Equal(t, 0.5, res.V)
	assert.Equal(t, "side", res.Part)
	assert.Equal(t, image.Point{X: 1400, Y: 700}, res.Pixel)
	assert.Equal(t, at, res.At)
	assert.NotEmpty(t, res.ID)

	require.Len(t, rec.results, 1)
	assert.Equal(t, res, rec.results[0])

	require.Len(t, markers.added, 1)
	assert.InDelta(t, -29.98, markers.added[0].Y, 1e-9)
	assert.Equal(t, time.Second, delay)
	require.NotNil(t, expire)
	assert.Empty(t, markers.removed)
	expire()
	assert.Equal(t, []string{"m1"}, markers.removed)
}

func TestPickUsesPerCylinderTextureSize(t *testing.T) {
	t.Parallel()
	rc := &fakeRaycaster{hits: map[int][]scene.Hit{
		navigation.Upper: {{Surface: 1, U: 0.25, V: 0.75}},
	}}
	cfg := DefaultConfig()
	cfg.TextureSizes[navigation.Upper] = image.Point{X: 400, Y: 200}
	cfg.MarkerLifetime = 0

	markers := &fakeMarkers{}
	res, ok := New(rc, markers, nil, cfg).Pick(navigation.Upper)
	require.True(t, ok)
	assert.Equal(t, image.Point{X: 100, Y: 50}, res.Pixel)
	assert.Empty(t, markers.added)
}

func TestPickAgainstScene(t *testing.T) {
	t.Parallel()
	c, err := navigation.NewCylinders(
		navigation.CylinderSpec{Radius: 30, Height: 100, Offset: -50},
		navigation.CylinderSpec{Radius: 20, Height: 60, Offset: 30},
		navigation.Transition{Threshold: 50, Margin: 10, Inset: 1},
	)
	require.NoError(t, err)

	s := scene.New(c, nil)
	s.SetCamera(navigation.CameraPose{
		Orientation: navigation.MapOrientation(sensor.OrientationSample{Beta: -90}).Camera,
		Position:    0,
	})

	p := New(s, s, nil, DefaultConfig())
	p.afterFunc = func(time.Duration, func()) {}

	res, ok := p.Pick(navigation.Lower)
	require.True(t, ok)
	assert.InDelta(t, 0.5, res.U, 1e-9)
	assert.InDelta(t, 0.5, res.V, 1e-9)
	assert.Len(t, s.Snapshot().Markers, 1)

	// the hidden upper cylinder is never hit
	_, ok = p.Pick(navigation.Upper)
	assert.False(t, ok)
}

func TestSinks(t *testing.T) {
	t.Parallel()
	a, b := &recorder{}, &recorder{}
	var called int
	sinks := Sinks{a, nil, SinkFunc(func(Result) { called++ }), b, LogSink{}}

	sinks.Report(Result{Cylinder: 1, U: 0.2})
	assert.Len(t, a.results, 1)
	assert.Len(t, b.results, 1)
	assert.Equal(t, 1, called)
}
