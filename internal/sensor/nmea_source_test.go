package sensor

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withChecksum wraps a sentence body in '$' and its XOR checksum.
func withChecksum(body string) string {
	var cs byte
	for i := 0; i < len(body); i++ {
		cs ^= body[i]
	}
	return fmt.Sprintf("$%s*%02X", body, cs)
}

func TestSentenceParser(t *testing.T) {
	t.Parallel()
	parser := NewSentenceParser()

	t.Run("orientation", func(t *testing.T) {
		t.Parallel()
		s, err := parser.Parse(withChecksum("PSNSO,12.5,88.0,-4.25"))
		require.NoError(t, err)
		m, ok := s.(OrientationSentence)
		require.True(t, ok)
		assert.Equal(t, OrientationSample{Alpha: 12.5, Beta: 88, Gamma: -4.25}, m.Sample)
	})

	t.Run("motion with empty fields", func(t *testing.T) {
		t.Parallel()
		s, err := parser.Parse(withChecksum("PSNSM,,,30,0.1,,-10"))
		require.NoError(t, err)
		m, ok := s.(MotionSentence)
		require.True(t, ok)
		assert.Equal(t, RotationRate{Gamma: 30}, m.Sample.RotationRate)
		assert.Equal(t, Acceleration{X: 0.1, Z: -10}, m.Sample.AccelerationIncludingGravity)
	})

	t.Run("missing trailing fields", func(t *testing.T) {
		t.Parallel()
		s, err := parser.Parse(withChecksum("PSNSO,5"))
		require.NoError(t, err)
		assert.Equal(t, OrientationSample{Alpha: 5}, s.(OrientationSentence).Sample)
	})

	t.Run("non-finite values read as zero", func(t *testing.T) {
		t.Parallel()
		s, err := parser.Parse(withChecksum("PSNSO,NaN,Inf,0"))
		require.NoError(t, err)
		assert.Equal(t, OrientationSample{}, s.(OrientationSentence).Sample)

		s, err = parser.Parse(withChecksum("PSNSM,+Inf,-Inf,NaN,1,NaN,-9.5"))
		require.NoError(t, err)
		m := s.(MotionSentence).Sample
		assert.Equal(t, RotationRate{}, m.RotationRate)
		assert.Equal(t, Acceleration{X: 1, Z: -9.5}, m.AccelerationIncludingGravity)
	})

	t.Run("bad number", func(t *testing.T) {
		t.Parallel()
		_, err := parser.Parse(withChecksum("PSNSO,abc,1,2"))
		assert.Error(t, err)
	})

	t.Run("bad checksum", func(t *testing.T) {
		t.Parallel()
		_, err := parser.Parse("$PSNSO,1,2,3*00")
		assert.Error(t, err)
	})
}

func TestReadNMEA(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		withChecksum("PSNSO,1,2,3"),
		"garbage line",
		"$PSNSO,1,2,3*00",
		withChecksum("PSNSM,0,0,45,0,0,-10"),
		withChecksum("PSNSO,7,8,9"),
	}, "\r\n")

	state := NewState()
	require.NoError(t, ReadNMEA(context.Background(), strings.NewReader(input), state))

	snap := state.Snapshot()
	assert.Equal(t, OrientationSample{Alpha: 7, Beta: 8, Gamma: 9}, snap.Orientation)
	assert.Equal(t, uint64(2), snap.OrientationSeq)
	assert.Equal(t, 45.0, snap.Motion.RotationRate.Gamma)
	assert.Equal(t, -10.0, snap.Motion.AccelerationIncludingGravity.Z)
}

func TestReadNMEACancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ReadNMEA(ctx, strings.NewReader(withChecksum("PSNSO,1,2,3")+"\n"), NewState())
	assert.ErrorIs(t, err, context.Canceled)
}
