package texture

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func TestSize(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	img.Set(1, 1, color.White)

	pngPath := filepath.Join(dir, "pano.png")
	f, err := os.Create(pngPath)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	bmpPath := filepath.Join(dir, "pano.bmp")
	f, err = os.Create(bmpPath)
	require.NoError(t, err)
	require.NoError(t, bmp.Encode(f, img))
	require.NoError(t, f.Close())

	for _, path := range []string{pngPath, bmpPath} {
		size, err := Size(path)
		require.NoError(t, err, path)
		assert.Equal(t, image.Point{X: 64, Y: 32}, size, path)
	}

	junk := filepath.Join(dir, "junk.webp")
	require.NoError(t, os.WriteFile(junk, []byte("not an image"), 0o600))
	_, err = Size(junk)
	assert.Error(t, err)

	_, err = Size(filepath.Join(dir, "absent.png"))
	assert.Error(t, err)
}

func TestSizeOrDefault(t *testing.T) {
	t.Parallel()
	size, err := SizeOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSize, size)
}

func TestPixelAt(t *testing.T) {
	t.Parallel()
	size := image.Point{X: 2800, Y: 1400}
	assert.Equal(t, image.Point{X: 1400, Y: 700}, PixelAt(0.5, 0.5, size))
	assert.Equal(t, image.Point{X: 0, Y: 1400}, PixelAt(0, 0, size))
	assert.Equal(t, image.Point{X: 2800, Y: 0}, PixelAt(1, 1, size))
	assert.Equal(t, image.Point{X: 700, Y: 350}, PixelAt(0.25, 0.75, size))
}
