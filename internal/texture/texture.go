// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package texture reads panorama image dimensions so picks can be reported in
// pixel coordinates.
package texture

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultSize is used when no panorama file is configured.
var DefaultSize = image.Point{X: 2800, Y: 1400}

// Size decodes only the header of the image at path.
func Size(path string) (image.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Point{}, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return image.Point{}, fmt.Errorf("decode texture %s: %w", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return image.Point{}, fmt.Errorf("texture %s (%s) has no pixels", path, format)
	}
	return image.Point{X: cfg.Width, Y: cfg.Height}, nil
}

// SizeOrDefault returns the size of path, or DefaultSize when path is empty.
func SizeOrDefault(path string) (image.Point, error) {
	if path == "" {
		return DefaultSize, nil
	}
	return Size(path)
}

// PixelAt maps a texture coordinate to a pixel. v grows upwards in texture
// space and downwards in the image.
func PixelAt(u, v float64, size image.Point) image.Point {
	return image.Point{
		X: int(math.Round(u * float64(size.X))),
		Y: int(math.Round((1 - v) * float64(size.Y))),
	}
}
