package imagemin_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/glaze/internal/adapters/imagemin"
	"go.trai.ch/glaze/internal/core/domain"
)

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 128, A: 255})
		}
	}
	return img
}

func defaultStep() domain.Step {
	return domain.CompressImage(domain.ImageOptions{JPEGQuality: 75, PNGLevel: 9})
}

func TestCompressor_PNG(t *testing.T) {
	var raw bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.NoCompression}
	require.NoError(t, enc.Encode(&raw, gradient(64, 64)))

	out, err := imagemin.NewCompressor().Transform(context.Background(), defaultStep(),
		domain.Asset{Path: "logo.png", Data: raw.Bytes()})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Less(t, len(out[0].Data), raw.Len())

	decoded, err := png.Decode(bytes.NewReader(out[0].Data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 64), decoded.Bounds())
}

func TestCompressor_JPEG(t *testing.T) {
	var raw bytes.Buffer
	require.NoError(t, jpeg.Encode(&raw, gradient(64, 64), &jpeg.Options{Quality: 100}))

	out, err := imagemin.NewCompressor().Transform(context.Background(), defaultStep(),
		domain.Asset{Path: "photos/Beach.JPG", Data: raw.Bytes()})
	require.NoError(t, err)
	assert.Less(t, len(out[0].Data), raw.Len())
	assert.Equal(t, "photos/Beach.JPG", out[0].Path)

	_, err = jpeg.Decode(bytes.NewReader(out[0].Data))
	require.NoError(t, err)
}

func TestCompressor_GIF(t *testing.T) {
	img := image.NewPaletted(image.Rect(0, 0, 8, 8), palette.Plan9)
	var raw bytes.Buffer
	require.NoError(t, gif.Encode(&raw, img, nil))

	out, err := imagemin.NewCompressor().Transform(context.Background(), defaultStep(),
		domain.Asset{Path: "spinner.gif", Data: raw.Bytes()})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out[0].Data), raw.Len())

	_, err = gif.DecodeAll(bytes.NewReader(out[0].Data))
	require.NoError(t, err)
}

func TestCompressor_SVG(t *testing.T) {
	src := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10">
  <!-- background -->
  <rect x="0" y="0" width="10" height="10" fill="#ff0000"/>
</svg>
`)

	out, err := imagemin.NewCompressor().Transform(context.Background(), defaultStep(),
		domain.Asset{Path: "icon.svg", Data: src})
	require.NoError(t, err)
	assert.Less(t, len(out[0].Data), len(src))
	assert.NotContains(t, string(out[0].Data), "background")
	assert.Contains(t, string(out[0].Data), "<svg")
}

func TestCompressor_KeepsOriginalWhenNotSmaller(t *testing.T) {
	var raw bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	require.NoError(t, enc.Encode(&raw, image.NewGray(image.Rect(0, 0, 4, 4))))

	step := domain.CompressImage(domain.ImageOptions{PNGLevel: 0})
	out, err := imagemin.NewCompressor().Transform(context.Background(), step,
		domain.Asset{Path: "dot.png", Data: raw.Bytes()})
	require.NoError(t, err)
	assert.Equal(t, raw.Bytes(), out[0].Data)
}

func TestCompressor_PassThrough(t *testing.T) {
	data := []byte("not an image")
	out, err := imagemin.NewCompressor().Transform(context.Background(), defaultStep(),
		domain.Asset{Path: "readme.txt", Data: data})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, data, out[0].Data)
}

func TestCompressor_DecodeError(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "png", path: "broken.png"},
		{name: "jpeg", path: "broken.jpg"},
		{name: "gif", path: "broken.gif"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := imagemin.NewCompressor().Transform(context.Background(), defaultStep(),
				domain.Asset{Path: tt.path, Data: []byte("garbage")})
			require.ErrorIs(t, err, domain.ErrImageDecodeFailed)
		})
	}
}
