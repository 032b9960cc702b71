// Package imagemin shrinks images: raster formats are re-encoded with the
// standard library codecs and SVG documents are minified with tdewolff/minify.
package imagemin

import (
	"bytes"
	"context"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/svg"
	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/zerr"
)

const svgMediaType = "image/svg+xml"

var _ ports.Transformer = (*Compressor)(nil)

// Compressor implements the compress-image step.
type Compressor struct{}

// NewCompressor creates a new Compressor.
func NewCompressor() *Compressor {
	return &Compressor{}
}

// Kind returns domain.KindCompressImage.
func (c *Compressor) Kind() domain.StepKind {
	return domain.KindCompressImage
}

// Transform compresses one image. The smaller of the original and the
// compressed bytes is kept, and files that are not images pass through.
func (c *Compressor) Transform(_ context.Context, step domain.Step, asset domain.Asset) ([]domain.Asset, error) {
	opts := domain.ImageOptions{JPEGQuality: jpeg.DefaultQuality, PNGLevel: 9}
	if step.Image != nil {
		opts = *step.Image
	}

	var (
		out []byte
		err error
	)
	switch asset.Ext() {
	case ".png":
		out, err = compressPNG(asset.Data, opts.PNGLevel)
	case ".jpg", ".jpeg":
		out, err = compressJPEG(asset.Data, opts.JPEGQuality)
	case ".gif":
		out, err = compressGIF(asset.Data)
	case ".svg":
		out, err = compressSVG(asset.Data, opts.SVGPrecision)
	default:
		return []domain.Asset{asset}, nil
	}
	if err != nil {
		return nil, zerr.With(err, "format", asset.Ext())
	}

	if len(out) >= len(asset.Data) {
		return []domain.Asset{asset}, nil
	}
	return []domain.Asset{asset.WithData(out)}, nil
}

func compressPNG(data []byte, level int) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, zerr.Wrap(domain.ErrImageDecodeFailed, err.Error())
	}

	enc := png.Encoder{CompressionLevel: pngCompression(level)}
	var buf bytes.Buffer
	if err := enc.Encode(&buf, img); err != nil {
		return nil, zerr.Wrap(domain.ErrImageEncodeFailed, err.Error())
	}
	return buf.Bytes(), nil
}

// pngCompression maps a 0-9 optimization level onto the encoder's presets.
func pngCompression(level int) png.CompressionLevel {
	switch {
	case level <= 0:
		return png.NoCompression
	case level <= 3:
		return png.BestSpeed
	case level >= 7:
		return png.BestCompression
	default:
		return png.DefaultCompression
	}
}

func compressJPEG(data []byte, quality int) ([]byte, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, zerr.Wrap(domain.ErrImageDecodeFailed, err.Error())
	}

	quality = min(max(quality, 1), 100)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, zerr.Wrap(domain.ErrImageEncodeFailed, err.Error())
	}
	return buf.Bytes(), nil
}

func compressGIF(data []byte) ([]byte, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, zerr.Wrap(domain.ErrImageDecodeFailed, err.Error())
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		return nil, zerr.Wrap(domain.ErrImageEncodeFailed, err.Error())
	}
	return buf.Bytes(), nil
}

func compressSVG(data []byte, precision int) ([]byte, error) {
	m := minify.New()
	m.Add(svgMediaType, &svg.Minifier{Precision: precision})

	out, err := m.Bytes(svgMediaType, data)
	if err != nil {
		return nil, zerr.Wrap(domain.ErrImageDecodeFailed, err.Error())
	}
	return out, nil
}
