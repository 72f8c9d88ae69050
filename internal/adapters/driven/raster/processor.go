// Package raster decodes uploaded images and paints redaction boxes on them.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register decoder
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.ImageProcessor = (*Processor)(nil)

// Processor implements driven.ImageProcessor with the standard image codecs
// plus the BMP, TIFF and WebP decoders from golang.org/x/image.
type Processor struct{}

// New creates an image processor.
func New() *Processor {
	return &Processor{}
}

// Inspect reports the format and upright pixel bounds of data, with EXIF
// orientation applied.
func (p *Processor) Inspect(data []byte) (*driven.ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding image: %v", domain.ErrUnsupportedFormat, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrUnsupportedFormat)
	}
	w, h := cfg.Width, cfg.Height
	if swapsAxes(orientation(data)) {
		w, h = h, w
	}
	return &driven.ImageInfo{
		Format: format,
		Bounds: image.Rect(0, 0, w, h),
	}, nil
}

// NormalizePNG re-encodes data as an opaque, upright RGB PNG anchored at the
// origin.
func (p *Processor) NormalizePNG(data []byte) ([]byte, error) {
	img, err := decodeRGBA(data)
	if err != nil {
		return nil, err
	}
	return encode(img)
}

// FillRegions paints each region opaque black. Regions are clipped to the
// image; regions entirely outside it are ignored.
func (p *Processor) FillRegions(data []byte, regions []image.Rectangle) ([]byte, error) {
	img, err := decodeRGBA(data)
	if err != nil {
		return nil, err
	}
	black := image.NewUniform(color.Black)
	for _, r := range regions {
		r = r.Intersect(img.Bounds())
		if r.Empty() {
			continue
		}
		draw.Draw(img, r, black, image.Point{}, draw.Src)
	}
	return encode(img)
}

// decodeRGBA decodes data, flattens it onto a white background so that
// transparent pixels cannot hide content underneath a fill, and turns it
// upright.
func decodeRGBA(data []byte) (*image.RGBA, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding image: %v", domain.ErrUnsupportedFormat, err)
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return orient(dst, orientation(data)), nil
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}
