package driven

import "image"

// ImageInfo describes a decoded raster.
type ImageInfo struct {
	Format string
	Bounds image.Rectangle
}

// ImageProcessor decodes and re-encodes raster images.
type ImageProcessor interface {
	// Inspect decodes just enough of data to report its format and size.
	// Undecodable input yields domain.ErrUnsupportedFormat.
	Inspect(data []byte) (*ImageInfo, error)

	// NormalizePNG decodes data and re-encodes it as an RGB PNG.
	NormalizePNG(data []byte) ([]byte, error)

	// FillRegions paints the pixel regions opaque black and returns a PNG.
	FillRegions(data []byte, regions []image.Rectangle) ([]byte, error)
}
