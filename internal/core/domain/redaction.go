package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// ArtifactKind is the kind of file a redaction targets.
type ArtifactKind string

const (
	// ArtifactPaged is a paginated document; rectangles are in page space.
	ArtifactPaged ArtifactKind = "paged"

	// ArtifactRaster is a single image; rectangles are in pixel space.
	ArtifactRaster ArtifactKind = "raster"
)

// ParseArtifactKind accepts the canonical names and the "pdf" / "image"
// aliases sent by the browser redaction tool.
func ParseArtifactKind(s string) (ArtifactKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "paged", "pdf":
		return ArtifactPaged, nil
	case "raster", "image":
		return ArtifactRaster, nil
	default:
		return "", fmt.Errorf("%w: unknown artifact kind %q", ErrInvalidInput, s)
	}
}

// Rect is one redaction rectangle. Page is 1-based and ignored for rasters.
type Rect struct {
	Page   int     `json:"page"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Normalize flips negative widths and heights so the rectangle is described
// from its top-left corner.
func (r Rect) Normalize() Rect {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// CanvasSize is the on-screen size, in pixels, of the canvas the client drew
// rectangles on. A zero dimension means "not supplied".
type CanvasSize struct {
	Width  float64
	Height float64
}

// RedactionRequest is an ordered set of rectangles for one artifact.
type RedactionRequest struct {
	Kind   ArtifactKind
	Rects  []Rect
	Canvas CanvasSize
}

// Validate checks the request shape. Out-of-bounds rectangles are not an
// error; they are clamped or dropped later.
func (r RedactionRequest) Validate() error {
	if r.Kind != ArtifactPaged && r.Kind != ArtifactRaster {
		return fmt.Errorf("%w: unknown artifact kind %q", ErrInvalidInput, r.Kind)
	}
	if r.Canvas.Width < 0 || r.Canvas.Height < 0 {
		return fmt.Errorf("%w: negative canvas size", ErrInvalidInput)
	}
	return nil
}

type wireRect struct {
	Page   *int     `json:"page"`
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
}

// ParseRects decodes a rectangle payload. Both {"rects":[...]} and a bare
// array are accepted. A missing page defaults to 1; missing or non-finite
// coordinates are rejected with ErrInvalidInput.
func ParseRects(data []byte) ([]Rect, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty rectangle payload", ErrInvalidInput)
	}

	var raw []wireRect
	if data[0] == '[' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: decode rectangles: %v", ErrInvalidInput, err)
		}
	} else {
		var envelope struct {
			Rects *[]wireRect `json:"rects"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("%w: decode rectangles: %v", ErrInvalidInput, err)
		}
		if envelope.Rects == nil {
			return nil, fmt.Errorf("%w: missing rects field", ErrInvalidInput)
		}
		raw = *envelope.Rects
	}

	rects := make([]Rect, 0, len(raw))
	for i, w := range raw {
		if w.X == nil || w.Y == nil || w.Width == nil || w.Height == nil {
			return nil, fmt.Errorf("%w: rectangle %d is missing a coordinate", ErrInvalidInput, i)
		}
		r := Rect{Page: 1, X: *w.X, Y: *w.Y, Width: *w.Width, Height: *w.Height}
		if w.Page != nil {
			r.Page = *w.Page
		}
		for _, v := range []float64{r.X, r.Y, r.Width, r.Height} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: rectangle %d has a non-finite coordinate", ErrInvalidInput, i)
			}
		}
		rects = append(rects, r.Normalize())
	}
	return rects, nil
}

// RectsByPage groups rectangles by page, preserving request order within a page.
func RectsByPage(rects []Rect) map[int][]Rect {
	out := make(map[int][]Rect)
	for _, r := range rects {
		out[r.Page] = append(out[r.Page], r)
	}
	return out
}
