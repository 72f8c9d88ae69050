package domain

import (
	"image"
	"math"
)

// PageSize is a page's extent in page space (PDF points, origin top-left).
type PageSize struct {
	Width  float64
	Height float64
}

// ScaleFactors returns the independent horizontal and vertical factors that
// map canvas pixels onto page units. A missing canvas dimension yields 1.0
// on that axis. Rotation between canvas and page is not accounted for.
func ScaleFactors(page PageSize, canvas CanvasSize) (sx, sy float64) {
	sx, sy = 1.0, 1.0
	if canvas.Width > 0 {
		sx = page.Width / canvas.Width
	}
	if canvas.Height > 0 {
		sy = page.Height / canvas.Height
	}
	return sx, sy
}

// MapToPage converts a rectangle from canvas pixel space into page space.
// Multiplying before dividing keeps exact results for exact ratios.
func MapToPage(r Rect, page PageSize, canvas CanvasSize) Rect {
	out := r
	if canvas.Width > 0 {
		out.X = r.X * page.Width / canvas.Width
		out.Width = r.Width * page.Width / canvas.Width
	}
	if canvas.Height > 0 {
		out.Y = r.Y * page.Height / canvas.Height
		out.Height = r.Height * page.Height / canvas.Height
	}
	return out
}

// ClampToPage clamps a rectangle into [0, Width] x [0, Height]. The second
// return value is false when nothing of positive area is left.
func ClampToPage(r Rect, page PageSize) (Rect, bool) {
	r = r.Normalize()
	x0 := clamp(r.X, 0, page.Width)
	x1 := clamp(r.X+r.Width, 0, page.Width)
	y0 := clamp(r.Y, 0, page.Height)
	y1 := clamp(r.Y+r.Height, 0, page.Height)
	if x1-x0 <= 0 || y1-y0 <= 0 {
		return Rect{}, false
	}
	return Rect{Page: r.Page, X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, true
}

// ClampToPixels converts a rectangle into integer pixel bounds inside an
// image of the given size. Partially covered pixels are included.
func ClampToPixels(r Rect, bounds image.Rectangle) (image.Rectangle, bool) {
	r = r.Normalize()
	if r.Width <= 0 || r.Height <= 0 {
		return image.Rectangle{}, false
	}
	x0 := int(math.Floor(r.X))
	y0 := int(math.Floor(r.Y))
	x1 := int(math.Ceil(r.X + r.Width))
	y1 := int(math.Ceil(r.Y + r.Height))
	px := image.Rect(x0, y0, x1, y1).Add(bounds.Min).Intersect(bounds)
	if px.Empty() {
		return image.Rectangle{}, false
	}
	return px, true
}

// ToPixels maps a page-space rectangle onto a raster of the page rendered at
// dpi, where one page unit is 1/72 inch.
func ToPixels(r Rect, dpi float64) Rect {
	return Rect{
		Page:   r.Page,
		X:      r.X * dpi / 72,
		Y:      r.Y * dpi / 72,
		Width:  r.Width * dpi / 72,
		Height: r.Height * dpi / 72,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
