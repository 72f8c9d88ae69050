package domain

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampToPage(t *testing.T) {
	page := PageSize{Width: 80, Height: 100}

	tests := []struct {
		name string
		in   Rect
		want Rect
		keep bool
	}{
		{
			name: "partially left of page",
			in:   Rect{Page: 1, X: -50, Y: 10, Width: 100, Height: 20},
			want: Rect{Page: 1, X: 0, Y: 10, Width: 50, Height: 20},
			keep: true,
		},
		{
			name: "entirely right of page",
			in:   Rect{Page: 1, X: 1000, Y: 10, Width: 50, Height: 20},
			keep: false,
		},
		{
			name: "overflows bottom right",
			in:   Rect{Page: 2, X: 70, Y: 90, Width: 50, Height: 50},
			want: Rect{Page: 2, X: 70, Y: 90, Width: 10, Height: 10},
			keep: true,
		},
		{
			name: "zero height",
			in:   Rect{Page: 1, X: 10, Y: 10, Width: 10, Height: 0},
			keep: false,
		},
		{
			name: "negative size normalised",
			in:   Rect{Page: 1, X: 30, Y: 30, Width: -10, Height: -10},
			want: Rect{Page: 1, X: 20, Y: 20, Width: 10, Height: 10},
			keep: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClampToPage(tt.in, page)
			require.Equal(t, tt.keep, ok)
			if tt.keep {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestMapToPage(t *testing.T) {
	page := PageSize{Width: 8, Height: 10}
	canvas := CanvasSize{Width: 800, Height: 1000}

	got := MapToPage(Rect{Page: 1, X: 400, Y: 500, Width: 80, Height: 100}, page, canvas)

	assert.InDelta(t, 4.0, got.X, 1e-9)
	assert.InDelta(t, 5.0, got.Y, 1e-9)
	assert.InDelta(t, 0.8, got.Width, 1e-9)
	assert.InDelta(t, 1.0, got.Height, 1e-9)
	assert.Equal(t, 1, got.Page)
}

func TestMapToPage_NoCanvasIsIdentity(t *testing.T) {
	r := Rect{Page: 1, X: 12, Y: 34, Width: 5, Height: 6}
	assert.Equal(t, r, MapToPage(r, PageSize{Width: 612, Height: 792}, CanvasSize{}))
}

func TestScaleFactors(t *testing.T) {
	sx, sy := ScaleFactors(PageSize{Width: 612, Height: 792}, CanvasSize{Width: 1224})
	assert.InDelta(t, 0.5, sx, 1e-9)
	assert.InDelta(t, 1.0, sy, 1e-9)
}

func TestClampToPixels(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 50)

	got, ok := ClampToPixels(Rect{X: -5.5, Y: 10.2, Width: 20, Height: 10}, bounds)
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 10, 15, 21), got)

	_, ok = ClampToPixels(Rect{X: 200, Y: 10, Width: 20, Height: 10}, bounds)
	assert.False(t, ok)

	_, ok = ClampToPixels(Rect{X: 10.5, Y: 10, Width: 0, Height: 10}, bounds)
	assert.False(t, ok)
}

func TestToPixels(t *testing.T) {
	got := ToPixels(Rect{Page: 3, X: 72, Y: 36, Width: 144, Height: 7.2}, 150)
	assert.InDelta(t, 150, got.X, 1e-9)
	assert.InDelta(t, 75, got.Y, 1e-9)
	assert.InDelta(t, 300, got.Width, 1e-9)
	assert.InDelta(t, 15, got.Height, 1e-9)
	assert.Equal(t, 3, got.Page)
}
