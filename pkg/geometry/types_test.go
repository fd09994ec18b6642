package geometry

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectIntClampTo(t *testing.T) {
	r, ok := RectInt{X: -5, Y: 10, Width: 50, Height: 100}.ClampTo(40, 60)
	assert.True(t, ok)
	assert.Equal(t, RectInt{X: 0, Y: 10, Width: 40, Height: 50}, r)

	_, ok = RectInt{X: 50, Y: 0, Width: 10, Height: 10}.ClampTo(40, 60)
	assert.False(t, ok)
}

func TestRectIntUnionAndContains(t *testing.T) {
	a := RectInt{X: 10, Y: 10, Width: 5, Height: 5}
	b := RectInt{X: 30, Y: 2, Width: 4, Height: 20}
	u := a.Union(b)
	assert.Equal(t, RectInt{X: 10, Y: 2, Width: 24, Height: 20}, u)
	assert.True(t, u.Contains(a))
	assert.True(t, u.Contains(b))
	assert.False(t, a.Contains(u))
}

func TestRectIntImageRectRoundTrip(t *testing.T) {
	r := RectInt{X: 3, Y: 4, Width: 7, Height: 9}
	assert.Equal(t, image.Rect(3, 4, 10, 13), r.ImageRect())
	assert.Equal(t, r, FromImageRect(r.ImageRect()))
}

func TestRectIntEmpty(t *testing.T) {
	assert.True(t, RectInt{Width: 0, Height: 5}.Empty())
	assert.True(t, RectInt{Width: 3, Height: -1}.Empty())
	assert.False(t, RectInt{Width: 3, Height: 5}.Empty())
}

func TestSwapAxesMapRect(t *testing.T) {
	tr := SwapAxes(2, 3)
	got := tr.MapRect(Rect{X: 10, Y: 20, Width: 4, Height: 6})
	assert.Equal(t, Rect{X: 40, Y: 30, Width: 12, Height: 12}, got)

	// A negative scale flips the box; the result is still a positive extent.
	flipped := SwapAxes(-1, 1).MapRect(Rect{X: 10, Y: 20, Width: 4, Height: 6})
	assert.Equal(t, Rect{X: -26, Y: 10, Width: 6, Height: 4}, flipped)
}
