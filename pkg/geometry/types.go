// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"image"
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RectInt is an axis-aligned box in the pixel space of one specific image.
// A box with non-positive width or height is treated as absent.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// FromImageRect converts an image.Rectangle (Min inclusive, Max exclusive).
func FromImageRect(r image.Rectangle) RectInt {
	return RectInt{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// ImageRect converts to an image.Rectangle suitable for gocv.Mat.Region.
func (r RectInt) ImageRect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Empty reports whether the box has no positive extent.
func (r RectInt) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Area returns width*height in px².
func (r RectInt) Area() int {
	return r.Width * r.Height
}

// Right returns the exclusive max X.
func (r RectInt) Right() int { return r.X + r.Width }

// Bottom returns the exclusive max Y.
func (r RectInt) Bottom() int { return r.Y + r.Height }

// AspectRatio returns width/height, or 0 for an empty box.
func (r RectInt) AspectRatio() float64 {
	if r.Height <= 0 {
		return 0
	}
	return float64(r.Width) / float64(r.Height)
}

// Contains returns true if other lies entirely inside r.
func (r RectInt) Contains(other RectInt) bool {
	return other.X >= r.X && other.Y >= r.Y &&
		other.Right() <= r.Right() && other.Bottom() <= r.Bottom()
}

// Union returns the smallest box containing both boxes.
func (r RectInt) Union(other RectInt) RectInt {
	x := min(r.X, other.X)
	y := min(r.Y, other.Y)
	x2 := max(r.Right(), other.Right())
	y2 := max(r.Bottom(), other.Bottom())
	return RectInt{X: x, Y: y, Width: x2 - x, Height: y2 - y}
}

// Inset grows the box by pad on every side (shrinks for negative pad).
func (r RectInt) Inset(pad int) RectInt {
	return RectInt{X: r.X - pad, Y: r.Y - pad, Width: r.Width + 2*pad, Height: r.Height + 2*pad}
}

// ClampTo pins the origin to >= 0 and shrinks the extent so the box fits in
// [0,width) x [0,height). The origin is never shifted toward the inside on the
// max side. The bool is false when nothing is left.
func (r RectInt) ClampTo(width, height int) (RectInt, bool) {
	x := max(r.X, 0)
	y := max(r.Y, 0)
	right := min(r.Right(), width)
	bottom := min(r.Bottom(), height)
	out := RectInt{X: x, Y: y, Width: right - x, Height: bottom - y}
	return out, !out.Empty()
}

// ToFloat converts to Rect.
func (r RectInt) ToFloat() Rect {
	return Rect{X: float64(r.X), Y: float64(r.Y), Width: float64(r.Width), Height: float64(r.Height)}
}

// Rect represents a rectangle with floating-point coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Round converts to RectInt, rounding every field to the nearest pixel.
func (r Rect) Round() RectInt {
	return RectInt{
		X:      int(math.Round(r.X)),
		Y:      int(math.Round(r.Y)),
		Width:  int(math.Round(r.Width)),
		Height: int(math.Round(r.Height)),
	}
}

// Size is the pixel dimension of an image.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// AffineTransform represents a 2x3 affine transformation matrix.
// [a b tx]
// [c d ty]
type AffineTransform struct {
	A, B, TX float64
	C, D, TY float64
}

// SwapAxes returns the transform that sends (x, y) to (y*sx, x*sy): a
// transpose followed by a per-axis scale.
func SwapAxes(sx, sy float64) AffineTransform {
	return AffineTransform{B: sx, C: sy}
}

// Apply applies the transform to a point.
func (t AffineTransform) Apply(p Point2D) Point2D {
	return Point2D{
		X: t.A*p.X + t.B*p.Y + t.TX,
		Y: t.C*p.X + t.D*p.Y + t.TY,
	}
}

// ApplyVector applies the linear part only (no translation).
func (t AffineTransform) ApplyVector(v Point2D) Point2D {
	return Point2D{
		X: t.A*v.X + t.B*v.Y,
		Y: t.C*v.X + t.D*v.Y,
	}
}

// MapRect maps a rectangle through a transform that only scales and/or swaps
// axes, returning the axis-aligned bound of the image.
func (t AffineTransform) MapRect(r Rect) Rect {
	origin := t.Apply(Point2D{X: r.X, Y: r.Y})
	extent := t.ApplyVector(Point2D{X: r.Width, Y: r.Height})
	out := Rect{X: origin.X, Y: origin.Y, Width: extent.X, Height: extent.Y}
	if out.Width < 0 {
		out.X += out.Width
		out.Width = -out.Width
	}
	if out.Height < 0 {
		out.Y += out.Height
		out.Height = -out.Height
	}
	return out
}
