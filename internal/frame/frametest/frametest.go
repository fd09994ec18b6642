// Package frametest builds synthetic frames for tests: white paper with black
// ink rectangles painted pixel by pixel, so box extents are exact.
package frametest

import (
	"mathscan/internal/frame"
	"mathscan/pkg/geometry"

	"gocv.io/x/gocv"
)

// Paper returns a white 3-channel BGR frame.
func Paper(width, height int) frame.Frame {
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), height, width, gocv.MatTypeCV8UC3)
	return frame.FromMat(m)
}

// GrayPaper returns a white single-channel frame.
func GrayPaper(width, height int) frame.Frame {
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0), height, width, gocv.MatTypeCV8U)
	return frame.FromMat(m)
}

// Mask returns an empty single-channel mask (all zero).
func Mask(width, height int) frame.Frame {
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8U)
	return frame.FromMat(m)
}

// Fill sets r to 255 on a mask.
func Fill(f frame.Frame, r geometry.RectInt) {
	Ink(f, r, 255)
}

// Ink paints r with the given gray level (0 = black) on every channel.
// Pixels outside the frame are ignored.
func Ink(f frame.Frame, r geometry.RectInt, level uint8) {
	m := f.Mat()
	ch := m.Channels()
	for y := max(r.Y, 0); y < min(r.Bottom(), m.Rows()); y++ {
		for x := max(r.X, 0); x < min(r.Right(), m.Cols()); x++ {
			for c := 0; c < ch; c++ {
				m.SetUCharAt(y, x*ch+c, level)
			}
		}
	}
}

// Black paints r solid black.
func Black(f frame.Frame, r geometry.RectInt) {
	Ink(f, r, 0)
}

// Outline paints a black rectangle border of the given stroke width.
func Outline(f frame.Frame, r geometry.RectInt, stroke int) {
	Black(f, geometry.RectInt{X: r.X, Y: r.Y, Width: r.Width, Height: stroke})
	Black(f, geometry.RectInt{X: r.X, Y: r.Bottom() - stroke, Width: r.Width, Height: stroke})
	Black(f, geometry.RectInt{X: r.X, Y: r.Y, Width: stroke, Height: r.Height})
	Black(f, geometry.RectInt{X: r.Right() - stroke, Y: r.Y, Width: stroke, Height: r.Height})
}

// Plus paints a centered cross of the given stroke inside r.
func Plus(f frame.Frame, r geometry.RectInt, stroke int) {
	cx := r.X + (r.Width-stroke)/2
	cy := r.Y + (r.Height-stroke)/2
	Black(f, geometry.RectInt{X: r.X, Y: cy, Width: r.Width, Height: stroke})
	Black(f, geometry.RectInt{X: cx, Y: r.Y, Width: stroke, Height: r.Height})
}
