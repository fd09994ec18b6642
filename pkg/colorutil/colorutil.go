// Package colorutil provides shared color utilities.
package colorutil

import (
	"image/color"
)

// Common overlay colors.
var (
	Green = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Red   = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

// Rec. 601 luma weights, matching OpenCV's RGB->GRAY conversion.
const (
	LumaR = 0.299
	LumaG = 0.587
	LumaB = 0.114
)

// Luma returns the 0-255 gray value of an 8-bit RGB triple.
func Luma(r, g, b uint8) float64 {
	return LumaR*float64(r) + LumaG*float64(g) + LumaB*float64(b)
}
