// Package mapping translates boxes between the live analysis frame and the
// capture (or preview) frame. The analysis frame is delivered in sensor
// orientation, i.e. transposed relative to the capture frame: analysis x runs
// along capture y and the other way round, and the two differ in resolution.
package mapping

import (
	"errors"
	"fmt"

	"mathscan/pkg/geometry"
)

// ErrMappingFailed is returned when a mapped box has no area left inside the
// target frame.
var ErrMappingFailed = errors.New("coordinate mapping degenerated")

// Transform returns the transform from src space to the rotated dst space:
// scaleX = dstW/srcH, scaleY = dstH/srcW, x' = y*scaleX, y' = x*scaleY.
func Transform(src, dst geometry.Size) (geometry.AffineTransform, error) {
	if !src.Valid() || !dst.Valid() {
		return geometry.AffineTransform{}, fmt.Errorf("%w: invalid sizes %dx%d -> %dx%d",
			ErrMappingFailed, src.Width, src.Height, dst.Width, dst.Height)
	}
	scaleX := float64(dst.Width) / float64(src.Height)
	scaleY := float64(dst.Height) / float64(src.Width)
	return geometry.SwapAxes(scaleX, scaleY), nil
}

// MapRotated maps box from src space into dst space, rounds to whole pixels,
// pins the origin to >= 0 and shrinks the extent to fit dst. It fails with
// ErrMappingFailed when nothing is left; callers then use the whole target
// frame instead of a degenerate box.
func MapRotated(box geometry.RectInt, src, dst geometry.Size) (geometry.RectInt, error) {
	t, err := Transform(src, dst)
	if err != nil {
		return geometry.RectInt{}, err
	}

	mapped := t.MapRect(box.ToFloat()).Round()
	clamped, ok := mapped.ClampTo(dst.Width, dst.Height)
	if !ok {
		return geometry.RectInt{}, fmt.Errorf("%w: %+v maps to %+v in %dx%d",
			ErrMappingFailed, box, mapped, dst.Width, dst.Height)
	}
	return clamped, nil
}

// MapOrFull is MapRotated with the fallback applied: on failure it returns the
// full dst bounds and false.
func MapOrFull(box geometry.RectInt, src, dst geometry.Size) (geometry.RectInt, bool) {
	mapped, err := MapRotated(box, src, dst)
	if err != nil {
		return geometry.RectInt{Width: dst.Width, Height: dst.Height}, false
	}
	return mapped, true
}
