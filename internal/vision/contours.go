package vision

import (
	"mathscan/internal/frame"
	"mathscan/pkg/geometry"

	"gocv.io/x/gocv"
)

// ExtractBoxes returns the bounding box of every outermost connected ink
// region of a binary mask. Holes inside a region are not reported. The order
// is whatever the contour tracer produced.
func ExtractBoxes(mask frame.Frame) []geometry.RectInt {
	if mask.Empty() {
		return nil
	}

	contours := gocv.FindContours(mask.Mat(), gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	boxes := make([]geometry.RectInt, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		box := geometry.FromImageRect(gocv.BoundingRect(contours.At(i)))
		if box.Empty() {
			continue
		}
		boxes = append(boxes, box)
	}
	return boxes
}
