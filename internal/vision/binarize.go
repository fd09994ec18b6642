// Package vision finds ink on paper: binarization, external contour boxes and
// aggregation of symbol boxes into one exercise region.
package vision

import (
	"fmt"

	"mathscan/internal/frame"

	"gocv.io/x/gocv"
)

// Binarize converts f to a single-channel mask where ink (pixels at or below
// threshold after luma conversion) is 255 and paper is 0. The threshold is
// global and fixed: uneven lighting or pale pencil will break it, which is a
// known limit rather than something to correct here.
func Binarize(f frame.Frame, threshold int) (frame.Frame, error) {
	if f.Empty() {
		return frame.Frame{}, fmt.Errorf("empty frame")
	}

	gray, err := Grayscale(f)
	if err != nil {
		return frame.Frame{}, err
	}
	defer gray.Close()

	mask := gocv.NewMat()
	gocv.Threshold(gray.Mat(), &mask, float32(threshold), 255, gocv.ThresholdBinaryInv)
	return frame.FromMat(mask), nil
}

// Grayscale returns a single-channel copy of f using standard luma weights.
func Grayscale(f frame.Frame) (frame.Frame, error) {
	src := f.Mat()
	gray := gocv.NewMat()
	switch f.Channels() {
	case 1:
		src.CopyTo(&gray)
	case 3:
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	case 4:
		gocv.CvtColor(src, &gray, gocv.ColorBGRAToGray)
	default:
		gray.Close()
		return frame.Frame{}, fmt.Errorf("unsupported channel count %d", f.Channels())
	}
	return frame.FromMat(gray), nil
}
