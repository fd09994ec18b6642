package classify

import (
	"fmt"

	"mathscan/internal/frame"
	"mathscan/internal/vision"

	"gocv.io/x/gocv"
)

// Operator heuristic cut-offs. The order of the checks in OperatorFromMetrics
// matters and "*" is a catch-all, so a blob that fits nothing else is read as
// a multiplication.
const (
	MinusMinAspect  = 2.0
	DivideMaxAspect = 0.4
	PlusMaxFill     = 0.35
)

// OperatorFromMetrics picks an operator from the aspect ratio (w/h) and the
// ink fill ratio of a symbol.
func OperatorFromMetrics(aspect, fill float64) string {
	switch {
	case aspect > MinusMinAspect:
		return "-"
	case aspect < DivideMaxAspect:
		return "/"
	case fill < PlusMaxFill:
		return "+"
	default:
		return "*"
	}
}

// ClassifyOperator measures a symbol mask and applies OperatorFromMetrics.
// Any non-zero pixel counts as ink.
func ClassifyOperator(img frame.Frame) (string, error) {
	if img.Empty() {
		return "", fmt.Errorf("%w: empty operator image", ErrUnavailable)
	}

	aspect := float64(img.Width()) / float64(img.Height())

	gray, err := vision.Grayscale(img)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer gray.Close()

	fill := float64(gocv.CountNonZero(gray.Mat())) / float64(img.Width()*img.Height())
	return OperatorFromMetrics(aspect, fill), nil
}
