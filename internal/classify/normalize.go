package classify

import (
	"fmt"
	"image"

	"mathscan/internal/frame"
	"mathscan/pkg/colorutil"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

// InputSize is the side of the square digit classifier input.
const InputSize = 28

// Normalize resizes a symbol image to InputSize x InputSize without
// smoothing and returns its intensities scaled to [0,1]. Color input is
// reduced with the standard luma weights.
func Normalize(img frame.Frame) (*mat.Dense, error) {
	if img.Empty() {
		return nil, fmt.Errorf("empty symbol image")
	}

	ch := img.Channels()
	if ch != 1 && ch != 3 && ch != 4 {
		return nil, fmt.Errorf("unsupported channel count %d", ch)
	}

	src := img.Mat()
	small := gocv.NewMat()
	defer small.Close()
	gocv.Resize(src, &small, image.Pt(InputSize, InputSize), 0, 0, gocv.InterpolationNearestNeighbor)

	out := mat.NewDense(InputSize, InputSize, nil)
	for y := 0; y < InputSize; y++ {
		for x := 0; x < InputSize; x++ {
			var v float64
			if ch == 1 {
				v = float64(small.GetUCharAt(y, x))
			} else {
				b := small.GetUCharAt(y, x*ch)
				g := small.GetUCharAt(y, x*ch+1)
				r := small.GetUCharAt(y, x*ch+2)
				v = colorutil.Luma(r, g, b)
			}
			out.Set(y, x, v/255)
		}
	}
	return out, nil
}
