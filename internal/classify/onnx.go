package classify

import (
	"fmt"
	"image"
	"math"
	"os"
	"sync"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

// ONNXClassifier runs an MNIST-style network (1x1x28x28 float input, 10
// scores out) through the OpenCV DNN module.
type ONNXClassifier struct {
	mu  sync.Mutex
	net gocv.Net
	// MinConfidence is the softmax probability below which no digit is
	// reported. Zero accepts every argmax.
	MinConfidence float64
}

// NewONNXClassifier loads the model at path.
func NewONNXClassifier(path string) (*ONNXClassifier, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no model path", ErrModelLoad)
	}
	// OpenCV aborts on a missing file instead of returning an empty net.
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s not readable", ErrModelLoad, path)
	}
	net := gocv.ReadNetFromONNX(path)
	if net.Empty() {
		net.Close()
		return nil, fmt.Errorf("%w: %s", ErrModelLoad, path)
	}
	return &ONNXClassifier{net: net}, nil
}

// Close releases the network.
func (c *ONNXClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.net.Close()
}

// ClassifyDigit implements DigitClassifier.
func (c *ONNXClassifier) ClassifyDigit(input *mat.Dense) (int, bool, error) {
	rows, cols := input.Dims()
	if rows != InputSize || cols != InputSize {
		return 0, false, fmt.Errorf("input is %dx%d, want %dx%d", rows, cols, InputSize, InputSize)
	}

	img := gocv.NewMatWithSize(InputSize, InputSize, gocv.MatTypeCV32F)
	defer img.Close()
	for y := 0; y < InputSize; y++ {
		for x := 0; x < InputSize; x++ {
			img.SetFloatAt(y, x, float32(input.At(y, x)))
		}
	}

	blob := gocv.BlobFromImage(img, 1.0, image.Pt(InputSize, InputSize), gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	c.mu.Lock()
	c.net.SetInput(blob, "")
	out := c.net.Forward("")
	c.mu.Unlock()
	defer out.Close()

	if out.Empty() || out.Total() < 10 {
		return 0, false, fmt.Errorf("unexpected network output of %d values", out.Total())
	}

	scores := make([]float64, 10)
	for i := range scores {
		scores[i] = float64(out.GetFloatAt(0, i))
	}
	digit, confidence := argmaxSoftmax(scores)
	if confidence < c.MinConfidence {
		return digit, false, nil
	}
	return digit, true, nil
}

// argmaxSoftmax returns the index of the highest score and its softmax
// probability.
func argmaxSoftmax(scores []float64) (int, float64) {
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	var sum float64
	for _, s := range scores {
		sum += math.Exp(s - scores[best])
	}
	return best, 1 / sum
}
