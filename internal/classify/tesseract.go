package classify

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

// tesseractScale is the upscale applied to the 28x28 input; Tesseract reads
// glyphs around 30 px tall poorly.
const tesseractScale = 4

// TesseractClassifier reads a digit with Tesseract in single-character mode.
// It needs no model file, which makes it the fallback engine.
type TesseractClassifier struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseractClassifier creates a Tesseract client restricted to digits.
func NewTesseractClassifier() (*TesseractClassifier, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: tesseract language: %v", ErrModelLoad, err)
	}
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")
	return &TesseractClassifier{client: client}, nil
}

// Close releases the Tesseract client.
func (c *TesseractClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.Close()
}

// ClassifyDigit implements DigitClassifier.
func (c *TesseractClassifier) ClassifyDigit(input *mat.Dense) (int, bool, error) {
	png, err := encodeForOCR(input)
	if err != nil {
		return 0, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.client.SetPageSegMode(gosseract.PSM_SINGLE_CHAR); err != nil {
		return 0, false, fmt.Errorf("failed to set PSM: %w", err)
	}
	if err := c.client.SetWhitelist("0123456789"); err != nil {
		return 0, false, fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := c.client.SetImageFromBytes(png); err != nil {
		return 0, false, fmt.Errorf("failed to set image: %w", err)
	}
	text, err := c.client.Text()
	if err != nil {
		return 0, false, fmt.Errorf("OCR failed: %w", err)
	}
	return parseDigit(text)
}

// parseDigit accepts exactly one digit after trimming.
func parseDigit(text string) (int, bool, error) {
	text = strings.TrimSpace(text)
	if len(text) != 1 || text[0] < '0' || text[0] > '9' {
		return 0, false, nil
	}
	return int(text[0] - '0'), true, nil
}

// encodeForOCR renders the normalized input as dark ink on white paper with a
// margin, upscaled, as PNG bytes.
func encodeForOCR(input *mat.Dense) ([]byte, error) {
	rows, cols := input.Dims()
	const margin = 8

	canvas := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0), rows+2*margin, cols+2*margin, gocv.MatTypeCV8U)
	defer canvas.Close()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := min(max(input.At(y, x), 0), 1)
			canvas.SetUCharAt(y+margin, x+margin, uint8(255-v*255))
		}
	}

	scaled := gocv.NewMat()
	defer scaled.Close()
	gocv.Resize(canvas, &scaled, image.Point{}, tesseractScale, tesseractScale, gocv.InterpolationCubic)

	buf, err := gocv.IMEncode(gocv.PNGFileExt, scaled)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}
