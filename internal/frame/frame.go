// Package frame provides the immutable pixel buffer handed between pipeline
// stages, plus loading from image files.
package frame

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"mathscan/pkg/geometry"

	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Frame is a 2D pixel buffer, either 3-channel BGR, 4-channel BGRA or
// single-channel intensity. A stage never writes into a Frame it received;
// it produces a new one. The producer owns the Frame until it hands it on and
// the final owner calls Close.
type Frame struct {
	mat   gocv.Mat
	valid bool
}

// FromMat wraps m. The Frame takes ownership of m.
func FromMat(m gocv.Mat) Frame {
	return Frame{mat: m, valid: true}
}

// FromImage converts a Go image into a BGR Frame.
func FromImage(img image.Image) (Frame, error) {
	if img == nil || img.Bounds().Empty() {
		return Frame{}, fmt.Errorf("empty image")
	}
	m, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to convert image: %w", err)
	}
	return Frame{mat: m, valid: true}, nil
}

// Load decodes an image file into a BGR Frame.
func Load(path string) (Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to decode image: %w", err)
	}
	return FromImage(img)
}

// Mat exposes the underlying matrix for read-only use by gocv calls.
func (f Frame) Mat() gocv.Mat { return f.mat }

// Empty reports whether the frame holds no pixels.
func (f Frame) Empty() bool {
	return !f.valid || f.mat.Empty()
}

// Width returns the width in pixels.
func (f Frame) Width() int {
	if f.Empty() {
		return 0
	}
	return f.mat.Cols()
}

// Height returns the height in pixels.
func (f Frame) Height() int {
	if f.Empty() {
		return 0
	}
	return f.mat.Rows()
}

// Size returns the pixel dimensions.
func (f Frame) Size() geometry.Size {
	return geometry.Size{Width: f.Width(), Height: f.Height()}
}

// Channels returns 1 for intensity frames, 3 or 4 for color.
func (f Frame) Channels() int {
	if f.Empty() {
		return 0
	}
	return f.mat.Channels()
}

// Bounds returns the whole frame as a box.
func (f Frame) Bounds() geometry.RectInt {
	return geometry.RectInt{Width: f.Width(), Height: f.Height()}
}

// Clone returns an independent copy.
func (f Frame) Clone() Frame {
	if f.Empty() {
		return Frame{}
	}
	return FromMat(f.mat.Clone())
}

// Crop copies the pixels inside r into a new Frame. r must lie within the
// frame; callers clamp first.
func (f Frame) Crop(r geometry.RectInt) (Frame, error) {
	if f.Empty() {
		return Frame{}, fmt.Errorf("empty frame")
	}
	if r.Empty() || !f.Bounds().Contains(r) {
		return Frame{}, fmt.Errorf("crop %+v outside %dx%d frame", r, f.Width(), f.Height())
	}
	region := f.mat.Region(r.ImageRect())
	defer region.Close()
	return FromMat(region.Clone()), nil
}

// Close releases the pixel memory.
func (f Frame) Close() error {
	if !f.valid {
		return nil
	}
	return f.mat.Close()
}

// SupportedFormats returns the list of decodable file extensions.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".tiff", ".tif", ".bmp", ".webp"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
