// Package camera adapts an OpenCV video device to the pipeline's live and
// capture sources, and draws the live region in a preview window.
package camera

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"mathscan/internal/frame"

	"gocv.io/x/gocv"
)

// videoDevice is the part of *gocv.VideoCapture the camera uses.
type videoDevice interface {
	Read(m *gocv.Mat) bool
	Close() error
}

// Camera owns one video device. Live analysis frames and captures share the
// device, so reads are serialized.
type Camera struct {
	mu     sync.Mutex
	dev    videoDevice
	device int
	err    error

	// AnalysisWidth is the width the capture is downscaled to before it is
	// transposed into an analysis frame.
	AnalysisWidth int
	// Interval paces live frames.
	Interval time.Duration

	previewMu sync.Mutex
	preview   frame.Frame
}

// Open opens the video device.
func Open(device, analysisWidth int) (*Camera, error) {
	dev, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", device, err)
	}
	if !dev.IsOpened() {
		dev.Close()
		return nil, fmt.Errorf("camera %d not available", device)
	}
	return &Camera{
		dev:           dev,
		device:        device,
		AnalysisWidth: analysisWidth,
		Interval:      33 * time.Millisecond,
	}, nil
}

// Close releases the device and the last preview.
func (c *Camera) Close() error {
	c.previewMu.Lock()
	c.preview.Close()
	c.preview = frame.Frame{}
	c.previewMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dev.Close()
}

func (c *Camera) read() (frame.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := gocv.NewMat()
	if ok := c.dev.Read(&m); !ok || m.Empty() {
		m.Close()
		return frame.Frame{}, fmt.Errorf("camera %d: read failed", c.device)
	}
	return frame.FromMat(m), nil
}

// Capture implements pipeline.CaptureSource with a full-resolution still.
func (c *Camera) Capture(ctx context.Context) (frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return frame.Frame{}, err
	}
	return c.read()
}

// Frames implements pipeline.LiveSource. Each device frame is kept as the
// preview and handed on as an analysis frame: downscaled to AnalysisWidth
// and transposed into sensor orientation. A failed read ends the stream; it
// is not retried and Err reports it.
func (c *Camera) Frames(ctx context.Context) (<-chan frame.Frame, error) {
	c.fail(nil)
	out := make(chan frame.Frame)
	go func() {
		defer close(out)
		ticker := time.NewTicker(c.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			full, err := c.read()
			if err != nil {
				c.fail(err)
				return
			}
			analysis := AnalysisFrame(full, c.AnalysisWidth)
			c.setPreview(full)

			select {
			case out <- analysis:
			case <-ctx.Done():
				analysis.Close()
				return
			}
		}
	}()
	return out, nil
}

// Err returns the read failure that ended the last live stream, if any.
func (c *Camera) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Camera) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// Preview returns a copy of the latest device frame, or an empty frame.
func (c *Camera) Preview() frame.Frame {
	c.previewMu.Lock()
	defer c.previewMu.Unlock()
	return c.preview.Clone()
}

func (c *Camera) setPreview(f frame.Frame) {
	c.previewMu.Lock()
	defer c.previewMu.Unlock()
	c.preview.Close()
	c.preview = f
}

// AnalysisFrame downscales f to the given width (keeping aspect) and
// transposes it, which is how a portrait sensor delivers a landscape preview.
func AnalysisFrame(f frame.Frame, width int) frame.Frame {
	if f.Empty() {
		return frame.Frame{}
	}
	src := f.Mat()

	small := gocv.NewMat()
	defer small.Close()
	if width > 0 && width < f.Width() {
		height := f.Height() * width / f.Width()
		gocv.Resize(src, &small, image.Pt(width, height), 0, 0, gocv.InterpolationArea)
	} else {
		src.CopyTo(&small)
	}

	out := gocv.NewMat()
	gocv.Transpose(small, &out)
	return frame.FromMat(out)
}
