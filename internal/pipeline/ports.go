// Package pipeline wires the vision stages into the two tasks of the app: a
// live analyzer that keeps the current exercise region up to date, and a
// grader that turns a capture into a verdict.
package pipeline

import (
	"context"
	"time"

	"mathscan/internal/expression"
	"mathscan/internal/frame"
	"mathscan/pkg/geometry"
)

// LiveSource delivers analysis frames. The channel is closed when the source
// stops or ctx is done. The receiver owns and closes every frame. Err is
// non-nil once the channel closed because acquisition failed.
type LiveSource interface {
	Frames(ctx context.Context) (<-chan frame.Frame, error)
	Err() error
}

// CaptureSource takes one full-resolution still. The caller owns the frame.
type CaptureSource interface {
	Capture(ctx context.Context) (frame.Frame, error)
}

// OverlayRenderer draws the live region over the preview. box is nil when no
// region is in view; srcW and srcH are the analysis frame dimensions.
type OverlayRenderer interface {
	Render(box *geometry.RectInt, srcW, srcH int)
}

// ResultSink receives every finished attempt, e.g. to persist a proof image
// or update a score. The attempt image is only valid during the call.
type ResultSink interface {
	Accept(ctx context.Context, a *Attempt) error
}

// Attempt is one graded capture.
type Attempt struct {
	ID      string
	Student string
	Time    time.Time

	Result expression.Result
	// Image is the cropped capture that was segmented.
	Image frame.Frame
	// Region is the crop in capture coordinates. FullFrame is set when the
	// live region could not be mapped and the whole capture was used.
	Region    geometry.RectInt
	FullFrame bool
	// Dropped counts symbols that contributed nothing to the expression.
	Dropped int
}

// Message returns the text shown to the student.
func (a *Attempt) Message() string {
	return a.Result.Message()
}

// Close releases the attempt image.
func (a *Attempt) Close() error {
	return a.Image.Close()
}
