package pipeline

import (
	"context"
	"fmt"
	"sync"

	"mathscan/internal/frame"
	"mathscan/internal/vision"
	"mathscan/pkg/geometry"
	"mathscan/pkg/log"

	"github.com/sirupsen/logrus"
)

// Analyzer runs region detection on live frames and publishes the result to
// an ROICell and an optional overlay.
type Analyzer struct {
	params  vision.Params
	cell    *ROICell
	overlay OverlayRenderer
	logger  *logrus.Logger

	mu   sync.Mutex
	last *geometry.RectInt
}

// NewAnalyzer creates an analyzer writing to cell. overlay and logger may be
// nil.
func NewAnalyzer(cell *ROICell, params vision.Params, overlay OverlayRenderer, logger *logrus.Logger) *Analyzer {
	if logger == nil {
		logger = log.Discard()
	}
	return &Analyzer{params: params, cell: cell, overlay: overlay, logger: logger}
}

// AnalyzeFrame detects the exercise region of one analysis frame, publishes
// it (or its absence) and returns it. The frame is not closed.
func (a *Analyzer) AnalyzeFrame(f frame.Frame) (*geometry.RectInt, error) {
	box, ok, err := vision.DetectRegion(f, a.params)
	if err != nil {
		return nil, fmt.Errorf("analyze frame: %w", err)
	}

	var roi *geometry.RectInt
	if ok {
		roi = &box
	}
	a.cell.Store(roi, f.Size())
	if a.overlay != nil {
		a.overlay.Render(roi, f.Width(), f.Height())
	}
	a.noteChange(roi)
	return roi, nil
}

func (a *Analyzer) noteChange(roi *geometry.RectInt) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case roi == nil && a.last == nil:
		return
	case roi == nil:
		a.logger.Debug("exercise region lost")
	case a.last == nil || *a.last != *roi:
		a.logger.WithFields(log.Fields{"x": roi.X, "y": roi.Y, "w": roi.Width, "h": roi.Height}).
			Debug("exercise region")
	default:
		return
	}
	a.last = roi
}

// Run analyzes frames from src until ctx is done or the source closes. Only
// the most recent frame is kept: a frame that arrives while another is being
// analyzed replaces any frame still waiting, and the replaced one is closed
// unseen. Per-frame errors are logged and analysis continues. A source that
// stops on an acquisition failure ends Run with ErrSourceUnavailable.
func (a *Analyzer) Run(ctx context.Context, src LiveSource) error {
	frames, err := src.Frames(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	latest := make(chan frame.Frame, 1)
	go keepLatest(ctx, frames, latest)

	for {
		select {
		case <-ctx.Done():
			closeAll(latest)
			return nil
		case f, ok := <-latest:
			if !ok {
				if err := src.Err(); err != nil {
					return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
				}
				return nil
			}
			if ctx.Err() != nil {
				f.Close()
				closeAll(latest)
				return nil
			}
			if _, err := a.AnalyzeFrame(f); err != nil {
				a.logger.WithError(err).Warn("live analysis failed")
			}
			f.Close()
		}
	}
}

// keepLatest forwards frames from in to the single-slot out, replacing a
// frame nobody picked up yet. It closes out when in closes or ctx is done.
func keepLatest(ctx context.Context, in <-chan frame.Frame, out chan frame.Frame) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			go closeAll(in)
			return
		case f, ok := <-in:
			if !ok {
				return
			}
			offer(out, f)
		}
	}
}

// offer puts f into the single-slot out, closing whatever frame was waiting.
func offer(out chan frame.Frame, f frame.Frame) {
	for {
		select {
		case out <- f:
			return
		default:
		}
		select {
		case stale := <-out:
			stale.Close()
		default:
		}
	}
}

// closeAll closes every frame received from ch until ch is closed.
func closeAll(ch <-chan frame.Frame) {
	for f := range ch {
		f.Close()
	}
}
