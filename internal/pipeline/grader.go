package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mathscan/internal/classify"
	"mathscan/internal/expression"
	"mathscan/internal/frame"
	"mathscan/internal/mapping"
	"mathscan/internal/segment"
	"mathscan/internal/vision"
	"mathscan/pkg/log"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Grader turns a still into a graded Attempt.
type Grader struct {
	params     vision.Params
	cell       *ROICell
	classifier *classify.Classifier
	sink       ResultSink
	student    string
	logger     *logrus.Logger
	now        func() time.Time
}

// NewGrader creates a grader reading the live region from cell. logger may be
// nil.
func NewGrader(cell *ROICell, classifier *classify.Classifier, params vision.Params, logger *logrus.Logger) *Grader {
	if logger == nil {
		logger = log.Discard()
	}
	return &Grader{
		params:     params,
		cell:       cell,
		classifier: classifier,
		student:    "N/A",
		logger:     logger,
		now:        time.Now,
	}
}

// SetSink sets the receiver of finished attempts.
func (g *Grader) SetSink(sink ResultSink) {
	g.sink = sink
}

// SetStudent sets the name attached to attempts.
func (g *Grader) SetStudent(name string) {
	if name == "" {
		name = "N/A"
	}
	g.student = name
}

// GradeCapture grades the exercise currently in view. It fails with
// ErrNoRegionDetected before touching the camera when live analysis has no
// region, and with ErrSourceUnavailable when the capture fails. The returned
// attempt owns its image; the caller closes it.
func (g *Grader) GradeCapture(ctx context.Context, src CaptureSource) (*Attempt, error) {
	roi, ok := g.cell.Load()
	if !ok {
		return nil, ErrNoRegionDetected
	}

	capture, err := src.Capture(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer capture.Close()
	if capture.Empty() {
		return nil, fmt.Errorf("%w: empty capture", ErrSourceUnavailable)
	}

	region, mapped := mapping.MapOrFull(roi.Box, roi.Frame, capture.Size())
	if !mapped {
		g.logger.WithFields(log.Fields{
			"roi":      roi.Box,
			"analysis": roi.Frame,
			"capture":  capture.Size(),
		}).Warn("region mapping failed, grading the whole capture")
	}

	crop, err := capture.Crop(region)
	if err != nil {
		return nil, fmt.Errorf("crop capture: %w", err)
	}

	attempt, err := g.grade(ctx, crop)
	if err != nil {
		crop.Close()
		return nil, err
	}
	attempt.Region = region
	attempt.FullFrame = !mapped
	g.finish(ctx, attempt)
	return attempt, nil
}

// GradeImage grades a whole still, e.g. one picked from disk. No region crop
// is applied. f is not closed; the attempt holds its own copy.
func (g *Grader) GradeImage(ctx context.Context, f frame.Frame) (*Attempt, error) {
	if f.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrSourceUnavailable)
	}

	img := f.Clone()
	attempt, err := g.grade(ctx, img)
	if err != nil {
		img.Close()
		return nil, err
	}
	attempt.Region = img.Bounds()
	attempt.FullFrame = true
	g.finish(ctx, attempt)
	return attempt, nil
}

// grade runs segmentation, classification and validation on img. Context
// cancellation is honored between symbols only.
func (g *Grader) grade(ctx context.Context, img frame.Frame) (*Attempt, error) {
	attempt := &Attempt{
		ID:      uuid.NewString(),
		Student: g.student,
		Time:    g.now(),
		Image:   img,
	}
	logger := g.logger.WithField("attempt", attempt.ID)

	symbols, err := segment.Segment(img, g.params)
	if err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}
	defer segment.Close(symbols)

	if len(symbols) == 0 {
		attempt.Result = expression.Result{
			Status: expression.StatusInvalidFormat,
			Reason: ErrSegmentationEmpty,
		}
		logger.Info("no symbols found")
		return attempt, nil
	}

	chars := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := g.classifier.Classify(s)
		if errors.Is(err, ErrClassificationUnavailable) {
			attempt.Dropped++
			logger.WithError(err).Debug("symbol dropped")
			continue
		}
		if err != nil {
			logger.WithError(err).Error("classification failed")
			return nil, fmt.Errorf("classify: %w", err)
		}
		chars = append(chars, c)
	}

	attempt.Result = expression.Validate(expression.Assemble(chars))
	logger.WithFields(log.Fields{
		"expression": attempt.Result.Expression,
		"status":     attempt.Result.Status,
		"symbols":    len(symbols),
		"dropped":    attempt.Dropped,
	}).Info("graded")
	return attempt, nil
}

// finish hands the attempt to the sink. A sink failure is logged; the verdict
// stands.
func (g *Grader) finish(ctx context.Context, a *Attempt) {
	if g.sink == nil {
		return
	}
	if err := g.sink.Accept(ctx, a); err != nil {
		g.logger.WithError(err).WithField("attempt", a.ID).Error("result sink failed")
	}
}
