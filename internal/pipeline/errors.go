package pipeline

import (
	"errors"

	"mathscan/internal/classify"
	"mathscan/internal/expression"
	"mathscan/internal/mapping"
)

var (
	// ErrNoRegionDetected: capture requested while no exercise is in view.
	// The student is asked to point the camera at one; nothing is retried.
	ErrNoRegionDetected = errors.New("no exercise region detected")

	// ErrMappingFailed: the live ROI does not map into the capture frame.
	// The grader falls back to the whole frame.
	ErrMappingFailed = mapping.ErrMappingFailed

	// ErrSegmentationEmpty: no symbol survived segmentation. Reported as an
	// INVALID_FORMAT result, not returned.
	ErrSegmentationEmpty = errors.New("no symbols segmented")

	// ErrClassificationUnavailable: a symbol was dropped.
	ErrClassificationUnavailable = classify.ErrUnavailable

	// ErrParseOrEval: the assembled expression is malformed.
	ErrParseOrEval = expression.ErrParseOrEval

	// ErrSourceUnavailable: the camera or image source failed.
	ErrSourceUnavailable = errors.New("frame source unavailable")
)

// NoRegionMessage is shown when a capture is requested with nothing in view.
const NoRegionMessage = "Point the camera at an exercise."
