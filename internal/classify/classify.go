// Package classify turns segmented symbols into expression characters: a
// geometric heuristic for operators and an injected DigitClassifier for digits.
package classify

import (
	"errors"
	"fmt"
	"strconv"

	"mathscan/internal/segment"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrModelLoad is returned when a digit engine cannot be initialized.
	ErrModelLoad = errors.New("digit model load failed")
	// ErrUnavailable marks a symbol that could not be classified. The symbol
	// is dropped and grading goes on.
	ErrUnavailable = errors.New("classification unavailable")
)

// DigitClassifier predicts the digit drawn in a 28x28 intensity matrix with
// values in [0,1], ink bright on a dark background. ok is false when the
// engine has no confident answer. err is reserved for engine failures.
type DigitClassifier interface {
	ClassifyDigit(input *mat.Dense) (digit int, ok bool, err error)
}

// Classifier dispatches a symbol to the operator heuristic or the digit
// engine according to its segmentation kind.
type Classifier struct {
	digits DigitClassifier
}

// New returns a Classifier. digits may be nil, in which case every digit
// symbol is reported as ErrUnavailable.
func New(digits DigitClassifier) *Classifier {
	return &Classifier{digits: digits}
}

// Classify returns the character for s. An error wrapping ErrUnavailable
// means the symbol contributes nothing; any other error is an engine failure.
func (c *Classifier) Classify(s segment.Symbol) (string, error) {
	if s.Image.Empty() {
		return "", fmt.Errorf("%w: empty symbol image", ErrUnavailable)
	}

	switch s.Kind {
	case segment.KindOperator:
		if s.Parts == 2 {
			return "=", nil
		}
		return ClassifyOperator(s.Image)

	case segment.KindDigit:
		if c.digits == nil {
			return "", fmt.Errorf("%w: no digit classifier", ErrUnavailable)
		}
		input, err := Normalize(s.Image)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		digit, ok, err := c.digits.ClassifyDigit(input)
		if err != nil {
			return "", fmt.Errorf("digit classifier: %w", err)
		}
		if !ok || digit < 0 || digit > 9 {
			return "", fmt.Errorf("%w: no prediction for symbol at %+v", ErrUnavailable, s.Box)
		}
		return strconv.Itoa(digit), nil

	default:
		return "", fmt.Errorf("%w: unknown symbol at %+v", ErrUnavailable, s.Box)
	}
}
