package classify

import (
	"fmt"
	"io"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// Swappable is a DigitClassifier whose engine can be replaced while grading
// runs, e.g. after the model file changed on disk.
type Swappable struct {
	mu     sync.RWMutex
	engine DigitClassifier
}

// NewSwappable wraps engine.
func NewSwappable(engine DigitClassifier) *Swappable {
	return &Swappable{engine: engine}
}

// Swap installs engine and returns the previous one, which the caller closes.
func (s *Swappable) Swap(engine DigitClassifier) DigitClassifier {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.engine
	s.engine = engine
	return old
}

// ClassifyDigit implements DigitClassifier.
func (s *Swappable) ClassifyDigit(input *mat.Dense) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.engine == nil {
		return 0, false, nil
	}
	return s.engine.ClassifyDigit(input)
}

// Close closes the current engine if it holds resources.
func (s *Swappable) Close() error {
	return CloseEngine(s.Swap(nil))
}

// CloseEngine closes engine when it implements io.Closer.
func CloseEngine(engine DigitClassifier) error {
	if c, ok := engine.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Engine names accepted by OpenEngine.
const (
	EngineONNX      = "onnx"
	EngineTesseract = "tesseract"
)

// OpenEngine creates the named digit engine. modelPath is used by the ONNX
// engine only.
func OpenEngine(name, modelPath string) (DigitClassifier, error) {
	switch name {
	case EngineONNX:
		c, err := NewONNXClassifier(modelPath)
		if err != nil {
			return nil, err
		}
		return c, nil
	case EngineTesseract:
		c, err := NewTesseractClassifier()
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: unknown digit engine %q", ErrModelLoad, name)
	}
}
