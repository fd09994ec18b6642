package classify

import (
	"bytes"
	"errors"
	"testing"

	"mathscan/internal/frame"
	"mathscan/internal/frame/frametest"
	"mathscan/internal/segment"
	"mathscan/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// stubDigits answers with a fixed digit and records the inputs it saw.
type stubDigits struct {
	digit int
	ok    bool
	err   error
	calls int
	last  *mat.Dense
}

func (s *stubDigits) ClassifyDigit(input *mat.Dense) (int, bool, error) {
	s.calls++
	s.last = input
	return s.digit, s.ok, s.err
}

func TestOperatorFromMetrics(t *testing.T) {
	assert.Equal(t, "-", OperatorFromMetrics(2.5, 1.0))
	assert.Equal(t, "/", OperatorFromMetrics(0.3, 1.0))
	assert.Equal(t, "+", OperatorFromMetrics(1.0, 0.2))
	assert.Equal(t, "*", OperatorFromMetrics(1.0, 0.6))

	// Boundaries are exclusive.
	assert.Equal(t, "*", OperatorFromMetrics(2.0, 0.9))
	assert.Equal(t, "*", OperatorFromMetrics(0.4, 0.9))
	assert.Equal(t, "*", OperatorFromMetrics(1.0, 0.35))
	// Aspect wins over fill.
	assert.Equal(t, "-", OperatorFromMetrics(3.0, 0.1))
}

func mask(t *testing.T, w, h int, ink ...geometry.RectInt) frame.Frame {
	t.Helper()
	f := frametest.Mask(w, h)
	for _, r := range ink {
		frametest.Fill(f, r)
	}
	return f
}

func TestClassifyOperator(t *testing.T) {
	tests := []struct {
		name string
		img  frame.Frame
		want string
	}{
		{"minus", mask(t, 50, 10, geometry.RectInt{Width: 50, Height: 10}), "-"},
		{"divide", mask(t, 4, 20, geometry.RectInt{Width: 4, Height: 20}), "/"},
		{"plus", mask(t, 30, 30,
			geometry.RectInt{X: 0, Y: 13, Width: 30, Height: 4},
			geometry.RectInt{X: 13, Y: 0, Width: 4, Height: 30}), "+"},
		{"blob", mask(t, 30, 30, geometry.RectInt{Width: 30, Height: 30}), "*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer tt.img.Close()
			got, err := ClassifyOperator(tt.img)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ClassifyOperator(frame.Frame{})
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestClassifierDispatch(t *testing.T) {
	digitImg := mask(t, 20, 30, geometry.RectInt{X: 5, Y: 5, Width: 10, Height: 20})
	defer digitImg.Close()
	barImg := mask(t, 40, 8, geometry.RectInt{Width: 40, Height: 8})
	defer barImg.Close()

	stub := &stubDigits{digit: 7, ok: true}
	c := New(stub)

	got, err := c.Classify(segment.Symbol{Image: digitImg, Box: geometry.RectInt{Width: 20, Height: 30}, Kind: segment.KindDigit, Parts: 1})
	require.NoError(t, err)
	assert.Equal(t, "7", got)
	assert.Equal(t, 1, stub.calls)
	rows, cols := stub.last.Dims()
	assert.Equal(t, InputSize, rows)
	assert.Equal(t, InputSize, cols)

	got, err = c.Classify(segment.Symbol{Image: barImg, Kind: segment.KindOperator, Parts: 1})
	require.NoError(t, err)
	assert.Equal(t, "-", got)

	got, err = c.Classify(segment.Symbol{Image: barImg, Kind: segment.KindOperator, Parts: 2})
	require.NoError(t, err)
	assert.Equal(t, "=", got)
	assert.Equal(t, 1, stub.calls, "operators never reach the digit engine")

	_, err = c.Classify(segment.Symbol{Image: barImg, Kind: segment.KindUnknown})
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestClassifierDigitFailures(t *testing.T) {
	img := mask(t, 20, 30, geometry.RectInt{X: 5, Y: 5, Width: 10, Height: 20})
	defer img.Close()
	sym := segment.Symbol{Image: img, Kind: segment.KindDigit, Parts: 1}

	_, err := New(nil).Classify(sym)
	assert.True(t, errors.Is(err, ErrUnavailable))

	_, err = New(&stubDigits{ok: false}).Classify(sym)
	assert.True(t, errors.Is(err, ErrUnavailable))

	_, err = New(&stubDigits{digit: 12, ok: true}).Classify(sym)
	assert.True(t, errors.Is(err, ErrUnavailable))

	boom := errors.New("engine crashed")
	_, err = New(&stubDigits{err: boom}).Classify(sym)
	assert.True(t, errors.Is(err, boom))
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestNormalize(t *testing.T) {
	full := mask(t, 56, 56, geometry.RectInt{Width: 56, Height: 56})
	defer full.Close()
	out, err := Normalize(full)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, out.At(0, 0), 1e-9)
	assert.InDelta(t, 1.0, out.At(27, 27), 1e-9)

	// Left half inked: nearest neighbour keeps a hard edge at column 14.
	half := mask(t, 56, 56, geometry.RectInt{Width: 28, Height: 56})
	defer half.Close()
	out, err = Normalize(half)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, out.At(10, 5), 1e-9)
	assert.InDelta(t, 0.0, out.At(10, 20), 1e-9)

	// White paper in color reduces to luma 255.
	paper := frametest.Paper(10, 10)
	defer paper.Close()
	out, err = Normalize(paper)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, out.At(3, 3), 1e-6)

	_, err = Normalize(frame.Frame{})
	assert.Error(t, err)
}

func TestParseDigit(t *testing.T) {
	d, ok, err := parseDigit(" 4\n")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4, d)

	for _, text := range []string{"", "12", "x", " "} {
		_, ok, err := parseDigit(text)
		require.NoError(t, err)
		assert.False(t, ok, "%q", text)
	}
}

func TestArgmaxSoftmax(t *testing.T) {
	digit, conf := argmaxSoftmax([]float64{0, 0, 0, 10, 0, 0, 0, 0, 0, 0})
	assert.Equal(t, 3, digit)
	assert.Greater(t, conf, 0.99)

	digit, conf = argmaxSoftmax(make([]float64, 10))
	assert.Equal(t, 0, digit)
	assert.InDelta(t, 0.1, conf, 1e-9)
}

func TestEncodeForOCR(t *testing.T) {
	input := mat.NewDense(InputSize, InputSize, nil)
	input.Set(14, 14, 1)
	png, err := encodeForOCR(input)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestONNXModelLoadFailure(t *testing.T) {
	_, err := NewONNXClassifier("")
	assert.True(t, errors.Is(err, ErrModelLoad))
}

func TestSwappable(t *testing.T) {
	s := NewSwappable(&stubDigits{digit: 1, ok: true})
	d, ok, err := s.ClassifyDigit(mat.NewDense(InputSize, InputSize, nil))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, d)

	old := s.Swap(&stubDigits{digit: 2, ok: true})
	assert.Equal(t, 1, old.(*stubDigits).digit)
	d, _, _ = s.ClassifyDigit(mat.NewDense(InputSize, InputSize, nil))
	assert.Equal(t, 2, d)

	require.NoError(t, s.Close())
	_, ok, err = s.ClassifyDigit(mat.NewDense(InputSize, InputSize, nil))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenEngineUnknown(t *testing.T) {
	_, err := OpenEngine("abacus", "")
	assert.True(t, errors.Is(err, ErrModelLoad))

	_, err = OpenEngine(EngineONNX, "")
	assert.True(t, errors.Is(err, ErrModelLoad))
}
