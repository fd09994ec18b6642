package vision

import (
	"sort"
	"testing"

	"mathscan/internal/frame"
	"mathscan/internal/frame/frametest"
	"mathscan/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func sortBoxes(boxes []geometry.RectInt) {
	sort.Slice(boxes, func(i, j int) bool {
		if boxes[i].X != boxes[j].X {
			return boxes[i].X < boxes[j].X
		}
		return boxes[i].Y < boxes[j].Y
	})
}

func TestBinarizeInvertsPolarity(t *testing.T) {
	f := frametest.Paper(20, 10)
	defer f.Close()
	frametest.Black(f, geometry.RectInt{X: 2, Y: 2, Width: 3, Height: 3})
	frametest.Ink(f, geometry.RectInt{X: 10, Y: 2, Width: 3, Height: 3}, 200)

	mask, err := Binarize(f, 125)
	require.NoError(t, err)
	defer mask.Close()

	m := mask.Mat()
	assert.Equal(t, 1, mask.Channels())
	assert.Equal(t, uint8(255), m.GetUCharAt(3, 3), "black ink becomes foreground")
	assert.Equal(t, uint8(0), m.GetUCharAt(3, 11), "light gray stays background")
	assert.Equal(t, uint8(0), m.GetUCharAt(0, 0), "paper is background")
}

func TestBinarizeThresholdBoundary(t *testing.T) {
	f := frametest.GrayPaper(4, 1)
	defer f.Close()
	frametest.Ink(f, geometry.RectInt{X: 0, Y: 0, Width: 1, Height: 1}, 120)
	frametest.Ink(f, geometry.RectInt{X: 1, Y: 0, Width: 1, Height: 1}, 121)

	mask, err := Binarize(f, 120)
	require.NoError(t, err)
	defer mask.Close()

	m := mask.Mat()
	assert.Equal(t, uint8(255), m.GetUCharAt(0, 0))
	assert.Equal(t, uint8(0), m.GetUCharAt(0, 1))
}

func TestBinarizeBGRA(t *testing.T) {
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 255), 6, 6, gocv.MatTypeCV8UC4)
	f := frame.FromMat(m)
	defer f.Close()
	frametest.Black(f, geometry.RectInt{X: 1, Y: 1, Width: 2, Height: 2})

	mask, err := Binarize(f, 125)
	require.NoError(t, err)
	defer mask.Close()
	mm := mask.Mat()
	assert.Equal(t, uint8(255), mm.GetUCharAt(1, 1))
	assert.Equal(t, uint8(0), mm.GetUCharAt(5, 5))
}

func TestBinarizeEmpty(t *testing.T) {
	_, err := Binarize(frame.Frame{}, 125)
	assert.Error(t, err)
}

func TestExtractBoxesOuterOnly(t *testing.T) {
	f := frametest.Paper(120, 60)
	defer f.Close()
	// A hollow "0": the hole must not show up as its own box.
	frametest.Outline(f, geometry.RectInt{X: 10, Y: 10, Width: 20, Height: 30}, 3)
	frametest.Black(f, geometry.RectInt{X: 60, Y: 20, Width: 25, Height: 5})

	mask, err := Binarize(f, 125)
	require.NoError(t, err)
	defer mask.Close()

	boxes := ExtractBoxes(mask)
	sortBoxes(boxes)
	require.Len(t, boxes, 2)
	assert.Equal(t, geometry.RectInt{X: 10, Y: 10, Width: 20, Height: 30}, boxes[0])
	assert.Equal(t, geometry.RectInt{X: 60, Y: 20, Width: 25, Height: 5}, boxes[1])
}

func TestAggregateRegionFiltersBySize(t *testing.T) {
	p := DefaultParams()
	boxes := []geometry.RectInt{
		{X: 5, Y: 5, Width: 10, Height: 5},      // 50 px², noise
		{X: 0, Y: 200, Width: 250, Height: 100}, // 25000 px², shadow
		{X: 100, Y: 100, Width: 20, Height: 30}, // kept
		{X: 150, Y: 110, Width: 10, Height: 20}, // kept
	}

	roi, ok := AggregateRegion(boxes, geometry.Size{Width: 640, Height: 480}, p)
	require.True(t, ok)
	assert.Equal(t, geometry.RectInt{X: 80, Y: 80, Width: 100, Height: 70}, roi)
}

func TestAggregateRegionAreaBoundsExclusive(t *testing.T) {
	p := DefaultParams()
	size := geometry.Size{Width: 1000, Height: 1000}

	_, ok := AggregateRegion([]geometry.RectInt{{X: 0, Y: 0, Width: 10, Height: 10}}, size, p)
	assert.False(t, ok, "area 100 is excluded")

	_, ok = AggregateRegion([]geometry.RectInt{{X: 0, Y: 0, Width: 200, Height: 100}}, size, p)
	assert.False(t, ok, "area 20000 is excluded")

	_, ok = AggregateRegion([]geometry.RectInt{{X: 0, Y: 0, Width: 101, Height: 1}}, size, p)
	assert.True(t, ok)
}

func TestAggregateRegionEmpty(t *testing.T) {
	_, ok := AggregateRegion(nil, geometry.Size{Width: 10, Height: 10}, DefaultParams())
	assert.False(t, ok)
}

func TestAggregateRegionClampsToImage(t *testing.T) {
	p := DefaultParams()
	size := geometry.Size{Width: 200, Height: 100}
	boxes := []geometry.RectInt{
		{X: 5, Y: 8, Width: 20, Height: 20},
		{X: 170, Y: 70, Width: 25, Height: 25},
	}

	roi, ok := AggregateRegion(boxes, size, p)
	require.True(t, ok)
	assert.Equal(t, geometry.RectInt{X: 0, Y: 0, Width: 200, Height: 100}, roi)
}

func TestAggregateRegionContainsUnion(t *testing.T) {
	p := DefaultParams()
	size := geometry.Size{Width: 480, Height: 640}
	sets := [][]geometry.RectInt{
		{{X: 10, Y: 10, Width: 15, Height: 20}},
		{{X: 400, Y: 600, Width: 30, Height: 30}, {X: 300, Y: 20, Width: 12, Height: 40}},
		{{X: 200, Y: 300, Width: 11, Height: 11}, {X: 210, Y: 290, Width: 40, Height: 9}, {X: 0, Y: 0, Width: 14, Height: 14}},
	}
	for _, boxes := range sets {
		roi, ok := AggregateRegion(boxes, size, p)
		require.True(t, ok)

		union := boxes[0]
		for _, b := range boxes[1:] {
			union = union.Union(b)
		}
		assert.True(t, roi.Contains(union), "roi %+v must contain %+v", roi, union)
		assert.GreaterOrEqual(t, roi.X, 0)
		assert.GreaterOrEqual(t, roi.Y, 0)
		assert.LessOrEqual(t, roi.Right(), size.Width)
		assert.LessOrEqual(t, roi.Bottom(), size.Height)
	}
}

func TestDetectRegionOnFrame(t *testing.T) {
	f := frametest.Paper(480, 640)
	defer f.Close()
	// "7+3=10" drawn as blocks in one row.
	x := 100
	for _, w := range []int{12, 14, 12, 14, 6, 12} {
		frametest.Black(f, geometry.RectInt{X: x, Y: 300, Width: w, Height: 24})
		x += w + 10
	}

	roi, ok, err := DetectRegion(f, DefaultParams())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, geometry.RectInt{X: 80, Y: 280, Width: 120 + 40, Height: 24 + 40}, roi)
}

func TestDetectRegionBlankFrame(t *testing.T) {
	f := frametest.Paper(64, 64)
	defer f.Close()

	_, ok, err := DetectRegion(f, DefaultParams())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParamsBuilders(t *testing.T) {
	p := DefaultParams().WithThresholds(110, 115).WithRegionAreas(50, 9000).WithPadding(5)
	assert.Equal(t, 110, p.LiveThreshold)
	assert.Equal(t, 115, p.SegmentThreshold)
	assert.Equal(t, 50, p.RegionMinArea)
	assert.Equal(t, 9000, p.RegionMaxArea)
	assert.Equal(t, 5, p.RegionPadding)
	assert.Equal(t, 125, DefaultParams().LiveThreshold)
}
