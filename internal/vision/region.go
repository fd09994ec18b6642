package vision

import (
	"fmt"

	"mathscan/internal/frame"
	"mathscan/pkg/geometry"
)

// AggregateRegion merges candidate symbol boxes into one padded box around the
// whole exercise. Boxes outside the (RegionMinArea, RegionMaxArea) window are
// dropped first. The result is clamped to size: the min side is pinned to 0
// and the extent shrinks on the max side. Returns false when no box survives.
func AggregateRegion(boxes []geometry.RectInt, size geometry.Size, p Params) (geometry.RectInt, bool) {
	var union geometry.RectInt
	found := false
	for _, b := range boxes {
		area := b.Area()
		if area <= p.RegionMinArea || area >= p.RegionMaxArea {
			continue
		}
		if !found {
			union = b
			found = true
			continue
		}
		union = union.Union(b)
	}
	if !found {
		return geometry.RectInt{}, false
	}

	return union.Inset(p.RegionPadding).ClampTo(size.Width, size.Height)
}

// DetectRegion runs the live pipeline on one analysis frame: binarize at the
// live threshold, extract boxes, aggregate.
func DetectRegion(f frame.Frame, p Params) (geometry.RectInt, bool, error) {
	mask, err := Binarize(f, p.LiveThreshold)
	if err != nil {
		return geometry.RectInt{}, false, fmt.Errorf("failed to binarize frame: %w", err)
	}
	defer mask.Close()

	roi, ok := AggregateRegion(ExtractBoxes(mask), f.Size(), p)
	return roi, ok, nil
}
