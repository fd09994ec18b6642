// Package segment splits a cropped exercise into per-symbol sub-images ordered
// left to right.
package segment

import (
	"fmt"
	"sort"

	"mathscan/internal/frame"
	"mathscan/internal/vision"
	"mathscan/pkg/geometry"
)

// Kind is the coarse shape class assigned during segmentation.
type Kind int

const (
	KindUnknown Kind = iota
	KindDigit
	KindOperator
)

func (k Kind) String() string {
	switch k {
	case KindDigit:
		return "DIGIT"
	case KindOperator:
		return "OPERATOR"
	default:
		return "UNKNOWN"
	}
}

// Symbol is one isolated ink component of the exercise.
type Symbol struct {
	// Image is the binary mask (ink = 255) cropped to Box.
	Image frame.Frame
	// Box is in the coordinates of the segmented frame.
	Box  geometry.RectInt
	Kind Kind
	// Parts is 2 when two stacked bars were merged into one symbol ("="),
	// otherwise 1.
	Parts int
}

// Close releases every symbol image.
func Close(symbols []Symbol) {
	for _, s := range symbols {
		s.Image.Close()
	}
}

// Segment binarizes f with p.SegmentThreshold and returns one Symbol per
// external ink component whose box area exceeds p.SymbolMinArea, sorted by
// box X ascending. Components with equal X keep discovery order. An exercise
// without any ink yields an empty slice and no error.
func Segment(f frame.Frame, p vision.Params) ([]Symbol, error) {
	if f.Empty() {
		return nil, fmt.Errorf("segment: empty frame")
	}

	mask, err := vision.Binarize(f, p.SegmentThreshold)
	if err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}
	defer mask.Close()

	boxes := make([]geometry.RectInt, 0)
	for _, box := range vision.ExtractBoxes(mask) {
		if box.Area() <= p.SymbolMinArea {
			continue
		}
		boxes = append(boxes, box)
	}
	sort.SliceStable(boxes, func(i, j int) bool {
		return boxes[i].X < boxes[j].X
	})

	pieces := mergeStackedBars(boxes, p)

	symbols := make([]Symbol, 0, len(pieces))
	for _, pc := range pieces {
		kind := KindOf(pc.box, p)
		if pc.parts > 1 {
			kind = KindOperator
		}
		img, err := mask.Crop(pc.box)
		if err != nil {
			Close(symbols)
			return nil, fmt.Errorf("segment: crop %+v: %w", pc.box, err)
		}
		symbols = append(symbols, Symbol{
			Image: img,
			Box:   pc.box,
			Kind:  kind,
			Parts: pc.parts,
		})
	}
	return symbols, nil
}

// KindOf tags a box as an operator when it is much wider than tall or much
// taller than wide. A thin "1" therefore lands in the operator bucket; the
// classifier works with that.
func KindOf(box geometry.RectInt, p vision.Params) Kind {
	if box.Empty() {
		return KindUnknown
	}
	ratio := box.AspectRatio()
	if ratio > p.OperatorWideRatio || ratio < p.OperatorNarrowRatio {
		return KindOperator
	}
	return KindDigit
}

type piece struct {
	box   geometry.RectInt
	parts int
}

// mergeStackedBars joins two wide bars lying on top of each other into one
// piece, which is how an equals sign shows up after contour extraction.
// boxes must already be sorted by X; the merged piece takes the slot of the
// first bar.
func mergeStackedBars(boxes []geometry.RectInt, p vision.Params) []piece {
	used := make([]bool, len(boxes))
	out := make([]piece, 0, len(boxes))
	for i, a := range boxes {
		if used[i] {
			continue
		}
		used[i] = true
		pc := piece{box: a, parts: 1}
		if a.AspectRatio() > p.OperatorWideRatio {
			for j := i + 1; j < len(boxes); j++ {
				if used[j] {
					continue
				}
				b := boxes[j]
				if b.X >= a.Right() {
					break
				}
				if stacked(a, b, p) {
					used[j] = true
					pc = piece{box: a.Union(b), parts: 2}
					break
				}
			}
		}
		out = append(out, pc)
	}
	return out
}

// stacked reports whether b is a second wide bar above or below a, sharing
// most of its horizontal extent and separated by less than a bar length.
func stacked(a, b geometry.RectInt, p vision.Params) bool {
	if b.AspectRatio() <= p.OperatorWideRatio {
		return false
	}
	overlap := min(a.Right(), b.Right()) - max(a.X, b.X)
	if overlap*2 < min(a.Width, b.Width) {
		return false
	}
	gap := max(a.Y, b.Y) - min(a.Bottom(), b.Bottom())
	return gap > 0 && gap < max(a.Width, b.Width)
}
