package vision

// Params holds the fixed thresholds of the detection and segmentation stages.
type Params struct {
	// Inverse binarization thresholds (0-255). Pixels at or below the
	// threshold become ink.
	LiveThreshold    int
	SegmentThreshold int

	// Live symbol boxes are kept when RegionMinArea < area < RegionMaxArea.
	RegionMinArea int
	RegionMaxArea int
	// Padding added on every side of the aggregated region.
	RegionPadding int

	// Segmented symbol boxes are kept when area > SymbolMinArea.
	SymbolMinArea int
	// A symbol is tagged as an operator when its aspect ratio (w/h) is above
	// OperatorWideRatio or below OperatorNarrowRatio.
	OperatorWideRatio   float64
	OperatorNarrowRatio float64
}

// DefaultParams returns the thresholds tuned for dark ink on white paper.
func DefaultParams() Params {
	return Params{
		LiveThreshold:    125,
		SegmentThreshold: 120,

		RegionMinArea: 100,   // noise
		RegionMaxArea: 20000, // shadows, page edges
		RegionPadding: 20,

		SymbolMinArea: 50, // tighter crop, stricter floor

		OperatorWideRatio:   1.8,
		OperatorNarrowRatio: 0.4,
	}
}

// WithThresholds returns a copy with custom binarization thresholds.
func (p Params) WithThresholds(live, segment int) Params {
	p.LiveThreshold = live
	p.SegmentThreshold = segment
	return p
}

// WithRegionAreas returns a copy with a custom live symbol area window.
func (p Params) WithRegionAreas(minArea, maxArea int) Params {
	p.RegionMinArea = minArea
	p.RegionMaxArea = maxArea
	return p
}

// WithPadding returns a copy with a custom region padding.
func (p Params) WithPadding(pad int) Params {
	p.RegionPadding = pad
	return p
}
