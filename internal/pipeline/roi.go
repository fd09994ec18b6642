package pipeline

import (
	"sync/atomic"

	"mathscan/pkg/geometry"
)

// ROI is the latest exercise region seen by live analysis, in the pixel space
// of the analysis frame whose size is recorded alongside.
type ROI struct {
	Box   geometry.RectInt
	Frame geometry.Size
}

// ROICell is the single-slot, last-write-wins hand-off between the live
// analyzer (writer) and the grader (reader). Box and frame size are replaced
// together, so a reader never sees a box paired with another frame's size.
type ROICell struct {
	p atomic.Pointer[ROI]
}

// Store publishes box for a frame of the given size. A nil box clears the cell.
func (c *ROICell) Store(box *geometry.RectInt, size geometry.Size) {
	if box == nil {
		c.p.Store(nil)
		return
	}
	c.p.Store(&ROI{Box: *box, Frame: size})
}

// Load returns the latest ROI, or false when none is in view.
func (c *ROICell) Load() (ROI, bool) {
	roi := c.p.Load()
	if roi == nil {
		return ROI{}, false
	}
	return *roi, true
}
