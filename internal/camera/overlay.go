package camera

import (
	"image"
	"strings"
	"sync"
	"unicode"

	"mathscan/internal/frame"
	"mathscan/internal/mapping"
	"mathscan/pkg/colorutil"
	"mathscan/pkg/geometry"

	"gocv.io/x/gocv"
)

// Overlay implements pipeline.OverlayRenderer on top of a preview window.
// Render may be called from any goroutine; Show must run on the thread that
// owns the window.
type Overlay struct {
	window *gocv.Window

	mu     sync.Mutex
	box    *geometry.RectInt
	src    geometry.Size
	status string
}

// NewOverlay opens a preview window.
func NewOverlay(title string) *Overlay {
	return &Overlay{window: gocv.NewWindow(title)}
}

// Close closes the window.
func (o *Overlay) Close() error {
	return o.window.Close()
}

// Render records the latest live region in analysis coordinates.
func (o *Overlay) Render(box *geometry.RectInt, srcW, srcH int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if box == nil {
		o.box = nil
		return
	}
	b := *box
	o.box = &b
	o.src = geometry.Size{Width: srcW, Height: srcH}
}

// SetStatus sets the text line drawn at the bottom of the preview. Hershey
// fonts only cover ASCII, so anything else is dropped.
func (o *Overlay) SetStatus(text string) {
	text = strings.TrimSpace(strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, text))

	o.mu.Lock()
	defer o.mu.Unlock()
	o.status = text
}

// Show draws the region onto a copy of preview, displays it and waits up to
// delay ms for a key, which is returned (-1 for none).
func (o *Overlay) Show(preview frame.Frame, delay int) int {
	if preview.Empty() {
		return o.window.WaitKey(delay)
	}
	canvas := preview.Clone()
	defer canvas.Close()
	m := canvas.Mat()

	o.mu.Lock()
	box, src, status := o.box, o.src, o.status
	o.mu.Unlock()

	if r, ok := PreviewBox(box, src, preview.Size()); ok {
		gocv.Rectangle(&m, r.ImageRect(), colorutil.Green, 3)
	}
	if status != "" {
		gocv.PutText(&m, status, image.Pt(10, preview.Height()-15),
			gocv.FontHersheySimplex, 0.8, colorutil.Red, 2)
	}

	o.window.IMShow(m)
	return o.window.WaitKey(delay)
}

// PreviewBox maps an analysis-space box into preview coordinates.
func PreviewBox(box *geometry.RectInt, src, preview geometry.Size) (geometry.RectInt, bool) {
	if box == nil {
		return geometry.RectInt{}, false
	}
	r, err := mapping.MapRotated(*box, src, preview)
	if err != nil {
		return geometry.RectInt{}, false
	}
	return r, true
}
