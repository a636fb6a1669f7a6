package mapview

import (
	"fmt"
	"time"
)

const (
	DefaultMinZoom  = 0.1
	DefaultMaxZoom  = 20.0
	DefaultZoomStep = 0.01
)

// Viewport handles pan and zoom. Table gestures are routed to the table
// slots; canvas gestures move the surface's view box.
type Viewport struct {
	tables  *Tables
	surface Surface
	status  StatusSink

	frame Rect // screen rect of the view
	pane  Rect // map pane in frame coordinates

	zoom   float64
	offset Point

	MinZoom, MaxZoom, ZoomStep float64

	// redraw is called after any table moved.
	redraw func(d time.Duration)
}

// NewViewport creates a viewport at zoom 1.
func NewViewport(tables *Tables, s Surface, status StatusSink, redraw func(time.Duration)) *Viewport {
	return &Viewport{
		tables:   tables,
		surface:  s,
		status:   status,
		zoom:     1,
		MinZoom:  DefaultMinZoom,
		MaxZoom:  DefaultMaxZoom,
		ZoomStep: DefaultZoomStep,
		redraw:   redraw,
	}
}

// Resize sets the frame and pane used for coordinate conversion.
func (vp *Viewport) Resize(frame, pane Rect) {
	vp.frame, vp.pane = frame, pane
}

// Zoom returns the current canvas scale. Values above 1 show more of the
// canvas.
func (vp *Viewport) Zoom() float64 { return vp.zoom }

// Offset returns the canvas view box origin.
func (vp *Viewport) Offset() Point { return vp.offset }

// ViewBox returns the region of the canvas currently visible.
func (vp *Viewport) ViewBox() Rect {
	return Rect{vp.offset.X, vp.offset.Y, vp.pane.Width * vp.zoom, vp.pane.Height * vp.zoom}
}

// ToCanvas converts a point in frame coordinates to the canvas point drawn
// under it.
func (vp *Viewport) ToCanvas(p Point) Point {
	return Point{vp.offset.X + p.X*vp.zoom, vp.offset.Y + p.Y*vp.zoom}
}

// TablePan scrolls the table under (x, y), or all tables if none claims
// the gesture. Coordinates are in screen space.
func (vp *Viewport) TablePan(x, y, dx, dy float64) bool {
	at := Point{x - vp.frame.Left, y - vp.frame.Top}
	updated := false
	vp.tables.Each(func(_ Role, t Table) bool {
		updated = t.Pan(dx, dy, &at)
		return !updated
	})
	if !updated {
		vp.tables.Each(func(_ Role, t Table) bool {
			if t.Pan(dx, dy, nil) {
				updated = true
			}
			return true
		})
	}
	if updated && vp.redraw != nil {
		vp.redraw(0)
	}
	return updated
}

// TableZoom zooms the table under (x, y) exclusively, or all tables if none
// claims the gesture.
func (vp *Viewport) TableZoom(x, y, delta float64) bool {
	x -= vp.frame.Left
	y -= vp.frame.Top
	updated, claimed := false, false
	vp.tables.Each(func(_ Role, t Table) bool {
		updated, claimed = t.Zoom(delta, x, y, true)
		return !claimed
	})
	if !claimed {
		vp.tables.Each(func(_ Role, t Table) bool {
			if changed, _ := t.Zoom(delta, x, y, false); changed {
				updated = true
			}
			return true
		})
	}
	if updated && vp.redraw != nil {
		vp.redraw(0)
	}
	return updated
}

// CanvasPan moves the view box by the pointer delta scaled by zoom.
func (vp *Viewport) CanvasPan(x, y, dx, dy float64) {
	x -= vp.frame.Left
	y -= vp.frame.Top
	vp.offset.X += dx * vp.zoom
	vp.offset.Y += dy * vp.zoom
	vp.publish()
	vp.setStatus(fmt.Sprintf("pan: [%.2f, %.2f]", vp.offset.X, vp.offset.Y),
		x-vp.frame.Width*0.5+80, y+50)
}

// CanvasZoom scales the view box about the cursor. It returns false when
// the zoom is already at its limit.
func (vp *Viewport) CanvasZoom(x, y, delta float64) bool {
	x -= vp.frame.Left
	y -= vp.frame.Top
	next := vp.zoom + delta*vp.ZoomStep
	if next < vp.MinZoom {
		next = vp.MinZoom
	} else if next > vp.MaxZoom {
		next = vp.MaxZoom
	}
	if next == vp.zoom {
		return false
	}
	diff := vp.zoom - next
	vp.offset.X += x * diff
	vp.offset.Y += y * diff
	vp.zoom = next
	vp.publish()
	vp.setStatus(fmt.Sprintf("zoom: %.2f%%", 100/next), x-vp.frame.Width*0.5+70, y+50)
	return true
}

// Reset returns the canvas to zoom 1 with no offset.
func (vp *Viewport) Reset() {
	vp.zoom = 1
	vp.offset = Point{}
	vp.publish()
}

func (vp *Viewport) publish() {
	if vp.surface != nil {
		vp.surface.SetViewBox(vp.ViewBox())
	}
}

func (vp *Viewport) setStatus(text string, x, y float64) {
	if vp.status != nil {
		vp.status.SetStatus(text, x, y)
	}
}
