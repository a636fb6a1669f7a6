package mapview

import (
	"errors"
	"log/slog"

	"github.com/ha1tch/mapview/pkg/mapper"
)

// DefaultSnapTolerance is the fraction of a row's extent within which the
// pointer snaps to it.
const DefaultSnapTolerance = 0.2

// DragState is the state of a connection drag.
type DragState int

const (
	DragIdle DragState = iota
	DragPressed
	DragDragging
	DragSnapped
	DragCancelled
)

func (s DragState) String() string {
	switch s {
	case DragIdle:
		return "idle"
	case DragPressed:
		return "pressed"
	case DragDragging:
		return "dragging"
	case DragSnapped:
		return "snapped"
	case DragCancelled:
		return "cancelled"
	}
	return "unknown"
}

// DragSession is the state carried between events of one drag. It is built
// on press and discarded on every exit.
type DragSession struct {
	State   DragState
	Src     Endpoint
	Dst     *Endpoint
	escaped bool
	preview Visual
}

// Preview returns the visual following the pointer, or nil.
func (s *DragSession) Preview() Visual { return s.preview }

func previewAttrs() Attrs {
	return Attrs{}.
		WithFillOpacity(0).
		WithStroke("white").
		WithStrokeOpacity(1).
		WithStrokeWidth(2)
}

// DragController draws new maps by dragging from a table row to another
// row in any table.
type DragController struct {
	router  *Router
	tables  *Tables
	surface Surface
	model   *mapper.Model
	log     *slog.Logger

	Tolerance float64
	// OnCommit is called after a staged map has been added.
	OnCommit func(src, dst string)
	// OnCollapse is called after a device row toggled its collapse bit.
	OnCollapse func(dev *mapper.Device)

	session *DragSession
}

// NewDragController creates a controller sharing the view's router.
func NewDragController(rt *Router, s Surface, m *mapper.Model, log *slog.Logger) *DragController {
	return &DragController{
		router:    rt,
		tables:    rt.Tables,
		surface:   s,
		model:     m,
		log:       log,
		Tolerance: DefaultSnapTolerance,
	}
}

// Session returns the active session, or nil.
func (dc *DragController) Session() *DragSession { return dc.session }

// Press starts a gesture on a table row. Device rows toggle their collapse
// bit for role instead of starting a drag.
func (dc *DragController) Press(role Role, row *Row) {
	if row == nil {
		return
	}
	if dc.session != nil {
		dc.Abort()
	}
	if row.Device {
		dev, ok := dc.model.Devices.Find(row.ID)
		if !ok {
			return
		}
		dev.Collapsed ^= role.Bit()
		dc.log.Debug("toggled device", "device", dev.Key, "role", role, "collapsed", dev.Collapsed)
		if dc.OnCollapse != nil {
			dc.OnCollapse(dev)
		}
		return
	}
	dc.session = &DragSession{State: DragPressed, Src: RowEndpoint(role, row)}
}

// Enter is called when the pointer first crosses onto the map surface.
func (dc *DragController) Enter() {
	s := dc.session
	if s == nil || s.State != DragPressed {
		return
	}
	if s.escaped {
		dc.finish(DragCancelled)
		return
	}
	p := s.Src.Anchor
	s.preview = dc.surface.Path(Curve{MoveTo(p), LineTo(p)})
	s.preview.Attr(previewAttrs())
	s.State = DragDragging
}

// Move updates highlights and the preview for a pointer at (x, y) in frame
// coordinates.
func (dc *DragController) Move(x, y float64) {
	s := dc.session
	if s == nil || s.State != DragDragging {
		return
	}
	dc.tables.ClearHighlights()
	if s.escaped {
		dc.finish(DragCancelled)
		return
	}

	s.Dst = nil
	dc.tables.Each(func(r Role, t Table) bool {
		row := t.RowFromPosition(x, y, dc.Tolerance)
		if row == nil || row.Device || row.ID == s.Src.Key {
			return true
		}
		dst := RowEndpoint(r, row)
		s.Dst = &dst
		return false
	})

	var path Curve
	if s.Dst != nil {
		path = dc.router.Route(s.Src, *s.Dst)
	} else {
		path = dc.router.Toward(s.Src, Point{x, y})
	}

	if t := dc.tables.Get(s.Src.Role); t != nil {
		t.HighlightRow(s.Src.Row, false)
	}
	if s.Dst != nil {
		if t := dc.tables.Get(s.Dst.Role); t != nil {
			t.HighlightRow(s.Dst.Row, false)
		}
	}
	if s.preview != nil {
		s.preview.Attr(Attrs{}.WithPath(path))
	}
}

// Release ends the gesture. A drag over a valid row stages a new map.
func (dc *DragController) Release() DragState {
	s := dc.session
	if s == nil {
		return DragIdle
	}
	switch {
	case s.State == DragPressed:
		return dc.finish(DragIdle)
	case s.escaped || s.Dst == nil:
		return dc.finish(DragCancelled)
	}

	dc.tables.ClearHighlights()
	srcKey, dstKey := s.Src.Key, s.Dst.Key
	if err := dc.commit(srcKey, dstKey); err != nil {
		dc.log.Warn("map not created", "src", srcKey, "dst", dstKey, "error", err)
		return dc.finish(DragCancelled)
	}
	return dc.finish(DragSnapped)
}

func (dc *DragController) commit(srcKey, dstKey string) error {
	_, err := dc.model.Connect(srcKey, dstKey, mapper.StatusStaged)
	if errors.Is(err, mapper.ErrDuplicate) {
		dc.log.Debug("map already exists", "src", srcKey, "dst", dstKey)
		err = nil
	}
	if err != nil {
		return err
	}
	if dc.OnCommit != nil {
		dc.OnCommit(srcKey, dstKey)
	}
	return nil
}

// Escape cancels the active drag. The session ends on the next move or
// release.
func (dc *DragController) Escape() {
	s := dc.session
	if s == nil {
		return
	}
	s.escaped = true
	if s.preview != nil {
		s.preview.Remove()
		s.preview = nil
	}
}

// Abort tears down any session unconditionally.
func (dc *DragController) Abort() {
	if dc.session != nil {
		dc.finish(DragCancelled)
	}
}

func (dc *DragController) finish(end DragState) DragState {
	s := dc.session
	dc.session = nil
	if s.preview != nil {
		s.preview.Remove()
		s.preview = nil
	}
	dc.tables.ClearHighlights()
	s.State = end
	dc.log.Debug("drag finished", "src", s.Src.Key, "state", end)
	return end
}
