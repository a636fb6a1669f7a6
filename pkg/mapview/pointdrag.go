package mapview

import "log/slog"

type pointSession struct {
	src     Endpoint
	snapTo  *Endpoint
	escaped bool
	preview Visual
}

// PointDragController draws new maps between free signal points on the
// open canvas. It reports candidate maps through OnCommit and never
// mutates the model itself.
type PointDragController struct {
	router  *Router
	surface Surface
	log     *slog.Logger

	OnCommit func(src, dst string)

	session *pointSession
}

// NewPointDragController creates a controller for canvas mode.
func NewPointDragController(rt *Router, s Surface, log *slog.Logger) *PointDragController {
	return &PointDragController{router: rt, surface: s, log: log}
}

// Active reports whether a drag is in progress.
func (pc *PointDragController) Active() bool { return pc.session != nil }

// Snapping returns the key of the hovered candidate, or "".
func (pc *PointDragController) Snapping() string {
	if pc.session == nil || pc.session.snapTo == nil {
		return ""
	}
	return pc.session.snapTo.Key
}

// Preview returns the preview visual, or nil.
func (pc *PointDragController) Preview() Visual {
	if pc.session == nil {
		return nil
	}
	return pc.session.preview
}

// Start begins a drag from a signal point.
func (pc *PointDragController) Start(src Endpoint) {
	pc.Abort()
	pc.session = &pointSession{src: src}
}

// Hover snaps the preview to dst. It returns false when there is no drag
// or dst is the drag source.
func (pc *PointDragController) Hover(dst Endpoint) bool {
	s := pc.session
	if s == nil || s.escaped || dst.Key == s.src.Key {
		return false
	}
	s.snapTo = &dst
	pc.setPath(pc.router.Free(s.src.Anchor, dst.Anchor, true))
	return true
}

// Unhover releases the snap to key.
func (pc *PointDragController) Unhover(key string) {
	s := pc.session
	if s != nil && s.snapTo != nil && s.snapTo.Key == key {
		s.snapTo = nil
	}
}

// Drag follows the pointer at canvas point (x, y). Moves are
// ignored while snapped to a candidate.
func (pc *PointDragController) Drag(x, y float64) {
	s := pc.session
	if s == nil {
		return
	}
	if s.escaped {
		pc.destroyPreview()
		return
	}
	if s.snapTo != nil {
		return
	}
	pc.setPath(pc.router.Free(s.src.Anchor, Point{x, y}, false))
}

// Release ends the drag and reports whether a map was requested.
func (pc *PointDragController) Release() bool {
	s := pc.session
	if s == nil {
		return false
	}
	pc.session = nil
	if s.preview != nil {
		s.preview.Remove()
	}
	if s.escaped || s.snapTo == nil {
		return false
	}
	pc.log.Debug("map requested", "src", s.src.Key, "dst", s.snapTo.Key)
	if pc.OnCommit != nil {
		pc.OnCommit(s.src.Key, s.snapTo.Key)
	}
	return true
}

// Escape cancels the drag and drops the preview at once.
func (pc *PointDragController) Escape() {
	if pc.session == nil {
		return
	}
	pc.session.escaped = true
	pc.session.snapTo = nil
	pc.destroyPreview()
}

// Abort discards the session.
func (pc *PointDragController) Abort() {
	if pc.session == nil {
		return
	}
	pc.destroyPreview()
	pc.session = nil
}

func (pc *PointDragController) setPath(c Curve) {
	s := pc.session
	if s.preview == nil {
		s.preview = pc.surface.Path(c)
		s.preview.Attr(Attrs{}.
			WithStroke("white").
			WithStrokeWidth(2).
			WithStrokeOpacity(1).
			WithArrowEnd(ArrowBlock))
		return
	}
	s.preview.Attr(Attrs{}.WithPath(c))
}

func (pc *PointDragController) destroyPreview() {
	if s := pc.session; s != nil && s.preview != nil {
		s.preview.Remove()
		s.preview = nil
	}
}
