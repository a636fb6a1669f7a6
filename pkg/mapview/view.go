// Package mapview is the interactive core of the signal map editor: it
// lays out devices and signals, routes map curves between them and turns
// pointer gestures into new maps.
//
// A View owns one drawing surface and up to two tables. All methods must be
// called from a single event loop.
package mapview

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ha1tch/mapview/pkg/mapper"
)

// Kind selects how signals are presented.
type Kind string

const (
	KindList   Kind = "list"   // facing left and right tables
	KindGrid   Kind = "grid"   // left and top tables
	KindCanvas Kind = "canvas" // free points, no tables
)

// ParseKind converts a name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindList, KindGrid, KindCanvas:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

var ErrUnknownKind = errors.New("unknown view kind")

const (
	collapseDuration = 200 * time.Millisecond
	filterDuration   = 1000 * time.Millisecond
	// pickRadius is how close the pointer must be to a free signal.
	pickRadius = 10
)

// Options tunes a View. Zero values select defaults.
type Options struct {
	Logger        *slog.Logger
	SnapTolerance float64
	MinZoom       float64
	MaxZoom       float64
	ZoomStep      float64
	Status        StatusSink
	// OnCommit is told about every map drawn by the user. In canvas mode
	// it is the only outcome of a drag; the host decides whether to add
	// the map.
	OnCommit func(src, dst string)
	// AnimationDuration is used when the model changes.
	AnimationDuration time.Duration
}

// View presents a model on a surface and handles the gestures on it.
type View struct {
	kind    Kind
	frame   Rect
	tables  *Tables
	surface Surface
	model   *mapper.Model
	log     *slog.Logger
	opts    Options

	indexer  *Indexer
	router   *Router
	render   *RenderSync
	viewport *Viewport
	drag     *DragController
	points   *PointDragController

	layout  *Layout
	detach  func()
	hovered string
	panning bool
	last    Point
}

// New creates a view and draws it once. frame is the view's rectangle in
// screen coordinates.
func New(kind Kind, frame Rect, tables *Tables, s Surface, m *mapper.Model, opts Options) (*View, error) {
	switch kind {
	case KindList, KindGrid:
		if tables.Len() == 0 {
			return nil, fmt.Errorf("%s view: no tables", kind)
		}
		want := SnapLeftRight
		if kind == KindGrid {
			want = SnapCross
		}
		if tables.Snap != want {
			return nil, fmt.Errorf("%s view: tables have the wrong arrangement", kind)
		}
	case KindCanvas:
		tables = nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.SnapTolerance <= 0 {
		opts.SnapTolerance = DefaultSnapTolerance
	}

	v := &View{
		kind:    kind,
		frame:   frame,
		tables:  tables,
		surface: s,
		model:   m,
		log:     opts.Logger.With("view", string(kind)),
		opts:    opts,
	}
	v.indexer = NewIndexer(tables)
	v.router = &Router{Tables: tables}
	v.render = NewRenderSync(s, v.router, kind == KindCanvas, v.log)
	v.viewport = NewViewport(tables, s, opts.Status, v.Draw)
	if opts.MinZoom > 0 {
		v.viewport.MinZoom = opts.MinZoom
	}
	if opts.MaxZoom > 0 {
		v.viewport.MaxZoom = opts.MaxZoom
	}
	if opts.ZoomStep > 0 {
		v.viewport.ZoomStep = opts.ZoomStep
	}

	v.drag = NewDragController(v.router, s, m, v.log)
	v.drag.Tolerance = opts.SnapTolerance
	v.drag.OnCommit = opts.OnCommit
	v.drag.OnCollapse = func(*mapper.Device) {
		v.Update()
		v.Draw(collapseDuration)
	}
	v.points = NewPointDragController(v.router, s, v.log)
	v.points.OnCommit = opts.OnCommit

	v.detach = m.OnChange(func(c mapper.Change) {
		v.log.Debug("model changed", "change", c.Kind, "key", c.Key)
		v.Update()
		v.Draw(v.opts.AnimationDuration)
	})

	v.Resize(frame)
	return v, nil
}

// Type returns the view kind.
func (v *View) Type() Kind { return v.kind }

// Layout returns the layout of the last update.
func (v *View) Layout() *Layout { return v.layout }

// Router returns the view's path router.
func (v *View) Router() *Router { return v.router }

// Viewport returns the view's pan and zoom state.
func (v *View) Viewport() *Viewport { return v.viewport }

// Render returns the view's visual bookkeeping.
func (v *View) Render() *RenderSync { return v.render }

// Drag returns the table drag controller.
func (v *View) Drag() *DragController { return v.drag }

// PointDrag returns the canvas drag controller.
func (v *View) PointDrag() *PointDragController { return v.points }

// Frame returns the view rectangle in screen coordinates.
func (v *View) Frame() Rect { return v.frame }

// Resize moves the view to frame and redraws immediately.
func (v *View) Resize(frame Rect) {
	v.frame = frame
	v.Update()
	v.Draw(0)
}

// Update recomputes visibility and positions and syncs visuals.
func (v *View) Update() {
	local := Rect{0, 0, v.frame.Width, v.frame.Height}
	v.layout = v.indexer.Index(v.model, local)
	v.router.Pane = v.pane(local)
	v.viewport.Resize(v.frame, v.router.Pane)
	v.render.Sync(v.model, v.layout)
}

// pane is the area between the tables where maps are drawn.
func (v *View) pane(local Rect) Rect {
	switch v.kind {
	case KindList:
		left, right := local.Left, local.Right()
		if t := v.tables.Get(RoleLeft); t != nil {
			left = t.Bounds().Right()
		}
		if t := v.tables.Get(RoleRight); t != nil {
			right = t.Bounds().Left
		}
		return Rect{left, local.Top, right - left, local.Height}
	case KindGrid:
		left, top := local.Left, local.Top
		if t := v.tables.Get(RoleLeft); t != nil {
			left = t.Bounds().Right()
		}
		if t := v.tables.Get(RoleTop); t != nil {
			top = t.Bounds().Bottom()
		}
		return Rect{left, top, local.Right() - left, local.Bottom() - top}
	}
	return local
}

// Draw animates the view to its current state over d.
func (v *View) Draw(d time.Duration) {
	v.render.Draw(d)
}

// Cleanup detaches from the model and removes every visual the view owns.
func (v *View) Cleanup() {
	if v.detach != nil {
		v.detach()
		v.detach = nil
	}
	v.drag.Abort()
	v.points.Abort()
	v.render.Cleanup()
	v.tables.ClearHighlights()
	v.hovered = ""
	v.panning = false
}

// FilterSignals shows only signals of dir whose names match text.
func (v *View) FilterSignals(dir mapper.Direction, text string) error {
	if v.tables.Len() > 0 {
		updated := false
		v.tables.Each(func(_ Role, t Table) bool {
			if t.FilterByName(text, dir) {
				updated = true
			}
			return true
		})
		if updated {
			v.Update()
			v.Draw(filterDuration)
		}
		return nil
	}
	if err := v.indexer.SetFilter(dir, text); err != nil {
		return err
	}
	v.Update()
	v.Draw(filterDuration)
	return nil
}

// Escape cancels any drag in progress.
func (v *View) Escape() {
	v.drag.Escape()
	v.points.Escape()
}

// ToggleDevice collapses or expands a device on the open canvas.
func (v *View) ToggleDevice(key string) bool {
	dev, ok := v.model.Devices.Find(key)
	if !ok {
		return false
	}
	dev.Collapsed ^= canvasCollapseMask
	v.Update()
	v.Draw(collapseDuration)
	return true
}

func (v *View) local(x, y float64) Point {
	return Point{x - v.frame.Left, y - v.frame.Top}
}

// SignalAt returns the free signal nearest to p, in frame coordinates.
// The returned position is on the canvas.
func (v *View) SignalAt(p Point) (key string, at Point, ok bool) {
	p = v.viewport.ToCanvas(p)
	best := pickRadius * v.viewport.Zoom()
	v.model.Devices.Each(func(dev *mapper.Device) bool {
		dev.Signals.Each(func(sig *mapper.Signal) bool {
			pl, found := v.layout.Signal(sig.Key)
			if !found || pl.Position == nil {
				return true
			}
			if d := pl.Position.Dist(p); d <= best {
				best, key, at, ok = d, sig.Key, *pl.Position, true
			}
			return true
		})
		return true
	})
	return key, at, ok
}

// PointerDown handles a button press at screen position (x, y).
func (v *View) PointerDown(x, y float64) {
	p := v.local(x, y)
	v.last = Point{x, y}
	if v.kind != KindCanvas {
		if role, row := v.tables.Hit(p); row != nil {
			v.drag.Press(role, row)
		}
		return
	}
	if key, at, ok := v.SignalAt(p); ok {
		v.points.Start(PointEndpoint(key, at))
		return
	}
	v.panning = true
}

// PointerMove handles pointer motion to screen position (x, y).
func (v *View) PointerMove(x, y float64) {
	p := v.local(x, y)
	if v.kind != KindCanvas {
		if s := v.drag.Session(); s != nil && s.State == DragPressed &&
			v.router.Pane.Contains(p) && !v.tables.Covers(p) {
			v.drag.Enter()
		}
		v.drag.Move(p.X, p.Y)
		return
	}

	v.hover(p)
	switch {
	case v.points.Active():
		c := v.viewport.ToCanvas(p)
		v.points.Drag(c.X, c.Y)
	case v.panning:
		v.viewport.CanvasPan(x, y, v.last.X-x, v.last.Y-y)
	}
	v.last = Point{x, y}
}

func (v *View) hover(p Point) {
	key, at, _ := v.SignalAt(p)
	if key == v.hovered {
		return
	}
	if v.hovered != "" {
		v.render.HideLabel(v.hovered)
		v.points.Unhover(v.hovered)
	}
	v.hovered = key
	if key != "" {
		v.render.ShowLabel(key, at)
		v.points.Hover(PointEndpoint(key, at))
	}
}

// PointerUp handles a button release at screen position (x, y).
func (v *View) PointerUp(x, y float64) {
	v.panning = false
	if v.kind != KindCanvas {
		v.drag.Release()
		return
	}
	v.points.Release()
}

// Wheel handles a scroll of (dx, dy) at screen position (x, y). With zoom
// set, dy zooms instead of panning.
func (v *View) Wheel(x, y, dx, dy float64, zoom bool) {
	if v.kind != KindCanvas {
		if zoom {
			v.viewport.TableZoom(x, y, dy)
		} else {
			v.viewport.TablePan(x, y, dx, dy)
		}
		return
	}
	if zoom {
		v.viewport.CanvasZoom(x, y, dy)
	} else {
		v.viewport.CanvasPan(x, y, dx, dy)
	}
}
