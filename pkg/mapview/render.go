package mapview

import (
	"log/slog"
	"sort"
	"time"

	"github.com/ha1tch/mapview/pkg/mapper"
)

const (
	labelFade     = 1000 * time.Millisecond
	labelFontSize = 16
	outputRadius  = 7
	inputRadius   = 10
)

var labelOffset = Point{0, -20}

type visualEntry struct {
	v     Visual
	label Visual
	fresh bool
}

func (e *visualEntry) remove() {
	e.v.Remove()
	if e.label != nil {
		e.label.Remove()
		e.label = nil
	}
}

// RenderSync keeps one visual per visible entity in step with the model
// and the current layout. Visuals are held in side tables keyed by entity
// key; model entities never reference them.
type RenderSync struct {
	surface Surface
	router  *Router
	log     *slog.Logger
	// free signal points are drawn only on the open canvas
	canvas bool

	devices map[string]*visualEntry
	signals map[string]*visualEntry
	maps    map[string]*visualEntry

	model  *mapper.Model
	layout *Layout
}

// NewRenderSync creates an empty render state.
func NewRenderSync(s Surface, rt *Router, canvas bool, log *slog.Logger) *RenderSync {
	return &RenderSync{
		surface: s,
		router:  rt,
		log:     log,
		canvas:  canvas,
		devices: make(map[string]*visualEntry),
		signals: make(map[string]*visualEntry),
		maps:    make(map[string]*visualEntry),
	}
}

// Sync creates visuals for newly visible entities and removes those of
// hidden or deleted ones.
func (rs *RenderSync) Sync(m *mapper.Model, l *Layout) {
	rs.model, rs.layout = m, l
	keepDev := make(map[string]bool)
	keepSig := make(map[string]bool)
	keepMap := make(map[string]bool)

	m.Devices.Each(func(dev *mapper.Device) bool {
		if rs.canvas {
			dev.Signals.Each(func(sig *mapper.Signal) bool {
				if _, ok := l.Signal(sig.Key); ok {
					keepSig[sig.Key] = true
					rs.ensureSignal(sig)
				}
				return true
			})
			return true
		}
		if p, ok := l.Device(dev.Key); ok && len(p.TableIndices) > 0 {
			keepDev[dev.Key] = true
			rs.ensureDevice(dev)
		}
		return true
	})

	m.Maps.Each(func(mp *mapper.Map) bool {
		_, srcOK := l.Signal(mp.Src.Key)
		_, dstOK := l.Signal(mp.Dst.Key)
		if !srcOK || !dstOK {
			return true
		}
		keepMap[mp.Key] = true
		if _, ok := rs.maps[mp.Key]; !ok {
			v := rs.surface.Path(nil)
			v.Attr(Attrs{}.
				WithDash(dashFor(mp)).
				WithStroke(strokeFor(mp)).
				WithFillOpacity(0).
				WithStrokeWidth(2))
			rs.maps[mp.Key] = &visualEntry{v: v, fresh: true}
		}
		return true
	})

	sweep(rs.devices, keepDev)
	sweep(rs.signals, keepSig)
	sweep(rs.maps, keepMap)
}

func sweep(entries map[string]*visualEntry, keep map[string]bool) {
	for key, e := range entries {
		if !keep[key] {
			e.remove()
			delete(entries, key)
		}
	}
}

func (rs *RenderSync) ensureDevice(dev *mapper.Device) {
	if _, ok := rs.devices[dev.Key]; ok {
		return
	}
	pane := rs.router.Pane
	p := Point{pane.Left + 50, pane.Height - 50}
	v := rs.surface.Path(Curve{MoveTo(p), LineTo(p)})
	v.Attr(Attrs{}.
		WithFill(dev.Color).
		WithStroke(dev.Color).
		WithFillOpacity(0).
		WithStrokeOpacity(0).
		WithLineCap("round"))
	rs.devices[dev.Key] = &visualEntry{v: v, fresh: true}
}

func (rs *RenderSync) ensureSignal(sig *mapper.Signal) {
	if _, ok := rs.signals[sig.Key]; ok {
		return
	}
	v := rs.surface.Path(CirclePath(0, rs.router.Pane.Height, 0))
	v.Attr(Attrs{}.WithFillOpacity(0).WithStrokeOpacity(0))
	rs.signals[sig.Key] = &visualEntry{v: v, fresh: true}
}

func strokeFor(mp *mapper.Map) string {
	if mp.Selected {
		return "red"
	}
	return "white"
}

func dashFor(mp *mapper.Map) string {
	if mp.Muted {
		return "-"
	}
	return ""
}

// Draw animates every owned visual to its current layout over d.
func (rs *RenderSync) Draw(d time.Duration) {
	if rs.model == nil {
		return
	}
	rs.drawDevices(d)
	rs.drawSignals(d)
	rs.drawMaps(d)
}

func (rs *RenderSync) drawDevices(d time.Duration) {
	rs.model.Devices.Each(func(dev *mapper.Device) bool {
		e, ok := rs.devices[dev.Key]
		if !ok {
			return true
		}
		p, _ := rs.layout.Device(dev.Key)
		outline := rs.router.DeviceOutline(p)
		if outline == nil {
			return true
		}
		e.v.Stop()
		e.v.ToBack()
		e.v.Animate(Attrs{}.
			WithPath(outline).
			WithFill(dev.Color).
			WithFillOpacity(0.5).
			WithStrokeOpacity(0), d, EaseOut, nil)
		return true
	})
}

func (rs *RenderSync) drawSignals(d time.Duration) {
	rs.model.Devices.Each(func(dev *mapper.Device) bool {
		dev.Signals.Each(func(sig *mapper.Signal) bool {
			e, ok := rs.signals[sig.Key]
			if !ok {
				return true
			}
			p, _ := rs.layout.Signal(sig.Key)
			if p == nil || p.Position == nil {
				return true
			}
			output := sig.Direction == mapper.DirOutput
			r, fill, strokeOpacity := float64(inputRadius), dev.Color, 0.0
			if output {
				r, fill, strokeOpacity = outputRadius, "black", 1
			}
			e.v.Stop()
			e.v.Animate(Attrs{}.
				WithPath(CirclePath(p.Position.X, p.Position.Y, r)).
				WithFill(fill).
				WithFillOpacity(1).
				WithStroke(dev.Color).
				WithStrokeWidth(6).
				WithStrokeOpacity(strokeOpacity), d, EaseOut, nil)
			return true
		})
		return true
	})
}

func (rs *RenderSync) drawMaps(d time.Duration) {
	rs.model.Maps.Each(func(mp *mapper.Map) bool {
		e, ok := rs.maps[mp.Key]
		if !ok {
			return true
		}
		v := e.v
		if mp.Hidden {
			v.Animate(Attrs{}.WithStrokeOpacity(0), d, EaseOut, nil)
			return true
		}
		v.Stop()
		path, err := rs.router.RouteMap(mp, rs.layout)
		if err != nil {
			rs.log.Warn("skipping map", "map", mp.Key, "error", err)
			return true
		}
		stroke, dash := strokeFor(mp), dashFor(mp)

		if !e.fresh {
			v.Animate(Attrs{}.
				WithPath(path).
				WithStrokeOpacity(1).
				WithFillOpacity(0).
				WithStrokeWidth(2).
				WithStroke(stroke), d, EaseOut, func() {
				v.Attr(Attrs{}.WithArrowEnd(ArrowBlock).WithDash(dash))
			})
			return true
		}

		e.fresh = false
		if mp.Status == mapper.StatusStaged {
			v.Attr(Attrs{}.
				WithPath(path).
				WithStrokeOpacity(0.5).
				WithStroke(stroke).
				WithArrowEnd(ArrowBlock).
				WithDash(dash))
			return true
		}
		// Grow along the route, then add the arrowhead.
		half := path.Subpath(0, path.Length()*0.5)
		v.Animate(Attrs{}.WithPath(half).WithStrokeOpacity(1), d/2, EaseOut, func() {
			v.Animate(Attrs{}.WithPath(path), d/2, EaseOut, func() {
				v.Attr(Attrs{}.WithArrowEnd(ArrowBlock))
			})
		})
		return true
	})
}

// ShowLabel shows the key of a free signal beside it.
func (rs *RenderSync) ShowLabel(key string, at Point) {
	e, ok := rs.signals[key]
	if !ok {
		return
	}
	pos := at.Add(labelOffset)
	if e.label == nil {
		e.label = rs.surface.Text(pos.X, pos.Y, key)
	} else {
		e.label.Stop()
	}
	e.label.Attr(Attrs{}.
		WithFill("white").
		WithOpacity(1).
		WithFontSize(labelFontSize))
	e.label.ToFront()
}

// HideLabel fades a signal's label out and then removes it.
func (rs *RenderSync) HideLabel(key string) {
	e, ok := rs.signals[key]
	if !ok || e.label == nil {
		return
	}
	label := e.label
	label.Stop()
	label.Animate(Attrs{}.WithOpacity(0), labelFade, EaseOut, func() {
		label.Remove()
		if e.label == label {
			e.label = nil
		}
	})
}

// Cleanup removes every owned visual.
func (rs *RenderSync) Cleanup() {
	for _, entries := range []map[string]*visualEntry{rs.devices, rs.signals, rs.maps} {
		for key, e := range entries {
			e.remove()
			delete(entries, key)
		}
	}
}

// Keys returns the sorted keys of entities that currently own a visual,
// grouped by kind. Intended for diagnostics.
func (rs *RenderSync) Keys() (devices, signals, maps []string) {
	return sortedKeys(rs.devices), sortedKeys(rs.signals), sortedKeys(rs.maps)
}

// VisualCount returns the number of owned visuals, labels included.
func (rs *RenderSync) VisualCount() int {
	n := 0
	for _, entries := range []map[string]*visualEntry{rs.devices, rs.signals, rs.maps} {
		for _, e := range entries {
			n++
			if e.label != nil {
				n++
			}
		}
	}
	return n
}

func sortedKeys(m map[string]*visualEntry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
