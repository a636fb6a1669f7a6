// Package surface is an in-memory drawing surface for map views. A Scene
// records paths and text with their attributes, steps animations when the
// host advances time, and exports the result as SVG or PNG.
package surface

import (
	"math"
	"time"

	"github.com/ha1tch/mapview/pkg/mapview"
)

// ElementKind distinguishes the two element types a Scene holds.
type ElementKind int

const (
	KindPath ElementKind = iota
	KindText
)

type animation struct {
	from, to mapview.Attrs
	duration time.Duration
	elapsed  time.Duration
	easing   mapview.Easing
	done     func()
}

// Element is one visual in a Scene.
type Element struct {
	ID   int
	Kind ElementKind
	X, Y float64
	Text string

	scene   *Scene
	attrs   mapview.Attrs
	anim    *animation
	removed bool
}

var _ mapview.Visual = (*Element)(nil)

// Scene holds elements in paint order, back to front.
type Scene struct {
	Width, Height float64

	elements []*Element
	nextID   int
	viewBox  *mapview.Rect
}

var _ mapview.Surface = (*Scene)(nil)

// New creates an empty scene of the given size.
func New(width, height float64) *Scene {
	return &Scene{Width: width, Height: height}
}

func pathDefaults() mapview.Attrs {
	return mapview.Attrs{}.
		WithFill("none").
		WithFillOpacity(1).
		WithStroke("black").
		WithStrokeOpacity(1).
		WithStrokeWidth(1).
		WithOpacity(1)
}

func textDefaults() mapview.Attrs {
	return mapview.Attrs{}.
		WithFill("black").
		WithOpacity(1).
		WithFontSize(10)
}

func (s *Scene) add(e *Element) *Element {
	s.nextID++
	e.ID = s.nextID
	e.scene = s
	s.elements = append(s.elements, e)
	return e
}

// Path adds a path element on top of the scene.
func (s *Scene) Path(c mapview.Curve) mapview.Visual {
	return s.add(&Element{Kind: KindPath, attrs: pathDefaults().WithPath(c)})
}

// Text adds a text element on top of the scene.
func (s *Scene) Text(x, y float64, text string) mapview.Visual {
	return s.add(&Element{Kind: KindText, X: x, Y: y, Text: text, attrs: textDefaults()})
}

// SetViewBox sets the visible region exported by SVG and PNG.
func (s *Scene) SetViewBox(r mapview.Rect) {
	s.viewBox = &r
}

// ViewBox returns the visible region, defaulting to the scene size.
func (s *Scene) ViewBox() mapview.Rect {
	if s.viewBox != nil {
		return *s.viewBox
	}
	return mapview.Rect{Width: s.Width, Height: s.Height}
}

// Len returns the number of live elements.
func (s *Scene) Len() int { return len(s.elements) }

// Elements returns the live elements in paint order.
func (s *Scene) Elements() []*Element {
	out := make([]*Element, len(s.elements))
	copy(out, s.elements)
	return out
}

// Animating reports whether any element has a running animation.
func (s *Scene) Animating() bool {
	for _, e := range s.elements {
		if e.anim != nil {
			return true
		}
	}
	return false
}

// Advance steps every running animation by dt. Completion callbacks run
// after all elements have been stepped; animations they start begin on
// the next call.
func (s *Scene) Advance(dt time.Duration) {
	var done []func()
	for _, e := range s.Elements() {
		a := e.anim
		if a == nil {
			continue
		}
		a.elapsed += dt
		t := 1.0
		if a.duration > 0 {
			t = math.Min(1, float64(a.elapsed)/float64(a.duration))
		}
		if t >= 1 {
			e.attrs = a.from.Merge(a.to)
			e.anim = nil
			if a.done != nil {
				done = append(done, a.done)
			}
			continue
		}
		e.attrs = blend(a.from, a.to, ease(a.easing, t))
	}
	for _, fn := range done {
		fn()
	}
}

// Settle runs animations to completion, including any chained from
// completion callbacks.
func (s *Scene) Settle() {
	for i := 0; i < 100 && s.Animating(); i++ {
		s.Advance(time.Hour)
	}
}

func (s *Scene) remove(e *Element) {
	for i, cand := range s.elements {
		if cand == e {
			s.elements = append(s.elements[:i], s.elements[i+1:]...)
			return
		}
	}
}

// Attr applies a immediately.
func (e *Element) Attr(a mapview.Attrs) {
	e.attrs = e.attrs.Merge(a)
}

// Attrs returns the current attributes.
func (e *Element) Attrs() mapview.Attrs { return e.attrs }

// Removed reports whether the element has been removed from its scene.
func (e *Element) Removed() bool { return e.removed }

// Animating reports whether the element has a running animation.
func (e *Element) Animating() bool { return e.anim != nil }

// Animate replaces any running animation with a transition to a over d.
// A zero duration applies a at once and calls done.
func (e *Element) Animate(a mapview.Attrs, d time.Duration, easing mapview.Easing, done func()) {
	if e.removed {
		return
	}
	e.anim = nil
	if d <= 0 {
		e.Attr(a)
		if done != nil {
			done()
		}
		return
	}
	e.anim = &animation{from: e.attrs, to: a, duration: d, easing: easing, done: done}
}

// Stop cancels the running animation without calling its callback.
func (e *Element) Stop() { e.anim = nil }

func (e *Element) Remove() {
	if e.removed {
		return
	}
	e.removed = true
	e.anim = nil
	e.scene.remove(e)
}

func (e *Element) ToBack() {
	if e.removed {
		return
	}
	e.scene.remove(e)
	e.scene.elements = append([]*Element{e}, e.scene.elements...)
}

func (e *Element) ToFront() {
	if e.removed {
		return
	}
	e.scene.remove(e)
	e.scene.elements = append(e.scene.elements, e)
}

func ease(e mapview.Easing, t float64) float64 {
	if e == mapview.EaseOut {
		return math.Pow(t, 0.48)
	}
	return t
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// blend returns from moved a fraction t towards to. Paths of different
// shape and unparseable colours jump at the end of the animation.
func blend(from, to mapview.Attrs, t float64) mapview.Attrs {
	out := from
	if to.Has(mapview.AttrPath) {
		if c, ok := mapview.Interpolate(from.Path, to.Path, t); ok {
			out.Path = c
		}
	}
	if to.Has(mapview.AttrFill) {
		out.Fill = blendColor(from.Fill, to.Fill, t)
	}
	if to.Has(mapview.AttrStroke) {
		out.Stroke = blendColor(from.Stroke, to.Stroke, t)
	}
	if to.Has(mapview.AttrFillOpacity) {
		out.FillOpacity = lerp(from.FillOpacity, to.FillOpacity, t)
	}
	if to.Has(mapview.AttrStrokeOpacity) {
		out.StrokeOpacity = lerp(from.StrokeOpacity, to.StrokeOpacity, t)
	}
	if to.Has(mapview.AttrStrokeWidth) {
		out.StrokeWidth = lerp(from.StrokeWidth, to.StrokeWidth, t)
	}
	if to.Has(mapview.AttrOpacity) {
		out.Opacity = lerp(from.Opacity, to.Opacity, t)
	}
	if to.Has(mapview.AttrFontSize) {
		out.FontSize = lerp(from.FontSize, to.FontSize, t)
	}
	return out
}
