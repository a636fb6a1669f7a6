package surface

import (
	"math"
	"testing"
	"time"

	"github.com/ha1tch/mapview/pkg/mapview"
)

func line(x1, y1, x2, y2 float64) mapview.Curve {
	return mapview.Curve{
		mapview.MoveTo(mapview.Point{X: x1, Y: y1}),
		mapview.LineTo(mapview.Point{X: x2, Y: y2}),
	}
}

func TestPathDefaults(t *testing.T) {
	s := New(100, 100)
	e := s.Path(line(0, 0, 10, 10)).(*Element)
	a := e.Attrs()
	if a.Fill != "none" || a.Stroke != "black" || a.StrokeWidth != 1 || a.Opacity != 1 {
		t.Errorf("Unexpected defaults %+v", a)
	}
	if e.ID != 1 || e.Kind != KindPath {
		t.Errorf("Unexpected element %d kind %d", e.ID, e.Kind)
	}
}

func TestAnimateLinear(t *testing.T) {
	s := New(100, 100)
	v := s.Path(line(0, 0, 10, 0))
	calls := 0
	v.Animate(mapview.Attrs{}.
		WithStrokeOpacity(0).
		WithPath(line(0, 10, 20, 10)), time.Second, mapview.EaseLinear, func() { calls++ })

	s.Advance(500 * time.Millisecond)
	a := v.Attrs()
	if math.Abs(a.StrokeOpacity-0.5) > 1e-9 {
		t.Errorf("Expected stroke opacity 0.5, got %v", a.StrokeOpacity)
	}
	if end := a.Path.End(); end != (mapview.Point{X: 15, Y: 5}) {
		t.Errorf("Expected path end (15, 5), got %v", end)
	}
	if calls != 0 {
		t.Error("Callback ran before the animation finished")
	}

	s.Advance(600 * time.Millisecond)
	if v.Attrs().StrokeOpacity != 0 || calls != 1 {
		t.Errorf("Expected final opacity 0 and one callback, got %v and %d", v.Attrs().StrokeOpacity, calls)
	}
	if s.Animating() {
		t.Error("Scene should be idle")
	}
}

func TestAnimateEaseOut(t *testing.T) {
	s := New(100, 100)
	v := s.Path(nil)
	v.Attr(mapview.Attrs{}.WithOpacity(0))
	v.Animate(mapview.Attrs{}.WithOpacity(1), time.Second, mapview.EaseOut, nil)
	s.Advance(250 * time.Millisecond)
	if got, want := v.Attrs().Opacity, math.Pow(0.25, 0.48); math.Abs(got-want) > 1e-9 {
		t.Errorf("Expected eased opacity %v, got %v", want, got)
	}
}

func TestAnimateZeroDuration(t *testing.T) {
	s := New(100, 100)
	v := s.Path(nil)
	done := false
	v.Animate(mapview.Attrs{}.WithStroke("red"), 0, mapview.EaseOut, func() { done = true })
	if v.Attrs().Stroke != "red" || !done {
		t.Error("Zero duration should apply at once and call back")
	}
}

func TestStopSkipsCallback(t *testing.T) {
	s := New(100, 100)
	v := s.Path(nil)
	called := false
	v.Animate(mapview.Attrs{}.WithStrokeWidth(5), time.Second, mapview.EaseLinear, func() { called = true })
	v.Stop()
	s.Settle()
	if called {
		t.Error("Stopped animation should not call back")
	}
	if v.Attrs().StrokeWidth != 1 {
		t.Errorf("Stopped animation should leave attrs, got width %v", v.Attrs().StrokeWidth)
	}
}

func TestSettleRunsChains(t *testing.T) {
	s := New(100, 100)
	v := s.Path(nil)
	steps := 0
	v.Animate(mapview.Attrs{}.WithStrokeWidth(2), time.Second, mapview.EaseOut, func() {
		steps++
		v.Animate(mapview.Attrs{}.WithStrokeWidth(4), time.Second, mapview.EaseOut, func() {
			steps++
			v.Remove()
		})
	})
	s.Settle()
	if steps != 2 {
		t.Errorf("Expected both steps to run, got %d", steps)
	}
	if s.Len() != 0 {
		t.Errorf("Expected element removed, got %d", s.Len())
	}
}

func TestColorBlend(t *testing.T) {
	s := New(100, 100)
	v := s.Path(nil)
	v.Attr(mapview.Attrs{}.WithFill("#000000"))
	v.Animate(mapview.Attrs{}.WithFill("white"), time.Second, mapview.EaseLinear, nil)
	s.Advance(500 * time.Millisecond)
	mid := v.Attrs().Fill
	if mid == "#000000" || mid == "#ffffff" {
		t.Errorf("Expected an intermediate colour, got %s", mid)
	}
	s.Settle()
	if v.Attrs().Fill != "white" {
		t.Errorf("Expected final fill white, got %s", v.Attrs().Fill)
	}
}

func TestPaintOrder(t *testing.T) {
	s := New(100, 100)
	a := s.Path(nil).(*Element)
	b := s.Path(nil).(*Element)
	c := s.Text(0, 0, "c").(*Element)

	a.ToFront()
	c.ToBack()
	got := s.Elements()
	if got[0] != c || got[1] != b || got[2] != a {
		t.Errorf("Unexpected order %d %d %d", got[0].ID, got[1].ID, got[2].ID)
	}

	b.Remove()
	b.Remove()
	b.ToFront()
	if s.Len() != 2 || !b.Removed() {
		t.Error("Removed element should stay out of the scene")
	}
	b.Animate(mapview.Attrs{}.WithOpacity(0), time.Second, mapview.EaseLinear, nil)
	if b.Animating() {
		t.Error("Removed element should not animate")
	}
}

func TestViewBoxDefault(t *testing.T) {
	s := New(320, 200)
	if vb := s.ViewBox(); vb != (mapview.Rect{Width: 320, Height: 200}) {
		t.Errorf("Unexpected default view box %v", vb)
	}
	s.SetViewBox(mapview.Rect{Left: -10, Top: 5, Width: 640, Height: 400})
	if vb := s.ViewBox(); vb.Left != -10 || vb.Width != 640 {
		t.Errorf("Unexpected view box %v", vb)
	}
}
