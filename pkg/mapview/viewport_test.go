package mapview

import (
	"math"
	"testing"
	"time"
)

func newTestViewport(tables *Tables) (*Viewport, *fakeSurface, *fakeStatus, *[]time.Duration) {
	s := newFakeSurface()
	st := &fakeStatus{}
	var draws []time.Duration
	vp := NewViewport(tables, s, st, func(d time.Duration) { draws = append(draws, d) })
	vp.Resize(Rect{50, 20, 400, 400}, Rect{0, 0, 400, 400})
	return vp, s, st, &draws
}

func TestCanvasZoomRoundTrip(t *testing.T) {
	vp, _, _, _ := newTestViewport(nil)
	vp.CanvasPan(100, 100, 30, -12)
	startZoom, startOffset := vp.Zoom(), vp.Offset()

	if !vp.CanvasZoom(250, 170, 40) {
		t.Fatal("expected zoom to change")
	}
	if vp.Zoom() == startZoom {
		t.Fatal("zoom should have changed")
	}
	vp.CanvasZoom(250, 170, -40)

	if math.Abs(vp.Zoom()-startZoom) > 1e-9 {
		t.Errorf("expected zoom %v restored, got %v", startZoom, vp.Zoom())
	}
	off := vp.Offset()
	if math.Abs(off.X-startOffset.X) > 1e-9 || math.Abs(off.Y-startOffset.Y) > 1e-9 {
		t.Errorf("expected offset %v restored, got %v", startOffset, off)
	}
}

func TestCanvasZoomAboutCursor(t *testing.T) {
	vp, s, st, _ := newTestViewport(nil)
	vp.CanvasZoom(150, 120, 50)

	// frame-relative cursor (100, 100); zoom 1 -> 1.5
	if vp.Zoom() != 1.5 {
		t.Fatalf("expected zoom 1.5, got %v", vp.Zoom())
	}
	if off := vp.Offset(); off != (Point{-50, -50}) {
		t.Errorf("expected offset (-50, -50), got %v", off)
	}
	if s.viewBox != (Rect{-50, -50, 600, 600}) {
		t.Errorf("unexpected view box %v", s.viewBox)
	}
	if st.text != "zoom: 66.67%" {
		t.Errorf("unexpected status %q", st.text)
	}
	if st.x != 100-200+70 || st.y != 150 {
		t.Errorf("unexpected status position (%v, %v)", st.x, st.y)
	}
}

func TestCanvasZoomClamped(t *testing.T) {
	vp, _, st, _ := newTestViewport(nil)
	vp.CanvasZoom(0, 0, 1e6)
	if vp.Zoom() != DefaultMaxZoom {
		t.Errorf("expected zoom clamped to %v, got %v", DefaultMaxZoom, vp.Zoom())
	}
	st.text = ""
	if vp.CanvasZoom(0, 0, 10) {
		t.Error("zoom at the limit should be a no-op")
	}
	if st.text != "" {
		t.Error("no-op zoom should not publish status")
	}

	vp.CanvasZoom(0, 0, -1e6)
	if vp.Zoom() != DefaultMinZoom {
		t.Errorf("expected zoom clamped to %v, got %v", DefaultMinZoom, vp.Zoom())
	}
}

func TestCanvasPan(t *testing.T) {
	vp, s, st, _ := newTestViewport(nil)
	vp.CanvasZoom(50, 20, 100) // zoom 2 about the frame origin
	vp.CanvasPan(150, 120, 10, 5)

	if off := vp.Offset(); off != (Point{20, 10}) {
		t.Errorf("expected offset (20, 10), got %v", off)
	}
	if s.viewBox.Left != 20 || s.viewBox.Width != 800 {
		t.Errorf("unexpected view box %v", s.viewBox)
	}
	if st.text != "pan: [20.00, 10.00]" {
		t.Errorf("unexpected status %q", st.text)
	}

	if c := vp.ToCanvas(Point{100, 50}); c != (Point{220, 110}) {
		t.Errorf("expected canvas point (220, 110), got %v", c)
	}
	vb := vp.ViewBox()
	if c := vp.ToCanvas(Point{vp.pane.Width, vp.pane.Height}); c != (Point{vb.Right(), vb.Bottom()}) {
		t.Errorf("frame corner should map to the view box corner, got %v in %v", c, vb)
	}

	vp.Reset()
	if vp.Zoom() != 1 || vp.Offset() != (Point{}) {
		t.Error("reset should restore zoom 1 and zero offset")
	}
}

func TestTablePanFirstClaimWins(t *testing.T) {
	tables, left, right := listTables()
	vp, _, _, draws := newTestViewport(tables)

	// frame-relative (20, 30) is inside the left table only
	if !vp.TablePan(70, 50, 0, 5) {
		t.Fatal("expected pan to be handled")
	}
	if left.pans != 1 || right.pans != 0 {
		t.Errorf("expected only the left table to pan, got %d and %d", left.pans, right.pans)
	}
	if len(*draws) != 1 || (*draws)[0] != 0 {
		t.Errorf("expected one immediate redraw, got %v", *draws)
	}

	// (200, 30) is in the pane, so the pan is broadcast
	vp.TablePan(250, 50, 0, 5)
	if left.pans != 2 || right.pans != 1 {
		t.Errorf("expected broadcast to both tables, got %d and %d", left.pans, right.pans)
	}
}

func TestTableZoomExclusiveThenBroadcast(t *testing.T) {
	tables, left, right := listTables()
	vp, _, _, draws := newTestViewport(tables)

	vp.TableZoom(400, 50, 10) // frame (350, 30): right table
	if left.zooms != 0 || right.zooms != 1 {
		t.Errorf("expected right table to claim zoom, got %d and %d", left.zooms, right.zooms)
	}

	vp.TableZoom(250, 50, 10) // pane
	if left.zooms != 1 || right.zooms != 2 {
		t.Errorf("expected broadcast zoom, got %d and %d", left.zooms, right.zooms)
	}
	if len(*draws) != 2 {
		t.Errorf("expected two redraws, got %d", len(*draws))
	}
}
