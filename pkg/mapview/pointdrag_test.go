package mapview

import (
	"log/slog"
	"testing"
)

func newPointFixture() (*PointDragController, *fakeSurface, *[]string) {
	s := newFakeSurface()
	rt := &Router{Pane: Rect{0, 0, 400, 400}}
	pc := NewPointDragController(rt, s, slog.Default())
	var commits []string
	pc.OnCommit = func(src, dst string) { commits = append(commits, src+"->"+dst) }
	return pc, s, &commits
}

func TestPointDragCommit(t *testing.T) {
	pc, s, commits := newPointFixture()
	src := PointEndpoint("synth/freq", Point{50, 50})
	dst := PointEndpoint("fx/cutoff", Point{250, 80})

	pc.Start(src)
	pc.Drag(100, 60)
	if s.Live() != 1 {
		t.Fatalf("expected preview after drag, got %d visuals", s.Live())
	}
	if !pc.Hover(dst) {
		t.Fatal("expected hover to snap")
	}
	if pc.Snapping() != "fx/cutoff" {
		t.Errorf("expected snapping to fx/cutoff, got %q", pc.Snapping())
	}

	snapped := pc.Preview().Attrs().Path
	pc.Drag(300, 300)
	if !ApproxEqual(pc.Preview().Attrs().Path, snapped, 0) {
		t.Error("drag while snapped must not move the preview")
	}

	if !pc.Release() {
		t.Fatal("expected release to request a map")
	}
	if len(*commits) != 1 || (*commits)[0] != "synth/freq->fx/cutoff" {
		t.Errorf("unexpected commits %v", *commits)
	}
	if s.Live() != 0 || pc.Active() {
		t.Error("release should tear down the session and preview")
	}
}

func TestPointDragSelfHoverRejected(t *testing.T) {
	pc, _, commits := newPointFixture()
	src := PointEndpoint("synth/freq", Point{50, 50})
	pc.Start(src)
	if pc.Hover(src) {
		t.Error("hovering the source must not snap")
	}
	if pc.Release() {
		t.Error("release without a candidate must not commit")
	}
	if len(*commits) != 0 {
		t.Errorf("unexpected commits %v", *commits)
	}
}

func TestPointDragReleaseOnEmptyCanvas(t *testing.T) {
	pc, s, commits := newPointFixture()
	pc.Start(PointEndpoint("synth/freq", Point{50, 50}))
	pc.Hover(PointEndpoint("fx/cutoff", Point{250, 80}))
	pc.Unhover("fx/cutoff")
	pc.Drag(200, 200)

	if pc.Release() {
		t.Error("release on empty canvas must not commit")
	}
	if len(*commits) != 0 || s.Live() != 0 {
		t.Errorf("expected no commits and no visuals, got %v and %d", *commits, s.Live())
	}
}

func TestPointDragEscape(t *testing.T) {
	pc, s, commits := newPointFixture()
	pc.Start(PointEndpoint("synth/freq", Point{50, 50}))
	pc.Hover(PointEndpoint("fx/cutoff", Point{250, 80}))
	pc.Escape()

	if s.Live() != 0 {
		t.Error("escape should drop the preview")
	}
	pc.Drag(120, 120)
	if s.Live() != 0 {
		t.Error("drag after escape must not recreate the preview")
	}
	if pc.Hover(PointEndpoint("fx/res", Point{250, 120})) {
		t.Error("hover after escape must not snap")
	}
	if pc.Release() || len(*commits) != 0 {
		t.Error("escaped drag must not commit")
	}
}
