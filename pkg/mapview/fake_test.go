package mapview

import (
	"strings"
	"time"

	"github.com/ha1tch/mapview/pkg/mapper"
)

// fakeTable is a Table with a fixed set of rows.
type fakeTable struct {
	bounds      Rect
	rows        []Row
	highlighted map[string]bool
	pans        int
	zooms       int
	filters     []string
}

// newFakeTable lays out ids as 20 unit rows down a vertical strip. vx is
// +1 for a left table and -1 for a right table.
func newFakeTable(left, width, vx float64, ids ...string) *fakeTable {
	ft := &fakeTable{
		bounds:      Rect{left, 0, width, 400},
		highlighted: make(map[string]bool),
	}
	for i, id := range ids {
		top := float64(i) * 20
		x := left + width
		if vx < 0 {
			x = left
		}
		ft.rows = append(ft.rows, Row{
			ID: id, Index: i, Device: !strings.Contains(id, "/"),
			X: x, Y: top + 10, VX: vx,
			Left: left, Top: top, Width: width, Height: 20,
		})
	}
	return ft
}

// newFakeTopTable lays out ids as columns along the top edge.
func newFakeTopTable(left, height float64, ids ...string) *fakeTable {
	ft := &fakeTable{
		bounds:      Rect{left, 0, 400, height},
		highlighted: make(map[string]bool),
	}
	for i, id := range ids {
		l := left + float64(i)*20
		ft.rows = append(ft.rows, Row{
			ID: id, Index: i, Device: !strings.Contains(id, "/"),
			X: l + 10, Y: height, VY: 1,
			Left: l, Top: 0, Width: 20, Height: height,
		})
	}
	return ft
}

func (ft *fakeTable) Update(*mapper.Model, float64) {}

func (ft *fakeTable) Bounds() Rect { return ft.bounds }

func (ft *fakeTable) RowFromName(key string, dir mapper.Direction) *Row {
	for i := range ft.rows {
		if ft.rows[i].ID == key && ft.rows[i].Device == (dir == mapper.DirAny) {
			r := ft.rows[i]
			return &r
		}
	}
	return nil
}

func (ft *fakeTable) RowFromIndex(i int) *Row {
	if i < 0 || i >= len(ft.rows) {
		return nil
	}
	r := ft.rows[i]
	return &r
}

func (ft *fakeTable) RowFromPosition(x, y, tol float64) *Row {
	for i := range ft.rows {
		r := ft.rows[i]
		if r.Rect().Expand(r.Width*tol, r.Height*tol).Contains(Point{x, y}) {
			return &r
		}
	}
	return nil
}

func (ft *fakeTable) HighlightRow(row *Row, clearAll bool) {
	if clearAll {
		ft.highlighted = make(map[string]bool)
	}
	if row != nil {
		ft.highlighted[row.ID] = true
	}
}

func (ft *fakeTable) Pan(dx, dy float64, at *Point) bool {
	if at != nil && !ft.bounds.Contains(*at) {
		return false
	}
	ft.pans++
	return true
}

func (ft *fakeTable) Zoom(delta, x, y float64, exclusive bool) (bool, bool) {
	if exclusive && !ft.bounds.Contains(Point{x, y}) {
		return false, false
	}
	ft.zooms++
	return true, true
}

func (ft *fakeTable) FilterByName(text string, dir mapper.Direction) bool {
	ft.filters = append(ft.filters, string(dir)+":"+text)
	return true
}

// fakeSurface applies animations immediately.
type fakeSurface struct {
	live    map[*fakeVisual]bool
	viewBox Rect
	created int
}

type fakeVisual struct {
	s       *fakeSurface
	attrs   Attrs
	text    string
	removed bool
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{live: make(map[*fakeVisual]bool)}
}

func (fs *fakeSurface) add(v *fakeVisual) Visual {
	fs.created++
	fs.live[v] = true
	return v
}

func (fs *fakeSurface) Path(c Curve) Visual {
	return fs.add(&fakeVisual{s: fs, attrs: Attrs{}.WithPath(c)})
}

func (fs *fakeSurface) Text(x, y float64, s string) Visual {
	return fs.add(&fakeVisual{s: fs, text: s})
}

func (fs *fakeSurface) SetViewBox(r Rect) { fs.viewBox = r }

func (fs *fakeSurface) Live() int { return len(fs.live) }

func (fv *fakeVisual) Attr(a Attrs) { fv.attrs = fv.attrs.Merge(a) }
func (fv *fakeVisual) Attrs() Attrs { return fv.attrs }
func (fv *fakeVisual) Stop() {}
func (fv *fakeVisual) ToBack() {}
func (fv *fakeVisual) ToFront() {}
func (fv *fakeVisual) Remove() {
	fv.removed = true
	delete(fv.s.live, fv)
}

func (fv *fakeVisual) Animate(a Attrs, d time.Duration, e Easing, done func()) {
	fv.Attr(a)
	if done != nil {
		done()
	}
}

type fakeStatus struct {
	text string
	x, y float64
}

func (fs *fakeStatus) SetStatus(text string, x, y float64) {
	fs.text, fs.x, fs.y = text, x, y
}

// testModel has a source device with two outputs and a sink with two
// inputs.
func testModel() *mapper.Model {
	m := mapper.New()
	src := m.AddDevice("synth", "#e6194b")
	src.AddSignal("freq", mapper.DirOutput)
	src.AddSignal("gain", mapper.DirOutput)
	dst := m.AddDevice("fx", "#3cb44b")
	dst.AddSignal("cutoff", mapper.DirInput)
	dst.AddSignal("res", mapper.DirInput)
	return m
}

// listTables returns a left table of synth outputs and a right table of
// fx inputs around a pane from x=100 to x=300.
func listTables() (*Tables, *fakeTable, *fakeTable) {
	left := newFakeTable(0, 100, 1, "synth", "synth/freq", "synth/gain")
	right := newFakeTable(300, 100, -1, "fx", "fx/cutoff", "fx/res")
	return NewTables(SnapLeftRight, left, right), left, right
}
