package listtable

import (
	"testing"

	"github.com/ha1tch/mapview/pkg/mapper"
	"github.com/ha1tch/mapview/pkg/mapview"
)

func testModel() *mapper.Model {
	m := mapper.New()
	synth := m.AddDevice("synth", "#f5a623")
	synth.AddSignal("freq", mapper.DirOutput)
	synth.AddSignal("gain", mapper.DirOutput)
	synth.AddSignal("gate", mapper.DirInput)
	fx := m.AddDevice("fx", "#4a90e2")
	fx.AddSignal("cutoff", mapper.DirInput)
	fx.AddSignal("res", mapper.DirInput)
	return m
}

func ids(t *Table) []string {
	var out []string
	for _, r := range t.Rows() {
		out = append(out, r.ID)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestUpdateListsDirection(t *testing.T) {
	m := testModel()

	out := New(mapview.RoleLeft, mapper.DirOutput, mapview.Rect{Width: 100, Height: 100})
	out.Update(m, 300)
	if got := ids(out); !equal(got, []string{"synth", "synth/freq", "synth/gain"}) {
		t.Errorf("Unexpected output rows %v", got)
	}
	if out.Bounds().Height != 300 {
		t.Errorf("Expected vertical table stretched to 300, got %v", out.Bounds().Height)
	}

	in := New(mapview.RoleTop, mapper.DirInput, mapview.Rect{Width: 300, Height: 80})
	in.Update(m, 300)
	if got := ids(in); !equal(got, []string{"synth", "synth/gate", "fx", "fx/cutoff", "fx/res"}) {
		t.Errorf("Unexpected input rows %v", got)
	}
	if in.Bounds().Height != 80 {
		t.Error("Top table should keep its height")
	}
}

func TestCollapseHidesSignalRows(t *testing.T) {
	m := testModel()
	tbl := New(mapview.RoleRight, mapper.DirInput, mapview.Rect{Left: 300, Width: 100})
	synth, _ := m.Devices.Find("synth")
	synth.Collapsed = mapview.RoleRight.Bit()
	tbl.Update(m, 300)

	if got := ids(tbl); !equal(got, []string{"synth", "fx", "fx/cutoff", "fx/res"}) {
		t.Errorf("Unexpected rows %v", got)
	}

	// A bit owned by another role has no effect.
	synth.Collapsed = mapview.RoleLeft.Bit()
	tbl.Update(m, 300)
	if tbl.Len() != 5 {
		t.Errorf("Expected 5 rows, got %d", tbl.Len())
	}
}

func TestRowGeometry(t *testing.T) {
	m := testModel()

	left := New(mapview.RoleLeft, mapper.DirOutput, mapview.Rect{Top: 10, Width: 100})
	left.Update(m, 300)
	r := left.RowFromIndex(1)
	if r.Anchor() != (mapview.Point{X: 100, Y: 40}) || r.VX != 1 {
		t.Errorf("Unexpected left row anchor %v dir %v", r.Anchor(), r.VX)
	}

	right := New(mapview.RoleRight, mapper.DirInput, mapview.Rect{Left: 300, Width: 100})
	right.Update(m, 300)
	r = right.RowFromName("fx/res", mapper.DirInput)
	if r == nil {
		t.Fatal("Expected fx/res row")
	}
	if r.Index != 4 || r.Anchor() != (mapview.Point{X: 300, Y: 90}) || r.VX != -1 {
		t.Errorf("Unexpected right row %+v", r)
	}

	top := New(mapview.RoleTop, mapper.DirInput, mapview.Rect{Left: 100, Width: 300, Height: 80})
	top.Update(m, 300)
	r = top.RowFromIndex(3)
	if r.Anchor() != (mapview.Point{X: 170, Y: 80}) || r.VY != 1 {
		t.Errorf("Unexpected top row anchor %v dir %v", r.Anchor(), r.VY)
	}

	if top.RowFromIndex(-1) != nil || top.RowFromIndex(99) != nil {
		t.Error("Expected nil for out of range indices")
	}
}

func TestRowFromName(t *testing.T) {
	m := testModel()
	tbl := New(mapview.RoleLeft, mapper.DirOutput, mapview.Rect{Width: 100})
	tbl.Update(m, 300)

	if r := tbl.RowFromName("synth", mapper.DirAny); r == nil || !r.Device {
		t.Error("Expected device row for DirAny")
	}
	if tbl.RowFromName("synth", mapper.DirOutput) != nil {
		t.Error("Device key should not match as a signal")
	}
	if tbl.RowFromName("synth/freq", mapper.DirInput) != nil {
		t.Error("Wrong direction should not match")
	}
}

func TestRowFromPosition(t *testing.T) {
	m := testModel()
	tbl := New(mapview.RoleLeft, mapper.DirOutput, mapview.Rect{Width: 100})
	tbl.Update(m, 300)

	tests := []struct {
		name string
		x, y float64
		tol  float64
		want string
	}{
		{"inside row", 50, 30, 0, "synth/freq"},
		{"outside no tolerance", 110, 30, 0, ""},
		{"outside within tolerance", 110, 30, 0.2, "synth/freq"},
		{"outside beyond tolerance", 130, 30, 0.2, ""},
		{"below last row", 50, 70, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tbl.RowFromPosition(tt.x, tt.y, tt.tol)
			got := ""
			if r != nil {
				got = r.ID
			}
			if got != tt.want {
				t.Errorf("RowFromPosition(%v, %v) = %q, expected %q", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestHighlight(t *testing.T) {
	m := testModel()
	tbl := New(mapview.RoleLeft, mapper.DirOutput, mapview.Rect{Width: 100})
	tbl.Update(m, 300)

	tbl.HighlightRow(tbl.RowFromIndex(2), false)
	tbl.HighlightRow(tbl.RowFromIndex(1), false)
	if got := tbl.Highlighted(); !equal(got, []string{"synth/freq", "synth/gain"}) {
		t.Errorf("Unexpected highlights %v", got)
	}
	tbl.HighlightRow(tbl.RowFromIndex(1), true)
	if got := tbl.Highlighted(); !equal(got, []string{"synth/freq"}) {
		t.Errorf("Expected only synth/freq, got %v", got)
	}
	tbl.HighlightRow(nil, true)
	if len(tbl.Highlighted()) != 0 {
		t.Error("Expected highlights cleared")
	}

	tbl.HighlightRow(tbl.RowFromIndex(2), false)
	tbl.FilterByName("freq", mapper.DirOutput)
	if tbl.IsHighlighted("synth/gain") {
		t.Error("Highlights of removed rows should be dropped")
	}
}

func TestFilterByName(t *testing.T) {
	m := testModel()
	tbl := New(mapview.RoleRight, mapper.DirInput, mapview.Rect{Left: 300, Width: 100})
	tbl.Update(m, 300)

	if tbl.FilterByName("cut", mapper.DirOutput) {
		t.Error("Filter for another direction should be ignored")
	}
	if !tbl.FilterByName("CUT", mapper.DirInput) {
		t.Fatal("Expected filter to change rows")
	}
	if got := ids(tbl); !equal(got, []string{"fx", "fx/cutoff"}) {
		t.Errorf("Unexpected rows %v", got)
	}
	if tbl.FilterByName("CUT", mapper.DirInput) {
		t.Error("Same filter should report no change")
	}

	// An invalid pattern is matched literally.
	if !tbl.FilterByName("res(", mapper.DirInput) {
		t.Fatal("Expected literal filter to apply")
	}
	if tbl.Len() != 0 {
		t.Errorf("Expected no rows, got %v", ids(tbl))
	}

	tbl.FilterByName("", mapper.DirInput)
	if tbl.Len() != 5 {
		t.Errorf("Expected all rows after clearing, got %d", tbl.Len())
	}
}

func bigModel(n int) *mapper.Model {
	m := mapper.New()
	dev := m.AddDevice("bank", "#888888")
	for i := 0; i < n; i++ {
		dev.AddSignal(string(rune('a'+i)), mapper.DirOutput)
	}
	return m
}

func TestPan(t *testing.T) {
	tbl := New(mapview.RoleLeft, mapper.DirOutput, mapview.Rect{Width: 100})
	tbl.Update(bigModel(19), 100) // 20 rows, 400 tall

	outside := mapview.Point{X: 150, Y: 50}
	if tbl.Pan(0, 40, &outside) {
		t.Error("Pan outside the table should not be claimed")
	}
	inside := mapview.Point{X: 50, Y: 50}
	if !tbl.Pan(0, 40, &inside) || tbl.Scroll() != 40 {
		t.Errorf("Expected scroll 40, got %v", tbl.Scroll())
	}
	if r := tbl.RowFromPosition(50, 10, 0); r == nil || r.Index != 2 {
		t.Errorf("Expected row 2 at the top after scrolling, got %+v", r)
	}

	tbl.Pan(0, 1000, nil)
	if tbl.Scroll() != 300 {
		t.Errorf("Expected scroll clamped to 300, got %v", tbl.Scroll())
	}
	tbl.Pan(0, -1000, nil)
	if tbl.Scroll() != 0 {
		t.Errorf("Expected scroll clamped to 0, got %v", tbl.Scroll())
	}
}

func TestZoom(t *testing.T) {
	tbl := New(mapview.RoleLeft, mapper.DirOutput, mapview.Rect{Width: 100})
	tbl.Update(bigModel(19), 100)

	if changed, claimed := tbl.Zoom(50, 150, 50, true); changed || claimed {
		t.Error("Exclusive zoom outside the table should not be claimed")
	}
	changed, claimed := tbl.Zoom(100, 50, 0, true)
	if !changed || !claimed {
		t.Fatal("Expected zoom inside the table to apply")
	}
	if tbl.Scale() != 2 {
		t.Errorf("Expected scale 2, got %v", tbl.Scale())
	}
	if r := tbl.RowFromIndex(1); r.Height != 40 {
		t.Errorf("Expected row height 40, got %v", r.Height)
	}

	tbl.Zoom(1000, 50, 0, false)
	if tbl.Scale() != maxZoom {
		t.Errorf("Expected scale clamped to %v, got %v", maxZoom, tbl.Scale())
	}
	if changed, claimed := tbl.Zoom(10, 50, 0, false); changed || !claimed {
		t.Error("Zoom at the limit should be claimed without change")
	}
}

func TestArrange(t *testing.T) {
	list := Arrange(mapview.KindList, 600, 400, 100)
	if list.Snap != mapview.SnapLeftRight || list.Len() != 2 {
		t.Fatalf("Expected two facing tables, got %d", list.Len())
	}
	if b := list.Get(mapview.RoleRight).Bounds(); b.Left != 500 || b.Height != 400 {
		t.Errorf("Unexpected right bounds %v", b)
	}

	grid := Arrange(mapview.KindGrid, 600, 400, 0)
	top := grid.Get(mapview.RoleTop).(*Table)
	if top.Direction() != mapper.DirInput || top.Bounds().Left != DefaultWidth {
		t.Errorf("Unexpected top table %v", top.Bounds())
	}

	Resize(grid, 800, 500, 0)
	if b := grid.Get(mapview.RoleLeft).Bounds(); b.Top != DefaultWidth || b.Height != 500-DefaultWidth {
		t.Errorf("Unexpected left bounds after resize %v", b)
	}

	if Arrange(mapview.KindCanvas, 600, 400, 100) != nil {
		t.Error("Canvas views have no tables")
	}
}
