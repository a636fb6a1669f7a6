package listtable

import (
	"github.com/ha1tch/mapview/pkg/mapper"
	"github.com/ha1tch/mapview/pkg/mapview"
)

// DefaultWidth is the thickness of a table strip.
const DefaultWidth = 120.0

// Arrange builds the tables a view of kind needs inside a frame of the
// given size. Sources are listed on the left, destinations on the right
// or along the top. Canvas views have no tables and get nil.
func Arrange(kind mapview.Kind, width, height, thickness float64) *mapview.Tables {
	if thickness <= 0 {
		thickness = DefaultWidth
	}
	switch kind {
	case mapview.KindList:
		left := New(mapview.RoleLeft, mapper.DirOutput, mapview.Rect{Width: thickness, Height: height})
		right := New(mapview.RoleRight, mapper.DirInput, mapview.Rect{
			Left: width - thickness, Width: thickness, Height: height,
		})
		return mapview.NewTables(mapview.SnapLeftRight, left, right)
	case mapview.KindGrid:
		left := New(mapview.RoleLeft, mapper.DirOutput, mapview.Rect{
			Top: thickness, Width: thickness, Height: height - thickness,
		})
		top := New(mapview.RoleTop, mapper.DirInput, mapview.Rect{
			Left: thickness, Width: width - thickness, Height: thickness,
		})
		return mapview.NewTables(mapview.SnapCross, left, top)
	}
	return nil
}

// Resize moves every table of ts to fit a frame of the given size.
func Resize(ts *mapview.Tables, width, height, thickness float64) {
	if thickness <= 0 {
		thickness = DefaultWidth
	}
	ts.Each(func(r mapview.Role, t mapview.Table) bool {
		tbl, ok := t.(*Table)
		if !ok {
			return true
		}
		switch {
		case r == mapview.RoleLeft && ts.Snap == mapview.SnapCross:
			tbl.SetBounds(mapview.Rect{Top: thickness, Width: thickness, Height: height - thickness})
		case r == mapview.RoleLeft:
			tbl.SetBounds(mapview.Rect{Width: thickness, Height: height})
		case r == mapview.RoleRight:
			tbl.SetBounds(mapview.Rect{Left: width - thickness, Width: thickness, Height: height})
		case r == mapview.RoleTop:
			tbl.SetBounds(mapview.Rect{Left: thickness, Width: width - thickness, Height: thickness})
		}
		return true
	})
}
