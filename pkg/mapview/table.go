package mapview

import "github.com/ha1tch/mapview/pkg/mapper"

// Role names one of the fixed table slots around the map pane.
type Role int

const (
	RoleLeft Role = iota
	RoleRight
	RoleTop
	numRoles
)

// Roles lists every role in the fixed iteration order used for snapping,
// panning and zooming.
var Roles = [numRoles]Role{RoleLeft, RoleRight, RoleTop}

func (r Role) String() string {
	switch r {
	case RoleLeft:
		return "left"
	case RoleRight:
		return "right"
	case RoleTop:
		return "top"
	}
	return "unknown"
}

// Bit returns the device collapse bit owned by this role.
func (r Role) Bit() uint8 { return 1 << uint(r) }

// Vertical reports whether rows of this table run top to bottom along a
// vertical edge of the pane.
func (r Role) Vertical() bool { return r == RoleLeft || r == RoleRight }

// Opposes reports whether r and o face each other across the pane.
func (r Role) Opposes(o Role) bool {
	return r != o && r.Vertical() && o.Vertical()
}

// Orthogonal reports whether r and o sit on perpendicular edges.
func (r Role) Orthogonal(o Role) bool {
	return r.Vertical() != o.Vertical()
}

// Snap is the arrangement of the second table relative to the first.
type Snap int

const (
	SnapLeftRight Snap = iota // left and right tables face each other
	SnapCross                 // left and top tables form a grid
)

// Row is a table row projected into frame coordinates.
type Row struct {
	ID     string // signal or device key
	Label  string
	Index  int
	Device bool // device header row rather than a signal row

	X, Y   float64 // anchor where curves attach
	VX, VY float64 // unit vector pointing away from the table edge

	Left, Top     float64
	Width, Height float64
}

// Right returns the x coordinate of the row's right edge.
func (r Row) Right() float64 { return r.Left + r.Width }

// Bottom returns the y coordinate of the row's bottom edge.
func (r Row) Bottom() float64 { return r.Top + r.Height }

// Rect returns the row's rectangle.
func (r Row) Rect() Rect { return Rect{r.Left, r.Top, r.Width, r.Height} }

// Anchor returns the attachment point.
func (r Row) Anchor() Point { return Point{r.X, r.Y} }

// Table is a tabular widget presenting devices and signals as rows.
// All coordinates are relative to the view frame.
type Table interface {
	// Update rebuilds rows from the model.
	Update(m *mapper.Model, height float64)
	// Bounds returns the area the table occupies.
	Bounds() Rect
	// RowFromName finds the row for a signal key; DirAny finds device rows.
	RowFromName(key string, dir mapper.Direction) *Row
	RowFromIndex(i int) *Row
	// RowFromPosition finds the row within tolerance (a fraction of the
	// row's extent) of the given point.
	RowFromPosition(x, y, tolerance float64) *Row
	HighlightRow(row *Row, clearAll bool)
	// Pan scrolls the table. A nil point means the pan is broadcast and
	// must be applied unconditionally.
	Pan(dx, dy float64, at *Point) bool
	// Zoom scales the table. In exclusive mode a table that does not
	// contain (x, y) must not claim the gesture.
	Zoom(delta, x, y float64, exclusive bool) (changed, claimed bool)
	FilterByName(text string, dir mapper.Direction) bool
}

// TableIndex locates a signal or device in one table.
type TableIndex struct {
	Role Role
	Row  int
}

// Tables is the fixed set of table slots handed to the view.
type Tables struct {
	Snap  Snap
	slots [numRoles]Table
}

// NewTables creates a table set. Pass nil for unused slots.
func NewTables(snap Snap, left, second Table) *Tables {
	ts := &Tables{Snap: snap}
	ts.slots[RoleLeft] = left
	if snap == SnapCross {
		ts.slots[RoleTop] = second
	} else {
		ts.slots[RoleRight] = second
	}
	return ts
}

// Get returns the table in the given slot, or nil.
func (ts *Tables) Get(r Role) Table {
	if ts == nil || r < 0 || r >= numRoles {
		return nil
	}
	return ts.slots[r]
}

// Set installs t in the given slot.
func (ts *Tables) Set(r Role, t Table) {
	ts.slots[r] = t
}

// Each calls fn for every occupied slot in role order until fn returns false.
func (ts *Tables) Each(fn func(Role, Table) bool) {
	if ts == nil {
		return
	}
	for _, r := range Roles {
		if t := ts.slots[r]; t != nil {
			if !fn(r, t) {
				return
			}
		}
	}
}

// Len returns the number of occupied slots.
func (ts *Tables) Len() int {
	n := 0
	ts.Each(func(Role, Table) bool { n++; return true })
	return n
}

// CollapseMask returns the collapse bits of every occupied slot.
func (ts *Tables) CollapseMask() uint8 {
	var mask uint8
	ts.Each(func(r Role, _ Table) bool {
		mask |= r.Bit()
		return true
	})
	return mask
}

// RoleOf returns the slot holding t.
func (ts *Tables) RoleOf(t Table) (Role, bool) {
	found, ok := Role(0), false
	ts.Each(func(r Role, cand Table) bool {
		if cand == t {
			found, ok = r, true
			return false
		}
		return true
	})
	return found, ok
}

// Indices queries every table for the row holding key.
func (ts *Tables) Indices(key string, dir mapper.Direction) []TableIndex {
	var out []TableIndex
	ts.Each(func(r Role, t Table) bool {
		if row := t.RowFromName(key, dir); row != nil {
			out = append(out, TableIndex{Role: r, Row: row.Index})
		}
		return true
	})
	return out
}

// ClearHighlights removes every row highlight.
func (ts *Tables) ClearHighlights() {
	ts.Each(func(_ Role, t Table) bool {
		t.HighlightRow(nil, true)
		return true
	})
}

// Hit returns the table and row under p, using zero tolerance.
func (ts *Tables) Hit(p Point) (Role, *Row) {
	var role Role
	var row *Row
	ts.Each(func(r Role, t Table) bool {
		if !t.Bounds().Contains(p) {
			return true
		}
		if found := t.RowFromPosition(p.X, p.Y, 0); found != nil {
			role, row = r, found
			return false
		}
		return true
	})
	return role, row
}

// Covers reports whether any table's bounds contain p.
func (ts *Tables) Covers(p Point) bool {
	covered := false
	ts.Each(func(_ Role, t Table) bool {
		covered = t.Bounds().Contains(p)
		return !covered
	})
	return covered
}
