// Package listtable provides a table of devices and their signals laid out
// as a strip of rows along one edge of a map view.
package listtable

import (
	"regexp"

	"github.com/ha1tch/mapview/pkg/mapper"
	"github.com/ha1tch/mapview/pkg/mapview"
)

const (
	DefaultRowHeight = 20.0
	minZoom          = 0.5
	maxZoom          = 3.0
	zoomStep         = 0.01
)

type entry struct {
	id     string
	label  string
	device bool
}

// Table lists the devices of a model and, under each one, the signals of
// a single direction. Vertical roles stack rows downwards; the top role
// lays them out left to right.
type Table struct {
	role      mapview.Role
	dir       mapper.Direction
	bounds    mapview.Rect
	RowHeight float64

	zoom   float64
	scroll float64
	filter *regexp.Regexp

	model       *mapper.Model
	entries     []entry
	highlighted map[string]bool
}

var _ mapview.Table = (*Table)(nil)

// New creates a table for role listing signals of dir inside bounds.
func New(role mapview.Role, dir mapper.Direction, bounds mapview.Rect) *Table {
	return &Table{
		role:        role,
		dir:         dir,
		bounds:      bounds,
		RowHeight:   DefaultRowHeight,
		zoom:        1,
		highlighted: make(map[string]bool),
	}
}

// Role returns the slot the table was built for.
func (t *Table) Role() mapview.Role { return t.role }

// Direction returns the signal direction listed.
func (t *Table) Direction() mapper.Direction { return t.dir }

// SetBounds moves the table.
func (t *Table) SetBounds(r mapview.Rect) {
	t.bounds = r
	t.clampScroll()
}

// Bounds returns the table rectangle in frame coordinates.
func (t *Table) Bounds() mapview.Rect { return t.bounds }

// Zoom level of the rows.
func (t *Table) Scale() float64 { return t.zoom }

// Scroll returns the scroll offset along the row axis.
func (t *Table) Scroll() float64 { return t.scroll }

// Len returns the number of rows, device rows included.
func (t *Table) Len() int { return len(t.entries) }

// Update rebuilds the rows from m. Vertical tables stretch down to height.
func (t *Table) Update(m *mapper.Model, height float64) {
	t.model = m
	if t.role.Vertical() && height > t.bounds.Top {
		t.bounds.Height = height - t.bounds.Top
	}
	t.rebuild()
}

func (t *Table) rebuild() {
	t.entries = t.entries[:0]
	if t.model == nil {
		return
	}
	t.model.Devices.Each(func(dev *mapper.Device) bool {
		var sigs []entry
		dev.Signals.Each(func(sig *mapper.Signal) bool {
			if sig.Direction != t.dir {
				return true
			}
			if t.filter != nil && !t.filter.MatchString(sig.Key) {
				return true
			}
			sigs = append(sigs, entry{id: sig.Key, label: sig.Name})
			return true
		})
		if len(sigs) == 0 {
			return true
		}
		t.entries = append(t.entries, entry{id: dev.Key, label: dev.Key, device: true})
		if dev.Collapsed&t.role.Bit() == 0 {
			t.entries = append(t.entries, sigs...)
		}
		return true
	})
	for id := range t.highlighted {
		if t.indexOf(id) < 0 {
			delete(t.highlighted, id)
		}
	}
	t.clampScroll()
}

func (t *Table) indexOf(id string) int {
	for i, e := range t.entries {
		if e.id == id {
			return i
		}
	}
	return -1
}

func (t *Table) extent() float64 { return t.RowHeight * t.zoom }

// span is the length of the strip along the row axis.
func (t *Table) span() float64 {
	if t.role.Vertical() {
		return t.bounds.Height
	}
	return t.bounds.Width
}

func (t *Table) clampScroll() {
	max := float64(len(t.entries))*t.extent() - t.span()
	if max < 0 {
		max = 0
	}
	if t.scroll > max {
		t.scroll = max
	}
	if t.scroll < 0 {
		t.scroll = 0
	}
}

func (t *Table) row(i int) *mapview.Row {
	if i < 0 || i >= len(t.entries) {
		return nil
	}
	e := t.entries[i]
	ext := t.extent()
	r := &mapview.Row{ID: e.id, Label: e.label, Index: i, Device: e.device}
	b := t.bounds
	switch t.role {
	case mapview.RoleTop:
		r.Left = b.Left + float64(i)*ext - t.scroll
		r.Top = b.Top
		r.Width, r.Height = ext, b.Height
		r.X, r.Y = r.Left+ext*0.5, b.Bottom()
		r.VY = 1
	default:
		r.Left = b.Left
		r.Top = b.Top + float64(i)*ext - t.scroll
		r.Width, r.Height = b.Width, ext
		r.Y = r.Top + ext*0.5
		if t.role == mapview.RoleRight {
			r.X, r.VX = b.Left, -1
		} else {
			r.X, r.VX = b.Right(), 1
		}
	}
	return r
}

// visible reports whether a row overlaps the table bounds.
func (t *Table) visible(r *mapview.Row) bool {
	b := t.bounds
	return r.Right() > b.Left && r.Left < b.Right() && r.Bottom() > b.Top && r.Top < b.Bottom()
}

// Rows returns every row with its current geometry.
func (t *Table) Rows() []mapview.Row {
	out := make([]mapview.Row, 0, len(t.entries))
	for i := range t.entries {
		out = append(out, *t.row(i))
	}
	return out
}

func (t *Table) RowFromIndex(i int) *mapview.Row { return t.row(i) }

// RowFromName finds a signal row, or a device row when dir is DirAny.
func (t *Table) RowFromName(key string, dir mapper.Direction) *mapview.Row {
	if dir != mapper.DirAny && dir != t.dir {
		return nil
	}
	for i, e := range t.entries {
		if e.id == key && e.device == (dir == mapper.DirAny) {
			return t.row(i)
		}
	}
	return nil
}

// RowFromPosition returns the row containing (x, y). Failing that, rows
// are grown by tolerance times their size and the first one containing the
// point is returned.
func (t *Table) RowFromPosition(x, y, tolerance float64) *mapview.Row {
	p := mapview.Point{X: x, Y: y}
	for i := range t.entries {
		if r := t.row(i); t.visible(r) && r.Rect().Contains(p) {
			return r
		}
	}
	if tolerance <= 0 {
		return nil
	}
	for i := range t.entries {
		r := t.row(i)
		if !t.visible(r) {
			continue
		}
		if r.Rect().Expand(r.Width*tolerance, r.Height*tolerance).Contains(p) {
			return r
		}
	}
	return nil
}

// HighlightRow marks row as highlighted, optionally clearing all others
// first. A nil row with clearAll removes every highlight.
func (t *Table) HighlightRow(row *mapview.Row, clearAll bool) {
	if clearAll {
		for id := range t.highlighted {
			delete(t.highlighted, id)
		}
	}
	if row != nil {
		t.highlighted[row.ID] = true
	}
}

// Highlighted returns the highlighted row ids in row order.
func (t *Table) Highlighted() []string {
	var ids []string
	for _, e := range t.entries {
		if t.highlighted[e.id] {
			ids = append(ids, e.id)
		}
	}
	return ids
}

// IsHighlighted reports whether the row with id is highlighted.
func (t *Table) IsHighlighted(id string) bool { return t.highlighted[id] }

// Pan scrolls the rows. When at is set the table only responds if the
// point lies inside it.
func (t *Table) Pan(dx, dy float64, at *mapview.Point) bool {
	if at != nil && !t.bounds.Contains(*at) {
		return false
	}
	delta := dy
	if !t.role.Vertical() {
		delta = dx
		if delta == 0 {
			delta = dy
		}
	}
	old := t.scroll
	t.scroll += delta
	t.clampScroll()
	return t.scroll != old
}

// Zoom scales the rows about the pointer. In exclusive mode a table that
// does not contain the pointer does not claim the gesture.
func (t *Table) Zoom(delta, x, y float64, exclusive bool) (changed, claimed bool) {
	if exclusive && !t.bounds.Contains(mapview.Point{X: x, Y: y}) {
		return false, false
	}
	next := t.zoom + delta*zoomStep
	if next < minZoom {
		next = minZoom
	} else if next > maxZoom {
		next = maxZoom
	}
	if next == t.zoom {
		return false, true
	}
	pos := y - t.bounds.Top
	if !t.role.Vertical() {
		pos = x - t.bounds.Left
	}
	t.scroll = (t.scroll+pos)*next/t.zoom - pos
	t.zoom = next
	t.clampScroll()
	return true, true
}

// FilterByName keeps only signals of dir whose key matches text,
// case-insensitively. Text that is not a valid pattern is matched
// literally. It reports whether the rows changed.
func (t *Table) FilterByName(text string, dir mapper.Direction) bool {
	if dir != t.dir {
		return false
	}
	var re *regexp.Regexp
	if text != "" {
		var err error
		re, err = regexp.Compile("(?i)" + text)
		if err != nil {
			re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(text))
		}
	}
	if patternOf(re) == patternOf(t.filter) {
		return false
	}
	t.filter = re
	t.rebuild()
	return true
}

func patternOf(re *regexp.Regexp) string {
	if re == nil {
		return ""
	}
	return re.String()
}
