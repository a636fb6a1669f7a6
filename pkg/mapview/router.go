package mapview

import (
	"errors"
	"fmt"
	"math"

	"github.com/ha1tch/mapview/pkg/mapper"
)

// ErrMissingEndpoint is returned when a signal has neither a free position
// nor a table row in the current layout.
var ErrMissingEndpoint = errors.New("missing endpoint")

// freeTrim is how far free-point curves stop short of each endpoint.
const freeTrim = 10

// Endpoint is a resolved attachment point for one end of a curve.
type Endpoint struct {
	Key    string
	Anchor Point
	Dir    Point // direction curves leave the anchor in
	Role   Role
	Row    *Row // nil for free points
}

// Free reports whether the endpoint is a free canvas point.
func (e Endpoint) Free() bool { return e.Row == nil }

// RowEndpoint makes an endpoint from a table row.
func RowEndpoint(role Role, row *Row) Endpoint {
	return Endpoint{
		Key:    row.ID,
		Anchor: row.Anchor(),
		Dir:    Point{row.VX, row.VY},
		Role:   role,
		Row:    row,
	}
}

// PointEndpoint makes a free endpoint.
func PointEndpoint(key string, p Point) Endpoint {
	return Endpoint{Key: key, Anchor: p, Dir: Point{1, 1}}
}

// Router computes curves between endpoints from their placement.
type Router struct {
	Pane   Rect // map pane in frame coordinates
	Tables *Tables
}

// Resolve finds the endpoint for a signal key in l.
func (rt *Router) Resolve(key string, l *Layout) (Endpoint, error) {
	p, ok := l.Signal(key)
	if !ok {
		return Endpoint{}, fmt.Errorf("%s: %w", key, ErrMissingEndpoint)
	}
	if p.Position != nil {
		return PointEndpoint(key, *p.Position), nil
	}
	if len(p.TableIndices) > 0 {
		ti := p.TableIndices[0]
		if t := rt.Tables.Get(ti.Role); t != nil {
			if row := t.RowFromIndex(ti.Row); row != nil {
				return RowEndpoint(ti.Role, row), nil
			}
		}
	}
	return Endpoint{}, fmt.Errorf("%s: %w", key, ErrMissingEndpoint)
}

// RouteMap resolves both ends of m and routes between them.
func (rt *Router) RouteMap(m *mapper.Map, l *Layout) (Curve, error) {
	src, err := rt.Resolve(m.Src.Key, l)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", m.Key, err)
	}
	dst, err := rt.Resolve(m.Dst.Key, l)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", m.Key, err)
	}
	return rt.Route(src, dst), nil
}

// Route picks the curve shape for the pair.
func (rt *Router) Route(src, dst Endpoint) Curve {
	switch {
	case src.Free() && dst.Free():
		return rt.Free(src.Anchor, dst.Anchor, true)
	case src.Free() || dst.Free():
		return rt.SameTable(src, dst)
	case src.Role == dst.Role:
		return rt.SameTable(src, dst)
	case src.Role.Opposes(dst.Role):
		return rt.Opposing(src.Anchor, dst.Anchor)
	default:
		if src.Role.Vertical() {
			return rt.Cross(*src.Row, *dst.Row)
		}
		return rt.Cross(*dst.Row, *src.Row)
	}
}

// control offsets p along v by half the pane in each axis.
func (rt *Router) control(p, v Point) Point {
	return Point{
		p.X + v.X*rt.Pane.Width*0.5,
		p.Y + v.Y*rt.Pane.Height*0.5,
	}
}

// SameTable returns the S-curve that loops out of a table and back.
func (rt *Router) SameTable(src, dst Endpoint) Curve {
	return Curve{
		MoveTo(src.Anchor),
		CubicTo(rt.control(src.Anchor, src.Dir), rt.control(dst.Anchor, dst.Dir), dst.Anchor),
	}
}

// Toward returns the curve from src to a raw pointer position.
func (rt *Router) Toward(src Endpoint, p Point) Curve {
	return Curve{
		MoveTo(src.Anchor),
		SmoothTo(rt.control(src.Anchor, src.Dir), p),
	}
}

// Opposing returns the bezier between rows on facing tables. Both control
// points share the pane's mid x, pulled towards the anchors' mean y.
func (rt *Router) Opposing(a, b Point) Curve {
	cx := rt.Pane.Center().X
	cy := (a.Y + b.Y) * 0.5
	y3 := a.Y*0.9 + cy*0.1
	y4 := b.Y*0.9 + cy*0.1

	if a.X == b.X {
		mult := math.Abs(a.Y-b.Y)*0.25 + 35
		if a.X < cx {
			cx = rt.Pane.Left + mult
		} else {
			cx = rt.Pane.Right() - mult
		}
	}
	return Curve{
		MoveTo(a),
		CubicTo(Point{cx, y3}, Point{cx, y4}, b),
	}
}

// Cross returns the rectilinear outline joining a row on a vertical table
// with a row on a horizontal one, running out to the pane edges.
func (rt *Router) Cross(lrow, trow Row) Curve {
	right, bottom := rt.Pane.Right(), rt.Pane.Bottom()
	pts := []Point{
		{trow.Left, lrow.Top},
		{trow.Left, trow.Top},
		{trow.Right(), trow.Top},
		{trow.Right(), lrow.Top},
		{right, lrow.Top},
		{right, lrow.Bottom()},
		{trow.Right(), lrow.Bottom()},
		{trow.Right(), bottom},
		{trow.Left, bottom},
		{trow.Left, lrow.Bottom()},
		{lrow.Left, lrow.Bottom()},
	}
	c := Curve{MoveTo(Point{lrow.Left, lrow.Top})}
	for _, p := range pts {
		c = append(c, LineTo(p))
	}
	return append(c, ClosePath())
}

// Free returns the curve between two free points. When trim is set the
// curve stops short of both ends so arrowheads clear the markers.
func (rt *Router) Free(a, b Point, trim bool) Curve {
	ctl := Point{(a.X + b.X) * 0.6, (a.Y + b.Y) * 0.4}
	c := Curve{MoveTo(a), SmoothTo(ctl, b)}
	if !trim {
		return c
	}
	l := c.Length()
	if l <= 2*freeTrim {
		return c
	}
	return c.Subpath(freeTrim, l-freeTrim)
}

// DeviceOutline returns the shape drawn behind a device's rows, or nil if
// the device's rows cannot be resolved.
func (rt *Router) DeviceOutline(p *Placement) Curve {
	var rows [numRoles]*Row
	n := 0
	for _, ti := range p.TableIndices {
		t := rt.Tables.Get(ti.Role)
		if t == nil || rows[ti.Role] != nil {
			continue
		}
		if row := t.RowFromIndex(ti.Row); row != nil {
			rows[ti.Role] = row
			n++
		}
	}

	switch {
	case n == 0:
		return nil
	case n == 1:
		for _, row := range rows {
			if row != nil {
				return RectPath(row.Rect())
			}
		}
	case rows[RoleLeft] != nil && rows[RoleRight] != nil:
		return rt.band(*rows[RoleLeft], *rows[RoleRight])
	case rows[RoleLeft] != nil && rows[RoleTop] != nil:
		return rt.Cross(*rows[RoleLeft], *rows[RoleTop])
	case rows[RoleRight] != nil && rows[RoleTop] != nil:
		return rt.Cross(*rows[RoleRight], *rows[RoleTop])
	}
	return nil
}

// band links a left row and a right row with two beziers through mid x.
func (rt *Router) band(l, r Row) Curve {
	cx := rt.Pane.Center().X
	return Curve{
		MoveTo(Point{l.Left, l.Top}),
		LineTo(Point{l.Right(), l.Top}),
		CubicTo(Point{cx, l.Top}, Point{cx, r.Top}, Point{r.Left, r.Top}),
		LineTo(Point{r.Right(), r.Top}),
		LineTo(Point{r.Right(), r.Bottom()}),
		LineTo(Point{r.Left, r.Bottom()}),
		CubicTo(Point{cx, r.Bottom()}, Point{cx, l.Bottom()}, Point{l.Right(), l.Bottom()}),
		LineTo(Point{l.Left, l.Bottom()}),
		ClosePath(),
	}
}
