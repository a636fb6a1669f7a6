// Geometric primitives for map rendering.
// Curves are SVG-style path segments that can be flattened to cubic Béziers
// for measuring, splitting and reversing.

package mapview

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

func (p Point) vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

func fromVec(v r2.Vec) Point { return Point{v.X, v.Y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return fromVec(r2.Add(p.vec(), q.vec())) }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return fromVec(r2.Sub(p.vec(), q.vec())) }

// Scale returns p scaled by f.
func (p Point) Scale(f float64) Point { return fromVec(r2.Scale(f, p.vec())) }

// Dist returns the distance between p and q.
func (p Point) Dist(q Point) float64 { return r2.Norm(r2.Sub(p.vec(), q.vec())) }

func (p Point) near(q Point, tol float64) bool {
	return math.Abs(p.X-q.X) <= tol && math.Abs(p.Y-q.Y) <= tol
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	Left, Top     float64
	Width, Height float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Center returns the centre point.
func (r Rect) Center() Point { return Point{r.Left + r.Width*0.5, r.Top + r.Height*0.5} }

// Contains reports whether p lies inside r (edges inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right() && p.Y >= r.Top && p.Y <= r.Bottom()
}

// Expand grows r by dx on the left and right and dy on the top and bottom.
func (r Rect) Expand(dx, dy float64) Rect {
	return Rect{r.Left - dx, r.Top - dy, r.Width + 2*dx, r.Height + 2*dy}
}

// SegKind is an SVG path command.
type SegKind byte

const (
	SegMove   SegKind = 'M'
	SegLine   SegKind = 'L'
	SegCubic  SegKind = 'C'
	SegSmooth SegKind = 'S' // smooth cubic: first control reflected from the previous segment
	SegClose  SegKind = 'Z'
)

// Segment is one absolute path command with its points.
type Segment struct {
	Kind SegKind
	Pts  []Point
}

// Curve is a path made of segments. The first segment is always a move.
type Curve []Segment

// MoveTo starts a new subpath at p.
func MoveTo(p Point) Segment { return Segment{SegMove, []Point{p}} }

// LineTo draws a straight line to p.
func LineTo(p Point) Segment { return Segment{SegLine, []Point{p}} }

// CubicTo draws a cubic Bézier to p.
func CubicTo(c1, c2, p Point) Segment { return Segment{SegCubic, []Point{c1, c2, p}} }

// SmoothTo draws a smooth cubic Bézier to p.
func SmoothTo(c2, p Point) Segment { return Segment{SegSmooth, []Point{c2, p}} }

// ClosePath closes the current subpath.
func ClosePath() Segment { return Segment{Kind: SegClose} }

// Start returns the first point of the curve.
func (c Curve) Start() Point {
	if len(c) == 0 || len(c[0].Pts) == 0 {
		return Point{}
	}
	return c[0].Pts[0]
}

// End returns the last drawn point of the curve.
func (c Curve) End() Point {
	pieces := c.Cubics()
	if len(pieces) == 0 {
		return c.Start()
	}
	return pieces[len(pieces)-1][3]
}

// Closed reports whether the curve ends with a close command.
func (c Curve) Closed() bool {
	return len(c) > 0 && c[len(c)-1].Kind == SegClose
}

// Cubic is a single cubic Bézier: start, two controls, end.
type Cubic [4]Point

// At evaluates the Bézier at t ∈ [0,1].
func (b Cubic) At(t float64) Point {
	mt := 1 - t
	mt2 := mt * mt
	t2 := t * t
	v := r2.Scale(mt2*mt, b[0].vec())
	v = r2.Add(v, r2.Scale(3*mt2*t, b[1].vec()))
	v = r2.Add(v, r2.Scale(3*mt*t2, b[2].vec()))
	v = r2.Add(v, r2.Scale(t2*t, b[3].vec()))
	return fromVec(v)
}

// Tangent returns the derivative of the Bézier at t.
func (b Cubic) Tangent(t float64) Point {
	mt := 1 - t
	v := r2.Scale(3*mt*mt, r2.Sub(b[1].vec(), b[0].vec()))
	v = r2.Add(v, r2.Scale(6*mt*t, r2.Sub(b[2].vec(), b[1].vec())))
	v = r2.Add(v, r2.Scale(3*t*t, r2.Sub(b[3].vec(), b[2].vec())))
	return fromVec(v)
}

// Split divides the Bézier at t using de Casteljau's algorithm.
func (b Cubic) Split(t float64) (Cubic, Cubic) {
	lerp := func(p, q Point) Point { return p.Add(q.Sub(p).Scale(t)) }
	p01 := lerp(b[0], b[1])
	p12 := lerp(b[1], b[2])
	p23 := lerp(b[2], b[3])
	p012 := lerp(p01, p12)
	p123 := lerp(p12, p23)
	mid := lerp(p012, p123)
	return Cubic{b[0], p01, p012, mid}, Cubic{mid, p123, p23, b[3]}
}

// between returns the part of the Bézier between t0 and t1.
func (b Cubic) between(t0, t1 float64) Cubic {
	if t1 <= 0 {
		return Cubic{b[0], b[0], b[0], b[0]}
	}
	left, _ := b.Split(t1)
	if t0 <= 0 {
		return left
	}
	_, right := left.Split(t0 / t1)
	return right
}

const lengthSamples = 64

// samples returns cumulative arc lengths at evenly spaced t values.
func (b Cubic) samples() []float64 {
	acc := make([]float64, lengthSamples+1)
	prev := b[0]
	for i := 1; i <= lengthSamples; i++ {
		p := b.At(float64(i) / lengthSamples)
		acc[i] = acc[i-1] + prev.Dist(p)
		prev = p
	}
	return acc
}

// Length approximates the arc length by sampling.
func (b Cubic) Length() float64 {
	acc := b.samples()
	return acc[lengthSamples]
}

// paramAt maps an arc length d along the Bézier to a parameter t.
func (b Cubic) paramAt(d float64) float64 {
	acc := b.samples()
	total := acc[lengthSamples]
	if total == 0 || d <= 0 {
		return 0
	}
	if d >= total {
		return 1
	}
	for i := 1; i <= lengthSamples; i++ {
		if acc[i] >= d {
			span := acc[i] - acc[i-1]
			frac := 0.0
			if span > 0 {
				frac = (d - acc[i-1]) / span
			}
			return (float64(i-1) + frac) / lengthSamples
		}
	}
	return 1
}

// Cubics flattens the curve into absolute cubic Béziers.
// Lines become degenerate cubics and a close adds the closing line.
func (c Curve) Cubics() []Cubic {
	var out []Cubic
	var cur, start Point
	var prevCtrl *Point
	for _, seg := range c {
		switch seg.Kind {
		case SegMove:
			cur, start = seg.Pts[0], seg.Pts[0]
			prevCtrl = nil
		case SegLine:
			p := seg.Pts[0]
			out = append(out, Cubic{cur, cur, p, p})
			cur = p
			prevCtrl = nil
		case SegCubic:
			c2 := seg.Pts[1]
			out = append(out, Cubic{cur, seg.Pts[0], c2, seg.Pts[2]})
			cur = seg.Pts[2]
			prevCtrl = &c2
		case SegSmooth:
			c1 := cur
			if prevCtrl != nil {
				c1 = cur.Scale(2).Sub(*prevCtrl)
			}
			c2 := seg.Pts[0]
			out = append(out, Cubic{cur, c1, c2, seg.Pts[1]})
			cur = seg.Pts[1]
			prevCtrl = &c2
		case SegClose:
			if cur != start {
				out = append(out, Cubic{cur, cur, start, start})
			}
			cur = start
			prevCtrl = nil
		}
	}
	return out
}

// Length returns the approximate arc length of the curve.
func (c Curve) Length() float64 {
	total := 0.0
	for _, b := range c.Cubics() {
		total += b.Length()
	}
	return total
}

// PointAt returns the point at arc length s along the curve.
func (c Curve) PointAt(s float64) Point {
	b, t := c.locate(s)
	return b.At(t)
}

// TangentAt returns the direction of travel at arc length s.
func (c Curve) TangentAt(s float64) Point {
	b, t := c.locate(s)
	tan := b.Tangent(t)
	if tan.X == 0 && tan.Y == 0 {
		tan = b[3].Sub(b[0])
	}
	return tan
}

func (c Curve) locate(s float64) (Cubic, float64) {
	pieces := c.Cubics()
	if len(pieces) == 0 {
		p := c.Start()
		return Cubic{p, p, p, p}, 0
	}
	acc := 0.0
	for _, b := range pieces {
		l := b.Length()
		if s <= acc+l {
			return b, b.paramAt(s - acc)
		}
		acc += l
	}
	return pieces[len(pieces)-1], 1
}

// Subpath returns the part of the curve between arc lengths from and to.
func (c Curve) Subpath(from, to float64) Curve {
	total := c.Length()
	from = math.Max(0, math.Min(from, total))
	to = math.Max(0, math.Min(to, total))
	if to <= from {
		return Curve{MoveTo(c.PointAt(from))}
	}

	var out Curve
	acc := 0.0
	for _, b := range c.Cubics() {
		l := b.Length()
		s0, s1 := math.Max(from, acc), math.Min(to, acc+l)
		acc += l
		if s1 <= s0 {
			continue
		}
		sub := b.between(b.paramAt(s0-(acc-l)), b.paramAt(s1-(acc-l)))
		if len(out) == 0 {
			out = append(out, MoveTo(sub[0]))
		}
		out = append(out, CubicTo(sub[1], sub[2], sub[3]))
	}
	if len(out) == 0 {
		return Curve{MoveTo(c.PointAt(from))}
	}
	return out
}

// Reverse returns the same shape traversed from end to start.
func (c Curve) Reverse() Curve {
	pieces := c.Cubics()
	if len(pieces) == 0 {
		return Curve{MoveTo(c.Start())}
	}
	out := Curve{MoveTo(pieces[len(pieces)-1][3])}
	for i := len(pieces) - 1; i >= 0; i-- {
		b := pieces[i]
		out = append(out, CubicTo(b[2], b[1], b[0]))
	}
	if c.Closed() {
		out = append(out, ClosePath())
	}
	return out
}

// ApproxEqual reports whether two curves flatten to the same Béziers
// within tol.
func ApproxEqual(a, b Curve, tol float64) bool {
	pa, pb := a.Cubics(), b.Cubics()
	if len(pa) != len(pb) {
		return false
	}
	for i := range pa {
		for j := 0; j < 4; j++ {
			if !pa[i][j].near(pb[i][j], tol) {
				return false
			}
		}
	}
	return true
}

// Interpolate blends two curves with the same command structure.
// Returns false if the structures differ.
func Interpolate(a, b Curve, t float64) (Curve, bool) {
	if len(a) != len(b) {
		return nil, false
	}
	out := make(Curve, len(a))
	for i := range a {
		if a[i].Kind != b[i].Kind || len(a[i].Pts) != len(b[i].Pts) {
			return nil, false
		}
		pts := make([]Point, len(a[i].Pts))
		for j := range pts {
			pts[j] = a[i].Pts[j].Add(b[i].Pts[j].Sub(a[i].Pts[j]).Scale(t))
		}
		out[i] = Segment{a[i].Kind, pts}
	}
	return out, true
}

// Bounds returns the bounding box of all curve points, including controls.
func (c Curve) Bounds() Rect {
	first := true
	var minX, minY, maxX, maxY float64
	for _, seg := range c {
		for _, p := range seg.Pts {
			if first {
				minX, minY, maxX, maxY = p.X, p.Y, p.X, p.Y
				first = false
				continue
			}
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
	}
	return Rect{minX, minY, maxX - minX, maxY - minY}
}

// String formats the curve as SVG path data.
func (c Curve) String() string {
	var sb strings.Builder
	for i, seg := range c {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(byte(seg.Kind))
		for j, p := range seg.Pts {
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(fmt.Sprintf("%.2f,%.2f", p.X, p.Y))
		}
	}
	return sb.String()
}

// RectPath returns a closed rectangle outline.
func RectPath(r Rect) Curve {
	return Curve{
		MoveTo(Point{r.Left, r.Top}),
		LineTo(Point{r.Right(), r.Top}),
		LineTo(Point{r.Right(), r.Bottom()}),
		LineTo(Point{r.Left, r.Bottom()}),
		ClosePath(),
	}
}

// CirclePath approximates a circle with four cubic arcs.
func CirclePath(cx, cy, r float64) Curve {
	k := 0.5522847498 * r
	return Curve{
		MoveTo(Point{cx + r, cy}),
		CubicTo(Point{cx + r, cy + k}, Point{cx + k, cy + r}, Point{cx, cy + r}),
		CubicTo(Point{cx - k, cy + r}, Point{cx - r, cy + k}, Point{cx - r, cy}),
		CubicTo(Point{cx - r, cy - k}, Point{cx - k, cy - r}, Point{cx, cy - r}),
		CubicTo(Point{cx + k, cy - r}, Point{cx + r, cy - k}, Point{cx + r, cy}),
		ClosePath(),
	}
}
