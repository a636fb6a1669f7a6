package mapview

import "time"

// Easing selects the timing curve of an animation.
type Easing int

const (
	EaseLinear Easing = iota
	EaseOut
)

// Attr is a bit set of the attributes present in an Attrs value.
type Attr uint16

const (
	AttrPath Attr = 1 << iota
	AttrFill
	AttrFillOpacity
	AttrStroke
	AttrStrokeOpacity
	AttrStrokeWidth
	AttrDash
	AttrArrowEnd
	AttrOpacity
	AttrFontSize
	AttrLineCap
)

// Arrow marker used on the end of committed maps.
const ArrowBlock = "block-wide-long"

// Attrs is a partial set of visual attributes. Only the fields whose bit is
// present in Set are applied.
type Attrs struct {
	Set Attr

	Path          Curve
	Fill          string
	FillOpacity   float64
	Stroke        string
	StrokeOpacity float64
	StrokeWidth   float64
	Dash          string
	ArrowEnd      string
	Opacity       float64
	FontSize      float64
	LineCap       string
}

// Has reports whether bit is set.
func (a Attrs) Has(bit Attr) bool { return a.Set&bit != 0 }

func (a Attrs) WithPath(c Curve) Attrs {
	a.Path = c
	a.Set |= AttrPath
	return a
}

func (a Attrs) WithFill(c string) Attrs {
	a.Fill = c
	a.Set |= AttrFill
	return a
}

func (a Attrs) WithFillOpacity(o float64) Attrs {
	a.FillOpacity = o
	a.Set |= AttrFillOpacity
	return a
}

func (a Attrs) WithStroke(c string) Attrs {
	a.Stroke = c
	a.Set |= AttrStroke
	return a
}

func (a Attrs) WithStrokeOpacity(o float64) Attrs {
	a.StrokeOpacity = o
	a.Set |= AttrStrokeOpacity
	return a
}

func (a Attrs) WithStrokeWidth(w float64) Attrs {
	a.StrokeWidth = w
	a.Set |= AttrStrokeWidth
	return a
}

func (a Attrs) WithDash(d string) Attrs {
	a.Dash = d
	a.Set |= AttrDash
	return a
}

func (a Attrs) WithArrowEnd(s string) Attrs {
	a.ArrowEnd = s
	a.Set |= AttrArrowEnd
	return a
}

func (a Attrs) WithOpacity(o float64) Attrs {
	a.Opacity = o
	a.Set |= AttrOpacity
	return a
}

func (a Attrs) WithFontSize(s float64) Attrs {
	a.FontSize = s
	a.Set |= AttrFontSize
	return a
}

func (a Attrs) WithLineCap(s string) Attrs {
	a.LineCap = s
	a.Set |= AttrLineCap
	return a
}

// Merge returns a with every attribute set in b copied over.
func (a Attrs) Merge(b Attrs) Attrs {
	if b.Has(AttrPath) {
		a.Path = b.Path
	}
	if b.Has(AttrFill) {
		a.Fill = b.Fill
	}
	if b.Has(AttrFillOpacity) {
		a.FillOpacity = b.FillOpacity
	}
	if b.Has(AttrStroke) {
		a.Stroke = b.Stroke
	}
	if b.Has(AttrStrokeOpacity) {
		a.StrokeOpacity = b.StrokeOpacity
	}
	if b.Has(AttrStrokeWidth) {
		a.StrokeWidth = b.StrokeWidth
	}
	if b.Has(AttrDash) {
		a.Dash = b.Dash
	}
	if b.Has(AttrArrowEnd) {
		a.ArrowEnd = b.ArrowEnd
	}
	if b.Has(AttrOpacity) {
		a.Opacity = b.Opacity
	}
	if b.Has(AttrFontSize) {
		a.FontSize = b.FontSize
	}
	if b.Has(AttrLineCap) {
		a.LineCap = b.LineCap
	}
	a.Set |= b.Set
	return a
}

// Surface is the 2D vector canvas the view draws on.
type Surface interface {
	Path(c Curve) Visual
	Text(x, y float64, s string) Visual
	SetViewBox(r Rect)
}

// Visual is one drawn element owned by the view.
type Visual interface {
	Attr(a Attrs)
	Attrs() Attrs
	// Animate transitions to a over d. done runs once the animation
	// completes; it is not called if the animation is stopped.
	Animate(a Attrs, d time.Duration, e Easing, done func())
	Stop()
	Remove()
	ToBack()
	ToFront()
}

// StatusSink receives human-readable viewport status near the cursor.
type StatusSink interface {
	SetStatus(text string, x, y float64)
}
