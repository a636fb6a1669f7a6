// Raster export of a Scene.
// Drawn with gg at a multiple of the output size and downsampled for
// smoother curves, the same way the SVG output would be antialiased.

package surface

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"sort"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/ha1tch/mapview/pkg/mapview"
)

// PNGOptions configures PNG export.
type PNGOptions struct {
	Width      int
	Height     int
	Background string
	// Supersample is the internal render multiple (0 = 4).
	Supersample int
}

// DefaultPNGOptions returns sensible defaults for PNG export.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{
		Width:       800,
		Height:      600,
		Background:  "#222222",
		Supersample: 4,
	}
}

func loadFace(size float64) (font.Face, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return face, nil
}

// RenderImage rasterizes the scene's view box.
func (s *Scene) RenderImage(opts PNGOptions) (*image.RGBA, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", opts.Width, opts.Height)
	}
	scale := opts.Supersample
	if scale <= 0 {
		scale = 4
	}

	w, h := opts.Width*scale, opts.Height*scale
	dc := gg.NewContext(w, h)
	if c, ok := rgba(opts.Background, 1); ok {
		dc.SetColor(c)
		dc.Clear()
	}

	vb := s.ViewBox()
	if vb.Width <= 0 || vb.Height <= 0 {
		vb = mapview.Rect{Width: float64(opts.Width), Height: float64(opts.Height)}
	}
	dc.Scale(float64(w)/vb.Width, float64(h)/vb.Height)
	dc.Translate(-vb.Left, -vb.Top)

	faces := make(map[float64]font.Face)
	for _, e := range s.elements {
		switch e.Kind {
		case KindPath:
			drawPath(dc, e.attrs)
		case KindText:
			size := e.attrs.FontSize
			face, ok := faces[size]
			if !ok {
				var err error
				if face, err = loadFace(size); err != nil {
					return nil, err
				}
				faces[size] = face
			}
			drawText(dc, face, e)
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.CatmullRom.Scale(out, out.Bounds(), dc.Image(), dc.Image().Bounds(), draw.Over, nil)
	return out, nil
}

// RenderPNG writes the scene as a PNG image.
func (s *Scene) RenderPNG(w io.Writer, opts PNGOptions) error {
	img, err := s.RenderImage(opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func tracePath(dc *gg.Context, c mapview.Curve) {
	dc.NewSubPath()
	var last mapview.Point
	for i, b := range c.Cubics() {
		if i == 0 || b[0] != last {
			dc.MoveTo(b[0].X, b[0].Y)
		}
		dc.CubicTo(b[1].X, b[1].Y, b[2].X, b[2].Y, b[3].X, b[3].Y)
		last = b[3]
	}
	if c.Closed() {
		dc.ClosePath()
	}
}

func drawPath(dc *gg.Context, a mapview.Attrs) {
	if len(a.Path) == 0 || a.Opacity <= 0 {
		return
	}
	if fill, ok := rgba(a.Fill, a.FillOpacity*a.Opacity); ok {
		tracePath(dc, a.Path)
		dc.SetColor(fill)
		dc.Fill()
	}
	stroke, ok := rgba(a.Stroke, a.StrokeOpacity*a.Opacity)
	if !ok || a.StrokeWidth <= 0 {
		return
	}
	tracePath(dc, a.Path)
	dc.SetColor(stroke)
	dc.SetLineWidth(a.StrokeWidth)
	if a.LineCap == "round" {
		dc.SetLineCapRound()
	} else {
		dc.SetLineCapButt()
	}
	dc.SetDash(dashArray(a.Dash, a.StrokeWidth)...)
	dc.Stroke()
	dc.SetDash()

	if a.ArrowEnd != "" && a.ArrowEnd != "none" {
		drawArrowHead(dc, a.Path, a.StrokeWidth)
	}
}

// drawArrowHead fills a wide, long block arrow at the end of c.
func drawArrowHead(dc *gg.Context, c mapview.Curve, width float64) {
	l := c.Length()
	if l == 0 {
		return
	}
	tip := c.End()
	tan := c.TangentAt(l)
	n := math.Hypot(tan.X, tan.Y)
	if n == 0 {
		return
	}
	ux, uy := tan.X/n, tan.Y/n
	length, half := width*5, width*1.5
	bx, by := tip.X-ux*length, tip.Y-uy*length
	dc.MoveTo(tip.X, tip.Y)
	dc.LineTo(bx-uy*half, by+ux*half)
	dc.LineTo(bx+uy*half, by-ux*half)
	dc.ClosePath()
	dc.Fill()
}

func drawText(dc *gg.Context, face font.Face, e *Element) {
	c, ok := rgba(e.attrs.Fill, e.attrs.Opacity)
	if !ok {
		return
	}
	dc.SetFontFace(face)
	dc.SetColor(c)
	dc.DrawStringAnchored(e.Text, e.X, e.Y, 0.5, 0)
}

func sortedStrings(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
