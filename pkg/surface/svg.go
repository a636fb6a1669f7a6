package surface

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/ha1tch/mapview/pkg/mapview"
)

// SVGOptions controls SVG export.
type SVGOptions struct {
	Width      int    // output width in pixels (0 = scene width)
	Height     int    // output height in pixels (0 = scene height)
	Background string // background colour, "" for transparent
	Title      string
}

// DefaultSVGOptions returns the dark background the editor uses.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Background: "#222222"}
}

// dashPatterns maps dash shorthands to multiples of the stroke width.
var dashPatterns = map[string][]float64{
	"-":   {3, 1},
	".":   {1, 1},
	"-.":  {3, 1, 1, 1},
	"--":  {8, 3},
	"- ":  {4, 3},
	". ":  {1, 3},
	"--.": {8, 3, 1, 3},
}

func dashArray(dash string, width float64) []float64 {
	pattern, ok := dashPatterns[dash]
	if !ok {
		return nil
	}
	if width < 1 {
		width = 1
	}
	out := make([]float64, len(pattern))
	for i, v := range pattern {
		out[i] = v * width
	}
	return out
}

func fmtNum(v float64) string {
	s := strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
	if s == "-0" {
		return "0"
	}
	return s
}

// SVG renders the scene's view box as an SVG document.
func (s *Scene) SVG(opts SVGOptions) string {
	vb := s.ViewBox()
	if opts.Width == 0 {
		opts.Width = int(s.Width)
	}
	if opts.Height == 0 {
		opts.Height = int(s.Height)
	}

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="%s %s %s %s">`+"\n",
		opts.Width, opts.Height, fmtNum(vb.Left), fmtNum(vb.Top), fmtNum(vb.Width), fmtNum(vb.Height))
	if opts.Title != "" {
		fmt.Fprintf(&sb, "  <title>%s</title>\n", html.EscapeString(opts.Title))
	}

	// One marker per stroke colour so arrowheads match their path.
	markers := make(map[string]bool)
	for _, e := range s.elements {
		a := e.attrs
		if e.Kind == KindPath && a.Has(mapview.AttrArrowEnd) && a.ArrowEnd != "" && a.ArrowEnd != "none" {
			markers[a.Stroke] = true
		}
	}
	if len(markers) > 0 {
		sb.WriteString("  <defs>\n")
		for _, stroke := range sortedStrings(markers) {
			fmt.Fprintf(&sb, `    <marker id="%s" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="5" markerHeight="3" orient="auto">`+"\n", markerID(stroke))
			fmt.Fprintf(&sb, `      <path d="M 0 0 L 10 5 L 0 10 z" fill="%s"/>`+"\n", html.EscapeString(stroke))
			sb.WriteString("    </marker>\n")
		}
		sb.WriteString("  </defs>\n")
	}

	if opts.Background != "" {
		fmt.Fprintf(&sb, `  <rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
			fmtNum(vb.Left), fmtNum(vb.Top), fmtNum(vb.Width), fmtNum(vb.Height), html.EscapeString(opts.Background))
	}

	for _, e := range s.elements {
		switch e.Kind {
		case KindPath:
			writePath(&sb, e.attrs)
		case KindText:
			writeText(&sb, e)
		}
	}
	sb.WriteString("</svg>\n")
	return sb.String()
}

func writePath(sb *strings.Builder, a mapview.Attrs) {
	if len(a.Path) == 0 {
		return
	}
	fmt.Fprintf(sb, `  <path d="%s" fill="%s" fill-opacity="%s" stroke="%s" stroke-opacity="%s" stroke-width="%s"`,
		a.Path.String(), html.EscapeString(orNone(a.Fill)), fmtNum(a.FillOpacity),
		html.EscapeString(orNone(a.Stroke)), fmtNum(a.StrokeOpacity), fmtNum(a.StrokeWidth))
	if a.Opacity != 1 {
		fmt.Fprintf(sb, ` opacity="%s"`, fmtNum(a.Opacity))
	}
	if dashes := dashArray(a.Dash, a.StrokeWidth); dashes != nil {
		parts := make([]string, len(dashes))
		for i, d := range dashes {
			parts[i] = fmtNum(d)
		}
		fmt.Fprintf(sb, ` stroke-dasharray="%s"`, strings.Join(parts, ","))
	}
	if a.LineCap != "" {
		fmt.Fprintf(sb, ` stroke-linecap="%s"`, html.EscapeString(a.LineCap))
	}
	if a.ArrowEnd != "" && a.ArrowEnd != "none" {
		fmt.Fprintf(sb, ` marker-end="url(#%s)"`, markerID(a.Stroke))
	}
	sb.WriteString("/>\n")
}

func writeText(sb *strings.Builder, e *Element) {
	a := e.attrs
	fmt.Fprintf(sb, `  <text x="%s" y="%s" font-family="sans-serif" font-size="%s" fill="%s" text-anchor="middle"`,
		fmtNum(e.X), fmtNum(e.Y), fmtNum(a.FontSize), html.EscapeString(orNone(a.Fill)))
	if a.Opacity != 1 {
		fmt.Fprintf(sb, ` opacity="%s"`, fmtNum(a.Opacity))
	}
	fmt.Fprintf(sb, ">%s</text>\n", html.EscapeString(e.Text))
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func markerID(stroke string) string {
	id := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, stroke)
	return mapview.ArrowBlock + "-" + id
}
