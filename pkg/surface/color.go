package surface

import (
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var named = map[string]string{
	"white": "#ffffff",
	"black": "#000000",
	"red":   "#ff0000",
	"green": "#008000",
	"blue":  "#0000ff",
	"gray":  "#808080",
	"grey":  "#808080",
}

// ParseColor parses a colour name or #rgb/#rrggbb hex string.
// "none" and "" are reported as not ok.
func ParseColor(s string) (colorful.Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" {
		return colorful.Color{}, false
	}
	if hex, ok := named[s]; ok {
		s = hex
	}
	if len(s) == 4 && s[0] == '#' {
		s = string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, false
	}
	return c, true
}

// blendColor mixes two colours in Lab space. If either cannot be parsed
// the target is returned once t reaches 1.
func blendColor(from, to string, t float64) string {
	a, okA := ParseColor(from)
	b, okB := ParseColor(to)
	if !okA || !okB {
		if t >= 1 {
			return to
		}
		return from
	}
	return a.BlendLab(b, t).Clamped().Hex()
}

// rgba converts a colour and opacity to an image colour.
func rgba(s string, opacity float64) (color.NRGBA, bool) {
	c, ok := ParseColor(s)
	if !ok || opacity <= 0 {
		return color.NRGBA{}, false
	}
	if opacity > 1 {
		opacity = 1
	}
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(opacity*255 + 0.5)}, true
}
