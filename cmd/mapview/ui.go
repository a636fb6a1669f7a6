package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/ha1tch/mapview/pkg/mapper"
)

var (
	brand  = color.New(color.FgHiCyan, color.Bold)
	subtle = color.New(color.FgHiBlack)
	warn   = color.New(color.FgYellow)
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
)

func statusIcon(ok bool) string {
	if ok {
		return good.Sprint("✓")
	}
	return bad.Sprint("✗")
}

// cell is one listing entry. Padding is computed on text, style is applied
// afterwards so escape codes never skew the columns.
type cell struct {
	text  string
	style *color.Color
}

func plain(s string) cell { return cell{text: s} }

// statusCell marks active maps green and staged ones yellow.
func statusCell(s mapper.Status) cell {
	if s == mapper.StatusActive {
		return cell{"● " + string(s), good}
	}
	return cell{"○ " + string(s), warn}
}

// listing is a column-aligned block of rows under a dimmed header.
type listing struct {
	headers []string
	rows    [][]cell
}

func newListing(headers ...string) *listing {
	return &listing{headers: headers}
}

func (l *listing) add(cells ...cell) {
	l.rows = append(l.rows, cells)
}

func (l *listing) widths() []int {
	w := make([]int, len(l.headers))
	for i, h := range l.headers {
		w[i] = runewidth.StringWidth(h)
	}
	for _, row := range l.rows {
		for i, c := range row {
			if i < len(w) {
				w[i] = max(w[i], runewidth.StringWidth(c.text))
			}
		}
	}
	return w
}

// lines renders the header, a rule and one line per row. The last column
// is not padded.
func (l *listing) lines() []string {
	w := l.widths()
	last := len(w) - 1

	var header, rule strings.Builder
	header.WriteString("  ")
	rule.WriteString("  ")
	for i, h := range l.headers {
		if i < last {
			header.WriteString(runewidth.FillRight(h, w[i]) + "  ")
		} else {
			header.WriteString(h)
		}
		rule.WriteString(strings.Repeat("─", w[i]))
		if i < last {
			rule.WriteString("  ")
		}
	}
	out := []string{subtle.Sprint(header.String()), subtle.Sprint(rule.String())}

	for _, row := range l.rows {
		var b strings.Builder
		b.WriteString("  ")
		for i, c := range row {
			if i > last {
				break
			}
			text := c.text
			if i < last {
				text = runewidth.FillRight(text, w[i])
			}
			if c.style != nil {
				// Style the text only, not the padding.
				pad := text[len(c.text):]
				text = c.style.Sprint(c.text) + pad
			}
			b.WriteString(text)
			if i < last {
				b.WriteString("  ")
			}
		}
		out = append(out, strings.TrimRight(b.String(), " "))
	}
	return out
}

// print writes the listing, or nothing when it has no rows.
func (l *listing) print() {
	if len(l.rows) == 0 {
		return
	}
	for _, line := range l.lines() {
		fmt.Println(line)
	}
}
