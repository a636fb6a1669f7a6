package main

import (
	"math"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ha1tch/mapview/pkg/listtable"
	"github.com/ha1tch/mapview/pkg/mapview"
	"github.com/ha1tch/mapview/pkg/surface"
)

// Styles
var (
	styleDefault    = tcell.StyleDefault
	styleRow        = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.NewRGBColor(43, 43, 43))
	styleDeviceRow  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.NewRGBColor(58, 58, 58)).Bold(true)
	styleRowHi      = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
	styleStatus     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgInfo    = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgError   = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleMsgSuccess = tcell.StyleDefault.Foreground(tcell.ColorGreen).Background(tcell.ColorNavy)
	styleMsgWarning = tcell.StyleDefault.Foreground(tcell.ColorYellow).Background(tcell.ColorNavy)
	styleHelp       = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleInput      = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	styleBorder     = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// Message flash: normal, inverted, normal, inverted, then steady.
const (
	flashPhase  = 125
	flashPeriod = 4 * flashPhase
)

// background the scene colours are blended against
var background = colorful.Color{R: 0.13, G: 0.13, B: 0.13}

// cellMap projects view coordinates onto terminal cells.
type cellMap struct {
	box        mapview.Rect
	cols, rows int
}

func (cm cellMap) scale() (float64, float64) {
	return float64(cm.cols) / cm.box.Width, float64(cm.rows) / cm.box.Height
}

// cell returns the cell holding p, and whether it is on screen.
func (cm cellMap) cell(p mapview.Point) (int, int, bool) {
	if cm.box.Width <= 0 || cm.box.Height <= 0 {
		return 0, 0, false
	}
	sx, sy := cm.scale()
	x := int(math.Floor((p.X - cm.box.Left) * sx))
	y := int(math.Floor((p.Y - cm.box.Top) * sy))
	return x, y, x >= 0 && y >= 0 && x < cm.cols && y < cm.rows
}

// cellRect returns the cells covered by r, clipped to the screen.
func (cm cellMap) cellRect(r mapview.Rect) (x0, y0, x1, y1 int) {
	sx, sy := cm.scale()
	x0 = int(math.Round((r.Left - cm.box.Left) * sx))
	y0 = int(math.Round((r.Top - cm.box.Top) * sy))
	x1 = int(math.Round((r.Right() - cm.box.Left) * sx))
	y1 = int(math.Round((r.Bottom() - cm.box.Top) * sy))
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, cm.cols), min(y1, cm.rows)
	return
}

// strokeRune picks a line character for a curve heading along tangent,
// with y growing downwards.
func strokeRune(tangent mapview.Point) rune {
	dx, dy := math.Abs(tangent.X), math.Abs(tangent.Y)
	switch {
	case dx >= 2*dy:
		return '─'
	case dy >= 2*dx:
		return '│'
	case (tangent.X > 0) == (tangent.Y > 0):
		return '╲'
	default:
		return '╱'
	}
}

// arrowRune picks an arrowhead for a curve ending along tangent.
func arrowRune(tangent mapview.Point) rune {
	if math.Abs(tangent.X) >= math.Abs(tangent.Y) {
		if tangent.X < 0 {
			return '◀'
		}
		return '▶'
	}
	if tangent.Y < 0 {
		return '▲'
	}
	return '▼'
}

// shade converts a scene colour at the given opacity to a terminal colour.
// Fully transparent colours report false.
func shade(c string, opacity float64) (tcell.Color, bool) {
	if opacity <= 0.05 {
		return tcell.ColorDefault, false
	}
	col, ok := surface.ParseColor(c)
	if !ok {
		return tcell.ColorDefault, false
	}
	if opacity < 1 {
		col = background.BlendRgb(col, opacity)
	}
	r, g, b := col.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b)), true
}

func (ed *Editor) draw() {
	ed.screen.Clear()
	w, h := ed.screen.Size()

	rows := h - barRows
	if rows > 0 {
		frame := cellMap{
			box:  mapview.Rect{Width: ed.scene.Width, Height: ed.scene.Height},
			cols: w, rows: rows,
		}
		ed.drawTables(frame)
		ed.drawScene(cellMap{box: ed.scene.ViewBox(), cols: w, rows: rows})
	}

	if ed.mode == ModeInput {
		ed.drawInputBox(w, h)
	}
	ed.drawStatusBar(w, h)
}

// drawTables paints the table rows. Tables live in frame coordinates and
// ignore the canvas view box.
func (ed *Editor) drawTables(cm cellMap) {
	ed.tables.Each(func(_ mapview.Role, t mapview.Table) bool {
		tbl, ok := t.(*listtable.Table)
		if !ok {
			return true
		}
		b := tbl.Bounds()
		bx0, by0, bx1, by1 := cm.cellRect(b)
		for _, row := range tbl.Rows() {
			style := styleRow
			if row.Device {
				style = ed.deviceStyle(row.ID)
			}
			if tbl.IsHighlighted(row.ID) {
				style = styleRowHi
			}
			x0, y0, x1, y1 := cm.cellRect(row.Rect())
			x0, y0 = max(x0, bx0), max(y0, by0)
			x1, y1 = min(x1, bx1), min(y1, by1)
			if x1 <= x0 || y1 <= y0 {
				continue
			}
			ed.fill(x0, y0, x1, y1, style)
			label := truncate(row.Label, x1-x0-1)
			ed.drawString(x0+1, y0+(y1-y0-1)/2, label, style)
		}
		return true
	})
}

// deviceStyle tints a device row with the device colour.
func (ed *Editor) deviceStyle(key string) tcell.Style {
	dev, ok := ed.model.Devices.Find(key)
	if !ok {
		return styleDeviceRow
	}
	if bg, ok := shade(dev.Color, 0.5); ok {
		return styleDeviceRow.Background(bg)
	}
	return styleDeviceRow
}

func (ed *Editor) drawScene(cm cellMap) {
	for _, e := range ed.scene.Elements() {
		a := e.Attrs()
		switch e.Kind {
		case surface.KindPath:
			ed.drawPath(cm, a)
		case surface.KindText:
			fg, ok := shade(a.Fill, a.Opacity)
			if !ok {
				continue
			}
			x, y, _ := cm.cell(mapview.Point{X: e.X, Y: e.Y})
			ed.drawString(x-len(e.Text)/2, y, e.Text, styleDefault.Foreground(fg))
		}
	}
}

func (ed *Editor) drawPath(cm cellMap, a mapview.Attrs) {
	if len(a.Path) == 0 {
		return
	}
	// Table views paint device outlines as tinted rows instead.
	if ed.kind == mapview.KindCanvas && a.Path.Closed() && a.Fill != "" && a.Fill != "none" {
		if bg, ok := shade(a.Fill, a.FillOpacity*a.Opacity); ok {
			x0, y0, x1, y1 := cm.cellRect(a.Path.Bounds())
			ed.fill(x0, y0, x1, y1, styleDefault.Background(bg))
		}
	}

	fg, ok := shade(a.Stroke, a.StrokeOpacity*a.Opacity)
	if !ok || a.Stroke == "none" {
		return
	}
	style := styleDefault.Foreground(fg)
	sx, sy := cm.scale()
	for _, b := range a.Path.Cubics() {
		n := int(b.Length()*math.Max(sx, sy)*2) + 2
		for i := 0; i <= n; i++ {
			t := float64(i) / float64(n)
			x, y, on := cm.cell(b.At(t))
			if !on {
				continue
			}
			ed.screen.SetContent(x, y, strokeRune(b.Tangent(t)), nil, style.Background(ed.backgroundAt(x, y)))
		}
	}

	if a.ArrowEnd != "" && a.ArrowEnd != "none" {
		if x, y, on := cm.cell(a.Path.End()); on {
			ed.screen.SetContent(x, y, arrowRune(a.Path.TangentAt(a.Path.Length())), nil, style)
		}
	}
}

// backgroundAt keeps fills visible under strokes drawn over them.
func (ed *Editor) backgroundAt(x, y int) tcell.Color {
	_, _, st, _ := ed.screen.GetContent(x, y)
	_, bg, _ := st.Decompose()
	return bg
}

func (ed *Editor) fill(x0, y0, x1, y1 int, style tcell.Style) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			ed.screen.SetContent(x, y, ' ', nil, style)
		}
	}
}

func (ed *Editor) drawStatusBar(w, h int) {
	y := h - 1

	// Background
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	// File info
	fileInfo := "[New]"
	if ed.filename != "" {
		if len(ed.filename) > 30 {
			fileInfo = filepath.Base(ed.filename)
		} else {
			fileInfo = ed.filename
		}
	}
	if ed.modified {
		fileInfo += " *"
	}
	ed.drawString(1, y, fileInfo, styleStatus)

	// View kind
	kind := string(ed.kind)
	ed.drawString(w/2-len(kind)/2, y, kind, styleStatus)

	// Message
	if ed.message != "" {
		style := messageStyle(ed.messageType)
		if flashes(ed.messageType) && inverted(time.Now().UnixMilli()-ed.messageFlashStart) {
			style = style.Reverse(true)
		}
		ed.drawString(w-len([]rune(ed.message))-2, y, ed.message, style)
	}

	// Help bar
	y = h - 2
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleDefault)
	}
	ed.drawString(1, y, ed.helpString(), styleHelp)
}

func messageStyle(t MessageType) tcell.Style {
	switch t {
	case MsgError:
		return styleMsgError
	case MsgSuccess:
		return styleMsgSuccess
	case MsgWarning:
		return styleMsgWarning
	}
	return styleMsgInfo
}

// flashes reports whether messages of type t flash when shown.
func flashes(t MessageType) bool {
	return t != MsgInfo
}

// inverted reports whether a flashing message is drawn reversed elapsed
// milliseconds after it was shown.
func inverted(elapsed int64) bool {
	if elapsed < 0 || elapsed >= flashPeriod {
		return false
	}
	phase := elapsed / flashPhase
	return phase == 1 || phase == 3
}

func (ed *Editor) drawInputBox(w, h int) {
	boxW := 50
	if boxW > w-2 {
		boxW = w - 2
	}
	boxH := 3
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	ed.drawBox(boxX, boxY, boxW, boxH, styleInput)
	ed.drawString(boxX+2, boxY+1, ed.inputPrompt, styleInput)
	ed.drawString(boxX+2+len(ed.inputPrompt), boxY+1, ed.inputBuffer+"_", styleInput)
}

func (ed *Editor) drawBox(x, y, w, h int, style tcell.Style) {
	// Corners
	ed.screen.SetContent(x, y, '┌', nil, styleBorder)
	ed.screen.SetContent(x+w-1, y, '┐', nil, styleBorder)
	ed.screen.SetContent(x, y+h-1, '└', nil, styleBorder)
	ed.screen.SetContent(x+w-1, y+h-1, '┘', nil, styleBorder)

	for i := x + 1; i < x+w-1; i++ {
		ed.screen.SetContent(i, y, '─', nil, styleBorder)
		ed.screen.SetContent(i, y+h-1, '─', nil, styleBorder)
	}
	for i := y + 1; i < y+h-1; i++ {
		ed.screen.SetContent(x, i, '│', nil, styleBorder)
		ed.screen.SetContent(x+w-1, i, '│', nil, styleBorder)
	}

	ed.fill(x+1, y+1, x+w-1, y+h-1, style)
}

func (ed *Editor) drawString(x, y int, s string, style tcell.Style) {
	i := 0
	for _, r := range s {
		ed.screen.SetContent(x+i, y, r, nil, style)
		i++
	}
}

func (ed *Editor) helpString() string {
	if ed.mode == ModeInput {
		return "Type text  Enter:Confirm  Esc:Cancel"
	}
	return "Drag:Map  Wheel:Scroll  Ctrl+Wheel:Zoom  Tab:View  /:Src filter  ?:Dst filter  C:Collapse  A:Activate  R:Reset  S:Save  W:Save as  Q:Quit"
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 {
		return ""
	}
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
