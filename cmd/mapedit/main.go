// mapedit is a terminal editor for signal map scenes.
//
// Drag from a source row to a destination row to draw a map. The mouse
// wheel scrolls, Ctrl+wheel zooms. See helpString for the keys.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/mapview/pkg/config"
	"github.com/ha1tch/mapview/pkg/listtable"
	"github.com/ha1tch/mapview/pkg/mapfile"
	"github.com/ha1tch/mapview/pkg/mapper"
	"github.com/ha1tch/mapview/pkg/mapview"
	"github.com/ha1tch/mapview/pkg/surface"
)

// View units per terminal cell.
const (
	cellWidth  = 6
	cellHeight = 10

	// rows reserved below the view for the help and status bars
	barRows = 2

	tickInterval = 50 * time.Millisecond
	wheelStep    = 20
	zoomDelta    = 10
)

// Mode represents the editor mode.
type Mode int

const (
	ModeView Mode = iota
	ModeInput
)

// MessageType for status messages.
type MessageType int

const (
	MsgInfo MessageType = iota
	MsgError
	MsgSuccess
	MsgWarning
)

// Editor holds the editor state.
type Editor struct {
	screen tcell.Screen
	cfg    *config.Config
	log    *slog.Logger

	filename string
	meta     mapfile.Meta
	model    *mapper.Model
	modified bool

	kind   mapview.Kind
	scene  *surface.Scene
	tables *mapview.Tables
	view   *mapview.View

	mode              Mode
	message           string
	messageType       MessageType
	messageFlashStart int64

	inputBuffer string
	inputPrompt string
	inputAction func(string)

	filters   map[mapper.Direction]string
	buttons   tcell.ButtonMask
	mouseX    int
	mouseY    int
	quitArmed bool

	animating atomic.Bool
	lastTick  time.Time
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		cfg = config.Default()
	}

	ed := &Editor{
		cfg:     cfg,
		log:     openLog(os.Getenv("MAPEDIT_LOG")),
		model:   mapper.New(),
		filters: make(map[mapper.Direction]string),
	}

	path := cfg.Editor.LastFile
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if path != "" {
		if err := ed.loadFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", path, err)
			os.Exit(1)
		}
	}
	ed.kind = ed.initialKind()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing screen: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse()
	screen.Clear()
	ed.screen = screen

	if err := ed.buildView(); err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if ed.filename == "" {
		ed.showMessage("No scene loaded", MsgWarning)
	}

	ed.run()

	ed.view.Cleanup()
	screen.Fini()
}

// openLog returns a debug logger writing to path, or a discarding logger
// when path is empty. The terminal belongs to tcell.
func openLog(path string) *slog.Logger {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (ed *Editor) initialKind() mapview.Kind {
	for _, name := range []string{ed.meta.View, ed.cfg.View.Kind} {
		if k, err := mapview.ParseKind(name); err == nil {
			return k
		}
	}
	return mapview.KindList
}

// frame returns the view size in view units for the current terminal.
func (ed *Editor) frame() mapview.Rect {
	w, h := ed.screen.Size()
	h -= barRows
	if h < 1 {
		h = 1
	}
	return mapview.Rect{Width: float64(w * cellWidth), Height: float64(h * cellHeight)}
}

// buildView creates a fresh scene and view of ed.kind, replacing any
// existing view.
func (ed *Editor) buildView() error {
	if ed.view != nil {
		ed.view.Cleanup()
	}
	f := ed.frame()
	ed.scene = surface.New(f.Width, f.Height)
	ed.tables = listtable.Arrange(ed.kind, f.Width, f.Height, 0)

	opts := ed.cfg.ViewOptions(ed.log)
	opts.Status = ed
	opts.OnCommit = ed.commit
	v, err := mapview.New(ed.kind, f, ed.tables, ed.scene, ed.model, opts)
	if err != nil {
		return err
	}
	ed.view = v
	for dir, text := range ed.filters {
		if err := v.FilterSignals(dir, text); err != nil {
			ed.showMessage(err.Error(), MsgError)
		}
	}
	ed.scene.Settle()
	return nil
}

// SetStatus shows viewport status in the status bar.
func (ed *Editor) SetStatus(text string, _, _ float64) {
	ed.showMessage(text, MsgInfo)
}

// commit is told about every map drawn with the mouse. Table views add
// the map themselves; on the canvas the editor does.
func (ed *Editor) commit(src, dst string) {
	key := mapper.MapKey(src, dst)
	if ed.kind == mapview.KindCanvas {
		_, err := ed.model.Connect(src, dst, mapper.StatusActive)
		switch {
		case errors.Is(err, mapper.ErrDuplicate):
			ed.showMessage("Map "+key+" already exists", MsgWarning)
			return
		case err != nil:
			ed.showMessage(err.Error(), MsgError)
			return
		}
	}
	ed.modified = true
	ed.log.Debug("map committed", "map", key)
	ed.showMessage("Connected "+key, MsgSuccess)
}

// tick calls post every interval while active reports true, until done is
// closed.
func tick(interval time.Duration, done <-chan struct{}, active func() bool, post func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if active() {
				post()
			}
		}
	}
}

func (ed *Editor) run() {
	// Tick while animations or the message flash need frames.
	done := make(chan struct{})
	defer close(done)
	go tick(tickInterval, done, ed.animating.Load, func() {
		ed.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})

	ed.lastTick = time.Now()
	for {
		ed.draw()
		ed.screen.Show()
		ed.animating.Store(ed.scene.Animating() || ed.flashing())

		ev := ed.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			ed.screen.Sync()
			ed.resize()
		case *tcell.EventKey:
			if ed.handleKey(ev) {
				return
			}
		case *tcell.EventMouse:
			ed.handleMouse(ev)
		case *tcell.EventInterrupt:
			now := time.Now()
			ed.scene.Advance(now.Sub(ed.lastTick))
			ed.lastTick = now
		}
		if !ed.animating.Load() {
			ed.lastTick = time.Now()
		}
	}
}

func (ed *Editor) resize() {
	f := ed.frame()
	ed.scene.Width, ed.scene.Height = f.Width, f.Height
	listtable.Resize(ed.tables, f.Width, f.Height, 0)
	ed.view.Resize(f)
}

func (ed *Editor) flashing() bool {
	if ed.message == "" || ed.messageFlashStart == 0 {
		return false
	}
	elapsed := time.Now().UnixMilli() - ed.messageFlashStart
	return elapsed >= 0 && elapsed < flashPeriod
}

func (ed *Editor) handleKey(ev *tcell.EventKey) bool {
	if ed.mode == ModeInput {
		ed.handleInputKey(ev)
		return false
	}

	if ev.Key() != tcell.KeyRune || (ev.Rune() != 'q' && ev.Rune() != 'Q') {
		ed.quitArmed = false
	}

	switch ev.Key() {
	case tcell.KeyCtrlC:
		return true
	case tcell.KeyCtrlS:
		ed.save()
		return false
	case tcell.KeyEscape:
		ed.view.Escape()
		return false
	case tcell.KeyTab:
		ed.cycleKind()
		return false
	case tcell.KeyRune:
	default:
		return false
	}

	switch ev.Rune() {
	case 'q', 'Q':
		if ed.modified && !ed.quitArmed {
			ed.quitArmed = true
			ed.showMessage("Unsaved changes, press q again to quit", MsgWarning)
			return false
		}
		return true
	case 's', 'S':
		ed.save()
	case '/':
		ed.promptFilter(mapper.DirOutput, "Source filter: ")
	case '?':
		ed.promptFilter(mapper.DirInput, "Destination filter: ")
	case 'c', 'C':
		ed.toggleDeviceAtMouse()
	case 'a', 'A':
		ed.activateStaged()
	case 'r', 'R':
		if ed.kind != mapview.KindCanvas {
			return false
		}
		ed.view.Viewport().Reset()
		ed.view.Draw(0)
		ed.showMessage("View reset", MsgInfo)
	case 'w', 'W':
		ed.promptSaveAs()
	}
	return false
}

func (ed *Editor) handleInputKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		ed.mode = ModeView
	case tcell.KeyEnter:
		ed.mode = ModeView
		if ed.inputAction != nil {
			ed.inputAction(ed.inputBuffer)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(ed.inputBuffer) > 0 {
			r := []rune(ed.inputBuffer)
			ed.inputBuffer = string(r[:len(r)-1])
		}
	case tcell.KeyRune:
		ed.inputBuffer += string(ev.Rune())
	}
}

func (ed *Editor) prompt(label, initial string, action func(string)) {
	ed.mode = ModeInput
	ed.inputPrompt = label
	ed.inputBuffer = initial
	ed.inputAction = action
}

func (ed *Editor) promptFilter(dir mapper.Direction, label string) {
	ed.prompt(label, ed.filters[dir], func(text string) {
		if err := ed.view.FilterSignals(dir, text); err != nil {
			ed.showMessage(err.Error(), MsgError)
			return
		}
		if text == "" {
			delete(ed.filters, dir)
			ed.showMessage("Filter cleared", MsgInfo)
			return
		}
		ed.filters[dir] = text
		ed.showMessage("Filter: "+text, MsgInfo)
	})
}

func (ed *Editor) promptSaveAs() {
	ed.prompt("Save as: ", ed.filename, func(path string) {
		path = strings.TrimSpace(path)
		if path == "" {
			return
		}
		ed.filename = path
		ed.save()
	})
}

func (ed *Editor) cycleKind() {
	next := map[mapview.Kind]mapview.Kind{
		mapview.KindList:   mapview.KindGrid,
		mapview.KindGrid:   mapview.KindCanvas,
		mapview.KindCanvas: mapview.KindList,
	}[ed.kind]
	ed.kind = next
	if err := ed.buildView(); err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	ed.meta.View = string(next)
	ed.showMessage(string(next)+" view", MsgInfo)
}

// viewPoint converts a cell position to view coordinates at the cell
// centre.
func viewPoint(x, y int) (float64, float64) {
	return float64(x)*cellWidth + cellWidth/2, float64(y)*cellHeight + cellHeight/2
}

func (ed *Editor) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	buttons := ev.Buttons()
	vx, vy := viewPoint(x, y)
	ed.mouseX, ed.mouseY = x, y

	if ed.mode == ModeInput {
		return
	}

	zoom := ev.Modifiers()&tcell.ModCtrl != 0
	switch {
	case buttons&tcell.WheelUp != 0:
		ed.wheel(vx, vy, 0, -wheelStep, zoom)
		return
	case buttons&tcell.WheelDown != 0:
		ed.wheel(vx, vy, 0, wheelStep, zoom)
		return
	case buttons&tcell.WheelLeft != 0:
		ed.view.Wheel(vx, vy, -wheelStep, 0, false)
		return
	case buttons&tcell.WheelRight != 0:
		ed.view.Wheel(vx, vy, wheelStep, 0, false)
		return
	}

	pressed := buttons&tcell.Button1 != 0
	wasPressed := ed.buttons&tcell.Button1 != 0
	switch {
	case pressed && !wasPressed:
		ed.view.PointerDown(vx, vy)
	case !pressed && wasPressed:
		ed.view.PointerMove(vx, vy)
		ed.view.PointerUp(vx, vy)
	default:
		ed.view.PointerMove(vx, vy)
	}
	ed.buttons = buttons
}

func (ed *Editor) wheel(x, y, dx, dy float64, zoom bool) {
	if zoom {
		delta := float64(zoomDelta)
		if dy > 0 {
			delta = -delta
		}
		ed.view.Wheel(x, y, 0, delta, true)
		return
	}
	ed.view.Wheel(x, y, dx, dy, false)
}

// toggleDeviceAtMouse collapses the device under the mouse. In table
// views the device row is used, on the canvas the nearest signal's
// device.
func (ed *Editor) toggleDeviceAtMouse() {
	vx, vy := viewPoint(ed.mouseX, ed.mouseY)
	p := mapview.Point{X: vx, Y: vy}

	if ed.kind == mapview.KindCanvas {
		key, _, ok := ed.view.SignalAt(p)
		if !ok {
			ed.showMessage("No signal under cursor", MsgWarning)
			return
		}
		dev, _, _ := strings.Cut(key, "/")
		if ed.view.ToggleDevice(dev) {
			ed.modified = true
		}
		return
	}

	_, row := ed.tables.Hit(p)
	if row == nil || !row.Device {
		ed.showMessage("Point at a device row to collapse it", MsgWarning)
		return
	}
	// A press on a device row collapses it through the drag controller.
	ed.view.PointerDown(vx, vy)
	ed.view.PointerUp(vx, vy)
	ed.modified = true
}

// activateStaged switches every staged map to active.
func (ed *Editor) activateStaged() {
	n := 0
	ed.model.Maps.Each(func(mp *mapper.Map) bool {
		if mp.Status == mapper.StatusStaged {
			mp.Status = mapper.StatusActive
			n++
		}
		return true
	})
	if n == 0 {
		ed.showMessage("No staged maps", MsgInfo)
		return
	}
	ed.modified = true
	ed.view.Update()
	ed.view.Draw(ed.cfg.Animation())
	ed.showMessage(fmt.Sprintf("Activated %d maps", n), MsgSuccess)
}

func (ed *Editor) showMessage(msg string, msgType MessageType) {
	ed.message = msg
	ed.messageType = msgType
	ed.messageFlashStart = time.Now().UnixMilli()
	if ed.screen != nil {
		ed.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}
}

// File operations

func (ed *Editor) loadFile(path string) error {
	m, meta, err := mapfile.ReadFile(path)
	if err != nil {
		return err
	}
	ed.model = m
	ed.meta = meta
	ed.filename = path
	ed.modified = false
	ed.log.Info("loaded scene", "path", path, "devices", m.Devices.Len(), "maps", m.Maps.Len())
	return nil
}

func (ed *Editor) save() {
	if ed.filename == "" {
		ed.promptSaveAs()
		return
	}
	if ed.meta.Name == "" {
		ed.meta.Name = strings.TrimSuffix(filepath.Base(ed.filename), filepath.Ext(ed.filename))
	}
	if err := mapfile.WriteFile(ed.filename, ed.model, ed.meta); err != nil {
		ed.showMessage("Save failed: "+err.Error(), MsgError)
		return
	}
	ed.modified = false
	ed.quitArmed = false

	if abs, err := filepath.Abs(ed.filename); err == nil {
		ed.cfg.Editor.LastFile = abs
		if err := config.Save(ed.cfg); err != nil {
			ed.log.Warn("saving config failed", "err", err)
		}
	}
	ed.showMessage("Saved "+filepath.Base(ed.filename), MsgSuccess)
}
