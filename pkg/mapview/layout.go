package mapview

import (
	"fmt"
	"regexp"

	"github.com/ha1tch/mapview/pkg/mapper"
)

// canvasCollapseMask is the collapse state toggled by clicking a device on
// the open canvas.
const canvasCollapseMask uint8 = 3

// Placement is where one visible device or signal is drawn.
type Placement struct {
	Index        int
	TableIndices []TableIndex // nil on the open canvas
	Position     *Point       // nil when table-anchored
}

// Layout is the visibility and placement of every entity for one update
// cycle. Entities missing from the layout are hidden.
type Layout struct {
	devices map[string]*Placement
	signals map[string]*Placement
	// visible signal count per device
	sigCount map[string]int
}

func newLayout() *Layout {
	return &Layout{
		devices:  make(map[string]*Placement),
		signals:  make(map[string]*Placement),
		sigCount: make(map[string]int),
	}
}

// Signal returns the placement of a visible signal.
func (l *Layout) Signal(key string) (*Placement, bool) {
	if l == nil {
		return nil, false
	}
	p, ok := l.signals[key]
	return p, ok
}

// Device returns the placement of a visible device.
func (l *Layout) Device(key string) (*Placement, bool) {
	if l == nil {
		return nil, false
	}
	p, ok := l.devices[key]
	return p, ok
}

// SignalIndex returns the dense index of a signal within its device.
// ok is false when the signal is hidden.
func (l *Layout) SignalIndex(key string) (index int, ok bool) {
	p, ok := l.Signal(key)
	if !ok {
		return 0, false
	}
	return p.Index, true
}

// DeviceIndex returns the dense global index of a device.
func (l *Layout) DeviceIndex(key string) (index int, ok bool) {
	p, ok := l.Device(key)
	if !ok {
		return 0, false
	}
	return p.Index, true
}

// NumDevices returns the number of visible devices.
func (l *Layout) NumDevices() int { return len(l.devices) }

// NumSignals returns the number of visible signals.
func (l *Layout) NumSignals() int { return len(l.signals) }

// VisibleSignals returns the number of visible signals on a device.
func (l *Layout) VisibleSignals(devKey string) int { return l.sigCount[devKey] }

// Indexer assigns visibility, dense indices and positions to devices and
// signals under the active name filters.
type Indexer struct {
	tables *Tables
	src    *regexp.Regexp // output signals
	dst    *regexp.Regexp // input signals
}

// NewIndexer creates an indexer. tables may be nil for the open canvas.
func NewIndexer(tables *Tables) *Indexer {
	return &Indexer{tables: tables}
}

// SetFilter installs a case-insensitive name filter for one direction.
// Empty text removes the filter. On error the previous filter is kept.
func (ix *Indexer) SetFilter(dir mapper.Direction, text string) error {
	var re *regexp.Regexp
	if text != "" {
		var err error
		re, err = regexp.Compile("(?i)" + text)
		if err != nil {
			return fmt.Errorf("filter %q: %w", text, err)
		}
	}
	switch dir {
	case mapper.DirOutput:
		ix.src = re
	case mapper.DirInput:
		ix.dst = re
	default:
		return fmt.Errorf("filter %q: invalid direction %q", text, dir)
	}
	return nil
}

// Filter returns the active pattern for dir, or "".
func (ix *Indexer) Filter(dir mapper.Direction) string {
	re := ix.dst
	if dir == mapper.DirOutput {
		re = ix.src
	}
	if re == nil {
		return ""
	}
	return re.String()[len("(?i)"):]
}

func (ix *Indexer) matches(s *mapper.Signal) bool {
	re := ix.dst
	if s.Direction == mapper.DirOutput {
		re = ix.src
	}
	return re == nil || re.MatchString(s.Key)
}

func (ix *Indexer) collapsed(d *mapper.Device) bool {
	mask := canvasCollapseMask
	if ix.tables.Len() > 0 {
		mask = ix.tables.CollapseMask()
	}
	return d.Collapsed&mask == mask
}

// Index recomputes the layout from scratch.
func (ix *Indexer) Index(m *mapper.Model, frame Rect) *Layout {
	tabled := ix.tables.Len() > 0
	ix.tables.Each(func(_ Role, t Table) bool {
		t.Update(m, frame.Height)
		return true
	})

	l := newLayout()
	devIndex := 0
	var order []*mapper.Device

	m.Devices.Each(func(dev *mapper.Device) bool {
		hideAll := ix.collapsed(dev)
		sigIndex := 0
		dev.Signals.Each(func(sig *mapper.Signal) bool {
			if hideAll || !ix.matches(sig) {
				return true
			}
			p := &Placement{Index: sigIndex}
			if tabled {
				p.TableIndices = ix.tables.Indices(sig.Key, sig.Direction)
				if len(p.TableIndices) == 0 {
					return true
				}
			}
			sigIndex++
			l.signals[sig.Key] = p
			return true
		})
		if sigIndex == 0 {
			return true
		}

		p := &Placement{Index: devIndex}
		if tabled {
			p.TableIndices = ix.tables.Indices(dev.Key, mapper.DirAny)
			if len(p.TableIndices) == 0 {
				// Keep its signals but hide the device itself.
				l.sigCount[dev.Key] = sigIndex
				return true
			}
		}
		devIndex++
		l.devices[dev.Key] = p
		l.sigCount[dev.Key] = sigIndex
		order = append(order, dev)
		return true
	})

	if !tabled {
		ix.place(l, order, frame)
	}
	return l
}

// place assigns free positions on the open canvas. Signals with a model
// position keep it; the rest are spread in one column per device with
// outputs to the left of inputs.
func (ix *Indexer) place(l *Layout, devices []*mapper.Device, frame Rect) {
	n := float64(len(devices) + 1)
	for _, dev := range devices {
		dp := l.devices[dev.Key]
		cx := frame.Left + frame.Width*float64(dp.Index+1)/n
		rows := float64(l.sigCount[dev.Key] + 1)
		dev.Signals.Each(func(sig *mapper.Signal) bool {
			sp, ok := l.signals[sig.Key]
			if !ok {
				return true
			}
			if sig.Position != nil {
				sp.Position = &Point{sig.Position.X, sig.Position.Y}
				return true
			}
			x := cx + 20
			if sig.Direction == mapper.DirOutput {
				x = cx - 20
			}
			y := frame.Top + frame.Height*float64(sp.Index+1)/rows
			sp.Position = &Point{x, y}
			return true
		})
	}
}
