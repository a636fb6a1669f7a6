// Package mapper provides the device, signal and map model edited by mapview.
package mapper

import (
	"errors"
	"fmt"
	"strings"
)

// Direction is the data flow direction of a signal.
type Direction string

const (
	DirAny    Direction = ""
	DirInput  Direction = "input"
	DirOutput Direction = "output"
)

// Status is the lifecycle status of a map.
type Status string

const (
	StatusStaged Status = "staged"
	StatusActive Status = "active"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// Position is a free canvas coordinate.
type Position struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
}

// Device owns an ordered set of signals.
type Device struct {
	Key       string
	Color     string
	Collapsed uint8 // one bit per table role
	Signals   *Collection[*Signal]
}

// EntityKey implements Keyed.
func (d *Device) EntityKey() string { return d.Key }

// AddSignal adds a signal named name to the device, returning the existing
// signal if one with the same name is already present.
func (d *Device) AddSignal(name string, dir Direction) *Signal {
	key := d.Key + "/" + name
	if s, ok := d.Signals.Find(key); ok {
		return s
	}
	s := &Signal{Key: key, Name: name, Direction: dir, Device: d}
	d.Signals.Add(s)
	return s
}

// Signal is a directional endpoint belonging to a device.
type Signal struct {
	Key       string // "device/name"
	Name      string
	Direction Direction
	Device    *Device
	Position  *Position // set for signals placed freely on the canvas
}

// EntityKey implements Keyed.
func (s *Signal) EntityKey() string { return s.Key }

// Map is a directed connection between two signals.
type Map struct {
	Key      string
	Src, Dst *Signal
	Status   Status
	Muted    bool
	Selected bool
	Hidden   bool
}

// EntityKey implements Keyed.
func (m *Map) EntityKey() string { return m.Key }

// MapKey returns the key of a map from src to dst.
func MapKey(src, dst string) string {
	return src + "->" + dst
}

// ChangeKind identifies a model mutation.
type ChangeKind int

const (
	DeviceAdded ChangeKind = iota
	DeviceRemoved
	MapAdded
	MapRemoved
)

// Change describes one model mutation.
type Change struct {
	Kind ChangeKind
	Key  string
}

// Model holds devices and the maps between their signals.
type Model struct {
	Devices *Collection[*Device]
	Maps    *Collection[*Map]

	listeners map[int]func(Change)
	nextID    int
}

// New creates an empty model.
func New() *Model {
	return &Model{
		Devices:   NewCollection[*Device](),
		Maps:      NewCollection[*Map](),
		listeners: make(map[int]func(Change)),
	}
}

// OnChange registers fn to be called after every mutation.
// The returned function detaches the listener.
func (m *Model) OnChange(fn func(Change)) func() {
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() { delete(m.listeners, id) }
}

func (m *Model) notify(c Change) {
	for id := 0; id < m.nextID; id++ {
		if fn, ok := m.listeners[id]; ok {
			fn(c)
		}
	}
}

// AddDevice adds a device, returning the existing one if key is taken.
func (m *Model) AddDevice(key, color string) *Device {
	if d, ok := m.Devices.Find(key); ok {
		return d
	}
	d := &Device{Key: key, Color: color, Signals: NewCollection[*Signal]()}
	m.Devices.Add(d)
	m.notify(Change{Kind: DeviceAdded, Key: key})
	return d
}

// RemoveDevice removes a device and every map touching its signals.
func (m *Model) RemoveDevice(key string) bool {
	d, ok := m.Devices.Find(key)
	if !ok {
		return false
	}
	m.Maps.Each(func(mp *Map) bool {
		if mp.Src.Device == d || mp.Dst.Device == d {
			m.RemoveMap(mp.Key)
		}
		return true
	})
	m.Devices.Remove(key)
	m.notify(Change{Kind: DeviceRemoved, Key: key})
	return true
}

// FindSignal looks up a signal by its full "device/name" key.
func (m *Model) FindSignal(key string) (*Signal, bool) {
	if devKey, _, ok := strings.Cut(key, "/"); ok {
		if d, ok := m.Devices.Find(devKey); ok {
			if s, ok := d.Signals.Find(key); ok {
				return s, true
			}
		}
	}
	// Device keys may themselves contain a slash.
	var found *Signal
	m.Devices.Each(func(d *Device) bool {
		if s, ok := d.Signals.Find(key); ok {
			found = s
			return false
		}
		return true
	})
	return found, found != nil
}

// AddMap connects src to dst. If the map already exists it is returned
// together with ErrDuplicate.
func (m *Model) AddMap(src, dst *Signal, status Status) (*Map, error) {
	if src == nil || dst == nil {
		return nil, fmt.Errorf("add map: %w: nil endpoint", ErrNotFound)
	}
	key := MapKey(src.Key, dst.Key)
	if existing, ok := m.Maps.Find(key); ok {
		return existing, fmt.Errorf("add map %s: %w", key, ErrDuplicate)
	}
	mp := &Map{Key: key, Src: src, Dst: dst, Status: status}
	m.Maps.Add(mp)
	m.notify(Change{Kind: MapAdded, Key: key})
	return mp, nil
}

// Connect adds a map between two signals given by key.
func (m *Model) Connect(srcKey, dstKey string, status Status) (*Map, error) {
	src, ok := m.FindSignal(srcKey)
	if !ok {
		return nil, fmt.Errorf("connect: signal %q: %w", srcKey, ErrNotFound)
	}
	dst, ok := m.FindSignal(dstKey)
	if !ok {
		return nil, fmt.Errorf("connect: signal %q: %w", dstKey, ErrNotFound)
	}
	return m.AddMap(src, dst, status)
}

// RemoveMap removes the map with the given key.
func (m *Model) RemoveMap(key string) bool {
	if !m.Maps.Remove(key) {
		return false
	}
	m.notify(Change{Kind: MapRemoved, Key: key})
	return true
}

// NumSignals returns the total number of signals across all devices.
func (m *Model) NumSignals() int {
	n := 0
	m.Devices.Each(func(d *Device) bool {
		n += d.Signals.Len()
		return true
	})
	return n
}

// Validate checks that every map references signals present in the model.
func (m *Model) Validate() error {
	var err error
	m.Maps.Each(func(mp *Map) bool {
		for _, s := range []*Signal{mp.Src, mp.Dst} {
			if s == nil {
				err = fmt.Errorf("map %s: nil endpoint", mp.Key)
				return false
			}
			if found, ok := m.FindSignal(s.Key); !ok || found != s {
				err = fmt.Errorf("map %s: signal %q not in model", mp.Key, s.Key)
				return false
			}
		}
		if mp.Key != MapKey(mp.Src.Key, mp.Dst.Key) {
			err = fmt.Errorf("map %s: key does not match endpoints", mp.Key)
			return false
		}
		return true
	})
	return err
}

// String returns a short summary of the model.
func (m *Model) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Model: %d devices, %d signals, %d maps\n",
		m.Devices.Len(), m.NumSignals(), m.Maps.Len()))
	m.Devices.Each(func(d *Device) bool {
		sb.WriteString(fmt.Sprintf("  %s (%d signals)\n", d.Key, d.Signals.Len()))
		return true
	})
	return sb.String()
}
