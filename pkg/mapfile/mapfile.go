// Package mapfile reads and writes signal map scenes.
//
// Three formats are supported:
//   - .toml  human-edited scenes
//   - .json  machine exchange
//   - .mapz  zip bundle holding scene.toml and positions.json
package mapfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ha1tch/mapview/pkg/mapper"
)

// Version is the scene format version written by this package.
const Version = 1

var ErrUnknownFormat = errors.New("unknown scene format")

// Meta describes a scene.
type Meta struct {
	Version     int    `toml:"version" json:"version"`
	Name        string `toml:"name,omitempty" json:"name,omitempty"`
	Description string `toml:"description,omitempty" json:"description,omitempty"`
	View        string `toml:"view,omitempty" json:"view,omitempty"`
}

// Document is the on-disk form of a scene.
type Document struct {
	Meta    Meta        `toml:"scene" json:"scene"`
	Devices []DeviceRec `toml:"device" json:"devices"`
	Maps    []MapRec    `toml:"map" json:"maps"`
}

type DeviceRec struct {
	Key       string      `toml:"key" json:"key"`
	Color     string      `toml:"color,omitempty" json:"color,omitempty"`
	Collapsed uint8       `toml:"collapsed,omitempty" json:"collapsed,omitempty"`
	Signals   []SignalRec `toml:"signal" json:"signals"`
}

type SignalRec struct {
	Name      string           `toml:"name" json:"name"`
	Direction string           `toml:"direction" json:"direction"`
	Position  *mapper.Position `toml:"position,omitempty" json:"position,omitempty"`
}

type MapRec struct {
	Src    string `toml:"src" json:"src"`
	Dst    string `toml:"dst" json:"dst"`
	Status string `toml:"status,omitempty" json:"status,omitempty"`
	Muted  bool   `toml:"muted,omitempty" json:"muted,omitempty"`
}

// FromModel converts a model to its document form.
func FromModel(m *mapper.Model, meta Meta) *Document {
	if meta.Version == 0 {
		meta.Version = Version
	}
	doc := &Document{Meta: meta}
	m.Devices.Each(func(dev *mapper.Device) bool {
		rec := DeviceRec{Key: dev.Key, Color: dev.Color, Collapsed: dev.Collapsed}
		dev.Signals.Each(func(sig *mapper.Signal) bool {
			rec.Signals = append(rec.Signals, SignalRec{
				Name:      sig.Name,
				Direction: string(sig.Direction),
				Position:  sig.Position,
			})
			return true
		})
		doc.Devices = append(doc.Devices, rec)
		return true
	})
	m.Maps.Each(func(mp *mapper.Map) bool {
		doc.Maps = append(doc.Maps, MapRec{
			Src:    mp.Src.Key,
			Dst:    mp.Dst.Key,
			Status: string(mp.Status),
			Muted:  mp.Muted,
		})
		return true
	})
	return doc
}

// Model builds a model from the document.
func (d *Document) Model() (*mapper.Model, error) {
	if d.Meta.Version > Version {
		return nil, fmt.Errorf("scene version %d is newer than supported version %d", d.Meta.Version, Version)
	}
	m := mapper.New()
	for _, dr := range d.Devices {
		if dr.Key == "" {
			return nil, fmt.Errorf("device with empty key")
		}
		if _, dup := m.Devices.Find(dr.Key); dup {
			return nil, fmt.Errorf("device %q: %w", dr.Key, mapper.ErrDuplicate)
		}
		dev := m.AddDevice(dr.Key, dr.Color)
		dev.Collapsed = dr.Collapsed
		for _, sr := range dr.Signals {
			dir, err := parseDirection(sr.Direction)
			if err != nil {
				return nil, fmt.Errorf("signal %s/%s: %w", dr.Key, sr.Name, err)
			}
			sig := dev.AddSignal(sr.Name, dir)
			sig.Position = sr.Position
		}
	}
	for _, mr := range d.Maps {
		status := mapper.Status(mr.Status)
		if status == "" {
			status = mapper.StatusActive
		}
		mp, err := m.Connect(mr.Src, mr.Dst, status)
		if err != nil {
			return nil, fmt.Errorf("map %s->%s: %w", mr.Src, mr.Dst, err)
		}
		mp.Muted = mr.Muted
	}
	return m, nil
}

func parseDirection(s string) (mapper.Direction, error) {
	switch mapper.Direction(strings.ToLower(s)) {
	case mapper.DirInput:
		return mapper.DirInput, nil
	case mapper.DirOutput:
		return mapper.DirOutput, nil
	}
	return "", fmt.Errorf("invalid direction %q", s)
}

// Format identifies a scene encoding by file extension.
type Format string

const (
	FormatTOML   Format = "toml"
	FormatJSON   Format = "json"
	FormatBundle Format = "mapz"
)

// FormatOf returns the format for a file path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	case ".mapz":
		return FormatBundle, nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

// ReadFile loads a scene in the format given by its extension.
func ReadFile(path string) (*mapper.Model, Meta, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, Meta{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Meta{}, err
	}
	var doc *Document
	switch format {
	case FormatTOML:
		doc, err = ParseTOML(data)
	case FormatJSON:
		doc, err = ParseJSON(data)
	case FormatBundle:
		doc, err = ReadBundleBytes(data)
	}
	if err != nil {
		return nil, Meta{}, fmt.Errorf("%s: %w", path, err)
	}
	m, err := doc.Model()
	if err != nil {
		return nil, Meta{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, doc.Meta, nil
}

// WriteFile saves a scene in the format given by its extension.
func WriteFile(path string, m *mapper.Model, meta Meta) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	doc := FromModel(m, meta)

	if format == FormatBundle {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		return closeAfter(f, func(w io.Writer) error { return WriteBundle(w, doc) })
	}

	var data []byte
	if format == FormatTOML {
		data, err = ToTOML(doc)
	} else {
		data, err = ToJSON(doc, true)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// closeAfter runs write on f and closes it, reporting the first error.
func closeAfter(f io.WriteCloser, write func(io.Writer) error) error {
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
