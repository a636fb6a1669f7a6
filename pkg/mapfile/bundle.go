package mapfile

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ha1tch/mapview/pkg/mapper"
)

const (
	bundleScene     = "scene.toml"
	bundlePositions = "positions.json"
)

// WriteBundle writes doc as a .mapz archive. Free signal positions go to
// positions.json so the scene file stays readable.
func WriteBundle(w io.Writer, doc *Document) error {
	zw := zip.NewWriter(w)

	bare := *doc
	bare.Devices = make([]DeviceRec, len(doc.Devices))
	positions := make(map[string]mapper.Position)
	for i, dr := range doc.Devices {
		dr.Signals = append([]SignalRec(nil), dr.Signals...)
		for j, sr := range dr.Signals {
			if sr.Position != nil {
				positions[dr.Key+"/"+sr.Name] = *sr.Position
				dr.Signals[j].Position = nil
			}
		}
		bare.Devices[i] = dr
	}

	scene, err := ToTOML(&bare)
	if err != nil {
		return err
	}
	if err := writeEntry(zw, bundleScene, scene); err != nil {
		return err
	}
	if len(positions) > 0 {
		data, err := json.MarshalIndent(positions, "", "  ")
		if err != nil {
			return err
		}
		if err := writeEntry(zw, bundlePositions, data); err != nil {
			return err
		}
	}
	return zw.Close()
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	fw, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = fw.Write(data)
	return err
}

// ReadBundle reads a .mapz archive.
func ReadBundle(r io.ReaderAt, size int64) (*Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}

	var scene, positions []byte
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		switch f.Name {
		case bundleScene:
			scene = data
		case bundlePositions:
			positions = data
		}
	}
	if scene == nil {
		return nil, fmt.Errorf("%s not found in archive", bundleScene)
	}

	doc, err := ParseTOML(scene)
	if err != nil {
		return nil, err
	}
	if positions == nil {
		return doc, nil
	}
	var pos map[string]mapper.Position
	if err := json.Unmarshal(positions, &pos); err != nil {
		return nil, fmt.Errorf("%s: %w", bundlePositions, err)
	}
	for i := range doc.Devices {
		dr := &doc.Devices[i]
		for j := range dr.Signals {
			if p, ok := pos[dr.Key+"/"+dr.Signals[j].Name]; ok {
				dr.Signals[j].Position = &p
			}
		}
	}
	return doc, nil
}

// ReadBundleBytes reads a .mapz archive held in memory.
func ReadBundleBytes(data []byte) (*Document, error) {
	return ReadBundle(bytes.NewReader(data), int64(len(data)))
}
