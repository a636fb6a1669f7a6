package mapper

import (
	"errors"
	"testing"
)

func newTestModel() *Model {
	m := New()
	synth := m.AddDevice("synth", "#e6194b")
	synth.AddSignal("freq", DirOutput)
	synth.AddSignal("gain", DirOutput)
	fx := m.AddDevice("fx", "#3cb44b")
	fx.AddSignal("cutoff", DirInput)
	return m
}

func TestAddSignalKeys(t *testing.T) {
	m := newTestModel()

	s, ok := m.FindSignal("synth/freq")
	if !ok {
		t.Fatal("Expected to find synth/freq")
	}
	if s.Device.Key != "synth" {
		t.Errorf("Expected device synth, got %s", s.Device.Key)
	}
	if s.Direction != DirOutput {
		t.Errorf("Expected output direction, got %s", s.Direction)
	}

	d, _ := m.Devices.Find("synth")
	again := d.AddSignal("freq", DirInput)
	if again != s {
		t.Error("AddSignal with an existing name should return the existing signal")
	}
	if d.Signals.Len() != 2 {
		t.Errorf("Expected 2 signals, got %d", d.Signals.Len())
	}
}

func TestFindSignalSlashInDeviceKey(t *testing.T) {
	m := New()
	d := m.AddDevice("host/synth", "")
	d.AddSignal("freq", DirOutput)

	if _, ok := m.FindSignal("host/synth/freq"); !ok {
		t.Error("Expected to find signal on device whose key contains a slash")
	}
	if _, ok := m.FindSignal("host/missing"); ok {
		t.Error("Did not expect to find host/missing")
	}
}

func TestAddMap(t *testing.T) {
	m := newTestModel()

	var changes []Change
	detach := m.OnChange(func(c Change) { changes = append(changes, c) })

	mp, err := m.Connect("synth/freq", "fx/cutoff", StatusStaged)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if mp.Key != "synth/freq->fx/cutoff" {
		t.Errorf("Unexpected key %q", mp.Key)
	}
	if mp.Status != StatusStaged {
		t.Errorf("Expected staged, got %s", mp.Status)
	}
	if len(changes) != 1 || changes[0].Kind != MapAdded {
		t.Errorf("Expected one MapAdded change, got %v", changes)
	}

	_, err = m.Connect("synth/freq", "fx/cutoff", StatusStaged)
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate, got %v", err)
	}
	if m.Maps.Len() != 1 {
		t.Errorf("Expected 1 map, got %d", m.Maps.Len())
	}

	_, err = m.Connect("synth/freq", "fx/nothing", StatusStaged)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	detach()
	m.RemoveMap(mp.Key)
	if len(changes) != 1 {
		t.Errorf("Listener should be detached, got %d changes", len(changes))
	}
}

func TestRemoveDeviceRemovesMaps(t *testing.T) {
	m := newTestModel()
	if _, err := m.Connect("synth/freq", "fx/cutoff", StatusActive); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Connect("synth/gain", "fx/cutoff", StatusActive); err != nil {
		t.Fatal(err)
	}

	if !m.RemoveDevice("fx") {
		t.Fatal("RemoveDevice returned false")
	}
	if m.Maps.Len() != 0 {
		t.Errorf("Expected maps to be removed with device, %d left", m.Maps.Len())
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Model should validate after removal: %v", err)
	}
}

func TestValidateDetectsForeignSignal(t *testing.T) {
	m := newTestModel()
	src, _ := m.FindSignal("synth/freq")
	stray := &Signal{Key: "ghost/out", Name: "out", Direction: DirOutput}
	m.Maps.Add(&Map{Key: MapKey(src.Key, stray.Key), Src: src, Dst: stray})

	if err := m.Validate(); err == nil {
		t.Error("Expected validation error for signal not in model")
	}
}

func TestCollectionOrder(t *testing.T) {
	c := NewCollection[*Device]()
	for _, k := range []string{"c", "a", "b"} {
		c.Add(&Device{Key: k, Signals: NewCollection[*Signal]()})
	}
	if c.Add(&Device{Key: "a"}) {
		t.Error("Duplicate add should fail")
	}
	c.Remove("a")

	var got []string
	c.Each(func(d *Device) bool {
		got = append(got, d.Key)
		return true
	})
	if len(got) != 2 || got[0] != "c" || got[1] != "b" {
		t.Errorf("Expected [c b], got %v", got)
	}
}
