package photon

import (
	"bytes"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	original := File{
		Name:         "diffuse",
		Paths:        1000,
		SearchRadius: 0.5,
		Threads:      4,
		Photons: []Photon{
			{Position: Vec3{X: 1, Y: 2, Z: 3}, Power: Vec3{X: 0.1, Y: 0.2, Z: 0.3}},
			{Position: Vec3{X: -1, Y: 0, Z: 5}, Power: Vec3{X: 1, Y: 1, Z: 1}},
		},
	}

	var buf bytes.Buffer
	if err := Save(&buf, original); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Name != original.Name {
		t.Errorf("Name = %q, want %q", loaded.Name, original.Name)
	}
	if loaded.Paths != original.Paths {
		t.Errorf("Paths = %d, want %d", loaded.Paths, original.Paths)
	}
	if len(loaded.Photons) != len(original.Photons) {
		t.Fatalf("got %d photons, want %d", len(loaded.Photons), len(original.Photons))
	}
	// Records are persisted as float32, so the loaded values are the
	// float32-rounded originals.
	f32 := func(v Vec3) Vec3 {
		return Vec3{X: float64(float32(v.X)), Y: float64(float32(v.Y)), Z: float64(float32(v.Z))}
	}
	for i, p := range original.Photons {
		if loaded.Photons[i].Position != f32(p.Position) {
			t.Errorf("photon %d position = %v, want %v", i, loaded.Photons[i].Position, f32(p.Position))
		}
		if loaded.Photons[i].Power != f32(p.Power) {
			t.Errorf("photon %d power = %v, want %v", i, loaded.Photons[i].Power, f32(p.Power))
		}
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBufferString("not a photon map at all")
	if _, err := Load(buf); err == nil {
		t.Error("expected error for bad magic, got nil")
	}
}
