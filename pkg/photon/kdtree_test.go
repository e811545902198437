package photon

import (
	"math"
	"testing"
)

func gridPhotons() []Photon {
	var photons []Photon
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			for z := 0; z < 4; z++ {
				photons = append(photons, Photon{Position: Vec3{X: float64(x), Y: float64(y), Z: float64(z)}})
			}
		}
	}
	return photons
}

func TestKNearestReturnsClosest(t *testing.T) {
	photons := gridPhotons()
	tree := Build(photons)

	found, radiusSq := tree.KNearest(Vec3{X: 0, Y: 0, Z: 0}, 4, 10)
	if len(found) != 4 {
		t.Fatalf("got %d photons, want 4", len(found))
	}

	// The 4 closest to the origin are the origin itself (dist 0) and its
	// three unit-distance axis neighbors (dist 1).
	want := map[Vec3]bool{
		{X: 0, Y: 0, Z: 0}: true,
		{X: 1, Y: 0, Z: 0}: true,
		{X: 0, Y: 1, Z: 0}: true,
		{X: 0, Y: 0, Z: 1}: true,
	}
	for _, p := range found {
		if !want[p.Position] {
			t.Errorf("unexpected photon in result: %v", p.Position)
		}
	}
	if radiusSq > 1.0+1e-9 {
		t.Errorf("radiusSq = %v, want <= 1", radiusSq)
	}
}

func TestKNearestRespectsMaxRadius(t *testing.T) {
	photons := gridPhotons()
	tree := Build(photons)

	found, _ := tree.KNearest(Vec3{X: 0, Y: 0, Z: 0}, 100, 0.5)
	if len(found) != 1 {
		t.Fatalf("got %d photons within radius 0.5, want 1 (just the origin)", len(found))
	}
}

func TestKNearestEmptyTree(t *testing.T) {
	tree := Build(nil)
	found, radiusSq := tree.KNearest(Vec3{}, 5, 10)
	if found != nil {
		t.Errorf("expected nil result on empty tree, got %v", found)
	}
	if radiusSq != 0 {
		t.Errorf("expected zero radius on empty tree, got %v", radiusSq)
	}
}

func TestHashGridGatherWithinRadius(t *testing.T) {
	grid := NewHashGrid(1.0)
	for _, p := range gridPhotons() {
		grid.PushPhoton(p)
	}
	grid.UpdateGrid()

	found := grid.Gather(Vec3{X: 0, Y: 0, Z: 0}, 4, math.Sqrt(1.01))
	if len(found) == 0 {
		t.Fatal("expected at least one photon within radius")
	}
	for _, p := range found {
		d := p.Position.Subtract(Vec3{})
		if d.LengthSquared() > 1.01 {
			t.Errorf("photon outside requested radius: %v", p.Position)
		}
	}
}
