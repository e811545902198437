package volume

import (
	"math"
	"testing"

	"github.com/lumenforge/tracecore/pkg/core"
)

func TestHomogeneousTransmittanceUnitSigma(t *testing.T) {
	h := &Homogeneous{
		SigmaA:   core.Rgb{X: 0.5, Y: 0.5, Z: 0.5},
		SigmaS:   core.Rgb{X: 0.5, Y: 0.5, Z: 0.5},
		BoundBox: core.NewAABB(core.NewVec3(-10, -10, -10), core.NewVec3(10, 10, 10)),
	}
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))

	tr := h.Transmittance(ray, 1.0) // 1 unit inside the box, sigma_t = 1 => T = e^-1 (§8)

	want := math.Exp(-1)
	if math.Abs(tr.X-want) > 1e-6 {
		t.Errorf("transmittance = %v, want %v", tr.X, want)
	}
}

func TestTransmittanceInRangeAndMonotonic(t *testing.T) {
	h := &Homogeneous{
		SigmaA:   core.Rgb{X: 0.3, Y: 0.3, Z: 0.3},
		SigmaS:   core.Rgb{X: 0.2, Y: 0.2, Z: 0.2},
		BoundBox: core.NewAABB(core.NewVec3(-100, -100, -100), core.NewVec3(100, 100, 100)),
	}
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))

	prev := 1.0
	for _, d := range []float64{1, 2, 5, 10} {
		tr := h.Transmittance(ray, d)
		if tr.X < 0 || tr.X > 1 {
			t.Fatalf("transmittance out of range at d=%v: %v", d, tr.X)
		}
		if tr.X > prev+1e-9 {
			t.Errorf("transmittance increased with distance at d=%v: %v > %v", d, tr.X, prev)
		}
		prev = tr.X
	}
}

func TestEmptyVolumeIsTransparent(t *testing.T) {
	var e Empty
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))
	tr := e.Transmittance(ray, 100)
	if tr.X != 1 || tr.Y != 1 || tr.Z != 1 {
		t.Errorf("empty volume transmittance = %v, want {1,1,1}", tr)
	}
}

type constantNoise struct{ v float64 }

func (c constantNoise) Eval(core.Vec3) float64 { return c.v }

func TestGridSampleClampsAtEdges(t *testing.T) {
	g := &Grid{
		Nx: 2, Ny: 2, Nz: 2,
		Density:   []float64{0, 1, 0, 1, 0, 1, 0, 1},
		BoundBox:  core.NewAABB(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1)),
		SigmaBase: core.Rgb{X: 1, Y: 1, Z: 1},
	}
	// Outside the box clamps to the nearest edge value rather than panicking.
	v := g.sample(core.NewVec3(-5, -5, -5))
	if v < 0 || v > 1 {
		t.Errorf("sample out of range: %v", v)
	}
}
