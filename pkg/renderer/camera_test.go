package renderer

import (
	"math"
	"testing"

	"github.com/lumenforge/tracecore/pkg/core"
)

func TestGenerateRayCentersOnLookAt(t *testing.T) {
	cam := NewCamera(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0), 90, 100, 100, 0, 1)

	ray, weight := cam.GenerateRay(50, 50, 0, 0)
	if weight != 1.0 {
		t.Errorf("weight = %v, want 1.0 for a pinhole camera", weight)
	}

	dir := ray.Direction.Normalize()
	if math.Abs(dir.X) > 0.05 || math.Abs(dir.Y) > 0.05 {
		t.Errorf("center pixel ray direction = %v, want ~(0,0,-1)", dir)
	}
	if dir.Z >= 0 {
		t.Errorf("center pixel ray should point away from the eye, got Z = %v", dir.Z)
	}
}

func TestGenerateRayLensOffsetMovesOrigin(t *testing.T) {
	cam := NewCamera(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0), 90, 100, 100, 1.0, 1)

	pinholeRay, _ := cam.GenerateRay(50, 50, 0.5, 0.5) // disk center, no offset
	lensRay, _ := cam.GenerateRay(50, 50, 1.0, 0.5)    // disk edge, offset along u

	if pinholeRay.Origin.Equals(lensRay.Origin) {
		t.Errorf("expected lens sampling to move the ray origin off-axis")
	}
}

func TestSampleUnitDiskStaysWithinUnitRadius(t *testing.T) {
	for _, u := range []float64{0, 0.25, 0.5, 0.75, 0.999} {
		for _, v := range []float64{0, 0.25, 0.5, 0.75, 0.999} {
			p := sampleUnitDisk(u, v)
			if p.Length() > 1.0001 {
				t.Errorf("sampleUnitDisk(%v,%v) = %v, length %v exceeds 1", u, v, p, p.Length())
			}
		}
	}
}
