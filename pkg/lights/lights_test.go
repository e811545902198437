package lights

import (
	"math"
	"testing"

	"github.com/lumenforge/tracecore/pkg/core"
)

func TestQuadLightSamplePDFConsistent(t *testing.T) {
	ql := NewQuadLight(core.NewVec3(-1, 5, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 0, 2), core.Rgb{X: 1, Y: 1, Z: 1})
	point := core.NewVec3(0, 0, 0)

	sample := ql.Sample(point, core.NewVec3(0, 1, 0), core.Vec2{X: 0.5, Y: 0.5})
	if sample.PDF <= 0 {
		t.Fatalf("expected positive pdf, got %v", sample.PDF)
	}

	pdf := ql.PDF(point, core.NewVec3(0, 1, 0), sample.Direction)
	if math.Abs(pdf-sample.PDF) > 1e-6 {
		t.Errorf("PDF() = %v, want %v (matching Sample's solid-angle pdf)", pdf, sample.PDF)
	}
}

func TestQuadLightPowerPositive(t *testing.T) {
	ql := NewQuadLight(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1), core.Rgb{X: 2, Y: 2, Z: 2})
	if ql.Power() <= 0 {
		t.Errorf("expected positive power, got %v", ql.Power())
	}
}

func TestUniformInfiniteLightEmitConstant(t *testing.T) {
	uil := NewUniformInfiniteLight(core.Rgb{X: 0.5, Y: 0.6, Z: 0.7})
	ray1 := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0))
	ray2 := core.NewRay(core.NewVec3(10, 10, 10), core.NewVec3(0, -1, 0))
	if uil.Emit(ray1) != uil.Emit(ray2) {
		t.Errorf("uniform infinite light emission should not depend on direction")
	}
}

func TestPointLightFalloffIsInverseSquare(t *testing.T) {
	pl := NewPointLight(core.NewVec3(0, 0, 0), core.Rgb{X: 1, Y: 1, Z: 1})

	near := pl.Sample(core.NewVec3(0, 0, 1), core.Vec3{}, core.Vec2{})
	far := pl.Sample(core.NewVec3(0, 0, 2), core.Vec3{}, core.Vec2{})

	ratio := near.Emission.X / far.Emission.X
	if math.Abs(ratio-4) > 1e-9 {
		t.Errorf("doubling distance should quarter intensity, ratio = %v, want 4", ratio)
	}
}

func TestPointLightPDFIsZero(t *testing.T) {
	pl := NewPointLight(core.NewVec3(0, 1, 0), core.Rgb{X: 1, Y: 1, Z: 1})
	if pl.PDF(core.NewVec3(0, 0, 0), core.Vec3{}, core.NewVec3(0, 1, 0)) != 0 {
		t.Errorf("point light PDF should always be 0")
	}
}

func TestSphereLightSampleFromOutsideMatchesConePDF(t *testing.T) {
	sl := NewSphereLight(core.NewVec3(0, 10, 0), 2, core.Rgb{X: 10, Y: 10, Z: 10})
	point := core.NewVec3(0, 0, 0)

	sample := sl.Sample(point, core.Vec3{}, core.Vec2{X: 0.25, Y: 0.5})
	if sample.PDF <= 0 {
		t.Fatalf("expected positive pdf sampling a sphere light from outside, got %v", sample.PDF)
	}

	pdf := sl.PDF(point, core.Vec3{}, sample.Direction)
	if math.Abs(pdf-sample.PDF) > 1e-9 {
		t.Errorf("PDF() = %v, want %v (matching Sample's cone pdf)", pdf, sample.PDF)
	}
}

func TestSphereLightEmitIsZero(t *testing.T) {
	sl := NewSphereLight(core.NewVec3(0, 0, 0), 1, core.Rgb{X: 5, Y: 5, Z: 5})
	ray := core.NewRay(core.NewVec3(10, 10, 10), core.NewVec3(-1, -1, -1))
	if sl.Emit(ray) != (core.Rgb{}) {
		t.Errorf("sphere light Emit should be zero, visible only via its emissive geometry")
	}
}
