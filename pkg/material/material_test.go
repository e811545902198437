package material

import (
	"math"
	"testing"

	"github.com/lumenforge/tracecore/pkg/core"
)

func flatSurfacePoint() core.SurfacePoint {
	return core.SurfacePoint{P: core.NewVec3(0, 0, 0), Ns: core.NewVec3(0, 1, 0), Ng: core.NewVec3(0, 1, 0), FrontFace: true}
}

func TestLambertianSampleStaysInHemisphere(t *testing.T) {
	l := NewLambertian(core.Rgb{X: 0.8, Y: 0.8, Z: 0.8})
	sp := flatSurfacePoint()
	wo := core.NewVec3(0, 1, 0)

	for i := 0; i < 64; i++ {
		u := core.Vec2{X: float64(i) / 64, Y: float64((i*7)%64) / 64}
		result, ok := l.Sample(sp, wo, u, core.LobeAll)
		if !ok {
			t.Fatalf("sample %d rejected", i)
		}
		if result.Wi.Dot(sp.Ns) <= 0 {
			t.Errorf("sample %d direction below hemisphere: %v", i, result.Wi)
		}
		if result.PDF <= 0 {
			t.Errorf("sample %d has non-positive pdf", i)
		}
	}
}

func TestLambertianSampleRejectedWithoutDiffuseFilter(t *testing.T) {
	l := NewLambertian(core.Rgb{X: 1, Y: 1, Z: 1})
	sp := flatSurfacePoint()
	_, ok := l.Sample(sp, core.NewVec3(0, 1, 0), core.Vec2{X: 0.3, Y: 0.4}, core.LobeSpecularReflect)
	if ok {
		t.Errorf("expected rejection when diffuse lobe not in filter")
	}
}

func TestLambertianEvaluateMatchesSamplePDFRelation(t *testing.T) {
	l := NewLambertian(core.Rgb{X: 0.5, Y: 0.5, Z: 0.5})
	sp := flatSurfacePoint()
	wi := core.NewVec3(0, 1, 0)
	f := l.Evaluate(sp, core.NewVec3(0, 1, 0), wi, core.LobeAll)
	want := 0.5 / math.Pi
	if math.Abs(f.X-want) > 1e-9 {
		t.Errorf("f = %v, want %v", f.X, want)
	}
}

func TestMetalPerfectMirrorReflectsExactly(t *testing.T) {
	m := NewMetal(core.Rgb{X: 1, Y: 1, Z: 1}, 0)
	sp := flatSurfacePoint()
	wo := core.NewVec3(1, 1, 0).Normalize()
	result, ok := m.Sample(sp, wo, core.Vec2{}, core.LobeAll)
	if !ok {
		t.Fatal("expected mirror reflection to succeed")
	}
	if result.Wi.Dot(sp.Ns) <= 0 {
		t.Errorf("reflected direction should stay above surface, got %v", result.Wi)
	}
	if result.PDF != 0 || !result.IsSpecular() {
		t.Errorf("metal reflection should be a delta lobe (PDF 0), got %v", result.PDF)
	}
}

func TestMetalFuzzClampedToUnitRange(t *testing.T) {
	m := NewMetal(core.Rgb{X: 1, Y: 1, Z: 1}, 5)
	if m.Fuzzness != 1.0 {
		t.Errorf("fuzzness = %v, want clamped to 1.0", m.Fuzzness)
	}
}

func TestDielectricTotalInternalReflectionRoutesToReflect(t *testing.T) {
	d := NewDielectric(1.5)
	sp := flatSurfacePoint()
	sp.FrontFace = false // exiting the denser medium, grazing angle forces TIR
	wo := core.NewVec3(0.99, 0.01, 0).Normalize()

	result, ok := d.Sample(sp, wo, core.Vec2{X: 0, Y: 0}, core.LobeAll)
	if !ok {
		t.Fatal("TIR must still produce a scattered ray, not a failure")
	}
	if result.SampledLobe != core.LobeSpecularReflect {
		t.Errorf("expected TIR to route to LobeSpecularReflect, got %v", result.SampledLobe)
	}
}

func TestDielectricIndexAtAppliesCauchyDispersion(t *testing.T) {
	d := &Dielectric{RefractiveIndex: 1.5, Dispersive: true, CauchyB: 4000}
	shortWave := d.IndexAt(400)
	longWave := d.IndexAt(700)
	if shortWave <= longWave {
		t.Errorf("shorter wavelengths should refract more strongly: n(400)=%v, n(700)=%v", shortWave, longWave)
	}
}

func TestDielectricRefractAtUsesSuppliedIndex(t *testing.T) {
	d := &Dielectric{RefractiveIndex: 1.5, Dispersive: true, CauchyB: 4000}
	sp := flatSurfacePoint()
	wo := core.NewVec3(0.5, 0.866, 0) // ~30 degrees off the normal, so wavelength bends differently

	_, baseLobe := d.RefractAt(sp, wo, d.RefractiveIndex)
	if baseLobe != core.LobeSpecularTransmit {
		t.Fatalf("expected this angle of incidence to transmit, got %v", baseLobe)
	}

	redWi, redLobe := d.RefractAt(sp, wo, d.IndexAt(611))
	blueWi, blueLobe := d.RefractAt(sp, wo, d.IndexAt(466))
	if redLobe != core.LobeSpecularTransmit || blueLobe != core.LobeSpecularTransmit {
		t.Fatalf("expected both chromatic bands to transmit at this angle")
	}
	if redWi == blueWi {
		t.Errorf("expected different wavelength bands to refract to different directions under dispersion")
	}
}

func TestDielectricRefractAtRoutesTIRToReflect(t *testing.T) {
	d := NewDielectric(1.5)
	sp := flatSurfacePoint()
	sp.FrontFace = false
	wo := core.NewVec3(0.99, 0.01, 0).Normalize()

	_, lobe := d.RefractAt(sp, wo, d.RefractiveIndex)
	if lobe != core.LobeSpecularReflect {
		t.Errorf("expected grazing exit to route to reflection, got %v", lobe)
	}
}

func TestEmissiveEmitsStoredColor(t *testing.T) {
	e := NewEmissive(core.Rgb{X: 3, Y: 3, Z: 3})
	sp := flatSurfacePoint()
	got := e.Emit(sp, core.NewVec3(0, 1, 0))
	if got.X != 3 {
		t.Errorf("Emit() = %v, want emission color", got)
	}
	if _, ok := e.Sample(sp, core.NewVec3(0, 1, 0), core.Vec2{}, core.LobeAll); ok {
		t.Errorf("emissive materials must never scatter")
	}
}

func TestTransparentFilterColorTintsShadowRays(t *testing.T) {
	tint := core.Rgb{X: 0.2, Y: 0.9, Z: 0.2}
	tr := NewTransparent(tint, 1.5)
	sp := flatSurfacePoint()
	if tr.FilterColor(sp) != tint {
		t.Errorf("FilterColor() = %v, want %v", tr.FilterColor(sp), tint)
	}
	if !tr.Capabilities(sp).Has(core.LobeTransparent) {
		t.Errorf("transparent material must report LobeTransparent")
	}
}
