package material

import "github.com/lumenforge/tracecore/pkg/core"

// Metal is a specular reflector whose mirror direction is perturbed by
// Fuzzness (0 = perfect mirror, 1 = very fuzzy), the teacher's model.
type Metal struct {
	Albedo   core.Rgb
	Fuzzness float64
}

func NewMetal(albedo core.Rgb, fuzzness float64) *Metal {
	if fuzzness > 1.0 {
		fuzzness = 1.0
	}
	if fuzzness < 0.0 {
		fuzzness = 0.0
	}
	return &Metal{Albedo: albedo, Fuzzness: fuzzness}
}

func (m *Metal) Capabilities(core.SurfacePoint) core.Lobe {
	return core.LobeSpecularReflect
}

func (m *Metal) Evaluate(sp core.SurfacePoint, wo, wi core.Vec3, filter core.Lobe) core.Rgb {
	return core.Rgb{} // delta lobe: only reachable through Sample/PDF's isDelta path
}

func (m *Metal) Sample(sp core.SurfacePoint, wo core.Vec3, u core.Vec2, filter core.Lobe) (core.ScatterResult, bool) {
	if !filter.Has(core.LobeSpecularReflect) {
		return core.ScatterResult{}, false
	}

	reflected := reflectAbout(wo.Negate(), sp.Ns)
	if m.Fuzzness > 0 {
		reflected = reflected.Add(core.UniformSampleSphere(u).Multiply(m.Fuzzness)).Normalize()
	}

	if reflected.Dot(sp.Ns) <= 0 {
		return core.ScatterResult{}, false
	}

	return core.ScatterResult{
		Wi:          reflected,
		F:           m.Albedo,
		PDF:         0,
		SampledLobe: core.LobeSpecularReflect,
	}, true
}

func (m *Metal) PDF(sp core.SurfacePoint, wo, wi core.Vec3) (float64, bool) {
	return 0, true
}

func reflectAbout(v, n core.Vec3) core.Vec3 {
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}
