package material

import "math"

import "github.com/lumenforge/tracecore/pkg/core"

// Dielectric is a transparent material (glass) that both reflects and
// refracts, chosen per-sample by Fresnel reflectance via Schlick's
// approximation. Dispersion is modeled by letting RefractiveIndex vary with
// Ray.Wavelength through IndexAt; achromatic glass returns a constant.
type Dielectric struct {
	RefractiveIndex float64
	// Dispersive, when true, reports LobeDispersive so the integrator knows
	// to split the wavelength tag across recursive rays (§4.9 point 5).
	Dispersive bool
	// CauchyB is the Cauchy dispersion coefficient (n(lambda) = n0 +
	// CauchyB/lambda^2); zero means no wavelength dependence even if
	// Dispersive is set.
	CauchyB float64
}

func NewDielectric(refractiveIndex float64) *Dielectric {
	return &Dielectric{RefractiveIndex: refractiveIndex}
}

// IndexAt returns the refractive index at the given wavelength (nanometers)
// via Cauchy's equation. The integrator calls this directly (outside the
// Material interface, via a type assertion) when splitting a dispersive ray
// into per-wavelength children (§4.9 point 5); Sample itself always uses the
// base RefractiveIndex since SurfacePoint carries no wavelength.
func (d *Dielectric) IndexAt(wavelength float64) float64 {
	if !d.Dispersive || wavelength <= 0 || d.CauchyB == 0 {
		return d.RefractiveIndex
	}
	return d.RefractiveIndex + d.CauchyB/(wavelength*wavelength)
}

func (d *Dielectric) Capabilities(core.SurfacePoint) core.Lobe {
	lobe := core.LobeSpecularReflect | core.LobeSpecularTransmit
	if d.Dispersive {
		lobe |= core.LobeDispersive
	}
	return lobe
}

func (d *Dielectric) Evaluate(sp core.SurfacePoint, wo, wi core.Vec3, filter core.Lobe) core.Rgb {
	return core.Rgb{}
}

func (d *Dielectric) Sample(sp core.SurfacePoint, wo core.Vec3, u core.Vec2, filter core.Lobe) (core.ScatterResult, bool) {
	unitDir := wo.Negate()

	var refractionRatio float64
	if sp.FrontFace {
		refractionRatio = 1.0 / d.RefractiveIndex
	} else {
		refractionRatio = d.RefractiveIndex
	}

	cosTheta := math.Min(-unitDir.Dot(sp.Ns), 1.0)
	sinTheta := math.Sqrt(math.Max(0, 1.0-cosTheta*cosTheta))
	cannotRefract := refractionRatio*sinTheta > 1.0

	var direction core.Vec3
	var lobe core.Lobe
	if cannotRefract || !filter.Has(core.LobeSpecularTransmit) {
		if !filter.Has(core.LobeSpecularReflect) {
			return core.ScatterResult{}, false
		}
		direction = reflectAbout(unitDir, sp.Ns)
		lobe = core.LobeSpecularReflect
	} else if !filter.Has(core.LobeSpecularReflect) || reflectance(cosTheta, refractionRatio) <= u.X {
		direction = refractVector(unitDir, sp.Ns, refractionRatio)
		lobe = core.LobeSpecularTransmit
	} else {
		direction = reflectAbout(unitDir, sp.Ns)
		lobe = core.LobeSpecularReflect
	}

	return core.ScatterResult{
		Wi:          direction,
		F:           core.Rgb{X: 1, Y: 1, Z: 1},
		PDF:         0,
		SampledLobe: lobe,
	}, true
}

func (d *Dielectric) PDF(sp core.SurfacePoint, wo, wi core.Vec3) (float64, bool) {
	return 0, true
}

// RefractAt recomputes the specular direction using ior in place of
// RefractiveIndex, for the integrator's dispersive-recursion split (§4.9
// point 5): each chromatic band recurses with its own IndexAt(wavelength)
// result. It skips Sample's Fresnel reflect/refract coin flip since the
// caller has already committed to a transmission event at the base index;
// if this band's ior cannot refract at this angle, it routes to the
// reflection lobe instead of failing (§7: total internal reflection is not
// an error).
func (d *Dielectric) RefractAt(sp core.SurfacePoint, wo core.Vec3, ior float64) (core.Vec3, core.Lobe) {
	unitDir := wo.Negate()

	var refractionRatio float64
	if sp.FrontFace {
		refractionRatio = 1.0 / ior
	} else {
		refractionRatio = ior
	}

	cosTheta := math.Min(-unitDir.Dot(sp.Ns), 1.0)
	sinTheta := math.Sqrt(math.Max(0, 1.0-cosTheta*cosTheta))
	if refractionRatio*sinTheta > 1.0 {
		return reflectAbout(unitDir, sp.Ns), core.LobeSpecularReflect
	}
	return refractVector(unitDir, sp.Ns, refractionRatio), core.LobeSpecularTransmit
}

func refractVector(uv, n core.Vec3, etaiOverEtat float64) core.Vec3 {
	cosTheta := math.Min(-uv.Dot(n), 1.0)
	rOutPerp := uv.Add(n.Multiply(cosTheta)).Multiply(etaiOverEtat)
	rOutParallel := n.Multiply(-math.Sqrt(math.Abs(1.0 - rOutPerp.LengthSquared())))
	return rOutPerp.Add(rOutParallel)
}

// reflectance implements Schlick's approximation of Fresnel reflectance.
func reflectance(cosine, refractionRatio float64) float64 {
	r0 := (1 - refractionRatio) / (1 + refractionRatio)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
