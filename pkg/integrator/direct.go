package integrator

import (
	"github.com/lumenforge/tracecore/pkg/core"
	"github.com/lumenforge/tracecore/pkg/photon"
	"github.com/lumenforge/tracecore/pkg/volume"
)

// Integrator implements the surface state machine of §4.9. With photons nil
// it is a plain direct-lighting path tracer whose "Indirect" branch is an
// unbiased recursive bounce; NewPhotonMapIntegrator (photonmap.go) attaches
// a built photon.Map, which turns on step 4 (caustic density estimate,
// diffuse density estimate / final gather). With Medium set, every traced
// ray also composes C10's participating-media transmittance and in-scatter
// (§4.10's T(ray)*L_s + in-scatter rendering equation) around the surface
// result.
type Integrator struct {
	Opts     Options
	Medium   volume.Volume
	lightCDF *core.WeightedLightSampler
	photons  *photon.Map
	irrCache *irradianceCache
}

// NewDirectIntegrator builds the direct-lighting-only integrator (no photon
// maps): steps 1, 2, 3, 5, 6 of §4.9's state machine, with "Indirect"
// handled by an ordinary recursive diffuse bounce.
func NewDirectIntegrator(opts Options, lights []core.Light) *Integrator {
	return &Integrator{Opts: opts, lightCDF: core.NewWeightedLightSampler(lights)}
}

// WithMedium attaches a participating medium the integrator composes with
// every traced ray's surface result, and returns it for chaining.
func (it *Integrator) WithMedium(m volume.Volume) *Integrator {
	it.Medium = m
	return it
}

// RayColor traces one camera or recursive ray and returns its radiance,
// recursing through specular lobes until depth or Russian roulette stops it.
func (it *Integrator) RayColor(ray core.Ray, scene core.Scene, rs *core.RenderState, diag *core.Diagnostics) core.Rgb {
	return it.trace(ray, scene, rs, diag, core.Rgb{X: 1, Y: 1, Z: 1})
}

func (it *Integrator) trace(ray core.Ray, scene core.Scene, rs *core.RenderState, diag *core.Diagnostics, throughput core.Rgb) core.Rgb {
	if rs.Depth >= it.Opts.MaxDepth {
		return core.Rgb{}
	}

	hit, ok := scene.Intersect(ray.WithBounds(it.Opts.SelfIntersectEpsilon, core.NoBound))

	distance := core.NoBound
	var surface core.Rgb
	if !ok {
		surface = core.ClampRadiance(scene.Background(ray), diag)
	} else {
		distance = hit.T
		surface = it.shade(ray, hit, scene, rs, diag, throughput)
	}

	if it.Medium == nil {
		return surface
	}

	transmittance := it.Medium.Transmittance(ray, distance)
	inScatter := it.Medium.Integrate(ray, distance, rs.Sampler, func(p, wo core.Vec3) core.Rgb {
		return it.mediumDirectLighting(p, wo, scene, rs.Sampler)
	})
	return core.ClampRadiance(surface.MultiplyVec(transmittance).Add(inScatter), diag)
}

// mediumDirectLighting is the in-scatter estimator's sampleLi callback
// (§4.10's Integrate plays the phase-function role a BSDF plays for
// surfaces): one NEE draw against the power-weighted light CDF, unshadowed
// by MIS since a participating medium has no BSDF-sampling half to combine
// against.
func (it *Integrator) mediumDirectLighting(p, wo core.Vec3, scene core.Scene, sampler core.Sampler) core.Rgb {
	if it.lightCDF == nil || it.lightCDF.Count() == 0 {
		return core.Rgb{}
	}

	light, lightPDF, _ := it.lightCDF.Sample(sampler.Get1D())
	if light == nil || lightPDF <= 0 {
		return core.Rgb{}
	}

	sample := light.Sample(p, core.Vec3{}, sampler.Get2D())
	if sample.PDF <= 0 {
		return core.Rgb{}
	}

	shadowRay := core.NewRayTo(p, sample.Point).WithBounds(it.Opts.SelfIntersectEpsilon, core.NoBound)
	if light.Type() != core.LightTypeInfinite {
		shadowRay.TMax = sample.Distance - it.Opts.SelfIntersectEpsilon
	}
	blocked, filter := scene.IntersectAny(shadowRay, shadowRay.TMax)
	if blocked && filter.Luminance() <= 0 {
		return core.Rgb{}
	}
	if !blocked {
		filter = core.Rgb{X: 1, Y: 1, Z: 1}
	}

	return sample.Emission.MultiplyVec(filter).Multiply(1.0 / (sample.PDF * lightPDF))
}

// shade implements points 2-6 of §4.9 at a single surface hit.
func (it *Integrator) shade(ray core.Ray, hit core.Hit, scene core.Scene, rs *core.RenderState, diag *core.Diagnostics, throughput core.Rgb) core.Rgb {
	lobe := hit.Material.Capabilities(hit.SurfacePoint)
	wo := ray.Direction.Negate().Normalize()

	var result core.Rgb

	if lobe.Has(core.LobeEmit) && rs.IncludeEmissive {
		if emitter, isEmitter := hit.Material.(core.Emitter); isEmitter {
			result = result.Add(emitter.Emit(hit.SurfacePoint, wo))
		}
	}

	if lobe.Has(core.LobeDiffuse) {
		result = result.Add(it.directLighting(hit, wo, scene, rs))
		if it.photons != nil {
			result = result.Add(it.causticContribution(hit, wo))
		}
		result = result.Add(it.diffuseIndirect(hit, wo, scene, rs, diag, throughput))
	}

	if lobe.Has(core.LobeSpecular) {
		result = result.Add(it.specularRecursion(ray, hit, wo, lobe, scene, rs, diag, throughput))
	}

	return core.ClampRadiance(result, diag)
}

// directLighting draws one light sample from the power-weighted light CDF
// and weights it with the power heuristic against the BSDF's PDF for the
// same direction (§4.9 point 3). The BSDF-sampled half of the estimator is
// taken in diffuseIndirect.
func (it *Integrator) directLighting(hit core.Hit, wo core.Vec3, scene core.Scene, rs *core.RenderState) core.Rgb {
	if it.lightCDF == nil || it.lightCDF.Count() == 0 {
		return core.Rgb{}
	}

	light, lightPDF, _ := it.lightCDF.Sample(rs.Sampler.Get1D())
	sample := light.Sample(hit.P, hit.Ns, rs.Sampler.Get2D())
	combinedPDF := sample.PDF * lightPDF

	var direct core.Rgb
	if combinedPDF > 0 && sample.Emission.Luminance() > 0 {
		cosTheta := sample.Direction.Dot(hit.Ns)
		if cosTheta > 0 {
			shadowRay := core.NewRayTo(hit.P, sample.Point).WithBounds(it.Opts.SelfIntersectEpsilon, core.NoBound)
			if light.Type() != core.LightTypeInfinite {
				shadowRay.TMax = sample.Distance - it.Opts.SelfIntersectEpsilon
			}
			blocked, filter := scene.IntersectAny(shadowRay, shadowRay.TMax)
			if !blocked || filter.Luminance() > 0 {
				f := hit.Material.Evaluate(hit.SurfacePoint, wo, sample.Direction, core.LobeDiffuse)
				if !blocked {
					filter = core.Rgb{X: 1, Y: 1, Z: 1}
				}
				bsdfPDF, isDelta := hit.Material.PDF(hit.SurfacePoint, wo, sample.Direction)
				weight := 1.0
				if !isDelta {
					weight = core.PowerHeuristic(1, combinedPDF, 1, bsdfPDF)
				}
				direct = f.MultiplyVec(sample.Emission).MultiplyVec(filter).Multiply(cosTheta * weight / combinedPDF)
			}
		}
	}

	return direct
}

// diffuseIndirect implements the state machine's "Indirect" branch. With no
// photon map attached it samples the diffuse lobe and continues the path
// (unbiased but noisy). With it.photons set, Opts.DiffuseMode selects the
// recursive bounce (DirectOnly), the diffuse photon-map term from
// photonDiffuseTerm (photonmap.go) (PhotonOnly), or the sum of both (Both).
// The MIS weight against the light's
// own PDF covers the case where the sampled direction happens to hit a light
// directly, so a pure path tracer still gets the BSDF-sampling half of NEE.
func (it *Integrator) diffuseIndirect(hit core.Hit, wo core.Vec3, scene core.Scene, rs *core.RenderState, diag *core.Diagnostics, throughput core.Rgb) core.Rgb {
	if rs.Depth+1 >= it.Opts.MaxDepth {
		return core.Rgb{}
	}

	var result core.Rgb
	usePhotons := it.photons != nil && it.Opts.DiffuseMode != DiffuseModeDirectOnly
	useRecursion := it.photons == nil || it.Opts.DiffuseMode != DiffuseModePhotonOnly

	if usePhotons {
		result = result.Add(it.photonDiffuseTerm(hit, wo, scene, rs))
	}
	if !useRecursion {
		return result
	}

	scatter, ok := hit.Material.Sample(hit.SurfacePoint, wo, rs.Sampler.Get2D(), core.LobeDiffuse)
	if !ok || scatter.PDF <= 0 {
		return result
	}
	cosTheta := scatter.Wi.Dot(hit.Ns)
	if cosTheta <= 0 {
		return result
	}

	throughputStep := scatter.F.Multiply(cosTheta / scatter.PDF)
	newThroughput := throughput.MultiplyVec(throughputStep)
	invSurvival := 1.0
	if rs.Depth >= it.Opts.RussianRouletteMinBounces {
		survival := clamp(newThroughput.Luminance(), 0.05, 1.0)
		if rs.Sampler.Get1D() > survival {
			return result
		}
		newThroughput = newThroughput.Multiply(1.0 / survival)
		invSurvival = 1.0 / survival
	}

	childRay := core.NewRay(hit.P, scatter.Wi).WithBounds(it.Opts.SelfIntersectEpsilon, core.NoBound)
	childRS := *rs
	childRS.Depth = rs.Depth + 1
	childRS.IncludeEmissive = false

	nextHit, didHit := scene.Intersect(childRay)
	var incoming core.Rgb
	if !didHit {
		incoming = scene.Background(childRay)
	} else {
		if emitter, isEmitter := nextHit.Material.(core.Emitter); isEmitter {
			emission := emitter.Emit(nextHit.SurfacePoint, scatter.Wi.Negate())
			if emission.Luminance() > 0 {
				lightPDF := core.CalculateLightPDF(it.lightCDF.Lights(), hit.P, hit.Ns, scatter.Wi)
				weight := 1.0
				if lightPDF > 0 {
					weight = core.PowerHeuristic(1, scatter.PDF, 1, lightPDF)
				}
				incoming = incoming.Add(emission.Multiply(weight))
			}
		}
		incoming = incoming.Add(it.shade(childRay, nextHit, scene, &childRS, diag, newThroughput))
	}

	return result.Add(throughputStep.Multiply(invSurvival).MultiplyVec(incoming))
}

// dispersiveWavelengthMaterial is the type-assertion escape hatch DESIGN.md
// documents for pkg/material's Dielectric: IndexAt resolves the
// per-wavelength refractive index (Cauchy dispersion), RefractAt recomputes
// the specular direction at an explicit ior. Neither widens core.Material,
// since every other material would have to ignore them.
type dispersiveWavelengthMaterial interface {
	IndexAt(wavelength float64) float64
	RefractAt(sp core.SurfacePoint, wo core.Vec3, ior float64) (core.Vec3, core.Lobe)
}

// Representative wavelengths (nanometers) standing in for the red, green and
// blue primaries when a dispersive material splits an achromatic ray into
// per-channel bands (§4.9 point 5).
const (
	dispersionWavelengthR = 611.0
	dispersionWavelengthG = 549.0
	dispersionWavelengthB = 466.0
)

// specularRecursion implements §4.9 point 5: recurse through every
// deterministic specular lobe the material exposes, splitting the
// wavelength tag for dispersive lobes and applying Russian roulette once
// past RussianRouletteMinBounces.
func (it *Integrator) specularRecursion(ray core.Ray, hit core.Hit, wo core.Vec3, lobe core.Lobe, scene core.Scene, rs *core.RenderState, diag *core.Diagnostics, throughput core.Rgb) core.Rgb {
	filter := core.LobeSpecularReflect | core.LobeSpecularTransmit
	scatter, ok := hit.Material.Sample(hit.SurfacePoint, wo, rs.Sampler.Get2D(), filter)
	if !ok {
		return core.Rgb{}
	}

	if lobe.Has(core.LobeDispersive) && scatter.SampledLobe == core.LobeSpecularTransmit {
		if dispersive, isDispersive := hit.Material.(dispersiveWavelengthMaterial); isDispersive {
			if ray.Wavelength == 0 {
				return it.dispersiveSplit(ray, hit, wo, dispersive, scene, rs, diag, throughput)
			}
			// Already inside a split monochromatic sub-path (e.g. a second
			// dispersive interface): no further fan-out, just recompute the
			// refraction direction at this ray's own wavelength.
			scatter.Wi, scatter.SampledLobe = dispersive.RefractAt(hit.SurfacePoint, wo, dispersive.IndexAt(ray.Wavelength))
		}
	}

	return it.traceSpecularChild(ray, hit, scatter, scene, rs, diag, throughput, 1.0)
}

// dispersiveSplit implements the "each chromatic channel for dispersion"
// half of §4.9 point 5: fan out one child ray per representative wavelength,
// each refracted through IndexAt(wavelength) via RefractAt. Each band
// keeps only its own output channel of the throughput at full weight, so
// the three channel-isolated estimators together conserve total power.
func (it *Integrator) dispersiveSplit(ray core.Ray, hit core.Hit, wo core.Vec3, dispersive dispersiveWavelengthMaterial, scene core.Scene, rs *core.RenderState, diag *core.Diagnostics, throughput core.Rgb) core.Rgb {
	bands := [3]struct {
		wavelength float64
		channel    int
	}{
		{dispersionWavelengthR, 0},
		{dispersionWavelengthG, 1},
		{dispersionWavelengthB, 2},
	}

	var result core.Rgb
	for _, band := range bands {
		wi, sampledLobe := dispersive.RefractAt(hit.SurfacePoint, wo, dispersive.IndexAt(band.wavelength))
		scatter := core.ScatterResult{Wi: wi, F: core.Rgb{X: 1, Y: 1, Z: 1}, PDF: 0, SampledLobe: sampledLobe}

		bandRay := ray
		bandRay.Wavelength = band.wavelength
		contribution := it.traceSpecularChild(bandRay, hit, scatter, scene, rs, diag, throughput, 1.0)

		switch band.channel {
		case 0:
			result.X += contribution.X
		case 1:
			result.Y += contribution.Y
		case 2:
			result.Z += contribution.Z
		}
	}
	return result
}

// traceSpecularChild recurses one specular bounce given an already-resolved
// ScatterResult, applying Russian roulette past RussianRouletteMinBounces
// and rescaling the *returned* radiance (not just the throughput threaded
// into deeper roulette decisions) by 1/survival on the surviving branch, so
// roulette stays an unbiased estimator rather than a systematic energy loss
// (glossary: "weights surviving paths by the inverse of survival
// probability"). splitWeight scales the contribution; both callers,
// including dispersiveSplit's per-band children, pass 1.0.
func (it *Integrator) traceSpecularChild(ray core.Ray, hit core.Hit, scatter core.ScatterResult, scene core.Scene, rs *core.RenderState, diag *core.Diagnostics, throughput core.Rgb, splitWeight float64) core.Rgb {
	newThroughput := throughput.MultiplyVec(scatter.F).Multiply(splitWeight)
	invSurvival := 1.0
	if rs.Depth >= it.Opts.RussianRouletteMinBounces {
		survival := clamp(newThroughput.Luminance(), 0.05, 1.0)
		if rs.Sampler.Get1D() > survival {
			return core.Rgb{}
		}
		newThroughput = newThroughput.Multiply(1.0 / survival)
		invSurvival = 1.0 / survival
	}

	childRay := core.NewRay(hit.P, scatter.Wi).WithBounds(it.Opts.SelfIntersectEpsilon, core.NoBound)
	childRay.Wavelength = ray.Wavelength
	childRS := *rs
	childRS.Depth = rs.Depth + 1
	childRS.IncludeEmissive = true

	incoming := it.trace(childRay, scene, &childRS, diag, newThroughput)
	return scatter.F.Multiply(splitWeight * invSurvival).MultiplyVec(incoming)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
