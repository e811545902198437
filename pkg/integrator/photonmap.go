package integrator

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
	"github.com/lumenforge/tracecore/pkg/photon"
)

// NewPhotonMapIntegrator attaches a built photon map to the surface
// integrator, turning on step 4 of §4.9's state machine: a caustic density
// estimate alongside direct lighting, and a photon-map-backed diffuse term
// (density estimate, final gather, or both per Opts.PhotonGatherMode) that
// Opts.DiffuseMode adds to the recursive bounce (DiffuseModeBoth), uses in
// its place (DiffuseModePhotonOnly), or leaves out (DiffuseModeDirectOnly).
func NewPhotonMapIntegrator(opts Options, lights []core.Light, photons *photon.Map) *Integrator {
	it := &Integrator{Opts: opts, lightCDF: core.NewWeightedLightSampler(lights), photons: photons}
	if opts.IrradianceCache {
		it.irrCache = newIrradianceCache(opts.IrradianceCacheCellSize, opts.IrradianceCacheNormalCos)
	}
	return it
}

// photonDiffuseTerm is diffuseIndirect's photon-map branch, combining the
// strategies Opts.PhotonGatherMode selects (§4.9 point 4's "either...or",
// with PhotonGatherBoth averaging both to trade the density estimate's
// close-range blur against the gather's extra noise).
func (it *Integrator) photonDiffuseTerm(hit core.Hit, wo core.Vec3, scene core.Scene, rs *core.RenderState) core.Rgb {
	var sum core.Rgb
	var terms float64

	if it.Opts.PhotonGatherMode == PhotonGatherDensity || it.Opts.PhotonGatherMode == PhotonGatherBoth {
		sum = sum.Add(it.diffuseDensityEstimate(hit, wo))
		terms++
	}
	if it.Opts.PhotonGatherMode == PhotonGatherFinal || it.Opts.PhotonGatherMode == PhotonGatherBoth {
		sum = sum.Add(it.diffuseFinalGather(hit, wo, scene, rs))
		terms++
	}
	if terms == 0 {
		return core.Rgb{}
	}
	return sum.Multiply(1.0 / terms)
}

// causticContribution is the k-nearest density estimate of §4.9 point 4's
// first bullet: L = (1/(pi*r^2*paths)) * sum(f * Phi_i) over the nearest
// caustic photons within CausticRadius.
func (it *Integrator) causticContribution(hit core.Hit, wo core.Vec3) core.Rgb {
	if it.photons.CausticTree == nil || it.photons.Paths == 0 {
		return core.Rgb{}
	}
	photons, radiusSq := it.photons.CausticTree.KNearest(hit.P, it.Opts.CausticPhotons, it.Opts.CausticRadius)
	if len(photons) == 0 || radiusSq <= 0 {
		return core.Rgb{}
	}

	var sum core.Rgb
	for _, ph := range photons {
		cosTheta := ph.Dir.Dot(hit.Ns)
		if cosTheta <= 0 {
			continue
		}
		f := hit.Material.Evaluate(hit.SurfacePoint, wo, ph.Dir, core.LobeDiffuse)
		sum = sum.Add(f.MultiplyVec(ph.Power))
	}

	norm := 1.0 / (math.Pi * radiusSq * float64(it.photons.Paths))
	return sum.Multiply(norm)
}

// diffuseDensityEstimate reads indirect diffuse radiance directly from the
// diffuse photon map at the primary hit, the cheap half of §4.9 point 4's
// second bullet.
func (it *Integrator) diffuseDensityEstimate(hit core.Hit, wo core.Vec3) core.Rgb {
	if it.photons.DiffuseTree == nil || it.photons.Paths == 0 {
		return core.Rgb{}
	}
	photons, radiusSq := it.photons.DiffuseTree.KNearest(hit.P, it.Opts.DiffusePhotons, it.Opts.DiffuseRadius)
	if len(photons) == 0 || radiusSq <= 0 {
		return core.Rgb{}
	}

	var sum core.Rgb
	for _, ph := range photons {
		cosTheta := ph.Dir.Dot(hit.Ns)
		if cosTheta <= 0 {
			continue
		}
		f := hit.Material.Evaluate(hit.SurfacePoint, wo, ph.Dir, core.LobeDiffuse)
		sum = sum.Add(f.MultiplyVec(ph.Power))
	}

	norm := 1.0 / (math.Pi * radiusSq * float64(it.photons.Paths))
	return sum.Multiply(norm)
}

// diffuseFinalGather implements §4.9 point 4's final-gather strategy: one
// BSDF-sampled bounce, then a diffuse-map density estimate at the secondary
// hit instead of continuing to trace the full path recursively. When
// Opts.IrradianceCache is set, the per-hit-point irradiance estimate (the
// bounce's result independent of the incoming direction's own cosine/pdf
// weighting) is cached and reused by later queries that land at a nearby
// point with a close-enough normal, so a smooth diffuse region pays for one
// final-gather bounce instead of one per sample.
func (it *Integrator) diffuseFinalGather(hit core.Hit, wo core.Vec3, scene core.Scene, rs *core.RenderState) core.Rgb {
	if it.irrCache != nil {
		if cached, ok := it.irrCache.lookup(hit.P, hit.Ns); ok {
			return cached
		}
	}

	scatter, ok := hit.Material.Sample(hit.SurfacePoint, wo, rs.Sampler.Get2D(), core.LobeDiffuse)
	if !ok || scatter.PDF <= 0 {
		return core.Rgb{}
	}
	cosTheta := scatter.Wi.Dot(hit.Ns)
	if cosTheta <= 0 {
		return core.Rgb{}
	}

	ray := core.NewRay(hit.P, scatter.Wi).WithBounds(it.Opts.SelfIntersectEpsilon, core.NoBound)
	nextHit, didHit := scene.Intersect(ray)
	if !didHit {
		return core.Rgb{}
	}
	nextLobe := nextHit.Material.Capabilities(nextHit.SurfacePoint)
	if !nextLobe.Has(core.LobeDiffuse) {
		return core.Rgb{}
	}

	estimate := it.diffuseDensityEstimate(nextHit, scatter.Wi.Negate())
	result := scatter.F.Multiply(cosTheta / scatter.PDF).MultiplyVec(estimate)

	if it.irrCache != nil {
		it.irrCache.insert(hit.P, hit.Ns, result)
	}
	return result
}
