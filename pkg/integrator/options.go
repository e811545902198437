// Package integrator implements the surface (C9) and, through NewPhotonMapIntegrator,
// photon-accelerated state machine of §4.9: Trace -> Shade -> {DirectLight,
// Photon, Specular, Indirect}* -> Combine.
package integrator

// DiffuseMode resolves the direct-lighting-vs-photon-map double-count Open
// Question: DiffuseModeBoth reproduces the source's behavior of summing an
// unbiased recursive bounce with the photon map's density estimate (which
// can double-count indirect light but matches the reference renderer's
// output), while DirectOnly/PhotonOnly pick a single, unbiased estimator.
type DiffuseMode int

const (
	// DiffuseModeDirectOnly always continues the path with an ordinary
	// recursive diffuse bounce, even when a photon map is attached.
	DiffuseModeDirectOnly DiffuseMode = iota
	// DiffuseModePhotonOnly always reads the diffuse photon map instead of
	// recursing; requires a photon map (falls back to DirectOnly without one).
	DiffuseModePhotonOnly
	// DiffuseModeBoth sums the recursive bounce and the photon-map term.
	DiffuseModeBoth
)

// PhotonGatherMode selects how the diffuse photon map itself is queried
// once DiffuseMode has decided to consult it (§4.9 point 4's "either...or").
type PhotonGatherMode int

const (
	// PhotonGatherDensity reads indirect radiance directly from the diffuse
	// photon map's density estimate at the primary hit point. Fast, but
	// blurs at the photon map's effective resolution.
	PhotonGatherDensity PhotonGatherMode = iota
	// PhotonGatherFinal performs one BSDF-sampled final-gather bounce and
	// reads the diffuse photon map's density estimate at the secondary hit,
	// trading a bounce of extra tracing for a sharper result.
	PhotonGatherFinal
	// PhotonGatherBoth blends density estimate and final gather: avoids
	// both the density estimate's blur on nearby geometry and the gather's
	// noise on distant geometry.
	PhotonGatherBoth
)

// Options configures the surface integrator (§4.9) and its Russian-roulette
// and photon-density-estimate tuning.
type Options struct {
	MaxDepth                  int
	RussianRouletteMinBounces int
	SelfIntersectEpsilon      float64

	// CausticPhotons/CausticRadius bound the caustic density estimate's
	// k-nearest lookup (§4.9 point 4).
	CausticPhotons int
	CausticRadius  float64

	DiffuseMode      DiffuseMode
	PhotonGatherMode PhotonGatherMode
	DiffusePhotons   int
	DiffuseRadius    float64

	// IrradianceCache enables reuse of final-gather estimates across nearby
	// surface points (YafaRay's photon-integrator irradiance cache; see
	// DESIGN.md's "SUPPLEMENTED FEATURES" entry). IrradianceCacheCellSize
	// quantizes position into cache cells; IrradianceCacheNormalCos bounds
	// how far a cached sample's normal may diverge from the query before a
	// fresh final-gather bounce is required.
	IrradianceCache          bool
	IrradianceCacheCellSize  float64
	IrradianceCacheNormalCos float64
}

// DefaultOptions returns the tuning this renderer ships with absent
// scene-specific overrides.
func DefaultOptions() Options {
	return Options{
		MaxDepth:                  16,
		RussianRouletteMinBounces: 3,
		SelfIntersectEpsilon:      1e-4,
		CausticPhotons:            50,
		CausticRadius:             0.5,
		DiffuseMode:               DiffuseModeBoth,
		PhotonGatherMode:          PhotonGatherBoth,
		DiffusePhotons:            50,
		DiffuseRadius:             1.0,
		IrradianceCache:           true,
		IrradianceCacheCellSize:   0.25,
		IrradianceCacheNormalCos:  0.9,
	}
}
