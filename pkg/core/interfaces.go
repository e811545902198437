package core

// Logger is the sink the renderer writes progress and diagnostics to. The
// default implementation (pkg/logging) backs this with zap; tests and
// embedders can supply their own.
type Logger interface {
	Printf(format string, args ...interface{})
}

// Sampler is the per-path source of sample-sequence dimensions (C1). Every
// blocking draw during integration goes through it so that a path's random
// decisions are reproducible given (pixel, pass, sample) regardless of
// thread scheduling (§4.1, §5).
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// Lobe is a bitmask over material scattering capabilities (§9 "model each
// as a capability set"). The integrator only ever asks a material what it
// can do; it never switches on a concrete type.
type Lobe uint8

const (
	LobeEmit Lobe = 1 << iota
	LobeDiffuse
	LobeSpecularReflect
	LobeSpecularTransmit
	LobeDispersive
	LobeTransparent

	LobeAll = LobeEmit | LobeDiffuse | LobeSpecularReflect | LobeSpecularTransmit | LobeDispersive | LobeTransparent
	LobeSpecular = LobeSpecularReflect | LobeSpecularTransmit
)

func (l Lobe) Has(bit Lobe) bool { return l&bit != 0 }

// SurfacePoint is the immutable description of a ray/primitive intersection
// (§3 "Surface point"). Ns and Ng are unit vectors on the same side of the
// incident ray after normal-flip.
type SurfacePoint struct {
	P             Vec3 // world position
	Ns            Vec3 // shading normal
	Ng            Vec3 // geometric normal
	Tu, Tv        Vec3 // orthonormal tangent frame
	Dpdu, Dpdv    Vec3 // surface partial derivatives
	U, V          float64
	Material      Material
	PrimitiveID   int
	FrontFace     bool
}

// Hit is the result of a scene intersection: the ray parameter and the
// surface description at that point.
type Hit struct {
	T float64
	SurfacePoint
}

// ScatterResult is what Material.Sample returns: the new direction, its
// throughput contribution, pdf, and which lobe produced it. PDF <= 0 marks
// a delta-distribution (specular) sample, mirroring the source's encoding.
type ScatterResult struct {
	Wi          Vec3
	F           Rgb
	PDF         float64
	SampledLobe Lobe
}

func (s ScatterResult) IsSpecular() bool { return s.PDF <= 0 }

// Material is the capability set the integrator drives (§9). Concrete
// materials (pkg/material) are external-collaborator style — only this
// contract is part of the core.
type Material interface {
	// Capabilities reports which lobes this material exposes at sp, so the
	// integrator can skip whole branches of the state machine (e.g. an
	// opaque Lambertian shortcuts specular recursion entirely).
	Capabilities(sp SurfacePoint) Lobe

	// Evaluate returns f(wo, wi) for the non-delta lobes selected by filter.
	Evaluate(sp SurfacePoint, wo, wi Vec3, filter Lobe) Rgb

	// Sample draws a new direction from filter's lobes given two uniform
	// numbers. ok is false if the material has nothing to sample for filter.
	Sample(sp SurfacePoint, wo Vec3, u Vec2, filter Lobe) (ScatterResult, bool)

	// PDF returns the solid-angle pdf of sampling wi via Sample, and
	// whether that lobe is a delta distribution (can't be hit by NEE).
	PDF(sp SurfacePoint, wo, wi Vec3) (pdf float64, isDelta bool)
}

// Emitter is implemented by materials with LobeEmit set.
type Emitter interface {
	Emit(sp SurfacePoint, wo Vec3) Rgb
}

// LightType tags a light for the CDF builder and for photon emission
// sampling (§4.8 point 1).
type LightType string

const (
	LightTypeArea     LightType = "area"
	LightTypePoint    LightType = "point"
	LightTypeInfinite LightType = "infinite"
)

// LightSample is the result of sampling a light toward a shading point
// (direction points FROM the point TO the light, §6).
type LightSample struct {
	Point     Vec3
	Normal    Vec3
	Direction Vec3
	Distance  float64
	Emission  Rgb
	PDF       float64
}

// EmissionSample is the result of sampling a light's own surface for photon
// emission / BDPT-style light paths (direction points FROM the light, §6).
type EmissionSample struct {
	Point        Vec3
	Normal       Vec3
	Direction    Vec3
	Emission     Rgb
	AreaPDF      float64
	DirectionPDF float64
}

// Light is the capability set a light source exposes to direct lighting
// (C9) and to photon emission (C8).
type Light interface {
	Type() LightType
	Power() float64
	Sample(point, normal Vec3, u Vec2) LightSample
	PDF(point, normal, direction Vec3) float64
	SampleEmission(uPos, uDir Vec2) EmissionSample
	EmissionPDF(point, direction Vec3) float64
	// Emit evaluates emission hit directly by a camera/indirect ray
	// (infinite lights return a direction-dependent value; finite lights
	// return zero, since they are only visible via explicit geometry hit).
	Emit(ray Ray) Rgb
}

// Camera generates primary rays (§6). Differentials are produced by
// sampling two nearby pixels, per the source's convention.
type Camera interface {
	GenerateRay(pixelX, pixelY, lensU, lensV float64) (Ray, float64)
}

// Scene is the external collaborator the core renders against (§6). Its
// internals (scene-graph construction, plugin loading) are out of scope;
// only this contract matters to the core.
type Scene interface {
	Intersect(ray Ray) (Hit, bool)
	// IntersectAny is used for shadow rays. It returns whether the ray is
	// blocked and, for translucent occluders, an accumulated filter color
	// (opaque occluders return filter == zero and blocked == true).
	IntersectAny(ray Ray, tMax float64) (blocked bool, filter Rgb)
	Lights() []Light
	Background(ray Ray) Rgb
	Camera() Camera
	WorldBound() AABB
}

// RenderState is the per-sample mutable context carried through integrator
// recursion (§3 "Render state").
type RenderState struct {
	Sampler         Sampler
	Depth           int
	Wavelength      float64
	PixelX, PixelY  int
	Pass, Sample    int
	IncludeEmissive bool // true on camera rays, false after an NEE bounce
}

// Diagnostics aggregates the per-thread recoverable-error counters from §7.
// Each worker keeps its own and the driver merges them at pass boundaries
// (§5 "the driver aggregates counters at pass end").
type Diagnostics struct {
	NaNClamped            int64
	SelfIntersectSkipped  int64
	DegenerateTriangles   int64
	ZeroPowerLights       int64
	PhotonDepositFailed   int64
	PhotonsDiscarded      int64
}

func (d *Diagnostics) Merge(other Diagnostics) {
	d.NaNClamped += other.NaNClamped
	d.SelfIntersectSkipped += other.SelfIntersectSkipped
	d.DegenerateTriangles += other.DegenerateTriangles
	d.ZeroPowerLights += other.ZeroPowerLights
	d.PhotonDepositFailed += other.PhotonDepositFailed
	d.PhotonsDiscarded += other.PhotonsDiscarded
}

// ClampRadiance implements the §7 runtime-recoverable policy: NaN or
// negative radiance is clamped to zero and counted, never propagated.
func ClampRadiance(c Rgb, diag *Diagnostics) Rgb {
	if !c.IsFinite() || !c.IsNonNegative() {
		if diag != nil {
			diag.NaNClamped++
		}
		return Rgb{}
	}
	return c
}
