package integrator

import (
	"testing"

	"github.com/lumenforge/tracecore/pkg/core"
	"github.com/lumenforge/tracecore/pkg/material"
	"github.com/lumenforge/tracecore/pkg/photon"
)

// upwardHitScene always reports a diffuse hit for any ray pointing roughly
// upward (+Y), so a final-gather bounce from the origin is guaranteed to
// land on diffuse geometry instead of missing into the background.
type upwardHitScene struct {
	mat core.Material
}

func (s *upwardHitScene) Intersect(ray core.Ray) (core.Hit, bool) {
	if ray.Direction.Y <= 0 {
		return core.Hit{}, false
	}
	return core.Hit{T: 5, SurfacePoint: core.SurfacePoint{
		P: ray.At(5), Ns: core.NewVec3(0, -1, 0), Ng: core.NewVec3(0, -1, 0),
		Material: s.mat, FrontFace: true,
	}}, true
}

func (s *upwardHitScene) IntersectAny(ray core.Ray, tMax float64) (bool, core.Rgb) {
	hit, ok := s.Intersect(ray.WithBounds(ray.TMin, tMax))
	return ok && hit.T < tMax, core.Rgb{}
}

func (s *upwardHitScene) Lights() []core.Light       { return nil }
func (s *upwardHitScene) Background(ray core.Ray) core.Rgb { return core.Rgb{} }
func (s *upwardHitScene) Camera() core.Camera        { return nil }
func (s *upwardHitScene) WorldBound() core.AABB {
	return core.NewAABB(core.NewVec3(-1e6, -1e6, -1e6), core.NewVec3(1e6, 1e6, 1e6))
}

func TestIrradianceCacheReusesNearbyEstimate(t *testing.T) {
	cache := newIrradianceCache(0.25, 0.9)
	p := core.NewVec3(1.0, 2.0, 3.0)
	n := core.NewVec3(0, 1, 0)

	if _, ok := cache.lookup(p, n); ok {
		t.Fatalf("expected empty cache to miss")
	}

	want := core.Rgb{X: 0.1, Y: 0.2, Z: 0.3}
	cache.insert(p, n, want)

	// A query point within the same cell and an agreeing normal must reuse
	// the cached value.
	nearby := core.NewVec3(1.05, 2.02, 3.03)
	got, ok := cache.lookup(nearby, n)
	if !ok {
		t.Fatalf("expected cache hit for nearby point in the same cell")
	}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}

	// A query with a sharply different normal must not reuse the entry.
	perpendicular := core.NewVec3(1, 0, 0)
	if _, ok := cache.lookup(p, perpendicular); ok {
		t.Errorf("expected cache miss for disagreeing normal")
	}

	// A query far outside the cell must not reuse the entry either.
	far := core.NewVec3(10, 10, 10)
	if _, ok := cache.lookup(far, n); ok {
		t.Errorf("expected cache miss for a point in a different cell")
	}
}

func TestDiffuseFinalGatherPopulatesIrradianceCache(t *testing.T) {
	lambert := material.NewLambertian(core.Rgb{X: 0.5, Y: 0.5, Z: 0.5})
	scene := &upwardHitScene{mat: lambert}
	diffusePhotons := []photon.Photon{
		{Position: core.NewVec3(0, 5, 0), Dir: core.NewVec3(0, 1, 0), Power: core.NewVec3(1, 1, 1)},
	}
	m := &photon.Map{
		Diffuse:     diffusePhotons,
		DiffuseTree: photon.Build(diffusePhotons),
		Paths:       100,
		Name:        "test-map",
	}

	opts := DefaultOptions()
	opts.IrradianceCache = true
	opts.PhotonGatherMode = PhotonGatherFinal
	opts.DiffuseRadius = 10
	it := NewPhotonMapIntegrator(opts, nil, m)
	if it.irrCache == nil {
		t.Fatalf("expected NewPhotonMapIntegrator to allocate an irradiance cache when enabled")
	}

	hit := core.Hit{SurfacePoint: core.SurfacePoint{
		P: core.NewVec3(0, 0, 0), Ns: core.NewVec3(0, 1, 0), Material: lambert, FrontFace: true,
	}}
	rs := &core.RenderState{Sampler: constSampler{v1: 0.5, v2: core.Vec2{X: 0.5, Y: 0.5}}}

	first := it.diffuseFinalGather(hit, core.NewVec3(0, 1, 0), scene, rs)
	if _, ok := it.irrCache.lookup(hit.P, hit.Ns); !ok {
		t.Fatalf("expected diffuseFinalGather to populate the irradiance cache")
	}

	second := it.diffuseFinalGather(hit, core.NewVec3(0, 1, 0), scene, rs)
	if first != second {
		t.Errorf("expected cached reuse to return the identical estimate, got %v then %v", first, second)
	}
}
