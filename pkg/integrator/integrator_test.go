package integrator

import (
	"testing"

	"github.com/lumenforge/tracecore/pkg/core"
	"github.com/lumenforge/tracecore/pkg/lights"
	"github.com/lumenforge/tracecore/pkg/material"
	"github.com/lumenforge/tracecore/pkg/volume"
)

// planeScene is a minimal core.Scene test double: an infinite horizontal
// Lambertian plane at y=0 lit by one light, with a constant background.
type planeScene struct {
	mat        core.Material
	light      core.Light
	background core.Rgb
}

func (s *planeScene) Intersect(ray core.Ray) (core.Hit, bool) {
	if ray.Direction.Y == 0 {
		return core.Hit{}, false
	}
	t := -ray.Origin.Y / ray.Direction.Y
	if t <= ray.TMin || t >= ray.TMax {
		return core.Hit{}, false
	}
	p := ray.At(t)
	return core.Hit{T: t, SurfacePoint: core.SurfacePoint{
		P: p, Ns: core.NewVec3(0, 1, 0), Ng: core.NewVec3(0, 1, 0),
		Material: s.mat, FrontFace: true,
	}}, true
}

func (s *planeScene) IntersectAny(ray core.Ray, tMax float64) (bool, core.Rgb) {
	hit, ok := s.Intersect(ray.WithBounds(ray.TMin, tMax))
	return ok && hit.T < tMax, core.Rgb{}
}

func (s *planeScene) Lights() []core.Light { return []core.Light{s.light} }
func (s *planeScene) Background(ray core.Ray) core.Rgb { return s.background }
func (s *planeScene) Camera() core.Camera { return nil }
func (s *planeScene) WorldBound() core.AABB {
	return core.NewAABB(core.NewVec3(-1e6, -1e6, -1e6), core.NewVec3(1e6, 1e6, 1e6))
}

type constSampler struct{ v1 float64; v2 core.Vec2 }

func (c constSampler) Get1D() float64  { return c.v1 }
func (c constSampler) Get2D() core.Vec2 { return c.v2 }
func (c constSampler) Get3D() core.Vec3 { return core.Vec3{X: c.v1, Y: c.v2.X, Z: c.v2.Y} }

func newTestScene() *planeScene {
	lambert := material.NewLambertian(core.Rgb{X: 0.5, Y: 0.5, Z: 0.5})
	light := lights.NewPointLight(core.NewVec3(0, 5, 0), core.Rgb{X: 10, Y: 10, Z: 10})
	return &planeScene{mat: lambert, light: light, background: core.Rgb{X: 0.1, Y: 0.2, Z: 0.3}}
}

func TestDirectLightingIlluminatesPlane(t *testing.T) {
	scene := newTestScene()
	it := NewDirectIntegrator(DefaultOptions(), scene.Lights())

	ray := core.NewRay(core.NewVec3(0, 2, 0), core.NewVec3(0, -1, 0))
	rs := &core.RenderState{Sampler: constSampler{v1: 0.5, v2: core.Vec2{X: 0.25, Y: 0.75}}, IncludeEmissive: true}
	var diag core.Diagnostics

	color := it.RayColor(ray, scene, rs, &diag)
	if color.Luminance() <= 0 {
		t.Errorf("expected positive radiance under a point light, got %v", color)
	}
}

func TestMissReturnsBackground(t *testing.T) {
	scene := newTestScene()
	it := NewDirectIntegrator(DefaultOptions(), scene.Lights())

	ray := core.NewRay(core.NewVec3(0, 2, 0), core.NewVec3(0, 1, 0)) // points away from the plane
	rs := &core.RenderState{Sampler: constSampler{v1: 0.1, v2: core.Vec2{X: 0.1, Y: 0.1}}, IncludeEmissive: true}
	var diag core.Diagnostics

	color := it.RayColor(ray, scene, rs, &diag)
	if color != scene.background {
		t.Errorf("color = %v, want background %v", color, scene.background)
	}
}

func TestMaxDepthTerminatesRecursion(t *testing.T) {
	scene := newTestScene()
	opts := DefaultOptions()
	opts.MaxDepth = 0
	it := NewDirectIntegrator(opts, scene.Lights())

	ray := core.NewRay(core.NewVec3(0, 2, 0), core.NewVec3(0, -1, 0))
	rs := &core.RenderState{Sampler: constSampler{v1: 0.5, v2: core.Vec2{X: 0.5, Y: 0.5}}, IncludeEmissive: true}
	var diag core.Diagnostics

	color := it.RayColor(ray, scene, rs, &diag)
	if color != (core.Rgb{}) {
		t.Errorf("depth-0 integrator should return zero radiance, got %v", color)
	}
}

func TestDispersiveSpecularRecursionSplitsWavelengthBands(t *testing.T) {
	glass := &material.Dielectric{RefractiveIndex: 1.5, Dispersive: true, CauchyB: 4000}
	background := core.Rgb{X: 0.3, Y: 0.6, Z: 0.9}
	scene := &planeScene{
		mat:        glass,
		light:      lights.NewPointLight(core.NewVec3(0, 5, 0), core.Rgb{X: 10, Y: 10, Z: 10}),
		background: background,
	}
	it := NewDirectIntegrator(DefaultOptions(), scene.Lights())

	// An oblique ray well inside the critical angle, so all three chromatic
	// bands transmit (no TIR) and the refracted child ray continues past the
	// plane into the background, the same background from every band.
	ray := core.NewRay(core.NewVec3(0, 2, 0), core.NewVec3(0.5, -0.866, 0))
	rs := &core.RenderState{Sampler: constSampler{v1: 0.5, v2: core.Vec2{X: 0.5, Y: 0.5}}, IncludeEmissive: true}
	var diag core.Diagnostics

	color := it.RayColor(ray, scene, rs, &diag)
	want := background
	const tol = 1e-9
	if diff := color.X - want.X; diff > tol || diff < -tol {
		t.Errorf("X = %v, want %v", color.X, want.X)
	}
	if diff := color.Y - want.Y; diff > tol || diff < -tol {
		t.Errorf("Y = %v, want %v", color.Y, want.Y)
	}
	if diff := color.Z - want.Z; diff > tol || diff < -tol {
		t.Errorf("Z = %v, want %v", color.Z, want.Z)
	}
}

func TestMediumAttenuatesMissedRayBackground(t *testing.T) {
	scene := newTestScene()
	it := NewDirectIntegrator(DefaultOptions(), scene.Lights())
	it.WithMedium(&volume.Homogeneous{
		SigmaA:   core.Rgb{X: 1, Y: 1, Z: 1},
		BoundBox: core.NewAABB(core.NewVec3(-5, -5, -5), core.NewVec3(5, 5, 5)),
		StepSize: 0.1,
	})

	ray := core.NewRay(core.NewVec3(0, 2, 0), core.NewVec3(0, 1, 0)) // points away from the plane, hits background
	rs := &core.RenderState{Sampler: constSampler{v1: 0.1, v2: core.Vec2{X: 0.1, Y: 0.1}}, IncludeEmissive: true}
	var diag core.Diagnostics

	color := it.RayColor(ray, scene, rs, &diag)
	if color.Luminance() >= scene.background.Luminance() {
		t.Errorf("a pure-absorption medium should dim the background, got %v want < %v", color, scene.background)
	}
}
