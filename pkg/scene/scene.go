// Package scene builds core.Scene implementations over pkg/accel's kd-tree,
// wiring pkg/material and pkg/lights into the concrete test scenes the
// renderer drives (§6 "Scene is the external collaborator"; scene-graph
// construction itself is explicitly out of the core's scope).
package scene

import (
	"github.com/lumenforge/tracecore/pkg/accel"
	"github.com/lumenforge/tracecore/pkg/core"
	"github.com/lumenforge/tracecore/pkg/renderer"
)

// Background evaluates the scene's environment radiance for a ray that
// escapes all geometry (§3 "scene.background(ray) -> radiance").
type Background func(ray core.Ray) core.Rgb

// ConstantBackground returns a Background that ignores the ray direction
// entirely, for the uniform-radiance test scene.
func ConstantBackground(c core.Rgb) Background {
	return func(core.Ray) core.Rgb { return c }
}

// GradientBackground interpolates between bottom and top by the ray
// direction's Y component, the teacher's sky-gradient convention.
func GradientBackground(bottom, top core.Rgb) Background {
	return func(ray core.Ray) core.Rgb {
		unit := ray.Direction.Normalize()
		t := 0.5 * (unit.Y + 1.0)
		return bottom.Multiply(1 - t).Add(top.Multiply(t))
	}
}

// Scene is the concrete core.Scene implementation every scene builder in
// this package returns: an accel.Tree for geometry queries, a flat light
// list plus the CDF sampler built over it, a camera, and a background.
type Scene struct {
	tree       *accel.Tree
	lights     []core.Light
	sampler    *core.WeightedLightSampler
	camera     core.Camera
	background Background
}

// New builds a Scene: it constructs the kd-tree over prims (sized per
// §4.5's DefaultOptions formula), preprocesses every light that needs the
// scene's bounding sphere (infinite lights, §4.8), and builds the
// power-weighted light sampler (§4.8 point 1).
func New(prims []core.Primitive, lights []core.Light, camera core.Camera, background Background) *Scene {
	tree := accel.Build(prims, accel.DefaultOptions(len(prims)))

	bound := tree.WorldBound()
	center := bound.Center()
	radius := bound.Size().Length() / 2

	for _, l := range lights {
		if p, ok := l.(interface{ Preprocess(core.Vec3, float64) }); ok {
			p.Preprocess(center, radius)
		}
	}

	return &Scene{
		tree:       tree,
		lights:     lights,
		sampler:    core.NewWeightedLightSampler(lights),
		camera:     camera,
		background: background,
	}
}

func (s *Scene) Intersect(ray core.Ray) (core.Hit, bool) { return s.tree.Intersect(ray) }

func (s *Scene) IntersectAny(ray core.Ray, tMax float64) (bool, core.Rgb) {
	return s.tree.IntersectAny(ray, tMax)
}

func (s *Scene) Lights() []core.Light { return s.lights }

func (s *Scene) Background(ray core.Ray) core.Rgb {
	if s.background == nil {
		return core.Rgb{}
	}
	return s.background(ray)
}

func (s *Scene) Camera() core.Camera { return s.camera }

func (s *Scene) WorldBound() core.AABB { return s.tree.WorldBound() }

// LightSampler exposes the power-weighted CDF sampler built in New, for
// callers that need to pick an emitting light directly rather than going
// through direct-lighting NEE. photon.Trace builds its own sampler from
// Lights() instead.
func (s *Scene) LightSampler() *core.WeightedLightSampler { return s.sampler }

// quadTriangles splits a parallelogram (corner, corner+u, corner+v,
// corner+u+v) into the two triangles the kd-tree actually intersects. Used
// both for opaque quad walls and for an area light's visible emitter
// geometry, since core.Light.Emit returns zero for finite lights (§6): the
// light is only seen by the camera through its own triangles.
func quadTriangles(corner, u, v core.Vec3, mat core.Material) []core.Primitive {
	p0 := corner
	p1 := corner.Add(u)
	p2 := corner.Add(u).Add(v)
	p3 := corner.Add(v)
	return []core.Primitive{
		&core.Triangle{P0: p0, P1: p1, P2: p2, Mat: mat, VisibleFlag: true},
		&core.Triangle{P0: p0, P1: p2, P2: p3, Mat: mat, VisibleFlag: true},
	}
}

// groundQuad builds a large finite quad standing in for an infinite ground
// plane (the teacher's NewGroundQuad convention), centered at center with
// the given side length and normal +Y.
func groundQuad(center core.Vec3, size float64, mat core.Material) []core.Primitive {
	corner := core.Vec3{X: center.X - size/2, Y: center.Y, Z: center.Z - size/2}
	u := core.Vec3{X: size, Y: 0, Z: 0}
	v := core.Vec3{X: 0, Y: 0, Z: size}
	return quadTriangles(corner, u, v, mat)
}

// defaultCamera builds the renderer.Camera for width x height at the given
// eye/lookAt/vfov with no depth-of-field, the common case every test scene
// below that doesn't need bokeh uses.
func defaultCamera(eye, lookAt core.Vec3, vfov float64, width, height int) core.Camera {
	return renderer.NewCamera(eye, lookAt, core.Vec3{Y: 1}, vfov, float64(width), float64(height), 0, 0)
}
