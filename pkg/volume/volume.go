// Package volume implements C10: participating-media integration over the
// supported volume kinds of §4.10 (empty, homogeneous, sky, grid, noise).
package volume

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
)

// Volume is the capability the surface integrator composes with surface
// radiance: T(ray)*L_s + in-scatter + emission, per §4.10's rendering
// equation.
type Volume interface {
	// Transmittance returns T(s) = exp(-integral of sigma_t) along ray from
	// ray.TMin to the given distance.
	Transmittance(ray core.Ray, distance float64) core.Rgb
	// Integrate ray-marches the volume's contribution up to distance,
	// sampling in-scatter via sampleLi at each step. The surface integrator
	// supplies sampleLi as a one-light next-event estimate of direct light;
	// it is not combined with a phase-function-sampled direction by MIS.
	Integrate(ray core.Ray, distance float64, sampler core.Sampler, sampleLi func(p, wo core.Vec3) core.Rgb) core.Rgb
	Bound() core.AABB
}

// Empty is the degenerate volume: transmittance 1, no in-scatter (§4.10).
type Empty struct{}

func (Empty) Transmittance(core.Ray, float64) core.Rgb { return core.Rgb{X: 1, Y: 1, Z: 1} }
func (Empty) Integrate(core.Ray, float64, core.Sampler, func(core.Vec3, core.Vec3) core.Rgb) core.Rgb {
	return core.Rgb{}
}
func (Empty) Bound() core.AABB { return core.AABB{} }

// clipToBound intersects ray against b and returns the [tNear,tFar]
// overlap with [ray.TMin, distance], or ok=false if there is none.
func clipToBound(ray core.Ray, b core.AABB, distance float64) (tNear, tFar float64, ok bool) {
	tNear, tFar = ray.TMin, distance
	for axis := 0; axis < 3; axis++ {
		var lo, hi, o, d float64
		switch axis {
		case 0:
			lo, hi, o, d = b.Min.X, b.Max.X, ray.Origin.X, ray.Direction.X
		case 1:
			lo, hi, o, d = b.Min.Y, b.Max.Y, ray.Origin.Y, ray.Direction.Y
		default:
			lo, hi, o, d = b.Min.Z, b.Max.Z, ray.Origin.Z, ray.Direction.Z
		}
		if math.Abs(d) < 1e-12 {
			if o < lo || o > hi {
				return 0, 0, false
			}
			continue
		}
		t1, t2 := (lo-o)/d, (hi-o)/d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tNear = math.Max(tNear, t1)
		tFar = math.Min(tFar, t2)
		if tNear > tFar {
			return 0, 0, false
		}
	}
	return tNear, tFar, true
}
