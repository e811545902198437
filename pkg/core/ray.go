package core

import "math"

// Ray carries the parametric bound [TMin, TMax], a wavelength tag for
// dispersive dielectric paths, and optional differentials used by texture
// filtering (§3 "Ray"). TMax == NoBound means "unbounded".
type Ray struct {
	Origin    Vec3
	Direction Vec3
	TMin      float64
	TMax      float64
	Wavelength float64 // 0 means "unassigned / achromatic"

	HasDifferentials bool
	OriginX, DirX    Vec3
	OriginY, DirY    Vec3
}

// NoBound is the sentinel TMax meaning "no upper bound".
const NoBound = math.MaxFloat64

// NewRay creates a ray with the default [0, NoBound) parametric range.
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction, TMin: 0, TMax: NoBound}
}

// NewRayTo creates a ray from origin toward target, normalized, bounded at
// the target so it can be used directly as a shadow ray.
func NewRayTo(origin, target Vec3) Ray {
	delta := target.Subtract(origin)
	dist := delta.Length()
	if dist == 0 {
		return NewRay(origin, Vec3{X: 0, Y: 0, Z: 1})
	}
	r := NewRay(origin, delta.Multiply(1/dist))
	r.TMax = dist
	return r
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// WithBounds returns a copy of the ray with a new parametric range.
func (r Ray) WithBounds(tMin, tMax float64) Ray {
	r.TMin, r.TMax = tMin, tMax
	return r
}

// PropagateDifferentials reflects or refracts the ray differentials using
// the same surface normal as the primary ray, per §3's "propagated by
// reflection/refraction laws" invariant. eta is 1 for reflection, the
// relative index of refraction for transmission.
func (r Ray) PropagateDifferentials(p, n Vec3, reflected bool, eta float64) Ray {
	if !r.HasDifferentials {
		return r
	}
	out := r
	if reflected {
		out.OriginX = p
		out.OriginY = p
		out.DirX = reflect(r.DirX, n)
		out.DirY = reflect(r.DirY, n)
	} else {
		out.OriginX = p
		out.OriginY = p
		out.DirX = refractApprox(r.DirX, n, eta)
		out.DirY = refractApprox(r.DirY, n, eta)
	}
	return out
}

func reflect(v, n Vec3) Vec3 {
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}

// refractApprox is a first-order approximation sufficient for differential
// propagation (it does not need to be bit-exact with the primary refraction).
func refractApprox(v, n Vec3, eta float64) Vec3 {
	return v.Multiply(eta)
}
