package core

import "math"

// Primitive is the tagged-sum entity of §3: a triangle, sphere, or instance
// of another primitive. The kd-tree (C5) only depends on this contract.
type Primitive interface {
	Bound() AABB
	Intersect(ray Ray) (Hit, bool)
	// SampleArea draws a point on the primitive's surface for area light
	// sampling, returning the point, outward normal, and area-measure pdf.
	SampleArea(u Vec2) (p, n Vec3, pdf float64)
	Area() float64
	Visible() bool
}

// Clippable is implemented by primitives that support the Sutherland-Hodgman
// box-clip refinement of §4.5 step 6. Triangle is the only clippable
// primitive in this module; for the others the build intersects Bound()
// with the child box.
type Clippable interface {
	ClipToBox(box AABB) (AABB, bool)
}

// Triangle is the concrete triangle primitive of §3. Shading normals are
// interpolated from the three vertex normals; if all three are zero the
// flat face normal is used instead.
type Triangle struct {
	P0, P1, P2    Vec3
	N0, N1, N2    Vec3
	UV0, UV1, UV2 Vec2
	Mat           Material
	VisibleFlag   bool
}

func (t *Triangle) Visible() bool { return t.VisibleFlag }

func (t *Triangle) faceNormal() Vec3 {
	return t.P1.Subtract(t.P0).Cross(t.P2.Subtract(t.P0)).Normalize()
}

func (t *Triangle) Bound() AABB {
	return NewAABBFromPoints(t.P0, t.P1, t.P2)
}

func (t *Triangle) Area() float64 {
	return t.P1.Subtract(t.P0).Cross(t.P2.Subtract(t.P0)).Length() * 0.5
}

// Intersect implements the Möller-Trumbore ray/triangle test.
func (t *Triangle) Intersect(ray Ray) (Hit, bool) {
	const epsilon = 1e-9

	edge1 := t.P1.Subtract(t.P0)
	edge2 := t.P2.Subtract(t.P0)
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if math.Abs(a) < epsilon {
		return Hit{}, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.P0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return Hit{}, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return Hit{}, false
	}

	tHit := f * edge2.Dot(q)
	if tHit < ray.TMin || tHit > ray.TMax {
		return Hit{}, false
	}

	w := 1 - u - v
	p := ray.At(tHit)
	ng := t.faceNormal()
	ns := t.N0.Multiply(w).Add(t.N1.Multiply(u)).Add(t.N2.Multiply(v))
	if ns.IsZero() {
		ns = ng
	} else {
		ns = ns.Normalize()
	}

	sp := SurfacePoint{
		P: p, Ns: ns, Ng: ng,
		U: t.UV0.X*w + t.UV1.X*u + t.UV2.X*v,
		V: t.UV0.Y*w + t.UV1.Y*u + t.UV2.Y*v,
		Material: t.Mat,
	}
	sp.FrontFace = ray.Direction.Dot(ng) < 0
	if !sp.FrontFace {
		sp.Ns = sp.Ns.Negate()
		sp.Ng = sp.Ng.Negate()
	}

	return Hit{T: tHit, SurfacePoint: sp}, true
}

func (t *Triangle) SampleArea(u Vec2) (Vec3, Vec3, float64) {
	su := math.Sqrt(u.X)
	b0 := 1 - su
	b1 := u.Y * su
	p := t.P0.Multiply(b0).Add(t.P1.Multiply(b1)).Add(t.P2.Multiply(1 - b0 - b1))
	area := t.Area()
	pdf := 0.0
	if area > 0 {
		pdf = 1.0 / area
	}
	return p, t.faceNormal(), pdf
}

// ClipToBox clips the triangle against an axis-aligned box by
// Sutherland-Hodgman against the 6 box faces (§4.5 step 6), returning the
// bound of the clipped polygon. ok is false if the clipped polygon is empty
// and the triangle should be dropped from this subtree.
func (t *Triangle) ClipToBox(box AABB) (AABB, bool) {
	poly := []Vec3{t.P0, t.P1, t.P2}

	clip := func(poly []Vec3, axis int, value float64, keepGreater bool) []Vec3 {
		if len(poly) == 0 {
			return poly
		}
		var out []Vec3
		inside := func(p Vec3) bool {
			var c float64
			switch axis {
			case 0:
				c = p.X
			case 1:
				c = p.Y
			default:
				c = p.Z
			}
			if keepGreater {
				return c >= value
			}
			return c <= value
		}
		coord := func(p Vec3) float64 {
			switch axis {
			case 0:
				return p.X
			case 1:
				return p.Y
			default:
				return p.Z
			}
		}
		for i := 0; i < len(poly); i++ {
			cur := poly[i]
			prev := poly[(i-1+len(poly))%len(poly)]
			curIn := inside(cur)
			prevIn := inside(prev)
			if curIn != prevIn {
				denom := coord(cur) - coord(prev)
				var tt float64
				if denom != 0 {
					tt = (value - coord(prev)) / denom
				}
				out = append(out, lerpVec3(prev, cur, tt))
			}
			if curIn {
				out = append(out, cur)
			}
		}
		return out
	}

	poly = clip(poly, 0, box.Min.X, true)
	poly = clip(poly, 0, box.Max.X, false)
	poly = clip(poly, 1, box.Min.Y, true)
	poly = clip(poly, 1, box.Max.Y, false)
	poly = clip(poly, 2, box.Min.Z, true)
	poly = clip(poly, 2, box.Max.Z, false)

	if len(poly) == 0 {
		return AABB{}, false
	}
	return NewAABBFromPoints(poly...), true
}

func lerpVec3(a, b Vec3, t float64) Vec3 {
	return a.Add(b.Subtract(a).Multiply(t))
}
