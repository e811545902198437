package core

import (
	"math"
)

// orthonormalBasis builds a right-handed frame from a unit normal (Duff et
// al.'s branchless construction), used to map hemisphere samples generated
// in local (tangent) space onto the surface's actual orientation.
func orthonormalBasis(n Vec3) (t, b Vec3) {
	sign := math.Copysign(1, n.Z)
	a := -1.0 / (sign + n.Z)
	c := n.X * n.Y * a
	t = Vec3{X: 1 + sign*n.X*n.X*a, Y: sign * c, Z: -sign * n.X}
	b = Vec3{X: c, Y: sign + n.Y*n.Y*a, Z: -n.Y}
	return t, b
}

// CosineSampleHemisphere draws a cosine-weighted direction about normal via
// a polar disk mapping (r = sqrt(u.X), phi = 2*pi*u.Y) lifted onto the
// hemisphere, matching the PDF cos(theta)/pi that Lambertian
// scattering uses.
func CosineSampleHemisphere(normal Vec3, u Vec2) Vec3 {
	t, b := orthonormalBasis(normal)

	r := math.Sqrt(u.X)
	phi := 2 * math.Pi * u.Y
	x := r * math.Cos(phi)
	y := r * math.Sin(phi)
	z := math.Sqrt(math.Max(0, 1-u.X))

	local := t.Multiply(x).Add(b.Multiply(y)).Add(normal.Multiply(z))
	return local.Normalize()
}

// UniformSampleSphere draws a direction uniformly over the full sphere, used
// for fuzzy metal reflection perturbation and photon emission sampling.
func UniformSampleSphere(u Vec2) Vec3 {
	z := 1 - 2*u.X
	r := math.Sqrt(math.Max(0, 1-z*z))
	phi := 2 * math.Pi * u.Y
	return Vec3{X: r * math.Cos(phi), Y: r * math.Sin(phi), Z: z}
}

// PowerHeuristic implements the power heuristic for multiple importance sampling
// This balances between two sampling strategies (typically light sampling vs material sampling)
func PowerHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	if fPdf == 0 {
		return 0
	}

	f := float64(nf) * fPdf
	g := float64(ng) * gPdf

	// Power heuristic with β = 2 (squared)
	return (f * f) / (f*f + g*g)
}

// BalanceHeuristic implements the balance heuristic for multiple importance sampling
func BalanceHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	if fPdf == 0 {
		return 0
	}

	f := float64(nf) * fPdf
	g := float64(ng) * gPdf

	return f / (f + g)
}

// CombinePDFs combines light and material PDFs using multiple importance sampling
// Returns the MIS weight for the light sample
func CombinePDFs(lightPdf, materialPdf float64, usePowerHeuristic bool) float64 {
	if lightPdf == 0 {
		return 0
	}

	if usePowerHeuristic {
		return PowerHeuristic(1, lightPdf, 1, materialPdf)
	} else {
		return BalanceHeuristic(1, lightPdf, 1, materialPdf)
	}
}

// SphereUniformPDF returns the PDF for uniform sampling on a sphere
func SphereUniformPDF(radius float64) float64 {
	return 1.0 / (4.0 * math.Pi * radius * radius)
}

// SphereConePDF returns the PDF for sampling a sphere from a point using cone sampling
func SphereConePDF(distance, radius float64) float64 {
	if distance <= radius {
		// Point is inside sphere, use uniform sampling
		return SphereUniformPDF(radius)
	}

	sinThetaMax := radius / distance
	cosThetaMax := math.Sqrt(math.Max(0, 1.0-sinThetaMax*sinThetaMax))

	return 1.0 / (2.0 * math.Pi * (1.0 - cosThetaMax))
}

// CalculateLightPDF calculates the combined PDF for a given direction toward
// multiple lights, for MIS against a material-sampled direction (§4.9 point 3).
func CalculateLightPDF(lights []Light, point, normal, direction Vec3) float64 {
	if len(lights) == 0 {
		return 0.0
	}

	totalPDF := 0.0
	for _, light := range lights {
		totalPDF += light.PDF(point, normal, direction) / float64(len(lights))
	}

	return totalPDF
}

// SampleLight uniformly selects and samples a light from the scene. The
// surface integrator (C9) does not use it: its next-event-estimation draw
// goes through pkg/core.WeightedLightSampler's power-weighted selection.
func SampleLight(lights []Light, point, normal Vec3, sampler Sampler) (LightSample, int, bool) {
	if len(lights) == 0 {
		return LightSample{}, -1, false
	}

	idx := int(sampler.Get1D() * float64(len(lights)))
	if idx >= len(lights) {
		idx = len(lights) - 1
	}
	sample := lights[idx].Sample(point, normal, sampler.Get2D())
	sample.PDF *= 1.0 / float64(len(lights))

	return sample, idx, true
}
