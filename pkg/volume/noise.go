package volume

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
)

// NoiseField is the texture-driven density function a Noise volume reads
// (e.g. a 3-D Perlin/value-noise source); kept as an interface so the
// volume package does not depend on a concrete texture implementation.
type NoiseField interface {
	Eval(p core.Vec3) float64
}

// Noise passes a texture-driven density field through a sigmoid with
// sharpness and cover controls (§4.10): density = sigmoid(sharpness *
// (noise - (1 - cover))).
type Noise struct {
	Field     NoiseField
	Sharpness float64
	Cover     float64
	SigmaBase core.Rgb
	BoundBox  core.AABB
	StepSize  float64
}

func (n *Noise) Bound() core.AABB { return n.BoundBox }

func sigmoid(x float64) float64 { return 1.0 / (1.0 + math.Exp(-x)) }

func (n *Noise) density(p core.Vec3) float64 {
	raw := n.Field.Eval(p)
	return sigmoid(n.Sharpness * (raw - (1 - n.Cover)))
}

func (n *Noise) Transmittance(ray core.Ray, distance float64) core.Rgb {
	tNear, tFar, ok := clipToBound(ray, n.BoundBox, distance)
	if !ok {
		return core.Rgb{X: 1, Y: 1, Z: 1}
	}

	step := n.StepSize
	if step <= 0 {
		step = 0.1
	}

	optical := core.Rgb{}
	for t := tNear; t < tFar; t += step {
		segment := math.Min(step, tFar-t)
		rho := n.density(ray.At(t + segment*0.5))
		optical = optical.Add(n.SigmaBase.Multiply(rho * segment))
	}

	return core.Rgb{X: math.Exp(-optical.X), Y: math.Exp(-optical.Y), Z: math.Exp(-optical.Z)}
}

func (n *Noise) Integrate(ray core.Ray, distance float64, sampler core.Sampler, sampleLi func(p, wo core.Vec3) core.Rgb) core.Rgb {
	tNear, tFar, ok := clipToBound(ray, n.BoundBox, distance)
	if !ok || tFar <= tNear {
		return core.Rgb{}
	}

	step := n.StepSize
	if step <= 0 {
		step = 0.1
	}
	jitter := sampler.Get1D()

	total := core.Rgb{}
	transmittance := core.Rgb{X: 1, Y: 1, Z: 1}
	wo := ray.Direction.Negate()

	for t := tNear + jitter*step; t < tFar; t += step {
		segment := math.Min(step, tFar-t)
		p := ray.At(t)
		rho := n.density(p)
		sigmaT := n.SigmaBase.Multiply(rho)

		li := sampleLi(p, wo)
		inScatter := transmittance.MultiplyVec(sigmaT).MultiplyVec(li).Multiply(segment)
		total = total.Add(inScatter)

		transmittance = core.Rgb{
			X: transmittance.X * math.Exp(-sigmaT.X*segment),
			Y: transmittance.Y * math.Exp(-sigmaT.Y*segment),
			Z: transmittance.Z * math.Exp(-sigmaT.Z*segment),
		}
	}

	return total
}
