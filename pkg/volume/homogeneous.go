package volume

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
)

// Homogeneous is a uniform-density medium inside an AABB with closed-form
// transmittance by clipped path length (§4.10).
type Homogeneous struct {
	SigmaA, SigmaS core.Rgb
	Le             core.Rgb
	BoundBox       core.AABB
	StepSize       float64
}

func (h *Homogeneous) Bound() core.AABB { return h.BoundBox }

func (h *Homogeneous) sigmaT() core.Rgb { return h.SigmaA.Add(h.SigmaS) }

func (h *Homogeneous) Transmittance(ray core.Ray, distance float64) core.Rgb {
	tNear, tFar, ok := clipToBound(ray, h.BoundBox, distance)
	if !ok {
		return core.Rgb{X: 1, Y: 1, Z: 1}
	}
	length := tFar - tNear
	st := h.sigmaT()
	return core.Rgb{
		X: math.Exp(-st.X * length),
		Y: math.Exp(-st.Y * length),
		Z: math.Exp(-st.Z * length),
	}
}

func (h *Homogeneous) Integrate(ray core.Ray, distance float64, sampler core.Sampler, sampleLi func(p, wo core.Vec3) core.Rgb) core.Rgb {
	tNear, tFar, ok := clipToBound(ray, h.BoundBox, distance)
	if !ok || tFar <= tNear {
		return core.Rgb{}
	}

	step := h.StepSize
	if step <= 0 {
		step = 0.1
	}
	jitter := sampler.Get1D()

	total := core.Rgb{}
	st := h.sigmaT()
	transmittance := core.Rgb{X: 1, Y: 1, Z: 1}

	for t := tNear + jitter*step; t < tFar; t += step {
		p := ray.At(t)
		segment := math.Min(step, tFar-t)

		li := core.Rgb{}
		if h.SigmaS.MaxComponent() > 0 {
			li = sampleLi(p, ray.Direction.Negate())
		}

		inScatter := transmittance.MultiplyVec(h.SigmaS).MultiplyVec(li).Multiply(segment)
		emission := transmittance.MultiplyVec(h.Le).Multiply(segment)
		total = total.Add(inScatter).Add(emission)

		transmittance = core.Rgb{
			X: transmittance.X * math.Exp(-st.X*segment),
			Y: transmittance.Y * math.Exp(-st.Y*segment),
			Z: transmittance.Z * math.Exp(-st.Z*segment),
		}
	}

	return total
}
