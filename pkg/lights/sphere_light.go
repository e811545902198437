package lights

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
)

// SphereLight is a spherical area light, cone-sampled from outside the
// sphere (§4.9's NEE draw wants low-variance solid-angle sampling, not a
// uniform-surface draw that wastes most samples on the back face). Emission
// is visible directly only through the emissive sphere primitive placed in
// the scene's geometry — Emit here returns zero like every other finite
// light (§6).
type SphereLight struct {
	Center   core.Vec3
	Radius   float64
	Emission core.Rgb
}

func NewSphereLight(center core.Vec3, radius float64, emission core.Rgb) *SphereLight {
	return &SphereLight{Center: center, Radius: radius, Emission: emission}
}

func (sl *SphereLight) Type() core.LightType { return core.LightTypeArea }

func (sl *SphereLight) Power() float64 {
	area := 4 * math.Pi * sl.Radius * sl.Radius
	return sl.Emission.Length() * area * math.Pi
}

// Sample cone-samples the sphere as seen from point (Shirley's solid-angle
// sphere-sampling construction), falling back to uniform surface sampling
// if point lies inside the sphere.
func (sl *SphereLight) Sample(point, normal core.Vec3, u core.Vec2) core.LightSample {
	toCenter := sl.Center.Subtract(point)
	distance := toCenter.Length()
	if distance < 1e-8 {
		return core.LightSample{}
	}
	dir := toCenter.Multiply(1.0 / distance)

	if distance <= sl.Radius {
		p, n, areaPDF := (&core.Sphere{Center: sl.Center, Radius: sl.Radius}).SampleArea(u)
		toLight := p.Subtract(point)
		d := toLight.Length()
		if d < 1e-8 {
			return core.LightSample{}
		}
		wi := toLight.Multiply(1.0 / d)
		cosLight := n.Dot(wi.Negate())
		if cosLight <= 0 {
			return core.LightSample{Point: p, Normal: n, Direction: wi, Distance: d}
		}
		solidAnglePDF := areaPDF * d * d / cosLight
		return core.LightSample{Point: p, Normal: n, Direction: wi, Distance: d, Emission: sl.Emission, PDF: solidAnglePDF}
	}

	sinThetaMax2 := (sl.Radius * sl.Radius) / (distance * distance)
	cosThetaMax := math.Sqrt(math.Max(0, 1-sinThetaMax2))
	cosTheta := 1 - u.X*(1-cosThetaMax)
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * u.Y

	t, b := sampleBasis(dir)
	w := dir.Multiply(cosTheta).Add(t.Multiply(sinTheta * math.Cos(phi))).Add(b.Multiply(sinTheta * math.Sin(phi)))

	ds := distance * cosTheta - math.Sqrt(math.Max(0, sl.Radius*sl.Radius-distance*distance*sinTheta*sinTheta))
	hitPoint := point.Add(w.Multiply(ds))
	normalAtHit := hitPoint.Subtract(sl.Center).Multiply(1.0 / sl.Radius)

	pdf := core.SphereConePDF(distance, sl.Radius)
	return core.LightSample{Point: hitPoint, Normal: normalAtHit, Direction: w, Distance: ds, Emission: sl.Emission, PDF: pdf}
}

func (sl *SphereLight) PDF(point, normal, direction core.Vec3) float64 {
	distance := sl.Center.Subtract(point).Length()
	return core.SphereConePDF(distance, sl.Radius)
}

func (sl *SphereLight) SampleEmission(uPos, uDir core.Vec2) core.EmissionSample {
	n := core.UniformSampleSphere(uPos)
	p := sl.Center.Add(n.Multiply(sl.Radius))
	dir := core.CosineSampleHemisphere(n, uDir)
	area := 4 * math.Pi * sl.Radius * sl.Radius
	return core.EmissionSample{
		Point: p, Normal: n, Direction: dir, Emission: sl.Emission,
		AreaPDF: 1.0 / area, DirectionPDF: dir.Dot(n) / math.Pi,
	}
}

func (sl *SphereLight) EmissionPDF(point, direction core.Vec3) float64 {
	n := point.Subtract(sl.Center).Multiply(1.0 / sl.Radius)
	cosTheta := n.Dot(direction)
	if cosTheta <= 0 {
		return 0
	}
	return cosTheta / math.Pi
}

func (sl *SphereLight) Emit(ray core.Ray) core.Rgb { return core.Rgb{} }

func sampleBasis(n core.Vec3) (core.Vec3, core.Vec3) {
	var up core.Vec3
	if math.Abs(n.Y) < 0.999 {
		up = core.Vec3{Y: 1}
	} else {
		up = core.Vec3{X: 1}
	}
	t := up.Cross(n).Normalize()
	b := n.Cross(t)
	return t, b
}
