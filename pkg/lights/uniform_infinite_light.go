package lights

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
)

// UniformInfiniteLight is a constant-radiance environment light, visible
// directly to camera/indirect rays (Emit) and sampled for direct lighting
// via cosine-weighted hemisphere draws.
type UniformInfiniteLight struct {
	Emission    core.Rgb
	WorldCenter core.Vec3
	WorldRadius float64
}

func NewUniformInfiniteLight(emission core.Rgb) *UniformInfiniteLight {
	return &UniformInfiniteLight{Emission: emission}
}

func (uil *UniformInfiniteLight) Type() core.LightType { return core.LightTypeInfinite }

func (uil *UniformInfiniteLight) Power() float64 {
	if uil.WorldRadius <= 0 {
		return uil.Emission.Length()
	}
	return uil.Emission.Length() * math.Pi * math.Pi * uil.WorldRadius * uil.WorldRadius
}

func (uil *UniformInfiniteLight) Sample(point, normal core.Vec3, u core.Vec2) core.LightSample {
	direction := core.CosineSampleHemisphere(normal, u)
	cosTheta := direction.Dot(normal)
	return core.LightSample{
		Point:     point.Add(direction.Multiply(1e10)),
		Normal:    direction.Negate(),
		Direction: direction,
		Distance:  math.Inf(1),
		Emission:  uil.Emission,
		PDF:       cosTheta / math.Pi,
	}
}

func (uil *UniformInfiniteLight) PDF(point, normal, direction core.Vec3) float64 {
	cosTheta := direction.Dot(normal)
	if cosTheta <= 0 {
		return 0
	}
	return cosTheta / math.Pi
}

// SampleEmission draws a parallel ray from a disk covering the scene's
// bounding sphere, for photon-map emission (§4.8 point 2).
func (uil *UniformInfiniteLight) SampleEmission(uPos, uDir core.Vec2) core.EmissionSample {
	direction := core.UniformSampleSphere(uDir).Negate()

	var t1, t2 core.Vec3
	if math.Abs(direction.X) > 0.1 {
		t1 = core.Vec3{X: 0, Y: 1, Z: 0}.Cross(direction).Normalize()
	} else {
		t1 = core.Vec3{X: 1, Y: 0, Z: 0}.Cross(direction).Normalize()
	}
	t2 = direction.Cross(t1)

	radius := uil.WorldRadius
	if radius <= 0 {
		radius = 1
	}
	r := radius * math.Sqrt(uPos.X)
	phi := 2 * math.Pi * uPos.Y
	diskPoint := uil.WorldCenter.Add(t1.Multiply(r * math.Cos(phi))).Add(t2.Multiply(r * math.Sin(phi)))
	origin := diskPoint.Subtract(direction.Multiply(2 * radius))

	areaPDF := 1.0 / (math.Pi * radius * radius)
	return core.EmissionSample{
		Point:        origin,
		Normal:       direction.Negate(),
		Direction:    direction,
		Emission:     uil.Emission,
		AreaPDF:      areaPDF,
		DirectionPDF: 1,
	}
}

func (uil *UniformInfiniteLight) EmissionPDF(point, direction core.Vec3) float64 {
	if uil.WorldRadius <= 0 {
		return 0
	}
	return 1.0 / (math.Pi * uil.WorldRadius * uil.WorldRadius)
}

func (uil *UniformInfiniteLight) Emit(ray core.Ray) core.Rgb {
	return uil.Emission
}

// Preprocess records the scene's bounding sphere, used to scale emission
// sampling; scene.New calls this once after the scene's acceleration
// structure is built.
func (uil *UniformInfiniteLight) Preprocess(worldCenter core.Vec3, worldRadius float64) {
	uil.WorldCenter = worldCenter
	uil.WorldRadius = worldRadius
}
