// Package lights implements the core.Light capability set (§6) the direct
// integrator (C9) and photon emitter (C8) sample against.
package lights

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
)

// QuadLight is a rectangular area light spanning corner, corner+u and
// corner+v, emitting Lambertian-cosine-weighted light toward the side u×v
// points at.
type QuadLight struct {
	Corner, U, V core.Vec3
	Emission     core.Rgb
	area         float64
	normal       core.Vec3
}

func NewQuadLight(corner, u, v core.Vec3, emission core.Rgb) *QuadLight {
	cross := u.Cross(v)
	area := cross.Length()
	normal := cross
	if area > 0 {
		normal = cross.Multiply(1.0 / area)
	}
	return &QuadLight{Corner: corner, U: u, V: v, Emission: emission, area: area, normal: normal}
}

func (ql *QuadLight) Type() core.LightType { return core.LightTypeArea }

func (ql *QuadLight) Power() float64 {
	return ql.Emission.Length() * ql.area * math.Pi
}

func (ql *QuadLight) Sample(point, normal core.Vec3, u core.Vec2) core.LightSample {
	samplePoint := ql.Corner.Add(ql.U.Multiply(u.X)).Add(ql.V.Multiply(u.Y))
	toLight := samplePoint.Subtract(point)
	distance := toLight.Length()
	if distance < 1e-8 {
		return core.LightSample{}
	}
	direction := toLight.Multiply(1.0 / distance)

	cosTheta := -ql.normal.Dot(direction)
	if cosTheta <= 1e-8 || ql.area <= 0 {
		return core.LightSample{Point: samplePoint, Normal: ql.normal, Direction: direction, Distance: distance}
	}

	solidAnglePDF := distance * distance / (cosTheta * ql.area)
	return core.LightSample{
		Point:     samplePoint,
		Normal:    ql.normal,
		Direction: direction,
		Distance:  distance,
		Emission:  ql.Emission,
		PDF:       solidAnglePDF,
	}
}

func (ql *QuadLight) PDF(point, normal, direction core.Vec3) float64 {
	if ql.area <= 0 {
		return 0
	}
	denom := ql.normal.Dot(direction)
	if math.Abs(denom) < 1e-8 {
		return 0
	}
	t := ql.normal.Dot(ql.Corner.Subtract(point)) / denom
	if t <= 0 {
		return 0
	}
	hitPoint := point.Add(direction.Multiply(t))
	local := hitPoint.Subtract(ql.Corner)
	alpha := local.Dot(ql.U) / ql.U.Dot(ql.U)
	beta := local.Dot(ql.V) / ql.V.Dot(ql.V)
	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return 0
	}

	cosTheta := math.Abs(denom)
	return t * t / (cosTheta * ql.area)
}

func (ql *QuadLight) SampleEmission(uPos, uDir core.Vec2) core.EmissionSample {
	point := ql.Corner.Add(ql.U.Multiply(uPos.X)).Add(ql.V.Multiply(uPos.Y))
	direction := core.CosineSampleHemisphere(ql.normal, uDir)
	cosTheta := direction.Dot(ql.normal)

	var areaPDF float64
	if ql.area > 0 {
		areaPDF = 1.0 / ql.area
	}
	return core.EmissionSample{
		Point:        point,
		Normal:       ql.normal,
		Direction:    direction,
		Emission:     ql.Emission,
		AreaPDF:      areaPDF,
		DirectionPDF: cosTheta / math.Pi,
	}
}

func (ql *QuadLight) EmissionPDF(point, direction core.Vec3) float64 {
	if ql.area <= 0 {
		return 0
	}
	return 1.0 / ql.area
}

// Emit always returns zero: a quad light is only visible to camera/indirect
// rays by hitting its own geometry, which the scene must add separately with
// an Emissive material.
func (ql *QuadLight) Emit(ray core.Ray) core.Rgb {
	return core.Rgb{}
}
