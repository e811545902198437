package lights

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
)

// PointLight is a delta light: all its power radiates from a single point,
// so Sample always returns the same direction/distance for a given shading
// point and PDF of an ordinary light-sampling strategy is 0 (a directional
// delta can't be hit by chance).
type PointLight struct {
	Position core.Vec3
	Intensity core.Rgb
}

func NewPointLight(position core.Vec3, intensity core.Rgb) *PointLight {
	return &PointLight{Position: position, Intensity: intensity}
}

func (pl *PointLight) Type() core.LightType { return core.LightTypePoint }

func (pl *PointLight) Power() float64 {
	return pl.Intensity.Length() * 4 * math.Pi
}

func (pl *PointLight) Sample(point, normal core.Vec3, u core.Vec2) core.LightSample {
	toLight := pl.Position.Subtract(point)
	distance := toLight.Length()
	if distance < 1e-8 {
		return core.LightSample{}
	}
	direction := toLight.Multiply(1.0 / distance)
	falloff := 1.0 / (distance * distance)
	return core.LightSample{
		Point:     pl.Position,
		Normal:    direction.Negate(),
		Direction: direction,
		Distance:  distance,
		Emission:  pl.Intensity.Multiply(falloff),
		PDF:       1,
	}
}

// PDF is always 0: a point light occupies zero solid angle, so it is never
// reached by material-direction sampling and needs no MIS weight from that
// side.
func (pl *PointLight) PDF(point, normal, direction core.Vec3) float64 {
	return 0
}

func (pl *PointLight) SampleEmission(uPos, uDir core.Vec2) core.EmissionSample {
	direction := core.UniformSampleSphere(uDir)
	return core.EmissionSample{
		Point:        pl.Position,
		Normal:       direction,
		Direction:    direction,
		Emission:     pl.Intensity,
		AreaPDF:      1,
		DirectionPDF: 1.0 / (4 * math.Pi),
	}
}

func (pl *PointLight) EmissionPDF(point, direction core.Vec3) float64 {
	return 1.0 / (4 * math.Pi)
}

func (pl *PointLight) Emit(ray core.Ray) core.Rgb {
	return core.Rgb{}
}
