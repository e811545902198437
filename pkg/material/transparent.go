package material

import "github.com/lumenforge/tracecore/pkg/core"

// Transparent is a colored filter surface (stained glass, tinted foil) that
// lets shadow rays pass through tinted by FilterColor instead of fully
// occluding, per the transparent-shadow accumulation in pkg/accel's
// IntersectAny. It still scatters like ordinary specular glass for camera
// and indirect rays.
type Transparent struct {
	Filter          core.Rgb
	RefractiveIndex float64
}

func NewTransparent(filter core.Rgb, refractiveIndex float64) *Transparent {
	return &Transparent{Filter: filter, RefractiveIndex: refractiveIndex}
}

func (t *Transparent) Capabilities(core.SurfacePoint) core.Lobe {
	return core.LobeSpecularReflect | core.LobeSpecularTransmit | core.LobeTransparent
}

func (t *Transparent) Evaluate(sp core.SurfacePoint, wo, wi core.Vec3, filter core.Lobe) core.Rgb {
	return core.Rgb{}
}

func (t *Transparent) Sample(sp core.SurfacePoint, wo core.Vec3, u core.Vec2, filter core.Lobe) (core.ScatterResult, bool) {
	glass := Dielectric{RefractiveIndex: t.RefractiveIndex}
	result, ok := glass.Sample(sp, wo, u, filter)
	if !ok {
		return result, ok
	}
	result.F = result.F.MultiplyVec(t.Filter)
	return result, true
}

func (t *Transparent) PDF(sp core.SurfacePoint, wo, wi core.Vec3) (float64, bool) {
	return 0, true
}

// FilterColor is the optional hook IntersectAny looks for: the tint a shadow
// ray picks up passing through this surface instead of being blocked.
func (t *Transparent) FilterColor(sp core.SurfacePoint) core.Rgb {
	return t.Filter
}
