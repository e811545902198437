package material

import "github.com/lumenforge/tracecore/pkg/core"

// Emissive is a light-emitting surface: it never scatters, only emits
// (implements core.Emitter in addition to core.Material).
type Emissive struct {
	Emission core.Rgb
}

func NewEmissive(emission core.Rgb) *Emissive {
	return &Emissive{Emission: emission}
}

func (e *Emissive) Capabilities(core.SurfacePoint) core.Lobe {
	return core.LobeEmit
}

func (e *Emissive) Evaluate(sp core.SurfacePoint, wo, wi core.Vec3, filter core.Lobe) core.Rgb {
	return core.Rgb{}
}

func (e *Emissive) Sample(sp core.SurfacePoint, wo core.Vec3, u core.Vec2, filter core.Lobe) (core.ScatterResult, bool) {
	return core.ScatterResult{}, false
}

func (e *Emissive) PDF(sp core.SurfacePoint, wo, wi core.Vec3) (float64, bool) {
	return 0, false
}

// Emit returns this surface's emission regardless of the viewing direction
// wo, so the surface emits equally from both sides.
func (e *Emissive) Emit(sp core.SurfacePoint, wo core.Vec3) core.Rgb {
	return e.Emission
}
