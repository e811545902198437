// Package material implements the reference BSDFs (§6 external collaborator
// layer) that exercise the core's Material capability-set contract (§9).
package material

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
)

// Lambertian is a perfectly diffuse material: f = albedo/pi, cosine-weighted
// sampling with pdf = cos(theta)/pi.
type Lambertian struct {
	Albedo core.Rgb
}

func NewLambertian(albedo core.Rgb) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

func (l *Lambertian) Capabilities(core.SurfacePoint) core.Lobe {
	return core.LobeDiffuse
}

func (l *Lambertian) Evaluate(sp core.SurfacePoint, wo, wi core.Vec3, filter core.Lobe) core.Rgb {
	if !filter.Has(core.LobeDiffuse) || wi.Dot(sp.Ns) <= 0 {
		return core.Rgb{}
	}
	return l.Albedo.Multiply(1.0 / math.Pi)
}

func (l *Lambertian) Sample(sp core.SurfacePoint, wo core.Vec3, u core.Vec2, filter core.Lobe) (core.ScatterResult, bool) {
	if !filter.Has(core.LobeDiffuse) {
		return core.ScatterResult{}, false
	}

	wi := core.CosineSampleHemisphere(sp.Ns, u)
	cosTheta := wi.Dot(sp.Ns)
	if cosTheta <= 0 {
		return core.ScatterResult{}, false
	}

	return core.ScatterResult{
		Wi:          wi,
		F:           l.Albedo.Multiply(1.0 / math.Pi),
		PDF:         cosTheta / math.Pi,
		SampledLobe: core.LobeDiffuse,
	}, true
}

func (l *Lambertian) PDF(sp core.SurfacePoint, wo, wi core.Vec3) (float64, bool) {
	cosTheta := wi.Dot(sp.Ns)
	if cosTheta <= 0 {
		return 0, false
	}
	return cosTheta / math.Pi, false
}
