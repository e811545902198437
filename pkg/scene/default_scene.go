package scene

import (
	"github.com/lumenforge/tracecore/pkg/core"
	"github.com/lumenforge/tracecore/pkg/lights"
	"github.com/lumenforge/tracecore/pkg/material"
)

// NewDiffuseSphereScene builds the single-sphere, single-point-light test
// scene (§8 scenario 2): a unit Lambertian sphere at the origin lit by an
// isotropic point light on +Z. Intensity is tuned so the sphere-center
// pixel evaluates to albedo/π · cosθ · falloff at the documented value.
func NewDiffuseSphereScene(width, height int) *Scene {
	albedo := material.NewLambertian(core.Rgb{X: 1, Y: 1, Z: 1})
	sphere := core.NewSphere(core.Vec3{}, 1, albedo)

	light := lights.NewPointLight(core.Vec3{Z: 2}, core.Rgb{X: 0.25, Y: 0.25, Z: 0.25})

	cam := defaultCamera(core.Vec3{Z: 4}, core.Vec3{}, 30, width, height)
	return New([]core.Primitive{sphere}, []core.Light{light}, cam, ConstantBackground(core.Rgb{}))
}

// NewShowcaseScene builds a richer multi-material scene (diffuse, metal,
// dielectric, and a nested hollow-glass sphere over a finite ground quad)
// under a sky-gradient background and an area light, grounded on the
// teacher's default_scene.go — supplemented here because the distilled
// specification only names the minimal two-object test scenes.
func NewShowcaseScene(width, height int) *Scene {
	lambertianBlue := material.NewLambertian(core.Rgb{X: 0.1, Y: 0.2, Z: 0.5})
	lambertianGreen := material.NewLambertian(core.Rgb{X: 0.48, Y: 0.48, Z: 0.0})
	metalSilver := material.NewMetal(core.Rgb{X: 0.8, Y: 0.8, Z: 0.8}, 0.0)
	metalGold := material.NewMetal(core.Rgb{X: 0.8, Y: 0.6, Z: 0.2}, 0.3)
	glass := material.NewDielectric(1.5)

	sphereLeft := core.NewSphere(core.Vec3{X: -1, Y: 0.5, Z: -1}, 0.5, metalSilver)
	sphereRight := core.NewSphere(core.Vec3{X: 1, Y: 0.5, Z: -1}, 0.5, metalGold)
	solidGlass := core.NewSphere(core.Vec3{X: 0.5, Y: 0.25, Z: -0.5}, 0.25, glass)

	hollowOuter := core.NewSphere(core.Vec3{X: -0.5, Y: 0.25, Z: -0.5}, 0.25, glass)
	hollowInner := core.NewSphere(core.Vec3{X: -0.5, Y: 0.25, Z: -0.5}, -0.24, glass)
	hollowCenter := core.NewSphere(core.Vec3{X: -0.5, Y: 0.25, Z: -0.5}, 0.2, lambertianBlue)

	prims := []core.Primitive{sphereLeft, sphereRight, solidGlass, hollowOuter, hollowInner, hollowCenter}
	prims = append(prims, groundQuad(core.Vec3{}, 10000, lambertianGreen)...)

	emission := core.Rgb{X: 15, Y: 14, Z: 13}
	lightCenter := core.Vec3{X: 30, Y: 30.5, Z: 15}
	sphereLight := core.NewSphere(lightCenter, 10, material.NewEmissive(emission))
	prims = append(prims, sphereLight)
	lightList := []core.Light{lights.NewSphereLight(lightCenter, 10, emission)}

	cam := defaultCamera(core.Vec3{X: 0, Y: 0.75, Z: 2}, core.Vec3{X: 0, Y: 0.5, Z: -1}, 40, width, height)
	bg := GradientBackground(core.Rgb{X: 1, Y: 1, Z: 1}, core.Rgb{X: 0.5, Y: 0.7, Z: 1.0})
	return New(prims, lightList, cam, bg)
}
