package scene

import (
	"github.com/lumenforge/tracecore/pkg/core"
	"github.com/lumenforge/tracecore/pkg/lights"
	"github.com/lumenforge/tracecore/pkg/material"
)

// NewCornellScene builds the classic Cornell box (white walls, one red and
// one green side wall, a ceiling area light, a metal sphere and a glass
// sphere) at the standard 555-unit size, grounded on the teacher's
// cornell.go. This also exercises §8 scenario 3 (a dielectric sphere over a
// Lambertian floor lit by an area light produces a photon-mappable caustic):
// the box floor stands in for the bare floor and the right sphere is glass.
func NewCornellScene(width, height int) *Scene {
	const box = 555.0

	white := material.NewLambertian(core.Rgb{X: 0.73, Y: 0.73, Z: 0.73})
	red := material.NewLambertian(core.Rgb{X: 0.65, Y: 0.05, Z: 0.05})
	green := material.NewLambertian(core.Rgb{X: 0.12, Y: 0.45, Z: 0.15})

	var prims []core.Primitive
	prims = append(prims, quadTriangles(core.Vec3{}, core.Vec3{X: box}, core.Vec3{Z: box}, white)...)             // floor
	prims = append(prims, quadTriangles(core.Vec3{Y: box}, core.Vec3{X: box}, core.Vec3{Z: box}, white)...)       // ceiling
	prims = append(prims, quadTriangles(core.Vec3{Z: box}, core.Vec3{X: box}, core.Vec3{Y: box}, white)...)       // back wall
	prims = append(prims, quadTriangles(core.Vec3{}, core.Vec3{Z: box}, core.Vec3{Y: box}, red)...)               // left wall
	prims = append(prims, quadTriangles(core.Vec3{X: box}, core.Vec3{Y: box}, core.Vec3{Z: box}, green)...)       // right wall

	lightSize := 130.0
	lightOffset := (box - lightSize) / 2
	lightCorner := core.Vec3{X: lightOffset, Y: box - 1, Z: lightOffset}
	lightU := core.Vec3{X: lightSize}
	lightV := core.Vec3{Z: lightSize}
	lightEmission := core.Rgb{X: 15, Y: 15, Z: 15}

	emissiveQuad := material.NewEmissive(lightEmission)
	prims = append(prims, quadTriangles(lightCorner, lightU, lightV, emissiveQuad)...)

	leftSphere := core.NewSphere(core.Vec3{X: 185, Y: 82.5, Z: 169}, 82.5, material.NewMetal(core.Rgb{X: 0.8, Y: 0.8, Z: 0.9}, 0))
	rightSphere := core.NewSphere(core.Vec3{X: 370, Y: 90, Z: 351}, 90, material.NewDielectric(1.5))
	prims = append(prims, leftSphere, rightSphere)

	quadLight := lights.NewQuadLight(lightCorner, lightU, lightV, lightEmission)

	cam := defaultCamera(core.Vec3{X: 278, Y: 278, Z: -800}, core.Vec3{X: 278, Y: 278, Z: 0}, 40, width, height)
	return New(prims, []core.Light{quadLight}, cam, ConstantBackground(core.Rgb{}))
}
