package scene

import "github.com/lumenforge/tracecore/pkg/core"

// NewConstantScene builds the empty-scene, constant-background test scene
// (§8 scenario 1): no geometry, no lights, every camera ray escapes to a
// uniform-radiance environment. Every output pixel should equal radiance
// with alpha 0 once rendered, since a pure background hit carries no
// coverage.
func NewConstantScene(width, height int, radiance core.Rgb) *Scene {
	cam := defaultCamera(core.Vec3{Z: 1}, core.Vec3{}, 40, width, height)
	return New(nil, nil, cam, ConstantBackground(radiance))
}
