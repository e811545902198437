package renderer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenforge/tracecore/pkg/core"
)

// constBackgroundScene is a minimal core.Scene test double: no geometry,
// every ray escapes to a uniform background, matching the driver's own
// §8 scenario-1 contract (background hits carry zero coverage).
type constBackgroundScene struct {
	bg  core.Rgb
	cam core.Camera
}

func (s *constBackgroundScene) Intersect(core.Ray) (core.Hit, bool)            { return core.Hit{}, false }
func (s *constBackgroundScene) IntersectAny(core.Ray, float64) (bool, core.Rgb) { return false, core.Rgb{} }
func (s *constBackgroundScene) Lights() []core.Light                          { return nil }
func (s *constBackgroundScene) Background(core.Ray) core.Rgb                  { return s.bg }
func (s *constBackgroundScene) Camera() core.Camera                           { return s.cam }
func (s *constBackgroundScene) WorldBound() core.AABB {
	return core.NewAABB(core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1))
}

type nopIntegrator struct{}

// nopIntegrator never sees a hit in this test's scenes (Intersect always
// misses), so it never needs to touch the Material on a Hit.
func (nopIntegrator) RayColor(ray core.Ray, scene core.Scene, rs *core.RenderState, diag *core.Diagnostics) core.Rgb {
	return core.Rgb{}
}

func TestDriverConstantBackgroundEveryPixelMatches(t *testing.T) {
	cam := NewCamera(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), 40, 4, 4, 0, 0)
	scn := &constBackgroundScene{bg: core.Rgb{X: 0.5, Y: 0.5, Z: 0.5}, cam: cam}

	opts := Options{
		TileSize:          4,
		PassSampleTargets: []int{1},
		NumWorkers:        1,
		Order:             OrderLinear,
		AdaptiveThreshold: 0.05,
		FilterRadius:      1.5,
	}
	d := NewDriver(scn, nopIntegrator{}, opts)

	buf, _, err := d.Render(context.Background(), 4, 4, nil)
	require.NoError(t, err)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			c := buf.At(x, y)
			assert.InDelta(t, 0.5, c.X, 1e-9, "pixel (%d,%d)", x, y)
			assert.InDelta(t, 0.5, c.Y, 1e-9, "pixel (%d,%d)", x, y)
			assert.InDelta(t, 0.5, c.Z, 1e-9, "pixel (%d,%d)", x, y)
			assert.Equal(t, 0.0, c.A, "pixel (%d,%d) background alpha", x, y)
		}
	}
}

func TestDriverAbortStopsBeforeLastPass(t *testing.T) {
	cam := NewCamera(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), 40, 4, 4, 0, 0)
	scn := &constBackgroundScene{bg: core.Rgb{X: 1, Y: 1, Z: 1}, cam: cam}

	opts := Options{
		TileSize:          4,
		PassSampleTargets: []int{1, 2, 4, 8},
		NumWorkers:        1,
		Order:             OrderLinear,
		AdaptiveThreshold: 0.05,
		FilterRadius:      1.5,
	}
	d := NewDriver(scn, nopIntegrator{}, opts)
	d.Abort()

	passes := 0
	_, _, err := d.Render(context.Background(), 4, 4, func(PassResult) { passes++ })
	assert.NoError(t, err)
	assert.Less(t, passes, len(opts.PassSampleTargets))
}
