package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenforge/tracecore/pkg/core"
)

func TestConstantSceneMissAlwaysReturnsBackground(t *testing.T) {
	s := NewConstantScene(4, 4, core.Rgb{X: 0.5, Y: 0.5, Z: 0.5})

	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
	_, ok := s.Intersect(ray)
	require.False(t, ok)

	bg := s.Background(ray)
	assert.Equal(t, 0.5, bg.X)
	assert.Equal(t, 0.5, bg.Y)
	assert.Equal(t, 0.5, bg.Z)
	assert.Empty(t, s.Lights())
}

func TestDiffuseSphereSceneHitsSphereFromCamera(t *testing.T) {
	s := NewDiffuseSphereScene(100, 100)

	ray := core.NewRay(core.NewVec3(0, 0, 4), core.NewVec3(0, 0, -1))
	hit, ok := s.Intersect(ray)
	require.True(t, ok, "ray toward the scene's sphere should hit")
	assert.InDelta(t, 3.0, hit.T, 1e-6)
	assert.Len(t, s.Lights(), 1)
}

func TestCornellSceneBuildsClosedBoxWithOneLight(t *testing.T) {
	s := NewCornellScene(200, 200)
	require.Len(t, s.Lights(), 1)

	// A ray from outside, through the open camera-facing side, toward the
	// box center must hit a wall.
	ray := core.NewRay(core.NewVec3(278, 278, -800), core.NewVec3(0, 0, 1))
	_, ok := s.Intersect(ray)
	assert.True(t, ok, "ray into the box should hit the back wall or an object")
}

func TestShowcaseSceneHasGroundAndSphereLight(t *testing.T) {
	s := NewShowcaseScene(100, 100)
	require.Len(t, s.Lights(), 1)

	down := core.NewRay(core.NewVec3(0, 10, 0), core.NewVec3(0, -1, 0))
	_, ok := s.Intersect(down)
	assert.True(t, ok, "a ray straight down should hit the ground quad")
}
