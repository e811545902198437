package renderer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenforge/tracecore/pkg/core"
)

func drainSplitter(f *Film) []Area {
	var areas []Area
	for {
		a, ok := f.NextAreaToRender()
		if !ok {
			return areas
		}
		areas = append(areas, a)
	}
}

func TestFilmAddSampleAccumulatesAssociatively(t *testing.T) {
	f := NewFilm(8, 8, NewGaussianFilter(1.5))
	f.BeginPass(0, 1, 4, OrderLinear, 1, rand.New(rand.NewSource(1)))
	drainSplitter(f)

	samples := []struct {
		x, y float64
		c    core.Rgba
	}{
		{4.5, 4.5, core.Rgba{Rgb: core.Rgb{X: 1, Y: 1, Z: 1}, A: 1}},
		{4.5, 4.5, core.Rgba{Rgb: core.Rgb{X: 0.5, Y: 0.5, Z: 0.5}, A: 1}},
	}

	forward := NewFilm(8, 8, NewGaussianFilter(1.5))
	for _, s := range samples {
		forward.AddSample(s.x, s.y, s.c, 1)
	}
	reverse := NewFilm(8, 8, NewGaussianFilter(1.5))
	for i := len(samples) - 1; i >= 0; i-- {
		s := samples[i]
		reverse.AddSample(s.x, s.y, s.c, 1)
	}

	a := forward.Finalize().At(4, 4)
	b := reverse.Finalize().At(4, 4)
	assert.InDelta(t, a.X, b.X, 1e-9)
	assert.InDelta(t, a.Y, b.Y, 1e-9)
	assert.InDelta(t, a.Z, b.Z, 1e-9)
}

func TestFilmBackgroundOnlyHasZeroAlpha(t *testing.T) {
	f := NewFilm(4, 4, NewGaussianFilter(1.5))
	f.AddSample(2.0, 2.0, core.Rgba{Rgb: core.Rgb{X: 0.5, Y: 0.5, Z: 0.5}, A: 0}, 0)
	buf := f.Finalize()
	c := buf.At(1, 1)
	assert.InDelta(t, 0.5, c.X, 1e-6)
	assert.Equal(t, 0.0, c.A)
}

func TestComputeAdaptiveMaskConvergesLowVarianceRegion(t *testing.T) {
	f := NewFilm(4, 4, NewGaussianFilter(1.5))
	f.BeginPass(0, 2, 4, OrderLinear, 1, nil)
	for i := 0; i < 8; i++ {
		f.AddSample(2.0, 2.0, core.Rgba{Rgb: core.Rgb{X: 0.5, Y: 0.5, Z: 0.5}, A: 1}, 0)
	}
	f.ComputeAdaptiveMask(0.5)
	require.False(t, f.NeedsMoreSamples(1, 1), "zero-variance pixel should converge")
}

func TestNeedsMoreSamplesDefaultsTrueBeforeFirstMask(t *testing.T) {
	f := NewFilm(4, 4, NewGaussianFilter(1.5))
	f.BeginPass(0, 3, 4, OrderLinear, 1, nil)
	assert.True(t, f.NeedsMoreSamples(0, 0))
}
