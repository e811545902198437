package renderer

import (
	"github.com/lumenforge/tracecore/pkg/core"
	"github.com/lumenforge/tracecore/pkg/sequence"
)

// Sampler is the core.Sampler implementation that threads pkg/sequence's
// deterministic streams (C1) through the integrator. A new Sampler is
// constructed per (pixel, pass, sample) so that every draw the integrator
// makes is a pure function of that triple plus a monotonically increasing
// dimension counter (§4.1).
type Sampler struct {
	px, py     int
	pass       int
	sampleIdx  int
	dim        int
	scrambleX  uint32
	scrambleY  uint32
	mwc        *sequence.MWC
}

// NewSampler builds the per-sample stream for pixel (px,py), pass index
// pass (0-based), and sample index within the pixel's total budget so far.
// totalKnown reports whether the caller knows the final per-pixel sample
// count up front (single-pass renders); the Sampler does not use it, and
// Get2D draws the across-pass Sobol pair in either case.
func NewSampler(px, py, pass, sampleIdx int, totalKnown bool) *Sampler {
	key := sequenceKey(px, py)
	return &Sampler{
		px: px, py: py, pass: pass, sampleIdx: sampleIdx,
		scrambleX: key, scrambleY: key ^ 0x9e3779b9,
		mwc: sequence.NewMWC(px, py, pass, sampleIdx),
	}
}

func sequenceKey(px, py int) uint32 {
	// Re-derive the same FNV-1a pixel key pkg/sequence uses internally so
	// the 2-D pair generators' scramble matches VanDerCorputForPixel's.
	const offset32 = 2166136261
	const prime32 = 16777619
	h := uint32(offset32)
	words := [2]uint32{uint32(px), uint32(py)}
	for _, w := range words {
		for shift := 0; shift < 32; shift += 8 {
			h ^= (w >> uint(shift)) & 0xff
			h *= prime32
		}
	}
	return h
}

// Get1D returns the next 1-D dimension: if it is the stream's first draw
// (dimension 0) it uses the scrambled van der Corput sequence; later dimensions
// use the scrambled Halton generator keyed by the running dimension index
// (§4.1 "a per-dimension scrambled Halton generator...used for
// integrator-internal dimensions beyond pixel AA").
func (s *Sampler) Get1D() float64 {
	d := s.dim
	s.dim++
	if d == 0 {
		return sequence.VanDerCorputForPixel(s.px, s.py, uint32(s.sampleIdx))
	}
	scramble := float64(s.scrambleX^uint32(d)*2654435761) * 2.3283064365386963e-10
	return sequence.ScrambledHalton(uint64(s.sampleIdx), d, scramble)
}

// Get2D returns a 2-D low-discrepancy pair from the across-pass-safe Sobol02
// generator on every call, including the first (pixel AA); the
// Larcher-Pillichshammer generator is not used.
func (s *Sampler) Get2D() core.Vec2 {
	d := s.dim
	s.dim += 2
	n := uint32(s.sampleIdx)
	sx := s.scrambleX ^ uint32(d)*2654435761
	sy := s.scrambleY ^ uint32(d)*40503
	x, y := sequence.Sobol02(n, sx, sy)
	return core.Vec2{X: x, Y: y}
}

// Get3D composes a 2-D low-discrepancy pair with the MWC jitter stream for
// the third dimension (§4.1 "a 32-bit multiply-with-carry PRNG used for
// jitter and roulette"), since none of the low-discrepancy generators here
// natively produce three decorrelated dimensions in one call.
func (s *Sampler) Get3D() core.Vec3 {
	uv := s.Get2D()
	return core.Vec3{X: uv.X, Y: uv.Y, Z: s.mwc.Next()}
}
