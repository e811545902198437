package renderer

import (
	"math"
	"math/rand"
	"sync"

	"github.com/lumenforge/tracecore/pkg/colorimage"
	"github.com/lumenforge/tracecore/pkg/core"
)

// filmStripes bounds the number of per-pixel locks the film keeps; pixels
// hash into a stripe rather than each owning a dedicated mutex, which keeps
// the lock table's size independent of image resolution while still making
// addSample's read-modify-write atomic per pixel (§5 "per-pixel spin lock").
const filmStripes = 256

// Filter is the reconstruction kernel addSample splats through (§4.3). A
// Gaussian falloff clamped to zero at Radius, the same shape PBRT-style
// renderers and the teacher's own box-filter slot both generalize from.
type Filter struct {
	Radius float64
	Alpha  float64
}

// NewGaussianFilter builds a Gaussian reconstruction filter of the given
// radius (§3 "Render area / tile... filter_width").
func NewGaussianFilter(radius float64) Filter {
	return Filter{Radius: radius, Alpha: 2}
}

func (f Filter) weight1D(d float64) float64 {
	w := math.Exp(-f.Alpha*d*d) - math.Exp(-f.Alpha*f.Radius*f.Radius)
	if w < 0 {
		return 0
	}
	return w
}

func (f Filter) Weight(dx, dy float64) float64 {
	return f.weight1D(dx) * f.weight1D(dy)
}

// pixelAccum is one pixel's accumulator state (§3 "Image film"): a
// radiance+alpha sum, a weight sum, and the squared-delta estimator used
// for adaptive sampling.
type pixelAccum struct {
	sum         core.Rgb
	alphaSum    float64
	weight      float64
	lumSum      float64
	lumSqSum    float64
	sampleCount int
	depthSum    float64
	needsMore   bool
}

// Area is a tile handed out by the film: the render rectangle plus the
// safe-area halo (§3) inside which Filter is guaranteed not to need pixels
// outside Rect — computed by the film, never by the Splitter.
type Area struct {
	Rect                               TileRect
	SafeX0, SafeX1, SafeY0, SafeY1 int
}

// TileFlushFunc is the §6 film flush callback type. FinishArea invokes
// OnTileFlushed from the worker that finished the tile, so implementations
// must be thread-safe and fast. Film never invokes OnHighlightArea.
type TileFlushFunc func(x, y, w, h int)

// Film is the C3 image film: the only shared mutable structure during a
// render pass. It owns the per-pass tile splitter and the per-pixel
// accumulators, and computes the adaptive-resample mask at pass boundaries.
type Film struct {
	Width, Height int
	Filter        Filter

	OnTileFlushed    TileFlushFunc
	OnHighlightArea  TileFlushFunc

	pixels  []pixelAccum
	stripes [filmStripes]sync.Mutex

	splitter *Splitter
	pass     int
}

// NewFilm allocates a zeroed film for a width x height image.
func NewFilm(width, height int, filter Filter) *Film {
	return &Film{
		Width: width, Height: height, Filter: filter,
		pixels: make([]pixelAccum, width*height),
	}
}

// BeginPass rebuilds the tile schedule for this pass (§4.3) and, on the
// first pass only, marks every pixel as needing samples. It resets no
// accumulator: pixel sums/weights and the luminance statistics the adaptive
// mask reads all accumulate across passes (§3 invariant).
func (f *Film) BeginPass(pass, totalPasses int, tileSize int, order Order, threads int, rng *rand.Rand) {
	f.pass = pass
	if pass == 0 {
		for i := range f.pixels {
			f.pixels[i].needsMore = true
		}
	}
	f.splitter = NewSplitter(f.Width, f.Height, tileSize, order, threads, rng)
}

// NextAreaToRender thread-safely pops the next tile from this pass's
// splitter, wrapping it with the safe-area halo (§4.3).
func (f *Film) NextAreaToRender() (Area, bool) {
	t, ok := f.splitter.Next()
	if !ok {
		return Area{}, false
	}
	halo := int(math.Ceil(f.Filter.Radius))
	return Area{
		Rect:   t,
		SafeX0: t.X + halo,
		SafeX1: t.X + t.W - halo,
		SafeY0: t.Y + halo,
		SafeY1: t.Y + t.H - halo,
	}, true
}

// NeedsMoreSamples reports whether (x,y) was marked unconverged by the last
// ComputeAdaptiveMask call (always true before the first call, i.e. pass 0).
func (f *Film) NeedsMoreSamples(x, y int) bool {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return false
	}
	return f.pixels[y*f.Width+x].needsMore
}

// AddSample splats color (straight alpha in c.A) at continuous image
// coordinates (sx,sy) through Filter into every pixel the kernel overlaps,
// and folds the sample's luminance into the squared-delta AA estimator
// (§4.3). Associative in its accumulator: identical inputs in any order
// give the same final value up to float rounding (§8).
func (f *Film) AddSample(sx, sy float64, c core.Rgba, depth float64) {
	r := f.Filter.Radius
	x0 := int(math.Ceil(sx - r - 0.5))
	x1 := int(math.Floor(sx + r - 0.5))
	y0 := int(math.Ceil(sy - r - 0.5))
	y1 := int(math.Floor(sy + r - 0.5))

	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 >= f.Width {
		x1 = f.Width - 1
	}
	if y1 >= f.Height {
		y1 = f.Height - 1
	}

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx := sx - (float64(x) + 0.5)
			dy := sy - (float64(y) + 0.5)
			w := f.Filter.Weight(dx, dy)
			if w <= 0 {
				continue
			}
			f.splat(x, y, c, w, depth)
		}
	}
}

func (f *Film) splat(x, y int, c core.Rgba, w, depth float64) {
	idx := y*f.Width + x
	m := &f.stripes[idx%filmStripes]
	m.Lock()
	defer m.Unlock()

	p := &f.pixels[idx]
	p.sum = p.sum.Add(c.Rgb.Multiply(w))
	p.alphaSum += c.A * w
	p.weight += w
	lum := c.Rgb.Luminance()
	p.lumSum += lum * w
	p.lumSqSum += lum * lum * w
	p.sampleCount++
	p.depthSum += depth * w
}

// FinishArea is invoked by the worker after all samples in tile have been
// added; it fires the flush callback so embedders can paint the partial
// image (§4.3, §6).
func (f *Film) FinishArea(a Area) {
	if f.OnTileFlushed != nil {
		f.OnTileFlushed(a.Rect.X, a.Rect.Y, a.Rect.W, a.Rect.H)
	}
}

// ComputeAdaptiveMask recomputes the per-pixel "needs more samples" bit at
// pass boundaries (§4.3): a pixel needs more samples if its normalized
// squared-delta (relative standard error of the luminance estimator)
// exceeds threshold.
func (f *Film) ComputeAdaptiveMask(threshold float64) {
	for i := range f.pixels {
		p := &f.pixels[i]
		if p.weight <= 0 || p.sampleCount < 2 {
			p.needsMore = true
			continue
		}
		mean := p.lumSum / p.weight
		variance := p.lumSqSum/p.weight - mean*mean
		if variance < 0 {
			variance = 0
		}
		stderr := math.Sqrt(variance / float64(p.sampleCount))
		rel := stderr
		if mean > 1e-6 {
			rel = stderr / mean
		}
		p.needsMore = rel > threshold
	}
}

// RemainingUnconverged counts pixels still marked "needs more samples",
// used by the driver to decide whether a subsequent pass has any work left
// (§8 scenario 5: "allocate zero additional samples").
func (f *Film) RemainingUnconverged() int {
	n := 0
	for i := range f.pixels {
		if f.pixels[i].needsMore {
			n++
		}
	}
	return n
}

// Finalize emits the final display buffer: displayed value = sum /
// max(weight, eps) per §3's invariant, alpha carried straight (non-
// premultiplied) as the background-coverage invariant of §8 scenario 1
// requires.
func (f *Film) Finalize() *colorimage.Buffer {
	const eps = 1e-8
	buf := colorimage.NewBuffer(f.Width, f.Height, colorimage.StorageFloat)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			p := &f.pixels[y*f.Width+x]
			denom := p.weight
			if denom < eps {
				denom = eps
			}
			buf.Set(x, y, core.Rgba{Rgb: p.sum.Multiply(1 / denom), A: p.alphaSum / denom})
		}
	}
	return buf
}
