// Package renderer implements the tile-parallel sampling driver (C2/C3/C11):
// the image splitter, the image film, the per-sample deterministic sampler,
// the thin-lens camera, and the multi-pass orchestrator that ties them to a
// core.Scene and a surface integrator.
package renderer

import (
	"context"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/lumenforge/tracecore/pkg/colorimage"
	"github.com/lumenforge/tracecore/pkg/core"
)

// Integrator is the capability the driver needs from a surface integrator:
// trace one camera/recursive ray to radiance (§4.9's state machine, entered
// fresh per camera ray). pkg/integrator.Integrator satisfies this.
type Integrator interface {
	RayColor(ray core.Ray, scene core.Scene, rs *core.RenderState, diag *core.Diagnostics) core.Rgb
}

// Options configures the C11 driver's multi-pass render loop.
type Options struct {
	TileSize int
	// PassSampleTargets is the cumulative per-pixel sample count each pass
	// should reach (e.g. {1,2,4,8,16,32,50} matches "1, 2, 4, 8, 16, 32,
	// then adaptive up to 50" the teacher's progressive config used).
	PassSampleTargets []int
	NumWorkers        int
	Order             Order
	AdaptiveThreshold float64
	FilterRadius      float64
	Logger            core.Logger
}

// DefaultOptions returns the driver's default pass schedule and tuning.
func DefaultOptions() Options {
	return Options{
		TileSize:          32,
		PassSampleTargets: []int{1, 2, 4, 8, 16, 32, 50},
		NumWorkers:        0,
		Order:             OrderCentreRandom,
		AdaptiveThreshold: 0.05,
		FilterRadius:      1.5,
	}
}

// Driver orchestrates the §4.11/§5 render loop: pre-pass -> tile-parallel
// pass -> adaptive-threshold refinement -> completion, with a global barrier
// between passes (pass k+1 observes every write from pass k) and a
// cooperative abort flag checked at tile boundaries.
type Driver struct {
	Scene      core.Scene
	Integrator Integrator
	Opts       Options

	aborted bool
}

// NewDriver builds a driver over scene and integ with opts (zero Options{}
// selects DefaultOptions's pass schedule on first Render call is NOT done
// automatically — callers should start from DefaultOptions()).
func NewDriver(scene core.Scene, integ Integrator, opts Options) *Driver {
	return &Driver{Scene: scene, Integrator: integ, Opts: opts}
}

// Abort sets the cooperative abort flag checked at tile boundaries (§5):
// workers drain the tile they hold, mark it finished, and exit; no further
// tiles are popped.
func (d *Driver) Abort() { d.aborted = true }

// PassResult is reported after each pass completes, letting embedders paint
// intermediate renders (mirrors the teacher's progressive pass-result
// channel without the channel plumbing: Render is a single blocking call
// that invokes onPass synchronously after each pass's barrier).
type PassResult struct {
	Pass, TotalPasses int
	Buffer            *colorimage.Buffer
	Diagnostics       core.Diagnostics
	Unconverged       int
	IsLast            bool
}

// Render executes the full multi-pass loop and returns the final buffer and
// the merged per-thread diagnostics (§7 "the driver aggregates counters at
// pass end"). onPass, if non-nil, is called synchronously after each pass's
// barrier (including the last) so callers can stream intermediate images.
func (d *Driver) Render(ctx context.Context, width, height int, onPass func(PassResult)) (*colorimage.Buffer, core.Diagnostics, error) {
	workers := d.Opts.NumWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	film := NewFilm(width, height, NewGaussianFilter(d.Opts.FilterRadius))
	camera := d.Scene.Camera()

	var merged core.Diagnostics
	rng := rand.New(rand.NewSource(1))
	prevTarget := 0
	totalPasses := len(d.Opts.PassSampleTargets)

	for pass, target := range d.Opts.PassSampleTargets {
		if d.aborted {
			break
		}

		film.BeginPass(pass, totalPasses, d.Opts.TileSize, d.Opts.Order, workers, rng)
		samplesThisPass := target - prevTarget

		g, gctx := errgroup.WithContext(ctx)
		passDiag := make([]core.Diagnostics, workers)

		for w := 0; w < workers; w++ {
			w := w
			g.Go(func() error {
				for {
					if d.aborted {
						return nil
					}
					select {
					case <-gctx.Done():
						return gctx.Err()
					default:
					}

					area, ok := film.NextAreaToRender()
					if !ok {
						return nil
					}
					d.renderTile(area, camera, film, pass, prevTarget, samplesThisPass, &passDiag[w])
					film.FinishArea(area)
				}
			})
		}

		if err := g.Wait(); err != nil && err != context.Canceled {
			return nil, merged, err
		}
		for _, ld := range passDiag {
			merged.Merge(ld)
		}

		isLast := pass == totalPasses-1
		if !isLast {
			film.ComputeAdaptiveMask(d.Opts.AdaptiveThreshold)
		}
		unconverged := film.RemainingUnconverged()

		if d.Opts.Logger != nil {
			d.Opts.Logger.Printf("pass %d/%d complete, %d px unconverged\n", pass+1, totalPasses, unconverged)
		}
		if onPass != nil {
			onPass(PassResult{
				Pass: pass, TotalPasses: totalPasses,
				Buffer: film.Finalize(), Diagnostics: merged,
				Unconverged: unconverged, IsLast: isLast,
			})
		}

		prevTarget = target
		// §8 scenario 5: a converged pass allocates zero additional samples
		// to every pixel in every subsequent pass.
		if !isLast && unconverged == 0 {
			break
		}
	}

	return film.Finalize(), merged, nil
}

// renderTile draws samplesThisPass additional samples per unconverged pixel
// in area, generating camera rays through camera, tracing them through
// d.Integrator, and splatting the result into film (§4.3, §4.9). Alpha
// reports whether the camera ray hit scene geometry at all (§3 "alpha is a
// straight coverage"; §8 scenario 1: a pure background hit reports zero
// coverage).
func (d *Driver) renderTile(area Area, camera core.Camera, film *Film, pass, startSample, count int, diag *core.Diagnostics) {
	if camera == nil || count <= 0 {
		return
	}
	for py := area.Rect.Y; py < area.Rect.Y+area.Rect.H; py++ {
		for px := area.Rect.X; px < area.Rect.X+area.Rect.W; px++ {
			if !film.NeedsMoreSamples(px, py) {
				continue
			}
			for s := 0; s < count; s++ {
				sampleIdx := startSample + s
				sampler := NewSampler(px, py, pass, sampleIdx, count == 1)

				aa := sampler.Get2D()
				lens := sampler.Get2D()
				sx := float64(px) + aa.X
				sy := float64(py) + aa.Y

				ray, weight := camera.GenerateRay(sx, sy, lens.X, lens.Y)

				hit, hitOK := d.Scene.Intersect(ray)
				var color core.Rgb
				alpha := 0.0
				depth := 0.0
				if hitOK {
					rs := &core.RenderState{
						Sampler: sampler, Depth: 0, Wavelength: 0,
						PixelX: px, PixelY: py, Pass: pass, Sample: sampleIdx,
						IncludeEmissive: true,
					}
					color = d.Integrator.RayColor(ray, d.Scene, rs, diag)
					alpha = 1.0
					depth = hit.T
				} else {
					color = core.ClampRadiance(d.Scene.Background(ray), diag)
				}

				film.AddSample(sx, sy, core.Rgba{Rgb: color.Multiply(weight), A: alpha}, depth)
			}
		}
	}
}
