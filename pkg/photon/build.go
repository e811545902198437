package photon

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/lumenforge/tracecore/pkg/core"
)

// Budget bounds one photon-emission pass (§4.8): how many photons to try to
// deposit into each map, and the tracing parameters that govern each path.
type Budget struct {
	CausticTarget int
	DiffuseTarget int
	MaxBounces    int
	RouletteDepth int
	PowerEpsilon  float64
	Workers       int
}

// Map is the built pair of photon maps plus the kd-trees over them,
// produced by Trace and ready for the integrator's density estimate (§4.9
// point 4).
type Map struct {
	Caustic     []Photon
	Diffuse     []Photon
	CausticTree *Tree
	DiffuseTree *Tree
	// Paths is the number of photon paths emitted to build this map (not
	// the number deposited), the normalizer the density estimate divides by
	// (§4.9 point 4: "1/(pi*r^2*paths)").
	Paths int
	// Name uniquely identifies this build, written into File.Name when the
	// map is serialized (§6 photon map file format) so two builds of the
	// same scene never collide on disk.
	Name string
}

// samplerFactory hands each worker its own deterministic core.Sampler
// stream so photon identity depends on (light_index, emission_sample,
// bounce_index) per the worker's own stream, not on thread scheduling
// (§4.8 "Determinism").
type samplerFactory func(worker int) core.Sampler

// Trace emits and traces photons from scene's lights until both the
// caustic and diffuse targets are met, per §4.8's three-step build:
// sample a light from the power-weighted CDF, emit, trace with Russian
// roulette, deposit on diffuse hits filed by whether the path has seen a
// specular bounce yet.
func Trace(ctx context.Context, scene core.Scene, budget Budget, newSampler samplerFactory, diag *core.Diagnostics) *Map {
	lightSampler := core.NewWeightedLightSampler(scene.Lights())

	workers := budget.Workers
	if workers <= 0 {
		workers = 1
	}

	var mu sync.Mutex
	var caustic, diffuse []Photon
	var paths int64
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup

	causticDone := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(caustic) >= budget.CausticTarget
	}
	diffuseDone := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(diffuse) >= budget.DiffuseTarget
	}

	for w := 0; w < workers; w++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(worker int) {
			defer sem.Release(1)
			defer wg.Done()

			sampler := newSampler(worker)
			var localCaustic, localDiffuse []Photon
			const batchFlush = 256

			for !causticDone() || !diffuseDone() {
				select {
				case <-ctx.Done():
					return
				default:
				}

				light, pmf, _ := lightSampler.Sample(sampler.Get1D())
				if light == nil || pmf <= 0 {
					continue
				}

				emission := light.SampleEmission(sampler.Get2D(), sampler.Get2D())
				if emission.AreaPDF <= 0 || emission.DirectionPDF <= 0 {
					continue
				}

				power := emission.Emission.Multiply(1.0 / (pmf * emission.AreaPDF * emission.DirectionPDF))
				traceOne(scene, emission.Point, emission.Direction, power, budget, sampler, &localCaustic, &localDiffuse, diag)
				atomic.AddInt64(&paths, 1)

				if len(localCaustic) >= batchFlush || len(localDiffuse) >= batchFlush {
					mu.Lock()
					caustic = append(caustic, localCaustic...)
					diffuse = append(diffuse, localDiffuse...)
					mu.Unlock()
					localCaustic = localCaustic[:0]
					localDiffuse = localDiffuse[:0]
				}
			}

			if len(localCaustic) > 0 || len(localDiffuse) > 0 {
				mu.Lock()
				caustic = append(caustic, localCaustic...)
				diffuse = append(diffuse, localDiffuse...)
				mu.Unlock()
			}
		}(w)
	}

	wg.Wait()

	return &Map{
		Caustic:     caustic,
		Diffuse:     diffuse,
		CausticTree: Build(caustic),
		DiffuseTree: Build(diffuse),
		Paths:       int(atomic.LoadInt64(&paths)),
		Name:        uuid.NewString(),
	}
}

// traceOne walks a single photon path, depositing into caustic/diffuse per
// the filing rule of §4.8 point 2.
func traceOne(scene core.Scene, origin, dir core.Vec3, power core.Vec3, budget Budget, sampler core.Sampler, caustic, diffuse *[]Photon, diag *core.Diagnostics) {
	ray := core.NewRay(origin, dir)
	sawSpecular := false

	for bounce := 0; bounce < budget.MaxBounces; bounce++ {
		hit, ok := scene.Intersect(ray)
		if !ok {
			return
		}

		mat := hit.Material
		lobe := mat.Capabilities(hit.SurfacePoint)
		wo := ray.Direction.Negate()

		if lobe.Has(core.LobeDiffuse) && bounce > 0 {
			ph := Photon{Position: hit.P, Dir: wo, Power: power}
			if sawSpecular {
				ph.Kind = KindCaustic
				*caustic = append(*caustic, ph)
			} else {
				ph.Kind = KindDiffuse
				*diffuse = append(*diffuse, ph)
			}
		}

		result, ok := mat.Sample(hit.SurfacePoint, wo, sampler.Get2D(), core.LobeAll)
		if !ok {
			if diag != nil {
				diag.PhotonDepositFailed++
			}
			return
		}
		if result.IsSpecular() {
			sawSpecular = sawSpecular || lobe.Has(core.LobeSpecular)
			power = power.MultiplyVec(result.F)
		} else {
			cosTheta := hit.Ns.AbsDot(result.Wi)
			power = power.MultiplyVec(result.F).Multiply(cosTheta / result.PDF)
		}

		if bounce >= budget.RouletteDepth {
			survive := power.MaxComponent()
			if survive <= 0 {
				return
			}
			if survive > 1 {
				survive = 1
			}
			if sampler.Get1D() > survive {
				return
			}
			power = power.Multiply(1.0 / survive)
		}

		if power.MaxComponent() < budget.PowerEpsilon {
			if diag != nil {
				diag.PhotonsDiscarded++
			}
			return
		}

		ray = core.NewRay(hit.P.Add(hit.Ns.Multiply(1e-4)), result.Wi)
	}
}
