// Command tracecore renders one of the built-in test scenes and writes the
// result to a PNG. It is a thin demo driver, not a scene description
// language or plugin host (those are external-collaborator concerns): flags
// pick the scene, the image size, the output path, the photon-map
// integrator, and an optional uniform fog.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"os"

	"github.com/lumenforge/tracecore/pkg/core"
	"github.com/lumenforge/tracecore/pkg/integrator"
	"github.com/lumenforge/tracecore/pkg/logging"
	"github.com/lumenforge/tracecore/pkg/photon"
	"github.com/lumenforge/tracecore/pkg/renderer"
	"github.com/lumenforge/tracecore/pkg/scene"
	"github.com/lumenforge/tracecore/pkg/volume"
)

func main() {
	sceneName := flag.String("scene", "diffuse-sphere", "scene to render: constant, diffuse-sphere, showcase, cornell")
	output := flag.String("out", "render.png", "output PNG path")
	width := flag.Int("width", 400, "image width in pixels")
	height := flag.Int("height", 400, "image height in pixels")
	usePhotons := flag.Bool("photons", false, "use the photon-map integrator instead of direct lighting")
	fogDensity := flag.Float64("fog", 0, "scatter+absorb coefficient of a uniform fog filling the scene bound (0 disables)")
	flag.Parse()

	log := logging.NewDevelopment()
	defer log.Sync()

	sc, err := buildScene(*sceneName, *width, *height)
	if err != nil {
		log.Printf("scene %q: %v\n", *sceneName, err)
		os.Exit(1)
	}

	opts := integrator.DefaultOptions()
	var integ *integrator.Integrator
	if *usePhotons {
		integ = buildPhotonIntegrator(sc, opts, log)
	} else {
		integ = integrator.NewDirectIntegrator(opts, sc.Lights())
	}
	if *fogDensity > 0 {
		integ.WithMedium(buildFog(sc, *fogDensity))
	}

	driver := renderer.NewDriver(sc, integ, withLogger(renderer.DefaultOptions(), log))

	buf, diag, err := driver.Render(context.Background(), *width, *height, func(p renderer.PassResult) {
		log.Printf("pass %d/%d: %d px unconverged\n", p.Pass+1, p.TotalPasses, p.Unconverged)
	})
	if err != nil {
		log.Printf("render failed: %v\n", err)
		os.Exit(1)
	}
	log.PassDiagnostics(-1, diag)

	f, err := os.Create(*output)
	if err != nil {
		log.Printf("create %q: %v\n", *output, err)
		os.Exit(1)
	}
	defer f.Close()

	if err := png.Encode(f, buf.ToImage()); err != nil {
		log.Printf("encode png: %v\n", err)
		os.Exit(1)
	}
	log.Printf("wrote %s\n", *output)
}

func withLogger(opts renderer.Options, log core.Logger) renderer.Options {
	opts.Logger = log
	return opts
}

func buildScene(name string, width, height int) (*scene.Scene, error) {
	switch name {
	case "constant":
		return scene.NewConstantScene(width, height, core.Rgb{X: 0.5, Y: 0.5, Z: 0.5}), nil
	case "diffuse-sphere":
		return scene.NewDiffuseSphereScene(width, height), nil
	case "showcase":
		return scene.NewShowcaseScene(width, height), nil
	case "cornell":
		return scene.NewCornellScene(width, height), nil
	default:
		return nil, fmt.Errorf("unknown scene %q", name)
	}
}

// buildPhotonIntegrator runs the C8 photon-map build with a modest budget
// sized for a demo run, then wires the result into the C9 photon-gather
// integrator.
func buildPhotonIntegrator(sc *scene.Scene, opts integrator.Options, log core.Logger) *integrator.Integrator {
	budget := photon.Budget{
		CausticTarget: 50_000,
		DiffuseTarget: 50_000,
		MaxBounces:    12,
		RouletteDepth: 3,
		PowerEpsilon:  1e-4,
		Workers:       0,
	}

	var diag core.Diagnostics
	newSampler := func(worker int) core.Sampler {
		return renderer.NewSampler(worker, 0, 0, 0, false)
	}
	m := photon.Trace(context.Background(), sc, budget, newSampler, &diag)
	log.Printf("photon map %s: %d caustic, %d diffuse, %d paths\n", m.Name, len(m.Caustic), len(m.Diffuse), m.Paths)

	return integrator.NewPhotonMapIntegrator(opts, sc.Lights(), m)
}

// buildFog fills the scene's world bound with a uniform participating
// medium (C10), scattering and absorbing in equal measure.
func buildFog(sc *scene.Scene, density float64) *volume.Homogeneous {
	sigma := core.Rgb{X: density, Y: density, Z: density}
	return &volume.Homogeneous{
		SigmaA:   sigma.Multiply(0.5),
		SigmaS:   sigma.Multiply(0.5),
		BoundBox: sc.WorldBound(),
		StepSize: 0.1,
	}
}
