package core

import "sort"

// WeightedLightSampler draws lights from a discrete CDF weighted by emitted
// power (§4.8 point 1: "Build a discrete CDF over lights weighted by
// emitted power"). It is also usable for direct-lighting light selection
// when importance-weighted NEE is preferred over uniform selection.
type WeightedLightSampler struct {
	lights []Light
	cdf    []float64 // cumulative, cdf[len-1] == 1 when totalPower > 0
	pmf    []float64
}

// NewWeightedLightSampler builds the CDF once. Lights with zero power are
// kept (pmf 0) so indices stay stable, but can never be drawn; this is the
// build-time warning condition from §7 ("lights with zero emitted power").
func NewWeightedLightSampler(lights []Light) *WeightedLightSampler {
	ws := &WeightedLightSampler{lights: lights, pmf: make([]float64, len(lights)), cdf: make([]float64, len(lights))}

	total := 0.0
	for _, l := range lights {
		total += l.Power()
	}

	running := 0.0
	for i, l := range lights {
		p := 0.0
		if total > 0 {
			p = l.Power() / total
		}
		ws.pmf[i] = p
		running += p
		ws.cdf[i] = running
	}

	return ws
}

// NewUniformLightSampler builds a sampler that ignores power and treats
// every light equally, matching core.SampleLight's uniform selection.
func NewUniformLightSampler(lights []Light) *WeightedLightSampler {
	n := len(lights)
	ws := &WeightedLightSampler{lights: lights, pmf: make([]float64, n), cdf: make([]float64, n)}
	for i := range lights {
		ws.pmf[i] = 1.0 / float64(n)
		ws.cdf[i] = float64(i+1) / float64(n)
	}
	return ws
}

// Sample draws a light index given a uniform number in [0,1) and returns
// the light, its selection probability (pmf), and its index.
func (ws *WeightedLightSampler) Sample(u float64) (Light, float64, int) {
	if len(ws.lights) == 0 {
		return nil, 0, -1
	}
	idx := sort.Search(len(ws.cdf), func(i int) bool { return ws.cdf[i] > u })
	if idx >= len(ws.lights) {
		idx = len(ws.lights) - 1
	}
	return ws.lights[idx], ws.pmf[idx], idx
}

// Probability returns the selection pmf for a given light index.
func (ws *WeightedLightSampler) Probability(idx int) float64 {
	if idx < 0 || idx >= len(ws.pmf) {
		return 0
	}
	return ws.pmf[idx]
}

func (ws *WeightedLightSampler) Count() int { return len(ws.lights) }
func (ws *WeightedLightSampler) Lights() []Light { return ws.lights }
