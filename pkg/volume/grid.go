package volume

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/lumenforge/tracecore/pkg/core"
)

// Grid is a trilinearly-interpolated density field loaded from a
// POVRay-style .df3 stream (§4.10, §6). sigma_t(x) = density(x) * SigmaBase.
type Grid struct {
	Nx, Ny, Nz int
	Density    []float64 // x-major, then y, then z — matches the .df3 layout
	SigmaBase  core.Rgb
	Le         core.Rgb
	BoundBox   core.AABB
	StepSize   float64
}

// LoadDF3 parses a .df3 density file (§6): a 6-byte big-endian header of
// three u16 dimensions, NOTE despite the format otherwise reading like a
// little-endian-friendly byte stream, followed by dimX*dimY*dimZ density
// bytes normalized to [0,1] by dividing by 255.
func LoadDF3(r io.Reader, sigmaBase, le core.Rgb, bound core.AABB, step float64) (*Grid, error) {
	var header [6]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, errors.Wrap(err, "df3: read header")
	}

	nx := int(binary.BigEndian.Uint16(header[0:2]))
	ny := int(binary.BigEndian.Uint16(header[2:4]))
	nz := int(binary.BigEndian.Uint16(header[4:6]))
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, errors.Errorf("df3: invalid dimensions %dx%dx%d", nx, ny, nz)
	}

	raw := make([]byte, nx*ny*nz)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, errors.Wrap(err, "df3: read voxels")
	}

	density := make([]float64, len(raw))
	for i, b := range raw {
		density[i] = float64(b) / 255.0
	}

	return &Grid{
		Nx: nx, Ny: ny, Nz: nz,
		Density:   density,
		SigmaBase: sigmaBase,
		Le:        le,
		BoundBox:  bound,
		StepSize:  step,
	}, nil
}

func (g *Grid) Bound() core.AABB { return g.BoundBox }

// sample trilinearly interpolates the density field at a world point,
// mapping the AABB to [0,1]^3 grid space first.
func (g *Grid) sample(p core.Vec3) float64 {
	size := g.BoundBox.Size()
	local := p.Subtract(g.BoundBox.Min)

	fx := clampedFraction(local.X, size.X) * float64(g.Nx-1)
	fy := clampedFraction(local.Y, size.Y) * float64(g.Ny-1)
	fz := clampedFraction(local.Z, size.Z) * float64(g.Nz-1)

	x0, y0, z0 := int(math.Floor(fx)), int(math.Floor(fy)), int(math.Floor(fz))
	x1, y1, z1 := clampIndex(x0+1, g.Nx), clampIndex(y0+1, g.Ny), clampIndex(z0+1, g.Nz)
	x0, y0, z0 = clampIndex(x0, g.Nx), clampIndex(y0, g.Ny), clampIndex(z0, g.Nz)

	tx, ty, tz := fx-math.Floor(fx), fy-math.Floor(fy), fz-math.Floor(fz)

	at := func(x, y, z int) float64 {
		return g.Density[(z*g.Ny+y)*g.Nx+x]
	}

	c00 := lerp(at(x0, y0, z0), at(x1, y0, z0), tx)
	c10 := lerp(at(x0, y1, z0), at(x1, y1, z0), tx)
	c01 := lerp(at(x0, y0, z1), at(x1, y0, z1), tx)
	c11 := lerp(at(x0, y1, z1), at(x1, y1, z1), tx)
	c0 := lerp(c00, c10, ty)
	c1 := lerp(c01, c11, ty)
	return lerp(c0, c1, tz)
}

func clampedFraction(v, extent float64) float64 {
	if extent <= 0 {
		return 0
	}
	f := v / extent
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func (g *Grid) Transmittance(ray core.Ray, distance float64) core.Rgb {
	tNear, tFar, ok := clipToBound(ray, g.BoundBox, distance)
	if !ok {
		return core.Rgb{X: 1, Y: 1, Z: 1}
	}

	step := g.StepSize
	if step <= 0 {
		step = 0.1
	}

	optical := core.Rgb{}
	for t := tNear; t < tFar; t += step {
		segment := math.Min(step, tFar-t)
		rho := g.sample(ray.At(t + segment*0.5))
		optical = optical.Add(g.SigmaBase.Multiply(rho * segment))
	}

	return core.Rgb{X: math.Exp(-optical.X), Y: math.Exp(-optical.Y), Z: math.Exp(-optical.Z)}
}

func (g *Grid) Integrate(ray core.Ray, distance float64, sampler core.Sampler, sampleLi func(p, wo core.Vec3) core.Rgb) core.Rgb {
	tNear, tFar, ok := clipToBound(ray, g.BoundBox, distance)
	if !ok || tFar <= tNear {
		return core.Rgb{}
	}

	step := g.StepSize
	if step <= 0 {
		step = 0.1
	}
	jitter := sampler.Get1D()

	total := core.Rgb{}
	transmittance := core.Rgb{X: 1, Y: 1, Z: 1}
	wo := ray.Direction.Negate()

	for t := tNear + jitter*step; t < tFar; t += step {
		segment := math.Min(step, tFar-t)
		p := ray.At(t)
		rho := g.sample(p)
		sigmaT := g.SigmaBase.Multiply(rho)

		li := sampleLi(p, wo)
		inScatter := transmittance.MultiplyVec(sigmaT).MultiplyVec(li).Multiply(segment)
		emission := transmittance.MultiplyVec(g.Le).Multiply(rho * segment)
		total = total.Add(inScatter).Add(emission)

		transmittance = core.Rgb{
			X: transmittance.X * math.Exp(-sigmaT.X*segment),
			Y: transmittance.Y * math.Exp(-sigmaT.Y*segment),
			Z: transmittance.Z * math.Exp(-sigmaT.Z*segment),
		}
	}

	return total
}
