package colorimage

import (
	stdcolor "image/color"
	stdimage "image"

	"golang.org/x/image/draw"

	"github.com/lumenforge/tracecore/pkg/core"
)

// Storage selects the in-memory layout of a Buffer (§4.4 "optional storage
// optimization").
type Storage int

const (
	// StorageFloat keeps full-precision samples (the default).
	StorageFloat Storage = iota
	// Storage8Bit keeps the same full-precision samples as StorageFloat;
	// At clamps RGB and alpha to [0,1] on read. Samples are not packed
	// into 8 bits per channel.
	Storage8Bit
	// Storage16Bit behaves like Storage8Bit: full-precision samples,
	// clamped to [0,1] on read, with no compressed 16-bit layout.
	Storage16Bit
)

// Buffer is a 2-D array of RGBA samples. The full-precision source is
// always kept; reduced storage tiers clamp non-destructively on read only.
type Buffer struct {
	Width, Height int
	Storage       Storage

	source []core.Rgba
}

// NewBuffer allocates a zeroed width x height buffer.
func NewBuffer(width, height int, storage Storage) *Buffer {
	return &Buffer{Width: width, Height: height, Storage: storage, source: make([]core.Rgba, width*height)}
}

func (b *Buffer) index(x, y int) int { return y*b.Width + x }

// At returns the full-precision sample at (x,y), clamped to the buffer's
// storage tier's gamut (identity for StorageFloat).
func (b *Buffer) At(x, y int) core.Rgba {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return core.Rgba{}
	}
	c := b.source[b.index(x, y)]
	if b.Storage != StorageFloat {
		c.Rgb = c.Rgb.Clamp(0, 1)
		c.A = clamp01(c.A)
	}
	return c
}

// Set stores a full-precision sample; the source is never clamped so a
// buffer can be demoted/promoted between storage tiers non-destructively.
func (b *Buffer) Set(x, y int, c core.Rgba) {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return
	}
	b.source[b.index(x, y)] = c
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ToImage renders the buffer (gamut-clamped, straight alpha) into a stdlib
// image.RGBA suitable for image/png or any other stdlib image encoder.
func (b *Buffer) ToImage() *stdimage.RGBA {
	return b.toImageRGBA()
}

// toImageRGBA renders the buffer (gamut-clamped) into a stdlib image.RGBA
// so it can be fed to golang.org/x/image/draw scalers.
func (b *Buffer) toImageRGBA() *stdimage.RGBA {
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			c := b.At(x, y)
			img.Set(x, y, stdcolor.RGBA64{
				R: uint16(clamp01(c.X) * 65535),
				G: uint16(clamp01(c.Y) * 65535),
				B: uint16(clamp01(c.Z) * 65535),
				A: uint16(clamp01(c.A) * 65535),
			})
		}
	}
	return img
}

func fromImageRGBA(img *stdimage.RGBA, w, h int) *Buffer {
	out := NewBuffer(w, h, StorageFloat)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			out.Set(x, y, core.Rgba{
				Rgb: core.Rgb{X: float64(r) / 65535, Y: float64(g) / 65535, Z: float64(bl) / 65535},
				A:   float64(a) / 65535,
			})
		}
	}
	return out
}

// MipChain is the pre-filtered texture pyramid produced by GenerateMips
// (§4.4 "repeatedly area-filter to half resolution until both dimensions
// are 1").
type MipChain struct {
	Levels []*Buffer
}

// GenerateMips repeatedly area-filters the buffer to half resolution using
// golang.org/x/image/draw's CatmullRom scaler (a higher-quality area filter
// than a hand-rolled 2x2 box average) until both dimensions reach 1.
func (b *Buffer) GenerateMips() *MipChain {
	chain := &MipChain{Levels: []*Buffer{b}}

	w, h := b.Width, b.Height
	src := b.toImageRGBA()
	for w > 1 || h > 1 {
		w = max(1, w/2)
		h = max(1, h/2)

		dst := stdimage.NewRGBA(stdimage.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

		level := fromImageRGBA(dst, w, h)
		chain.Levels = append(chain.Levels, level)
		src = dst
	}

	return chain
}

// Level returns the mip level closest to the requested level of detail,
// clamped to the chain's extent — used by the texture node at shading time.
func (m *MipChain) Level(lod float64) *Buffer {
	idx := int(lod + 0.5)
	if idx < 0 {
		idx = 0
	}
	if idx >= len(m.Levels) {
		idx = len(m.Levels) - 1
	}
	return m.Levels[idx]
}
