package renderer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRasterTilesCoversImageExactlyOnce(t *testing.T) {
	tiles := rasterTiles(100, 70, 32)

	covered := make([][]bool, 70)
	for y := range covered {
		covered[y] = make([]bool, 100)
	}
	for _, tile := range tiles {
		for y := tile.Y; y < tile.Y+tile.H; y++ {
			for x := tile.X; x < tile.X+tile.W; x++ {
				require.False(t, covered[y][x], "pixel (%d,%d) covered twice", x, y)
				covered[y][x] = true
			}
		}
	}
	for y := range covered {
		for x := range covered[y] {
			assert.True(t, covered[y][x], "pixel (%d,%d) never covered", x, y)
		}
	}
}

func TestSplitterNextExhaustsExactlyOnce(t *testing.T) {
	s := NewSplitter(64, 64, 16, OrderLinear, 2, nil)
	seen := 0
	for {
		_, ok := s.Next()
		if !ok {
			break
		}
		seen++
	}
	assert.Equal(t, 0, s.Remaining())
	assert.Greater(t, seen, 0)

	_, ok := s.Next()
	assert.False(t, ok, "Next should stay exhausted")
}

func TestSubdivideTailQuartersFinalThreadsTiles(t *testing.T) {
	base := rasterTiles(128, 32, 32)
	out := subdivideTail(base, 32, 2)
	// 4 base tiles; final 2*2=4 == all of them get subdivided: first 2
	// (threads) halved into 4 tiles of 16, last 2 quartered into 16 tiles of 8.
	assert.Greater(t, len(out), len(base))
	assert.Len(t, out, 2*4+2*16)
}

func TestApplyOrderLinearIsIdentity(t *testing.T) {
	tiles := rasterTiles(64, 64, 16)
	ordered := applyOrder(append([]TileRect{}, tiles...), OrderLinear, nil)
	assert.Equal(t, tiles, ordered)
}

func TestApplyOrderCentreRandomSortsByDistance(t *testing.T) {
	tiles := rasterTiles(64, 64, 16)
	rng := rand.New(rand.NewSource(42))
	ordered := applyOrder(tiles, OrderCentreRandom, rng)

	cx, cy := imageCentre(ordered)
	for i := 1; i < len(ordered); i++ {
		assert.LessOrEqual(t, distSq(ordered[i-1], cx, cy), distSq(ordered[i], cx, cy))
	}
}
