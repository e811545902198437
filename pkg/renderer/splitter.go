package renderer

import (
	"math/rand"
	"sort"
	"sync"
)

// Order selects the tile-visitation schedule (§4.2).
type Order int

const (
	// OrderLinear visits tiles in row-major scan order.
	OrderLinear Order = iota
	// OrderRandom visits tiles in a uniform shuffle.
	OrderRandom
	// OrderCentreRandom shuffles, then stable-sorts by squared distance of
	// the tile centre to the image centre (nearest first) — useful for
	// progressive previews that converge from the middle outward.
	OrderCentreRandom
)

// TileRect is the raw rectangle a Splitter hands out: (x, y, w, h) within
// the image. The safe-area halo of §3 "Render area / tile" is the film's
// responsibility, not the splitter's.
type TileRect struct {
	X, Y, W, H int
}

// Splitter partitions an image into tiles at a configured side length and
// serves them one at a time via a thread-safe iterator (§4.2). It never
// revisits a tile within a pass: Next exhausts the list exactly once.
type Splitter struct {
	mu    sync.Mutex
	tiles []TileRect
	next  int
}

// NewSplitter builds the tile schedule for one pass: a raster covering of
// width x height at tileSize, with the final 2*threads tiles (in raster
// order) subdivided — the first half halved, the last `threads` quartered —
// so stragglers at pass end are finer-grained (§4.2), then reordered as a
// whole according to order. rng drives OrderRandom/OrderCentreRandom's
// shuffle; pass nil for OrderLinear (deterministic, no shuffle needed).
func NewSplitter(width, height, tileSize int, order Order, threads int, rng *rand.Rand) *Splitter {
	base := rasterTiles(width, height, tileSize)
	tiles := subdivideTail(base, tileSize, threads)
	tiles = applyOrder(tiles, order, rng)
	return &Splitter{tiles: tiles}
}

// rasterTiles covers width x height with tileSize-side tiles in row-major
// order, clipping the final row/column to the image bounds.
func rasterTiles(width, height, tileSize int) []TileRect {
	if tileSize <= 0 {
		tileSize = width
	}
	var tiles []TileRect
	for y := 0; y < height; y += tileSize {
		h := tileSize
		if y+h > height {
			h = height - y
		}
		for x := 0; x < width; x += tileSize {
			w := tileSize
			if x+w > width {
				w = width - x
			}
			tiles = append(tiles, TileRect{X: x, Y: y, W: w, H: h})
		}
	}
	return tiles
}

// subdivideTail halves the side length of the first `threads` tiles of the
// trailing 2*threads window (in the current, still-raster, ordering) and
// quarters it for the final `threads` tiles, per §4.2. If there are fewer
// than 2*threads tiles in total, only as many as exist are subdivided.
func subdivideTail(tiles []TileRect, tileSize, threads int) []TileRect {
	if threads <= 0 || tileSize <= 1 || len(tiles) == 0 {
		return tiles
	}

	tailLen := 2 * threads
	if tailLen > len(tiles) {
		tailLen = len(tiles)
	}
	split := len(tiles) - tailLen
	tail := tiles[split:]

	halvedCount := tailLen - threads
	if halvedCount < 0 {
		halvedCount = 0
	}

	out := append([]TileRect{}, tiles[:split]...)
	for i, t := range tail {
		subSize := tileSize / 2
		if i >= halvedCount {
			subSize = tileSize / 4
		}
		if subSize < 1 {
			subSize = 1
		}
		for _, sub := range rasterTiles(t.W, t.H, subSize) {
			sub.X += t.X
			sub.Y += t.Y
			out = append(out, sub)
		}
	}
	return out
}

// applyOrder reorders tiles as a whole per the chosen schedule. Subdivided
// sub-tiles participate in the same ordering as untouched ones (§4.2).
func applyOrder(tiles []TileRect, order Order, rng *rand.Rand) []TileRect {
	switch order {
	case OrderLinear:
		return tiles
	case OrderRandom:
		shuffled := append([]TileRect{}, tiles...)
		shuffleTiles(shuffled, rng)
		return shuffled
	case OrderCentreRandom:
		shuffled := append([]TileRect{}, tiles...)
		shuffleTiles(shuffled, rng)
		cx, cy := imageCentre(shuffled)
		sort.SliceStable(shuffled, func(i, j int) bool {
			return distSq(shuffled[i], cx, cy) < distSq(shuffled[j], cx, cy)
		})
		return shuffled
	default:
		return tiles
	}
}

func shuffleTiles(tiles []TileRect, rng *rand.Rand) {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	rng.Shuffle(len(tiles), func(i, j int) { tiles[i], tiles[j] = tiles[j], tiles[i] })
}

func imageCentre(tiles []TileRect) (float64, float64) {
	maxX, maxY := 0, 0
	for _, t := range tiles {
		if t.X+t.W > maxX {
			maxX = t.X + t.W
		}
		if t.Y+t.H > maxY {
			maxY = t.Y + t.H
		}
	}
	return float64(maxX) / 2, float64(maxY) / 2
}

func distSq(t TileRect, cx, cy float64) float64 {
	tcx := float64(t.X) + float64(t.W)/2
	tcy := float64(t.Y) + float64(t.H)/2
	dx, dy := tcx-cx, tcy-cy
	return dx*dx + dy*dy
}

// Next pops the next tile, thread-safely. ok is false once every tile in
// this pass's schedule has been handed out.
func (s *Splitter) Next() (TileRect, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.tiles) {
		return TileRect{}, false
	}
	t := s.tiles[s.next]
	s.next++
	return t, true
}

// Remaining reports how many tiles have not yet been popped.
func (s *Splitter) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tiles) - s.next
}
