package integrator

import (
	"sync"

	"github.com/lumenforge/tracecore/pkg/core"
)

// irradianceCache memoizes diffuseFinalGather's final-gather estimate across
// nearby surface points, grounded on the irradiance cache YafaRay's photon
// integrator keeps alongside its photon map (see DESIGN.md / SPEC_FULL.md's
// "SUPPLEMENTED FEATURES"). Cache keys quantize world position into cubic
// cells of Opts.IrradianceCacheCellSize; a cached entry is reused only when
// the query normal agrees with the stored normal within
// Opts.IrradianceCacheNormalCos, so the cache never blurs across a corner or
// a normal-mapped discontinuity. Safe for concurrent use by the tile worker
// pool: one mutex guards the whole map, and the critical section is just a
// lookup or insert, matching the striped-mutex film's "small critical
// section" convention (§5).
type irradianceCache struct {
	cellSize  float64
	normalCos float64
	mu        sync.Mutex
	entries   map[cacheKey][]cacheEntry
}

type cacheKey struct{ x, y, z int64 }

type cacheEntry struct {
	normal core.Vec3
	value  core.Rgb
}

func newIrradianceCache(cellSize, normalCos float64) *irradianceCache {
	return &irradianceCache{cellSize: cellSize, normalCos: normalCos, entries: make(map[cacheKey][]cacheEntry)}
}

func (c *irradianceCache) key(p core.Vec3) cacheKey {
	inv := 1.0 / c.cellSize
	return cacheKey{
		x: int64(floorDiv(p.X * inv)),
		y: int64(floorDiv(p.Y * inv)),
		z: int64(floorDiv(p.Z * inv)),
	}
}

func floorDiv(v float64) float64 {
	i := float64(int64(v))
	if v < 0 && v != i {
		return i - 1
	}
	return i
}

// lookup returns a cached estimate for (p, n) if one agrees closely enough
// in normal direction, reusing whichever of the cell's entries is closest.
func (c *irradianceCache) lookup(p, n core.Vec3) (core.Rgb, bool) {
	k := c.key(p)
	c.mu.Lock()
	defer c.mu.Unlock()
	best := -2.0
	var value core.Rgb
	found := false
	for _, e := range c.entries[k] {
		cos := e.normal.Dot(n)
		if cos >= c.normalCos && cos > best {
			best = cos
			value = e.value
			found = true
		}
	}
	return value, found
}

// insert records a fresh final-gather estimate for reuse by later queries
// that land in the same cell with a close-enough normal. Each cell keeps a
// short list rather than one slot, since a cell can straddle more than one
// surface orientation (a corner, a thin wall).
func (c *irradianceCache) insert(p, n core.Vec3, value core.Rgb) {
	k := c.key(p)
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := c.entries[k]
	if len(entries) >= 8 {
		entries = entries[1:]
	}
	c.entries[k] = append(entries, cacheEntry{normal: n, value: value})
}
