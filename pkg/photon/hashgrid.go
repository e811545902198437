package photon

import "math"

// HashGrid is the C7 spatial-hash accelerator used "when the application
// reports a very large photon count and the radius is small" (§4.7), in
// place of the point kd-tree's O(log n) descent.
type HashGrid struct {
	cellSize float64
	buckets  map[int64][]Photon
	ordered  []int64 // bucket keys in insertion order, for deterministic iteration
}

// NewHashGrid divides the scene bound into cubic cells of the given size.
func NewHashGrid(cellSize float64) *HashGrid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &HashGrid{cellSize: cellSize, buckets: make(map[int64][]Photon)}
}

func (g *HashGrid) cellCoord(p Vec3) (int64, int64, int64) {
	return int64(math.Floor(p.X / g.cellSize)),
		int64(math.Floor(p.Y / g.cellSize)),
		int64(math.Floor(p.Z / g.cellSize))
}

// hashMix combines the three cell coordinates via a mix of three large odd
// primes (§4.7), folded into a single bucket key.
func hashMix(x, y, z int64) int64 {
	const p1 = int64(73856093)
	const p2 = int64(19349663)
	const p3 = int64(83492791)
	h := x*p1 ^ y*p2 ^ z*p3
	if h < 0 {
		h = -h
	}
	return h
}

// PushPhoton appends a photon to its cell's bucket (§4.7 "pushPhoton(p)").
func (g *HashGrid) PushPhoton(ph Photon) {
	cx, cy, cz := g.cellCoord(ph.Position)
	key := hashMix(cx, cy, cz)
	if _, ok := g.buckets[key]; !ok {
		g.ordered = append(g.ordered, key)
	}
	g.buckets[key] = append(g.buckets[key], ph)
}

// UpdateGrid is a no-op placeholder for the bucket-list rebuild step of §4.7
// ("rebuilds bucket lists without reallocating the outer array"); this
// implementation's buckets are already complete after every PushPhoton, so
// there is nothing further to compact.
func (g *HashGrid) UpdateGrid() {}

// Gather scans only the cells within a ±ceil(r/cellSize) neighborhood of p's
// cell (§4.7) and returns up to k photons within radius r (fewer than k if
// the neighborhood is sparse).
func (g *HashGrid) Gather(p Vec3, k int, r float64) []Photon {
	if k <= 0 || r <= 0 {
		return nil
	}
	rSq := r * r
	reach := int64(math.Ceil(r / g.cellSize))
	cx, cy, cz := g.cellCoord(p)

	type candidate struct {
		photon Photon
		distSq float64
	}
	var candidates []candidate

	for dx := -reach; dx <= reach; dx++ {
		for dy := -reach; dy <= reach; dy++ {
			for dz := -reach; dz <= reach; dz++ {
				key := hashMix(cx+dx, cy+dy, cz+dz)
				bucket, ok := g.buckets[key]
				if !ok {
					continue
				}
				for _, ph := range bucket {
					d := ph.Position.Subtract(p)
					distSq := d.LengthSquared()
					if distSq <= rSq {
						candidates = append(candidates, candidate{photon: ph, distSq: distSq})
					}
				}
			}
		}
	}

	if len(candidates) > k {
		// Partial selection sort for the k closest; grids are used precisely
		// when photon density is high enough that candidates can exceed k
		// many times over, so a full sort would be wasted work.
		for i := 0; i < k; i++ {
			minIdx := i
			for j := i + 1; j < len(candidates); j++ {
				if candidates[j].distSq < candidates[minIdx].distSq {
					minIdx = j
				}
			}
			candidates[i], candidates[minIdx] = candidates[minIdx], candidates[i]
		}
		candidates = candidates[:k]
	}

	out := make([]Photon, len(candidates))
	for i, c := range candidates {
		out[i] = c.photon
	}
	return out
}
