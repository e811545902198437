package photon

import (
	"math"
	"sort"
)

// pointNode is one entry of the balanced, level-order point kd-tree (§9
// "array of indices over pointer trees" applies here too: children of node i
// are at 2i+1 and 2i+2, exactly like a binary heap).
type pointNode struct {
	photon Photon
	axis   int8
}

// Tree is the balanced point kd-tree of §4.6, built once per render pass
// over the photons deposited that pass.
type Tree struct {
	nodes []pointNode
}

// Build constructs a balanced tree by recursively splitting on the
// longest-extent axis at the median, matching the classic photon-mapping
// balanced-kd-tree construction (Jensen). The tree is stored level-order so
// traversal needs no pointers.
func Build(photons []Photon) *Tree {
	t := &Tree{nodes: make([]pointNode, len(photons))}
	if len(photons) == 0 {
		return t
	}
	work := make([]Photon, len(photons))
	copy(work, photons)
	t.build(work, 0)
	return t
}

func (t *Tree) build(photons []Photon, nodeIdx int) {
	if len(photons) == 0 || nodeIdx >= len(t.nodes) {
		return
	}
	if len(photons) == 1 {
		t.nodes[nodeIdx] = pointNode{photon: photons[0], axis: int8(longestAxis(photons))}
		return
	}

	axis := longestAxis(photons)
	sort.Slice(photons, func(i, j int) bool {
		return component(photons[i].Position, axis) < component(photons[j].Position, axis)
	})

	mid := medianIndex(len(photons))
	t.nodes[nodeIdx] = pointNode{photon: photons[mid], axis: int8(axis)}

	t.build(photons[:mid], 2*nodeIdx+1)
	t.build(photons[mid+1:], 2*nodeIdx+2)
}

// medianIndex picks the split that keeps the tree balanced so a level-order
// array layout has no gaps: it returns the left subtree size of a complete
// binary tree of n nodes (its share of the full levels plus as many
// bottom-level nodes as fit on the left).
func medianIndex(n int) int {
	if n <= 1 {
		return 0
	}
	h := int(math.Floor(math.Log2(float64(n))))
	half := 1 << (h - 1)
	bottom := n - ((1 << h) - 1)
	if bottom > half {
		bottom = half
	}
	return half - 1 + bottom
}

func longestAxis(photons []Photon) int {
	min, max := photons[0].Position, photons[0].Position
	for _, p := range photons[1:] {
		min = Vec3{X: math.Min(min.X, p.Position.X), Y: math.Min(min.Y, p.Position.Y), Z: math.Min(min.Z, p.Position.Z)}
		max = Vec3{X: math.Max(max.X, p.Position.X), Y: math.Max(max.Y, p.Position.Y), Z: math.Max(max.Z, p.Position.Z)}
	}
	size := max.Subtract(min)
	if size.X >= size.Y && size.X >= size.Z {
		return 0
	}
	if size.Y >= size.Z {
		return 1
	}
	return 2
}

func component(v Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

type heapEntry struct {
	photon   Photon
	distSq   float64
}

// maxHeap is a bounded max-heap on distSq, used so KNearest can evict the
// farthest candidate in O(log k) as closer photons are discovered (§4.6
// "k-nearest via a bounded max-heap").
type maxHeap struct {
	entries []heapEntry
}

func (h *maxHeap) Len() int { return len(h.entries) }

func (h *maxHeap) push(e heapEntry) {
	h.entries = append(h.entries, e)
	i := len(h.entries) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if h.entries[parent].distSq >= h.entries[i].distSq {
			break
		}
		h.entries[parent], h.entries[i] = h.entries[i], h.entries[parent]
		i = parent
	}
}

func (h *maxHeap) replaceMax(e heapEntry) {
	h.entries[0] = e
	i := 0
	n := len(h.entries)
	for {
		l, r := 2*i+1, 2*i+2
		largest := i
		if l < n && h.entries[l].distSq > h.entries[largest].distSq {
			largest = l
		}
		if r < n && h.entries[r].distSq > h.entries[largest].distSq {
			largest = r
		}
		if largest == i {
			break
		}
		h.entries[i], h.entries[largest] = h.entries[largest], h.entries[i]
		i = largest
	}
}

func (h *maxHeap) max() float64 {
	if len(h.entries) == 0 {
		return math.Inf(1)
	}
	return h.entries[0].distSq
}

// KNearest returns up to k photons nearest to p, and the squared radius of
// the farthest photon returned (the estimator's lookup radius, §4.6 point
// 3). maxRadius bounds the search so a sparse region does not pull in
// photons from across the whole scene.
func (t *Tree) KNearest(p Vec3, k int, maxRadius float64) ([]Photon, float64) {
	if len(t.nodes) == 0 || k <= 0 {
		return nil, 0
	}

	heap := &maxHeap{}
	maxRadiusSq := maxRadius * maxRadius

	var walk func(idx int)
	walk = func(idx int) {
		if idx >= len(t.nodes) {
			return
		}
		n := t.nodes[idx]
		d := n.photon.Position.Subtract(p)
		distSq := d.LengthSquared()

		bound := maxRadiusSq
		if heap.Len() == k {
			bound = math.Min(bound, heap.max())
		}

		if distSq <= bound {
			if heap.Len() < k {
				heap.push(heapEntry{photon: n.photon, distSq: distSq})
			} else if distSq < heap.max() {
				heap.replaceMax(heapEntry{photon: n.photon, distSq: distSq})
			}
		}

		axisDist := component(p, int(n.axis)) - component(n.photon.Position, int(n.axis))
		near, far := 2*idx+1, 2*idx+2
		if axisDist > 0 {
			near, far = far, near
		}
		walk(near)

		farBound := maxRadiusSq
		if heap.Len() == k {
			farBound = math.Min(farBound, heap.max())
		}
		if axisDist*axisDist <= farBound {
			walk(far)
		}
	}
	walk(0)

	out := make([]Photon, len(heap.entries))
	radiusSq := 0.0
	for i, e := range heap.entries {
		out[i] = e.photon
		if e.distSq > radiusSq {
			radiusSq = e.distSq
		}
	}
	return out, radiusSq
}
