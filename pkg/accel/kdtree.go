// Package accel implements C5: the SAH-built, array-indexed kd-tree
// acceleration structure that replaces the teacher's pointer-based BVH
// (§4.5, §9 "favor arrays of indices over pointer trees").
package accel

import (
	"math"
	"sort"

	"github.com/lumenforge/tracecore/pkg/core"
)

// Options tunes the SAH build (§4.5).
type Options struct {
	MaxDepth      int     // 0 together with MaxLeafSize 0: Build uses DefaultOptions for every field
	MaxLeafSize   int     // 0 together with MaxDepth 0: Build uses DefaultOptions for every field
	TraversalCost float64 // K_t
	IntersectCost float64 // K_i
	EmptyBonus    float64 // fraction subtracted from cost when a split empties a side
	CostRatio     float64 // a split worse than CostRatio*N_leaf falls back to a leaf
}

// DefaultOptions derives the build's tuning constants from the primitive
// count per §4.5: max_depth = ceil(7 + 1.66*log2(N)), max_leaf_size =
// max(1, ceil(log2(N) - 16)), cost_ratio 0.35, empty_bonus 0.2, plus an
// extra 0.25*(log2(N)-16) penalty folded into cost_ratio once N is large
// enough that the unpenalized formula would over-split.
func DefaultOptions(primitiveCount int) Options {
	n := math.Max(1, float64(primitiveCount))
	log2n := math.Log2(n)
	depth := int(math.Ceil(7 + 1.66*log2n))
	leafSize := int(math.Ceil(log2n - 16))
	if leafSize < 1 {
		leafSize = 1
	}
	costRatio := 0.35
	if log2n > 16 {
		costRatio += 0.25 * (log2n - 16)
	}
	return Options{
		MaxDepth:      depth,
		MaxLeafSize:   leafSize,
		TraversalCost: 1.0,
		IntersectCost: 80.0,
		EmptyBonus:    0.2,
		CostRatio:     costRatio,
	}
}

type node struct {
	bound AABB
	// interior: axis>=0, split is the split plane, left/right are indices
	// into the tree's node array. leaf: axis==-1, primStart/primCount index
	// into the tree's prim-index array.
	axis              int
	split             float64
	left, right       int32
	primStart, primCount int32
}

// AABB is a thin alias kept local so this package only names core.AABB once;
// it exists purely for readability in node's field docs.
type AABB = core.AABB

// Tree is the array-indexed kd-tree of §4.5/§9: nodes and the primitive
// index list are held in contiguous slices rather than a pointer graph.
type Tree struct {
	prims   []core.Primitive
	nodes   []node
	indices []int32
	bound   core.AABB
	opts    Options
}

type buildPrim struct {
	idx   int32
	bound core.AABB
}

// Build constructs the tree over prims using the SAH cost model of §4.5:
// cost(split) = K_t + K_i*(p_L*N_L + p_R*N_R), with an empty-bonus subsidy
// when a candidate split leaves one side with zero primitives.
func Build(prims []core.Primitive, opts Options) *Tree {
	if opts.MaxDepth == 0 && opts.MaxLeafSize == 0 {
		opts = DefaultOptions(len(prims))
	}

	t := &Tree{prims: prims, opts: opts}
	if len(prims) == 0 {
		return t
	}

	bp := make([]buildPrim, len(prims))
	worldBound := prims[0].Bound()
	for i, p := range prims {
		b := p.Bound()
		bp[i] = buildPrim{idx: int32(i), bound: b}
		worldBound = worldBound.Union(b)
	}
	t.bound = worldBound

	t.nodes = make([]node, 0, 2*len(prims))
	t.indices = make([]int32, 0, len(prims))
	t.build(bp, worldBound, 0)
	return t
}

// build recursively splits bp, appending to t.nodes/t.indices, and returns
// the index of the node it created.
func (t *Tree) build(bp []buildPrim, bound core.AABB, depth int) int32 {
	nodeIdx := int32(len(t.nodes))
	t.nodes = append(t.nodes, node{})

	if len(bp) <= t.opts.MaxLeafSize || depth >= t.opts.MaxDepth {
		t.makeLeaf(nodeIdx, bp, bound)
		return nodeIdx
	}

	axis, split, found := t.findSplit(bp, bound)
	if !found {
		t.makeLeaf(nodeIdx, bp, bound)
		return nodeIdx
	}

	var leftBP, rightBP []buildPrim
	leftBound, rightBound := splitBound(bound, axis, split)

	for _, p := range bp {
		onLeft := p.bound.Min.Component(axis) < split
		onRight := p.bound.Max.Component(axis) > split
		if !onLeft && !onRight {
			// Degenerate (zero-extent) primitive exactly on the plane: file
			// on the side its center falls.
			if p.bound.Center().Component(axis) < split {
				onLeft = true
			} else {
				onRight = true
			}
		}
		if onLeft {
			if refined, ok := t.refine(p, leftBound); ok {
				leftBP = append(leftBP, refined)
			}
		}
		if onRight {
			if refined, ok := t.refine(p, rightBound); ok {
				rightBP = append(rightBP, refined)
			}
		}
	}

	if len(leftBP) == 0 || len(rightBP) == 0 || (len(leftBP) == len(bp) && len(rightBP) == len(bp)) {
		t.makeLeaf(nodeIdx, bp, bound)
		return nodeIdx
	}

	left := t.build(leftBP, leftBound, depth+1)
	right := t.build(rightBP, rightBound, depth+1)

	t.nodes[nodeIdx] = node{bound: bound, axis: axis, split: split, left: left, right: right}
	return nodeIdx
}

// refine applies the triangle-clip refinement of §4.5 step 6: a primitive
// carried into a child is re-bounded against the child's box (Sutherland-
// Hodgman clip for triangles, plain intersection-with-the-child-box for
// everything else) so later splits see its true clipped extent rather than
// its original, possibly much larger, bound. ok is false if clipping proves
// the primitive does not actually reach this child (can happen when a
// triangle's bound straddles the plane but its geometry does not).
func (t *Tree) refine(p buildPrim, childBound core.AABB) (buildPrim, bool) {
	if clippable, ok := t.prims[p.idx].(core.Clippable); ok {
		clipped, ok := clippable.ClipToBox(childBound)
		if !ok {
			return p, false
		}
		return buildPrim{idx: p.idx, bound: clipped}, true
	}
	return buildPrim{idx: p.idx, bound: intersectBound(p.bound, childBound)}, true
}

func intersectBound(a, b core.AABB) core.AABB {
	return core.NewAABB(
		core.Vec3{X: math.Max(a.Min.X, b.Min.X), Y: math.Max(a.Min.Y, b.Min.Y), Z: math.Max(a.Min.Z, b.Min.Z)},
		core.Vec3{X: math.Min(a.Max.X, b.Max.X), Y: math.Min(a.Max.Y, b.Max.Y), Z: math.Min(a.Max.Z, b.Max.Z)},
	)
}

func (t *Tree) makeLeaf(nodeIdx int32, bp []buildPrim, bound core.AABB) {
	start := int32(len(t.indices))
	for _, p := range bp {
		t.indices = append(t.indices, p.idx)
	}
	t.nodes[nodeIdx] = node{bound: bound, axis: -1, primStart: start, primCount: int32(len(bp))}
}

// findSplit sweeps candidate planes at primitive bound min/max per axis
// (§4.5 "evaluate SAH cost at primitive bound endpoints") and returns the
// lowest-cost plane, or found=false if no split beats the leaf cost.
func (t *Tree) findSplit(bp []buildPrim, bound core.AABB) (axis int, split float64, found bool) {
	n := len(bp)
	leafThreshold := t.opts.CostRatio * float64(n)
	bestCost := math.Inf(1)
	bestAxis := -1
	var bestSplit float64

	for axis = 0; axis < 3; axis++ {
		lo := bound.Min.Component(axis)
		hi := bound.Max.Component(axis)
		if hi-lo < 1e-12 {
			continue
		}

		type edge struct {
			pos   float64
			start bool
		}
		edges := make([]edge, 0, 2*n)
		for _, p := range bp {
			edges = append(edges, edge{p.bound.Min.Component(axis), true})
			edges = append(edges, edge{p.bound.Max.Component(axis), false})
		}
		sort.Slice(edges, func(i, j int) bool {
			if edges[i].pos == edges[j].pos {
				return edges[i].start && !edges[j].start
			}
			return edges[i].pos < edges[j].pos
		})

		nLeft, nRight := 0, n
		invArea := 1.0 / math.Max(bound.SurfaceArea(), 1e-12)

		for i := 0; i < len(edges); {
			pos := edges[i].pos
			var starts, ends int
			for i < len(edges) && edges[i].pos == pos {
				if edges[i].start {
					starts++
				} else {
					ends++
				}
				i++
			}
			nRight -= ends

			if pos > lo && pos < hi {
				leftBound, rightBound := splitBound(bound, axis, pos)
				pL := leftBound.SurfaceArea() * invArea
				pR := rightBound.SurfaceArea() * invArea
				bonus := 0.0
				if nLeft == 0 || nRight == 0 {
					bonus = t.opts.EmptyBonus
				}
				cost := t.opts.TraversalCost + t.opts.IntersectCost*(pL*float64(nLeft)+pR*float64(nRight))*(1-bonus)
				if cost < bestCost {
					bestCost = cost
					bestAxis = axis
					bestSplit = pos
				}
			}

			nLeft += starts
		}
	}

	if bestAxis == -1 || bestCost > leafThreshold {
		return 0, 0, false
	}
	return bestAxis, bestSplit, true
}

func splitBound(b core.AABB, axis int, split float64) (core.AABB, core.AABB) {
	left, right := b, b
	switch axis {
	case 0:
		left.Max.X, right.Min.X = split, split
	case 1:
		left.Max.Y, right.Min.Y = split, split
	default:
		left.Max.Z, right.Min.Z = split, split
	}
	return left, right
}

// WorldBound returns the tree's overall bound.
func (t *Tree) WorldBound() core.AABB { return t.bound }

type stackEntry struct {
	node  int32
	tMin  float64
	tMax  float64
}

// Intersect finds the closest-hit primitive along ray, using a fixed-depth
// (64-entry) explicit stack rather than recursion (§4.5 "stack-based
// traversal").
func (t *Tree) Intersect(ray core.Ray) (core.Hit, bool) {
	if len(t.nodes) == 0 {
		return core.Hit{}, false
	}

	tMin, tMax := ray.TMin, ray.TMax
	if !t.bound.Hit(ray, tMin, tMax) {
		return core.Hit{}, false
	}

	var stack [64]stackEntry
	sp := 0
	stack[sp] = stackEntry{node: 0, tMin: tMin, tMax: tMax}
	sp++

	var best core.Hit
	found := false
	closest := tMax

	for sp > 0 {
		sp--
		entry := stack[sp]
		if entry.tMin > closest {
			continue
		}
		n := t.nodes[entry.node]

		if n.axis == -1 {
			for i := n.primStart; i < n.primStart+n.primCount; i++ {
				prim := t.prims[t.indices[i]]
				r := ray.WithBounds(ray.TMin, closest)
				if hit, ok := prim.Intersect(r); ok && hit.T < closest {
					closest = hit.T
					best = hit
					found = true
				}
			}
			continue
		}

		var originAxis, dirAxis float64
		switch n.axis {
		case 0:
			originAxis, dirAxis = ray.Origin.X, ray.Direction.X
		case 1:
			originAxis, dirAxis = ray.Origin.Y, ray.Direction.Y
		default:
			originAxis, dirAxis = ray.Origin.Z, ray.Direction.Z
		}

		near, far := n.left, n.right
		if originAxis > n.split || (originAxis == n.split && dirAxis < 0) {
			near, far = far, near
		}

		if math.Abs(dirAxis) < 1e-12 {
			if originAxis <= n.split {
				stack[sp] = stackEntry{node: n.left, tMin: entry.tMin, tMax: entry.tMax}
				sp++
			} else {
				stack[sp] = stackEntry{node: n.right, tMin: entry.tMin, tMax: entry.tMax}
				sp++
			}
			continue
		}

		tSplit := (n.split - originAxis) / dirAxis

		if tSplit > entry.tMax || tSplit < 0 {
			stack[sp] = stackEntry{node: near, tMin: entry.tMin, tMax: entry.tMax}
			sp++
		} else if tSplit < entry.tMin {
			stack[sp] = stackEntry{node: far, tMin: entry.tMin, tMax: entry.tMax}
			sp++
		} else {
			if sp < len(stack) {
				stack[sp] = stackEntry{node: far, tMin: tSplit, tMax: entry.tMax}
				sp++
			}
			if sp < len(stack) {
				stack[sp] = stackEntry{node: near, tMin: entry.tMin, tMax: tSplit}
				sp++
			}
		}
	}

	return best, found
}

// IntersectAny implements shadow-ray occlusion testing. Opaque primitives
// short-circuit immediately; primitives whose material carries LobeTransparent
// accumulate a filter color instead of blocking, per the transparent-shadow
// supplement (§ SUPPLEMENTED FEATURES).
func (t *Tree) IntersectAny(ray core.Ray, tMax float64) (bool, core.Rgb) {
	if len(t.nodes) == 0 {
		return false, core.Rgb{X: 1, Y: 1, Z: 1}
	}

	if !t.bound.Hit(ray, ray.TMin, tMax) {
		return false, core.Rgb{X: 1, Y: 1, Z: 1}
	}

	filter := core.Rgb{X: 1, Y: 1, Z: 1}
	var stack [64]stackEntry
	sp := 0
	stack[sp] = stackEntry{node: 0, tMin: ray.TMin, tMax: tMax}
	sp++

	for sp > 0 {
		sp--
		entry := stack[sp]
		n := t.nodes[entry.node]

		if n.axis == -1 {
			for i := n.primStart; i < n.primStart+n.primCount; i++ {
				prim := t.prims[t.indices[i]]
				r := ray.WithBounds(ray.TMin, tMax)
				hit, ok := prim.Intersect(r)
				if !ok {
					continue
				}
				lobe := hit.Material.Capabilities(hit.SurfacePoint)
				if lobe.Has(core.LobeTransparent) {
					if em, ok := hit.Material.(interface {
						FilterColor(core.SurfacePoint) core.Rgb
					}); ok {
						filter = filter.MultiplyVec(em.FilterColor(hit.SurfacePoint))
						continue
					}
				}
				return true, core.Rgb{}
			}
			continue
		}

		var originAxis, dirAxis float64
		switch n.axis {
		case 0:
			originAxis, dirAxis = ray.Origin.X, ray.Direction.X
		case 1:
			originAxis, dirAxis = ray.Origin.Y, ray.Direction.Y
		default:
			originAxis, dirAxis = ray.Origin.Z, ray.Direction.Z
		}

		if math.Abs(dirAxis) < 1e-12 {
			if originAxis <= n.split {
				stack[sp] = stackEntry{node: n.left, tMin: entry.tMin, tMax: entry.tMax}
			} else {
				stack[sp] = stackEntry{node: n.right, tMin: entry.tMin, tMax: entry.tMax}
			}
			sp++
			continue
		}

		stack[sp] = stackEntry{node: n.left, tMin: entry.tMin, tMax: entry.tMax}
		sp++
		if sp < len(stack) {
			stack[sp] = stackEntry{node: n.right, tMin: entry.tMin, tMax: entry.tMax}
			sp++
		}
	}

	return false, filter
}
