package pointindex

import "fmt"

// Stats summarises the shape of a tree.
type Stats struct {
	Nodes   int
	Buckets int
	Items   int
	// Depth is the depth of the deepest bucket; a root bucket has depth 0.
	Depth        int
	EmptyBuckets int
	// OverCapacity counts buckets at MaxDepth holding more than the nominal
	// capacity.
	OverCapacity int
}

// Stats walks the arenas and returns the tree's current shape.
func (t *Tree[ID]) Stats() Stats {
	s := Stats{
		Nodes:   t.nodes.Len(),
		Buckets: t.buckets.Len(),
	}
	for h, b := range t.buckets.All() {
		n := b.len()
		s.Items += n
		if n == 0 {
			s.EmptyBuckets++
		}
		if n > t.cfg.BucketCapacity {
			s.OverCapacity++
		}
		s.Depth = max(s.Depth, t.depthOf(h))
	}
	return s
}

// Verify walks the whole tree and checks its structural invariants: every
// arena slot is reachable exactly once from the root, parent links agree with
// child links, buckets respect capacity below MaxDepth, and every indexed
// point descends to the bucket holding it. It returns an error wrapping
// ErrCorrupt describing the first violation.
//
// Verify is O(n log n) and meant for tests and debug builds.
func (t *Tree[ID]) Verify() error {
	v := verifier[ID]{
		tree:        t,
		seenNodes:   make([]bool, t.nodes.Len()),
		seenBuckets: make([]bool, t.buckets.Len()),
	}
	if err := v.walk(t.root, InvalidHandle, t.bounds, 0); err != nil {
		return err
	}
	for i, seen := range v.seenNodes {
		if !seen {
			return fmt.Errorf("%w: node %d unreachable", ErrCorrupt, handleAt(i))
		}
	}
	for i, seen := range v.seenBuckets {
		if !seen {
			return fmt.Errorf("%w: bucket %d unreachable", ErrCorrupt, handleAt(i))
		}
	}
	if v.items != len(t.where) {
		return fmt.Errorf("%w: %d items in buckets, %d ids recorded", ErrCorrupt, v.items, len(t.where))
	}
	return nil
}

type verifier[ID comparable] struct {
	tree        *Tree[ID]
	seenNodes   []bool
	seenBuckets []bool
	items       int
}

func (v *verifier[ID]) walk(c child, parent Handle, bounds AABB, depth int) error {
	t := v.tree
	if !c.isNode() {
		return v.leaf(c.handle, parent, depth)
	}
	n, ok := t.nodes.Get(c.handle)
	if !ok {
		return fmt.Errorf("%w: dangling node %d", ErrCorrupt, c.handle)
	}
	if v.seenNodes[c.handle.index()] {
		return fmt.Errorf("%w: node %d reachable twice", ErrCorrupt, c.handle)
	}
	v.seenNodes[c.handle.index()] = true
	if n.parent != parent {
		return fmt.Errorf("%w: node %d has parent %d, linked from %d", ErrCorrupt, c.handle, n.parent, parent)
	}
	low, high := bounds.halves(Axis(depth))
	if err := v.walk(n.children[Low], c.handle, low, depth+1); err != nil {
		return err
	}
	return v.walk(n.children[High], c.handle, high, depth+1)
}

func (v *verifier[ID]) leaf(h, parent Handle, depth int) error {
	t := v.tree
	b, ok := t.buckets.Get(h)
	if !ok {
		return fmt.Errorf("%w: dangling bucket %d", ErrCorrupt, h)
	}
	if v.seenBuckets[h.index()] {
		return fmt.Errorf("%w: bucket %d reachable twice", ErrCorrupt, h)
	}
	v.seenBuckets[h.index()] = true
	if b.parent != parent {
		return fmt.Errorf("%w: bucket %d has parent %d, linked from %d", ErrCorrupt, h, b.parent, parent)
	}
	if b.len() > t.cfg.BucketCapacity && depth < t.cfg.MaxDepth {
		return fmt.Errorf("%w: bucket %d at depth %d holds %d > %d", ErrCorrupt, h, depth, b.len(), t.cfg.BucketCapacity)
	}
	for _, e := range b.items {
		l, err := t.descend(e.point)
		if err != nil {
			return err
		}
		if l.bucket != h {
			return fmt.Errorf("%w: %v at (%g, %g) held by bucket %d but descends to %d",
				ErrCorrupt, e.id, e.point.X, e.point.Y, h, l.bucket)
		}
		if p, ok := t.where[e.id]; !ok || p != e.point {
			return fmt.Errorf("%w: %v recorded at %v, stored at %v", ErrCorrupt, e.id, p, e.point)
		}
	}
	v.items += b.len()
	return nil
}
