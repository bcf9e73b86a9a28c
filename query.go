package pointindex

import "iter"

// Locate returns the handle of the bucket that owns p. The handle is valid
// until the next mutation and can be passed to RemoveAt.
func (t *Tree[ID]) Locate(p Point) (Handle, bool) {
	if !t.inBounds(p) {
		return InvalidHandle, false
	}
	l, err := t.descend(p)
	if err != nil {
		return InvalidHandle, false
	}
	return l.bucket, true
}

// QueryPoint returns an object indexed exactly at p. When several objects
// share p, which one is returned is unspecified.
func (t *Tree[ID]) QueryPoint(p Point) (ID, bool) {
	for id := range t.QueryPointAll(p) {
		return id, true
	}
	var zero ID
	return zero, false
}

// QueryPointAll yields every object indexed exactly at p.
func (t *Tree[ID]) QueryPointAll(p Point) iter.Seq[ID] {
	return func(yield func(ID) bool) {
		h, ok := t.Locate(p)
		if !ok {
			return
		}
		b, ok := t.buckets.Get(h)
		if !ok {
			return
		}
		for _, e := range b.items {
			if e.point == p && !yield(e.id) {
				return
			}
		}
	}
}

// QueryRegion yields every object whose point lies in box, edges included,
// exactly once and in no particular order. The sequence is lazy and can be
// ranged over repeatedly; each pass reflects the tree at that time.
func (t *Tree[ID]) QueryRegion(box AABB) iter.Seq[ID] {
	return func(yield func(ID) bool) {
		q := NewRegionQuery(t, box)
		for q.Next() {
			if !yield(q.ID()) {
				return
			}
		}
	}
}

// QueryRegionPoints is QueryRegion yielding each object's indexed point too.
func (t *Tree[ID]) QueryRegionPoints(box AABB) iter.Seq2[ID, Point] {
	return func(yield func(ID, Point) bool) {
		q := NewRegionQuery(t, box)
		for q.Next() {
			if !yield(q.ID(), q.Point()) {
				return
			}
		}
	}
}

// frame is a pending subtree of a region query.
type frame struct {
	bounds AABB
	depth  int
	c      child
	// inside is set when bounds lies entirely within the query box, so leaf
	// items need no per-point test.
	inside bool
}

// RegionQuery is a reusable cursor over the objects inside a box. It keeps its
// traversal stack between runs, so a query issued every tick does not
// allocate once warmed up.
//
// Example:
//
//	q := pointindex.NewRegionQuery(tree, pointindex.Around(pos, 5, 5))
//	for q.Next() {
//	    // ... use q.ID()
//	}
//
// The tree must not be mutated while a query is in progress.
type RegionQuery[ID comparable] struct {
	tree   *Tree[ID]
	stack  []frame
	items  []entry[ID]
	cur    entry[ID]
	box    AABB
	idx    int
	inside bool
}

// NewRegionQuery creates a cursor over box, ready for Next.
func NewRegionQuery[ID comparable](t *Tree[ID], box AABB) *RegionQuery[ID] {
	q := &RegionQuery[ID]{
		tree:  t,
		box:   box,
		stack: make([]frame, 0, 16),
	}
	q.Reset()
	return q
}

// Reset rewinds the cursor to the start of the query.
func (q *RegionQuery[ID]) Reset() {
	q.stack = q.stack[:0]
	q.items = nil
	q.idx = -1
	t := q.tree
	if t.bounds.Intersects(q.box) {
		q.stack = append(q.stack, frame{
			c:      t.root,
			bounds: t.bounds,
			inside: q.box.ContainsBox(t.bounds),
		})
	}
}

// SetBox changes the query region and rewinds.
func (q *RegionQuery[ID]) SetBox(box AABB) {
	q.box = box
	q.Reset()
}

// Next advances to the next object in the region. It returns false when the
// query is exhausted.
func (q *RegionQuery[ID]) Next() bool {
	for {
		for q.idx++; q.idx < len(q.items); q.idx++ {
			e := q.items[q.idx]
			if q.inside || q.box.Contains(e.point) {
				q.cur = e
				return true
			}
		}
		if len(q.stack) == 0 {
			q.items = nil
			return false
		}
		f := q.stack[len(q.stack)-1]
		q.stack = q.stack[:len(q.stack)-1]
		if !f.c.isNode() {
			b, ok := q.tree.buckets.Get(f.c.handle)
			if !ok {
				continue
			}
			q.items = b.items
			q.inside = f.inside
			q.idx = -1
			continue
		}
		n, ok := q.tree.nodes.Get(f.c.handle)
		if !ok {
			continue
		}
		low, high := f.bounds.halves(Axis(f.depth))
		q.push(n.children[High], high, f.depth+1, f.inside)
		q.push(n.children[Low], low, f.depth+1, f.inside)
	}
}

func (q *RegionQuery[ID]) push(c child, bounds AABB, depth int, inside bool) {
	if !inside {
		if !bounds.Intersects(q.box) {
			return
		}
		inside = q.box.ContainsBox(bounds)
	}
	q.stack = append(q.stack, frame{c: c, bounds: bounds, depth: depth, inside: inside})
}

// ID returns the current object. Only valid after Next returned true.
func (q *RegionQuery[ID]) ID() ID {
	return q.cur.id
}

// Point returns the current object's indexed point.
func (q *RegionQuery[ID]) Point() Point {
	return q.cur.point
}

// Collect appends every remaining object to dst.
func (q *RegionQuery[ID]) Collect(dst []ID) []ID {
	for q.Next() {
		dst = append(dst, q.cur.id)
	}
	return dst
}
