// Package pointindex is a dynamic 2D point index for per-tick spatial
// queries. Points live in capacity-bounded leaf buckets of a binary tree whose
// levels alternate between splitting on X and on Y. Nodes and buckets are
// stored in two dense handle arenas rather than linked by pointers; removals
// compact the arenas and the tree repairs the one reference each move breaks.
//
// A Tree is single-writer: all mutations for a tick run sequentially before
// queries are issued. Queries are read-only and may run concurrently as long
// as no mutation is interleaved.
package pointindex

import (
	"fmt"

	"go.uber.org/zap"
)

// Tree indexes host objects by point. ID is the host's opaque, copyable
// object identifier.
type Tree[ID comparable] struct {
	log     *zap.Logger
	events  *EventBus
	nodes   *Arena[node]
	buckets *Arena[bucket[ID]]
	where   map[ID]Point
	cfg     Config
	bounds  AABB
	half    Point
	root    child
}

// leaf is the result of a descent: the bucket owning a point and how it
// hangs off its parent.
type leaf struct {
	bounds AABB
	depth  int
	bucket Handle
	// parent is InvalidHandle when the bucket is the root.
	parent Handle
	slot   Half
}

// New creates an empty tree over the domain [-halfSize, halfSize].
//
// Parameters:
//   - halfSize: positive, finite half extents of the indexed domain.
//   - opts: tuning applied on top of DefaultConfig.
//
// Returns:
//   - The tree, or an error wrapping ErrInvalidConfig.
func New[ID comparable](halfSize Point, opts ...Option) (*Tree[ID], error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !halfSize.isFinite() || halfSize.X <= 0 || halfSize.Y <= 0 {
		return nil, fmt.Errorf("%w: half size (%g, %g)", ErrInvalidConfig, halfSize.X, halfSize.Y)
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	t := &Tree[ID]{
		cfg:     cfg,
		log:     log.Named("pointindex"),
		events:  cfg.Events,
		half:    halfSize,
		bounds:  domain(halfSize),
		nodes:   NewArena[node](cfg.InitialCapacity, cfg.ArenaLimit),
		buckets: NewArena[bucket[ID]](cfg.InitialCapacity, cfg.ArenaLimit),
		where:   make(map[ID]Point),
	}
	if err := t.reset(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree[ID]) reset() error {
	t.nodes.Reset()
	t.buckets.Reset()
	clear(t.where)
	h, err := t.buckets.Push(newBucket[ID](InvalidHandle, t.cfg.BucketCapacity))
	if err != nil {
		return err
	}
	t.root = bucketChild(h)
	return nil
}

// Clear removes every entry and collapses the tree to a single empty bucket.
// Arena storage is retained.
func (t *Tree[ID]) Clear() {
	// The bucket arena was just emptied, so the root push cannot fail.
	_ = t.reset()
}

// HalfSize returns the half extents of the indexed domain.
func (t *Tree[ID]) HalfSize() Point {
	return t.half
}

// Bounds returns the indexed domain.
func (t *Tree[ID]) Bounds() AABB {
	return t.bounds
}

// Len returns the number of indexed objects.
func (t *Tree[ID]) Len() int {
	return len(t.where)
}

// Contains reports whether id is indexed.
func (t *Tree[ID]) Contains(id ID) bool {
	_, ok := t.where[id]
	return ok
}

// Position returns the point id was indexed at.
func (t *Tree[ID]) Position(id ID) (Point, bool) {
	p, ok := t.where[id]
	return p, ok
}

func (t *Tree[ID]) inBounds(p Point) bool {
	return p.isFinite() && t.bounds.Contains(p)
}

func (t *Tree[ID]) outOfBounds(p Point) error {
	return fmt.Errorf("%w: (%g, %g) outside ±(%g, %g)", ErrOutOfBounds, p.X, p.Y, t.half.X, t.half.Y)
}

// Insert indexes id at p. When the owning bucket is full it is split, possibly
// over several levels for clustered points; a rejected or exhausted insert
// leaves the tree unchanged.
//
// Returns an error wrapping ErrOutOfBounds, ErrDuplicateID, ErrExhausted or
// ErrSplitDepthExceeded.
func (t *Tree[ID]) Insert(id ID, p Point) error {
	if !t.inBounds(p) {
		return t.outOfBounds(p)
	}
	if _, ok := t.where[id]; ok {
		return fmt.Errorf("%w: %v", ErrDuplicateID, id)
	}
	if err := t.insert(id, p); err != nil {
		return err
	}
	t.where[id] = p
	return nil
}

func (t *Tree[ID]) insert(id ID, p Point) error {
	l, err := t.descend(p)
	if err != nil {
		return err
	}
	b, ok := t.buckets.Get(l.bucket)
	if !ok {
		return fmt.Errorf("%w: descent ended at missing bucket %d", ErrCorrupt, l.bucket)
	}
	if !b.isFull(t.cfg.BucketCapacity) {
		return b.insert(id, p, t.cfg.BucketCapacity)
	}
	if l.depth >= t.cfg.MaxDepth {
		return t.overflow(l, b, id, p)
	}
	return t.split(l, entry[ID]{id: id, point: p})
}

// overflow handles a full leaf that may not split any further.
func (t *Tree[ID]) overflow(l leaf, b *bucket[ID], id ID, p Point) error {
	if t.cfg.Overflow == OverflowReject {
		Publish(t.events, OverflowEvent{Bucket: l.bucket, Depth: l.depth, Items: b.len() + 1, Rejected: true})
		return fmt.Errorf("%w: bucket %d at depth %d holds %d", ErrSplitDepthExceeded, l.bucket, l.depth, b.len())
	}
	if b.len() == t.cfg.BucketCapacity {
		t.log.Warn("bucket over capacity at max depth",
			zap.Uint16("bucket", uint16(l.bucket)),
			zap.Int("depth", l.depth),
			zap.Float32("x", p.X),
			zap.Float32("y", p.Y))
	}
	b.force(id, p)
	Publish(t.events, OverflowEvent{Bucket: l.bucket, Depth: l.depth, Items: b.len()})
	return nil
}

// descend walks from the root to the bucket that must hold p. It never
// mutates the tree.
func (t *Tree[ID]) descend(p Point) (leaf, error) {
	var l leaf
	path := newPathIn(t.bounds, p)
	c := t.root
	for c.isNode() {
		n, ok := t.nodes.Get(c.handle)
		if !ok {
			return l, fmt.Errorf("%w: dangling node %d at depth %d", ErrCorrupt, c.handle, path.Depth())
		}
		if path.Depth() > t.nodes.Len() {
			return l, fmt.Errorf("%w: node cycle through %d", ErrCorrupt, c.handle)
		}
		l.parent = c.handle
		l.slot = path.Step()
		c = n.children[l.slot]
	}
	l.bucket = c.handle
	l.depth = path.Depth()
	l.bounds = path.Bounds()
	return l, nil
}

// link points the given slot of parent (or the root, for InvalidHandle) at c.
func (t *Tree[ID]) link(parent Handle, slot Half, c child) error {
	if parent == InvalidHandle {
		t.root = c
		return nil
	}
	n, ok := t.nodes.Get(parent)
	if !ok {
		return fmt.Errorf("%w: link into missing node %d", ErrCorrupt, parent)
	}
	n.children[slot] = c
	return nil
}

// relocateBucket repairs the single reference to a bucket that swap-remove
// moved from r.Old to r.New.
func (t *Tree[ID]) relocateBucket(r Relocation) error {
	if !r.Moved() {
		return nil
	}
	b, ok := t.buckets.Get(r.New)
	if !ok {
		return fmt.Errorf("%w: relocated bucket %d missing", ErrCorrupt, r.New)
	}
	old, moved := bucketChild(r.Old), bucketChild(r.New)
	if b.parent == InvalidHandle {
		if t.root != old {
			return fmt.Errorf("%w: parentless bucket %d is not the root", ErrCorrupt, r.Old)
		}
		t.root = moved
	} else {
		n, ok := t.nodes.Get(b.parent)
		if !ok || !n.replace(old, moved) {
			return fmt.Errorf("%w: node %d has no link to bucket %d", ErrCorrupt, b.parent, r.Old)
		}
	}
	Publish(t.events, RelocateEvent{Relocation: r})
	return nil
}

// relocateNode repairs the parent link and both children's back-references
// of a node that swap-remove moved from r.Old to r.New.
func (t *Tree[ID]) relocateNode(r Relocation) error {
	if !r.Moved() {
		return nil
	}
	n, ok := t.nodes.Get(r.New)
	if !ok {
		return fmt.Errorf("%w: relocated node %d missing", ErrCorrupt, r.New)
	}
	old, moved := nodeChild(r.Old), nodeChild(r.New)
	if n.parent == InvalidHandle {
		if t.root != old {
			return fmt.Errorf("%w: parentless node %d is not the root", ErrCorrupt, r.Old)
		}
		t.root = moved
	} else {
		p, ok := t.nodes.Get(n.parent)
		if !ok || !p.replace(old, moved) {
			return fmt.Errorf("%w: node %d has no link to node %d", ErrCorrupt, n.parent, r.Old)
		}
	}
	for _, c := range n.children {
		if c.isNode() {
			cn, ok := t.nodes.Get(c.handle)
			if !ok {
				return fmt.Errorf("%w: node %d has missing child node %d", ErrCorrupt, r.New, c.handle)
			}
			cn.parent = r.New
			continue
		}
		cb, ok := t.buckets.Get(c.handle)
		if !ok {
			return fmt.Errorf("%w: node %d has missing child bucket %d", ErrCorrupt, r.New, c.handle)
		}
		cb.parent = r.New
	}
	Publish(t.events, RelocateEvent{Relocation: r, Nodes: true})
	return nil
}

// depthOf counts the nodes above a bucket.
func (t *Tree[ID]) depthOf(h Handle) int {
	b, ok := t.buckets.Get(h)
	if !ok {
		return 0
	}
	depth := 0
	for p := b.parent; p != InvalidHandle && depth <= t.nodes.Len(); depth++ {
		n, ok := t.nodes.Get(p)
		if !ok {
			break
		}
		p = n.parent
	}
	return depth
}
