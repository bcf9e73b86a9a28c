package pointindex

import (
	"fmt"

	"go.uber.org/zap"
)

// partition reorders items so the ones in the low half of b along axis a come
// first and returns how many there are.
func partition[ID comparable](items []entry[ID], b AABB, a int) int {
	k := 0
	for i := range items {
		if classify(b, a, items[i].point) == Low {
			items[i], items[k] = items[k], items[i]
			k++
		}
	}
	return k
}

// planSplit works out how many node levels are needed before items separate
// into halves that each fit a bucket. overflow is true when MaxDepth is reached
// first. items is reordered but not otherwise changed.
func (t *Tree[ID]) planSplit(items []entry[ID], bounds AABB, depth int) (levels int, overflow bool) {
	capacity := t.cfg.BucketCapacity
	for depth < t.cfg.MaxDepth {
		a := Axis(depth)
		k := partition(items, bounds, a)
		low, high := bounds.halves(a)
		levels++
		depth++
		switch {
		case k > capacity:
			items, bounds = items[:k], low
		case len(items)-k > capacity:
			items, bounds = items[k:], high
		default:
			return levels, false
		}
	}
	return levels, true
}

// split replaces the full bucket at l with a node and redistributes its items
// plus pending into fresh child buckets. Clustered items that all land in one
// half get a chain of nodes, each with an empty bucket on the other side, until
// they separate or MaxDepth is reached.
//
// Every failure mode is checked before the first mutation.
func (t *Tree[ID]) split(l leaf, pending entry[ID]) error {
	b, ok := t.buckets.Get(l.bucket)
	if !ok {
		return fmt.Errorf("%w: split of missing bucket %d", ErrCorrupt, l.bucket)
	}
	items := make([]entry[ID], 0, b.len()+1)
	items = append(items, b.items...)
	items = append(items, pending)
	total := len(items)

	levels, overflow := t.planSplit(items, l.bounds, l.depth)
	if overflow && t.cfg.Overflow == OverflowReject {
		Publish(t.events, OverflowEvent{Bucket: l.bucket, Depth: l.depth + levels, Items: total, Rejected: true})
		return fmt.Errorf("%w: %d coincident items below depth %d", ErrSplitDepthExceeded, total, t.cfg.MaxDepth)
	}
	// levels nodes are added; levels+1 buckets replace the one removed.
	if t.nodes.Free() < levels {
		return fmt.Errorf("%w: split needs %d nodes, %d free", ErrExhausted, levels, t.nodes.Free())
	}
	if t.buckets.Free() < levels {
		return fmt.Errorf("%w: split needs %d buckets, %d free", ErrExhausted, levels+1, t.buckets.Free()+1)
	}

	removed, err := t.buckets.Remove(l.bucket)
	if err != nil {
		return err
	}
	if err := t.relocateBucket(removed.Swap); err != nil {
		return err
	}

	capacity := t.cfg.BucketCapacity
	parent, slot := removed.Item.parent, l.slot
	bounds, depth := l.bounds, l.depth
	var first Handle
	for level := range levels {
		nh, err := t.nodes.Push(node{parent: parent})
		if err != nil {
			return err
		}
		if level == 0 {
			first = nh
		}
		if err := t.link(parent, slot, nodeChild(nh)); err != nil {
			return err
		}
		a := Axis(depth)
		k := partition(items, bounds, a)
		lowBounds, highBounds := bounds.halves(a)

		if level == levels-1 {
			lh, err := t.pushBucket(nh, items[:k])
			if err != nil {
				return err
			}
			hh, err := t.pushBucket(nh, items[k:])
			if err != nil {
				return err
			}
			n, _ := t.nodes.Get(nh)
			n.children = [2]child{bucketChild(lh), bucketChild(hh)}
			if overflow {
				t.log.Warn("bucket over capacity at max depth",
					zap.Int("depth", depth+1),
					zap.Int("items", max(k, len(items)-k)))
				over := lh
				if len(items)-k > k {
					over = hh
				}
				Publish(t.events, OverflowEvent{Bucket: over, Depth: depth + 1, Items: max(k, len(items)-k)})
			}
			break
		}

		// Not separated yet: everything that overflows continues down one
		// side, the other side gets an empty bucket.
		side := High
		if k > capacity {
			side = Low
		}
		empty, err := t.pushBucket(nh, nil)
		if err != nil {
			return err
		}
		n, _ := t.nodes.Get(nh)
		n.children[side^1] = bucketChild(empty)
		if side == Low {
			items, bounds = items[:k], lowBounds
		} else {
			items, bounds = items[k:], highBounds
		}
		parent, slot = nh, side
		depth++
	}

	t.log.Debug("split",
		zap.Uint16("node", uint16(first)),
		zap.Int("depth", l.depth),
		zap.Int("levels", levels),
		zap.Int("items", total))
	Publish(t.events, SplitEvent{Node: first, Depth: l.depth, Levels: levels, Items: total})
	return nil
}

func (t *Tree[ID]) pushBucket(parent Handle, items []entry[ID]) (Handle, error) {
	b := newBucket[ID](parent, max(t.cfg.BucketCapacity, len(items)))
	b.items = append(b.items, items...)
	return t.buckets.Push(b)
}
