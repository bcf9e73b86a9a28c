package pointindex

import (
	"fmt"

	"go.uber.org/zap"
)

// Remove drops id from the index. It reports false when id is not indexed.
func (t *Tree[ID]) Remove(id ID) bool {
	p, ok := t.where[id]
	if !ok {
		return false
	}
	return t.RemoveNear(p, id)
}

// Delete is Remove for callers that want an error. It wraps ErrNotFound when
// id is not indexed.
func (t *Tree[ID]) Delete(id ID) error {
	if !t.Remove(id) {
		return fmt.Errorf("%w: %v", ErrNotFound, id)
	}
	return nil
}

// RemoveNear drops id by re-descending from the root with its last-known
// point. It reports false if the bucket owning p does not hold id.
func (t *Tree[ID]) RemoveNear(p Point, id ID) bool {
	if !t.inBounds(p) {
		return false
	}
	l, err := t.descend(p)
	if err != nil {
		t.log.Error("remove descent failed", zap.Error(err))
		return false
	}
	return t.RemoveAt(l.bucket, id)
}

// RemoveAt drops id from the bucket named by h, as returned by Locate. The
// handle is only good until the next mutation; a stale one reports false.
func (t *Tree[ID]) RemoveAt(h Handle, id ID) bool {
	b, ok := t.buckets.Get(h)
	if !ok || !b.remove(id) {
		return false
	}
	delete(t.where, id)
	if t.cfg.Shrink {
		if err := t.shrink(h); err != nil {
			t.log.Error("shrink failed", zap.Uint16("bucket", uint16(h)), zap.Error(err))
		}
	}
	return true
}

// Move re-indexes id at p. On failure the entry stays at its old point.
func (t *Tree[ID]) Move(id ID, p Point) error {
	old, ok := t.where[id]
	if !ok {
		return fmt.Errorf("%w: %v", ErrNotFound, id)
	}
	if !t.inBounds(p) {
		return t.outOfBounds(p)
	}
	if old == p {
		return nil
	}
	from, err := t.descend(old)
	if err != nil {
		return err
	}
	to, err := t.descend(p)
	if err != nil {
		return err
	}
	if from.bucket == to.bucket {
		b, _ := t.buckets.Get(from.bucket)
		for i := range b.items {
			if b.items[i].id == id {
				b.items[i].point = p
				t.where[id] = p
				return nil
			}
		}
		return fmt.Errorf("%w: %v missing from its bucket %d", ErrCorrupt, id, from.bucket)
	}
	// Different leaves: insert first so a failed split leaves the old entry.
	if err := t.insert(id, p); err != nil {
		return err
	}
	t.where[id] = p
	from, err = t.descend(old)
	if err != nil {
		return err
	}
	if !t.RemoveAt(from.bucket, id) {
		return fmt.Errorf("%w: %v vanished from bucket %d", ErrCorrupt, id, from.bucket)
	}
	// RemoveAt forgot the id along with the old entry.
	t.where[id] = p
	return nil
}

// shrink collapses nodes whose two children are buckets, one of them empty,
// starting at the parent of h and cascading upwards.
func (t *Tree[ID]) shrink(h Handle) error {
	for {
		b, ok := t.buckets.Get(h)
		if !ok {
			return fmt.Errorf("%w: shrink from missing bucket %d", ErrCorrupt, h)
		}
		if b.parent == InvalidHandle {
			return nil
		}
		nh := b.parent
		n, ok := t.nodes.Get(nh)
		if !ok {
			return fmt.Errorf("%w: bucket %d has missing parent %d", ErrCorrupt, h, nh)
		}
		slot, ok := n.slotOf(bucketChild(h))
		if !ok {
			return fmt.Errorf("%w: node %d has no link to bucket %d", ErrCorrupt, nh, h)
		}
		sib := n.sibling(slot)
		if sib.isNode() {
			return nil
		}
		s, ok := t.buckets.Get(sib.handle)
		if !ok {
			return fmt.Errorf("%w: node %d has missing child bucket %d", ErrCorrupt, nh, sib.handle)
		}
		if b.len() != 0 && s.len() != 0 {
			return nil
		}
		if b.len()+s.len() > t.cfg.BucketCapacity {
			return nil
		}
		merged, err := t.merge(nh)
		if err != nil {
			return err
		}
		h = merged
	}
}

// merge replaces node nh, whose children are both buckets, with a single
// bucket holding all their items. It returns the surviving bucket.
func (t *Tree[ID]) merge(nh Handle) (Handle, error) {
	n, ok := t.nodes.Get(nh)
	if !ok {
		return InvalidHandle, fmt.Errorf("%w: merge of missing node %d", ErrCorrupt, nh)
	}
	if n.children[Low].isNode() || n.children[High].isNode() {
		return InvalidHandle, fmt.Errorf("%w: merge of node %d with a node child", ErrCorrupt, nh)
	}
	grand := n.parent
	keepSlot := Low
	keep, drop := n.children[Low].handle, n.children[High].handle
	kb, okKeep := t.buckets.Get(keep)
	db, okDrop := t.buckets.Get(drop)
	if !okKeep || !okDrop {
		return InvalidHandle, fmt.Errorf("%w: node %d has missing child bucket", ErrCorrupt, nh)
	}
	if kb.len() < db.len() {
		keepSlot = High
		keep, drop = drop, keep
		kb, db = db, kb
	}
	kb.items = append(kb.items, db.items...)

	removed, err := t.buckets.Remove(drop)
	if err != nil {
		return InvalidHandle, err
	}
	if err := t.relocateBucket(removed.Swap); err != nil {
		return InvalidHandle, err
	}
	// keep may have been the last bucket and moved into drop's slot.
	n, _ = t.nodes.Get(nh)
	keep = n.children[keepSlot].handle
	kb, ok = t.buckets.Get(keep)
	if !ok {
		return InvalidHandle, fmt.Errorf("%w: merged bucket %d missing", ErrCorrupt, keep)
	}
	kb.parent = grand
	if grand == InvalidHandle {
		t.root = bucketChild(keep)
	} else {
		g, ok := t.nodes.Get(grand)
		if !ok || !g.replace(nodeChild(nh), bucketChild(keep)) {
			return InvalidHandle, fmt.Errorf("%w: node %d has no link to node %d", ErrCorrupt, grand, nh)
		}
	}
	items := kb.len()

	removedNode, err := t.nodes.Remove(nh)
	if err != nil {
		return InvalidHandle, err
	}
	if err := t.relocateNode(removedNode.Swap); err != nil {
		return InvalidHandle, fmt.Errorf("merging node %d: %w", nh, err)
	}

	depth := t.depthOf(keep)
	t.log.Debug("merge",
		zap.Uint16("bucket", uint16(keep)),
		zap.Int("depth", depth),
		zap.Int("items", items))
	Publish(t.events, MergeEvent{Bucket: keep, Depth: depth, Items: items})
	return keep, nil
}
