package pointindex

import "fmt"

// DefaultBucketCapacity is the nominal number of entries a leaf holds before
// it splits.
const DefaultBucketCapacity = 16

// entry is one indexed (object, point) pair. The index keeps a copy; the host
// owns the object itself.
type entry[ID comparable] struct {
	id    ID
	point Point
}

// bucket is a leaf of the tree. parent is the owning node, or InvalidHandle
// when the bucket is the root.
type bucket[ID comparable] struct {
	items  []entry[ID]
	parent Handle
}

func newBucket[ID comparable](parent Handle, capacity int) bucket[ID] {
	return bucket[ID]{
		parent: parent,
		items:  make([]entry[ID], 0, capacity),
	}
}

func (b *bucket[ID]) len() int {
	return len(b.items)
}

func (b *bucket[ID]) isFull(capacity int) bool {
	return len(b.items) >= capacity
}

// insert appends an entry, failing with ErrBucketFull at capacity.
func (b *bucket[ID]) insert(id ID, p Point, capacity int) error {
	if b.isFull(capacity) {
		return fmt.Errorf("%w: %d/%d", ErrBucketFull, len(b.items), capacity)
	}
	b.items = append(b.items, entry[ID]{id: id, point: p})
	return nil
}

// force appends without a capacity check. Only used for leaves at max depth
// under OverflowAccept.
func (b *bucket[ID]) force(id ID, p Point) {
	b.items = append(b.items, entry[ID]{id: id, point: p})
}

// remove drops the first entry with the given id.
func (b *bucket[ID]) remove(id ID) bool {
	for i := range b.items {
		if b.items[i].id != id {
			continue
		}
		last := len(b.items) - 1
		b.items[i] = b.items[last]
		b.items[last] = entry[ID]{}
		b.items = b.items[:last]
		return true
	}
	return false
}
