package pointindex

import (
	"fmt"
	"iter"
	"math"
)

// MaxHandles is the number of elements a single arena can address. Handle
// zero is reserved, so a 16-bit handle names at most 65535 live slots.
const MaxHandles = math.MaxUint16

// Handle identifies a live element inside one Arena. It is the element's slot
// index plus one, so the zero value is never a valid handle.
//
// A handle is meaningless outside the arena that issued it and is invalidated
// when its element is removed or relocated.
type Handle uint16

// InvalidHandle is the unset handle. It doubles as the "no parent" marker.
const InvalidHandle Handle = 0

// IsValid reports whether h is not the reserved zero handle. It says nothing
// about whether h is live in any particular arena.
func (h Handle) IsValid() bool {
	return h != InvalidHandle
}

func (h Handle) index() int {
	return int(h) - 1
}

func handleAt(index int) Handle {
	return Handle(index + 1)
}

// Relocation names an element that swap-remove moved into a freed slot. The
// owner of any back-reference to Old must rewrite it to New.
type Relocation struct {
	Old Handle
	New Handle
}

// Moved reports whether an element actually changed slots.
func (r Relocation) Moved() bool {
	return r.Old != InvalidHandle && r.Old != r.New
}

// Removed is the result of Arena.Remove.
type Removed[T any] struct {
	Item T
	Swap Relocation
}

// Arena is dense storage for a homogeneous element type. Handles map
// bijectively onto the occupied slots [1, Len]. Removal moves the last
// element into the freed slot and reports the move so callers can repair the
// one cross-reference that changed.
type Arena[T any] struct {
	items []T
	limit int
}

// NewArena creates an arena with room for capacity elements before the
// backing slice grows. limit caps the number of live elements; values outside
// (0, MaxHandles] are clamped to MaxHandles.
func NewArena[T any](capacity, limit int) *Arena[T] {
	if limit <= 0 || limit > MaxHandles {
		limit = MaxHandles
	}
	if capacity < 0 {
		capacity = 0
	}
	capacity = min(capacity, limit)
	return &Arena[T]{
		items: make([]T, 0, capacity),
		limit: limit,
	}
}

// Len returns the number of live elements.
func (a *Arena[T]) Len() int {
	return len(a.items)
}

// Limit returns the maximum number of live elements.
func (a *Arena[T]) Limit() int {
	return a.limit
}

// Free returns how many more elements can be pushed before ErrExhausted.
func (a *Arena[T]) Free() int {
	return a.limit - len(a.items)
}

// NextHandle peeks the handle the next Push would return. It reports false
// when the arena is exhausted.
func (a *Arena[T]) NextHandle() (Handle, bool) {
	if len(a.items) >= a.limit {
		return InvalidHandle, false
	}
	return handleAt(len(a.items)), true
}

// Push appends item and returns its handle.
func (a *Arena[T]) Push(item T) (Handle, error) {
	h, ok := a.NextHandle()
	if !ok {
		return InvalidHandle, fmt.Errorf("%w: limit %d reached", ErrExhausted, a.limit)
	}
	a.items = a.grow(1)
	a.items[len(a.items)-1] = item
	return h, nil
}

// grow extends the backing slice by n elements, doubling capacity when it
// runs out but never reserving past the arena limit.
func (a *Arena[T]) grow(n int) []T {
	newLen := len(a.items) + n
	if cap(a.items) >= newLen {
		return a.items[:newLen]
	}
	newCap := min(max(2*cap(a.items), newLen), max(a.limit, newLen))
	ns := make([]T, newLen, newCap)
	copy(ns, a.items)
	return ns
}

// Get returns a pointer to the element named by h, or false when h is stale.
// The pointer is valid until the next Push or Remove on this arena.
func (a *Arena[T]) Get(h Handle) (*T, bool) {
	i := h.index()
	if i < 0 || i >= len(a.items) {
		return nil, false
	}
	return &a.items[i], true
}

// Remove deletes the element named by h using swap-with-last. When the freed
// slot was not the last one, the former last element now lives at h and the
// result's Swap names its old and new handles.
func (a *Arena[T]) Remove(h Handle) (Removed[T], error) {
	var out Removed[T]
	i := h.index()
	if i < 0 || i >= len(a.items) {
		return out, fmt.Errorf("%w: %d not in arena of %d", ErrStaleHandle, h, len(a.items))
	}
	out.Item = a.items[i]
	last := len(a.items) - 1
	if i < last {
		a.items[i] = a.items[last]
		out.Swap = Relocation{Old: handleAt(last), New: h}
	}
	var zero T
	a.items[last] = zero
	a.items = a.items[:last]
	return out, nil
}

// Reset drops every element without releasing the backing storage.
func (a *Arena[T]) Reset() {
	clear(a.items)
	a.items = a.items[:0]
}

// All yields every live handle with a pointer to its element, in slot order.
// The arena must not be mutated during iteration.
func (a *Arena[T]) All() iter.Seq2[Handle, *T] {
	return func(yield func(Handle, *T) bool) {
		for i := range a.items {
			if !yield(handleAt(i), &a.items[i]) {
				return
			}
		}
	}
}
