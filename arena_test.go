package pointindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -run ^TestArenaPushGet$ . -count 1
func TestArenaPushGet(t *testing.T) {
	a := NewArena[string](0, 0)
	next, ok := a.NextHandle()
	require.True(t, ok)
	assert.Equal(t, Handle(1), next)

	h1, err := a.Push("a")
	require.NoError(t, err)
	h2, err := a.Push("b")
	require.NoError(t, err)

	assert.Equal(t, next, h1, "NextHandle must predict Push")
	assert.NotEqual(t, InvalidHandle, h1)
	assert.Equal(t, 2, a.Len())

	v, ok := a.Get(h2)
	require.True(t, ok)
	assert.Equal(t, "b", *v)

	*v = "B"
	v, _ = a.Get(h2)
	assert.Equal(t, "B", *v, "Get must hand out a mutable reference")

	_, ok = a.Get(InvalidHandle)
	assert.False(t, ok, "the zero handle never resolves")
	_, ok = a.Get(Handle(3))
	assert.False(t, ok, "out of range handles are stale, not a panic")
}

// go test -run ^TestArenaRemoveRelocates$ . -count 1
func TestArenaRemoveRelocates(t *testing.T) {
	a := NewArena[string](4, 0)
	h1, _ := a.Push("a")
	_, _ = a.Push("b")
	h3, _ := a.Push("c")

	removed, err := a.Remove(h1)
	require.NoError(t, err)
	assert.Equal(t, "a", removed.Item)
	require.True(t, removed.Swap.Moved())
	assert.Equal(t, Relocation{Old: h3, New: h1}, removed.Swap)

	v, ok := a.Get(h1)
	require.True(t, ok)
	assert.Equal(t, "c", *v, "the last element moves into the freed slot")
	_, ok = a.Get(h3)
	assert.False(t, ok, "the moved element's old handle is stale")
	assert.Equal(t, 2, a.Len())
}

// go test -run ^TestArenaRemoveLast$ . -count 1
func TestArenaRemoveLast(t *testing.T) {
	a := NewArena[int](0, 0)
	_, _ = a.Push(1)
	h2, _ := a.Push(2)

	removed, err := a.Remove(h2)
	require.NoError(t, err)
	assert.Equal(t, 2, removed.Item)
	assert.False(t, removed.Swap.Moved(), "removing the last slot moves nothing")

	_, err = a.Remove(h2)
	assert.ErrorIs(t, err, ErrStaleHandle)
	_, err = a.Remove(InvalidHandle)
	assert.ErrorIs(t, err, ErrStaleHandle)
}

// go test -run ^TestArenaHandleReuse$ . -count 1
func TestArenaHandleReuse(t *testing.T) {
	a := NewArena[string](0, 0)
	ha, _ := a.Push("a")
	hb, _ := a.Push("b")

	removed, err := a.Remove(ha)
	require.NoError(t, err)
	require.Equal(t, Relocation{Old: hb, New: ha}, removed.Swap)

	// A holder of hb that applied the relocation now holds ha and still sees
	// "b". The freed numeric value is handed out again.
	hc, err := a.Push("c")
	require.NoError(t, err)
	assert.Equal(t, hb, hc)

	v, _ := a.Get(removed.Swap.New)
	assert.Equal(t, "b", *v)
	v, _ = a.Get(hc)
	assert.Equal(t, "c", *v)
}

// go test -run ^TestArenaExhausted$ . -count 1
func TestArenaExhausted(t *testing.T) {
	a := NewArena[int](0, 3)
	for i := range 3 {
		_, err := a.Push(i)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, a.Free())
	_, ok := a.NextHandle()
	assert.False(t, ok)

	_, err := a.Push(99)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 3, a.Len(), "a failed push must not grow the arena")

	_, _ = a.Remove(Handle(2))
	_, err = a.Push(4)
	assert.NoError(t, err, "removal frees room again")
}

// go test -run ^TestArenaFullHandleSpace$ . -count 1
func TestArenaFullHandleSpace(t *testing.T) {
	a := NewArena[struct{}](0, 0)
	assert.Equal(t, MaxHandles, a.Limit())
	var last Handle
	for range MaxHandles {
		h, err := a.Push(struct{}{})
		require.NoError(t, err)
		last = h
	}
	assert.Equal(t, Handle(MaxHandles), last)
	_, err := a.Push(struct{}{})
	assert.ErrorIs(t, err, ErrExhausted)
}

// go test -run ^TestArenaAllAndReset$ . -count 1
func TestArenaAllAndReset(t *testing.T) {
	a := NewArena[int](0, 0)
	for i := range 5 {
		_, _ = a.Push(i * 10)
	}
	var seen []int
	for h, v := range a.All() {
		assert.Equal(t, int(h-1)*10, *v)
		seen = append(seen, *v)
	}
	assert.Equal(t, []int{0, 10, 20, 30, 40}, seen)

	a.Reset()
	assert.Equal(t, 0, a.Len())
	h, err := a.Push(7)
	require.NoError(t, err)
	assert.Equal(t, Handle(1), h)
}

// go test -run ^TestBucketInsertRemove$ . -count 1
func TestBucketInsertRemove(t *testing.T) {
	b := newBucket[int](InvalidHandle, 2)
	require.NoError(t, b.insert(1, Point{1, 1}, 2))
	require.NoError(t, b.insert(2, Point{2, 2}, 2))
	assert.ErrorIs(t, b.insert(3, Point{3, 3}, 2), ErrBucketFull)

	assert.True(t, b.remove(1))
	assert.False(t, b.remove(1))
	assert.Equal(t, 1, b.len())
	assert.Equal(t, 2, b.items[0].id)
}
