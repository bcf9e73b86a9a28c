package pointindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func descendN(half, target Point, n int) []Half {
	p := NewPath(half, target)
	out := make([]Half, n)
	for i := range out {
		out[i] = p.Step()
	}
	return out
}

// go test -run ^TestPathSteps$ . -count 1
func TestPathSteps(t *testing.T) {
	half := Point{2, 3}
	tests := []struct {
		name   string
		target Point
		want   []Half
	}{
		// right, bottom, right (x sits exactly on the midpoint 1), top, top, top
		{"tie on third step", Point{1, 0.2}, []Half{High, High, High, Low, Low, Low}},
		// right, bottom, left, top, left, top
		{"off the midpoint", Point{0.4, 0.2}, []Half{BottomRight, BottomRight, TopLeft, TopLeft, TopLeft, TopLeft}},
		{"far corner", Point{-2, -3}, []Half{Low, Low, Low, Low, Low, Low}},
		{"max corner", Point{2, 3}, []Half{High, High, High, High, High, High}},
		{"origin", Point{0, 0}, []Half{High, High, Low, Low, Low, Low}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, descendN(half, tt.target, len(tt.want)))
		})
	}
}

// go test -run ^TestPathBounds$ . -count 1
func TestPathBounds(t *testing.T) {
	p := NewPath(Point{2, 3}, Point{1, 0.2})
	p.Step()
	p.Step()
	assert.Equal(t, 2, p.Depth())
	assert.Equal(t, AABB{Min: Point{0, 0}, Max: Point{2, 3}}, p.Bounds())
	p.Step()
	assert.Equal(t, AABB{Min: Point{1, 0}, Max: Point{2, 3}}, p.Bounds())
	assert.True(t, p.Bounds().Contains(Point{1, 0.2}), "the target stays inside the narrowed bounds")
}

// go test -run ^TestAxisAlternates$ . -count 1
func TestAxisAlternates(t *testing.T) {
	for d := range 8 {
		assert.Equal(t, d%2, Axis(d))
	}
}

// go test -run ^TestAABB$ . -count 1
func TestAABB(t *testing.T) {
	b := NewAABB(Point{-1, -1}, Point{1, 1})
	assert.True(t, b.Contains(Point{1, 1}), "edges are inclusive")
	assert.False(t, b.Contains(Point{1.01, 0}))
	assert.True(t, b.Intersects(NewAABB(Point{1, 1}, Point{2, 2})), "touching boxes intersect")
	assert.False(t, b.Intersects(NewAABB(Point{1.5, -1}, Point{2, 1})))
	assert.True(t, b.ContainsBox(Around(Point{0, 0}, 0.5, 1)))
	assert.False(t, b.ContainsBox(Around(Point{0, 0}, 0.5, 1.5)))

	low, high := b.halves(0)
	assert.Equal(t, float32(0), low.Max.X)
	assert.Equal(t, float32(0), high.Min.X)
	assert.Equal(t, High, classify(b, 0, Point{0, 0}), "the midpoint routes high")
}
