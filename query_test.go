package pointindex_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edwinsyarief/pointindex"
)

func scatter(t *testing.T, n int, seed uint64, opts ...pointindex.Option) (*pointindex.Tree[int], []pointindex.Point) {
	t.Helper()
	tree, err := pointindex.New[int](worldHalf, opts...)
	require.NoError(t, err)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	points := make([]pointindex.Point, n)
	for i := range points {
		points[i] = pointindex.Point{
			X: float32(rng.IntN(201) - 100),
			Y: float32(rng.IntN(201) - 100),
		}
		require.NoError(t, tree.Insert(i, points[i]))
	}
	return tree, points
}

func bruteForce(points []pointindex.Point, box pointindex.AABB) []int {
	var out []int
	for i, p := range points {
		if box.Contains(p) {
			out = append(out, i)
		}
	}
	return out
}

// go test -run ^TestQueryRegionMatchesBruteForce$ . -count 1
func TestQueryRegionMatchesBruteForce(t *testing.T) {
	tree, points := scatter(t, 1500, 7, pointindex.WithBucketCapacity(6))
	require.NoError(t, tree.Verify())

	boxes := []struct {
		name string
		box  pointindex.AABB
	}{
		{"whole domain", tree.Bounds()},
		{"larger than domain", pointindex.Around(pointindex.Point{}, 500, 500)},
		{"quadrant", pointindex.NewAABB(pointindex.Point{X: 0, Y: 0}, pointindex.Point{X: 100, Y: 100})},
		{"thin column", pointindex.NewAABB(pointindex.Point{X: 10, Y: -100}, pointindex.Point{X: 10, Y: 100})},
		{"small window", pointindex.Around(pointindex.Point{X: -33, Y: 47}, 7, 3)},
		{"straddles split lines", pointindex.Around(pointindex.Point{X: 0, Y: 0}, 12.5, 12.5)},
		{"single lattice point", pointindex.Around(pointindex.Point{X: 5, Y: 5}, 0, 0)},
		{"outside domain", pointindex.Around(pointindex.Point{X: 300, Y: 0}, 10, 10)},
	}
	for _, tt := range boxes {
		t.Run(tt.name, func(t *testing.T) {
			want := bruteForce(points, tt.box)
			got := collect2(tree.QueryRegion(tt.box))
			assert.ElementsMatch(t, want, got)

			for id, p := range tree.QueryRegionPoints(tt.box) {
				assert.Equal(t, points[id], p)
			}
		})
	}
}

func collect2(seq func(func(int) bool)) []int {
	var out []int
	for id := range seq {
		out = append(out, id)
	}
	return out
}

// go test -run ^TestQueryRegionIsLazy$ . -count 1
func TestQueryRegionIsLazy(t *testing.T) {
	tree, _ := scatter(t, 300, 11, pointindex.WithBucketCapacity(4))
	seq := tree.QueryRegion(tree.Bounds())

	taken := 0
	for range seq {
		taken++
		if taken == 5 {
			break
		}
	}
	assert.Equal(t, 5, taken, "breaking out stops the traversal")

	first, second := collect2(seq), collect2(seq)
	assert.Len(t, first, 300)
	assert.ElementsMatch(t, first, second, "a sequence can be ranged over again")

	require.True(t, tree.Remove(first[0]))
	assert.Len(t, collect2(seq), 299, "each pass sees the current tree")
}

// go test -run ^TestRegionQueryCursor$ . -count 1
func TestRegionQueryCursor(t *testing.T) {
	tree, points := scatter(t, 800, 3, pointindex.WithBucketCapacity(8))
	left := pointindex.NewAABB(pointindex.Point{X: -100, Y: -100}, pointindex.Point{X: -1, Y: 100})
	right := pointindex.NewAABB(pointindex.Point{X: 1, Y: -100}, pointindex.Point{X: 100, Y: 100})

	q := pointindex.NewRegionQuery(tree, left)
	assert.ElementsMatch(t, bruteForce(points, left), q.Collect(nil))
	assert.False(t, q.Next(), "an exhausted cursor stays exhausted")

	q.Reset()
	assert.ElementsMatch(t, bruteForce(points, left), q.Collect(nil), "Reset rewinds")

	q.SetBox(right)
	var got []int
	for q.Next() {
		assert.True(t, right.Contains(q.Point()))
		assert.Equal(t, points[q.ID()], q.Point())
		got = append(got, q.ID())
	}
	assert.ElementsMatch(t, bruteForce(points, right), got)
}

// go test -run ^TestQueryPointMisses$ . -count 1
func TestQueryPointMisses(t *testing.T) {
	tree, err := pointindex.New[int](worldHalf)
	require.NoError(t, err)
	require.NoError(t, tree.Insert(1, pointindex.Point{X: 1, Y: 1}))

	_, ok := tree.QueryPoint(pointindex.Point{X: 1, Y: 1.5})
	assert.False(t, ok, "same bucket, different point")
	_, ok = tree.QueryPoint(pointindex.Point{X: 1000, Y: 0})
	assert.False(t, ok, "outside the domain")
	_, ok = tree.Locate(pointindex.Point{X: 1000, Y: 0})
	assert.False(t, ok)
	assert.Empty(t, collect2(tree.QueryRegion(pointindex.Around(pointindex.Point{X: -50, Y: -50}, 10, 10))))
}
