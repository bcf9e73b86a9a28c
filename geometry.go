package pointindex

import "math"

// Point is a 2D position in world units.
type Point struct {
	X, Y float32
}

// axis returns the coordinate on the given axis (0 = X, 1 = Y).
func (p Point) axis(a int) float32 {
	if a == 0 {
		return p.X
	}
	return p.Y
}

func (p Point) isFinite() bool {
	return !math.IsNaN(float64(p.X)) && !math.IsNaN(float64(p.Y)) &&
		!math.IsInf(float64(p.X), 0) && !math.IsInf(float64(p.Y), 0)
}

// AABB is an axis-aligned box. Both edges are inclusive.
type AABB struct {
	Min, Max Point
}

// NewAABB returns the box spanning min and max.
func NewAABB(min, max Point) AABB {
	return AABB{Min: min, Max: max}
}

// Around returns the box of the given half extents centred on c.
func Around(c Point, halfWidth, halfHeight float32) AABB {
	return AABB{
		Min: Point{c.X - halfWidth, c.Y - halfHeight},
		Max: Point{c.X + halfWidth, c.Y + halfHeight},
	}
}

// Intersects reports whether the two boxes share at least one point.
func (b AABB) Intersects(o AABB) bool {
	return b.Min.X <= o.Max.X && b.Min.Y <= o.Max.Y &&
		b.Max.X >= o.Min.X && b.Max.Y >= o.Min.Y
}

// Contains reports whether p lies inside b, edges included.
func (b AABB) Contains(p Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// ContainsBox reports whether o lies entirely inside b.
func (b AABB) ContainsBox(o AABB) bool {
	return o.Min.X >= b.Min.X && o.Max.X <= b.Max.X &&
		o.Min.Y >= b.Min.Y && o.Max.Y <= b.Max.Y
}

// midpoint returns the split value of b along axis a.
func (b AABB) midpoint(a int) float32 {
	return 0.5 * (b.Min.axis(a) + b.Max.axis(a))
}

// halves splits b at its midpoint along axis a. The low half keeps Min and the
// high half keeps Max; both share the midpoint edge, which routes high.
func (b AABB) halves(a int) (low, high AABB) {
	mid := b.midpoint(a)
	low, high = b, b
	if a == 0 {
		low.Max.X = mid
		high.Min.X = mid
	} else {
		low.Max.Y = mid
		high.Min.Y = mid
	}
	return low, high
}

// domain returns the root box for a half-size.
func domain(half Point) AABB {
	return AABB{Min: Point{-half.X, -half.Y}, Max: half}
}
