package pointindex

// Half is one step of a descent: which side of the current split a point
// falls on.
type Half uint8

const (
	// Low is the half strictly below the midpoint (left on X, top on Y).
	Low Half = iota
	// High is the half at or above the midpoint (right on X, bottom on Y).
	High
)

// Screen-space names for the two halves.
const (
	TopLeft     = Low
	BottomRight = High
)

func (h Half) String() string {
	if h == Low {
		return "TopLeft"
	}
	return "BottomRight"
}

// Axis returns the split axis used at depth d: X (0) on even depths, Y (1) on
// odd depths. Nodes are created with this axis, so every descent must use it.
func Axis(depth int) int {
	return depth & 1
}

// Path walks the binary subdivision of a domain towards a target point, one
// level per Step. It is a small value type and never allocates.
type Path struct {
	bounds AABB
	target Point
	depth  int
}

// NewPath starts a descent over the domain [-halfSize, halfSize].
func NewPath(halfSize, target Point) Path {
	return newPathIn(domain(halfSize), target)
}

func newPathIn(bounds AABB, target Point) Path {
	return Path{bounds: bounds, target: target}
}

// Step classifies the target against the midpoint of the current axis,
// narrows the tracked bounds to that half and advances to the next axis.
// Ties resolve to High.
func (p *Path) Step() Half {
	a := Axis(p.depth)
	p.depth++
	low, high := p.bounds.halves(a)
	h := classify(p.bounds, a, p.target)
	if h == Low {
		p.bounds = low
	} else {
		p.bounds = high
	}
	return h
}

// Depth returns the number of steps taken.
func (p *Path) Depth() int {
	return p.depth
}

// Bounds returns the box the target has been narrowed to.
func (p *Path) Bounds() AABB {
	return p.bounds
}

// classify reports which half of b the point falls in along axis a. It is the
// same rule Step applies.
func classify(b AABB, a int, pt Point) Half {
	if pt.axis(a) < b.midpoint(a) {
		return Low
	}
	return High
}
