package pointindex

// childKind tags which arena a child handle belongs to.
type childKind uint8

const (
	kindBucket childKind = iota
	kindNode
)

func (k childKind) String() string {
	if k == kindNode {
		return "node"
	}
	return "bucket"
}

// child references either a node or a bucket.
type child struct {
	handle Handle
	kind   childKind
}

func bucketChild(h Handle) child {
	return child{handle: h, kind: kindBucket}
}

func nodeChild(h Handle) child {
	return child{handle: h, kind: kindNode}
}

func (c child) isNode() bool {
	return c.kind == kindNode
}

// node is an internal branch. children[Low] covers the half below the split
// midpoint and children[High] the rest. parent is InvalidHandle for the root.
type node struct {
	children [2]child
	parent   Handle
}

// slotOf returns which half holds c.
func (n *node) slotOf(c child) (Half, bool) {
	switch c {
	case n.children[Low]:
		return Low, true
	case n.children[High]:
		return High, true
	}
	return Low, false
}

// replace rewrites the child link equal to old. It reports false if no link
// matched, which means a back-reference is out of sync.
func (n *node) replace(old, new child) bool {
	h, ok := n.slotOf(old)
	if !ok {
		return false
	}
	n.children[h] = new
	return true
}

// sibling returns the other child of n.
func (n *node) sibling(h Half) child {
	return n.children[h^1]
}
