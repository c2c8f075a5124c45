package parser

// Side selects one of a node's two child slots.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// Node is a single syntax tree node. The first child of a grammar
// production hangs off Left; repetition at the same grammar level is
// encoded as a chain of Right children. The parent pointer is a
// non-owning back-reference for cursor navigation.
type Node[V any] struct {
	kind   NodeKind
	value  *V
	parent *Node[V]
	left   *Node[V]
	right  *Node[V]
}

// Kind returns the grammatical role of the node.
func (n *Node[V]) Kind() NodeKind {
	return n.kind
}

// Value returns the node's payload, or the zero value and false for
// placeholder nodes that carry none.
func (n *Node[V]) Value() (V, bool) {
	if n.value == nil {
		var zero V
		return zero, false
	}
	return *n.value, true
}

// Parent returns the node's parent, or nil for the root.
func (n *Node[V]) Parent() *Node[V] {
	return n.parent
}

// Child returns the child on the given side, or nil.
func (n *Node[V]) Child(side Side) *Node[V] {
	if side == Left {
		return n.left
	}
	return n.right
}

// Tree owns a binary-shaped syntax tree and a single mutable cursor.
// All structural mutation happens relative to the cursor. A zero Tree
// is empty and ready to use.
type Tree[V any] struct {
	head *Node[V]
	curr *Node[V]
}

// Head returns the root node, or nil if the tree is empty.
func (t *Tree[V]) Head() *Node[V] {
	return t.head
}

// Current returns the node under the cursor, or nil.
func (t *Tree[V]) Current() *Node[V] {
	return t.curr
}

// Empty reports whether the tree holds no nodes.
func (t *Tree[V]) Empty() bool {
	return t.head == nil
}

// AddChild attaches a new node on the given side of the cursor. On an
// empty tree the side is ignored: the new node becomes the root and the
// cursor moves onto it. Otherwise the cursor stays put; an occupied
// side fails with ErrBranchTaken and leaves the tree unmodified.
func (t *Tree[V]) AddChild(kind NodeKind, value *V, side Side) error {
	node := &Node[V]{kind: kind, value: value}

	if t.head == nil {
		t.head = node
		t.curr = node
		return nil
	}
	if t.curr == nil {
		return ErrNoCursor
	}

	if side == Left {
		if t.curr.left != nil {
			return ErrBranchTaken
		}
		t.curr.left = node
	} else {
		if t.curr.right != nil {
			return ErrBranchTaken
		}
		t.curr.right = node
	}
	node.parent = t.curr
	return nil
}

// VisitBranch moves the cursor to the child on the given side. An
// absent child fails with ErrNoBranch on either side.
func (t *Tree[V]) VisitBranch(side Side) error {
	if t.curr == nil {
		return ErrNoCursor
	}
	child := t.curr.Child(side)
	if child == nil {
		return ErrNoBranch
	}
	t.curr = child
	return nil
}

// VisitParent moves the cursor to its parent. Fails with ErrNoBranch
// at the root and ErrNoCursor on an empty tree.
func (t *Tree[V]) VisitParent() error {
	if t.curr == nil {
		return ErrNoCursor
	}
	if t.curr.parent == nil {
		return ErrNoBranch
	}
	t.curr = t.curr.parent
	return nil
}

// BranchExists reports whether the cursor has a child on the given
// side. Never fails and never mutates: an empty tree reports false.
func (t *Tree[V]) BranchExists(side Side) bool {
	if t.curr == nil {
		return false
	}
	return t.curr.Child(side) != nil
}

// Bottom moves the cursor to the leftmost-deepest node reachable by
// following Left children from the root. Fails with ErrNoCursor on an
// empty tree.
func (t *Tree[V]) Bottom() error {
	if t.head == nil {
		return ErrNoCursor
	}
	t.curr = leftmost(t.head)
	return nil
}

func leftmost[V any](n *Node[V]) *Node[V] {
	for n.left != nil {
		n = n.left
	}
	return n
}

// Next destructively drains one payload from the tree: it detaches the
// node under the cursor, promotes its right subtree into the vacated
// slot, and re-seats the cursor on the next node in traversal order.
// Placeholder nodes and operator-bearing nodes (separators, reserved
// words) are consumed silently, so repeated calls after Bottom yield
// exactly the operand payloads in their original source order. Returns
// false once the tree is drained. Must not be mixed with further
// structural mutation.
func (t *Tree[V]) Next() (V, bool) {
	var zero V
	for t.curr != nil {
		// The drain always sits on a node with no left child; re-descend
		// in case the cursor was parked elsewhere.
		for t.curr.left != nil {
			t.curr = t.curr.left
		}

		n := t.curr
		parent := n.parent
		right := n.right

		if right != nil {
			right.parent = parent
		}
		switch {
		case parent == nil:
			t.head = right
		case parent.left == n:
			parent.left = right
		default:
			parent.right = right
		}
		n.parent, n.left, n.right = nil, nil, nil

		if right != nil {
			t.curr = leftmost(right)
		} else {
			t.curr = parent
		}

		if n.value != nil && n.kind.operand() {
			return *n.value, true
		}
	}
	return zero, false
}

// operand reports whether a node of this kind carries a payload the
// drain should surface. Separator and reserved-word nodes hold operator
// tokens that describe structure, not operands.
func (k NodeKind) operand() bool {
	switch k {
	case NodeCmdName, NodeCmdWord, NodeCmdPrefix, NodeCmdSuffix:
		return true
	}
	return false
}

// Clear releases every node, right subtree first, then left, then the
// node itself, severing all links so each node is torn down exactly
// once. Safe to call on an empty tree. The tree is empty afterwards.
func (t *Tree[V]) Clear() {
	clearNode(t.head)
	t.head = nil
	t.curr = nil
}

func clearNode[V any](n *Node[V]) {
	if n == nil {
		return
	}
	clearNode(n.right)
	clearNode(n.left)
	n.parent, n.left, n.right, n.value = nil, nil, nil, nil
}
