package tiling

import (
	"fmt"
)

// Kind tags the variant held by a Node.
type Kind int

const (
	// KindEmpty marks a root with no windows.
	KindEmpty Kind = iota
	// KindWindow is a leaf holding one window identifier.
	KindWindow
	// KindSeparator is an internal node with two owned children.
	KindSeparator
)

func (k Kind) String() string {
	switch k {
	case KindWindow:
		return "window"
	case KindSeparator:
		return "separator"
	default:
		return "empty"
	}
}

// Node is one position in the binary partition tree. ID is only meaningful
// for KindWindow; Orientation, Left and Right only for KindSeparator.
//
// For every separator, Left.Rect and Right.Rect are exactly
// Split(Rect, Orientation). All exported mutators restore that before
// returning.
type Node[ID comparable] struct {
	Kind        Kind
	Rect        Rect
	ID          ID
	Orientation Orientation
	Left        *Node[ID]
	Right       *Node[ID]
}

// NewTree returns an empty root covering canvas.
func NewTree[ID comparable](canvas Rect) *Node[ID] {
	return &Node[ID]{Kind: KindEmpty, Rect: canvas}
}

// IsLeaf reports whether n has no children.
func (n *Node[ID]) IsLeaf() bool {
	return n.Kind != KindSeparator
}

func (n *Node[ID]) holds(id ID) bool {
	return n != nil && n.Kind == KindWindow && n.ID == id
}

// Insert places id next to n. An empty node simply becomes Window(id).
// Otherwise n turns into a separator whose first child is a deep copy of
// n's previous content (rescaled into the first half) and whose second child
// is the new window.
func (n *Node[ID]) Insert(o Orientation, id ID) {
	if n.Kind == KindEmpty {
		n.Kind = KindWindow
		n.ID = id
		return
	}

	first, second := Split(n.Rect, o)

	old := n.clone()
	old.Rect = first
	leaf := &Node[ID]{Kind: KindWindow, Rect: second, ID: id}

	var zero ID
	n.Kind = KindSeparator
	n.ID = zero
	n.Orientation = o
	n.Left = old
	n.Right = leaf

	n.resizePropagate()
}

// Remove deletes the window id from the subtree rooted at n. The separator
// directly above the window collapses and its other child takes over the
// freed rectangle. A leaf n is left untouched, including when it is the
// window being removed.
func (n *Node[ID]) Remove(id ID) {
	if n.Kind != KindSeparator {
		return
	}
	if n.Left.holds(id) {
		n.promote(n.Right)
		return
	}
	if n.Right.holds(id) {
		n.promote(n.Left)
		return
	}
	n.Left.Remove(id)
	n.Right.Remove(id)
}

// Find returns the window leaf holding id, or nil.
func (n *Node[ID]) Find(id ID) *Node[ID] {
	switch n.Kind {
	case KindSeparator:
		if found := n.Left.Find(id); found != nil {
			return found
		}
		return n.Right.Find(id)
	case KindWindow:
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Contains reports whether id is a leaf in the subtree.
func (n *Node[ID]) Contains(id ID) bool {
	return n.Find(id) != nil
}

// Walk calls fn for every window leaf in depth-first, left-to-right order.
func (n *Node[ID]) Walk(fn func(leaf *Node[ID])) {
	switch n.Kind {
	case KindSeparator:
		n.Left.Walk(fn)
		n.Right.Walk(fn)
	case KindWindow:
		fn(n)
	}
}

// Leaves returns the window identifiers in Walk order.
func (n *Node[ID]) Leaves() []ID {
	var ids []ID
	n.Walk(func(leaf *Node[ID]) {
		ids = append(ids, leaf.ID)
	})
	return ids
}

// Validate checks the rectangle invariant and identifier uniqueness and
// returns the first violation found.
func (n *Node[ID]) Validate() error {
	seen := make(map[ID]struct{})
	return n.validate("root", true, seen)
}

func (n *Node[ID]) validate(path string, isRoot bool, seen map[ID]struct{}) error {
	switch n.Kind {
	case KindEmpty:
		if !isRoot {
			return fmt.Errorf("%s: empty node below the root", path)
		}
		return nil
	case KindWindow:
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("%s: window %v appears more than once", path, n.ID)
		}
		seen[n.ID] = struct{}{}
		return nil
	}

	if n.Left == nil || n.Right == nil {
		return fmt.Errorf("%s: separator with missing child", path)
	}
	first, second := Split(n.Rect, n.Orientation)
	if n.Left.Rect != first {
		return fmt.Errorf("%s.left: rect %s, want %s", path, n.Left.Rect, first)
	}
	if n.Right.Rect != second {
		return fmt.Errorf("%s.right: rect %s, want %s", path, n.Right.Rect, second)
	}
	if err := n.Left.validate(path+".left", false, seen); err != nil {
		return err
	}
	return n.Right.validate(path+".right", false, seen)
}

// resizePropagate recomputes the children of a separator from its own rect
// and recurses. It must run whenever a subtree is given a new rectangle.
func (n *Node[ID]) resizePropagate() {
	if n.Kind != KindSeparator {
		return
	}
	n.Left.Rect, n.Right.Rect = Split(n.Rect, n.Orientation)
	n.Left.resizePropagate()
	n.Right.resizePropagate()
}

// promote moves child's content into n, keeping n's rectangle.
func (n *Node[ID]) promote(child *Node[ID]) {
	n.Kind = child.Kind
	n.ID = child.ID
	n.Orientation = child.Orientation
	n.Left = child.Left
	n.Right = child.Right
	n.resizePropagate()
}

func (n *Node[ID]) clone() *Node[ID] {
	if n == nil {
		return nil
	}
	cp := *n
	cp.Left = n.Left.clone()
	cp.Right = n.Right.clone()
	return &cp
}
