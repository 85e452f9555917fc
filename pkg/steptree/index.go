package steptree

import "github.com/krun-tools/stepcraft/pkg/idwrap"

// Read-only traversal over the current tree. Quote previews are read-only
// copies of another case and are excluded everywhere here.

// FindByID searches roots and all descendants depth first.
func (t *Tree) FindByID(id idwrap.IDWrap) (*StepNode, error) {
	if n := findByID(t.roots, id); n != nil {
		return n, nil
	}
	return nil, ErrNodeNotFound
}

func findByID(nodes []*StepNode, id idwrap.IDWrap) *StepNode {
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
		if found := findByID(n.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// FindParent returns the parent of id, or nil when id is a root.
func (t *Tree) FindParent(id idwrap.IDWrap) (*StepNode, error) {
	for _, root := range t.roots {
		if root.ID == id {
			return nil, nil
		}
	}
	if p := findParent(t.roots, id); p != nil {
		return p, nil
	}
	return nil, ErrNodeNotFound
}

func findParent(nodes []*StepNode, id idwrap.IDWrap) *StepNode {
	for _, n := range nodes {
		for _, child := range n.Children {
			if child.ID == id {
				return n
			}
		}
		if p := findParent(n.Children, id); p != nil {
			return p
		}
	}
	return nil
}

// FlattenPreorder lists every node in execution order: node before its
// children, children left to right.
func (t *Tree) FlattenPreorder() []*StepNode {
	return flattenPreorder(t.roots, nil)
}

func flattenPreorder(nodes []*StepNode, acc []*StepNode) []*StepNode {
	for _, n := range nodes {
		acc = append(acc, n)
		acc = flattenPreorder(n.Children, acc)
	}
	return acc
}

// CountAll is the total node count including nested steps; it feeds the
// case record's case_steps summary.
func (t *Tree) CountAll() int {
	return len(t.FlattenPreorder())
}

// siblingsOf returns the child list that contains id together with the
// node's index in it. Roots count as children of a nil parent.
func (t *Tree) siblingsOf(id idwrap.IDWrap) (parent *StepNode, siblings []*StepNode, index int, err error) {
	for i, root := range t.roots {
		if root.ID == id {
			return nil, t.roots, i, nil
		}
	}
	parent = findParent(t.roots, id)
	if parent == nil {
		return nil, nil, 0, ErrNodeNotFound
	}
	for i, child := range parent.Children {
		if child.ID == id {
			return parent, parent.Children, i, nil
		}
	}
	return nil, nil, 0, ErrNodeNotFound
}

// isDescendant reports whether candidate sits inside root's subtree
// (excluding root itself).
func isDescendant(root *StepNode, candidate idwrap.IDWrap) bool {
	return findByID(root.Children, candidate) != nil
}
