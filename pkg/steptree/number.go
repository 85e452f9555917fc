package steptree

import "github.com/krun-tools/stepcraft/pkg/idwrap"

// AssignStepNumbers walks the live tree in preorder and hands out
// consecutive numbers starting at 1. The map is recomputed after every
// structural mutation and threaded through the save conversion so every
// node, new or existing, leaves with an order-consistent number.
func (t *Tree) AssignStepNumbers() map[idwrap.IDWrap]int {
	numbers := make(map[idwrap.IDWrap]int, t.CountAll())
	for i, n := range t.FlattenPreorder() {
		numbers[n.ID] = i + 1
	}
	return numbers
}

// StepNumber returns the display number of one node, or 0 when the node is
// not in the tree.
func (t *Tree) StepNumber(id idwrap.IDWrap) int {
	return t.AssignStepNumbers()[id]
}
