package steptree

import (
	"github.com/krun-tools/stepcraft/pkg/idwrap"
	"github.com/krun-tools/stepcraft/pkg/model/mvar"
)

// Tree owns the editing state for one case: the root list plus selection and
// expand/collapse bookkeeping. All mutation goes through methods here; there
// is no ambient global tree.
type Tree struct {
	roots       []*StepNode
	sessionVars []mvar.KeyValue
	selected    idwrap.IDWrap
	expanded    map[idwrap.IDWrap]bool
}

func NewTree(roots []*StepNode) *Tree {
	t := &Tree{
		roots:    roots,
		expanded: make(map[idwrap.IDWrap]bool),
	}
	// Containers start expanded so a freshly loaded case shows its shape.
	for _, n := range t.FlattenPreorder() {
		if n.IsContainer() {
			t.expanded[n.ID] = true
		}
	}
	if len(roots) > 0 {
		t.selected = roots[0].ID
	}
	return t
}

func (t *Tree) Roots() []*StepNode { return t.roots }

// Replace swaps in a whole new root list, resetting selection and expand
// state. Used when the case is (re)loaded from the backend.
func (t *Tree) Replace(roots []*StepNode) {
	t.roots = roots
	t.expanded = make(map[idwrap.IDWrap]bool)
	t.selected = idwrap.IDWrap{}
	for _, n := range t.FlattenPreorder() {
		if n.IsContainer() {
			t.expanded[n.ID] = true
		}
	}
	if len(roots) > 0 {
		t.selected = roots[0].ID
	}
}

// SetSessionVariables installs the case-level session variables. They run
// before the first step, so scoping makes them visible to every node.
func (t *Tree) SetSessionVariables(vars []mvar.KeyValue) {
	t.sessionVars = vars
}

func (t *Tree) SessionVariables() []mvar.KeyValue { return t.sessionVars }

func (t *Tree) Selected() idwrap.IDWrap { return t.selected }

func (t *Tree) Select(id idwrap.IDWrap) error {
	if _, err := t.FindByID(id); err != nil {
		return err
	}
	t.selected = id
	return nil
}

func (t *Tree) SelectedNode() *StepNode {
	if t.selected.IsZero() {
		return nil
	}
	n, err := t.FindByID(t.selected)
	if err != nil {
		return nil
	}
	return n
}

func (t *Tree) Expanded(id idwrap.IDWrap) bool { return t.expanded[id] }

func (t *Tree) SetExpanded(id idwrap.IDWrap, open bool) {
	if open {
		t.expanded[id] = true
		return
	}
	delete(t.expanded, id)
}
