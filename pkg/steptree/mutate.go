package steptree

import (
	"fmt"

	"github.com/krun-tools/stepcraft/pkg/idwrap"
	"github.com/krun-tools/stepcraft/pkg/model/mstep"
	"github.com/krun-tools/stepcraft/pkg/model/mvar"
)

// InsertOption tweaks a freshly built node before it enters the tree.
type InsertOption func(*StepNode)

func WithName(name string) InsertOption {
	return func(n *StepNode) { n.Name = name }
}

func WithConfig(fn func(*Config)) InsertOption {
	return func(n *StepNode) { fn(&n.Config) }
}

// Insert builds a node of kind with registry defaults and places it under
// parentID (zero value = root level) at index; a negative index appends.
// Fails without mutating anything when the parent is not a container.
func (t *Tree) Insert(parentID idwrap.IDWrap, kind StepKind, index int, opts ...InsertOption) (*StepNode, error) {
	if _, ok := registry[kind]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}

	n := NewNode(kind)
	for _, opt := range opts {
		opt(n)
	}

	if parentID.IsZero() {
		t.roots = insertAt(t.roots, n, index)
	} else {
		parent, err := t.FindByID(parentID)
		if err != nil {
			return nil, err
		}
		if !parent.IsContainer() {
			return nil, fmt.Errorf("%w: %s", ErrNotAContainer, parent.Kind)
		}
		parent.Children = insertAt(parent.Children, n, index)
		t.expanded[parent.ID] = true
	}

	if n.IsContainer() {
		t.expanded[n.ID] = true
	}
	t.selected = n.ID
	return n, nil
}

func insertAt(list []*StepNode, n *StepNode, index int) []*StepNode {
	if index < 0 || index > len(list) {
		return append(list, n)
	}
	list = append(list, nil)
	copy(list[index+1:], list[index:])
	list[index] = n
	return list
}

// Delete removes the node and its whole subtree, drops per-node UI state for
// every removed id, and moves selection to the first root when the selected
// node went away.
func (t *Tree) Delete(id idwrap.IDWrap) error {
	parent, siblings, index, err := t.siblingsOf(id)
	if err != nil {
		return err
	}
	removed := siblings[index]
	rest := append(siblings[:index:index], siblings[index+1:]...)
	if parent == nil {
		t.roots = rest
	} else {
		parent.Children = rest
	}

	removedIDs := flattenPreorder([]*StepNode{removed}, nil)
	selectionGone := false
	for _, n := range removedIDs {
		delete(t.expanded, n.ID)
		if n.ID == t.selected {
			selectionGone = true
		}
	}
	if selectionGone {
		if len(t.roots) > 0 {
			t.selected = t.roots[0].ID
		} else {
			t.selected = idwrap.IDWrap{}
		}
	}
	return nil
}

// Copy deep-clones the subtree at id, gives every clone a fresh id and no
// backend identity (so the whole clone saves as new rows), inserts the clone
// right after the source among its siblings, and selects it.
func (t *Tree) Copy(id idwrap.IDWrap) (*StepNode, error) {
	parent, siblings, index, err := t.siblingsOf(id)
	if err != nil {
		return nil, err
	}
	clone := cloneSubtree(siblings[index])
	if parent == nil {
		t.roots = insertAt(t.roots, clone, index+1)
	} else {
		parent.Children = insertAt(parent.Children, clone, index+1)
	}
	for _, n := range flattenPreorder([]*StepNode{clone}, nil) {
		if n.IsContainer() {
			t.expanded[n.ID] = true
		}
	}
	t.selected = clone.ID
	return clone, nil
}

func cloneSubtree(src *StepNode) *StepNode {
	clone := &StepNode{
		ID:     idwrap.NewNow(),
		Kind:   src.Kind,
		Name:   src.Name,
		Desc:   src.Desc,
		Config: cloneConfig(src.Config),
	}
	if src.Original != nil {
		orig := *src.Original
		clone.Original = &orig
		clone.StripIdentity()
	}
	// Children presence follows the registry at every level, regardless of
	// what the source carried.
	if clone.IsContainer() {
		clone.Children = make([]*StepNode, 0, len(src.Children))
		for _, child := range src.Children {
			clone.Children = append(clone.Children, cloneSubtree(child))
		}
	}
	return clone
}

func cloneConfig(c Config) Config {
	var out Config
	switch {
	case c.HTTP != nil:
		cfg := *c.HTTP
		cfg.Headers = mvar.CloneList(c.HTTP.Headers)
		cfg.Params = mvar.CloneList(c.HTTP.Params)
		cfg.FormData = mvar.CloneList(c.HTTP.FormData)
		cfg.FormFiles = mvar.CloneList(c.HTTP.FormFiles)
		cfg.URLEncoded = mvar.CloneList(c.HTTP.URLEncoded)
		cfg.Defined = mvar.CloneList(c.HTTP.Defined)
		cfg.Extracts = append(cfg.Extracts[:0:0], c.HTTP.Extracts...)
		cfg.Asserts = append(cfg.Asserts[:0:0], c.HTTP.Asserts...)
		out.HTTP = &cfg
	case c.Loop != nil:
		cfg := *c.Loop
		out.Loop = &cfg
	case c.Code != nil:
		cfg := *c.Code
		cfg.Extracts = append(cfg.Extracts[:0:0], c.Code.Extracts...)
		out.Code = &cfg
	case c.If != nil:
		cfg := *c.If
		out.If = &cfg
	case c.Wait != nil:
		cfg := *c.Wait
		out.Wait = &cfg
	case c.Database != nil:
		cfg := *c.Database
		cfg.Extracts = append(cfg.Extracts[:0:0], c.Database.Extracts...)
		out.Database = &cfg
	case c.UserVars != nil:
		cfg := *c.UserVars
		cfg.Variables = mvar.CloneList(c.UserVars.Variables)
		out.UserVars = &cfg
	case c.Quote != nil:
		cfg := *c.Quote
		cfg.Preview = nil // previews are refetched, never duplicated
		out.Quote = &cfg
	}
	return out
}

// Move relocates the node according to the drop. The node may not land
// inside itself or its own subtree; such drops are rejected before any
// mutation happens.
func (t *Tree) Move(id idwrap.IDWrap, drop DropSpec) error {
	node, err := t.FindByID(id)
	if err != nil {
		return err
	}

	// Cycle guard. The target (or the target's whole chain up to the root)
	// must not pass through the dragged node.
	if !drop.TargetID.IsZero() {
		if drop.TargetID == id {
			return ErrMoveIntoSelf
		}
		if isDescendant(node, drop.TargetID) {
			return ErrMoveIntoSelf
		}
	}

	switch drop.Position {
	case DropInside:
		target, err := t.FindByID(drop.TargetID)
		if err != nil {
			return err
		}
		if !target.IsContainer() {
			return fmt.Errorf("%w: %s", ErrNotAContainer, target.Kind)
		}
		if err := t.detach(id); err != nil {
			return err
		}
		target.Children = append(target.Children, node)
		t.expanded[target.ID] = true

	case DropBefore, DropAfter:
		// Resolve the slot before detaching, then correct for the shift a
		// same-list removal causes.
		targetParent, _, targetIndex, err := t.siblingsOf(drop.TargetID)
		if err != nil {
			return err
		}
		srcParent, _, srcIndex, err := t.siblingsOf(id)
		if err != nil {
			return err
		}
		insertIndex := targetIndex
		if drop.Position == DropAfter {
			insertIndex++
		}
		if sameParent(srcParent, targetParent) && srcIndex < insertIndex {
			insertIndex--
		}
		if err := t.detach(id); err != nil {
			return err
		}
		if targetParent == nil {
			t.roots = insertAt(t.roots, node, insertIndex)
		} else {
			targetParent.Children = insertAt(targetParent.Children, node, insertIndex)
		}

	case DropRootEnd:
		if err := t.detach(id); err != nil {
			return err
		}
		t.roots = append(t.roots, node)

	default:
		return fmt.Errorf("unsupported drop position %d", drop.Position)
	}

	t.selected = id
	return nil
}

// detach removes the node from its current slot without touching its
// subtree or UI state.
func (t *Tree) detach(id idwrap.IDWrap) error {
	parent, siblings, index, err := t.siblingsOf(id)
	if err != nil {
		return err
	}
	rest := append(siblings[:index:index], siblings[index+1:]...)
	if parent == nil {
		t.roots = rest
	} else {
		parent.Children = rest
	}
	return nil
}

func sameParent(a, b *StepNode) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}

// ApplySaveDetail merges the backend's success_detail rows back into the
// tree by positional correspondence with the submitted preorder, so the next
// save treats freshly created rows as updates.
func (t *Tree) ApplySaveDetail(details []mstep.SaveDetail) error {
	flat := t.FlattenPreorder()
	if len(details) != len(flat) {
		return fmt.Errorf("save detail count %d does not match tree size %d", len(details), len(flat))
	}
	for i, n := range flat {
		d := details[i]
		if n.Original == nil {
			n.Original = &mstep.Step{}
		}
		n.Original.StepID = d.StepID
		n.Original.StepCode = d.StepCode
		n.Original.StepNo = d.StepNo
	}
	return nil
}
