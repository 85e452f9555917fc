package steptree

import (
	"strings"

	"github.com/krun-tools/stepcraft/pkg/idwrap"
	"github.com/krun-tools/stepcraft/pkg/model/mextract"
	"github.com/krun-tools/stepcraft/pkg/model/mvar"
)

// AvailableVariables lists the variable names visible to node id: the
// case-level session variables first, then everything declared by nodes
// strictly before it in preorder, from the three declared sources (session
// variables, defined variables, extraction rules), deduped keeping
// first-seen order. The node's own declarations are not visible to itself;
// a container contributes nothing to its children until they run.
func (t *Tree) AvailableVariables(id idwrap.IDWrap) ([]string, error) {
	flat := t.FlattenPreorder()
	end := -1
	for i, n := range flat {
		if n.ID == id {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, ErrNodeNotFound
	}

	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}

	for _, name := range mvar.Keys(t.sessionVars) {
		add(name)
	}
	for _, n := range flat[:end] {
		for _, name := range declaredVariables(n) {
			add(name)
		}
	}
	return names, nil
}

// declaredVariables collects the names one node contributes once it has
// executed. Live config wins over the stale backend record for the fields
// the editor owns; the rest comes from Original.
func declaredVariables(n *StepNode) []string {
	var names []string

	if n.Kind == KindUserVars && n.Config.UserVars != nil {
		names = append(names, mvar.Keys(n.Config.UserVars.Variables)...)
	} else if n.Original != nil {
		names = append(names, mvar.Keys(n.Original.SessionVariables)...)
	}

	switch {
	case n.Config.HTTP != nil:
		names = append(names, mvar.Keys(n.Config.HTTP.Defined)...)
		names = append(names, mextract.Names(n.Config.HTTP.Extracts)...)
	case n.Config.Code != nil:
		names = append(names, mextract.Names(n.Config.Code.Extracts)...)
	case n.Config.Database != nil:
		names = append(names, mextract.Names(n.Config.Database.Extracts)...)
	default:
		if n.Original != nil {
			names = append(names, mvar.Keys(n.Original.DefinedVariables)...)
			names = append(names, mextract.Names(mextract.DecodeList(n.Original.ExtractVariables))...)
		}
	}
	return names
}
