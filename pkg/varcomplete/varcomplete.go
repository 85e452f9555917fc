// Package varcomplete builds the variable completion list for a step's
// editor fields. Candidates come from the step's visible scope, plus dotted
// sub-paths for variables whose draft values are objects or arrays.
package varcomplete

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/krun-tools/stepcraft/pkg/fuzzyfinder"
	"github.com/krun-tools/stepcraft/pkg/idwrap"
	"github.com/krun-tools/stepcraft/pkg/steptree"
)

type Kind int

const (
	KindValue Kind = iota
	KindMap
	KindArray
)

// Item is one completion entry.
type Item struct {
	// Path is the reference path, e.g. "token" or "resp.data[0].id".
	Path string
	Kind Kind
	// InsertText is what the editor inserts, i.e. "${resp.data[0].id}".
	InsertText string
}

// Completer indexes candidate paths for one step.
type Completer struct {
	paths map[string]Kind
	order []string
}

// ForStep collects every variable name visible to the step with the given
// id, in scope order.
func ForStep(t *steptree.Tree, id idwrap.IDWrap) (*Completer, error) {
	names, err := t.AvailableVariables(id)
	if err != nil {
		return nil, err
	}
	c := &Completer{paths: make(map[string]Kind, len(names))}
	for _, name := range names {
		c.add(name, KindValue)
	}
	return c, nil
}

// AddValue registers a variable together with a sample value, expanding
// object and array values into dotted sub-paths so "resp.data[0].id" can be
// completed from a captured response.
func (c *Completer) AddValue(name string, value any) {
	c.addValue(name, value)
}

func (c *Completer) add(path string, kind Kind) {
	if _, seen := c.paths[path]; !seen {
		c.order = append(c.order, path)
	}
	c.paths[path] = kind
}

func (c *Completer) addValue(path string, value any) {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			c.add(path, KindValue)
			return
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		c.add(path, KindMap)
		iter := v.MapRange()
		for iter.Next() {
			key := fmt.Sprintf("%v", iter.Key().Interface())
			if !iter.Value().CanInterface() {
				continue
			}
			c.addValue(path+"."+key, iter.Value().Interface())
		}
	case reflect.Slice, reflect.Array:
		c.add(path, KindArray)
		for i := 0; i < v.Len(); i++ {
			elem := v.Index(i)
			if !elem.CanInterface() {
				continue
			}
			c.addValue(path+"["+strconv.Itoa(i)+"]", elem.Interface())
		}
	default:
		c.add(path, KindValue)
	}
}

// Complete ranks the indexed paths against the typed query and returns
// ready-to-insert items, best match first.
func (c *Completer) Complete(query string) []Item {
	ranks := fuzzyfinder.RankFind(c.order, query)
	items := make([]Item, len(ranks))
	for i, r := range ranks {
		items[i] = Item{
			Path:       r.Target,
			Kind:       c.paths[r.Target],
			InsertText: "${" + r.Target + "}",
		}
	}
	return items
}

// Paths returns every indexed path in insertion order.
func (c *Completer) Paths() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}
