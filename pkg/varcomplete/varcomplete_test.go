package varcomplete

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krun-tools/stepcraft/pkg/idwrap"
	"github.com/krun-tools/stepcraft/pkg/model/mextract"
	"github.com/krun-tools/stepcraft/pkg/model/mvar"
	"github.com/krun-tools/stepcraft/pkg/steptree"
)

func TestForStepUsesScope(t *testing.T) {
	tree := steptree.NewTree(nil)
	vars, err := tree.Insert(idwrap.IDWrap{}, steptree.KindUserVars, -1)
	require.NoError(t, err)
	vars.Config.UserVars.Variables = []mvar.KeyValue{{Key: "host", Value: "h"}}

	login, err := tree.Insert(idwrap.IDWrap{}, steptree.KindHTTP, -1)
	require.NoError(t, err)
	login.Config.HTTP.Extracts = []mextract.Extract{{Name: "token"}}

	editing, err := tree.Insert(idwrap.IDWrap{}, steptree.KindHTTP, -1)
	require.NoError(t, err)

	c, err := ForStep(tree, editing.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"host", "token"}, c.Paths())

	_, err = ForStep(tree, idwrap.NewNow())
	assert.Error(t, err)
}

func TestForStepIncludesCaseSessionVariables(t *testing.T) {
	tree := steptree.NewTree(nil)
	tree.SetSessionVariables([]mvar.KeyValue{{Key: "base_url", Value: "http://api.local"}})

	editing, err := tree.Insert(idwrap.IDWrap{}, steptree.KindHTTP, -1)
	require.NoError(t, err)

	c, err := ForStep(tree, editing.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"base_url"}, c.Paths(), "first step already sees the case variables")
}

func TestAddValueExpandsPaths(t *testing.T) {
	c := &Completer{paths: map[string]Kind{}}
	c.AddValue("resp", map[string]any{
		"data": []any{
			map[string]any{"id": 1},
		},
		"code": 200,
	})

	paths := map[string]bool{}
	for _, p := range c.Paths() {
		paths[p] = true
	}
	assert.True(t, paths["resp"])
	assert.True(t, paths["resp.data"])
	assert.True(t, paths["resp.data[0]"])
	assert.True(t, paths["resp.data[0].id"])
	assert.True(t, paths["resp.code"])
}

func TestCompleteRanksAndWraps(t *testing.T) {
	tree := steptree.NewTree(nil)
	vars, err := tree.Insert(idwrap.IDWrap{}, steptree.KindUserVars, -1)
	require.NoError(t, err)
	vars.Config.UserVars.Variables = []mvar.KeyValue{
		{Key: "token"},
		{Key: "host"},
		{Key: "tokenExpiry"},
	}
	editing, err := tree.Insert(idwrap.IDWrap{}, steptree.KindHTTP, -1)
	require.NoError(t, err)

	c, err := ForStep(tree, editing.ID)
	require.NoError(t, err)

	items := c.Complete("token")
	require.NotEmpty(t, items)
	assert.Equal(t, "token", items[0].Path)
	assert.Equal(t, "${token}", items[0].InsertText)
	for _, it := range items {
		assert.NotEqual(t, "host", it.Path)
	}

	all := c.Complete("")
	assert.Len(t, all, 3, "empty query lists the whole scope")
	assert.Equal(t, "token", all[0].Path, "scope order survives an empty query")
}
