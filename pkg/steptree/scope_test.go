package steptree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krun-tools/stepcraft/pkg/model/mextract"
	"github.com/krun-tools/stepcraft/pkg/model/mvar"
)

// Scope layout under test:
//
//	步骤1 (vars: a)
//	循环
//	  步骤2 (extracts: b)
//	  步骤3  <- editing here
//	步骤4 (vars: c)
func TestAvailableVariablesPreorderPrefix(t *testing.T) {
	tree := NewTree(nil)

	s1, err := tree.Insert(zeroID(), KindUserVars, -1, WithName("步骤1"))
	require.NoError(t, err)
	s1.Config.UserVars.Variables = []mvar.KeyValue{{Key: "a", Value: "1"}}

	loop, err := tree.Insert(zeroID(), KindLoop, -1, WithName("循环"))
	require.NoError(t, err)

	s2, err := tree.Insert(loop.ID, KindHTTP, -1, WithName("步骤2"))
	require.NoError(t, err)
	s2.Config.HTTP.Extracts = []mextract.Extract{{Name: "b", Expr: "$.data.token"}}

	s3, err := tree.Insert(loop.ID, KindHTTP, -1, WithName("步骤3"))
	require.NoError(t, err)

	s4, err := tree.Insert(zeroID(), KindUserVars, -1, WithName("步骤4"))
	require.NoError(t, err)
	s4.Config.UserVars.Variables = []mvar.KeyValue{{Key: "c", Value: "3"}}

	names, err := tree.AvailableVariables(s3.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names, "later siblings and self contribute nothing")

	names, err = tree.AvailableVariables(s4.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	names, err = tree.AvailableVariables(s1.ID)
	require.NoError(t, err)
	assert.Empty(t, names, "first node sees nothing")
}

func TestAvailableVariablesSeedsCaseSessionVariables(t *testing.T) {
	tree := NewTree(nil)
	tree.SetSessionVariables([]mvar.KeyValue{
		{Key: "base_url", Value: "http://api.local"},
		{Key: "token", Value: "xyz"},
		{Key: "  ", Value: "blank keys are skipped"},
	})

	first, err := tree.Insert(zeroID(), KindHTTP, -1, WithName("步骤1"))
	require.NoError(t, err)

	second, err := tree.Insert(zeroID(), KindUserVars, -1, WithName("步骤2"))
	require.NoError(t, err)
	second.Config.UserVars.Variables = []mvar.KeyValue{{Key: "token", Value: "dup"}, {Key: "a", Value: "1"}}

	third, err := tree.Insert(zeroID(), KindHTTP, -1, WithName("步骤3"))
	require.NoError(t, err)

	names, err := tree.AvailableVariables(first.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"base_url", "token"}, names, "case variables precede every step")

	names, err = tree.AvailableVariables(third.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"base_url", "token", "a"}, names, "case declaration wins the dedupe")
}

func TestAvailableVariablesDedupesFirstSeen(t *testing.T) {
	tree := NewTree(nil)

	first, _ := tree.Insert(zeroID(), KindUserVars, -1)
	first.Config.UserVars.Variables = []mvar.KeyValue{
		{Key: "token", Value: "old"},
		{Key: " ", Value: "blank keys are skipped"},
	}
	second, _ := tree.Insert(zeroID(), KindHTTP, -1)
	second.Config.HTTP.Defined = []mvar.KeyValue{{Key: "token", Value: "new"}, {Key: "host", Value: "h"}}
	third, _ := tree.Insert(zeroID(), KindHTTP, -1)

	names, err := tree.AvailableVariables(third.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"token", "host"}, names)
}

func TestAvailableVariablesUnknownNode(t *testing.T) {
	tree := NewTree(nil)
	_, err := tree.AvailableVariables(zeroID())
	assert.ErrorIs(t, err, ErrNodeNotFound)
}
