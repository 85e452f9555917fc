package steptree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krun-tools/stepcraft/pkg/idwrap"
	"github.com/krun-tools/stepcraft/pkg/model/mstep"
	"github.com/krun-tools/stepcraft/pkg/model/mvar"
)

func zeroID() idwrap.IDWrap { return idwrap.IDWrap{} }

func TestInsertRootAndChild(t *testing.T) {
	tree := NewTree(nil)

	root, err := tree.Insert(zeroID(), KindLoop, -1, WithName("外层循环"))
	require.NoError(t, err)
	require.NotNil(t, root.Children, "container must own a child list")
	assert.Empty(t, root.Children)
	assert.True(t, tree.Expanded(root.ID), "new container starts expanded")
	assert.Equal(t, root.ID, tree.Selected())

	child, err := tree.Insert(root.ID, KindHTTP, -1, WithName("登录"))
	require.NoError(t, err)
	assert.Nil(t, child.Children, "non-container must not own a child list")
	assert.Len(t, root.Children, 1)
	assert.Equal(t, child.ID, tree.Selected())
}

func TestInsertIntoNonContainerFails(t *testing.T) {
	tree := NewTree(nil)
	httpNode, err := tree.Insert(zeroID(), KindHTTP, -1)
	require.NoError(t, err)

	_, err = tree.Insert(httpNode.ID, KindWait, -1)
	require.ErrorIs(t, err, ErrNotAContainer)
	assert.Len(t, tree.Roots(), 1, "failed insert must not mutate the tree")
}

func TestInsertAtIndex(t *testing.T) {
	tree := NewTree(nil)
	a, _ := tree.Insert(zeroID(), KindHTTP, -1, WithName("a"))
	c, _ := tree.Insert(zeroID(), KindHTTP, -1, WithName("c"))
	b, err := tree.Insert(zeroID(), KindHTTP, 1, WithName("b"))
	require.NoError(t, err)

	roots := tree.Roots()
	require.Len(t, roots, 3)
	assert.Equal(t, a.ID, roots[0].ID)
	assert.Equal(t, b.ID, roots[1].ID)
	assert.Equal(t, c.ID, roots[2].ID)
}

func TestDeleteCascadesUIState(t *testing.T) {
	tree := NewTree(nil)
	keep, _ := tree.Insert(zeroID(), KindHTTP, -1, WithName("保留"))
	loop, _ := tree.Insert(zeroID(), KindLoop, -1)
	inner, _ := tree.Insert(loop.ID, KindIf, -1)
	leaf, _ := tree.Insert(inner.ID, KindHTTP, -1)
	require.NoError(t, tree.Select(leaf.ID))

	require.NoError(t, tree.Delete(loop.ID))

	assert.Len(t, tree.Roots(), 1)
	assert.False(t, tree.Expanded(loop.ID))
	assert.False(t, tree.Expanded(inner.ID))
	assert.Equal(t, keep.ID, tree.Selected(), "selection falls back to the first root")

	_, err := tree.FindByID(leaf.ID)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestDeleteLastRootClearsSelection(t *testing.T) {
	tree := NewTree(nil)
	only, _ := tree.Insert(zeroID(), KindHTTP, -1)
	require.NoError(t, tree.Delete(only.ID))
	assert.True(t, tree.Selected().IsZero())
}

func TestCopyProducesIndependentUnpersistedClone(t *testing.T) {
	tree := NewTree(nil)
	loop, _ := tree.Insert(zeroID(), KindLoop, -1, WithName("循环"))
	child, _ := tree.Insert(loop.ID, KindHTTP, -1, WithName("请求"))
	child.Config.HTTP.Headers = []mvar.KeyValue{{Key: "Token", Value: "abc"}}
	child.Original = &mstep.Step{StepID: 42, StepCode: "1700000000-AABB"}

	clone, err := tree.Copy(loop.ID)
	require.NoError(t, err)

	require.Len(t, tree.Roots(), 2)
	assert.Equal(t, clone.ID, tree.Roots()[1].ID, "clone lands right after the source")
	assert.Equal(t, clone.ID, tree.Selected())
	assert.NotEqual(t, loop.ID, clone.ID)

	require.Len(t, clone.Children, 1)
	cloneChild := clone.Children[0]
	assert.NotEqual(t, child.ID, cloneChild.ID)
	persisted, err := cloneChild.Persisted()
	require.NoError(t, err)
	assert.False(t, persisted, "clone must save as new rows")

	// Mutating the clone's config must not leak into the source.
	cloneChild.Config.HTTP.Headers[0].Value = "changed"
	assert.Equal(t, "abc", child.Config.HTTP.Headers[0].Value)
}

func TestCopyKeepsContainerFieldOnEmptyContainer(t *testing.T) {
	tree := NewTree(nil)
	ifNode, _ := tree.Insert(zeroID(), KindIf, -1)

	clone, err := tree.Copy(ifNode.ID)
	require.NoError(t, err)
	require.NotNil(t, clone.Children)
	assert.Empty(t, clone.Children)
}

func TestStepNumbersArePreorder(t *testing.T) {
	tree := NewTree(nil)
	first, _ := tree.Insert(zeroID(), KindHTTP, -1)
	loop, _ := tree.Insert(zeroID(), KindLoop, -1)
	inner, _ := tree.Insert(loop.ID, KindCode, -1)
	innerTwo, _ := tree.Insert(loop.ID, KindWait, -1)
	last, _ := tree.Insert(zeroID(), KindHTTP, -1)

	numbers := tree.AssignStepNumbers()
	require.Len(t, numbers, 5)
	assert.Equal(t, 1, numbers[first.ID])
	assert.Equal(t, 2, numbers[loop.ID])
	assert.Equal(t, 3, numbers[inner.ID])
	assert.Equal(t, 4, numbers[innerTwo.ID])
	assert.Equal(t, 5, numbers[last.ID])
}

func TestPersistedBothOrNeither(t *testing.T) {
	n := NewNode(KindHTTP)

	ok, err := n.Persisted()
	require.NoError(t, err)
	assert.False(t, ok)

	n.Original = &mstep.Step{StepID: 7, StepCode: "1700000000-FF00"}
	ok, err = n.Persisted()
	require.NoError(t, err)
	assert.True(t, ok)

	n.Original.StepCode = ""
	_, err = n.Persisted()
	require.ErrorIs(t, err, ErrHalfPersisted)

	n.StripIdentity()
	ok, err = n.Persisted()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestApplySaveDetailMergesByPosition(t *testing.T) {
	tree := NewTree(nil)
	root, _ := tree.Insert(zeroID(), KindLoop, -1)
	child, _ := tree.Insert(root.ID, KindHTTP, -1)

	details := []mstep.SaveDetail{
		{StepID: 10, StepNo: 1, StepCode: "1700000001-AA", Created: true},
		{StepID: 11, StepNo: 2, StepCode: "1700000001-BB", Created: true},
	}
	require.NoError(t, tree.ApplySaveDetail(details))

	require.NotNil(t, root.Original)
	assert.Equal(t, int64(10), root.Original.StepID)
	assert.Equal(t, "1700000001-AA", root.Original.StepCode)
	assert.Equal(t, int64(11), child.Original.StepID)

	err := tree.ApplySaveDetail(details[:1])
	if err == nil {
		t.Fatal("mismatched detail count must fail")
	}
}

func TestDisplayNameEncodesLoopMode(t *testing.T) {
	n := NewNode(KindLoop)
	n.Name = "重试"
	assert.Equal(t, "重试("+mstep.LoopModeCount+")", n.DisplayName())

	h := NewNode(KindHTTP)
	h.Name = "登录"
	assert.Equal(t, "登录", h.DisplayName())
}

func TestRegistryContainers(t *testing.T) {
	for _, kind := range Kinds() {
		want := kind == KindLoop || kind == KindIf
		if AllowsChildren(kind) != want {
			t.Fatalf("kind %s: AllowsChildren = %v, want %v", kind, AllowsChildren(kind), want)
		}
	}
}

func TestKindFromLabelFallsBackToCode(t *testing.T) {
	assert.Equal(t, KindHTTP, KindFromLabel(mstep.TypeHTTP))
	assert.Equal(t, KindQuote, KindFromLabel(mstep.TypeQuote))
	assert.Equal(t, KindCode, KindFromLabel("TCP步骤"))
}

func TestValidationErrorUnwraps(t *testing.T) {
	verr := &ValidationError{StepName: "登录", Field: "请求体", Message: "不是合法的JSON文本"}
	assert.True(t, errors.Is(verr, ErrValidation))
	assert.Equal(t, "步骤[登录] 请求体: 不是合法的JSON文本", verr.Error())
}
