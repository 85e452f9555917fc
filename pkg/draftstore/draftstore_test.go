package draftstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krun-tools/stepcraft/pkg/idwrap"
	"github.com/krun-tools/stepcraft/pkg/model/mcase"
	"github.com/krun-tools/stepcraft/pkg/steptree"
	"github.com/krun-tools/stepcraft/pkg/translate/tstep"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "drafts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testPayload(t *testing.T, name string) *tstep.SavePayload {
	t.Helper()
	tree := steptree.NewTree(nil)
	_, err := tree.Insert(idwrap.IDWrap{}, steptree.KindHTTP, -1, steptree.WithName("登录"))
	require.NoError(t, err)

	payload, err := tstep.BuildSavePayload(tree, &mcase.Case{
		CaseName:    name,
		CaseProject: 1,
		CaseTags:    []string{"回归"},
		CaseAttr:    "正常",
		CaseType:    mcase.TypeNormalCase,
	})
	require.NoError(t, err)
	return payload
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "C1", testPayload(t, "下单流程")))

	draft, err := store.Load(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, "C1", draft.CaseCode)
	assert.Equal(t, "下单流程", draft.CaseName)
	require.NotNil(t, draft.Payload)
	require.Len(t, draft.Payload.Steps, 1)
	assert.Equal(t, "登录", draft.Payload.Steps[0].StepName)
	assert.False(t, draft.UpdatedAt.IsZero())
}

func TestSaveUpserts(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "C1", testPayload(t, "旧名字")))
	require.NoError(t, store.Save(ctx, "C1", testPayload(t, "新名字")))

	draft, err := store.Load(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, "新名字", draft.CaseName)

	drafts, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, drafts, 1)
}

func TestLoadMissing(t *testing.T) {
	store := testStore(t)
	_, err := store.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "C1", testPayload(t, "x")))
	require.NoError(t, store.Delete(ctx, "C1"))
	require.NoError(t, store.Delete(ctx, "C1"))

	_, err := store.Load(ctx, "C1")
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestListWithoutPayload(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "C1", testPayload(t, "甲")))
	require.NoError(t, store.Save(ctx, "C2", testPayload(t, "乙")))

	drafts, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	for _, d := range drafts {
		assert.Nil(t, d.Payload, "list omits the heavy column")
	}
}
