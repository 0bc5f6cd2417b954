package providertree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS5BulkPopulationOutOfOrder(t *testing.T) {
	t.Parallel()

	tree := New()
	err := tree.Populate([]ProviderDescriptor{
		{Identifier: "c", Name: "c", ParentIdentifier: strp("b")},
		{Identifier: "a", Name: "a"},
		{Identifier: "b", Name: "b", ParentIdentifier: strp("a")},
	})
	require.NoError(t, err)

	all, err := tree.AllIdentifiers()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, keys(all))

	snap, err := tree.Data("c")
	require.NoError(t, err)
	require.NotNil(t, snap.ParentIdentifier)
	assert.Equal(t, "b", *snap.ParentIdentifier)
}

func TestS6BulkPopulationOrphan(t *testing.T) {
	t.Parallel()

	tree := New()
	err := tree.Populate([]ProviderDescriptor{
		{Identifier: "x", Name: "x", ParentIdentifier: strp("missing")},
	})
	require.Error(t, err)

	var oiErr *OrphanInputError
	require.ErrorAs(t, err, &oiErr)
	assert.True(t, errors.Is(err, ErrOrphanInput))
	assert.Equal(t, []string{"missing"}, oiErr.MissingParents)

	assert.False(t, tree.Exists("x"))
}

func TestS7BulkReplacementWipesAttributes(t *testing.T) {
	t.Parallel()

	tree := New()
	_, err := tree.NewRoot("cn1", "u1", nil)
	require.NoError(t, err)
	_, err = tree.UpdateTraits("u1", []string{"T1"}, nil)
	require.NoError(t, err)

	err = tree.Populate([]ProviderDescriptor{
		{Identifier: "u1", Name: "cn1"},
	})
	require.NoError(t, err)

	snap, err := tree.Data("u1")
	require.NoError(t, err)
	assert.Empty(t, snap.Traits)
	assert.Empty(t, snap.Inventory)
	assert.Empty(t, snap.Aggregates)
}

func TestBulkPopulationEmptyInputIsNoOp(t *testing.T) {
	t.Parallel()

	tree := New()
	_, err := tree.NewRoot("cn1", "u1", nil)
	require.NoError(t, err)

	require.NoError(t, tree.Populate(nil))
	require.NoError(t, tree.Populate([]ProviderDescriptor{}))

	all, err := tree.AllIdentifiers()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1"}, keys(all))
}

func TestBulkPopulationDuplicateIdentifiersLastWins(t *testing.T) {
	t.Parallel()

	tree := New()
	err := tree.Populate([]ProviderDescriptor{
		{Identifier: "a", Name: "first"},
		{Identifier: "a", Name: "second"},
	})
	require.NoError(t, err)

	snap, err := tree.Data("a")
	require.NoError(t, err)
	assert.Equal(t, "second", snap.Name)
}

func TestBulkPopulationAtomicOnOrphanFailure(t *testing.T) {
	t.Parallel()

	tree := New()
	_, err := tree.NewRoot("cn1", "u1", nil)
	require.NoError(t, err)
	_, err = tree.UpdateTraits("u1", []string{"T1"}, nil)
	require.NoError(t, err)

	before, err := tree.Data("u1")
	require.NoError(t, err)

	err = tree.Populate([]ProviderDescriptor{
		{Identifier: "u1", Name: "cn1"},
		{Identifier: "y", Name: "y", ParentIdentifier: strp("missing")},
	})
	require.Error(t, err)

	after, err := tree.Data("u1")
	require.NoError(t, err)
	assert.Equal(t, before, after, "a failed bulk population must leave the tree exactly as it was")
	assert.False(t, tree.Exists("y"))
}

func TestBulkPopulationAllowsParentDeclaredLaterInBatch(t *testing.T) {
	t.Parallel()

	tree := New()
	err := tree.Populate([]ProviderDescriptor{
		{Identifier: "child", Name: "child", ParentIdentifier: strp("parent")},
		{Identifier: "parent", Name: "parent"},
	})
	require.NoError(t, err)

	snap, err := tree.Data("child")
	require.NoError(t, err)
	assert.Equal(t, "parent", *snap.ParentIdentifier)
}
