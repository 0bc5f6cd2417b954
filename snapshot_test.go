package providertree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestSnapshotCausalIndependence(t *testing.T) {
	t.Parallel()

	tree := New()
	g := int64(5)
	id, err := tree.NewRoot("cn1", "u1", &g)
	require.NoError(t, err)

	_, err = tree.UpdateInventory(id, map[string]map[string]interface{}{
		"VCPU": {"total": 8},
	}, nil)
	require.NoError(t, err)
	_, err = tree.UpdateTraits(id, []string{"HW_CPU_X86_AVX2"}, nil)
	require.NoError(t, err)

	first, err := tree.Data(id)
	require.NoError(t, err)

	// Mutate everything the first snapshot exposes.
	first.Inventory["VCPU"]["total"] = 999
	first.Inventory["MEMORY_MB"] = map[string]interface{}{"total": 1}
	first.Traits[0] = "MUTATED"
	*first.Generation = 999

	second, err := tree.Data(id)
	require.NoError(t, err)

	if diff := cmp.Diff(map[string]map[string]interface{}{"VCPU": {"total": 8}}, second.Inventory); diff != "" {
		t.Fatalf("second snapshot's inventory was affected by mutating the first (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"HW_CPU_X86_AVX2"}, second.Traits)
	require.Equal(t, int64(5), *second.Generation)
}

func TestSnapshotIsRoot(t *testing.T) {
	t.Parallel()

	tree := New()
	rootID, err := tree.NewRoot("cn1", "u1", nil)
	require.NoError(t, err)
	childID, err := tree.NewChild("nic0", rootID, nil, nil)
	require.NoError(t, err)

	rootSnap, err := tree.Data(rootID)
	require.NoError(t, err)
	require.True(t, rootSnap.IsRoot())

	childSnap, err := tree.Data(childID)
	require.NoError(t, err)
	require.False(t, childSnap.IsRoot())
	require.Equal(t, rootID, *childSnap.ParentIdentifier)
}
