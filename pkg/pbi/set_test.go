package pbi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apibeacon/beacon/pkg/pbi"
)

func TestSetAddDeduplicatesByKey(t *testing.T) {
	t.Parallel()

	first := &pbi.User{Email: "a@example.com", AccessRight: "Viewer"}
	second := &pbi.User{Email: "a@example.com", AccessRight: "Admin"}

	set := pbi.NewSet[string, *pbi.User](first, second)

	require.Equal(t, 1, set.Len())

	stored, ok := set.Get("a@example.com")
	require.True(t, ok)
	// Later snapshot wins.
	assert.Equal(t, "Admin", stored.AccessRight)
}

func TestSetContains(t *testing.T) {
	t.Parallel()

	workspace := &pbi.Workspace{ID: "ws-1", Name: "Sales"}
	set := pbi.NewSet[string, *pbi.Workspace](workspace)

	// Identity is the key alone; field differences do not matter.
	assert.True(t, set.Contains(&pbi.Workspace{ID: "ws-1", Name: "Renamed"}))
	assert.False(t, set.Contains(&pbi.Workspace{ID: "ws-2", Name: "Sales"}))
}

func TestSetValues(t *testing.T) {
	t.Parallel()

	set := pbi.NewSet[string, *pbi.Dashboard](
		&pbi.Dashboard{ID: "d-1"},
		&pbi.Dashboard{ID: "d-2"},
	)

	values := set.Values()
	require.Len(t, values, 2)

	ids := []string{values[0].ID, values[1].ID}
	assert.ElementsMatch(t, []string{"d-1", "d-2"}, ids)
}

func TestSetCompositeKey(t *testing.T) {
	t.Parallel()

	// Reports with the same id but different datasets are distinct resources.
	set := pbi.NewSet[pbi.ReportKey, *pbi.Report](
		&pbi.Report{ID: "r-1", DatasetID: "ds-1"},
		&pbi.Report{ID: "r-1", DatasetID: "ds-2"},
	)

	assert.Equal(t, 2, set.Len())

	_, ok := set.Get(pbi.ReportKey{DatasetID: "ds-1", ID: "r-1"})
	assert.True(t, ok)
}

func TestEmptySet(t *testing.T) {
	t.Parallel()

	set := pbi.NewSet[string, *pbi.App]()

	assert.Equal(t, 0, set.Len())
	assert.Empty(t, set.Values())

	_, ok := set.Get("missing")
	assert.False(t, ok)
}
