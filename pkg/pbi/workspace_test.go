package pbi_test

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apibeacon/beacon/pkg/pbi"
)

// fakeAPI is a scripted pbi.Doer that records calls and replays canned
// responses keyed by path.
type fakeAPI struct {
	responses map[string][]byte
	err       error

	gotPath  string
	gotQuery url.Values
	gotBody  any
	deletes  []string
}

func (f *fakeAPI) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	f.gotPath = path
	f.gotQuery = query

	if f.err != nil {
		return nil, f.err
	}

	return f.responses[path], nil
}

func (f *fakeAPI) Post(ctx context.Context, path string, body any) ([]byte, error) {
	f.gotPath = path
	f.gotBody = body

	if f.err != nil {
		return nil, f.err
	}

	return f.responses[path], nil
}

func (f *fakeAPI) Delete(ctx context.Context, path string) error {
	f.deletes = append(f.deletes, path)

	return f.err
}

func TestNewWorkspace(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"id": "ws-1",
		"name": "Sales",
		"isReadOnly": false,
		"isOnDedicatedCapacity": true,
		"capacityId": "cap-1"
	}`)

	workspace, err := pbi.NewWorkspace(&fakeAPI{}, data)
	require.NoError(t, err)

	assert.Equal(t, "ws-1", workspace.Key())
	assert.True(t, workspace.IsOnDedicatedCapacity)
	assert.Equal(t, "cap-1", workspace.CapacityID)

	// Child collections start empty, not nil.
	assert.Equal(t, 0, workspace.Reports.Len())
	assert.Equal(t, 0, workspace.SemanticModels.Len())
	assert.Equal(t, 0, workspace.Dashboards.Len())
	assert.Equal(t, 0, workspace.Users.Len())
}

func TestDecodeCollection(t *testing.T) {
	t.Parallel()

	t.Run("object envelope", func(t *testing.T) {
		t.Parallel()

		value, err := pbi.DecodeCollection("groups", []byte(`{"value": [{"id": "ws-1"}, {"id": "ws-2"}]}`))
		require.NoError(t, err)
		assert.Len(t, value, 2)
	})

	t.Run("empty value array", func(t *testing.T) {
		t.Parallel()

		value, err := pbi.DecodeCollection("groups", []byte(`{"value": []}`))
		require.NoError(t, err)
		assert.Empty(t, value)
	})

	t.Run("top-level array is a contract violation", func(t *testing.T) {
		t.Parallel()

		_, err := pbi.DecodeCollection("groups", []byte(`[{"id": "ws-1"}]`))
		require.Error(t, err)
		assert.True(t, pbi.IsDecodeError(err))
		assert.Contains(t, err.Error(), "must be a JSON object")
	})

	t.Run("object without value array", func(t *testing.T) {
		t.Parallel()

		_, err := pbi.DecodeCollection("groups", []byte(`{"items": []}`))
		require.Error(t, err)
		assert.True(t, pbi.IsDecodeError(err))
	})

	t.Run("not JSON at all", func(t *testing.T) {
		t.Parallel()

		_, err := pbi.DecodeCollection("groups", []byte(`<html>oops</html>`))
		require.Error(t, err)
		assert.True(t, pbi.IsDecodeError(err))
	})
}

func newTestWorkspace(t *testing.T, api pbi.Doer) *pbi.Workspace {
	t.Helper()

	workspace, err := pbi.NewWorkspace(api, []byte(`{"id": "ws-1", "name": "Sales"}`))
	require.NoError(t, err)

	return workspace
}

func TestFetchReportsReplacesCollection(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{responses: map[string][]byte{
		"groups/ws-1/reports": []byte(`{"value": [
			{"id": "r-1", "datasetId": "ds-1", "name": "First"},
			{"id": "r-2", "datasetId": "ds-1", "name": "Second"}
		]}`),
	}}
	workspace := newTestWorkspace(t, api)

	require.NoError(t, workspace.FetchReports(context.Background()))
	require.Equal(t, 2, workspace.Reports.Len())

	// A later fetch replaces the collection wholesale.
	api.responses["groups/ws-1/reports"] = []byte(`{"value": [{"id": "r-3", "datasetId": "ds-2"}]}`)

	require.NoError(t, workspace.FetchReports(context.Background()))
	require.Equal(t, 1, workspace.Reports.Len())

	_, ok := workspace.Reports.Get(pbi.ReportKey{DatasetID: "ds-2", ID: "r-3"})
	assert.True(t, ok)
}

func TestFetchKeepsCollectionOnFailure(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{responses: map[string][]byte{
		"groups/ws-1/reports": []byte(`{"value": [{"id": "r-1", "datasetId": "ds-1"}]}`),
	}}
	workspace := newTestWorkspace(t, api)

	require.NoError(t, workspace.FetchReports(context.Background()))
	require.Equal(t, 1, workspace.Reports.Len())

	// Malformed envelope: the fetch fails and the old snapshot stays.
	api.responses["groups/ws-1/reports"] = []byte(`[]`)

	err := workspace.FetchReports(context.Background())
	require.Error(t, err)
	assert.True(t, pbi.IsDecodeError(err))
	assert.Equal(t, 1, workspace.Reports.Len())
}

func TestFetchSemanticModels(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{responses: map[string][]byte{
		"groups/ws-1/datasets": []byte(`{"value": [
			{"id": "ds-1", "name": "Sales Model", "isRefreshable": true}
		]}`),
	}}
	workspace := newTestWorkspace(t, api)

	require.NoError(t, workspace.FetchSemanticModels(context.Background()))
	require.Equal(t, 1, workspace.SemanticModels.Len())

	model, ok := workspace.SemanticModels.Get("ds-1")
	require.True(t, ok)
	assert.Same(t, workspace, model.Parent)
}

func TestFetchUsersPaging(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{responses: map[string][]byte{
		"groups/ws-1/users": []byte(`{"value": [
			{"emailAddress": "a@example.com", "groupUserAccessRight": "Admin"}
		]}`),
	}}
	workspace := newTestWorkspace(t, api)

	require.NoError(t, workspace.FetchUsers(context.Background(), 100, 200))

	assert.Equal(t, "100", api.gotQuery.Get("$top"))
	assert.Equal(t, "200", api.gotQuery.Get("$skip"))
	require.Equal(t, 1, workspace.Users.Len())

	user, ok := workspace.Users.Get("a@example.com")
	require.True(t, ok)
	assert.Equal(t, "Admin", user.AccessRight)
}

func TestFetchUsersWithoutPaging(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{responses: map[string][]byte{
		"groups/ws-1/users": []byte(`{"value": []}`),
	}}
	workspace := newTestWorkspace(t, api)

	require.NoError(t, workspace.FetchUsers(context.Background(), 0, 0))
	assert.Empty(t, api.gotQuery.Encode())
}

func TestFetchDashboards(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{responses: map[string][]byte{
		"groups/ws-1/dashboards": []byte(`{"value": [
			{"id": "d-1", "displayName": "Ops"},
			{"id": "d-2", "displayName": "Finance"}
		]}`),
	}}
	workspace := newTestWorkspace(t, api)

	require.NoError(t, workspace.FetchDashboards(context.Background()))
	assert.Equal(t, 2, workspace.Dashboards.Len())
}

func TestAddUser(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{responses: map[string][]byte{}}
	workspace := newTestWorkspace(t, api)

	require.NoError(t, workspace.AddUser(context.Background(), "c@example.com", "Contributor"))
	assert.Equal(t, "groups/ws-1/users", api.gotPath)

	payload, err := json.Marshal(api.gotBody)
	require.NoError(t, err)
	assert.JSONEq(t, `{"emailAddress": "c@example.com", "groupUserAccessRight": "Contributor"}`, string(payload))

	// Granting access does not touch the local snapshot.
	assert.Equal(t, 0, workspace.Users.Len())
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	workspace := newTestWorkspace(t, api)

	require.NoError(t, workspace.DeleteUser(context.Background(), "c@example.com"))
	assert.Equal(t, []string{"groups/ws-1/users/c@example.com"}, api.deletes)
}

func TestFetchPropagatesAPIErrors(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{err: pbi.NewStatusError(404, "https://example.com/groups/ws-1/reports", "")}
	workspace := newTestWorkspace(t, api)

	err := workspace.FetchReports(context.Background())
	require.Error(t, err)
	assert.True(t, pbi.IsEntityNotFound(err))
}
