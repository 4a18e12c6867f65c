package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apibeacon/beacon/internal/auth"
	"github.com/apibeacon/beacon/internal/client"
	internalhttp "github.com/apibeacon/beacon/internal/http"
	"github.com/apibeacon/beacon/pkg/pbi"
)

// newTestService wires a Service against a scripted API server.
func newTestService(t *testing.T, handler http.Handler) *client.Service {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tokenManager := auth.NewStaticTokenManager("test-token", "a@example.com")
	httpClient := internalhttp.NewClient(server.URL, tokenManager)

	return client.NewService(httpClient, tokenManager, nil)
}

func TestServiceGetWorkspaces(t *testing.T) {
	t.Parallel()

	service := newTestService(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/groups", request.URL.Path)
		assert.Equal(t, "Bearer test-token", request.Header.Get("Authorization"))

		_, _ = writer.Write([]byte(`{"value": [
			{"id": "w1", "name": "Sales"},
			{"id": "w2", "name": "Finance", "isReadOnly": true}
		]}`))
	}))

	workspaces, err := service.GetWorkspaces(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 2, workspaces.Len())

	sales, ok := workspaces.Get("w1")
	require.True(t, ok)
	assert.Equal(t, "Sales", sales.Name)

	// The fetched set becomes the cached view.
	assert.Equal(t, 2, service.Workspaces().Len())
}

func TestServiceGetWorkspacesWithOptions(t *testing.T) {
	t.Parallel()

	service := newTestService(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "name eq 'Sales'", request.URL.Query().Get("$filter"))
		assert.Equal(t, "10", request.URL.Query().Get("$top"))

		_, _ = writer.Write([]byte(`{"value": [{"id": "w1", "name": "Sales"}]}`))
	}))

	opts := &pbi.ListOptions{Filter: "name eq 'Sales'", Top: 10}

	workspaces, err := service.GetWorkspaces(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, workspaces.Len())
}

func TestServiceGetWorkspacesReplacesCache(t *testing.T) {
	t.Parallel()

	var second bool

	service := newTestService(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if second {
			_, _ = writer.Write([]byte(`{"value": [{"id": "w3", "name": "New"}]}`))

			return
		}

		second = true

		_, _ = writer.Write([]byte(`{"value": [{"id": "w1"}, {"id": "w2"}]}`))
	}))

	_, err := service.GetWorkspaces(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 2, service.Workspaces().Len())

	_, err = service.GetWorkspaces(context.Background(), nil)
	require.NoError(t, err)

	// Replaced, not merged.
	require.Equal(t, 1, service.Workspaces().Len())

	_, ok := service.Workspaces().Get("w3")
	assert.True(t, ok)
}

func TestServiceGetWorkspacesKeepsCacheOnFailure(t *testing.T) {
	t.Parallel()

	var fail bool

	service := newTestService(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if fail {
			writer.WriteHeader(http.StatusInternalServerError)

			return
		}

		fail = true

		_, _ = writer.Write([]byte(`{"value": [{"id": "w1"}]}`))
	}))

	_, err := service.GetWorkspaces(context.Background(), nil)
	require.NoError(t, err)

	_, err = service.GetWorkspaces(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, pbi.IsInternalServerError(err))

	// The last good snapshot survives the failed fetch.
	assert.Equal(t, 1, service.Workspaces().Len())
}

func TestServiceGetWorkspacesMalformedEnvelope(t *testing.T) {
	t.Parallel()

	service := newTestService(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(`[{"id": "w1"}]`))
	}))

	_, err := service.GetWorkspaces(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, pbi.IsDecodeError(err))
}

func TestServiceGetWorkspace(t *testing.T) {
	t.Parallel()

	service := newTestService(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/groups/w1", request.URL.Path)
		_, _ = writer.Write([]byte(`{"id": "w1", "name": "Sales"}`))
	}))

	workspace, err := service.GetWorkspace(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, "Sales", workspace.Name)
}

func TestServiceGetWorkspaceNotFound(t *testing.T) {
	t.Parallel()

	service := newTestService(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
	}))

	_, err := service.GetWorkspace(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, pbi.IsEntityNotFound(err))
}

func TestServiceWorkspaceSharesClient(t *testing.T) {
	t.Parallel()

	// The workspace fetched through the service must reach the same server
	// for its own child fetches.
	mux := http.NewServeMux()
	mux.HandleFunc("/groups", func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(`{"value": [{"id": "w1", "name": "Sales"}]}`))
	})
	mux.HandleFunc("/groups/w1/users", func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(`{"value": [
			{"emailAddress": "a@example.com", "groupUserAccessRight": "Admin"}
		]}`))
	})

	service := newTestService(t, mux)

	workspaces, err := service.GetWorkspaces(context.Background(), nil)
	require.NoError(t, err)

	workspace, ok := workspaces.Get("w1")
	require.True(t, ok)

	require.NoError(t, workspace.FetchUsers(context.Background(), 0, 0))
	require.Equal(t, 1, workspace.Users.Len())

	user, ok := workspace.Users.Get("a@example.com")
	require.True(t, ok)
	assert.Equal(t, "Admin", user.AccessRight)
	assert.Same(t, workspace, user.Parent)
}

func TestServiceGetApps(t *testing.T) {
	t.Parallel()

	service := newTestService(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/apps", request.URL.Path)
		_, _ = writer.Write([]byte(`{"value": [
			{"id": "app-1", "name": "Finance"},
			{"id": "app-2", "name": "Ops"}
		]}`))
	}))

	apps, err := service.GetApps(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, apps.Len())
	assert.Equal(t, 2, service.Apps().Len())
}

func TestServiceUserAndToken(t *testing.T) {
	t.Parallel()

	service := newTestService(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {}))

	assert.Equal(t, "a@example.com", service.User())

	token, err := service.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-token", token)
}
