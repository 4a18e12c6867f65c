package pbi

import (
	"context"
	"net/url"
)

// Doer is the narrow request surface entities use to reach the platform.
// Paths are relative to the API base URL (for example "groups/{id}/reports").
// The one resilient client built by beacon.New satisfies this interface, and
// every entity in the graph shares that single instance by reference.
type Doer interface {
	Get(ctx context.Context, path string, query url.Values) ([]byte, error)
	Post(ctx context.Context, path string, body any) ([]byte, error)
	Delete(ctx context.Context, path string) error
}
