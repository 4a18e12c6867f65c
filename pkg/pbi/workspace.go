package pbi

import (
	"context"
	"encoding/json"
	"fmt"
)

// Workspace is a top-level container resource. Its child collections are
// empty until explicitly fetched; every fetch replaces the corresponding
// collection wholesale with the latest server state.
type Workspace struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	IsReadOnly            bool   `json:"isReadOnly"`
	IsOnDedicatedCapacity bool   `json:"isOnDedicatedCapacity"`
	CapacityID            string `json:"capacityId"`

	Reports        ReportSet        `json:"-"`
	SemanticModels SemanticModelSet `json:"-"`
	Dashboards     DashboardSet     `json:"-"`
	Users          UserSet          `json:"-"`

	api Doer
}

// NewWorkspace builds a Workspace from a JSON object and attaches the
// shared API client used by its fetch operations.
func NewWorkspace(api Doer, data []byte) (*Workspace, error) {
	var workspace Workspace

	err := json.Unmarshal(data, &workspace)
	if err != nil {
		return nil, NewJSONDecodeError("", "workspace must be a JSON object", err)
	}

	workspace.api = api
	workspace.Reports = NewSet[ReportKey, *Report]()
	workspace.SemanticModels = NewSet[string, *SemanticModel]()
	workspace.Dashboards = NewSet[string, *Dashboard]()
	workspace.Users = NewSet[string, *User]()

	return &workspace, nil
}

// Key returns the identity key.
func (w *Workspace) Key() string {
	return w.ID
}

// Equal reports identity-key equality.
func (w *Workspace) Equal(other *Workspace) bool {
	return other != nil && w.ID == other.ID
}

// String implements fmt.Stringer.
func (w *Workspace) String() string {
	return fmt.Sprintf("%s (%s)", w.Name, w.ID)
}

// collectionEnvelope is the object wrapper every collection endpoint returns.
type collectionEnvelope struct {
	Value []json.RawMessage `json:"value"`
}

// DecodeCollection extracts the "value" array from a collection response.
// The API contract requires an object envelope; any other shape is a fatal
// contract violation for the calling fetch.
func DecodeCollection(path string, body []byte) ([]json.RawMessage, error) {
	var envelope collectionEnvelope

	err := json.Unmarshal(body, &envelope)
	if err != nil {
		return nil, NewJSONDecodeError(path, "collection response must be a JSON object", err)
	}

	if envelope.Value == nil {
		return nil, NewJSONDecodeError(path, `collection response is missing the "value" array`, nil)
	}

	return envelope.Value, nil
}

// FetchReports fetches the reports in the workspace, replacing w.Reports.
// On any failure the collection keeps its prior value.
func (w *Workspace) FetchReports(ctx context.Context) error {
	path := "groups/" + w.ID + "/reports"

	body, err := w.api.Get(ctx, path, nil)
	if err != nil {
		return fmt.Errorf("fetching reports for workspace %s: %w", w.ID, err)
	}

	value, err := DecodeCollection(path, body)
	if err != nil {
		return err
	}

	reports := NewSet[ReportKey, *Report]()

	for _, raw := range value {
		report, err := NewReport(w, raw)
		if err != nil {
			return err
		}

		reports.Add(report)
	}

	w.Reports = reports

	return nil
}

// FetchSemanticModels fetches the datasets in the workspace, replacing
// w.SemanticModels.
func (w *Workspace) FetchSemanticModels(ctx context.Context) error {
	path := "groups/" + w.ID + "/datasets"

	body, err := w.api.Get(ctx, path, nil)
	if err != nil {
		return fmt.Errorf("fetching semantic models for workspace %s: %w", w.ID, err)
	}

	value, err := DecodeCollection(path, body)
	if err != nil {
		return err
	}

	models := NewSet[string, *SemanticModel]()

	for _, raw := range value {
		model, err := NewSemanticModel(w, raw)
		if err != nil {
			return err
		}

		models.Add(model)
	}

	w.SemanticModels = models

	return nil
}

// FetchUsers fetches the users with access to the workspace, replacing
// w.Users. top and skip page the collection; zero omits the parameter.
func (w *Workspace) FetchUsers(ctx context.Context, top, skip int) error {
	path := "groups/" + w.ID + "/users"

	body, err := w.api.Get(ctx, path, pageValues(top, skip))
	if err != nil {
		return fmt.Errorf("fetching users for workspace %s: %w", w.ID, err)
	}

	value, err := DecodeCollection(path, body)
	if err != nil {
		return err
	}

	users := NewSet[string, *User]()

	for _, raw := range value {
		user, err := NewUser(w, raw)
		if err != nil {
			return err
		}

		users.Add(user)
	}

	w.Users = users

	return nil
}

// FetchDashboards fetches the dashboards in the workspace, replacing
// w.Dashboards.
func (w *Workspace) FetchDashboards(ctx context.Context) error {
	path := "groups/" + w.ID + "/dashboards"

	body, err := w.api.Get(ctx, path, nil)
	if err != nil {
		return fmt.Errorf("fetching dashboards for workspace %s: %w", w.ID, err)
	}

	value, err := DecodeCollection(path, body)
	if err != nil {
		return err
	}

	dashboards := NewSet[string, *Dashboard]()

	for _, raw := range value {
		dashboard, err := NewDashboard(w, raw)
		if err != nil {
			return err
		}

		dashboards.Add(dashboard)
	}

	w.Dashboards = dashboards

	return nil
}

// userGrant is the payload for granting workspace access.
type userGrant struct {
	EmailAddress         string `json:"emailAddress"`
	GroupUserAccessRight string `json:"groupUserAccessRight"`
}

// AddUser grants a user access to the workspace. The local Users set is
// not touched; call FetchUsers to observe the change.
func (w *Workspace) AddUser(ctx context.Context, email, accessRight string) error {
	path := "groups/" + w.ID + "/users"

	_, err := w.api.Post(ctx, path, userGrant{EmailAddress: email, GroupUserAccessRight: accessRight})
	if err != nil {
		return fmt.Errorf("adding user %s to workspace %s: %w", email, w.ID, err)
	}

	return nil
}

// DeleteUser revokes a user's access to the workspace. This is a remote
// operation only; it does not modify the local Users set.
func (w *Workspace) DeleteUser(ctx context.Context, email string) error {
	path := "groups/" + w.ID + "/users/" + email

	err := w.api.Delete(ctx, path)
	if err != nil {
		return fmt.Errorf("removing user %s from workspace %s: %w", email, w.ID, err)
	}

	return nil
}
