package pbi

import (
	"encoding/json"
	"fmt"
)

// Entities are immutable-by-convention snapshots of one JSON object from
// the API. They are created only by a successful fetch and are replaced
// wholesale on re-fetch, never patched in place. Parent references are
// non-owning and exist only for context.

// ReportKey is the identity key of a Report.
type ReportKey struct {
	DatasetID string
	ID        string
}

// Report is a report resource within a workspace.
type Report struct {
	AppID            string `json:"appId"`
	DatasetID        string `json:"datasetId"`
	Description      string `json:"description"`
	EmbedURL         string `json:"embedUrl"`
	ID               string `json:"id"`
	Name             string `json:"name"`
	OriginalReportID string `json:"originalReportId"`
	Type             string `json:"reportType"`
	WebURL           string `json:"webUrl"`
	ModifiedBy       string `json:"modifiedBy"`
	CreatedBy        string `json:"createdBy"`

	Parent *Workspace `json:"-"`
}

// NewReport builds a Report from one element of a collection envelope.
func NewReport(parent *Workspace, data []byte) (*Report, error) {
	var report Report

	err := json.Unmarshal(data, &report)
	if err != nil {
		return nil, NewJSONDecodeError("", "report must be a JSON object", err)
	}

	report.Parent = parent

	return &report, nil
}

// Key returns the identity key: two reports are the same resource iff
// their (datasetId, id) pairs match.
func (r *Report) Key() ReportKey {
	return ReportKey{DatasetID: r.DatasetID, ID: r.ID}
}

// Equal reports identity-key equality.
func (r *Report) Equal(other *Report) bool {
	return other != nil && r.Key() == other.Key()
}

// String implements fmt.Stringer.
func (r *Report) String() string {
	return fmt.Sprintf("%s (%s)", r.Name, r.ID)
}

// SemanticModel is a dataset resource within a workspace.
type SemanticModel struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ConfiguredBy  string `json:"configuredBy"`
	IsRefreshable bool   `json:"isRefreshable"`
	CreatedDate   string `json:"createdDate"`
	StorageMode   string `json:"targetStorageMode"`

	Parent *Workspace `json:"-"`
}

// NewSemanticModel builds a SemanticModel from one element of a collection envelope.
func NewSemanticModel(parent *Workspace, data []byte) (*SemanticModel, error) {
	var model SemanticModel

	err := json.Unmarshal(data, &model)
	if err != nil {
		return nil, NewJSONDecodeError("", "semantic model must be a JSON object", err)
	}

	model.Parent = parent

	return &model, nil
}

// Key returns the identity key.
func (m *SemanticModel) Key() string {
	return m.ID
}

// Equal reports identity-key equality.
func (m *SemanticModel) Equal(other *SemanticModel) bool {
	return other != nil && m.ID == other.ID
}

// String implements fmt.Stringer.
func (m *SemanticModel) String() string {
	return fmt.Sprintf("%s (%s)", m.Name, m.ID)
}

// User is a principal with access to a workspace.
type User struct {
	Email         string `json:"emailAddress"`
	AccessRight   string `json:"groupUserAccessRight"`
	PrincipalType string `json:"principalType"`
	Name          string `json:"displayName"`

	Parent *Workspace `json:"-"`
}

// NewUser builds a User from one element of a collection envelope.
func NewUser(parent *Workspace, data []byte) (*User, error) {
	var user User

	err := json.Unmarshal(data, &user)
	if err != nil {
		return nil, NewJSONDecodeError("", "user must be a JSON object", err)
	}

	user.Parent = parent

	return &user, nil
}

// Key returns the identity key.
func (u *User) Key() string {
	return u.Email
}

// Equal reports identity-key equality.
func (u *User) Equal(other *User) bool {
	return other != nil && u.Email == other.Email
}

// String implements fmt.Stringer.
func (u *User) String() string {
	return u.Email
}

// Dashboard is a dashboard resource within a workspace.
type Dashboard struct {
	ID         string `json:"id"`
	Name       string `json:"displayName"`
	IsReadOnly bool   `json:"isReadOnly"`
	WebURL     string `json:"webUrl"`
	EmbedURL   string `json:"embedUrl"`

	Parent *Workspace `json:"-"`
}

// NewDashboard builds a Dashboard from one element of a collection envelope.
func NewDashboard(parent *Workspace, data []byte) (*Dashboard, error) {
	var dashboard Dashboard

	err := json.Unmarshal(data, &dashboard)
	if err != nil {
		return nil, NewJSONDecodeError("", "dashboard must be a JSON object", err)
	}

	dashboard.Parent = parent

	return &dashboard, nil
}

// Key returns the identity key.
func (d *Dashboard) Key() string {
	return d.ID
}

// Equal reports identity-key equality.
func (d *Dashboard) Equal(other *Dashboard) bool {
	return other != nil && d.ID == other.ID
}

// String implements fmt.Stringer.
func (d *Dashboard) String() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.ID)
}

// App is an installed app visible to the authenticated user.
type App struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Name        string `json:"name"`
	PublishedBy string `json:"publishedBy"`
	LastUpdate  string `json:"lastUpdate"`
}

// NewApp builds an App from one element of a collection envelope.
func NewApp(data []byte) (*App, error) {
	var app App

	err := json.Unmarshal(data, &app)
	if err != nil {
		return nil, NewJSONDecodeError("", "app must be a JSON object", err)
	}

	return &app, nil
}

// Key returns the identity key.
func (a *App) Key() string {
	return a.ID
}

// Equal reports identity-key equality.
func (a *App) Equal(other *App) bool {
	return other != nil && a.ID == other.ID
}

// String implements fmt.Stringer.
func (a *App) String() string {
	return fmt.Sprintf("%s (%s)", a.Name, a.ID)
}

// Entity sets, keyed by each kind's identity key.
type (
	WorkspaceSet     = Set[string, *Workspace]
	ReportSet        = Set[ReportKey, *Report]
	SemanticModelSet = Set[string, *SemanticModel]
	UserSet          = Set[string, *User]
	DashboardSet     = Set[string, *Dashboard]
	AppSet           = Set[string, *App]
)
