package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apibeacon/beacon/pkg/pbi"
)

// NewWorkspacesCommand creates the workspaces command group.
func NewWorkspacesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workspaces",
		Aliases: []string{"workspace", "groups"},
		Short:   "Manage workspaces",
		Long:    "List workspaces and inspect the reports, semantic models, dashboards, and users they contain",
	}

	cmd.AddCommand(newWorkspacesListCommand())
	cmd.AddCommand(newWorkspacesGetCommand())
	cmd.AddCommand(newWorkspacesReportsCommand())
	cmd.AddCommand(newWorkspacesDatasetsCommand())
	cmd.AddCommand(newWorkspacesDashboardsCommand())
	cmd.AddCommand(newWorkspacesUsersCommand())

	return cmd
}

func newWorkspacesListCommand() *cobra.Command {
	var (
		filter string
		top    int
		skip   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workspaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newService(cmd.Context())
			if err != nil {
				return err
			}

			opts := &pbi.ListOptions{Filter: filter, Top: top, Skip: skip}

			workspaces, err := service.GetWorkspaces(cmd.Context(), opts)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, workspaces.Len())
			for _, w := range workspaces.Values() {
				rows = append(rows, []string{w.ID, w.Name, boolString(w.IsReadOnly), boolString(w.IsOnDedicatedCapacity)})
			}

			return renderOutput(workspaces.Values(),
				[]string{"ID", "Name", "Read Only", "Dedicated Capacity"}, rows)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "OData filter expression")
	cmd.Flags().IntVar(&top, "top", 0, "maximum number of results")
	cmd.Flags().IntVar(&skip, "skip", 0, "number of results to skip")

	return cmd
}

func newWorkspacesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get WORKSPACE_ID",
		Short: "Show a single workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newService(cmd.Context())
			if err != nil {
				return err
			}

			workspace, err := service.GetWorkspace(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return renderOutput(workspace, []string{"Property", "Value"}, [][]string{
				{"ID", workspace.ID},
				{"Name", workspace.Name},
				{"Read Only", boolString(workspace.IsReadOnly)},
				{"Dedicated Capacity", boolString(workspace.IsOnDedicatedCapacity)},
				{"Capacity ID", workspace.CapacityID},
			})
		},
	}
}

func newWorkspacesReportsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reports WORKSPACE_ID",
		Short: "List the reports in a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace, err := fetchWorkspace(cmd, args[0])
			if err != nil {
				return err
			}

			if err := workspace.FetchReports(cmd.Context()); err != nil {
				return err
			}

			rows := make([][]string, 0, workspace.Reports.Len())
			for _, r := range workspace.Reports.Values() {
				rows = append(rows, []string{r.ID, r.Name, r.DatasetID, r.Type})
			}

			return renderOutput(workspace.Reports.Values(),
				[]string{"ID", "Name", "Dataset ID", "Type"}, rows)
		},
	}
}

func newWorkspacesDatasetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "datasets WORKSPACE_ID",
		Aliases: []string{"semantic-models"},
		Short:   "List the semantic models in a workspace",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace, err := fetchWorkspace(cmd, args[0])
			if err != nil {
				return err
			}

			if err := workspace.FetchSemanticModels(cmd.Context()); err != nil {
				return err
			}

			rows := make([][]string, 0, workspace.SemanticModels.Len())
			for _, m := range workspace.SemanticModels.Values() {
				rows = append(rows, []string{m.ID, m.Name, m.ConfiguredBy, boolString(m.IsRefreshable)})
			}

			return renderOutput(workspace.SemanticModels.Values(),
				[]string{"ID", "Name", "Configured By", "Refreshable"}, rows)
		},
	}
}

func newWorkspacesDashboardsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboards WORKSPACE_ID",
		Short: "List the dashboards in a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace, err := fetchWorkspace(cmd, args[0])
			if err != nil {
				return err
			}

			if err := workspace.FetchDashboards(cmd.Context()); err != nil {
				return err
			}

			rows := make([][]string, 0, workspace.Dashboards.Len())
			for _, d := range workspace.Dashboards.Values() {
				rows = append(rows, []string{d.ID, d.Name, boolString(d.IsReadOnly)})
			}

			return renderOutput(workspace.Dashboards.Values(),
				[]string{"ID", "Name", "Read Only"}, rows)
		},
	}
}

func newWorkspacesUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage workspace users",
	}

	cmd.AddCommand(newWorkspacesUsersListCommand())
	cmd.AddCommand(newWorkspacesUsersAddCommand())
	cmd.AddCommand(newWorkspacesUsersRemoveCommand())

	return cmd
}

func newWorkspacesUsersListCommand() *cobra.Command {
	var top, skip int

	cmd := &cobra.Command{
		Use:   "list WORKSPACE_ID",
		Short: "List the users with access to a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace, err := fetchWorkspace(cmd, args[0])
			if err != nil {
				return err
			}

			if err := workspace.FetchUsers(cmd.Context(), top, skip); err != nil {
				return err
			}

			rows := make([][]string, 0, workspace.Users.Len())
			for _, u := range workspace.Users.Values() {
				rows = append(rows, []string{u.Email, u.Name, u.AccessRight, u.PrincipalType})
			}

			return renderOutput(workspace.Users.Values(),
				[]string{"Email", "Name", "Access Right", "Principal Type"}, rows)
		},
	}

	cmd.Flags().IntVar(&top, "top", 0, "maximum number of results")
	cmd.Flags().IntVar(&skip, "skip", 0, "number of results to skip")

	return cmd
}

func newWorkspacesUsersAddCommand() *cobra.Command {
	var accessRight string

	cmd := &cobra.Command{
		Use:   "add WORKSPACE_ID EMAIL",
		Short: "Grant a user access to a workspace",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace, err := fetchWorkspace(cmd, args[0])
			if err != nil {
				return err
			}

			if err := workspace.AddUser(cmd.Context(), args[1], accessRight); err != nil {
				return err
			}

			fmt.Printf("Granted %s access to %s\n", args[1], workspace.Name)

			return nil
		},
	}

	cmd.Flags().StringVar(&accessRight, "access-right", "Viewer", "access right to grant (Admin, Contributor, Member, Viewer)")

	return cmd
}

func newWorkspacesUsersRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove WORKSPACE_ID EMAIL",
		Short: "Revoke a user's access to a workspace",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace, err := fetchWorkspace(cmd, args[0])
			if err != nil {
				return err
			}

			if err := workspace.DeleteUser(cmd.Context(), args[1]); err != nil {
				return err
			}

			fmt.Printf("Revoked access for %s from %s\n", args[1], workspace.Name)

			return nil
		},
	}
}

func fetchWorkspace(cmd *cobra.Command, workspaceID string) (*pbi.Workspace, error) {
	service, err := newService(cmd.Context())
	if err != nil {
		return nil, err
	}

	return service.GetWorkspace(cmd.Context(), workspaceID)
}
