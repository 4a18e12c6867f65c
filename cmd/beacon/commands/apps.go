package commands

import (
	"github.com/spf13/cobra"
)

// NewAppsCommand creates the apps command.
func NewAppsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "apps",
		Short: "List the apps visible to the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newService(cmd.Context())
			if err != nil {
				return err
			}

			apps, err := service.GetApps(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, apps.Len())
			for _, a := range apps.Values() {
				rows = append(rows, []string{a.ID, a.Name, a.PublishedBy, a.LastUpdate})
			}

			return renderOutput(apps.Values(),
				[]string{"ID", "Name", "Published By", "Last Update"}, rows)
		},
	}
}
