package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/apibeacon/beacon/internal/logging"
)

// NewLogsCommand creates the logs command.
func NewLogsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logs",
		Short: "Print the client log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := viper.GetString("log_dir")

			if dir == "" {
				var err error

				dir, err = logging.DefaultDir()
				if err != nil {
					return err
				}
			}

			fmt.Print(logging.ReadLogFile(dir))

			return nil
		},
	}
}
