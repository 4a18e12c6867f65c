package commands

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/apibeacon/beacon/pkg/beacon"
	"github.com/apibeacon/beacon/pkg/pbi"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		servicePrincipal bool
		clientSecret     string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the Power BI API",
		Long: `Authenticate against the Power BI API and persist the issued token.

By default the device-code flow is used: a sign-in URL and code are
printed and the command waits for the browser sign-in to complete.
With --service-principal the non-interactive client-credentials grant
is used instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := configFromViper()
			config.AccessToken = "" // force a fresh token

			if servicePrincipal {
				if config.ClientID == "" {
					return pbi.ErrConfigRequired
				}

				if clientSecret == "" {
					fmt.Fprint(os.Stderr, "Client secret: ")

					secret, err := term.ReadPassword(int(syscall.Stdin))
					if err != nil {
						return fmt.Errorf("failed to read client secret: %w", err)
					}

					clientSecret = string(secret)

					fmt.Fprintln(os.Stderr)
				}

				config.ClientSecret = clientSecret
			}

			service, err := beacon.New(cmd.Context(), config)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			token, err := service.Token(cmd.Context())
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			viper.Set("token", token)

			if err := viper.WriteConfig(); err != nil {
				if err := viper.SafeWriteConfig(); err != nil {
					return fmt.Errorf("failed to persist token: %w", err)
				}
			}

			fmt.Printf("Logged in as %s\n", service.User())

			return nil
		},
	}

	cmd.Flags().BoolVar(&servicePrincipal, "service-principal", false, "use the client-credentials grant")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "client secret for --service-principal (prompted if omitted)")

	return cmd
}
