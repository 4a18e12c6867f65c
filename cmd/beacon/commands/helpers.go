package commands

import (
	"context"
	"encoding/json"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/apibeacon/beacon/internal/constants"
	"github.com/apibeacon/beacon/pkg/beacon"
	"github.com/apibeacon/beacon/pkg/pbi"
)

// configFromViper assembles a client config from flags, environment, and
// the config file.
func configFromViper() *pbi.Config {
	return &pbi.Config{
		BaseURL:      viper.GetString("api"),
		ProxyURL:     viper.GetString("proxy"),
		AccessToken:  viper.GetString("token"),
		TenantID:     viper.GetString("tenant"),
		ClientID:     viper.GetString("client_id"),
		ClientSecret: viper.GetString("client_secret"),
		Debug:        viper.GetBool("verbose"),
	}
}

// newService builds a Service for the current invocation.
func newService(ctx context.Context) (pbi.Service, error) {
	return beacon.New(ctx, configFromViper())
}

// renderOutput prints v as json or yaml, or renders rows as a table for
// the default output format.
func renderOutput(v any, headers []string, rows [][]string) error {
	switch viper.GetString("output") {
	case constants.FormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(v)
	case constants.FormatYAML:
		return yaml.NewEncoder(os.Stdout).Encode(v)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header(toAnySlice(headers)...)

		for _, row := range rows {
			_ = table.Append(toAnySlice(row)...)
		}

		return table.Render()
	}
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}

	return out
}

func boolString(b bool) string {
	if b {
		return "true"
	}

	return "false"
}
